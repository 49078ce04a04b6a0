package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spectrumarena/arenapay/internal/mocks"
	"github.com/spectrumarena/arenapay/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestListPlansReturnsOwnPlans(t *testing.T) {
	now := time.Now().UTC()

	planRepo := new(mocks.MockSavingsPlanRepo)
	planRepo.On("GetAllByUserId", "user_1").Return([]repository.SavingsPlan{
		{
			ID:          "plan_1",
			UserID:      "user_1",
			PlanType:    repository.SavingsPlanTypeSavings,
			Amount:      decimal.RequireFromString("500.00"),
			Status:      repository.SavingsPlanStatusLocked,
			LockedAt:    now,
			LockedUntil: now.AddDate(0, 0, 30),
		},
	}, true, nil)

	handler := NewSavingsHandler(&SavingsHandler{
		PlanRepo:   planRepo,
		ErrHandler: newTestErrorHandler(),
	})

	req := authenticatedRequest(http.MethodGet, "/savings", nil)

	rec := httptest.NewRecorder()
	handler.HandleListPlans(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "plan_1")
	require.Contains(t, rec.Body.String(), repository.SavingsPlanStatusLocked)
}

func TestListPlansEmpty(t *testing.T) {
	planRepo := new(mocks.MockSavingsPlanRepo)
	planRepo.On("GetAllByUserId", "user_1").Return(nil, false, nil)

	handler := NewSavingsHandler(&SavingsHandler{
		PlanRepo:   planRepo,
		ErrHandler: newTestErrorHandler(),
	})

	req := authenticatedRequest(http.MethodGet, "/savings", nil)

	rec := httptest.NewRecorder()
	handler.HandleListPlans(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "No savings plans found")
}

func TestPlanActivityRejectsForeignPlan(t *testing.T) {
	planRepo := new(mocks.MockSavingsPlanRepo)
	planRepo.On("GetOne", "plan_9").Return(&repository.SavingsPlan{
		ID:     "plan_9",
		UserID: "someone_else",
	}, true, nil)

	transactionRepo := new(mocks.MockSavingsTransactionRepo)

	handler := NewSavingsHandler(&SavingsHandler{
		PlanRepo:               planRepo,
		SavingsTransactionRepo: transactionRepo,
		ErrHandler:             newTestErrorHandler(),
	})

	req := authenticatedRequest(http.MethodGet, "/savings/plan_9/activity", nil)
	req.SetPathValue("id", "plan_9")

	rec := httptest.NewRecorder()
	handler.HandlePlanActivity(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	transactionRepo.AssertNotCalled(t, "GetAllByPlanId")
}

func TestPlanActivityListsTransactions(t *testing.T) {
	planRepo := new(mocks.MockSavingsPlanRepo)
	planRepo.On("GetOne", "plan_1").Return(&repository.SavingsPlan{
		ID:     "plan_1",
		UserID: "user_1",
	}, true, nil)

	transactionRepo := new(mocks.MockSavingsTransactionRepo)
	transactionRepo.On("GetAllByPlanId", "plan_1").Return([]repository.SavingsTransaction{
		{
			ID:            "stx_1",
			SavingsPlanID: "plan_1",
			Type:          repository.SavingsTransactionTypeDeposit,
			Amount:        decimal.RequireFromString("500.00"),
			Note:          "Initial lock from wallet balance",
		},
	}, true, nil)

	handler := NewSavingsHandler(&SavingsHandler{
		PlanRepo:               planRepo,
		SavingsTransactionRepo: transactionRepo,
		ErrHandler:             newTestErrorHandler(),
	})

	req := authenticatedRequest(http.MethodGet, "/savings/plan_1/activity", nil)
	req.SetPathValue("id", "plan_1")

	rec := httptest.NewRecorder()
	handler.HandlePlanActivity(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "stx_1")
	require.Contains(t, rec.Body.String(), repository.SavingsTransactionTypeDeposit)
}

func TestCreatePlanValidation(t *testing.T) {
	handler := NewSavingsHandler(&SavingsHandler{
		ErrHandler: newTestErrorHandler(),
	})

	tests := []struct {
		name string
		body string
	}{
		{"unknown plan type", `{"plan_type": "GAMBLE", "amount": "100.00", "duration_days": 30}`},
		{"zero amount", `{"plan_type": "SAVINGS", "amount": "0", "duration_days": 30}`},
		{"negative amount", `{"plan_type": "SAVINGS", "amount": "-10", "duration_days": 30}`},
		{"zero duration", `{"plan_type": "SAVINGS", "amount": "100.00", "duration_days": 0}`},
		{"negative target", `{"plan_type": "SAVINGS", "amount": "100.00", "duration_days": 30, "target_amount": "-1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authenticatedRequest(http.MethodPost, "/savings", []byte(tt.body))

			rec := httptest.NewRecorder()
			handler.HandleCreatePlan(rec, req)

			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		})
	}
}

func TestGenerateWithdrawalOTPFormat(t *testing.T) {
	for i := 0; i < 32; i++ {
		code, err := generateWithdrawalOTP()
		require.NoError(t, err)
		require.Regexp(t, `^\d{6}$`, code)
	}
}
