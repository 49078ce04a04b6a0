package handler

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spectrumarena/arenapay/internal/cache"
	"github.com/spectrumarena/arenapay/internal/context"
	"github.com/spectrumarena/arenapay/internal/errHandler"
	"github.com/spectrumarena/arenapay/internal/helper"
	"github.com/spectrumarena/arenapay/internal/repository"
	"github.com/spectrumarena/arenapay/internal/request"
	"github.com/spectrumarena/arenapay/internal/response"
	"github.com/spectrumarena/arenapay/internal/service"
	"github.com/spectrumarena/arenapay/internal/smtp"
	"github.com/spectrumarena/arenapay/internal/validator"
)

type SavingsPlanResponseData struct {
	ID             string          `json:"id"`
	PlanType       string          `json:"plan_type"`
	Amount         decimal.Decimal `json:"amount"`
	Status         string          `json:"status"`
	LockedAt       time.Time       `json:"locked_at"`
	LockedUntil    time.Time       `json:"locked_until"`
	PenaltyAmount  decimal.Decimal `json:"penalty_amount"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	InterestEarned decimal.Decimal `json:"interest_earned"`
	TargetAmount   *decimal.Decimal `json:"target_amount,omitempty"`
	GoalCompleted  bool            `json:"goal_completed"`
	CreatedAt      time.Time       `json:"created_at"`
}

type SavingsHandler struct {
	Engine                 *service.SavingsEngine
	PlanRepo               repository.SavingsPlanRepository
	SavingsTransactionRepo repository.SavingsTransactionRepository
	Cache                  *cache.Cache
	Mailer                 smtp.MailerInterface
	Helper                 *helper.HelperRepository
	ErrHandler             *errHandler.ErrorRepository
}

func NewSavingsHandler(handler *SavingsHandler) *SavingsHandler {
	return &SavingsHandler{
		Engine:                 handler.Engine,
		PlanRepo:               handler.PlanRepo,
		SavingsTransactionRepo: handler.SavingsTransactionRepo,
		Cache:                  handler.Cache,
		Mailer:                 handler.Mailer,
		Helper:                 handler.Helper,
		ErrHandler:             handler.ErrHandler,
	}
}

func newSavingsPlanResponseData(plan *repository.SavingsPlan) *SavingsPlanResponseData {
	data := &SavingsPlanResponseData{
		ID:             plan.ID,
		PlanType:       plan.PlanType,
		Amount:         plan.Amount,
		Status:         plan.Status,
		LockedAt:       plan.LockedAt,
		LockedUntil:    plan.LockedUntil,
		PenaltyAmount:  plan.PenaltyAmount,
		InterestRate:   plan.InterestRate,
		InterestEarned: plan.InterestEarned,
		GoalCompleted:  plan.GoalCompleted,
		CreatedAt:      plan.CreatedAt,
	}

	if plan.TargetAmount.Valid {
		target := plan.TargetAmount.Decimal
		data.TargetAmount = &target
	}

	return data
}

// Creating a plan moves funds from the wallet's spendable balance into
// its locked balance atomically with the plan insert. The scheduler
// picks the plan up for release once locked_until passes.
func (h *SavingsHandler) HandleCreatePlan(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	var input struct {
		PlanType     string              `json:"plan_type"`
		Amount       decimal.Decimal     `json:"amount"`
		DurationDays int                 `json:"duration_days"`
		TargetAmount *decimal.Decimal    `json:"target_amount"`
		Validator    validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.In(input.PlanType, repository.SavingsPlanTypeSavings, repository.SavingsPlanTypeThrift), "Plan type must be SAVINGS or THRIFT")
	input.Validator.Check(input.Amount.GreaterThan(decimal.Zero), "Amount must be greater than zero")
	input.Validator.Check(input.DurationDays >= 1, "Duration must be at least one day")
	if input.TargetAmount != nil {
		input.Validator.Check(input.TargetAmount.GreaterThan(decimal.Zero), "Target amount must be greater than zero")
	}

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	createInput := service.CreatePlanInput{
		PlanType:     input.PlanType,
		Amount:       input.Amount,
		DurationDays: input.DurationDays,
	}
	if input.TargetAmount != nil {
		createInput.TargetAmount = decimal.NewNullDecimal(*input.TargetAmount)
	}

	plan, err := h.Engine.Create(r.Context(), user.ID, createInput)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount),
			errors.Is(err, service.ErrInsufficientFunds),
			errors.Is(err, service.ErrWalletNotFound):
			response.JSONErrorResponse(w, nil, err.Error(), http.StatusUnprocessableEntity, nil)
		default:
			h.ErrHandler.ServerError(w, r, err)
		}
		return
	}

	message := "Savings plan created and locked successfully"
	err = response.JSONCreatedResponse(w, newSavingsPlanResponseData(plan), message)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *SavingsHandler) HandleListPlans(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	plans, found, err := h.PlanRepo.GetAllByUserId(user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found {
		message := "No savings plans found"
		err = response.JSONOkResponse(w, []SavingsPlanResponseData{}, message, nil)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
		}
		return
	}

	message := "Savings plans retrieved successfully"

	data := make([]*SavingsPlanResponseData, len(plans))
	for i := range plans {
		data[i] = newSavingsPlanResponseData(&plans[i])
	}

	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *SavingsHandler) HandlePlanActivity(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	planID := r.PathValue("id")

	plan, found, err := h.PlanRepo.GetOne(planID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found || plan.UserID != user.ID {
		response.JSONErrorResponse(w, nil, ErrPlanNotFound.Error(), http.StatusNotFound, nil)
		return
	}

	transactions, _, err := h.SavingsTransactionRepo.GetAllByPlanId(planID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	type activityData struct {
		ID        string          `json:"id"`
		Type      string          `json:"type"`
		Amount    decimal.Decimal `json:"amount"`
		Note      string          `json:"note"`
		CreatedAt time.Time       `json:"created_at"`
	}

	data := make([]activityData, len(transactions))
	for i, transaction := range transactions {
		data[i] = activityData{
			ID:        transaction.ID,
			Type:      transaction.Type,
			Amount:    transaction.Amount,
			Note:      transaction.Note,
			CreatedAt: transaction.CreatedAt,
		}
	}

	message := "Savings activity retrieved successfully"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleRequestWithdrawOTP emails a short-lived code that must
// accompany the withdrawal request.
func (h *SavingsHandler) HandleRequestWithdrawOTP(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	planID := r.PathValue("id")

	plan, found, err := h.PlanRepo.GetOne(planID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found || plan.UserID != user.ID {
		response.JSONErrorResponse(w, nil, ErrPlanNotFound.Error(), http.StatusNotFound, nil)
		return
	}

	code, err := generateWithdrawalOTP()
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	err = h.Cache.SetWithdrawalOTP(planID, code)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	email := user.Email
	amount := plan.Amount

	h.Helper.BackgroundTask(r, func() error {
		data := h.Helper.NewEmailData()
		data["Code"] = code
		data["Amount"] = amount

		return h.Mailer.Send(email, data, "savings-otp.tmpl")
	})

	message := "OTP sent to your email address"
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// Withdrawal of a locked plan requires early_break and costs the 10%
// penalty; a matured plan withdraws in full. Either way the caller must
// present the emailed OTP first.
func (h *SavingsHandler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	planID := r.PathValue("id")

	var input struct {
		EarlyBreak bool                `json:"early_break"`
		OTP        string              `json:"otp"`
		Validator  validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.OTP), "OTP is required")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	storedCode, err := h.Cache.GetWithdrawalOTP(planID)
	if err != nil || storedCode != input.OTP {
		response.JSONErrorResponse(w, nil, ErrInvalidOTP.Error(), http.StatusUnprocessableEntity, nil)
		return
	}

	// Consume the code before acting so it cannot be replayed.
	err = h.Cache.DeleteWithdrawalOTP(planID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	result, err := h.Engine.Withdraw(r.Context(), user.ID, planID, input.EarlyBreak)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanNotFound):
			response.JSONErrorResponse(w, nil, ErrPlanNotFound.Error(), http.StatusNotFound, nil)
		case errors.Is(err, service.ErrStillLocked),
			errors.Is(err, service.ErrNotWithdrawable):
			response.JSONErrorResponse(w, nil, err.Error(), http.StatusUnprocessableEntity, nil)
		default:
			h.ErrHandler.ServerError(w, r, err)
		}
		return
	}

	message := "Savings withdrawn successfully"

	data := map[string]any{
		"amount_received": result.Payout,
		"penalty":         result.Penalty,
		"status":          result.Plan.Status,
	}
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// generateWithdrawalOTP returns a six digit code drawn from the
// operating system's entropy source.
func generateWithdrawalOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n), nil
}
