package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spectrumarena/arenapay/internal/context"
	"github.com/spectrumarena/arenapay/internal/errHandler"
	"github.com/spectrumarena/arenapay/internal/mocks"
	"github.com/spectrumarena/arenapay/internal/repository"
	"github.com/stretchr/testify/require"
)

func newTestErrorHandler() *errHandler.ErrorRepository {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return errHandler.New("", "http://localhost", &mocks.MockMailer{}, logger)
}

func authenticatedRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	return context.ContextSetAuthenticatedUser(req, &repository.User{
		ID:    "user_1",
		Email: "user@example.com",
	})
}

func TestChargeSavedCardRequiresIdempotencyKey(t *testing.T) {
	idempotencyRepo := new(mocks.MockIdempotencyKeyRepo)

	handler := NewPaymentHandler(&PaymentHandler{
		IdempotencyKeyRepo: idempotencyRepo,
		ErrHandler:         newTestErrorHandler(),
	})

	req := authenticatedRequest(http.MethodPost, "/payments/charge-card", []byte(`{"amount": "100.00"}`))

	rec := httptest.NewRecorder()
	handler.HandleChargeSavedCard(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	idempotencyRepo.AssertNotCalled(t, "Find")
}

func TestChargeSavedCardReplaysStoredResponse(t *testing.T) {
	stored := &repository.IdempotencyKey{
		UserID:   "user_1",
		Key:      "key-1",
		Endpoint: "payments/charge-card",
		Response: json.RawMessage(`{"status": "success", "reference": "ref_789"}`),
	}

	idempotencyRepo := new(mocks.MockIdempotencyKeyRepo)
	idempotencyRepo.On("Find", "user_1", "key-1", "payments/charge-card").Return(stored, true, nil)

	savedCardRepo := new(mocks.MockSavedCardRepo)

	handler := NewPaymentHandler(&PaymentHandler{
		IdempotencyKeyRepo: idempotencyRepo,
		SavedCardRepo:      savedCardRepo,
		ErrHandler:         newTestErrorHandler(),
	})

	req := authenticatedRequest(http.MethodPost, "/payments/charge-card", []byte(`{"amount": "100.00"}`))
	req.Header.Set("Idempotency-Key", "key-1")

	rec := httptest.NewRecorder()
	handler.HandleChargeSavedCard(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "ref_789")

	// Replays never reach the gateway or the card store.
	savedCardRepo.AssertNotCalled(t, "GetActiveByUserId")
	idempotencyRepo.AssertExpectations(t)
}

func TestChargeSavedCardWithoutCardOnFile(t *testing.T) {
	idempotencyRepo := new(mocks.MockIdempotencyKeyRepo)
	idempotencyRepo.On("Find", "user_1", "key-2", "payments/charge-card").Return(nil, false, nil)

	savedCardRepo := new(mocks.MockSavedCardRepo)
	savedCardRepo.On("GetActiveByUserId", "user_1").Return(nil, false, nil)

	handler := NewPaymentHandler(&PaymentHandler{
		IdempotencyKeyRepo: idempotencyRepo,
		SavedCardRepo:      savedCardRepo,
		ErrHandler:         newTestErrorHandler(),
	})

	req := authenticatedRequest(http.MethodPost, "/payments/charge-card", []byte(`{"amount": "100.00"}`))
	req.Header.Set("Idempotency-Key", "key-2")

	rec := httptest.NewRecorder()
	handler.HandleChargeSavedCard(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "no saved card")
}

func TestListSavedCards(t *testing.T) {
	savedCardRepo := new(mocks.MockSavedCardRepo)
	savedCardRepo.On("GetAllByUserId", "user_1").Return([]repository.SavedCard{
		{ID: "card_1", CardType: "visa", Last4: "4081", Bank: "Test Bank", IsActive: true},
	}, true, nil)

	handler := NewPaymentHandler(&PaymentHandler{
		SavedCardRepo: savedCardRepo,
		ErrHandler:    newTestErrorHandler(),
	})

	req := authenticatedRequest(http.MethodGet, "/payments/cards", nil)

	rec := httptest.NewRecorder()
	handler.HandleListSavedCards(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "4081")
}

func TestDeactivateCardNotOwnedReturnsNotFound(t *testing.T) {
	savedCardRepo := new(mocks.MockSavedCardRepo)
	savedCardRepo.On("Deactivate", "card_9", "user_1").Return(false, nil)

	handler := NewPaymentHandler(&PaymentHandler{
		SavedCardRepo: savedCardRepo,
		ErrHandler:    newTestErrorHandler(),
	})

	req := authenticatedRequest(http.MethodDelete, "/payments/cards/card_9", nil)
	req.SetPathValue("id", "card_9")

	rec := httptest.NewRecorder()
	handler.HandleDeactivateCard(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	savedCardRepo.AssertExpectations(t)
}

func TestDeactivateCard(t *testing.T) {
	savedCardRepo := new(mocks.MockSavedCardRepo)
	savedCardRepo.On("Deactivate", "card_1", "user_1").Return(true, nil)

	handler := NewPaymentHandler(&PaymentHandler{
		SavedCardRepo: savedCardRepo,
		ErrHandler:    newTestErrorHandler(),
	})

	req := authenticatedRequest(http.MethodDelete, "/payments/cards/card_1", nil)
	req.SetPathValue("id", "card_1")

	rec := httptest.NewRecorder()
	handler.HandleDeactivateCard(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "removed")
	savedCardRepo.AssertExpectations(t)
}
