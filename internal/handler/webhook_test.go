package handler

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/spectrumarena/arenapay/internal/errHandler"
	"github.com/spectrumarena/arenapay/internal/helper"
	"github.com/spectrumarena/arenapay/internal/mocks"
	"github.com/spectrumarena/arenapay/internal/repository"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "sk_test_secret"

func signWebhookBody(body []byte) string {
	mac := hmac.New(sha512.New, []byte(testWebhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func newTestWebhookHandler(db *mocks.MockDatabase) *WebhookHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errorHandler := errHandler.New("", "http://localhost", &mocks.MockMailer{}, logger)

	return NewWebhookHandler(&WebhookHandler{
		DB:                db,
		Helper:            helper.New(nil, &sync.WaitGroup{}, errorHandler),
		ErrHandler:        errorHandler,
		Logger:            logger,
		PaystackSecretKey: testWebhookSecret,
	})
}

func postWebhook(t *testing.T, handler *WebhookHandler, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/paystack", bytes.NewReader(body))
	req.Header.Set("X-Paystack-Signature", signature)

	rec := httptest.NewRecorder()
	handler.HandlePaystackWebhook(rec, req)

	return rec
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	handler := newTestWebhookHandler(&mocks.MockDatabase{})

	body := []byte(`{"event":"charge.success"}`)

	rec := postWebhook(t, handler, body, "deadbeef")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postWebhook(t, handler, body, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookAcknowledgesIgnoredEvents(t *testing.T) {
	handler := newTestWebhookHandler(&mocks.MockDatabase{})

	body := []byte(`{"event":"transfer.success","data":{}}`)

	rec := postWebhook(t, handler, body, signWebhookBody(body))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhookAcknowledgesUnknownMetadata(t *testing.T) {
	handler := newTestWebhookHandler(&mocks.MockDatabase{})

	// charge.success with a metadata shape we do not recognize must be
	// acknowledged so the gateway stops redelivering it.
	body := []byte(`{
		"event": "charge.success",
		"data": {"reference": "ref_1", "amount": 1000, "metadata": {"payment_type": "airtime"}}
	}`)

	rec := postWebhook(t, handler, body, signWebhookBody(body))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhookAcknowledgesDuplicateReference(t *testing.T) {
	receiptRepo := new(mocks.MockPaystackTransactionRepo)
	receiptRepo.On("ExistsByReference", "ref_1").Return(true, nil)

	handler := newTestWebhookHandler(&mocks.MockDatabase{
		PaystackTransactionRepo: receiptRepo,
	})

	body := []byte(`{
		"event": "charge.success",
		"data": {"reference": "ref_1", "amount": 500000, "metadata": {"payment_type": "wallet", "user_id": "user_1"}}
	}`)

	rec := postWebhook(t, handler, body, signWebhookBody(body))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "already processed")

	// No balance was touched: the receipt check short-circuits before
	// any transaction is opened.
	receiptRepo.AssertExpectations(t)
	receiptRepo.AssertNotCalled(t, "Insert")
}

func TestWebhookAcknowledgesUnknownUser(t *testing.T) {
	receiptRepo := new(mocks.MockPaystackTransactionRepo)
	receiptRepo.On("ExistsByReference", "ref_2").Return(false, nil)

	userRepo := new(mocks.MockUserRepo)
	userRepo.On("GetByEmail", "ghost@example.com").Return(nil, false, nil)

	handler := newTestWebhookHandler(&mocks.MockDatabase{
		PaystackTransactionRepo: receiptRepo,
		UserRepo:                userRepo,
	})

	body := []byte(`{
		"event": "charge.success",
		"data": {"reference": "ref_2", "amount": 500000, "customer": {"email": "ghost@example.com"}, "metadata": {"payment_type": "wallet", "user_id": "user_9"}}
	}`)

	rec := postWebhook(t, handler, body, signWebhookBody(body))
	require.Equal(t, http.StatusOK, rec.Code)

	userRepo.AssertExpectations(t)
	receiptRepo.AssertNotCalled(t, "Insert")
}

func TestWebhookIgnoresCrossAccountMetadata(t *testing.T) {
	receiptRepo := new(mocks.MockPaystackTransactionRepo)
	receiptRepo.On("ExistsByReference", "ref_3").Return(false, nil)

	// The charge was initialized for user_a but the settled customer
	// resolves to user_b. Nobody gets credited; the handler would panic
	// on MockDatabase.BeginTx if it tried.
	userRepo := new(mocks.MockUserRepo)
	userRepo.On("GetByEmail", "b@example.com").Return(&repository.User{
		ID:    "user_b",
		Email: "b@example.com",
	}, true, nil)

	handler := newTestWebhookHandler(&mocks.MockDatabase{
		PaystackTransactionRepo: receiptRepo,
		UserRepo:                userRepo,
	})

	body := []byte(`{
		"event": "charge.success",
		"data": {"reference": "ref_3", "amount": 500000, "customer": {"email": "b@example.com"}, "metadata": {"payment_type": "savings", "user_id": "user_a", "savings_id": "plan_1"}}
	}`)

	rec := postWebhook(t, handler, body, signWebhookBody(body))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "ignored")

	userRepo.AssertExpectations(t)
	receiptRepo.AssertNotCalled(t, "Insert")
}
