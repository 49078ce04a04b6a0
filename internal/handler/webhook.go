package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/spectrumarena/arenapay/internal/errHandler"
	"github.com/spectrumarena/arenapay/internal/helper"
	"github.com/spectrumarena/arenapay/internal/paystack"
	"github.com/spectrumarena/arenapay/internal/repository"
	"github.com/spectrumarena/arenapay/internal/response"
	"github.com/spectrumarena/arenapay/internal/service"
	"github.com/spectrumarena/arenapay/internal/stream"
)

type WebhookHandler struct {
	DB                repository.Database
	WalletService     *service.WalletService
	Engine            *service.SavingsEngine
	Kafka             *stream.KafkaStream
	Helper            *helper.HelperRepository
	ErrHandler        *errHandler.ErrorRepository
	Logger            *slog.Logger
	PaystackSecretKey string
}

func NewWebhookHandler(handler *WebhookHandler) *WebhookHandler {
	return &WebhookHandler{
		DB:                handler.DB,
		WalletService:     handler.WalletService,
		Engine:            handler.Engine,
		Kafka:             handler.Kafka,
		Helper:            handler.Helper,
		ErrHandler:        handler.ErrHandler,
		Logger:            handler.Logger,
		PaystackSecretKey: handler.PaystackSecretKey,
	}
}

// HandlePaystackWebhook is the only code path that credits balances
// from gateway money. The reference unique constraint makes redelivery
// harmless: the first event wins, every duplicate is acknowledged
// without a second credit. Events we cannot act on are acknowledged
// with 200 so the gateway stops retrying; only transient failures get
// a 5xx.
func (h *WebhookHandler) HandlePaystackWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1_048_576))
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	if !paystack.VerifySignature(h.PaystackSecretKey, body, r.Header.Get(paystack.SignatureHeader)) {
		h.ErrHandler.InvalidAuthenticationToken(w, r)
		return
	}

	event, err := paystack.ParseEvent(body)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	if event.Event != paystack.EventChargeSuccess {
		h.acknowledge(w, r, "Event ignored")
		return
	}

	funding, err := event.Data.Metadata.Funding()
	if err != nil {
		h.Logger.Warn("webhook with unrecognized metadata",
			"reference", event.Data.Reference,
			"error", err.Error(),
		)
		h.acknowledge(w, r, "Event ignored")
		return
	}

	exists, err := h.DB.PaystackTransaction().ExistsByReference(event.Data.Reference)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if exists {
		h.acknowledge(w, r, "Event already processed")
		return
	}

	user, found, err := h.DB.User().GetByEmail(event.Data.Customer.Email)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.Logger.Warn("webhook for unknown customer",
			"reference", event.Data.Reference,
			"email", event.Data.Customer.Email,
		)
		h.acknowledge(w, r, "Event ignored")
		return
	}

	// The settled customer and the charge metadata must name the same
	// account. When they disagree neither wallet can safely be
	// credited, so the event is parked for manual reconciliation.
	if funding.OwnerID() != user.ID {
		h.Logger.Warn("webhook customer does not match charge metadata",
			"reference", event.Data.Reference,
			"metadata_user_id", funding.OwnerID(),
			"customer_user_id", user.ID,
		)
		h.acknowledge(w, r, "Event ignored")
		return
	}

	amount := event.Data.AmountMajor()

	tx, err := h.DB.BeginTx(r.Context(), nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	defer tx.Rollback()

	// The receipt insert is the dedup commit point: a concurrent
	// delivery of the same reference fails here and is acknowledged.
	receipt := &repository.PaystackTransaction{
		UserID:      sql.NullString{String: user.ID, Valid: true},
		Reference:   event.Data.Reference,
		Amount:      amount,
		PaymentType: event.Data.Metadata.PaymentType,
		Status:      repository.PaystackTransactionStatusSuccess,
		RawPayload:  body,
	}

	_, err = h.DB.PaystackTransaction().Insert(r.Context(), tx, receipt)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateReference) {
			h.acknowledge(w, r, "Event already processed")
			return
		}
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if auth := event.Data.Authorization; auth != nil && auth.Reusable {
		card := &repository.SavedCard{
			UserID:            user.ID,
			AuthorizationCode: auth.AuthorizationCode,
			CardType:          auth.CardType,
			Last4:             auth.Last4,
			ExpMonth:          auth.ExpMonth,
			ExpYear:           auth.ExpYear,
			Bank:              auth.Bank,
			Reusable:          auth.Reusable,
			IsActive:          true,
		}

		err = h.DB.SavedCard().Upsert(r.Context(), tx, card)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}
	}

	wallet, found, err := h.DB.Wallet().GetByUserIdForUpdate(r.Context(), tx, user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found {
		// First settlement for an account provisions its wallet.
		walletID, err := h.WalletService.CreateWallet(user.ID, tx)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}

		wallet, found, err = h.DB.Wallet().GetOneForUpdate(r.Context(), tx, walletID)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}
		if !found {
			h.ErrHandler.ServerError(w, r, service.ErrWalletNotFound)
			return
		}
	}

	switch target := funding.(type) {
	case paystack.WalletFunding:
		err = h.WalletService.CreditTx(r.Context(), tx, wallet, amount, "Wallet funding via card payment")
	case paystack.SavingsFunding:
		err = h.Engine.FundFromGateway(r.Context(), tx, wallet, target.SavingsID, amount)
		if errors.Is(err, service.ErrPlanNotFound) || errors.Is(err, service.ErrPlanOwnerMismatch) {
			// Money already left the customer's card, so a stale or
			// foreign plan id lands the funds in the customer's own
			// wallet instead of nowhere.
			h.Logger.Warn("savings funding not applicable to plan, crediting wallet instead",
				"reference", event.Data.Reference,
				"plan_id", target.SavingsID,
				"error", err.Error(),
			)
			err = h.WalletService.CreditTx(r.Context(), tx, wallet, amount, "Savings funding redirected to wallet")
		}
	}
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	err = tx.Commit()
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	settled := stream.PaymentSettledEvent{
		Reference:   event.Data.Reference,
		Email:       user.Email,
		Amount:      amount,
		PaymentType: event.Data.Metadata.PaymentType,
	}

	h.Helper.BackgroundTask(r, func() error {
		payload, err := json.Marshal(settled)
		if err != nil {
			return err
		}

		return h.Kafka.ProduceMessage(stream.PaymentSettledTopic, string(payload))
	})

	h.acknowledge(w, r, "Event processed")
}

func (h *WebhookHandler) acknowledge(w http.ResponseWriter, r *http.Request, message string) {
	err := response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
