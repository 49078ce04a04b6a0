package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/spectrumarena/arenapay/internal/context"
	"github.com/spectrumarena/arenapay/internal/errHandler"
	"github.com/spectrumarena/arenapay/internal/paystack"
	"github.com/spectrumarena/arenapay/internal/repository"
	"github.com/spectrumarena/arenapay/internal/request"
	"github.com/spectrumarena/arenapay/internal/response"
	"github.com/spectrumarena/arenapay/internal/validator"
)

const idempotencyKeyHeader = "Idempotency-Key"

type PaymentHandler struct {
	Paystack           *paystack.Client
	IdempotencyKeyRepo repository.IdempotencyKeyRepository
	SavedCardRepo      repository.SavedCardRepository
	PlanRepo           repository.SavingsPlanRepository
	ErrHandler         *errHandler.ErrorRepository
}

func NewPaymentHandler(handler *PaymentHandler) *PaymentHandler {
	return &PaymentHandler{
		Paystack:           handler.Paystack,
		IdempotencyKeyRepo: handler.IdempotencyKeyRepo,
		SavedCardRepo:      handler.SavedCardRepo,
		PlanRepo:           handler.PlanRepo,
		ErrHandler:         handler.ErrHandler,
	}
}

// toMinorUnit converts a naira amount to kobo for the gateway.
func toMinorUnit(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}

// HandleInitWalletFunding starts a checkout session for a wallet
// top-up. No balance changes here; crediting happens only when the
// gateway's webhook confirms settlement.
func (h *PaymentHandler) HandleInitWalletFunding(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	var input struct {
		Amount    decimal.Decimal     `json:"amount"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(input.Amount.GreaterThan(decimal.Zero), "Amount must be greater than zero")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	metadata := paystack.Metadata{
		PaymentType: paystack.PaymentTypeWallet,
		UserID:      user.ID,
	}

	result, err := h.Paystack.Initialize(r.Context(), user.Email, toMinorUnit(input.Amount), metadata)
	if err != nil {
		if errors.Is(err, paystack.ErrGateway) {
			h.ErrHandler.BadGateway(w, r, err)
			return
		}
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Payment initialized successfully"

	data := map[string]string{
		"authorization_url": result.AuthorizationURL,
		"reference":         result.Reference,
	}
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleInitSavingsFunding starts a checkout session that tops up an
// existing savings plan directly, bypassing the spendable balance.
func (h *PaymentHandler) HandleInitSavingsFunding(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	planID := r.PathValue("id")

	var input struct {
		Amount    decimal.Decimal     `json:"amount"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(input.Amount.GreaterThan(decimal.Zero), "Amount must be greater than zero")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	plan, found, err := h.PlanRepo.GetOne(planID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found || plan.UserID != user.ID {
		response.JSONErrorResponse(w, nil, ErrPlanNotFound.Error(), http.StatusNotFound, nil)
		return
	}

	metadata := paystack.Metadata{
		PaymentType: paystack.PaymentTypeSavings,
		UserID:      user.ID,
		SavingsID:   plan.ID,
	}

	result, err := h.Paystack.Initialize(r.Context(), user.Email, toMinorUnit(input.Amount), metadata)
	if err != nil {
		if errors.Is(err, paystack.ErrGateway) {
			h.ErrHandler.BadGateway(w, r, err)
			return
		}
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Payment initialized successfully"

	data := map[string]string{
		"authorization_url": result.AuthorizationURL,
		"reference":         result.Reference,
	}
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleChargeSavedCard charges the caller's active saved card without
// a redirect. The Idempotency-Key header is required: retries with the
// same key replay the stored gateway response instead of charging the
// card again.
func (h *PaymentHandler) HandleChargeSavedCard(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	const endpoint = "payments/charge-card"

	idempotencyKey := r.Header.Get(idempotencyKeyHeader)
	if idempotencyKey == "" {
		response.JSONErrorResponse(w, nil, ErrIdempotencyKeyRequired.Error(), http.StatusBadRequest, nil)
		return
	}

	var input struct {
		Amount    decimal.Decimal     `json:"amount"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(input.Amount.GreaterThan(decimal.Zero), "Amount must be greater than zero")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	existing, found, err := h.IdempotencyKeyRepo.Find(user.ID, idempotencyKey, endpoint)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if found {
		h.replayStoredResponse(w, r, existing)
		return
	}

	card, found, err := h.SavedCardRepo.GetActiveByUserId(user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found {
		response.JSONErrorResponse(w, nil, ErrNoSavedCard.Error(), http.StatusUnprocessableEntity, nil)
		return
	}

	metadata := paystack.Metadata{
		PaymentType: paystack.PaymentTypeWallet,
		UserID:      user.ID,
	}

	result, err := h.Paystack.ChargeAuthorization(r.Context(), user.Email, toMinorUnit(input.Amount), card.AuthorizationCode, metadata)
	if err != nil {
		if errors.Is(err, paystack.ErrGateway) {
			h.ErrHandler.BadGateway(w, r, err)
			return
		}
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	// Failed charge outcomes are stored too so a retry under the same
	// key replays the verdict instead of charging the card twice.
	storedResponse, err := json.Marshal(result)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	record := &repository.IdempotencyKey{
		UserID:   user.ID,
		Key:      idempotencyKey,
		Endpoint: endpoint,
		Response: storedResponse,
	}

	stored, replayed, err := h.IdempotencyKeyRepo.Insert(record)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if replayed {
		h.replayStoredResponse(w, r, stored)
		return
	}

	message := "Charge submitted successfully"

	data := map[string]string{
		"status":    result.Status,
		"reference": result.Reference,
	}
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *PaymentHandler) replayStoredResponse(w http.ResponseWriter, r *http.Request, record *repository.IdempotencyKey) {
	var result paystack.ChargeResult
	err := json.Unmarshal(record.Response, &result)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Charge already processed"

	data := map[string]string{
		"status":    result.Status,
		"reference": result.Reference,
	}
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *PaymentHandler) HandleListSavedCards(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	cards, found, err := h.SavedCardRepo.GetAllByUserId(user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	type cardData struct {
		ID       string `json:"id"`
		CardType string `json:"card_type"`
		Last4    string `json:"last4"`
		ExpMonth string `json:"exp_month"`
		ExpYear  string `json:"exp_year"`
		Bank     string `json:"bank"`
		IsActive bool   `json:"is_active"`
	}

	if !found {
		message := "No saved cards found"
		err = response.JSONOkResponse(w, []cardData{}, message, nil)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
		}
		return
	}

	data := make([]cardData, len(cards))
	for i, card := range cards {
		data[i] = cardData{
			ID:       card.ID,
			CardType: card.CardType,
			Last4:    card.Last4,
			ExpMonth: card.ExpMonth,
			ExpYear:  card.ExpYear,
			Bank:     card.Bank,
			IsActive: card.IsActive,
		}
	}

	message := "Saved cards retrieved successfully"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleDeactivateCard removes a saved card from future charges. The
// gateway authorization stays on record; only is_active flips, so the
// audit trail keeps the card's history.
func (h *PaymentHandler) HandleDeactivateCard(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	cardID := r.PathValue("id")

	deactivated, err := h.SavedCardRepo.Deactivate(cardID, user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !deactivated {
		response.JSONErrorResponse(w, nil, ErrNoSavedCard.Error(), http.StatusNotFound, nil)
		return
	}

	message := "Card removed successfully"
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
