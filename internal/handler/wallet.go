package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spectrumarena/arenapay/internal/context"
	"github.com/spectrumarena/arenapay/internal/errHandler"
	"github.com/spectrumarena/arenapay/internal/repository"
	"github.com/spectrumarena/arenapay/internal/response"
)

type WalletResponseData struct {
	ID            string          `json:"id"`
	Balance       decimal.Decimal `json:"balance"`
	LockedBalance decimal.Decimal `json:"locked_balance"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

type WalletTransactionResponseData struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note"`
	CreatedAt time.Time       `json:"created_at"`
}

type WalletHandler struct {
	WalletRepo            repository.WalletRepository
	WalletTransactionRepo repository.WalletTransactionRepository
	ErrHandler            *errHandler.ErrorRepository
}

func NewWalletHandler(handler *WalletHandler) *WalletHandler {
	return &WalletHandler{
		WalletRepo:            handler.WalletRepo,
		WalletTransactionRepo: handler.WalletTransactionRepo,
		ErrHandler:            handler.ErrHandler,
	}
}

func (h *WalletHandler) HandleWalletBalance(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	wallet, found, err := h.WalletRepo.GetByUserId(user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found {
		response.JSONErrorResponse(w, nil, ErrWalletNotFound.Error(), http.StatusUnprocessableEntity, nil)
		return
	}

	message := "Balance fetched successfully"

	data := map[string]any{
		"balance":        wallet.Balance,
		"locked_balance": wallet.LockedBalance,
		"currency":       wallet.Currency,
	}
	err = response.JSONOkResponse(w, data, message, nil)

	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *WalletHandler) HandleWalletDetails(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	wallet, found, err := h.WalletRepo.GetByUserId(user.ID)

	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found {
		response.JSONErrorResponse(w, nil, ErrWalletNotFound.Error(), http.StatusUnprocessableEntity, nil)
		return
	}

	message := "Wallet details fetched successfully"

	data := &WalletResponseData{
		ID:            wallet.ID,
		Balance:       wallet.Balance,
		LockedBalance: wallet.LockedBalance,
		Currency:      wallet.Currency,
		Status:        wallet.Status,
		CreatedAt:     wallet.CreatedAt,
	}
	err = response.JSONOkResponse(w, data, message, nil)

	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *WalletHandler) HandleWalletTransactions(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	queryValues := retrieveUrlQueryValues(r)

	wallet, found, err := h.WalletRepo.GetByUserId(user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found {
		response.JSONErrorResponse(w, nil, ErrWalletNotFound.Error(), http.StatusUnprocessableEntity, nil)
		return
	}

	transactions, found, err := h.WalletTransactionRepo.GetAllByWalletId(wallet.ID, queryValues.Limit, queryValues.Offset)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found {
		message := "No transactions found"
		err = response.JSONOkResponse(w, []WalletTransactionResponseData{}, message, nil)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
		}
		return
	}

	message := "Transactions retrieved successfully"

	data := make([]*WalletTransactionResponseData, len(transactions))
	for i, transaction := range transactions {
		data[i] = &WalletTransactionResponseData{
			ID:        transaction.ID,
			Type:      transaction.Type,
			Amount:    transaction.Amount,
			Note:      transaction.Note,
			CreatedAt: transaction.CreatedAt,
		}
	}

	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
