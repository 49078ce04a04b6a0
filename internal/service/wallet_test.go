package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/spectrumarena/arenapay/internal/mocks"
	"github.com/spectrumarena/arenapay/internal/repository"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestWalletService(t *testing.T) (*WalletService, *mocks.MockWalletRepo, *mocks.MockWalletTransactionRepo) {
	t.Helper()

	walletRepo := new(mocks.MockWalletRepo)
	transactionRepo := new(mocks.MockWalletTransactionRepo)

	db := &mocks.MockDatabase{
		WalletRepo:            walletRepo,
		WalletTransactionRepo: transactionRepo,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewWalletService(db, logger), walletRepo, transactionRepo
}

func testWallet(balance, locked string) *repository.Wallet {
	return &repository.Wallet{
		ID:            "wallet_1",
		UserID:        "user_1",
		Balance:       decimal.RequireFromString(balance),
		LockedBalance: decimal.RequireFromString(locked),
	}
}

func TestCreditTxIncreasesBalance(t *testing.T) {
	service, walletRepo, transactionRepo := newTestWalletService(t)
	wallet := testWallet("100.00", "0")

	walletRepo.On("UpdateBalances", mock.Anything, mock.Anything, wallet).Return(nil)
	transactionRepo.On("Insert", mock.Anything, mock.Anything, mock.MatchedBy(func(transaction *repository.WalletTransaction) bool {
		return transaction.Type == repository.WalletTransactionTypeCredit &&
			transaction.Amount.Equal(decimal.RequireFromString("50.00"))
	})).Return("txn_1", nil)

	err := service.CreditTx(context.Background(), nil, wallet, decimal.RequireFromString("50.00"), "test credit")
	require.NoError(t, err)

	require.True(t, wallet.Balance.Equal(decimal.RequireFromString("150.00")))
	require.True(t, wallet.LockedBalance.IsZero())
	walletRepo.AssertExpectations(t)
	transactionRepo.AssertExpectations(t)
}

func TestCreditTxRejectsNonPositiveAmount(t *testing.T) {
	service, walletRepo, _ := newTestWalletService(t)
	wallet := testWallet("100.00", "0")

	err := service.CreditTx(context.Background(), nil, wallet, decimal.Zero, "test credit")
	require.ErrorIs(t, err, ErrInvalidAmount)

	err = service.CreditTx(context.Background(), nil, wallet, decimal.RequireFromString("-5"), "test credit")
	require.ErrorIs(t, err, ErrInvalidAmount)

	require.True(t, wallet.Balance.Equal(decimal.RequireFromString("100.00")))
	walletRepo.AssertNotCalled(t, "UpdateBalances", mock.Anything, mock.Anything, mock.Anything)
}

func TestLockTxMovesFundsIntoLockedBalance(t *testing.T) {
	service, walletRepo, transactionRepo := newTestWalletService(t)
	wallet := testWallet("100.00", "0")

	walletRepo.On("UpdateBalances", mock.Anything, mock.Anything, wallet).Return(nil)
	transactionRepo.On("Insert", mock.Anything, mock.Anything, mock.MatchedBy(func(transaction *repository.WalletTransaction) bool {
		return transaction.Type == repository.WalletTransactionTypeLock
	})).Return("txn_1", nil)

	err := service.LockTx(context.Background(), nil, wallet, decimal.RequireFromString("40.00"), "test lock")
	require.NoError(t, err)

	require.True(t, wallet.Balance.Equal(decimal.RequireFromString("60.00")))
	require.True(t, wallet.LockedBalance.Equal(decimal.RequireFromString("40.00")))
}

func TestLockTxInsufficientFunds(t *testing.T) {
	service, walletRepo, _ := newTestWalletService(t)
	wallet := testWallet("30.00", "0")

	err := service.LockTx(context.Background(), nil, wallet, decimal.RequireFromString("40.00"), "test lock")
	require.ErrorIs(t, err, ErrInsufficientFunds)

	require.True(t, wallet.Balance.Equal(decimal.RequireFromString("30.00")))
	require.True(t, wallet.LockedBalance.IsZero())
	walletRepo.AssertNotCalled(t, "UpdateBalances", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnlockTxRoundTripRestoresBalance(t *testing.T) {
	service, walletRepo, transactionRepo := newTestWalletService(t)
	wallet := testWallet("100.00", "0")

	walletRepo.On("UpdateBalances", mock.Anything, mock.Anything, wallet).Return(nil)
	transactionRepo.On("Insert", mock.Anything, mock.Anything, mock.Anything).Return("txn_1", nil)

	amount := decimal.RequireFromString("25.00")

	err := service.LockTx(context.Background(), nil, wallet, amount, "test lock")
	require.NoError(t, err)

	err = service.UnlockTx(context.Background(), nil, wallet, amount, "test unlock")
	require.NoError(t, err)

	require.True(t, wallet.Balance.Equal(decimal.RequireFromString("100.00")))
	require.True(t, wallet.LockedBalance.IsZero())
}

func TestUnlockTxBeyondLockedBalanceIsInvariantViolation(t *testing.T) {
	service, walletRepo, _ := newTestWalletService(t)
	wallet := testWallet("0", "10.00")

	err := service.UnlockTx(context.Background(), nil, wallet, decimal.RequireFromString("20.00"), "test unlock")
	require.ErrorIs(t, err, ErrInvariantBroken)

	require.True(t, wallet.LockedBalance.Equal(decimal.RequireFromString("10.00")))
	walletRepo.AssertNotCalled(t, "UpdateBalances", mock.Anything, mock.Anything, mock.Anything)
}

func TestDebitTxInsufficientFunds(t *testing.T) {
	service, _, _ := newTestWalletService(t)
	wallet := testWallet("5.00", "0")

	err := service.DebitTx(context.Background(), nil, wallet, decimal.RequireFromString("10.00"), "test debit")
	require.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestCreditLockedTxGrowsLockedPotOnly(t *testing.T) {
	service, walletRepo, transactionRepo := newTestWalletService(t)
	wallet := testWallet("100.00", "50.00")

	walletRepo.On("UpdateBalances", mock.Anything, mock.Anything, wallet).Return(nil)
	transactionRepo.On("Insert", mock.Anything, mock.Anything, mock.MatchedBy(func(transaction *repository.WalletTransaction) bool {
		return transaction.Type == repository.WalletTransactionTypeLockedCredit
	})).Return("txn_1", nil)

	err := service.CreditLockedTx(context.Background(), nil, wallet, decimal.RequireFromString("1.37"), "interest")
	require.NoError(t, err)

	require.True(t, wallet.Balance.Equal(decimal.RequireFromString("100.00")))
	require.True(t, wallet.LockedBalance.Equal(decimal.RequireFromString("51.37")))
	transactionRepo.AssertExpectations(t)
}

func TestCreateWalletUpsertsByUser(t *testing.T) {
	service, walletRepo, _ := newTestWalletService(t)

	walletRepo.On("Insert", mock.MatchedBy(func(wallet *repository.Wallet) bool {
		return wallet.UserID == "user_1"
	}), (*sqlx.Tx)(nil)).Return("wallet_1", nil)

	id, err := service.CreateWallet("user_1", nil)
	require.NoError(t, err)
	require.Equal(t, "wallet_1", id)

	walletRepo.AssertExpectations(t)
}
