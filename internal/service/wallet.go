package service

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/spectrumarena/arenapay/internal/repository"
)

// WalletService owns every mutation of wallet balances. The four
// primitives (credit, lock, unlock, debit) each run against a wallet
// row that the caller has already read FOR UPDATE inside tx, and write
// an audit row in the same transaction, so a commit is always balance
// change plus trail or neither.
type WalletService struct {
	wallets      repository.WalletRepository
	transactions repository.WalletTransactionRepository
	logger       *slog.Logger
}

func NewWalletService(db repository.Database, logger *slog.Logger) *WalletService {
	return &WalletService{
		wallets:      db.Wallet(),
		transactions: db.WalletTransaction(),
		logger:       logger,
	}
}

// CreateWallet is an idempotent wallet creator, called when a user
// account is verified. Safe to call multiple times for the same user.
func (s *WalletService) CreateWallet(userID string, tx *sqlx.Tx) (string, error) {
	return s.wallets.Insert(&repository.Wallet{UserID: userID}, tx)
}

// CreditTx increases the spendable balance.
func (s *WalletService) CreditTx(ctx context.Context, tx *sqlx.Tx, wallet *repository.Wallet, amount decimal.Decimal, note string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	wallet.Balance = wallet.Balance.Add(amount)

	return s.persist(ctx, tx, wallet, repository.WalletTransactionTypeCredit, amount, note)
}

// CreditLockedTx increases the locked balance directly, bypassing the
// spendable balance. Used when settled gateway payments fund a locked
// savings plan and when accrued interest grows the locked pot.
func (s *WalletService) CreditLockedTx(ctx context.Context, tx *sqlx.Tx, wallet *repository.Wallet, amount decimal.Decimal, note string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	wallet.LockedBalance = wallet.LockedBalance.Add(amount)

	return s.persist(ctx, tx, wallet, repository.WalletTransactionTypeLockedCredit, amount, note)
}

// LockTx moves funds from the spendable balance into the locked balance.
func (s *WalletService) LockTx(ctx context.Context, tx *sqlx.Tx, wallet *repository.Wallet, amount decimal.Decimal, note string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if wallet.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}

	wallet.Balance = wallet.Balance.Sub(amount)
	wallet.LockedBalance = wallet.LockedBalance.Add(amount)

	return s.persist(ctx, tx, wallet, repository.WalletTransactionTypeLock, amount, note)
}

// UnlockTx moves funds from the locked balance back into the spendable
// balance. A locked balance smaller than the release amount means the
// ledger and the savings plans disagree about how much is under lock,
// which is a bug, so the caller gets ErrInvariantBroken rather than a
// user error.
func (s *WalletService) UnlockTx(ctx context.Context, tx *sqlx.Tx, wallet *repository.Wallet, amount decimal.Decimal, note string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if wallet.LockedBalance.LessThan(amount) {
		s.logger.Error("locked balance below release amount",
			"wallet_id", wallet.ID,
			"locked_balance", wallet.LockedBalance.String(),
			"release_amount", amount.String(),
		)
		return ErrInvariantBroken
	}

	wallet.LockedBalance = wallet.LockedBalance.Sub(amount)
	wallet.Balance = wallet.Balance.Add(amount)

	return s.persist(ctx, tx, wallet, repository.WalletTransactionTypeUnlock, amount, note)
}

// DebitTx decreases the spendable balance.
func (s *WalletService) DebitTx(ctx context.Context, tx *sqlx.Tx, wallet *repository.Wallet, amount decimal.Decimal, note string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if wallet.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}

	wallet.Balance = wallet.Balance.Sub(amount)

	return s.persist(ctx, tx, wallet, repository.WalletTransactionTypeDebit, amount, note)
}

func (s *WalletService) persist(ctx context.Context, tx *sqlx.Tx, wallet *repository.Wallet, transactionType string, amount decimal.Decimal, note string) error {
	if wallet.Balance.IsNegative() || wallet.LockedBalance.IsNegative() {
		s.logger.Error("wallet balance would go negative",
			"wallet_id", wallet.ID,
			"balance", wallet.Balance.String(),
			"locked_balance", wallet.LockedBalance.String(),
		)
		return ErrInvariantBroken
	}

	err := s.wallets.UpdateBalances(ctx, tx, wallet)
	if err != nil {
		return err
	}

	_, err = s.transactions.Insert(ctx, tx, &repository.WalletTransaction{
		WalletID: wallet.ID,
		Type:     transactionType,
		Amount:   amount,
		Note:     note,
	})
	return err
}
