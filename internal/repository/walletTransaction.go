package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// WalletTransaction is the append-only audit trail for wallet balance
// changes. A row is inserted in the same database transaction as the
// balance mutation it records, and is never updated afterwards.
type WalletTransaction struct {
	ID        string          `db:"id"`
	WalletID  string          `db:"wallet_id"`
	Type      string          `db:"type"`
	Amount    decimal.Decimal `db:"amount"`
	Note      string          `db:"note"`
	CreatedAt time.Time       `db:"created_at"`
}

// define possible wallet transaction types
const (
	WalletTransactionTypeCredit = "credit"
	WalletTransactionTypeDebit  = "debit"
	WalletTransactionTypeLock   = "lock"
	WalletTransactionTypeUnlock = "unlock"

	// WalletTransactionTypeLockedCredit marks money that entered the
	// locked pot directly, either a gateway deposit into a locked plan
	// or accrued interest. Keeps locked-pot credits distinguishable
	// from spendable credits in the trail.
	WalletTransactionTypeLockedCredit = "locked_credit"
)

type WalletTransactionRepository interface {
	Insert(ctx context.Context, tx *sqlx.Tx, transaction *WalletTransaction) (string, error)
	GetAllByWalletId(walletID string, limit, offset int) ([]WalletTransaction, bool, error)
}

type WalletTransactionRepositoryImpl struct {
	db *sqlx.DB
}

func NewWalletTransactionRepository(db *sqlx.DB) WalletTransactionRepository {
	return &WalletTransactionRepositoryImpl{db: db}
}

func (repo *WalletTransactionRepositoryImpl) Insert(ctx context.Context, tx *sqlx.Tx, transaction *WalletTransaction) (string, error) {
	var id string

	query := `
		INSERT INTO wallet_transactions (wallet_id, type, amount, note)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := tx.QueryRowContext(ctx, query,
		transaction.WalletID,
		transaction.Type,
		transaction.Amount,
		transaction.Note,
	).Scan(&id)
	if err != nil {
		return "", err
	}

	return id, nil
}

func (repo *WalletTransactionRepositoryImpl) GetAllByWalletId(walletID string, limit, offset int) ([]WalletTransaction, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var transactions []WalletTransaction

	query := `
        SELECT id, wallet_id, type, amount, note, created_at FROM wallet_transactions
        WHERE wallet_id=$1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`

	err := repo.db.SelectContext(ctx, &transactions, query, walletID, limit, offset)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return transactions, len(transactions) > 0, nil
}
