package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// ErrDuplicateReference is returned when a gateway receipt with the
// same external reference has already been recorded. Webhook handling
// treats it as "already processed", not as a failure.
var ErrDuplicateReference = errors.New("transaction reference already recorded")

// PaystackTransaction is the receipt record for a confirmed gateway
// payment. The unique constraint on reference is the primary webhook
// dedup mechanism.
type PaystackTransaction struct {
	ID          string          `db:"id"`
	UserID      sql.NullString  `db:"user_id"`
	Reference   string          `db:"reference"`
	Amount      decimal.Decimal `db:"amount"`
	PaymentType string          `db:"payment_type"`
	Status      string          `db:"status"`
	RawPayload  json.RawMessage `db:"raw_payload"`
	CreatedAt   time.Time       `db:"created_at"`
}

const (
	PaystackTransactionStatusSuccess = "success"
	PaystackTransactionStatusFailed  = "failed"
	PaystackTransactionStatusPending = "pending"
)

type PaystackTransactionRepository interface {
	ExistsByReference(reference string) (bool, error)
	Insert(ctx context.Context, tx *sqlx.Tx, transaction *PaystackTransaction) (string, error)
}

type PaystackTransactionRepositoryImpl struct {
	db *sqlx.DB
}

func NewPaystackTransactionRepository(db *sqlx.DB) PaystackTransactionRepository {
	return &PaystackTransactionRepositoryImpl{db: db}
}

func (repo *PaystackTransactionRepositoryImpl) ExistsByReference(reference string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var exists bool

	query := `SELECT EXISTS (SELECT 1 FROM paystack_transactions WHERE reference=$1)`

	err := repo.db.GetContext(ctx, &exists, query, reference)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (repo *PaystackTransactionRepositoryImpl) Insert(ctx context.Context, tx *sqlx.Tx, transaction *PaystackTransaction) (string, error) {
	var id string

	query := `
		INSERT INTO paystack_transactions (user_id, reference, amount, payment_type, status, raw_payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := tx.QueryRowContext(ctx, query,
		transaction.UserID,
		transaction.Reference,
		transaction.Amount,
		transaction.PaymentType,
		transaction.Status,
		transaction.RawPayload,
	).Scan(&id)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolationCode {
			return "", ErrDuplicateReference
		}
		return "", err
	}

	return id, nil
}
