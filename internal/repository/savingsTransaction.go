package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type SavingsTransaction struct {
	ID            string          `db:"id"`
	SavingsPlanID string          `db:"savings_plan_id"`
	Type          string          `db:"type"`
	Amount        decimal.Decimal `db:"amount"`
	Note          string          `db:"note"`
	CreatedAt     time.Time       `db:"created_at"`
}

// define possible savings transaction types
const (
	SavingsTransactionTypeDeposit    = "deposit"
	SavingsTransactionTypeWithdrawal = "withdrawal"
	SavingsTransactionTypeRelease    = "release"
)

type SavingsTransactionRepository interface {
	Insert(ctx context.Context, tx *sqlx.Tx, transaction *SavingsTransaction) (string, error)
	GetAllByPlanId(planID string) ([]SavingsTransaction, bool, error)
	CountByPlanIdAndType(planID, transactionType string) (int, error)
}

type SavingsTransactionRepositoryImpl struct {
	db *sqlx.DB
}

func NewSavingsTransactionRepository(db *sqlx.DB) SavingsTransactionRepository {
	return &SavingsTransactionRepositoryImpl{db: db}
}

func (repo *SavingsTransactionRepositoryImpl) Insert(ctx context.Context, tx *sqlx.Tx, transaction *SavingsTransaction) (string, error) {
	var id string

	query := `
		INSERT INTO savings_transactions (savings_plan_id, type, amount, note)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := tx.QueryRowContext(ctx, query,
		transaction.SavingsPlanID,
		transaction.Type,
		transaction.Amount,
		transaction.Note,
	).Scan(&id)
	if err != nil {
		return "", err
	}

	return id, nil
}

func (repo *SavingsTransactionRepositoryImpl) GetAllByPlanId(planID string) ([]SavingsTransaction, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var transactions []SavingsTransaction

	query := `
        SELECT id, savings_plan_id, type, amount, note, created_at FROM savings_transactions
        WHERE savings_plan_id=$1
        ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &transactions, query, planID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return transactions, len(transactions) > 0, nil
}

func (repo *SavingsTransactionRepositoryImpl) CountByPlanIdAndType(planID, transactionType string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var count int

	query := `SELECT COUNT(*) FROM savings_transactions WHERE savings_plan_id=$1 AND type=$2`

	err := repo.db.GetContext(ctx, &count, query, planID, transactionType)
	if err != nil {
		return 0, err
	}

	return count, nil
}
