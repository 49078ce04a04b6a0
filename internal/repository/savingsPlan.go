package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type SavingsPlan struct {
	ID                  string              `db:"id"`
	UserID              string              `db:"user_id"`
	WalletID            string              `db:"wallet_id"`
	PlanType            string              `db:"plan_type"`
	Amount              decimal.Decimal     `db:"amount"`
	Status              string              `db:"status"`
	LockedAt            time.Time           `db:"locked_at"`
	LockedUntil         time.Time           `db:"locked_until"`
	UnlockedAt          sql.NullTime        `db:"unlocked_at"`
	BrokenAt            sql.NullTime        `db:"broken_at"`
	PenaltyAmount       decimal.Decimal     `db:"penalty_amount"`
	InterestRate        decimal.Decimal     `db:"interest_rate"`
	InterestEarned      decimal.Decimal     `db:"interest_earned"`
	LastInterestApplied time.Time           `db:"last_interest_applied"`
	TargetAmount        decimal.NullDecimal `db:"target_amount"`
	GoalCompleted       bool                `db:"goal_completed"`
	CreatedAt           time.Time           `db:"created_at"`
	UpdatedAt           sql.NullTime        `db:"updated_at"`
}

const (
	SavingsPlanTypeSavings = "SAVINGS"
	SavingsPlanTypeThrift  = "THRIFT"

	// Plan statuses. Locked is the only non-terminal state:
	// a plan leaves it through maturity (unlocked) or an early
	// break (broken), never the other way around.
	SavingsPlanStatusLocked   = "locked"
	SavingsPlanStatusUnlocked = "unlocked"
	SavingsPlanStatusBroken   = "broken"
)

type SavingsPlanRepository interface {
	Insert(ctx context.Context, tx *sqlx.Tx, plan *SavingsPlan) (string, error)
	GetOne(id string) (*SavingsPlan, bool, error)
	GetOneForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*SavingsPlan, bool, error)
	GetAllByUserId(userID string) ([]SavingsPlan, bool, error)
	Update(ctx context.Context, tx *sqlx.Tx, plan *SavingsPlan) error
	DueForUnlock(now time.Time, limit int) ([]string, error)
}

type SavingsPlanRepositoryImpl struct {
	db *sqlx.DB
}

func NewSavingsPlanRepository(db *sqlx.DB) SavingsPlanRepository {
	return &SavingsPlanRepositoryImpl{db: db}
}

const savingsPlanColumns = `id, user_id, wallet_id, plan_type, amount, status, locked_at, locked_until,
		unlocked_at, broken_at, penalty_amount, interest_rate, interest_earned,
		last_interest_applied, target_amount, goal_completed, created_at, updated_at`

func (repo *SavingsPlanRepositoryImpl) Insert(ctx context.Context, tx *sqlx.Tx, plan *SavingsPlan) (string, error) {
	var id string

	query := `
		INSERT INTO savings_plans (user_id, wallet_id, plan_type, amount, locked_until, interest_rate, target_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := tx.QueryRowContext(ctx, query,
		plan.UserID,
		plan.WalletID,
		plan.PlanType,
		plan.Amount,
		plan.LockedUntil,
		plan.InterestRate,
		plan.TargetAmount,
	).Scan(&id)
	if err != nil {
		return "", err
	}

	return id, nil
}

func (repo *SavingsPlanRepositoryImpl) GetOne(id string) (*SavingsPlan, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var plan SavingsPlan

	query := `SELECT ` + savingsPlanColumns + ` FROM savings_plans WHERE id=$1`

	err := repo.db.GetContext(ctx, &plan, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &plan, true, nil
}

func (repo *SavingsPlanRepositoryImpl) GetOneForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*SavingsPlan, bool, error) {
	var plan SavingsPlan

	query := `SELECT ` + savingsPlanColumns + ` FROM savings_plans WHERE id=$1 FOR UPDATE`

	err := tx.GetContext(ctx, &plan, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &plan, true, nil
}

func (repo *SavingsPlanRepositoryImpl) GetAllByUserId(userID string) ([]SavingsPlan, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var plans []SavingsPlan

	query := `SELECT ` + savingsPlanColumns + ` FROM savings_plans WHERE user_id=$1 ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &plans, query, userID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return plans, len(plans) > 0, nil
}

func (repo *SavingsPlanRepositoryImpl) Update(ctx context.Context, tx *sqlx.Tx, plan *SavingsPlan) error {
	query := `
		UPDATE savings_plans SET
			amount=$1, status=$2, unlocked_at=$3, broken_at=$4, penalty_amount=$5,
			interest_earned=$6, last_interest_applied=$7, goal_completed=$8, updated_at=NOW()
		WHERE id=$9`

	_, err := tx.ExecContext(ctx, query,
		plan.Amount,
		plan.Status,
		plan.UnlockedAt,
		plan.BrokenAt,
		plan.PenaltyAmount,
		plan.InterestEarned,
		plan.LastInterestApplied,
		plan.GoalCompleted,
		plan.ID,
	)
	return err
}

// DueForUnlock returns ids of locked plans whose maturity has passed.
// The scheduler polls this instead of keeping a separate job table;
// the plan row itself is the schedule entry.
func (repo *SavingsPlanRepositoryImpl) DueForUnlock(now time.Time, limit int) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var ids []string

	query := `
		SELECT id FROM savings_plans
		WHERE status=$1 AND locked_until <= $2
		ORDER BY locked_until
		LIMIT $3`

	err := repo.db.SelectContext(ctx, &ids, query, SavingsPlanStatusLocked, now, limit)
	if err != nil {
		return nil, err
	}

	return ids, nil
}
