package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

type SavedCard struct {
	ID                string       `db:"id"`
	UserID            string       `db:"user_id"`
	AuthorizationCode string       `db:"authorization_code"`
	CardType          string       `db:"card_type"`
	Last4             string       `db:"last4"`
	ExpMonth          string       `db:"exp_month"`
	ExpYear           string       `db:"exp_year"`
	Bank              string       `db:"bank"`
	Reusable          bool         `db:"reusable"`
	IsActive          bool         `db:"is_active"`
	CreatedAt         time.Time    `db:"created_at"`
	UpdatedAt         sql.NullTime `db:"updated_at"`
}

type SavedCardRepository interface {
	Upsert(ctx context.Context, tx *sqlx.Tx, card *SavedCard) error
	GetActiveByUserId(userID string) (*SavedCard, bool, error)
	GetAllByUserId(userID string) ([]SavedCard, bool, error)
	Deactivate(id, userID string) (bool, error)
}

type SavedCardRepositoryImpl struct {
	db *sqlx.DB
}

func NewSavedCardRepository(db *sqlx.DB) SavedCardRepository {
	return &SavedCardRepositoryImpl{db: db}
}

// Upsert keeps one row per gateway authorization code. Re-delivered
// webhooks carrying the same authorization are a no-op.
func (repo *SavedCardRepositoryImpl) Upsert(ctx context.Context, tx *sqlx.Tx, card *SavedCard) error {
	query := `
		INSERT INTO saved_cards (user_id, authorization_code, card_type, last4, exp_month, exp_year, bank, reusable, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (authorization_code) DO NOTHING`

	_, err := tx.ExecContext(ctx, query,
		card.UserID,
		card.AuthorizationCode,
		card.CardType,
		card.Last4,
		card.ExpMonth,
		card.ExpYear,
		card.Bank,
		card.Reusable,
		card.IsActive,
	)
	return err
}

func (repo *SavedCardRepositoryImpl) GetActiveByUserId(userID string) (*SavedCard, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var card SavedCard

	query := `
        SELECT id, user_id, authorization_code, card_type, last4, exp_month, exp_year, bank, reusable, is_active, created_at
        FROM saved_cards
        WHERE user_id=$1 AND reusable=TRUE AND is_active=TRUE
        ORDER BY created_at DESC
        LIMIT 1`

	err := repo.db.GetContext(ctx, &card, query, userID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &card, true, nil
}

func (repo *SavedCardRepositoryImpl) GetAllByUserId(userID string) ([]SavedCard, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var cards []SavedCard

	query := `
        SELECT id, user_id, authorization_code, card_type, last4, exp_month, exp_year, bank, reusable, is_active, created_at
        FROM saved_cards
        WHERE user_id=$1 AND reusable=TRUE AND is_active=TRUE
        ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &cards, query, userID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return cards, len(cards) > 0, nil
}

// Deactivate is scoped to the owning user so one account can never
// remove another account's card. Returns false when no matching row
// was updated.
func (repo *SavedCardRepositoryImpl) Deactivate(id, userID string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE saved_cards SET is_active=FALSE, updated_at=NOW() WHERE id=$1 AND user_id=$2 AND is_active=TRUE`

	result, err := repo.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
