package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type Wallet struct {
	ID            string          `db:"id"`
	UserID        string          `db:"user_id"`
	Balance       decimal.Decimal `db:"balance"`
	LockedBalance decimal.Decimal `db:"locked_balance"`
	Currency      string          `db:"currency"`
	Status        string          `db:"status"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     sql.NullTime    `db:"updated_at"`
	DeletedAt     sql.NullTime    `db:"deleted_at"`
}

type WalletRepository interface {
	Insert(wallet *Wallet, tx *sqlx.Tx) (string, error)
	GetOne(id string) (*Wallet, bool, error)
	GetByUserId(userID string) (*Wallet, bool, error)
	GetOneForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*Wallet, bool, error)
	GetByUserIdForUpdate(ctx context.Context, tx *sqlx.Tx, userID string) (*Wallet, bool, error)
	UpdateBalances(ctx context.Context, tx *sqlx.Tx, wallet *Wallet) error
}

type WalletRepositoryImpl struct {
	db *sqlx.DB
}

func NewWalletRepository(db *sqlx.DB) WalletRepository {
	return &WalletRepositoryImpl{db: db}
}

func (repo *WalletRepositoryImpl) Insert(wallet *Wallet, tx *sqlx.Tx) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string

	query := `
		INSERT INTO wallets (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id`
	if tx != nil {
		err := tx.QueryRowContext(ctx, query,
			wallet.UserID,
		).Scan(&id)
		if err != nil {
			return "", err
		}
	} else {
		err := repo.db.GetContext(ctx, &id, query,
			wallet.UserID,
		)

		if err != nil {
			return "", err
		}
	}

	return id, nil
}

func (repo *WalletRepositoryImpl) GetOne(id string) (*Wallet, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var wallet Wallet

	query := `
        SELECT id, user_id, balance, locked_balance, currency, status, created_at FROM wallets WHERE id=$1 AND deleted_at IS NULL`

	err := repo.db.GetContext(ctx, &wallet, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &wallet, true, nil
}

func (repo *WalletRepositoryImpl) GetByUserId(userID string) (*Wallet, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var wallet Wallet

	query := `
        SELECT id, user_id, balance, locked_balance, currency, status, created_at FROM wallets WHERE user_id=$1 AND deleted_at IS NULL`

	err := repo.db.GetContext(ctx, &wallet, query, userID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &wallet, true, nil
}

// GetOneForUpdate takes an exclusive row lock on the wallet for the
// duration of the surrounding transaction. Every balance mutation must
// read the row through this method first.
func (repo *WalletRepositoryImpl) GetOneForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*Wallet, bool, error) {
	var wallet Wallet

	query := `
        SELECT id, user_id, balance, locked_balance, currency, status, created_at FROM wallets WHERE id=$1 AND deleted_at IS NULL FOR UPDATE`

	err := tx.GetContext(ctx, &wallet, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &wallet, true, nil
}

func (repo *WalletRepositoryImpl) GetByUserIdForUpdate(ctx context.Context, tx *sqlx.Tx, userID string) (*Wallet, bool, error) {
	var wallet Wallet

	query := `
        SELECT id, user_id, balance, locked_balance, currency, status, created_at FROM wallets WHERE user_id=$1 AND deleted_at IS NULL FOR UPDATE`

	err := tx.GetContext(ctx, &wallet, query, userID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &wallet, true, nil
}

func (repo *WalletRepositoryImpl) UpdateBalances(ctx context.Context, tx *sqlx.Tx, wallet *Wallet) error {
	query := `
		UPDATE wallets SET balance=$1, locked_balance=$2, updated_at=NOW() WHERE id=$3 AND deleted_at IS NULL`

	_, err := tx.ExecContext(ctx, query, wallet.Balance, wallet.LockedBalance, wallet.ID)
	return err
}
