package repository

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/spectrumarena/arenapay/assets"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/lib/pq"
)

const defaultTimeout = 3 * time.Second

// Database interface defines available repositories
type Database interface {
	User() UserRepository
	Wallet() WalletRepository
	WalletTransaction() WalletTransactionRepository
	SavingsPlan() SavingsPlanRepository
	SavingsTransaction() SavingsTransactionRepository
	IdempotencyKey() IdempotencyKeyRepository
	PaystackTransaction() PaystackTransactionRepository
	SavedCard() SavedCardRepository

	Close() error
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// DatabaseImpl implements the Database interface
type DatabaseImpl struct {
	db                     *sqlx.DB
	userRepo               UserRepository
	walletRepo             WalletRepository
	walletTransactionRepo  WalletTransactionRepository
	savingsPlanRepo        SavingsPlanRepository
	savingsTransactionRepo SavingsTransactionRepository
	idempotencyKeyRepo     IdempotencyKeyRepository
	paystackRepo           PaystackTransactionRepository
	savedCardRepo          SavedCardRepository

	mu sync.Mutex
}

// New initializes a database connection and runs migrations if enabled
func New(dsn string, automigrate bool) (Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", "postgres://"+dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	// Run migrations if enabled
	if automigrate {
		iofsDriver, err := iofs.New(assets.EmbeddedFiles, "migrations")
		if err != nil {
			return nil, err
		}

		migrator, err := migrate.NewWithSourceInstance("iofs", iofsDriver, "postgres://"+dsn)
		if err != nil {
			return nil, err
		}

		if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return nil, err
		}
	}

	// Return DatabaseImpl instance without pre-initializing repositories
	return &DatabaseImpl{db: db}, nil
}

func (d *DatabaseImpl) Close() error {
	return d.db.Close()
}

func (d *DatabaseImpl) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	tx, err := d.db.BeginTxx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (d *DatabaseImpl) User() UserRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.userRepo == nil {
		d.userRepo = NewUserRepository(d.db)
	}
	return d.userRepo
}

func (d *DatabaseImpl) Wallet() WalletRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.walletRepo == nil {
		d.walletRepo = NewWalletRepository(d.db)
	}
	return d.walletRepo
}

func (d *DatabaseImpl) WalletTransaction() WalletTransactionRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.walletTransactionRepo == nil {
		d.walletTransactionRepo = NewWalletTransactionRepository(d.db)
	}
	return d.walletTransactionRepo
}

func (d *DatabaseImpl) SavingsPlan() SavingsPlanRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.savingsPlanRepo == nil {
		d.savingsPlanRepo = NewSavingsPlanRepository(d.db)
	}
	return d.savingsPlanRepo
}

func (d *DatabaseImpl) SavingsTransaction() SavingsTransactionRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.savingsTransactionRepo == nil {
		d.savingsTransactionRepo = NewSavingsTransactionRepository(d.db)
	}
	return d.savingsTransactionRepo
}

func (d *DatabaseImpl) IdempotencyKey() IdempotencyKeyRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.idempotencyKeyRepo == nil {
		d.idempotencyKeyRepo = NewIdempotencyKeyRepository(d.db)
	}
	return d.idempotencyKeyRepo
}

func (d *DatabaseImpl) PaystackTransaction() PaystackTransactionRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.paystackRepo == nil {
		d.paystackRepo = NewPaystackTransactionRepository(d.db)
	}
	return d.paystackRepo
}

func (d *DatabaseImpl) SavedCard() SavedCardRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.savedCardRepo == nil {
		d.savedCardRepo = NewSavedCardRepository(d.db)
	}
	return d.savedCardRepo
}
