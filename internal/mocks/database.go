package mocks

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/spectrumarena/arenapay/internal/repository"
)

// MockDatabase satisfies repository.Database by handing out the mock
// repositories assigned to its fields. BeginTx is not supported: code
// paths under test that open transactions need a real database.
type MockDatabase struct {
	UserRepo                *MockUserRepo
	WalletRepo              *MockWalletRepo
	WalletTransactionRepo   *MockWalletTransactionRepo
	SavingsPlanRepo         *MockSavingsPlanRepo
	SavingsTransactionRepo  *MockSavingsTransactionRepo
	IdempotencyKeyRepo      *MockIdempotencyKeyRepo
	PaystackTransactionRepo *MockPaystackTransactionRepo
	SavedCardRepo           *MockSavedCardRepo
}

func (m *MockDatabase) User() repository.UserRepository {
	return m.UserRepo
}

func (m *MockDatabase) Wallet() repository.WalletRepository {
	return m.WalletRepo
}

func (m *MockDatabase) WalletTransaction() repository.WalletTransactionRepository {
	return m.WalletTransactionRepo
}

func (m *MockDatabase) SavingsPlan() repository.SavingsPlanRepository {
	return m.SavingsPlanRepo
}

func (m *MockDatabase) SavingsTransaction() repository.SavingsTransactionRepository {
	return m.SavingsTransactionRepo
}

func (m *MockDatabase) IdempotencyKey() repository.IdempotencyKeyRepository {
	return m.IdempotencyKeyRepo
}

func (m *MockDatabase) PaystackTransaction() repository.PaystackTransactionRepository {
	return m.PaystackTransactionRepo
}

func (m *MockDatabase) SavedCard() repository.SavedCardRepository {
	return m.SavedCardRepo
}

func (m *MockDatabase) Close() error {
	return nil
}

func (m *MockDatabase) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	panic("BeginTx is not supported by MockDatabase")
}
