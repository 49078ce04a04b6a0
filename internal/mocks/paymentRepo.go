package mocks

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/spectrumarena/arenapay/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockIdempotencyKeyRepo struct {
	mock.Mock
}

func (m *MockIdempotencyKeyRepo) Find(userID, key, endpoint string) (*repository.IdempotencyKey, bool, error) {
	args := m.Called(userID, key, endpoint)
	record, _ := args.Get(0).(*repository.IdempotencyKey)
	return record, args.Bool(1), args.Error(2)
}

func (m *MockIdempotencyKeyRepo) Insert(record *repository.IdempotencyKey) (*repository.IdempotencyKey, bool, error) {
	args := m.Called(record)
	stored, _ := args.Get(0).(*repository.IdempotencyKey)
	return stored, args.Bool(1), args.Error(2)
}

type MockPaystackTransactionRepo struct {
	mock.Mock
}

func (m *MockPaystackTransactionRepo) ExistsByReference(reference string) (bool, error) {
	args := m.Called(reference)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaystackTransactionRepo) Insert(ctx context.Context, tx *sqlx.Tx, transaction *repository.PaystackTransaction) (string, error) {
	args := m.Called(ctx, tx, transaction)
	return args.String(0), args.Error(1)
}

type MockSavedCardRepo struct {
	mock.Mock
}

func (m *MockSavedCardRepo) Upsert(ctx context.Context, tx *sqlx.Tx, card *repository.SavedCard) error {
	args := m.Called(ctx, tx, card)
	return args.Error(0)
}

func (m *MockSavedCardRepo) GetActiveByUserId(userID string) (*repository.SavedCard, bool, error) {
	args := m.Called(userID)
	card, _ := args.Get(0).(*repository.SavedCard)
	return card, args.Bool(1), args.Error(2)
}

func (m *MockSavedCardRepo) GetAllByUserId(userID string) ([]repository.SavedCard, bool, error) {
	args := m.Called(userID)
	cards, _ := args.Get(0).([]repository.SavedCard)
	return cards, args.Bool(1), args.Error(2)
}

func (m *MockSavedCardRepo) Deactivate(id, userID string) (bool, error) {
	args := m.Called(id, userID)
	return args.Bool(0), args.Error(1)
}
