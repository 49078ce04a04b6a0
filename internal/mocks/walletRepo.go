package mocks

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/spectrumarena/arenapay/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockWalletRepo struct {
	mock.Mock
}

func (m *MockWalletRepo) Insert(wallet *repository.Wallet, tx *sqlx.Tx) (string, error) {
	args := m.Called(wallet, tx)
	return args.String(0), args.Error(1)
}

func (m *MockWalletRepo) GetOne(id string) (*repository.Wallet, bool, error) {
	args := m.Called(id)
	wallet, _ := args.Get(0).(*repository.Wallet)
	return wallet, args.Bool(1), args.Error(2)
}

func (m *MockWalletRepo) GetByUserId(userID string) (*repository.Wallet, bool, error) {
	args := m.Called(userID)
	wallet, _ := args.Get(0).(*repository.Wallet)
	return wallet, args.Bool(1), args.Error(2)
}

func (m *MockWalletRepo) GetOneForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*repository.Wallet, bool, error) {
	args := m.Called(ctx, tx, id)
	wallet, _ := args.Get(0).(*repository.Wallet)
	return wallet, args.Bool(1), args.Error(2)
}

func (m *MockWalletRepo) GetByUserIdForUpdate(ctx context.Context, tx *sqlx.Tx, userID string) (*repository.Wallet, bool, error) {
	args := m.Called(ctx, tx, userID)
	wallet, _ := args.Get(0).(*repository.Wallet)
	return wallet, args.Bool(1), args.Error(2)
}

func (m *MockWalletRepo) UpdateBalances(ctx context.Context, tx *sqlx.Tx, wallet *repository.Wallet) error {
	args := m.Called(ctx, tx, wallet)
	return args.Error(0)
}

type MockWalletTransactionRepo struct {
	mock.Mock
}

func (m *MockWalletTransactionRepo) Insert(ctx context.Context, tx *sqlx.Tx, transaction *repository.WalletTransaction) (string, error) {
	args := m.Called(ctx, tx, transaction)
	return args.String(0), args.Error(1)
}

func (m *MockWalletTransactionRepo) GetAllByWalletId(walletID string, limit, offset int) ([]repository.WalletTransaction, bool, error) {
	args := m.Called(walletID, limit, offset)
	transactions, _ := args.Get(0).([]repository.WalletTransaction)
	return transactions, args.Bool(1), args.Error(2)
}
