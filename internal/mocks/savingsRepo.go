package mocks

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spectrumarena/arenapay/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockSavingsPlanRepo struct {
	mock.Mock
}

func (m *MockSavingsPlanRepo) Insert(ctx context.Context, tx *sqlx.Tx, plan *repository.SavingsPlan) (string, error) {
	args := m.Called(ctx, tx, plan)
	return args.String(0), args.Error(1)
}

func (m *MockSavingsPlanRepo) GetOne(id string) (*repository.SavingsPlan, bool, error) {
	args := m.Called(id)
	plan, _ := args.Get(0).(*repository.SavingsPlan)
	return plan, args.Bool(1), args.Error(2)
}

func (m *MockSavingsPlanRepo) GetOneForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*repository.SavingsPlan, bool, error) {
	args := m.Called(ctx, tx, id)
	plan, _ := args.Get(0).(*repository.SavingsPlan)
	return plan, args.Bool(1), args.Error(2)
}

func (m *MockSavingsPlanRepo) GetAllByUserId(userID string) ([]repository.SavingsPlan, bool, error) {
	args := m.Called(userID)
	plans, _ := args.Get(0).([]repository.SavingsPlan)
	return plans, args.Bool(1), args.Error(2)
}

func (m *MockSavingsPlanRepo) Update(ctx context.Context, tx *sqlx.Tx, plan *repository.SavingsPlan) error {
	args := m.Called(ctx, tx, plan)
	return args.Error(0)
}

func (m *MockSavingsPlanRepo) DueForUnlock(now time.Time, limit int) ([]string, error) {
	args := m.Called(now, limit)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

type MockSavingsTransactionRepo struct {
	mock.Mock
}

func (m *MockSavingsTransactionRepo) Insert(ctx context.Context, tx *sqlx.Tx, transaction *repository.SavingsTransaction) (string, error) {
	args := m.Called(ctx, tx, transaction)
	return args.String(0), args.Error(1)
}

func (m *MockSavingsTransactionRepo) GetAllByPlanId(planID string) ([]repository.SavingsTransaction, bool, error) {
	args := m.Called(planID)
	transactions, _ := args.Get(0).([]repository.SavingsTransaction)
	return transactions, args.Bool(1), args.Error(2)
}

func (m *MockSavingsTransactionRepo) CountByPlanIdAndType(planID, transactionType string) (int, error) {
	args := m.Called(planID, transactionType)
	return args.Int(0), args.Error(1)
}
