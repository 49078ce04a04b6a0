package mocks

import (
	"context"

	"github.com/spectrumarena/arenapay/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockPlanUnlocker struct {
	mock.Mock
}

func (m *MockPlanUnlocker) ScheduledUnlock(ctx context.Context, planID string) (string, *repository.SavingsPlan, error) {
	args := m.Called(ctx, planID)
	plan, _ := args.Get(1).(*repository.SavingsPlan)
	return args.String(0), plan, args.Error(2)
}
