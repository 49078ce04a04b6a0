package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spectrumarena/arenapay/internal/mocks"
	"github.com/spectrumarena/arenapay/internal/repository"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBreakPenaltyIsTenPercentRounded(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"400.00", "40.00"},
		{"1000.00", "100.00"},
		{"123.45", "12.35"},
		{"0.01", "0.00"},
	}

	for _, tt := range tests {
		got := breakPenalty(decimal.RequireFromString(tt.amount))
		require.True(t, got.Equal(decimal.RequireFromString(tt.want)),
			"penalty of %s: got %s, want %s", tt.amount, got, tt.want)
	}
}

func TestWholeDaysBetweenUsesCalendarDates(t *testing.T) {
	sameDay := time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)
	require.Equal(t, 0, wholeDaysBetween(sameDay, sameDay.Add(20*time.Hour)))

	// A few minutes across midnight still counts as one day.
	lateNight := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	earlyMorning := time.Date(2026, 3, 11, 0, 1, 0, 0, time.UTC)
	require.Equal(t, 1, wholeDaysBetween(lateNight, earlyMorning))

	tenDays := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.Equal(t, 10, wholeDaysBetween(tenDays, tenDays.AddDate(0, 0, 10)))

	// Clock skew backwards never accrues.
	require.Equal(t, -1, wholeDaysBetween(earlyMorning, lateNight))
}

func TestAccruedInterestSimpleDaily(t *testing.T) {
	amount := decimal.RequireFromString("1000.00")
	rate := decimal.RequireFromString("0.05")

	last := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := last.AddDate(0, 0, 10)

	// 1000 * (0.05 / 365) * 10 = 1.3698... rounds to 1.37
	interest, days := accruedInterest(amount, rate, last, now)
	require.Equal(t, 10, days)
	require.True(t, interest.Equal(decimal.RequireFromString("1.37")), "got %s", interest)
}

func TestAccruedInterestZeroForSameDay(t *testing.T) {
	amount := decimal.RequireFromString("1000.00")
	rate := decimal.RequireFromString("0.05")

	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	interest, days := accruedInterest(amount, rate, now, now.Add(2*time.Hour))
	require.Equal(t, 0, days)
	require.True(t, interest.IsZero())
}

func TestAccruedInterestFullYear(t *testing.T) {
	amount := decimal.RequireFromString("1000.00")
	rate := decimal.RequireFromString("0.05")

	last := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := last.AddDate(0, 0, 365)

	interest, days := accruedInterest(amount, rate, last, now)
	require.Equal(t, 365, days)
	require.True(t, interest.Equal(decimal.RequireFromString("50.00")), "got %s", interest)
}

func TestUpdateGoalStatus(t *testing.T) {
	plan := &repository.SavingsPlan{
		Amount: decimal.RequireFromString("900.00"),
	}

	// No target set means the flag stays off.
	updateGoalStatus(plan)
	require.False(t, plan.GoalCompleted)

	plan.TargetAmount = decimal.NewNullDecimal(decimal.RequireFromString("1000.00"))
	updateGoalStatus(plan)
	require.False(t, plan.GoalCompleted)

	plan.Amount = decimal.RequireFromString("1000.00")
	updateGoalStatus(plan)
	require.True(t, plan.GoalCompleted)

	// Recomputing on the same state is a no-op.
	updateGoalStatus(plan)
	require.True(t, plan.GoalCompleted)

	plan.Amount = decimal.RequireFromString("1200.00")
	updateGoalStatus(plan)
	require.True(t, plan.GoalCompleted)
}

func TestEarlyBreakPayoutMath(t *testing.T) {
	// A 400.00 plan broken early pays out 360.00 and forfeits 40.00.
	amount := decimal.RequireFromString("400.00")
	penalty := breakPenalty(amount)
	payout := amount.Sub(penalty)

	require.True(t, penalty.Equal(decimal.RequireFromString("40.00")))
	require.True(t, payout.Equal(decimal.RequireFromString("360.00")))
	require.True(t, penalty.Add(payout).Equal(amount))
}

func TestFundFromGatewayRejectsForeignPlan(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	planRepo := new(mocks.MockSavingsPlanRepo)
	planRepo.On("GetOneForUpdate", mock.Anything, mock.Anything, "plan_1").Return(&repository.SavingsPlan{
		ID:     "plan_1",
		UserID: "user_b",
		Status: repository.SavingsPlanStatusLocked,
	}, true, nil)

	db := &mocks.MockDatabase{SavingsPlanRepo: planRepo}
	engine := NewSavingsEngine(db, NewWalletService(db, logger), logger)

	// The wallet under lock belongs to the settled customer, not the
	// plan's owner. No balance moves and no plan row is written.
	wallet := &repository.Wallet{ID: "wallet_a", UserID: "user_a"}

	err := engine.FundFromGateway(context.Background(), nil, wallet, "plan_1", decimal.RequireFromString("100.00"))
	require.ErrorIs(t, err, ErrPlanOwnerMismatch)

	require.True(t, wallet.LockedBalance.IsZero())
	planRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}
