package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/spectrumarena/arenapay/internal/repository"
)

// SavingsEngine drives the savings plan state machine:
//
//	locked -> unlocked  (maturity, via ScheduledUnlock)
//	locked -> broken    (explicit early break, 10% penalty)
//
// Both end states are terminal. Interest accrual and goal tracking are
// explicit operations invoked by the engine before any balance-dependent
// decision; nothing recomputes implicitly on save.
type SavingsEngine struct {
	db     repository.Database
	wallet *WalletService
	logger *slog.Logger
}

func NewSavingsEngine(db repository.Database, wallet *WalletService, logger *slog.Logger) *SavingsEngine {
	return &SavingsEngine{
		db:     db,
		wallet: wallet,
		logger: logger,
	}
}

var (
	earlyBreakPenaltyRate = decimal.RequireFromString("0.10")
	defaultInterestRate   = decimal.RequireFromString("0.05")
	daysPerYear           = decimal.NewFromInt(365)
)

// ScheduledUnlock outcomes. Everything except UnlockOutcomeReleased is
// a no-op: the scheduler delivers at least once, so re-runs and early
// runs must be harmless.
const (
	UnlockOutcomeReleased        = "released"
	UnlockOutcomeAlreadyReleased = "already unlocked"
	UnlockOutcomeTooEarly        = "too early to unlock"
)

type CreatePlanInput struct {
	PlanType     string
	Amount       decimal.Decimal
	DurationDays int
	TargetAmount decimal.NullDecimal
}

type WithdrawResult struct {
	Plan    *repository.SavingsPlan
	Payout  decimal.Decimal
	Penalty decimal.Decimal
}

// breakPenalty is the 10% early-break fee, rounded to cents.
func breakPenalty(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(earlyBreakPenaltyRate).Round(2)
}

// wholeDaysBetween counts calendar days between two instants, matching
// date subtraction rather than 24-hour buckets.
func wholeDaysBetween(last, now time.Time) int {
	last = last.UTC()
	now = now.UTC()

	lastDate := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)
	nowDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	return int(nowDate.Sub(lastDate).Hours() / 24)
}

// accruedInterest computes simple daily interest:
// amount * (annualRate / 365) * days, rounded to cents. Decimal
// arithmetic throughout so repeated accrual never drifts.
func accruedInterest(amount, annualRate decimal.Decimal, last, now time.Time) (decimal.Decimal, int) {
	days := wholeDaysBetween(last, now)
	if days <= 0 {
		return decimal.Zero, days
	}

	dailyRate := annualRate.Div(daysPerYear)
	interest := amount.Mul(dailyRate).Mul(decimal.NewFromInt(int64(days))).Round(2)

	return interest, days
}

// updateGoalStatus recomputes the goal flag from the current amount.
// Idempotent; must run after interest has been applied.
func updateGoalStatus(plan *repository.SavingsPlan) {
	if !plan.TargetAmount.Valid {
		plan.GoalCompleted = false
		return
	}

	plan.GoalCompleted = plan.Amount.GreaterThanOrEqual(plan.TargetAmount.Decimal)
}

// Create locks funds out of the wallet's spendable balance and opens a
// plan in one transaction: wallet row first, then the plan insert, so
// every path that touches both locks in the same order.
func (s *SavingsEngine) Create(ctx context.Context, userID string, input CreatePlanInput) (*repository.SavingsPlan, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	wallet, found, err := s.db.Wallet().GetByUserIdForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrWalletNotFound
	}

	err = s.wallet.LockTx(ctx, tx, wallet, input.Amount, "Savings plan lock")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	plan := &repository.SavingsPlan{
		UserID:              userID,
		WalletID:            wallet.ID,
		PlanType:            input.PlanType,
		Amount:              input.Amount,
		Status:              repository.SavingsPlanStatusLocked,
		LockedAt:            now,
		LockedUntil:         now.AddDate(0, 0, input.DurationDays),
		InterestRate:        defaultInterestRate,
		LastInterestApplied: now,
		TargetAmount:        input.TargetAmount,
	}

	id, err := s.db.SavingsPlan().Insert(ctx, tx, plan)
	if err != nil {
		return nil, err
	}
	plan.ID = id

	_, err = s.db.SavingsTransaction().Insert(ctx, tx, &repository.SavingsTransaction{
		SavingsPlanID: id,
		Type:          repository.SavingsTransactionTypeDeposit,
		Amount:        input.Amount,
		Note:          "Initial lock from wallet balance",
	})
	if err != nil {
		return nil, err
	}

	err = tx.Commit()
	if err != nil {
		return nil, err
	}

	return plan, nil
}

// applyInterestTx accrues interest in memory and grows the wallet's
// locked pot by the same amount, keeping locked_balance equal to the
// sum of locked plan amounts. The caller persists the plan.
func (s *SavingsEngine) applyInterestTx(ctx context.Context, tx *sqlx.Tx, wallet *repository.Wallet, plan *repository.SavingsPlan, now time.Time) error {
	interest, days := accruedInterest(plan.Amount, plan.InterestRate, plan.LastInterestApplied, now)
	if days <= 0 || interest.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	plan.Amount = plan.Amount.Add(interest)
	plan.InterestEarned = plan.InterestEarned.Add(interest)
	plan.LastInterestApplied = now

	err := s.wallet.CreditLockedTx(ctx, tx, wallet, interest, "Savings interest accrual")
	if err != nil {
		return err
	}

	_, err = s.db.SavingsTransaction().Insert(ctx, tx, &repository.SavingsTransaction{
		SavingsPlanID: plan.ID,
		Type:          repository.SavingsTransactionTypeDeposit,
		Amount:        interest,
		Note:          "Interest accrual",
	})
	return err
}

// Withdraw disburses a plan. A locked plan requires earlyBreak and
// forfeits the 10% penalty; an unlocked plan had its funds moved to the
// spendable balance by the scheduler already, so withdrawing it is a
// report-only action that records the disbursement without crediting
// the wallet a second time.
func (s *SavingsEngine) Withdraw(ctx context.Context, userID, planID string, earlyBreak bool) (*WithdrawResult, error) {
	// Plain read first to learn the wallet id, then lock wallet row
	// before plan row inside the transaction.
	peek, found, err := s.db.SavingsPlan().GetOne(planID)
	if err != nil {
		return nil, err
	}
	if !found || peek.UserID != userID {
		return nil, ErrPlanNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	wallet, found, err := s.db.Wallet().GetOneForUpdate(ctx, tx, peek.WalletID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrWalletNotFound
	}

	plan, found, err := s.db.SavingsPlan().GetOneForUpdate(ctx, tx, planID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrPlanNotFound
	}

	now := time.Now().UTC()
	result := &WithdrawResult{Plan: plan}

	switch plan.Status {
	case repository.SavingsPlanStatusBroken:
		return nil, ErrNotWithdrawable

	case repository.SavingsPlanStatusLocked:
		if !earlyBreak {
			return nil, ErrStillLocked
		}

		err = s.applyInterestTx(ctx, tx, wallet, plan, now)
		if err != nil {
			return nil, err
		}
		updateGoalStatus(plan)

		penalty := breakPenalty(plan.Amount)
		payout := plan.Amount.Sub(penalty)

		// Release the full locked amount, then forfeit the penalty
		// portion, leaving a complete audit trail for both moves.
		err = s.wallet.UnlockTx(ctx, tx, wallet, plan.Amount, "Early break release")
		if err != nil {
			return nil, err
		}
		err = s.wallet.DebitTx(ctx, tx, wallet, penalty, "Early break penalty")
		if err != nil {
			return nil, err
		}

		plan.Status = repository.SavingsPlanStatusBroken
		plan.PenaltyAmount = penalty
		plan.BrokenAt = sql.NullTime{Time: now, Valid: true}

		_, err = s.db.SavingsTransaction().Insert(ctx, tx, &repository.SavingsTransaction{
			SavingsPlanID: plan.ID,
			Type:          repository.SavingsTransactionTypeWithdrawal,
			Amount:        payout,
			Note:          "Early break payout, 10% penalty forfeited",
		})
		if err != nil {
			return nil, err
		}

		result.Payout = payout
		result.Penalty = penalty

	case repository.SavingsPlanStatusUnlocked:
		// Funds already sit in the spendable balance. Record the
		// disbursement once; a second withdrawal attempt is rejected.
		count, err := s.db.SavingsTransaction().CountByPlanIdAndType(plan.ID, repository.SavingsTransactionTypeWithdrawal)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrNotWithdrawable
		}

		_, err = s.db.SavingsTransaction().Insert(ctx, tx, &repository.SavingsTransaction{
			SavingsPlanID: plan.ID,
			Type:          repository.SavingsTransactionTypeWithdrawal,
			Amount:        plan.Amount,
			Note:          "Disbursed from wallet balance after maturity release",
		})
		if err != nil {
			return nil, err
		}

		result.Payout = plan.Amount

	default:
		return nil, ErrNotWithdrawable
	}

	err = s.db.SavingsPlan().Update(ctx, tx, plan)
	if err != nil {
		return nil, err
	}

	err = tx.Commit()
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ScheduledUnlock releases a matured plan back into the wallet's
// spendable balance. Idempotent under at-least-once delivery: a plan
// that already left the locked state, or whose maturity has not passed,
// is a silent no-op.
func (s *SavingsEngine) ScheduledUnlock(ctx context.Context, planID string) (string, *repository.SavingsPlan, error) {
	peek, found, err := s.db.SavingsPlan().GetOne(planID)
	if err != nil {
		return "", nil, err
	}
	if !found {
		return "", nil, ErrPlanNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", nil, err
	}
	defer tx.Rollback()

	wallet, found, err := s.db.Wallet().GetOneForUpdate(ctx, tx, peek.WalletID)
	if err != nil {
		return "", nil, err
	}
	if !found {
		return "", nil, ErrWalletNotFound
	}

	plan, found, err := s.db.SavingsPlan().GetOneForUpdate(ctx, tx, planID)
	if err != nil {
		return "", nil, err
	}
	if !found {
		return "", nil, ErrPlanNotFound
	}

	if plan.Status != repository.SavingsPlanStatusLocked {
		return UnlockOutcomeAlreadyReleased, plan, nil
	}

	now := time.Now().UTC()
	if now.Before(plan.LockedUntil) {
		return UnlockOutcomeTooEarly, plan, nil
	}

	err = s.applyInterestTx(ctx, tx, wallet, plan, now)
	if err != nil {
		return "", nil, err
	}
	updateGoalStatus(plan)

	err = s.wallet.UnlockTx(ctx, tx, wallet, plan.Amount, "Savings maturity release")
	if err != nil {
		return "", nil, err
	}

	plan.Status = repository.SavingsPlanStatusUnlocked
	plan.UnlockedAt = sql.NullTime{Time: now, Valid: true}

	err = s.db.SavingsPlan().Update(ctx, tx, plan)
	if err != nil {
		return "", nil, err
	}

	_, err = s.db.SavingsTransaction().Insert(ctx, tx, &repository.SavingsTransaction{
		SavingsPlanID: plan.ID,
		Type:          repository.SavingsTransactionTypeRelease,
		Amount:        plan.Amount,
		Note:          "Auto-release by scheduler",
	})
	if err != nil {
		return "", nil, err
	}

	err = tx.Commit()
	if err != nil {
		return "", nil, err
	}

	return UnlockOutcomeReleased, plan, nil
}

// FundFromGateway applies a settled gateway payment to a plan, inside
// the webhook's transaction. Deposits land in the wallet's locked pot
// so the wallet ledger stays the source of truth for funds under lock;
// a plan that already left the locked state receives the money as
// spendable balance instead, since re-locking settled funds without a
// plan to hold them would strand the money.
func (s *SavingsEngine) FundFromGateway(ctx context.Context, tx *sqlx.Tx, wallet *repository.Wallet, planID string, amount decimal.Decimal) error {
	plan, found, err := s.db.SavingsPlan().GetOneForUpdate(ctx, tx, planID)
	if err != nil {
		return err
	}
	if !found {
		return ErrPlanNotFound
	}

	// The passed wallet is the settled customer's wallet, locked by the
	// caller. A plan owned by anyone else must not grow against it.
	if plan.UserID != wallet.UserID {
		s.logger.Warn("gateway deposit references a plan owned by another account",
			"plan_id", planID,
			"plan_user_id", plan.UserID,
			"wallet_user_id", wallet.UserID,
		)
		return ErrPlanOwnerMismatch
	}

	if plan.Status != repository.SavingsPlanStatusLocked {
		s.logger.Warn("gateway deposit for plan no longer locked, crediting wallet balance",
			"plan_id", planID,
			"status", plan.Status,
		)
		return s.wallet.CreditTx(ctx, tx, wallet, amount, "Savings funding after release")
	}

	err = s.wallet.CreditLockedTx(ctx, tx, wallet, amount, "Savings funding")
	if err != nil {
		return err
	}

	plan.Amount = plan.Amount.Add(amount)
	updateGoalStatus(plan)

	err = s.db.SavingsPlan().Update(ctx, tx, plan)
	if err != nil {
		return err
	}

	_, err = s.db.SavingsTransaction().Insert(ctx, tx, &repository.SavingsTransaction{
		SavingsPlanID: plan.ID,
		Type:          repository.SavingsTransactionTypeDeposit,
		Amount:        amount,
		Note:          "Gateway deposit",
	})
	return err
}
