package worker

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spectrumarena/arenapay/internal/service"
	"github.com/spectrumarena/arenapay/internal/stream"
)

// unlockBatchSize caps how many due plans a single sweep picks up.
// Anything left over is caught by the next tick.
const unlockBatchSize = 100

// UnlockWorker polls for matured plans and releases them. The plan row
// itself is the schedule entry, so a crashed sweep loses nothing: the
// plan stays locked and due, and the next tick retries it.
func (wk *Worker) UnlockWorker() {
	ticker := time.NewTicker(wk.Config.Scheduler.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-wk.Ctx.Done():
			log.Println("UnlockWorker received cancellation signal, shutting down...")
			return
		case <-ticker.C:
			wk.sweepDuePlans()
		}
	}
}

func (wk *Worker) sweepDuePlans() {
	ids, err := wk.DB.SavingsPlan().DueForUnlock(time.Now(), unlockBatchSize)
	if err != nil {
		log.Printf("Error fetching due plans: %v", err)
		return
	}

	for _, id := range ids {
		wk.releasePlan(id)
	}
}

// releasePlan retries transient failures with exponential backoff.
// Each attempt runs its own database transaction, so a failed attempt
// leaves the plan untouched. Non-transient failures and exhausted
// retries are escalated to the error reporter.
func (wk *Worker) releasePlan(planID string) {
	var lastErr error

	for attempt := 1; attempt <= wk.Config.Scheduler.MaxAttempts; attempt++ {
		outcome, plan, err := wk.Engine.ScheduledUnlock(wk.Ctx, planID)
		if err == nil {
			if outcome == service.UnlockOutcomeReleased {
				log.Printf("Released matured plan %s", planID)
				wk.announceRelease(plan.ID, plan.UserID)
			}
			return
		}

		if errors.Is(err, service.ErrInvariantBroken) ||
			errors.Is(err, service.ErrPlanNotFound) ||
			errors.Is(err, service.ErrWalletNotFound) {
			wk.ErrHandler.ReportServerError(nil, fmt.Errorf("releasing plan %s: %w", planID, err))
			return
		}

		lastErr = err
		log.Printf("Attempt %d to release plan %s failed: %v", attempt, planID, err)

		if attempt == wk.Config.Scheduler.MaxAttempts {
			break
		}

		select {
		case <-wk.Ctx.Done():
			return
		case <-time.After(time.Duration(1<<(attempt-1)) * time.Second):
		}
	}

	wk.ErrHandler.ReportServerError(nil, fmt.Errorf("releasing plan %s after %d attempts: %w", planID, wk.Config.Scheduler.MaxAttempts, lastErr))
}

func (wk *Worker) announceRelease(planID, userID string) {
	plan, found, err := wk.DB.SavingsPlan().GetOne(planID)
	if err != nil || !found {
		log.Printf("Error loading released plan %s for notification: %v", planID, err)
		return
	}

	user, found, err := wk.DB.User().GetOne(userID)
	if err != nil || !found {
		log.Printf("Error loading user %s for release notification: %v", userID, err)
		return
	}

	released := stream.SavingsReleasedEvent{
		PlanID:   plan.ID,
		Email:    user.Email,
		Amount:   plan.Amount,
		Interest: plan.InterestEarned,
	}

	wk.Helper.BackgroundTask(nil, func() error {
		payload, err := json.Marshal(released)
		if err != nil {
			return err
		}

		return wk.KafkaStream.ProduceMessage(stream.SavingsReleasedTopic, string(payload))
	})
}
