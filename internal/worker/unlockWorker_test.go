package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/spectrumarena/arenapay/internal/config"
	"github.com/spectrumarena/arenapay/internal/errHandler"
	"github.com/spectrumarena/arenapay/internal/helper"
	"github.com/spectrumarena/arenapay/internal/mocks"
	"github.com/spectrumarena/arenapay/internal/repository"
	"github.com/spectrumarena/arenapay/internal/service"
	"github.com/stretchr/testify/mock"
)

func newTestWorker(unlocker *mocks.MockPlanUnlocker, db *mocks.MockDatabase, ctx context.Context) *Worker {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errorHandler := errHandler.New("", "http://localhost", &mocks.MockMailer{}, logger)

	cfg := &config.Config{}
	cfg.Scheduler.PollInterval = time.Minute
	cfg.Scheduler.MaxAttempts = 3

	return New(&Worker{
		DB:         db,
		Engine:     unlocker,
		ErrHandler: errorHandler,
		Helper:     helper.New(nil, &sync.WaitGroup{}, errorHandler),
		Config:     cfg,
		Ctx:        ctx,
	})
}

func TestReleasePlanSucceedsOnThirdAttempt(t *testing.T) {
	transient := errors.New("pq: deadlock detected")
	plan := &repository.SavingsPlan{ID: "plan_1", UserID: "user_1"}

	unlocker := new(mocks.MockPlanUnlocker)
	unlocker.On("ScheduledUnlock", mock.Anything, "plan_1").Return("", nil, transient).Twice()
	unlocker.On("ScheduledUnlock", mock.Anything, "plan_1").Return(service.UnlockOutcomeReleased, plan, nil).Once()

	planRepo := new(mocks.MockSavingsPlanRepo)
	planRepo.On("GetOne", "plan_1").Return(nil, false, nil)

	wk := newTestWorker(unlocker, &mocks.MockDatabase{SavingsPlanRepo: planRepo}, context.Background())

	wk.releasePlan("plan_1")

	// Two transient failures then success means exactly three calls and
	// exactly one release.
	unlocker.AssertNumberOfCalls(t, "ScheduledUnlock", 3)
	unlocker.AssertExpectations(t)
}

func TestReleasePlanStopsAfterExhaustedRetries(t *testing.T) {
	transient := errors.New("connection refused")

	unlocker := new(mocks.MockPlanUnlocker)
	unlocker.On("ScheduledUnlock", mock.Anything, "plan_1").Return("", nil, transient)

	wk := newTestWorker(unlocker, &mocks.MockDatabase{}, context.Background())

	wk.releasePlan("plan_1")

	unlocker.AssertNumberOfCalls(t, "ScheduledUnlock", 3)
}

func TestReleasePlanEscalatesInvariantBreachImmediately(t *testing.T) {
	unlocker := new(mocks.MockPlanUnlocker)
	unlocker.On("ScheduledUnlock", mock.Anything, "plan_1").Return("", nil, service.ErrInvariantBroken)

	wk := newTestWorker(unlocker, &mocks.MockDatabase{}, context.Background())

	wk.releasePlan("plan_1")

	// No retries: an invariant breach will not heal on a second attempt.
	unlocker.AssertNumberOfCalls(t, "ScheduledUnlock", 1)
}

func TestReleasePlanStopsRetryingOnShutdown(t *testing.T) {
	transient := errors.New("connection refused")

	unlocker := new(mocks.MockPlanUnlocker)
	unlocker.On("ScheduledUnlock", mock.Anything, "plan_1").Return("", nil, transient)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	wk := newTestWorker(unlocker, &mocks.MockDatabase{}, ctx)

	wk.releasePlan("plan_1")

	unlocker.AssertNumberOfCalls(t, "ScheduledUnlock", 1)
}
