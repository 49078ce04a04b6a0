package worker

import (
	"context"

	"github.com/spectrumarena/arenapay/internal/config"
	"github.com/spectrumarena/arenapay/internal/errHandler"
	"github.com/spectrumarena/arenapay/internal/helper"
	"github.com/spectrumarena/arenapay/internal/repository"
	"github.com/spectrumarena/arenapay/internal/smtp"
	"github.com/spectrumarena/arenapay/internal/stream"
)

// PlanUnlocker releases a single matured plan inside its own database
// transaction. Satisfied by *service.SavingsEngine.
type PlanUnlocker interface {
	ScheduledUnlock(ctx context.Context, planID string) (string, *repository.SavingsPlan, error)
}

type Worker struct {
	KafkaStream *stream.KafkaStream
	DB          repository.Database
	Engine      PlanUnlocker
	Mailer      smtp.MailerInterface
	ErrHandler  *errHandler.ErrorRepository
	Helper      *helper.HelperRepository
	Config      *config.Config
	Ctx         context.Context
}

const (
	// settlementAlertGroupID is used for workers that send customer
	// notifications after money movements have been committed.
	settlementAlertGroupID = "settlement-alert-group"
)

// Our workers typically need access to the database and the kafka
// event stream; worker-specific dependencies can be passed as
// arguments to the worker.
func New(wk *Worker) *Worker {
	return &Worker{
		KafkaStream: wk.KafkaStream,
		DB:          wk.DB,
		Engine:      wk.Engine,
		Mailer:      wk.Mailer,
		ErrHandler:  wk.ErrHandler,
		Helper:      wk.Helper,
		Config:      wk.Config,
		Ctx:         wk.Ctx,
	}
}
