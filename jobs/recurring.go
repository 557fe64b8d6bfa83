package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/pennywise-app/pennywise/internal/jobs"
	"github.com/pennywise-app/pennywise/internal/transactions"
)

// RecurringMaterializeJob inserts due occurrences of recurring
// transactions via the transaction service.
type RecurringMaterializeJob struct {
	Service *transactions.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Lock    *RunLock
}

// NewRecurringMaterializeJob initialises the materialization handler.
func NewRecurringMaterializeJob(service *transactions.Service, logger *slog.Logger, metrics *jobmetrics.Metrics, lock *RunLock) *RecurringMaterializeJob {
	return &RecurringMaterializeJob{Service: service, Logger: logger, Metrics: metrics, Lock: lock}
}

// Handle executes one materialization run. When another replica holds the
// run lock the task is skipped, not retried.
func (j *RecurringMaterializeJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("recurring materialize: handler not configured")
	}
	acquired, err := j.Lock.Acquire(ctx, "recurring_materialize")
	if err != nil {
		return err
	}
	if !acquired {
		j.Logger.Info("recurring run already in progress elsewhere, skipping")
		return nil
	}
	defer j.Lock.Release(ctx, "recurring_materialize")
	tracker := j.Metrics.Track("recurring_materialize")

	created, err := j.Service.MaterializeRecurring(ctx)
	if err != nil {
		j.Logger.Error("materialize recurring", slog.Any("error", err))
		return tracker.End(err)
	}
	j.Logger.Info("recurring run complete", slog.Int("created", created))
	return tracker.End(nil)
}
