package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/revocation"
)

// PurgeWorker periodically removes revocation records whose tokens have
// already expired on their own. Purge runs off the request path; a failed run
// logs a zero count and waits for the next tick.
type PurgeWorker struct {
	store  *revocation.Store
	logger *zap.Logger
	cron   *cron.Cron
}

// NewPurgeWorker builds the worker with the given cron spec (e.g. "@hourly").
func NewPurgeWorker(store *revocation.Store, logger *zap.Logger) *PurgeWorker {
	return &PurgeWorker{
		store:  store,
		logger: logger,
		cron:   cron.New(),
	}
}

// Start schedules the purge and begins running it.
func (w *PurgeWorker) Start(spec string) error {
	_, err := w.cron.AddFunc(spec, w.runOnce)
	if err != nil {
		return err
	}
	w.cron.Start()
	w.logger.Info("revocation purge scheduled", zap.String("spec", spec))
	return nil
}

// Stop halts the schedule and waits for a running purge to finish.
func (w *PurgeWorker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
}

func (w *PurgeWorker) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count := w.store.PurgeExpired(ctx, time.Now())
	w.logger.Info("revocation purge completed", zap.Int64("deleted", count))
}
