package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/chd-rasters/imerg-sync/internal/pipeline"
	"github.com/go-co-op/gocron"
)

// SyncRunner runs one full catch-up pass over the date window.
type SyncRunner interface {
	Run(ctx context.Context) ([]pipeline.Result, error)
}

// Scheduler re-runs the sync on a fixed interval so newly published
// granules are picked up without redeploying. Runs never overlap.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    SyncRunner
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a scheduler that triggers the runner every interval.
func New(runner SyncRunner, interval time.Duration, logger *slog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		runner:    runner,
		interval:  interval,
		logger:    logger,
	}
}

// Start registers the recurring job and starts the scheduler in the
// background. The first run fires immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.scheduler.Every(s.interval).StartImmediately().Do(func() {
		results, err := s.runner.Run(ctx)
		if err != nil {
			s.logger.Error("scheduled sync aborted", "error", err)
			return
		}
		synced, skipped, failed := pipeline.Summarize(results)
		s.logger.Info("scheduled sync complete",
			"synced", synced, "skipped", skipped, "failed", failed)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", "interval", s.interval)
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}
