// Package pipeline orchestrates the date-driven fetch-transform-publish sync.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/chd-rasters/imerg-sync/internal/domain"
	"github.com/chd-rasters/imerg-sync/internal/observability"
)

// Fetcher downloads the raw granule for a date and returns its local path.
type Fetcher interface {
	Fetch(ctx context.Context, date time.Time) (string, error)
}

// Transformer decodes a staged raw granule into a grid.
type Transformer interface {
	Transform(path string) (*domain.Grid, error)
}

// Publisher renders a grid and uploads it to the named remote blob.
type Publisher interface {
	Publish(ctx context.Context, grid *domain.Grid, name string) error
}

// Storage is the remote artifact store.
type Storage interface {
	List(ctx context.Context, prefix string) ([]string, error)
	Upload(ctx context.Context, name string, data []byte) error
}

// Status classifies the outcome of one date.
type Status string

const (
	StatusSynced  Status = "synced"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Result is the per-date outcome of a sync pass. Failures are carried here
// rather than thrown past the date boundary.
type Result struct {
	Date   time.Time
	Blob   string
	Status Status
	Err    error
}

// Options selects the product stream and date range for a Sync.
type Options struct {
	Run       domain.Run
	Version   int
	StartDate time.Time
}

// Sync walks every date from the configured start through yesterday and
// processes the ones whose output artifact does not exist yet. Processing is
// strictly sequential; the fetcher's reusable staging path depends on that.
type Sync struct {
	fetcher     Fetcher
	transformer Transformer
	publisher   Publisher
	store       Storage
	opts        Options
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
}

// New creates a Sync with the given stages and observability.
func New(fetcher Fetcher, transformer Transformer, publisher Publisher, store Storage, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Sync {
	return &Sync{
		fetcher:     fetcher,
		transformer: transformer,
		publisher:   publisher,
		store:       store,
		opts:        opts,
		logger:      logger,
		metrics:     metrics,
	}
}

// CheckReadiness returns nil once the sync has resolved at least one date,
// or an error describing why the service is not yet ready.
func (s *Sync) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("sync has not resolved any dates yet")
	}
	return nil
}

// Run executes one sync pass. The existence listing is fetched exactly once
// up front to bound remote calls; a failing date is logged, recorded, and
// never aborts the run. The returned error is non-nil only when the listing
// itself fails or the context is cancelled mid-pass.
func (s *Sync) Run(ctx context.Context) ([]Result, error) {
	s.metrics.SyncRunning.Set(1)
	defer s.metrics.SyncRunning.Set(0)

	prefix := domain.BlobPrefix(s.opts.Version)
	names, err := s.store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list existing artifacts: %w", err)
	}
	existing := make(map[string]struct{}, len(names))
	for _, n := range names {
		existing[n] = struct{}{}
	}

	dates := domain.Dates(s.opts.StartDate, domain.Yesterday())
	s.logger.Info("sync started",
		"run", s.opts.Run.Name(),
		"version", s.opts.Version,
		"dates", len(dates),
		"existing", len(existing),
	)

	results := make([]Result, 0, len(dates))
	for _, date := range dates {
		select {
		case <-ctx.Done():
			s.logger.Info("sync stopping", "reason", ctx.Err())
			return results, ctx.Err()
		default:
		}

		blob := domain.BlobName(s.opts.Run, s.opts.Version, date)
		if _, ok := existing[blob]; ok {
			s.logger.Debug("artifact already exists, skipping", "blob", blob)
			s.metrics.GranulesSkipped.Inc()
			results = append(results, Result{Date: date, Blob: blob, Status: StatusSkipped})
			s.ready.Store(true)
			continue
		}

		s.logger.Info("processing granule", "date", date.Format("2006-01-02"), "blob", blob)
		start := time.Now()
		if err := s.processDate(ctx, date, blob); err != nil {
			s.logger.Error("granule sync failed", "date", date.Format("2006-01-02"), "error", err)
			s.metrics.GranuleFailures.Inc()
			results = append(results, Result{Date: date, Blob: blob, Status: StatusFailed, Err: err})
			continue
		}

		s.metrics.GranuleDuration.Observe(time.Since(start).Seconds())
		s.metrics.GranulesSynced.Inc()
		s.ready.Store(true)
		results = append(results, Result{Date: date, Blob: blob, Status: StatusSynced})
	}

	synced, skipped, failed := Summarize(results)
	s.logger.Info("sync finished", "synced", synced, "skipped", skipped, "failed", failed)
	return results, nil
}

// processDate runs the three stages for one date. Errors carry the failing
// stage; no stage attempts local recovery.
func (s *Sync) processDate(ctx context.Context, date time.Time, blob string) error {
	stageStart := time.Now()
	path, err := s.fetcher.Fetch(ctx, date)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	s.metrics.StageDuration.WithLabelValues("fetch").Observe(time.Since(stageStart).Seconds())
	if info, statErr := os.Stat(path); statErr == nil {
		s.metrics.DownloadBytes.Add(float64(info.Size()))
	}

	stageStart = time.Now()
	grid, err := s.transformer.Transform(path)
	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	s.metrics.StageDuration.WithLabelValues("transform").Observe(time.Since(stageStart).Seconds())

	stageStart = time.Now()
	if err := s.publisher.Publish(ctx, grid, blob); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	s.metrics.StageDuration.WithLabelValues("publish").Observe(time.Since(stageStart).Seconds())
	return nil
}

// Summarize counts results by status.
func Summarize(results []Result) (synced, skipped, failed int) {
	for _, r := range results {
		switch r.Status {
		case StatusSynced:
			synced++
		case StatusSkipped:
			skipped++
		case StatusFailed:
			failed++
		}
	}
	return synced, skipped, failed
}
