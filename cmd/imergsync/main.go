package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/chd-rasters/imerg-sync/internal/adapter/azure"
	"github.com/chd-rasters/imerg-sync/internal/adapter/gesdisc"
	httpadapter "github.com/chd-rasters/imerg-sync/internal/adapter/http"
	"github.com/chd-rasters/imerg-sync/internal/adapter/s3"
	"github.com/chd-rasters/imerg-sync/internal/config"
	"github.com/chd-rasters/imerg-sync/internal/earthdata"
	"github.com/chd-rasters/imerg-sync/internal/observability"
	"github.com/chd-rasters/imerg-sync/internal/pipeline"
	"github.com/chd-rasters/imerg-sync/internal/raster"
	"github.com/chd-rasters/imerg-sync/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	creds := earthdata.Credentials{Username: cfg.Username, Password: cfg.Password}
	httpClient, err := earthdata.NewHTTPClient(creds, cfg.DownloadTimeout)
	if err != nil {
		logger.Error("failed to build earthdata client", "error", err)
		os.Exit(1)
	}

	store, err := newStorage(cfg)
	if err != nil {
		logger.Error("failed to build storage client", "error", err, "backend", cfg.StorageBackend)
		os.Exit(1)
	}

	fetcher := gesdisc.NewClient(httpClient, cfg.Run, cfg.Version, cfg.RawTempPath, logger)
	transformer := pipeline.NewTransformer(logger)
	publisher := pipeline.NewPublisher(&raster.COG{}, store, logger)

	sync := pipeline.New(fetcher, transformer, publisher, store, pipeline.Options{
		Run:       cfg.Run,
		Version:   cfg.Version,
		StartDate: cfg.StartDate,
	}, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, sync, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	if cfg.SyncInterval > 0 {
		sched := scheduler.New(sync, cfg.SyncInterval, logger)
		if err := sched.Start(ctx); err != nil {
			logger.Error("failed to start scheduler", "error", err)
			os.Exit(1)
		}
		defer sched.Stop()
		<-ctx.Done()
	} else {
		results, err := sync.Run(ctx)
		if err != nil {
			logger.Error("sync aborted", "error", err)
		}
		synced, skipped, failed := pipeline.Summarize(results)
		logger.Info("one-shot sync complete", "synced", synced, "skipped", skipped, "failed", failed)
		stop()
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

func newStorage(cfg *config.Config) (pipeline.Storage, error) {
	switch cfg.StorageBackend {
	case config.BackendS3:
		return s3.NewClient(s3.Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
		})
	default:
		return azure.NewContainer(azure.ContainerURL(cfg.BlobBaseURL, cfg.BlobContainer, cfg.BlobSAS))
	}
}
