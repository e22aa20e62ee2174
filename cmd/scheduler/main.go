package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lead_feedback_backend/internal/adapters/storage"
	analyticsrepo "lead_feedback_backend/internal/analytics/repository"
	analyticsservice "lead_feedback_backend/internal/analytics/service"
	feedbackrepo "lead_feedback_backend/internal/feedback/repository"
	feedbackservice "lead_feedback_backend/internal/feedback/service"
	"lead_feedback_backend/internal/scheduler"
	"lead_feedback_backend/platform/config"
	"lead_feedback_backend/platform/db"
	"lead_feedback_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	// Worker-side services (no HTTP handlers required).
	feedbackSvc := feedbackservice.New(feedbackrepo.New(pool), cfg, nil, log)
	analyticsSvc := analyticsservice.New(analyticsrepo.New(pool), cfg, nil, log)

	var archiver *scheduler.ExportArchiver
	if cfg.IsMinIOEnabled() {
		storageSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		archiver = scheduler.NewExportArchiver(analyticsSvc, storageSvc, cfg.GetMinioBucketAnalyticsExports(), log)
		log.Info("storage service initialized", "analyticsExportsBucket", cfg.GetMinioBucketAnalyticsExports())
	} else {
		log.Warn("MINIO_ENDPOINT not configured; analytics export archiving disabled")
	}

	periodic, err := scheduler.NewPeriodic(cfg, archiver != nil, log)
	if err != nil {
		log.Error("failed to initialize periodic scheduler", "error", err)
		panic("failed to initialize periodic scheduler: " + err.Error())
	}
	go periodic.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, feedbackSvc, archiver, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
