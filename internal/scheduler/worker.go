package scheduler

import (
	"context"
	"fmt"

	"lead_feedback_backend/platform/config"
	"lead_feedback_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// BrokerStatsReconciler recomputes every broker aggregate from the ledger.
type BrokerStatsReconciler interface {
	ReconcileBrokerStats(ctx context.Context) (int, error)
}

type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	reconciler BrokerStatsReconciler
	archiver   *ExportArchiver
	log        *logger.Logger
}

// NewWorker builds the task server. archiver may be nil when object storage
// is not configured; archive tasks are then skipped.
func NewWorker(cfg config.SchedulerConfig, reconciler BrokerStatsReconciler, archiver *ExportArchiver, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	w := newWorker(reconciler, archiver, log)
	w.server = server
	return w, nil
}

func newWorker(reconciler BrokerStatsReconciler, archiver *ExportArchiver, log *logger.Logger) *Worker {
	mux := asynq.NewServeMux()
	w := &Worker{
		mux:        mux,
		reconciler: reconciler,
		archiver:   archiver,
		log:        log,
	}

	mux.HandleFunc(TaskBrokerStatsReconcile, w.handleBrokerStatsReconcile)
	mux.HandleFunc(TaskAnalyticsExportArchive, w.handleAnalyticsExportArchive)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleBrokerStatsReconcile(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseBrokerStatsReconcilePayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	refreshed, err := w.reconciler.ReconcileBrokerStats(ctx)
	w.log.JobEvent(TaskBrokerStatsReconcile, err, "refreshed", refreshed, "requestedBy", payload.RequestedBy)
	return err
}

func (w *Worker) handleAnalyticsExportArchive(ctx context.Context, task *asynq.Task) error {
	if w.archiver == nil {
		w.log.Warn("analytics export archive skipped: object storage not configured")
		return nil
	}

	payload, err := ParseAnalyticsExportArchivePayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	keys, err := w.archiver.Archive(ctx, payload.Formats)
	w.log.JobEvent(TaskAnalyticsExportArchive, err, "objects", len(keys))
	return err
}
