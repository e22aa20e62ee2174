package scheduler

import (
	"context"
	"fmt"

	"lead_feedback_backend/platform/config"
	"lead_feedback_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Periodic enqueues the recurring maintenance tasks on their cron schedules.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

func NewPeriodic(cfg config.SchedulerConfig, archiveEnabled bool, log *logger.Logger) (*Periodic, error) {
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

	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		EnqueueErrorHandler: func(task *asynq.Task, _ []asynq.Option, err error) {
			log.Error("failed to enqueue periodic task", "task", task.Type(), "error", err)
		},
	})

	for _, entry := range periodicEntries(cfg, archiveEnabled) {
		if entry.spec == "" {
			continue
		}
		if _, err := scheduler.Register(entry.spec, entry.task, asynq.Queue(queue)); err != nil {
			return nil, fmt.Errorf("register %s: %w", entry.task.Type(), err)
		}
		log.Info("periodic task registered", "task", entry.task.Type(), "spec", entry.spec)
	}

	return &Periodic{scheduler: scheduler, log: log}, nil
}

type periodicEntry struct {
	spec string
	task *asynq.Task
}

func periodicEntries(cfg config.SchedulerConfig, archiveEnabled bool) []periodicEntry {
	entries := []periodicEntry{{
		spec: cfg.GetBrokerStatsReconcileCron(),
		task: asynq.NewTask(TaskBrokerStatsReconcile, []byte(`{"requestedBy":"schedule"}`)),
	}}
	if archiveEnabled {
		entries = append(entries, periodicEntry{
			spec: cfg.GetAnalyticsArchiveCron(),
			task: asynq.NewTask(TaskAnalyticsExportArchive, nil),
		})
	}
	return entries
}

func (p *Periodic) Run(ctx context.Context) {
	if p == nil || p.scheduler == nil {
		return
	}

	if err := p.scheduler.Start(); err != nil {
		p.log.Error("periodic scheduler stopped", "error", err)
		return
	}
	<-ctx.Done()
	p.scheduler.Shutdown()
}
