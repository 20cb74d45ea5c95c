package scheduler

import (
	"context"
	"fmt"
	"time"

	"dealdesk_backend/platform/config"
	"dealdesk_backend/platform/logger"

	"github.com/hibiken/asynq"
)

const defaultRiskSweepCron = "@daily"

// PeriodicScheduler enqueues the recurring risk sweep.
type PeriodicScheduler struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

func NewPeriodicScheduler(cfg config.SchedulerConfig, log *logger.Logger) (*PeriodicScheduler, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	s := asynq.NewScheduler(opt, &asynq.SchedulerOpts{Location: time.UTC})

	cron := cfg.GetRiskSweepCron()
	if cron == "" {
		cron = defaultRiskSweepCron
	}
	entryID, err := s.Register(cron, NewRiskSweepTask(),
		asynq.Queue(queueName(cfg)),
		asynq.MaxRetry(3),
		asynq.Unique(time.Hour),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register risk sweep %q: %w", cron, err)
	}
	log.Info("risk sweep registered", "cron", cron, "entryId", entryID)

	return &PeriodicScheduler{scheduler: s, log: log}, nil
}

// Run starts the scheduler and stops it when ctx is done.
func (p *PeriodicScheduler) Run(ctx context.Context) {
	if p == nil || p.scheduler == nil {
		return
	}

	if err := p.scheduler.Start(); err != nil {
		p.log.Error("periodic scheduler failed to start", "error", err)
		return
	}

	<-ctx.Done()
	p.scheduler.Shutdown()
}
