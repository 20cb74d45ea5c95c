package scheduler

import (
	"context"
	"fmt"

	"dealdesk_backend/platform/apperr"
	"dealdesk_backend/platform/config"
	"dealdesk_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// RiskRecalculator is the transactions capability the worker drives.
type RiskRecalculator interface {
	RecalculateTransactionRisk(ctx context.Context, transactionID uuid.UUID) error
	SweepOverdueRisk(ctx context.Context) (int, error)
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	risk   RiskRecalculator
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, risk RiskRecalculator, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
		risk:   risk,
		log:    log,
	}
	w.registerHandlers()

	return w, nil
}

func (w *Worker) registerHandlers() {
	w.mux.HandleFunc(TaskRiskRecalculate, w.handleRiskRecalculate)
	w.mux.HandleFunc(TaskRiskSweep, w.handleRiskSweep)
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

func (w *Worker) handleRiskRecalculate(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseRiskRecalculatePayload(task)
	if err != nil {
		return fmt.Errorf("invalid risk recalculation payload: %v: %w", err, asynq.SkipRetry)
	}

	transactionID, err := uuid.Parse(payload.TransactionID)
	if err != nil {
		return fmt.Errorf("invalid transaction id %q: %w", payload.TransactionID, asynq.SkipRetry)
	}

	if err := w.risk.RecalculateTransactionRisk(ctx, transactionID); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			w.log.Warn("risk recalculation skipped, transaction gone", "transactionId", transactionID)
			return nil
		}
		return err
	}

	w.log.Info("risk recalculated", "transactionId", transactionID)
	return nil
}

func (w *Worker) handleRiskSweep(ctx context.Context, _ *asynq.Task) error {
	updated, err := w.risk.SweepOverdueRisk(ctx)
	if err != nil {
		return err
	}
	w.log.Info("risk sweep finished", "updated", updated)
	return nil
}
