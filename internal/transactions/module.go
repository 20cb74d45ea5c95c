// Package transactions provides the transactions domain module: stage
// lifecycle, checklist tasks, offer scoring and transaction risk.
package transactions

import (
	"context"

	"dealdesk_backend/internal/audit"
	"dealdesk_backend/internal/events"
	apphttp "dealdesk_backend/internal/http"
	"dealdesk_backend/internal/scheduler"
	"dealdesk_backend/internal/transactions/handler"
	"dealdesk_backend/internal/transactions/repository"
	"dealdesk_backend/internal/transactions/service"
	"dealdesk_backend/internal/transactions/transport"
	"dealdesk_backend/platform/logger"
	"dealdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the transactions domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
	log     *logger.Logger
}

// NewModule creates a new transactions module with all dependencies wired.
// riskScheduler may be nil, in which case follow-up recalculations run inline.
func NewModule(pool *pgxpool.Pool, auditRecorder audit.Recorder, eventBus events.Bus, val *validator.Validator, log *logger.Logger, riskScheduler scheduler.RiskScheduler) (*Module, error) {
	if err := transport.RegisterValidations(val); err != nil {
		return nil, err
	}

	repo := repository.New(pool)

	var opts []service.Option
	if riskScheduler != nil {
		opts = append(opts, service.WithRiskScheduler(riskScheduler))
	}
	svc := service.New(repo, auditRecorder, eventBus, val, log, opts...)

	return &Module{
		handler: handler.New(svc, val),
		Service: svc,
		log:     log,
	}, nil
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "transactions"
}

// RegisterRoutes registers the module's routes under /api/v1/transactions
// and /api/v1/offers
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/transactions"))
	m.handler.RegisterOfferRoutes(ctx.Protected.Group("/offers"))
}

// RegisterHandlers subscribes the module to events that change a
// transaction's risk inputs outside its own operations.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.OfferScored{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.OfferScored)
		if !ok {
			return nil
		}
		return m.Service.RequestRiskRecalculation(ctx, e.TransactionID, "offer_scored")
	}))

	bus.Subscribe(events.DocumentUploaded{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.DocumentUploaded)
		if !ok {
			return nil
		}
		return m.Service.RequestRiskRecalculation(ctx, e.TransactionID, "document_uploaded")
	}))

	m.log.Info("transactions event handlers registered")
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
