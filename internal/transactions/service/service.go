// Package service orchestrates the transaction decision core: it reads
// projections from the repository, runs the pure engines and writes the
// derived fields, audit records and events back.
package service

import (
	"context"
	"time"

	"dealdesk_backend/internal/audit"
	"dealdesk_backend/internal/events"
	"dealdesk_backend/internal/scheduler"
	"dealdesk_backend/internal/transactions/domain"
	"dealdesk_backend/internal/transactions/repository"
	"dealdesk_backend/platform/logger"
	"dealdesk_backend/platform/validator"

	"github.com/google/uuid"
)

// Service provides business logic for transactions, tasks and offers
type Service struct {
	repo          repository.TransactionsRepository
	audit         audit.Recorder
	eventBus      events.Bus
	riskScheduler scheduler.RiskScheduler
	val           *validator.Validator
	log           *logger.Logger
	now           func() time.Time
}

// Option configures optional collaborators.
type Option func(*Service)

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRiskScheduler enables background retries of failed risk recalculations.
func WithRiskScheduler(rs scheduler.RiskScheduler) Option {
	return func(s *Service) { s.riskScheduler = rs }
}

// New creates a new transactions service
func New(repo repository.TransactionsRepository, auditRecorder audit.Recorder, eventBus events.Bus, val *validator.Validator, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		audit:    auditRecorder,
		eventBus: eventBus,
		val:      val,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TransactionView is a transaction with its stage display projection.
type TransactionView struct {
	Transaction repository.Transaction
	Display     domain.DisplayData
}

// Get returns a transaction owned by userID.
func (s *Service) Get(ctx context.Context, id uuid.UUID, userID uuid.UUID) (TransactionView, error) {
	t, err := s.repo.GetTransaction(ctx, id, userID)
	if err != nil {
		return TransactionView{}, err
	}
	return s.view(t), nil
}

func (s *Service) view(t repository.Transaction) TransactionView {
	return TransactionView{
		Transaction: t,
		Display:     domain.BuildDisplayData(domain.Stage(t.Stage), t.Status),
	}
}

// today is the current calendar date in UTC.
func (s *Service) today() time.Time {
	return domain.DateOf(s.now())
}

// recordAudit writes an audit entry. A failed write is logged and never
// changes the outcome of the operation that triggered it.
func (s *Service) recordAudit(ctx context.Context, userID *uuid.UUID, action string, metadata map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, audit.Entry{UserID: userID, Action: action, Metadata: metadata}); err != nil {
		s.log.WithContext(ctx).AuditWriteFailed(action, err)
	}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.eventBus == nil {
		return
	}
	s.eventBus.Publish(ctx, event)
}
