package service

import (
	"context"

	"dealdesk_backend/internal/events"
	"dealdesk_backend/internal/transactions/domain"
	"dealdesk_backend/internal/transactions/radar"
	"dealdesk_backend/internal/transactions/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// sweepBatchSize bounds how many transactions one sweep run recalculates.
const sweepBatchSize = 500

// RiskAssessment is a computed transaction risk and the signals behind it.
type RiskAssessment struct {
	TransactionID           uuid.UUID
	Stage                   domain.Stage
	Aggregate               int
	BestOfferRisk           *int
	RiskScore               int
	FlagSeverityScore       int
	OverdueTaskCount        int
	UnresolvedHighFlagCount int
	DocumentTypes           []string
}

// RecalculateRisk recomputes and persists the risk of a transaction owned by userID.
func (s *Service) RecalculateRisk(ctx context.Context, id uuid.UUID, userID uuid.UUID) (RiskAssessment, error) {
	t, err := s.repo.GetTransaction(ctx, id, userID)
	if err != nil {
		return RiskAssessment{}, err
	}
	return s.persistRisk(ctx, t)
}

// RecalculateRiskForTransaction is the ownerless variant used by background
// jobs and event handlers.
func (s *Service) RecalculateRiskForTransaction(ctx context.Context, id uuid.UUID) (RiskAssessment, error) {
	t, err := s.repo.GetTransactionByID(ctx, id)
	if err != nil {
		return RiskAssessment{}, err
	}
	return s.persistRisk(ctx, t)
}

// RiskSummary computes the current risk without persisting it.
func (s *Service) RiskSummary(ctx context.Context, id uuid.UUID, userID uuid.UUID) (RiskAssessment, error) {
	t, err := s.repo.GetTransaction(ctx, id, userID)
	if err != nil {
		return RiskAssessment{}, err
	}
	return s.assessRisk(ctx, t)
}

// SweepOverdueRisk recalculates active transactions with overdue tasks.
// Overdue status changes with the calendar alone, so nothing else would
// trigger these recalculations. It returns how many were updated.
func (s *Service) SweepOverdueRisk(ctx context.Context) (int, error) {
	ids, err := s.repo.ListRecalculationCandidates(ctx, s.today(), sweepBatchSize)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		if _, err := s.RecalculateRiskForTransaction(ctx, id); err != nil {
			s.log.WithContext(ctx).Warn("risk sweep skipped transaction", "transactionId", id, "error", err)
			continue
		}
		updated++
	}
	return updated, nil
}

func (s *Service) persistRisk(ctx context.Context, t repository.Transaction) (RiskAssessment, error) {
	assessment, err := s.assessRisk(ctx, t)
	if err != nil {
		return RiskAssessment{}, err
	}

	if err := s.repo.UpdateRiskScore(ctx, t.ID, assessment.RiskScore); err != nil {
		return RiskAssessment{}, err
	}

	s.publish(ctx, events.TransactionRiskUpdated{
		BaseEvent:     events.NewBaseEvent(),
		TransactionID: t.ID,
		Aggregate:     assessment.Aggregate,
		RiskScore:     assessment.RiskScore,
	})
	return assessment, nil
}

// assessRisk fetches the radar's signals in parallel, aggregates them and
// applies the best offer as a floor.
func (s *Service) assessRisk(ctx context.Context, t repository.Transaction) (RiskAssessment, error) {
	var (
		docTypes []string
		tasks    []repository.Task
		flags    []repository.RiskFlag
		best     *int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		docTypes, err = s.repo.ListDocumentTypes(gctx, t.ID)
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = s.repo.ListTasks(gctx, t.ID)
		return err
	})
	g.Go(func() error {
		var err error
		flags, err = s.repo.ListRiskFlags(gctx, t.ID)
		return err
	})
	g.Go(func() error {
		var err error
		best, err = s.repo.BestOfferRisk(gctx, t.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return RiskAssessment{}, err
	}

	radarTasks := make([]radar.Task, len(tasks))
	for i, task := range tasks {
		radarTasks[i] = radar.Task{DueDate: task.DueDate, Completed: task.Completed}
	}
	radarFlags := make([]radar.Flag, len(flags))
	for i, f := range flags {
		radarFlags[i] = radar.Flag{Severity: radar.Severity(f.Severity), Resolved: f.Resolved}
	}

	factors := radar.Factors{
		Stage:                   domain.Stage(t.Stage),
		DocumentTypes:           docTypes,
		OverdueTaskCount:        radar.CountOverdue(radarTasks, s.today()),
		UnresolvedHighFlagCount: radar.CountUnresolvedHigh(radarFlags),
	}
	aggregate := radar.ComputeFromFactors(factors)

	return RiskAssessment{
		TransactionID:           t.ID,
		Stage:                   factors.Stage,
		Aggregate:               aggregate,
		BestOfferRisk:           best,
		RiskScore:               radar.ApplyOfferFloor(aggregate, best),
		FlagSeverityScore:       radar.FlagSeverityScore(radarFlags, best),
		OverdueTaskCount:        factors.OverdueTaskCount,
		UnresolvedHighFlagCount: factors.UnresolvedHighFlagCount,
		DocumentTypes:           docTypes,
	}, nil
}

// scheduleRiskRecalculation hands a recalculation to the background worker
// when one is configured.
func (s *Service) scheduleRiskRecalculation(ctx context.Context, id uuid.UUID, reason string) {
	if s.riskScheduler == nil {
		return
	}
	if err := s.riskScheduler.EnqueueRiskRecalculation(ctx, id); err != nil {
		s.log.WithContext(ctx).Error("failed to enqueue risk recalculation",
			"transactionId", id, "reason", reason, "error", err)
		return
	}
	s.log.WithContext(ctx).Info("risk recalculation queued", "transactionId", id, "reason", reason)
}

// RequestRiskRecalculation queues a recalculation in the background, or runs
// it inline when no scheduler is configured. Event handlers use it.
func (s *Service) RequestRiskRecalculation(ctx context.Context, id uuid.UUID, reason string) error {
	if s.riskScheduler != nil {
		if err := s.riskScheduler.EnqueueRiskRecalculation(ctx, id); err != nil {
			return err
		}
		s.log.WithContext(ctx).Info("risk recalculation queued", "transactionId", id, "reason", reason)
		return nil
	}
	_, err := s.RecalculateRiskForTransaction(ctx, id)
	return err
}
