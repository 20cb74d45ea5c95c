package service

import (
	"context"

	"dealdesk_backend/internal/audit"
	"dealdesk_backend/internal/events"
	"dealdesk_backend/internal/transactions/domain"
	"dealdesk_backend/internal/transactions/repository"
	"dealdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

// StageChangeResult describes a committed stage transition.
type StageChangeResult struct {
	Transaction   TransactionView
	PreviousStage domain.Stage
	TasksCreated  int
	// Risk is nil when the follow-up risk recalculation failed; a
	// background retry has been queued in that case.
	Risk *RiskAssessment
}

// AdvanceStage moves the transaction to the next stage, seeds the new
// stage's checklist and recomputes transaction risk.
func (s *Service) AdvanceStage(ctx context.Context, id uuid.UUID, userID uuid.UUID) (StageChangeResult, error) {
	t, err := s.repo.GetTransaction(ctx, id, userID)
	if err != nil {
		return StageChangeResult{}, err
	}

	current := domain.Stage(t.Stage)
	switch current {
	case domain.StageClosed:
		return StageChangeResult{}, apperr.Conflict(domain.MsgCannotAdvancePastClosed)
	case domain.StageCancelled:
		return StageChangeResult{}, apperr.Conflict(domain.MsgTransactionCancelled)
	}

	next, ok := domain.NextStage(current)
	if !ok {
		return StageChangeResult{}, apperr.Conflict(domain.MsgUnknownStage)
	}
	return s.moveForward(ctx, t, userID, next)
}

// TransitionStage moves the transaction to an explicitly requested stage.
// Only the immediate successor and cancelled are accepted.
func (s *Service) TransitionStage(ctx context.Context, id uuid.UUID, userID uuid.UUID, next domain.Stage) (StageChangeResult, error) {
	if !domain.IsKnown(next) {
		return StageChangeResult{}, apperr.Validation(domain.MsgUnknownStage)
	}
	if next == domain.StageCancelled {
		return s.CancelTransaction(ctx, id, userID)
	}

	t, err := s.repo.GetTransaction(ctx, id, userID)
	if err != nil {
		return StageChangeResult{}, err
	}
	return s.moveForward(ctx, t, userID, next)
}

// CancelTransaction takes the side-exit from any non-terminal stage.
func (s *Service) CancelTransaction(ctx context.Context, id uuid.UUID, userID uuid.UUID) (StageChangeResult, error) {
	t, err := s.repo.GetTransaction(ctx, id, userID)
	if err != nil {
		return StageChangeResult{}, err
	}

	previous := domain.Stage(t.Stage)
	if reason := domain.RejectTransition(previous, domain.StageCancelled); reason != "" {
		return StageChangeResult{}, apperr.Conflict(reason)
	}

	if _, err := s.repo.ApplyStageChange(ctx, repository.StageChange{
		TransactionID: t.ID,
		UserID:        userID,
		From:          t.Stage,
		To:            string(domain.StageCancelled),
		Status:        domain.StatusCancelled,
	}); err != nil {
		return StageChangeResult{}, err
	}

	t.Stage = string(domain.StageCancelled)
	t.Status = domain.StatusCancelled

	s.recordAudit(ctx, &userID, audit.ActionTransactionCancelled, map[string]any{
		"transaction_id": t.ID.String(),
		"previous_stage": string(previous),
	})
	s.publish(ctx, events.TransactionCancelled{
		BaseEvent:     events.NewBaseEvent(),
		TransactionID: t.ID,
		UserID:        userID,
		PreviousStage: string(previous),
	})
	s.log.WithContext(ctx).Info("transaction cancelled", "transactionId", t.ID, "previousStage", previous)

	return StageChangeResult{
		Transaction:   s.view(t),
		PreviousStage: previous,
	}, nil
}

func (s *Service) moveForward(ctx context.Context, t repository.Transaction, userID uuid.UUID, next domain.Stage) (StageChangeResult, error) {
	previous := domain.Stage(t.Stage)
	if reason := domain.RejectTransition(previous, next); reason != "" {
		return StageChangeResult{}, apperr.Conflict(reason)
	}

	existing, err := s.repo.ListTaskTitles(ctx, t.ID)
	if err != nil {
		return StageChangeResult{}, err
	}
	planned := domain.PlanTasks(next, existing, s.today())

	tasks := make([]repository.NewTask, 0, len(planned))
	for _, p := range planned {
		tasks = append(tasks, repository.NewTask{
			Stage:       string(p.Stage),
			Title:       p.Title,
			Description: p.Description,
			DueDate:     p.DueDate,
		})
	}

	created, err := s.repo.ApplyStageChange(ctx, repository.StageChange{
		TransactionID: t.ID,
		UserID:        userID,
		From:          t.Stage,
		To:            string(next),
		Status:        domain.StatusFor(next),
		Tasks:         tasks,
	})
	if err != nil {
		return StageChangeResult{}, err
	}

	t.Stage = string(next)
	t.Status = domain.StatusFor(next)

	s.recordAudit(ctx, &userID, audit.ActionTransactionStageChange, map[string]any{
		"transaction_id": t.ID.String(),
		"previous_stage": string(previous),
		"new_stage":      string(next),
	})
	s.publish(ctx, events.TransactionStageChanged{
		BaseEvent:     events.NewBaseEvent(),
		TransactionID: t.ID,
		UserID:        userID,
		PreviousStage: string(previous),
		NewStage:      string(next),
		TasksCreated:  created,
	})
	s.log.WithContext(ctx).Info("transaction stage changed",
		"transactionId", t.ID, "from", previous, "to", next, "tasksCreated", created)

	result := StageChangeResult{PreviousStage: previous, TasksCreated: created}

	risk, err := s.persistRisk(ctx, t)
	if err != nil {
		// The stage change is committed; hand the recalculation to the worker.
		s.log.WithContext(ctx).Warn("risk recalculation after stage change failed",
			"transactionId", t.ID, "error", err)
		s.scheduleRiskRecalculation(ctx, t.ID, "stage_change")
	} else {
		result.Risk = &risk
		t.RiskScore = &risk.RiskScore
	}

	result.Transaction = s.view(t)
	return result, nil
}
