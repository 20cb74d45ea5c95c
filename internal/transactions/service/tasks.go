package service

import (
	"context"

	"dealdesk_backend/internal/audit"
	"dealdesk_backend/internal/events"
	"dealdesk_backend/internal/transactions/domain"
	"dealdesk_backend/internal/transactions/repository"

	"github.com/google/uuid"
)

// ListTasksGrouped returns the transaction's tasks bucketed by stage.
func (s *Service) ListTasksGrouped(ctx context.Context, id uuid.UUID, userID uuid.UUID) ([]domain.TaskGroup, error) {
	if _, err := s.repo.GetTransaction(ctx, id, userID); err != nil {
		return nil, err
	}

	tasks, err := s.repo.ListTasks(ctx, id)
	if err != nil {
		return nil, err
	}

	views := make([]domain.TaskView, len(tasks))
	for i, t := range tasks {
		views[i] = taskView(t)
	}
	return domain.GroupTasksByStage(views), nil
}

// ToggleTaskResult is the updated task and the risk it led to.
type ToggleTaskResult struct {
	Task domain.TaskView
	Risk *RiskAssessment
}

// ToggleTask marks a task completed or open and recomputes transaction risk,
// since overdue tasks feed the radar.
func (s *Service) ToggleTask(ctx context.Context, id uuid.UUID, taskID uuid.UUID, userID uuid.UUID, completed bool) (ToggleTaskResult, error) {
	t, err := s.repo.GetTransaction(ctx, id, userID)
	if err != nil {
		return ToggleTaskResult{}, err
	}

	task, err := s.repo.SetTaskCompleted(ctx, t.ID, taskID, completed)
	if err != nil {
		return ToggleTaskResult{}, err
	}

	s.recordAudit(ctx, &userID, audit.ActionTaskToggled, map[string]any{
		"transaction_id": t.ID.String(),
		"task_id":        task.ID.String(),
		"completed":      completed,
	})
	s.publish(ctx, events.TaskToggled{
		BaseEvent:     events.NewBaseEvent(),
		TransactionID: t.ID,
		TaskID:        task.ID,
		UserID:        userID,
		Completed:     completed,
	})

	result := ToggleTaskResult{Task: taskView(task)}
	risk, err := s.persistRisk(ctx, t)
	if err != nil {
		s.log.WithContext(ctx).Warn("risk recalculation after task toggle failed",
			"transactionId", t.ID, "error", err)
		s.scheduleRiskRecalculation(ctx, t.ID, "task_toggled")
		return result, nil
	}
	result.Risk = &risk
	return result, nil
}

func taskView(t repository.Task) domain.TaskView {
	v := domain.TaskView{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Completed:   t.Completed,
	}
	if t.Stage != nil {
		stage := domain.Stage(*t.Stage)
		v.Stage = &stage
	}
	return v
}
