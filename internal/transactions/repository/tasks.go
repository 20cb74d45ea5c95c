package repository

import (
	"context"
	"errors"
	"fmt"

	"dealdesk_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const taskColumns = `id, transaction_id, stage, title, description, due_date, completed, created_at`

// ListTaskTitles returns the titles of every task on the transaction.
func (r *Repository) ListTaskTitles(ctx context.Context, transactionID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT title FROM tasks WHERE transaction_id = $1`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list task titles: %w", err)
	}

	titles, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan task titles: %w", err)
	}
	return titles, nil
}

// ListTasks returns the transaction's tasks, earliest due first.
func (r *Repository) ListTasks(ctx context.Context, transactionID uuid.UUID) ([]Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE transaction_id = $1
		ORDER BY due_date ASC NULLS LAST, created_at ASC`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks, err := pgx.CollectRows(rows, pgx.RowToStructByName[Task])
	if err != nil {
		return nil, fmt.Errorf("failed to scan tasks: %w", err)
	}
	return tasks, nil
}

// SetTaskCompleted updates a task's completion flag. The task must belong to
// transactionID.
func (r *Repository) SetTaskCompleted(ctx context.Context, transactionID uuid.UUID, taskID uuid.UUID, completed bool) (Task, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE tasks SET completed = $3
		WHERE id = $1 AND transaction_id = $2
		RETURNING `+taskColumns, taskID, transactionID, completed)
	if err != nil {
		return Task{}, fmt.Errorf("failed to update task: %w", err)
	}

	task, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Task])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, apperr.NotFound(taskNotFoundMsg)
		}
		return Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}
