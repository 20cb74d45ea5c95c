package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dealdesk_backend/internal/transactions/domain"
	"dealdesk_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	transactionNotFoundMsg = "transaction not found"
	offerNotFoundMsg       = "offer not found"
	taskNotFoundMsg        = "task not found"
)

// querier is the subset of pgx shared by the pool and an open transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Repository provides database operations for transactions, their tasks,
// offers and risk signals.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new transactions repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const transactionColumns = `id, user_id, property_id, role, stage, status, risk_score, closing_date, created_at, updated_at`

func scanTransaction(row pgx.Row) (Transaction, error) {
	var t Transaction
	err := row.Scan(
		&t.ID, &t.UserID, &t.PropertyID, &t.Role, &t.Stage, &t.Status,
		&t.RiskScore, &t.ClosingDate, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

// GetTransaction retrieves a transaction owned by userID.
func (r *Repository) GetTransaction(ctx context.Context, id uuid.UUID, userID uuid.UUID) (Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND user_id = $2`

	t, err := scanTransaction(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, apperr.NotFound(transactionNotFoundMsg)
		}
		return Transaction{}, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

// GetTransactionByID retrieves a transaction without an ownership check.
// Only background jobs use it.
func (r *Repository) GetTransactionByID(ctx context.Context, id uuid.UUID) (Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	t, err := scanTransaction(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, apperr.NotFound(transactionNotFoundMsg)
		}
		return Transaction{}, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

// ListRecalculationCandidates returns active transactions that have at least
// one incomplete task due before today.
func (r *Repository) ListRecalculationCandidates(ctx context.Context, today time.Time, limit int) ([]uuid.UUID, error) {
	if limit < 1 {
		limit = 500
	}

	rows, err := r.pool.Query(ctx, `
		SELECT t.id
		FROM transactions t
		WHERE t.status = $1
		  AND EXISTS (
			SELECT 1 FROM tasks k
			WHERE k.transaction_id = t.id
			  AND k.completed = false
			  AND k.due_date < $2
		  )
		ORDER BY t.updated_at ASC
		LIMIT $3`, domain.StatusActive, domain.DateOf(today), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recalculation candidates: %w", err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan transaction id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transaction ids: %w", err)
	}
	return ids, nil
}

// ApplyStageChange moves the transaction from change.From to change.To and
// inserts the new stage's tasks in one database transaction. The update only
// matches while the stored stage still equals change.From, so a concurrent
// change makes this call fail with a conflict instead of skipping a stage.
// Tasks whose title already exists are ignored. It returns the number of
// tasks inserted.
func (r *Repository) ApplyStageChange(ctx context.Context, change StageChange) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE transactions
		SET stage = $3, status = $4, updated_at = now()
		WHERE id = $1 AND user_id = $2 AND stage = $5`,
		change.TransactionID, change.UserID, change.To, change.Status, change.From,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update stage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, apperr.Conflict("transaction stage changed concurrently, reload and try again")
	}

	inserted := 0
	for _, task := range change.Tasks {
		tag, err := tx.Exec(ctx, `
			INSERT INTO tasks (id, transaction_id, stage, title, description, due_date, completed)
			VALUES ($1, $2, $3, $4, $5, $6, false)
			ON CONFLICT (transaction_id, title) DO NOTHING`,
			uuid.New(), change.TransactionID, task.Stage, task.Title, task.Description, task.DueDate,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert task %q: %w", task.Title, err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit stage change: %w", err)
	}
	return inserted, nil
}

// UpdateRiskScore persists the transaction's derived risk score.
func (r *Repository) UpdateRiskScore(ctx context.Context, id uuid.UUID, score int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE transactions SET risk_score = $2, updated_at = now() WHERE id = $1`,
		id, score,
	)
	if err != nil {
		return fmt.Errorf("failed to update risk score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(transactionNotFoundMsg)
	}
	return nil
}

// ListDocumentTypes returns the doc_type of every document on the transaction.
func (r *Repository) ListDocumentTypes(ctx context.Context, transactionID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT doc_type FROM documents WHERE transaction_id = $1`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list document types: %w", err)
	}

	types, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan document types: %w", err)
	}
	return types, nil
}

// ListRiskFlags returns every flag raised on the transaction.
func (r *Repository) ListRiskFlags(ctx context.Context, transactionID uuid.UUID) ([]RiskFlag, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, transaction_id, severity, resolved FROM risk_flags WHERE transaction_id = $1`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list risk flags: %w", err)
	}

	flags, err := pgx.CollectRows(rows, pgx.RowToStructByName[RiskFlag])
	if err != nil {
		return nil, fmt.Errorf("failed to scan risk flags: %w", err)
	}
	return flags, nil
}

// BestOfferRisk returns the highest risk score among the transaction's
// offers, or nil when none has been scored.
func (r *Repository) BestOfferRisk(ctx context.Context, transactionID uuid.UUID) (*int, error) {
	var best *int
	err := r.pool.QueryRow(ctx,
		`SELECT MAX(risk_score) FROM offers WHERE transaction_id = $1`, transactionID,
	).Scan(&best)
	if err != nil {
		return nil, fmt.Errorf("failed to get best offer risk: %w", err)
	}
	return best, nil
}
