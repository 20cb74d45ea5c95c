// Package audit records append-only audit log entries.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Actions written to audit_logs.
const (
	ActionTransactionStageChange = "transaction_stage_change"
	ActionTransactionCancelled   = "transaction_cancelled"
	ActionOfferScored            = "offer_scored"
	ActionTaskToggled            = "task_toggled"
	ActionDocumentUploaded       = "document_uploaded"
)

// Entry is one audit record.
type Entry struct {
	UserID   *uuid.UUID
	Action   string
	Metadata map[string]any
}

// Recorder appends audit entries.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Repository writes audit entries to PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewRepository creates a new audit repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, now: time.Now}
}

// Record inserts entry. Rows are never updated or deleted.
func (r *Repository) Record(ctx context.Context, entry Entry) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode audit metadata: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO audit_logs (id, user_id, action, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), entry.UserID, entry.Action, metadata, r.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

var _ Recorder = (*Repository)(nil)
