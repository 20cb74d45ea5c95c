// Package repository provides PostgreSQL access for transaction documents.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dealdesk_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	transactionNotFoundMsg = "transaction not found"
	documentNotFoundMsg    = "document not found"
)

// Document represents the documents database model
type Document struct {
	ID            uuid.UUID `db:"id"`
	TransactionID uuid.UUID `db:"transaction_id"`
	DocType       string    `db:"doc_type"`
	FileKey       string    `db:"file_key"`
	FileName      string    `db:"file_name"`
	ContentType   string    `db:"content_type"`
	SizeBytes     int64     `db:"size_bytes"`
	UploadedAt    time.Time `db:"uploaded_at"`
}

// DocumentsRepository is the persistence contract of the documents service.
type DocumentsRepository interface {
	EnsureTransactionOwner(ctx context.Context, transactionID uuid.UUID, userID uuid.UUID) error
	Create(ctx context.Context, doc Document) (Document, error)
	GetByID(ctx context.Context, transactionID uuid.UUID, id uuid.UUID) (Document, error)
	ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]Document, error)
}

// Repository provides database operations for documents
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new documents repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureTransactionOwner returns NotFound unless userID owns the transaction.
func (r *Repository) EnsureTransactionOwner(ctx context.Context, transactionID uuid.UUID, userID uuid.UUID) error {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM transactions WHERE id = $1 AND user_id = $2)`,
		transactionID, userID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check transaction owner: %w", err)
	}
	if !exists {
		return apperr.NotFound(transactionNotFoundMsg)
	}
	return nil
}

// Create inserts a document. Recording the same file key twice returns the
// existing row.
func (r *Repository) Create(ctx context.Context, doc Document) (Document, error) {
	rows, err := r.pool.Query(ctx, `
		INSERT INTO documents (id, transaction_id, doc_type, file_key, file_name, content_type, size_bytes, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (file_key) DO UPDATE SET file_key = EXCLUDED.file_key
		RETURNING id, transaction_id, doc_type, file_key, file_name, content_type, size_bytes, uploaded_at`,
		doc.ID, doc.TransactionID, doc.DocType, doc.FileKey, doc.FileName, doc.ContentType, doc.SizeBytes, doc.UploadedAt,
	)
	if err != nil {
		return Document{}, fmt.Errorf("failed to insert document: %w", err)
	}

	created, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Document])
	if err != nil {
		return Document{}, fmt.Errorf("failed to insert document: %w", err)
	}
	return created, nil
}

// GetByID retrieves a document of the given transaction.
func (r *Repository) GetByID(ctx context.Context, transactionID uuid.UUID, id uuid.UUID) (Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, transaction_id, doc_type, file_key, file_name, content_type, size_bytes, uploaded_at
		FROM documents WHERE id = $1 AND transaction_id = $2`,
		id, transactionID,
	)
	if err != nil {
		return Document{}, fmt.Errorf("failed to get document: %w", err)
	}

	doc, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Document])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, apperr.NotFound(documentNotFoundMsg)
		}
		return Document{}, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// ListByTransaction returns the transaction's documents, newest first.
func (r *Repository) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, transaction_id, doc_type, file_key, file_name, content_type, size_bytes, uploaded_at
		FROM documents WHERE transaction_id = $1
		ORDER BY uploaded_at DESC, id`,
		transactionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	docs, err := pgx.CollectRows(rows, pgx.RowToStructByName[Document])
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

var _ DocumentsRepository = (*Repository)(nil)
