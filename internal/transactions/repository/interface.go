package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TransactionReader provides read access to transactions. Lookups scoped by
// user return a not found error for rows owned by someone else.
type TransactionReader interface {
	GetTransaction(ctx context.Context, id uuid.UUID, userID uuid.UUID) (Transaction, error)
	GetTransactionByID(ctx context.Context, id uuid.UUID) (Transaction, error)
	ListRecalculationCandidates(ctx context.Context, today time.Time, limit int) ([]uuid.UUID, error)
}

// TransactionWriter applies state machine results and derived risk.
type TransactionWriter interface {
	ApplyStageChange(ctx context.Context, change StageChange) (int, error)
	UpdateRiskScore(ctx context.Context, id uuid.UUID, score int) error
}

// TaskStore manages checklist tasks.
type TaskStore interface {
	ListTaskTitles(ctx context.Context, transactionID uuid.UUID) ([]string, error)
	ListTasks(ctx context.Context, transactionID uuid.UUID) ([]Task, error)
	SetTaskCompleted(ctx context.Context, transactionID uuid.UUID, taskID uuid.UUID, completed bool) (Task, error)
}

// RiskSignalReader reads the inputs of the transaction risk radar.
type RiskSignalReader interface {
	ListDocumentTypes(ctx context.Context, transactionID uuid.UUID) ([]string, error)
	ListRiskFlags(ctx context.Context, transactionID uuid.UUID) ([]RiskFlag, error)
	BestOfferRisk(ctx context.Context, transactionID uuid.UUID) (*int, error)
}

// OfferStore is the offer access available inside a locked offer cycle.
type OfferStore interface {
	GetOfferContext(ctx context.Context, offerID uuid.UUID) (OfferContext, error)
	SaveEvaluation(ctx context.Context, offerID uuid.UUID, eval OfferEvaluation) error
	ListRankCandidates(ctx context.Context, transactionID uuid.UUID) ([]RankCandidate, error)
	UpdateRanks(ctx context.Context, updates []RankUpdate) error
}

// OfferLocker serializes offer scoring per transaction. fn runs inside a
// database transaction holding a row lock on the parent transaction; its
// writes commit only if fn returns nil.
type OfferLocker interface {
	OfferTransactionID(ctx context.Context, offerID uuid.UUID, userID uuid.UUID) (uuid.UUID, error)
	WithOfferLock(ctx context.Context, transactionID uuid.UUID, fn func(OfferStore) error) error
	ListRankCandidates(ctx context.Context, transactionID uuid.UUID) ([]RankCandidate, error)
}

// TransactionsRepository is the complete data access surface of the module.
type TransactionsRepository interface {
	TransactionReader
	TransactionWriter
	TaskStore
	RiskSignalReader
	OfferLocker
}

// Ensure Repository implements TransactionsRepository
var _ TransactionsRepository = (*Repository)(nil)
