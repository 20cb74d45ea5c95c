package repository

import (
	"time"

	"github.com/google/uuid"
)

// Transaction represents the transactions database model
type Transaction struct {
	ID          uuid.UUID  `db:"id"`
	UserID      uuid.UUID  `db:"user_id"`
	PropertyID  *uuid.UUID `db:"property_id"`
	Role        *string    `db:"role"`
	Stage       string     `db:"stage"`
	Status      string     `db:"status"`
	RiskScore   *int       `db:"risk_score"`
	ClosingDate *time.Time `db:"closing_date"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// Offer represents the offers database model
type Offer struct {
	ID                 uuid.UUID `db:"id"`
	TransactionID      uuid.UUID `db:"transaction_id"`
	Price              float64   `db:"price"`
	FinancingType      *string   `db:"financing_type"`
	DownPaymentPercent float64   `db:"down_payment_percent"`
	ContingenciesCount int       `db:"contingencies_count"`
	ClosingDays        int       `db:"closing_days"`
	AppraisalGap       *float64  `db:"appraisal_gap"`
	RiskScore          *int      `db:"risk_score"`
	RiskBreakdown      []byte    `db:"risk_breakdown"`
	RiskExplanation    []byte    `db:"risk_explanation"`
	Rank               *int      `db:"rank"`
	NetProceeds        *float64  `db:"net_proceeds"`
	CreatedAt          time.Time `db:"created_at"`
}

// OfferContext is an offer together with what scoring needs from its parents.
type OfferContext struct {
	Offer
	OwnerID        uuid.UUID `db:"user_id"`
	EstimatedValue *float64  `db:"estimated_value"`
}

// OfferEvaluation holds the derived offer fields written after scoring.
type OfferEvaluation struct {
	RiskScore       int
	RiskBreakdown   []byte
	RiskExplanation []byte
	NetProceeds     float64
}

// RankCandidate is the slice of an offer the re-ranker reads.
type RankCandidate struct {
	ID        uuid.UUID `db:"id"`
	RiskScore *int      `db:"risk_score"`
	Price     float64   `db:"price"`
}

// RankUpdate assigns a rank to one offer.
type RankUpdate struct {
	OfferID uuid.UUID
	Rank    int
}

// Task represents the tasks database model
type Task struct {
	ID            uuid.UUID  `db:"id"`
	TransactionID uuid.UUID  `db:"transaction_id"`
	Stage         *string    `db:"stage"`
	Title         string     `db:"title"`
	Description   *string    `db:"description"`
	DueDate       *time.Time `db:"due_date"`
	Completed     bool       `db:"completed"`
	CreatedAt     time.Time  `db:"created_at"`
}

// NewTask is a task to insert on stage entry.
type NewTask struct {
	Stage       string
	Title       string
	Description string
	DueDate     *time.Time
}

// StageChange moves a transaction from one stage to the next and seeds its tasks.
type StageChange struct {
	TransactionID uuid.UUID
	UserID        uuid.UUID
	From          string
	To            string
	Status        string
	Tasks         []NewTask
}

// RiskFlag represents the risk_flags database model
type RiskFlag struct {
	ID            uuid.UUID `db:"id"`
	TransactionID uuid.UUID `db:"transaction_id"`
	Severity      string    `db:"severity"`
	Resolved      bool      `db:"resolved"`
}
