// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"dealdesk_backend/platform/events"
	"dealdesk_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates the process-local bus used by cmd/api.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Transaction Domain Events
// =============================================================================

// TransactionStageChanged is published after a transaction moved forward one stage.
type TransactionStageChanged struct {
	BaseEvent
	TransactionID uuid.UUID `json:"transactionId"`
	UserID        uuid.UUID `json:"userId"`
	PreviousStage string    `json:"previousStage"`
	NewStage      string    `json:"newStage"`
	TasksCreated  int       `json:"tasksCreated"`
}

func (e TransactionStageChanged) EventName() string { return "transactions.stage.changed" }

// TransactionCancelled is published when a transaction takes the side-exit.
type TransactionCancelled struct {
	BaseEvent
	TransactionID uuid.UUID `json:"transactionId"`
	UserID        uuid.UUID `json:"userId"`
	PreviousStage string    `json:"previousStage"`
}

func (e TransactionCancelled) EventName() string { return "transactions.transaction.cancelled" }

// TaskToggled is published when a checklist task is completed or reopened.
type TaskToggled struct {
	BaseEvent
	TransactionID uuid.UUID `json:"transactionId"`
	TaskID        uuid.UUID `json:"taskId"`
	UserID        uuid.UUID `json:"userId"`
	Completed     bool      `json:"completed"`
}

func (e TaskToggled) EventName() string { return "transactions.task.toggled" }

// TransactionRiskUpdated is published after a transaction risk score was persisted.
type TransactionRiskUpdated struct {
	BaseEvent
	TransactionID uuid.UUID `json:"transactionId"`
	Aggregate     int       `json:"aggregate"`
	RiskScore     int       `json:"riskScore"`
}

func (e TransactionRiskUpdated) EventName() string { return "transactions.risk.updated" }

// =============================================================================
// Offer Domain Events
// =============================================================================

// OfferScored is published after an offer was scored and its transaction re-ranked.
type OfferScored struct {
	BaseEvent
	OfferID       uuid.UUID `json:"offerId"`
	TransactionID uuid.UUID `json:"transactionId"`
	UserID        uuid.UUID `json:"userId"`
	RiskScore     int       `json:"riskScore"`
	Rank          int       `json:"rank"`
}

func (e OfferScored) EventName() string { return "offers.offer.scored" }

// =============================================================================
// Document Domain Events
// =============================================================================

// DocumentUploaded is published after an upload was confirmed and recorded.
type DocumentUploaded struct {
	BaseEvent
	DocumentID    uuid.UUID `json:"documentId"`
	TransactionID uuid.UUID `json:"transactionId"`
	UserID        uuid.UUID `json:"userId"`
	DocType       string    `json:"docType"`
}

func (e DocumentUploaded) EventName() string { return "documents.document.uploaded" }
