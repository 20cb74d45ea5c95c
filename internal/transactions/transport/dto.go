package transport

import (
	"time"

	"dealdesk_backend/internal/transactions/scoring"

	"github.com/google/uuid"
)

// TransitionRequest is the request body for an explicit stage transition
type TransitionRequest struct {
	Stage string `json:"stage" validate:"required,txstage"`
}

// ToggleTaskRequest is the request body for completing or reopening a task
type ToggleTaskRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}

// DisplayResponse is the stage projection shown next to a transaction
type DisplayResponse struct {
	StageProgressPercent int     `json:"stageProgressPercent"`
	CurrentStageLabel    string  `json:"currentStageLabel"`
	NextStageLabel       *string `json:"nextStageLabel"`
	CanAdvance           bool    `json:"canAdvance"`
	IsTerminal           bool    `json:"isTerminal"`
	IsCancelled          bool    `json:"isCancelled"`
}

// TransactionResponse is the response body for a transaction
type TransactionResponse struct {
	ID         uuid.UUID       `json:"id"`
	PropertyID *uuid.UUID      `json:"propertyId,omitempty"`
	Stage      string          `json:"stage"`
	Status     string          `json:"status"`
	RiskScore  *int            `json:"riskScore"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	Display    DisplayResponse `json:"display"`
}

// RiskResponse is the response body for a transaction risk assessment
type RiskResponse struct {
	TransactionID           uuid.UUID `json:"transactionId"`
	Stage                   string    `json:"stage"`
	Aggregate               int       `json:"aggregate"`
	BestOfferRisk           *int      `json:"bestOfferRisk"`
	RiskScore               int       `json:"riskScore"`
	FlagSeverityScore       int       `json:"flagSeverityScore"`
	OverdueTaskCount        int       `json:"overdueTaskCount"`
	UnresolvedHighFlagCount int       `json:"unresolvedHighFlagCount"`
	DocumentTypes           []string  `json:"documentTypes"`
}

// StageChangeResponse is the response body for advance, transition and cancel
type StageChangeResponse struct {
	Transaction   TransactionResponse `json:"transaction"`
	PreviousStage string              `json:"previousStage"`
	TasksCreated  int                 `json:"tasksCreated"`
	Risk          *RiskResponse       `json:"risk"`
}

// TaskResponse is the response body for a checklist task
type TaskResponse struct {
	ID          string     `json:"id"`
	Stage       *string    `json:"stage"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate"`
	Completed   bool       `json:"completed"`
}

// TaskGroupResponse is one stage's bucket of tasks
type TaskGroupResponse struct {
	Stage      string         `json:"stage"`
	StageLabel string         `json:"stageLabel"`
	Tasks      []TaskResponse `json:"tasks"`
}

// TaskListResponse is the response body for the grouped task list
type TaskListResponse struct {
	Groups []TaskGroupResponse `json:"groups"`
}

// ToggleTaskResponse is the response body for a task toggle
type ToggleTaskResponse struct {
	Task TaskResponse  `json:"task"`
	Risk *RiskResponse `json:"risk"`
}

// OfferRankResponse is one offer's position after re-ranking
type OfferRankResponse struct {
	OfferID uuid.UUID `json:"offerId"`
	Rank    int       `json:"rank"`
}

// OfferScoreResponse is the response body for scoring an offer
type OfferScoreResponse struct {
	OfferID       uuid.UUID           `json:"offerId"`
	TransactionID uuid.UUID           `json:"transactionId"`
	RiskScore     int                 `json:"riskScore"`
	NetProceeds   float64             `json:"netProceeds"`
	Rank          int                 `json:"rank"`
	Breakdown     scoring.Breakdown   `json:"breakdown"`
	Explanation   scoring.Explanation `json:"explanation"`
	Ranks         []OfferRankResponse `json:"ranks"`
}

// CompareOffersResponse lists a transaction's offers, best first
type CompareOffersResponse struct {
	OfferIDs []uuid.UUID `json:"offerIds"`
}
