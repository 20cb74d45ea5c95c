package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TaskRiskRecalculate = "transactions.risk.recalculate"

const TaskRiskSweep = "transactions.risk.sweep"

type RiskRecalculatePayload struct {
	TransactionID string `json:"transactionId"`
}

func NewRiskRecalculateTask(payload RiskRecalculatePayload) (*asynq.Task, error) {
	if _, err := uuid.Parse(payload.TransactionID); err != nil {
		return nil, fmt.Errorf("invalid transaction id %q: %w", payload.TransactionID, err)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRiskRecalculate, data), nil
}

func ParseRiskRecalculatePayload(task *asynq.Task) (RiskRecalculatePayload, error) {
	var payload RiskRecalculatePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return RiskRecalculatePayload{}, err
	}
	return payload, nil
}

// NewRiskSweepTask carries no payload; the sweep decides what to touch.
func NewRiskSweepTask() *asynq.Task {
	return asynq.NewTask(TaskRiskSweep, nil)
}
