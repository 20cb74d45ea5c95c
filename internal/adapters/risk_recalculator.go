// Package adapters bridges bounded contexts without import cycles.
package adapters

import (
	"context"

	"dealdesk_backend/internal/scheduler"
	"dealdesk_backend/internal/transactions/service"

	"github.com/google/uuid"
)

// RiskRecalculator adapts the transactions service for the scheduler worker.
type RiskRecalculator struct {
	svc *service.Service
}

func NewRiskRecalculator(svc *service.Service) *RiskRecalculator {
	return &RiskRecalculator{svc: svc}
}

func (a *RiskRecalculator) RecalculateTransactionRisk(ctx context.Context, transactionID uuid.UUID) error {
	_, err := a.svc.RecalculateRiskForTransaction(ctx, transactionID)
	return err
}

func (a *RiskRecalculator) SweepOverdueRisk(ctx context.Context) (int, error) {
	return a.svc.SweepOverdueRisk(ctx)
}

var _ scheduler.RiskRecalculator = (*RiskRecalculator)(nil)
