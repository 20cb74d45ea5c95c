package handler

import (
	"dealdesk_backend/internal/transactions/domain"
	"dealdesk_backend/internal/transactions/service"
	"dealdesk_backend/internal/transactions/transport"
)

func toTransactionResponse(v service.TransactionView) transport.TransactionResponse {
	t := v.Transaction
	return transport.TransactionResponse{
		ID:         t.ID,
		PropertyID: t.PropertyID,
		Stage:      t.Stage,
		Status:     t.Status,
		RiskScore:  t.RiskScore,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
		Display: transport.DisplayResponse{
			StageProgressPercent: v.Display.StageProgressPercent,
			CurrentStageLabel:    v.Display.CurrentStageLabel,
			NextStageLabel:       v.Display.NextStageLabel,
			CanAdvance:           v.Display.CanAdvance,
			IsTerminal:           v.Display.IsTerminal,
			IsCancelled:          v.Display.IsCancelled,
		},
	}
}

func toStageChangeResponse(r service.StageChangeResult) transport.StageChangeResponse {
	return transport.StageChangeResponse{
		Transaction:   toTransactionResponse(r.Transaction),
		PreviousStage: string(r.PreviousStage),
		TasksCreated:  r.TasksCreated,
		Risk:          toRiskResponsePtr(r.Risk),
	}
}

func toRiskResponse(r service.RiskAssessment) transport.RiskResponse {
	docTypes := r.DocumentTypes
	if docTypes == nil {
		docTypes = []string{}
	}
	return transport.RiskResponse{
		TransactionID:           r.TransactionID,
		Stage:                   string(r.Stage),
		Aggregate:               r.Aggregate,
		BestOfferRisk:           r.BestOfferRisk,
		RiskScore:               r.RiskScore,
		FlagSeverityScore:       r.FlagSeverityScore,
		OverdueTaskCount:        r.OverdueTaskCount,
		UnresolvedHighFlagCount: r.UnresolvedHighFlagCount,
		DocumentTypes:           docTypes,
	}
}

func toRiskResponsePtr(r *service.RiskAssessment) *transport.RiskResponse {
	if r == nil {
		return nil
	}
	resp := toRiskResponse(*r)
	return &resp
}

func toTaskResponse(t domain.TaskView) transport.TaskResponse {
	resp := transport.TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Completed:   t.Completed,
	}
	if t.Stage != nil {
		stage := string(*t.Stage)
		resp.Stage = &stage
	}
	return resp
}

func toTaskListResponse(groups []domain.TaskGroup) transport.TaskListResponse {
	out := make([]transport.TaskGroupResponse, len(groups))
	for i, g := range groups {
		tasks := make([]transport.TaskResponse, len(g.Tasks))
		for j, t := range g.Tasks {
			tasks[j] = toTaskResponse(t)
		}
		out[i] = transport.TaskGroupResponse{
			Stage:      string(g.Stage),
			StageLabel: g.StageLabel,
			Tasks:      tasks,
		}
	}
	return transport.TaskListResponse{Groups: out}
}

func toOfferScoreResponse(r service.OfferScoreResult) transport.OfferScoreResponse {
	ranks := make([]transport.OfferRankResponse, len(r.Ranks))
	for i, a := range r.Ranks {
		ranks[i] = transport.OfferRankResponse{OfferID: a.ID, Rank: a.Rank}
	}
	return transport.OfferScoreResponse{
		OfferID:       r.OfferID,
		TransactionID: r.TransactionID,
		RiskScore:     r.Evaluation.RiskScore,
		NetProceeds:   r.Evaluation.NetProceeds,
		Rank:          r.Rank,
		Breakdown:     r.Evaluation.Breakdown,
		Explanation:   r.Evaluation.Explanation,
		Ranks:         ranks,
	}
}
