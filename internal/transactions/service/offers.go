package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dealdesk_backend/internal/audit"
	"dealdesk_backend/internal/events"
	"dealdesk_backend/internal/transactions/ranking"
	"dealdesk_backend/internal/transactions/repository"
	"dealdesk_backend/internal/transactions/scoring"
	"dealdesk_backend/platform/apperr"
	"dealdesk_backend/platform/validator"

	"github.com/google/uuid"
)

const offerNotFoundMsg = "offer not found"

// offerInput carries the validation rules for stored offer fields before
// they reach the scorer.
type offerInput struct {
	Price              float64  `validate:"gt=0"`
	DownPaymentPercent float64  `validate:"gte=0,lte=100"`
	ContingenciesCount int      `validate:"gte=0"`
	ClosingDays        int      `validate:"gte=0"`
	AppraisalGap       *float64 `validate:"omitnil,gte=0"`
}

// OfferScoreResult is the outcome of scoring one offer.
type OfferScoreResult struct {
	OfferID       uuid.UUID
	TransactionID uuid.UUID
	Evaluation    scoring.Evaluation
	Rank          int
	Ranks         []ranking.Assignment
}

// ScoreOffer scores an offer, persists the evaluation and re-ranks every
// offer of its transaction. The whole cycle runs under a per-transaction
// lock, so concurrent scoring of sibling offers cannot interleave.
func (s *Service) ScoreOffer(ctx context.Context, offerID uuid.UUID, userID uuid.UUID) (OfferScoreResult, error) {
	transactionID, err := s.repo.OfferTransactionID(ctx, offerID, userID)
	if err != nil {
		return OfferScoreResult{}, err
	}

	result := OfferScoreResult{OfferID: offerID, TransactionID: transactionID}
	err = s.repo.WithOfferLock(ctx, transactionID, func(store repository.OfferStore) error {
		oc, err := store.GetOfferContext(ctx, offerID)
		if err != nil {
			return err
		}
		if oc.OwnerID != userID || oc.TransactionID != transactionID {
			return apperr.NotFound(offerNotFoundMsg)
		}

		input, err := s.scoringInput(oc)
		if err != nil {
			return err
		}
		eval := scoring.ComputeOfferRisk(input)

		breakdown, err := json.Marshal(eval.Breakdown)
		if err != nil {
			return fmt.Errorf("failed to encode risk breakdown: %w", err)
		}
		explanation, err := json.Marshal(eval.Explanation)
		if err != nil {
			return fmt.Errorf("failed to encode risk explanation: %w", err)
		}

		if err := store.SaveEvaluation(ctx, offerID, repository.OfferEvaluation{
			RiskScore:       eval.RiskScore,
			RiskBreakdown:   breakdown,
			RiskExplanation: explanation,
			NetProceeds:     eval.NetProceeds,
		}); err != nil {
			return err
		}

		assignments, err := rerank(ctx, store, transactionID)
		if err != nil {
			return err
		}

		result.Evaluation = eval
		result.Ranks = assignments
		for _, a := range assignments {
			if a.ID == offerID {
				result.Rank = a.Rank
			}
		}
		return nil
	})
	if err != nil {
		return OfferScoreResult{}, err
	}

	s.recordAudit(ctx, &userID, audit.ActionOfferScored, map[string]any{
		"offer_id":       offerID.String(),
		"risk_score":     result.Evaluation.RiskScore,
		"transaction_id": transactionID.String(),
		"timestamp":      s.now().UTC().Format(time.RFC3339),
	})
	s.publish(ctx, events.OfferScored{
		BaseEvent:     events.NewBaseEvent(),
		OfferID:       offerID,
		TransactionID: transactionID,
		UserID:        userID,
		RiskScore:     result.Evaluation.RiskScore,
		Rank:          result.Rank,
	})
	s.log.WithContext(ctx).Info("offer scored",
		"offerId", offerID, "transactionId", transactionID, "riskScore", result.Evaluation.RiskScore, "rank", result.Rank)

	return result, nil
}

// CompareOffers returns the transaction's offer ids, best first.
func (s *Service) CompareOffers(ctx context.Context, id uuid.UUID, userID uuid.UUID) ([]uuid.UUID, error) {
	if _, err := s.repo.GetTransaction(ctx, id, userID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListRankCandidates(ctx, id)
	if err != nil {
		return nil, err
	}
	return ranking.OrderedIDs(toCandidates(rows)), nil
}

func (s *Service) scoringInput(oc repository.OfferContext) (scoring.Input, error) {
	in := offerInput{
		Price:              oc.Price,
		DownPaymentPercent: oc.DownPaymentPercent,
		ContingenciesCount: oc.ContingenciesCount,
		ClosingDays:        oc.ClosingDays,
		AppraisalGap:       oc.AppraisalGap,
	}
	if err := s.val.Struct(in); err != nil {
		return scoring.Input{}, apperr.Validation("offer has invalid terms").WithDetails(validator.Details(err))
	}

	return scoring.Input{
		Price:              oc.Price,
		FinancingType:      oc.FinancingType,
		DownPaymentPercent: oc.DownPaymentPercent,
		ContingenciesCount: oc.ContingenciesCount,
		ClosingDays:        oc.ClosingDays,
		AppraisalGap:       oc.AppraisalGap,
		EstimatedValue:     oc.EstimatedValue,
	}, nil
}

// rerank recomputes ranks for every offer of the transaction and writes
// them all back.
func rerank(ctx context.Context, store repository.OfferStore, transactionID uuid.UUID) ([]ranking.Assignment, error) {
	rows, err := store.ListRankCandidates(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	assignments := ranking.Rank(toCandidates(rows))

	updates := make([]repository.RankUpdate, len(assignments))
	for i, a := range assignments {
		updates[i] = repository.RankUpdate{OfferID: a.ID, Rank: a.Rank}
	}
	if err := store.UpdateRanks(ctx, updates); err != nil {
		return nil, err
	}
	return assignments, nil
}

func toCandidates(rows []repository.RankCandidate) []ranking.Candidate {
	out := make([]ranking.Candidate, len(rows))
	for i, r := range rows {
		out[i] = ranking.Candidate{ID: r.ID, RiskScore: r.RiskScore, Price: r.Price}
	}
	return out
}
