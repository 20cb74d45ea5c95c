package repository

import (
	"context"
	"errors"
	"fmt"

	"dealdesk_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OfferTransactionID resolves the parent transaction of an offer owned by userID.
func (r *Repository) OfferTransactionID(ctx context.Context, offerID uuid.UUID, userID uuid.UUID) (uuid.UUID, error) {
	var transactionID uuid.UUID
	err := r.pool.QueryRow(ctx, `
		SELECT o.transaction_id
		FROM offers o
		JOIN transactions t ON t.id = o.transaction_id
		WHERE o.id = $1 AND t.user_id = $2`, offerID, userID,
	).Scan(&transactionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, apperr.NotFound(offerNotFoundMsg)
		}
		return uuid.Nil, fmt.Errorf("failed to resolve offer transaction: %w", err)
	}
	return transactionID, nil
}

// WithOfferLock runs fn while holding a row lock on the parent transaction,
// so read-score-rerank-write cycles for offers of the same transaction run
// one at a time.
func (r *Repository) WithOfferLock(ctx context.Context, transactionID uuid.UUID, fn func(OfferStore) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM transactions WHERE id = $1 FOR UPDATE`, transactionID).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound(transactionNotFoundMsg)
		}
		return fmt.Errorf("failed to lock transaction: %w", err)
	}

	if err := fn(&offerStore{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit offer evaluation: %w", err)
	}
	return nil
}

// ListRankCandidates reads offers outside of a lock, for comparisons.
func (r *Repository) ListRankCandidates(ctx context.Context, transactionID uuid.UUID) ([]RankCandidate, error) {
	return listRankCandidates(ctx, r.pool, transactionID)
}

type offerStore struct {
	q querier
}

func (s *offerStore) GetOfferContext(ctx context.Context, offerID uuid.UUID) (OfferContext, error) {
	var oc OfferContext
	err := s.q.QueryRow(ctx, `
		SELECT o.id, o.transaction_id, o.price, o.financing_type, o.down_payment_percent,
			COALESCE(o.contingencies_count, 0), COALESCE(o.closing_days, 0), o.appraisal_gap,
			o.risk_score, o.risk_breakdown, o.risk_explanation, o.rank, o.net_proceeds, o.created_at,
			t.user_id, p.estimated_value
		FROM offers o
		JOIN transactions t ON t.id = o.transaction_id
		LEFT JOIN properties p ON p.id = t.property_id
		WHERE o.id = $1`, offerID,
	).Scan(
		&oc.ID, &oc.TransactionID, &oc.Price, &oc.FinancingType, &oc.DownPaymentPercent,
		&oc.ContingenciesCount, &oc.ClosingDays, &oc.AppraisalGap,
		&oc.RiskScore, &oc.RiskBreakdown, &oc.RiskExplanation, &oc.Rank, &oc.NetProceeds, &oc.CreatedAt,
		&oc.OwnerID, &oc.EstimatedValue,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OfferContext{}, apperr.NotFound(offerNotFoundMsg)
		}
		return OfferContext{}, fmt.Errorf("failed to get offer: %w", err)
	}
	return oc, nil
}

func (s *offerStore) SaveEvaluation(ctx context.Context, offerID uuid.UUID, eval OfferEvaluation) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE offers
		SET risk_score = $2, risk_breakdown = $3, risk_explanation = $4, net_proceeds = $5
		WHERE id = $1`,
		offerID, eval.RiskScore, eval.RiskBreakdown, eval.RiskExplanation, eval.NetProceeds,
	)
	if err != nil {
		return fmt.Errorf("failed to save offer evaluation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(offerNotFoundMsg)
	}
	return nil
}

func (s *offerStore) ListRankCandidates(ctx context.Context, transactionID uuid.UUID) ([]RankCandidate, error) {
	return listRankCandidates(ctx, s.q, transactionID)
}

func (s *offerStore) UpdateRanks(ctx context.Context, updates []RankUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(`UPDATE offers SET rank = $2 WHERE id = $1`, u.OfferID, u.Rank)
	}

	results := s.q.SendBatch(ctx, batch)
	for range updates {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("failed to update offer rank: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to update offer ranks: %w", err)
	}
	return nil
}

// listRankCandidates orders by the previous rank so the re-ranker's stable
// sort keeps tied offers where they were.
func listRankCandidates(ctx context.Context, q querier, transactionID uuid.UUID) ([]RankCandidate, error) {
	rows, err := q.Query(ctx, `
		SELECT id, risk_score, price
		FROM offers
		WHERE transaction_id = $1
		ORDER BY rank ASC NULLS LAST, created_at ASC, id ASC`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}

	candidates, err := pgx.CollectRows(rows, pgx.RowToStructByName[RankCandidate])
	if err != nil {
		return nil, fmt.Errorf("failed to scan offers: %w", err)
	}
	return candidates, nil
}
