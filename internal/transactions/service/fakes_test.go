package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"dealdesk_backend/internal/audit"
	"dealdesk_backend/internal/transactions/domain"
	"dealdesk_backend/internal/transactions/repository"
	"dealdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeRepo struct {
	mu           sync.Mutex
	offerLock    sync.Mutex
	transactions map[uuid.UUID]repository.Transaction
	tasks        map[uuid.UUID][]repository.Task
	docTypes     map[uuid.UUID][]string
	flags        map[uuid.UUID][]repository.RiskFlag
	offers       map[uuid.UUID]repository.Offer
	estimates    map[uuid.UUID]*float64

	updateRiskErr error
	stageWrites   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		transactions: map[uuid.UUID]repository.Transaction{},
		tasks:        map[uuid.UUID][]repository.Task{},
		docTypes:     map[uuid.UUID][]string{},
		flags:        map[uuid.UUID][]repository.RiskFlag{},
		offers:       map[uuid.UUID]repository.Offer{},
		estimates:    map[uuid.UUID]*float64{},
	}
}

func (f *fakeRepo) addTransaction(userID uuid.UUID, stage domain.Stage) repository.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := repository.Transaction{
		ID:     uuid.New(),
		UserID: userID,
		Stage:  string(stage),
		Status: domain.StatusFor(stage),
	}
	f.transactions[t.ID] = t
	return t
}

func (f *fakeRepo) addOffer(o repository.Offer) repository.Offer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.CreatedAt = time.Now()
	f.offers[o.ID] = o
	return o
}

func (f *fakeRepo) GetTransaction(_ context.Context, id uuid.UUID, userID uuid.UUID) (repository.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.transactions[id]
	if !ok || t.UserID != userID {
		return repository.Transaction{}, apperr.NotFound("transaction not found")
	}
	return t, nil
}

func (f *fakeRepo) GetTransactionByID(_ context.Context, id uuid.UUID) (repository.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.transactions[id]
	if !ok {
		return repository.Transaction{}, apperr.NotFound("transaction not found")
	}
	return t, nil
}

func (f *fakeRepo) ListRecalculationCandidates(_ context.Context, today time.Time, _ int) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uuid.UUID
	for id, t := range f.transactions {
		if t.Status != domain.StatusActive {
			continue
		}
		for _, task := range f.tasks[id] {
			if !task.Completed && task.DueDate != nil && task.DueDate.Before(today) {
				ids = append(ids, id)
				break
			}
		}
	}
	return ids, nil
}

func (f *fakeRepo) ApplyStageChange(_ context.Context, change repository.StageChange) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.transactions[change.TransactionID]
	if !ok || t.UserID != change.UserID {
		return 0, apperr.NotFound("transaction not found")
	}
	if t.Stage != change.From {
		return 0, apperr.Conflict("transaction stage changed concurrently, reload and try again")
	}
	t.Stage = change.To
	t.Status = change.Status
	f.transactions[t.ID] = t
	f.stageWrites++

	inserted := 0
	for _, nt := range change.Tasks {
		if f.hasTitle(t.ID, nt.Title) {
			continue
		}
		stage := nt.Stage
		desc := nt.Description
		f.tasks[t.ID] = append(f.tasks[t.ID], repository.Task{
			ID:            uuid.New(),
			TransactionID: t.ID,
			Stage:         &stage,
			Title:         nt.Title,
			Description:   &desc,
			DueDate:       nt.DueDate,
		})
		inserted++
	}
	return inserted, nil
}

func (f *fakeRepo) hasTitle(id uuid.UUID, title string) bool {
	for _, t := range f.tasks[id] {
		if t.Title == title {
			return true
		}
	}
	return false
}

func (f *fakeRepo) UpdateRiskScore(_ context.Context, id uuid.UUID, score int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateRiskErr != nil {
		return f.updateRiskErr
	}
	t, ok := f.transactions[id]
	if !ok {
		return apperr.NotFound("transaction not found")
	}
	t.RiskScore = &score
	f.transactions[id] = t
	return nil
}

func (f *fakeRepo) ListTaskTitles(_ context.Context, id uuid.UUID) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	titles := make([]string, 0, len(f.tasks[id]))
	for _, t := range f.tasks[id] {
		titles = append(titles, t.Title)
	}
	return titles, nil
}

func (f *fakeRepo) ListTasks(_ context.Context, id uuid.UUID) ([]repository.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]repository.Task(nil), f.tasks[id]...), nil
}

func (f *fakeRepo) SetTaskCompleted(_ context.Context, id uuid.UUID, taskID uuid.UUID, completed bool) (repository.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks[id] {
		if t.ID == taskID {
			f.tasks[id][i].Completed = completed
			return f.tasks[id][i], nil
		}
	}
	return repository.Task{}, apperr.NotFound("task not found")
}

func (f *fakeRepo) ListDocumentTypes(_ context.Context, id uuid.UUID) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.docTypes[id]...), nil
}

func (f *fakeRepo) ListRiskFlags(_ context.Context, id uuid.UUID) ([]repository.RiskFlag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]repository.RiskFlag(nil), f.flags[id]...), nil
}

func (f *fakeRepo) BestOfferRisk(_ context.Context, id uuid.UUID) (*int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *int
	for _, o := range f.offers {
		if o.TransactionID != id || o.RiskScore == nil {
			continue
		}
		if best == nil || *o.RiskScore > *best {
			v := *o.RiskScore
			best = &v
		}
	}
	return best, nil
}

func (f *fakeRepo) OfferTransactionID(_ context.Context, offerID uuid.UUID, userID uuid.UUID) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.offers[offerID]
	if !ok || f.transactions[o.TransactionID].UserID != userID {
		return uuid.Nil, apperr.NotFound("offer not found")
	}
	return o.TransactionID, nil
}

// WithOfferLock serializes with a mutex; writes are applied directly, and a
// failing fn restores the offers it touched.
func (f *fakeRepo) WithOfferLock(ctx context.Context, id uuid.UUID, fn func(repository.OfferStore) error) error {
	f.offerLock.Lock()
	defer f.offerLock.Unlock()

	f.mu.Lock()
	if _, ok := f.transactions[id]; !ok {
		f.mu.Unlock()
		return apperr.NotFound("transaction not found")
	}
	snapshot := make(map[uuid.UUID]repository.Offer, len(f.offers))
	for k, v := range f.offers {
		snapshot[k] = v
	}
	f.mu.Unlock()

	if err := fn(fakeOfferStore{f}); err != nil {
		f.mu.Lock()
		f.offers = snapshot
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeRepo) ListRankCandidates(_ context.Context, id uuid.UUID) ([]repository.RankCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rankCandidates(id), nil
}

func (f *fakeRepo) rankCandidates(id uuid.UUID) []repository.RankCandidate {
	var offers []repository.Offer
	for _, o := range f.offers {
		if o.TransactionID == id {
			offers = append(offers, o)
		}
	}
	// Previous rank, nulls last, then creation order, then id.
	sort.Slice(offers, func(i, j int) bool {
		a, b := offers[i], offers[j]
		if (a.Rank == nil) != (b.Rank == nil) {
			return a.Rank != nil
		}
		if a.Rank != nil && *a.Rank != *b.Rank {
			return *a.Rank < *b.Rank
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	out := make([]repository.RankCandidate, len(offers))
	for i, o := range offers {
		out[i] = repository.RankCandidate{ID: o.ID, RiskScore: o.RiskScore, Price: o.Price}
	}
	return out
}

type fakeOfferStore struct{ f *fakeRepo }

func (s fakeOfferStore) GetOfferContext(_ context.Context, offerID uuid.UUID) (repository.OfferContext, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	o, ok := s.f.offers[offerID]
	if !ok {
		return repository.OfferContext{}, apperr.NotFound("offer not found")
	}
	t := s.f.transactions[o.TransactionID]
	return repository.OfferContext{Offer: o, OwnerID: t.UserID, EstimatedValue: s.f.estimates[t.ID]}, nil
}

func (s fakeOfferStore) SaveEvaluation(_ context.Context, offerID uuid.UUID, eval repository.OfferEvaluation) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	o, ok := s.f.offers[offerID]
	if !ok {
		return apperr.NotFound("offer not found")
	}
	score := eval.RiskScore
	net := eval.NetProceeds
	o.RiskScore = &score
	o.RiskBreakdown = eval.RiskBreakdown
	o.RiskExplanation = eval.RiskExplanation
	o.NetProceeds = &net
	s.f.offers[offerID] = o
	return nil
}

func (s fakeOfferStore) ListRankCandidates(_ context.Context, id uuid.UUID) ([]repository.RankCandidate, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	return s.f.rankCandidates(id), nil
}

func (s fakeOfferStore) UpdateRanks(_ context.Context, updates []repository.RankUpdate) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	for _, u := range updates {
		o, ok := s.f.offers[u.OfferID]
		if !ok {
			return errors.New("unknown offer")
		}
		rank := u.Rank
		o.Rank = &rank
		s.f.offers[u.OfferID] = o
	}
	return nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
	err     error
}

func (a *fakeAudit) Record(_ context.Context, entry audit.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.entries = append(a.entries, entry)
	return nil
}

func (a *fakeAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.entries))
	for i, e := range a.entries {
		out[i] = e.Action
	}
	return out
}

type fakeRiskScheduler struct {
	mu       sync.Mutex
	enqueued []uuid.UUID
}

func (s *fakeRiskScheduler) EnqueueRiskRecalculation(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enqueued = append(s.enqueued, id)
	return nil
}

var _ repository.TransactionsRepository = (*fakeRepo)(nil)
