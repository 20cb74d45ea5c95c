package ranking

import (
	"testing"

	"github.com/google/uuid"
)

func intPtr(v int) *int { return &v }

func TestRankOrdersByRiskThenPrice(t *testing.T) {
	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	got := Rank([]Candidate{
		{ID: a, RiskScore: intPtr(60), Price: 400000},
		{ID: b, RiskScore: intPtr(90), Price: 380000},
		{ID: c, RiskScore: intPtr(60), Price: 410000},
		{ID: d, RiskScore: intPtr(10), Price: 999999},
	})

	want := []Assignment{{b, 1}, {c, 2}, {a, 3}, {d, 4}}
	if len(got) != len(want) {
		t.Fatalf("expected %d assignments, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestRankIsDenseAndIdempotent(t *testing.T) {
	candidates := []Candidate{
		{ID: uuid.New(), RiskScore: intPtr(70), Price: 300000},
		{ID: uuid.New(), RiskScore: intPtr(70), Price: 300000},
		{ID: uuid.New(), RiskScore: intPtr(85), Price: 250000},
		{ID: uuid.New(), RiskScore: nil, Price: 500000},
	}

	first := Rank(candidates)
	for i, a := range first {
		if a.Rank != i+1 {
			t.Fatalf("expected dense rank %d, got %d", i+1, a.Rank)
		}
	}

	// Feed the result back in rank order, as the repository does.
	byID := make(map[uuid.UUID]Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}
	reordered := make([]Candidate, len(first))
	for i, a := range first {
		reordered[i] = byID[a.ID]
	}

	second := Rank(reordered)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("expected identical ranks on re-run, position %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestRankKeepsInputOrderForExactTies(t *testing.T) {
	x, y := uuid.New(), uuid.New()
	got := Rank([]Candidate{
		{ID: x, RiskScore: intPtr(50), Price: 100},
		{ID: y, RiskScore: intPtr(50), Price: 100},
	})
	if got[0].ID != x || got[1].ID != y {
		t.Fatalf("expected stable order for tied offers")
	}
}

func TestRankPutsUnscoredLast(t *testing.T) {
	unscored, scored := uuid.New(), uuid.New()
	got := OrderedIDs([]Candidate{
		{ID: unscored, Price: 900000},
		{ID: scored, RiskScore: intPtr(0), Price: 1},
	})
	if got[0] != scored || got[1] != unscored {
		t.Fatalf("expected scored offer first, got %v", got)
	}
}

func TestRankEmpty(t *testing.T) {
	if got := Rank(nil); len(got) != 0 {
		t.Fatalf("expected no assignments, got %d", len(got))
	}
}
