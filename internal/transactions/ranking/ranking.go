// Package ranking orders the offers of one transaction.
package ranking

import (
	"sort"

	"github.com/google/uuid"
)

// Candidate is the projection of an offer needed to rank it. A nil RiskScore
// means the offer has not been scored yet.
type Candidate struct {
	ID        uuid.UUID
	RiskScore *int
	Price     float64
}

// Assignment is the dense rank given to one offer.
type Assignment struct {
	ID   uuid.UUID
	Rank int
}

// Rank sorts candidates by risk score descending, then price descending, and
// assigns ranks 1..N in that order. Unscored offers sort below scored ones.
// The sort is stable: callers pass candidates in their previous rank order so
// ties keep their position and ranking an unchanged set is a no-op.
func Rank(candidates []Candidate) []Assignment {
	ordered := make([]Candidate, len(candidates))
	copy(ordered, candidates)

	sort.SliceStable(ordered, func(i, j int) bool {
		return less(ordered[i], ordered[j])
	})

	out := make([]Assignment, len(ordered))
	for i, c := range ordered {
		out[i] = Assignment{ID: c.ID, Rank: i + 1}
	}
	return out
}

// less reports whether a ranks ahead of b. Unscored offers go last, unlike a
// plain SQL "ORDER BY risk_score DESC" which puts NULLs first. DESIGN.md
// records the choice under re-rank ordering ties.
func less(a, b Candidate) bool {
	ar, as := score(a)
	br, bs := score(b)
	if as != bs {
		return as
	}
	if ar != br {
		return ar > br
	}
	return a.Price > b.Price
}

func score(c Candidate) (int, bool) {
	if c.RiskScore == nil {
		return 0, false
	}
	return *c.RiskScore, true
}

// OrderedIDs returns candidate ids in rank order.
func OrderedIDs(candidates []Candidate) []uuid.UUID {
	assignments := Rank(candidates)
	ids := make([]uuid.UUID, len(assignments))
	for i, a := range assignments {
		ids[i] = a.ID
	}
	return ids
}
