// Package radar aggregates document, task and flag signals into a
// transaction risk score.
package radar

import (
	"strings"
	"time"

	"dealdesk_backend/internal/transactions/domain"
)

// Penalty constants. Each signal is capped independently before summing.
const (
	missingDocumentPenalty = 25
	overdueTaskPenalty     = 10
	overdueTaskCap         = 30
	highFlagPenalty        = 25
	highFlagCap            = 50
	maxScore               = 100
)

// Factors are the inputs of the aggregate.
type Factors struct {
	Stage                   domain.Stage
	DocumentTypes           []string
	OverdueTaskCount        int
	UnresolvedHighFlagCount int
}

// ComputeFromFactors returns the aggregate risk in [0, 100]. It does not
// consider offers; see ApplyOfferFloor.
func ComputeFromFactors(f Factors) int {
	score := 0

	if f.Stage == domain.StageUnderContract && !hasContractDocument(f.DocumentTypes) {
		score += missingDocumentPenalty
	}
	if f.Stage == domain.StageDueDiligence && !hasInspectionDocument(f.DocumentTypes) {
		score += missingDocumentPenalty
	}

	score += min(max(f.OverdueTaskCount, 0)*overdueTaskPenalty, overdueTaskCap)
	score += min(max(f.UnresolvedHighFlagCount, 0)*highFlagPenalty, highFlagCap)

	return clamp(score)
}

// ApplyOfferFloor raises aggregate to the best offer's risk score. Offer
// risk can only raise transaction risk, never lower it. A nil best offer
// leaves the aggregate as is.
func ApplyOfferFloor(aggregate int, bestOfferRisk *int) int {
	if bestOfferRisk == nil {
		return clamp(aggregate)
	}
	return clamp(max(aggregate, *bestOfferRisk))
}

func hasContractDocument(docTypes []string) bool {
	for _, t := range docTypes {
		if strings.Contains(strings.ToLower(t), "contract") {
			return true
		}
	}
	return false
}

func hasInspectionDocument(docTypes []string) bool {
	for _, t := range docTypes {
		switch strings.ToLower(t) {
		case "inspection", "inspection_report":
			return true
		}
	}
	return false
}

// Task is the projection of a task the radar reads.
type Task struct {
	DueDate   *time.Time
	Completed bool
}

// CountOverdue counts incomplete tasks due strictly before today's date.
func CountOverdue(tasks []Task, today time.Time) int {
	day := domain.DateOf(today)
	n := 0
	for _, t := range tasks {
		if t.Completed || t.DueDate == nil {
			continue
		}
		if domain.DateOf(*t.DueDate).Before(day) {
			n++
		}
	}
	return n
}

// Severity of a risk flag.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Flag is the projection of a risk flag the radar reads.
type Flag struct {
	Severity Severity
	Resolved bool
}

// CountUnresolvedHigh counts open high-severity flags.
func CountUnresolvedHigh(flags []Flag) int {
	n := 0
	for _, f := range flags {
		if !f.Resolved && f.Severity == SeverityHigh {
			n++
		}
	}
	return n
}

var severityWeights = map[Severity]int{
	SeverityLow:    1,
	SeverityMedium: 2,
	SeverityHigh:   3,
}

const flagSeverityMultiplier = 15

// FlagSeverityScore is the older flag-only risk view: every unresolved flag
// adds its severity weight times 15, floored by the best offer and capped at
// 100. Unknown severities count as low.
func FlagSeverityScore(flags []Flag, bestOfferRisk *int) int {
	score := 0
	for _, f := range flags {
		if f.Resolved {
			continue
		}
		w, ok := severityWeights[f.Severity]
		if !ok {
			w = severityWeights[SeverityLow]
		}
		score += w * flagSeverityMultiplier
	}
	return ApplyOfferFloor(clamp(score), bestOfferRisk)
}

func clamp(v int) int {
	return max(0, min(maxScore, v))
}
