// Package domain provides the core business rules for the transactions
// bounded context: the stage state machine, checklist templates and the
// display projections derived from them.
package domain

// Stage is one step of the transaction lifecycle.
type Stage string

const (
	StageIntake        Stage = "intake"
	StageListing       Stage = "listing"
	StageOffer         Stage = "offer"
	StageUnderContract Stage = "under_contract"
	StageDueDiligence  Stage = "due_diligence"
	StageClosing       Stage = "closing"
	StageClosed        Stage = "closed"

	// StageCancelled is the side-exit. It has no position in the order.
	StageCancelled Stage = "cancelled"
)

const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

// orderedStages is the fixed forward order; the index is the stage order.
var orderedStages = [...]Stage{
	StageIntake,
	StageListing,
	StageOffer,
	StageUnderContract,
	StageDueDiligence,
	StageClosing,
	StageClosed,
}

// Stages returns the lifecycle stages in order, excluding cancelled.
func Stages() []Stage {
	out := make([]Stage, len(orderedStages))
	copy(out, orderedStages[:])
	return out
}

// Order returns the position of s in the lifecycle. ok is false for
// cancelled and for unknown values.
func Order(s Stage) (int, bool) {
	for i, candidate := range orderedStages {
		if candidate == s {
			return i, true
		}
	}
	return 0, false
}

// IsKnown reports whether s is an ordered stage or cancelled.
func IsKnown(s Stage) bool {
	if s == StageCancelled {
		return true
	}
	_, ok := Order(s)
	return ok
}

// IsTerminal reports whether no further transition is possible from s.
func IsTerminal(s Stage) bool {
	return s == StageClosed || s == StageCancelled
}

// CanTransitionTo reports whether current may move to next: exactly one step
// forward, or to cancelled from any non-terminal stage.
func CanTransitionTo(current, next Stage) bool {
	if next == StageCancelled {
		return IsKnown(current) && !IsTerminal(current)
	}
	currOrder, ok := Order(current)
	if !ok {
		return false
	}
	nextOrder, ok := Order(next)
	if !ok {
		return false
	}
	return nextOrder == currOrder+1
}

// NextStage returns the successor of current. ok is false at closed,
// cancelled, or an unknown stage.
func NextStage(current Stage) (Stage, bool) {
	order, ok := Order(current)
	if !ok || order >= len(orderedStages)-1 {
		return "", false
	}
	return orderedStages[order+1], true
}

// Rejection messages for invalid transitions. They are shown to end users.
const (
	MsgCannotAdvancePastClosed = "cannot advance beyond closed"
	MsgTransactionCancelled    = "transaction is cancelled"
	MsgInvalidTransition       = "invalid stage transition: cannot regress or skip stages"
	MsgCannotCancel            = "transaction can no longer be cancelled"
	MsgUnknownStage            = "unknown stage"
)

// RejectTransition explains why current may not move to next. It returns ""
// when the transition is allowed.
func RejectTransition(current, next Stage) string {
	if CanTransitionTo(current, next) {
		return ""
	}
	switch {
	case !IsKnown(current) || !IsKnown(next):
		return MsgUnknownStage
	case current == StageCancelled:
		return MsgTransactionCancelled
	case next == StageCancelled:
		return MsgCannotCancel
	case current == StageClosed:
		return MsgCannotAdvancePastClosed
	default:
		return MsgInvalidTransition
	}
}

// StatusFor returns the transaction status that accompanies stage s.
func StatusFor(s Stage) string {
	if s == StageCancelled {
		return StatusCancelled
	}
	return StatusActive
}
