package domain

import (
	"testing"
	"time"
)

var allStages = []Stage{
	StageIntake, StageListing, StageOffer, StageUnderContract,
	StageDueDiligence, StageClosing, StageClosed, StageCancelled,
}

func TestCanTransitionToOnlyOneStepForwardOrCancel(t *testing.T) {
	for _, current := range allStages {
		for _, next := range allStages {
			got := CanTransitionTo(current, next)

			var want bool
			if next == StageCancelled {
				want = current != StageClosed && current != StageCancelled
			} else {
				co, cok := Order(current)
				no, nok := Order(next)
				want = cok && nok && no == co+1
			}

			if got != want {
				t.Errorf("CanTransitionTo(%q, %q) = %v, want %v", current, next, got, want)
			}
		}
	}
}

func TestCanTransitionToRejectsSkipsRegressionsAndSameStage(t *testing.T) {
	tests := []struct {
		current Stage
		next    Stage
	}{
		{StageIntake, StageIntake},
		{StageIntake, StageOffer},
		{StageOffer, StageListing},
		{StageClosing, StageIntake},
		{StageClosed, StageCancelled},
		{StageCancelled, StageCancelled},
		{StageCancelled, StageIntake},
		{"unknown", StageListing},
		{StageIntake, "unknown"},
	}

	for _, tc := range tests {
		if CanTransitionTo(tc.current, tc.next) {
			t.Errorf("expected %q -> %q to be rejected", tc.current, tc.next)
		}
	}
}

func TestNextStage(t *testing.T) {
	if next, ok := NextStage(StageIntake); !ok || next != StageListing {
		t.Fatalf("expected intake -> listing, got %q (ok=%v)", next, ok)
	}
	if next, ok := NextStage(StageClosing); !ok || next != StageClosed {
		t.Fatalf("expected closing -> closed, got %q (ok=%v)", next, ok)
	}
	if _, ok := NextStage(StageClosed); ok {
		t.Fatalf("expected no successor for closed")
	}
	if _, ok := NextStage(StageCancelled); ok {
		t.Fatalf("expected no successor for cancelled")
	}
	if _, ok := NextStage("bogus"); ok {
		t.Fatalf("expected no successor for unknown stage")
	}
}

func TestNextStageIsAlwaysAValidTransition(t *testing.T) {
	for _, s := range Stages() {
		next, ok := NextStage(s)
		if !ok {
			continue
		}
		if !CanTransitionTo(s, next) {
			t.Errorf("NextStage(%q) = %q but transition is rejected", s, next)
		}
	}
}

func TestRejectTransitionMessages(t *testing.T) {
	tests := []struct {
		current Stage
		next    Stage
		want    string
	}{
		{StageIntake, StageListing, ""},
		{StageOffer, StageCancelled, ""},
		{StageIntake, StageOffer, MsgInvalidTransition},
		{StageListing, StageIntake, MsgInvalidTransition},
		{StageClosed, StageCancelled, MsgCannotCancel},
		{StageCancelled, StageListing, MsgTransactionCancelled},
		{"bogus", StageListing, MsgUnknownStage},
	}

	for _, tc := range tests {
		if got := RejectTransition(tc.current, tc.next); got != tc.want {
			t.Errorf("RejectTransition(%q, %q) = %q, want %q", tc.current, tc.next, got, tc.want)
		}
	}
}

func TestStagesReturnsCopy(t *testing.T) {
	s := Stages()
	s[0] = StageClosed
	if Stages()[0] != StageIntake {
		t.Fatalf("mutating Stages() result leaked into stage order")
	}
}

func TestPlanTasksIsIdempotent(t *testing.T) {
	today := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

	first := PlanTasks(StageUnderContract, nil, today)
	if len(first) != 3 {
		t.Fatalf("expected 3 planned tasks, got %d", len(first))
	}

	titles := make([]string, 0, len(first))
	for _, task := range first {
		if task.Stage != StageUnderContract {
			t.Fatalf("expected stage tag %q, got %q", StageUnderContract, task.Stage)
		}
		titles = append(titles, task.Title)
	}

	if again := PlanTasks(StageUnderContract, titles, today); len(again) != 0 {
		t.Fatalf("expected no tasks on repeated planning, got %d", len(again))
	}
}

func TestPlanTasksSkipsOnlyExistingTitles(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	planned := PlanTasks(StageListing, []string{"Upload listing photos", "Unrelated"}, today)
	if len(planned) != 2 {
		t.Fatalf("expected 2 planned tasks, got %d", len(planned))
	}
	if planned[0].Title != "Set listing price" || planned[1].Title != "Prepare property disclosures" {
		t.Fatalf("unexpected titles or order: %q, %q", planned[0].Title, planned[1].Title)
	}
}

func TestPlanTasksDueDates(t *testing.T) {
	today := time.Date(2026, 12, 30, 23, 59, 0, 0, time.UTC)

	planned := PlanTasks(StageDueDiligence, nil, today)
	want := []time.Time{
		time.Date(2027, 1, 9, 0, 0, 0, 0, time.UTC),
		time.Date(2027, 1, 13, 0, 0, 0, 0, time.UTC),
		time.Date(2027, 1, 16, 0, 0, 0, 0, time.UTC),
	}
	for i, task := range planned {
		if task.DueDate == nil || !task.DueDate.Equal(want[i]) {
			t.Fatalf("task %q: expected due %v, got %v", task.Title, want[i], task.DueDate)
		}
	}

	intake := PlanTasks(StageIntake, nil, today)
	for _, task := range intake {
		if task.DueDate != nil {
			t.Fatalf("expected no due date for %q", task.Title)
		}
	}

	closing := PlanTasks(StageClosing, nil, today)
	if closing[2].DueDate == nil || !closing[2].DueDate.Equal(DateOf(today)) {
		t.Fatalf("expected zero-offset task due today, got %v", closing[2].DueDate)
	}
}

func TestPlanTasksForCancelledIsEmpty(t *testing.T) {
	if planned := PlanTasks(StageCancelled, nil, time.Now()); len(planned) != 0 {
		t.Fatalf("expected no tasks for cancelled, got %d", len(planned))
	}
}

func TestTasksForStageReturnsCopy(t *testing.T) {
	templates := TasksForStage(StageListing)
	*templates[0].DueOffsetDays = 99
	templates[0].Title = "changed"

	fresh := TasksForStage(StageListing)
	if fresh[0].Title != "Set listing price" || *fresh[0].DueOffsetDays != 3 {
		t.Fatalf("template table was mutated through TasksForStage")
	}
}

func TestTemplateTitlesAreUniqueAcrossStages(t *testing.T) {
	seen := map[string]Stage{}
	for _, s := range Stages() {
		for _, tpl := range TasksForStage(s) {
			if prev, ok := seen[tpl.Title]; ok {
				t.Fatalf("title %q appears in both %q and %q", tpl.Title, prev, s)
			}
			seen[tpl.Title] = s
		}
	}
}
