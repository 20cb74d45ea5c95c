package domain

import (
	"math"
	"strings"
	"time"
	"unicode"
)

// DisplayData is the stage projection shown on a transaction page.
type DisplayData struct {
	StageProgressPercent int
	CurrentStageLabel    string
	NextStageLabel       *string
	CanAdvance           bool
	IsTerminal           bool
	IsCancelled          bool
}

// StageLabel formats a stage for display: "under_contract" -> "Under Contract".
func StageLabel(s Stage) string {
	words := strings.Split(string(s), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// BuildDisplayData derives progress and labels from stage and status.
func BuildDisplayData(stage Stage, status string) DisplayData {
	next, hasNext := NextStage(stage)
	isCancelled := status == StatusCancelled || stage == StageCancelled
	isTerminal := stage == StageClosed

	progress := 0
	if idx, ok := Order(stage); ok {
		progress = int(math.Round(float64(idx+1) / float64(len(orderedStages)) * 100))
	}

	data := DisplayData{
		StageProgressPercent: min(100, progress),
		CurrentStageLabel:    StageLabel(stage),
		CanAdvance:           !isTerminal && !isCancelled && hasNext,
		IsTerminal:           isTerminal,
		IsCancelled:          isCancelled,
	}
	if hasNext {
		label := StageLabel(next)
		data.NextStageLabel = &label
	}
	return data
}

// TaskView is the read projection of a task used for grouping.
type TaskView struct {
	ID          string
	Stage       *Stage
	Title       string
	Description *string
	DueDate     *time.Time
	Completed   bool
}

// TaskGroup is the set of tasks belonging to one stage.
type TaskGroup struct {
	Stage      Stage
	StageLabel string
	Tasks      []TaskView
}

// GroupTasksByStage buckets tasks by their persisted stage tag, in lifecycle
// order, omitting empty stages. Untagged tasks fall back to template title
// matching; tasks that match nothing are dropped from the grouping.
func GroupTasksByStage(tasks []TaskView) []TaskGroup {
	byStage := make(map[Stage][]TaskView, len(orderedStages))
	for _, task := range tasks {
		stage, ok := stageOfTask(task)
		if !ok {
			continue
		}
		byStage[stage] = append(byStage[stage], task)
	}

	groups := make([]TaskGroup, 0, len(byStage))
	for _, s := range orderedStages {
		if len(byStage[s]) == 0 {
			continue
		}
		groups = append(groups, TaskGroup{Stage: s, StageLabel: StageLabel(s), Tasks: byStage[s]})
	}
	return groups
}

func stageOfTask(task TaskView) (Stage, bool) {
	if task.Stage != nil {
		if _, ok := Order(*task.Stage); ok {
			return *task.Stage, true
		}
	}
	return StageForTemplateTitle(task.Title)
}
