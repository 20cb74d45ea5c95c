package domain

import "time"

// TaskTemplate is a checklist item created when a transaction enters a stage.
type TaskTemplate struct {
	Title       string
	Description string
	// DueOffsetDays is the number of calendar days after stage entry the task
	// is due. Nil means the task has no default due date.
	DueOffsetDays *int
}

// PlannedTask is a task ready to be inserted for a transaction.
type PlannedTask struct {
	Stage       Stage
	Title       string
	Description string
	DueDate     *time.Time
}

func days(n int) *int { return &n }

var stageTaskTemplates = map[Stage][]TaskTemplate{
	StageIntake: {
		{Title: "Complete property details", Description: "Address, estimated value, mortgage balance"},
		{Title: "Verify ownership", Description: "Confirm you own or have authority over the property"},
		{Title: "Select transaction role", Description: "Buyer, seller, or both"},
	},
	StageListing: {
		{Title: "Set listing price", Description: "Based on comparable sales and market analysis", DueOffsetDays: days(3)},
		{Title: "Prepare property disclosures", Description: "Required seller disclosures for your state", DueOffsetDays: days(7)},
		{Title: "Upload listing photos", Description: "High-quality photos for marketing", DueOffsetDays: days(5)},
	},
	StageOffer: {
		{Title: "Review offer terms", Description: "Price, contingencies, closing timeline", DueOffsetDays: days(1)},
		{Title: "Document financing type", Description: "Cash, conventional, FHA, etc."},
		{Title: "Confirm contingencies", Description: "Inspection, appraisal, financing contingencies", DueOffsetDays: days(2)},
	},
	StageUnderContract: {
		{Title: "Execute purchase agreement", Description: "Signed contract with all parties", DueOffsetDays: days(3)},
		{Title: "Open escrow", Description: "Escrow instructions and deposit", DueOffsetDays: days(5)},
		{Title: "Schedule inspections", Description: "Coordinate inspection dates", DueOffsetDays: days(7)},
	},
	StageDueDiligence: {
		{Title: "Complete inspection", Description: "Professional inspection report", DueOffsetDays: days(10)},
		{Title: "Review appraisal", Description: "Lender appraisal results", DueOffsetDays: days(14)},
		{Title: "Address contingencies", Description: "Resolve or waive contingencies", DueOffsetDays: days(17)},
	},
	StageClosing: {
		{Title: "Final walkthrough", Description: "Verify property condition before closing", DueOffsetDays: days(1)},
		{Title: "Review closing disclosure", Description: "CD and final numbers", DueOffsetDays: days(3)},
		{Title: "Schedule closing", Description: "Date, time, and location", DueOffsetDays: days(0)},
	},
	StageClosed: {
		{Title: "Record deed", Description: "Deed recorded with county"},
		{Title: "Disburse funds", Description: "Escrow disbursement complete"},
		{Title: "Transfer keys", Description: "Possession transferred"},
	},
}

// TasksForStage returns a copy of the checklist templates for s, in order.
// Cancelled and unknown stages have no templates.
func TasksForStage(s Stage) []TaskTemplate {
	templates := stageTaskTemplates[s]
	out := make([]TaskTemplate, len(templates))
	for i, t := range templates {
		out[i] = t
		if t.DueOffsetDays != nil {
			out[i].DueOffsetDays = days(*t.DueOffsetDays)
		}
	}
	return out
}

// PlanTasks returns the templates for s whose titles are not yet present on
// the transaction, with due dates resolved against today. Calling it again
// with the titles it produced yields nothing.
func PlanTasks(s Stage, existingTitles []string, today time.Time) []PlannedTask {
	existing := make(map[string]struct{}, len(existingTitles))
	for _, title := range existingTitles {
		existing[title] = struct{}{}
	}

	day := DateOf(today)
	planned := make([]PlannedTask, 0, len(stageTaskTemplates[s]))
	for _, t := range stageTaskTemplates[s] {
		if _, ok := existing[t.Title]; ok {
			continue
		}
		existing[t.Title] = struct{}{}

		task := PlannedTask{Stage: s, Title: t.Title, Description: t.Description}
		if t.DueOffsetDays != nil {
			due := day.AddDate(0, 0, *t.DueOffsetDays)
			task.DueDate = &due
		}
		planned = append(planned, task)
	}
	return planned
}

// StageForTemplateTitle finds the stage whose templates contain title. Only
// used for tasks created before the stage tag was persisted.
func StageForTemplateTitle(title string) (Stage, bool) {
	for _, s := range orderedStages {
		for _, t := range stageTaskTemplates[s] {
			if t.Title == title {
				return s, true
			}
		}
	}
	return "", false
}

// DateOf truncates t to midnight UTC of its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
