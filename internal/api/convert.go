package api

import (
	"fieldinspect/internal/inspection"
	"fieldinspect/internal/store"
	"fieldinspect/internal/workflow"
)

// FromChecklist converts a workflow checklist into its transport view.
func FromChecklist(c workflow.Checklist) InspectionView {
	view := InspectionView{
		ParentReturnID: c.ParentReturnID,
		Initialized:    c.Progress.Initialized,
		Resolved:       c.Progress.Resolved(),
		Stages:         make([]StageView, 0, len(c.Stages)),
	}
	if !view.Resolved {
		order := c.Progress.FirstActionable
		view.FirstActionableOrder = &order
	}
	for _, stage := range c.Stages {
		sp, ok := c.StageProgress(stage)
		view.Stages = append(view.Stages, FromStage(stage, sp, ok))
	}
	return view
}

// FromStage converts one stage. When gated is false the stage is outside the
// checklist's templates and is reported as not editable.
func FromStage(stage inspection.Stage, sp inspection.StageProgress, gated bool) StageView {
	view := StageView{
		ID:               stage.ID,
		InspectionTypeID: stage.InspectionTypeID,
		StageName:        stage.StageName(),
		Status:           string(stage.Status()),
		DueDate:          inspection.FormatDate(stage.DueDate),
		Comment:          stage.Comment,
		Inputs:           stage.Inputs,
		Recommendation:   string(stage.Recommendation),
		AllowedDecisions: []string{},
	}
	if order, ok := stage.Order(); ok {
		view.Order = &order
	}
	if stage.Meta != nil {
		view.Required = stage.Meta.Required
	}
	if at, ok := stage.State.SubmittedAt(); ok {
		view.SubmittedAt = formatTimestamp(at)
	}
	if gated {
		view.Editable = sp.Editable
		view.AllowedDecisions = decisionStrings(sp.AllowedDecisions)
	}
	return view
}

// FromRecommendation converts a recommendation signal.
func FromRecommendation(sig workflow.RecommendationSignal) RecommendationView {
	view := RecommendationView{
		ParentReturnID: sig.ParentReturnID,
		Recommendation: string(sig.Recommendation),
		StageID:        sig.StageID,
		StageName:      sig.StageName,
		Decision:       string(sig.Decision),
	}
	if sig.SubmittedAt != nil {
		view.SubmittedAt = formatTimestamp(*sig.SubmittedAt)
	}
	return view
}

// FromStats converts store statistics.
func FromStats(stats store.Stats) StoreStats {
	return StoreStats{
		Crops:          stats.Crops,
		Templates:      stats.Templates,
		Returns:        stats.Returns,
		Checklists:     stats.Checklists,
		Stages:         stats.Stages,
		PendingStages:  stats.PendingStages,
		ResolvedStages: stats.ResolvedStages,
	}
}

func decisionStrings(decisions []inspection.Decision) []string {
	out := make([]string, 0, len(decisions))
	for _, d := range decisions {
		out = append(out, string(d))
	}
	return out
}
