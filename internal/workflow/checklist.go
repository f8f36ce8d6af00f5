package workflow

import (
	"context"
	"fmt"
	"time"

	"fieldinspect/internal/inspection"
	"fieldinspect/internal/services"
	"fieldinspect/internal/store"
)

// Checklist is the read model of one return's inspection: persisted stages
// plus the gating derived from them.
type Checklist struct {
	ParentReturnID int64
	Return         *inspection.ReturnCore
	Templates      []inspection.StageTemplate
	Stages         []inspection.Stage
	Progress       inspection.Progress
}

// StageProgress returns the gating slot for a stage, if its inspection type
// is part of the checklist.
func (c Checklist) StageProgress(stage inspection.Stage) (inspection.StageProgress, bool) {
	return c.Progress.Lookup(stage.InspectionTypeID)
}

// GetInspection loads a return's stages and evaluates gating. A return that
// is unknown and has no stages is NotFound.
func (e *Engine) GetInspection(ctx context.Context, parentReturnID int64) (checklist Checklist, err error) {
	const operation = "get_inspection"
	started := e.now()
	ctx = services.WithReturnID(ctx, parentReturnID)
	defer func() { e.finish(ctx, operation, started, err) }()

	if err := e.authorize(ctx, inspection.CapabilityView, operation); err != nil {
		return Checklist{}, err
	}
	if parentReturnID <= 0 {
		return Checklist{}, services.Wrap(services.ErrValidation, component, operation, "parentReturnId must be greater than 0", nil)
	}

	var stages []inspection.Stage
	if err := e.store.View(ctx, func(tx *store.Tx) error {
		var err error
		stages, err = tx.ListStages(ctx, parentReturnID)
		return err
	}); err != nil {
		return Checklist{}, storageErr(operation, err)
	}

	ret, err := e.returns.ReturnCore(ctx, parentReturnID)
	if err != nil {
		return Checklist{}, storageErr(operation, fmt.Errorf("load return: %w", err))
	}
	if ret == nil && len(stages) == 0 {
		return Checklist{}, services.Wrap(services.ErrNotFound, component, operation,
			fmt.Sprintf("return %d not found", parentReturnID), nil)
	}
	templates, err := e.templatesFor(ctx, ret, stages)
	if err != nil {
		return Checklist{}, storageErr(operation, fmt.Errorf("load stage templates: %w", err))
	}

	e.metrics.RecordRead(operation, e.now().Sub(started))
	return Checklist{
		ParentReturnID: parentReturnID,
		Return:         ret,
		Templates:      inspection.SortTemplates(templates),
		Stages:         stages,
		Progress:       inspection.Evaluate(templates, stages),
	}, nil
}

// RecommendationSignal is the value the parent approval workflow reads: the
// recommendation persisted on the most recently submitted stage.
type RecommendationSignal struct {
	ParentReturnID int64
	Recommendation inspection.Recommendation
	StageID        int64
	StageName      string
	Decision       inspection.Decision
	SubmittedAt    *time.Time
}

// LatestRecommendation returns the recommendation of the latest-submitted
// stage, or RecommendationNone when nothing has been submitted.
func (e *Engine) LatestRecommendation(ctx context.Context, parentReturnID int64) (signal RecommendationSignal, err error) {
	const operation = "get_recommendation"
	started := e.now()
	ctx = services.WithReturnID(ctx, parentReturnID)
	defer func() { e.finish(ctx, operation, started, err) }()

	if err := e.authorize(ctx, inspection.CapabilityView, operation); err != nil {
		return RecommendationSignal{}, err
	}
	if parentReturnID <= 0 {
		return RecommendationSignal{}, services.Wrap(services.ErrValidation, component, operation, "parentReturnId must be greater than 0", nil)
	}

	var latest *inspection.Stage
	if err := e.store.View(ctx, func(tx *store.Tx) error {
		var err error
		latest, err = tx.LatestSubmitted(ctx, parentReturnID)
		return err
	}); err != nil {
		return RecommendationSignal{}, storageErr(operation, err)
	}

	e.metrics.RecordRead(operation, e.now().Sub(started))
	signal = RecommendationSignal{ParentReturnID: parentReturnID, Recommendation: inspection.RecommendationNone}
	if latest == nil {
		return signal, nil
	}
	signal.Recommendation = latest.Recommendation
	signal.StageID = latest.ID
	signal.StageName = latest.StageName()
	signal.Decision, _ = latest.State.Decision()
	if at, ok := latest.State.SubmittedAt(); ok {
		signal.SubmittedAt = &at
	}
	return signal, nil
}
