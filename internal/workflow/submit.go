package workflow

import (
	"context"
	"fmt"
	"strings"

	"fieldinspect/internal/inspection"
	"fieldinspect/internal/logging"
	"fieldinspect/internal/services"
	"fieldinspect/internal/store"
)

// Resolution describes how a submission located its target stage.
type Resolution string

const (
	ResolvedByTask Resolution = "task"
	ResolvedByType Resolution = "type"
	ResolvedByNew  Resolution = "created"
)

// SubmitRequest records one stage decision. TaskID is optional; Comment and
// Inputs left nil keep whatever the stage already holds.
type SubmitRequest struct {
	ParentReturnID   int64             `json:"parentReturnId" validate:"gt=0"`
	TaskID           int64             `json:"taskId" validate:"gte=0"`
	InspectionTypeID int64             `json:"inspectionTypeId" validate:"gt=0"`
	Decision         string            `json:"decision" validate:"required,oneof=accepted rejected provisional skipped"`
	Comment          *string           `json:"comment" validate:"omitempty,max=4000"`
	Inputs           inspection.Inputs `json:"inputs"`
}

// SubmitResult carries the stage as written.
type SubmitResult struct {
	Stage          inspection.Stage
	Recommendation inspection.Recommendation
	Resolution     Resolution
}

// SubmitStage merges a decision into the target stage inside one transaction.
// When the checklist is initialized the write must pass the same gating the
// checklist view reports; an uninitialized checklist gets a stage created on
// the fly.
func (e *Engine) SubmitStage(ctx context.Context, req SubmitRequest) (result SubmitResult, err error) {
	const operation = "submit"
	started := e.now()
	ctx = services.WithReturnID(ctx, req.ParentReturnID)
	defer func() { e.finish(ctx, operation, started, err) }()

	if err := e.authorize(ctx, inspection.CapabilityEdit, operation); err != nil {
		return SubmitResult{}, err
	}
	req.Decision = strings.ToLower(strings.TrimSpace(req.Decision))
	if err := e.checkRequest(operation, req); err != nil {
		return SubmitResult{}, err
	}
	decision, ok := inspection.ParseDecision(req.Decision)
	if !ok {
		return SubmitResult{}, services.Wrap(services.ErrValidation, component, operation,
			fmt.Sprintf("unknown decision %q", req.Decision), nil)
	}
	submission := inspection.Submission{
		TaskID:           req.TaskID,
		InspectionTypeID: req.InspectionTypeID,
		Decision:         decision,
		Comment:          req.Comment,
		Inputs:           req.Inputs,
	}

	err = e.store.Update(ctx, func(tx *store.Tx) error {
		result = SubmitResult{}

		target, resolution, err := resolveTarget(ctx, tx, req.ParentReturnID, submission)
		if err != nil {
			return storageErr(operation, err)
		}
		stages, err := tx.ListStages(ctx, req.ParentReturnID)
		if err != nil {
			return storageErr(operation, err)
		}

		ret, err := e.returns.ReturnCore(ctx, req.ParentReturnID)
		if err != nil {
			return storageErr(operation, fmt.Errorf("load return: %w", err))
		}
		templates, err := e.templatesFor(ctx, ret, stages)
		if err != nil {
			return storageErr(operation, fmt.Errorf("load stage templates: %w", err))
		}

		typeID := submission.InspectionTypeID
		if target != nil {
			typeID = target.InspectionTypeID
		}
		progress := inspection.Evaluate(templates, stages)
		if guard := progress.Authorize(typeID, decision); !guard.Allowed {
			return guard.Err()
		}

		if target == nil {
			target = newFallbackStage(req.ParentReturnID, typeID, ret, templates)
			target.Apply(submission, tx.Now())
			if err := tx.InsertStage(ctx, target); err != nil {
				return storageErr(operation, err)
			}
		} else {
			target.Apply(submission, tx.Now())
			if err := tx.UpdateStage(ctx, target); err != nil {
				return storageErr(operation, err)
			}
		}

		result = SubmitResult{
			Stage:          *target,
			Recommendation: target.Recommendation,
			Resolution:     resolution,
		}
		return nil
	})
	if err != nil {
		return SubmitResult{}, storageErr(operation, err)
	}

	e.metrics.RecordSubmission(string(decision), string(result.Resolution), string(result.Recommendation), e.now().Sub(started))
	stageCtx := services.WithStage(ctx, result.Stage.StageName())
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "stage_submitted"),
		logging.Int64("stage_id", result.Stage.ID),
		logging.Int64("inspection_type_id", result.Stage.InspectionTypeID),
		logging.String("resolution", string(result.Resolution)),
	}
	attrs = append(attrs, logging.DecisionAttrs(string(decision), string(result.Recommendation), string(result.Stage.State.WriteState()))...)
	logging.WithContext(stageCtx, e.logger).Info("inspection stage submitted", logging.Args(attrs...)...)
	return result, nil
}

// resolveTarget finds the stage a submission writes to: by task id scoped to
// the return, then by the keyed (return, inspection type) lookup.
func resolveTarget(ctx context.Context, tx *store.Tx, returnID int64, sub inspection.Submission) (*inspection.Stage, Resolution, error) {
	if sub.TaskID > 0 {
		stage, err := tx.GetStage(ctx, returnID, sub.TaskID)
		if err != nil {
			return nil, "", err
		}
		if stage != nil {
			return stage, ResolvedByTask, nil
		}
	}
	stage, err := tx.FindStageByType(ctx, returnID, sub.InspectionTypeID)
	if err != nil {
		return nil, "", err
	}
	if stage != nil {
		return stage, ResolvedByType, nil
	}
	return nil, ResolvedByNew, nil
}

// newFallbackStage builds the minimal stage created when a submission finds
// no existing instance. Metadata is copied from a matching template when the
// crop has one.
func newFallbackStage(returnID, typeID int64, ret *inspection.ReturnCore, templates []inspection.StageTemplate) *inspection.Stage {
	stage := &inspection.Stage{
		ParentReturnID:   returnID,
		InspectionTypeID: typeID,
		State:            inspection.Pending(),
	}
	if ret != nil {
		stage.InspectorID = ret.InspectorID
	}
	for _, tpl := range templates {
		if tpl.ID == typeID {
			meta := tpl.Meta()
			stage.Meta = &meta
			break
		}
	}
	return stage
}
