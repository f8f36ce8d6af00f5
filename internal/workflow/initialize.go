package workflow

import (
	"context"
	"fmt"

	"fieldinspect/internal/inspection"
	"fieldinspect/internal/logging"
	"fieldinspect/internal/services"
	"fieldinspect/internal/store"
)

// InitializeRequest identifies the return whose checklist should be built.
type InitializeRequest struct {
	ParentReturnID int64 `json:"parentReturnId" validate:"gt=0"`
}

// InitializeResult reports whether this call materialized the checklist.
type InitializeResult struct {
	Created bool
	Stages  []inspection.Stage
}

// Initialize builds the return's stage checklist exactly once. A return that
// already has stages is a successful no-op with Created=false.
func (e *Engine) Initialize(ctx context.Context, req InitializeRequest) (result InitializeResult, err error) {
	const operation = "initialize"
	started := e.now()
	ctx = services.WithReturnID(ctx, req.ParentReturnID)
	defer func() { e.finish(ctx, operation, started, err) }()

	if err := e.authorize(ctx, inspection.CapabilityInitialise, operation); err != nil {
		return InitializeResult{}, err
	}
	if err := e.checkRequest(operation, req); err != nil {
		return InitializeResult{}, err
	}

	subject, _ := services.SubjectFromContext(ctx)
	err = e.store.Update(ctx, func(tx *store.Tx) error {
		result = InitializeResult{}

		count, err := tx.CountStages(ctx, req.ParentReturnID)
		if err != nil {
			return storageErr(operation, err)
		}
		if count > 0 {
			return nil
		}

		ret, err := e.returns.ReturnCore(ctx, req.ParentReturnID)
		if err != nil {
			return storageErr(operation, fmt.Errorf("load return: %w", err))
		}
		if ret == nil {
			return services.Wrap(services.ErrNotFound, component, operation,
				fmt.Sprintf("return %d not found", req.ParentReturnID), nil)
		}

		templates, err := e.templates.StageTemplates(ctx, ret.CropID)
		if err != nil {
			return storageErr(operation, fmt.Errorf("load stage templates: %w", err))
		}
		if len(templates) == 0 {
			return services.Wrap(services.ErrUnprocessable, component, operation,
				fmt.Sprintf("crop %d has no configured inspection stages", ret.CropID), nil)
		}

		claimed, err := tx.ClaimChecklist(ctx, req.ParentReturnID, subject)
		if err != nil {
			return storageErr(operation, err)
		}
		if !claimed {
			return nil
		}

		stages := inspection.Materialize(*ret, templates)
		for i := range stages {
			if err := tx.InsertStage(ctx, &stages[i]); err != nil {
				return storageErr(operation, err)
			}
		}
		result = InitializeResult{Created: true, Stages: stages}
		return nil
	})
	if err != nil {
		return InitializeResult{}, storageErr(operation, err)
	}

	e.metrics.RecordInitialize(result.Created, e.now().Sub(started))
	logger := logging.WithContext(ctx, e.logger)
	if result.Created {
		logger.Info(
			"inspection checklist initialized",
			logging.String(logging.FieldEventType, "checklist_initialized"),
			logging.Int("stage_count", len(result.Stages)),
			logging.Duration("duration", e.now().Sub(started)),
		)
	} else {
		logger.Debug("inspection checklist already initialized",
			logging.String(logging.FieldEventType, "checklist_exists"))
	}
	return result, nil
}
