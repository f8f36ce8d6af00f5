package api

import (
	"context"
	"fmt"

	"fieldinspect/internal/workflow"
)

// InspectionService exposes the engine operations returning API DTOs.
type InspectionService struct {
	engine *workflow.Engine
}

// NewInspectionService constructs a service around the engine.
func NewInspectionService(engine *workflow.Engine) *InspectionService {
	if engine == nil {
		return nil
	}
	return &InspectionService{engine: engine}
}

// Initialize materializes a return's checklist.
func (s *InspectionService) Initialize(ctx context.Context, returnID int64) (InitializeResponse, error) {
	res, err := s.engine.Initialize(ctx, workflow.InitializeRequest{ParentReturnID: returnID})
	if err != nil {
		return InitializeResponse{Success: false, Message: err.Error()}, err
	}
	msg := "inspection checklist already initialized"
	if res.Created {
		msg = fmt.Sprintf("inspection checklist created with %d stages", len(res.Stages))
	}
	return InitializeResponse{Success: true, Message: msg, Created: res.Created}, nil
}

// Submit records a stage decision.
func (s *InspectionService) Submit(ctx context.Context, returnID int64, req SubmitStageRequest) (SubmitStageResponse, error) {
	res, err := s.engine.SubmitStage(ctx, workflow.SubmitRequest{
		ParentReturnID:   returnID,
		TaskID:           req.TaskID,
		InspectionTypeID: req.InspectionTypeID,
		Decision:         req.Decision,
		Comment:          req.Comment,
		Inputs:           req.Inputs,
	})
	if err != nil {
		return SubmitStageResponse{Success: false, Message: err.Error()}, err
	}
	name := res.Stage.StageName()
	if name == "" {
		name = fmt.Sprintf("inspection type %d", res.Stage.InspectionTypeID)
	}
	return SubmitStageResponse{
		Success:        true,
		Message:        fmt.Sprintf("%s recorded as %s", name, res.Stage.Status()),
		StageID:        res.Stage.ID,
		Status:         string(res.Stage.Status()),
		Recommendation: string(res.Recommendation),
		Resolution:     string(res.Resolution),
	}, nil
}

// Inspection returns the checklist view of a return.
func (s *InspectionService) Inspection(ctx context.Context, returnID int64) (InspectionView, error) {
	checklist, err := s.engine.GetInspection(ctx, returnID)
	if err != nil {
		return InspectionView{}, err
	}
	return FromChecklist(checklist), nil
}

// Recommendation returns the latest recommendation signal of a return.
func (s *InspectionService) Recommendation(ctx context.Context, returnID int64) (RecommendationView, error) {
	sig, err := s.engine.LatestRecommendation(ctx, returnID)
	if err != nil {
		return RecommendationView{}, err
	}
	return FromRecommendation(sig), nil
}
