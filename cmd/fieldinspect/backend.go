package main

import (
	"context"

	"fieldinspect/internal/api"
	"fieldinspect/internal/ipc"
)

// inspectionBackend is the surface shared by the in-process service and the
// daemon client.
type inspectionBackend interface {
	Initialize(ctx context.Context, returnID int64) (api.InitializeResponse, error)
	Submit(ctx context.Context, returnID int64, req api.SubmitStageRequest) (api.SubmitStageResponse, error)
	Inspection(ctx context.Context, returnID int64) (api.InspectionView, error)
	Recommendation(ctx context.Context, returnID int64) (api.RecommendationView, error)
}

type localBackend struct {
	svc *api.InspectionService
}

func (b localBackend) Initialize(ctx context.Context, returnID int64) (api.InitializeResponse, error) {
	return b.svc.Initialize(ctx, returnID)
}

func (b localBackend) Submit(ctx context.Context, returnID int64, req api.SubmitStageRequest) (api.SubmitStageResponse, error) {
	return b.svc.Submit(ctx, returnID, req)
}

func (b localBackend) Inspection(ctx context.Context, returnID int64) (api.InspectionView, error) {
	return b.svc.Inspection(ctx, returnID)
}

func (b localBackend) Recommendation(ctx context.Context, returnID int64) (api.RecommendationView, error) {
	return b.svc.Recommendation(ctx, returnID)
}

type remoteBackend struct {
	client *ipc.Client
}

func (b remoteBackend) Initialize(ctx context.Context, returnID int64) (api.InitializeResponse, error) {
	resp, err := b.client.Initialize(ctx, returnID)
	if err != nil {
		return api.InitializeResponse{}, err
	}
	return *resp, nil
}

func (b remoteBackend) Submit(ctx context.Context, returnID int64, req api.SubmitStageRequest) (api.SubmitStageResponse, error) {
	resp, err := b.client.Submit(ctx, returnID, req)
	if err != nil {
		return api.SubmitStageResponse{}, err
	}
	return *resp, nil
}

func (b remoteBackend) Inspection(ctx context.Context, returnID int64) (api.InspectionView, error) {
	resp, err := b.client.Inspection(ctx, returnID)
	if err != nil {
		return api.InspectionView{}, err
	}
	return *resp, nil
}

func (b remoteBackend) Recommendation(ctx context.Context, returnID int64) (api.RecommendationView, error) {
	resp, err := b.client.Recommendation(ctx, returnID)
	if err != nil {
		return api.RecommendationView{}, err
	}
	return *resp, nil
}
