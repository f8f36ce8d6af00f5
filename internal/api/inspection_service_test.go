package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"fieldinspect/internal/access"
	"fieldinspect/internal/api"
	"fieldinspect/internal/inspection"
	"fieldinspect/internal/services"
	"fieldinspect/internal/testsupport"
	"fieldinspect/internal/workflow"
)

func newService(t *testing.T) (*api.InspectionService, []inspection.StageTemplate) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	templates := testsupport.SeedMaize(t, st)
	engine := workflow.NewEngine(st, access.NewPolicy(cfg))
	return api.NewInspectionService(engine), templates
}

func ctxFor(subject string) context.Context {
	return services.WithSubject(context.Background(), subject)
}

func TestInspectionServiceLifecycle(t *testing.T) {
	svc, templates := newService(t)
	registrar := ctxFor(testsupport.SubjectRegistrar)
	inspector := ctxFor(testsupport.SubjectInspector)

	init, err := svc.Initialize(registrar, testsupport.MaizeReturnID)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !init.Success || !init.Created {
		t.Fatalf("unexpected initialize response: %+v", init)
	}
	again, err := svc.Initialize(registrar, testsupport.MaizeReturnID)
	if err != nil {
		t.Fatalf("Initialize again: %v", err)
	}
	if !again.Success || again.Created {
		t.Fatalf("expected idempotent success without creation, got %+v", again)
	}

	view, err := svc.Inspection(inspector, testsupport.MaizeReturnID)
	if err != nil {
		t.Fatalf("Inspection: %v", err)
	}
	if !view.Initialized || view.Resolved {
		t.Fatalf("unexpected flags: %+v", view)
	}
	if view.FirstActionableOrder == nil || *view.FirstActionableOrder != 1 {
		t.Fatalf("expected first actionable order 1, got %v", view.FirstActionableOrder)
	}
	if len(view.Stages) != 3 {
		t.Fatalf("expected 3 stages, got %d", len(view.Stages))
	}
	first := view.Stages[0]
	if first.StageName != "Pre-planting" || first.DueDate != "2024-01-10" || !first.Editable {
		t.Fatalf("unexpected first stage: %+v", first)
	}
	if got := first.AllowedDecisions; len(got) != 3 || got[0] != "provisional" {
		t.Fatalf("unexpected decision set: %v", got)
	}
	if view.Stages[1].Editable {
		t.Fatal("second stage should be locked")
	}
	if view.Stages[2].DueDate != "2024-04-09" {
		t.Fatalf("unexpected pre-harvest due date %q", view.Stages[2].DueDate)
	}

	comment := "soil prepared"
	resp, err := svc.Submit(inspector, testsupport.MaizeReturnID, api.SubmitStageRequest{
		InspectionTypeID: templates[0].ID,
		Decision:         "skipped",
		Comment:          &comment,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !resp.Success || resp.Status != "skipped" || resp.Recommendation != "none" || resp.Resolution != "type" {
		t.Fatalf("unexpected submit response: %+v", resp)
	}

	for i, decision := range []string{"skipped", "accepted"} {
		tpl := templates[i+1]
		if _, err := svc.Submit(inspector, testsupport.MaizeReturnID, api.SubmitStageRequest{
			InspectionTypeID: tpl.ID,
			Decision:         decision,
		}); err != nil {
			t.Fatalf("Submit %s: %v", tpl.StageName, err)
		}
	}

	view, err = svc.Inspection(inspector, testsupport.MaizeReturnID)
	if err != nil {
		t.Fatalf("Inspection: %v", err)
	}
	if !view.Resolved || view.FirstActionableOrder != nil {
		t.Fatalf("expected resolved checklist with null order, got %+v", view)
	}
	for _, stage := range view.Stages {
		if stage.Editable || len(stage.AllowedDecisions) == 0 {
			t.Fatalf("resolved stage should be locked with its decision set: %+v", stage)
		}
		if stage.SubmittedAt == "" {
			t.Fatalf("stage %d missing submittedAt", stage.ID)
		}
	}

	rec, err := svc.Recommendation(inspector, testsupport.MaizeReturnID)
	if err != nil {
		t.Fatalf("Recommendation: %v", err)
	}
	if rec.Recommendation != "approve" || rec.StageName != "Pre-harvest" || rec.Decision != "accepted" {
		t.Fatalf("unexpected recommendation: %+v", rec)
	}
}

func TestInspectionServicePropagatesErrors(t *testing.T) {
	svc, templates := newService(t)

	resp, err := svc.Initialize(ctxFor(testsupport.SubjectViewer), testsupport.MaizeReturnID)
	if !errors.Is(err, services.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	if resp.Success || resp.Message == "" {
		t.Fatalf("expected failure message, got %+v", resp)
	}

	_, err = svc.Submit(ctxFor(testsupport.SubjectInspector), testsupport.MaizeReturnID, api.SubmitStageRequest{
		InspectionTypeID: templates[0].ID,
		Decision:         "maybe",
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := svc.Inspection(ctxFor(testsupport.SubjectInspector), 9999); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestInspectionViewJSON(t *testing.T) {
	svc, _ := newService(t)
	view, err := svc.Inspection(ctxFor(testsupport.SubjectViewer), testsupport.MaizeReturnID)
	if err != nil {
		t.Fatalf("Inspection: %v", err)
	}
	if view.Initialized || len(view.Stages) != 0 {
		t.Fatalf("expected empty uninitialized view, got %+v", view)
	}
	data, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"parentReturnId", "initialized", "firstActionableOrder", "resolved", "stages"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("missing key %q in %s", key, data)
		}
	}
	if stages, ok := decoded["stages"].([]any); !ok || len(stages) != 0 {
		t.Fatalf("expected empty stages array, got %v", decoded["stages"])
	}
}
