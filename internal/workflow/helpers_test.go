package workflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fieldinspect/internal/access"
	"fieldinspect/internal/inspection"
	"fieldinspect/internal/services"
	"fieldinspect/internal/store"
	"fieldinspect/internal/testsupport"
	"fieldinspect/internal/workflow"
)

type harness struct {
	store     *store.Store
	engine    *workflow.Engine
	templates []inspection.StageTemplate
}

func newHarness(t *testing.T, opts ...workflow.Option) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	st.SetClock(steppingClock(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)))
	templates := testsupport.SeedMaize(t, st)
	engine := workflow.NewEngine(st, access.NewPolicy(cfg), opts...)
	return &harness{store: st, engine: engine, templates: templates}
}

// steppingClock advances one second per call so submissions are strictly ordered.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

func as(subject string) context.Context {
	return services.WithSubject(context.Background(), subject)
}

func registrar() context.Context { return as(testsupport.SubjectRegistrar) }

func inspector() context.Context { return as(testsupport.SubjectInspector) }

func (h *harness) initialize(t *testing.T, returnID int64) workflow.InitializeResult {
	t.Helper()
	res, err := h.engine.Initialize(registrar(), workflow.InitializeRequest{ParentReturnID: returnID})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return res
}

func (h *harness) submit(t *testing.T, req workflow.SubmitRequest) workflow.SubmitResult {
	t.Helper()
	res, err := h.engine.SubmitStage(inspector(), req)
	if err != nil {
		t.Fatalf("SubmitStage(%+v): %v", req, err)
	}
	return res
}

func (h *harness) stages(t *testing.T, returnID int64) []inspection.Stage {
	t.Helper()
	var stages []inspection.Stage
	err := h.store.View(context.Background(), func(tx *store.Tx) error {
		var err error
		stages, err = tx.ListStages(context.Background(), returnID)
		return err
	})
	if err != nil {
		t.Fatalf("ListStages: %v", err)
	}
	return stages
}

func (h *harness) templateID(i int) int64 {
	return h.templates[i].ID
}

func expectKind(t *testing.T, err error, marker error) {
	t.Helper()
	if !errors.Is(err, marker) {
		t.Fatalf("expected %v, got %v", marker, err)
	}
}
