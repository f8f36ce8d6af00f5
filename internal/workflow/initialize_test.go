package workflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"fieldinspect/internal/inspection"
	"fieldinspect/internal/services"
	"fieldinspect/internal/store"
	"fieldinspect/internal/testsupport"
	"fieldinspect/internal/workflow"
)

func TestInitializeMaizeScenario(t *testing.T) {
	h := newHarness(t)

	res := h.initialize(t, testsupport.MaizeReturnID)
	if !res.Created {
		t.Fatal("expected checklist to be created")
	}

	stages := h.stages(t, testsupport.MaizeReturnID)
	wantNames := []string{"Pre-planting", "Mid-season", "Pre-harvest"}
	wantDue := []string{"2024-01-10", "2024-02-24", "2024-04-09"}
	if len(stages) != 3 {
		t.Fatalf("expected 3 stages, got %d", len(stages))
	}
	for i, st := range stages {
		if st.StageName() != wantNames[i] {
			t.Fatalf("stage %d: expected %q, got %q", i, wantNames[i], st.StageName())
		}
		if order, _ := st.Order(); order != i+1 {
			t.Fatalf("stage %d: expected order %d, got %d", i, i+1, order)
		}
		if got := inspection.FormatDate(st.DueDate); got != wantDue[i] {
			t.Fatalf("stage %d: expected due %s, got %s", i, wantDue[i], got)
		}
		if st.Status() != inspection.StatusPending || st.State.WriteState() != inspection.WriteStateDraft {
			t.Fatalf("stage %d: expected pending draft, got %s/%s", i, st.Status(), st.State.WriteState())
		}
		if st.InspectorID != testsupport.MaizeInspectorID {
			t.Fatalf("stage %d: expected inspector copied, got %d", i, st.InspectorID)
		}
		if st.InspectionTypeID != h.templateID(i) {
			t.Fatalf("stage %d: expected type %d, got %d", i, h.templateID(i), st.InspectionTypeID)
		}
	}

	checklist, err := h.engine.GetInspection(inspector(), testsupport.MaizeReturnID)
	if err != nil {
		t.Fatalf("GetInspection: %v", err)
	}
	if checklist.Progress.FirstActionable != 1 {
		t.Fatalf("expected first actionable 1, got %d", checklist.Progress.FirstActionable)
	}
	for i, sp := range checklist.Progress.Stages {
		if sp.Editable != (i == 0) {
			t.Fatalf("stage %d: unexpected editable=%v", i, sp.Editable)
		}
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	h := newHarness(t)

	if !h.initialize(t, testsupport.MaizeReturnID).Created {
		t.Fatal("expected first call to create")
	}
	second := h.initialize(t, testsupport.MaizeReturnID)
	if second.Created {
		t.Fatal("expected second call to be a no-op")
	}
	if got := len(h.stages(t, testsupport.MaizeReturnID)); got != 3 {
		t.Fatalf("expected 3 stages after two calls, got %d", got)
	}
}

func TestInitializeConcurrentCallsCreateOneChecklist(t *testing.T) {
	h := newHarness(t)

	const callers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := h.engine.Initialize(registrar(), workflow.InitializeRequest{ParentReturnID: testsupport.MaizeReturnID})
			if err != nil {
				t.Errorf("Initialize: %v", err)
				return
			}
			if res.Created {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if created != 1 {
		t.Fatalf("expected exactly one creator, got %d", created)
	}
	if got := len(h.stages(t, testsupport.MaizeReturnID)); got != 3 {
		t.Fatalf("expected 3 stages, got %d", got)
	}
}

func TestInitializeFailures(t *testing.T) {
	h := newHarness(t)
	testsupport.SeedCrop(t, h.store, 9, "Fallow", nil)
	testsupport.SeedReturn(t, h.store, store.ReturnRecord{ID: 200, CropID: 9})

	tests := []struct {
		name   string
		ctx    context.Context
		id     int64
		marker error
	}{
		{"missing return", registrar(), 999, services.ErrNotFound},
		{"crop without templates", registrar(), 200, services.ErrUnprocessable},
		{"inspector lacks capability", inspector(), testsupport.MaizeReturnID, services.ErrPermissionDenied},
		{"no subject", context.Background(), testsupport.MaizeReturnID, services.ErrPermissionDenied},
		{"invalid id", registrar(), 0, services.ErrValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.engine.Initialize(tc.ctx, workflow.InitializeRequest{ParentReturnID: tc.id})
			expectKind(t, err, tc.marker)
		})
	}
	if got := len(h.stages(t, testsupport.MaizeReturnID)); got != 0 {
		t.Fatalf("expected no stages after failures, got %d", got)
	}
}

type staticTemplates struct {
	templates []inspection.StageTemplate
	err       error
}

func (s staticTemplates) StageTemplates(context.Context, int64) ([]inspection.StageTemplate, error) {
	return s.templates, s.err
}

func TestInitializeRollsBackPartialChecklist(t *testing.T) {
	duplicate := []inspection.StageTemplate{
		{ID: 1, StageName: "First", Order: 1},
		{ID: 1, StageName: "First again", Order: 2},
	}
	h := newHarness(t, workflow.WithTemplateSource(staticTemplates{templates: duplicate}))

	_, err := h.engine.Initialize(registrar(), workflow.InitializeRequest{ParentReturnID: testsupport.MaizeReturnID})
	expectKind(t, err, services.ErrStorage)
	if !errors.Is(err, store.ErrDuplicateStage) {
		t.Fatalf("expected duplicate stage cause, got %v", err)
	}
	if got := len(h.stages(t, testsupport.MaizeReturnID)); got != 0 {
		t.Fatalf("expected rollback to leave no stages, got %d", got)
	}

	// The checklist marker rolled back too, so a corrected source can initialize.
	fixed := workflow.NewEngine(h.store, allowAll{}, workflow.WithTemplateSource(staticTemplates{templates: duplicate[:1]}))
	res, err := fixed.Initialize(registrar(), workflow.InitializeRequest{ParentReturnID: testsupport.MaizeReturnID})
	if err != nil || !res.Created {
		t.Fatalf("expected retry to create checklist, got %+v %v", res, err)
	}
}

func TestInitializeTemplateSourceFailureIsStorageError(t *testing.T) {
	h := newHarness(t, workflow.WithTemplateSource(staticTemplates{err: errors.New("crop service down")}))
	_, err := h.engine.Initialize(registrar(), workflow.InitializeRequest{ParentReturnID: testsupport.MaizeReturnID})
	expectKind(t, err, services.ErrStorage)
}

type allowAll struct{}

func (allowAll) HasCapability(context.Context, string, string) bool { return true }
