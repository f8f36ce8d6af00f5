package inspection_test

import (
	"testing"
	"time"

	"fieldinspect/internal/inspection"
)

func TestRecommendationMappingIsExhaustive(t *testing.T) {
	want := map[inspection.Decision]inspection.Recommendation{
		inspection.DecisionAccepted:    inspection.RecommendationApprove,
		inspection.DecisionRejected:    inspection.RecommendationReject,
		inspection.DecisionProvisional: inspection.RecommendationNone,
		inspection.DecisionSkipped:     inspection.RecommendationNone,
	}
	decisions := inspection.AllDecisions()
	if len(decisions) != len(want) {
		t.Fatalf("expected %d decisions, got %d", len(want), len(decisions))
	}
	for _, d := range decisions {
		expected, ok := want[d]
		if !ok {
			t.Fatalf("unexpected decision %q", d)
		}
		if got := inspection.RecommendationFor(d); got != expected {
			t.Fatalf("RecommendationFor(%q) = %q, want %q", d, got, expected)
		}
	}
}

func TestParseDecision(t *testing.T) {
	if d, ok := inspection.ParseDecision("  Provisional "); !ok || d != inspection.DecisionProvisional {
		t.Fatalf("expected provisional, got %q %v", d, ok)
	}
	for _, raw := range []string{"", "approved", "pending"} {
		if _, ok := inspection.ParseDecision(raw); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestStateDerivesStatus(t *testing.T) {
	pending := inspection.Pending()
	if !pending.IsPending() || pending.Status() != inspection.StatusPending {
		t.Fatalf("expected pending state, got %s", pending.Status())
	}
	if pending.WriteState() != inspection.WriteStateDraft {
		t.Fatalf("expected draft write state, got %s", pending.WriteState())
	}
	if _, ok := pending.SubmittedAt(); ok {
		t.Fatal("pending state must not carry a submission time")
	}

	at := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	submitted := inspection.Submitted(inspection.DecisionSkipped, at)
	if submitted.Status() != inspection.StatusSkipped {
		t.Fatalf("expected skipped status, got %s", submitted.Status())
	}
	if submitted.WriteState() != inspection.WriteStateSubmitted {
		t.Fatalf("expected submitted write state, got %s", submitted.WriteState())
	}
	if ts, ok := submitted.SubmittedAt(); !ok || !ts.Equal(at) {
		t.Fatalf("expected submission time %v, got %v %v", at, ts, ok)
	}

	if empty := inspection.Submitted("", at); !empty.IsPending() {
		t.Fatal("empty decision should yield pending")
	}
}
