package metrics_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"fieldinspect/internal/metrics"
)

func TestRecordersUpdateCounters(t *testing.T) {
	m := metrics.New()

	m.RecordInitialize(true, time.Millisecond)
	m.RecordInitialize(false, time.Millisecond)
	m.RecordInitialize(false, time.Millisecond)
	m.RecordSubmission("accepted", "task", "approve", time.Millisecond)
	m.RecordFailure("submit", "conflict")

	if got := testutil.ToFloat64(m.ChecklistsInitialized.WithLabelValues("created")); got != 1 {
		t.Fatalf("expected 1 created, got %v", got)
	}
	if got := testutil.ToFloat64(m.ChecklistsInitialized.WithLabelValues("existing")); got != 2 {
		t.Fatalf("expected 2 existing, got %v", got)
	}
	if got := testutil.ToFloat64(m.Recommendations.WithLabelValues("approve")); got != 1 {
		t.Fatalf("expected 1 approve, got %v", got)
	}
	if got := testutil.ToFloat64(m.OperationFailures.WithLabelValues("submit", "conflict")); got != 1 {
		t.Fatalf("expected 1 conflict failure, got %v", got)
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	m := metrics.New()
	m.RecordHTTPRequest("GET", "/api/status", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `fieldinspect_http_requests_total{method="GET",route="/api/status",status="200"} 1`) {
		t.Fatalf("expected http counter in output, got:\n%s", body)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	m.RecordInitialize(true, 0)
	m.RecordSubmission("accepted", "task", "approve", 0)
	m.RecordFailure("submit", "storage")
	m.RecordHTTPRequest("GET", "/", 200, 0)
	if m.Registry() != nil {
		t.Fatal("expected nil registry")
	}
}
