// Package metrics exposes Prometheus instrumentation for the inspection engine
// and its HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fieldinspect"

// Metrics holds every collector registered by fieldinspect. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ChecklistsInitialized *prometheus.CounterVec
	StageSubmissions      *prometheus.CounterVec
	Recommendations       *prometheus.CounterVec
	OperationFailures     *prometheus.CounterVec
	OperationDuration     *prometheus.HistogramVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates a registry with Go and process collectors plus the engine metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.ChecklistsInitialized = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checklists_initialized_total",
			Help:      "Initialize calls by outcome (created or existing)",
		},
		[]string{"outcome"},
	)
	m.StageSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_submissions_total",
			Help:      "Stage decisions written, by decision and target resolution",
		},
		[]string{"decision", "resolution"},
	)
	m.Recommendations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Recommendations persisted on stages",
		},
		[]string{"recommendation"},
	)
	m.OperationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_failures_total",
			Help:      "Engine operation failures by kind",
		},
		[]string{"operation", "kind"},
	)
	m.OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Engine operation latency in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)
	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	registry.MustRegister(
		m.ChecklistsInitialized,
		m.StageSubmissions,
		m.Recommendations,
		m.OperationFailures,
		m.OperationDuration,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordInitialize counts an Initialize outcome.
func (m *Metrics) RecordInitialize(created bool, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "existing"
	if created {
		outcome = "created"
	}
	m.ChecklistsInitialized.WithLabelValues(outcome).Inc()
	m.OperationDuration.WithLabelValues("initialize").Observe(duration.Seconds())
}

// RecordSubmission counts a written stage decision.
func (m *Metrics) RecordSubmission(decision, resolution, recommendation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.StageSubmissions.WithLabelValues(decision, resolution).Inc()
	m.Recommendations.WithLabelValues(recommendation).Inc()
	m.OperationDuration.WithLabelValues("submit").Observe(duration.Seconds())
}

// RecordRead observes a read operation such as get_inspection.
func (m *Metrics) RecordRead(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordFailure counts a failed operation by error kind.
func (m *Metrics) RecordFailure(operation, kind string) {
	if m == nil {
		return
	}
	m.OperationFailures.WithLabelValues(operation, kind).Inc()
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
