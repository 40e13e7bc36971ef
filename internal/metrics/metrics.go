package metrics

import (
	"sync"
	"sync/atomic"
)

// MetricKey is a strongly typed metric identifier.
type MetricKey string

// Metric keys (centralized)
const (
	// Requests
	HTTPRequestsTotal MetricKey = "http_requests_total"
	HTTPPanicsTotal   MetricKey = "http_panics_total"

	// Predictions
	PredictionsTotal        MetricKey = "predictions_total"
	PredictionFailuresTotal MetricKey = "prediction_failures_total"
	ValidationRejectsTotal  MetricKey = "validation_rejects_total"
	MalformedRequestsTotal  MetricKey = "malformed_requests_total"

	// Outcomes
	PositiveDiagnosesTotal MetricKey = "positive_diagnoses_total"
	RiskLowTotal           MetricKey = "risk_low_total"
	RiskMediumTotal        MetricKey = "risk_medium_total"
	RiskHighTotal          MetricKey = "risk_high_total"

	// Artifacts
	ArtifactChangesTotal MetricKey = "artifact_changes_total"
)

// Registry stores all metrics.
type Registry struct {
	mu       sync.RWMutex
	counters map[MetricKey]*int64
}

// NewRegistry creates a metrics registry.
func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[MetricKey]*int64),
	}
}

// Inc increments a metric by 1.
func (r *Registry) Inc(key MetricKey) {
	r.Add(key, 1)
}

// Add increments a metric by delta.
func (r *Registry) Add(key MetricKey, delta int64) {
	r.mu.RLock()
	ptr, ok := r.counters[key]
	r.mu.RUnlock()

	if ok {
		atomic.AddInt64(ptr, delta)
		return
	}

	// Slow path: metric not yet initialized
	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if ptr, ok = r.counters[key]; ok {
		atomic.AddInt64(ptr, delta)
		return
	}

	var val int64
	r.counters[key] = &val
	atomic.AddInt64(&val, delta)
}
