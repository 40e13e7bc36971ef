package health

// HealthStatus represents overall service health.
type HealthStatus string

const (
	StatusOK       HealthStatus = "OK"
	StatusDegraded HealthStatus = "DEGRADED"
	StatusCritical HealthStatus = "CRITICAL"
)

// HealthReport is the diagnostics summary served to operators.
type HealthReport struct {
	OverallStatus   HealthStatus     `json:"overall_status"`
	Summary         string           `json:"summary"`
	Signals         []string         `json:"signals"`
	Recommendations []string         `json:"recommendations"`
	Counters        map[string]int64 `json:"counters"`
}

// add records a triggered rule and escalates the overall status. A report
// never goes back from CRITICAL to DEGRADED.
func (r *HealthReport) add(res RuleResult) {
	if !res.Triggered {
		return
	}
	r.Signals = append(r.Signals, res.Signal)
	r.Recommendations = append(r.Recommendations, res.Recommendation)

	switch {
	case res.Severity == StatusCritical:
		r.OverallStatus = StatusCritical
	case res.Severity == StatusDegraded && r.OverallStatus == StatusOK:
		r.OverallStatus = StatusDegraded
	}
}
