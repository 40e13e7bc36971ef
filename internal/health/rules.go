package health

import (
	"strings"

	"heartrisk/internal/logs"
	"heartrisk/internal/metrics"
)

// RuleResult represents the outcome of a single rule.
type RuleResult struct {
	Triggered      bool
	Signal         string
	Recommendation string
	Severity       HealthStatus
}

// Rule evaluates a metrics snapshot.
type Rule func(snapshot map[string]int64) RuleResult

// LogRule evaluates the most recent log entries, oldest first.
type LogRule func(entries []logs.Entry) RuleResult

// ---------- RULES ----------

// Prediction failures mean the loaded artifacts cannot score valid input.
func PredictionFailureRule(snapshot map[string]int64) RuleResult {
	failures := snapshot[string(metrics.PredictionFailuresTotal)]

	if failures > 0 {
		return RuleResult{
			Triggered:      true,
			Signal:         "Prediction failures detected",
			Recommendation: "Check that the scaler and classifier artifacts were fitted on the same 13 features",
			Severity:       StatusCritical,
		}
	}
	return RuleResult{}
}

// Most requests being rejected points at a client speaking the wrong schema.
func ValidationRejectRule(snapshot map[string]int64) RuleResult {
	rejected := snapshot[string(metrics.ValidationRejectsTotal)] +
		snapshot[string(metrics.MalformedRequestsTotal)]
	served := snapshot[string(metrics.PredictionsTotal)]

	if rejected > 0 && rejected > served {
		return RuleResult{
			Triggered:      true,
			Signal:         "Most prediction requests are rejected",
			Recommendation: "Compare client payloads with the field bounds published by the schema endpoint",
			Severity:       StatusDegraded,
		}
	}
	return RuleResult{}
}

// Changed artifacts are not picked up until the process restarts.
func ArtifactChangeRule(snapshot map[string]int64) RuleResult {
	changes := snapshot[string(metrics.ArtifactChangesTotal)]

	if changes > 0 {
		return RuleResult{
			Triggered:      true,
			Signal:         "Artifacts changed on disk since startup",
			Recommendation: "Restart the service to serve the new artifacts",
			Severity:       StatusDegraded,
		}
	}
	return RuleResult{}
}

// slowRequestLimit is how many slow requests in the log window degrade health.
const slowRequestLimit = 3

func SlowRequestRule(entries []logs.Entry) RuleResult {
	slow := 0
	for _, e := range entries {
		if e.Level == logs.WARN && strings.Contains(e.Message, "slow request") {
			slow++
		}
	}

	if slow >= slowRequestLimit {
		return RuleResult{
			Triggered:      true,
			Signal:         "Repeated slow requests detected in logs",
			Recommendation: "Check host load; a large KNN training set also makes each prediction slower",
			Severity:       StatusDegraded,
		}
	}
	return RuleResult{}
}

func PanicRule(entries []logs.Entry) RuleResult {
	for _, e := range entries {
		if e.Level == logs.ERROR && strings.Contains(e.Message, "panic") {
			return RuleResult{
				Triggered:      true,
				Signal:         "Application panics detected in logs",
				Recommendation: "Inspect the recovered panic in /admin/logs and fix the failing handler",
				Severity:       StatusCritical,
			}
		}
	}
	return RuleResult{}
}
