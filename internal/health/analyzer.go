package health

import (
	"heartrisk/internal/logs"
	"heartrisk/internal/metrics"
)

// logWindow is how many recent log entries the log rules see.
const logWindow = 100

// HealthAnalyzer converts metrics + logs into a health report.
type HealthAnalyzer struct {
	metrics  *metrics.Registry
	logger   *logs.Logger
	rules    []Rule
	logRules []LogRule
}

// NewHealthAnalyzer creates a new analyzer.
func NewHealthAnalyzer(
	reg *metrics.Registry,
	logger *logs.Logger,
) *HealthAnalyzer {
	return &HealthAnalyzer{
		metrics: reg,
		logger:  logger,
		rules: []Rule{
			PredictionFailureRule,
			ValidationRejectRule,
			ArtifactChangeRule,
		},
		logRules: []LogRule{
			SlowRequestRule,
			PanicRule,
		},
	}
}

// Analyze evaluates metrics and logs and returns a health report.
func (ha *HealthAnalyzer) Analyze() HealthReport {
	snapshot := ha.metrics.Snapshot()
	entries := ha.logger.GetLast(logWindow)

	report := HealthReport{
		OverallStatus:   StatusOK,
		Signals:         []string{},
		Recommendations: []string{},
		Counters:        snapshot,
	}

	for _, rule := range ha.rules {
		report.add(rule(snapshot))
	}
	for _, rule := range ha.logRules {
		report.add(rule(entries))
	}

	report.Summary = "Service is healthy"
	if report.OverallStatus != StatusOK {
		report.Summary = "Service health issues detected"
	}
	return report
}
