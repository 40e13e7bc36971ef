package schema

// RiskLevel buckets a disease probability.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Result is the outcome of one prediction.
type Result struct {
	Prediction  bool      `json:"prediction"`
	Probability float64   `json:"probability"`
	RiskLevel   RiskLevel `json:"risk_level"`
}
