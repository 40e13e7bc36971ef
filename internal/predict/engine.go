package predict

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"heartrisk/internal/artifacts"
	"heartrisk/internal/features"
	"heartrisk/internal/schema"
)

// Risk thresholds on the disease probability.
const (
	HighRiskThreshold   = 0.70
	MediumRiskThreshold = 0.40
)

// Stage names the pipeline step a PredictionError came from.
type Stage string

const (
	StageScale    Stage = "scale"
	StageClassify Stage = "classify"
)

// PredictionError wraps any failure inside the pipeline. The wrapped cause
// is meant for logs; Error() is safe to show to callers.
type PredictionError struct {
	Stage Stage
	Err   error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed during %s: %v", e.Stage, e.Err)
}

func (e *PredictionError) Unwrap() error { return e.Err }

// Engine runs the scale, classify and categorize pipeline. It holds no
// per-request state and is safe for concurrent use.
type Engine struct {
	artifacts *artifacts.Set
}

func NewEngine(set *artifacts.Set) *Engine {
	return &Engine{artifacts: set}
}

// Predict scores a feature vector.
//
// The diagnosis comes from the classifier's own class decision and the
// probability from its class probabilities; both are evaluated on the same
// scaled vector and are not derived from one another.
func (e *Engine) Predict(v features.Vector) (schema.Result, error) {
	scaled, err := e.artifacts.Scaler().Transform(v.Slice())
	if err != nil {
		return schema.Result{}, &PredictionError{Stage: StageScale, Err: err}
	}

	clf := e.artifacts.Classifier()
	proba, err := clf.PredictProba(scaled)
	if err != nil {
		return schema.Result{}, &PredictionError{Stage: StageClassify, Err: err}
	}
	class, err := clf.Predict(scaled)
	if err != nil {
		return schema.Result{}, &PredictionError{Stage: StageClassify, Err: err}
	}

	p := proba[1]
	if math.IsNaN(p) {
		return schema.Result{}, &PredictionError{Stage: StageClassify, Err: errors.New("classifier returned NaN probability")}
	}
	p = math.Min(math.Max(p, 0), 1)

	return schema.Result{
		Prediction:  class == 1,
		Probability: Round(p),
		RiskLevel:   RiskFor(p),
	}, nil
}

// PredictRecord vectorizes rec and scores it.
func (e *Engine) PredictRecord(rec schema.ClinicalRecord) (schema.Result, error) {
	v, err := features.Vectorize(rec)
	if err != nil {
		return schema.Result{}, err
	}
	return e.Predict(v)
}

// Artifacts returns the set the engine serves with.
func (e *Engine) Artifacts() *artifacts.Set { return e.artifacts }

// RiskFor buckets p: [0.70, 1] is High, [0.40, 0.70) is Medium, the rest Low.
func RiskFor(p float64) schema.RiskLevel {
	switch {
	case p >= HighRiskThreshold:
		return schema.RiskHigh
	case p >= MediumRiskThreshold:
		return schema.RiskMedium
	default:
		return schema.RiskLow
	}
}

// Round rounds p to four decimal places. Exact halves go to the even
// digit, so 0.03125 becomes 0.0312.
func Round(p float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(p, 'f', 4, 64), 64)
	return r
}
