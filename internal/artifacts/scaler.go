package artifacts

import (
	"fmt"
	"math"
)

// Scaler is a fitted feature transform. Implementations are read-only after
// construction and safe for concurrent use.
type Scaler interface {
	Transform(x []float64) ([]float64, error)
	Dim() int
}

// StandardScaler centers each feature on its training mean and divides by
// its training scale.
type StandardScaler struct {
	mean  []float64
	scale []float64
}

// NewStandardScaler copies mean and scale. Zero scale entries are rejected.
func NewStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	if len(mean) != len(scale) {
		return nil, fmt.Errorf("%w: mean has %d entries, scale has %d", ErrDimension, len(mean), len(scale))
	}
	if err := checkFinite("mean", mean); err != nil {
		return nil, err
	}
	if err := checkFinite("scale", scale); err != nil {
		return nil, err
	}
	for i, s := range scale {
		if s == 0 {
			return nil, fmt.Errorf("%w: scale[%d] is zero", ErrMalformed, i)
		}
	}
	return &StandardScaler{
		mean:  append([]float64(nil), mean...),
		scale: append([]float64(nil), scale...),
	}, nil
}

func (s *StandardScaler) Dim() int { return len(s.mean) }

func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.mean) {
		return nil, fmt.Errorf("%w: got %d features, scaler expects %d", ErrDimension, len(x), len(s.mean))
	}
	out := make([]float64, len(x))
	for j := range x {
		out[j] = (x[j] - s.mean[j]) / s.scale[j]
	}
	return out, nil
}

// MinMaxScaler maps each feature's training range onto [lo, hi].
type MinMaxScaler struct {
	min    []float64
	span   []float64
	lo, hi float64
}

// NewMinMaxScaler copies the training minima and maxima. A constant
// feature (max == min) is treated as having a span of 1.
func NewMinMaxScaler(dataMin, dataMax []float64, lo, hi float64) (*MinMaxScaler, error) {
	if len(dataMin) != len(dataMax) {
		return nil, fmt.Errorf("%w: data_min has %d entries, data_max has %d", ErrDimension, len(dataMin), len(dataMax))
	}
	if err := checkFinite("data_min", dataMin); err != nil {
		return nil, err
	}
	if err := checkFinite("data_max", dataMax); err != nil {
		return nil, err
	}
	if err := checkFinite("feature_range", []float64{lo, hi}); err != nil {
		return nil, err
	}
	if lo >= hi {
		return nil, fmt.Errorf("%w: feature_range [%g, %g] is empty", ErrMalformed, lo, hi)
	}
	span := make([]float64, len(dataMin))
	for j := range dataMin {
		span[j] = dataMax[j] - dataMin[j]
		if span[j] == 0 {
			span[j] = 1
		}
	}
	return &MinMaxScaler{
		min:  append([]float64(nil), dataMin...),
		span: span,
		lo:   lo,
		hi:   hi,
	}, nil
}

func (s *MinMaxScaler) Dim() int { return len(s.min) }

func (s *MinMaxScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.min) {
		return nil, fmt.Errorf("%w: got %d features, scaler expects %d", ErrDimension, len(x), len(s.min))
	}
	out := make([]float64, len(x))
	for j := range x {
		out[j] = (x[j]-s.min[j])/s.span[j]*(s.hi-s.lo) + s.lo
	}
	return out, nil
}

// nonFinite returns the index of the first NaN or infinite entry, or -1.
func nonFinite(xs []float64) int {
	for i, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return i
		}
	}
	return -1
}

func checkFinite(what string, xs []float64) error {
	if i := nonFinite(xs); i >= 0 {
		return fmt.Errorf("%w: %s[%d] is %g", ErrMalformed, what, i, xs[i])
	}
	return nil
}

// checkQuery rejects a feature vector the fitted model cannot score.
func checkQuery(x []float64) error {
	if i := nonFinite(x); i >= 0 {
		return fmt.Errorf("feature %d of the query is %g", i, x[i])
	}
	return nil
}
