package artifacts

import (
	"fmt"
	"math"
	"sort"
)

// Classifier is a fitted binary model. Class index 1 is the positive
// (disease) class. Implementations are read-only after construction and
// safe for concurrent use.
type Classifier interface {
	// Predict returns the index of the decided class.
	Predict(x []float64) (int, error)
	// PredictProba returns one probability per class.
	PredictProba(x []float64) ([2]float64, error)
	Dim() int
}

// Weighting selects how neighbor votes are weighted.
type Weighting string

const (
	WeightUniform  Weighting = "uniform"
	WeightDistance Weighting = "distance"
)

// KNN is a k-nearest-neighbors classifier over stored training points.
type KNN struct {
	k       int
	weights Weighting
	points  [][]float64
	labels  []int
	dim     int
}

// NewKNN copies the training points. labels holds class indices (0 or 1).
func NewKNN(k int, weights Weighting, points [][]float64, labels []int) (*KNN, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no training points", ErrMalformed)
	}
	if len(points) != len(labels) {
		return nil, fmt.Errorf("%w: %d points but %d labels", ErrMalformed, len(points), len(labels))
	}
	if k < 1 || k > len(points) {
		return nil, fmt.Errorf("%w: n_neighbors %d outside [1, %d]", ErrMalformed, k, len(points))
	}
	switch weights {
	case WeightUniform, WeightDistance:
	case "":
		weights = WeightUniform
	default:
		return nil, fmt.Errorf("%w: weights %q", ErrUnsupportedKind, weights)
	}

	dim := len(points[0])
	m := &KNN{
		k:       k,
		weights: weights,
		points:  make([][]float64, len(points)),
		labels:  make([]int, len(labels)),
		dim:     dim,
	}
	for i, p := range points {
		if len(p) != dim {
			return nil, fmt.Errorf("%w: point %d has %d features, want %d", ErrDimension, i, len(p), dim)
		}
		if err := checkFinite(fmt.Sprintf("points[%d]", i), p); err != nil {
			return nil, err
		}
		if labels[i] != 0 && labels[i] != 1 {
			return nil, fmt.Errorf("%w: label %d of point %d is not a class index", ErrMalformed, labels[i], i)
		}
		m.points[i] = append([]float64(nil), p...)
		m.labels[i] = labels[i]
	}
	return m, nil
}

func (m *KNN) Dim() int { return m.dim }

// PredictProba returns the weighted vote share of each class among the k
// nearest training points. Equidistant points are taken in training order.
func (m *KNN) PredictProba(x []float64) ([2]float64, error) {
	if len(x) != m.dim {
		return [2]float64{}, fmt.Errorf("%w: got %d features, classifier expects %d", ErrDimension, len(x), m.dim)
	}
	if err := checkQuery(x); err != nil {
		return [2]float64{}, err
	}

	type neighbor struct {
		d     float64
		label int
	}
	nbrs := make([]neighbor, len(m.points))
	for i, p := range m.points {
		nbrs[i] = neighbor{d: euclidSquared(x, p), label: m.labels[i]}
	}
	sort.SliceStable(nbrs, func(a, b int) bool { return nbrs[a].d < nbrs[b].d })
	nbrs = nbrs[:m.k]

	var votes [2]float64
	switch {
	case m.weights == WeightUniform:
		for _, n := range nbrs {
			votes[n.label]++
		}
	case nbrs[0].d == 0:
		// exact matches take all the weight
		for _, n := range nbrs {
			if n.d == 0 {
				votes[n.label]++
			}
		}
	default:
		for _, n := range nbrs {
			votes[n.label] += 1 / math.Sqrt(n.d)
		}
	}

	total := votes[0] + votes[1]
	return [2]float64{votes[0] / total, votes[1] / total}, nil
}

// Predict returns the class with the larger vote share; ties go to class 0.
func (m *KNN) Predict(x []float64) (int, error) {
	proba, err := m.PredictProba(x)
	if err != nil {
		return 0, err
	}
	if proba[1] > proba[0] {
		return 1, nil
	}
	return 0, nil
}

func euclidSquared(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// LogisticRegression is a fitted binary logistic model.
type LogisticRegression struct {
	coef      []float64
	intercept float64
}

func NewLogisticRegression(coef []float64, intercept float64) (*LogisticRegression, error) {
	if len(coef) == 0 {
		return nil, fmt.Errorf("%w: no coefficients", ErrMalformed)
	}
	if err := checkFinite("coef", coef); err != nil {
		return nil, err
	}
	if math.IsNaN(intercept) || math.IsInf(intercept, 0) {
		return nil, fmt.Errorf("%w: intercept is %g", ErrMalformed, intercept)
	}
	return &LogisticRegression{
		coef:      append([]float64(nil), coef...),
		intercept: intercept,
	}, nil
}

func (m *LogisticRegression) Dim() int { return len(m.coef) }

func (m *LogisticRegression) decision(x []float64) (float64, error) {
	if len(x) != len(m.coef) {
		return 0, fmt.Errorf("%w: got %d features, classifier expects %d", ErrDimension, len(x), len(m.coef))
	}
	if err := checkQuery(x); err != nil {
		return 0, err
	}
	z := m.intercept
	for j, v := range x {
		z += m.coef[j] * v
	}
	return z, nil
}

func (m *LogisticRegression) PredictProba(x []float64) ([2]float64, error) {
	z, err := m.decision(x)
	if err != nil {
		return [2]float64{}, err
	}
	p := 1 / (1 + math.Exp(-z))
	return [2]float64{1 - p, p}, nil
}

// Predict decides class 1 when the decision function is positive.
func (m *LogisticRegression) Predict(x []float64) (int, error) {
	z, err := m.decision(x)
	if err != nil {
		return 0, err
	}
	if z > 0 {
		return 1, nil
	}
	return 0, nil
}
