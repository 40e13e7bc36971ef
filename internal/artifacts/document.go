package artifacts

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"

	yaml "gopkg.in/yaml.v3"
)

// Artifact documents are YAML. JSON is accepted as the YAML subset it is.

type scalerDoc struct {
	Kind         string    `yaml:"kind"`
	Version      string    `yaml:"version"`
	Features     []string  `yaml:"features,omitempty"`
	Mean         []float64 `yaml:"mean,omitempty"`
	Scale        []float64 `yaml:"scale,omitempty"`
	DataMin      []float64 `yaml:"data_min,omitempty"`
	DataMax      []float64 `yaml:"data_max,omitempty"`
	FeatureRange []float64 `yaml:"feature_range,omitempty"`
}

type classifierDoc struct {
	Kind       string      `yaml:"kind"`
	Version    string      `yaml:"version"`
	Features   []string    `yaml:"features,omitempty"`
	Classes    []int       `yaml:"classes"`
	NNeighbors int         `yaml:"n_neighbors,omitempty"`
	Weights    string      `yaml:"weights,omitempty"`
	Points     [][]float64 `yaml:"points,omitempty"`
	Labels     []int       `yaml:"labels,omitempty"`
	Coef       []float64   `yaml:"coef,omitempty"`
	Intercept  *float64    `yaml:"intercept,omitempty"`
}

func decodeDoc(buf []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(buf))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty document", ErrMalformed)
		}
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

func checkFeatures(declared, want []string) error {
	if len(declared) > 0 && !slices.Equal(declared, want) {
		return fmt.Errorf("%w: features %v do not match %v", ErrDimension, declared, want)
	}
	return nil
}

func checkDim(what string, got, want int) error {
	if got != want {
		return fmt.Errorf("%w: %s has %d features, want %d", ErrDimension, what, got, want)
	}
	return nil
}

func (d *scalerDoc) build(order []string) (Scaler, error) {
	if err := checkFeatures(d.Features, order); err != nil {
		return nil, err
	}

	var (
		s   Scaler
		err error
	)
	switch d.Kind {
	case "standard":
		s, err = NewStandardScaler(d.Mean, d.Scale)
	case "minmax":
		lo, hi := 0.0, 1.0
		if len(d.FeatureRange) > 0 {
			if len(d.FeatureRange) != 2 {
				return nil, fmt.Errorf("%w: feature_range needs 2 entries", ErrMalformed)
			}
			lo, hi = d.FeatureRange[0], d.FeatureRange[1]
		}
		s, err = NewMinMaxScaler(d.DataMin, d.DataMax, lo, hi)
	case "":
		return nil, fmt.Errorf("%w: missing kind", ErrMalformed)
	default:
		return nil, fmt.Errorf("%w: scaler %q", ErrUnsupportedKind, d.Kind)
	}
	if err != nil {
		return nil, err
	}
	if err := checkDim("scaler", s.Dim(), len(order)); err != nil {
		return nil, err
	}
	return s, nil
}

func (d *classifierDoc) build(order []string) (Classifier, error) {
	if err := checkFeatures(d.Features, order); err != nil {
		return nil, err
	}
	if len(d.Classes) != 2 || d.Classes[0] == d.Classes[1] {
		return nil, fmt.Errorf("%w: classes must hold two distinct labels, got %v", ErrMalformed, d.Classes)
	}

	var (
		c   Classifier
		err error
	)
	switch d.Kind {
	case "knn":
		labels := make([]int, len(d.Labels))
		for i, l := range d.Labels {
			idx := slices.Index(d.Classes, l)
			if idx < 0 {
				return nil, fmt.Errorf("%w: label %d of point %d not in classes %v", ErrMalformed, l, i, d.Classes)
			}
			labels[i] = idx
		}
		c, err = NewKNN(d.NNeighbors, Weighting(d.Weights), d.Points, labels)
	case "logistic":
		if d.Intercept == nil {
			return nil, fmt.Errorf("%w: logistic model has no intercept", ErrMalformed)
		}
		c, err = NewLogisticRegression(d.Coef, *d.Intercept)
	case "":
		return nil, fmt.Errorf("%w: missing kind", ErrMalformed)
	default:
		return nil, fmt.Errorf("%w: classifier %q", ErrUnsupportedKind, d.Kind)
	}
	if err != nil {
		return nil, err
	}
	if err := checkDim("classifier", c.Dim(), len(order)); err != nil {
		return nil, err
	}
	return c, nil
}
