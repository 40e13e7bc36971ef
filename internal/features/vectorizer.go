package features

import (
	"fmt"

	"heartrisk/internal/schema"
)

// Vector holds the clinical measurements in the order the model was fitted on.
type Vector [schema.NumFields]float64

// Slice returns a copy of v as a slice.
func (v Vector) Slice() []float64 {
	out := make([]float64, len(v))
	copy(out, v[:])
	return out
}

// VectorizationError is returned when a record is missing a field. Records
// produced by schema.Parse never trigger it.
type VectorizationError struct {
	Field string
}

func (e *VectorizationError) Error() string {
	return fmt.Sprintf("missing required feature: %s", e.Field)
}

type column struct {
	field schema.Field
	value func(schema.ClinicalRecord) float64
}

// order is the training-time feature order. Nothing else may encode it.
var order = [schema.NumFields]column{
	{schema.Age, func(r schema.ClinicalRecord) float64 { return float64(r.Age()) }},
	{schema.Sex, func(r schema.ClinicalRecord) float64 { return float64(r.Sex()) }},
	{schema.CP, func(r schema.ClinicalRecord) float64 { return float64(r.CP()) }},
	{schema.Trestbps, func(r schema.ClinicalRecord) float64 { return float64(r.Trestbps()) }},
	{schema.Chol, func(r schema.ClinicalRecord) float64 { return float64(r.Chol()) }},
	{schema.FBS, func(r schema.ClinicalRecord) float64 { return float64(r.FBS()) }},
	{schema.RestECG, func(r schema.ClinicalRecord) float64 { return float64(r.RestECG()) }},
	{schema.Thalach, func(r schema.ClinicalRecord) float64 { return float64(r.Thalach()) }},
	{schema.Exang, func(r schema.ClinicalRecord) float64 { return float64(r.Exang()) }},
	{schema.Oldpeak, func(r schema.ClinicalRecord) float64 { return r.Oldpeak() }},
	{schema.Slope, func(r schema.ClinicalRecord) float64 { return float64(r.Slope()) }},
	{schema.CA, func(r schema.ClinicalRecord) float64 { return float64(r.CA()) }},
	{schema.Thal, func(r schema.ClinicalRecord) float64 { return float64(r.Thal()) }},
}

// Order returns the wire names of the features in vector order.
func Order() []string {
	names := make([]string, len(order))
	for i, c := range order {
		names[i] = c.field.Name()
	}
	return names
}

// Vectorize lays out rec in training order.
func Vectorize(rec schema.ClinicalRecord) (Vector, error) {
	var v Vector
	for i, c := range order {
		if _, ok := rec.Value(c.field); !ok {
			return Vector{}, &VectorizationError{Field: c.field.Name()}
		}
		v[i] = c.value(rec)
	}
	return v, nil
}
