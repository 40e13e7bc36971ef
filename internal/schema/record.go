package schema

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
)

// ClinicalRecord is a validated set of clinical measurements.
//
// The zero value holds no fields. Records built by Parse or New always
// hold all thirteen fields within their bounds, and cannot be changed
// afterwards.
type ClinicalRecord struct {
	values  [NumFields]float64
	present [NumFields]bool
}

var (
	errNotNumber  = errors.New("must be a number")
	errNotInteger = errors.New("must be an integer")
)

// Parse validates a decoded request body and builds a record from it.
//
// Every field is checked before returning, so the returned
// *ValidationError lists all offending fields at once. Unknown keys are
// ignored.
func Parse(raw map[string]any) (ClinicalRecord, error) {
	var (
		rec  ClinicalRecord
		errs []FieldError
	)

	for _, def := range definitions {
		v, ok := raw[def.Name]
		if !ok {
			errs = append(errs, FieldError{Field: def.Name, Reason: "field required"})
			continue
		}

		x, err := toNumber(v)
		if err == nil {
			err = def.check(x)
		}
		if err != nil {
			errs = append(errs, FieldError{Field: def.Name, Reason: err.Error()})
			continue
		}

		rec.values[def.Field] = x
		rec.present[def.Field] = true
	}

	if len(errs) > 0 {
		return ClinicalRecord{}, &ValidationError{Fields: errs}
	}
	return rec, nil
}

// New builds a record from typed values, applying the same checks as Parse.
func New(values map[Field]float64) (ClinicalRecord, error) {
	raw := make(map[string]any, len(values))
	for f, v := range values {
		raw[f.Name()] = v
	}
	return Parse(raw)
}

// Value returns the value of f and whether the record holds it.
func (r ClinicalRecord) Value(f Field) (float64, bool) {
	if f < 0 || int(f) >= NumFields {
		return 0, false
	}
	return r.values[f], r.present[f]
}

func (r ClinicalRecord) Age() int { return int(r.values[Age]) }
func (r ClinicalRecord) Sex() int { return int(r.values[Sex]) }
func (r ClinicalRecord) CP() int { return int(r.values[CP]) }
func (r ClinicalRecord) Trestbps() int { return int(r.values[Trestbps]) }
func (r ClinicalRecord) Chol() int { return int(r.values[Chol]) }
func (r ClinicalRecord) FBS() int { return int(r.values[FBS]) }
func (r ClinicalRecord) RestECG() int { return int(r.values[RestECG]) }
func (r ClinicalRecord) Thalach() int { return int(r.values[Thalach]) }
func (r ClinicalRecord) Exang() int { return int(r.values[Exang]) }
func (r ClinicalRecord) Oldpeak() float64 { return r.values[Oldpeak] }
func (r ClinicalRecord) Slope() int { return int(r.values[Slope]) }
func (r ClinicalRecord) CA() int { return int(r.values[CA]) }
func (r ClinicalRecord) Thal() int { return int(r.values[Thal]) }

// MarshalJSON renders the record with its wire names.
func (r ClinicalRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, NumFields)
	for _, def := range definitions {
		if !r.present[def.Field] {
			continue
		}
		if def.Integer {
			out[def.Name] = int(r.values[def.Field])
		} else {
			out[def.Name] = r.values[def.Field]
		}
	}
	return json.Marshal(out)
}

func (d Definition) check(x float64) error {
	if d.Integer && x != math.Trunc(x) {
		return errNotInteger
	}
	if x < d.Min {
		return &boundError{op: ">=", bound: d.Min}
	}
	if x > d.Max {
		return &boundError{op: "<=", bound: d.Max}
	}
	return nil
}

type boundError struct {
	op    string
	bound float64
}

func (e *boundError) Error() string {
	return "must be " + e.op + " " + strconv.FormatFloat(e.bound, 'f', -1, 64)
}

func toNumber(v any) (float64, error) {
	var x float64
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, errNotNumber
		}
		x = f
	case float64:
		x = n
	case float32:
		x = float64(n)
	case int:
		x = float64(n)
	case int32:
		x = float64(n)
	case int64:
		x = float64(n)
	default:
		return 0, errNotNumber
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, errNotNumber
	}
	return x, nil
}
