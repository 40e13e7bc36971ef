package schema

import "strconv"

// Field identifies one of the thirteen clinical measurements.
type Field int

const (
	Age Field = iota
	Sex
	CP
	Trestbps
	Chol
	FBS
	RestECG
	Thalach
	Exang
	Oldpeak
	Slope
	CA
	Thal
)

// NumFields is the number of clinical measurements in a record.
const NumFields = int(Thal) + 1

// Definition describes the domain of a single field.
type Definition struct {
	Field       Field   `json:"-"`
	Name        string  `json:"name"`
	Integer     bool    `json:"integer"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Description string  `json:"description"`
}

var definitions = [NumFields]Definition{
	{Age, "age", true, 1, 120, "Age in years"},
	{Sex, "sex", true, 0, 1, "Sex (0 = female, 1 = male)"},
	{CP, "cp", true, 0, 3, "Chest pain type (0-3)"},
	{Trestbps, "trestbps", true, 50, 250, "Resting blood pressure (mm Hg)"},
	{Chol, "chol", true, 100, 600, "Serum cholesterol (mg/dl)"},
	{FBS, "fbs", true, 0, 1, "Fasting blood sugar > 120 mg/dl (0 = false, 1 = true)"},
	{RestECG, "restecg", true, 0, 2, "Resting electrocardiographic results (0-2)"},
	{Thalach, "thalach", true, 50, 250, "Maximum heart rate achieved"},
	{Exang, "exang", true, 0, 1, "Exercise induced angina (0 = no, 1 = yes)"},
	{Oldpeak, "oldpeak", false, 0, 10, "ST depression induced by exercise relative to rest"},
	{Slope, "slope", true, 0, 2, "Slope of the peak exercise ST segment (0-2)"},
	{CA, "ca", true, 0, 4, "Number of major vessels colored by fluoroscopy (0-4)"},
	{Thal, "thal", true, 0, 3, "Thalassemia (0 = normal, 1 = fixed defect, 2 = reversible defect, 3 = unknown)"},
}

// Definitions returns the field definitions, one per field.
func Definitions() []Definition {
	out := make([]Definition, NumFields)
	copy(out, definitions[:])
	return out
}

// Definition returns the domain of f. Out-of-range fields get a
// definition holding only their placeholder name.
func (f Field) Definition() Definition {
	if f < 0 || int(f) >= NumFields {
		return Definition{Field: f, Name: f.Name()}
	}
	return definitions[f]
}

// Name returns the wire name of the field, e.g. "trestbps".
func (f Field) Name() string {
	if f < 0 || int(f) >= NumFields {
		return "field(" + strconv.Itoa(int(f)) + ")"
	}
	return definitions[f].Name
}

func (f Field) String() string { return f.Name() }

// Example is a complete, valid record as it would arrive on the wire.
func Example() map[string]any {
	return map[string]any{
		"age":      63,
		"sex":      1,
		"cp":       3,
		"trestbps": 145,
		"chol":     233,
		"fbs":      1,
		"restecg":  0,
		"thalach":  150,
		"exang":    0,
		"oldpeak":  2.3,
		"slope":    0,
		"ca":       0,
		"thal":     1,
	}
}
