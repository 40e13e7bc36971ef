package schema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleWith(overrides map[string]any) map[string]any {
	raw := Example()
	for k, v := range overrides {
		if v == nil {
			delete(raw, k)
			continue
		}
		raw[k] = v
	}
	return raw
}

func fieldNames(err error) []string {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return nil
	}
	names := make([]string, 0, len(verr.Fields))
	for _, fe := range verr.Fields {
		names = append(names, fe.Field)
	}
	return names
}

func TestParse(t *testing.T) {
	t.Run("ExampleRecord", func(t *testing.T) {
		rec, err := Parse(Example())
		require.NoError(t, err)

		assert.Equal(t, 63, rec.Age())
		assert.Equal(t, 1, rec.Sex())
		assert.Equal(t, 3, rec.CP())
		assert.Equal(t, 145, rec.Trestbps())
		assert.Equal(t, 233, rec.Chol())
		assert.Equal(t, 1, rec.FBS())
		assert.Equal(t, 0, rec.RestECG())
		assert.Equal(t, 150, rec.Thalach())
		assert.Equal(t, 0, rec.Exang())
		assert.Equal(t, 2.3, rec.Oldpeak())
		assert.Equal(t, 0, rec.Slope())
		assert.Equal(t, 0, rec.CA())
		assert.Equal(t, 1, rec.Thal())

		for f := Field(0); int(f) < NumFields; f++ {
			_, ok := rec.Value(f)
			assert.True(t, ok, "field %s should be present", f)
		}
	})

	t.Run("AgeBoundaries", func(t *testing.T) {
		for _, age := range []int{1, 120} {
			_, err := Parse(exampleWith(map[string]any{"age": age}))
			assert.NoError(t, err, "age=%d should pass", age)
		}
		for _, age := range []int{0, 121} {
			_, err := Parse(exampleWith(map[string]any{"age": age}))
			assert.Equal(t, []string{"age"}, fieldNames(err), "age=%d should fail", age)
		}
	})

	t.Run("ReportsEveryOffendingField", func(t *testing.T) {
		_, err := Parse(exampleWith(map[string]any{
			"age":     0,
			"chol":    601,
			"oldpeak": 10.5,
			"thal":    nil,
		}))

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"age", "chol", "oldpeak", "thal"}, fieldNames(err))
		assert.Equal(t, "must be >= 1", verr.Fields[0].Reason)
		assert.Equal(t, "must be <= 600", verr.Fields[1].Reason)
		assert.Equal(t, "must be <= 10", verr.Fields[2].Reason)
		assert.Equal(t, "field required", verr.Fields[3].Reason)
	})

	t.Run("NonNumericTypes", func(t *testing.T) {
		_, err := Parse(exampleWith(map[string]any{
			"sex":   "male",
			"cp":    true,
			"slope": []any{1},
		}))
		assert.Equal(t, []string{"sex", "cp", "slope"}, fieldNames(err))
		assert.Contains(t, err.Error(), "sex: must be a number")
	})

	t.Run("NullIsNotANumber", func(t *testing.T) {
		raw := Example()
		raw["ca"] = nil
		_, err := Parse(raw)
		assert.Equal(t, []string{"ca"}, fieldNames(err))
		assert.Contains(t, err.Error(), "ca: must be a number")
	})

	t.Run("IntegerFieldsRejectFractions", func(t *testing.T) {
		_, err := Parse(exampleWith(map[string]any{"trestbps": 120.5}))
		assert.Equal(t, []string{"trestbps"}, fieldNames(err))
		assert.Contains(t, err.Error(), "must be an integer")

		rec, err := Parse(exampleWith(map[string]any{"trestbps": 120.0}))
		require.NoError(t, err)
		assert.Equal(t, 120, rec.Trestbps())
	})

	t.Run("JSONNumbers", func(t *testing.T) {
		dec := json.NewDecoder(strings.NewReader(`{"age":63,"sex":1,"cp":3,"trestbps":145,"chol":233,"fbs":1,"restecg":0,"thalach":150,"exang":0,"oldpeak":2.3,"slope":0,"ca":0,"thal":1,"note":"ignored"}`))
		dec.UseNumber()

		var raw map[string]any
		require.NoError(t, dec.Decode(&raw))

		rec, err := Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, 2.3, rec.Oldpeak())
	})

	t.Run("EmptyInput", func(t *testing.T) {
		_, err := Parse(map[string]any{})
		assert.Len(t, fieldNames(err), NumFields)
	})
}

func TestNew(t *testing.T) {
	rec, err := New(map[Field]float64{
		Age: 50, Sex: 0, CP: 1, Trestbps: 120, Chol: 200, FBS: 0, RestECG: 1,
		Thalach: 160, Exang: 0, Oldpeak: 0.5, Slope: 1, CA: 0, Thal: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 50, rec.Age())

	_, err = New(map[Field]float64{Age: 50})
	assert.Len(t, fieldNames(err), NumFields-1)
}

func TestZeroRecordHoldsNothing(t *testing.T) {
	var rec ClinicalRecord
	for f := Field(0); int(f) < NumFields; f++ {
		_, ok := rec.Value(f)
		assert.False(t, ok)
	}
	_, ok := rec.Value(Field(NumFields))
	assert.False(t, ok)
}

func TestRecordMarshalJSON(t *testing.T) {
	rec, err := Parse(Example())
	require.NoError(t, err)

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"age":63,"sex":1,"cp":3,"trestbps":145,"chol":233,"fbs":1,"restecg":0,"thalach":150,"exang":0,"oldpeak":2.3,"slope":0,"ca":0,"thal":1}`, string(b))
}

func TestDefinitions(t *testing.T) {
	defs := Definitions()
	require.Len(t, defs, NumFields)

	for i, def := range defs {
		assert.Equal(t, Field(i), def.Field)
		assert.Equal(t, def.Name, def.Field.String())
		assert.LessOrEqual(t, def.Min, def.Max)
	}
	assert.False(t, Oldpeak.Definition().Integer)
	assert.Equal(t, "field(99)", Field(99).Name())
	assert.NotPanics(t, func() {
		assert.Equal(t, Definition{Field: Field(-1), Name: "field(-1)"}, Field(-1).Definition())
		assert.Equal(t, "field(13)", Field(NumFields).Definition().Name)
	})

	defs[0].Name = "mutated"
	assert.Equal(t, "age", Age.Name(), "Definitions must return a copy")
}
