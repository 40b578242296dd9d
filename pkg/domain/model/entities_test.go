package model_test

import (
	"encoding/json"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
	"github.com/secmon-lab/healthbot/pkg/domain/types"
)

func TestEntities_Add(t *testing.T) {
	t.Run("drops blank and placeholder values", func(t *testing.T) {
		e := model.Entities{}
		e.Add(types.EntityMedication, "", "  ", "none", "NULL", "N/A")
		gt.Bool(t, e.IsEmpty()).True()
		gt.Bool(t, e.Has(types.EntityMedication)).False()
	})

	t.Run("trims and deduplicates", func(t *testing.T) {
		e := model.Entities{}
		e.Add(types.EntityMedication, " metformin ", "metformin", "insulin")
		e.Add(types.EntityMedication, "insulin")
		gt.Array(t, e.Values(types.EntityMedication)).Equal([]string{"metformin", "insulin"})
	})

	t.Run("kinds are sorted and skip empty lists", func(t *testing.T) {
		e := model.Entities{types.EntityDiet: nil}
		e.Add(types.EntitySymptom, "headache")
		e.Add(types.EntityDate, "monday")
		gt.Array(t, e.Kinds()).Equal([]types.EntityKind{types.EntityDate, types.EntitySymptom})
	})
}

func TestEntities_Merge(t *testing.T) {
	a := model.Entities{}
	a.Add(types.EntitySymptom, "cough")
	b := model.Entities{}
	b.Add(types.EntitySymptom, "cough", "fever")
	b.Add(types.EntityDiet, "low sugar")

	a.Merge(b)
	gt.Array(t, a.Values(types.EntitySymptom)).Equal([]string{"cough", "fever"})
	gt.Array(t, a.Values(types.EntityDiet)).Equal([]string{"low sugar"})
}

func TestEntities_Clone(t *testing.T) {
	a := model.Entities{}
	a.Add(types.EntitySymptom, "cough")
	c := a.Clone()
	c.Add(types.EntitySymptom, "fever")
	gt.Array(t, a.Values(types.EntitySymptom)).Length(1)
	gt.Array(t, c.Values(types.EntitySymptom)).Length(2)
}

func TestEntities_MarshalJSON(t *testing.T) {
	e := model.Entities{}
	e.Add(types.EntityMedication, "metformin")
	e.Add(types.EntitySymptom, "cough", "fever")

	data, err := json.Marshal(e)
	gt.NoError(t, err).Required()

	var decoded map[string]any
	gt.NoError(t, json.Unmarshal(data, &decoded)).Required()
	gt.Value(t, decoded["medication"]).Equal(any("metformin"))
	gt.Value(t, decoded["symptom"]).Equal(any([]any{"cough", "fever"}))
}

func TestEntities_UnmarshalJSON(t *testing.T) {
	t.Run("accepts scalar, list and null", func(t *testing.T) {
		var e model.Entities
		err := json.Unmarshal([]byte(`{"medication":"metformin","symptom":["cough","none"],"diet":null,"date":""}`), &e)
		gt.NoError(t, err).Required()

		gt.Array(t, e.Values(types.EntityMedication)).Equal([]string{"metformin"})
		gt.Array(t, e.Values(types.EntitySymptom)).Equal([]string{"cough"})
		gt.Bool(t, e.Has(types.EntityDiet)).False()
		gt.Bool(t, e.Has(types.EntityDate)).False()
	})

	t.Run("rejects non string values", func(t *testing.T) {
		var e model.Entities
		gt.Value(t, json.Unmarshal([]byte(`{"medication":12}`), &e)).NotNil()
		gt.Value(t, json.Unmarshal([]byte(`{"medication":[1]}`), &e)).NotNil()
	})
}
