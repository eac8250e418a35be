package pico

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/raphaelgruber/picoscreen/internal/models"
)

func attr(typ string) models.Entity {
	return models.Entity{Type: typ, Category: models.CategoryMedication}
}

func TestGetPicoCategories(t *testing.T) {
	tests := []struct {
		name   string
		entity models.Entity
		want   models.PicoCategories
	}{
		{"empty entity", models.Entity{}, models.PicoCategories{}},
		{"anatomy", models.Entity{Category: models.CategoryAnatomy, Type: "SYSTEM_ORGAN_SITE"}, models.PicoCategories{P: true, O: true}},
		{"medical condition", models.Entity{Category: models.CategoryMedicalCondition, Type: "DX_NAME"}, models.PicoCategories{P: true, O: true}},
		{"medication with dosage", models.Entity{Category: models.CategoryMedication, Attributes: []models.Entity{attr("DOSAGE")}}, models.PicoCategories{I: true, C: true}},
		{"medication with duration", models.Entity{Category: models.CategoryMedication, Attributes: []models.Entity{attr("DURATION")}}, models.PicoCategories{I: true, C: true}},
		{"medication with form", models.Entity{Category: models.CategoryMedication, Attributes: []models.Entity{attr("FORM")}}, models.PicoCategories{I: true, C: true}},
		{"medication with frequency", models.Entity{Category: models.CategoryMedication, Attributes: []models.Entity{attr("FREQUENCY")}}, models.PicoCategories{I: true, C: true}},
		{"medication with rate", models.Entity{Category: models.CategoryMedication, Attributes: []models.Entity{attr("RATE")}}, models.PicoCategories{I: true, C: true}},
		{"medication with route", models.Entity{Category: models.CategoryMedication, Attributes: []models.Entity{attr("ROUTE_OR_MODE")}}, models.PicoCategories{I: true, C: true}},
		{"medication with strength", models.Entity{Category: models.CategoryMedication, Attributes: []models.Entity{attr("STRENGTH")}}, models.PicoCategories{I: true, C: true}},
		{"medication plain", models.Entity{Category: models.CategoryMedication, Type: "GENERIC_NAME"}, models.PicoCategories{P: true, I: true, C: true, O: true}},
		{"medication unrelated attribute", models.Entity{Category: models.CategoryMedication, Attributes: []models.Entity{attr("BRAND_NAME")}}, models.PicoCategories{P: true, I: true, C: true, O: true}},
		{"phi age", models.Entity{Category: models.CategoryProtectedHealthInfo, Type: "AGE"}, models.PicoCategories{P: true}},
		{"phi address", models.Entity{Category: models.CategoryProtectedHealthInfo, Type: "ADDRESS"}, models.PicoCategories{P: true, I: true, C: true}},
		{"phi profession", models.Entity{Category: models.CategoryProtectedHealthInfo, Type: "PROFESSION"}, models.PicoCategories{P: true, I: true, C: true}},
		{"phi name", models.Entity{Category: models.CategoryProtectedHealthInfo, Type: "NAME"}, models.PicoCategories{}},
		{"procedure", models.Entity{Category: models.CategoryTestTreatmentProcedure, Type: "PROCEDURE_NAME"}, models.PicoCategories{P: true, I: true, C: true, O: true}},
		{"treatment", models.Entity{Category: models.CategoryTestTreatmentProcedure, Type: "TREATMENT_NAME"}, models.PicoCategories{P: true, I: true, C: true, O: true}},
		{"test with value", models.Entity{Category: models.CategoryTestTreatmentProcedure, Type: "TEST_NAME", Attributes: []models.Entity{{Type: "TEST_VALUE"}}}, models.PicoCategories{P: true, O: true}},
		{"test without value", models.Entity{Category: models.CategoryTestTreatmentProcedure, Type: "TEST_NAME", Attributes: []models.Entity{{Type: "TEST_UNIT"}}}, models.PicoCategories{O: true}},
		{"time expression", models.Entity{Category: models.CategoryTimeExpression, Type: "TIME_TO_MEDICATION_NAME"}, models.PicoCategories{I: true, C: true}},
		{"unknown category", models.Entity{Category: "BEHAVIORAL_ENVIRONMENTAL_SOCIAL", Type: "TOBACCO"}, models.PicoCategories{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetPicoCategories(tt.entity))
		})
	}
}

func TestIsPicoType(t *testing.T) {
	c := models.PicoCategories{P: true, C: true}
	assert.True(t, IsPicoType(models.PicoP, c))
	assert.False(t, IsPicoType(models.PicoI, c))
	assert.True(t, IsPicoType(models.PicoC, c))
	assert.False(t, IsPicoType(models.PicoO, c))
	assert.False(t, IsPicoType("X", c))
}
