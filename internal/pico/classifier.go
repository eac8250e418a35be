package pico

import (
	"slices"

	"github.com/raphaelgruber/picoscreen/internal/models"
)

// Entity subtypes consulted by the ontology.
const (
	typeAge           = "AGE"
	typeAddress       = "ADDRESS"
	typeProfession    = "PROFESSION"
	typeProcedureName = "PROCEDURE_NAME"
	typeTreatmentName = "TREATMENT_NAME"
	typeTestName      = "TEST_NAME"
	typeTestValue     = "TEST_VALUE"
)

// medicationDetailTypes are the attribute types that turn a medication
// mention into an administered intervention.
var medicationDetailTypes = []string{
	"DOSAGE",
	"DURATION",
	"FORM",
	"FREQUENCY",
	"RATE",
	"ROUTE_OR_MODE",
	"STRENGTH",
}

// ontologyRule maps entities matching Category and When onto PICO categories.
// A nil When matches any entity of the category.
type ontologyRule struct {
	Category   string
	When       func(models.Entity) bool
	Categories models.PicoCategories
}

var (
	picoNone = models.PicoCategories{}
	picoPO   = models.PicoCategories{P: true, O: true}
	picoIC   = models.PicoCategories{I: true, C: true}
	picoPIC  = models.PicoCategories{P: true, I: true, C: true}
	picoPICO = models.PicoCategories{P: true, I: true, C: true, O: true}
	picoP    = models.PicoCategories{P: true}
	picoO    = models.PicoCategories{O: true}
)

// ontology is evaluated top to bottom; the first matching rule wins.
var ontology = []ontologyRule{
	{Category: models.CategoryAnatomy, Categories: picoPO},
	{Category: models.CategoryMedicalCondition, Categories: picoPO},
	{Category: models.CategoryMedication, When: hasMedicationDetail, Categories: picoIC},
	{Category: models.CategoryMedication, Categories: picoPICO},
	{Category: models.CategoryProtectedHealthInfo, When: isType(typeAge), Categories: picoP},
	{Category: models.CategoryProtectedHealthInfo, When: isType(typeAddress, typeProfession), Categories: picoPIC},
	{Category: models.CategoryTestTreatmentProcedure, When: isType(typeProcedureName, typeTreatmentName), Categories: picoPICO},
	{Category: models.CategoryTestTreatmentProcedure, When: both(isType(typeTestName), hasAttribute(typeTestValue)), Categories: picoPO},
	{Category: models.CategoryTestTreatmentProcedure, When: isType(typeTestName), Categories: picoO},
	{Category: models.CategoryTimeExpression, Categories: picoIC},
}

// GetPicoCategories looks the entity up in the ontology. Entities no rule
// matches belong to no category.
func GetPicoCategories(e models.Entity) models.PicoCategories {
	for _, rule := range ontology {
		if rule.Category != e.Category {
			continue
		}
		if rule.When == nil || rule.When(e) {
			return rule.Categories
		}
	}
	return picoNone
}

// IsPicoType reports whether the categories include the given element.
func IsPicoType(t models.PicoType, c models.PicoCategories) bool {
	switch t {
	case models.PicoP:
		return c.P
	case models.PicoI:
		return c.I
	case models.PicoC:
		return c.C
	case models.PicoO:
		return c.O
	default:
		return false
	}
}

func isType(types ...string) func(models.Entity) bool {
	return func(e models.Entity) bool {
		return slices.Contains(types, e.Type)
	}
}

func hasAttribute(types ...string) func(models.Entity) bool {
	return func(e models.Entity) bool {
		return slices.ContainsFunc(e.Attributes, func(a models.Entity) bool {
			return slices.Contains(types, a.Type)
		})
	}
}

func both(a, b func(models.Entity) bool) func(models.Entity) bool {
	return func(e models.Entity) bool {
		return a(e) && b(e)
	}
}

var hasMedicationDetail = hasAttribute(medicationDetailTypes...)
