// Package models defines data structures shared by the screening pipeline.
package models

// Entity categories reported by the medical NLP service.
const (
	CategoryAnatomy                = "ANATOMY"
	CategoryMedicalCondition       = "MEDICAL_CONDITION"
	CategoryMedication             = "MEDICATION"
	CategoryProtectedHealthInfo    = "PROTECTED_HEALTH_INFORMATION"
	CategoryTestTreatmentProcedure = "TEST_TREATMENT_PROCEDURE"
	CategoryTimeExpression         = "TIME_EXPRESSION"
)

// TraitNegation marks an entity as described in the negative ("no fever").
const TraitNegation = "NEGATION"

// Entity is a span of text extracted by the medical NLP service.
// Field names follow the service's batch output so result objects decode directly.
type Entity struct {
	ID                int       `json:"Id"`
	BeginOffset       int       `json:"BeginOffset"`
	EndOffset         int       `json:"EndOffset"`
	Score             *float64  `json:"Score,omitempty"`
	Text              string    `json:"Text"`
	Category          string    `json:"Category"`
	Type              string    `json:"Type"`
	Traits            []Trait   `json:"Traits,omitempty"`
	Attributes        []Entity  `json:"Attributes,omitempty"`
	ICD10CMConcepts   []Concept `json:"ICD10CMConcepts,omitempty"`
	RxNormConcepts    []Concept `json:"RxNormConcepts,omitempty"`
	RelationshipScore *float64  `json:"RelationshipScore,omitempty"`
	RelationshipType  string    `json:"RelationshipType,omitempty"`
}

// Trait is an annotation on an entity, e.g. NEGATION or DIAGNOSIS.
type Trait struct {
	Name  string   `json:"Name"`
	Score *float64 `json:"Score,omitempty"`
}

// Concept is a coded vocabulary term (ICD10CM or RxNorm) attached to an entity.
type Concept struct {
	Code        string   `json:"Code"`
	Description string   `json:"Description,omitempty"`
	Score       *float64 `json:"Score,omitempty"`
}

// ConceptType selects which coded concepts of an entity to look at.
type ConceptType string

const (
	ConceptICD10CM ConceptType = "ICD10CM"
	ConceptRxNorm  ConceptType = "RxNorm"
)

// ExtractionResult is the per-document object written by every extraction job.
type ExtractionResult struct {
	Entities []Entity `json:"Entities"`
}

// EntityBundle groups the outputs of the three extraction jobs for one
// document or one question segment. ID10CMs and RxNorms hold the entities
// that carry ICD10CM and RxNorm concepts respectively.
type EntityBundle struct {
	Entities []Entity `json:"entities"`
	ID10CMs  []Entity `json:"id10Cms"`
	RxNorms  []Entity `json:"rxNorms"`
}

// Float returns a pointer to v, for building scores in literals.
func Float(v float64) *float64 {
	return &v
}
