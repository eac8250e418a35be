package pico

import (
	"slices"

	"github.com/samber/lo"

	"github.com/raphaelgruber/picoscreen/internal/models"
)

// scored is anything carrying an optional confidence score.
type scored interface {
	score() *float64
}

type entityScore models.Entity

func (e entityScore) score() *float64 { return e.Score }

type conceptScore models.Concept

func (c conceptScore) score() *float64 { return c.Score }

// CalculateProximity returns min(a/b, 1), or 0 when either score is missing
// or zero. The ratio is directional: a is the document side, b the reference.
func CalculateProximity(a, b *float64) models.Proximity {
	if a == nil || b == nil || *a == 0 || *b == 0 {
		return models.Proximity{}
	}
	return models.Proximity{Total: min(*a / *b, 1)}
}

func proximityOf(a, b scored) models.Proximity {
	return CalculateProximity(a.score(), b.score())
}

// IsNegated reports whether the entity carries a NEGATION trait.
func IsNegated(e models.Entity) bool {
	return slices.ContainsFunc(e.Traits, func(t models.Trait) bool {
		return t.Name == models.TraitNegation
	})
}

// HasEqualNegation reports whether both entities are negated or neither is.
func HasEqualNegation(a, b models.Entity) bool {
	return IsNegated(a) == IsNegated(b)
}

// IsEqualEntities compares text, category and negation.
func IsEqualEntities(a, b models.Entity) bool {
	return a.Text == b.Text && a.Category == b.Category && HasEqualNegation(a, b)
}

// IsEqualConcepts compares concept codes and the negation of their entities.
func IsEqualConcepts(entityA, entityB models.Entity, conceptA, conceptB models.Concept) bool {
	return conceptA.Code == conceptB.Code && HasEqualNegation(entityA, entityB)
}

// GetConcepts returns the entity's concepts of the given type.
func GetConcepts(t models.ConceptType, e models.Entity) []models.Concept {
	switch t {
	case models.ConceptICD10CM:
		return e.ICD10CMConcepts
	case models.ConceptRxNorm:
		return e.RxNormConcepts
	default:
		return nil
	}
}

func maxProximity(a, b models.Proximity) models.Proximity {
	if b.Total > a.Total {
		return b
	}
	return a
}

// MaxProximityConcepts folds over every equal concept pair of a (document)
// and b (reference), keeping the best proximity seeded at p.
func MaxProximityConcepts(p models.Proximity, a, b models.Entity, t models.ConceptType) models.Proximity {
	conceptsB := GetConcepts(t, b)
	for _, ca := range GetConcepts(t, a) {
		for _, cb := range conceptsB {
			if IsEqualConcepts(a, b, ca, cb) {
				p = maxProximity(p, proximityOf(conceptScore(ca), conceptScore(cb)))
			}
		}
	}
	return p
}

// MaxProximityConceptsOrEntities returns a folding step for the reference
// entity b. Coded concepts are tried first (ICD10CM, then RxNorm); when they
// yield nothing and the entities are equal, the raw entity scores are compared.
func MaxProximityConceptsOrEntities(b models.Entity) func(p models.Proximity, a models.Entity) models.Proximity {
	return func(p models.Proximity, a models.Entity) models.Proximity {
		best := p
		switch {
		case len(b.ICD10CMConcepts) > 0:
			best = MaxProximityConcepts(p, a, b, models.ConceptICD10CM)
		case len(b.RxNormConcepts) > 0:
			best = MaxProximityConcepts(p, a, b, models.ConceptRxNorm)
		}
		if best.Total == 0 && IsEqualEntities(b, a) {
			best = maxProximity(best, proximityOf(entityScore(a), entityScore(b)))
		}
		return best
	}
}

// PicoProximities scores every merged reference entity against the merged
// document entities and tags each result with the reference entity's categories.
func PicoProximities(doc, ref models.EntityBundle) []models.PicoProximity {
	docEntities := MergeEntities(doc)
	return lo.Map(MergeEntities(ref), func(r models.Entity, _ int) models.PicoProximity {
		step := MaxProximityConceptsOrEntities(r)
		best := lo.Reduce(docEntities, func(p models.Proximity, a models.Entity, _ int) models.Proximity {
			return step(p, a)
		}, models.Proximity{})
		return models.PicoProximity{
			Proximity:      best,
			PicoCategories: GetPicoCategories(r),
		}
	})
}

// CalculateProximityFromEntitiesQuestion scores a document against one
// reference bundle and aggregates the result.
func CalculateProximityFromEntitiesQuestion(doc, ref models.EntityBundle) models.PicoProximityAverage {
	return GetPicoProximityAverage(PicoProximities(doc, ref))
}

// CalculateProximityFromEntitiesPico scores a document against the four
// question segments; each element is the total against its own segment.
func CalculateProximityFromEntitiesPico(doc, p, i, c, o models.EntityBundle) models.PicoProximityAverage {
	avg := models.PicoProximityAverage{
		P: CalculateProximityFromEntitiesQuestion(doc, p).Total,
		I: CalculateProximityFromEntitiesQuestion(doc, i).Total,
		C: CalculateProximityFromEntitiesQuestion(doc, c).Total,
		O: CalculateProximityFromEntitiesQuestion(doc, o).Total,
	}
	avg.Total = (avg.P + avg.I + avg.C + avg.O) / 4
	return avg
}
