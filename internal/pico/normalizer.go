// Package pico scores extracted medical entities against a PICO question.
//
// Everything in this package is pure: no I/O happens outside of
// CalculateProximityFromPathsQuestion and ReadBundle, which go through an
// ObjectReader.
package pico

import (
	"github.com/samber/lo"

	"github.com/raphaelgruber/picoscreen/internal/models"
)

// entityKey is the structural identity of an entity across job outputs.
type entityKey struct {
	Text        string
	BeginOffset int
	EndOffset   int
	Category    string
	Type        string
}

func keyOf(e models.Entity) entityKey {
	return entityKey{
		Text:        e.Text,
		BeginOffset: e.BeginOffset,
		EndOffset:   e.EndOffset,
		Category:    e.Category,
		Type:        e.Type,
	}
}

// FilterUniqueEntities returns the entities of the bundle that are not
// structurally present among its ICD10CM or RxNorm entities.
func FilterUniqueEntities(bundle models.EntityBundle) []models.Entity {
	coded := make(map[entityKey]struct{}, len(bundle.ID10CMs)+len(bundle.RxNorms))
	for _, e := range bundle.ID10CMs {
		coded[keyOf(e)] = struct{}{}
	}
	for _, e := range bundle.RxNorms {
		coded[keyOf(e)] = struct{}{}
	}

	return lo.Filter(bundle.Entities, func(e models.Entity, _ int) bool {
		_, ok := coded[keyOf(e)]
		return !ok
	})
}

// MergeEntities replaces generic entities with their concept-bearing
// counterparts. When ID10CMs and RxNorms are subsets of Entities the result
// has exactly len(bundle.Entities) items.
func MergeEntities(bundle models.EntityBundle) []models.Entity {
	unique := FilterUniqueEntities(bundle)
	merged := make([]models.Entity, 0, len(unique)+len(bundle.ID10CMs)+len(bundle.RxNorms))
	merged = append(merged, unique...)
	merged = append(merged, bundle.ID10CMs...)
	merged = append(merged, bundle.RxNorms...)
	return merged
}
