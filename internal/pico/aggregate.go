package pico

import (
	"github.com/samber/lo"

	"github.com/raphaelgruber/picoscreen/internal/models"
)

// GetAverageCurried returns an averaging function over list. Called with no
// type it averages every item; called with a PICO type it averages only the
// items tagged with that element. An empty selection averages to 0.
func GetAverageCurried(list []models.PicoProximity) func(t ...models.PicoType) float64 {
	return func(t ...models.PicoType) float64 {
		selected := list
		if len(t) > 0 {
			selected = lo.Filter(list, func(p models.PicoProximity, _ int) bool {
				return IsPicoType(t[0], p.PicoCategories)
			})
		}
		if len(selected) == 0 {
			return 0
		}
		sum := lo.SumBy(selected, func(p models.PicoProximity) float64 {
			return p.Total
		})
		return sum / float64(len(selected))
	}
}

// GetPicoProximityAverage averages the proximities overall and per element.
func GetPicoProximityAverage(list []models.PicoProximity) models.PicoProximityAverage {
	avg := GetAverageCurried(list)
	return models.PicoProximityAverage{
		Total: avg(),
		P:     avg(models.PicoP),
		I:     avg(models.PicoI),
		C:     avg(models.PicoC),
		O:     avg(models.PicoO),
	}
}
