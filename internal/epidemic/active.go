// Package epidemic turns a fitted cumulative-case prediction into per-day,
// per-country infection estimates.
//
// Active cases are a rolling backward sum of new daily cases over a fixed
// lookback window (default 15 days); the cutoff is hard, not a decay.
// Daily deltas are rounded up so the estimate never undercounts. The global
// active count is then split across countries by their fixed case shares,
// and a country's prevalence is its allocation over its (urban or total)
// population.
package epidemic

import (
	"math"

	"github.com/LukaNeg/coronavirus-analysis/internal/models"
)

// DefaultLookbackDays is how long a newly reported case counts as contagious.
const DefaultLookbackDays = 15

// ActiveCases converts a cumulative prediction into the currently-infectious
// count per day. New cases per day are the first differences of the
// prediction (the first day contributes its full cumulative value), each
// delta rounded up; day i then sums the new cases over the window
// [max(1, i−lookbackDays), i]. Output length equals input length.
func ActiveCases(prediction models.DailyPrediction, lookbackDays int) models.ActiveCaseSeries {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}

	newCases := make([]int, len(prediction))
	for i, cum := range prediction {
		delta := cum
		if i > 0 {
			delta = cum - prediction[i-1]
		}
		newCases[i] = int(math.Ceil(delta))
	}

	active := make(models.ActiveCaseSeries, len(prediction))
	for i := range newCases {
		start := i - lookbackDays
		if start < 0 {
			start = 0
		}
		sum := 0
		for j := start; j <= i; j++ {
			sum += newCases[j]
		}
		active[i] = sum
	}
	return active
}
