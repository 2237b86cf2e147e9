// Package models defines the core domain entities for the arrival simulator.
// These models represent the observed global case history, the fitted daily
// predictions derived from it, and the per-country profiles that drive the
// visitor sampling. All models include built-in validation so malformed input
// tables are rejected at the boundary rather than deep inside a simulation.
//
// Terminology (matching the analysis this tool grew out of):
//   - Case series: the global cumulative confirmed-case counts, one row per day.
//   - Active cases: the estimated currently-infectious count, a rolling sum of
//     new cases over a fixed lookback window.
//   - Arrival: the first simulated day on which an infected visitor lands.
package models

import (
	"errors"
	"fmt"
)

// CasePoint is one observation of the global cumulative case count.
// Day indices start at 1 and increase by exactly 1 per row.
type CasePoint struct {
	Day   int     `json:"day"`
	Cases float64 `json:"cases"`
}

// CaseTimeSeries is the ordered global cumulative-case history.
type CaseTimeSeries []CasePoint

// Validate checks that the series is non-empty, that day indices run 1..n
// without gaps, and that no count is negative. Noisy (non-monotonic) counts
// are allowed; real reporting data dips occasionally.
func (s CaseTimeSeries) Validate() error {
	if len(s) == 0 {
		return errors.New("case series must not be empty")
	}
	for i, p := range s {
		if p.Day != i+1 {
			return fmt.Errorf("day index must run 1..n without gaps: got %d at row %d", p.Day, i)
		}
		if p.Cases < 0 {
			return fmt.Errorf("cumulative cases must not be negative: got %g on day %d", p.Cases, p.Day)
		}
	}
	return nil
}

// Days returns the day indices as float64, ready for regression.
func (s CaseTimeSeries) Days() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = float64(p.Day)
	}
	return out
}

// Cases returns the cumulative counts as float64, ready for regression.
func (s CaseTimeSeries) Cases() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Cases
	}
	return out
}

// MinCases returns the smallest cumulative count in the series.
// Used to seed the offset term of the exponential fit.
func (s CaseTimeSeries) MinCases() float64 {
	min := s[0].Cases
	for _, p := range s[1:] {
		if p.Cases < min {
			min = p.Cases
		}
	}
	return min
}

// DailyPrediction holds one cumulative-case estimate per day index 1..len.
// Derived from a fitted growth curve; read-only after creation.
// Values may be negative for small day indices under the exponential and
// logistic forms; consumers clamp, never propagate, negative counts.
type DailyPrediction []float64

// ActiveCaseSeries holds the estimated currently-infectious count per day
// index 1..len. Entries can be negative where the underlying prediction
// dips; consumers clamp before use.
type ActiveCaseSeries []int
