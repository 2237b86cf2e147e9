package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// shareSumTolerance is the floating-point slack allowed when checking that
// shares sum to 1 across a table.
const shareSumTolerance = 1e-6

// CountryProfile describes one visitor-origin country. Profiles are built
// once from the cleaned input table and never mutated afterwards.
//
// CaseShare is this country's fixed fraction of global active cases. The
// input table is pre-adjusted upstream so every country carries a nonzero
// share and the shares sum to 1; the remainder of the world is an explicit
// named profile, not a positional row.
type CountryProfile struct {
	Name           string  `json:"country"`
	Population     int64   `json:"population"`
	UrbanFraction  float64 `json:"urban_fraction"`
	CaseShare      float64 `json:"case_share"`
	AnnualVisitors int     `json:"annual_visitors"`
}

// Validate checks that all profile fields are valid.
func (p *CountryProfile) Validate() error {
	if p.Name == "" {
		return errors.New("country name must not be empty")
	}
	if p.Population <= 0 {
		return fmt.Errorf("country %q: population must be positive", p.Name)
	}
	if p.UrbanFraction < 0.0 || p.UrbanFraction > 1.0 {
		return fmt.Errorf("country %q: urban fraction must be between 0.0 and 1.0", p.Name)
	}
	if p.CaseShare <= 0.0 || p.CaseShare > 1.0 {
		return fmt.Errorf("country %q: case share must be in (0.0, 1.0]", p.Name)
	}
	if p.AnnualVisitors < 0 {
		return fmt.Errorf("country %q: annual visitors must not be negative", p.Name)
	}
	return nil
}

// ValidateProfiles checks a full profile table: every profile valid, names
// unique, and case shares summing to 1 within tolerance.
func ValidateProfiles(profiles []CountryProfile) error {
	if len(profiles) == 0 {
		return errors.New("profile table must not be empty")
	}
	seen := make(map[string]bool, len(profiles))
	var shareSum float64
	for i := range profiles {
		if err := profiles[i].Validate(); err != nil {
			return err
		}
		if seen[profiles[i].Name] {
			return fmt.Errorf("country %q appears more than once", profiles[i].Name)
		}
		seen[profiles[i].Name] = true
		shareSum += profiles[i].CaseShare
	}
	if math.Abs(shareSum-1.0) > shareSumTolerance {
		return fmt.Errorf("case shares must sum to 1.0: got %g", shareSum)
	}
	return nil
}

// MonthlyVisitationProfile maps calendar month to that month's share of
// annual visitation. Index 0 is January. Derived once from the historical
// monthly averages; immutable.
type MonthlyVisitationProfile [12]float64

// Share returns the visitation share for the given month.
func (m MonthlyVisitationProfile) Share(month time.Month) float64 {
	return m[int(month)-1]
}

// Validate checks that every month carries a non-negative share and that the
// shares sum to 1 within tolerance.
func (m MonthlyVisitationProfile) Validate() error {
	var sum float64
	for i, s := range m {
		if s < 0 {
			return fmt.Errorf("month %d: visitation share must not be negative", i+1)
		}
		sum += s
	}
	if math.Abs(sum-1.0) > shareSumTolerance {
		return fmt.Errorf("monthly visitation shares must sum to 1.0: got %g", sum)
	}
	return nil
}
