package epidemic

import (
	"fmt"
	"math"

	"github.com/LukaNeg/coronavirus-analysis/internal/models"
)

// InvalidProfileError reports a country whose prevalence denominator is not
// positive. The country is excluded from sampling rather than failing the
// whole batch.
type InvalidProfileError struct {
	Country string
	Reason  string
}

func (e InvalidProfileError) Error() string {
	return fmt.Sprintf("invalid profile for %s: %s", e.Country, e.Reason)
}

// Allocate splits a global active-case count across countries by their fixed
// case shares, rounding each country's slice up. A negative total (an
// artifact of curve extrapolation near the origin) is clamped to 1 before
// allocation. Because of the ceiling, the allocations can sum to slightly
// more than the total; they never sum to less.
func Allocate(totalActive int, profiles []models.CountryProfile) map[string]int {
	if totalActive < 0 {
		totalActive = 1
	}
	alloc := make(map[string]int, len(profiles))
	for _, p := range profiles {
		alloc[p.Name] = int(math.Ceil(float64(totalActive) * p.CaseShare))
	}
	return alloc
}

// Prevalence is the fraction of a country's population estimated to be
// currently infected: its allocation over either the total population or,
// when useUrban is set, the urban population (population × urban fraction).
// A non-positive denominator yields an InvalidProfileError.
func Prevalence(allocated int, profile models.CountryProfile, useUrban bool) (float64, error) {
	denom := float64(profile.Population)
	if useUrban {
		denom *= profile.UrbanFraction
	}
	if denom <= 0 {
		return 0, InvalidProfileError{
			Country: profile.Name,
			Reason:  fmt.Sprintf("population denominator must be positive, got %g (urban=%v)", denom, useUrban),
		}
	}
	return float64(allocated) / denom, nil
}
