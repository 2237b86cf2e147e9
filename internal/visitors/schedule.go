// Package visitors computes expected daily visitor counts per country for a
// calendar month, from the historical monthly visitation shares and each
// country's annual visitor projection.
package visitors

import (
	"math"
	"time"

	"github.com/LukaNeg/coronavirus-analysis/internal/models"
)

// Non-leap-year convention throughout; February is always 28 days.
var daysInMonth = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DaysInMonth returns the calendar day count for a month.
func DaysInMonth(month time.Month) int {
	return daysInMonth[int(month)-1]
}

// Overrides are travel-policy adjustments applied after the base visitor
// computation, never before. Both may apply at once.
type Overrides struct {
	// ExcludeCountry zeroes the named country's visitor count entirely.
	// Empty means no exclusion.
	ExcludeCountry string
	// ReduceVisitation halves every country's visitor count, rounded to
	// the nearest integer.
	ReduceVisitation bool
}

// DailyVisitors returns the expected visitors per day from each country
// during the given month. The base count is ceiling(month share / days in
// month × annual visitors); overrides are then applied on top.
func DailyVisitors(month time.Month, profiles []models.CountryProfile, shares models.MonthlyVisitationProfile, ov Overrides) map[string]int {
	dailyShare := shares.Share(month) / float64(DaysInMonth(month))

	out := make(map[string]int, len(profiles))
	for _, p := range profiles {
		n := int(math.Ceil(dailyShare * float64(p.AnnualVisitors)))
		if ov.ExcludeCountry != "" && p.Name == ov.ExcludeCountry {
			n = 0
		}
		if ov.ReduceVisitation {
			n = int(math.Round(float64(n) * 0.5))
		}
		out[p.Name] = n
	}
	return out
}
