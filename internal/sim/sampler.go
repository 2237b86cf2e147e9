// Package sim runs the Monte-Carlo arrival simulation: many independent
// trials, each walking a day horizon and sampling whether any incoming
// visitor is infected, aggregated into a cumulative arrival-probability
// curve with percentile milestones.
//
// Country iteration order is the canonical order of the profile table, and
// the first country (in that order) with an infected visitor is credited
// with the arrival for the day; later countries are not checked even if
// they would also have hit. This positional tie-break decides which country
// is "blamed" for the arrival and is reproducibility-sensitive, so it is
// fixed behavior, not an implementation detail.
package sim

import (
	"math/rand"
	"time"

	"github.com/LukaNeg/coronavirus-analysis/internal/epidemic"
	"github.com/LukaNeg/coronavirus-analysis/internal/models"
	"github.com/LukaNeg/coronavirus-analysis/internal/visitors"
)

// Sampler draws the arrival outcome for single simulated days. It is
// stateless across calls; all inputs are immutable snapshots, so one Sampler
// is safe to share between concurrent trials as long as each trial brings
// its own random source.
type Sampler struct {
	profiles  []models.CountryProfile
	shares    models.MonthlyVisitationProfile
	startDate time.Time
	overrides visitors.Overrides
	useUrban  bool
}

// NewSampler builds a sampler over the canonical country order. The profile
// slice is used as given; callers must not mutate it afterwards.
func NewSampler(profiles []models.CountryProfile, shares models.MonthlyVisitationProfile, startDate time.Time, ov visitors.Overrides, useUrban bool) *Sampler {
	return &Sampler{
		profiles:  profiles,
		shares:    shares,
		startDate: startDate,
		overrides: ov,
		useUrban:  useUrban,
	}
}

// month returns the calendar month of the simulated day.
func (s *Sampler) month(day int) time.Month {
	return s.startDate.AddDate(0, 0, day).Month()
}

// SampleDay simulates one day's arrivals. It allocates the day's global
// active cases across countries, then walks countries in canonical order
// drawing one uniform sample per expected visitor; the first country with a
// sample at or below its prevalence wins and is returned immediately. The
// second return is false when no visitor from any country is infected.
//
// A negative active count is clamped to 1 inside the allocation. A country
// whose prevalence cannot be computed, or whose prevalence is outside (0, 1],
// draws nothing that day.
func (s *Sampler) SampleDay(day int, active models.ActiveCaseSeries, rng *rand.Rand) (string, bool) {
	totalActive := 0
	if day >= 1 && day <= len(active) {
		totalActive = active[day-1]
	}

	alloc := epidemic.Allocate(totalActive, s.profiles)
	expected := visitors.DailyVisitors(s.month(day), s.profiles, s.shares, s.overrides)

	for _, p := range s.profiles {
		prevalence, err := epidemic.Prevalence(alloc[p.Name], p, s.useUrban)
		if err != nil {
			// Bad profile: the country is excluded, not the batch.
			continue
		}
		if prevalence <= 0 || prevalence > 1 {
			continue
		}
		for n := expected[p.Name]; n > 0; n-- {
			if rng.Float64() <= prevalence {
				return p.Name, true
			}
		}
	}
	return "", false
}
