package sim

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/LukaNeg/coronavirus-analysis/internal/models"
	"github.com/LukaNeg/coronavirus-analysis/internal/visitors"
)

var testStart = time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC)

func uniformShares() models.MonthlyVisitationProfile {
	var m models.MonthlyVisitationProfile
	for i := range m {
		m[i] = 1.0 / 12.0
	}
	return m
}

// certainArrivalScenario has one country whose prevalence works out to
// exactly 1.0 with at least one visitor per day, so every sampled day hits.
func certainArrivalScenario(horizon int) Scenario {
	active := make(models.ActiveCaseSeries, horizon)
	for i := range active {
		active[i] = 100
	}
	return Scenario{
		Active:    active,
		Horizon:   horizon,
		StartDate: testStart,
		Profiles: []models.CountryProfile{
			{Name: "Atlantis", Population: 100, UrbanFraction: 1, CaseShare: 1, AnnualVisitors: 3650},
		},
		Shares: uniformShares(),
	}
}

func TestSampleDayCertainArrival(t *testing.T) {
	sc := certainArrivalScenario(1)
	s := NewSampler(sc.Profiles, sc.Shares, sc.StartDate, visitors.Overrides{}, false)
	rng := rand.New(rand.NewSource(7))

	origin, hit := s.SampleDay(1, sc.Active, rng)
	if !hit {
		t.Fatal("prevalence 1.0 with a visitor must always hit")
	}
	if origin != "Atlantis" {
		t.Errorf("origin = %q, want Atlantis", origin)
	}
}

func TestSampleDayFirstMatchOrder(t *testing.T) {
	// Two countries, both at prevalence 1.0. The first in canonical order
	// must always be credited; the second is never checked.
	active := models.ActiveCaseSeries{200}
	profiles := []models.CountryProfile{
		{Name: "First", Population: 100, UrbanFraction: 1, CaseShare: 0.5, AnnualVisitors: 3650},
		{Name: "Second", Population: 100, UrbanFraction: 1, CaseShare: 0.5, AnnualVisitors: 3650},
	}
	s := NewSampler(profiles, uniformShares(), testStart, visitors.Overrides{}, false)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 50; i++ {
		origin, hit := s.SampleDay(1, active, rng)
		if !hit || origin != "First" {
			t.Fatalf("iteration %d: got (%q, %v), want the first country in order", i, origin, hit)
		}
	}
}

func TestSampleDayNoVisitors(t *testing.T) {
	sc := certainArrivalScenario(1)
	s := NewSampler(sc.Profiles, sc.Shares, sc.StartDate, visitors.Overrides{ExcludeCountry: "Atlantis"}, false)
	rng := rand.New(rand.NewSource(7))

	if _, hit := s.SampleDay(1, sc.Active, rng); hit {
		t.Error("an excluded country must never produce an arrival")
	}
}

func TestRunCertainArrival(t *testing.T) {
	runner, err := NewRunner(certainArrivalScenario(1), 1, 1)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	dist, err := runner.Run(100)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for i, o := range dist.Outcomes {
		if o.ArrivalDay != 1 || o.Origin != "Atlantis" {
			t.Fatalf("trial %d: outcome %+v, want day-1 arrival from Atlantis", i, o)
		}
	}
}

func TestRunZeroPrevalence(t *testing.T) {
	sc := certainArrivalScenario(30)
	for i := range sc.Active {
		sc.Active[i] = 0
	}

	runner, err := NewRunner(sc, 2, 99)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	dist, err := runner.Run(50)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for i, o := range dist.Outcomes {
		if o.Arrived() {
			t.Fatalf("trial %d arrived on day %d; zero prevalence must never arrive", i, o.ArrivalDay)
		}
		if o.Origin != models.OriginUnknown {
			t.Fatalf("trial %d: origin %q, want %q", i, o.Origin, models.OriginUnknown)
		}
	}
}

// moderateScenario produces a mix of arrived and not-arrived trials.
func moderateScenario() Scenario {
	horizon := 60
	active := make(models.ActiveCaseSeries, horizon)
	for i := range active {
		active[i] = 20 + i
	}
	return Scenario{
		Active:    active,
		Horizon:   horizon,
		StartDate: testStart,
		Profiles: []models.CountryProfile{
			{Name: "Atlantis", Population: 10000, UrbanFraction: 0.8, CaseShare: 0.6, AnnualVisitors: 4000},
			{Name: "Lemuria", Population: 20000, UrbanFraction: 0.5, CaseShare: 0.4, AnnualVisitors: 2000},
		},
		Shares: uniformShares(),
	}
}

func TestRunDeterministicForFixedSeed(t *testing.T) {
	const runs = 300
	const seed = 42

	results := make([][]models.TrialOutcome, 0, 3)
	for _, workers := range []int{1, 4, 9} {
		runner, err := NewRunner(moderateScenario(), workers, seed)
		if err != nil {
			t.Fatalf("NewRunner failed: %v", err)
		}
		dist, err := runner.Run(runs)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		results = append(results, dist.Outcomes)
	}

	for i := 1; i < len(results); i++ {
		if !reflect.DeepEqual(results[0], results[i]) {
			t.Fatal("outcomes must be identical for a fixed master seed regardless of worker count")
		}
	}
}

func TestRunDifferentSeedsDiffer(t *testing.T) {
	outcomes := make([][]models.TrialOutcome, 0, 2)
	for _, seed := range []int64{1, 2} {
		runner, err := NewRunner(moderateScenario(), 2, seed)
		if err != nil {
			t.Fatalf("NewRunner failed: %v", err)
		}
		dist, err := runner.Run(300)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		outcomes = append(outcomes, dist.Outcomes)
	}
	if reflect.DeepEqual(outcomes[0], outcomes[1]) {
		t.Error("different master seeds produced identical outcomes")
	}
}

func TestNewRunnerExcludesBadProfiles(t *testing.T) {
	sc := certainArrivalScenario(1)
	sc.Profiles = []models.CountryProfile{
		{Name: "NoUrban", Population: 100, UrbanFraction: 0, CaseShare: 0.5, AnnualVisitors: 3650},
		{Name: "Atlantis", Population: 100, UrbanFraction: 1, CaseShare: 0.5, AnnualVisitors: 3650},
	}
	sc.UseUrban = true

	runner, err := NewRunner(sc, 1, 1)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	if got := len(runner.sampler.profiles); got != 1 {
		t.Errorf("usable profiles = %d, want 1 after exclusion", got)
	}
}

func TestNewRunnerRejectsBadScenario(t *testing.T) {
	sc := certainArrivalScenario(10)
	sc.Active = sc.Active[:5]
	if _, err := NewRunner(sc, 1, 1); err == nil {
		t.Error("expected error when the active series is shorter than the horizon")
	}

	sc = certainArrivalScenario(0)
	if _, err := NewRunner(sc, 1, 1); err == nil {
		t.Error("expected error for a zero-day horizon")
	}

	sc = certainArrivalScenario(10)
	sc.Profiles[0].CaseShare = 0.5 // shares no longer sum to 1
	if _, err := NewRunner(sc, 1, 1); err == nil {
		t.Error("expected error for an invalid profile table")
	}
}

func TestRunRejectsZeroRuns(t *testing.T) {
	runner, err := NewRunner(certainArrivalScenario(1), 1, 1)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	if _, err := runner.Run(0); err == nil {
		t.Error("expected error for zero runs")
	}
}
