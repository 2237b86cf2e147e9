package sim

import (
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/LukaNeg/coronavirus-analysis/internal/epidemic"
	"github.com/LukaNeg/coronavirus-analysis/internal/logger"
	"github.com/LukaNeg/coronavirus-analysis/internal/models"
	"github.com/LukaNeg/coronavirus-analysis/internal/visitors"
)

// Scenario bundles the immutable inputs for a batch of simulation trials:
// one full configuration of growth output, horizon, and policy overrides.
type Scenario struct {
	Active    models.ActiveCaseSeries
	Horizon   int
	StartDate time.Time
	Profiles  []models.CountryProfile
	Shares    models.MonthlyVisitationProfile
	Overrides visitors.Overrides
	UseUrban  bool
}

// Runner executes batches of independent trials for one scenario.
type Runner struct {
	sampler    *Sampler
	scenario   Scenario
	workers    int
	masterSeed int64
}

// NewRunner validates the scenario and prepares a runner. Countries whose
// prevalence denominator is not positive are logged and dropped from the
// canonical order up front, so a bad row flags itself once instead of on
// every sampled day. Workers ≤ 0 defaults to the number of CPUs.
func NewRunner(sc Scenario, workers int, masterSeed int64) (*Runner, error) {
	if sc.Horizon < 1 {
		return nil, fmt.Errorf("horizon must be at least 1 day, got %d", sc.Horizon)
	}
	if len(sc.Active) < sc.Horizon {
		return nil, fmt.Errorf("active case series covers %d days, horizon needs %d", len(sc.Active), sc.Horizon)
	}
	if err := models.ValidateProfiles(sc.Profiles); err != nil {
		return nil, err
	}
	if err := sc.Shares.Validate(); err != nil {
		return nil, err
	}

	usable := make([]models.CountryProfile, 0, len(sc.Profiles))
	for _, p := range sc.Profiles {
		if _, err := epidemic.Prevalence(0, p, sc.UseUrban); err != nil {
			logger.Warn("Excluding country from simulation: %v", err)
			continue
		}
		usable = append(usable, p)
	}
	if len(usable) == 0 {
		return nil, fmt.Errorf("no country has a usable population denominator")
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &Runner{
		sampler:    NewSampler(usable, sc.Shares, sc.StartDate, sc.Overrides, sc.UseUrban),
		scenario:   sc,
		workers:    workers,
		masterSeed: masterSeed,
	}, nil
}

// Run executes the given number of independent trials and collects their
// outcomes. Trials are spread across worker goroutines; each trial gets its
// own random source seeded from the master seed plus the trial index and
// writes into its own slot of a preallocated slice, so the distribution is
// byte-identical for a fixed master seed regardless of scheduling.
func (r *Runner) Run(runs int) (*models.ArrivalDistribution, error) {
	if runs < 1 {
		return nil, fmt.Errorf("runs must be at least 1, got %d", runs)
	}

	logger.Info("Starting simulation batch: runs=%d, horizon=%d days, workers=%d, seed=%d",
		runs, r.scenario.Horizon, r.workers, r.masterSeed)

	outcomes := make([]models.TrialOutcome, runs)
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rng := rand.New(rand.NewSource(r.masterSeed + int64(i)))
				outcomes[i] = r.trial(rng)
			}
		}()
	}
	for i := 0; i < runs; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	dist := &models.ArrivalDistribution{
		BatchID:   uuid.New().String(),
		StartDate: r.scenario.StartDate,
		Horizon:   r.scenario.Horizon,
		Outcomes:  outcomes,
	}
	if err := dist.Validate(); err != nil {
		return nil, fmt.Errorf("simulation produced inconsistent distribution: %w", err)
	}

	arrived := 0
	for _, o := range outcomes {
		if o.Arrived() {
			arrived++
		}
	}
	logger.Info("Simulation batch %s complete: %d/%d trials saw an arrival", dist.BatchID, arrived, runs)
	return dist, nil
}

// trial walks the day horizon and stops at the first infected arrival.
func (r *Runner) trial(rng *rand.Rand) models.TrialOutcome {
	for day := 1; day <= r.scenario.Horizon; day++ {
		if origin, hit := r.sampler.SampleDay(day, r.scenario.Active, rng); hit {
			return models.TrialOutcome{ArrivalDay: day, Origin: origin}
		}
	}
	return models.TrialOutcome{ArrivalDay: models.NotArrived, Origin: models.OriginUnknown}
}
