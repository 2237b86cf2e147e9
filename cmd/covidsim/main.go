package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/LukaNeg/coronavirus-analysis/internal/config"
	"github.com/LukaNeg/coronavirus-analysis/internal/dataset"
	"github.com/LukaNeg/coronavirus-analysis/internal/epidemic"
	"github.com/LukaNeg/coronavirus-analysis/internal/growth"
	"github.com/LukaNeg/coronavirus-analysis/internal/logger"
	"github.com/LukaNeg/coronavirus-analysis/internal/models"
	"github.com/LukaNeg/coronavirus-analysis/internal/sim"
	"github.com/LukaNeg/coronavirus-analysis/internal/visitors"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	// Load the pre-cleaned input tables.
	profiles, err := dataset.LoadCountryProfiles(cfg.Data.CountryProfiles)
	if err != nil {
		logger.Fatal("Failed to load country profiles: %v", err)
	}
	shares, err := dataset.LoadMonthlyShares(cfg.Data.MonthlyShares)
	if err != nil {
		logger.Fatal("Failed to load monthly visitation shares: %v", err)
	}
	series, lastObserved, err := dataset.LoadCaseSeries(cfg.Data.CaseSeries)
	if err != nil {
		logger.Fatal("Failed to load case series: %v", err)
	}
	logger.Info("Loaded %d countries, %d observed case days (last %s)",
		len(profiles), len(series), lastObserved.Format("2006-01-02"))

	// Fit the growth curve and extrapolate over the simulation horizon.
	kind, err := growth.ParseModelKind(cfg.Growth.Model)
	if err != nil {
		logger.Fatal("%v", err)
	}
	asymptote, auto, err := cfg.Growth.AsymptoteValue()
	if err != nil {
		logger.Fatal("%v", err)
	}
	opts := growth.Options{MaxIterations: cfg.Growth.MaxFitIterations}
	if !auto {
		opts.Asymptote = asymptote
	}
	curve, err := growth.Fit(series, kind, opts)
	if err != nil {
		logger.Fatal("Growth fit failed: %v", err)
	}
	logger.Info("Fitted %s growth curve over %d observed days", kind, len(series))

	horizon := len(series) + cfg.Simulation.HorizonDays
	prediction := models.DailyPrediction(growth.PredictRange(curve, horizon))
	active := epidemic.ActiveCases(prediction, cfg.Growth.LookbackDays)

	// Simulated day 1 corresponds to the day after the last observation, so
	// the trials consume the extrapolated tail of the active-case series.
	startDate, set, err := cfg.Simulation.StartDateValue()
	if err != nil {
		logger.Fatal("%v", err)
	}
	if !set {
		startDate = lastObserved
	}

	scenario := sim.Scenario{
		Active:    active[len(series):],
		Horizon:   cfg.Simulation.HorizonDays,
		StartDate: startDate,
		Profiles:  profiles,
		Shares:    shares,
		Overrides: visitors.Overrides{
			ExcludeCountry:   cfg.Simulation.ExcludeCountry,
			ReduceVisitation: cfg.Simulation.ReduceVisitation,
		},
		UseUrban: cfg.Simulation.UseUrbanPopulation,
	}

	runner, err := sim.NewRunner(scenario, cfg.Simulation.Workers, cfg.Simulation.Seed)
	if err != nil {
		logger.Fatal("Failed to prepare simulation: %v", err)
	}
	dist, err := runner.Run(cfg.Simulation.Runs)
	if err != nil {
		logger.Fatal("Simulation failed: %v", err)
	}

	report := sim.BuildReport(dist, offsetCurve{curve, len(series)})

	if err := dataset.WriteReport(cfg.Output.ReportPath, report); err != nil {
		logger.Fatal("Failed to write report: %v", err)
	}
	logger.Info("Report written to %s", cfg.Output.ReportPath)

	printSummary(report)
}

// offsetCurve shifts curve evaluation so simulated day 1 lines up with the
// first extrapolated day after the observed series.
type offsetCurve struct {
	growth.Curve
	observedDays int
}

func (c offsetCurve) Predict(day int) float64 {
	return c.Curve.Predict(c.observedDays + day)
}

func printSummary(report sim.Report) {
	fmt.Printf("Simulation batch %s: %d runs over %d days\n", report.BatchID, report.Runs, report.Horizon)
	if report.NotArrivedRuns > 0 {
		fmt.Printf("  %d runs saw no arrival within the horizon\n", report.NotArrivedRuns)
	}
	if report.Median.Date != nil {
		fmt.Printf("  Median arrival:          %s (day %d)\n", report.Median.Date.Format("2006-01-02"), report.Median.Day)
	} else {
		fmt.Println("  Median arrival:          not reached within horizon")
	}
	if report.P95.Date != nil {
		fmt.Printf("  95th-percentile arrival: %s (day %d, ~%.0f global cases)\n",
			report.P95.Date.Format("2006-01-02"), report.P95.Day, report.CasesAtP95)
	} else {
		fmt.Println("  95th-percentile arrival: not reached within horizon")
	}
}
