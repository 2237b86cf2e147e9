package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete scenario configuration
type Config struct {
	Data       DataConfig       `mapstructure:"data"`
	Growth     GrowthConfig     `mapstructure:"growth"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Output     OutputConfig     `mapstructure:"output"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// DataConfig locates the pre-cleaned input tables
type DataConfig struct {
	CountryProfiles string `mapstructure:"country_profiles"`
	MonthlyShares   string `mapstructure:"monthly_shares"`
	CaseSeries      string `mapstructure:"case_series"`
}

// GrowthConfig selects and tunes the growth-curve fit
type GrowthConfig struct {
	// Model is the functional form: exp, log, or lin.
	Model string `mapstructure:"model"`
	// Asymptote fixes the logistic asymptote; "auto" fits it as a free
	// parameter. Ignored by the other models.
	Asymptote string `mapstructure:"asymptote"`
	// LookbackDays is how long a new case counts as contagious.
	LookbackDays int `mapstructure:"lookback_days"`
	// MaxFitIterations bounds the nonlinear optimizer.
	MaxFitIterations int `mapstructure:"max_fit_iterations"`
}

// SimulationConfig tunes the Monte-Carlo batch
type SimulationConfig struct {
	// StartDate anchors simulated day 1; empty means the day after the last
	// observed case date. Format 2006-01-02.
	StartDate string `mapstructure:"start_date"`
	// HorizonDays is the number of simulated days per trial.
	HorizonDays int `mapstructure:"horizon_days"`
	// Runs is the number of independent trials.
	Runs int `mapstructure:"runs"`
	// Workers caps concurrent trials; 0 means one per CPU.
	Workers int `mapstructure:"workers"`
	// Seed is the master random seed; trials derive their own seeds from it.
	Seed int64 `mapstructure:"seed"`
	// ExcludeCountry zeroes visitation from one named country ("" = none).
	ExcludeCountry string `mapstructure:"exclude_country"`
	// ReduceVisitation halves all visitor counts.
	ReduceVisitation bool `mapstructure:"reduce_visitation"`
	// UseUrbanPopulation uses urban rather than total population as the
	// prevalence denominator.
	UseUrbanPopulation bool `mapstructure:"use_urban_population"`
}

// OutputConfig holds report persistence configuration
type OutputConfig struct {
	ReportPath string `mapstructure:"report_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	setDefaults(v)

	// Enable environment variable override
	v.SetEnvPrefix("COVIDSIM")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("data.country_profiles", "./data/country_profiles.json")
	v.SetDefault("data.monthly_shares", "./data/monthly_shares.json")
	v.SetDefault("data.case_series", "./data/case_series.json")

	v.SetDefault("growth.model", "exp")
	v.SetDefault("growth.asymptote", "auto")
	v.SetDefault("growth.lookback_days", 15)
	v.SetDefault("growth.max_fit_iterations", 500)

	v.SetDefault("simulation.start_date", "")
	v.SetDefault("simulation.horizon_days", 120)
	v.SetDefault("simulation.runs", 10000)
	v.SetDefault("simulation.workers", 0)
	v.SetDefault("simulation.seed", 1)
	v.SetDefault("simulation.exclude_country", "")
	v.SetDefault("simulation.reduce_visitation", false)
	v.SetDefault("simulation.use_urban_population", false)

	v.SetDefault("output.report_path", "./out/arrival_report.json")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// AsymptoteValue parses the asymptote setting: (0, true) for "auto",
// otherwise the fixed positive value.
func (g GrowthConfig) AsymptoteValue() (float64, bool, error) {
	if g.Asymptote == "" || g.Asymptote == "auto" {
		return 0, true, nil
	}
	val, err := strconv.ParseFloat(g.Asymptote, 64)
	if err != nil {
		return 0, false, fmt.Errorf("growth.asymptote must be \"auto\" or a number, got %q", g.Asymptote)
	}
	if val <= 0 {
		return 0, false, fmt.Errorf("growth.asymptote must be positive, got %g", val)
	}
	return val, false, nil
}

// StartDateValue parses the start-date setting. The boolean is false when
// the date is unset and should default to the observation-derived date.
func (s SimulationConfig) StartDateValue() (time.Time, bool, error) {
	if s.StartDate == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse("2006-01-02", s.StartDate)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("simulation.start_date must be YYYY-MM-DD, got %q", s.StartDate)
	}
	return t, true, nil
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Data.CountryProfiles == "" {
		return fmt.Errorf("data.country_profiles is required")
	}
	if c.Data.MonthlyShares == "" {
		return fmt.Errorf("data.monthly_shares is required")
	}
	if c.Data.CaseSeries == "" {
		return fmt.Errorf("data.case_series is required")
	}

	validModels := map[string]bool{"exp": true, "log": true, "lin": true}
	if !validModels[c.Growth.Model] {
		return fmt.Errorf("growth.model must be one of: exp, log, lin")
	}
	if _, _, err := c.Growth.AsymptoteValue(); err != nil {
		return err
	}
	if c.Growth.LookbackDays < 1 {
		return fmt.Errorf("growth.lookback_days must be at least 1")
	}
	if c.Growth.MaxFitIterations < 1 {
		return fmt.Errorf("growth.max_fit_iterations must be at least 1")
	}

	if _, _, err := c.Simulation.StartDateValue(); err != nil {
		return err
	}
	if c.Simulation.HorizonDays < 1 {
		return fmt.Errorf("simulation.horizon_days must be at least 1")
	}
	if c.Simulation.Runs < 1 {
		return fmt.Errorf("simulation.runs must be at least 1")
	}
	if c.Simulation.Workers < 0 {
		return fmt.Errorf("simulation.workers must not be negative")
	}

	if c.Output.ReportPath == "" {
		return fmt.Errorf("output.report_path is required")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
