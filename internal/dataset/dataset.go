// Package dataset reads the pre-cleaned input tables the simulation consumes
// and persists the batch report. Tables arrive as JSON files produced by the
// upstream cleaning step; this package only checks shape, it does not clean.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/LukaNeg/coronavirus-analysis/internal/models"
)

const (
	filePermissions os.FileMode = 0o644
	dirPermissions  os.FileMode = 0o755
)

// DataShapeError reports a malformed or misaligned input table. Fatal for
// the run; the caller fixes the table, the loader never repairs it.
type DataShapeError struct {
	Table  string
	Reason string
}

func (e DataShapeError) Error() string {
	return fmt.Sprintf("malformed %s table: %s", e.Table, e.Reason)
}

func readJSON(path, table string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s table: %w", table, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return DataShapeError{Table: table, Reason: err.Error()}
	}
	return nil
}

// LoadCountryProfiles reads the country table: population, urban fraction,
// pre-normalized case share, and annual visitor projection per country.
// The table must carry unique names, strictly positive shares summing to 1,
// and valid field ranges; anything else is a DataShapeError.
func LoadCountryProfiles(path string) ([]models.CountryProfile, error) {
	var profiles []models.CountryProfile
	if err := readJSON(path, "country profile", &profiles); err != nil {
		return nil, err
	}
	if err := models.ValidateProfiles(profiles); err != nil {
		return nil, DataShapeError{Table: "country profile", Reason: err.Error()}
	}
	return profiles, nil
}

type monthlyShareRow struct {
	Month int     `json:"month"`
	Share float64 `json:"share"`
}

// LoadMonthlyShares reads the monthly visitation table: one row per calendar
// month with that month's share of annual visitation, averaged upstream over
// the historical years. All 12 months must appear exactly once and the
// shares must sum to 1.
func LoadMonthlyShares(path string) (models.MonthlyVisitationProfile, error) {
	var rows []monthlyShareRow
	var profile models.MonthlyVisitationProfile
	if err := readJSON(path, "monthly visitation", &rows); err != nil {
		return profile, err
	}
	if len(rows) != 12 {
		return profile, DataShapeError{Table: "monthly visitation", Reason: fmt.Sprintf("expected 12 rows, got %d", len(rows))}
	}

	seen := [12]bool{}
	for _, row := range rows {
		if row.Month < 1 || row.Month > 12 {
			return profile, DataShapeError{Table: "monthly visitation", Reason: fmt.Sprintf("month %d outside 1..12", row.Month)}
		}
		if seen[row.Month-1] {
			return profile, DataShapeError{Table: "monthly visitation", Reason: fmt.Sprintf("month %d appears more than once", row.Month)}
		}
		seen[row.Month-1] = true
		profile[row.Month-1] = row.Share
	}
	if err := profile.Validate(); err != nil {
		return profile, DataShapeError{Table: "monthly visitation", Reason: err.Error()}
	}
	return profile, nil
}

type caseRow struct {
	Date  string  `json:"date"`
	Cases float64 `json:"cases"`
}

// LoadCaseSeries reads the cumulative confirmed-case table: one row per day,
// ISO-8601 dates, chronologically ordered with no gaps. Gapped or reordered
// dates are rejected, not interpolated. Returns the series indexed from day 1
// together with the date of the last observation.
func LoadCaseSeries(path string) (models.CaseTimeSeries, time.Time, error) {
	var rows []caseRow
	if err := readJSON(path, "case series", &rows); err != nil {
		return nil, time.Time{}, err
	}
	if len(rows) == 0 {
		return nil, time.Time{}, DataShapeError{Table: "case series", Reason: "table must not be empty"}
	}

	series := make(models.CaseTimeSeries, len(rows))
	var prev time.Time
	for i, row := range rows {
		date, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			return nil, time.Time{}, DataShapeError{Table: "case series", Reason: fmt.Sprintf("row %d: bad date %q", i, row.Date)}
		}
		if i > 0 && !date.Equal(prev.AddDate(0, 0, 1)) {
			return nil, time.Time{}, DataShapeError{
				Table:  "case series",
				Reason: fmt.Sprintf("row %d: dates must be consecutive, got %s after %s", i, row.Date, prev.Format("2006-01-02")),
			}
		}
		prev = date
		series[i] = models.CasePoint{Day: i + 1, Cases: row.Cases}
	}
	if err := series.Validate(); err != nil {
		return nil, time.Time{}, DataShapeError{Table: "case series", Reason: err.Error()}
	}
	return series, prev, nil
}

// WriteReport persists the batch report as indented JSON. The write is
// atomic: a temp file in the target directory is renamed over the final path
// so a crash never leaves a half-written report behind.
func WriteReport(path string, report any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, jsonData, filePermissions); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath) // Clean up temp file on rename failure
		return fmt.Errorf("failed to rename report: %w", err)
	}
	return nil
}
