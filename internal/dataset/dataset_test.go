package dataset

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCountryProfiles(t *testing.T) {
	path := writeFile(t, "profiles.json", `[
		{"country": "Atlantis", "population": 1000, "urban_fraction": 0.8, "case_share": 0.6, "annual_visitors": 5000},
		{"country": "Rest of world", "population": 7527000000, "urban_fraction": 0.5, "case_share": 0.4, "annual_visitors": 10000}
	]`)

	profiles, err := LoadCountryProfiles(path)
	if err != nil {
		t.Fatalf("LoadCountryProfiles failed: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("got %d profiles, want 2", len(profiles))
	}
	if profiles[0].Name != "Atlantis" || profiles[0].Population != 1000 {
		t.Errorf("first profile = %+v", profiles[0])
	}
}

func TestLoadCountryProfilesRejectsBadShares(t *testing.T) {
	path := writeFile(t, "profiles.json", `[
		{"country": "Atlantis", "population": 1000, "urban_fraction": 0.8, "case_share": 0.6, "annual_visitors": 5000}
	]`)

	_, err := LoadCountryProfiles(path)
	if err == nil {
		t.Fatal("expected error for shares not summing to 1")
	}
	var shapeErr DataShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected DataShapeError, got %T: %v", err, err)
	}
}

func TestLoadMonthlyShares(t *testing.T) {
	rows := `[
		{"month": 1, "share": 0.1}, {"month": 2, "share": 0.1}, {"month": 3, "share": 0.1},
		{"month": 4, "share": 0.1}, {"month": 5, "share": 0.1}, {"month": 6, "share": 0.1},
		{"month": 7, "share": 0.05}, {"month": 8, "share": 0.05}, {"month": 9, "share": 0.05},
		{"month": 10, "share": 0.05}, {"month": 11, "share": 0.1}, {"month": 12, "share": 0.1}
	]`
	path := writeFile(t, "shares.json", rows)

	profile, err := LoadMonthlyShares(path)
	if err != nil {
		t.Fatalf("LoadMonthlyShares failed: %v", err)
	}
	if profile.Share(time.July) != 0.05 {
		t.Errorf("Share(July) = %g, want 0.05", profile.Share(time.July))
	}
}

func TestLoadMonthlySharesRejectsBadTables(t *testing.T) {
	tests := []struct {
		name string
		rows string
	}{
		{"missing month", `[{"month": 1, "share": 1.0}]`},
		{"duplicate month", `[
			{"month": 1, "share": 0.5}, {"month": 1, "share": 0.5}, {"month": 3, "share": 0},
			{"month": 4, "share": 0}, {"month": 5, "share": 0}, {"month": 6, "share": 0},
			{"month": 7, "share": 0}, {"month": 8, "share": 0}, {"month": 9, "share": 0},
			{"month": 10, "share": 0}, {"month": 11, "share": 0}, {"month": 12, "share": 0}
		]`},
		{"month out of range", `[
			{"month": 0, "share": 0.5}, {"month": 2, "share": 0.5}, {"month": 3, "share": 0},
			{"month": 4, "share": 0}, {"month": 5, "share": 0}, {"month": 6, "share": 0},
			{"month": 7, "share": 0}, {"month": 8, "share": 0}, {"month": 9, "share": 0},
			{"month": 10, "share": 0}, {"month": 11, "share": 0}, {"month": 12, "share": 0}
		]`},
		{"not json", `month,share`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "shares.json", tt.rows)
			_, err := LoadMonthlyShares(path)
			if err == nil {
				t.Fatal("expected error")
			}
			var shapeErr DataShapeError
			if !errors.As(err, &shapeErr) {
				t.Fatalf("expected DataShapeError, got %T: %v", err, err)
			}
		})
	}
}

func TestLoadCaseSeries(t *testing.T) {
	path := writeFile(t, "cases.json", `[
		{"date": "2020-02-15", "cases": 45},
		{"date": "2020-02-16", "cases": 62},
		{"date": "2020-02-17", "cases": 80}
	]`)

	series, last, err := LoadCaseSeries(path)
	if err != nil {
		t.Fatalf("LoadCaseSeries failed: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("got %d rows, want 3", len(series))
	}
	if series[2].Day != 3 || series[2].Cases != 80 {
		t.Errorf("last point = %+v, want day 3 with 80 cases", series[2])
	}
	if want := time.Date(2020, 2, 17, 0, 0, 0, 0, time.UTC); !last.Equal(want) {
		t.Errorf("last observed date = %v, want %v", last, want)
	}
}

func TestLoadCaseSeriesRejectsGaps(t *testing.T) {
	path := writeFile(t, "cases.json", `[
		{"date": "2020-02-15", "cases": 45},
		{"date": "2020-02-17", "cases": 80}
	]`)

	_, _, err := LoadCaseSeries(path)
	if err == nil {
		t.Fatal("expected error for gapped dates")
	}
	var shapeErr DataShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected DataShapeError, got %T: %v", err, err)
	}
}

func TestLoadCaseSeriesRejectsBadDate(t *testing.T) {
	path := writeFile(t, "cases.json", `[{"date": "15/02/2020", "cases": 45}]`)
	if _, _, err := LoadCaseSeries(path); err == nil {
		t.Fatal("expected error for a non-ISO date")
	}
}

func TestWriteReportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.json")
	report := map[string]any{"batch_id": "abc", "runs": float64(100)}

	if err := WriteReport(path, report); err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report back: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if got["batch_id"] != "abc" || got["runs"] != float64(100) {
		t.Errorf("round-tripped report = %v", got)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file must not remain after a successful write")
	}
}
