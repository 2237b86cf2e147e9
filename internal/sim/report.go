package sim

import (
	"sort"
	"time"

	"github.com/LukaNeg/coronavirus-analysis/internal/growth"
	"github.com/LukaNeg/coronavirus-analysis/internal/models"
)

// CurvePoint is one step of the cumulative arrival-probability curve.
// Probability is cumulative and expressed in percent (0–100).
type CurvePoint struct {
	Date        time.Time `json:"date"`
	Day         int       `json:"day"`
	Probability float64   `json:"probability"`
}

// CumulativeArrivalCurve groups the distribution's trials by arrival date
// and returns the chronologically ordered cumulative probability curve.
// Not-arrived trials contribute to the denominator but produce no dated
// point, so a curve may top out below 100%.
func CumulativeArrivalCurve(d *models.ArrivalDistribution) []CurvePoint {
	counts := make(map[int]int)
	for _, o := range d.Outcomes {
		if o.Arrived() {
			counts[o.ArrivalDay]++
		}
	}

	days := make([]int, 0, len(counts))
	for day := range counts {
		days = append(days, day)
	}
	sort.Ints(days)

	total := float64(len(d.Outcomes))
	curve := make([]CurvePoint, 0, len(days))
	cumulative := 0
	for _, day := range days {
		cumulative += counts[day]
		curve = append(curve, CurvePoint{
			Date:        d.Date(day),
			Day:         day,
			Probability: float64(cumulative) / total * 100,
		})
	}
	return curve
}

// PercentileMilestone returns the first date at which the cumulative arrival
// probability exceeds p percent, or false when the curve never reaches it
// within the horizon.
func PercentileMilestone(d *models.ArrivalDistribution, p float64) (time.Time, bool) {
	for _, point := range CumulativeArrivalCurve(d) {
		if point.Probability > p {
			return point.Date, true
		}
	}
	return time.Time{}, false
}

// Milestone is a named percentile crossing of the arrival curve.
type Milestone struct {
	Percentile float64    `json:"percentile"`
	Date       *time.Time `json:"date,omitempty"`
	Day        int        `json:"day,omitempty"`
}

// Report is the consumable batch artifact: the full probability curve plus
// the scalar milestones the analysis cares about (median and 95th-percentile
// arrival dates, and the predicted global case count at the 95th).
type Report struct {
	BatchID        string       `json:"batch_id"`
	GeneratedAt    time.Time    `json:"generated_at"`
	StartDate      time.Time    `json:"start_date"`
	Horizon        int          `json:"horizon_days"`
	Runs           int          `json:"runs"`
	NotArrivedRuns int          `json:"not_arrived_runs"`
	Curve          []CurvePoint `json:"curve"`
	Median         Milestone    `json:"median"`
	P95            Milestone    `json:"p95"`
	CasesAtP95     float64      `json:"cases_at_p95,omitempty"`
}

// BuildReport aggregates a distribution into its report. The growth curve
// that produced the scenario is used to read off the predicted cumulative
// case count on the 95th-percentile arrival day; it may be nil, in which
// case that field is left zero.
func BuildReport(d *models.ArrivalDistribution, curve growth.Curve) Report {
	report := Report{
		BatchID:     d.BatchID,
		GeneratedAt: time.Now().UTC(),
		StartDate:   d.StartDate,
		Horizon:     d.Horizon,
		Runs:        len(d.Outcomes),
		Curve:       CumulativeArrivalCurve(d),
		Median:      Milestone{Percentile: 50},
		P95:         Milestone{Percentile: 95},
	}
	for _, o := range d.Outcomes {
		if !o.Arrived() {
			report.NotArrivedRuns++
		}
	}

	for i := range report.Curve {
		point := report.Curve[i]
		if report.Median.Date == nil && point.Probability > 50 {
			report.Median.Date = &point.Date
			report.Median.Day = point.Day
		}
		if report.P95.Date == nil && point.Probability > 95 {
			report.P95.Date = &point.Date
			report.P95.Day = point.Day
			if curve != nil {
				report.CasesAtP95 = curve.Predict(point.Day)
			}
		}
	}
	return report
}
