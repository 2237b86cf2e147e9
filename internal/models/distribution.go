package models

import (
	"errors"
	"fmt"
	"time"
)

// NotArrived is the reserved arrival-day sentinel for a trial in which no
// infected visitor landed within the horizon. Valid arrival days start at 1.
const NotArrived = 0

// OriginUnknown is the origin recorded for trials that never saw an arrival.
const OriginUnknown = "Unknown"

// TrialOutcome is the result of one independent simulation trial: the first
// day on which an infected visitor arrived and the country that visitor came
// from, or the not-arrived sentinel.
type TrialOutcome struct {
	ArrivalDay int    `json:"arrival_day"`
	Origin     string `json:"origin"`
}

// Arrived reports whether this trial saw an infected arrival within the horizon.
func (o TrialOutcome) Arrived() bool {
	return o.ArrivalDay != NotArrived
}

// ArrivalDistribution collects the outcomes of a batch of independent trials.
// It is append-only while the batch runs and immutable afterwards.
type ArrivalDistribution struct {
	BatchID   string         `json:"batch_id"`
	StartDate time.Time      `json:"start_date"`
	Horizon   int            `json:"horizon_days"`
	Outcomes  []TrialOutcome `json:"outcomes"`
}

// Validate checks internal consistency: every outcome's arrival day is either
// the sentinel (paired with the unknown origin) or within 1..Horizon with a
// named origin.
func (d *ArrivalDistribution) Validate() error {
	if d.Horizon < 1 {
		return errors.New("horizon must be at least 1 day")
	}
	if len(d.Outcomes) == 0 {
		return errors.New("distribution must contain at least one trial outcome")
	}
	for i, o := range d.Outcomes {
		if o.ArrivalDay == NotArrived {
			if o.Origin != OriginUnknown {
				return fmt.Errorf("trial %d: not-arrived outcome must carry origin %q, got %q", i, OriginUnknown, o.Origin)
			}
			continue
		}
		if o.ArrivalDay < 1 || o.ArrivalDay > d.Horizon {
			return fmt.Errorf("trial %d: arrival day %d outside 1..%d", i, o.ArrivalDay, d.Horizon)
		}
		if o.Origin == "" || o.Origin == OriginUnknown {
			return fmt.Errorf("trial %d: arrived outcome must name an origin country", i)
		}
	}
	return nil
}

// Date converts a simulated day index to its calendar date.
func (d *ArrivalDistribution) Date(day int) time.Time {
	return d.StartDate.AddDate(0, 0, day)
}
