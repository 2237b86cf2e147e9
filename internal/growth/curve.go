// Package growth fits cumulative-case growth curves to an observed case
// series and extrapolates them into dense daily predictions.
//
// Three functional forms are supported:
//
//	linear:      cases ≈ slope·day + intercept
//	exponential: cases ≈ alpha·exp(beta·day) − theta
//	logistic:    cases ≈ asymptote / (1 + exp((midpoint − ln(day)) / scale))
//
// The linear form is fit by ordinary least squares. The exponential and
// logistic forms are fit by nonlinear least squares: a derivative-free
// Nelder–Mead search over the sum of squared errors, seeded from a
// log-linearized OLS pre-fit. A fit that fails to converge within the
// iteration budget surfaces a ConvergenceError; the caller decides whether
// to try different parameters, the fitter never retries on its own.
//
// Prediction is intentionally defined for any day index ≥ 1, including days
// far beyond the observed range. Extrapolated values can be negative for
// small day indices because of the offset term; consumers clamp.
package growth

import (
	"fmt"
	"math"
)

// ModelKind selects a growth-curve functional form.
type ModelKind string

const (
	// Exponential is unbounded growth with a constant offset.
	Exponential ModelKind = "exp"
	// Logistic is S-shaped growth saturating at an asymptote.
	Logistic ModelKind = "log"
	// Linear is a straight-line fit, mostly useful as a pessimistic floor.
	Linear ModelKind = "lin"
)

// ParseModelKind converts a configuration string to a ModelKind.
func ParseModelKind(s string) (ModelKind, error) {
	switch ModelKind(s) {
	case Exponential, Logistic, Linear:
		return ModelKind(s), nil
	}
	return "", fmt.Errorf("unknown growth model %q: must be one of exp, log, lin", s)
}

// Curve is a fitted growth curve. Implementations are immutable value types;
// the set of forms is closed over the ModelKind constants.
type Curve interface {
	// Kind identifies the functional form.
	Kind() ModelKind
	// Predict evaluates the curve at a day index ≥ 1. The result may be
	// negative near the origin for the offset forms.
	Predict(day int) float64
}

// ExponentialCurve holds fitted parameters for cases ≈ Alpha·exp(Beta·day) − Theta.
type ExponentialCurve struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Theta float64 `json:"theta"`
}

func (c ExponentialCurve) Kind() ModelKind { return Exponential }

func (c ExponentialCurve) Predict(day int) float64 {
	return c.Alpha*math.Exp(c.Beta*float64(day)) - c.Theta
}

// LogisticCurve holds fitted parameters for
// cases ≈ Asymptote / (1 + exp((Midpoint − ln(day)) / Scale)).
// The midpoint is on the log-day axis.
type LogisticCurve struct {
	Asymptote float64 `json:"asymptote"`
	Midpoint  float64 `json:"midpoint"`
	Scale     float64 `json:"scale"`
}

func (c LogisticCurve) Kind() ModelKind { return Logistic }

func (c LogisticCurve) Predict(day int) float64 {
	return c.Asymptote / (1 + math.Exp((c.Midpoint-math.Log(float64(day)))/c.Scale))
}

// LinearCurve holds fitted parameters for cases ≈ Slope·day + Intercept.
type LinearCurve struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

func (c LinearCurve) Kind() ModelKind { return Linear }

func (c LinearCurve) Predict(day int) float64 {
	return c.Slope*float64(day) + c.Intercept
}

// PredictRange evaluates a curve over days 1..horizon.
func PredictRange(c Curve, horizon int) []float64 {
	out := make([]float64, horizon)
	for day := 1; day <= horizon; day++ {
		out[day-1] = c.Predict(day)
	}
	return out
}
