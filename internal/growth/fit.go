package growth

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/LukaNeg/coronavirus-analysis/internal/models"
)

// DefaultMaxIterations bounds the Nelder–Mead search for the nonlinear fits.
const DefaultMaxIterations = 500

// DefaultAsymptoteSeed is the starting value for the logistic asymptote when
// it is fit as a free parameter rather than fixed by the scenario.
const DefaultAsymptoteSeed = 2e6

// logFloor keeps the log-linearized pre-fit defined when an observation sits
// at or below the seeded offset.
const logFloor = 1e-9

// ConvergenceError reports a nonlinear fit that did not converge within the
// iteration budget. The scenario is unusable as configured; callers surface
// the error rather than retrying silently.
type ConvergenceError struct {
	Kind   ModelKind
	Status string
}

func (e ConvergenceError) Error() string {
	return fmt.Sprintf("%s fit did not converge: %s", e.Kind, e.Status)
}

// Options tunes a fit.
type Options struct {
	// Asymptote fixes the logistic asymptote when positive. When zero or
	// negative the asymptote is fit as a free parameter seeded from
	// DefaultAsymptoteSeed. Ignored by the other forms.
	Asymptote float64
	// MaxIterations caps the Nelder–Mead search; zero means DefaultMaxIterations.
	MaxIterations int
}

// Fit estimates growth-curve parameters for the given form from the observed
// series. The series must already be validated.
func Fit(series models.CaseTimeSeries, kind ModelKind, opts Options) (Curve, error) {
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("cannot fit growth curve: %w", err)
	}
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	switch kind {
	case Linear:
		return fitLinear(series), nil
	case Exponential:
		return fitExponential(series, maxIter)
	case Logistic:
		return fitLogistic(series, opts.Asymptote, maxIter)
	}
	return nil, fmt.Errorf("unknown growth model %q", kind)
}

// fitLinear is ordinary least squares of cumulative cases on day index.
func fitLinear(series models.CaseTimeSeries) LinearCurve {
	intercept, slope := stat.LinearRegression(series.Days(), series.Cases(), nil, false)
	return LinearCurve{Slope: slope, Intercept: intercept}
}

// fitExponential fits cases ≈ alpha·exp(beta·day) − theta by nonlinear least
// squares. Theta is seeded at half the smallest observed count and alpha,
// beta come from an OLS pre-fit of log(cases − theta₀) on day, then all
// three parameters are refined together.
func fitExponential(series models.CaseTimeSeries, maxIter int) (Curve, error) {
	days := series.Days()
	cases := series.Cases()

	theta0 := 0.5 * series.MinCases()
	logCases := make([]float64, len(cases))
	for i, c := range cases {
		v := c - theta0
		if v < logFloor {
			v = logFloor
		}
		logCases[i] = math.Log(v)
	}
	logAlpha0, beta0 := stat.LinearRegression(days, logCases, nil, false)

	sse := func(x []float64) float64 {
		alpha, beta, theta := x[0], x[1], x[2]
		var sum float64
		for i, day := range days {
			r := alpha*math.Exp(beta*day) - theta - cases[i]
			sum += r * r
		}
		return sum
	}

	x, err := minimizeSSE(sse, []float64{math.Exp(logAlpha0), beta0, theta0}, maxIter, Exponential)
	if err != nil {
		return nil, err
	}
	return ExponentialCurve{Alpha: x[0], Beta: x[1], Theta: x[2]}, nil
}

// fitLogistic fits cases ≈ asym / (1 + exp((mid − ln(day)) / scale)) by
// nonlinear least squares. With a fixed asymptote only the midpoint and
// scale are free; with asymptote ≤ 0 it joins the search seeded from
// DefaultAsymptoteSeed. The midpoint is seeded at the log of the last
// observed day and the scale at 1.
func fitLogistic(series models.CaseTimeSeries, asymptote float64, maxIter int) (Curve, error) {
	days := series.Days()
	cases := series.Cases()

	mid0 := math.Log(days[len(days)-1])
	scale0 := 1.0

	logisticAt := func(asym, mid, scale, day float64) float64 {
		return asym / (1 + math.Exp((mid-math.Log(day))/scale))
	}

	if asymptote > 0 {
		sse := func(x []float64) float64 {
			var sum float64
			for i, day := range days {
				r := logisticAt(asymptote, x[0], x[1], day) - cases[i]
				sum += r * r
			}
			return sum
		}
		x, err := minimizeSSE(sse, []float64{mid0, scale0}, maxIter, Logistic)
		if err != nil {
			return nil, err
		}
		return LogisticCurve{Asymptote: asymptote, Midpoint: x[0], Scale: x[1]}, nil
	}

	sse := func(x []float64) float64 {
		var sum float64
		for i, day := range days {
			r := logisticAt(x[0], x[1], x[2], day) - cases[i]
			sum += r * r
		}
		return sum
	}
	x, err := minimizeSSE(sse, []float64{DefaultAsymptoteSeed, mid0, scale0}, maxIter, Logistic)
	if err != nil {
		return nil, err
	}
	return LogisticCurve{Asymptote: x[0], Midpoint: x[1], Scale: x[2]}, nil
}

// minimizeSSE runs a bounded derivative-free Nelder–Mead search over the
// given objective. Hitting the iteration budget, or any optimizer failure,
// is reported as a ConvergenceError.
func minimizeSSE(f func([]float64) float64, seed []float64, maxIter int, kind ModelKind) ([]float64, error) {
	problem := optimize.Problem{Func: f}
	settings := &optimize.Settings{
		MajorIterations: maxIter,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-8,
			Relative:   1e-10,
			Iterations: 50,
		},
	}

	result, err := optimize.Minimize(problem, seed, settings, &optimize.NelderMead{})
	if err != nil {
		return nil, ConvergenceError{Kind: kind, Status: err.Error()}
	}
	if result.Status == optimize.IterationLimit {
		return nil, ConvergenceError{Kind: kind, Status: fmt.Sprintf("iteration budget of %d exhausted", maxIter)}
	}
	return result.X, nil
}
