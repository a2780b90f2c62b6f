// Package forecast implements one-step-ahead expense forecasting via
// ordinary least squares linear regression over monthly totals.
package forecast

import "math"

// Failure reasons carried by invalid results.
const (
	ReasonInvalidInput     = "invalid input data"
	ReasonInsufficientData = "insufficient data: need at least 2 months"
	ReasonZeroDenominator  = "division by zero computing slope"
)

// degenerateEps guards the slope denominator. With a dense 1..n month index
// and n >= 2 the denominator cannot vanish, but the check is kept for
// arbitrary caller-supplied indices.
const degenerateEps = 1e-10

// Point is one month of aggregated spending for a category. Month is an
// ordinal index starting at 1; callers must supply points in chronological
// order, the regression does not re-sort.
type Point struct {
	Month int
	Total float64
}

// Result is a closed, always-fully-populated regression outcome: either
// Valid with slope/intercept/prediction, or invalid with a Reason and
// undefined numeric fields.
type Result struct {
	Slope     float64
	Intercept float64
	Next      float64
	Valid     bool
	Reason    string
}

// Regress fits y = slope*x + intercept by ordinary least squares and
// evaluates the line one step past the last x, where the step is the gap
// between the last two x values. Negative predictions clamp to zero:
// spending forecasts are never negative.
func Regress(xs, ys []float64) Result {
	if xs == nil || ys == nil || len(xs) != len(ys) {
		return Result{Reason: ReasonInvalidInput}
	}

	n := len(xs)
	if n < 2 {
		return Result{Reason: ReasonInsufficientData}
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumX2 += xs[i] * xs[i]
	}

	denominator := float64(n)*sumX2 - sumX*sumX
	if math.Abs(denominator) < degenerateEps {
		return Result{Reason: ReasonZeroDenominator}
	}

	slope := (float64(n)*sumXY - sumX*sumY) / denominator
	intercept := (sumY - slope*sumX) / float64(n)

	lastX := xs[n-1]
	step := xs[n-1] - xs[n-2]
	next := slope*(lastX+step) + intercept
	if next < 0 {
		next = 0
	}

	return Result{
		Slope:     slope,
		Intercept: intercept,
		Next:      next,
		Valid:     true,
	}
}

// Forecast runs the regression over a chronologically ordered series of
// monthly totals.
func Forecast(points []Point) Result {
	if points == nil {
		return Result{Reason: ReasonInvalidInput}
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = float64(p.Month)
		ys[i] = p.Total
	}
	return Regress(xs, ys)
}
