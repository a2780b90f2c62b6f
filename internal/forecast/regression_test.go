package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegress_PerfectLinearTrend(t *testing.T) {
	res := Regress([]float64{1, 2}, []float64{100, 200})

	require.True(t, res.Valid)
	assert.InDelta(t, 100.0, res.Slope, 1e-9)
	assert.InDelta(t, 0.0, res.Intercept, 1e-9)
	assert.InDelta(t, 300.0, res.Next, 1e-9)
}

func TestRegress_LongerSeries(t *testing.T) {
	// y = 50x + 10 exactly; the fit must recover it and extend one month.
	xs := []float64{1, 2, 3, 4}
	ys := []float64{60, 110, 160, 210}

	res := Regress(xs, ys)

	require.True(t, res.Valid)
	assert.InDelta(t, 50.0, res.Slope, 1e-9)
	assert.InDelta(t, 10.0, res.Intercept, 1e-9)
	assert.InDelta(t, 260.0, res.Next, 1e-9)
}

func TestRegress_StepFollowsLastGap(t *testing.T) {
	// Non-unit spacing: the prediction extends by the gap between the last
	// two x values, here 2, so the line is evaluated at x=5.
	res := Regress([]float64{1, 3}, []float64{100, 300})

	require.True(t, res.Valid)
	assert.InDelta(t, 100.0, res.Slope, 1e-9)
	assert.InDelta(t, 500.0, res.Next, 1e-9)
}

func TestRegress_NegativePredictionClampsToZero(t *testing.T) {
	// Strong downward trend: the raw projection is negative.
	res := Regress([]float64{1, 2}, []float64{10, 1})

	require.True(t, res.Valid)
	assert.Equal(t, 0.0, res.Next)
}

func TestRegress_InvalidInput(t *testing.T) {
	for _, tc := range []struct {
		name string
		xs   []float64
		ys   []float64
	}{
		{"nil xs", nil, []float64{1, 2}},
		{"nil ys", []float64{1, 2}, nil},
		{"length mismatch", []float64{1, 2, 3}, []float64{1, 2}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			res := Regress(tc.xs, tc.ys)
			assert.False(t, res.Valid)
			assert.Equal(t, ReasonInvalidInput, res.Reason)
		})
	}
}

func TestRegress_InsufficientData(t *testing.T) {
	res := Regress([]float64{1}, []float64{100})

	assert.False(t, res.Valid)
	assert.Equal(t, ReasonInsufficientData, res.Reason)
}

func TestRegress_DegenerateDenominator(t *testing.T) {
	res := Regress([]float64{2, 2}, []float64{100, 200})

	assert.False(t, res.Valid)
	assert.Equal(t, ReasonZeroDenominator, res.Reason)
}

func TestForecast(t *testing.T) {
	res := Forecast([]Point{{Month: 1, Total: 100}, {Month: 2, Total: 200}})

	require.True(t, res.Valid)
	assert.InDelta(t, 300.0, res.Next, 1e-9)
}

func TestForecast_NilPoints(t *testing.T) {
	res := Forecast(nil)

	assert.False(t, res.Valid)
	assert.Equal(t, ReasonInvalidInput, res.Reason)
}
