package optimize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPowellSeparableQuadratic(t *testing.T) {
	f := func(x []float64) float64 {
		return sq(x[0]-1) + 10*sq(x[1]+2)
	}

	res := Powell(f, []float64{0, 0}, DefaultSettings())

	require.Len(t, res.X, 2)
	assert.InDelta(t, 1, res.X[0], 1e-4)
	assert.InDelta(t, -2, res.X[1], 1e-4)
	assert.Less(t, res.F, 1e-8)
	assert.Greater(t, res.Evaluations, res.Iterations)
}

func TestPowellCoupledQuadratic(t *testing.T) {
	f := func(x []float64) float64 {
		a, b := x[0]-0.3, x[1]-0.6
		return a*a + b*b + 1.5*a*b
	}

	res := Powell(f, []float64{0.9, 0.1}, DefaultSettings())

	assert.InDelta(t, 0.3, res.X[0], 1e-4)
	assert.InDelta(t, 0.6, res.X[1], 1e-4)
}

func TestPowellRespectsInfeasibleRegion(t *testing.T) {
	f := func(x []float64) float64 {
		if x[0] > 1 {
			return math.Inf(1)
		}
		return sq(x[0] - 2)
	}

	res := Powell(f, []float64{0}, DefaultSettings())

	assert.LessOrEqual(t, res.X[0], 1.0)
	assert.InDelta(t, 1, res.X[0], 1e-4)
}

func TestPowellTreatsNaNAsInfeasible(t *testing.T) {
	f := func(x []float64) float64 {
		if x[0] < 0 {
			return math.NaN()
		}
		return sq(x[0] + 1)
	}

	res := Powell(f, []float64{0.5}, DefaultSettings())

	assert.GreaterOrEqual(t, res.X[0], 0.0)
	assert.InDelta(t, 0, res.X[0], 1e-4)
	assert.False(t, math.IsNaN(res.F))
}

func TestPowellInfeasibleStart(t *testing.T) {
	calls := 0
	f := func(x []float64) float64 {
		calls++
		return math.Inf(1)
	}

	x0 := []float64{0.2, 0.4}
	res := Powell(f, x0, DefaultSettings())

	assert.Equal(t, x0, res.X)
	assert.True(t, math.IsInf(res.F, 1))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, res.Evaluations)
}

func TestPowellNeverWorseThanStart(t *testing.T) {
	// Flat everywhere except a spike that no line search can find.
	f := func(x []float64) float64 {
		if x[0] == 0.123456789 {
			return -1
		}
		return 1
	}

	x0 := []float64{0.5, 0.5}
	res := Powell(f, x0, DefaultSettings())

	assert.Equal(t, x0, res.X)
	assert.Equal(t, 1.0, res.F)
}

func TestPowellDoesNotAliasStart(t *testing.T) {
	x0 := []float64{3}
	Powell(func(x []float64) float64 { return sq(x[0]) }, x0, DefaultSettings())

	assert.Equal(t, []float64{3}, x0)
}
