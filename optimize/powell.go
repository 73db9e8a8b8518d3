// Package optimize holds a derivative-free minimizer for small, possibly
// constrained objective functions. Constraints are expressed by the objective
// itself returning +Inf outside the feasible region; NaN is treated the same
// way.
package optimize

import "math"

const (
	golden = 1.618033988749895
	// invGolden is 1/golden, the golden-section shrink factor.
	invGolden = 0.6180339887498949
)

// Settings control the Powell search.
type Settings struct {
	// MaxIterations bounds the number of full sweeps over the direction set.
	MaxIterations int `yaml:"max_iterations"`

	// Tolerance is the relative decrease of f per sweep below which the search
	// stops.
	Tolerance float64 `yaml:"tolerance"`

	// InitialStep is the length of the starting coordinate directions.
	InitialStep float64 `yaml:"initial_step"`

	// LineIterations bounds the golden-section refinements per line search.
	LineIterations int `yaml:"line_iterations"`
}

// DefaultSettings suits objectives over probabilities in [0,1].
func DefaultSettings() Settings {
	return Settings{
		MaxIterations:  200,
		Tolerance:      1e-10,
		InitialStep:    0.1,
		LineIterations: 60,
	}
}

// Result of a minimization.
type Result struct {
	X           []float64
	F           float64
	Iterations  int
	Evaluations int
}

// Powell minimizes f starting from x0 with Powell's conjugate-direction
// method. Each sweep minimizes along every direction in turn, then replaces
// the direction of largest decrease with the overall displacement when that
// is expected to help. The returned point is never worse than x0.
func Powell(f func([]float64) float64, x0 []float64, settings Settings) Result {
	n := len(x0)
	res := Result{X: append([]float64(nil), x0...)}

	eval := func(x []float64) float64 {
		res.Evaluations++
		v := f(x)
		if math.IsNaN(v) {
			return math.Inf(1)
		}
		return v
	}

	res.F = eval(res.X)
	if n == 0 || math.IsInf(res.F, 1) {
		return res
	}

	dirs := make([][]float64, n)
	for i := range dirs {
		dirs[i] = make([]float64, n)
		dirs[i][i] = settings.InitialStep
	}

	for res.Iterations < settings.MaxIterations {
		res.Iterations++

		start := append([]float64(nil), res.X...)
		fStart := res.F
		biggestDrop, biggestIdx := 0.0, 0

		for i, d := range dirs {
			before := res.F
			res.X, res.F = lineMinimize(eval, res.X, res.F, d, settings.LineIterations)
			if drop := before - res.F; drop > biggestDrop {
				biggestDrop, biggestIdx = drop, i
			}
		}

		if 2*(fStart-res.F) <= settings.Tolerance*(math.Abs(fStart)+math.Abs(res.F))+1e-300 {
			break
		}

		displacement := make([]float64, n)
		extrapolated := make([]float64, n)
		var length float64
		for i := range displacement {
			displacement[i] = res.X[i] - start[i]
			extrapolated[i] = res.X[i] + displacement[i]
			length += displacement[i] * displacement[i]
		}
		if length == 0 {
			break
		}

		fExt := eval(extrapolated)
		if !(fExt < fStart) {
			continue
		}

		t := 2*(fStart-2*res.F+fExt)*sq(fStart-res.F-biggestDrop) - biggestDrop*sq(fStart-fExt)
		if t < 0 {
			res.X, res.F = lineMinimize(eval, res.X, res.F, displacement, settings.LineIterations)
			dirs[biggestIdx] = dirs[n-1]
			dirs[n-1] = displacement
		}
	}

	return res
}

// lineMinimize searches x + t*d for the smallest f. It brackets a minimum by
// expanding steps, then narrows the bracket by golden sections. The point
// returned is the best one evaluated, so it is never worse than x.
func lineMinimize(f func([]float64) float64, x []float64, fx float64, d []float64, iterations int) ([]float64, float64) {
	point := func(t float64) []float64 {
		out := make([]float64, len(x))
		for i := range x {
			out[i] = x[i] + t*d[i]
		}
		return out
	}

	bestT, bestF := 0.0, fx
	g := func(t float64) float64 {
		v := f(point(t))
		if v < bestF {
			bestT, bestF = t, v
		}
		return v
	}

	// Bracket: find a < b < c (or the mirror image) with g(b) below both ends.
	a, fa := 0.0, fx
	b, fb := 1.0, g(1)
	if !(fb < fa) {
		if fm := g(-1); fm < fa {
			b, fb = -1, fm
		} else {
			// The minimum along d lies within one step of x.
			goldenSection(g, -1, 1, iterations)
			return finish(point, x, fx, bestT, bestF)
		}
	}

	c := b + golden*(b-a)
	fc := g(c)
	for k := 0; k < 50 && fc < fb; k++ {
		a = b
		b, fb = c, fc
		c = b + golden*(b-a)
		fc = g(c)
	}

	if a > c {
		a, c = c, a
	}
	goldenSection(g, a, c, iterations)

	return finish(point, x, fx, bestT, bestF)
}

func finish(point func(float64) []float64, x []float64, fx, t, ft float64) ([]float64, float64) {
	if t == 0 || !(ft < fx) {
		return x, fx
	}
	return point(t), ft
}

// goldenSection narrows [lo, hi] around a minimum of g. g records the best
// point itself, so nothing is returned.
func goldenSection(g func(float64) float64, lo, hi float64, iterations int) {
	x1 := hi - invGolden*(hi-lo)
	x2 := lo + invGolden*(hi-lo)
	f1, f2 := g(x1), g(x2)

	for i := 0; i < iterations; i++ {
		if math.Abs(hi-lo) <= 1e-12*(1+math.Abs(lo)+math.Abs(hi)) {
			return
		}
		if f1 < f2 {
			hi, x2, f2 = x2, x1, f1
			x1 = hi - invGolden*(hi-lo)
			f1 = g(x1)
		} else {
			lo, x1, f1 = x1, x2, f2
			x2 = lo + invGolden*(hi-lo)
			f2 = g(x2)
		}
	}
}

func sq(v float64) float64 {
	return v * v
}
