package sde

import (
	"math"
	"math/rand"
)

// EulerMaruyama integrates an Itô SDE with the explicit Euler–Maruyama
// scheme. Drift and diffusion are evaluated at the pre-step state, so the
// scheme converges to the Itô solution. Each integrator owns its random
// stream; independent sample paths use independent seeds.
type EulerMaruyama struct {
	rng *rand.Rand
}

func NewEulerMaruyama(seed int64) *EulerMaruyama {
	return &EulerMaruyama{rng: rand.New(rand.NewSource(seed))}
}

// Step advances x by one interval of length dt starting at time t, drawing
// one Wiener increment per component.
func (em *EulerMaruyama) Step(sys System, x State, t, dt float64) State {
	f := sys.Drift(x, t)
	g := sys.Diffusion(x, t)
	sqrtDt := math.Sqrt(dt)

	next := make(State, len(x))
	for j := range x {
		dw := sqrtDt * em.rng.NormFloat64()
		next[j] = x[j] + f[j]*dt + g[j]*dw
	}
	return next
}

// Integrate advances x0 over the evaluation grid and returns one row per
// grid point, the first row being x0 itself. A non-finite component aborts
// the path with a NumericalError.
func (em *EulerMaruyama) Integrate(sys System, x0 State, grid []float64) ([]State, error) {
	if len(grid) == 0 {
		return nil, ErrEmptyGrid
	}
	if len(x0) != sys.Dim() {
		return nil, ErrDimensionMismatch
	}

	path := make([]State, len(grid))
	path[0] = x0.Clone()

	x := x0.Clone()
	for i := 1; i < len(grid); i++ {
		x = em.Step(sys, x, grid[i-1], grid[i]-grid[i-1])
		if !x.IsValid() {
			return nil, &NumericalError{Step: i, Time: grid[i], Wrapped: ErrNonFinite}
		}
		path[i] = x.Clone()
	}

	return path, nil
}
