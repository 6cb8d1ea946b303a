package sde

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System is a stochastic differential equation in Itô form with diagonal
// noise: dX = Drift(X,t) dt + Diffusion(X,t) dW, where Diffusion returns the
// diagonal entries of the noise matrix.
type System interface {
	Drift(x State, t float64) State
	Diffusion(x State, t float64) State
	Dim() int
}

// UniformGrid returns days+1 integer day points from 0 to days inclusive.
func UniformGrid(days int) []float64 {
	grid := make([]float64, days+1)
	for i := range grid {
		grid[i] = float64(i)
	}
	return grid
}
