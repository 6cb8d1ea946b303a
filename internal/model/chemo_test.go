package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resimlab/resim/internal/sde"
)

func defaultTestParams(t *testing.T) Parameters {
	t.Helper()
	growth, kinetic, drug, init := validArgs()
	p, err := NewParameters(growth, kinetic, drug, init, 365, 5)
	require.NoError(t, err)
	return p
}

func TestControlRegimeInertComponents(t *testing.T) {
	p := defaultTestParams(t)
	dyn := NewDynamics(p, false)

	x := sde.State{0.4, 0.05, 0.1, 0.03, 2.0}
	dx := dyn.Drift(x, 0)

	assert.Zero(t, dx[AcquiredResistant], "acquired-resistant compartment is inert without dose")
	assert.Zero(t, dx[Concentration], "drug concentration does not move without dose")
}

func TestDoseRegimeConcentrationKinetics(t *testing.T) {
	p := defaultTestParams(t)
	dyn := NewDynamics(p, true)

	x := sde.State{0.4, 0.05, 0, 0.03, 100}
	dx := dyn.Drift(x, 0)

	// First-order elimination under constant infusion.
	assert.InDelta(t, p.Dose-p.KE*100, dx[Concentration], 1e-12)
}

func TestDriftClampsWorkingCopy(t *testing.T) {
	p := defaultTestParams(t)
	dyn := NewDynamics(p, true)

	// Sub-threshold and negative components must behave exactly like zeros.
	dirty := sde.State{1e-9, -1e-9, 1e-10, -0.5, -3}
	clean := sde.State{0, 0, 0, 0, 0}

	assert.Equal(t, dyn.Drift(clean, 0), dyn.Drift(dirty, 0))
	assert.Equal(t, dyn.Diffusion(clean, 0), dyn.Diffusion(dirty, 0))

	// The caller's state is left untouched.
	assert.Equal(t, sde.State{1e-9, -1e-9, 1e-10, -0.5, -3}, dirty)
}

func TestGrowthVanishesAtCarryingCapacity(t *testing.T) {
	growth := []float64{0.05, 0.05, 0.05}
	kinetic := make([]float64, 10)
	drug := []float64{10, 10, 0, 0, 0}
	p, err := NewParameters(growth, kinetic, drug, []float64{0.42, 0.05, 0, 0.03, 0}, 365, 5)
	require.NoError(t, err)

	dyn := NewDynamics(p, false)
	x := sde.State{p.CarryingCapacity, 0, 0, 0, 0}
	dx := dyn.Drift(x, 0)

	assert.InDelta(t, 0, dx[Sensitive], 1e-12, "logistic growth is zero at carrying capacity")
}

func TestDeathSaturates(t *testing.T) {
	growth := make([]float64, 3)
	kinetic := make([]float64, 10)
	drug := []float64{10, 10, 240, 0.9, 0.7}
	p, err := NewParameters(growth, kinetic, drug, []float64{1, 0, 0, 0, 0}, 365, 5)
	require.NoError(t, err)

	dyn := NewDynamics(p, true)

	// With growth and transitions off, the sensitive drift reduces to the
	// Michaelis-Menten death term.
	lo := dyn.Drift(sde.State{1, 0, 0, 0, 10}, 0)[Sensitive]
	hi := dyn.Drift(sde.State{1, 0, 0, 0, 1e6}, 0)[Sensitive]

	assert.InDelta(t, -p.DSMax*10/(p.KI+10), lo, 1e-12)
	assert.InDelta(t, -p.DSMax, hi, 1e-4, "death rate saturates at dsmax")
}

func TestQuiescenceEntryRate(t *testing.T) {
	growth := make([]float64, 3)
	kinetic := make([]float64, 10)
	kinetic[2] = 5e-4 // ks_q only
	drug := []float64{10, 10, 240, 0, 0.7}
	p, err := NewParameters(growth, kinetic, drug, []float64{1, 0, 0, 0, 0}, 365, 5)
	require.NoError(t, err)

	// Without drug present the baseline rate applies, in either regime.
	ctl := NewDynamics(p, false)
	dx := ctl.Drift(sde.State{1, 0, 0, 0, 0}, 0)
	assert.InDelta(t, p.KSensToQuiescent, dx[Quiescent], 1e-12)

	// With drug present the induced rate applies.
	dosed := NewDynamics(p, true)
	conc := 5.0
	dx = dosed.Drift(sde.State{1, 0, 0, 0, conc}, 0)
	want := p.KSensToQuiescent * p.QF * conc / (p.KI + conc)
	assert.InDelta(t, want, dx[Quiescent], 1e-12)
}

func TestControlRegimeConservesMassWithoutGrowth(t *testing.T) {
	growth := make([]float64, 3)
	kinetic := []float64{1e-6, 1e-4, 5e-4, 1e-6, 5e-4, 1e-6, 5e-4, 5e-4, 5e-4, 5e-4}
	drug := []float64{10, 10, 0, 0, 0}
	p, err := NewParameters(growth, kinetic, drug, []float64{0.42, 0.05, 0, 0.03, 0}, 365, 5)
	require.NoError(t, err)

	dyn := NewDynamics(p, false)
	x := sde.State{0.42, 0.05, 0, 0.03, 0}
	dx := dyn.Drift(x, 0)

	// Transitions only move mass between compartments.
	sum := dx[Sensitive] + dx[PrimaryResistant] + dx[AcquiredResistant] + dx[Quiescent]
	assert.InDelta(t, 0, sum, 1e-15)
}

func TestDiffusionIsMultiplicative(t *testing.T) {
	p := defaultTestParams(t)
	dyn := NewDynamics(p, true)

	x := sde.State{0.4, 0.05, 0.01, 0.03, 2.5}
	g := dyn.Diffusion(x, 0)

	require.Len(t, g, Dim)
	for i, v := range x {
		assert.InDelta(t, p.Sigma*v, g[i], 1e-15)
	}
}
