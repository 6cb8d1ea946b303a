package model

import "github.com/resimlab/resim/internal/sde"

// State vector layout shared by the model and its consumers.
const (
	Sensitive = iota
	PrimaryResistant
	AcquiredResistant
	Quiescent
	Concentration
	Dim
)

// cellEps is the floor below which a cell compartment is treated as empty
// when evaluating the drift. Solver overshoot can push compartments slightly
// negative; without the floor the negative mass feeds back through the
// transition terms.
const cellEps = 1e-8

// Dynamics is the chemoresistance SDE system for one dosing regime. The
// regime is fixed at construction: doseActive selects the dose-on equations,
// the control regime runs with the dose forced off.
type Dynamics struct {
	p          Parameters
	doseActive bool
}

func NewDynamics(p Parameters, doseActive bool) *Dynamics {
	return &Dynamics{p: p, doseActive: doseActive}
}

func (d *Dynamics) Dim() int { return Dim }

// DoseActive reports which regime this system was built for.
func (d *Dynamics) DoseActive() bool { return d.doseActive }

// clamp returns a working copy with sub-threshold cell compartments zeroed
// and negative drug concentration zeroed.
func (d *Dynamics) clamp(x sde.State) sde.State {
	c := x.Clone()
	for i := Sensitive; i <= Quiescent; i++ {
		if c[i] < cellEps {
			c[i] = 0
		}
	}
	if c[Concentration] < 0 {
		c[Concentration] = 0
	}
	return c
}

// growth is logistic growth capped by total tumor burden across all four
// cell compartments.
func (d *Dynamics) growth(rate float64, x sde.State) float64 {
	burden := x[Sensitive] + x[PrimaryResistant] + x[AcquiredResistant] + x[Quiescent]
	return rate * (1 - burden/d.p.CarryingCapacity)
}

// death is the saturating drug-induced death rate for sensitive cells.
func (d *Dynamics) death(conc float64) float64 {
	return d.p.DSMax * conc / (d.p.KI + conc)
}

// quiescereSensitive is the sensitive-to-quiescent entry rate: drug-induced
// while drug is present, baseline otherwise.
func (d *Dynamics) quiescereSensitive(conc float64) float64 {
	if conc > 0 {
		return d.p.KSensToQuiescent * d.p.QF * conc / (d.p.KI + conc)
	}
	return d.p.KSensToQuiescent
}

func (d *Dynamics) Drift(x sde.State, t float64) sde.State {
	w := d.clamp(x)
	p := d.p

	s := w[Sensitive]
	pr := w[PrimaryResistant]
	ar := w[AcquiredResistant]
	q := w[Quiescent]
	conc := w[Concentration]

	dx := make(sde.State, Dim)

	if !d.doseActive {
		dx[Sensitive] = (d.growth(p.GrowthSensitive, w)-d.quiescereSensitive(conc)-p.KSensToPrimary)*s +
			p.KPrimaryToSens*pr + p.KQuiescToSens*q
		dx[PrimaryResistant] = (d.growth(p.GrowthPrimary, w)-p.KPrimaryToQuiesc-p.KPrimaryToSens)*pr +
			p.KSensToPrimary*s + p.KQuiescToPrimary*q
		dx[AcquiredResistant] = 0
		dx[Quiescent] = -(p.KQuiescToSens+p.KQuiescToPrimary)*q +
			d.quiescereSensitive(conc)*s + p.KPrimaryToQuiesc*pr
		dx[Concentration] = 0
		return dx
	}

	dx[Sensitive] = (d.growth(p.GrowthSensitive, w)-d.quiescereSensitive(conc)-p.KSensToAcquired-d.death(conc))*s +
		p.KPrimaryToSens*pr + p.KAcquiredToSens*ar + p.KQuiescToSens*q
	dx[PrimaryResistant] = (d.growth(p.GrowthPrimary, w) - p.KPrimaryToQuiesc - p.KPrimaryToSens) * pr
	dx[AcquiredResistant] = (d.growth(p.GrowthAcquired, w)-p.KAcquiredToQui-p.KAcquiredToSens)*ar +
		p.KSensToAcquired*s + p.KQuiescToAcq*q
	dx[Quiescent] = -(p.KQuiescToSens+p.KQuiescToAcq)*q +
		d.quiescereSensitive(conc)*s + p.KPrimaryToQuiesc*pr + p.KAcquiredToQui*ar
	dx[Concentration] = p.Dose - p.KE*conc
	return dx
}

// Diffusion is diagonal multiplicative noise: sigma scaled by the clamped
// state, per compartment.
func (d *Dynamics) Diffusion(x sde.State, t float64) sde.State {
	w := d.clamp(x)
	g := make(sde.State, Dim)
	for i := range g {
		g[i] = d.p.Sigma * w[i]
	}
	return g
}
