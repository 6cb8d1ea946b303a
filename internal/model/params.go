package model

import (
	"fmt"

	"github.com/resimlab/resim/internal/sde"
)

// Defaults shared by all parameter sets unless overridden.
const (
	DefaultSigma            = 0.01
	DefaultCarryingCapacity = 500.0
)

// ValidationError names the parameter group that failed construction.
type ValidationError struct {
	Group  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Group, e.Reason)
}

// Parameters is the full, validated parameter set for one simulation. It is
// constructed once via NewParameters and not mutated afterward.
type Parameters struct {
	// Growth rates per proliferating compartment.
	GrowthSensitive float64
	GrowthPrimary   float64
	GrowthAcquired  float64

	// Kinetic transition rates between compartments.
	KSensToPrimary   float64 // ks_pr
	KSensToAcquired  float64 // ks_ar
	KSensToQuiescent float64 // ks_q
	KPrimaryToSens   float64 // kpr_s
	KPrimaryToQuiesc float64 // kpr_q
	KAcquiredToSens  float64 // kar_s
	KAcquiredToQui   float64 // kar_q
	KQuiescToSens    float64 // kq_s
	KQuiescToPrimary float64 // kq_pr
	KQuiescToAcq     float64 // kq_ar

	// Drug pharmacodynamics/pharmacokinetics.
	KI    float64 // inhibition constant
	QF    float64 // quiescence factor
	Dose  float64
	DSMax float64 // maximum drug-induced death rate
	KE    float64 // elimination rate

	// Initial state: sensitive, primary-resistant, acquired-resistant,
	// quiescent (fractions of carrying capacity) and drug concentration.
	Init [5]float64

	HorizonDays int
	Trials      int

	Sigma            float64
	CarryingCapacity float64
}

func checkNonNegative(group string, vals []float64) error {
	for _, v := range vals {
		if v < 0 {
			return &ValidationError{Group: group, Reason: "values must be non-negative"}
		}
	}
	return nil
}

// NewParameters validates and assembles a parameter set. Growth rates come in
// the order (sensitive, primary, acquired); kinetic rates in the order
// (ks_pr, ks_ar, ks_q, kpr_s, kpr_q, kar_s, kar_q, kq_s, kq_pr, kq_ar); drug
// constants in the order (ki, qf, dose, dsmax, ke).
func NewParameters(growth, kinetic, drug, init []float64, horizonDays, trials int) (Parameters, error) {
	var p Parameters

	if len(growth) != 3 {
		return p, &ValidationError{Group: "growth rates", Reason: "must have 3 elements"}
	}
	if err := checkNonNegative("growth rates", growth); err != nil {
		return p, err
	}
	if len(kinetic) != 10 {
		return p, &ValidationError{Group: "kinetic rates", Reason: "must have 10 elements"}
	}
	if err := checkNonNegative("kinetic rates", kinetic); err != nil {
		return p, err
	}
	if len(drug) != 5 {
		return p, &ValidationError{Group: "drug constants", Reason: "must have 5 elements"}
	}
	if err := checkNonNegative("drug constants", drug); err != nil {
		return p, err
	}
	if len(init) != 5 {
		return p, &ValidationError{Group: "initial state", Reason: "must have 5 elements"}
	}
	if horizonDays < 0 {
		return p, &ValidationError{Group: "horizon", Reason: "must be non-negative"}
	}
	if trials < 1 {
		return p, &ValidationError{Group: "trial count", Reason: "must be positive"}
	}

	p.GrowthSensitive = growth[0]
	p.GrowthPrimary = growth[1]
	p.GrowthAcquired = growth[2]

	p.KSensToPrimary = kinetic[0]
	p.KSensToAcquired = kinetic[1]
	p.KSensToQuiescent = kinetic[2]
	p.KPrimaryToSens = kinetic[3]
	p.KPrimaryToQuiesc = kinetic[4]
	p.KAcquiredToSens = kinetic[5]
	p.KAcquiredToQui = kinetic[6]
	p.KQuiescToSens = kinetic[7]
	p.KQuiescToPrimary = kinetic[8]
	p.KQuiescToAcq = kinetic[9]

	p.KI = drug[0]
	p.QF = drug[1]
	p.Dose = drug[2]
	p.DSMax = drug[3]
	p.KE = drug[4]

	copy(p.Init[:], init)

	p.HorizonDays = horizonDays
	p.Trials = trials
	p.Sigma = DefaultSigma
	p.CarryingCapacity = DefaultCarryingCapacity

	return p, nil
}

// DefaultParameters is the reference parameterization: first-line
// chemotherapy of a hepatocellular-carcinoma-like tumor over one year.
func DefaultParameters() Parameters {
	p, err := NewParameters(
		[]float64{0.015, 0.015, 0.015},
		[]float64{1e-6, 1e-4, 5e-4, 1e-6, 5e-4, 1e-6, 5e-4, 5e-4, 5e-4, 5e-4},
		[]float64{10, 10, 240, 0.9, 0.7},
		[]float64{0.42, 0.05, 0, 0.03, 0},
		365, 50,
	)
	if err != nil {
		panic(err) // defaults are static and always valid
	}
	return p
}

// Grid returns the evaluation grid: HorizonDays+1 integer day points.
func (p Parameters) Grid() []float64 {
	return sde.UniformGrid(p.HorizonDays)
}

// InitialBurden is the initial total tumor burden (cell compartments only).
func (p Parameters) InitialBurden() float64 {
	return p.Init[0] + p.Init[1] + p.Init[2] + p.Init[3]
}

// ProgressionThreshold is the clinical progression cutoff used for
// first-hitting-time extraction: 3.5x the initial tumor burden.
func (p Parameters) ProgressionThreshold() float64 {
	return p.InitialBurden() * 3.5
}
