package config

import "sort"

// Presets are named starting points for common scenarios. "first-line" is
// the reference parameterization; the others vary the dosing arm only.
var presets = map[string]*Config{
	"first-line": DefaultConfig(),
	"high-dose": {
		GrowthRates:   []float64{0.015, 0.015, 0.015},
		KineticRates:  []float64{1e-6, 1e-4, 5e-4, 1e-6, 5e-4, 1e-6, 5e-4, 5e-4, 5e-4, 5e-4},
		DrugConstants: []float64{10, 10, 480, 0.9, 0.7},
		InitialState:  []float64{0.42, 0.05, 0, 0.03, 0},
		HorizonDays:   365,
		Trials:        50,
	},
	"untreated": {
		GrowthRates:   []float64{0.015, 0.015, 0.015},
		KineticRates:  []float64{1e-6, 1e-4, 5e-4, 1e-6, 5e-4, 1e-6, 5e-4, 5e-4, 5e-4, 5e-4},
		DrugConstants: []float64{10, 10, 0, 0.9, 0.7},
		InitialState:  []float64{0.42, 0.05, 0, 0.03, 0},
		HorizonDays:   365,
		Trials:        50,
	},
	"aggressive": {
		GrowthRates:   []float64{0.03, 0.03, 0.03},
		KineticRates:  []float64{1e-6, 1e-4, 5e-4, 1e-6, 5e-4, 1e-6, 5e-4, 5e-4, 5e-4, 5e-4},
		DrugConstants: []float64{10, 10, 240, 0.9, 0.7},
		InitialState:  []float64{0.42, 0.05, 0, 0.03, 0},
		HorizonDays:   365,
		Trials:        50,
	},
}

// GetPreset returns a copy of the named preset, or nil if unknown.
func GetPreset(name string) *Config {
	p, ok := presets[name]
	if !ok {
		return nil
	}
	c := *p
	c.GrowthRates = append([]float64(nil), p.GrowthRates...)
	c.KineticRates = append([]float64(nil), p.KineticRates...)
	c.DrugConstants = append([]float64(nil), p.DrugConstants...)
	c.InitialState = append([]float64(nil), p.InitialState...)
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
