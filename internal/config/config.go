package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/resimlab/resim/internal/model"
)

// Config is the yaml-facing shape of a simulation setup. It mirrors the
// parameter vectors as they appear in config files; Parameters() lowers it
// into the validated model.Parameters value the engine consumes.
type Config struct {
	GrowthRates   []float64 `yaml:"growth_rates" validate:"len=3,dive,gte=0"`
	KineticRates  []float64 `yaml:"kinetic_rates" validate:"len=10,dive,gte=0"`
	DrugConstants []float64 `yaml:"drug_constants" validate:"len=5,dive,gte=0"`
	InitialState  []float64 `yaml:"initial_state" validate:"len=5"`
	HorizonDays   int       `yaml:"horizon_days" validate:"gte=0"`
	Trials        int       `yaml:"trials" validate:"gte=1"`
	Seed          int64     `yaml:"seed"`
	Workers       int       `yaml:"workers" validate:"gte=0"`
}

var validate = validator.New()

func DefaultConfig() *Config {
	return &Config{
		GrowthRates:   []float64{0.015, 0.015, 0.015},
		KineticRates:  []float64{1e-6, 1e-4, 5e-4, 1e-6, 5e-4, 1e-6, 5e-4, 5e-4, 5e-4, 5e-4},
		DrugConstants: []float64{10, 10, 240, 0.9, 0.7},
		InitialState:  []float64{0.42, 0.05, 0, 0.03, 0},
		HorizonDays:   365,
		Trials:        50,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate runs the struct-tag checks. Domain-level validation happens again
// in model.NewParameters; this layer exists to reject malformed files with a
// field-level message before any work starts.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Parameters lowers the config into a validated model.Parameters.
func (c *Config) Parameters() (model.Parameters, error) {
	return model.NewParameters(c.GrowthRates, c.KineticRates, c.DrugConstants,
		c.InitialState, c.HorizonDays, c.Trials)
}
