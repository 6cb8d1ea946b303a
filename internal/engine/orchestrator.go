package engine

import (
	"context"
	"fmt"

	"github.com/resimlab/resim/internal/model"
)

// Output pairs the two regimes of one simulation: Control ran with the dose
// forced off, Case with the configured dose.
type Output struct {
	Control *Result
	Case    *Result
}

// Simulate runs the full experiment: the same parameter set once as an
// untreated control and once under the configured dose. The case regime's
// trials draw from streams offset past the control's, so the two regimes are
// statistically independent while the whole output stays reproducible from
// cfg.Seed. A failure in either regime fails the call; no partial output is
// returned.
func Simulate(ctx context.Context, p model.Parameters, cfg Config) (*Output, error) {
	control, err := RunTrials(ctx, p, false, cfg.Seed, cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("control regime: %w", err)
	}

	caseRes, err := RunTrials(ctx, p, p.Dose > 0, cfg.Seed+int64(p.Trials), cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("case regime: %w", err)
	}

	return &Output{Control: control, Case: caseRes}, nil
}
