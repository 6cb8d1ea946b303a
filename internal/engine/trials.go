package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/resimlab/resim/internal/model"
	"github.com/resimlab/resim/internal/sde"
)

// CellRow is one (trial, day) sample of the four cell compartments plus
// their total burden.
type CellRow struct {
	Sensitive         float64
	PrimaryResistant  float64
	AcquiredResistant float64
	Quiescent         float64
	Total             float64
	Trial             int
	Day               int
}

// DrugRow is one (trial, day) sample of the drug concentration.
type DrugRow struct {
	Concentration float64
	Trial         int
	Day           int
}

// HittingTime records when a trial's total burden first exceeded the
// progression threshold. Observed is false when the trial is censored: the
// burden ends the horizon below the threshold, even if it crossed it along
// the way.
type HittingTime struct {
	Day      int
	Observed bool
}

// Result holds the combined tables for one regime. Rows are trial-major:
// trial t occupies rows [t*(days+1), (t+1)*(days+1)).
type Result struct {
	Cells        []CellRow
	Drugs        []DrugRow
	HittingTimes []HittingTime
}

// Config carries run-level knobs that are not part of the model parameters.
// Workers <= 1 runs trials sequentially; larger values fan trials out across
// goroutines, each writing its own pre-sized slot, so results are identical
// either way.
type Config struct {
	Seed    int64
	Workers int
}

// RunTrials integrates p.Trials independent sample paths for one regime and
// aggregates them. Trial i uses the random stream seeded with seed+i, which
// keeps the output deterministic for a fixed seed regardless of Workers.
func RunTrials(ctx context.Context, p model.Parameters, doseActive bool, seed int64, workers int) (*Result, error) {
	grid := p.Grid()
	days := len(grid)

	res := &Result{
		Cells:        make([]CellRow, p.Trials*days),
		Drugs:        make([]DrugRow, p.Trials*days),
		HittingTimes: make([]HittingTime, p.Trials),
	}

	dyn := model.NewDynamics(p, doseActive)
	cth := p.ProgressionThreshold()

	runOne := func(trial int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		integ := sde.NewEulerMaruyama(seed + int64(trial))
		path, err := integ.Integrate(dyn, sde.State(p.Init[:]), grid)
		if err != nil {
			return fmt.Errorf("trial %d: %w", trial, err)
		}
		recordTrial(res, path, trial, days, cth)
		return nil
	}

	if workers <= 1 {
		for i := 0; i < p.Trials; i++ {
			if err := runOne(i); err != nil {
				return nil, err
			}
		}
		return res, nil
	}

	errs := make([]error, p.Trials)
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := 0; i < p.Trials; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(trial int) {
			defer wg.Done()
			defer func() { <-sem }()
			errs[trial] = runOne(trial)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// recordTrial copies one sample path into the trial's reserved rows,
// flooring negative numerical noise at zero so recorded burdens are always
// non-negative, and extracts the trial's hitting time. Progression counts
// only when the path ends above the threshold: a trial whose burden crosses
// cth mid-run but recedes below it by the final day is censored.
func recordTrial(res *Result, path []sde.State, trial, days int, cth float64) {
	base := trial * days

	for day, x := range path {
		s := nonNeg(x[model.Sensitive])
		pr := nonNeg(x[model.PrimaryResistant])
		ar := nonNeg(x[model.AcquiredResistant])
		q := nonNeg(x[model.Quiescent])
		total := s + pr + ar + q

		res.Cells[base+day] = CellRow{
			Sensitive:         s,
			PrimaryResistant:  pr,
			AcquiredResistant: ar,
			Quiescent:         q,
			Total:             total,
			Trial:             trial,
			Day:               day,
		}
		res.Drugs[base+day] = DrugRow{
			Concentration: nonNeg(x[model.Concentration]),
			Trial:         trial,
			Day:           day,
		}
	}

	hit := HittingTime{}
	if res.Cells[base+days-1].Total >= cth {
		for day := 0; day < days; day++ {
			if res.Cells[base+day].Total > cth {
				hit = HittingTime{Day: day, Observed: true}
				break
			}
		}
	}
	res.HittingTimes[trial] = hit
}

func nonNeg(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
