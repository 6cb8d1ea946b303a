package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resimlab/resim/internal/model"
	"github.com/resimlab/resim/internal/sde"
)

func testParams(t *testing.T, trials, horizon int) model.Parameters {
	t.Helper()
	p, err := model.NewParameters(
		[]float64{0.015, 0.015, 0.015},
		[]float64{1e-6, 1e-4, 5e-4, 1e-6, 5e-4, 1e-6, 5e-4, 5e-4, 5e-4, 5e-4},
		[]float64{10, 10, 240, 0.9, 0.7},
		[]float64{0.42, 0.05, 0, 0.03, 0},
		horizon, trials,
	)
	require.NoError(t, err)
	return p
}

func TestSimulateShape(t *testing.T) {
	p := testParams(t, 5, 30)
	out, err := Simulate(context.Background(), p, Config{Seed: 7})
	require.NoError(t, err)

	for _, res := range []*Result{out.Control, out.Case} {
		assert.Len(t, res.HittingTimes, 5)
		assert.Len(t, res.Cells, 5*31)
		assert.Len(t, res.Drugs, 5*31)

		// Rows are trial-major and day-aligned.
		for trial := 0; trial < 5; trial++ {
			for day := 0; day <= 30; day++ {
				row := res.Cells[trial*31+day]
				assert.Equal(t, trial, row.Trial)
				assert.Equal(t, day, row.Day)
			}
		}
	}
}

func TestControlAcquiredResistantStaysZero(t *testing.T) {
	p := testParams(t, 5, 30)
	out, err := Simulate(context.Background(), p, Config{Seed: 7})
	require.NoError(t, err)

	// The compartment is inert without dose and starts empty, so it never
	// acquires mass, noise included.
	for _, row := range out.Control.Cells {
		assert.Zero(t, row.AcquiredResistant)
	}
}

func TestRecordedBurdenNonNegative(t *testing.T) {
	p := testParams(t, 10, 60)
	out, err := Simulate(context.Background(), p, Config{Seed: 99})
	require.NoError(t, err)

	for _, res := range []*Result{out.Control, out.Case} {
		for _, row := range res.Cells {
			assert.GreaterOrEqual(t, row.Sensitive, 0.0)
			assert.GreaterOrEqual(t, row.PrimaryResistant, 0.0)
			assert.GreaterOrEqual(t, row.AcquiredResistant, 0.0)
			assert.GreaterOrEqual(t, row.Quiescent, 0.0)
			assert.GreaterOrEqual(t, row.Total, 0.0)
		}
		for _, row := range res.Drugs {
			assert.GreaterOrEqual(t, row.Concentration, 0.0)
		}
	}
}

func TestHittingTimeMatchesTable(t *testing.T) {
	// Fast growth guarantees progression well inside the horizon.
	p, err := model.NewParameters(
		[]float64{0.2, 0.2, 0.2},
		[]float64{1e-6, 1e-4, 5e-4, 1e-6, 5e-4, 1e-6, 5e-4, 5e-4, 5e-4, 5e-4},
		[]float64{10, 10, 0, 0.9, 0.7},
		[]float64{0.42, 0.05, 0, 0.03, 0},
		60, 4,
	)
	require.NoError(t, err)

	res, err := RunTrials(context.Background(), p, false, 3, 0)
	require.NoError(t, err)

	cth := p.ProgressionThreshold()
	days := p.HorizonDays + 1
	for trial, ht := range res.HittingTimes {
		require.True(t, ht.Observed, "trial %d should progress", trial)

		first := -1
		for day := 0; day < days; day++ {
			if res.Cells[trial*days+day].Total > cth {
				first = day
				break
			}
		}
		assert.Equal(t, first, ht.Day)
	}
}

func TestCensoredWhenBurdenRecedesBelowThreshold(t *testing.T) {
	days := 3
	res := &Result{
		Cells:        make([]CellRow, days),
		Drugs:        make([]DrugRow, days),
		HittingTimes: make([]HittingTime, 1),
	}

	// Crosses cth=3.5 on day 1 but ends below it: censored, not observed.
	path := []sde.State{
		{1, 0, 0, 0, 0},
		{5, 0, 0, 0, 0},
		{2, 0, 0, 0, 0},
	}
	recordTrial(res, path, 0, days, 3.5)
	assert.False(t, res.HittingTimes[0].Observed)
}

func TestHittingTimeIsFirstCrossingWhenFinalDayAboveThreshold(t *testing.T) {
	days := 4
	res := &Result{
		Cells:        make([]CellRow, days),
		Drugs:        make([]DrugRow, days),
		HittingTimes: make([]HittingTime, 1),
	}

	// Dips back under cth after the first crossing, but the final day is
	// above it, so the hitting time is the first crossing.
	path := []sde.State{
		{1, 0, 0, 0, 0},
		{5, 0, 0, 0, 0},
		{2, 0, 0, 0, 0},
		{6, 0, 0, 0, 0},
	}
	recordTrial(res, path, 0, days, 3.5)
	require.True(t, res.HittingTimes[0].Observed)
	assert.Equal(t, 1, res.HittingTimes[0].Day)
}

func TestCensoredWhenThresholdNeverCrossed(t *testing.T) {
	// No growth and no transitions: burden only jitters around its initial
	// value and cannot reach 3.5x of it.
	p, err := model.NewParameters(
		make([]float64, 3),
		make([]float64, 10),
		[]float64{10, 10, 0, 0, 0},
		[]float64{0.42, 0.05, 0, 0.03, 0},
		30, 5,
	)
	require.NoError(t, err)

	res, err := RunTrials(context.Background(), p, false, 11, 0)
	require.NoError(t, err)

	for _, ht := range res.HittingTimes {
		assert.False(t, ht.Observed)
	}
}

func TestSimulateDeterministicForFixedSeed(t *testing.T) {
	p := testParams(t, 5, 30)
	cfg := Config{Seed: 1234}

	a, err := Simulate(context.Background(), p, cfg)
	require.NoError(t, err)
	b, err := Simulate(context.Background(), p, cfg)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestParallelMatchesSequential(t *testing.T) {
	p := testParams(t, 8, 30)

	seq, err := Simulate(context.Background(), p, Config{Seed: 5, Workers: 0})
	require.NoError(t, err)
	par, err := Simulate(context.Background(), p, Config{Seed: 5, Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, seq, par)
}

func TestRegimesUseIndependentStreams(t *testing.T) {
	p := testParams(t, 3, 30)
	out, err := Simulate(context.Background(), p, Config{Seed: 21})
	require.NoError(t, err)

	// Same day-zero rows, different noise afterwards.
	assert.Equal(t, out.Control.Cells[0], out.Case.Cells[0])
	assert.NotEqual(t, out.Control.Cells, out.Case.Cells)
}

func TestSimulateCanceledContext(t *testing.T) {
	p := testParams(t, 5, 30)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Simulate(ctx, p, Config{Seed: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEndToEndScenario(t *testing.T) {
	p := testParams(t, 5, 365)
	out, err := Simulate(context.Background(), p, Config{Seed: 2026})
	require.NoError(t, err)

	assert.Len(t, out.Control.HittingTimes, 5)
	assert.Len(t, out.Case.HittingTimes, 5)
	assert.Len(t, out.Control.Cells, 5*366)
	assert.Len(t, out.Case.Cells, 5*366)

	// Untreated tumors at these growth rates always progress within a year.
	for _, ht := range out.Control.HittingTimes {
		assert.True(t, ht.Observed)
	}

	// The control regime never carries drug.
	for _, row := range out.Control.Drugs {
		assert.Zero(t, row.Concentration)
	}
}
