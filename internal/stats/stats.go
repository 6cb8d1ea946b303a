// Package stats derives summary statistics from simulation results:
// hitting-time distributions and per-day percentile bands of the cell
// dynamics tables.
package stats

import (
	"math"
	"sort"

	"github.com/resimlab/resim/internal/engine"
)

// Quantile returns the p-quantile (0 <= p <= 1) of xs using linear
// interpolation between order statistics. xs need not be sorted.
func Quantile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// FHTSummary condenses one regime's hitting times.
type FHTSummary struct {
	Observed int
	Censored int
	Mean     float64 // over observed trials only
	Median   float64 // over observed trials only
	Days     []float64
}

// SummarizeFHT splits hitting times into observed and censored and computes
// location statistics over the observed subset.
func SummarizeFHT(times []engine.HittingTime) FHTSummary {
	sum := FHTSummary{}
	for _, ht := range times {
		if !ht.Observed {
			sum.Censored++
			continue
		}
		sum.Observed++
		sum.Days = append(sum.Days, float64(ht.Day))
	}
	if sum.Observed == 0 {
		sum.Mean = math.NaN()
		sum.Median = math.NaN()
		return sum
	}
	total := 0.0
	for _, d := range sum.Days {
		total += d
	}
	sum.Mean = total / float64(sum.Observed)
	sum.Median = Quantile(sum.Days, 0.5)
	return sum
}

// Band is a per-day percentile envelope of a trajectory column.
type Band struct {
	Lower  []float64
	Median []float64
	Upper  []float64
}

// BurdenBand computes the (lo, 0.5, hi) percentile envelope of total tumor
// burden across trials, one value per day. Rows are trial-major, so day d of
// trial t sits at t*days+d.
func BurdenBand(res *engine.Result, days int, lo, hi float64) Band {
	return columnBand(days, len(res.Cells)/days, lo, hi, func(i int) float64 {
		return res.Cells[i].Total
	})
}

// ConcentrationBand is BurdenBand for the drug-concentration table.
func ConcentrationBand(res *engine.Result, days int, lo, hi float64) Band {
	return columnBand(days, len(res.Drugs)/days, lo, hi, func(i int) float64 {
		return res.Drugs[i].Concentration
	})
}

func columnBand(days, trials int, lo, hi float64, at func(i int) float64) Band {
	band := Band{
		Lower:  make([]float64, days),
		Median: make([]float64, days),
		Upper:  make([]float64, days),
	}
	col := make([]float64, trials)
	for day := 0; day < days; day++ {
		for trial := 0; trial < trials; trial++ {
			col[trial] = at(trial*days + day)
		}
		band.Lower[day] = Quantile(col, lo)
		band.Median[day] = Quantile(col, 0.5)
		band.Upper[day] = Quantile(col, hi)
	}
	return band
}
