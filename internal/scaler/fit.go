package scaler

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// minSpread is the smallest spread treated as non-degenerate; below it the scale is 1.
const minSpread = 1e-10

// fitStandard centres on the mean and divides by the population standard deviation.
func fitStandard(values []float64) (center, scale float64) {
	mean := stat.Mean(values, nil)
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return mean, spreadOrOne(math.Sqrt(sumSq / float64(len(values))))
}

// fitMinMax maps the observed [min, max] onto [0, 1].
func fitMinMax(values []float64) (center, scale float64) {
	lo, hi := floats.Min(values), floats.Max(values)
	return lo, spreadOrOne(hi - lo)
}

// fitRobust centres on the median and divides by the interquartile range.
func fitRobust(values []float64) (center, scale float64) {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return percentile(sorted, 0.5), spreadOrOne(percentile(sorted, 0.75) - percentile(sorted, 0.25))
}

// fitNormalizer divides by the L2 norm of the whole column. A per-row unit norm
// on a single feature would map every price to ±1 and could not be inverted.
func fitNormalizer(values []float64) (center, scale float64) {
	return 0, spreadOrOne(floats.Norm(values, 2))
}

// percentile returns the p-quantile of sorted data using linear interpolation
// between closest ranks, position p*(n-1).
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func spreadOrOne(s float64) float64 {
	if s < minSpread || math.IsNaN(s) {
		return 1
	}
	return s
}
