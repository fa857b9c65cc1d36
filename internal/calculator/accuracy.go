package calculator

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// mapeEpsilon is the float64 machine epsilon, used as the lower bound of |actual| in MAPE.
const mapeEpsilon = 2.220446049250313e-16

// MSE returns the mean squared error. NaN when the inputs are empty or of different length.
func MSE(actual, predicted []float64) float64 {
	if !paired(actual, predicted) {
		return math.NaN()
	}
	sum := 0.0
	for i := range actual {
		d := actual[i] - predicted[i]
		sum += d * d
	}
	return sum / float64(len(actual))
}

// RMSE returns the root of MSE.
func RMSE(actual, predicted []float64) float64 {
	return math.Sqrt(MSE(actual, predicted))
}

// MAE returns the mean absolute error.
func MAE(actual, predicted []float64) float64 {
	if !paired(actual, predicted) {
		return math.NaN()
	}
	diff := make([]float64, len(actual))
	floats.SubTo(diff, actual, predicted)
	for i, d := range diff {
		diff[i] = math.Abs(d)
	}
	return stat.Mean(diff, nil)
}

// R2 returns the coefficient of determination.
// A constant actual series has no variance to explain and yields NaN.
func R2(actual, predicted []float64) float64 {
	if !paired(actual, predicted) {
		return math.NaN()
	}
	mean := stat.Mean(actual, nil)
	var ssRes, ssTot float64
	for i := range actual {
		r := actual[i] - predicted[i]
		t := actual[i] - mean
		ssRes += r * r
		ssTot += t * t
	}
	if ssTot == 0 {
		return math.NaN()
	}
	return 1 - ssRes/ssTot
}

// MAPE returns the mean absolute percentage error as a fraction (0.05 == 5%).
func MAPE(actual, predicted []float64) float64 {
	if !paired(actual, predicted) {
		return math.NaN()
	}
	sum := 0.0
	for i := range actual {
		sum += math.Abs(actual[i]-predicted[i]) / math.Max(math.Abs(actual[i]), mapeEpsilon)
	}
	return sum / float64(len(actual))
}

func paired(actual, predicted []float64) bool {
	return len(actual) > 0 && len(actual) == len(predicted)
}
