package calculator

import (
	"math"

	"StockForecaster/internal/model"
)

// Closes extracts the closing-price column from bars.
func Closes(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// TrainLen returns the number of leading rows that form the training split:
// ceil(n * fraction), clamped to [0, n]. Products within 1e-9 of an integer
// count as that integer, so 100 * 0.7 gives 70 rather than 71.
func TrainLen(n int, fraction float64) int {
	l := int(math.Ceil(float64(n)*fraction - 1e-9))
	if l < 0 {
		return 0
	}
	if l > n {
		return n
	}
	return l
}
