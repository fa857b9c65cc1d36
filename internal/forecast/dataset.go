// Package forecast turns a price series into a trained sequence model, an
// accuracy report over the held-out tail, and an iterative forward forecast.
package forecast

import (
	"fmt"

	"StockForecaster/internal/model"
)

// BuildWindows returns the pairs (series[i-window:i], series[i]) for every i in
// [from, to). from must be at least window so every window has full history.
// An empty range yields no pairs and no error.
func BuildWindows(series []float64, window, from, to int) ([][]float64, []float64, error) {
	if window <= 0 {
		return nil, nil, &model.ConfigError{Field: "window", Reason: fmt.Sprintf("must be positive, got %d", window)}
	}
	if from < window {
		return nil, nil, &model.ConfigError{Field: "window", Reason: fmt.Sprintf("first label index %d precedes a full window of %d", from, window)}
	}
	if to > len(series) {
		return nil, nil, fmt.Errorf("last label index %d beyond series of length %d", to-1, len(series))
	}
	if to <= from {
		return nil, nil, nil
	}
	x := make([][]float64, 0, to-from)
	y := make([]float64, 0, to-from)
	for i := from; i < to; i++ {
		w := make([]float64, window)
		copy(w, series[i-window:i])
		x = append(x, w)
		y = append(y, series[i])
	}
	return x, y, nil
}

// TrainingWindows returns the windows whose labels fall inside the first trainLen rows.
func TrainingWindows(scaled []float64, window, trainLen int) ([][]float64, []float64, error) {
	return BuildWindows(scaled, window, window, trainLen)
}

// TestWindows returns one window per row of the test split. The first window
// reaches back into the last `window` rows of the training split.
func TestWindows(scaled []float64, window, trainLen int) ([][]float64, []float64, error) {
	return BuildWindows(scaled, window, trainLen, len(scaled))
}
