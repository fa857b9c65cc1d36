package forecast

import (
	"fmt"

	"StockForecaster/internal/metrics"
	"StockForecaster/internal/model"
	"StockForecaster/internal/scaler"
)

// Forecast predicts days values beyond the end of scaled. Each step feeds the
// scaled prediction back in as the newest point of the rolling window, so step
// k+1 always consumes the output of step k. Returned values are prices.
func Forecast(p Predictor, sc scaler.Scaler, scaled []float64, window, days int) ([]float64, error) {
	if days <= 0 {
		return nil, &model.ConfigError{Field: "days", Reason: fmt.Sprintf("must be positive, got %d", days)}
	}
	if window <= 0 {
		return nil, &model.ConfigError{Field: "window", Reason: fmt.Sprintf("must be positive, got %d", window)}
	}
	if len(scaled) < window {
		return nil, &model.DataError{Reason: fmt.Sprintf("need %d rows to seed the forecast window, have %d", window, len(scaled))}
	}

	ring := newRing(scaled[len(scaled)-window:])
	view := make([]float64, window)
	out := make([]float64, days)
	for k := 0; k < days; k++ {
		next := p.Predict(ring.ordered(view))
		out[k] = sc.InverseValue(next)
		ring.push(next)
	}
	metrics.ForecastStepsTotal.Add(float64(days))
	return out, nil
}

// ring is a fixed-capacity buffer holding the most recent window values.
type ring struct {
	buf  []float64
	head int // index of the oldest value
}

func newRing(seed []float64) *ring {
	buf := make([]float64, len(seed))
	copy(buf, seed)
	return &ring{buf: buf}
}

// push overwrites the oldest value with v.
func (r *ring) push(v float64) {
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
}

// ordered writes the values oldest-first into dst and returns it.
func (r *ring) ordered(dst []float64) []float64 {
	n := len(r.buf)
	for i := 0; i < n; i++ {
		dst[i] = r.buf[(r.head+i)%n]
	}
	return dst
}
