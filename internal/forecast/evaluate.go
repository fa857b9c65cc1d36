package forecast

import (
	"fmt"
	"time"

	"StockForecaster/internal/calculator"
	"StockForecaster/internal/model"
	"StockForecaster/internal/scaler"
)

// Predictor maps a window of scaled values to the next scaled value.
// Implementations must not retain the window slice.
type Predictor interface {
	Predict(window []float64) float64
}

// Evaluation is the model's accuracy over the test split.
type Evaluation struct {
	Points  []model.PredictionPoint
	Metrics model.AccuracyMetrics
}

// Evaluate predicts every test row from its trailing window, maps the predictions
// back to prices and scores them against the actual closes of the same rows.
func Evaluate(p Predictor, sc scaler.Scaler, scaled, closes []float64, dates []time.Time, trainLen, window int) (*Evaluation, error) {
	if len(scaled) != len(closes) || len(closes) != len(dates) {
		return nil, fmt.Errorf("evaluate: scaled=%d closes=%d dates=%d rows disagree", len(scaled), len(closes), len(dates))
	}
	if trainLen < window || trainLen > len(closes) {
		return nil, &model.ConfigError{Field: "train_len", Reason: fmt.Sprintf("must be from window %d to rows %d, got %d", window, len(closes), trainLen)}
	}
	x, _, err := TestWindows(scaled, window, trainLen)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	predScaled := make([]float64, len(x))
	for i, w := range x {
		predScaled[i] = p.Predict(w)
	}
	predicted := sc.Inverse(predScaled)
	actual := closes[trainLen:]

	ev := &Evaluation{Points: make([]model.PredictionPoint, len(predicted))}
	for i := range predicted {
		ev.Points[i] = model.PredictionPoint{
			Date:      dates[trainLen+i],
			Actual:    actual[i],
			Predicted: predicted[i],
		}
	}
	ev.Metrics = model.AccuracyMetrics{
		RMSE: calculator.RMSE(actual, predicted),
		MAE:  calculator.MAE(actual, predicted),
		MSE:  calculator.MSE(actual, predicted),
		R2:   calculator.R2(actual, predicted),
		MAPE: calculator.MAPE(actual, predicted),
	}
	return ev, nil
}
