package recorder

import (
	"time"

	"StockForecaster/internal/model"
)

// Failure describes a forecast run that did not produce a result.
type Failure struct {
	Symbol   string
	Settings model.ForecastSettings
	Err      error
	At       time.Time
}

// Recorder persists forecast history for analysis.
type Recorder interface {
	RecordRun(res *model.ForecastResult) error
	RecordFailure(f *Failure) error
	Close() error
}
