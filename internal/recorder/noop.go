package recorder

import "StockForecaster/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *model.ForecastResult) error { return nil }
func (n *NoopRecorder) RecordFailure(_ *Failure) error          { return nil }
func (n *NoopRecorder) Close() error                            { return nil }
