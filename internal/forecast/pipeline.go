package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"StockForecaster/internal/calculator"
	"StockForecaster/internal/lstm"
	"StockForecaster/internal/metrics"
	"StockForecaster/internal/model"
	"StockForecaster/internal/scaler"
)

// Pipeline runs scale -> split -> window -> train -> evaluate -> forecast for one
// price series. Every name in the settings is resolved once, in NewPipeline.
// A Pipeline holds no model state; each Run trains its own network.
type Pipeline struct {
	settings  model.ForecastSettings
	scaler    scaler.Kind
	trainOnly bool
	trainer   *lstm.Trainer
}

// Option customises a Pipeline.
type Option func(*lstm.TrainConfig)

// WithArchitecture overrides the layer widths.
func WithArchitecture(arch lstm.Architecture) Option {
	return func(c *lstm.TrainConfig) { c.Architecture = arch }
}

// NewPipeline validates s and resolves it into typed configuration.
// All failures are *model.ConfigError.
func NewPipeline(s model.ForecastSettings, opts ...Option) (*Pipeline, error) {
	switch s.Mode {
	case model.ModeQuick:
		s = s.Quick()
	case model.ModeCustom, "":
	default:
		return nil, &model.ConfigError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", s.Mode)}
	}
	if s.Window <= 0 {
		return nil, &model.ConfigError{Field: "window", Reason: fmt.Sprintf("must be positive, got %d", s.Window)}
	}
	if !(s.TrainFraction > 0 && s.TrainFraction <= 1) {
		return nil, &model.ConfigError{Field: "train_fraction", Reason: fmt.Sprintf("must be in (0, 1], got %v", s.TrainFraction)}
	}
	if s.Days <= 0 {
		return nil, &model.ConfigError{Field: "days", Reason: fmt.Sprintf("must be positive, got %d", s.Days)}
	}

	p := &Pipeline{settings: s}
	var err error
	if p.scaler, err = scaler.ParseKind(s.Scaler); err != nil {
		return nil, err
	}
	switch s.FitScalerOn {
	case model.FitOnFullSeries, "":
	case model.FitOnTrainOnly:
		p.trainOnly = true
	default:
		return nil, &model.ConfigError{Field: "fit_scaler_on", Reason: fmt.Sprintf("unknown policy %q", s.FitScalerOn)}
	}

	cfg := lstm.TrainConfig{
		Architecture: lstm.DefaultArchitecture(),
		LearningRate: s.LearningRate,
		Epochs:       s.Epochs,
		BatchSize:    s.BatchSize,
		Seed:         s.Seed,
		OnEpoch: func(_ int, loss float64) {
			metrics.EpochsTotal.Inc()
			if !math.IsNaN(loss) {
				metrics.LastEpochLoss.Set(loss)
			}
		},
	}
	if cfg.Optimizer, err = lstm.ParseOptimizer(s.Optimizer); err != nil {
		return nil, err
	}
	if cfg.Loss, err = lstm.ParseLoss(s.Loss); err != nil {
		return nil, err
	}
	if cfg.Activation, err = lstm.ParseActivation(s.DenseActivation); err != nil {
		return nil, err
	}
	for _, o := range opts {
		o(&cfg)
	}
	if p.trainer, err = lstm.NewTrainer(cfg); err != nil {
		return nil, err
	}
	return p, nil
}

// Settings returns the effective settings.
func (p *Pipeline) Settings() model.ForecastSettings { return p.settings }

// Run executes the whole pipeline synchronously. Configuration and data errors are
// detected before training starts.
func (p *Pipeline) Run(ctx context.Context, series *model.PriceSeries) (*model.ForecastResult, error) {
	res, err := p.run(ctx, series)
	switch {
	case err == nil:
		metrics.RunsTotal.WithLabelValues(metrics.StatusOK).Inc()
	case errors.Is(err, model.ErrConfiguration):
		metrics.RunsTotal.WithLabelValues(metrics.StatusConfigError).Inc()
	case errors.Is(err, model.ErrData):
		metrics.RunsTotal.WithLabelValues(metrics.StatusDataError).Inc()
	default:
		metrics.RunsTotal.WithLabelValues(metrics.StatusFailed).Inc()
	}
	return res, err
}

func (p *Pipeline) run(ctx context.Context, series *model.PriceSeries) (*model.ForecastResult, error) {
	started := time.Now()
	s := p.settings
	if series == nil {
		return nil, &model.DataError{Reason: "no price series"}
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	rows := series.Len()
	if rows < s.Window {
		return nil, &model.DataError{Reason: fmt.Sprintf("%d rows is shorter than one window of %d", rows, s.Window)}
	}
	trainLen := calculator.TrainLen(rows, s.TrainFraction)
	if trainLen <= s.Window {
		return nil, &model.ConfigError{
			Field:  "window",
			Reason: fmt.Sprintf("window %d must be smaller than the training split of %d rows", s.Window, trainLen),
		}
	}

	closes := calculator.Closes(series.Bars)
	dates := series.Dates()
	fitOn := closes
	if p.trainOnly {
		fitOn = closes[:trainLen]
	}
	sc, err := scaler.Fit(p.scaler, fitOn)
	if err != nil {
		return nil, err
	}
	scaled := sc.Transform(closes)

	x, y, err := TrainingWindows(scaled, s.Window, trainLen)
	if err != nil {
		return nil, fmt.Errorf("build training windows: %w", err)
	}

	runID := uuid.New().String()
	logger := log.With().Str("run_id", runID).Str("symbol", series.Symbol).Logger()
	logger.Info().
		Int("rows", rows).
		Int("train_len", trainLen).
		Int("train_pairs", len(x)).
		Int("test_rows", rows-trainLen).
		Str("scaler", sc.Kind().String()).
		Bool("scaler_train_only", p.trainOnly).
		Msg("forecast run started")

	trainStart := time.Now()
	net, err := p.trainer.Fit(ctx, x, y)
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	trainingTime := time.Since(trainStart)
	metrics.TrainingDuration.Observe(trainingTime.Seconds())

	ev, err := Evaluate(net, sc, scaled, closes, dates, trainLen, s.Window)
	if err != nil {
		return nil, err
	}
	values, err := Forecast(net, sc, scaled, s.Window, s.Days)
	if err != nil {
		return nil, err
	}

	end := dates[len(dates)-1]
	bdays := calculator.NextBusinessDays(end, s.Days)
	points := make([]model.ForecastPoint, len(values))
	for i, v := range values {
		points[i] = model.ForecastPoint{Date: bdays[i], Price: v}
	}

	res := &model.ForecastResult{
		RunID:        runID,
		Symbol:       series.Symbol,
		Settings:     s,
		Rows:         rows,
		TrainLen:     trainLen,
		TrainPairs:   len(x),
		EpochLoss:    net.LossHistory(),
		Predictions:  ev.Points,
		Metrics:      ev.Metrics,
		Forecast:     points,
		DataEnd:      end,
		StartedAt:    started,
		TrainingTime: trainingTime,
		Duration:     time.Since(started),
	}
	logger.Info().
		Float64("rmse", res.Metrics.RMSE).
		Float64("mape", res.Metrics.MAPE).
		Int("days", s.Days).
		Dur("elapsed", res.Duration).
		Msg("forecast run finished")
	return res, nil
}

// Job is a pipeline run executing on its own goroutine.
type Job struct {
	done   chan struct{}
	result *model.ForecastResult
	err    error
}

// Start runs the pipeline in the background. The result becomes visible only
// through Wait, after the run has fully completed.
func (p *Pipeline) Start(ctx context.Context, series *model.PriceSeries) *Job {
	j := &Job{done: make(chan struct{})}
	go func() {
		defer close(j.done)
		j.result, j.err = p.Run(ctx, series)
	}()
	return j
}

// Done is closed when the job has finished.
func (j *Job) Done() <-chan struct{} { return j.done }

// Wait blocks until the job has finished and returns its outcome.
func (j *Job) Wait() (*model.ForecastResult, error) {
	<-j.done
	return j.result, j.err
}
