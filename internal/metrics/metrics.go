package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecast_runs_total",
			Help: "Total number of forecast pipeline runs by outcome",
		},
		[]string{"status"},
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forecast_training_duration_seconds",
			Help:    "Wall time spent fitting the sequence model",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		},
	)

	EpochsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forecast_training_epochs_total",
			Help: "Total number of completed training epochs",
		},
	)

	LastEpochLoss = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "forecast_last_epoch_loss",
			Help: "Mean loss of the most recently completed training epoch",
		},
	)

	ForecastStepsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forecast_steps_total",
			Help: "Total number of iterative forecast steps predicted",
		},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "forecast_fetch_duration_seconds",
			Help: "Historical price fetch duration",
		},
		[]string{"source"},
	)
)

// Outcome labels for RunsTotal.
const (
	StatusOK          = "ok"
	StatusConfigError = "config_error"
	StatusDataError   = "data_error"
	StatusFailed      = "failed"
)
