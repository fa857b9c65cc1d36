package model

import "time"

// ForecastMode selects between the preset quick forecast and a fully customised one.
type ForecastMode string

const (
	ModeQuick  ForecastMode = "quick"
	ModeCustom ForecastMode = "custom"
)

// Scaler fitting policies.
const (
	FitOnFullSeries = "fullSeries"
	FitOnTrainOnly  = "trainOnly"
)

// WindowPresets are the window sizes offered by the custom forecast mode.
var WindowPresets = []int{20, 40, 60, 80, 100, 120, 140, 180}

// TrainFractionPresets are the train sizes offered by the custom forecast mode.
var TrainFractionPresets = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}

// ForecastSettings is the user-facing forecast configuration.
// Names are resolved into typed values once, when a pipeline is built.
type ForecastSettings struct {
	Mode            ForecastMode `yaml:"mode" json:"mode"`
	Window          int          `yaml:"window" json:"window"`
	TrainFraction   float64      `yaml:"train_fraction" json:"train_fraction"`
	Scaler          string       `yaml:"scaler" json:"scaler"`
	FitScalerOn     string       `yaml:"fit_scaler_on" json:"fit_scaler_on"`
	Optimizer       string       `yaml:"optimizer" json:"optimizer"`
	LearningRate    float64      `yaml:"learning_rate" json:"learning_rate"`
	Loss            string       `yaml:"loss" json:"loss"`
	Epochs          int          `yaml:"epochs" json:"epochs"`
	BatchSize       int          `yaml:"batch_size" json:"batch_size"`
	DenseActivation string       `yaml:"dense_activation" json:"dense_activation"`
	Days            int          `yaml:"days" json:"days"`
	Seed            int64        `yaml:"seed" json:"seed"`
}

// DefaultForecastSettings returns the quick-forecast preset.
func DefaultForecastSettings() ForecastSettings {
	return ForecastSettings{
		Mode:            ModeQuick,
		Window:          60,
		TrainFraction:   0.8,
		Scaler:          "MinMaxScaler",
		FitScalerOn:     FitOnFullSeries,
		Optimizer:       "Adam",
		LearningRate:    0.0001,
		Loss:            "meanSquaredError",
		Epochs:          1,
		BatchSize:       1,
		DenseActivation: "linear",
		Days:            5,
		Seed:            42,
	}
}

// Quick keeps only the horizon of s and resets every model knob to the quick preset.
func (s ForecastSettings) Quick() ForecastSettings {
	q := DefaultForecastSettings()
	q.Days = s.Days
	q.Seed = s.Seed
	return q
}

// AccuracyMetrics are point-accuracy diagnostics over the test split.
// Undefined values are NaN.
type AccuracyMetrics struct {
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	MSE  float64 `json:"mse"`
	R2   float64 `json:"r2"`
	MAPE float64 `json:"mape"`
}

// PredictionPoint pairs a test-period close with the model's prediction for that date.
type PredictionPoint struct {
	Date      time.Time `json:"date"`
	Actual    float64   `json:"actual"`
	Predicted float64   `json:"predicted"`
}

// ForecastPoint is one future business day and its predicted price.
type ForecastPoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// ForecastResult is everything a run produces for the presentation layer.
type ForecastResult struct {
	RunID        string            `json:"run_id"`
	Symbol       string            `json:"symbol"`
	Settings     ForecastSettings  `json:"settings"`
	Rows         int               `json:"rows"`
	TrainLen     int               `json:"train_len"`
	TrainPairs   int               `json:"train_pairs"`
	EpochLoss    []float64         `json:"epoch_loss"`
	Predictions  []PredictionPoint `json:"predictions"`
	Metrics      AccuracyMetrics   `json:"metrics"`
	Forecast     []ForecastPoint   `json:"forecast"`
	DataEnd      time.Time         `json:"data_end"`
	StartedAt    time.Time         `json:"started_at"`
	TrainingTime time.Duration     `json:"training_time"`
	Duration     time.Duration     `json:"duration"`
}
