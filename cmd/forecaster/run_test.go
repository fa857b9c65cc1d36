package main

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"StockForecaster/internal/model"
)

func TestResolveSettings_ModelFlagSwitchesToCustom(t *testing.T) {
	o := &runOptions{settings: model.DefaultForecastSettings()}
	cmd := newRunCmd(o)
	if err := cmd.Flags().Parse([]string{"--epochs", "4", "--days", "9"}); err != nil {
		t.Fatal(err)
	}
	cfg := model.DefaultForecastSettings()
	cfg.Optimizer = "SGD"
	s := resolveSettings(cmd.Flags(), cfg, o.settings)

	if s.Mode != model.ModeCustom || s.Epochs != 4 || s.Days != 9 {
		t.Errorf("expected custom mode, 4 epochs, 9 days, got %+v", s)
	}
	if s.Optimizer != "SGD" {
		t.Errorf("expected config optimizer to survive, got %s", s.Optimizer)
	}
}

func TestResolveSettings_DaysAloneKeepsQuickMode(t *testing.T) {
	o := &runOptions{settings: model.DefaultForecastSettings()}
	cmd := newRunCmd(o)
	if err := cmd.Flags().Parse([]string{"--days", "3"}); err != nil {
		t.Fatal(err)
	}
	s := resolveSettings(cmd.Flags(), model.DefaultForecastSettings(), o.settings)
	if s.Mode != model.ModeQuick || s.Days != 3 {
		t.Errorf("expected quick mode with 3 days, got %+v", s)
	}
}

func TestResolveSettings_ExplicitModeWins(t *testing.T) {
	o := &runOptions{settings: model.DefaultForecastSettings()}
	cmd := newRunCmd(o)
	if err := cmd.Flags().Parse([]string{"--mode", "quick", "--window", "20"}); err != nil {
		t.Fatal(err)
	}
	s := resolveSettings(cmd.Flags(), model.DefaultForecastSettings(), o.settings)
	if s.Mode != model.ModeQuick {
		t.Errorf("expected explicit quick mode, got %s", s.Mode)
	}
}

func TestParseDate(t *testing.T) {
	if d, err := parseDate("start", "2023-01-01"); err != nil || !d.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected 2023-01-01, got %s (%v)", d, err)
	}
	if d, err := parseDate("end", ""); err != nil || !d.IsZero() {
		t.Errorf("expected zero time, got %s (%v)", d, err)
	}
	if _, err := parseDate("start", "01/02/2023"); err == nil {
		t.Error("expected configuration error")
	}
}

func TestPrintReport(t *testing.T) {
	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	res := &model.ForecastResult{
		RunID:       "abc",
		Symbol:      "BBCA.JK",
		Settings:    model.DefaultForecastSettings(),
		Rows:        100,
		TrainLen:    80,
		Predictions: []model.PredictionPoint{{Date: d, Actual: 10, Predicted: 10.5}},
		Metrics:     model.AccuracyMetrics{RMSE: 0.5, MAE: 0.5, MSE: 0.25, R2: math.NaN(), MAPE: 0.05},
		Forecast:    []model.ForecastPoint{{Date: d.AddDate(0, 0, 3), Price: 10.75}},
		DataEnd:     d,
	}
	var buf bytes.Buffer
	if err := printReport(&buf, res); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"BBCA.JK", "train 80, test 20", "10.5000", "R2 n/a", "2024-03-04 Mon", "10.7500"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}
