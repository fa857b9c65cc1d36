package calculator

import (
	"math"
	"testing"
)

func TestAccuracy_KnownValues(t *testing.T) {
	actual := []float64{3, -0.5, 2, 7}
	predicted := []float64{2.5, 0.0, 2, 8}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"MSE", MSE(actual, predicted), 0.375},
		{"RMSE", RMSE(actual, predicted), math.Sqrt(0.375)},
		{"MAE", MAE(actual, predicted), 0.5},
		{"R2", R2(actual, predicted), 0.9486081370449679},
		{"MAPE", MAPE(actual, []float64{3, -0.5, 2, 7}), 0},
	}
	for _, tt := range tests {
		if math.Abs(tt.got-tt.want) > 1e-9 {
			t.Errorf("%s: expected %.10f, got %.10f", tt.name, tt.want, tt.got)
		}
	}
}

func TestMAPE_Fraction(t *testing.T) {
	got := MAPE([]float64{100, 200}, []float64{110, 180})
	if math.Abs(got-0.1) > 1e-12 {
		t.Errorf("expected 0.1, got %f", got)
	}
}

func TestAccuracy_DegenerateIsNaN(t *testing.T) {
	if v := R2([]float64{5, 5, 5}, []float64{4, 5, 6}); !math.IsNaN(v) {
		t.Errorf("expected NaN R2 for constant actuals, got %f", v)
	}
	for name, v := range map[string]float64{
		"MSE":  MSE(nil, nil),
		"RMSE": RMSE(nil, nil),
		"MAE":  MAE(nil, nil),
		"R2":   R2(nil, nil),
		"MAPE": MAPE(nil, nil),
	} {
		if !math.IsNaN(v) {
			t.Errorf("%s: expected NaN for empty input, got %f", name, v)
		}
	}
	if v := MSE([]float64{1, 2}, []float64{1}); !math.IsNaN(v) {
		t.Errorf("expected NaN for length mismatch, got %f", v)
	}
}
