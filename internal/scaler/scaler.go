// Package scaler fits reversible one-dimensional transforms on a price column.
//
// A Scaler is fitted exactly once, by Fit, and is immutable afterwards: the same
// instance inverse-transforms evaluation predictions and forecast values.
package scaler

import (
	"fmt"
	"strings"

	"StockForecaster/internal/model"
)

// Kind identifies a scaling strategy.
type Kind int

const (
	Standard Kind = iota + 1
	MinMax
	Robust
	Normalizer
)

func (k Kind) String() string {
	switch k {
	case Standard:
		return "StandardScaler"
	case MinMax:
		return "MinMaxScaler"
	case Robust:
		return "RobustScaler"
	case Normalizer:
		return "Normalizer"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind resolves a scaler name. Both the class-style names ("MinMaxScaler")
// and short names ("minmax") are accepted, case-insensitively.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "standardscaler", "standard", "zscore":
		return Standard, nil
	case "minmaxscaler", "minmax", "min-max":
		return MinMax, nil
	case "robustscaler", "robust":
		return Robust, nil
	case "normalizer", "normalize", "l2":
		return Normalizer, nil
	}
	return 0, &model.ConfigError{Field: "scaler", Reason: fmt.Sprintf("unknown scaler %q", name)}
}

// Scaler is a fitted affine transform.
type Scaler interface {
	Kind() Kind
	// Transform maps raw values into the scaled space.
	Transform(values []float64) []float64
	// Inverse maps scaled values back to raw prices.
	Inverse(values []float64) []float64
	// InverseValue is Inverse for a single value.
	InverseValue(v float64) float64
}

// Fit fits a scaler of the given kind on values.
func Fit(kind Kind, values []float64) (Scaler, error) {
	if len(values) == 0 {
		return nil, &model.DataError{Reason: "cannot fit scaler on empty series"}
	}
	var center, scale float64
	switch kind {
	case Standard:
		center, scale = fitStandard(values)
	case MinMax:
		center, scale = fitMinMax(values)
	case Robust:
		center, scale = fitRobust(values)
	case Normalizer:
		center, scale = fitNormalizer(values)
	default:
		return nil, &model.ConfigError{Field: "scaler", Reason: fmt.Sprintf("unsupported scaler %s", kind)}
	}
	return &affine{kind: kind, center: center, scale: scale}, nil
}

// FitTransform fits a scaler on values and returns it together with the scaled values.
func FitTransform(kind Kind, values []float64) (Scaler, []float64, error) {
	s, err := Fit(kind, values)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Transform(values), nil
}

// affine implements every supported strategy as (x - center) / scale.
type affine struct {
	kind   Kind
	center float64
	scale  float64
}

func (a *affine) Kind() Kind { return a.kind }

func (a *affine) Transform(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - a.center) / a.scale
	}
	return out
}

func (a *affine) Inverse(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = a.InverseValue(v)
	}
	return out
}

func (a *affine) InverseValue(v float64) float64 {
	return v*a.scale + a.center
}

func (a *affine) String() string {
	return fmt.Sprintf("%s(center=%g, scale=%g)", a.kind, a.center, a.scale)
}
