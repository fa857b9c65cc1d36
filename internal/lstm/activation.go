package lstm

import (
	"fmt"
	"math"
	"strings"

	"StockForecaster/internal/model"
)

// Activation is the activation function of the hidden dense layer.
type Activation int

const (
	Linear Activation = iota + 1
	ReLU
	Sigmoid
	Tanh
)

func (a Activation) String() string {
	switch a {
	case Linear:
		return "linear"
	case ReLU:
		return "relu"
	case Sigmoid:
		return "sigmoid"
	case Tanh:
		return "tanh"
	default:
		return fmt.Sprintf("Activation(%d)", int(a))
	}
}

// ParseActivation resolves an activation name.
func ParseActivation(name string) (Activation, error) {
	switch normalizeName(name) {
	case "linear", "identity":
		return Linear, nil
	case "relu":
		return ReLU, nil
	case "sigmoid":
		return Sigmoid, nil
	case "tanh":
		return Tanh, nil
	}
	return 0, &model.ConfigError{Field: "dense_activation", Reason: fmt.Sprintf("unknown activation %q", name)}
}

func (a Activation) apply(z float64) float64 {
	switch a {
	case ReLU:
		if z > 0 {
			return z
		}
		return 0
	case Sigmoid:
		return sigmoid(z)
	case Tanh:
		return math.Tanh(z)
	default:
		return z
	}
}

// derivative returns da/dz given the pre-activation z and the output y.
func (a Activation) derivative(z, y float64) float64 {
	switch a {
	case ReLU:
		if z > 0 {
			return 1
		}
		return 0
	case Sigmoid:
		return y * (1 - y)
	case Tanh:
		return 1 - y*y
	default:
		return 1
	}
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// normalizeName lower-cases and strips separators so "mean_squared_error",
// "meanSquaredError" and "Mean-Squared-Error" compare equal.
func normalizeName(name string) string {
	r := strings.NewReplacer("_", "", "-", "", " ", "")
	return r.Replace(strings.ToLower(strings.TrimSpace(name)))
}
