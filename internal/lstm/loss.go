package lstm

import (
	"fmt"
	"math"

	"StockForecaster/internal/model"
)

// Loss is the regression objective minimised during training.
type Loss int

const (
	MeanSquaredError Loss = iota + 1
	MeanAbsoluteError
	Huber
	MeanAbsolutePercentageError
)

const (
	huberDelta  = 1.0
	lossEpsilon = 1e-7
)

func (l Loss) String() string {
	switch l {
	case MeanSquaredError:
		return "meanSquaredError"
	case MeanAbsoluteError:
		return "meanAbsoluteError"
	case Huber:
		return "huberLoss"
	case MeanAbsolutePercentageError:
		return "meanAbsolutePercentageError"
	default:
		return fmt.Sprintf("Loss(%d)", int(l))
	}
}

// ParseLoss resolves a loss function name.
func ParseLoss(name string) (Loss, error) {
	switch normalizeName(name) {
	case "meansquarederror", "mse":
		return MeanSquaredError, nil
	case "meanabsoluteerror", "mae":
		return MeanAbsoluteError, nil
	case "huberloss", "huber":
		return Huber, nil
	case "meanabsolutepercentageerror", "mape":
		return MeanAbsolutePercentageError, nil
	}
	return 0, &model.ConfigError{Field: "loss", Reason: fmt.Sprintf("unknown loss function %q", name)}
}

// eval returns the per-sample loss and its derivative with respect to the prediction.
func (l Loss) eval(target, pred float64) (loss, grad float64) {
	e := pred - target
	switch l {
	case MeanAbsoluteError:
		return math.Abs(e), sign(e)
	case Huber:
		if math.Abs(e) <= huberDelta {
			return 0.5 * e * e, e
		}
		return huberDelta*math.Abs(e) - 0.5*huberDelta*huberDelta, huberDelta * sign(e)
	case MeanAbsolutePercentageError:
		denom := math.Max(math.Abs(target), lossEpsilon)
		return 100 * math.Abs(e) / denom, 100 * sign(e) / denom
	default:
		return e * e, 2 * e
	}
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
