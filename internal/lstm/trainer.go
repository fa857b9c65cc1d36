package lstm

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"StockForecaster/internal/model"
)

// TrainConfig is the fully resolved training configuration.
type TrainConfig struct {
	Architecture Architecture
	Optimizer    Optimizer
	LearningRate float64
	Loss         Loss
	Activation   Activation
	Epochs       int
	BatchSize    int
	Seed         int64
	// OnEpoch, when set, is called after every epoch with its mean loss.
	OnEpoch func(epoch int, loss float64)
}

// Trainer fits fresh networks. A Trainer holds no weights of its own,
// so one Trainer may run several fits one after another.
type Trainer struct {
	cfg TrainConfig
}

// NewTrainer validates cfg.
func NewTrainer(cfg TrainConfig) (*Trainer, error) {
	if err := cfg.Architecture.validate(); err != nil {
		return nil, &model.ConfigError{Field: "architecture", Reason: err.Error()}
	}
	if cfg.Optimizer < Adam || cfg.Optimizer > Adadelta {
		return nil, &model.ConfigError{Field: "optimizer", Reason: "optimizer not set"}
	}
	if cfg.Loss < MeanSquaredError || cfg.Loss > MeanAbsolutePercentageError {
		return nil, &model.ConfigError{Field: "loss", Reason: "loss not set"}
	}
	if cfg.Activation < Linear || cfg.Activation > Tanh {
		return nil, &model.ConfigError{Field: "dense_activation", Reason: "activation not set"}
	}
	if !(cfg.LearningRate > 0) || math.IsInf(cfg.LearningRate, 0) {
		return nil, &model.ConfigError{Field: "learning_rate", Reason: fmt.Sprintf("must be a positive number, got %v", cfg.LearningRate)}
	}
	if cfg.Epochs <= 0 {
		return nil, &model.ConfigError{Field: "epochs", Reason: fmt.Sprintf("must be positive, got %d", cfg.Epochs)}
	}
	if cfg.BatchSize <= 0 {
		return nil, &model.ConfigError{Field: "batch_size", Reason: fmt.Sprintf("must be positive, got %d", cfg.BatchSize)}
	}
	return &Trainer{cfg: cfg}, nil
}

// Config returns the trainer configuration.
func (t *Trainer) Config() TrainConfig { return t.cfg }

// Fit trains a new network on the windows x and labels y for the configured
// number of epochs, shuffling the sample order every epoch.
//
// The network is only returned once every epoch has completed; on error or
// cancellation no partially trained weights escape.
func (t *Trainer) Fit(ctx context.Context, x [][]float64, y []float64) (*Network, error) {
	if len(x) == 0 {
		return nil, &model.ConfigError{Field: "window", Reason: "no training windows: window must be smaller than the training split"}
	}
	if len(x) != len(y) {
		return nil, &model.DataError{Reason: fmt.Sprintf("got %d windows but %d labels", len(x), len(y))}
	}
	width := len(x[0])
	if width == 0 {
		return nil, &model.ConfigError{Field: "window", Reason: "window must be positive"}
	}
	for i, w := range x {
		if len(w) != width {
			return nil, &model.DataError{Reason: fmt.Sprintf("window %d has length %d, expected %d", i, len(w), width)}
		}
	}

	rng := rand.New(rand.NewSource(t.cfg.Seed))
	net := NewNetwork(t.cfg.Architecture, t.cfg.Activation, rng)
	params := net.params()
	opt := newUpdater(t.cfg.Optimizer, t.cfg.LearningRate)
	batch := t.cfg.BatchSize
	n := len(x)

	log.Info().
		Int("samples", n).
		Int("window", width).
		Int("epochs", t.cfg.Epochs).
		Int("batch_size", batch).
		Str("optimizer", t.cfg.Optimizer.String()).
		Str("loss", t.cfg.Loss.String()).
		Int("params", net.ParamCount()).
		Msg("training started")

	started := time.Now()
	warnedNonFinite := false
	for epoch := 0; epoch < t.cfg.Epochs; epoch++ {
		order := rng.Perm(n)
		total := 0.0
		for start := 0; start < n; start += batch {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("training cancelled at epoch %d: %w", epoch+1, err)
			}
			end := start + batch
			if end > n {
				end = n
			}
			size := float64(end - start)
			net.zeroGrad()
			for _, idx := range order[start:end] {
				p := net.forward(x[idx])
				loss, grad := t.cfg.Loss.eval(y[idx], p.y)
				total += loss
				net.backward(p, grad/size)
			}
			opt.step(params)
		}
		mean := total / float64(n)
		net.history = append(net.history, mean)
		if (math.IsNaN(mean) || math.IsInf(mean, 0)) && !warnedNonFinite {
			log.Warn().Int("epoch", epoch+1).Msg("training loss is not finite")
			warnedNonFinite = true
		}
		log.Info().Int("epoch", epoch+1).Int("of", t.cfg.Epochs).Float64("loss", mean).Msg("epoch complete")
		if t.cfg.OnEpoch != nil {
			t.cfg.OnEpoch(epoch+1, mean)
		}
	}

	log.Info().Dur("elapsed", time.Since(started)).Msg("training finished")
	return net, nil
}
