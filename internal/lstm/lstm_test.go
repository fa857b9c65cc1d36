package lstm

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"StockForecaster/internal/model"
)

var tiny = Architecture{Recurrent1: 3, Recurrent2: 2, Dense: 2}

func sampleLoss(n *Network, loss Loss, window []float64, target float64) float64 {
	l, _ := loss.eval(target, n.Predict(window))
	return l
}

func TestBackward_MatchesNumericGradient(t *testing.T) {
	for _, act := range []Activation{Linear, Tanh, Sigmoid} {
		net := NewNetwork(tiny, act, rand.New(rand.NewSource(7)))
		window := []float64{0.1, -0.4, 0.7, 0.25}
		target := 0.3

		net.zeroGrad()
		p := net.forward(window)
		_, g := MeanSquaredError.eval(target, p.y)
		net.backward(p, g)

		const eps = 1e-6
		for pi, param := range net.params() {
			for j := range param.Value {
				orig := param.Value[j]
				param.Value[j] = orig + eps
				up := sampleLoss(net, MeanSquaredError, window, target)
				param.Value[j] = orig - eps
				down := sampleLoss(net, MeanSquaredError, window, target)
				param.Value[j] = orig

				numeric := (up - down) / (2 * eps)
				analytic := param.Grad[j]
				if math.Abs(numeric-analytic) > 1e-6+1e-4*math.Abs(numeric) {
					t.Errorf("%s: param %d[%d]: analytic %.8f, numeric %.8f", act, pi, j, analytic, numeric)
				}
			}
		}
	}
}

func TestNewNetwork_ParamCount(t *testing.T) {
	net := NewNetwork(DefaultArchitecture(), Linear, rand.New(rand.NewSource(1)))
	// LSTM(128): 4*128*(1+128+1), LSTM(64): 4*64*(128+64+1), Dense(25): 64*25+25, Dense(1): 25+1
	want := 4*128*(1+128+1) + 4*64*(128+64+1) + 64*25 + 25 + 25 + 1
	if got := net.ParamCount(); got != want {
		t.Errorf("expected %d params, got %d", want, got)
	}
}

func TestLoss_Values(t *testing.T) {
	tests := []struct {
		loss     Loss
		target   float64
		pred     float64
		wantLoss float64
		wantGrad float64
	}{
		{MeanSquaredError, 1, 3, 4, 4},
		{MeanAbsoluteError, 1, 3, 2, 1},
		{MeanAbsoluteError, 3, 1, 2, -1},
		{Huber, 1, 1.5, 0.125, 0.5},
		{Huber, 1, 4, 2.5, 1},
		{MeanAbsolutePercentageError, 2, 1, 50, -50},
	}
	for _, tt := range tests {
		l, g := tt.loss.eval(tt.target, tt.pred)
		if math.Abs(l-tt.wantLoss) > 1e-12 || math.Abs(g-tt.wantGrad) > 1e-12 {
			t.Errorf("%s(%v, %v): expected (%v, %v), got (%v, %v)", tt.loss, tt.target, tt.pred, tt.wantLoss, tt.wantGrad, l, g)
		}
	}
}

func TestParseNames(t *testing.T) {
	if o, err := ParseOptimizer("rmsprop"); err != nil || o != RMSprop {
		t.Errorf("expected RMSprop, got %v (%v)", o, err)
	}
	if l, err := ParseLoss("mean_absolute_percentage_error"); err != nil || l != MeanAbsolutePercentageError {
		t.Errorf("expected MAPE, got %v (%v)", l, err)
	}
	if l, err := ParseLoss("huberLoss"); err != nil || l != Huber {
		t.Errorf("expected Huber, got %v (%v)", l, err)
	}
	if a, err := ParseActivation("ReLU"); err != nil || a != ReLU {
		t.Errorf("expected relu, got %v (%v)", a, err)
	}
	for _, err := range []error{
		func() error { _, err := ParseOptimizer("Nadam"); return err }(),
		func() error { _, err := ParseLoss("hinge"); return err }(),
		func() error { _, err := ParseActivation("softmax"); return err }(),
		func() error { _, err := ParseOptimizer(""); return err }(),
		func() error { _, err := ParseLoss(""); return err }(),
		func() error { _, err := ParseActivation(""); return err }(),
	} {
		if !errors.Is(err, model.ErrConfiguration) {
			t.Errorf("expected configuration error, got %v", err)
		}
	}
}

func trainingSet(n, window int) ([][]float64, []float64) {
	series := make([]float64, n+window)
	for i := range series {
		series[i] = 0.5 + 0.4*math.Sin(float64(i)/6)
	}
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = series[i : i+window]
		y[i] = series[i+window]
	}
	return x, y
}

func testConfig(opt Optimizer) TrainConfig {
	return TrainConfig{
		Architecture: Architecture{Recurrent1: 8, Recurrent2: 4, Dense: 4},
		Optimizer:    opt,
		LearningRate: 0.01,
		Loss:         MeanSquaredError,
		Activation:   Linear,
		Epochs:       30,
		BatchSize:    4,
		Seed:         3,
	}
}

func TestFit_ReducesLoss(t *testing.T) {
	x, y := trainingSet(40, 6)
	tr, err := NewTrainer(testConfig(Adam))
	if err != nil {
		t.Fatal(err)
	}
	net, err := tr.Fit(context.Background(), x, y)
	if err != nil {
		t.Fatal(err)
	}
	h := net.LossHistory()
	if len(h) != 30 {
		t.Fatalf("expected 30 epochs of history, got %d", len(h))
	}
	if h[len(h)-1] >= h[0] {
		t.Errorf("expected loss to decrease, first=%f last=%f", h[0], h[len(h)-1])
	}
}

func TestFit_EveryOptimizerRuns(t *testing.T) {
	x, y := trainingSet(12, 4)
	for _, opt := range []Optimizer{Adam, SGD, RMSprop, Adagrad, Adadelta} {
		cfg := testConfig(opt)
		cfg.Epochs = 2
		var epochs []int
		cfg.OnEpoch = func(epoch int, _ float64) { epochs = append(epochs, epoch) }
		tr, err := NewTrainer(cfg)
		if err != nil {
			t.Fatalf("%s: %v", opt, err)
		}
		net, err := tr.Fit(context.Background(), x, y)
		if err != nil {
			t.Fatalf("%s: %v", opt, err)
		}
		if len(epochs) != 2 || epochs[1] != 2 {
			t.Errorf("%s: expected epoch callbacks [1 2], got %v", opt, epochs)
		}
		if v := net.Predict(x[0]); math.IsNaN(v) {
			t.Errorf("%s: prediction is NaN", opt)
		}
	}
}

func TestFit_DeterministicForSeed(t *testing.T) {
	x, y := trainingSet(10, 4)
	cfg := testConfig(Adam)
	cfg.Epochs = 3
	tr, _ := NewTrainer(cfg)
	a, err := tr.Fit(context.Background(), x, y)
	if err != nil {
		t.Fatal(err)
	}
	b, err := tr.Fit(context.Background(), x, y)
	if err != nil {
		t.Fatal(err)
	}
	if a.Predict(x[3]) != b.Predict(x[3]) {
		t.Errorf("expected identical predictions for identical seeds")
	}
}

func TestFit_EmptyTrainingSetIsConfigError(t *testing.T) {
	tr, _ := NewTrainer(testConfig(Adam))
	net, err := tr.Fit(context.Background(), nil, nil)
	if net != nil {
		t.Error("expected no network")
	}
	var ce *model.ConfigError
	if !errors.As(err, &ce) || ce.Field != "window" {
		t.Errorf("expected window configuration error, got %v", err)
	}
}

func TestFit_CancelledReturnsNoModel(t *testing.T) {
	x, y := trainingSet(10, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tr, _ := NewTrainer(testConfig(Adam))
	net, err := tr.Fit(ctx, x, y)
	if net != nil {
		t.Error("expected no network after cancellation")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNewTrainer_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		field  string
		mutate func(*TrainConfig)
	}{
		{"epochs", func(c *TrainConfig) { c.Epochs = 0 }},
		{"batch_size", func(c *TrainConfig) { c.BatchSize = -1 }},
		{"learning_rate", func(c *TrainConfig) { c.LearningRate = 0 }},
		{"optimizer", func(c *TrainConfig) { c.Optimizer = 0 }},
		{"architecture", func(c *TrainConfig) { c.Architecture.Dense = 0 }},
	}
	for _, tt := range tests {
		cfg := testConfig(Adam)
		tt.mutate(&cfg)
		_, err := NewTrainer(cfg)
		var ce *model.ConfigError
		if !errors.As(err, &ce) || ce.Field != tt.field {
			t.Errorf("expected %s configuration error, got %v", tt.field, err)
		}
	}
}
