package lstm

import (
	"fmt"
	"math"

	"StockForecaster/internal/model"
)

// Optimizer identifies a gradient-descent update rule.
type Optimizer int

const (
	Adam Optimizer = iota + 1
	SGD
	RMSprop
	Adagrad
	Adadelta
)

// Hyper-parameters other than the learning rate use the conventional defaults.
const (
	adamBeta1        = 0.9
	adamBeta2        = 0.999
	rmspropRho       = 0.9
	adadeltaRho      = 0.95
	adagradInitAccum = 0.1
	optimizerEpsilon = 1e-7
)

func (o Optimizer) String() string {
	switch o {
	case Adam:
		return "Adam"
	case SGD:
		return "SGD"
	case RMSprop:
		return "RMSprop"
	case Adagrad:
		return "Adagrad"
	case Adadelta:
		return "Adadelta"
	default:
		return fmt.Sprintf("Optimizer(%d)", int(o))
	}
}

// ParseOptimizer resolves an optimizer name.
func ParseOptimizer(name string) (Optimizer, error) {
	switch normalizeName(name) {
	case "adam":
		return Adam, nil
	case "sgd":
		return SGD, nil
	case "rmsprop":
		return RMSprop, nil
	case "adagrad":
		return Adagrad, nil
	case "adadelta":
		return Adadelta, nil
	}
	return 0, &model.ConfigError{Field: "optimizer", Reason: fmt.Sprintf("unknown optimizer %q", name)}
}

// updater applies one step to every parameter using the accumulated gradients.
type updater interface {
	step(params []*Param)
}

func newUpdater(o Optimizer, lr float64) updater {
	switch o {
	case SGD:
		return &sgd{lr: lr}
	case RMSprop:
		return &rmsprop{lr: lr}
	case Adagrad:
		return &adagrad{lr: lr}
	case Adadelta:
		return &adadelta{lr: lr}
	default:
		return &adam{lr: lr}
	}
}

// slots lazily allocates one state slice per parameter, filled with init.
func slots(params []*Param, init float64) [][]float64 {
	s := make([][]float64, len(params))
	for i, p := range params {
		s[i] = make([]float64, len(p.Value))
		if init != 0 {
			for j := range s[i] {
				s[i][j] = init
			}
		}
	}
	return s
}

type sgd struct{ lr float64 }

func (o *sgd) step(params []*Param) {
	for _, p := range params {
		for j, g := range p.Grad {
			p.Value[j] -= o.lr * g
		}
	}
}

type adam struct {
	lr   float64
	t    int
	m, v [][]float64
}

func (o *adam) step(params []*Param) {
	if o.m == nil {
		o.m, o.v = slots(params, 0), slots(params, 0)
	}
	o.t++
	alpha := o.lr * math.Sqrt(1-math.Pow(adamBeta2, float64(o.t))) / (1 - math.Pow(adamBeta1, float64(o.t)))
	for i, p := range params {
		m, v := o.m[i], o.v[i]
		for j, g := range p.Grad {
			m[j] = adamBeta1*m[j] + (1-adamBeta1)*g
			v[j] = adamBeta2*v[j] + (1-adamBeta2)*g*g
			p.Value[j] -= alpha * m[j] / (math.Sqrt(v[j]) + optimizerEpsilon)
		}
	}
}

type rmsprop struct {
	lr float64
	v  [][]float64
}

func (o *rmsprop) step(params []*Param) {
	if o.v == nil {
		o.v = slots(params, 0)
	}
	for i, p := range params {
		v := o.v[i]
		for j, g := range p.Grad {
			v[j] = rmspropRho*v[j] + (1-rmspropRho)*g*g
			p.Value[j] -= o.lr * g / (math.Sqrt(v[j]) + optimizerEpsilon)
		}
	}
}

type adagrad struct {
	lr  float64
	acc [][]float64
}

func (o *adagrad) step(params []*Param) {
	if o.acc == nil {
		o.acc = slots(params, adagradInitAccum)
	}
	for i, p := range params {
		acc := o.acc[i]
		for j, g := range p.Grad {
			acc[j] += g * g
			p.Value[j] -= o.lr * g / (math.Sqrt(acc[j]) + optimizerEpsilon)
		}
	}
}

type adadelta struct {
	lr         float64
	acc, delta [][]float64
}

func (o *adadelta) step(params []*Param) {
	if o.acc == nil {
		o.acc, o.delta = slots(params, 0), slots(params, 0)
	}
	for i, p := range params {
		acc, delta := o.acc[i], o.delta[i]
		for j, g := range p.Grad {
			acc[j] = adadeltaRho*acc[j] + (1-adadeltaRho)*g*g
			upd := math.Sqrt(delta[j]+optimizerEpsilon) / math.Sqrt(acc[j]+optimizerEpsilon) * g
			delta[j] = adadeltaRho*delta[j] + (1-adadeltaRho)*upd*upd
			p.Value[j] -= o.lr * upd
		}
	}
}
