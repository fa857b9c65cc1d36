// Package lstm implements the stacked recurrent regression network used for
// next-step price prediction, together with its losses, optimizers and trainer.
//
// The network maps a window of scaled prices, one feature per step, to the
// next scaled price:
//
//	LSTM(128, full sequence) -> LSTM(64, last state) -> Dense(25, act) -> Dense(1)
package lstm

import (
	"fmt"
	"math/rand"
)

// Architecture sets the layer widths.
type Architecture struct {
	Recurrent1 int `json:"recurrent1"`
	Recurrent2 int `json:"recurrent2"`
	Dense      int `json:"dense"`
}

// DefaultArchitecture is the 128/64/25 stack.
func DefaultArchitecture() Architecture {
	return Architecture{Recurrent1: 128, Recurrent2: 64, Dense: 25}
}

func (a Architecture) validate() error {
	if a.Recurrent1 <= 0 || a.Recurrent2 <= 0 || a.Dense <= 0 {
		return fmt.Errorf("layer widths must be positive, got %d/%d/%d", a.Recurrent1, a.Recurrent2, a.Dense)
	}
	return nil
}

// Network is a trained (or freshly initialised) sequence model.
// Predict does not mutate the network and is safe for concurrent use.
type Network struct {
	arch    Architecture
	act     Activation
	r1, r2  *recurrentLayer
	d1, out *denseLayer
	history []float64
}

// NewNetwork builds a network with randomly initialised weights.
func NewNetwork(arch Architecture, act Activation, rng *rand.Rand) *Network {
	return &Network{
		arch: arch,
		act:  act,
		r1:   newRecurrentLayer(1, arch.Recurrent1, rng),
		r2:   newRecurrentLayer(arch.Recurrent1, arch.Recurrent2, rng),
		d1:   newDenseLayer(arch.Recurrent2, arch.Dense, act, rng),
		out:  newDenseLayer(arch.Dense, 1, Linear, rng),
	}
}

// Architecture returns the layer widths.
func (n *Network) Architecture() Architecture { return n.arch }

// Activation returns the hidden dense activation.
func (n *Network) Activation() Activation { return n.act }

// LossHistory returns the mean training loss of every epoch the network was fitted for.
func (n *Network) LossHistory() []float64 {
	out := make([]float64, len(n.history))
	copy(out, n.history)
	return out
}

// Predict returns the next scaled value for a window of scaled values.
func (n *Network) Predict(window []float64) float64 {
	return n.forward(window).y
}

// ParamCount returns the number of trainable scalars.
func (n *Network) ParamCount() int {
	total := 0
	for _, p := range n.params() {
		total += len(p.Value)
	}
	return total
}

func (n *Network) params() []*Param {
	var ps []*Param
	ps = append(ps, n.r1.params()...)
	ps = append(ps, n.r2.params()...)
	ps = append(ps, n.d1.params()...)
	ps = append(ps, n.out.params()...)
	return ps
}

func (n *Network) zeroGrad() {
	for _, p := range n.params() {
		p.zeroGrad()
	}
}

// pass holds one sample's activations for the backward sweep.
type pass struct {
	t1, t2 *recurrentTrace
	dz, dy []float64
	oz, oy []float64
	y      float64
}

func (n *Network) forward(window []float64) *pass {
	xs := make([][]float64, len(window))
	for i, v := range window {
		xs[i] = []float64{v}
	}
	p := &pass{}
	p.t1 = n.r1.forward(xs)
	p.t2 = n.r2.forward(p.t1.outputs())
	p.dz, p.dy = n.d1.forward(p.t2.last())
	p.oz, p.oy = n.out.forward(p.dy)
	p.y = p.oy[0]
	return p
}

// backward accumulates gradients for one sample given dL/dy.
func (n *Network) backward(p *pass, dOut float64) {
	dHidden := n.out.backward(p.dy, p.oz, p.oy, []float64{dOut})
	dLast := n.d1.backward(p.t2.last(), p.dz, p.dy, dHidden)

	steps := len(p.t2.xs)
	dh2 := make([][]float64, steps)
	dh2[steps-1] = dLast
	dh1 := n.r2.backward(p.t2, dh2)
	n.r1.backward(p.t1, dh1)
}
