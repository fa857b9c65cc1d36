package lstm

import (
	"math"
	"math/rand"
)

// Param is a flat trainable tensor together with its accumulated gradient.
type Param struct {
	Value []float64
	Grad  []float64
}

func newParam(n int) *Param {
	return &Param{Value: make([]float64, n), Grad: make([]float64, n)}
}

func (p *Param) zeroGrad() {
	for i := range p.Grad {
		p.Grad[i] = 0
	}
}

// glorot fills p with Glorot-uniform values for a fanIn x fanOut matrix.
func (p *Param) glorot(rng *rand.Rand, fanIn, fanOut int) {
	limit := math.Sqrt(6 / float64(fanIn+fanOut))
	for i := range p.Value {
		p.Value[i] = (rng.Float64()*2 - 1) * limit
	}
}

// recurrentLayer is an LSTM layer. Gate rows are laid out as
// [input | forget | cell | output], each block `units` rows long.
type recurrentLayer struct {
	in, units int
	w         *Param // 4*units x in
	u         *Param // 4*units x units
	b         *Param // 4*units
}

func newRecurrentLayer(in, units int, rng *rand.Rand) *recurrentLayer {
	l := &recurrentLayer{
		in:    in,
		units: units,
		w:     newParam(4 * units * in),
		u:     newParam(4 * units * units),
		b:     newParam(4 * units),
	}
	l.w.glorot(rng, in, 4*units)
	l.u.glorot(rng, units, 4*units)
	for k := units; k < 2*units; k++ {
		l.b.Value[k] = 1 // forget gate starts open
	}
	return l
}

func (l *recurrentLayer) params() []*Param { return []*Param{l.w, l.u, l.b} }

// recurrentTrace keeps the per-step activations needed for backpropagation through time.
// hs and cs have len(xs)+1 entries; index 0 is the zero initial state.
type recurrentTrace struct {
	xs     [][]float64
	hs, cs [][]float64
	gates  [][]float64
	tanhC  [][]float64
}

func (l *recurrentLayer) forward(xs [][]float64) *recurrentTrace {
	n, in := l.units, l.in
	steps := len(xs)
	tr := &recurrentTrace{
		xs:    xs,
		hs:    make([][]float64, steps+1),
		cs:    make([][]float64, steps+1),
		gates: make([][]float64, steps),
		tanhC: make([][]float64, steps),
	}
	tr.hs[0] = make([]float64, n)
	tr.cs[0] = make([]float64, n)

	for t, x := range xs {
		hPrev, cPrev := tr.hs[t], tr.cs[t]
		z := make([]float64, 4*n)
		for r := range z {
			sum := l.b.Value[r]
			wr := l.w.Value[r*in : (r+1)*in]
			for j, xv := range x {
				sum += wr[j] * xv
			}
			ur := l.u.Value[r*n : (r+1)*n]
			for k, hv := range hPrev {
				sum += ur[k] * hv
			}
			z[r] = sum
		}
		for k := 0; k < n; k++ {
			z[k] = sigmoid(z[k])
			z[n+k] = sigmoid(z[n+k])
			z[2*n+k] = math.Tanh(z[2*n+k])
			z[3*n+k] = sigmoid(z[3*n+k])
		}
		c := make([]float64, n)
		h := make([]float64, n)
		tc := make([]float64, n)
		for k := 0; k < n; k++ {
			c[k] = z[n+k]*cPrev[k] + z[k]*z[2*n+k]
			tc[k] = math.Tanh(c[k])
			h[k] = z[3*n+k] * tc[k]
		}
		tr.gates[t] = z
		tr.tanhC[t] = tc
		tr.cs[t+1] = c
		tr.hs[t+1] = h
	}
	return tr
}

// outputs returns the hidden state of every step.
func (tr *recurrentTrace) outputs() [][]float64 { return tr.hs[1:] }

// last returns the final hidden state.
func (tr *recurrentTrace) last() []float64 { return tr.hs[len(tr.hs)-1] }

// backward accumulates parameter gradients given dL/dh for each step
// (nil entries mean no gradient flows into that step from above) and
// returns dL/dx for each step.
func (l *recurrentLayer) backward(tr *recurrentTrace, dhs [][]float64) [][]float64 {
	n, in := l.units, l.in
	steps := len(tr.xs)
	dxs := make([][]float64, steps)
	dhNext := make([]float64, n)
	dcNext := make([]float64, n)
	dz := make([]float64, 4*n)

	for t := steps - 1; t >= 0; t-- {
		g := tr.gates[t]
		tc := tr.tanhC[t]
		cPrev := tr.cs[t]
		hPrev := tr.hs[t]
		x := tr.xs[t]

		for k := 0; k < n; k++ {
			dh := dhNext[k]
			if dhs[t] != nil {
				dh += dhs[t][k]
			}
			ig, fg, cg, og := g[k], g[n+k], g[2*n+k], g[3*n+k]
			dc := dh*og*(1-tc[k]*tc[k]) + dcNext[k]
			dz[k] = dc * cg * ig * (1 - ig)
			dz[n+k] = dc * cPrev[k] * fg * (1 - fg)
			dz[2*n+k] = dc * ig * (1 - cg*cg)
			dz[3*n+k] = dh * tc[k] * og * (1 - og)
			dcNext[k] = dc * fg
		}

		dx := make([]float64, in)
		dh := make([]float64, n)
		for r, d := range dz {
			if d == 0 {
				continue
			}
			wv := l.w.Value[r*in : (r+1)*in]
			wg := l.w.Grad[r*in : (r+1)*in]
			for j, xv := range x {
				wg[j] += d * xv
				dx[j] += wv[j] * d
			}
			uv := l.u.Value[r*n : (r+1)*n]
			ug := l.u.Grad[r*n : (r+1)*n]
			for k, hv := range hPrev {
				ug[k] += d * hv
				dh[k] += uv[k] * d
			}
			l.b.Grad[r] += d
		}
		dxs[t] = dx
		dhNext = dh
	}
	return dxs
}

// denseLayer is a fully connected layer y = act(Wx + b).
type denseLayer struct {
	in, out int
	act     Activation
	w       *Param // out x in
	b       *Param // out
}

func newDenseLayer(in, out int, act Activation, rng *rand.Rand) *denseLayer {
	l := &denseLayer{in: in, out: out, act: act, w: newParam(out * in), b: newParam(out)}
	l.w.glorot(rng, in, out)
	return l
}

func (l *denseLayer) params() []*Param { return []*Param{l.w, l.b} }

func (l *denseLayer) forward(x []float64) (z, y []float64) {
	z = make([]float64, l.out)
	y = make([]float64, l.out)
	for r := 0; r < l.out; r++ {
		sum := l.b.Value[r]
		wr := l.w.Value[r*l.in : (r+1)*l.in]
		for j, xv := range x {
			sum += wr[j] * xv
		}
		z[r] = sum
		y[r] = l.act.apply(sum)
	}
	return z, y
}

func (l *denseLayer) backward(x, z, y, dy []float64) []float64 {
	dx := make([]float64, l.in)
	for r := 0; r < l.out; r++ {
		d := dy[r] * l.act.derivative(z[r], y[r])
		if d == 0 {
			continue
		}
		wv := l.w.Value[r*l.in : (r+1)*l.in]
		wg := l.w.Grad[r*l.in : (r+1)*l.in]
		for j, xv := range x {
			wg[j] += d * xv
			dx[j] += wv[j] * d
		}
		l.b.Grad[r] += d
	}
	return dx
}
