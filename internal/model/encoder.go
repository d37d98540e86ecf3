package model

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/genotools/genovae/internal/autodiff"
	"github.com/genotools/genovae/internal/dist"
	"github.com/genotools/genovae/internal/tensor"
)

// scaleBias is added to the raw scale projection before softplus. It biases
// initial posterior scales toward softplus(0.5) ~ 0.974, keeping them away
// from zero early in training. It is a mitigation, not a guarantee: a
// collapsing scale still surfaces as NaN/Inf in the metrics.
const scaleBias = 0.5

// dense is one fully connected layer.
type dense struct {
	w *autodiff.Tensor // in x out
	b *autodiff.Tensor // 1 x out
}

func newDense(in, out int, rng *rand.Rand) dense {
	w := tensor.New(in, out)
	tensor.FillRandn(&w, rng, 1/math.Sqrt(float64(in)))
	return dense{
		w: autodiff.Var(w),
		b: autodiff.Var(tensor.New(1, out)),
	}
}

func (d dense) apply(x *autodiff.Tensor) *autodiff.Tensor {
	return autodiff.AddRow(autodiff.MatMul(x, d.w), d.b)
}

// encoderPath maps an input matrix to a diagonal Gaussian posterior over
// LatentDim dimensions, one row per input row. Hidden layers use sigmoid
// activations; the output projection is linear with width 2*LatentDim and is
// split into location and scale halves.
type encoderPath struct {
	in        int
	latentDim int
	hidden    []dense
	out       dense

	// flipSplit inverts the output column assignment: scale from the first
	// half, location from the second. The site path uses this inverted
	// split; both halves are free parameters so the assignment is a
	// labeling choice, but changing it changes every seeded run.
	flipSplit bool
}

func newEncoderPath(in int, widths []int, latentDim int, flipSplit bool, rng *rand.Rand) *encoderPath {
	p := &encoderPath{in: in, latentDim: latentDim, flipSplit: flipSplit}
	prev := in
	for _, w := range widths {
		p.hidden = append(p.hidden, newDense(prev, w, rng))
		prev = w
	}
	p.out = newDense(prev, 2*latentDim, rng)
	return p
}

func (p *encoderPath) params() []*autodiff.Tensor {
	var out []*autodiff.Tensor
	for _, h := range p.hidden {
		out = append(out, h.w, h.b)
	}
	return append(out, p.out.w, p.out.b)
}

func (p *encoderPath) forward(x *autodiff.Tensor) (*dist.DiagonalGaussian, error) {
	if x.Cols() != p.in {
		return nil, fmt.Errorf("model: encoder input has %d features, expected %d", x.Cols(), p.in)
	}
	h := x
	for _, layer := range p.hidden {
		h = autodiff.Sigmoid(layer.apply(h))
	}
	o := p.out.apply(h)

	d := p.latentDim
	var loc, rawScale *autodiff.Tensor
	if p.flipSplit {
		rawScale = autodiff.SliceCols(o, 0, d)
		loc = autodiff.SliceCols(o, d, 2*d)
	} else {
		loc = autodiff.SliceCols(o, 0, d)
		rawScale = autodiff.SliceCols(o, d, 2*d)
	}
	scale := autodiff.Softplus(autodiff.Shift(rawScale, scaleBias))
	return dist.NewDiagonalGaussian(loc, scale)
}
