// Package dist provides the probability distributions used by the genotype
// factorization model: a diagonal multivariate Gaussian with reparameterized
// sampling and closed-form KL divergence, and a factorized Binomial
// likelihood parameterized by logits. All quantities are computation-graph
// nodes, so log-probabilities and KL terms are differentiable.
package dist

import (
	"fmt"
	"math/rand"

	"github.com/genotools/genovae/internal/autodiff"
	"github.com/genotools/genovae/internal/tensor"
)

const logTwoPi = 1.8378770664093453

// NoiseSource supplies the independent noise used by reparameterized draws.
type NoiseSource interface {
	// Normal returns an r x c matrix of draws. Implementations are free to
	// return zeros, which collapses a reparameterized sample to the mean.
	Normal(r, c int) tensor.Mat
}

type gaussianNoise struct {
	rng *rand.Rand
}

// NewGaussianNoise returns a seeded standard-normal noise source.
func NewGaussianNoise(seed int64) NoiseSource {
	return &gaussianNoise{rng: rand.New(rand.NewSource(seed))}
}

func (g *gaussianNoise) Normal(r, c int) tensor.Mat {
	m := tensor.New(r, c)
	for i := range m.Data {
		m.Data[i] = g.rng.NormFloat64()
	}
	return m
}

type zeroNoise struct{}

// Deterministic returns a noise source that always yields zeros, so
// reparameterized samples equal the distribution mean. Used for ablation
// runs and reproducible tests.
func Deterministic() NoiseSource { return zeroNoise{} }

func (zeroNoise) Normal(r, c int) tensor.Mat { return tensor.New(r, c) }

// DiagonalGaussian is a batch of independent diagonal multivariate normal
// distributions: one row per batch element, one column per dimension.
type DiagonalGaussian struct {
	Loc   *autodiff.Tensor
	Scale *autodiff.Tensor
}

// NewDiagonalGaussian constructs the distribution from location and scale
// nodes of identical shape. The scale must be strictly positive; encoder
// outputs guarantee this by construction (softplus), so a violation here
// indicates a direct misuse and fails.
func NewDiagonalGaussian(loc, scale *autodiff.Tensor) (*DiagonalGaussian, error) {
	if loc.Rows() != scale.Rows() || loc.Cols() != scale.Cols() {
		return nil, fmt.Errorf("dist: location %dx%d and scale %dx%d differ in shape",
			loc.Rows(), loc.Cols(), scale.Rows(), scale.Cols())
	}
	for i, v := range scale.Data.Data {
		if !(v > 0) {
			return nil, fmt.Errorf("dist: scale element %d is %v, must be strictly positive", i, v)
		}
	}
	return &DiagonalGaussian{Loc: loc, Scale: scale}, nil
}

// StandardNormal returns the fixed N(0, I) prior over rows x dim values. It
// carries no gradients.
func StandardNormal(rows, dim int) *DiagonalGaussian {
	loc := tensor.New(rows, dim)
	scale := tensor.New(rows, dim)
	scale.Fill(1)
	return &DiagonalGaussian{
		Loc:   autodiff.Const(loc),
		Scale: autodiff.Const(scale),
	}
}

// Rows returns the batch size of the distribution.
func (d *DiagonalGaussian) Rows() int { return d.Loc.Rows() }

// Dim returns the dimensionality of each row.
func (d *DiagonalGaussian) Dim() int { return d.Loc.Cols() }

// Sample draws one reparameterized sample: loc + scale * eps with eps from
// the noise source. Gradients flow into loc and scale, not into eps.
func (d *DiagonalGaussian) Sample(noise NoiseSource) *autodiff.Tensor {
	eps := autodiff.Const(noise.Normal(d.Rows(), d.Dim()))
	return autodiff.Add(d.Loc, autodiff.Mul(d.Scale, eps))
}

// Mean returns the distribution mean.
func (d *DiagonalGaussian) Mean() *autodiff.Tensor { return d.Loc }

// LogProb returns the per-row log-density of x summed over dimensions, as an
// Rx1 node.
func (d *DiagonalGaussian) LogProb(x *autodiff.Tensor) (*autodiff.Tensor, error) {
	if x.Rows() != d.Rows() || x.Cols() != d.Dim() {
		return nil, fmt.Errorf("dist: log-prob input %dx%d does not match distribution %dx%d",
			x.Rows(), x.Cols(), d.Rows(), d.Dim())
	}
	z := autodiff.Div(autodiff.Sub(x, d.Loc), d.Scale)
	perDim := autodiff.Scale(
		autodiff.Add(autodiff.Square(z), autodiff.Scale(autodiff.Log(d.Scale), 2)),
		-0.5,
	)
	sum := autodiff.SumRows(perDim)
	return autodiff.Shift(sum, -0.5*logTwoPi*float64(d.Dim())), nil
}

// KL returns the per-row closed-form KL divergence KL(d || other) as an Rx1
// node:
//
//	0.5 * sum_d [ (s1/s2)^2 + ((l2-l1)/s2)^2 - 1 + 2*log(s2/s1) ]
//
// Both distributions must have the same shape.
func (d *DiagonalGaussian) KL(other *DiagonalGaussian) (*autodiff.Tensor, error) {
	if d.Rows() != other.Rows() || d.Dim() != other.Dim() {
		return nil, fmt.Errorf("dist: KL between %dx%d and %dx%d distributions",
			d.Rows(), d.Dim(), other.Rows(), other.Dim())
	}
	ratio := autodiff.Div(d.Scale, other.Scale)
	shift := autodiff.Div(autodiff.Sub(other.Loc, d.Loc), other.Scale)
	perDim := autodiff.Shift(
		autodiff.Sub(
			autodiff.Add(autodiff.Square(ratio), autodiff.Square(shift)),
			autodiff.Scale(autodiff.Log(ratio), 2),
		),
		-1,
	)
	return autodiff.Scale(autodiff.SumRows(perDim), 0.5), nil
}
