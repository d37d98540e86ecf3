package train

import (
	"math"

	"github.com/genotools/genovae/internal/autodiff"
	"github.com/genotools/genovae/internal/tensor"
)

// Adam default hyperparameters.
const (
	AdamBeta1   = 0.9
	AdamBeta2   = 0.999
	AdamEpsilon = 1e-8
)

// Adam is a first-order adaptive optimizer over a fixed parameter list. It
// keeps per-parameter first and second moment estimates with bias
// correction:
//
//	m = b1*m + (1-b1)*g        v = b2*v + (1-b2)*g^2
//	p -= lr * (m/(1-b1^t)) / (sqrt(v/(1-b2^t)) + eps)
type Adam struct {
	params []*autodiff.Tensor
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64

	m []tensor.Mat
	v []tensor.Mat
	t int
}

// NewAdam creates the optimizer for the given parameters with defaults for
// the moment decays.
func NewAdam(params []*autodiff.Tensor, lr float64) *Adam {
	m := make([]tensor.Mat, len(params))
	v := make([]tensor.Mat, len(params))
	for i, p := range params {
		m[i] = tensor.New(p.Data.R, p.Data.C)
		v[i] = tensor.New(p.Data.R, p.Data.C)
	}
	return &Adam{
		params: params,
		lr:     lr,
		beta1:  AdamBeta1,
		beta2:  AdamBeta2,
		eps:    AdamEpsilon,
		m:      m,
		v:      v,
	}
}

// Step applies one in-place update using the gradients currently accumulated
// on the parameters.
func (a *Adam) Step() {
	a.t++
	bias1 := 1 - math.Pow(a.beta1, float64(a.t))
	bias2 := 1 - math.Pow(a.beta2, float64(a.t))

	for i, p := range a.params {
		mi := a.m[i].Data
		vi := a.v[i].Data
		for j, g := range p.Grad.Data {
			mi[j] = a.beta1*mi[j] + (1-a.beta1)*g
			vi[j] = a.beta2*vi[j] + (1-a.beta2)*g*g
			mHat := mi[j] / bias1
			vHat := vi[j] / bias2
			p.Data.Data[j] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
		}
	}
}

// ZeroGrad clears all parameter gradients before the next forward pass.
func (a *Adam) ZeroGrad() {
	for _, p := range a.params {
		p.ZeroGrad()
	}
}
