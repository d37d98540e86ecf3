package dist

import (
	"fmt"
	"math"

	"github.com/genotools/genovae/internal/autodiff"
	"github.com/genotools/genovae/internal/tensor"
)

// FactorizedBinomial is an independent Binomial distribution over every
// entry of a logits matrix, with a shared trial count. For genotype dosage
// data the trial count is the ploidy.
type FactorizedBinomial struct {
	Logits *autodiff.Tensor
	Trials int
}

// NewFactorizedBinomial constructs the distribution. The trial count must be
// a positive integer.
func NewFactorizedBinomial(logits *autodiff.Tensor, trials int) (*FactorizedBinomial, error) {
	if trials <= 0 {
		return nil, fmt.Errorf("dist: binomial trial count must be positive, got %d", trials)
	}
	return &FactorizedBinomial{Logits: logits, Trials: trials}, nil
}

// LogProb returns the total log-likelihood of the observed counts as a 1x1
// node, summed over all entries. observed must match the logits shape and
// hold integer counts in [0, Trials]; anything else is a malformed batch.
//
// Per entry with logit l, count k and trials n:
//
//	log C(n,k) + k*l - n*softplus(l)
//
// The combinatorial term is constant with respect to the logits, so only the
// last two terms are graph nodes.
func (b *FactorizedBinomial) LogProb(observed tensor.Mat) (*autodiff.Tensor, error) {
	if observed.R != b.Logits.Rows() || observed.C != b.Logits.Cols() {
		return nil, fmt.Errorf("dist: observed %dx%d does not match logits %dx%d",
			observed.R, observed.C, b.Logits.Rows(), b.Logits.Cols())
	}
	var constTerm float64
	for i, v := range observed.Data {
		k := int(v)
		if float64(k) != v || k < 0 || k > b.Trials {
			return nil, fmt.Errorf("dist: observed count %v at entry %d outside [0, %d]", v, i, b.Trials)
		}
		constTerm += logChoose(b.Trials, k)
	}

	obs := autodiff.Const(observed.Clone())
	counts := autodiff.Sum(autodiff.Mul(obs, b.Logits))
	norm := autodiff.Scale(autodiff.Sum(autodiff.Softplus(b.Logits)), float64(b.Trials))
	return autodiff.Shift(autodiff.Sub(counts, norm), constTerm), nil
}

// logChoose computes log C(n, k) via the log-gamma function.
func logChoose(n, k int) float64 {
	ln, _ := math.Lgamma(float64(n + 1))
	lk, _ := math.Lgamma(float64(k + 1))
	lnk, _ := math.Lgamma(float64(n - k + 1))
	return ln - lk - lnk
}
