package dist

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/genotools/genovae/internal/autodiff"
	"github.com/genotools/genovae/internal/tensor"
)

func TestNewFactorizedBinomialRejectsBadTrials(t *testing.T) {
	logits := autodiff.Const(tensor.New(1, 1))
	for _, n := range []int{0, -2} {
		if _, err := NewFactorizedBinomial(logits, n); err == nil {
			t.Errorf("expected error for trials=%d", n)
		}
	}
}

func TestDiploidLogProbAtZeroLogits(t *testing.T) {
	// With total count 2 and logit 0 (p = 1/2), observing a heterozygote has
	// probability C(2,1)/4 = 1/2.
	logits := autodiff.Const(tensor.New(1, 1))
	b, err := NewFactorizedBinomial(logits, 2)
	if err != nil {
		t.Fatalf("NewFactorizedBinomial: %v", err)
	}
	lp, err := b.LogProb(tensor.FromData(1, 1, []float64{1}))
	if err != nil {
		t.Fatalf("LogProb: %v", err)
	}
	if got, want := lp.Scalar(), -math.Log(2); math.Abs(got-want) > 1e-12 {
		t.Fatalf("log-prob %v, want %v", got, want)
	}
}

func TestLogProbMatchesGonumBinomial(t *testing.T) {
	logits := []float64{-1.5, 0, 0.75, 3}
	counts := []float64{0, 1, 2, 2}

	b, err := NewFactorizedBinomial(autodiff.Const(tensor.FromData(1, 4, logits)), 2)
	if err != nil {
		t.Fatalf("NewFactorizedBinomial: %v", err)
	}
	lp, err := b.LogProb(tensor.FromData(1, 4, counts))
	if err != nil {
		t.Fatalf("LogProb: %v", err)
	}

	var want float64
	for i, l := range logits {
		p := 1 / (1 + math.Exp(-l))
		want += distuv.Binomial{N: 2, P: p}.LogProb(counts[i])
	}
	if got := lp.Scalar(); math.Abs(got-want) > 1e-10 {
		t.Fatalf("log-prob %v, want %v", got, want)
	}
}

func TestLogProbRejectsMalformedCounts(t *testing.T) {
	b, err := NewFactorizedBinomial(autodiff.Const(tensor.New(1, 2)), 2)
	if err != nil {
		t.Fatalf("NewFactorizedBinomial: %v", err)
	}

	bad := [][]float64{
		{0, 3},   // above ploidy
		{-1, 1},  // negative
		{0.5, 1}, // non-integer
	}
	for _, counts := range bad {
		if _, err := b.LogProb(tensor.FromData(1, 2, counts)); err == nil {
			t.Errorf("expected error for counts %v", counts)
		}
	}
}

func TestLogProbRejectsShapeMismatch(t *testing.T) {
	b, err := NewFactorizedBinomial(autodiff.Const(tensor.New(2, 3)), 2)
	if err != nil {
		t.Fatalf("NewFactorizedBinomial: %v", err)
	}
	if _, err := b.LogProb(tensor.New(3, 2)); err == nil {
		t.Fatal("expected shape mismatch error")
	}
}

func TestLogProbGradientIsResidual(t *testing.T) {
	// d/dl [k*l - n*softplus(l)] = k - n*sigmoid(l): the gradient on each
	// logit is the observed count minus the expected count.
	logits := autodiff.Var(tensor.FromData(1, 3, []float64{-0.5, 0, 2}))
	b, err := NewFactorizedBinomial(logits, 2)
	if err != nil {
		t.Fatalf("NewFactorizedBinomial: %v", err)
	}
	obs := tensor.FromData(1, 3, []float64{0, 2, 1})
	lp, err := b.LogProb(obs)
	if err != nil {
		t.Fatalf("LogProb: %v", err)
	}
	lp.Backward()

	for i, l := range logits.Data.Data {
		want := obs.Data[i] - 2*tensor.Sigmoid(l)
		if got := logits.Grad.Data[i]; math.Abs(got-want) > 1e-12 {
			t.Errorf("grad[%d] = %v, want %v", i, got, want)
		}
	}
}
