// Package model defines the variational genotype factorization model: two
// encoder paths producing diagonal Gaussian posteriors over per-sample
// latents U and per-variant latents V, a bilinear decoder yielding Binomial
// logits over every (sample, variant) cell, standard-normal priors, and the
// ELBO objective combining the reconstruction likelihood with the two KL
// regularizers.
package model

import (
	"fmt"
	"math/rand"

	"github.com/genotools/genovae/internal/autodiff"
	"github.com/genotools/genovae/internal/dist"
	"github.com/genotools/genovae/internal/tensor"
)

// Model owns all trainable parameters and the fixed priors. It is
// constructed once per run; the training loop is the only writer of its
// parameters.
type Model struct {
	cfg Config

	samplePath *encoderPath
	sitePath   *encoderPath
	priorU     *dist.DiagonalGaussian
	priorV     *dist.DiagonalGaussian
	noise      dist.NoiseSource

	params []*autodiff.Tensor
}

// Result holds every node of one forward pass that callers inspect: the two
// posteriors, the latent samples, the decoder logits and the scalar
// objective terms. ELBO = LogLik - KLU - KLV; the training loss is -ELBO.
type Result struct {
	PosteriorU *dist.DiagonalGaussian
	PosteriorV *dist.DiagonalGaussian
	U          *autodiff.Tensor // BatchSize x LatentDim
	V          *autodiff.Tensor // Variants x LatentDim
	Logits     *autodiff.Tensor // 1 x BatchSize*Variants

	LogLik *autodiff.Tensor
	KLU    *autodiff.Tensor
	KLV    *autodiff.Tensor
	ELBO   *autodiff.Tensor
}

// New validates the configuration and constructs the model. noise supplies
// the reparameterization draws; dist.Deterministic() gives mean-only
// (ablation) behavior.
func New(cfg Config, noise dist.NoiseSource) (*Model, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if noise == nil {
		noise = dist.NewGaussianNoise(cfg.Seed)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	m := &Model{
		cfg:        cfg,
		samplePath: newEncoderPath(cfg.Variants, cfg.SampleWidths, cfg.LatentDim, false, rng),
		sitePath:   newEncoderPath(cfg.BatchSize, cfg.SiteWidths, cfg.LatentDim, true, rng),
		priorU:     dist.StandardNormal(cfg.BatchSize, cfg.LatentDim),
		priorV:     dist.StandardNormal(cfg.Variants, cfg.LatentDim),
		noise:      noise,
	}
	m.params = append(m.samplePath.params(), m.sitePath.params()...)
	return m, nil
}

// Config returns the immutable run configuration.
func (m *Model) Config() Config { return m.cfg }

// Params returns the trainable parameter leaves in a stable order.
func (m *Model) Params() []*autodiff.Tensor { return m.params }

// Forward runs one full pass over a genotype batch: encode both posteriors,
// draw reparameterized samples, decode to Binomial logits and assemble the
// ELBO. The batch must be exactly BatchSize x Variants with counts in
// [0, Ploidy]; anything else is an error and the step must not proceed.
func (m *Model) Forward(batch tensor.Mat) (*Result, error) {
	if batch.R != m.cfg.BatchSize || batch.C != m.cfg.Variants {
		return nil, fmt.Errorf("model: batch is %dx%d, configured for %dx%d",
			batch.R, batch.C, m.cfg.BatchSize, m.cfg.Variants)
	}

	x := autodiff.Const(batch.Clone())
	xt := autodiff.Const(batch.Transpose())

	qU, err := m.samplePath.forward(x)
	if err != nil {
		return nil, fmt.Errorf("sample path: %w", err)
	}
	qV, err := m.sitePath.forward(xt)
	if err != nil {
		return nil, fmt.Errorf("site path: %w", err)
	}

	u := qU.Sample(m.noise)
	v := qV.Sample(m.noise)

	// Bilinear interaction: logits[i*M+j] = softplus(<U_i, V_j>).
	logits := autodiff.Flatten(autodiff.Softplus(autodiff.MatMulT(u, v)))

	lik, err := dist.NewFactorizedBinomial(logits, m.cfg.Ploidy)
	if err != nil {
		return nil, err
	}
	observed := tensor.FromData(1, batch.R*batch.C, append([]float64(nil), batch.Data...))
	logLik, err := lik.LogProb(observed)
	if err != nil {
		return nil, err
	}

	klURows, err := qU.KL(m.priorU)
	if err != nil {
		return nil, fmt.Errorf("U KL: %w", err)
	}
	klVRows, err := qV.KL(m.priorV)
	if err != nil {
		return nil, fmt.Errorf("V KL: %w", err)
	}
	klU := autodiff.Sum(klURows)
	klV := autodiff.Sum(klVRows)

	elbo := autodiff.Sub(logLik, autodiff.Add(klU, klV))

	return &Result{
		PosteriorU: qU,
		PosteriorV: qV,
		U:          u,
		V:          v,
		Logits:     logits,
		LogLik:     logLik,
		KLU:        klU,
		KLV:        klV,
		ELBO:       elbo,
	}, nil
}
