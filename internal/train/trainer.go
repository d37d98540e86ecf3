// Package train drives the optimization loop: epochs over a batch source,
// one Adam step per batch, metric emission after every step. Execution is
// strictly sequential; the model parameters are owned by the trainer and
// updated in place.
package train

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/genotools/genovae/internal/genio"
	"github.com/genotools/genovae/internal/logger"
	"github.com/genotools/genovae/internal/metrics"
	"github.com/genotools/genovae/internal/model"
	"github.com/genotools/genovae/internal/tensor"
)

// BatchSource yields genotype batches for one pass over the dataset. Next
// returns genio.ErrEndOfEpoch when the pass is exhausted; Reset rewinds to
// the start for the following epoch.
type BatchSource interface {
	Next() (tensor.Mat, error)
	Reset() error
}

// Config holds the loop parameters, fixed at run start.
type Config struct {
	Epochs    int
	LearnRate float64
}

// DefaultLearnRate matches the reference configuration.
const DefaultLearnRate = 0.001

// Validate reports configuration errors.
func (c Config) Validate() error {
	if c.Epochs <= 0 {
		return fmt.Errorf("train: epoch count must be positive, got %d", c.Epochs)
	}
	if !(c.LearnRate > 0) {
		return fmt.Errorf("train: learning rate must be positive, got %v", c.LearnRate)
	}
	return nil
}

// Trainer runs the two nested loops: epochs outside, batches inside. There
// is no early stopping and no retry; a malformed batch aborts the run.
type Trainer struct {
	cfg    Config
	model  *model.Model
	source BatchSource
	opt    *Adam
	sink   metrics.Sink
	log    logger.Logger

	step int
}

// New wires a trainer. The sink may be nil to discard metrics.
func New(cfg Config, m *model.Model, source BatchSource, sink metrics.Sink, log logger.Logger) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.New("train: model must not be nil")
	}
	if source == nil {
		return nil, errors.New("train: batch source must not be nil")
	}
	if sink == nil {
		sink = metrics.Discard
	}
	if log == nil {
		log = logger.Default()
	}
	return &Trainer{
		cfg:    cfg,
		model:  m,
		source: source,
		opt:    NewAdam(m.Params(), cfg.LearnRate),
		sink:   sink,
		log:    log,
	}, nil
}

// Steps returns the number of optimization steps taken so far.
func (t *Trainer) Steps() int { return t.step }

// Run executes the full epoch budget. The context is checked between steps
// only; a single step is never interrupted.
func (t *Trainer) Run(ctx context.Context) error {
	for epoch := 0; epoch < t.cfg.Epochs; epoch++ {
		if err := t.source.Reset(); err != nil {
			return fmt.Errorf("train: reset data source for epoch %d: %w", epoch, err)
		}
		if err := t.runEpoch(ctx, epoch); err != nil {
			return err
		}
	}
	t.log.Info("training finished", "epochs", t.cfg.Epochs, "steps", t.step)
	return nil
}

func (t *Trainer) runEpoch(ctx context.Context, epoch int) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch, err := t.source.Next()
		if errors.Is(err, genio.ErrEndOfEpoch) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("train: epoch %d: %w", epoch, err)
		}
		if err := t.stepOnce(batch, epoch); err != nil {
			return err
		}
	}
}

func (t *Trainer) stepOnce(batch tensor.Mat, epoch int) error {
	t.opt.ZeroGrad()

	res, err := t.model.Forward(batch)
	if err != nil {
		return fmt.Errorf("train: step %d: %w", t.step, err)
	}

	elbo := res.ELBO.Scalar()

	// Maximizing the ELBO by descending on its negation: backward from the
	// ELBO, then flip the gradients before the Adam step.
	res.ELBO.Backward()
	t.negateGrads()
	t.opt.Step()

	t.emit(res)
	if math.IsNaN(elbo) || math.IsInf(elbo, 0) {
		t.log.Warn("objective is not finite", "step", t.step, "elbo", elbo)
	}
	t.log.Debug("step complete", "epoch", epoch, "step", t.step, "elbo", elbo)
	t.step++
	return nil
}

// negateGrads flips the accumulated gradients so that a Backward pass from
// the ELBO becomes a descent direction on -ELBO.
func (t *Trainer) negateGrads() {
	for _, p := range t.model.Params() {
		for i := range p.Grad.Data {
			p.Grad.Data[i] = -p.Grad.Data[i]
		}
	}
}

func (t *Trainer) emit(res *model.Result) {
	t.sink.Emit("elbo", res.ELBO.Scalar(), t.step)
	t.sink.Emit("neg_kl_u", -res.KLU.Scalar(), t.step)
	t.sink.Emit("neg_kl_v", -res.KLV.Scalar(), t.step)
	t.sink.Emit("likelihood", res.LogLik.Scalar(), t.step)
}
