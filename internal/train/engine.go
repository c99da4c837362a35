// Package train drives mini-batch training of a feed-forward network.
//
// An Engine owns the live parameters, a same-shaped gradient accumulator, the
// optimizer and the batch view over a Provider's training set. Each epoch
// walks the batches in order; each batch accumulates per-example gradients,
// divides them by the batch's real row count and takes one optimizer step.
//
// Example usage:
//
//	eng, err := train.New(train.DefaultConfig(), []int{2, 4, 1}, provider,
//	    train.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//
//	reports, err := eng.Train(ctx)
package train

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/born-ml/mlp/internal/activation"
	"github.com/born-ml/mlp/internal/batch"
	"github.com/born-ml/mlp/internal/matrix"
	"github.com/born-ml/mlp/internal/network"
	"github.com/born-ml/mlp/internal/optim"
	"github.com/born-ml/mlp/internal/simd"
)

// ErrClosed is returned by operations on a closed engine.
var ErrClosed = errors.New("engine is closed")

// seedStream is the second PCG word derived from Config.Seed.
const seedStream = 0x9e3779b97f4a7c15

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for epoch summaries. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithObserver registers an observer notified after every epoch.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// WithTracker routes every matrix the engine allocates through t.
func WithTracker(t matrix.Tracker) Option {
	return func(e *Engine) {
		e.tracker = t
	}
}

// Engine trains one network on one training set.
type Engine struct {
	cfg       Config
	params    *network.Architecture
	grads     *network.Architecture
	hidden    activation.Func
	output    activation.Func
	optimizer optim.Optimizer

	input  *matrix.Matrix
	target *matrix.Matrix
	mask   []float32
	perm   []int
	view   *batch.View
	rng    *rand.Rand

	workers []*worker
	epoch   int
	closed  bool

	logger    *slog.Logger
	observers []Observer
	tracker   matrix.Tracker
}

// New validates cfg against sizes and the provider, allocates the network
// and its gradient twin, and randomizes the weights from cfg.Seed.
func New(cfg Config, sizes []int, p Provider, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Workers = cfg.workers()
	if len(sizes) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 layer sizes, got %v", network.ErrInvalidLayers, sizes)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: nil provider", ErrInvalidConfig)
	}
	if err := checkProvider(p, sizes); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		hidden: activation.MustLookup(cfg.Hidden),
		output: activation.MustLookup(cfg.Output),
		input:  p.TrainingInput(),
		target: p.TrainingOutput(),
		mask:   p.OutputMask().Lanes(),
		rng:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^seedStream)),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}

	optimizer, err := optim.New(cfg.Optimizer, cfg.optimConfig())
	if err != nil {
		return nil, err
	}
	e.optimizer = optimizer

	matrixOpts := []matrix.Option{matrix.WithLanes(e.input.Lanes())}
	if e.tracker != nil {
		matrixOpts = append(matrixOpts, matrix.WithTracker(e.tracker))
	}
	netOpts := []network.Option{network.WithMatrixOptions(matrixOpts...)}

	paramOpts := netOpts
	if cfg.Optimizer.NeedsMoments() {
		paramOpts = append(paramOpts[:len(paramOpts):len(paramOpts)], network.WithMoments())
	}
	if e.params, err = network.New(sizes, paramOpts...); err != nil {
		return nil, err
	}
	if e.grads, err = network.New(sizes, netOpts...); err != nil {
		e.params.Release()
		return nil, err
	}
	e.params.RandomizeWeights(e.rng)

	e.perm = batch.Permutation(e.input.Rows(), nil)
	if e.view, err = batch.New(e.perm, cfg.BatchSize); err != nil {
		e.Close()
		return nil, err
	}

	if cfg.Workers > 1 {
		if err := e.startWorkers(netOpts); err != nil {
			e.Close()
			return nil, err
		}
	}

	e.logger.Debug("engine ready",
		slog.Any("sizes", sizes),
		slog.Int("rows", e.input.Rows()),
		slog.Int("lanes", e.input.Lanes()),
		slog.Int("batches", e.view.Len()),
		slog.String("optimizer", cfg.Optimizer.String()),
		slog.String("hidden", cfg.Hidden.String()),
		slog.String("output", cfg.Output.String()),
		slog.Int("workers", cfg.Workers),
	)
	return e, nil
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Architecture returns the live parameters.
func (e *Engine) Architecture() *network.Architecture {
	return e.params
}

// Optimizer returns the optimizer stepping the parameters.
func (e *Engine) Optimizer() optim.Optimizer {
	return e.optimizer
}

// Epoch returns the number of completed epochs.
func (e *Engine) Epoch() int {
	return e.epoch
}

// SetEpoch sets the completed-epoch counter, for resuming from a checkpoint.
func (e *Engine) SetEpoch(n int) {
	e.epoch = n
}

// Batches returns the number of batches per epoch.
func (e *Engine) Batches() int {
	return e.view.Len()
}

// Step trains one epoch.
func (e *Engine) Step() (EpochReport, error) {
	if e.closed {
		return EpochReport{}, ErrClosed
	}
	start := time.Now()
	if e.cfg.Shuffle {
		batch.Shuffle(e.perm, e.rng)
	}

	var total float64
	for b := range e.view.All() {
		loss, err := e.trainBatch(b)
		if err != nil {
			return EpochReport{}, fmt.Errorf("epoch %d batch %d: %w", e.epoch+1, b.Index(), err)
		}
		total += loss
	}
	e.epoch++

	elapsed := time.Since(start)
	rows := e.view.Rows()
	report := EpochReport{
		Epoch:    e.epoch,
		Loss:     float32(total / float64(rows)),
		Rows:     rows,
		Batches:  e.view.Len(),
		Duration: elapsed,
	}
	if s := elapsed.Seconds(); s > 0 {
		report.Throughput = float64(rows) / s
	}

	e.logger.Info("epoch", slog.Any("report", report))
	for _, o := range e.observers {
		o.OnEpoch(report)
	}
	return report, nil
}

// trainBatch accumulates, normalizes and applies the gradients of one batch
// and returns its summed loss.
func (e *Engine) trainBatch(b batch.Batch) (float64, error) {
	var loss float64
	if len(e.workers) > 0 {
		var err error
		if loss, err = e.parallelBatch(b); err != nil {
			return 0, err
		}
	} else {
		e.grads.ZeroOut()
		for x, y := range b.Rows(e.input, e.target) {
			l, err := accumulate(e.params, e.grads, x, y, e.mask, e.hidden, e.output)
			if err != nil {
				return 0, err
			}
			loss += float64(l)
		}
	}

	normalize(e.grads, b.Size())
	if err := e.optimizer.Learn(e.params, e.grads); err != nil {
		return 0, err
	}
	if err := e.syncWorkers(); err != nil {
		return 0, err
	}

	e.logger.Debug("batch",
		slog.Int("epoch", e.epoch+1),
		slog.Int("batch", b.Index()),
		slog.Int("rows", b.Size()),
		slog.Float64("loss", loss/float64(b.Size())),
	)
	return loss, nil
}

// Run trains n epochs, stopping early when ctx is done. It returns the
// reports of the completed epochs.
func (e *Engine) Run(ctx context.Context, n int) ([]EpochReport, error) {
	reports := make([]EpochReport, 0, n)
	for range n {
		if err := ctx.Err(); err != nil {
			return reports, fmt.Errorf("training stopped after epoch %d: %w", e.epoch, err)
		}
		r, err := e.Step()
		if err != nil {
			return reports, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// Train runs Config.Epochs epochs.
func (e *Engine) Train(ctx context.Context) ([]EpochReport, error) {
	return e.Run(ctx, e.cfg.Epochs)
}

// Snapshots trains up to n epochs lazily, yielding after each one a report
// and the outputs for every training row. Breaking out of the loop stops
// training. Each snapshot's Outputs must be released by the caller.
func (e *Engine) Snapshots(n int) iter.Seq2[Snapshot, error] {
	return func(yield func(Snapshot, error) bool) {
		for range n {
			r, err := e.Step()
			if err != nil {
				yield(Snapshot{}, err)
				return
			}
			outs, err := e.Outputs()
			if err != nil {
				yield(Snapshot{}, err)
				return
			}
			if !yield(Snapshot{EpochReport: r, Outputs: outs}, nil) {
				return
			}
		}
	}
}

// Outputs runs inference on every training row and returns a
// rowCount x outputWidth matrix owned by the caller.
func (e *Engine) Outputs() (*matrix.Matrix, error) {
	if e.closed {
		return nil, ErrClosed
	}
	out := e.params.Output()
	opts := []matrix.Option{matrix.WithLanes(out.Lanes())}
	if e.tracker != nil {
		opts = append(opts, matrix.WithTracker(e.tracker))
	}
	res, err := matrix.New(e.input.Rows(), out.Cols(), opts...)
	if err != nil {
		return nil, err
	}
	for r := range e.input.Rows() {
		copy(e.params.Neurons[0].PaddedRow(0), e.input.PaddedRow(r))
		if _, err := e.params.Forward(e.hidden, e.output); err != nil {
			res.Release()
			return nil, err
		}
		copy(res.PaddedRow(r), out.PaddedRow(0))
	}
	return res, nil
}

// Input returns the writable input row of the network.
func (e *Engine) Input() []float32 {
	return e.params.Input()
}

// ForwardFunc returns a function that runs the network on the current
// contents of Input and returns a view of the output row. The view is
// overwritten by the next forward pass.
//
// The returned function panics with ErrClosed once the engine is closed.
// Forward only fails on mismatched shapes, which an engine's own
// architecture never has, so any other panic is a bug.
func (e *Engine) ForwardFunc() func() []float32 {
	return func() []float32 {
		if e.closed {
			panic(ErrClosed)
		}
		out, err := e.params.Forward(e.hidden, e.output)
		if err != nil {
			panic(fmt.Sprintf("train: forward on engine architecture: %v", err))
		}
		return out.Row(0)
	}
}

// Predict runs the network on in and returns a copy of the output.
func (e *Engine) Predict(in []float32) ([]float32, error) {
	if e.closed {
		return nil, ErrClosed
	}
	dst := e.params.Input()
	if len(in) != len(dst) {
		return nil, fmt.Errorf("%w: input has %d values, network takes %d", matrix.ErrDimensionMismatch, len(in), len(dst))
	}
	copy(dst, in)
	out, err := e.params.Forward(e.hidden, e.output)
	if err != nil {
		return nil, err
	}
	return append([]float32(nil), out.Row(0)...), nil
}

// Loss returns the mean per-example squared error over the whole training
// set without changing the parameters.
func (e *Engine) Loss() (float32, error) {
	if e.closed {
		return 0, ErrClosed
	}
	var total float64
	for r := range e.input.Rows() {
		copy(e.params.Neurons[0].PaddedRow(0), e.input.PaddedRow(r))
		out, err := e.params.Forward(e.hidden, e.output)
		if err != nil {
			return 0, err
		}
		total += float64(simd.SquaredDiffSum(out.PaddedRow(0), e.target.PaddedRow(r), e.mask))
	}
	return float32(total / float64(e.input.Rows())), nil
}

// Close releases every matrix the engine allocated. The provider's matrices
// are left alone. Close is idempotent.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.stopWorkers()
	if e.params != nil {
		e.params.Release()
	}
	if e.grads != nil {
		e.grads.Release()
	}
}
