package train

import (
	"github.com/born-ml/mlp/internal/batch"
	"github.com/born-ml/mlp/internal/network"
	"github.com/born-ml/mlp/internal/parallel"
)

// worker owns a private parameter copy and gradient accumulator.
type worker struct {
	params *network.Architecture
	grads  *network.Architecture
	loss   float64
}

func (e *Engine) startWorkers(opts []network.Option) error {
	for range e.cfg.Workers {
		params, err := network.New(e.params.Sizes(), opts...)
		if err != nil {
			e.stopWorkers()
			return err
		}
		grads, err := network.New(e.params.Sizes(), opts...)
		if err != nil {
			params.Release()
			e.stopWorkers()
			return err
		}
		e.workers = append(e.workers, &worker{params: params, grads: grads})
	}
	return e.syncWorkers()
}

func (e *Engine) stopWorkers() {
	for _, w := range e.workers {
		w.params.Release()
		w.grads.Release()
	}
	e.workers = nil
}

func (e *Engine) syncWorkers() error {
	for _, w := range e.workers {
		if err := w.params.CopyParamsFrom(e.params); err != nil {
			return err
		}
	}
	return nil
}

// parallelBatch splits b across the workers, then sums their gradients in
// worker order into e.grads.
func (e *Engine) parallelBatch(b batch.Batch) (float64, error) {
	parts := b.Split(len(e.workers))
	err := parallel.Run(len(parts), func(i int) error {
		w := e.workers[i]
		w.grads.ZeroOut()
		w.loss = 0
		for x, y := range parts[i].Rows(e.input, e.target) {
			loss, err := accumulate(w.params, w.grads, x, y, e.mask, e.hidden, e.output)
			if err != nil {
				return err
			}
			w.loss += float64(loss)
		}
		return nil
	}, parallel.Workers(len(parts)))
	if err != nil {
		return 0, err
	}

	e.grads.ZeroOut()
	var loss float64
	sum := e.grads.Params()
	for i := range parts {
		w := e.workers[i]
		for k, m := range w.grads.Params() {
			if err := sum[k].SumInPlace(m); err != nil {
				return 0, err
			}
		}
		loss += w.loss
	}
	return loss, nil
}
