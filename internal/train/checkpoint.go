package train

import (
	"fmt"

	"github.com/born-ml/mlp/internal/network"
	"github.com/born-ml/mlp/internal/optim"
	"github.com/born-ml/mlp/internal/serialization"
)

// timestepper is implemented by optimizers with a step counter.
type timestepper interface {
	GetTimestep() int
	SetTimestep(t int)
}

// Checkpoint describes the current training state for serialization.Meta.
func (e *Engine) Checkpoint(loss float32) *serialization.TrainingMeta {
	meta := &serialization.TrainingMeta{
		Epoch:        e.epoch,
		Loss:         float64(loss),
		Optimizer:    e.cfg.Optimizer.String(),
		LearningRate: e.optimizer.GetLR(),
		WeightDecay:  e.cfg.WeightDecay,
		Hidden:       e.cfg.Hidden.String(),
		Output:       e.cfg.Output.String(),
	}
	if ts, ok := e.optimizer.(timestepper); ok {
		meta.Timestep = ts.GetTimestep()
	}
	return meta
}

// Restore copies the weights and biases of a into the engine. Adam moments
// are copied when both sides carry them. A non-nil meta also restores the
// epoch counter and the optimizer timestep.
func (e *Engine) Restore(a *network.Architecture, meta *serialization.TrainingMeta) error {
	if e.closed {
		return ErrClosed
	}
	if err := e.params.CopyParamsFrom(a); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if a.Moments != nil && e.params.Moments != nil {
		if err := e.params.CopyMomentsFrom(a); err != nil {
			return fmt.Errorf("restore: %w", err)
		}
	}
	if meta != nil {
		if meta.Optimizer != "" {
			kind, err := optim.ParseKind(meta.Optimizer)
			if err != nil {
				return fmt.Errorf("restore: %w", err)
			}
			if kind != e.cfg.Optimizer {
				e.logger.Warn("optimizer changed since checkpoint",
					"saved", kind.String(), "current", e.cfg.Optimizer.String())
			}
		}
		e.epoch = meta.Epoch
		if ts, ok := e.optimizer.(timestepper); ok && e.params.Moments != nil && a.Moments != nil {
			ts.SetTimestep(meta.Timestep)
		}
	}
	return e.syncWorkers()
}
