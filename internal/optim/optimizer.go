// Package optim implements the first-order optimizers of the training engine.
//
// This package provides:
//   - Optimizer interface: applies one batch of gradients to the parameters
//   - SGD: stochastic gradient descent with decoupled weight decay
//   - Adam: adaptive moment estimation with decoupled (AdamW) weight decay
//
// Optimizers read the weight and bias gradients of a gradient architecture
// and mutate the matching matrices of the parameter architecture in place.
//
// Example usage:
//
//	optimizer, err := optim.New(optim.KindAdam, optim.Config{LR: 0.001})
//	if err != nil {
//	    return err
//	}
//
//	for batch := range view.All() {
//	    grads.ZeroOut()
//	    accumulate(params, grads, batch)
//	    if err := optimizer.Learn(params, grads); err != nil {
//	        return err
//	    }
//	}
package optim

import (
	"errors"
	"fmt"
	"strings"

	"github.com/born-ml/mlp/internal/matrix"
	"github.com/born-ml/mlp/internal/network"
)

// Common errors.
var (
	ErrUnknownKind = errors.New("unknown optimizer")
	ErrNoMoments   = errors.New("architecture has no moment buffers")
)

// Optimizer is the base interface for all optimization algorithms.
//
// All optimizers must implement:
//   - Learn: Apply one step of gradient updates to the parameters
//   - GetLR / SetLR: Read and change the learning rate (for scheduling)
//   - Kind: Report which algorithm this is (for checkpoints)
type Optimizer interface {
	// Learn updates params.Weights and params.Biases in place from
	// grads.Weights and grads.Biases. The two architectures must have the
	// same layer sizes.
	Learn(params, grads *network.Architecture) error

	// GetLR returns the current learning rate.
	GetLR() float32

	// SetLR updates the learning rate.
	SetLR(lr float32)

	// Kind returns the optimizer selector.
	Kind() Kind
}

// Kind selects an optimizer.
type Kind int

// Supported optimizers.
const (
	KindSGD Kind = iota
	KindAdam
)

// String returns the lower-case optimizer name.
func (k Kind) String() string {
	switch k {
	case KindSGD:
		return "sgd"
	case KindAdam:
		return "adam"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// NeedsMoments reports whether the optimizer needs moment buffers on the
// parameter architecture.
func (k Kind) NeedsMoments() bool {
	return k == KindAdam
}

// ParseKind parses an optimizer name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sgd":
		return KindSGD, nil
	case "adam", "adamw":
		return KindAdam, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Config holds the hyperparameters shared by all optimizers. Zero values
// select the per-optimizer defaults, except WeightDecay where zero disables
// decay.
type Config struct {
	LR          float32 // Learning rate
	WeightDecay float32 // Decoupled weight decay coefficient
	Beta1       float32 // Adam first-moment decay (default: 0.9)
	Beta2       float32 // Adam second-moment decay (default: 0.999)
	Epsilon     float32 // Adam denominator term (default: 1e-8)
}

// New creates the optimizer selected by kind.
func New(kind Kind, cfg Config) (Optimizer, error) {
	switch kind {
	case KindSGD:
		return NewSGD(SGDConfig{LR: cfg.LR, WeightDecay: cfg.WeightDecay}), nil
	case KindAdam:
		return NewAdam(AdamConfig{
			LR:          cfg.LR,
			Betas:       [2]float32{cfg.Beta1, cfg.Beta2},
			Eps:         cfg.Epsilon,
			WeightDecay: cfg.WeightDecay,
		}), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}

// checkPair verifies that params and grads can be stepped together.
func checkPair(params, grads *network.Architecture) error {
	if !params.Compatible(grads) {
		return fmt.Errorf("%w: params %v vs grads %v", matrix.ErrDimensionMismatch, params.Sizes(), grads.Sizes())
	}
	return nil
}
