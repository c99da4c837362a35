// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/mlp/internal/optim"
)

// Optimizer applies one batch of gradients to the parameters.
type Optimizer = optim.Optimizer

// Config holds the hyperparameters shared by all optimizers.
type Config = optim.Config

// Kind selects an optimizer.
type Kind = optim.Kind

// Supported optimizers.
const (
	KindSGD  = optim.KindSGD
	KindAdam = optim.KindAdam
)

// Optimizer errors.
var (
	ErrUnknownKind = optim.ErrUnknownKind
	ErrNoMoments   = optim.ErrNoMoments
)

// New creates the optimizer selected by kind.
func New(kind Kind, cfg Config) (Optimizer, error) {
	return optim.New(kind, cfg)
}

// ParseKind parses "sgd", "adam" or "adamw".
func ParseKind(s string) (Kind, error) {
	return optim.ParseKind(s)
}

// SGD (Stochastic Gradient Descent)

// SGD is stochastic gradient descent with decoupled weight decay.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	optimizer := optim.NewSGD(optim.SGDConfig{
//	    LR:          0.1,
//	    WeightDecay: 1e-4,
//	})
func NewSGD(config SGDConfig) *SGD {
	return optim.NewSGD(config)
}

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction. The parameter
// architecture passed to Learn must carry moment buffers.
//
// Example:
//
//	optimizer := optim.NewAdam(optim.AdamConfig{
//	    LR:    0.001,
//	    Betas: [2]float32{0.9, 0.999},
//	    Eps:   1e-8,
//	})
func NewAdam(config AdamConfig) *Adam {
	return optim.NewAdam(config)
}
