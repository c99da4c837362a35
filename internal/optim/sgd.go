package optim

import (
	"github.com/born-ml/mlp/internal/network"
	"github.com/born-ml/mlp/internal/simd"
)

// SGD implements Stochastic Gradient Descent with decoupled weight decay.
//
// Update rule:
//
//	param = param * (1 - lr*wd) - lr * gradient
//
// The decay shrinks the parameter directly instead of being added to the
// gradient, so it is independent of the gradient scale.
//
// Example:
//
//	optimizer := optim.NewSGD(optim.SGDConfig{
//	    LR:          0.1,
//	    WeightDecay: 1e-4,
//	})
//
//	for batch := range view.All() {
//	    accumulate(params, grads, batch)
//	    optimizer.Learn(params, grads)
//	}
type SGD struct {
	lr          float32
	weightDecay float32
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR          float32 // Learning rate (default: 0.01)
	WeightDecay float32 // Decoupled weight decay (default: 0)
}

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	// Set defaults
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD{
		lr:          config.LR,
		weightDecay: config.WeightDecay,
	}
}

// Learn performs a single optimization step on every weight and bias matrix.
func (s *SGD) Learn(params, grads *network.Architecture) error {
	if err := checkPair(params, grads); err != nil {
		return err
	}
	for i := range params.Weights {
		simd.SGDStep(params.Weights[i].Data(), grads.Weights[i].Data(), s.lr, s.weightDecay)
		simd.SGDStep(params.Biases[i].Data(), grads.Biases[i].Data(), s.lr, s.weightDecay)
	}
	return nil
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float32 {
	return s.lr
}

// SetLR updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (s *SGD) SetLR(lr float32) {
	s.lr = lr
}

// WeightDecay returns the decoupled weight decay coefficient.
func (s *SGD) WeightDecay() float32 {
	return s.weightDecay
}

// Kind implements Optimizer.
func (s *SGD) Kind() Kind {
	return KindSGD
}
