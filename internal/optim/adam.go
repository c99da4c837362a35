package optim

import (
	"fmt"

	"github.com/born-ml/mlp/internal/network"
	"github.com/born-ml/mlp/internal/simd"
	"github.com/chewxy/math32"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer with
// decoupled weight decay.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	param = param - lr*wd*param - lr * m_hat / (sqrt(v_hat) + eps)
//
// The timestep t advances once per Learn call and is shared by every layer.
// The moment buffers live on the parameter architecture (network.WithMoments),
// so copying the architecture copies the optimizer state with it.
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
//
// Example:
//
//	optimizer := optim.NewAdam(optim.AdamConfig{
//	    LR:    0.001,
//	    Betas: [2]float32{0.9, 0.999},
//	    Eps:   1e-8,
//	})
type Adam struct {
	lr          float32
	beta1       float32
	beta2       float32
	eps         float32
	weightDecay float32
	t           int // Timestep for bias correction
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR          float32    // Learning rate (default: 0.001)
	Betas       [2]float32 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps         float32    // Term for numerical stability (default: 1e-8)
	WeightDecay float32    // Decoupled weight decay (default: 0)
}

// NewAdam creates a new Adam optimizer.
//
// Default hyperparameters:
//   - LR: 0.001
//   - Beta1: 0.9
//   - Beta2: 0.999
//   - Eps: 1e-8
func NewAdam(config AdamConfig) *Adam {
	// Set defaults
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &Adam{
		lr:          config.LR,
		beta1:       config.Betas[0],
		beta2:       config.Betas[1],
		eps:         config.Eps,
		weightDecay: config.WeightDecay,
	}
}

// Learn performs a single optimization step using Adam algorithm.
//
// Applies Adam update to all weight and bias matrices:
//  1. Update biased first moment estimate
//  2. Update biased second moment estimate
//  3. Compute bias-corrected moment estimates
//  4. Update parameters
func (a *Adam) Learn(params, grads *network.Architecture) error {
	if err := checkPair(params, grads); err != nil {
		return err
	}
	mom := params.Moments
	if mom == nil {
		return fmt.Errorf("adam: %w", ErrNoMoments)
	}

	// Increment timestep
	a.t++

	c := simd.AdamCoefficients{
		LR:          a.lr,
		WeightDecay: a.weightDecay,
		Beta1:       a.beta1,
		Beta2:       a.beta2,
		Epsilon:     a.eps,
		Correction1: 1 - math32.Pow(a.beta1, float32(a.t)),
		Correction2: 1 - math32.Pow(a.beta2, float32(a.t)),
	}

	for i := range params.Weights {
		simd.AdamStep(params.Weights[i].Data(), grads.Weights[i].Data(),
			mom.MWeights[i].Data(), mom.VWeights[i].Data(), c)
		simd.AdamStep(params.Biases[i].Data(), grads.Biases[i].Data(),
			mom.MBiases[i].Data(), mom.VBiases[i].Data(), c)
	}
	return nil
}

// GetLR returns the current learning rate.
func (a *Adam) GetLR() float32 {
	return a.lr
}

// SetLR updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (a *Adam) SetLR(lr float32) {
	a.lr = lr
}

// Betas returns the first and second moment decay rates.
func (a *Adam) Betas() [2]float32 {
	return [2]float32{a.beta1, a.beta2}
}

// GetTimestep returns the current timestep.
//
// Useful for monitoring optimizer state.
func (a *Adam) GetTimestep() int {
	return a.t
}

// SetTimestep restores the timestep, for resuming from a checkpoint whose
// moments were saved at step t.
func (a *Adam) SetTimestep(t int) {
	a.t = t
}

// Kind implements Optimizer.
func (a *Adam) Kind() Kind {
	return KindAdam
}
