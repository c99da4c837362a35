package train

import (
	"errors"
	"fmt"

	"github.com/born-ml/mlp/internal/activation"
	"github.com/born-ml/mlp/internal/optim"
	"github.com/born-ml/mlp/internal/parallel"
)

// ErrInvalidConfig is returned for training configurations that cannot run.
var ErrInvalidConfig = errors.New("invalid training configuration")

// Config is the immutable per-run training record.
type Config struct {
	Epochs       int     // Full passes for Train
	BatchSize    int     // Rows per optimizer step
	LearningRate float32 // Optimizer learning rate
	WeightDecay  float32 // Decoupled weight decay
	Beta1        float32 // Adam first-moment decay
	Beta2        float32 // Adam second-moment decay
	Epsilon      float32 // Adam denominator term
	Shuffle      bool    // Reshuffle the row order every epoch
	Seed         uint64  // Seed for weight initialization and shuffling

	Hidden    activation.Kind // Activation of inner layers
	Output    activation.Kind // Activation of the output layer
	Optimizer optim.Kind

	// Workers > 1 splits each batch across that many goroutines, each with
	// its own parameter and gradient copy. Gradients are summed in worker
	// order before one optimizer step. Zero picks one worker per CPU.
	Workers int
}

// DefaultConfig returns a configuration suitable for small dense problems.
func DefaultConfig() Config {
	return Config{
		Epochs:       100,
		BatchSize:    32,
		LearningRate: 0.01,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-8,
		Shuffle:      true,
		Seed:         1,
		Hidden:       activation.Sigmoid,
		Output:       activation.Sigmoid,
		Optimizer:    optim.KindAdam,
		Workers:      1,
	}
}

// Validate reports the first configuration error found.
func (c Config) Validate() error {
	switch {
	case c.Epochs <= 0:
		return fmt.Errorf("%w: epochs must be positive, got %d", ErrInvalidConfig, c.Epochs)
	case c.BatchSize <= 0:
		return fmt.Errorf("%w: batch size must be positive, got %d", ErrInvalidConfig, c.BatchSize)
	case c.LearningRate <= 0:
		return fmt.Errorf("%w: learning rate must be positive, got %g", ErrInvalidConfig, c.LearningRate)
	case c.WeightDecay < 0:
		return fmt.Errorf("%w: weight decay must not be negative, got %g", ErrInvalidConfig, c.WeightDecay)
	case c.Optimizer == optim.KindAdam && (c.Beta1 <= 0 || c.Beta1 >= 1):
		return fmt.Errorf("%w: beta1 must be in (0, 1), got %g", ErrInvalidConfig, c.Beta1)
	case c.Optimizer == optim.KindAdam && (c.Beta2 <= 0 || c.Beta2 >= 1):
		return fmt.Errorf("%w: beta2 must be in (0, 1), got %g", ErrInvalidConfig, c.Beta2)
	case c.Optimizer == optim.KindAdam && c.Epsilon <= 0:
		return fmt.Errorf("%w: epsilon must be positive, got %g", ErrInvalidConfig, c.Epsilon)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	if _, err := activation.Lookup(c.Hidden); err != nil {
		return fmt.Errorf("%w: hidden: %w", ErrInvalidConfig, err)
	}
	if _, err := activation.Lookup(c.Output); err != nil {
		return fmt.Errorf("%w: output: %w", ErrInvalidConfig, err)
	}
	if _, err := optim.New(c.Optimizer, c.optimConfig()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c Config) optimConfig() optim.Config {
	return optim.Config{
		LR:          c.LearningRate,
		WeightDecay: c.WeightDecay,
		Beta1:       c.Beta1,
		Beta2:       c.Beta2,
		Epsilon:     c.Epsilon,
	}
}

// workers resolves Workers, mapping zero to the CPU count.
func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	if def := parallel.DefaultConfig(); def.Enabled {
		return def.NumWorkers
	}
	return 1
}
