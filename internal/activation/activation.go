// Package activation provides the elementwise nonlinearities of the training
// engine and their derivatives.
//
// Kinds form a closed set. Lookup maps a Kind to its Func and rejects any
// value outside the set, so a bad configuration fails when the engine is
// built rather than mid-training.
package activation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/born-ml/mlp/internal/matrix"
	"github.com/born-ml/mlp/internal/simd"
)

// ErrUnknownKind is returned for activation kinds outside the supported set.
var ErrUnknownKind = errors.New("unknown activation")

// DerivativeFloor is the lower bound applied to the sigmoid and tanh
// derivatives. It keeps saturated units trainable.
const DerivativeFloor = 0.01

// LeakySlope is the negative-side slope of LeakyReLU.
const LeakySlope = 0.01

// Kind selects an activation.
type Kind int

// Supported activations.
const (
	Identity Kind = iota
	ReLU
	LeakyReLU
	Sigmoid
	Tanh
)

var names = [...]string{
	Identity:  "identity",
	ReLU:      "relu",
	LeakyReLU: "leaky-relu",
	Sigmoid:   "sigmoid",
	Tanh:      "tanh",
}

// String returns the lower-case activation name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(names) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return names[k]
}

// ParseKind parses an activation name as produced by String.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range names {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Func pairs an in-place transform with the derivative of the activation
// expressed in terms of its output value a.
type Func struct {
	Kind       Kind
	Apply      func(m *matrix.Matrix)
	Derivative func(a float32) float32
}

var table = [...]Func{
	Identity: {
		Kind:       Identity,
		Apply:      func(*matrix.Matrix) {},
		Derivative: func(float32) float32 { return 1 },
	},
	ReLU: {
		Kind:  ReLU,
		Apply: func(m *matrix.Matrix) { simd.ReLU(m.Data()) },
		Derivative: func(a float32) float32 {
			if a > 0 {
				return 1
			}
			return 0
		},
	},
	LeakyReLU: {
		Kind:  LeakyReLU,
		Apply: func(m *matrix.Matrix) { simd.LeakyReLU(m.Data(), LeakySlope) },
		Derivative: func(a float32) float32 {
			if a > 0 {
				return 1
			}
			return LeakySlope
		},
	},
	Sigmoid: {
		Kind: Sigmoid,
		// sigmoid(0) = 0.5, so the padding lanes are restored afterwards.
		Apply: func(m *matrix.Matrix) {
			simd.Sigmoid(m.Data())
			m.ClearPadding()
		},
		Derivative: func(a float32) float32 {
			return max(a*(1-a), DerivativeFloor)
		},
	},
	Tanh: {
		Kind:  Tanh,
		Apply: func(m *matrix.Matrix) { simd.Tanh(m.Data()) },
		Derivative: func(a float32) float32 {
			return max(1-a*a, DerivativeFloor)
		},
	},
}

// Lookup returns the Func for k.
func Lookup(k Kind) (Func, error) {
	if k < 0 || int(k) >= len(table) {
		return Func{}, fmt.Errorf("%w: %s", ErrUnknownKind, k)
	}
	return table[k], nil
}

// MustLookup is like Lookup but panics on an unknown kind.
func MustLookup(k Kind) Func {
	f, err := Lookup(k)
	if err != nil {
		panic(err)
	}
	return f
}
