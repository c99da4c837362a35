// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/mlp/internal/activation"
	"github.com/born-ml/mlp/internal/network"
)

// Architecture is a fully connected network with sizes n0..nL.
type Architecture = network.Architecture

// Moments holds the Adam moment buffers of an Architecture.
type Moments = network.Moments

// Option configures NewArchitecture.
type Option = network.Option

// ErrInvalidLayers is returned for layer size sequences that cannot form a network.
var ErrInvalidLayers = network.ErrInvalidLayers

// NewArchitecture allocates a zeroed network with the given layer sizes.
func NewArchitecture(sizes []int, opts ...Option) (*Architecture, error) {
	return network.New(sizes, opts...)
}

// WithMoments allocates Adam moment buffers.
func WithMoments() Option {
	return network.WithMoments()
}

// Activation selects an activation function.
type Activation = activation.Kind

// Supported activations.
const (
	Identity  = activation.Identity
	ReLU      = activation.ReLU
	LeakyReLU = activation.LeakyReLU
	Sigmoid   = activation.Sigmoid
	Tanh      = activation.Tanh
)

// ActivationFunc pairs an activation with its derivative.
type ActivationFunc = activation.Func

// ErrUnknownActivation is returned for activation kinds outside the supported set.
var ErrUnknownActivation = activation.ErrUnknownKind

// ParseActivation parses an activation name such as "sigmoid" or "leaky-relu".
func ParseActivation(s string) (Activation, error) {
	return activation.ParseKind(s)
}

// LookupActivation returns the function pair for k.
func LookupActivation(k Activation) (ActivationFunc, error) {
	return activation.Lookup(k)
}
