// Package network holds the per-layer matrices of a multilayer perceptron.
//
// Given layer sizes [n0, n1, ..., nL], an Architecture owns for i in [0, L):
//
//	Neurons[i]  1 x n_i        activations of layer i (Neurons[L] is the output)
//	Weights[i]  n_{i+1} x n_i  row = output neuron, column = input neuron
//	Biases[i]   1 x n_{i+1}
//
// and, when built WithMoments, the Adam first/second moment buffers for every
// weight and bias matrix. The same type serves as the gradient architecture:
// it has identical shapes and holds accumulated gradients instead.
package network

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"

	"github.com/born-ml/mlp/internal/activation"
	"github.com/born-ml/mlp/internal/matrix"
)

// ErrInvalidLayers is returned for layer size sequences that cannot form a network.
var ErrInvalidLayers = errors.New("invalid layer sizes")

// Moments holds the Adam moment accumulators, shaped like Weights and Biases.
type Moments struct {
	MWeights []*matrix.Matrix
	VWeights []*matrix.Matrix
	MBiases  []*matrix.Matrix
	VBiases  []*matrix.Matrix
}

// Architecture is the full set of matrices describing one network instance.
type Architecture struct {
	Neurons []*matrix.Matrix
	Weights []*matrix.Matrix
	Biases  []*matrix.Matrix
	Moments *Moments // nil unless built WithMoments

	sizes []int
	opts  []matrix.Option
}

// Option configures an Architecture.
type Option func(*config)

type config struct {
	moments bool
	matrix  []matrix.Option
}

// WithMoments allocates Adam moment buffers.
func WithMoments() Option {
	return func(c *config) {
		c.moments = true
	}
}

// WithMatrixOptions forwards options (lane width, tracker) to every matrix.
func WithMatrixOptions(opts ...matrix.Option) Option {
	return func(c *config) {
		c.matrix = append(c.matrix, opts...)
	}
}

// New allocates an Architecture for the given layer sizes. All matrices start
// zeroed.
func New(sizes []int, opts ...Option) (*Architecture, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(sizes) < 2 {
		return nil, fmt.Errorf("%w: need at least an input and an output layer, got %v", ErrInvalidLayers, sizes)
	}
	for i, n := range sizes {
		if n <= 0 {
			return nil, fmt.Errorf("%w: layer %d has size %d", ErrInvalidLayers, i, n)
		}
	}

	a := &Architecture{
		sizes: append([]int(nil), sizes...),
		opts:  cfg.matrix,
	}
	if err := a.allocate(cfg.moments); err != nil {
		a.Release()
		return nil, err
	}
	return a, nil
}

func (a *Architecture) allocate(moments bool) error {
	layers := len(a.sizes) - 1
	a.Neurons = make([]*matrix.Matrix, 0, layers+1)
	a.Weights = make([]*matrix.Matrix, 0, layers)
	a.Biases = make([]*matrix.Matrix, 0, layers)

	for _, n := range a.sizes {
		m, err := matrix.New(1, n, a.opts...)
		if err != nil {
			return err
		}
		a.Neurons = append(a.Neurons, m)
	}
	for i := range layers {
		w, err := matrix.New(a.sizes[i+1], a.sizes[i], a.opts...)
		if err != nil {
			return err
		}
		a.Weights = append(a.Weights, w)

		b, err := matrix.New(1, a.sizes[i+1], a.opts...)
		if err != nil {
			return err
		}
		a.Biases = append(a.Biases, b)
	}

	if !moments {
		return nil
	}
	a.Moments = &Moments{}
	for i := range layers {
		for _, dst := range []*[]*matrix.Matrix{&a.Moments.MWeights, &a.Moments.VWeights} {
			m, err := matrix.New(a.sizes[i+1], a.sizes[i], a.opts...)
			if err != nil {
				return err
			}
			*dst = append(*dst, m)
		}
		for _, dst := range []*[]*matrix.Matrix{&a.Moments.MBiases, &a.Moments.VBiases} {
			m, err := matrix.New(1, a.sizes[i+1], a.opts...)
			if err != nil {
				return err
			}
			*dst = append(*dst, m)
		}
	}
	return nil
}

// Sizes returns a copy of the layer size sequence.
func (a *Architecture) Sizes() []int {
	return append([]int(nil), a.sizes...)
}

// Layers returns the number of weight layers, L.
func (a *Architecture) Layers() int {
	return len(a.sizes) - 1
}

// Input returns the writable input row, Neurons[0].
func (a *Architecture) Input() []float32 {
	return a.Neurons[0].Row(0)
}

// Output returns the output activations, Neurons[L].
func (a *Architecture) Output() *matrix.Matrix {
	return a.Neurons[len(a.Neurons)-1]
}

// Params returns every weight and bias matrix, in layer order.
func (a *Architecture) Params() []*matrix.Matrix {
	out := make([]*matrix.Matrix, 0, 2*len(a.Weights))
	for i := range a.Weights {
		out = append(out, a.Weights[i], a.Biases[i])
	}
	return out
}

// all returns every owned matrix.
func (a *Architecture) all() []*matrix.Matrix {
	out := make([]*matrix.Matrix, 0, len(a.Neurons)+2*len(a.Weights))
	out = append(out, a.Neurons...)
	out = append(out, a.Weights...)
	out = append(out, a.Biases...)
	if a.Moments != nil {
		out = append(out, a.Moments.MWeights...)
		out = append(out, a.Moments.VWeights...)
		out = append(out, a.Moments.MBiases...)
		out = append(out, a.Moments.VBiases...)
	}
	return out
}

// RandomizeWeights fills Weights[i] from Uniform(-s, s) with
// s = sqrt(2 / Weights[i].Rows()) and zeroes the biases.
func (a *Architecture) RandomizeWeights(rng *rand.Rand) {
	for i, w := range a.Weights {
		s := float32(math.Sqrt(2 / float64(w.Rows())))
		w.RandomizeUniform(rng, -s, s)
		a.Biases[i].Clear()
	}
}

// ZeroOut clears neuron, weight and bias storage. Moments are left untouched.
func (a *Architecture) ZeroOut() {
	for _, m := range a.Neurons {
		m.Clear()
	}
	for _, m := range a.Params() {
		m.Clear()
	}
}

// ZeroMoments clears the Adam moment buffers, if any.
func (a *Architecture) ZeroMoments() {
	if a.Moments == nil {
		return
	}
	for _, group := range a.Moments.groups() {
		for _, m := range group {
			m.Clear()
		}
	}
}

func (m *Moments) groups() [][]*matrix.Matrix {
	return [][]*matrix.Matrix{m.MWeights, m.VWeights, m.MBiases, m.VBiases}
}

// Copy returns an independent deep copy, moments included.
func (a *Architecture) Copy() *Architecture {
	clone := func(src []*matrix.Matrix) []*matrix.Matrix {
		out := make([]*matrix.Matrix, len(src))
		for i, m := range src {
			out[i] = m.Clone()
		}
		return out
	}

	c := &Architecture{
		Neurons: clone(a.Neurons),
		Weights: clone(a.Weights),
		Biases:  clone(a.Biases),
		sizes:   append([]int(nil), a.sizes...),
		opts:    a.opts,
	}
	if a.Moments != nil {
		c.Moments = &Moments{
			MWeights: clone(a.Moments.MWeights),
			VWeights: clone(a.Moments.VWeights),
			MBiases:  clone(a.Moments.MBiases),
			VBiases:  clone(a.Moments.VBiases),
		}
	}
	return c
}

// Compatible reports whether other has the same layer sizes and stride layout.
func (a *Architecture) Compatible(other *Architecture) bool {
	if len(a.sizes) != len(other.sizes) {
		return false
	}
	for i := range a.sizes {
		if a.sizes[i] != other.sizes[i] {
			return false
		}
	}
	return a.Neurons[0].Lanes() == other.Neurons[0].Lanes()
}

// CopyParamsFrom overwrites weights and biases with those of src without
// allocating.
func (a *Architecture) CopyParamsFrom(src *Architecture) error {
	if !a.Compatible(src) {
		return fmt.Errorf("%w: copy params: %v vs %v", matrix.ErrDimensionMismatch, a.sizes, src.sizes)
	}
	for i := range a.Weights {
		if err := a.Weights[i].CopyAllFrom(src.Weights[i]); err != nil {
			return err
		}
		if err := a.Biases[i].CopyAllFrom(src.Biases[i]); err != nil {
			return err
		}
	}
	return nil
}

// CopyMomentsFrom overwrites the Adam moments with those of src. Both
// architectures must carry moments.
func (a *Architecture) CopyMomentsFrom(src *Architecture) error {
	if !a.Compatible(src) {
		return fmt.Errorf("%w: copy moments: %v vs %v", matrix.ErrDimensionMismatch, a.sizes, src.sizes)
	}
	if a.Moments == nil || src.Moments == nil {
		return fmt.Errorf("%w: copy moments: missing moment buffers", matrix.ErrDimensionMismatch)
	}
	dst, from := a.Moments.groups(), src.Moments.groups()
	for g := range dst {
		for i, m := range dst[g] {
			if err := m.CopyAllFrom(from[g][i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// Forward runs the network on the current contents of Neurons[0]:
//
//	Neurons[i+1] = act(Neurons[i] . Weights[i] + Biases[i])
//
// with the hidden activation on inner layers and the output activation on the
// last one. It returns Neurons[L].
func (a *Architecture) Forward(hidden, output activation.Func) (*matrix.Matrix, error) {
	last := a.Layers() - 1
	for i := range a.Weights {
		next := a.Neurons[i+1]
		if err := a.Neurons[i].Dot(a.Weights[i], next); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if err := next.SumInPlace(a.Biases[i]); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if i < last {
			hidden.Apply(next)
		} else {
			output.Apply(next)
		}
	}
	return a.Output(), nil
}

// Print writes every weight and bias matrix to w, prefixed with name.
func (a *Architecture) Print(w io.Writer, name string) error {
	if _, err := fmt.Fprintf(w, "== %s %v\n", name, a.sizes); err != nil {
		return err
	}
	for i := range a.Weights {
		if err := a.Weights[i].Print(w, fmt.Sprintf("weights[%d]", i)); err != nil {
			return err
		}
		if err := a.Biases[i].Print(w, fmt.Sprintf("biases[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

// Release releases every owned matrix.
func (a *Architecture) Release() {
	for _, m := range a.all() {
		m.Release()
	}
}
