// Package dataset builds training sets for the engine.
//
// Every Set owns one input and one target matrix with a row per example.
// The generated sets (XOR, parity, echo) enumerate bit patterns; LoadIDX
// reads MNIST-style image and label files.
package dataset

import (
	"errors"
	"fmt"

	"github.com/born-ml/mlp/internal/matrix"
)

// ErrInvalidSet is returned for data that cannot form a training set.
var ErrInvalidSet = errors.New("invalid data set")

// MaxBits bounds the width of the enumerated bit-pattern sets.
const MaxBits = 20

// Set is an in-memory training set.
type Set struct {
	name string
	in   *matrix.Matrix
	out  *matrix.Matrix
}

// New allocates a set of rows examples with the given widths. Both matrices
// start zeroed.
func New(name string, rows, inCols, outCols int, opts ...matrix.Option) (*Set, error) {
	in, err := matrix.New(rows, inCols, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s input: %w", name, err)
	}
	out, err := matrix.New(rows, outCols, opts...)
	if err != nil {
		in.Release()
		return nil, fmt.Errorf("%s output: %w", name, err)
	}
	return &Set{name: name, in: in, out: out}, nil
}

// FromRows builds a set from row slices. All input rows must share one
// width, as must all output rows.
func FromRows(name string, in, out [][]float32, opts ...matrix.Option) (*Set, error) {
	if len(in) == 0 || len(in) != len(out) {
		return nil, fmt.Errorf("%w: %s has %d input and %d output rows", ErrInvalidSet, name, len(in), len(out))
	}
	s, err := New(name, len(in), len(in[0]), len(out[0]), opts...)
	if err != nil {
		return nil, err
	}
	for r := range in {
		if len(in[r]) != s.in.Cols() || len(out[r]) != s.out.Cols() {
			s.Release()
			return nil, fmt.Errorf("%w: %s row %d is %dx%d, want %dx%d",
				ErrInvalidSet, name, r, len(in[r]), len(out[r]), s.in.Cols(), s.out.Cols())
		}
		copy(s.in.Row(r), in[r])
		copy(s.out.Row(r), out[r])
	}
	return s, nil
}

// Name returns the set name.
func (s *Set) Name() string { return s.name }

// Rows returns the number of examples.
func (s *Set) Rows() int { return s.in.Rows() }

// InputWidth returns the number of input features.
func (s *Set) InputWidth() int { return s.in.Cols() }

// OutputWidth returns the number of target values.
func (s *Set) OutputWidth() int { return s.out.Cols() }

// TrainingInput returns the rows x InputWidth input matrix.
func (s *Set) TrainingInput() *matrix.Matrix { return s.in }

// TrainingOutput returns the rows x OutputWidth target matrix.
func (s *Set) TrainingOutput() *matrix.Matrix { return s.out }

// OutputMask returns the stride mask of the target rows.
func (s *Set) OutputMask() matrix.StrideMask { return s.out.Mask() }

// Release releases both matrices.
func (s *Set) Release() {
	s.in.Release()
	s.out.Release()
}
