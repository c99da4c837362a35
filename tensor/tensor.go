// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/mlp/internal/matrix"
	"github.com/born-ml/mlp/internal/simd"
)

// Matrix is a row-major float32 matrix with padded, aligned rows.
type Matrix = matrix.Matrix

// StrideMask marks the real lanes in the last vector block of a row.
type StrideMask = matrix.StrideMask

// Option configures New.
type Option = matrix.Option

// Tracker observes buffer allocation and release.
type Tracker = matrix.Tracker

// Counter is a Tracker that counts live buffers and bytes.
type Counter = matrix.Counter

// Errors returned by matrix operations.
var (
	ErrInvalidShape      = matrix.ErrInvalidShape
	ErrInvalidLanes      = matrix.ErrInvalidLanes
	ErrDimensionMismatch = matrix.ErrDimensionMismatch
)

// New allocates a zeroed rows x cols matrix.
func New(rows, cols int, opts ...Option) (*Matrix, error) {
	return matrix.New(rows, cols, opts...)
}

// WithLanes selects the lane width: 8 or 16.
func WithLanes(lanes int) Option {
	return matrix.WithLanes(lanes)
}

// WithTracker reports allocation and release to t.
func WithTracker(t Tracker) Option {
	return matrix.WithTracker(t)
}

// NewStrideMask returns the mask for rows of cols used columns.
func NewStrideMask(cols, lanes int) StrideMask {
	return matrix.NewStrideMask(cols, lanes)
}

// Lanes returns the lane width detected for this CPU.
func Lanes() int {
	return simd.Width()
}

// CPU describes the detected processor and vector width.
func CPU() string {
	return simd.Info()
}
