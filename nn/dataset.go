// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/mlp/internal/dataset"
	"github.com/born-ml/mlp/internal/matrix"
)

// Set is an in-memory data set. It implements Provider.
type Set = dataset.Set

// ErrInvalidSet is returned for data that cannot form a data set.
var ErrInvalidSet = dataset.ErrInvalidSet

// XOR returns the four-row exclusive-or table.
func XOR(opts ...matrix.Option) (*Set, error) {
	return dataset.XOR(opts...)
}

// Parity enumerates every n-bit pattern with its parity bit as the target.
func Parity(n int, opts ...matrix.Option) (*Set, error) {
	return dataset.Parity(n, opts...)
}

// Echo enumerates every n-bit pattern with itself as the target.
func Echo(n int, opts ...matrix.Option) (*Set, error) {
	return dataset.Echo(n, opts...)
}

// FromRows builds a data set from row slices.
func FromRows(name string, in, out [][]float32, opts ...matrix.Option) (*Set, error) {
	return dataset.FromRows(name, in, out, opts...)
}
