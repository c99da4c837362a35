// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor exposes the lane-aligned float32 matrix the network is
// built from.
//
// # Layout
//
// Rows are padded to a multiple of the lane width (8, or 16 on AVX-512
// hosts) and every row starts on a lanes*4-byte boundary. Row returns the
// used columns only; PaddedRow and Data include the padding lanes, which are
// kept at zero.
//
//	m, err := tensor.New(3, 5)
//	if err != nil {
//	    return err
//	}
//	defer m.Release()
//
//	copy(m.Row(0), []float32{1, 2, 3, 4, 5})
//	fmt.Println(m.Stride(), m.Mask().Real()) // 8 5 on an 8-lane host
package tensor
