package dataset

import (
	"fmt"
	"math/bits"

	"github.com/born-ml/mlp/internal/matrix"
)

// XOR returns the four-row exclusive-or table.
func XOR(opts ...matrix.Option) (*Set, error) {
	return FromRows("xor",
		[][]float32{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
		[][]float32{{0}, {1}, {1}, {0}},
		opts...,
	)
}

// Parity enumerates every n-bit pattern. The target is 1 when the pattern
// has an odd number of set bits.
func Parity(n int, opts ...matrix.Option) (*Set, error) {
	if err := checkBits(n); err != nil {
		return nil, err
	}
	s, err := New(fmt.Sprintf("parity-%d", n), 1<<n, n, 1, opts...)
	if err != nil {
		return nil, err
	}
	for p := range s.Rows() {
		writeBits(s.in.Row(p), p)
		s.out.Set(p, 0, float32(bits.OnesCount(uint(p))&1))
	}
	return s, nil
}

// Echo enumerates every n-bit pattern with itself as the target, for
// training autoencoders through a narrow hidden layer.
func Echo(n int, opts ...matrix.Option) (*Set, error) {
	if err := checkBits(n); err != nil {
		return nil, err
	}
	s, err := New(fmt.Sprintf("echo-%d", n), 1<<n, n, n, opts...)
	if err != nil {
		return nil, err
	}
	for p := range s.Rows() {
		writeBits(s.in.Row(p), p)
		writeBits(s.out.Row(p), p)
	}
	return s, nil
}

func checkBits(n int) error {
	if n < 1 || n > MaxBits {
		return fmt.Errorf("%w: %d bits, want 1..%d", ErrInvalidSet, n, MaxBits)
	}
	return nil
}

// writeBits stores p most significant bit first.
func writeBits(dst []float32, p int) {
	n := len(dst)
	for i := range dst {
		dst[i] = float32(p >> (n - 1 - i) & 1)
	}
}
