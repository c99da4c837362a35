package matrix

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrInvalidShape      = errors.New("invalid matrix shape")
	ErrInvalidLanes      = errors.New("unsupported lane width")
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// mismatch reports an operand shape disagreement for op.
func mismatch(op string, a, b *Matrix) error {
	return fmt.Errorf("%w: %s: %s vs %s", ErrDimensionMismatch, op, a.Shape(), b.Shape())
}
