package train

import (
	"fmt"

	"github.com/born-ml/mlp/internal/matrix"
)

// Provider supplies the training set. Both matrices have one row per example
// and must be populated before the engine is built; the engine only reads
// them.
type Provider interface {
	TrainingInput() *matrix.Matrix  // rowCount x inputWidth
	TrainingOutput() *matrix.Matrix // rowCount x outputWidth
	OutputMask() matrix.StrideMask  // mask for outputWidth
}

// checkProvider validates p against the layer sizes.
func checkProvider(p Provider, sizes []int) error {
	in, out := p.TrainingInput(), p.TrainingOutput()
	if in == nil || out == nil {
		return fmt.Errorf("%w: provider has no training data", ErrInvalidConfig)
	}
	if in.Rows() != out.Rows() {
		return fmt.Errorf("%w: %d input rows vs %d output rows", matrix.ErrDimensionMismatch, in.Rows(), out.Rows())
	}
	if in.Cols() != sizes[0] {
		return fmt.Errorf("%w: input width %d vs input layer %d", matrix.ErrDimensionMismatch, in.Cols(), sizes[0])
	}
	if last := sizes[len(sizes)-1]; out.Cols() != last {
		return fmt.Errorf("%w: output width %d vs output layer %d", matrix.ErrDimensionMismatch, out.Cols(), last)
	}
	if in.Lanes() != out.Lanes() {
		return fmt.Errorf("%w: input lanes %d vs output lanes %d", matrix.ErrDimensionMismatch, in.Lanes(), out.Lanes())
	}
	mask := p.OutputMask()
	if mask.Width() != out.Lanes() || mask.Real() != out.Mask().Real() {
		return fmt.Errorf("%w: output mask covers %d/%d lanes, output needs %d/%d",
			matrix.ErrDimensionMismatch, mask.Real(), mask.Width(), out.Mask().Real(), out.Lanes())
	}
	return nil
}
