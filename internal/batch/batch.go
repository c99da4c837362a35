// Package batch partitions a row-index permutation into fixed-size batches.
//
// Every index of the permutation lands in exactly one batch. All batches have
// the configured size except possibly the last, which holds the remainder.
package batch

import (
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"

	"github.com/born-ml/mlp/internal/matrix"
)

// ErrInvalidBatch is returned for non-positive batch sizes or empty permutations.
var ErrInvalidBatch = errors.New("invalid batch configuration")

// Permutation returns [0, n) in order, or shuffled with rng when it is
// non-nil.
func Permutation(n int, rng *rand.Rand) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	if rng != nil {
		Shuffle(perm, rng)
	}
	return perm
}

// Shuffle permutes perm in place.
func Shuffle(perm []int, rng *rand.Rand) {
	rng.Shuffle(len(perm), func(i, j int) {
		perm[i], perm[j] = perm[j], perm[i]
	})
}

// View exposes a permutation as a sequence of batches. It does not copy the
// permutation: shuffling it in place between epochs changes the batches.
type View struct {
	perm []int
	size int
}

// New creates a View over perm with batches of size rows.
func New(perm []int, size int) (*View, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: batch size %d", ErrInvalidBatch, size)
	}
	if len(perm) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidBatch)
	}
	return &View{perm: perm, size: size}, nil
}

// Len returns the number of batches.
func (v *View) Len() int {
	return (len(v.perm) + v.size - 1) / v.size
}

// Size returns the configured batch size.
func (v *View) Size() int {
	return v.size
}

// Rows returns the total number of rows covered.
func (v *View) Rows() int {
	return len(v.perm)
}

// At returns batch i.
func (v *View) At(i int) Batch {
	start := i * v.size
	end := min(start+v.size, len(v.perm))
	return Batch{index: i, indices: v.perm[start:end:end]}
}

// All yields every batch in order.
func (v *View) All() iter.Seq[Batch] {
	return func(yield func(Batch) bool) {
		for i := range v.Len() {
			if !yield(v.At(i)) {
				return
			}
		}
	}
}

// Batch is one contiguous slice of the permutation.
type Batch struct {
	index   int
	indices []int
}

// Index returns the position of the batch within its epoch.
func (b Batch) Index() int {
	return b.index
}

// Size returns the number of rows in the batch.
func (b Batch) Size() int {
	return len(b.indices)
}

// Indices returns the row indices of the batch. The slice aliases the
// permutation and must not be modified.
func (b Batch) Indices() []int {
	return b.indices
}

// Split divides the batch into at most n contiguous parts of near-equal size.
// Empty parts are omitted.
func (b Batch) Split(n int) []Batch {
	n = max(1, min(n, len(b.indices)))
	parts := make([]Batch, 0, n)
	chunk := (len(b.indices) + n - 1) / n
	for start := 0; start < len(b.indices); start += chunk {
		end := min(start+chunk, len(b.indices))
		parts = append(parts, Batch{index: b.index, indices: b.indices[start:end:end]})
	}
	return parts
}

// Rows yields, for every index in the batch, the padded input row and the
// padded target row.
func (b Batch) Rows(input, output *matrix.Matrix) iter.Seq2[[]float32, []float32] {
	return func(yield func([]float32, []float32) bool) {
		for _, idx := range b.indices {
			if !yield(input.PaddedRow(idx), output.PaddedRow(idx)) {
				return
			}
		}
	}
}
