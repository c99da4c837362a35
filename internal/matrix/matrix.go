// Package matrix implements the row-major float32 matrix used by the
// training engine.
//
// A Matrix of rows x cols values is stored in rows x stride floats where
// stride rounds cols up to the lane width. The buffer starts on a
// lanes*4-byte boundary, so every row does too. Padding lanes are zero at
// allocation and every operation that can disturb them restores them, which
// lets kernels run over whole lane blocks without a scalar tail.
//
// A Matrix owns its buffer. Copies are explicit (Clone, CopyAllFrom) and
// Release drops the buffer exactly once.
package matrix

import (
	"fmt"
	"math/rand/v2"
	"unsafe"

	"github.com/born-ml/mlp/internal/simd"
)

// Matrix is a padded, lane-aligned 2D float32 buffer.
type Matrix struct {
	rows    int
	cols    int
	stride  int
	lanes   int
	data    []float32 // aligned window over raw, rows*stride long
	raw     []float32 // backing allocation
	mask    StrideMask
	tracker Tracker
}

// Option configures a Matrix at construction.
type Option func(*options)

type options struct {
	lanes   int
	tracker Tracker
}

// WithLanes overrides the detected lane width (8 or 16).
func WithLanes(lanes int) Option {
	return func(o *options) {
		o.lanes = lanes
	}
}

// WithTracker reports the allocation and its release to t.
func WithTracker(t Tracker) Option {
	return func(o *options) {
		if t != nil {
			o.tracker = t
		}
	}
}

// New allocates a zeroed rows x cols matrix.
func New(rows, cols int, opts ...Option) (*Matrix, error) {
	o := options{lanes: simd.Width(), tracker: nopTracker{}}
	for _, opt := range opts {
		opt(&o)
	}

	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidShape, rows, cols)
	}
	if !simd.ValidLanes(o.lanes) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLanes, o.lanes)
	}

	stride := simd.RoundUp(cols, o.lanes)
	raw, data := alignedBuffer(rows*stride, o.lanes)
	m := &Matrix{
		rows:    rows,
		cols:    cols,
		stride:  stride,
		lanes:   o.lanes,
		data:    data,
		raw:     raw,
		mask:    NewStrideMask(cols, o.lanes),
		tracker: o.tracker,
	}
	m.tracker.Allocated(m.bytes())
	return m, nil
}

// alignedBuffer over-allocates by one vector and returns a window of n
// floats starting on a lanes*4-byte boundary. The Go heap does not move
// objects, so the alignment holds for the lifetime of raw.
func alignedBuffer(n, lanes int) (raw, data []float32) {
	raw = make([]float32, n+lanes)
	align := uintptr(lanes) * 4
	//nolint:gosec // address arithmetic only, the pointer is not dereferenced
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	off := int((align-addr%align)%align) / 4
	return raw, raw[off : off+n : off+n]
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of used columns.
func (m *Matrix) Cols() int { return m.cols }

// Stride returns the padded row width.
func (m *Matrix) Stride() int { return m.stride }

// Lanes returns the lane width the stride is rounded to.
func (m *Matrix) Lanes() int { return m.lanes }

// Mask returns the stride mask for the last block of each row.
func (m *Matrix) Mask() StrideMask { return m.mask }

// Shape formats the matrix dimensions as "rows x cols (stride)".
func (m *Matrix) Shape() string {
	return fmt.Sprintf("%dx%d(stride %d)", m.rows, m.cols, m.stride)
}

func (m *Matrix) bytes() int {
	return len(m.raw) * 4
}

func (m *Matrix) live() {
	if m.data == nil {
		panic(fmt.Sprintf("matrix %s used after Release", m.Shape()))
	}
}

// Release drops the buffer. Only the first call has an effect.
func (m *Matrix) Release() {
	if m == nil || m.raw == nil {
		return
	}
	m.tracker.Released(m.bytes())
	m.raw = nil
	m.data = nil
}

// Released reports whether Release has been called.
func (m *Matrix) Released() bool {
	return m.raw == nil
}

// Data returns the full allocated buffer, padding included.
func (m *Matrix) Data() []float32 {
	m.live()
	return m.data
}

// Row returns the used columns of row r as a writable view.
func (m *Matrix) Row(r int) []float32 {
	m.live()
	off := r * m.stride
	return m.data[off : off+m.cols : off+m.cols]
}

// PaddedRow returns row r including its padding lanes.
func (m *Matrix) PaddedRow(r int) []float32 {
	m.live()
	off := r * m.stride
	return m.data[off : off+m.stride : off+m.stride]
}

// At returns the element at (r, c).
func (m *Matrix) At(r, c int) float32 {
	return m.Row(r)[c]
}

// Set stores v at (r, c).
func (m *Matrix) Set(r, c int, v float32) {
	m.Row(r)[c] = v
}

// Ref returns a pointer to the element at (r, c).
func (m *Matrix) Ref(r, c int) *float32 {
	return &m.Row(r)[c]
}

// SameShape reports whether m and other have identical rows, columns and stride.
func (m *Matrix) SameShape(other *Matrix) bool {
	return m.rows == other.rows && m.cols == other.cols && m.stride == other.stride
}

// Clone returns an independent deep copy sharing the lane width and tracker.
func (m *Matrix) Clone() *Matrix {
	m.live()
	raw, data := alignedBuffer(len(m.data), m.lanes)
	copy(data, m.data)
	c := &Matrix{
		rows:    m.rows,
		cols:    m.cols,
		stride:  m.stride,
		lanes:   m.lanes,
		data:    data,
		raw:     raw,
		mask:    m.mask,
		tracker: m.tracker,
	}
	c.tracker.Allocated(c.bytes())
	return c
}

// Clear sets every element, padding included, to zero.
func (m *Matrix) Clear() {
	clear(m.Data())
}

// Fill sets every element to v, padding included. Call ClearPadding before
// using the matrix in a reduction.
func (m *Matrix) Fill(v float32) {
	simd.Fill(m.Data(), v)
}

// RandomizeUniform fills the used columns from Uniform(low, high) and leaves
// the padding lanes zero.
func (m *Matrix) RandomizeUniform(rng *rand.Rand, low, high float32) {
	data := m.Data()
	span := high - low
	for i := range data {
		data[i] = low + rng.Float32()*span
	}
	m.ClearPadding()
}

// ClearPadding zeroes the padding lanes of every row.
func (m *Matrix) ClearPadding() {
	if m.cols == m.stride {
		return
	}
	data := m.Data()
	for r := range m.rows {
		off := r * m.stride
		clear(data[off+m.cols : off+m.stride])
	}
}

// CopyAllFrom copies every element of src into m.
func (m *Matrix) CopyAllFrom(src *Matrix) error {
	if !m.SameShape(src) {
		return mismatch("copy", m, src)
	}
	copy(m.Data(), src.Data())
	return nil
}

// CopyRowFrom copies row srcRow of src into row dstRow of m.
func (m *Matrix) CopyRowFrom(src *Matrix, srcRow, dstRow int) error {
	if m.cols != src.cols || m.stride != src.stride {
		return mismatch("copy row", m, src)
	}
	if srcRow < 0 || srcRow >= src.rows || dstRow < 0 || dstRow >= m.rows {
		return fmt.Errorf("%w: copy row %d -> %d: %s vs %s", ErrDimensionMismatch, srcRow, dstRow, src.Shape(), m.Shape())
	}
	copy(m.PaddedRow(dstRow), src.PaddedRow(srcRow))
	return nil
}

// SumInPlace adds other into m elementwise over the full allocation.
func (m *Matrix) SumInPlace(other *Matrix) error {
	if !m.SameShape(other) {
		return mismatch("sum", m, other)
	}
	simd.Add(m.Data(), other.Data())
	return nil
}

// Sub stores a - b into m.
func (m *Matrix) Sub(a, b *Matrix) error {
	if !m.SameShape(a) {
		return mismatch("sub", m, a)
	}
	if !m.SameShape(b) {
		return mismatch("sub", m, b)
	}
	simd.Sub(m.Data(), a.Data(), b.Data())
	return nil
}

// Scale multiplies every element by s.
func (m *Matrix) Scale(s float32) {
	simd.Scale(m.Data(), s)
}

// Clip clamps every element to [lo, hi]. Zero padding stays zero when the
// range contains zero.
func (m *Matrix) Clip(lo, hi float32) {
	simd.Clamp(m.Data(), lo, hi)
}

// Dot computes result[r, j] = sum_k m[r, k] * other[j, k].
//
// other is laid out as (outFeatures x inFeatures): its rows are the weight
// vectors, so no transpose is needed. The inner product runs over the padded
// stride, which is safe because padding is zero in both operands.
func (m *Matrix) Dot(other, result *Matrix) error {
	if m.cols != other.cols || m.stride != other.stride {
		return mismatch("dot", m, other)
	}
	if result.rows != m.rows || result.cols != other.rows {
		return mismatch("dot result", result, other)
	}
	for r := range m.rows {
		in := m.PaddedRow(r)
		out := result.Row(r)
		for j := range out {
			out[j] = simd.Dot(in, other.PaddedRow(j))
		}
	}
	return nil
}

// SquaredError returns the masked sum of (m[r, :] - target)^2, where
// target is a padded row of the same stride.
func (m *Matrix) SquaredError(r int, target []float32) (float32, error) {
	if len(target) != m.stride {
		return 0, fmt.Errorf("%w: squared error: target length %d vs %s", ErrDimensionMismatch, len(target), m.Shape())
	}
	return simd.SquaredDiffSum(m.PaddedRow(r), target, m.mask.Lanes()), nil
}

// Sum returns the masked sum of all elements.
func (m *Matrix) Sum() float32 {
	var sum float32
	lanes := m.mask.Lanes()
	for r := range m.rows {
		row := m.PaddedRow(r)
		tail := len(row) - len(lanes)
		for _, v := range row[:tail] {
			sum += v
		}
		sum += simd.Dot(row[tail:], lanes)
	}
	return sum
}
