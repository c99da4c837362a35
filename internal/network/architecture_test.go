package network

import (
	"bytes"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/born-ml/mlp/internal/activation"
	"github.com/born-ml/mlp/internal/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArch(t *testing.T, sizes []int, opts ...Option) *Architecture {
	t.Helper()
	a, err := New(sizes, opts...)
	require.NoError(t, err)
	t.Cleanup(a.Release)
	return a
}

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(7, 11))
}

func TestNewRejectsInvalidSizes(t *testing.T) {
	for _, sizes := range [][]int{nil, {4}, {3, 0, 2}, {-1, 2}} {
		_, err := New(sizes)
		assert.ErrorIs(t, err, ErrInvalidLayers, "sizes %v", sizes)
	}
}

func TestShapeInvariants(t *testing.T) {
	for _, sizes := range [][]int{{2, 1}, {2, 4, 1}, {9, 17, 33, 3}, {784, 64, 10}} {
		a := newArch(t, sizes, WithMoments())
		require.Equal(t, len(sizes)-1, a.Layers())
		require.Len(t, a.Neurons, len(sizes))

		for i := range a.Layers() {
			w, b := a.Weights[i], a.Biases[i]
			assert.Equal(t, sizes[i+1], w.Rows(), "weights[%d] rows", i)
			assert.Equal(t, sizes[i], w.Cols(), "weights[%d] cols", i)
			assert.Equal(t, 1, b.Rows())
			assert.Equal(t, sizes[i+1], b.Cols())
			assert.Equal(t, a.Neurons[i].Cols(), w.Cols())
			assert.Equal(t, a.Neurons[i+1].Cols(), w.Rows())

			assert.True(t, w.SameShape(a.Moments.MWeights[i]))
			assert.True(t, w.SameShape(a.Moments.VWeights[i]))
			assert.True(t, b.SameShape(a.Moments.MBiases[i]))
			assert.True(t, b.SameShape(a.Moments.VBiases[i]))
		}
	}
}

func TestNoMomentsByDefault(t *testing.T) {
	a := newArch(t, []int{2, 2})
	assert.Nil(t, a.Moments)
	a.ZeroMoments()
}

func TestRandomizeWeightsScale(t *testing.T) {
	a := newArch(t, []int{5, 4, 2}, WithMatrixOptions(matrix.WithLanes(8)))
	a.Biases[0].Fill(3)
	a.RandomizeWeights(seeded())

	for i, w := range a.Weights {
		s := float32(math.Sqrt(2 / float64(w.Rows())))
		for r := range w.Rows() {
			for _, v := range w.Row(r) {
				assert.LessOrEqual(t, v, s)
				assert.GreaterOrEqual(t, v, -s)
			}
			for _, v := range w.PaddedRow(r)[w.Cols():] {
				assert.Zero(t, v)
			}
		}
		assert.Zero(t, a.Biases[i].Sum())
	}
}

func TestForwardIdentity(t *testing.T) {
	a := newArch(t, []int{3, 3})
	for i := range 3 {
		a.Weights[0].Set(i, i, 1)
	}
	copy(a.Input(), []float32{0.25, -1, 4})

	id := activation.MustLookup(activation.Identity)
	out, err := a.Forward(id, id)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, -1, 4}, out.Row(0))

	loss, err := out.SquaredError(0, a.Neurons[0].PaddedRow(0))
	require.NoError(t, err)
	assert.Zero(t, loss)
}

func TestForwardLayers(t *testing.T) {
	a := newArch(t, []int{2, 2, 1})
	// Hidden: relu([1 -1; 2 1] . x + [0 0.5]), output: w=[1 1], b=-1.
	copy(a.Weights[0].Row(0), []float32{1, -1})
	copy(a.Weights[0].Row(1), []float32{2, 1})
	copy(a.Biases[0].Row(0), []float32{0, 0.5})
	copy(a.Weights[1].Row(0), []float32{1, 1})
	a.Biases[1].Set(0, 0, -1)
	copy(a.Input(), []float32{1, 2})

	out, err := a.Forward(activation.MustLookup(activation.ReLU), activation.MustLookup(activation.Identity))
	require.NoError(t, err)
	// hidden = relu([-1, 4.5]) = [0, 4.5]; out = 4.5 - 1.
	assert.Equal(t, []float32{0, 4.5}, a.Neurons[1].Row(0))
	assert.InDelta(t, 3.5, out.At(0, 0), 1e-6)
}

func TestForwardDeterministic(t *testing.T) {
	a := newArch(t, []int{6, 10, 3})
	a.RandomizeWeights(seeded())
	copy(a.Input(), []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6})
	sig := activation.MustLookup(activation.Sigmoid)

	out, err := a.Forward(sig, sig)
	require.NoError(t, err)
	first := append([]float32(nil), out.Data()...)

	out, err = a.Forward(sig, sig)
	require.NoError(t, err)
	assert.Equal(t, first, out.Data())
}

func TestRoundTripPaddingStaysZero(t *testing.T) {
	a := newArch(t, []int{3, 5, 2}, WithMatrixOptions(matrix.WithLanes(8)))
	a.ZeroOut()
	a.RandomizeWeights(seeded())
	copy(a.Input(), []float32{1, 0, -1})
	sig := activation.MustLookup(activation.Sigmoid)

	out, err := a.Forward(sig, sig)
	require.NoError(t, err)
	for _, n := range a.Neurons {
		for _, v := range n.PaddedRow(0)[n.Cols():] {
			require.Zero(t, v)
		}
	}

	var want float32
	for _, v := range out.Row(0) {
		want += v * v
	}
	zero := make([]float32, out.Stride())
	got, err := out.SquaredError(0, zero)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-6)
}

func TestCopyIsIndependent(t *testing.T) {
	a := newArch(t, []int{2, 3, 1}, WithMoments())
	a.RandomizeWeights(seeded())
	a.Moments.MWeights[0].Fill(0.5)
	before := append([]float32(nil), a.Weights[0].Data()...)

	c := a.Copy()
	defer c.Release()
	require.Equal(t, before, c.Weights[0].Data())
	require.Equal(t, a.Moments.MWeights[0].Data(), c.Moments.MWeights[0].Data())

	c.Weights[0].Fill(9)
	c.Moments.MWeights[0].Clear()
	assert.Equal(t, before, a.Weights[0].Data())
	assert.InDelta(t, 0.5, a.Moments.MWeights[0].At(0, 0), 0)
}

func TestZeroOutKeepsMoments(t *testing.T) {
	a := newArch(t, []int{2, 2}, WithMoments())
	a.RandomizeWeights(seeded())
	a.Moments.VBiases[0].Fill(2)
	a.Input()[0] = 1

	a.ZeroOut()
	assert.Zero(t, a.Weights[0].Sum())
	assert.Zero(t, a.Neurons[0].Sum())
	assert.InDelta(t, 2.0, a.Moments.VBiases[0].At(0, 1), 0)

	a.ZeroMoments()
	assert.Zero(t, a.Moments.VBiases[0].Sum())
}

func TestCopyParamsFrom(t *testing.T) {
	a := newArch(t, []int{2, 3, 1})
	b := newArch(t, []int{2, 3, 1})
	a.RandomizeWeights(seeded())

	require.NoError(t, b.CopyParamsFrom(a))
	assert.Equal(t, a.Weights[1].Data(), b.Weights[1].Data())

	other := newArch(t, []int{2, 4, 1})
	assert.ErrorIs(t, other.CopyParamsFrom(a), matrix.ErrDimensionMismatch)
	assert.False(t, other.Compatible(a))
}

func TestCopyMomentsFrom(t *testing.T) {
	a := newArch(t, []int{2, 3, 1}, WithMoments())
	b := newArch(t, []int{2, 3, 1}, WithMoments())
	a.Moments.VWeights[0].Set(2, 1, 0.5)
	a.Moments.MBiases[1].Set(0, 0, -2)

	require.NoError(t, b.CopyMomentsFrom(a))
	assert.Equal(t, float32(0.5), b.Moments.VWeights[0].At(2, 1))
	assert.Equal(t, float32(-2), b.Moments.MBiases[1].At(0, 0))

	plain := newArch(t, []int{2, 3, 1})
	assert.ErrorIs(t, plain.CopyMomentsFrom(a), matrix.ErrDimensionMismatch)
	assert.ErrorIs(t, b.CopyMomentsFrom(plain), matrix.ErrDimensionMismatch)
}

func TestPrint(t *testing.T) {
	a := newArch(t, []int{2, 1})
	var buf bytes.Buffer
	require.NoError(t, a.Print(&buf, "xor"))
	out := buf.String()
	assert.Contains(t, out, "== xor [2 1]")
	assert.Contains(t, out, "weights[0] [1x2]")
	assert.Contains(t, out, "biases[0] [1x1]")
}

func TestReleaseFreesEverything(t *testing.T) {
	var counter matrix.Counter
	a, err := New([]int{4, 3, 2}, WithMoments(), WithMatrixOptions(matrix.WithTracker(&counter)))
	require.NoError(t, err)
	c := a.Copy()

	// 3 neurons + 2 weights + 2 biases + 8 moments, twice.
	assert.Equal(t, int64(30), counter.Live())
	a.Release()
	c.Release()
	assert.Zero(t, counter.Live())
}
