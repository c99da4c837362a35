package loader_test

import (
	"path/filepath"
	"testing"

	"github.com/born-ml/mlp/loader"
	"github.com/born-ml/mlp/nn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightsRoundTrip(t *testing.T) {
	a, err := nn.NewArchitecture([]int{3, 2})
	require.NoError(t, err)
	defer a.Release()
	a.Weights[0].Set(1, 2, 0.75)

	path := filepath.Join(t.TempDir(), "w.mlp")
	require.NoError(t, loader.SaveWeights(path, a, loader.Meta{Metadata: map[string]string{"k": "v"}}))

	got, h, err := loader.LoadWeights(path, loader.ReaderOptions{ValidationLevel: loader.ValidationStrict})
	require.NoError(t, err)
	defer got.Release()
	assert.Equal(t, float32(0.75), got.Weights[0].At(1, 2))
	assert.Equal(t, "v", h.Metadata["k"])
}
