// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"context"
	"testing"

	"github.com/born-ml/mlp/nn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineAPI(t *testing.T) {
	set, err := nn.XOR()
	require.NoError(t, err)
	defer set.Release()

	var epochs int
	cfg := nn.DefaultConfig()
	cfg.BatchSize = 4
	cfg.Epochs = 3
	eng, err := nn.NewEngine(cfg, []int{2, 3, 1}, set,
		nn.WithObserver(nn.ObserverFunc(func(nn.EpochReport) { epochs++ })))
	require.NoError(t, err)
	defer eng.Close()

	reports, err := eng.Train(context.Background())
	require.NoError(t, err)
	assert.Len(t, reports, 3)
	assert.Equal(t, 3, epochs)

	out, err := eng.Predict([]float32{1, 0})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestActivationNames(t *testing.T) {
	k, err := nn.ParseActivation("tanh")
	require.NoError(t, err)
	assert.Equal(t, nn.Tanh, k)

	_, err = nn.LookupActivation(nn.Activation(99))
	assert.ErrorIs(t, err, nn.ErrUnknownActivation)
}

func TestArchitecture(t *testing.T) {
	a, err := nn.NewArchitecture([]int{4, 2}, nn.WithMoments())
	require.NoError(t, err)
	defer a.Release()
	assert.NotNil(t, a.Moments)

	_, err = nn.NewArchitecture([]int{4})
	assert.ErrorIs(t, err, nn.ErrInvalidLayers)
}
