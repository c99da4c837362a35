// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim_test

import (
	"testing"

	"github.com/born-ml/mlp/nn"
	"github.com/born-ml/mlp/optim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacade(t *testing.T) {
	params, err := nn.NewArchitecture([]int{2, 1}, nn.WithMoments())
	require.NoError(t, err)
	defer params.Release()
	grads, err := nn.NewArchitecture([]int{2, 1})
	require.NoError(t, err)
	defer grads.Release()

	params.Weights[0].Set(0, 0, 1)
	grads.Weights[0].Set(0, 0, 0.5)

	sgd := optim.NewSGD(optim.SGDConfig{LR: 0.1})
	require.NoError(t, sgd.Learn(params, grads))
	assert.InDelta(t, 0.95, params.Weights[0].At(0, 0), 1e-6)

	adam := optim.NewAdam(optim.AdamConfig{LR: 0.01})
	require.NoError(t, adam.Learn(params, grads))
	assert.InDelta(t, 0.94, params.Weights[0].At(0, 0), 1e-4)
	assert.Equal(t, 1, adam.GetTimestep())

	_, err = optim.New(optim.Kind(7), optim.Config{})
	assert.ErrorIs(t, err, optim.ErrUnknownKind)
	k, err := optim.ParseKind("AdamW")
	require.NoError(t, err)
	assert.Equal(t, optim.KindAdam, k)
}
