// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the feed-forward network and its training engine.
//
// # Overview
//
// This package contains:
//   - Architecture: neurons, weights, biases and optional Adam moments
//   - Activations: Identity, ReLU, LeakyReLU, Sigmoid, Tanh
//   - Engine: mini-batch training over a Provider's data set
//   - Data sets: XOR, parity, echo and IDX (MNIST layout) files
//
// # Basic Usage
//
//	set, err := nn.XOR()
//	if err != nil {
//	    return err
//	}
//	defer set.Release()
//
//	cfg := nn.DefaultConfig()
//	cfg.BatchSize = 4
//	eng, err := nn.NewEngine(cfg, []int{2, 4, 1}, set)
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//
//	if _, err := eng.Train(ctx); err != nil {
//	    return err
//	}
//	out, err := eng.Predict([]float32{1, 0})
//
// # Progressive training
//
// Snapshots yields the outputs for every training row after each epoch and
// stops training when the loop exits:
//
//	for snap, err := range eng.Snapshots(100) {
//	    if err != nil {
//	        return err
//	    }
//	    draw(snap.Outputs)
//	    snap.Release()
//	}
package nn
