// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"log/slog"

	"github.com/born-ml/mlp/internal/matrix"
	"github.com/born-ml/mlp/internal/train"
)

// Engine trains one network on one data set.
type Engine = train.Engine

// Config is the per-run training configuration.
type Config = train.Config

// Provider supplies the training input and target matrices.
type Provider = train.Provider

// EpochReport summarizes one epoch.
type EpochReport = train.EpochReport

// Snapshot is an epoch report plus the outputs for every training row.
type Snapshot = train.Snapshot

// Observer is notified after every epoch.
type Observer = train.Observer

// ObserverFunc adapts a function to Observer.
type ObserverFunc = train.ObserverFunc

// EngineOption configures NewEngine.
type EngineOption = train.Option

// ErrorClamp bounds each neuron error during backpropagation.
const ErrorClamp = train.ErrorClamp

// Training errors.
var (
	ErrInvalidConfig = train.ErrInvalidConfig
	ErrClosed        = train.ErrClosed
)

// DefaultConfig returns a configuration suitable for small dense problems.
func DefaultConfig() Config {
	return train.DefaultConfig()
}

// NewEngine builds an engine for the given layer sizes over p.
func NewEngine(cfg Config, sizes []int, p Provider, opts ...EngineOption) (*Engine, error) {
	return train.New(cfg, sizes, p, opts...)
}

// WithLogger sets the logger for epoch summaries.
func WithLogger(l *slog.Logger) EngineOption {
	return train.WithLogger(l)
}

// WithObserver registers an epoch observer.
func WithObserver(o Observer) EngineOption {
	return train.WithObserver(o)
}

// WithTracker routes the engine's matrix allocations through t.
func WithTracker(t matrix.Tracker) EngineOption {
	return train.WithTracker(t)
}
