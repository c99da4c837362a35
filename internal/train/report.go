package train

import (
	"log/slog"
	"time"

	"github.com/born-ml/mlp/internal/matrix"
)

// EpochReport summarizes one pass over the training set.
type EpochReport struct {
	Epoch      int           // 1-based epoch counter
	Loss       float32       // Mean per-example squared error
	Rows       int           // Examples trained on
	Batches    int           // Optimizer steps taken
	Duration   time.Duration // Wall time of the epoch
	Throughput float64       // Examples per second
}

// LogValue implements slog.LogValuer.
func (r EpochReport) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("epoch", r.Epoch),
		slog.Float64("loss", float64(r.Loss)),
		slog.Int("rows", r.Rows),
		slog.Int("batches", r.Batches),
		slog.Duration("duration", r.Duration),
		slog.Float64("rows_per_sec", r.Throughput),
	)
}

// Snapshot is an epoch report plus the network outputs for every training
// row after that epoch. Outputs is owned by the caller.
type Snapshot struct {
	EpochReport
	Outputs *matrix.Matrix
}

// Release releases the outputs matrix.
func (s Snapshot) Release() {
	if s.Outputs != nil {
		s.Outputs.Release()
	}
}

// Observer is notified after every epoch.
type Observer interface {
	OnEpoch(EpochReport)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(EpochReport)

// OnEpoch calls f(r).
func (f ObserverFunc) OnEpoch(r EpochReport) { f(r) }
