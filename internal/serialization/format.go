package serialization

import (
	"fmt"
	"time"

	"github.com/born-ml/mlp/internal/matrix"
	"github.com/born-ml/mlp/internal/network"
)

// Format constants.
const (
	MagicBytes      = "MLPW"
	FormatVersion   = 1
	HeaderAlignment = 64   // Tensor data starts on a 64-byte boundary
	FixedHeaderSize = 64   // Fixed header size (0x40 bytes)
	ChecksumSize    = 32   // SHA-256 checksum size (32 bytes)
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
)

// DTypeFloat32 is the only stored data type.
const DTypeFloat32 = "float32"

// Flags for the .mlp format.
const (
	FlagHasMoments  uint32 = 1 << 0 // bit 0: Adam moment buffers included
	FlagHasTraining uint32 = 1 << 1 // bit 1: training metadata included
	FlagHasMetadata uint32 = 1 << 2 // bit 2: custom metadata included
)

// creator is recorded in every header.
const creator = "github.com/born-ml/mlp"

// Header represents the JSON header in a .mlp file.
type Header struct {
	FormatVersion int               `json:"format_version"`     // Version of the .mlp format
	Creator       string            `json:"creator"`            // Module that wrote the file
	CreatedAt     time.Time         `json:"created_at"`         // When the file was created
	Sizes         []int             `json:"sizes"`              // Layer sizes n0..nL
	Tensors       []TensorMeta      `json:"tensors"`            // Tensor metadata
	Training      *TrainingMeta     `json:"training,omitempty"` // Training state (optional)
	Metadata      map[string]string `json:"metadata,omitempty"` // Custom metadata
}

// TrainingMeta records where training stopped, for resuming.
type TrainingMeta struct {
	Epoch        int     `json:"epoch"`                       // Completed epochs
	Loss         float64 `json:"loss"`                        // Loss of the last epoch
	Optimizer    string  `json:"optimizer"`                   // "sgd" or "adam"
	Timestep     int     `json:"timestep,omitempty"`          // Adam timestep
	LearningRate float32 `json:"learning_rate"`               // Learning rate in use
	WeightDecay  float32 `json:"weight_decay,omitempty"`      // Decoupled weight decay
	Hidden       string  `json:"hidden_activation,omitempty"` // Hidden activation name
	Output       string  `json:"output_activation,omitempty"` // Output activation name
}

// TensorMeta describes a tensor in the .mlp file.
type TensorMeta struct {
	Name   string `json:"name"`   // Tensor name (e.g., "weights.0")
	DType  string `json:"dtype"`  // Always "float32"
	Shape  []int  `json:"shape"`  // [rows, cols]
	Offset int64  `json:"offset"` // Offset in the data section
	Size   int64  `json:"size"`   // Size in bytes
}

type namedMatrix struct {
	name string
	m    *matrix.Matrix
}

// tensorsOf lists the matrices of a in file order: per layer the weights and
// biases, followed by the Adam moments when moments is set and a has them.
func tensorsOf(a *network.Architecture, moments bool) []namedMatrix {
	out := make([]namedMatrix, 0, 6*len(a.Weights))
	for i := range a.Weights {
		out = append(out,
			namedMatrix{fmt.Sprintf("weights.%d", i), a.Weights[i]},
			namedMatrix{fmt.Sprintf("biases.%d", i), a.Biases[i]},
		)
	}
	if !moments || a.Moments == nil {
		return out
	}
	mo := a.Moments
	for i := range a.Weights {
		out = append(out,
			namedMatrix{fmt.Sprintf("adam.m.weights.%d", i), mo.MWeights[i]},
			namedMatrix{fmt.Sprintf("adam.v.weights.%d", i), mo.VWeights[i]},
			namedMatrix{fmt.Sprintf("adam.m.biases.%d", i), mo.MBiases[i]},
			namedMatrix{fmt.Sprintf("adam.v.biases.%d", i), mo.VBiases[i]},
		)
	}
	return out
}

// padding returns the number of bytes that align pos to HeaderAlignment.
func padding(pos int64) int64 {
	return (HeaderAlignment - pos%HeaderAlignment) % HeaderAlignment
}
