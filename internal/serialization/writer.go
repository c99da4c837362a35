package serialization

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"math"
	"time"

	"github.com/born-ml/mlp/internal/network"
)

// Meta carries the optional parts of a file.
type Meta struct {
	Training    *TrainingMeta     // Training state to record
	Metadata    map[string]string // Free-form key/value pairs
	SkipMoments bool              // Omit Adam moments even when present
}

// Write encodes a to w.
func Write(w io.Writer, a *network.Architecture, meta Meta) error {
	moments := !meta.SkipMoments && a.Moments != nil
	tensors := tensorsOf(a, moments)

	header := Header{
		FormatVersion: FormatVersion,
		Creator:       creator,
		CreatedAt:     time.Now().UTC(),
		Sizes:         a.Sizes(),
		Tensors:       make([]TensorMeta, 0, len(tensors)),
		Training:      meta.Training,
		Metadata:      maps.Clone(meta.Metadata),
	}

	// Encode tensor data, used columns only
	var data []byte
	for _, t := range tensors {
		start := len(data)
		for r := range t.m.Rows() {
			for _, v := range t.m.Row(r) {
				data = binary.LittleEndian.AppendUint32(data, math.Float32bits(v))
			}
		}
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   t.name,
			DType:  DTypeFloat32,
			Shape:  []int{t.m.Rows(), t.m.Cols()},
			Offset: int64(start),
			Size:   int64(len(data) - start),
		})
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	var flags uint32
	if moments {
		flags |= FlagHasMoments
	}
	if meta.Training != nil {
		flags |= FlagHasTraining
	}
	if len(meta.Metadata) > 0 {
		flags |= FlagHasMetadata
	}

	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(fixed[8:12], flags)
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(len(data)))
	sum := sha256.Sum256(data)
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], sum[:])

	if _, err := w.Write(fixed); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if pad := padding(int64(FixedHeaderSize + len(headerJSON))); pad > 0 {
		if _, err := w.Write(make([]byte, pad)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}
	return nil
}
