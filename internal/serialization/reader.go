package serialization

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/born-ml/mlp/internal/matrix"
	"github.com/born-ml/mlp/internal/network"
)

// ReaderOptions configures Read and Load.
type ReaderOptions struct {
	SkipChecksumValidation bool            // Skip checksum validation
	ValidationLevel        ValidationLevel // Validation strictness level
	MatrixOptions          []matrix.Option // Lane width and tracker of the loaded matrices
}

// Read decodes an architecture from r. The caller owns the result.
func Read(r io.Reader, opts ReaderOptions) (*network.Architecture, Header, error) {
	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nil, Header{}, fmt.Errorf("failed to read fixed header: %w", err)
	}
	if string(fixed[0:4]) != MagicBytes {
		return nil, Header{}, fmt.Errorf("%w: got %q, expected %q", ErrInvalidMagic, fixed[0:4], MagicBytes)
	}
	if version := binary.LittleEndian.Uint32(fixed[4:8]); version != FormatVersion {
		return nil, Header{}, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}
	flags := binary.LittleEndian.Uint32(fixed[8:12])
	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	dataSize := binary.LittleEndian.Uint64(fixed[24:32])
	var checksum [ChecksumSize]byte
	copy(checksum[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])

	if headerSize > MaxHeaderSize {
		return nil, Header{}, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}
	if dataSize > MaxDataSize {
		return nil, Header{}, fmt.Errorf("%w: %d bytes", ErrDataTooLarge, dataSize)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, Header{}, fmt.Errorf("failed to read header: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, Header{}, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	if pad := padding(FixedHeaderSize + int64(headerSize)); pad > 0 {
		if _, err := io.CopyN(io.Discard, r, pad); err != nil {
			return nil, Header{}, fmt.Errorf("failed to read padding: %w", err)
		}
	}

	data := make([]byte, dataSize)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, Header{}, fmt.Errorf("failed to read tensor data: %w", err)
	}
	if !opts.SkipChecksumValidation && sha256.Sum256(data) != checksum {
		return nil, Header{}, ErrChecksumMismatch
	}

	if err := ValidateHeader(&header, int64(len(data)), opts.ValidationLevel); err != nil {
		return nil, Header{}, fmt.Errorf("validation failed: %w", err)
	}

	moments := flags&FlagHasMoments != 0
	if err := ValidateSizes(header.Sizes, moments, int64(len(data))); err != nil {
		return nil, Header{}, fmt.Errorf("validation failed: %w", err)
	}
	netOpts := []network.Option{network.WithMatrixOptions(opts.MatrixOptions...)}
	if moments {
		netOpts = append(netOpts, network.WithMoments())
	}
	a, err := network.New(header.Sizes, netOpts...)
	if err != nil {
		return nil, Header{}, fmt.Errorf("%w: %w", ErrShapeMismatch, err)
	}
	for _, t := range tensorsOf(a, moments) {
		if err := decode(t, header.Tensors, data); err != nil {
			a.Release()
			return nil, Header{}, err
		}
	}
	return a, header, nil
}

// decode fills t.m from the tensor of the same name.
func decode(t namedMatrix, tensors []TensorMeta, data []byte) error {
	i := slices.IndexFunc(tensors, func(m TensorMeta) bool { return m.Name == t.name })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrMissingTensor, t.name)
	}
	meta := tensors[i]
	rows, cols := t.m.Rows(), t.m.Cols()
	if !slices.Equal(meta.Shape, []int{rows, cols}) || meta.Size != int64(rows*cols*4) {
		return &ValidationError{
			Err:     ErrShapeMismatch,
			Tensor:  meta.Name,
			Details: fmt.Sprintf("shape %v size %d, want [%d %d]", meta.Shape, meta.Size, rows, cols),
		}
	}
	if meta.Offset < 0 || meta.Offset+meta.Size > int64(len(data)) {
		return &ValidationError{
			Err:     ErrOutOfBounds,
			Tensor:  meta.Name,
			Details: fmt.Sprintf("offset %d + size %d > data_size %d", meta.Offset, meta.Size, len(data)),
		}
	}

	src := data[meta.Offset : meta.Offset+meta.Size]
	for r := range rows {
		row := t.m.Row(r)
		for c := range row {
			row[c] = math.Float32frombits(binary.LittleEndian.Uint32(src))
			src = src[4:]
		}
	}
	return nil
}
