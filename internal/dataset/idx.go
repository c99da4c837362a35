package dataset

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/mlp/internal/matrix"
)

// MaxIDXPixels caps the pixels of one IDX set, 4GB of float32 inputs.
const MaxIDXPixels = 1 << 30

// IDX magic numbers.
const (
	idxImagesMagic = 2051
	idxLabelsMagic = 2049
)

// IDXOption configures LoadIDX and ReadIDX.
type IDXOption func(*idxOptions)

type idxOptions struct {
	limit   int
	classes int
	matrix  []matrix.Option
}

// WithLimit keeps only the first n examples. Zero keeps all.
func WithLimit(n int) IDXOption {
	return func(o *idxOptions) { o.limit = n }
}

// WithClasses fixes the one-hot target width. By default it is the largest
// label plus one.
func WithClasses(n int) IDXOption {
	return func(o *idxOptions) { o.classes = n }
}

// WithMatrixOptions is applied to both matrices of the set.
func WithMatrixOptions(opts ...matrix.Option) IDXOption {
	return func(o *idxOptions) { o.matrix = append(o.matrix, opts...) }
}

// LoadIDX reads an image file and a label file in IDX format.
func LoadIDX(images, labels string, opts ...IDXOption) (*Set, error) {
	imgFile, err := os.Open(images)
	if err != nil {
		return nil, err
	}
	defer imgFile.Close()

	lblFile, err := os.Open(labels)
	if err != nil {
		return nil, err
	}
	defer lblFile.Close()

	return ReadIDX(imgFile, lblFile, opts...)
}

// ReadIDX builds a set from IDX image and label streams. Pixels are scaled
// to [0, 1]; labels become one-hot target rows.
//
// IDX file format for images:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes
//	number of cols: 4 bytes
//	pixel data: unsigned bytes (0-255)
//
// IDX file format for labels:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes
func ReadIDX(images, labels io.Reader, opts ...IDXOption) (*Set, error) {
	var o idxOptions
	for _, opt := range opts {
		opt(&o)
	}

	dims, err := readIDXHeader(images, idxImagesMagic, 3)
	if err != nil {
		return nil, fmt.Errorf("images: %w", err)
	}
	if dims[1] > MaxIDXPixels || dims[2] > MaxIDXPixels {
		return nil, fmt.Errorf("%w: %dx%d images exceed %d pixels", ErrInvalidSet, dims[1], dims[2], MaxIDXPixels)
	}
	count, imageSize := int64(dims[0]), int64(dims[1])*int64(dims[2])

	lbl, err := readIDXHeader(labels, idxLabelsMagic, 1)
	if err != nil {
		return nil, fmt.Errorf("labels: %w", err)
	}
	if int64(lbl[0]) != count {
		return nil, fmt.Errorf("%w: %d images vs %d labels", ErrInvalidSet, count, lbl[0])
	}
	if o.limit > 0 {
		count = min(count, int64(o.limit))
	}
	if count == 0 || imageSize == 0 {
		return nil, fmt.Errorf("%w: empty IDX data", ErrInvalidSet)
	}
	// count < 2^32 and imageSize <= MaxIDXPixels, so count*imageSize fits in int64.
	if imageSize > MaxIDXPixels || count*imageSize > MaxIDXPixels {
		return nil, fmt.Errorf("%w: %d images of %d pixels exceed %d", ErrInvalidSet, count, imageSize, MaxIDXPixels)
	}

	// Read labels
	ys := make([]byte, count)
	if _, err := io.ReadFull(labels, ys); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	classes := o.classes
	if classes == 0 {
		for _, y := range ys {
			classes = max(classes, int(y)+1)
		}
	}

	s, err := New("idx", int(count), int(imageSize), classes, o.matrix...)
	if err != nil {
		return nil, err
	}

	// Read all images
	pixels := make([]byte, imageSize)
	for i := range int(count) {
		if _, err := io.ReadFull(images, pixels); err != nil {
			s.Release()
			return nil, fmt.Errorf("failed to read image %d: %w", i, err)
		}
		row := s.in.Row(i)
		for j, p := range pixels {
			row[j] = float32(p) / 255
		}
		if int(ys[i]) >= classes {
			s.Release()
			return nil, fmt.Errorf("%w: label %d of image %d outside %d classes", ErrInvalidSet, ys[i], i, classes)
		}
		s.out.Set(i, int(ys[i]), 1)
	}
	return s, nil
}

// readIDXHeader checks the magic number and returns n big-endian dimensions.
func readIDXHeader(r io.Reader, magic uint32, n int) ([]uint32, error) {
	var got uint32
	if err := binary.Read(r, binary.BigEndian, &got); err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if got != magic {
		return nil, fmt.Errorf("%w: invalid magic number: got %d, want %d", ErrInvalidSet, got, magic)
	}
	dims := make([]uint32, n)
	if err := binary.Read(r, binary.BigEndian, dims); err != nil {
		return nil, fmt.Errorf("failed to read dimensions: %w", err)
	}
	return dims, nil
}
