// Package loader reads and writes the files the engine consumes: trained
// weights in the .mlp format and IDX (MNIST layout) image/label sets.
//
// Example usage:
//
//	import "github.com/born-ml/mlp/loader"
//
//	set, err := loader.LoadIDX("train-images-idx3-ubyte", "train-labels-idx1-ubyte",
//	    loader.WithLimit(10000))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer set.Release()
//
//	arch, header, err := loader.LoadWeights("mnist.mlp", loader.ReaderOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer arch.Release()
package loader

import (
	"github.com/born-ml/mlp/internal/dataset"
	"github.com/born-ml/mlp/internal/network"
	"github.com/born-ml/mlp/internal/serialization"
)

// Header is the JSON header of a .mlp file.
type Header = serialization.Header

// TrainingMeta records where training stopped.
type TrainingMeta = serialization.TrainingMeta

// Meta carries the optional parts of a .mlp file.
type Meta = serialization.Meta

// ReaderOptions configures LoadWeights.
type ReaderOptions = serialization.ReaderOptions

// Validation levels for ReaderOptions.
const (
	ValidationStrict = serialization.ValidationStrict
	ValidationNormal = serialization.ValidationNormal
	ValidationNone   = serialization.ValidationNone
)

// File format errors.
var (
	ErrInvalidMagic       = serialization.ErrInvalidMagic
	ErrUnsupportedVersion = serialization.ErrUnsupportedVersion
	ErrChecksumMismatch   = serialization.ErrChecksumMismatch
	ErrOutOfBounds        = serialization.ErrOutOfBounds
	ErrShapeMismatch      = serialization.ErrShapeMismatch
)

// SaveWeights writes a to path in .mlp format.
func SaveWeights(path string, a *network.Architecture, meta Meta) error {
	return serialization.Save(path, a, meta)
}

// LoadWeights reads a .mlp file.
func LoadWeights(path string, opts ReaderOptions) (*network.Architecture, Header, error) {
	return serialization.Load(path, opts)
}

// IDXOption configures LoadIDX.
type IDXOption = dataset.IDXOption

// LoadIDX reads an IDX image file and label file into a data set.
func LoadIDX(images, labels string, opts ...IDXOption) (*dataset.Set, error) {
	return dataset.LoadIDX(images, labels, opts...)
}

// WithLimit keeps only the first n examples.
func WithLimit(n int) IDXOption {
	return dataset.WithLimit(n)
}

// WithClasses fixes the one-hot target width.
func WithClasses(n int) IDXOption {
	return dataset.WithClasses(n)
}
