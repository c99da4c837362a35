package serialization

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/born-ml/mlp/internal/network"
)

// Save writes a to path. The file is written next to path and renamed into
// place, so a failed save leaves any previous file intact.
func Save(path string, a *network.Architecture, meta Meta) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	bw := bufio.NewWriter(tmp)
	if err := Write(bw, a, meta); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}

// Load reads the architecture stored at path.
func Load(path string, opts ReaderOptions) (*network.Architecture, Header, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	f, err := os.Open(path)
	if err != nil {
		return nil, Header{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	a, h, err := Read(bufio.NewReader(f), opts)
	if err != nil {
		return nil, Header{}, fmt.Errorf("%s: %w", path, err)
	}
	return a, h, nil
}
