package matrix

import (
	"fmt"
	"io"
)

// Print writes the used columns of m to w as fixed-width text under a
// "name [shape]" heading.
func (m *Matrix) Print(w io.Writer, name string) error {
	if _, err := fmt.Fprintf(w, "%s [%dx%d]\n", name, m.rows, m.cols); err != nil {
		return err
	}
	for r := range m.rows {
		for c, v := range m.Row(r) {
			sep := " "
			if c == 0 {
				sep = "  "
			}
			if _, err := fmt.Fprintf(w, "%s%9.5f", sep, v); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}
