package main

import (
	"cmp"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/born-ml/mlp/internal/activation"
	"github.com/born-ml/mlp/internal/matrix"
	"github.com/born-ml/mlp/internal/serialization"
)

func runPredict(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	fs.SetOutput(stderr)
	path := fs.String("load", "", "Trained .mlp file")
	input := fs.String("input", "", "Comma-separated input values")
	hiddenAct := fs.String("hidden", "", "Hidden activation (default: from file)")
	outputAct := fs.String("output", "", "Output activation (default: from file)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" || *input == "" {
		return errors.New("predict needs -load and -input")
	}

	values, err := parseFloats(*input)
	if err != nil {
		return err
	}
	a, h, err := serialization.Load(*path, serialization.ReaderOptions{})
	if err != nil {
		return err
	}
	defer a.Release()

	hiddenName, outputName := *hiddenAct, *outputAct
	if h.Training != nil {
		hiddenName = cmp.Or(hiddenName, h.Training.Hidden)
		outputName = cmp.Or(outputName, h.Training.Output)
	}
	hidden, err := lookup(hiddenName)
	if err != nil {
		return err
	}
	output, err := lookup(outputName)
	if err != nil {
		return err
	}

	in := a.Input()
	if len(values) != len(in) {
		return fmt.Errorf("%w: %d values for an input layer of %d", matrix.ErrDimensionMismatch, len(values), len(in))
	}
	copy(in, values)
	out, err := a.Forward(hidden, output)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, formatRow(out.Row(0)))
	return nil
}

func lookup(name string) (activation.Func, error) {
	if name == "" {
		name = activation.Sigmoid.String()
	}
	k, err := activation.ParseKind(name)
	if err != nil {
		return activation.Func{}, err
	}
	return activation.Lookup(k)
}

func formatRow(row []float32) string {
	var b []byte
	for i, v := range row {
		if i > 0 {
			b = append(b, ' ')
		}
		b = fmt.Appendf(b, "%.6f", v)
	}
	return string(b)
}
