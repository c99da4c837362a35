package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/born-ml/mlp/internal/activation"
	"github.com/born-ml/mlp/internal/dataset"
	"github.com/born-ml/mlp/internal/matrix"
	"github.com/born-ml/mlp/internal/optim"
	"github.com/born-ml/mlp/internal/serialization"
	"github.com/born-ml/mlp/internal/train"
)

type trainFlags struct {
	dataset string
	bits    int
	images  string
	labels  string
	limit   int

	layers string
	width  int

	epochs    int
	batch     int
	lr        float64
	wd        float64
	beta1     float64
	beta2     float64
	eps       float64
	optimizer string
	hiddenAct string
	outputAct string
	shuffle   bool
	seed      uint64
	workers   int

	save     string
	resume   string
	logLevel string
	show     bool
	dump     bool
}

func (f *trainFlags) register(fs *flag.FlagSet) {
	def := train.DefaultConfig()
	fs.StringVar(&f.dataset, "dataset", "xor", "Data set: xor, parity, echo or idx")
	fs.IntVar(&f.bits, "bits", 4, "Pattern width for parity and echo")
	fs.StringVar(&f.images, "images", "", "IDX image file (dataset=idx)")
	fs.StringVar(&f.labels, "labels", "", "IDX label file (dataset=idx)")
	fs.IntVar(&f.limit, "limit", 0, "Max IDX samples to load (0 = all)")

	fs.StringVar(&f.layers, "layers", "", "Comma-separated layer sizes, e.g. 2,4,1 (default: input,width,output)")
	fs.IntVar(&f.width, "width", 8, "Hidden layer width when -layers is empty")

	fs.IntVar(&f.epochs, "epochs", def.Epochs, "Number of training epochs")
	fs.IntVar(&f.batch, "batch", def.BatchSize, "Batch size for training")
	fs.Float64Var(&f.lr, "lr", float64(def.LearningRate), "Learning rate")
	fs.Float64Var(&f.wd, "wd", float64(def.WeightDecay), "Decoupled weight decay")
	fs.Float64Var(&f.beta1, "beta1", float64(def.Beta1), "Adam first-moment decay")
	fs.Float64Var(&f.beta2, "beta2", float64(def.Beta2), "Adam second-moment decay")
	fs.Float64Var(&f.eps, "eps", float64(def.Epsilon), "Adam epsilon")
	fs.StringVar(&f.optimizer, "optimizer", def.Optimizer.String(), "Optimizer: sgd, adam or adamw")
	fs.StringVar(&f.hiddenAct, "hidden", def.Hidden.String(), "Hidden activation")
	fs.StringVar(&f.outputAct, "output", def.Output.String(), "Output activation")
	fs.BoolVar(&f.shuffle, "shuffle", def.Shuffle, "Reshuffle rows every epoch")
	fs.Uint64Var(&f.seed, "seed", def.Seed, "Seed for weights and shuffling")
	fs.IntVar(&f.workers, "workers", def.Workers, "Data-parallel workers per batch (0 = one per CPU)")

	fs.StringVar(&f.save, "save", "", "Write the trained weights to this .mlp file")
	fs.StringVar(&f.resume, "resume", "", "Continue training from this .mlp file")
	fs.StringVar(&f.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.BoolVar(&f.show, "show", false, "Print predictions for every row after training")
	fs.BoolVar(&f.dump, "print", false, "Print the trained weights and biases")
}

func (f *trainFlags) config() (train.Config, error) {
	cfg := train.DefaultConfig()
	cfg.Epochs = f.epochs
	cfg.BatchSize = f.batch
	cfg.LearningRate = float32(f.lr)
	cfg.WeightDecay = float32(f.wd)
	cfg.Beta1 = float32(f.beta1)
	cfg.Beta2 = float32(f.beta2)
	cfg.Epsilon = float32(f.eps)
	cfg.Shuffle = f.shuffle
	cfg.Seed = f.seed
	cfg.Workers = f.workers

	var err error
	if cfg.Optimizer, err = optim.ParseKind(f.optimizer); err != nil {
		return cfg, err
	}
	if cfg.Hidden, err = activation.ParseKind(f.hiddenAct); err != nil {
		return cfg, err
	}
	if cfg.Output, err = activation.ParseKind(f.outputAct); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (f *trainFlags) load() (*dataset.Set, error) {
	switch f.dataset {
	case "xor":
		return dataset.XOR()
	case "parity":
		return dataset.Parity(f.bits)
	case "echo":
		return dataset.Echo(f.bits)
	case "idx":
		if f.images == "" || f.labels == "" {
			return nil, errors.New("dataset idx needs -images and -labels")
		}
		return dataset.LoadIDX(f.images, f.labels, dataset.WithLimit(f.limit))
	default:
		return nil, fmt.Errorf("unknown dataset %q", f.dataset)
	}
}

func (f *trainFlags) sizes(set *dataset.Set) ([]int, error) {
	sizes, err := parseInts(f.layers)
	if err != nil {
		return nil, err
	}
	if len(sizes) == 0 {
		return []int{set.InputWidth(), f.width, set.OutputWidth()}, nil
	}
	return sizes, nil
}

func runTrain(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var f trainFlags
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger, err := newLogger(stderr, f.logLevel)
	if err != nil {
		return err
	}
	cfg, err := f.config()
	if err != nil {
		return err
	}

	set, err := f.load()
	if err != nil {
		return err
	}
	defer set.Release()

	sizes, err := f.sizes(set)
	if err != nil {
		return err
	}

	eng, err := train.New(cfg, sizes, set, train.WithLogger(logger))
	if err != nil {
		return err
	}
	defer eng.Close()

	if f.resume != "" {
		if err := resume(eng, f.resume, logger); err != nil {
			return err
		}
	}

	logger.Info("training",
		slog.String("dataset", set.Name()),
		slog.Int("rows", set.Rows()),
		slog.Any("sizes", sizes),
		slog.Int("epochs", cfg.Epochs),
		slog.Int("batches", eng.Batches()),
	)

	reports, err := eng.Train(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		logger.Warn("interrupted", slog.Int("epoch", eng.Epoch()))
	}

	var last float32
	if len(reports) > 0 {
		last = reports[len(reports)-1].Loss
	}
	fmt.Fprintf(stdout, "epochs=%d loss=%.6f\n", eng.Epoch(), last)

	if f.show {
		if err := showPredictions(stdout, eng, set); err != nil {
			return err
		}
	}
	if f.dump {
		if err := eng.Architecture().Print(stdout, set.Name()); err != nil {
			return err
		}
	}
	if f.save != "" {
		meta := serialization.Meta{
			Training: eng.Checkpoint(last),
			Metadata: map[string]string{"dataset": set.Name()},
		}
		if err := serialization.Save(f.save, eng.Architecture(), meta); err != nil {
			return err
		}
		logger.Info("saved", slog.String("path", f.save))
	}
	return nil
}

func resume(eng *train.Engine, path string, logger *slog.Logger) error {
	lanes := eng.Architecture().Weights[0].Lanes()
	saved, h, err := serialization.Load(path, serialization.ReaderOptions{
		MatrixOptions: []matrix.Option{matrix.WithLanes(lanes)},
	})
	if err != nil {
		return err
	}
	defer saved.Release()

	if err := eng.Restore(saved, h.Training); err != nil {
		return err
	}
	logger.Info("resumed", slog.String("path", path), slog.Int("epoch", eng.Epoch()))
	return nil
}

func showPredictions(w io.Writer, eng *train.Engine, set *dataset.Set) error {
	outs, err := eng.Outputs()
	if err != nil {
		return err
	}
	defer outs.Release()

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "row\tinput\ttarget\toutput")
	for r := range min(set.Rows(), 64) {
		fmt.Fprintf(tw, "%d\t%v\t%v\t%.4f\n", r, set.TrainingInput().Row(r), set.TrainingOutput().Row(r), outs.Row(r))
	}
	return tw.Flush()
}
