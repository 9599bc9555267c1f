// Command ndgrad trains a small two-layer network with the ndgrad autodiff
// engine and optionally checkpoints it to a directory or a GCS bucket.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"k8s.io/klog/v2"
)

func main() {
	ctx := context.Background()
	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	opts := DefaultOptions()

	flag.IntVar(&opts.Epochs, "epochs", opts.Epochs, "number of training epochs")
	flag.Float64Var(&opts.LR, "lr", opts.LR, "learning rate")
	flag.Float64Var(&opts.Momentum, "momentum", opts.Momentum, "SGD momentum factor")
	flag.StringVar(&opts.Optimizer, "optimizer", opts.Optimizer, "optimizer: sgd or adam")
	flag.IntVar(&opts.Hidden, "hidden", opts.Hidden, "number of hidden units")
	flag.StringVar(&opts.Init, "init", opts.Init, "weight initialization: fixed or xavier")
	flag.Int64Var(&opts.Seed, "seed", opts.Seed, "random seed for xavier initialization")
	flag.StringVar(&opts.CheckpointDir, "checkpoint-dir", opts.CheckpointDir, "directory to store checkpoints in")
	flag.StringVar(&opts.CheckpointBucket, "checkpoint-bucket", opts.CheckpointBucket, "GCS bucket to store checkpoints in")
	flag.StringVar(&opts.CheckpointName, "checkpoint-name", opts.CheckpointName, "checkpoint key")
	flag.IntVar(&opts.CheckpointEvery, "checkpoint-every", opts.CheckpointEvery, "also checkpoint every N epochs (0 disables)")
	flag.BoolVar(&opts.Resume, "resume", opts.Resume, "resume from an existing checkpoint")
	flag.BoolVar(&opts.PrintWeights, "print-weights", opts.PrintWeights, "print the trained weights")

	klog.InitFlags(nil)
	flag.Parse()

	if _, err := Train(ctx, opts, os.Stdout); err != nil {
		return fmt.Errorf("training: %w", err)
	}
	return nil
}
