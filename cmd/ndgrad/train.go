package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"

	"k8s.io/klog/v2"

	"github.com/born-ml/ndgrad/internal/autodiff"
	"github.com/born-ml/ndgrad/internal/checkpoint"
	"github.com/born-ml/ndgrad/internal/nn"
	"github.com/born-ml/ndgrad/internal/optim"
	"github.com/born-ml/ndgrad/internal/tensor"
)

// Options configures a training run.
type Options struct {
	Epochs    int
	LR        float64
	Momentum  float64
	Optimizer string // "sgd" or "adam"
	Hidden    int
	Init      string // "fixed" or "xavier"
	Seed      int64

	CheckpointDir    string
	CheckpointBucket string
	CheckpointName   string
	CheckpointEvery  int
	Resume           bool

	PrintWeights bool
}

// DefaultOptions returns the settings of the reference run.
func DefaultOptions() Options {
	return Options{
		Epochs:         100,
		LR:             0.003,
		Optimizer:      "sgd",
		Hidden:         8,
		Init:           "fixed",
		Seed:           1,
		CheckpointName: "mlp",
	}
}

// Validate checks option values.
func (o Options) Validate() error {
	if o.Epochs < 0 {
		return fmt.Errorf("epochs must be non-negative, got %d", o.Epochs)
	}
	if o.LR <= 0 {
		return fmt.Errorf("lr must be positive, got %g", o.LR)
	}
	if o.Hidden <= 0 {
		return fmt.Errorf("hidden must be positive, got %d", o.Hidden)
	}
	if o.Init == "fixed" && o.Hidden != len(hiddenInit) {
		return fmt.Errorf("fixed init needs %d hidden units, got %d", len(hiddenInit), o.Hidden)
	}
	if o.Init != "fixed" && o.Init != "xavier" {
		return fmt.Errorf("unknown init %q", o.Init)
	}
	if o.Optimizer != "sgd" && o.Optimizer != "adam" {
		return fmt.Errorf("unknown optimizer %q", o.Optimizer)
	}
	if o.CheckpointDir != "" && o.CheckpointBucket != "" {
		return errors.New("checkpoint-dir and checkpoint-bucket are mutually exclusive")
	}
	return nil
}

func (o Options) store() checkpoint.Store {
	switch {
	case o.CheckpointDir != "":
		return &checkpoint.FileStore{Dir: o.CheckpointDir}
	case o.CheckpointBucket != "":
		return &checkpoint.GCSStore{Bucket: o.CheckpointBucket}
	default:
		return nil
	}
}

// statefulOptimizer is an optimizer whose buffers can be checkpointed.
type statefulOptimizer interface {
	optim.Optimizer
	StateDict() nn.StateDict
	LoadStateDict(state nn.StateDict) error
}

// Result summarizes a training run.
type Result struct {
	Epochs    int     // epochs completed, including resumed ones
	FirstLoss float64 // loss of the first epoch run by this call, 0 if none ran
	LastLoss  float64 // loss of the last completed epoch, possibly from the checkpoint
}

// Train fits a two-layer ReLU network to the regression dataset with
// per-sample updates and writes one loss line per epoch to out.
func Train(ctx context.Context, opts Options, out io.Writer) (Result, error) {
	log := klog.FromContext(ctx)

	if err := opts.Validate(); err != nil {
		return Result{}, err
	}

	model, err := newModel(opts)
	if err != nil {
		return Result{}, err
	}
	optimizer := newOptimizer(opts, model.Parameters())

	store := opts.store()
	var resumed *checkpoint.State
	if store != nil && opts.Resume {
		if resumed, err = restore(ctx, store, opts.CheckpointName, model, optimizer); err != nil {
			return Result{}, err
		}
	}

	start := 0
	var result Result
	if resumed != nil {
		start = resumed.Epoch
		result = Result{Epochs: resumed.Epoch, LastLoss: resumed.Loss}
	}

	x, err := tensor.FromSlice(tensor.Shape{numSamples, numFeatures}, inputs)
	if err != nil {
		return Result{}, err
	}
	y, err := tensor.FromSlice(tensor.Shape{numSamples, numOutputs}, targets)
	if err != nil {
		return Result{}, err
	}

	log.Info("training", "epochs", opts.Epochs, "startEpoch", start, "hidden", opts.Hidden,
		"optimizer", opts.Optimizer, "lr", opts.LR, "momentum", opts.Momentum)

	for epoch := start; epoch < opts.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		loss, err := runEpoch(model, optimizer, x, y)
		if err != nil {
			return result, fmt.Errorf("epoch %d: %w", epoch, err)
		}
		if epoch == start {
			result.FirstLoss = loss
		}
		result.LastLoss = loss
		result.Epochs = epoch + 1

		fmt.Fprintf(out, "loss epoch %d: %f\n", epoch, loss)
		log.V(2).Info("epoch done", "epoch", epoch, "loss", loss)

		if store != nil && opts.CheckpointEvery > 0 && (epoch+1)%opts.CheckpointEvery == 0 {
			if err := save(ctx, store, opts.CheckpointName, model, optimizer, epoch+1, loss); err != nil {
				return result, err
			}
		}
	}

	// A resumed run that trained nothing leaves its checkpoint as it was.
	if store != nil && (resumed == nil || result.Epochs > start) {
		if err := save(ctx, store, opts.CheckpointName, model, optimizer, result.Epochs, result.LastLoss); err != nil {
			return result, err
		}
	}

	if opts.PrintWeights {
		state := model.StateDict()
		for _, name := range []string{"0.weight", "0.bias", "2.weight", "2.bias"} {
			fmt.Fprintf(out, "%s\n%s\n", name, state[name])
		}
	}

	log.Info("training finished", "epochs", result.Epochs, "loss", result.LastLoss)
	return result, nil
}

// runEpoch takes one optimizer step per sample and returns the summed
// squared error over the epoch.
func runEpoch(model *nn.Sequential, optimizer optim.Optimizer, x, y *tensor.Tensor) (float64, error) {
	total := 0.0
	for e := 0; e < x.Shape()[0]; e++ {
		xe, err := x.Index(e)
		if err != nil {
			return 0, err
		}
		ye, err := y.Index(e)
		if err != nil {
			return 0, err
		}

		optimizer.ZeroGrad()
		pred, err := model.Forward(autodiff.NewVariable(xe))
		if err != nil {
			return 0, err
		}
		loss, err := halfSquaredError(pred, autodiff.NewVariable(ye))
		if err != nil {
			return 0, err
		}
		if err := loss.Backward(); err != nil {
			return 0, err
		}
		if err := optimizer.Step(); err != nil {
			return 0, err
		}

		value, err := loss.Data().Scalar()
		if err != nil {
			return 0, err
		}
		total += 2 * value
	}
	return total, nil
}

// halfSquaredError returns sum((pred - target)²) / 2, whose gradient with
// respect to pred is the plain residual.
func halfSquaredError(pred, target autodiff.Variable) (autodiff.Variable, error) {
	diff, err := autodiff.Sub(pred, target)
	if err != nil {
		return autodiff.Variable{}, err
	}
	sq, err := autodiff.Mul(diff, diff)
	if err != nil {
		return autodiff.Variable{}, err
	}
	sum, err := autodiff.Sum(sq)
	if err != nil {
		return autodiff.Variable{}, err
	}
	return autodiff.Mul(sum, autodiff.NewScalar(0.5))
}

func newModel(opts Options) (*nn.Sequential, error) {
	rng := rand.New(rand.NewSource(opts.Seed)) //nolint:gosec // weight initialization is not security-critical

	hidden, err := nn.NewLinear(numFeatures, opts.Hidden, rng)
	if err != nil {
		return nil, err
	}
	output, err := nn.NewLinear(opts.Hidden, numOutputs, rng)
	if err != nil {
		return nil, err
	}

	if opts.Init == "fixed" {
		if err := loadRows(hidden, hiddenInit); err != nil {
			return nil, fmt.Errorf("hidden layer: %w", err)
		}
		if err := loadRows(output, outputInit); err != nil {
			return nil, fmt.Errorf("output layer: %w", err)
		}
	}

	return nn.NewSequential(hidden, nn.NewReLU(), output), nil
}

// loadRows sets layer parameters from rows of per-unit input weights
// followed by the unit's bias.
func loadRows(layer *nn.Linear, rows [][]float64) error {
	in, out := layer.InFeatures(), layer.OutFeatures()
	if len(rows) != out {
		return fmt.Errorf("expected %d rows, got %d", out, len(rows))
	}

	weight, err := tensor.Zeros(tensor.Shape{in, out})
	if err != nil {
		return err
	}
	bias, err := tensor.Zeros(tensor.Shape{out})
	if err != nil {
		return err
	}
	for j, row := range rows {
		if len(row) != in+1 {
			return fmt.Errorf("row %d: expected %d values, got %d", j, in+1, len(row))
		}
		for i := 0; i < in; i++ {
			if err := weight.Set(row[i], i, j); err != nil {
				return err
			}
		}
		if err := bias.Set(row[in], j); err != nil {
			return err
		}
	}

	return layer.LoadStateDict(nn.StateDict{"weight": weight, "bias": bias})
}

func newOptimizer(opts Options, params []*nn.Parameter) statefulOptimizer {
	if opts.Optimizer == "adam" {
		return optim.NewAdam(params, optim.AdamConfig{LR: opts.LR})
	}
	return optim.NewSGD(params, optim.SGDConfig{LR: opts.LR, Momentum: opts.Momentum})
}

func save(ctx context.Context, store checkpoint.Store, name string, model *nn.Sequential, optimizer statefulOptimizer, epoch int, loss float64) error {
	return checkpoint.Save(ctx, store, name, checkpoint.State{
		Epoch:     epoch,
		Loss:      loss,
		Model:     model.StateDict(),
		Optimizer: optimizer.StateDict(),
	})
}

// restore loads a previous checkpoint into model and optimizer and returns
// its state. A missing checkpoint returns nil so training starts from scratch.
func restore(ctx context.Context, store checkpoint.Store, name string, model *nn.Sequential, optimizer statefulOptimizer) (*checkpoint.State, error) {
	log := klog.FromContext(ctx)

	state, err := checkpoint.Load(ctx, store, name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Info("no checkpoint to resume from", "name", name)
			return nil, nil
		}
		return nil, err
	}

	if err := model.LoadStateDict(state.Model); err != nil {
		return nil, fmt.Errorf("restoring model: %w", err)
	}
	if err := optimizer.LoadStateDict(state.Optimizer); err != nil {
		return nil, fmt.Errorf("restoring optimizer: %w", err)
	}

	log.Info("resumed from checkpoint", "name", name, "epoch", state.Epoch, "loss", state.Loss)
	return &state, nil
}
