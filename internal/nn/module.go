// Package nn implements neural network building blocks on top of autodiff.
//
// This package provides:
//   - Module interface: base interface for all NN components
//   - Parameter: trainable leaf variable with a name
//   - Linear: fully connected layer
//   - ReLU: activation module
//   - Sequential: container for stacking layers
//   - MSELoss: mean squared error
//
// Forward passes build a fresh autodiff graph every call. Parameters are leaf
// variables that outlive those graphs, so their gradients accumulate across
// backward passes until ZeroGrad is called.
package nn

import (
	"github.com/born-ml/ndgrad/internal/autodiff"
	"github.com/born-ml/ndgrad/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules can be composed to build larger networks:
//
//	hidden, _ := nn.NewLinear(2, 8, rng)
//	output, _ := nn.NewLinear(8, 3, rng)
//	model := nn.NewSequential(hidden, nn.NewReLU(), output)
type Module interface {
	// Forward computes the output of the module for input.
	Forward(input autodiff.Variable) (autodiff.Variable, error)

	// Parameters returns all trainable parameters of this module,
	// or nil for modules without any.
	Parameters() []*Parameter
}

// StateDict maps parameter names to their current values.
type StateDict map[string]*tensor.Tensor

// Stateful is implemented by modules whose parameters can be saved and restored.
type Stateful interface {
	StateDict() StateDict
	LoadStateDict(state StateDict) error
}

// stateChecker is implemented by stateful modules that can validate a state
// dict without applying it.
type stateChecker interface {
	checkStateDict(state StateDict) error
}
