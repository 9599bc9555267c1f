// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//
// Optimizers read the gradients that a backward pass left on each
// nn.Parameter and update the parameter values in place.
//
// Example usage:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.003})
//
//	for epoch := range epochs {
//	    optimizer.ZeroGrad()
//	    out, _ := model.Forward(x)
//	    loss, _ := mse.Forward(out, y)
//	    _ = loss.Backward()
//	    _ = optimizer.Step()
//	}
package optim

import (
	"fmt"

	"github.com/born-ml/ndgrad/internal/nn"
	"github.com/born-ml/ndgrad/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies gradient updates to all parameters in place.
	// Parameters without a gradient are skipped.
	Step() error

	// ZeroGrad clears all parameter gradients.
	//
	// This should be called before each backward pass to prevent
	// gradient accumulation from previous iterations.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float64

	// SetLR updates the learning rate.
	SetLR(lr float64)
}

// gradientOf returns the parameter's gradient, or nil if the parameter was
// not reached by the last backward pass.
func gradientOf(param *nn.Parameter) (*tensor.Tensor, error) {
	grad := param.Grad()
	if grad == nil {
		return nil, nil
	}
	if !grad.Shape().Equal(param.Tensor().Shape()) {
		return nil, fmt.Errorf("%w: gradient of %s has shape %v, parameter has %v",
			tensor.ErrShapeMismatch, param.Name(), grad.Shape(), param.Tensor().Shape())
	}
	return grad, nil
}

func zeroGrads(params []*nn.Parameter) {
	for _, param := range params {
		param.ZeroGrad()
	}
}

// loadBuffers restores per-parameter state buffers saved under "<prefix>.<index>".
func loadBuffers(params []*nn.Parameter, state nn.StateDict, prefix string) (map[*nn.Parameter]*tensor.Tensor, error) {
	buffers := make(map[*nn.Parameter]*tensor.Tensor)
	for i, param := range params {
		key := fmt.Sprintf("%s.%d", prefix, i)
		buf, ok := state[key]
		if !ok {
			continue
		}
		if !buf.Shape().Equal(param.Tensor().Shape()) {
			return nil, fmt.Errorf("%w: %s shape mismatch for parameter %d: expected %v, got %v",
				tensor.ErrShapeMismatch, prefix, i, param.Tensor().Shape(), buf.Shape())
		}
		buffers[param] = buf.Clone()
	}
	return buffers, nil
}

func saveBuffers(params []*nn.Parameter, buffers map[*nn.Parameter]*tensor.Tensor, state nn.StateDict, prefix string) {
	for i, param := range params {
		if buf, ok := buffers[param]; ok {
			state[fmt.Sprintf("%s.%d", prefix, i)] = buf
		}
	}
}
