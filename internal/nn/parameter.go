package nn

import (
	"github.com/born-ml/ndgrad/internal/autodiff"
	"github.com/born-ml/ndgrad/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// A Parameter wraps a leaf Variable. Graphs built in Forward reference that
// same leaf, so a backward pass leaves its gradient on the parameter.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	w := weight.Tensor()
//	grad := weight.Grad() // nil until a backward pass reaches it
type Parameter struct {
	name string
	v    autodiff.Variable
}

// NewParameter creates a new trainable parameter holding t.
// The tensor is not copied.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return &Parameter{
		name: name,
		v:    autodiff.NewVariable(t),
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter value.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.v.Data()
}

// Variable returns the leaf variable used when building graphs.
func (p *Parameter) Variable() autodiff.Variable {
	return p.v
}

// Grad returns the accumulated gradient.
//
// Returns nil if no backward pass has reached the parameter since the last
// ZeroGrad.
func (p *Parameter) Grad() *tensor.Tensor {
	return p.v.Grad()
}

// ZeroGrad clears the gradient.
//
// This should be called before each training iteration to avoid
// accumulating gradients from previous iterations.
func (p *Parameter) ZeroGrad() {
	p.v.ZeroGrad()
}
