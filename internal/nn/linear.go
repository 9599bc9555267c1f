package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/ndgrad/internal/autodiff"
	"github.com/born-ml/ndgrad/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W + b
// where:
//   - x is the input with shape [..., in_features]
//   - W is the weight matrix with shape [in_features, out_features]
//   - b is the bias vector with shape [out_features]
//   - y is the output with shape [..., out_features]
//
// Weights are initialized using Xavier/Glorot initialization.
// Biases are initialized to zeros.
//
// Example:
//
//	rng := rand.New(rand.NewSource(1))
//	layer, _ := nn.NewLinear(2, 8, rng)
//	out, _ := layer.Forward(x) // x: [batch, 2] → out: [batch, 8]
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [in_features, out_features]
	bias        *Parameter // [out_features]
}

// NewLinear creates a new Linear layer.
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand) (*Linear, error) {
	w, err := Xavier(inFeatures, outFeatures, tensor.Shape{inFeatures, outFeatures}, rng)
	if err != nil {
		return nil, fmt.Errorf("linear weight: %w", err)
	}
	b, err := tensor.Zeros(tensor.Shape{outFeatures})
	if err != nil {
		return nil, fmt.Errorf("linear bias: %w", err)
	}

	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", w),
		bias:        NewParameter("bias", b),
	}, nil
}

// Forward computes x @ W + b.
func (l *Linear) Forward(input autodiff.Variable) (autodiff.Variable, error) {
	shape := input.Data().Shape()
	if shape[len(shape)-1] != l.inFeatures {
		return autodiff.Variable{}, fmt.Errorf("%w: linear expects %d input features, got shape %v",
			tensor.ErrShapeMismatch, l.inFeatures, shape)
	}

	out, err := autodiff.MatMul(input, l.weight.Variable())
	if err != nil {
		return autodiff.Variable{}, err
	}
	return autodiff.Add(out, l.bias.Variable())
}

// Parameters returns [weight, bias].
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}

// StateDict returns the layer's parameters keyed by name.
// The tensors are the live parameter values.
func (l *Linear) StateDict() StateDict {
	return StateDict{
		"weight": l.weight.Tensor(),
		"bias":   l.bias.Tensor(),
	}
}

// LoadStateDict copies weight and bias values from state.
// Nothing is written unless both entries are present with the right shapes.
func (l *Linear) LoadStateDict(state StateDict) error {
	if err := l.checkStateDict(state); err != nil {
		return err
	}

	for _, p := range l.Parameters() {
		if err := p.Tensor().Assign(state[p.Name()]); err != nil {
			return err
		}
	}
	return nil
}

func (l *Linear) checkStateDict(state StateDict) error {
	for _, p := range l.Parameters() {
		src, ok := state[p.Name()]
		if !ok {
			return fmt.Errorf("missing %s in state dict", p.Name())
		}
		if !src.Shape().Equal(p.Tensor().Shape()) {
			return fmt.Errorf("%w: %s shape mismatch: expected %v, got %v",
				tensor.ErrShapeMismatch, p.Name(), p.Tensor().Shape(), src.Shape())
		}
	}
	return nil
}
