package autodiff

import (
	"fmt"

	"github.com/born-ml/ndgrad/internal/tensor"
)

type variableData struct {
	data *tensor.Tensor
	grad *tensor.Tensor // nil until the first backward pass reaches the node
	op   *Operator      // nil for leaves
}

// Variable is a node of the computation graph.
//
// Variable is a handle: copies refer to the same node, so a leaf used twice
// accumulates both gradient contributions in one place.
// The zero Variable is not usable; create one with NewVariable or NewScalar.
type Variable struct {
	node *variableData
}

// NewVariable creates a leaf variable holding data.
// The tensor is not copied.
func NewVariable(data *tensor.Tensor) Variable {
	return Variable{node: &variableData{data: data}}
}

// NewScalar creates a leaf variable holding a single value.
func NewScalar(value float64) Variable {
	return NewVariable(tensor.Scalar(value))
}

// NewResult wraps the forward value returned by op.Apply into a derived
// variable whose backward pass runs through op.
//
//	op := autodiff.NewOperator(autodiff.OpMultiply)
//	out, err := op.Apply(a, b)
//	c, err := autodiff.NewResult(out, op)
func NewResult(data *tensor.Tensor, op *Operator) (Variable, error) {
	if op == nil || !op.Applied() {
		return Variable{}, fmt.Errorf("%w: result requires an applied operator", tensor.ErrInvalidOperation)
	}
	if data == nil {
		return Variable{}, fmt.Errorf("%w: result of %s has no data", tensor.ErrInvalidOperation, op.kind)
	}
	return newResult(data, op), nil
}

func newResult(data *tensor.Tensor, op *Operator) Variable {
	return Variable{node: &variableData{data: data, op: op}}
}

// Data returns the value held by the variable.
func (v Variable) Data() *tensor.Tensor {
	return v.node.data
}

// Grad returns the accumulated gradient, or nil if no backward pass has
// reached the variable since the last ZeroGrad.
func (v Variable) Grad() *tensor.Tensor {
	return v.node.grad
}

// Op returns the operator that produced the variable, or nil for a leaf.
func (v Variable) Op() *Operator {
	return v.node.op
}

// IsLeaf reports whether the variable was created directly rather than by an
// operator.
func (v Variable) IsLeaf() bool {
	return v.node.op == nil
}

// Same reports whether v and other refer to the same graph node.
func (v Variable) Same(other Variable) bool {
	return v.node == other.node
}

// ZeroGrad discards the accumulated gradient.
func (v Variable) ZeroGrad() {
	v.node.grad = nil
}

// Backward runs backpropagation from v, seeding it with a gradient of ones.
// v must hold a scalar.
func (v Variable) Backward() error {
	if !v.node.data.IsScalar() {
		return fmt.Errorf("%w: backward without an incoming gradient requires a scalar, got shape %v",
			tensor.ErrInvalidOperation, v.node.data.Shape())
	}
	seed, err := tensor.Ones(v.node.data.Shape())
	if err != nil {
		return err
	}
	return v.BackwardWith(seed)
}

// BackwardWith adds grad into the variable's gradient and propagates it to
// the operator that produced the variable.
//
// grad is reduced to the variable's shape first, so gradients coming out of a
// broadcast operation land with the right shape.
func (v Variable) BackwardWith(grad *tensor.Tensor) error {
	g, err := reduceBroadcast(grad, v.node.data.Shape())
	if err != nil {
		return err
	}

	if v.node.grad == nil {
		if v.node.grad, err = tensor.Zeros(v.node.data.Shape()); err != nil {
			return err
		}
	}
	sum, err := tensor.Add(v.node.grad, g)
	if err != nil {
		return err
	}
	// Accumulate in place so tensors returned by Grad stay live.
	if err := v.node.grad.Assign(sum); err != nil {
		return err
	}

	if v.node.op != nil {
		return v.node.op.Backward(g)
	}
	return nil
}
