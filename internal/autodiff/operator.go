// Package autodiff implements reverse-mode automatic differentiation over
// dynamically built computation graphs.
//
// Applying an Operator to input Variables produces a new Variable that keeps a
// reference to the operator, which in turn keeps references to its inputs.
// Calling Backward on the result walks this graph eagerly and recursively:
// each node adds the incoming gradient into its own gradient and forwards it
// to the operator that produced it.
//
// Supported operators:
//   - OpAdd: d(a+b)/da = 1, d(a+b)/db = 1
//   - OpSubtract: d(a-b)/da = 1, d(a-b)/db = -1
//   - OpMultiply: d(a*b)/da = b, d(a*b)/db = a
//   - OpMatMul: d(A@B)/dA = grad@B^T, d(A@B)/dB = A^T@grad
//   - OpSum: gradient broadcast back to the input shape
//   - OpReLU: gradient passes where the input is positive
package autodiff

import (
	"fmt"

	"github.com/born-ml/ndgrad/internal/tensor"
)

// OpKind identifies an operator variant.
type OpKind int

// Operator variants.
const (
	OpAdd OpKind = iota
	OpSubtract
	OpMultiply
	OpMatMul
	OpSum
	OpReLU
)

// String returns the operator name.
func (k OpKind) String() string {
	switch k {
	case OpAdd:
		return "Add"
	case OpSubtract:
		return "Subtract"
	case OpMultiply:
		return "Multiply"
	case OpMatMul:
		return "MatMul"
	case OpSum:
		return "Sum"
	case OpReLU:
		return "ReLU"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}

// Arity returns the number of inputs the operator consumes.
func (k OpKind) Arity() int {
	switch k {
	case OpSum, OpReLU:
		return 1
	default:
		return 2
	}
}

// Operator is a differentiable operation in the computation graph.
//
// An Operator starts unapplied, is applied exactly once to a fixed list of
// inputs, and keeps those inputs alive so Backward can run later.
// Inputs never reference their consuming operator, so the graph stays acyclic.
type Operator struct {
	kind   OpKind
	inputs []Variable // nil until applied
}

// NewOperator creates an unapplied operator of the given kind.
func NewOperator(kind OpKind) *Operator {
	return &Operator{kind: kind}
}

// Kind returns the operator variant.
func (op *Operator) Kind() OpKind {
	return op.kind
}

// Inputs returns the variables the operator was applied to.
func (op *Operator) Inputs() []Variable {
	return op.inputs
}

// Applied reports whether Apply has succeeded.
func (op *Operator) Applied() bool {
	return op.inputs != nil
}

// Apply computes the forward value for inputs and records them for Backward.
// On error the operator stays unapplied.
func (op *Operator) Apply(inputs ...Variable) (*tensor.Tensor, error) {
	if op.Applied() {
		return nil, fmt.Errorf("%w: operator %s already applied", tensor.ErrInvalidOperation, op.kind)
	}
	if len(inputs) != op.kind.Arity() {
		return nil, fmt.Errorf("%w: invalid number of inputs for %s, expected %d but received %d",
			tensor.ErrInvalidOperation, op.kind, op.kind.Arity(), len(inputs))
	}
	for i, in := range inputs {
		if in.node == nil {
			return nil, fmt.Errorf("%w: input %d of %s is an uninitialized variable",
				tensor.ErrInvalidOperation, i, op.kind)
		}
	}

	out, err := op.forward(inputs)
	if err != nil {
		return nil, fmt.Errorf("%s forward: %w", op.kind, err)
	}

	op.inputs = append(make([]Variable, 0, len(inputs)), inputs...)
	return out, nil
}

// Backward propagates grad, the gradient with respect to the operator's
// output, into every input variable.
func (op *Operator) Backward(grad *tensor.Tensor) error {
	if !op.Applied() {
		return fmt.Errorf("%w: operator %s not applied", tensor.ErrInvalidOperation, op.kind)
	}

	grads, err := op.inputGrads(grad)
	if err != nil {
		return fmt.Errorf("%s backward: %w", op.kind, err)
	}

	for i, in := range op.inputs {
		if err := in.BackwardWith(grads[i]); err != nil {
			return err
		}
	}
	return nil
}

func (op *Operator) forward(inputs []Variable) (*tensor.Tensor, error) {
	switch op.kind {
	case OpAdd:
		return tensor.Add(inputs[0].Data(), inputs[1].Data())
	case OpSubtract:
		return tensor.Sub(inputs[0].Data(), inputs[1].Data())
	case OpMultiply:
		return tensor.Mul(inputs[0].Data(), inputs[1].Data())
	case OpMatMul:
		return tensor.MatMul(inputs[0].Data(), inputs[1].Data())
	case OpSum:
		return tensor.Scalar(inputs[0].Data().Sum()), nil
	case OpReLU:
		return tensor.Maximum(inputs[0].Data(), tensor.Scalar(0))
	default:
		return nil, fmt.Errorf("%w: unknown operator %s", tensor.ErrInvalidOperation, op.kind)
	}
}

// inputGrads returns one gradient per input. Gradients may still carry
// broadcast axes; Variable.BackwardWith reduces them to the input's shape.
func (op *Operator) inputGrads(grad *tensor.Tensor) ([]*tensor.Tensor, error) {
	switch op.kind {
	case OpAdd:
		return []*tensor.Tensor{grad, grad}, nil

	case OpSubtract:
		return []*tensor.Tensor{grad, grad.MulScalar(-1)}, nil

	case OpMultiply:
		a, b := op.inputs[0].Data(), op.inputs[1].Data()
		gradA, err := tensor.Mul(grad, b)
		if err != nil {
			return nil, err
		}
		gradB, err := tensor.Mul(grad, a)
		if err != nil {
			return nil, err
		}
		return []*tensor.Tensor{gradA, gradB}, nil

	case OpMatMul:
		gradA, gradB, err := matmulGrads(op.inputs[0].Data(), op.inputs[1].Data(), grad)
		if err != nil {
			return nil, err
		}
		return []*tensor.Tensor{gradA, gradB}, nil

	case OpSum:
		g, err := grad.Scalar()
		if err != nil {
			return nil, err
		}
		gradX, err := tensor.Full(op.inputs[0].Data().Shape(), g)
		if err != nil {
			return nil, err
		}
		return []*tensor.Tensor{gradX}, nil

	case OpReLU:
		gradX, err := tensor.Operation(grad, op.inputs[0].Data(), func(g, x float64) float64 {
			if x > 0 {
				return g
			}
			return 0
		})
		if err != nil {
			return nil, err
		}
		return []*tensor.Tensor{gradX}, nil

	default:
		return nil, fmt.Errorf("%w: unknown operator %s", tensor.ErrInvalidOperation, op.kind)
	}
}

// matmulGrads computes gradA = grad @ B^T and gradB = A^T @ grad.
//
// Rank-1 operands are promoted to (1, K) and (K, 1) first so both products
// are ordinary batched matmuls; results are reduced over broadcast batch axes
// and reshaped back to the operands' shapes.
func matmulGrads(a, b, grad *tensor.Tensor) (*tensor.Tensor, *tensor.Tensor, error) {
	a2, b2 := a, b
	var err error
	if a.Rank() == 1 {
		if a2, err = a.Reshape(tensor.Shape{1, a.Size()}); err != nil {
			return nil, nil, err
		}
	}
	if b.Rank() == 1 {
		if b2, err = b.Reshape(tensor.Shape{b.Size(), 1}); err != nil {
			return nil, nil, err
		}
	}

	plan, err := tensor.PrepareMatmulBroadcast(a2, b2)
	if err != nil {
		return nil, nil, err
	}
	g2, err := grad.Reshape(plan.ResShape)
	if err != nil {
		return nil, nil, err
	}

	bT, err := b2.Transpose()
	if err != nil {
		return nil, nil, err
	}
	gradA, err := tensor.MatMul(g2, bT)
	if err != nil {
		return nil, nil, err
	}
	if gradA, err = reduceBroadcast(gradA, a2.Shape()); err != nil {
		return nil, nil, err
	}

	aT, err := a2.Transpose()
	if err != nil {
		return nil, nil, err
	}
	gradB, err := tensor.MatMul(aT, g2)
	if err != nil {
		return nil, nil, err
	}
	if gradB, err = reduceBroadcast(gradB, b2.Shape()); err != nil {
		return nil, nil, err
	}

	if gradA, err = gradA.Reshape(a.Shape()); err != nil {
		return nil, nil, err
	}
	if gradB, err = gradB.Reshape(b.Shape()); err != nil {
		return nil, nil, err
	}
	return gradA, gradB, nil
}
