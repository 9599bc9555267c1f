// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation.
//
// Operations on Variables build a computation graph as they run. Calling
// Backward on a scalar result propagates gradients to every Variable that
// contributed to it, summing contributions when a Variable is used more
// than once.
//
// Example:
//
//	import (
//	    "github.com/born-ml/ndgrad/autodiff"
//	)
//
//	func main() {
//	    a := autodiff.NewScalar(8)
//	    b := autodiff.NewScalar(19)
//
//	    c, _ := autodiff.Mul(a, b)
//	    _ = c.Backward()
//
//	    fmt.Println(a.Grad()) // 19
//	    fmt.Println(b.Grad()) // 8
//	}
package autodiff

import (
	"github.com/born-ml/ndgrad/internal/autodiff"
	"github.com/born-ml/ndgrad/internal/tensor"
)

// Variable is a node of the computation graph.
type Variable = autodiff.Variable

// Operator is a differentiable operation applied to Variables.
type Operator = autodiff.Operator

// OpKind identifies an operator variant.
type OpKind = autodiff.OpKind

// Operator variants.
const (
	OpAdd      = autodiff.OpAdd
	OpSubtract = autodiff.OpSubtract
	OpMultiply = autodiff.OpMultiply
	OpMatMul   = autodiff.OpMatMul
	OpSum      = autodiff.OpSum
	OpReLU     = autodiff.OpReLU
)

// NewVariable creates a leaf variable holding data.
func NewVariable(data *tensor.Tensor) Variable {
	return autodiff.NewVariable(data)
}

// NewScalar creates a leaf variable holding a single value.
func NewScalar(value float64) Variable {
	return autodiff.NewScalar(value)
}

// NewOperator creates an unapplied operator.
func NewOperator(kind OpKind) *Operator {
	return autodiff.NewOperator(kind)
}

// NewResult wraps the forward value of an applied operator into a derived variable.
func NewResult(data *tensor.Tensor, op *Operator) (Variable, error) {
	return autodiff.NewResult(data, op)
}

// Add returns a + b with broadcasting.
func Add(a, b Variable) (Variable, error) { return autodiff.Add(a, b) }

// Sub returns a - b with broadcasting.
func Sub(a, b Variable) (Variable, error) { return autodiff.Sub(a, b) }

// Mul returns a * b elementwise with broadcasting.
func Mul(a, b Variable) (Variable, error) { return autodiff.Mul(a, b) }

// MatMul returns the batched matrix product a @ b.
func MatMul(a, b Variable) (Variable, error) { return autodiff.MatMul(a, b) }

// Sum returns the sum of every element of x.
func Sum(x Variable) (Variable, error) { return autodiff.Sum(x) }

// ReLU returns max(x, 0) elementwise.
func ReLU(x Variable) (Variable, error) { return autodiff.ReLU(x) }
