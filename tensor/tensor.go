// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/ndgrad/internal/tensor"
)

// Shape represents tensor dimensions.
type Shape = tensor.Shape

// Tensor is an N-dimensional strided view over float64 storage.
type Tensor = tensor.Tensor

// BinaryFunc combines two elements.
type BinaryFunc = tensor.BinaryFunc

// BroadcastPlan describes how two operands map onto a broadcast result.
type BroadcastPlan = tensor.BroadcastPlan

// MatmulBroadcastPlan describes a batched matrix product.
type MatmulBroadcastPlan = tensor.MatmulBroadcastPlan

// IndexError reports an out-of-range index.
type IndexError = tensor.IndexError

// Errors.
var (
	ErrShapeMismatch    = tensor.ErrShapeMismatch
	ErrIndexOutOfBounds = tensor.ErrIndexOutOfBounds
	ErrRankMismatch     = tensor.ErrRankMismatch
	ErrInvalidOperation = tensor.ErrInvalidOperation
)

// Scalar creates a tensor of shape (1) holding value.
func Scalar(value float64) *Tensor {
	return tensor.Scalar(value)
}

// Full creates a tensor of the given shape with every element set to value.
func Full(shape Shape, value float64) (*Tensor, error) {
	return tensor.Full(shape, value)
}

// Zeros creates a zero-filled tensor.
func Zeros(shape Shape) (*Tensor, error) {
	return tensor.Zeros(shape)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) (*Tensor, error) {
	return tensor.Ones(shape)
}

// FromSlice creates a tensor from a copy of data in row-major order.
func FromSlice(shape Shape, data []float64) (*Tensor, error) {
	return tensor.FromSlice(shape, data)
}

// PrepareBroadcast computes the broadcast plan for lhs and rhs.
func PrepareBroadcast(lhs, rhs *Tensor) (BroadcastPlan, error) {
	return tensor.PrepareBroadcast(lhs, rhs)
}

// PrepareMatmulBroadcast computes the batched matmul plan for lhs and rhs.
func PrepareMatmulBroadcast(lhs, rhs *Tensor) (MatmulBroadcastPlan, error) {
	return tensor.PrepareMatmulBroadcast(lhs, rhs)
}

// BroadcastShapes returns the shape two operands broadcast to.
func BroadcastShapes(a, b Shape) (Shape, error) {
	return tensor.BroadcastShapes(a, b)
}

// Operation applies fn elementwise with broadcasting.
func Operation(lhs, rhs *Tensor, fn BinaryFunc) (*Tensor, error) {
	return tensor.Operation(lhs, rhs, fn)
}

// Add returns lhs + rhs.
func Add(lhs, rhs *Tensor) (*Tensor, error) { return tensor.Add(lhs, rhs) }

// Sub returns lhs - rhs.
func Sub(lhs, rhs *Tensor) (*Tensor, error) { return tensor.Sub(lhs, rhs) }

// Mul returns lhs * rhs elementwise.
func Mul(lhs, rhs *Tensor) (*Tensor, error) { return tensor.Mul(lhs, rhs) }

// Div returns lhs / rhs elementwise.
func Div(lhs, rhs *Tensor) (*Tensor, error) { return tensor.Div(lhs, rhs) }

// Maximum returns the elementwise maximum of lhs and rhs.
func Maximum(lhs, rhs *Tensor) (*Tensor, error) { return tensor.Maximum(lhs, rhs) }

// MatMul returns the batched matrix product of lhs and rhs.
func MatMul(lhs, rhs *Tensor) (*Tensor, error) {
	return tensor.MatMul(lhs, rhs)
}

// Concatenate joins the flattened elements of lhs and rhs into a rank-1 tensor.
func Concatenate(lhs, rhs *Tensor) (*Tensor, error) {
	return tensor.Concatenate(lhs, rhs)
}

// ConcatenateAxis joins lhs and rhs along axis.
func ConcatenateAxis(lhs, rhs *Tensor, axis int) (*Tensor, error) {
	return tensor.ConcatenateAxis(lhs, rhs, axis)
}
