// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides N-dimensional float64 arrays with NumPy-style
// broadcasting.
//
// # Overview
//
// A Tensor is a strided view over a shared buffer. Indexing and slicing
// along the leading axis return views that alias their parent, so writes
// through a view are visible in the parent. Arithmetic always allocates a
// fresh row-major result.
//
// # Basic Usage
//
//	import "github.com/born-ml/ndgrad/tensor"
//
//	func main() {
//	    x, _ := tensor.FromSlice(tensor.Shape{2, 3}, []float64{1, 2, 3, 4, 5, 6})
//	    b, _ := tensor.FromSlice(tensor.Shape{3}, []float64{10, 20, 30})
//
//	    y, _ := tensor.Add(x, b)       // (2, 3): b is broadcast over rows
//	    w, _ := tensor.Ones(tensor.Shape{4, 3, 2})
//	    z, _ := tensor.MatMul(x, w)    // (4, 2, 2): x is broadcast over the batch
//	    fmt.Println(y, z)
//	}
//
// # Broadcasting
//
// Shapes are aligned from the right. Two dimensions are compatible when they
// are equal or one of them is 1; missing leading dimensions count as 1.
//
// # Scalars
//
// A scalar is a rank-1 tensor of shape (1). Indexing a rank-1 tensor
// yields a scalar view of one element.
//
// # Errors
//
// Fallible operations return an error wrapping one of ErrShapeMismatch,
// ErrIndexOutOfBounds, ErrRankMismatch or ErrInvalidOperation.
package tensor
