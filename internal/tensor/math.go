package tensor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Sum returns the sum of all elements.
func (t *Tensor) Sum() float64 {
	return floats.Sum(t.Data())
}

// Power raises every element to exponent in place and returns t.
// Follows math.Pow: a negative base with a fractional exponent yields NaN.
func (t *Tensor) Power(exponent float64) *Tensor {
	data := t.Data()
	for i, v := range data {
		data[i] = math.Pow(v, exponent)
	}
	return t
}

// SumAxis sums along axis and keeps it as a dimension of size 1.
//
// Example:
//
//	t: (2, 3) → SumAxis(0) → (1, 3)
func (t *Tensor) SumAxis(axis int) (*Tensor, error) {
	if axis < 0 || axis >= t.Rank() {
		return nil, fmt.Errorf("%w: axis %d out of range for rank %d", ErrInvalidOperation, axis, t.Rank())
	}

	outShape := t.shape.Clone()
	outShape[axis] = 1
	outStrides := outShape.ComputeStrides()

	// Reading the output with stride 0 on axis folds every slice onto one row.
	inStrides := make([]int, t.Rank())
	copy(inStrides, outStrides)
	inStrides[axis] = 0

	res := make([]float64, outShape.NumElements())
	data := t.Data()
	for i, v := range data {
		res[computeFlatIndex(i, t.strides, inStrides)] += v
	}

	return fromOwned(outShape, res), nil
}

// Transpose returns a copy of t with the last two axes swapped.
func (t *Tensor) Transpose() (*Tensor, error) {
	rank := t.Rank()
	if rank < 2 {
		return nil, fmt.Errorf("%w: transpose requires rank >= 2, got %d", ErrInvalidOperation, rank)
	}

	outShape := t.shape.Clone()
	outShape[rank-2], outShape[rank-1] = t.shape[rank-1], t.shape[rank-2]

	// Source strides permuted into output axis order.
	srcStrides := make([]int, rank)
	copy(srcStrides, t.strides)
	srcStrides[rank-2], srcStrides[rank-1] = t.strides[rank-1], t.strides[rank-2]

	outStrides := outShape.ComputeStrides()
	res := make([]float64, t.length)
	data := t.Data()
	for i := range res {
		res[i] = data[computeFlatIndex(i, outStrides, srcStrides)]
	}

	return fromOwned(outShape, res), nil
}
