package tensor

import "fmt"

// Concatenate joins lhs and rhs into a rank-1 tensor holding all elements of
// lhs followed by all elements of rhs.
//
// This flattening form is a special case and is NOT ConcatenateAxis(lhs, rhs, 0).
// Both inputs must still have the same rank.
func Concatenate(lhs, rhs *Tensor) (*Tensor, error) {
	if err := checkConcatRank(lhs, rhs); err != nil {
		return nil, err
	}

	res := make([]float64, 0, lhs.Size()+rhs.Size())
	res = append(res, lhs.Data()...)
	res = append(res, rhs.Data()...)

	return fromOwned(Shape{len(res)}, res), nil
}

// ConcatenateAxis joins lhs and rhs along axis.
// Every other dimension must match exactly.
//
// Example:
//
//	(4, 2, 3) ++ (1, 2, 3) along 0 → (5, 2, 3)
//	(2, 3)    ++ (2, 5)    along 1 → (2, 8)
func ConcatenateAxis(lhs, rhs *Tensor, axis int) (*Tensor, error) {
	if err := checkConcatRank(lhs, rhs); err != nil {
		return nil, err
	}
	if axis < 0 || axis >= lhs.Rank() {
		return nil, fmt.Errorf("%w: axis %d out of range for rank %d", ErrInvalidOperation, axis, lhs.Rank())
	}

	lhsShape, rhsShape := lhs.Shape(), rhs.Shape()
	resShape := make(Shape, lhs.Rank())
	for dim := range resShape {
		if dim == axis {
			resShape[dim] = lhsShape[dim] + rhsShape[dim]
			continue
		}
		if lhsShape[dim] != rhsShape[dim] {
			return nil, fmt.Errorf("%w: all the input array dimensions except for the concatenation axis must "+
				"match exactly, but along dimension %d, the array at index 0 has size %d and the array at index 1 has size %d",
				ErrShapeMismatch, dim, lhsShape[dim], rhsShape[dim])
		}
		resShape[dim] = lhsShape[dim]
	}

	// Each outer index contributes one contiguous chunk from each input.
	outer := 1
	for _, dim := range resShape[:axis] {
		outer *= dim
	}
	lhsChunk := lhs.Size() / outer
	rhsChunk := rhs.Size() / outer

	lhsData, rhsData := lhs.Data(), rhs.Data()
	res := make([]float64, 0, lhs.Size()+rhs.Size())
	for o := 0; o < outer; o++ {
		res = append(res, lhsData[o*lhsChunk:(o+1)*lhsChunk]...)
		res = append(res, rhsData[o*rhsChunk:(o+1)*rhsChunk]...)
	}

	return fromOwned(resShape, res), nil
}

// Narrow returns a copy of the entries [start, start+length) along axis.
func (t *Tensor) Narrow(axis, start, length int) (*Tensor, error) {
	if axis < 0 || axis >= t.Rank() {
		return nil, fmt.Errorf("%w: axis %d out of range for rank %d", ErrInvalidOperation, axis, t.Rank())
	}
	if err := checkIndex(axis, t.shape[axis], start); err != nil {
		return nil, err
	}
	if length <= 0 || start+length > t.shape[axis] {
		return nil, &IndexError{Dim: axis, Max: t.shape[axis] - 1, Index: start + length - 1}
	}

	outer := 1
	for _, dim := range t.shape[:axis] {
		outer *= dim
	}
	inner := t.strides[axis]
	srcChunk := t.shape[axis] * inner

	data := t.Data()
	res := make([]float64, 0, outer*length*inner)
	for o := 0; o < outer; o++ {
		begin := o*srcChunk + start*inner
		res = append(res, data[begin:begin+length*inner]...)
	}

	shape := t.shape.Clone()
	shape[axis] = length
	return fromOwned(shape, res), nil
}

func checkConcatRank(lhs, rhs *Tensor) error {
	if err := checkInitialized(lhs, rhs); err != nil {
		return err
	}
	if lhs.Rank() != rhs.Rank() {
		return fmt.Errorf("%w: all the input arrays must have same number of dimensions, "+
			"the array at index 0 has %d dimension(s), the array at index 1 has %d dimension(s)",
			ErrRankMismatch, lhs.Rank(), rhs.Rank())
	}
	return nil
}
