package tensor

import "fmt"

// BroadcastPlan describes how two operands map onto an elementwise result.
//
// All slices have length max(lhs.Rank(), rhs.Rank()). Operand strides are
// zero on axes where that operand is broadcast, so repeated reads along the
// axis return the same element.
type BroadcastPlan struct {
	LHSStrides []int
	RHSStrides []int
	ResStrides []int
	ResShape   Shape
}

// PrepareBroadcast implements NumPy-style broadcasting rules.
//
// Rules:
// 1. Compare shapes element-wise from right to left
// 2. Dimensions are compatible if:
//   - They are equal, OR
//   - One of them is 1
//
// 3. Missing dimensions are treated as 1
//
// Result strides are row-major over the result shape.
//
// Examples:
//
//	(3, 1) + (3, 5) → (3, 5)
//	(2, 3) + (4, 2, 3) → (4, 2, 3)
//	(3, 4) + (3, 5) → ErrShapeMismatch at axis 1
func PrepareBroadcast(lhs, rhs *Tensor) (BroadcastPlan, error) {
	lhsShape, rhsShape := lhs.Shape(), rhs.Shape()
	lhsStrides, rhsStrides := lhs.Strides(), rhs.Strides()

	rank := maxInt(len(lhsShape), len(rhsShape))
	plan := BroadcastPlan{
		LHSStrides: make([]int, rank),
		RHSStrides: make([]int, rank),
		ResStrides: make([]int, rank),
		ResShape:   make(Shape, rank),
	}

	ia := len(lhsShape) - 1
	ib := len(rhsShape) - 1
	strideAcc := 1

	for i := rank - 1; i >= 0; i-- {
		dimA, rawA := 1, 0
		if ia >= 0 {
			dimA, rawA = lhsShape[ia], lhsStrides[ia]
		}
		dimB, rawB := 1, 0
		if ib >= 0 {
			dimB, rawB = rhsShape[ib], rhsStrides[ib]
		}

		if dimA != 1 && dimB != 1 && dimA != dimB {
			return BroadcastPlan{}, fmt.Errorf("%w: incompatible shapes %v and %v at axis %d (%d vs %d)",
				ErrShapeMismatch, lhsShape, rhsShape, i, dimA, dimB)
		}

		dimR := maxInt(dimA, dimB)
		plan.ResShape[i] = dimR

		if dimA != 1 {
			plan.LHSStrides[i] = rawA
		}
		if dimB != 1 {
			plan.RHSStrides[i] = rawB
		}

		plan.ResStrides[i] = strideAcc
		strideAcc *= dimR

		ia--
		ib--
	}

	return plan, nil
}

// BroadcastShapes returns the shape two operands broadcast to.
func BroadcastShapes(a, b Shape) (Shape, error) {
	plan, err := PrepareBroadcast(&Tensor{shape: a, strides: a.ComputeStrides()},
		&Tensor{shape: b, strides: b.ComputeStrides()})
	if err != nil {
		return nil, err
	}
	return plan.ResShape, nil
}

// computeFlatIndex computes the flat index in the source array for a given output index.
// outStrides: strides of the output shape.
// inStrides: broadcast-adjusted strides of the input shape.
func computeFlatIndex(outIdx int, outStrides, inStrides []int) int {
	flatIdx := 0
	for i := range outStrides {
		coord := outIdx / outStrides[i]
		outIdx %= outStrides[i]
		flatIdx += coord * inStrides[i]
	}
	return flatIdx
}
