package tensor

import "fmt"

// MatmulBroadcastPlan describes a batched matrix product.
//
// Operand and result strides have length MaxRank = max(lhs.Rank(), rhs.Rank()).
// The first MaxRank-2 entries are batch axes (zero where an operand is
// broadcast); the last two are the row and column axes of each matrix. A rank-1
// operand is treated as a row vector (lhs) or column vector (rhs), with a zero
// stride on the axis it lacks.
type MatmulBroadcastPlan struct {
	BroadcastPlan

	Rows      int // Rows of each result matrix (1 for a rank-1 lhs)
	Cols      int // Columns of each result matrix (1 for a rank-1 rhs)
	Shared    int // Contraction length
	BatchSize int // Product of the result batch dimensions
	MaxRank   int
}

// PrepareMatmulBroadcast validates lhs @ rhs under NumPy matmul rules.
//
// Shapes:
//
//	(M, K)       @ (K, N)    → (M, N)
//	(K)          @ (B, K, N) → (B, N)
//	(B, M, K)    @ (K)       → (B, M)
//	(4, 2, 3)    @ (3, 5)    → (4, 2, 5)
//	(2, 1, M, K) @ (3, K, N) → (2, 3, M, N)
//
// Two rank-1 operands are rejected: dot products are not supported.
func PrepareMatmulBroadcast(lhs, rhs *Tensor) (MatmulBroadcastPlan, error) {
	lhsShape, rhsShape := lhs.Shape(), rhs.Shape()
	lhsStrides, rhsStrides := lhs.Strides(), rhs.Strides()
	lr, rr := len(lhsShape), len(rhsShape)

	if lr == 1 && rr == 1 {
		return MatmulBroadcastPlan{}, fmt.Errorf("%w: matmul of two rank-1 tensors %v and %v is not supported",
			ErrShapeMismatch, lhsShape, rhsShape)
	}

	maxRank := maxInt(lr, rr)
	plan := MatmulBroadcastPlan{
		BroadcastPlan: BroadcastPlan{
			LHSStrides: make([]int, maxRank),
			RHSStrides: make([]int, maxRank),
			ResStrides: make([]int, maxRank),
		},
		MaxRank: maxRank,
	}
	rowAxis, colAxis := maxRank-2, maxRank-1

	// Matrix axes.
	if lr == 1 {
		plan.Rows = 1
		plan.Shared = lhsShape[0]
		plan.LHSStrides[colAxis] = lhsStrides[0]
	} else {
		plan.Rows = lhsShape[lr-2]
		plan.Shared = lhsShape[lr-1]
		plan.LHSStrides[rowAxis] = lhsStrides[lr-2]
		plan.LHSStrides[colAxis] = lhsStrides[lr-1]
	}

	rhsShared := 0
	if rr == 1 {
		plan.Cols = 1
		rhsShared = rhsShape[0]
		plan.RHSStrides[rowAxis] = rhsStrides[0]
	} else {
		plan.Cols = rhsShape[rr-1]
		rhsShared = rhsShape[rr-2]
		plan.RHSStrides[rowAxis] = rhsStrides[rr-2]
		plan.RHSStrides[colAxis] = rhsStrides[rr-1]
	}

	if plan.Shared != rhsShared {
		lhsAxis, rhsAxis := lr-1, maxInt(rr-2, 0)
		return MatmulBroadcastPlan{}, fmt.Errorf(
			"%w: matmul shapes %v and %v: lhs axis %d (%d) does not match rhs axis %d (%d)",
			ErrShapeMismatch, lhsShape, rhsShape, lhsAxis, plan.Shared, rhsAxis, rhsShared)
	}

	plan.ResStrides[rowAxis] = plan.Cols
	plan.ResStrides[colAxis] = 1

	// Batch axes, right to left.
	batchShape := make(Shape, maxRank-2)
	strideAcc := plan.Rows * plan.Cols
	il := lr - 3
	ir := rr - 3
	for i := maxRank - 3; i >= 0; i-- {
		dimL, dimR := 1, 1
		if il >= 0 {
			dimL = lhsShape[il]
		}
		if ir >= 0 {
			dimR = rhsShape[ir]
		}

		if dimL != 1 && dimR != 1 && dimL != dimR {
			return MatmulBroadcastPlan{}, fmt.Errorf("%w: matmul batch dimensions of %v and %v incompatible at axis %d (%d vs %d)",
				ErrShapeMismatch, lhsShape, rhsShape, i, dimL, dimR)
		}

		batchShape[i] = maxInt(dimL, dimR)
		if dimL != 1 {
			plan.LHSStrides[i] = lhsStrides[il]
		}
		if dimR != 1 {
			plan.RHSStrides[i] = rhsStrides[ir]
		}
		plan.ResStrides[i] = strideAcc
		strideAcc *= batchShape[i]

		il--
		ir--
	}

	plan.BatchSize = batchShape.NumElements()

	resShape := batchShape
	if lr > 1 {
		resShape = append(resShape, plan.Rows)
	}
	if rr > 1 {
		resShape = append(resShape, plan.Cols)
	}
	plan.ResShape = resShape

	return plan, nil
}

// MatMul performs batched matrix multiplication with broadcasting of the
// batch axes. Accumulation is done in float64 with a naive triple loop.
func MatMul(lhs, rhs *Tensor) (*Tensor, error) {
	if err := checkInitialized(lhs, rhs); err != nil {
		return nil, err
	}
	plan, err := PrepareMatmulBroadcast(lhs, rhs)
	if err != nil {
		return nil, err
	}

	res := make([]float64, plan.ResShape.NumElements())
	matmulFloat64(res, lhs.buf.data, rhs.buf.data, lhs.offset, rhs.offset, &plan)

	return fromOwned(plan.ResShape, res), nil
}

// matmulFloat64 writes every batch's product into c.
// Batches own disjoint regions of c.
func matmulFloat64(c, a, b []float64, aBase, bBase int, plan *MatmulBroadcastPlan) {
	rowAxis, colAxis := plan.MaxRank-2, plan.MaxRank-1
	matrixSize := plan.Rows * plan.Cols

	aRow, aK := plan.LHSStrides[rowAxis], plan.LHSStrides[colAxis]
	bK, bCol := plan.RHSStrides[rowAxis], plan.RHSStrides[colAxis]
	cRow := plan.ResStrides[rowAxis]

	for batch := 0; batch < plan.BatchSize; batch++ {
		cOffset := batch * matrixSize
		aOffset, bOffset := aBase, bBase

		remaining := cOffset
		for dim := 0; dim < rowAxis; dim++ {
			coord := remaining / plan.ResStrides[dim]
			remaining %= plan.ResStrides[dim]
			aOffset += coord * plan.LHSStrides[dim]
			bOffset += coord * plan.RHSStrides[dim]
		}

		for i := 0; i < plan.Rows; i++ {
			for j := 0; j < plan.Cols; j++ {
				sum := float64(0)
				for k := 0; k < plan.Shared; k++ {
					sum += a[aOffset+i*aRow+k*aK] * b[bOffset+k*bK+j*bCol]
				}
				c[cOffset+i*cRow+j] = sum
			}
		}
	}
}
