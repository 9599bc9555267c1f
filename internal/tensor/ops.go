package tensor

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// BinaryFunc combines one element of each operand.
type BinaryFunc func(x, y float64) float64

// Operation applies fn elementwise to lhs and rhs with broadcasting.
//
// For every linear index of the result, the index is decoded into per-axis
// coordinates using the result strides and re-encoded with each operand's
// (possibly zero) strides. The result owns a fresh buffer.
func Operation(lhs, rhs *Tensor, fn BinaryFunc) (*Tensor, error) {
	if err := checkInitialized(lhs, rhs); err != nil {
		return nil, err
	}
	plan, err := PrepareBroadcast(lhs, rhs)
	if err != nil {
		return nil, err
	}

	lhsData := lhs.buf.data
	rhsData := rhs.buf.data

	res := make([]float64, plan.ResShape.NumElements())
	for i := range res {
		iLHS := lhs.offset + computeFlatIndex(i, plan.ResStrides, plan.LHSStrides)
		iRHS := rhs.offset + computeFlatIndex(i, plan.ResStrides, plan.RHSStrides)
		res[i] = fn(lhsData[iLHS], rhsData[iRHS])
	}

	return fromOwned(plan.ResShape, res), nil
}

// Add performs element-wise addition with broadcasting.
//
// Example:
//
//	a, _ := tensor.Zeros(tensor.Shape{3, 1})
//	b, _ := tensor.Ones(tensor.Shape{3, 4})
//	c, _ := tensor.Add(a, b) // (3, 4)
func Add(lhs, rhs *Tensor) (*Tensor, error) {
	return Operation(lhs, rhs, func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func Sub(lhs, rhs *Tensor) (*Tensor, error) {
	return Operation(lhs, rhs, func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func Mul(lhs, rhs *Tensor) (*Tensor, error) {
	return Operation(lhs, rhs, func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division with broadcasting.
func Div(lhs, rhs *Tensor) (*Tensor, error) {
	return Operation(lhs, rhs, func(x, y float64) float64 { return x / y })
}

// Maximum returns the element-wise maximum with broadcasting.
func Maximum(lhs, rhs *Tensor) (*Tensor, error) {
	return Operation(lhs, rhs, math.Max)
}

// AddAssign sets t = t + other.
//
// The receiver is re-seated onto the broadcast result, so its shape may grow
// and it stops aliasing any tensor it was a view of. On error t is unchanged.
func (t *Tensor) AddAssign(other *Tensor) error {
	return t.assignOp(other, Add)
}

// SubAssign sets t = t - other. See AddAssign.
func (t *Tensor) SubAssign(other *Tensor) error {
	return t.assignOp(other, Sub)
}

// MulAssign sets t = t * other. See AddAssign.
func (t *Tensor) MulAssign(other *Tensor) error {
	return t.assignOp(other, Mul)
}

// DivAssign sets t = t / other. See AddAssign.
func (t *Tensor) DivAssign(other *Tensor) error {
	return t.assignOp(other, Div)
}

func (t *Tensor) assignOp(other *Tensor, op func(lhs, rhs *Tensor) (*Tensor, error)) error {
	res, err := op(t, other)
	if err != nil {
		return err
	}
	t.reseat(res)
	return nil
}

// AddScalarInPlace adds value to every element. Views write through.
func (t *Tensor) AddScalarInPlace(value float64) *Tensor {
	floats.AddConst(value, t.Data())
	return t
}

// SubScalarInPlace subtracts value from every element.
func (t *Tensor) SubScalarInPlace(value float64) *Tensor {
	floats.AddConst(-value, t.Data())
	return t
}

// MulScalarInPlace multiplies every element by value.
func (t *Tensor) MulScalarInPlace(value float64) *Tensor {
	floats.Scale(value, t.Data())
	return t
}

// DivScalarInPlace divides every element by value.
func (t *Tensor) DivScalarInPlace(value float64) *Tensor {
	data := t.Data()
	for i := range data {
		data[i] /= value
	}
	return t
}

// AddScalar returns t + value in a new tensor.
func (t *Tensor) AddScalar(value float64) *Tensor {
	return t.Clone().AddScalarInPlace(value)
}

// SubScalar returns t - value in a new tensor.
func (t *Tensor) SubScalar(value float64) *Tensor {
	return t.Clone().SubScalarInPlace(value)
}

// MulScalar returns t * value in a new tensor.
func (t *Tensor) MulScalar(value float64) *Tensor {
	return t.Clone().MulScalarInPlace(value)
}

// DivScalar returns t / value in a new tensor.
func (t *Tensor) DivScalar(value float64) *Tensor {
	return t.Clone().DivScalarInPlace(value)
}
