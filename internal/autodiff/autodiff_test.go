package autodiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/ndgrad/internal/autodiff"
	"github.com/born-ml/ndgrad/internal/tensor"
)

func leaf(t *testing.T, shape tensor.Shape, data []float64) autodiff.Variable {
	t.Helper()
	x, err := tensor.FromSlice(shape, data)
	require.NoError(t, err)
	return autodiff.NewVariable(x)
}

func gradValues(t *testing.T, v autodiff.Variable) []float64 {
	t.Helper()
	require.NotNil(t, v.Grad(), "gradient missing")
	return v.Grad().Values()
}

func TestMultiplyBackward(t *testing.T) {
	a := autodiff.NewScalar(8)
	b := autodiff.NewScalar(19)

	c, err := autodiff.Mul(a, b)
	require.NoError(t, err)
	require.NoError(t, c.Backward())

	assert.Equal(t, []float64{152}, c.Data().Values())
	assert.Equal(t, []float64{1}, gradValues(t, c))
	assert.Equal(t, []float64{19}, gradValues(t, a))
	assert.Equal(t, []float64{8}, gradValues(t, b))
}

func TestSharedLeafAccumulates(t *testing.T) {
	a := autodiff.NewScalar(2)
	b := autodiff.NewScalar(3)

	// y = (a + b) + (a + a)
	s1, err := autodiff.Add(a, b)
	require.NoError(t, err)
	s2, err := autodiff.Add(a, a)
	require.NoError(t, err)
	y, err := autodiff.Add(s1, s2)
	require.NoError(t, err)

	require.NoError(t, y.Backward())
	assert.Equal(t, []float64{9}, y.Data().Values())
	assert.Equal(t, []float64{3}, gradValues(t, a))
	assert.Equal(t, []float64{1}, gradValues(t, b))
}

func TestBackwardTwiceAccumulates(t *testing.T) {
	a := autodiff.NewScalar(4)
	b := autodiff.NewScalar(5)

	c, err := autodiff.Mul(a, b)
	require.NoError(t, err)
	require.NoError(t, c.Backward())
	require.NoError(t, c.Backward())

	assert.Equal(t, []float64{10}, gradValues(t, a))

	a.ZeroGrad()
	assert.Nil(t, a.Grad())
	require.NoError(t, c.Backward())
	assert.Equal(t, []float64{5}, gradValues(t, a))
}

func TestGradIsLiveAcrossAccumulation(t *testing.T) {
	a := autodiff.NewScalar(1)
	y, err := autodiff.Add(a, autodiff.NewScalar(2))
	require.NoError(t, err)

	require.NoError(t, y.Backward())
	g := a.Grad()
	require.NoError(t, y.Backward())
	assert.Equal(t, []float64{2}, g.Values())
}

func TestSubtractBackward(t *testing.T) {
	a := leaf(t, tensor.Shape{2}, []float64{1, 2})
	b := leaf(t, tensor.Shape{2}, []float64{5, 7})

	d, err := autodiff.Sub(a, b)
	require.NoError(t, err)
	s, err := autodiff.Sum(d)
	require.NoError(t, err)
	require.NoError(t, s.Backward())

	assert.Equal(t, []float64{-9}, s.Data().Values())
	assert.Equal(t, []float64{1, 1}, gradValues(t, a))
	assert.Equal(t, []float64{-1, -1}, gradValues(t, b))
}

func TestBroadcastGradientReduced(t *testing.T) {
	x := leaf(t, tensor.Shape{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	row := leaf(t, tensor.Shape{3}, []float64{10, 20, 30})
	col := leaf(t, tensor.Shape{2, 1}, []float64{2, 3})

	// y = sum((x + row) * col)
	s, err := autodiff.Add(x, row)
	require.NoError(t, err)
	p, err := autodiff.Mul(s, col)
	require.NoError(t, err)
	y, err := autodiff.Sum(p)
	require.NoError(t, err)
	require.NoError(t, y.Backward())

	assert.Equal(t, tensor.Shape{3}, row.Grad().Shape())
	assert.Equal(t, []float64{5, 5, 5}, gradValues(t, row))
	assert.Equal(t, tensor.Shape{2, 1}, col.Grad().Shape())
	assert.Equal(t, []float64{66, 75}, gradValues(t, col))
	assert.Equal(t, []float64{2, 2, 2, 3, 3, 3}, gradValues(t, x))
}

func TestReLUBackward(t *testing.T) {
	x := leaf(t, tensor.Shape{4}, []float64{-2, -0.5, 0.5, 3})

	r, err := autodiff.ReLU(x)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0.5, 3}, r.Data().Values())

	s, err := autodiff.Sum(r)
	require.NoError(t, err)
	require.NoError(t, s.Backward())
	assert.Equal(t, []float64{0, 0, 1, 1}, gradValues(t, x))
}

func TestMatMulBackward(t *testing.T) {
	a := leaf(t, tensor.Shape{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	b := leaf(t, tensor.Shape{3, 2}, []float64{1, 0, 0, 1, 1, 1})

	c, err := autodiff.MatMul(a, b)
	require.NoError(t, err)
	s, err := autodiff.Sum(c)
	require.NoError(t, err)
	require.NoError(t, s.Backward())

	// d/dA sum(A@B) = ones @ B^T; d/dB = A^T @ ones.
	assert.Equal(t, []float64{1, 1, 2, 1, 1, 2}, gradValues(t, a))
	assert.Equal(t, []float64{5, 5, 7, 7, 9, 9}, gradValues(t, b))
}

func TestBackwardWithIncomingGradient(t *testing.T) {
	a := leaf(t, tensor.Shape{2}, []float64{1, 2})
	b := leaf(t, tensor.Shape{2}, []float64{3, 4})

	c, err := autodiff.Mul(a, b)
	require.NoError(t, err)

	incoming, err := tensor.FromSlice(tensor.Shape{2}, []float64{1, 10})
	require.NoError(t, err)
	require.NoError(t, c.BackwardWith(incoming))

	assert.Equal(t, []float64{3, 40}, gradValues(t, a))
	assert.Equal(t, []float64{1, 20}, gradValues(t, b))
}

func TestBackward_NonScalarFails(t *testing.T) {
	a := leaf(t, tensor.Shape{2}, []float64{1, 2})
	err := a.Backward()
	assert.ErrorIs(t, err, tensor.ErrInvalidOperation)
	assert.Nil(t, a.Grad())
}

func TestBackwardWith_IncompatibleGradient(t *testing.T) {
	a := leaf(t, tensor.Shape{2}, []float64{1, 2})
	g, err := tensor.Zeros(tensor.Shape{3})
	require.NoError(t, err)

	assert.ErrorIs(t, a.BackwardWith(g), tensor.ErrShapeMismatch)
}

func TestOperator_Arity(t *testing.T) {
	op := autodiff.NewOperator(autodiff.OpAdd)
	_, err := op.Apply(autodiff.NewScalar(1))
	require.ErrorIs(t, err, tensor.ErrInvalidOperation)
	assert.Contains(t, err.Error(), "expected 2 but received 1")
	assert.False(t, op.Applied())

	sum := autodiff.NewOperator(autodiff.OpSum)
	_, err = sum.Apply(autodiff.NewScalar(1), autodiff.NewScalar(2))
	assert.ErrorIs(t, err, tensor.ErrInvalidOperation)
}

func TestOperator_ApplyOnce(t *testing.T) {
	op := autodiff.NewOperator(autodiff.OpMultiply)
	out, err := op.Apply(autodiff.NewScalar(2), autodiff.NewScalar(3))
	require.NoError(t, err)
	assert.Equal(t, []float64{6}, out.Values())
	assert.True(t, op.Applied())
	assert.Len(t, op.Inputs(), 2)

	_, err = op.Apply(autodiff.NewScalar(2), autodiff.NewScalar(3))
	assert.ErrorIs(t, err, tensor.ErrInvalidOperation)
}

func TestOperator_BackwardBeforeApply(t *testing.T) {
	op := autodiff.NewOperator(autodiff.OpAdd)
	err := op.Backward(tensor.Scalar(1))
	assert.ErrorIs(t, err, tensor.ErrInvalidOperation)
}

func TestOperator_ForwardErrorLeavesUnapplied(t *testing.T) {
	a := leaf(t, tensor.Shape{2}, []float64{1, 2})
	b := leaf(t, tensor.Shape{3}, []float64{1, 2, 3})

	op := autodiff.NewOperator(autodiff.OpAdd)
	_, err := op.Apply(a, b)
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
	assert.False(t, op.Applied())

	_, err = op.Apply(a, a)
	assert.NoError(t, err)
}

func TestNewResult_ManualApply(t *testing.T) {
	a := autodiff.NewScalar(8)
	b := autodiff.NewScalar(19)

	op := autodiff.NewOperator(autodiff.OpMultiply)
	out, err := op.Apply(a, b)
	require.NoError(t, err)
	c, err := autodiff.NewResult(out, op)
	require.NoError(t, err)
	assert.False(t, c.IsLeaf())
	assert.Same(t, op, c.Op())

	require.NoError(t, c.Backward())
	assert.Equal(t, []float64{19}, gradValues(t, a))
	assert.Equal(t, []float64{8}, gradValues(t, b))
}

func TestNewResult_RequiresAppliedOperator(t *testing.T) {
	_, err := autodiff.NewResult(tensor.Scalar(1), autodiff.NewOperator(autodiff.OpAdd))
	assert.ErrorIs(t, err, tensor.ErrInvalidOperation)

	_, err = autodiff.NewResult(tensor.Scalar(1), nil)
	assert.ErrorIs(t, err, tensor.ErrInvalidOperation)
}

func TestVariable_GraphStructure(t *testing.T) {
	a := autodiff.NewScalar(1)
	b := autodiff.NewScalar(2)
	c, err := autodiff.Add(a, b)
	require.NoError(t, err)

	assert.True(t, a.IsLeaf())
	assert.False(t, c.IsLeaf())
	assert.Equal(t, autodiff.OpAdd, c.Op().Kind())
	assert.True(t, c.Op().Inputs()[0].Same(a))
	assert.True(t, c.Op().Inputs()[1].Same(b))
	assert.False(t, a.Same(b))
}

func TestOpKind_String(t *testing.T) {
	assert.Equal(t, "MatMul", autodiff.OpMatMul.String())
	assert.Equal(t, "ReLU", autodiff.OpReLU.String())
	assert.Equal(t, "OpKind(42)", autodiff.OpKind(42).String())
	assert.Equal(t, 1, autodiff.OpSum.Arity())
	assert.Equal(t, 2, autodiff.OpSubtract.Arity())
}
