package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcatenate_Flattens(t *testing.T) {
	a := mustFromSlice(t, Shape{1, 2, 2}, []float64{0, 1, 2, 3})
	b := mustFromSlice(t, Shape{1, 1, 2}, []float64{4, 5})

	out, err := Concatenate(a, b)
	require.NoError(t, err)
	assert.Equal(t, Shape{6}, out.Shape())
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5}, out.Values())
}

func TestConcatenate_RankMismatch(t *testing.T) {
	a, _ := Zeros(Shape{2, 2})
	b, _ := Zeros(Shape{2})

	_, err := Concatenate(a, b)
	require.ErrorIs(t, err, ErrRankMismatch)
	assert.Contains(t, err.Error(), "has 2 dimension(s)")
	assert.Contains(t, err.Error(), "has 1 dimension(s)")

	_, err = ConcatenateAxis(a, b, 0)
	assert.ErrorIs(t, err, ErrRankMismatch)
}

func TestConcatenateAxis(t *testing.T) {
	a := arange(t, Shape{4, 2, 3}, 0)
	b := arange(t, Shape{1, 2, 3}, 24)

	out, err := ConcatenateAxis(a, b, 0)
	require.NoError(t, err)
	assert.Equal(t, Shape{5, 2, 3}, out.Shape())
	assert.Equal(t, arange(t, Shape{5, 2, 3}, 0).Values(), out.Values())
}

func TestConcatenateAxis_Inner(t *testing.T) {
	a := mustFromSlice(t, Shape{2, 2}, []float64{1, 2, 3, 4})
	b := mustFromSlice(t, Shape{2, 1}, []float64{9, 8})

	out, err := ConcatenateAxis(a, b, 1)
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 3}, out.Shape())
	assert.Equal(t, []float64{1, 2, 9, 3, 4, 8}, out.Values())
}

func TestConcatenateAxis_DimensionMismatch(t *testing.T) {
	a, _ := Zeros(Shape{2, 3})
	b, _ := Zeros(Shape{2, 4})

	_, err := ConcatenateAxis(a, b, 0)
	require.ErrorIs(t, err, ErrShapeMismatch)
	assert.Contains(t, err.Error(), "along dimension 1")
	assert.Contains(t, err.Error(), "has size 3")
	assert.Contains(t, err.Error(), "has size 4")

	_, err = ConcatenateAxis(a, b, 2)
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

func TestConcatenateAxis_RoundTrip(t *testing.T) {
	tests := []struct {
		a, b Shape
		axis int
	}{
		{Shape{2, 3}, Shape{4, 3}, 0},
		{Shape{2, 3}, Shape{2, 1}, 1},
		{Shape{2, 3, 4}, Shape{2, 5, 4}, 1},
		{Shape{2, 3, 4}, Shape{2, 3, 2}, 2},
		{Shape{3}, Shape{2}, 0},
	}

	for _, tt := range tests {
		a := arange(t, tt.a, 0)
		b := arange(t, tt.b, 1000)

		joined, err := ConcatenateAxis(a, b, tt.axis)
		require.NoError(t, err)

		backA, err := joined.Narrow(tt.axis, 0, tt.a[tt.axis])
		require.NoError(t, err)
		backB, err := joined.Narrow(tt.axis, tt.a[tt.axis], tt.b[tt.axis])
		require.NoError(t, err)

		assert.Equal(t, a.Shape(), backA.Shape())
		assert.Equal(t, a.Values(), backA.Values())
		assert.Equal(t, b.Shape(), backB.Shape())
		assert.Equal(t, b.Values(), backB.Values())
	}
}

func TestNarrow_OutOfBounds(t *testing.T) {
	a, _ := Zeros(Shape{2, 3})

	_, err := a.Narrow(1, 2, 2)
	assert.ErrorIs(t, err, ErrIndexOutOfBounds)
	_, err = a.Narrow(1, 3, 1)
	assert.ErrorIs(t, err, ErrIndexOutOfBounds)
	_, err = a.Narrow(2, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidOperation)
}
