package autodiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/ndgrad/internal/autodiff"
	"github.com/born-ml/ndgrad/internal/tensor"
)

// numericalGradient estimates d f / d x[i] for every element of x by central
// differences. f must rebuild its graph from x's current data on every call.
func numericalGradient(t *testing.T, f func() float64, x autodiff.Variable, epsilon float64) []float64 {
	t.Helper()
	data := x.Data().Data()
	grad := make([]float64, len(data))
	for i := range data {
		orig := data[i]
		data[i] = orig + epsilon
		plus := f()
		data[i] = orig - epsilon
		minus := f()
		data[i] = orig
		grad[i] = (plus - minus) / (2 * epsilon)
	}
	return grad
}

// wave fills a tensor of the given shape with deterministic, non-trivial values.
func wave(t *testing.T, shape tensor.Shape, phase float64) autodiff.Variable {
	t.Helper()
	n := shape.NumElements()
	data := make([]float64, n)
	for i := range data {
		data[i] = float64((i*7+int(phase*10))%11)/5 - 1 + phase
	}
	return leaf(t, shape, data)
}

func checkGradients(t *testing.T, build func(vars []autodiff.Variable) (autodiff.Variable, error), vars ...autodiff.Variable) {
	t.Helper()

	out, err := build(vars)
	require.NoError(t, err)
	require.NoError(t, out.Backward())

	eval := func() float64 {
		y, err := build(vars)
		require.NoError(t, err)
		v, err := y.Data().Scalar()
		require.NoError(t, err)
		return v
	}

	for i, v := range vars {
		require.NotNil(t, v.Grad(), "input %d has no gradient", i)
		assert.Equal(t, v.Data().Shape(), v.Grad().Shape(), "input %d gradient shape", i)
		numeric := numericalGradient(t, eval, v, 1e-6)
		assert.InDeltaSlice(t, numeric, v.Grad().Values(), 1e-5, "input %d", i)
	}
}

func TestGradientCheck(t *testing.T) {
	tests := []struct {
		name   string
		shapes []tensor.Shape
		build  func(vars []autodiff.Variable) (autodiff.Variable, error)
	}{
		{
			name:   "sum of product with broadcast",
			shapes: []tensor.Shape{{3, 1, 4}, {2, 4}},
			build: func(v []autodiff.Variable) (autodiff.Variable, error) {
				p, err := autodiff.Mul(v[0], v[1])
				if err != nil {
					return autodiff.Variable{}, err
				}
				return autodiff.Sum(p)
			},
		},
		{
			name:   "squared difference",
			shapes: []tensor.Shape{{2, 3}, {3}},
			build: func(v []autodiff.Variable) (autodiff.Variable, error) {
				d, err := autodiff.Sub(v[0], v[1])
				if err != nil {
					return autodiff.Variable{}, err
				}
				sq, err := autodiff.Mul(d, d)
				if err != nil {
					return autodiff.Variable{}, err
				}
				return autodiff.Sum(sq)
			},
		},
		{
			name:   "matmul",
			shapes: []tensor.Shape{{2, 3}, {3, 4}, {2, 4}},
			build: func(v []autodiff.Variable) (autodiff.Variable, error) {
				m, err := autodiff.MatMul(v[0], v[1])
				if err != nil {
					return autodiff.Variable{}, err
				}
				p, err := autodiff.Mul(m, v[2])
				if err != nil {
					return autodiff.Variable{}, err
				}
				return autodiff.Sum(p)
			},
		},
		{
			name:   "batched matmul with broadcast batch",
			shapes: []tensor.Shape{{2, 1, 2, 3}, {3, 3, 2}, {2, 3, 2, 2}},
			build: func(v []autodiff.Variable) (autodiff.Variable, error) {
				m, err := autodiff.MatMul(v[0], v[1])
				if err != nil {
					return autodiff.Variable{}, err
				}
				p, err := autodiff.Mul(m, v[2])
				if err != nil {
					return autodiff.Variable{}, err
				}
				return autodiff.Sum(p)
			},
		},
		{
			name:   "matmul with vector operands",
			shapes: []tensor.Shape{{3}, {2, 3, 4}, {4}},
			build: func(v []autodiff.Variable) (autodiff.Variable, error) {
				m, err := autodiff.MatMul(v[0], v[1]) // (2, 4)
				if err != nil {
					return autodiff.Variable{}, err
				}
				mv, err := autodiff.MatMul(m, v[2]) // (2)
				if err != nil {
					return autodiff.Variable{}, err
				}
				sq, err := autodiff.Mul(mv, mv)
				if err != nil {
					return autodiff.Variable{}, err
				}
				return autodiff.Sum(sq)
			},
		},
		{
			name:   "two layer relu network",
			shapes: []tensor.Shape{{5, 2}, {2, 4}, {4}, {4, 3}},
			build: func(v []autodiff.Variable) (autodiff.Variable, error) {
				h, err := autodiff.MatMul(v[0], v[1])
				if err != nil {
					return autodiff.Variable{}, err
				}
				if h, err = autodiff.Add(h, v[2]); err != nil {
					return autodiff.Variable{}, err
				}
				if h, err = autodiff.ReLU(h); err != nil {
					return autodiff.Variable{}, err
				}
				out, err := autodiff.MatMul(h, v[3])
				if err != nil {
					return autodiff.Variable{}, err
				}
				if out, err = autodiff.Mul(out, out); err != nil {
					return autodiff.Variable{}, err
				}
				return autodiff.Sum(out)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := make([]autodiff.Variable, len(tt.shapes))
			for i, s := range tt.shapes {
				vars[i] = wave(t, s, 0.13*float64(i+1))
			}
			checkGradients(t, tt.build, vars...)
		})
	}
}
