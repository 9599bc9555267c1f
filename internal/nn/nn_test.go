package nn_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/ndgrad/internal/autodiff"
	"github.com/born-ml/ndgrad/internal/nn"
	"github.com/born-ml/ndgrad/internal/tensor"
)

func input(t *testing.T, shape tensor.Shape, data []float64) autodiff.Variable {
	t.Helper()
	x, err := tensor.FromSlice(shape, data)
	require.NoError(t, err)
	return autodiff.NewVariable(x)
}

func TestParameter(t *testing.T) {
	data, err := tensor.FromSlice(tensor.Shape{3}, []float64{1, 2, 3})
	require.NoError(t, err)
	param := nn.NewParameter("test_param", data)

	assert.Equal(t, "test_param", param.Name())
	assert.Same(t, data, param.Tensor())
	assert.Nil(t, param.Grad())

	s, err := autodiff.Sum(param.Variable())
	require.NoError(t, err)
	require.NoError(t, s.Backward())
	assert.Equal(t, []float64{1, 1, 1}, param.Grad().Values())

	param.ZeroGrad()
	assert.Nil(t, param.Grad())
}

func TestXavier_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	w, err := nn.Xavier(10, 5, tensor.Shape{10, 5}, rng)
	require.NoError(t, err)

	bound := math.Sqrt(6.0 / 15.0)
	for i, v := range w.Values() {
		assert.LessOrEqual(t, math.Abs(v), bound, "element %d", i)
	}

	again, err := nn.Xavier(10, 5, tensor.Shape{10, 5}, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	assert.Equal(t, w.Values(), again.Values(), "same seed gives same weights")
}

func TestLinear_Creation(t *testing.T) {
	layer, err := nn.NewLinear(10, 5, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	assert.Equal(t, 10, layer.InFeatures())
	assert.Equal(t, 5, layer.OutFeatures())
	assert.Equal(t, tensor.Shape{10, 5}, layer.Weight().Tensor().Shape())
	assert.Equal(t, tensor.Shape{5}, layer.Bias().Tensor().Shape())
	assert.Equal(t, make([]float64, 5), layer.Bias().Tensor().Values())
	assert.Len(t, layer.Parameters(), 2)
}

func TestLinear_Forward(t *testing.T) {
	layer, err := nn.NewLinear(2, 2, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	w, _ := tensor.FromSlice(tensor.Shape{2, 2}, []float64{1, 2, 3, 4})
	b, _ := tensor.FromSlice(tensor.Shape{2}, []float64{0.5, 1})
	require.NoError(t, layer.LoadStateDict(nn.StateDict{"weight": w, "bias": b}))

	x := input(t, tensor.Shape{2, 2}, []float64{1, 1, 1, 0})
	out, err := layer.Forward(x)
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{2, 2}, out.Data().Shape())
	assert.Equal(t, []float64{4.5, 7, 1.5, 3}, out.Data().Values())
}

func TestLinear_ForwardWrongFeatures(t *testing.T) {
	layer, err := nn.NewLinear(3, 2, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	_, err = layer.Forward(input(t, tensor.Shape{1, 2}, []float64{1, 2}))
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestLinear_Backward(t *testing.T) {
	layer, err := nn.NewLinear(2, 1, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	x := input(t, tensor.Shape{3, 2}, []float64{1, 2, 3, 4, 5, 6})
	out, err := layer.Forward(x)
	require.NoError(t, err)
	s, err := autodiff.Sum(out)
	require.NoError(t, err)
	require.NoError(t, s.Backward())

	// d sum(xW + b) / dW = column sums of x; d/db = batch size.
	assert.Equal(t, []float64{9, 12}, layer.Weight().Grad().Values())
	assert.Equal(t, []float64{3}, layer.Bias().Grad().Values())
}

func TestLinear_LoadStateDictErrors(t *testing.T) {
	layer, err := nn.NewLinear(2, 2, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	before := layer.Weight().Tensor().Values()

	w, _ := tensor.Zeros(tensor.Shape{2, 2})
	assert.Error(t, layer.LoadStateDict(nn.StateDict{"weight": w}))

	badBias, _ := tensor.Zeros(tensor.Shape{3})
	err = layer.LoadStateDict(nn.StateDict{"weight": w, "bias": badBias})
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
	assert.Equal(t, before, layer.Weight().Tensor().Values(), "failed load must not write")
}

func TestReLU(t *testing.T) {
	out, err := nn.NewReLU().Forward(input(t, tensor.Shape{3}, []float64{-1, 0, 2}))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 2}, out.Data().Values())
	assert.Nil(t, nn.NewReLU().Parameters())
}

func TestMSELoss(t *testing.T) {
	pred := input(t, tensor.Shape{2, 2}, []float64{1, 2, 3, 4})
	target := input(t, tensor.Shape{2, 2}, []float64{1, 0, 3, 8})

	loss, err := nn.NewMSELoss().Forward(pred, target)
	require.NoError(t, err)
	assert.Equal(t, []float64{5}, loss.Data().Values()) // (0 + 4 + 0 + 16) / 4

	require.NoError(t, loss.Backward())
	// d/dpred = 2 (pred - target) / n
	assert.Equal(t, []float64{0, 1, 0, -2}, pred.Grad().Values())
}

func TestMSELoss_ShapeMismatch(t *testing.T) {
	pred := input(t, tensor.Shape{2}, []float64{1, 2})
	target := input(t, tensor.Shape{2, 1}, []float64{1, 2})

	_, err := nn.NewMSELoss().Forward(pred, target)
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	l1, err := nn.NewLinear(2, 4, rng)
	require.NoError(t, err)
	l2, err := nn.NewLinear(4, 3, rng)
	require.NoError(t, err)

	model := nn.NewSequential(l1, nn.NewReLU())
	model.Add(l2)
	assert.Equal(t, 3, model.Len())
	assert.Same(t, l2, model.Module(2))
	assert.Len(t, model.Parameters(), 4)

	out, err := model.Forward(input(t, tensor.Shape{5, 2}, make([]float64, 10)))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{5, 3}, out.Data().Shape())

	state := model.StateDict()
	assert.Len(t, state, 4)
	assert.Contains(t, state, "0.weight")
	assert.Contains(t, state, "2.bias")
}

func TestSequential_StateDictRoundTrip(t *testing.T) {
	build := func(seed int64) *nn.Sequential {
		rng := rand.New(rand.NewSource(seed))
		l1, err := nn.NewLinear(2, 4, rng)
		require.NoError(t, err)
		l2, err := nn.NewLinear(4, 1, rng)
		require.NoError(t, err)
		return nn.NewSequential(l1, nn.NewReLU(), l2)
	}

	src, dst := build(1), build(2)
	require.NoError(t, dst.LoadStateDict(src.StateDict()))

	for name, want := range src.StateDict() {
		assert.Equal(t, want.Values(), dst.StateDict()[name].Values(), name)
	}
}

func TestSequential_LoadStateDictIsAllOrNothing(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	l1, err := nn.NewLinear(2, 2, rng)
	require.NoError(t, err)
	l2, err := nn.NewLinear(2, 1, rng)
	require.NoError(t, err)
	model := nn.NewSequential(l1, nn.NewReLU(), l2)
	before := l1.Weight().Tensor().Values()

	state := make(nn.StateDict)
	for name, v := range model.StateDict() {
		state[name] = v.Clone().AddScalarInPlace(1)
	}
	wide, err := tensor.Zeros(tensor.Shape{3})
	require.NoError(t, err)
	state["2.bias"] = wide

	err = model.LoadStateDict(state)
	require.ErrorIs(t, err, tensor.ErrShapeMismatch)
	assert.Equal(t, before, l1.Weight().Tensor().Values())
}
