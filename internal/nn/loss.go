package nn

import (
	"fmt"

	"github.com/born-ml/ndgrad/internal/autodiff"
	"github.com/born-ml/ndgrad/internal/tensor"
)

// MSELoss computes Mean Squared Error loss.
//
// Loss = mean((predictions - targets)²)
//
// Example:
//
//	mse := nn.NewMSELoss()
//	loss, err := mse.Forward(predictions, targets)
//	err = loss.Backward()
type MSELoss struct{}

// NewMSELoss creates a new MSE loss function.
func NewMSELoss() *MSELoss {
	return &MSELoss{}
}

// Forward computes the MSE loss as a scalar variable.
//
// predictions and targets must have the same shape.
func (m *MSELoss) Forward(predictions, targets autodiff.Variable) (autodiff.Variable, error) {
	if !predictions.Data().Shape().Equal(targets.Data().Shape()) {
		return autodiff.Variable{}, fmt.Errorf("%w: MSELoss predictions %v and targets %v must have the same shape",
			tensor.ErrShapeMismatch, predictions.Data().Shape(), targets.Data().Shape())
	}

	diff, err := autodiff.Sub(predictions, targets)
	if err != nil {
		return autodiff.Variable{}, err
	}
	squared, err := autodiff.Mul(diff, diff)
	if err != nil {
		return autodiff.Variable{}, err
	}
	sum, err := autodiff.Sum(squared)
	if err != nil {
		return autodiff.Variable{}, err
	}

	scale := autodiff.NewScalar(1 / float64(predictions.Data().Size()))
	return autodiff.Mul(sum, scale)
}
