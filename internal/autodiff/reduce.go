package autodiff

import (
	"fmt"

	"github.com/born-ml/ndgrad/internal/tensor"
)

// reduceBroadcast maps grad onto target, the shape of the variable that
// receives it.
//
// When a value was broadcast in the forward pass its gradient carries the
// broadcast shape, so axes that were added on the left are summed away and
// axes that were stretched from size 1 are summed back to size 1.
// A gradient that is itself broadcastable to target is expanded instead.
//
// Examples:
//
//	grad (2, 3), target (3)    → sum over axis 0 → (3)
//	grad (2, 3), target (2, 1) → sum over axis 1 → (2, 1)
//	grad (1),    target (2, 2) → expanded        → (2, 2)
func reduceBroadcast(grad *tensor.Tensor, target tensor.Shape) (*tensor.Tensor, error) {
	if grad.Shape().Equal(target) {
		return grad, nil
	}

	common, err := tensor.BroadcastShapes(grad.Shape(), target)
	if err != nil {
		return nil, err
	}

	switch {
	case common.Equal(target):
		zeros, err := tensor.Zeros(target)
		if err != nil {
			return nil, err
		}
		return tensor.Add(zeros, grad)

	case common.Equal(grad.Shape()):
		return sumToShape(grad, target)

	default:
		return nil, fmt.Errorf("%w: cannot reduce gradient of shape %v to %v",
			tensor.ErrShapeMismatch, grad.Shape(), target)
	}
}

// sumToShape sums grad down to target. grad's shape must be the broadcast of
// target with some other shape.
func sumToShape(grad *tensor.Tensor, target tensor.Shape) (*tensor.Tensor, error) {
	result := grad
	var err error

	for result.Rank() > len(target) {
		if result, err = result.SumAxis(0); err != nil {
			return nil, err
		}
		if result, err = result.Reshape(result.Shape()[1:]); err != nil {
			return nil, err
		}
	}

	for axis, dim := range target {
		if dim == 1 && result.Shape()[axis] > 1 {
			if result, err = result.SumAxis(axis); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}
