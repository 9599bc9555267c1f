package optim

import (
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/ndgrad/internal/nn"
	"github.com/born-ml/ndgrad/internal/tensor"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Example:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
type SGD struct {
	params     []*nn.Parameter
	lr         float64
	momentum   float64
	velocities map[*nn.Parameter]*tensor.Tensor
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter]*tensor.Tensor),
	}
}

// Step performs a single optimization step.
//
// Parameters with no gradient (not in the computation graph) are skipped.
func (s *SGD) Step() error {
	for _, param := range s.params {
		grad, err := gradientOf(param)
		if err != nil {
			return err
		}
		if grad == nil {
			continue
		}

		update := grad.Data()
		if s.momentum != 0 {
			velocity, ok := s.velocities[param]
			if !ok {
				if velocity, err = tensor.Zeros(param.Tensor().Shape()); err != nil {
					return err
				}
				s.velocities[param] = velocity
			}
			// velocity = momentum * velocity + grad
			floats.Scale(s.momentum, velocity.Data())
			floats.Add(velocity.Data(), update)
			update = velocity.Data()
		}

		floats.AddScaled(param.Tensor().Data(), -s.lr, update)
	}
	return nil
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() {
	zeroGrads(s.params)
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}

// StateDict returns the velocity buffers keyed "velocity.{param_index}".
// Without momentum the result is empty.
func (s *SGD) StateDict() nn.StateDict {
	state := make(nn.StateDict)
	if s.momentum == 0 {
		return state
	}
	saveBuffers(s.params, s.velocities, state, "velocity")
	return state
}

// LoadStateDict restores velocity buffers saved by StateDict.
// Missing entries are initialized on the next Step.
func (s *SGD) LoadStateDict(state nn.StateDict) error {
	if s.momentum == 0 {
		return nil
	}
	velocities, err := loadBuffers(s.params, state, "velocity")
	if err != nil {
		return err
	}
	s.velocities = velocities
	return nil
}
