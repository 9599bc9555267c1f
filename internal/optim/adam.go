package optim

import (
	"math"

	"github.com/born-ml/ndgrad/internal/nn"
	"github.com/born-ml/ndgrad/internal/tensor"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²
//	m_hat = m_t / (1 - beta1^t)
//	v_hat = v_t / (1 - beta2^t)
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam struct {
	params []*nn.Parameter
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64
	t      int // Timestep for bias correction
	m      map[*nn.Parameter]*tensor.Tensor
	v      map[*nn.Parameter]*tensor.Tensor
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR    float64    // Learning rate (default: 0.001)
	Betas [2]float64 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps   float64    // Term for numerical stability (default: 1e-8)
}

// NewAdam creates a new Adam optimizer, applying defaults to zero fields.
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &Adam{
		params: params,
		lr:     config.LR,
		beta1:  config.Betas[0],
		beta2:  config.Betas[1],
		eps:    config.Eps,
		m:      make(map[*nn.Parameter]*tensor.Tensor),
		v:      make(map[*nn.Parameter]*tensor.Tensor),
	}
}

// Step performs a single optimization step.
//
// Parameters with no gradient are skipped.
func (a *Adam) Step() error {
	a.t++
	biasCorrection1 := 1.0 - math.Pow(a.beta1, float64(a.t))
	biasCorrection2 := 1.0 - math.Pow(a.beta2, float64(a.t))

	for _, param := range a.params {
		grad, err := gradientOf(param)
		if err != nil {
			return err
		}
		if grad == nil {
			continue
		}

		m, ok := a.m[param]
		if !ok {
			if m, err = tensor.Zeros(param.Tensor().Shape()); err != nil {
				return err
			}
			a.m[param] = m
		}
		v, ok := a.v[param]
		if !ok {
			if v, err = tensor.Zeros(param.Tensor().Shape()); err != nil {
				return err
			}
			a.v[param] = v
		}

		gradData, mData, vData := grad.Data(), m.Data(), v.Data()
		paramData := param.Tensor().Data()
		for i := range paramData {
			g := gradData[i]
			mData[i] = a.beta1*mData[i] + (1.0-a.beta1)*g
			vData[i] = a.beta2*vData[i] + (1.0-a.beta2)*g*g

			mHat := mData[i] / biasCorrection1
			vHat := vData[i] / biasCorrection2
			paramData[i] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
		}
	}
	return nil
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam) ZeroGrad() {
	zeroGrads(a.params)
}

// GetLR returns the current learning rate.
func (a *Adam) GetLR() float64 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam) SetLR(lr float64) {
	a.lr = lr
}

// GetTimestep returns the number of steps taken.
func (a *Adam) GetTimestep() int {
	return a.t
}

// StateDict returns the moment buffers keyed "m.{index}" and "v.{index}",
// plus the timestep as "step".
func (a *Adam) StateDict() nn.StateDict {
	state := make(nn.StateDict)
	saveBuffers(a.params, a.m, state, "m")
	saveBuffers(a.params, a.v, state, "v")
	state["step"] = tensor.Scalar(float64(a.t))
	return state
}

// LoadStateDict restores state saved by StateDict.
func (a *Adam) LoadStateDict(state nn.StateDict) error {
	m, err := loadBuffers(a.params, state, "m")
	if err != nil {
		return err
	}
	v, err := loadBuffers(a.params, state, "v")
	if err != nil {
		return err
	}

	t := 0
	if step, ok := state["step"]; ok {
		value, err := step.Scalar()
		if err != nil {
			return err
		}
		t = int(value)
	}

	a.m, a.v, a.t = m, v, t
	return nil
}
