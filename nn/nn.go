// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network layers built on autodiff.
package nn

import (
	"math/rand"

	"github.com/born-ml/ndgrad/internal/nn"
)

// Module is the base interface for all neural network components.
type Module = nn.Module

// Parameter is a named trainable leaf variable.
type Parameter = nn.Parameter

// StateDict maps parameter names to their values.
type StateDict = nn.StateDict

// Linear is a fully connected layer computing x @ W + b.
type Linear = nn.Linear

// ReLU is the rectified linear activation.
type ReLU = nn.ReLU

// Sequential chains modules.
type Sequential = nn.Sequential

// MSELoss computes mean squared error.
type MSELoss = nn.MSELoss

// NewLinear creates a Linear layer with Xavier weights and zero bias.
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand) (*Linear, error) {
	return nn.NewLinear(inFeatures, outFeatures, rng)
}

// NewReLU creates a ReLU module.
func NewReLU() *ReLU { return nn.NewReLU() }

// NewSequential creates a Sequential container.
func NewSequential(modules ...Module) *Sequential { return nn.NewSequential(modules...) }

// NewMSELoss creates an MSE loss.
func NewMSELoss() *MSELoss { return nn.NewMSELoss() }
