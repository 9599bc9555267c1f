package nn

import (
	"fmt"
	"strings"

	"github.com/born-ml/ndgrad/internal/autodiff"
)

// Sequential is a container module that chains multiple modules together.
//
// Each module's output becomes the next module's input.
type Sequential struct {
	modules []Module
}

// NewSequential creates a new Sequential container.
func NewSequential(modules ...Module) *Sequential {
	return &Sequential{
		modules: modules,
	}
}

// Forward applies all modules in sequence.
func (s *Sequential) Forward(input autodiff.Variable) (autodiff.Variable, error) {
	output := input
	for i, module := range s.modules {
		var err error
		if output, err = module.Forward(output); err != nil {
			return autodiff.Variable{}, fmt.Errorf("module %d: %w", i, err)
		}
	}
	return output, nil
}

// Parameters returns all trainable parameters from all modules.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, module := range s.modules {
		params = append(params, module.Parameters()...)
	}
	return params
}

// Add appends a module to the sequence.
func (s *Sequential) Add(module Module) {
	s.modules = append(s.modules, module)
}

// Len returns the number of modules in the sequence.
func (s *Sequential) Len() int {
	return len(s.modules)
}

// Module returns the module at the given index.
//
// Panics if index is out of bounds.
func (s *Sequential) Module(index int) Module {
	if index < 0 || index >= len(s.modules) {
		panic("Sequential.Module: index out of bounds")
	}
	return s.modules[index]
}

// StateDict returns the parameters of every stateful module.
//
// Names are prefixed with the module index (e.g. "0.weight", "2.bias")
// to avoid collisions.
func (s *Sequential) StateDict() StateDict {
	state := make(StateDict)
	for i, module := range s.modules {
		stateful, ok := module.(Stateful)
		if !ok {
			continue
		}
		for name, t := range stateful.StateDict() {
			state[fmt.Sprintf("%d.%s", i, name)] = t
		}
	}
	return state
}

// LoadStateDict loads parameters saved by StateDict.
// Every module's entries are checked before any parameter is written.
func (s *Sequential) LoadStateDict(state StateDict) error {
	moduleStates := make([]StateDict, len(s.modules))
	for i, module := range s.modules {
		if _, ok := module.(Stateful); !ok {
			continue
		}

		prefix := fmt.Sprintf("%d.", i)
		moduleState := make(StateDict)
		for key, t := range state {
			if name, found := strings.CutPrefix(key, prefix); found {
				moduleState[name] = t
			}
		}
		moduleStates[i] = moduleState

		if checker, ok := module.(stateChecker); ok {
			if err := checker.checkStateDict(moduleState); err != nil {
				return fmt.Errorf("failed to load module %d: %w", i, err)
			}
		}
	}

	for i, module := range s.modules {
		stateful, ok := module.(Stateful)
		if !ok {
			continue
		}
		if err := stateful.LoadStateDict(moduleStates[i]); err != nil {
			return fmt.Errorf("failed to load module %d: %w", i, err)
		}
	}
	return nil
}
