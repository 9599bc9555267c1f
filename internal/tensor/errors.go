package tensor

import (
	"errors"
	"fmt"
)

// Error kinds reported by tensor and autodiff operations.
// Every returned error wraps exactly one of these; test with errors.Is.
var (
	ErrShapeMismatch    = errors.New("shape mismatch")
	ErrIndexOutOfBounds = errors.New("index out of bounds")
	ErrRankMismatch     = errors.New("rank mismatch")
	ErrInvalidOperation = errors.New("invalid operation")
)

// IndexError describes an index that does not fit the indexed dimension.
//
// Max is the largest value Index may take. For element indices that is
// size-1; for the exclusive end bound of a range (Slice) it is size.
type IndexError struct {
	Dim   int // Dimension being indexed
	Max   int // Largest valid value for Index
	Index int // Index that was received
}

// Error implements the error interface.
func (e *IndexError) Error() string {
	return fmt.Sprintf("index out of bounds on dimension %d: max %d, %d received", e.Dim, e.Max, e.Index)
}

// Is reports whether target is ErrIndexOutOfBounds.
func (e *IndexError) Is(target error) bool {
	return target == ErrIndexOutOfBounds
}

func checkIndex(dim, size, idx int) error {
	if idx < 0 || idx >= size {
		return &IndexError{Dim: dim, Max: size - 1, Index: idx}
	}
	return nil
}

// checkInitialized rejects zero-value tensors, which have no storage.
func checkInitialized(ts ...*Tensor) error {
	for _, t := range ts {
		if t.buf == nil {
			return fmt.Errorf("%w: tensor has no storage", ErrInvalidOperation)
		}
	}
	return nil
}
