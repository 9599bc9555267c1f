package checkpoint

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrChecksumMismatch   = errors.New("checksum mismatch: checkpoint may be corrupted")
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrMalformed          = errors.New("malformed checkpoint")
	ErrInvalidTensorName  = errors.New("invalid tensor name")
)

// ValidationError provides detailed information about a tensor that failed
// validation while decoding.
type ValidationError struct {
	Tensor  string // Tensor name
	Details string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Tensor != "" {
		return fmt.Sprintf("%s: tensor %q: %s", ErrMalformed, e.Tensor, e.Details)
	}
	return fmt.Sprintf("%s: %s", ErrMalformed, e.Details)
}

// Is reports whether target is ErrMalformed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrMalformed
}
