package checkpoint

import (
	"crypto/sha256"

	"github.com/born-ml/ndgrad/internal/nn"
)

// Format constants.
const (
	MagicBytes     = "NDGC"
	FormatVersion  = 1
	HeaderSize     = 8  // magic + version
	ChecksumSize   = 32 // SHA-256
	MaxTensorName  = 256
	minEncodedSize = HeaderSize + ChecksumSize
)

// State is the content of a checkpoint.
type State struct {
	Epoch     int
	Loss      float64
	Model     nn.StateDict
	Optimizer nn.StateDict
}

// ComputeChecksum computes SHA-256 checksum of data.
func ComputeChecksum(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// ValidateChecksum compares computed checksum against stored checksum.
// Returns ErrChecksumMismatch if they don't match.
func ValidateChecksum(computed, stored [32]byte) error {
	if computed != stored {
		return ErrChecksumMismatch
	}
	return nil
}
