package checkpoint

import (
	"encoding/binary"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/born-ml/ndgrad/internal/nn"
	"github.com/born-ml/ndgrad/internal/tensor"
)

// Decode parses a checkpoint produced by Encode.
//
// The checksum is verified before the payload is parsed.
func Decode(data []byte) (State, error) {
	if len(data) < minEncodedSize {
		return State{}, fmt.Errorf("%w: %d bytes is shorter than the %d byte minimum",
			ErrMalformed, len(data), minEncodedSize)
	}
	if string(data[:4]) != MagicBytes {
		return State{}, fmt.Errorf("%w: expected %q, got %q", ErrInvalidMagic, MagicBytes, data[:4])
	}
	if version := binary.LittleEndian.Uint32(data[4:8]); version != FormatVersion {
		return State{}, fmt.Errorf("%w: %d (supported: %d)", ErrUnsupportedVersion, version, FormatVersion)
	}

	payload := data[HeaderSize : len(data)-ChecksumSize]
	var stored [32]byte
	copy(stored[:], data[len(data)-ChecksumSize:])
	if err := ValidateChecksum(ComputeChecksum(payload), stored); err != nil {
		return State{}, err
	}

	return decodePayload(payload)
}

func decodePayload(b []byte) (State, error) {
	state := State{
		Model:     make(nn.StateDict),
		Optimizer: make(nn.StateDict),
	}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return State{}, wireError("checkpoint tag", n)
		}
		b = b[n:]

		switch {
		case num == fieldEpoch && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return State{}, wireError("epoch", n)
			}
			if v > math.MaxInt32 {
				return State{}, &ValidationError{Details: fmt.Sprintf("epoch %d out of range", v)}
			}
			state.Epoch = int(v)
			b = b[n:]

		case num == fieldLoss && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return State{}, wireError("loss", n)
			}
			state.Loss = math.Float64frombits(v)
			b = b[n:]

		case (num == fieldModel || num == fieldOptimizer) && typ == protowire.BytesType:
			msg, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return State{}, wireError("tensor", n)
			}
			b = b[n:]

			name, t, err := decodeTensor(msg)
			if err != nil {
				return State{}, err
			}
			dict := state.Model
			if num == fieldOptimizer {
				dict = state.Optimizer
			}
			if _, dup := dict[name]; dup {
				return State{}, &ValidationError{Tensor: name, Details: "duplicate tensor"}
			}
			dict[name] = t

		default:
			// Unknown fields are skipped for forward compatibility.
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return State{}, wireError(fmt.Sprintf("field %d", num), n)
			}
			b = b[n:]
		}
	}

	return state, nil
}

func decodeTensor(b []byte) (string, *tensor.Tensor, error) {
	var (
		name  string
		shape tensor.Shape
		data  []float64
	)

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return "", nil, wireError("tensor tag", n)
		}
		b = b[n:]

		switch {
		case num == fieldName && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return "", nil, wireError("tensor name", n)
			}
			name = v
			b = b[n:]

		case num == fieldShape && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return "", nil, wireError("tensor shape", n)
			}
			for len(packed) > 0 {
				d, m := protowire.ConsumeVarint(packed)
				if m < 0 {
					return "", nil, wireError("tensor shape", m)
				}
				if d > math.MaxInt32 {
					return "", nil, &ValidationError{Tensor: name, Details: fmt.Sprintf("dimension %d out of range", d)}
				}
				shape = append(shape, int(d))
				packed = packed[m:]
			}
			b = b[n:]

		case num == fieldShape && typ == protowire.VarintType:
			d, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return "", nil, wireError("tensor shape", n)
			}
			if d > math.MaxInt32 {
				return "", nil, &ValidationError{Tensor: name, Details: fmt.Sprintf("dimension %d out of range", d)}
			}
			shape = append(shape, int(d))
			b = b[n:]

		case num == fieldData && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return "", nil, wireError("tensor data", n)
			}
			if len(packed)%8 != 0 {
				return "", nil, &ValidationError{Tensor: name, Details: "packed data is not a multiple of 8 bytes"}
			}
			for len(packed) > 0 {
				v, m := protowire.ConsumeFixed64(packed)
				if m < 0 {
					return "", nil, wireError("tensor data", m)
				}
				data = append(data, math.Float64frombits(v))
				packed = packed[m:]
			}
			b = b[n:]

		case num == fieldData && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return "", nil, wireError("tensor data", n)
			}
			data = append(data, math.Float64frombits(v))
			b = b[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return "", nil, wireError(fmt.Sprintf("tensor field %d", num), n)
			}
			b = b[n:]
		}
	}

	if err := validateName(name); err != nil {
		return "", nil, err
	}
	if err := shape.Validate(); err != nil {
		return "", nil, &ValidationError{Tensor: name, Details: err.Error()}
	}
	if shape.NumElements() != len(data) {
		return "", nil, &ValidationError{
			Tensor:  name,
			Details: fmt.Sprintf("shape %v needs %d values, found %d", shape, shape.NumElements(), len(data)),
		}
	}

	t, err := tensor.FromSlice(shape, data)
	if err != nil {
		return "", nil, &ValidationError{Tensor: name, Details: err.Error()}
	}
	return name, t, nil
}

func wireError(what string, n int) error {
	return fmt.Errorf("%w: %s: %w", ErrMalformed, what, protowire.ParseError(n))
}
