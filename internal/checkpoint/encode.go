package checkpoint

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/born-ml/ndgrad/internal/nn"
	"github.com/born-ml/ndgrad/internal/tensor"
)

// Field numbers of the Checkpoint message.
const (
	fieldEpoch     protowire.Number = 1
	fieldLoss      protowire.Number = 2
	fieldModel     protowire.Number = 3
	fieldOptimizer protowire.Number = 4
)

// Field numbers of the Tensor message.
const (
	fieldName  protowire.Number = 1
	fieldShape protowire.Number = 2
	fieldData  protowire.Number = 3
)

// Encode serializes state. Tensors are written in name order so equal states
// encode to equal bytes.
func Encode(state State) ([]byte, error) {
	if state.Epoch < 0 {
		return nil, fmt.Errorf("%w: negative epoch %d", ErrMalformed, state.Epoch)
	}

	var payload []byte
	payload = protowire.AppendTag(payload, fieldEpoch, protowire.VarintType)
	payload = protowire.AppendVarint(payload, uint64(state.Epoch))
	payload = protowire.AppendTag(payload, fieldLoss, protowire.Fixed64Type)
	payload = protowire.AppendFixed64(payload, math.Float64bits(state.Loss))

	var err error
	if payload, err = appendStateDict(payload, fieldModel, state.Model); err != nil {
		return nil, err
	}
	if payload, err = appendStateDict(payload, fieldOptimizer, state.Optimizer); err != nil {
		return nil, err
	}

	out := make([]byte, 0, HeaderSize+len(payload)+ChecksumSize)
	out = append(out, MagicBytes...)
	out = binary.LittleEndian.AppendUint32(out, FormatVersion)
	out = append(out, payload...)
	sum := ComputeChecksum(payload)
	out = append(out, sum[:]...)
	return out, nil
}

func appendStateDict(b []byte, field protowire.Number, dict nn.StateDict) ([]byte, error) {
	names := make([]string, 0, len(dict))
	for name := range dict {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		t := dict[name]
		if err := validateName(name); err != nil {
			return nil, err
		}
		if t == nil {
			return nil, &ValidationError{Tensor: name, Details: "nil tensor"}
		}
		b = protowire.AppendTag(b, field, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeTensor(name, t))
	}
	return b, nil
}

func encodeTensor(name string, t *tensor.Tensor) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldName, protowire.BytesType)
	b = protowire.AppendString(b, name)

	var shape []byte
	for _, d := range t.Shape() {
		shape = protowire.AppendVarint(shape, uint64(d))
	}
	b = protowire.AppendTag(b, fieldShape, protowire.BytesType)
	b = protowire.AppendBytes(b, shape)

	values := t.Data()
	data := make([]byte, 0, 8*len(values))
	for _, v := range values {
		data = protowire.AppendFixed64(data, math.Float64bits(v))
	}
	b = protowire.AppendTag(b, fieldData, protowire.BytesType)
	b = protowire.AppendBytes(b, data)
	return b
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidTensorName)
	}
	if len(name) > MaxTensorName {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrInvalidTensorName, len(name), MaxTensorName)
	}
	return nil
}
