package tensor

import "fmt"

// buffer is the flat storage shared by a tensor and all of its views.
// It lives as long as the longest-living tensor referencing it.
type buffer struct {
	data []float64
}

// Tensor is an N-dimensional array of float64 values laid out in row-major order.
//
// A tensor either owns a fresh buffer or is a view that shares its parent's
// buffer through an offset. Views are not snapshots: writing through a view
// is visible through every tensor sharing the buffer.
//
// Example:
//
//	t, _ := tensor.FromSlice(tensor.Shape{2, 3}, []float64{1, 2, 3, 4, 5, 6})
//	row, _ := t.Index(1)       // view of shape (3)
//	row.MulScalarInPlace(10)   // t is now [[1, 2, 3], [40, 50, 60]]
type Tensor struct {
	buf     *buffer // Shared storage
	shape   Shape   // Tensor dimensions
	strides []int   // Row-major strides
	offset  int     // Start of this tensor inside buf
	length  int     // Product of shape
}

// Scalar creates a scalar tensor of shape (1) holding value.
func Scalar(value float64) *Tensor {
	return &Tensor{
		buf:     &buffer{data: []float64{value}},
		shape:   Shape{1},
		strides: []int{1},
		length:  1,
	}
}

// Full creates a tensor of the given shape with every element set to value.
func Full(shape Shape, value float64) (*Tensor, error) {
	t, err := newTensor(shape)
	if err != nil {
		return nil, err
	}
	if value != 0 {
		t.Fill(value)
	}
	return t, nil
}

// Zeros creates a zero-filled tensor of the given shape.
func Zeros(shape Shape) (*Tensor, error) {
	return newTensor(shape)
}

// Ones creates a tensor of the given shape filled with ones.
func Ones(shape Shape) (*Tensor, error) {
	return Full(shape, 1)
}

// FromSlice creates a tensor of the given shape from flat row-major data.
// The slice is copied into the tensor's memory.
func FromSlice(shape Shape, data []float64) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("%w: shape %v requires %d elements, but got %d",
			ErrShapeMismatch, shape, shape.NumElements(), len(data))
	}

	t, err := newTensor(shape)
	if err != nil {
		return nil, err
	}
	copy(t.buf.data, data)
	return t, nil
}

// newTensor allocates a zero-filled tensor with its own buffer.
func newTensor(shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	n := shape.NumElements()
	return &Tensor{
		buf:     &buffer{data: make([]float64, n)},
		shape:   shape.Clone(),
		strides: shape.ComputeStrides(),
		length:  n,
	}, nil
}

// fromOwned wraps data without copying. The caller guarantees len(data) == shape.NumElements().
func fromOwned(shape Shape, data []float64) *Tensor {
	return &Tensor{
		buf:     &buffer{data: data},
		shape:   shape,
		strides: shape.ComputeStrides(),
		length:  len(data),
	}
}

// newView creates a tensor sharing buf. It is the only way to alias storage.
func newView(shape Shape, strides []int, buf *buffer, offset, length int) *Tensor {
	return &Tensor{
		buf:     buf,
		shape:   shape,
		strides: strides,
		offset:  offset,
		length:  length,
	}
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Strides returns the tensor's memory strides.
func (t *Tensor) Strides() []int {
	return t.strides
}

// Rank returns the number of axes.
func (t *Tensor) Rank() int {
	return len(t.shape)
}

// Size returns the total number of elements.
func (t *Tensor) Size() int {
	return t.length
}

// IsScalar reports whether the tensor has shape (1).
func (t *Tensor) IsScalar() bool {
	return len(t.shape) == 1 && t.shape[0] == 1
}

// Data returns the tensor's elements as a slice of the shared buffer (zero-copy).
//
// WARNING: Modifications to the returned slice will modify the tensor
// and every view aliasing the same storage.
func (t *Tensor) Data() []float64 {
	if t.buf == nil {
		return nil
	}
	return t.buf.data[t.offset : t.offset+t.length]
}

// Values returns a copy of the tensor's elements in row-major order.
func (t *Tensor) Values() []float64 {
	out := make([]float64, t.length)
	copy(out, t.Data())
	return out
}

// Scalar returns the single element of a scalar tensor.
func (t *Tensor) Scalar() (float64, error) {
	if t.buf == nil || !t.IsScalar() {
		return 0, fmt.Errorf("%w: scalar() requires shape (1), got %v", ErrInvalidOperation, t.shape)
	}
	return t.buf.data[t.offset], nil
}

// SetScalar overwrites the single element of a scalar tensor.
func (t *Tensor) SetScalar(value float64) error {
	if t.buf == nil || !t.IsScalar() {
		return fmt.Errorf("%w: scalar() requires shape (1), got %v", ErrInvalidOperation, t.shape)
	}
	t.buf.data[t.offset] = value
	return nil
}

// Index returns a view of the idx-th entry along the leading axis.
//
// The view drops the leading axis; indexing a rank-1 tensor yields a scalar
// view of shape (1). The view shares storage with t.
func (t *Tensor) Index(idx int) (*Tensor, error) {
	if t.buf == nil || t.Rank() == 0 {
		return nil, fmt.Errorf("%w: cannot index an empty tensor", ErrInvalidOperation)
	}
	if err := checkIndex(0, t.shape[0], idx); err != nil {
		return nil, err
	}

	offset := t.offset + idx*t.strides[0]
	if t.Rank() == 1 {
		return newView(Shape{1}, []int{1}, t.buf, offset, 1), nil
	}

	shape := t.shape[1:].Clone()
	return newView(shape, shape.ComputeStrides(), t.buf, offset, t.length/t.shape[0]), nil
}

// Slice returns a view of the entries [start, end) along the leading axis.
// end is exclusive, so an out-of-range end reports Max as shape[0].
func (t *Tensor) Slice(start, end int) (*Tensor, error) {
	if t.buf == nil {
		return nil, fmt.Errorf("%w: cannot slice an empty tensor", ErrInvalidOperation)
	}
	if err := checkIndex(0, t.shape[0], start); err != nil {
		return nil, err
	}
	if end <= start || end > t.shape[0] {
		return nil, &IndexError{Dim: 0, Max: t.shape[0], Index: end}
	}

	shape := t.shape.Clone()
	shape[0] = end - start
	return newView(shape, shape.ComputeStrides(), t.buf, t.offset+start*t.strides[0], shape.NumElements()), nil
}

// flatOffset maps a full multi-index to a position in the buffer.
func (t *Tensor) flatOffset(indices []int) (int, error) {
	if t.buf == nil {
		return 0, fmt.Errorf("%w: cannot index an empty tensor", ErrInvalidOperation)
	}
	if len(indices) != t.Rank() {
		return 0, fmt.Errorf("%w: expected %d indices, got %d", ErrRankMismatch, t.Rank(), len(indices))
	}

	offset := t.offset
	for i, idx := range indices {
		if err := checkIndex(i, t.shape[i], idx); err != nil {
			return 0, err
		}
		offset += idx * t.strides[i]
	}
	return offset, nil
}

// At returns the element at the given indices.
//
// Example:
//
//	w, _ := tensor.Zeros(tensor.Shape{3, 4})
//	value, _ := w.At(1, 2) // Row 1, column 2
func (t *Tensor) At(indices ...int) (float64, error) {
	offset, err := t.flatOffset(indices)
	if err != nil {
		return 0, err
	}
	return t.buf.data[offset], nil
}

// Set sets the element at the given indices.
func (t *Tensor) Set(value float64, indices ...int) error {
	offset, err := t.flatOffset(indices)
	if err != nil {
		return err
	}
	t.buf.data[offset] = value
	return nil
}

// Assign copies src into t's storage, element by element.
// Assigning into a view writes through to the parent.
func (t *Tensor) Assign(src *Tensor) error {
	if t.Rank() != src.Rank() {
		return fmt.Errorf("%w: cannot assign a rank %d tensor to a rank %d tensor",
			ErrRankMismatch, src.Rank(), t.Rank())
	}
	if !t.shape.Equal(src.shape) {
		return fmt.Errorf("%w: cannot assign shape %v to shape %v", ErrShapeMismatch, src.shape, t.shape)
	}
	copy(t.Data(), src.Data())
	return nil
}

// Fill sets every element to value.
func (t *Tensor) Fill(value float64) {
	data := t.Data()
	for i := range data {
		data[i] = value
	}
}

// Clone creates a deep copy of the tensor with its own buffer.
func (t *Tensor) Clone() *Tensor {
	return fromOwned(t.shape.Clone(), t.Values())
}

// Reshape returns a view of t with a new shape holding the same number of elements.
func (t *Tensor) Reshape(shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != t.length {
		return nil, fmt.Errorf("%w: cannot reshape %v (%d elements) to %v",
			ErrShapeMismatch, t.shape, t.length, shape)
	}
	shape = shape.Clone()
	return newView(shape, shape.ComputeStrides(), t.buf, t.offset, t.length), nil
}

// reseat replaces t's storage and layout with other's.
// Views of the old storage are not affected.
func (t *Tensor) reseat(other *Tensor) {
	*t = *other
}
