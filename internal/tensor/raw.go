package tensor

import (
	"log/slog"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/born-ml/dispatch/internal/queue"
)

// RawTensor is a logical view over an allocation: element type, shape,
// strides and offset, all measured in elements. Strides may be negative or
// zero. A RawTensor never owns its allocation; views share it freely.
type RawTensor struct {
	alloc    *queue.Allocation
	shape    Shape // Tensor dimensions
	stride   []int // Element strides, same rank as shape
	dtype    DataType
	offset   int // Element offset of the first element
	writable bool
}

// NewRaw allocates a C-contiguous tensor in q's context.
// Memory is zero-initialized.
func NewRaw(q *queue.Queue, shape Shape, dtype DataType) (*RawTensor, error) {
	if !dtype.Valid() {
		return nil, errors.Wrapf(ErrUnsupportedType, "data type %d", dtype)
	}
	if err := shape.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid shape")
	}

	alloc, err := q.Context().MallocDevice(shape.NumElements() * dtype.Size())
	if err != nil {
		return nil, err
	}
	return &RawTensor{
		alloc:    alloc,
		shape:    shape.Clone(),
		stride:   shape.ComputeStrides(),
		dtype:    dtype,
		writable: true,
	}, nil
}

// NewView describes an existing allocation. Every addressable element must
// lie inside the allocation.
func NewView(alloc *queue.Allocation, dtype DataType, shape Shape, strides []int, offset int) (*RawTensor, error) {
	if !dtype.Valid() {
		return nil, errors.Wrapf(ErrUnsupportedType, "data type %d", dtype)
	}
	if len(shape) != len(strides) {
		return nil, errors.Wrapf(ErrShape, "rank of shape %v does not match rank of strides %v", shape, strides)
	}
	if err := shape.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid shape")
	}
	r := &RawTensor{
		alloc:    alloc,
		shape:    shape.Clone(),
		stride:   append([]int(nil), strides...),
		dtype:    dtype,
		offset:   offset,
		writable: true,
	}
	if r.NumElements() > 0 {
		lo, hi := r.ElementSpan()
		if lo < 0 || hi*dtype.Size() > alloc.Size() {
			return nil, errors.Wrapf(ErrInsufficientCapacity,
				"view [%d, %d) of %s exceeds allocation of %d bytes", lo, hi, dtype, alloc.Size())
		}
	}
	return r, nil
}

func (r *RawTensor) view(shape Shape, strides []int, offset int) *RawTensor {
	return &RawTensor{
		alloc:    r.alloc,
		shape:    shape,
		stride:   strides,
		dtype:    r.dtype,
		offset:   offset,
		writable: r.writable,
	}
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's element strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Offset returns the element offset of the first element.
func (r *RawTensor) Offset() int {
	return r.offset
}

// Allocation returns the underlying allocation.
func (r *RawTensor) Allocation() *queue.Allocation {
	return r.alloc
}

// Context returns the allocation context the data lives in.
func (r *RawTensor) Context() *queue.Context {
	return r.alloc.Context()
}

// NDim returns the number of dimensions.
func (r *RawTensor) NDim() int {
	return len(r.shape)
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ItemSize returns the element size in bytes.
func (r *RawTensor) ItemSize() int {
	return r.dtype.Size()
}

// IsWritable reports whether the tensor may be used as a destination.
func (r *RawTensor) IsWritable() bool {
	return r.writable
}

// ReadOnly returns a view of r that cannot be written through.
func (r *RawTensor) ReadOnly() *RawTensor {
	v := r.view(r.shape.Clone(), append([]int(nil), r.stride...), r.offset)
	v.writable = false
	return v
}

// IsCContiguous reports whether the tensor is dense in row-major order.
func (r *RawTensor) IsCContiguous() bool {
	return IsCContiguous(r.shape, r.stride)
}

// IsFContiguous reports whether the tensor is dense in column-major order.
func (r *RawTensor) IsFContiguous() bool {
	return IsFContiguous(r.shape, r.stride)
}

// ElementSpan returns the half-open range of element offsets, relative to the
// allocation start, that the tensor can address. Empty tensors span nothing.
func (r *RawTensor) ElementSpan() (lo, hi int) {
	if r.NumElements() == 0 {
		return r.offset, r.offset
	}
	lo, hi = r.offset, r.offset
	for i, dim := range r.shape {
		d := (dim - 1) * r.stride[i]
		if d < 0 {
			lo += d
		} else {
			hi += d
		}
	}
	return lo, hi + 1
}

// ByteSpan returns the half-open byte range the tensor can address.
func (r *RawTensor) ByteSpan() (lo, hi int) {
	lo, hi = r.ElementSpan()
	return lo * r.ItemSize(), hi * r.ItemSize()
}

// Capacity returns the number of elements addressable from the tensor's
// offset to the end of its allocation.
func (r *RawTensor) Capacity() int {
	return max(r.alloc.Size()/r.ItemSize()-r.offset, 0)
}

// SameLogicalTensor reports whether r and other describe exactly the same elements.
func (r *RawTensor) SameLogicalTensor(other *RawTensor) bool {
	if r.alloc != other.alloc || r.dtype != other.dtype || r.offset != other.offset || !r.shape.Equal(other.shape) {
		return false
	}
	for i := range r.stride {
		if r.shape[i] > 1 && r.stride[i] != other.stride[i] {
			return false
		}
	}
	return true
}

// LogValue implements slog.LogValuer.
func (r *RawTensor) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("dtype", r.dtype.String()),
		slog.Any("shape", []int(r.shape)),
		slog.Any("strides", r.stride),
		slog.Int("offset", r.offset),
		slog.Uint64("allocation", r.alloc.ID()),
	)
}

// View reinterprets the bytes of an allocation as a slice of T. The slice
// covers every whole element of the allocation.
func View[T Element](a *queue.Allocation) ([]T, error) {
	b, err := a.Bytes()
	if err != nil {
		return nil, err
	}
	var zero T
	n := len(b) / int(unsafe.Sizeof(zero))
	if n == 0 {
		return []T{}, nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, allocations are 8-byte aligned and n is bounded by len(b)
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n), nil
}
