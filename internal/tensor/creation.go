package tensor

import (
	"github.com/pkg/errors"

	"github.com/born-ml/dispatch/internal/queue"
)

// Zeros allocates a tensor filled with zeros.
//
// Example:
//
//	q := queue.NewDefault()
//	t, err := tensor.Zeros(q, Shape{3, 4}, Float32)
func Zeros(q *queue.Queue, shape Shape, dtype DataType) (*RawTensor, error) {
	// Allocations are zero-initialized.
	return NewRaw(q, shape, dtype)
}

// Full allocates a tensor filled with value.
//
// Example:
//
//	t, err := tensor.Full[float32](q, Shape{3, 3}, 3.14)
func Full[T Element](q *queue.Queue, shape Shape, value T) (*RawTensor, error) {
	r, err := NewRaw(q, shape, DataTypeOf[T]())
	if err != nil {
		return nil, err
	}
	data, err := View[T](r.alloc)
	if err != nil {
		return nil, err
	}
	for i := range data {
		data[i] = value
	}
	return r, nil
}

// FromSlice allocates a C-contiguous tensor holding a copy of data.
//
// Example:
//
//	t, err := tensor.FromSlice(q, []int64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
func FromSlice[T Element](q *queue.Queue, data []T, shape Shape) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, errors.Wrapf(ErrShape, "%d values do not fill shape %v", len(data), shape)
	}
	r, err := NewRaw(q, shape, DataTypeOf[T]())
	if err != nil {
		return nil, err
	}
	dst, err := View[T](r.alloc)
	if err != nil {
		return nil, err
	}
	copy(dst, data)
	return r, nil
}

// ToSlice copies the elements of r in row-major order.
// The caller must wait for every producer of r before reading.
func ToSlice[T Element](r *RawTensor) ([]T, error) {
	if want := DataTypeOf[T](); r.dtype != want {
		return nil, errors.Wrapf(ErrTypeMismatch, "tensor is %s, not %s", r.dtype, want)
	}
	src, err := View[T](r.alloc)
	if err != nil {
		return nil, err
	}
	n := r.NumElements()
	out := make([]T, n)
	if n == 0 {
		return out, nil
	}
	if r.IsCContiguous() {
		copy(out, src[r.offset:r.offset+n])
		return out, nil
	}

	idx := make([]int, r.NDim())
	pos := r.offset
	for i := range out {
		out[i] = src[pos]
		// Advance the multi-index like an odometer.
		for d := len(idx) - 1; d >= 0; d-- {
			idx[d]++
			pos += r.stride[d]
			if idx[d] < r.shape[d] {
				break
			}
			pos -= idx[d] * r.stride[d]
			idx[d] = 0
		}
	}
	return out, nil
}
