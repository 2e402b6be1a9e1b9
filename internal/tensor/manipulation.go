package tensor

import (
	"slices"

	"github.com/pkg/errors"
)

// Slice restricts axis to the elements start, start+step, ... stopping before
// stop. For a positive step 0 <= start <= stop <= n is required; for a negative
// step -1 <= stop <= start < n. This is a view operation (no data copy).
//
// Example:
//
//	x.Slice(1, 0, 4, 2)  // every other column of the first four
//	x.Slice(0, n-1, -1, -1) // rows reversed
func (r *RawTensor) Slice(axis, start, stop, step int) (*RawTensor, error) {
	axis, err := NormalizeAxis(axis, r.NDim())
	if err != nil {
		return nil, err
	}
	n := r.shape[axis]
	var length int
	switch {
	case step > 0:
		if start < 0 || stop < start || stop > n {
			return nil, errors.Wrapf(ErrShape, "slice [%d:%d:%d] out of range for axis of length %d", start, stop, step, n)
		}
		length = (stop - start + step - 1) / step
	case step < 0:
		if stop < -1 || start < stop || start >= n {
			return nil, errors.Wrapf(ErrShape, "slice [%d:%d:%d] out of range for axis of length %d", start, stop, step, n)
		}
		length = (start - stop - step - 1) / -step
	default:
		return nil, errors.Wrap(ErrShape, "slice step cannot be zero")
	}

	shape := r.shape.Clone()
	strides := append([]int(nil), r.stride...)
	offset := r.offset
	if length > 0 {
		offset += start * r.stride[axis]
	}
	shape[axis] = length
	strides[axis] *= step
	return r.view(shape, strides, offset), nil
}

// Flip reverses the order of elements along axis.
func (r *RawTensor) Flip(axis int) (*RawTensor, error) {
	axis, err := NormalizeAxis(axis, r.NDim())
	if err != nil {
		return nil, err
	}
	n := r.shape[axis]
	if n == 0 {
		return r.view(r.shape.Clone(), append([]int(nil), r.stride...), r.offset), nil
	}
	return r.Slice(axis, n-1, -1, -1)
}

// Select fixes axis at index i and removes it from the view.
func (r *RawTensor) Select(axis, i int) (*RawTensor, error) {
	axis, err := NormalizeAxis(axis, r.NDim())
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= r.shape[axis] {
		return nil, errors.Wrapf(ErrShape, "index %d out of range for axis of length %d", i, r.shape[axis])
	}
	shape := slices.Delete(r.shape.Clone(), axis, axis+1)
	strides := slices.Delete(append([]int(nil), r.stride...), axis, axis+1)
	return r.view(shape, strides, r.offset+i*r.stride[axis]), nil
}

// Permute reorders dimensions according to axes. Supports negative axes.
// With no arguments the dimensions are reversed (matrix transpose for 2-D).
func (r *RawTensor) Permute(axes ...int) (*RawTensor, error) {
	ndim := r.NDim()
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		return nil, errors.Wrapf(ErrShape, "permute: got %d axes for %d dimensions", len(axes), ndim)
	}

	seen := make([]bool, ndim)
	shape := make(Shape, ndim)
	strides := make([]int, ndim)
	for i, ax := range axes {
		ax, err := NormalizeAxis(ax, ndim)
		if err != nil {
			return nil, err
		}
		if seen[ax] {
			return nil, errors.Wrapf(ErrShape, "permute: repeated axis %d", ax)
		}
		seen[ax] = true
		shape[i] = r.shape[ax]
		strides[i] = r.stride[ax]
	}
	return r.view(shape, strides, r.offset), nil
}

// BroadcastTo returns a read-only view of r with the given shape. Prepended
// and unit axes are given zero strides.
func (r *RawTensor) BroadcastTo(shape Shape) (*RawTensor, error) {
	if len(shape) < r.NDim() {
		return nil, errors.Wrapf(ErrShape, "cannot broadcast %v to lower rank %v", r.shape, shape)
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	lead := len(shape) - r.NDim()
	strides := make([]int, len(shape))
	for i := range shape {
		if i < lead {
			continue
		}
		dim := r.shape[i-lead]
		switch {
		case dim == shape[i]:
			strides[i] = r.stride[i-lead]
		case dim == 1:
			strides[i] = 0
		default:
			return nil, errors.Wrapf(ErrShape, "cannot broadcast %v to %v", r.shape, shape)
		}
	}
	v := r.view(shape.Clone(), strides, r.offset)
	if !r.shape.Equal(shape) {
		v.writable = false
	}
	return v, nil
}

// Reshape returns a view with a new shape. Only C-contiguous tensors can be reshaped.
func (r *RawTensor) Reshape(shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != r.NumElements() {
		return nil, errors.Wrapf(ErrShape, "cannot reshape %v into %v", r.shape, shape)
	}
	if !r.IsCContiguous() {
		return nil, errors.Wrapf(ErrShape, "reshape of a non-contiguous view %v", r.shape)
	}
	return r.view(shape.Clone(), shape.ComputeStrides(), r.offset), nil
}
