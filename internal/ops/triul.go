package ops

import (
	"github.com/pkg/errors"

	"github.com/born-ml/dispatch/internal/dispatch"
	"github.com/born-ml/dispatch/internal/kernels"
	"github.com/born-ml/dispatch/internal/queue"
	"github.com/born-ml/dispatch/internal/tensor"
	"github.com/born-ml/dispatch/internal/validate"
)

// Triu copies the upper triangle of every trailing matrix of src into dst,
// keeping element (r, c) when c-r >= k, and zeroes the rest.
func Triu(q *queue.Queue, src, dst *tensor.RawTensor, k int, deps []*queue.Event) (*queue.Event, *queue.Event, error) {
	return triul(q, triuVector, src, dst, k, deps)
}

// Tril copies the lower triangle of every trailing matrix of src into dst,
// keeping element (r, c) when c-r <= k, and zeroes the rest.
func Tril(q *queue.Queue, src, dst *tensor.RawTensor, k int, deps []*queue.Event) (*queue.Event, *queue.Event, error) {
	return triul(q, trilVector, src, dst, k, deps)
}

// triul does not simplify the iteration space: the two trailing axes carry
// the row and column of each element.
func triul(q *queue.Queue, v *dispatch.Vector[kernels.TriulFn], src, dst *tensor.RawTensor, k int,
	deps []*queue.Event) (*queue.Event, *queue.Event, error) {
	name := v.Name()
	if err := validate.Writable(name, dst); err != nil {
		return nil, nil, err
	}
	if src.NDim() < 2 {
		return nil, nil, errors.Wrapf(tensor.ErrShape, "%s: array must be at least 2-d, got %v", name, src.Shape())
	}
	fn, err := v.Lookup(src.DType())
	if err != nil {
		return nil, nil, err
	}
	if err := validate.SameType(name, src.DType(), dst); err != nil {
		return nil, nil, err
	}
	if err := validate.SameShape(name, src.Shape(), dst); err != nil {
		return nil, nil, err
	}
	n := dst.NumElements()
	if n == 0 {
		return noop(q, name)
	}
	if err := validate.ContextsCompatible(name, q, src, dst); err != nil {
		return nil, nil, err
	}
	if err := validate.NoOverlap(name, dst, src); err != nil {
		return nil, nil, err
	}
	if err := validate.AmpleMemory(name, dst, n); err != nil {
		return nil, nil, err
	}

	nd := src.NDim()
	q.Logger().Debug("dispatch", "op", name, "k", k, "src", src, "dst", dst)
	parts := shapeStridesParts(src.Shape(), [][]int{src.Strides(), dst.Strides()})
	return launchPacked(q, deps, parts, func(packed *queue.Allocation, deps []*queue.Event) *queue.Event {
		return fn(q, n, nd, packed, src.Allocation(), dst.Allocation(), src.Offset(), dst.Offset(), k, deps)
	}, src, dst)
}
