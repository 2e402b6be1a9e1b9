package ops

import (
	"github.com/pkg/errors"

	"github.com/born-ml/dispatch/internal/queue"
	"github.com/born-ml/dispatch/internal/tensor"
	"github.com/born-ml/dispatch/internal/validate"
)

// Sort stably sorts src along its last trailing axes, treated as one
// flattened axis, and writes the result to dst. Both arrays must be
// C-contiguous; dst may be src itself. NaN sorts after every number when
// ascending and before every number when descending.
func Sort(q *queue.Queue, src, dst *tensor.RawTensor, trailing int, descending bool,
	deps []*queue.Event) (*queue.Event, *queue.Event, error) {
	v := sortAscendingVector
	if descending {
		v = sortDescendingVector
	}
	name := v.Name()
	if err := validate.Writable(name, dst); err != nil {
		return nil, nil, err
	}
	nd := src.NDim()
	if trailing < 0 || trailing > nd {
		return nil, nil, errors.Wrapf(tensor.ErrShape, "%s: %d trailing axes for %d dimensions", name, trailing, nd)
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
	if !src.IsCContiguous() || !dst.IsCContiguous() {
		return nil, nil, errors.Wrapf(tensor.ErrShape, "%s: arrays must be C-contiguous", name)
	}
	shape := src.Shape()
	iterN := shape[:nd-trailing].NumElements()
	sortN := shape[nd-trailing:].NumElements()
	if iterN*sortN == 0 {
		return noop(q, name)
	}
	if err := validate.ContextsCompatible(name, q, src, dst); err != nil {
		return nil, nil, err
	}
	if err := validate.NoOverlapExceptIdentical(name, dst, src); err != nil {
		return nil, nil, err
	}
	if err := validate.AmpleMemory(name, dst, iterN*sortN); err != nil {
		return nil, nil, err
	}

	q.Logger().Debug("dispatch", "op", name, "rows", iterN, "row_len", sortN, "src", src, "dst", dst)
	compute := fn(q, iterN, sortN, src.Allocation(), dst.Allocation(), src.Offset(), dst.Offset(), deps)
	return finish(q, compute, src, dst)
}
