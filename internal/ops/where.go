package ops

import (
	"github.com/pkg/errors"

	"github.com/born-ml/dispatch/internal/queue"
	"github.com/born-ml/dispatch/internal/tensor"
	"github.com/born-ml/dispatch/internal/validate"
)

// Where computes dst = cond ? x1 : x2 elementwise once deps complete. cond,
// x1 and x2 are broadcast to the shape of dst. x1, x2 and dst share one type;
// cond may have any type and is tested against zero.
func Where(q *queue.Queue, cond, x1, x2, dst *tensor.RawTensor, deps []*queue.Event) (*queue.Event, *queue.Event, error) {
	const name = "where"
	if err := validate.Writable(name, dst); err != nil {
		return nil, nil, err
	}
	if err := validate.SameType(name, x1.DType(), x2, dst); err != nil {
		return nil, nil, err
	}
	entry, err := whereTable.Lookup(x1.DType(), cond.DType())
	if err != nil {
		return nil, nil, err
	}
	shape, _, err := tensor.BroadcastShapes(x1.Shape(), x2.Shape())
	if err != nil {
		return nil, nil, errors.Wrap(err, name)
	}
	if shape, _, err = tensor.BroadcastShapes(cond.Shape(), shape); err != nil {
		return nil, nil, errors.Wrap(err, name)
	}
	if err := validate.SameShape(name, shape, dst); err != nil {
		return nil, nil, err
	}
	views, err := broadcastOperands(name, dst.Shape(), cond, x1, x2)
	if err != nil {
		return nil, nil, err
	}
	c, a, b := views[0], views[1], views[2]
	n := dst.NumElements()
	if n == 0 {
		return noop(q, name)
	}
	if err := validate.ContextsCompatible(name, q, cond, x1, x2, dst); err != nil {
		return nil, nil, err
	}
	if err := validate.NoOverlapExceptIdentical(name, dst, c, a, b); err != nil {
		return nil, nil, err
	}
	if err := validate.AmpleMemory(name, dst, n); err != nil {
		return nil, nil, err
	}

	simple, strides := tensor.SimplifyIterationSpace(dst.Shape(), c.Strides(), a.Strides(), b.Strides(), dst.Strides())
	if sameLayoutContiguous(c, a, b, dst) || contiguousAfterSimplify(simple, strides) {
		q.Logger().Debug("dispatch", "op", name, "path", "contig", "dst", dst)
		compute := entry.Contig(q, n, c.Allocation(), a.Allocation(), b.Allocation(), dst.Allocation(),
			c.Offset(), a.Offset(), b.Offset(), dst.Offset(), deps)
		return finish(q, compute, cond, x1, x2, dst)
	}
	q.Logger().Debug("dispatch", "op", name, "path", "strided", "nd", len(simple), "dst", dst)
	return launchPacked(q, deps, shapeStridesParts(simple, strides), func(packed *queue.Allocation, deps []*queue.Event) *queue.Event {
		return entry.Strided(q, n, len(simple), packed, c.Allocation(), a.Allocation(), b.Allocation(), dst.Allocation(),
			c.Offset(), a.Offset(), b.Offset(), dst.Offset(), deps)
	}, cond, x1, x2, dst)
}
