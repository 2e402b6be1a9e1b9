package ops

import (
	"github.com/born-ml/dispatch/internal/queue"
	"github.com/born-ml/dispatch/internal/tensor"
	"github.com/born-ml/dispatch/internal/validate"
)

// Astype copies src into dst converting every element to the type of dst.
// src is broadcast to the shape of dst.
func Astype(q *queue.Queue, src, dst *tensor.RawTensor, deps []*queue.Event) (*queue.Event, *queue.Event, error) {
	const name = "astype"
	if err := validate.Writable(name, dst); err != nil {
		return nil, nil, err
	}
	entry, err := castTable.Lookup(src.DType(), dst.DType())
	if err != nil {
		return nil, nil, err
	}
	views, err := broadcastOperands(name, dst.Shape(), src)
	if err != nil {
		return nil, nil, err
	}
	s := views[0]
	n := dst.NumElements()
	if n == 0 {
		return noop(q, name)
	}
	if err := validate.ContextsCompatible(name, q, src, dst); err != nil {
		return nil, nil, err
	}
	if err := validate.NoOverlapExceptIdentical(name, dst, s); err != nil {
		return nil, nil, err
	}
	if err := validate.AmpleMemory(name, dst, n); err != nil {
		return nil, nil, err
	}

	simple, strides := tensor.SimplifyIterationSpace(dst.Shape(), s.Strides(), dst.Strides())
	if sameLayoutContiguous(s, dst) || contiguousAfterSimplify(simple, strides) {
		q.Logger().Debug("dispatch", "op", name, "path", "contig", "src", s, "dst", dst)
		compute := entry.Contig(q, n, s.Allocation(), dst.Allocation(), s.Offset(), dst.Offset(), deps)
		return finish(q, compute, src, dst)
	}
	q.Logger().Debug("dispatch", "op", name, "path", "strided", "nd", len(simple), "src", s, "dst", dst)
	return launchPacked(q, deps, shapeStridesParts(simple, strides), func(packed *queue.Allocation, deps []*queue.Event) *queue.Event {
		return entry.Strided(q, n, len(simple), packed, s.Allocation(), dst.Allocation(), s.Offset(), dst.Offset(), deps)
	}, src, dst)
}
