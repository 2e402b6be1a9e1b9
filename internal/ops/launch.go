package ops

import (
	"github.com/born-ml/dispatch/internal/pack"
	"github.com/born-ml/dispatch/internal/queue"
	"github.com/born-ml/dispatch/internal/tensor"
)

func toInt64s[S ~[]int](s S) []int64 {
	out := make([]int64, len(s))
	for i, v := range s {
		out[i] = int64(v)
	}
	return out
}

// noop returns the event pair of a call that has nothing to do.
func noop(q *queue.Queue, op string) (*queue.Event, *queue.Event, error) {
	q.Logger().Debug("zero-size no-op", "op", op)
	return queue.Completed(), queue.Completed(), nil
}

// finish returns the reuse and compute events of a submitted call.
func finish(q *queue.Queue, compute *queue.Event, args ...any) (*queue.Event, *queue.Event, error) {
	return pack.KeepArgsAlive(q, []*queue.Event{compute}, args...), compute, nil
}

// launchPacked stages parts into one scratch buffer, submits the kernel built
// by launch after the staging copy and deps, and schedules every release.
func launchPacked(q *queue.Queue, deps []*queue.Event, parts [][]int64,
	launch func(packed *queue.Allocation, deps []*queue.Event) *queue.Event, args ...any) (*queue.Event, *queue.Event, error) {
	o := pack.NewOwner(q)
	packed, err := o.Pack(nil, parts...)
	if err != nil {
		return nil, nil, err
	}
	o.ReleaseStaging()
	compute := launch(packed, o.DependsOn(deps))
	o.ReleaseAfter(compute)
	return finish(q, compute, args...)
}

// shapeStridesParts lays out shape followed by each strides array.
func shapeStridesParts(shape tensor.Shape, strides [][]int) [][]int64 {
	parts := make([][]int64, 0, len(strides)+1)
	parts = append(parts, toInt64s(shape))
	for _, s := range strides {
		parts = append(parts, toInt64s(s))
	}
	return parts
}

// contiguousAfterSimplify reports whether a simplified space is a single run
// of unit-stride elements in every array.
func contiguousAfterSimplify(shape tensor.Shape, strides [][]int) bool {
	if len(shape) == 0 {
		return true
	}
	if len(shape) != 1 {
		return false
	}
	for _, s := range strides {
		if s[0] != 1 {
			return false
		}
	}
	return true
}

// sameLayoutContiguous reports whether every tensor is C-contiguous, or every
// tensor is F-contiguous, so that flat element i maps to element i of each.
func sameLayoutContiguous(ts ...*tensor.RawTensor) bool {
	c, f := true, true
	for _, t := range ts {
		c = c && t.IsCContiguous()
		f = f && t.IsFContiguous()
	}
	return c || f
}
