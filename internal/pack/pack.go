// Package pack marshals irregular per-call metadata (shapes, strides, index
// allocation ids, offsets) into device scratch and manages the lifetime of
// the staging and scratch buffers across asynchronous tasks.
//
// A packed buffer moves through three stages: a host staging allocation is
// filled on the caller's goroutine, copied asynchronously into a device
// scratch allocation, and consumed by a kernel. Staging is released by a host
// task ordered after every copy; scratch is released by a host task ordered
// after the consuming kernel. Nothing is freed on the submitting goroutine
// once a task that may read it has been submitted.
package pack

import (
	"runtime"

	"github.com/pkg/errors"

	"github.com/born-ml/dispatch/internal/queue"
	"github.com/born-ml/dispatch/internal/tensor"
)

const int64Size = 8

// Packed is a device scratch allocation holding int64 values.
type Packed struct {
	Alloc   *queue.Allocation
	Len     int
	Copied  *queue.Event
	staging *queue.Allocation
}

// DeviceAllocateAndPack concatenates parts into a host staging buffer and
// submits an asynchronous copy into a new device allocation. The copy waits
// for deps. The staging buffer stays alive until the caller schedules its
// release after Copied, normally through an Owner.
func DeviceAllocateAndPack(q *queue.Queue, deps []*queue.Event, parts ...[]int64) (*Packed, error) {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	ctx := q.Context()

	scratch, err := ctx.MallocDevice(n * int64Size)
	if err != nil {
		return nil, errors.Wrap(err, "allocate device scratch")
	}
	if n == 0 {
		return &Packed{Alloc: scratch, Copied: queue.Completed()}, nil
	}

	staging, err := ctx.MallocHost(n * int64Size)
	if err != nil {
		_ = scratch.Free()
		return nil, errors.Wrap(err, "allocate host staging")
	}
	host, err := tensor.View[int64](staging)
	if err != nil {
		_ = scratch.Free()
		_ = staging.Free()
		return nil, err
	}
	pos := 0
	for _, p := range parts {
		pos += copy(host[pos:], p)
	}

	copied, err := q.Copy(scratch, 0, staging, 0, n*int64Size, deps)
	if err != nil {
		_ = scratch.Free()
		_ = staging.Free()
		return nil, err
	}
	q.Logger().Debug("pack", "scratch", scratch.ID(), "staging", staging.ID(), "values", n)
	return &Packed{Alloc: scratch, Len: n, Copied: copied, staging: staging}, nil
}

// Owner tracks the packed buffers of one call. It is not safe for concurrent use.
type Owner struct {
	q      *queue.Queue
	packed []*Packed
}

// NewOwner creates an empty owner for call-scoped buffers on q.
func NewOwner(q *queue.Queue) *Owner {
	return &Owner{q: q}
}

// Pack stages parts into a new scratch buffer owned by o.
func (o *Owner) Pack(deps []*queue.Event, parts ...[]int64) (*queue.Allocation, error) {
	p, err := DeviceAllocateAndPack(o.q, deps, parts...)
	if err != nil {
		return nil, err
	}
	o.packed = append(o.packed, p)
	return p.Alloc, nil
}

// Copies returns the copy events of every packed buffer.
func (o *Owner) Copies() []*queue.Event {
	evs := make([]*queue.Event, 0, len(o.packed))
	for _, p := range o.packed {
		evs = append(evs, p.Copied)
	}
	return evs
}

// DependsOn returns the copy events followed by deps: the full dependency
// set of a kernel consuming the packed buffers.
func (o *Owner) DependsOn(deps []*queue.Event) []*queue.Event {
	return append(o.Copies(), deps...)
}

func (o *Owner) staging() []*queue.Allocation {
	var allocs []*queue.Allocation
	for _, p := range o.packed {
		if p.staging != nil {
			allocs = append(allocs, p.staging)
		}
	}
	return allocs
}

func (o *Owner) scratch() []*queue.Allocation {
	allocs := make([]*queue.Allocation, 0, len(o.packed))
	for _, p := range o.packed {
		allocs = append(allocs, p.Alloc)
	}
	return allocs
}

// ReleaseStaging schedules the release of every staging buffer once all
// copies have completed.
func (o *Owner) ReleaseStaging() *queue.Event {
	return AsyncSmartFree(o.q, o.Copies(), o.staging()...)
}

// ReleaseAfter schedules the release of every scratch buffer once compute
// has completed.
func (o *Owner) ReleaseAfter(compute *queue.Event) *queue.Event {
	return AsyncSmartFree(o.q, []*queue.Event{compute}, o.scratch()...)
}

// Abort releases everything o owns once the copies already submitted finish.
// It is used when a call fails after packing started.
func (o *Owner) Abort() *queue.Event {
	return AsyncSmartFree(o.q, o.Copies(), append(o.staging(), o.scratch()...)...)
}

// AsyncSmartFree releases allocs after every event in deps has completed,
// without blocking the caller. A failed dependency does not prevent the release.
func AsyncSmartFree(q *queue.Queue, deps []*queue.Event, allocs ...*queue.Allocation) *queue.Event {
	if len(allocs) == 0 {
		return queue.Completed()
	}
	return q.FreeAsync(deps, allocs...)
}

// KeepArgsAlive returns an event that fires after deps, holding references to
// args until then. Callers treat it as the point after which the arguments of
// a call may be reused or dropped.
func KeepArgsAlive(q *queue.Queue, deps []*queue.Event, args ...any) *queue.Event {
	return q.HostTask("keep_args_alive", deps, func() error {
		runtime.KeepAlive(args)
		return nil
	})
}
