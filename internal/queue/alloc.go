package queue

import (
	"sync/atomic"
	"unsafe"

	"github.com/pkg/errors"
)

// Kind describes where an allocation lives and who may touch it.
type Kind int

// Allocation kinds.
const (
	// Device memory is only read or written by tasks running on a queue.
	Device Kind = iota
	// Shared memory may be accessed by both the host and queue tasks.
	Shared
	// Host memory is page-locked staging memory used for transfers.
	Host

	numKinds
)

// String returns a human-readable allocation kind.
func (k Kind) String() string {
	switch k {
	case Device:
		return "device"
	case Shared:
		return "shared"
	case Host:
		return "host"
	default:
		return "unknown"
	}
}

var (
	// ErrFreed is returned when a released allocation is accessed.
	ErrFreed = errors.New("allocation has been freed")
	// ErrUnknownAllocation is returned when an allocation id does not resolve in a context.
	ErrUnknownAllocation = errors.New("unknown allocation")
)

// allocationIDs is shared by every context so that ids are unique process-wide.
var allocationIDs atomic.Uint64

// Allocation is a block of memory owned by a Context.
// The backing store is 8-byte aligned so any element type can be viewed over it.
type Allocation struct {
	id   uint64
	ctx  *Context
	kind Kind
	size int
	data atomic.Pointer[[]byte]
}

func newAllocation(ctx *Context, kind Kind, size int) *Allocation {
	a := &Allocation{
		id:   allocationIDs.Add(1),
		ctx:  ctx,
		kind: kind,
		size: size,
	}
	var buf []byte
	if size > 0 {
		words := make([]uint64, (size+7)/8)
		//nolint:gosec // unsafe.Slice reinterprets the aligned word store as bytes
		buf = unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), size)
	} else {
		buf = []byte{}
	}
	a.data.Store(&buf)
	return a
}

// ID returns the process-wide unique id of the allocation.
// Packed argument arrays carry ids in place of raw pointers.
func (a *Allocation) ID() uint64 {
	return a.id
}

// Context returns the allocation context that owns the memory.
func (a *Allocation) Context() *Context {
	return a.ctx
}

// Kind returns the allocation kind.
func (a *Allocation) Kind() Kind {
	return a.kind
}

// Size returns the allocation size in bytes.
func (a *Allocation) Size() int {
	return a.size
}

// IsFreed reports whether Free has been called.
func (a *Allocation) IsFreed() bool {
	return a.data.Load() == nil
}

// Bytes returns the raw memory of the allocation.
// WARNING: Direct access to underlying memory. Host code must only touch
// Shared or Host allocations, or Device allocations whose producers completed.
func (a *Allocation) Bytes() ([]byte, error) {
	p := a.data.Load()
	if p == nil {
		return nil, errors.Wrapf(ErrFreed, "allocation %d", a.id)
	}
	return *p, nil
}

// Free releases the allocation. Freeing twice is an error.
func (a *Allocation) Free() error {
	if a.data.Swap(nil) == nil {
		return errors.Wrapf(ErrFreed, "double free of allocation %d", a.id)
	}
	a.ctx.release(a)
	return nil
}
