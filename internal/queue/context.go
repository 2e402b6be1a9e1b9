// Package queue implements the execution context the dispatch core submits work to:
// allocation contexts, device allocations, completion events and asynchronous queues.
package queue

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Stats is a snapshot of a context's allocation counters.
type Stats struct {
	Allocated [numKinds]int64 // Allocations ever made, per kind.
	Freed     [numKinds]int64 // Allocations released, per kind.
	LiveBytes int64
}

// Live returns the number of allocations of a kind that have not been freed.
func (s Stats) Live(k Kind) int64 {
	return s.Allocated[k] - s.Freed[k]
}

// TotalLive returns the number of allocations of any kind still alive.
func (s Stats) TotalLive() int64 {
	var n int64
	for k := Kind(0); k < numKinds; k++ {
		n += s.Live(k)
	}
	return n
}

// Context is an allocation context. Memory allocated in a context may only be
// used by queues bound to the same context.
type Context struct {
	id       uuid.UUID
	features Features

	allocs sync.Map // uint64 -> *Allocation

	allocated [numKinds]atomic.Int64
	freed     [numKinds]atomic.Int64
	liveBytes atomic.Int64
}

// NewContext creates a new allocation context.
func NewContext() *Context {
	return &Context{
		id:       uuid.New(),
		features: DetectFeatures(),
	}
}

// ID returns the unique identity of the context.
func (c *Context) ID() uuid.UUID {
	return c.id
}

// Features returns the CPU features detected when the context was created.
func (c *Context) Features() Features {
	return c.features
}

// Malloc allocates nbytes of memory of the given kind.
func (c *Context) Malloc(kind Kind, nbytes int) (*Allocation, error) {
	if nbytes < 0 {
		return nil, errors.Errorf("cannot allocate %d bytes", nbytes)
	}
	if kind < 0 || kind >= numKinds {
		return nil, errors.Errorf("invalid allocation kind %d", kind)
	}
	a := newAllocation(c, kind, nbytes)
	c.allocs.Store(a.id, a)
	c.allocated[kind].Add(1)
	c.liveBytes.Add(int64(nbytes))
	return a, nil
}

// MallocDevice allocates device memory.
func (c *Context) MallocDevice(nbytes int) (*Allocation, error) {
	return c.Malloc(Device, nbytes)
}

// MallocShared allocates memory accessible from host and device.
func (c *Context) MallocShared(nbytes int) (*Allocation, error) {
	return c.Malloc(Shared, nbytes)
}

// MallocHost allocates host staging memory.
func (c *Context) MallocHost(nbytes int) (*Allocation, error) {
	return c.Malloc(Host, nbytes)
}

// Lookup resolves an allocation id. It fails for ids of other contexts and
// for freed allocations.
func (c *Context) Lookup(id uint64) (*Allocation, error) {
	v, ok := c.allocs.Load(id)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownAllocation, "id %d in context %s", id, c.id)
	}
	return v.(*Allocation), nil
}

// Stats returns a snapshot of the allocation counters.
func (c *Context) Stats() Stats {
	var s Stats
	for k := Kind(0); k < numKinds; k++ {
		s.Allocated[k] = c.allocated[k].Load()
		s.Freed[k] = c.freed[k].Load()
	}
	s.LiveBytes = c.liveBytes.Load()
	return s
}

func (c *Context) release(a *Allocation) {
	c.allocs.Delete(a.id)
	c.freed[a.kind].Add(1)
	c.liveBytes.Add(-int64(a.size))
}
