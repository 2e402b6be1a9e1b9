package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/semaphore"

	"github.com/born-ml/dispatch/internal/parallel"
)

// Queue schedules tasks against a Context. Submissions never block the caller:
// each task waits for its dependencies on its own goroutine and runs once all
// of them are signaled. Tasks without a dependency path between them are unordered.
type Queue struct {
	ctx    *Context
	cfg    Config
	logger *slog.Logger
	sem    *semaphore.Weighted

	inflight  sync.WaitGroup
	submitted atomic.Int64
}

// New creates a queue bound to ctx.
func New(ctx *Context, cfg Config) *Queue {
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		ctx:    ctx,
		cfg:    cfg,
		logger: logger.With("queue", ctx.id.String()),
		sem:    semaphore.NewWeighted(int64(cfg.MaxInFlight)),
	}
}

// NewDefault creates a queue with a fresh context and the default configuration.
func NewDefault() *Queue {
	return New(NewContext(), DefaultConfig())
}

// Context returns the allocation context of the queue.
func (q *Queue) Context() *Context {
	return q.ctx
}

// Config returns the queue configuration.
func (q *Queue) Config() Config {
	return q.cfg
}

// Parallel returns the chunking configuration kernels should use.
func (q *Queue) Parallel() parallel.Config {
	return q.cfg.Parallel
}

// Logger returns the queue logger.
func (q *Queue) Logger() *slog.Logger {
	return q.logger
}

// Submitted returns the number of tasks ever submitted to the queue.
func (q *Queue) Submitted() int64 {
	return q.submitted.Load()
}

// Submit enqueues a compute task that runs fn once every dependency is signaled.
// If a dependency failed, fn is not run and the returned event carries the failure.
func (q *Queue) Submit(name string, deps []*Event, fn func() error) *Event {
	return q.enqueue(name, deps, fn, true)
}

// HostTask enqueues a host-side task, typically a cleanup callback. Host tasks
// are not throttled by MaxInFlight.
func (q *Queue) HostTask(name string, deps []*Event, fn func() error) *Event {
	return q.enqueue(name, deps, fn, false)
}

func (q *Queue) enqueue(name string, deps []*Event, fn func() error, throttled bool) *Event {
	ev := newEvent(name)
	pending := make([]*Event, 0, len(deps))
	for _, d := range deps {
		if d != nil && d != completed {
			pending = append(pending, d)
		}
	}
	q.inflight.Add(1)
	q.submitted.Add(1)
	q.logger.Debug("submit", "task", name, "deps", len(pending))
	go q.run(ev, pending, fn, throttled)
	return ev
}

func (q *Queue) run(ev *Event, deps []*Event, fn func() error, throttled bool) {
	defer q.inflight.Done()

	var depErr error
	for _, d := range deps {
		depErr = multierr.Append(depErr, d.Wait())
	}
	if depErr != nil {
		err := errors.Wrapf(depErr, "%s: dependency failed", ev.name)
		q.logger.Error("task skipped", "task", ev.name, "err", err)
		ev.signal(err)
		return
	}

	if throttled {
		// Acquire only fails on context cancellation, which never happens here.
		_ = q.sem.Acquire(context.Background(), 1)
		defer q.sem.Release(1)
	}
	err := call(fn)
	if err != nil {
		q.logger.Error("task failed", "task", ev.name, "err", err)
	} else {
		q.logger.Debug("complete", "task", ev.name)
	}
	ev.signal(err)
}

func call(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("task panicked: %v", r)
		}
	}()
	return fn()
}

// Copy asynchronously copies nbytes from src to dst once deps are signaled.
// Bounds and context membership are checked before submission.
func (q *Queue) Copy(dst *Allocation, dstOff int, src *Allocation, srcOff int, nbytes int, deps []*Event) (*Event, error) {
	if dst.ctx != q.ctx || src.ctx != q.ctx {
		return nil, errors.Errorf("copy between allocations of a different context")
	}
	if nbytes < 0 || dstOff < 0 || srcOff < 0 || dstOff+nbytes > dst.size || srcOff+nbytes > src.size {
		return nil, errors.Errorf("copy of %d bytes out of bounds (dst %d+%d/%d, src %d+%d/%d)",
			nbytes, dstOff, nbytes, dst.size, srcOff, nbytes, src.size)
	}
	name := fmt.Sprintf("copy[%d->%d]", src.id, dst.id)
	return q.Submit(name, deps, func() error {
		s, err := src.Bytes()
		if err != nil {
			return err
		}
		d, err := dst.Bytes()
		if err != nil {
			return err
		}
		copy(d[dstOff:dstOff+nbytes], s[srcOff:srcOff+nbytes])
		return nil
	}), nil
}

// FreeAsync releases allocations once deps are signaled, without blocking the caller.
// The allocations are released even if a dependency failed.
func (q *Queue) FreeAsync(deps []*Event, allocs ...*Allocation) *Event {
	pending := append([]*Event(nil), deps...)
	// Deps are awaited inside the task: a failed producer still releases its memory.
	return q.HostTask("free", nil, func() error {
		_ = WaitAll(pending...)
		var err error
		for _, a := range allocs {
			if a == nil {
				continue
			}
			err = multierr.Append(err, a.Free())
			q.logger.Debug("free", "allocation", a.id, "kind", a.kind.String(), "bytes", a.size)
		}
		return err
	})
}

// Wait blocks until every task submitted so far has completed.
func (q *Queue) Wait() {
	q.inflight.Wait()
}
