// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package queue exposes the execution context that tensor operations are
// submitted to.
//
// A Context owns allocations. A Queue is bound to one Context and runs
// submitted tasks asynchronously, ordering them only through the Events
// passed as dependencies.
//
// Example:
//
//	q := queue.NewDefault()
//	reuse, compute, err := tensor.Abs(q, x, y, nil)
//	if err != nil {
//	    return err
//	}
//	if err := compute.Wait(); err != nil {
//	    return err
//	}
//	_ = reuse // x and y may be reused once reuse fires
package queue

import (
	"github.com/born-ml/dispatch/internal/parallel"
	"github.com/born-ml/dispatch/internal/queue"
)

// Queue schedules tasks against a Context.
type Queue = queue.Queue

// Context is an allocation context.
type Context = queue.Context

// Event is a completion handle.
type Event = queue.Event

// Allocation is a block of memory owned by a Context.
type Allocation = queue.Allocation

// Kind describes where an allocation lives.
type Kind = queue.Kind

// Allocation kinds.
const (
	Device = queue.Device
	Shared = queue.Shared
	Host   = queue.Host
)

// Config controls how a queue schedules tasks.
type Config = queue.Config

// ParallelConfig controls chunking inside kernel bodies.
type ParallelConfig = parallel.Config

// Features lists the CPU vector extensions of the host.
type Features = queue.Features

// Stats is a snapshot of a context's allocation counters.
type Stats = queue.Stats

// Allocation errors.
var (
	ErrFreed             = queue.ErrFreed
	ErrUnknownAllocation = queue.ErrUnknownAllocation
)

// New creates a queue bound to ctx.
func New(ctx *Context, cfg Config) *Queue {
	return queue.New(ctx, cfg)
}

// NewDefault creates a queue with a fresh context and the default configuration.
func NewDefault() *Queue {
	return queue.NewDefault()
}

// NewContext creates a new allocation context.
func NewContext() *Context {
	return queue.NewContext()
}

// DefaultConfig returns defaults derived from the host CPU.
func DefaultConfig() Config {
	return queue.DefaultConfig()
}

// DetectFeatures probes the running CPU.
func DetectFeatures() Features {
	return queue.DetectFeatures()
}

// Completed returns an event that is already signaled.
func Completed() *Event {
	return queue.Completed()
}

// WaitAll waits for every event and returns their combined errors.
func WaitAll(events ...*Event) error {
	return queue.WaitAll(events...)
}
