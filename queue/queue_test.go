// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package queue_test

import (
	"testing"

	"github.com/born-ml/dispatch/queue"
)

func TestSharedContext(t *testing.T) {
	ctx := queue.NewContext()
	q1 := queue.New(ctx, queue.DefaultConfig())
	q2 := queue.New(ctx, queue.DefaultConfig())
	if q1.Context() != q2.Context() {
		t.Fatal("queues on one context report different contexts")
	}

	a, err := ctx.MallocShared(64)
	if err != nil {
		t.Fatalf("MallocShared failed: %v", err)
	}
	ev := q2.FreeAsync([]*queue.Event{queue.Completed()}, a)
	if err := queue.WaitAll(ev); err != nil {
		t.Fatalf("WaitAll failed: %v", err)
	}
	if !a.IsFreed() {
		t.Error("allocation still live after FreeAsync")
	}
	if got := ctx.Stats().Live(queue.Shared); got != 0 {
		t.Errorf("Live(Shared) = %d, want 0", got)
	}
}
