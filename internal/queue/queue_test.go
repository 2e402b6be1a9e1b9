package queue

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletedEvent(t *testing.T) {
	ev := Completed()
	assert.True(t, ev.IsComplete())
	assert.NoError(t, ev.Wait())
	assert.NoError(t, ev.Err())
}

func TestSubmit_RunsAfterDependencies(t *testing.T) {
	q := NewDefault()

	release := make(chan struct{})
	var order []string
	var step atomic.Int32

	first := q.Submit("first", nil, func() error {
		<-release
		order = append(order, "first")
		step.Add(1)
		return nil
	})
	second := q.Submit("second", []*Event{first}, func() error {
		if step.Load() != 1 {
			return errors.New("second ran before first")
		}
		order = append(order, "second")
		return nil
	})

	// Submission must not block even though first cannot finish yet.
	assert.False(t, first.IsComplete())
	assert.False(t, second.IsComplete())

	close(release)
	require.NoError(t, second.Wait())
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestSubmit_DependencyFailurePropagates(t *testing.T) {
	q := NewDefault()

	boom := errors.New("boom")
	failed := q.Submit("failing", nil, func() error { return boom })

	ran := false
	dependent := q.Submit("dependent", []*Event{failed}, func() error {
		ran = true
		return nil
	})

	err := dependent.Wait()
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.False(t, ran)
}

func TestSubmit_PanicBecomesError(t *testing.T) {
	q := NewDefault()
	ev := q.Submit("panics", nil, func() error {
		var s []int
		_ = s[3]
		return nil
	})
	assert.Error(t, ev.Wait())
}

func TestQueue_MaxInFlight(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxInFlight = 2
	q := New(NewContext(), cfg)

	var running, peak atomic.Int32
	events := make([]*Event, 8)
	for i := range events {
		events[i] = q.Submit("busy", nil, func() error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return nil
		})
	}
	require.NoError(t, WaitAll(events...))
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestCopy(t *testing.T) {
	q := NewDefault()
	ctx := q.Context()

	src, err := ctx.MallocHost(16)
	require.NoError(t, err)
	dst, err := ctx.MallocDevice(16)
	require.NoError(t, err)

	b, err := src.Bytes()
	require.NoError(t, err)
	for i := range b {
		b[i] = byte(i)
	}

	ev, err := q.Copy(dst, 4, src, 0, 8, nil)
	require.NoError(t, err)
	require.NoError(t, ev.Wait())

	d, err := dst.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 1, 2, 3, 4, 5, 6, 7, 0, 0, 0, 0}, d)
}

func TestCopy_OutOfBounds(t *testing.T) {
	q := NewDefault()
	src, _ := q.Context().MallocHost(8)
	dst, _ := q.Context().MallocDevice(8)

	_, err := q.Copy(dst, 4, src, 0, 8, nil)
	assert.Error(t, err)
}

func TestCopy_OtherContext(t *testing.T) {
	q := NewDefault()
	src, _ := NewContext().MallocHost(8)
	dst, _ := q.Context().MallocDevice(8)

	_, err := q.Copy(dst, 0, src, 0, 8, nil)
	assert.Error(t, err)
}

func TestFreeAsync_WaitsForDependencies(t *testing.T) {
	q := NewDefault()
	ctx := q.Context()

	a, err := ctx.MallocDevice(64)
	require.NoError(t, err)

	release := make(chan struct{})
	user := q.Submit("user", nil, func() error {
		<-release
		_, err := a.Bytes()
		return err
	})
	freed := q.FreeAsync([]*Event{user}, a)

	assert.False(t, a.IsFreed())
	close(release)

	require.NoError(t, user.Wait())
	require.NoError(t, freed.Wait())
	assert.True(t, a.IsFreed())
	assert.Equal(t, int64(0), ctx.Stats().Live(Device))
}

func TestFreeAsync_ReleasesAfterFailedDependency(t *testing.T) {
	q := NewDefault()
	a, _ := q.Context().MallocDevice(8)

	failed := q.Submit("failing", nil, func() error { return errors.New("kernel failed") })
	freed := q.FreeAsync([]*Event{failed}, a)

	require.NoError(t, freed.Wait())
	assert.True(t, a.IsFreed())
}

func TestWait(t *testing.T) {
	q := NewDefault()
	var n atomic.Int32
	for range 10 {
		q.Submit("count", nil, func() error {
			n.Add(1)
			return nil
		})
	}
	q.Wait()
	assert.Equal(t, int32(10), n.Load())
	assert.Equal(t, int64(10), q.Submitted())
}

func TestWaitAll_CombinesErrors(t *testing.T) {
	q := NewDefault()
	e1 := q.Submit("a", nil, func() error { return errors.New("a failed") })
	e2 := q.Submit("b", nil, func() error { return errors.New("b failed") })

	err := WaitAll(e1, nil, e2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a failed")
	assert.Contains(t, err.Error(), "b failed")
}
