package queue

import (
	"go.uber.org/multierr"
)

// Event is a completion handle. It is signaled exactly once, when the task it
// tracks has finished, and can be used as a dependency of later submissions.
type Event struct {
	name string
	done chan struct{}
	err  error
}

func newEvent(name string) *Event {
	return &Event{name: name, done: make(chan struct{})}
}

var completed = func() *Event {
	ev := newEvent("completed")
	close(ev.done)
	return ev
}()

// Completed returns an already signaled event.
func Completed() *Event {
	return completed
}

func (e *Event) signal(err error) {
	e.err = err
	close(e.done)
}

// Name returns the name of the task tracked by the event.
func (e *Event) Name() string {
	return e.name
}

// Done returns a channel closed once the event is signaled.
func (e *Event) Done() <-chan struct{} {
	return e.done
}

// IsComplete reports whether the event has been signaled, without blocking.
func (e *Event) IsComplete() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the event is signaled and returns the task error.
func (e *Event) Wait() error {
	<-e.done
	return e.err
}

// Err returns the task error once signaled, nil before.
func (e *Event) Err() error {
	if !e.IsComplete() {
		return nil
	}
	return e.err
}

// WaitAll waits for every event and combines their errors. Nil events are ignored.
func WaitAll(events ...*Event) error {
	var err error
	for _, ev := range events {
		if ev == nil {
			continue
		}
		err = multierr.Append(err, ev.Wait())
	}
	return err
}
