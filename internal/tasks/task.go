package tasks

import "context"

// Task describes one unit of background work and its two possible outcomes.
//
// Key is the logical identity of the work (e.g. "load_debits") used for
// per-key serialization, not for uniqueness of the result. Work runs on a
// pool worker and may block; OnSuccess and OnError are invoked later on the
// goroutine that drains the scheduler's completion queue, never on a worker.
//
// A Task is created per submission and discarded after its single completion
// is dispatched.
type Task struct {
	Key       string
	Work      func(ctx context.Context) (any, error)
	OnSuccess func(value any)
	OnError   func(err error)
}

// Completion is one finished task waiting to be delivered. Completions leave
// the scheduler in the order the tasks finished.
type Completion struct {
	key       string
	id        string
	value     any
	err       error
	onSuccess func(any)
	onError   func(error)
}

// Key returns the logical key of the task that produced this completion.
func (c Completion) Key() string { return c.key }

// Err returns the task's error, nil on success.
func (c Completion) Err() error { return c.err }

// Deliver invokes the task's OnSuccess or OnError callback on the calling
// goroutine. The event-loop goroutine that owns the UI state is the only
// place Deliver should be called.
func (c Completion) Deliver() {
	if c.err != nil {
		if c.onError != nil {
			c.onError(c.err)
		}
		return
	}
	if c.onSuccess != nil {
		c.onSuccess(c.value)
	}
}
