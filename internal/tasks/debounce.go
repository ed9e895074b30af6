package tasks

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period used when none is configured. It
// matches the feel of search-as-you-type without hammering the database on
// every keystroke.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer coalesces a rapid stream of input values into a single delayed
// delivery of the last value (trailing debounce). Intermediate values are
// dropped, never forwarded.
//
// The fire function runs on a timer goroutine. Owners of single-threaded
// state must marshal the delivery back onto their event loop; the TUI does
// this by sending a message through its event channel.
type Debouncer struct {
	mu         sync.Mutex
	delay      time.Duration
	fire       func(value string)
	timer      *time.Timer
	generation uint64
	lastValue  string
	stopped    bool
}

// NewDebouncer creates a trailing debouncer with the given quiet period.
// A non-positive delay falls back to [DefaultDebounce]. A nil fire function
// is a caller bug and panics.
func NewDebouncer(delay time.Duration, fire func(value string)) *Debouncer {
	if fire == nil {
		panic("tasks: NewDebouncer requires a fire function")
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay, fire: fire}
}

// Notify records a new input value and restarts the quiet-period timer.
// Only the value from the final Notify in a burst is forwarded, once,
// after the quiet period passes with no further calls.
func (d *Debouncer) Notify(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}

	d.generation++
	gen := d.generation
	d.lastValue = value
	d.timer = time.AfterFunc(d.delay, func() { d.expire(gen) })
}

// expire forwards the pending value if this timer is still the current one
// and the debouncer has not been stopped since it was armed.
func (d *Debouncer) expire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.generation {
		d.mu.Unlock()
		return
	}
	value := d.lastValue
	d.timer = nil
	d.mu.Unlock()

	d.fire(value)
}

// Stop cancels any pending delivery. After Stop returns no new delivery
// will begin; an expiry that already passed its liveness check may still be
// completing concurrently. Stop is idempotent and Notify after Stop is a
// no-op.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
