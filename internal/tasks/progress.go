package tasks

import "sync"

// BusyToken identifies one shown busy indicator to the screen that showed it.
type BusyToken any

// BusyScreen is the rendering capability a ProgressScope drives: show a busy
// indicator with a message, hide it again by token.
type BusyScreen interface {
	ShowBusy(message string) BusyToken
	HideBusy(token BusyToken)
}

// BusyMessenger is an optional extension of [BusyScreen] for screens that
// can update the message of an already-visible indicator. The capability is
// detected once when the scope is opened, not per call.
type BusyMessenger interface {
	UpdateBusy(token BusyToken, message string)
}

// ProgressScope holds one visible busy indicator and guarantees it is hidden
// exactly once no matter how many times Close is called or on which path.
// Callers open a scope before submitting a task and close it in both the
// success and error callbacks; a deferred Close on early-return paths is
// harmless because extra closes are no-ops.
type ProgressScope struct {
	mu     sync.Mutex
	screen BusyScreen
	update func(BusyToken, string)
	token  BusyToken
	closed bool
}

// OpenProgress shows a busy indicator on the given screen and returns the
// scope that owns it. A nil screen is a caller bug and panics.
func OpenProgress(screen BusyScreen, message string) *ProgressScope {
	if screen == nil {
		panic("tasks: OpenProgress requires a screen")
	}

	p := &ProgressScope{screen: screen}
	if m, ok := screen.(BusyMessenger); ok {
		p.update = m.UpdateBusy
	}
	p.token = screen.ShowBusy(message)
	return p
}

// SetMessage updates the indicator's message on screens that support it and
// does nothing otherwise. No-op after Close.
func (p *ProgressScope) SetMessage(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.update == nil {
		return
	}
	p.update(p.token, message)
}

// Close hides the indicator. Safe to call any number of times; only the
// first call reaches the screen.
func (p *ProgressScope) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	token := p.token
	p.mu.Unlock()

	p.screen.HideBusy(token)
}

// Closed reports whether the scope has been closed.
func (p *ProgressScope) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
