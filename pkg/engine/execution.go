package engine

import (
	"context"
	"sync"
	"sync/atomic"
)

// Execution is the cancellation handle for one in-flight attempt. The
// controller binds the live session and cancel function when the attempt
// starts and clears both on every exit path, so a stale handle can never
// cancel a later attempt.
type Execution struct {
	mu      sync.Mutex
	session Session
	cancel  context.CancelFunc
	active  atomic.Bool
}

// NewExecution creates an idle execution handle.
func NewExecution() *Execution {
	return &Execution{}
}

// IsActive reports whether an attempt is currently bound to this handle.
func (e *Execution) IsActive() bool {
	return e.active.Load()
}

// Cancel requests cooperative cancellation of the in-flight attempt. The
// handle reports inactive immediately, before the attempt finishes winding
// down. It is a no-op when nothing is bound. Safe to call multiple times
// and from any goroutine.
func (e *Execution) Cancel() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()

	if cancel != nil {
		e.active.Store(false)
		cancel()
	}
}

// Session returns the bound session, or nil when idle.
func (e *Execution) Session() Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// bind attaches a live session and its cancel function.
func (e *Execution) bind(session Session, cancel context.CancelFunc) {
	e.mu.Lock()
	e.session = session
	e.cancel = cancel
	e.mu.Unlock()
	e.active.Store(true)
}

// clear detaches the session and cancel function. Runs on every attempt
// exit path, success and failure alike.
func (e *Execution) clear() {
	e.active.Store(false)
	e.mu.Lock()
	e.session = nil
	e.cancel = nil
	e.mu.Unlock()
}
