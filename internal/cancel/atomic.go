package cancel

import "sync/atomic"

// AtomicCanceler is a stop flag backed by an atomic.Bool.
//
// Done is a single atomic load, so consumers can check it after every
// timed pop without measurable cost. The zero value is ready to use.
type AtomicCanceler struct {
	done atomic.Bool
}

// NewAtomic creates a new AtomicCanceler.
func NewAtomic() *AtomicCanceler {
	return &AtomicCanceler{}
}

// Done returns true if cancellation has been triggered.
func (a *AtomicCanceler) Done() bool {
	return a.done.Load()
}

// Cancel triggers cancellation.
//
// Safe to call multiple times; subsequent calls are no-ops.
func (a *AtomicCanceler) Cancel() {
	a.done.Store(true)
}

// Reset clears the flag so a stopped pool of consumers can be restarted.
// Not safe to call while consumers are still polling Done().
func (a *AtomicCanceler) Reset() {
	a.done.Store(false)
}
