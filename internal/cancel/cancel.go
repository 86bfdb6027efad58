// Package cancel provides stop flags for goroutines that drain queues.
//
// Queue consumers cannot be interrupted while parked in Pop. The usual
// shutdown loop waits with PopTimeout and checks a Canceler between waits:
//
//	for !stop.Done() {
//		item, ok := q.PopTimeout(50 * time.Millisecond)
//		...
//	}
//
// This package offers two implementations of the Canceler interface:
//   - AtomicCanceler: a single atomic.Bool, cheapest to poll
//   - ContextCanceler: backed by context.Context for callers that already have one
package cancel

// Canceler signals consumers to stop.
//
// Implementations must be safe for concurrent use:
//   - Multiple goroutines may call Done() concurrently
//   - Cancel() may be called concurrently with Done()
type Canceler interface {
	// Done returns true if cancellation has been triggered.
	Done() bool

	// Cancel triggers cancellation. Safe to call multiple times.
	Cancel()
}

// anyCanceler is done when any of its members is done.
type anyCanceler []Canceler

// Any returns a Canceler that is done as soon as one of cs is done.
// Cancel on the result cancels every member. Nil members are skipped.
func Any(cs ...Canceler) Canceler {
	out := make(anyCanceler, 0, len(cs))
	for _, c := range cs {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

func (a anyCanceler) Done() bool {
	for _, c := range a {
		if c.Done() {
			return true
		}
	}
	return false
}

func (a anyCanceler) Cancel() {
	for _, c := range a {
		c.Cancel()
	}
}
