package queue

import (
	"time"

	"github.com/randomizedcoder/simcontainers/internal/cancel"
)

// TimedPopper is the part of Queue that PopUntil needs.
type TimedPopper[T any] interface {
	PopTimeout(d time.Duration) (T, bool)
}

// PopUntil waits for an item in slices of poll, checking stop between waits.
//
// Returns false once stop is done. An item that arrives while stop is
// already done is left in the queue.
func PopUntil[T any](q TimedPopper[T], stop cancel.Canceler, poll time.Duration) (T, bool) {
	for !stop.Done() {
		if v, ok := q.PopTimeout(poll); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
