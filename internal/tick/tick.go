// Package tick provides cheap periodic triggers for hot loops.
//
// Queue consumers and work queue workers poll a Ticker after each item to
// decide when to log stats or print progress:
//   - AtomicTicker: one atomic load per poll; shared safely by many workers
//   - BatchTicker: reads the clock only every N polls; single goroutine
//   - StdTicker: a time.Ticker behind a non-blocking select
//
// None of them start goroutines, so a consumer that stops polling costs
// nothing.
package tick

import "time"

// Ticker reports when an interval has elapsed.
type Ticker interface {
	// Tick returns true once per elapsed interval. It never blocks.
	Tick() bool

	// Reset starts a new interval from now.
	Reset()

	// Stop releases any resources held by the ticker.
	Stop()
}

// DefaultInterval is the progress interval used by the cmd tools.
const DefaultInterval = time.Second
