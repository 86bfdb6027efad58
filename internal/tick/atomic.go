package tick

import (
	"sync/atomic"
	"time"
	_ "unsafe" // Required for go:linkname
)

// nanotime returns the runtime's monotonic clock in nanoseconds without
// building a time.Time.
//
//go:linkname nanotime runtime.nanotime
func nanotime() int64

// AtomicTicker fires at most once per interval across all goroutines
// polling it.
//
// The work queue shares one AtomicTicker between its workers: whichever
// worker wins the compare-and-swap logs the stats for that interval.
type AtomicTicker struct {
	interval int64 // nanoseconds
	lastTick atomic.Int64
	ticks    atomic.Uint64
}

// NewAtomicTicker creates an AtomicTicker whose first interval starts now.
func NewAtomicTicker(interval time.Duration) *AtomicTicker {
	t := &AtomicTicker{
		interval: int64(interval),
	}
	t.lastTick.Store(nanotime())
	return t
}

// Tick returns true if the interval has elapsed since the last tick.
// Concurrent callers race on a CAS, so exactly one of them sees true.
func (a *AtomicTicker) Tick() bool {
	now := nanotime()
	last := a.lastTick.Load()
	if now-last < a.interval {
		return false
	}
	if !a.lastTick.CompareAndSwap(last, now) {
		return false
	}
	a.ticks.Add(1)
	return true
}

// Reset starts a new interval from now.
func (a *AtomicTicker) Reset() {
	a.lastTick.Store(nanotime())
}

// Stop is a no-op.
func (a *AtomicTicker) Stop() {}

// Interval returns the ticker's interval.
func (a *AtomicTicker) Interval() time.Duration {
	return time.Duration(a.interval)
}

// Ticks returns how many times Tick has returned true.
func (a *AtomicTicker) Ticks() uint64 {
	return a.ticks.Load()
}
