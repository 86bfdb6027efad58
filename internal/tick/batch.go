package tick

import "time"

// BatchTicker reads the clock only on every Nth call to Tick.
//
// It suits a single consumer draining a queue as fast as it can, where one
// clock read per item would show up in the profile. Progress reporting in
// cmd/queuebench uses it with every=4096.
//
// Not safe for concurrent use.
type BatchTicker struct {
	interval time.Duration
	every    int
	count    int
	lastTick time.Time
}

// NewBatch creates a BatchTicker that fires after interval, checking the
// clock every N calls. Values of every below 1 check on each call.
func NewBatch(interval time.Duration, every int) *BatchTicker {
	if every < 1 {
		every = 1
	}
	return &BatchTicker{
		interval: interval,
		every:    every,
		lastTick: time.Now(),
	}
}

// Tick counts one call and returns true if this call read the clock and
// the interval had elapsed.
func (b *BatchTicker) Tick() bool {
	b.count++
	if b.count%b.every != 0 {
		return false
	}
	now := time.Now()
	if now.Sub(b.lastTick) < b.interval {
		return false
	}
	b.lastTick = now
	return true
}

// Reset zeroes the call count and starts a new interval.
func (b *BatchTicker) Reset() {
	b.count = 0
	b.lastTick = time.Now()
}

// Stop is a no-op.
func (b *BatchTicker) Stop() {}

// Count returns the number of Tick calls since creation or Reset.
func (b *BatchTicker) Count() int {
	return b.count
}

// Every returns the batch size.
func (b *BatchTicker) Every() int {
	return b.every
}

// Interval returns the ticker's interval.
func (b *BatchTicker) Interval() time.Duration {
	return b.interval
}
