package tick

import "time"

// StdTicker adapts a time.Ticker to the Ticker interface.
//
// It is the reference implementation the cheaper tickers are measured
// against, and the right choice when a loop also selects on other channels
// (see C).
type StdTicker struct {
	ticker   *time.Ticker
	interval time.Duration
}

// NewTicker creates a StdTicker. Call Stop when done with it.
func NewTicker(interval time.Duration) *StdTicker {
	return &StdTicker{
		ticker:   time.NewTicker(interval),
		interval: interval,
	}
}

// Tick drains one pending tick without blocking.
func (t *StdTicker) Tick() bool {
	select {
	case <-t.ticker.C:
		return true
	default:
		return false
	}
}

// C exposes the ticker channel for use in a select.
func (t *StdTicker) C() <-chan time.Time {
	return t.ticker.C
}

// Reset starts a new interval from now.
func (t *StdTicker) Reset() {
	t.ticker.Reset(t.interval)
}

// Stop stops the underlying time.Ticker.
func (t *StdTicker) Stop() {
	t.ticker.Stop()
}

// Interval returns the ticker's interval.
func (t *StdTicker) Interval() time.Duration {
	return t.interval
}
