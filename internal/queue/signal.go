package queue

// signal wakes every goroutine parked on it.
//
// Goroutines grab the current channel and wait for it to close; broadcast
// closes it and the next waiter allocates a fresh one. All methods must be
// called with the pull lock held.
type signal struct {
	ch chan struct{}
}

func (s *signal) wait() <-chan struct{} {
	if s.ch == nil {
		s.ch = make(chan struct{})
	}
	return s.ch
}

func (s *signal) broadcast() {
	if s.ch != nil {
		close(s.ch)
		s.ch = nil
	}
}
