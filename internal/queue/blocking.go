package queue

// Blocking is an unbounded FIFO queue with separate producer and consumer locks.
//
// Safe for any number of producers and consumers. Create with New; the zero
// value works but reports IsEmpty() == false until the first pop.
//
// Run cmd/queuebench to compare it with a channel and a lock-free ring
// under several producer/consumer mixes.
type Blocking[T any] struct {
	dualLock[T]
}

// New creates an empty Blocking queue.
func New[T any](opts ...Option) *Blocking[T] {
	q := &Blocking[T]{}
	q.init(opts)
	return q
}
