package queue

// Priority is a Blocking queue with a priority channel.
//
// Items pushed with PushPriority are returned before every normal item, in
// the order they were pushed. The priority channel lives on the consumer
// side of the queue and is guarded by the pull lock.
type Priority[T any] struct {
	dualLock[T]
}

// NewPriority creates an empty Priority queue.
func NewPriority[T any](opts ...Option) *Priority[T] {
	q := &Priority[T]{}
	q.init(opts)
	return q
}

// PushPriority appends v to the priority channel.
func (q *Priority[T]) PushPriority(v T) {
	q.metrics.recordPriorityPush()
	q.pullMu.Lock()
	q.priority.push(v)
	// Waiters only park after seeing the flag set, so a flip from true is
	// the only case that needs a wake-up.
	if q.empty.Swap(false) {
		q.wake.broadcast()
	}
	q.pullMu.Unlock()
}

// EmplacePriority is PushPriority; values are constructed by the caller.
func (q *Priority[T]) EmplacePriority(v T) {
	q.PushPriority(v)
}
