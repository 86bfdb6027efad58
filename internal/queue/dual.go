package queue

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// dualLock is the shared engine behind Blocking and Priority.
//
// Lock order: pullMu, then pushMu.
type dualLock[T any] struct {
	pullMu   sync.Mutex
	pullBuf  []T     // reversed: the next item is at the tail
	priority fifo[T] // drained before pullBuf; empty for Blocking
	wake     signal

	pushMu  sync.Mutex
	pushBuf []T

	// empty is true once a consumer has seen every buffer empty.
	// Producers flip it back with a CAS and wake the waiters.
	empty atomic.Bool

	metrics *queueMetrics
}

func (q *dualLock[T]) init(opts []Option) {
	o := applyOptions(opts)
	q.empty.Store(true)
	if o.capacity > 0 {
		q.pullBuf = make([]T, 0, o.capacity)
		q.pushBuf = make([]T, 0, o.capacity)
	}
	if o.registerer != nil {
		m, err := newQueueMetrics(o.registerer, o.component)
		if err != nil {
			o.logger.Warn("queue metrics disabled", "component", o.component, "error", err)
		}
		q.metrics = m
	}
}

// Push appends v to the queue.
func (q *dualLock[T]) Push(v T) {
	q.metrics.recordPush()
	q.pushMu.Lock()
	if len(q.pushBuf) > 0 {
		q.pushBuf = append(q.pushBuf, v)
		q.pushMu.Unlock()
		return
	}
	if q.empty.CompareAndSwap(true, false) {
		// The queue was known empty: hand v straight to the consumer side.
		q.pushMu.Unlock()
		q.pullMu.Lock()
		if len(q.pullBuf) == 0 {
			q.pullBuf = append(q.pullBuf, v)
		} else {
			q.pushMu.Lock()
			q.pushBuf = append(q.pushBuf, v)
			q.pushMu.Unlock()
		}
		q.wake.broadcast()
		q.pullMu.Unlock()
		return
	}
	q.pushBuf = append(q.pushBuf, v)
	woke := q.empty.CompareAndSwap(true, false)
	q.pushMu.Unlock()
	if woke {
		q.pullMu.Lock()
		q.wake.broadcast()
		q.pullMu.Unlock()
	}
}

// Emplace is Push; values are constructed by the caller.
func (q *dualLock[T]) Emplace(v T) {
	q.Push(v)
}

// PushAll appends vs in order under a single acquisition of the push lock.
// Consumers never see part of the batch ahead of an earlier item from the
// same producer.
func (q *dualLock[T]) PushAll(vs ...T) {
	if len(vs) == 0 {
		return
	}
	q.metrics.recordPushes(len(vs))
	q.pushMu.Lock()
	if len(q.pushBuf) > 0 {
		q.pushBuf = append(q.pushBuf, vs...)
		q.pushMu.Unlock()
		return
	}
	if q.empty.CompareAndSwap(true, false) {
		q.pushMu.Unlock()
		q.pullMu.Lock()
		if len(q.pullBuf) == 0 {
			q.pullBuf = append(q.pullBuf, vs...)
			slices.Reverse(q.pullBuf)
		} else {
			q.pushMu.Lock()
			q.pushBuf = append(q.pushBuf, vs...)
			q.pushMu.Unlock()
		}
		q.wake.broadcast()
		q.pullMu.Unlock()
		return
	}
	q.pushBuf = append(q.pushBuf, vs...)
	woke := q.empty.CompareAndSwap(true, false)
	q.pushMu.Unlock()
	if woke {
		q.pullMu.Lock()
		q.wake.broadcast()
		q.pullMu.Unlock()
	}
}

// checkPullAndSwap refills an empty pull buffer from the push buffer.
// Caller holds pullMu.
func (q *dualLock[T]) checkPullAndSwap() {
	if len(q.pullBuf) > 0 {
		return
	}
	q.pushMu.Lock()
	if len(q.pushBuf) == 0 {
		if q.priority.len() == 0 {
			q.empty.Store(true)
		}
		q.pushMu.Unlock()
		return
	}
	q.pullBuf, q.pushBuf = q.pushBuf, q.pullBuf[:0]
	q.pushMu.Unlock()
	slices.Reverse(q.pullBuf)
	q.metrics.recordSwap()
}

// takeLocked removes the next item. Caller holds pullMu.
func (q *dualLock[T]) takeLocked() (T, bool) {
	if v, ok := q.priority.pop(); ok {
		q.metrics.recordPop()
		return v, true
	}
	q.checkPullAndSwap()
	n := len(q.pullBuf)
	if n == 0 {
		var zero T
		return zero, false
	}
	v := q.pullBuf[n-1]
	var zero T
	q.pullBuf[n-1] = zero
	q.pullBuf = q.pullBuf[:n-1]
	q.checkPullAndSwap()
	q.metrics.recordPop()
	return v, true
}

// TryPop removes and returns the next item.
// Returns false if the queue is empty.
func (q *dualLock[T]) TryPop() (T, bool) {
	q.pullMu.Lock()
	defer q.pullMu.Unlock()
	return q.takeLocked()
}

// popOrWait removes the next item, or returns a channel that closes when
// an item may have arrived. A nil channel with ok == false means a producer
// hand-off is in flight and the caller should retry at once.
func (q *dualLock[T]) popOrWait() (v T, ok bool, wait <-chan struct{}) {
	q.pullMu.Lock()
	defer q.pullMu.Unlock()
	if v, ok = q.takeLocked(); ok {
		return v, true, nil
	}
	if !q.empty.Load() {
		return v, false, nil
	}
	return v, false, q.wake.wait()
}

// Pop blocks until an item is available.
//
// Pop cannot be cancelled; use a sentinel value or PopContext to release
// blocked consumers.
func (q *dualLock[T]) Pop() T {
	for {
		v, ok, wait := q.popOrWait()
		if ok {
			return v
		}
		if wait != nil {
			<-wait
		}
	}
}

// PopTimeout waits at most d for an item.
//
// It waits once and does not loop: false means nothing arrived in time, and
// the caller decides whether to try again.
func (q *dualLock[T]) PopTimeout(d time.Duration) (T, bool) {
	if d <= 0 {
		return q.TryPop()
	}
	for {
		v, ok, wait := q.popOrWait()
		if ok {
			return v, true
		}
		if wait == nil {
			continue
		}
		timer := time.NewTimer(d)
		select {
		case <-wait:
		case <-timer.C:
		}
		timer.Stop()
		return q.TryPop()
	}
}

// PopContext blocks until an item is available or ctx is done.
func (q *dualLock[T]) PopContext(ctx context.Context) (T, error) {
	for {
		v, ok, wait := q.popOrWait()
		if ok {
			return v, nil
		}
		if wait == nil {
			continue
		}
		select {
		case <-wait:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// PopOrCall blocks until an item is available, calling fn whenever the
// queue is found empty and before waiting.
//
// fn runs without any queue lock held, so it may push to this queue.
func (q *dualLock[T]) PopOrCall(fn func()) T {
	for {
		if v, ok := q.TryPop(); ok {
			return v
		}
		fn()
		v, ok, wait := q.popOrWait()
		if ok {
			return v
		}
		if wait != nil {
			<-wait
		}
	}
}

// TryPeek returns a copy of the next item without removing it.
// It never swaps the internal buffers.
func (q *dualLock[T]) TryPeek() (T, bool) {
	q.pullMu.Lock()
	defer q.pullMu.Unlock()
	if v, ok := q.priority.peek(); ok {
		return v, true
	}
	if n := len(q.pullBuf); n > 0 {
		return q.pullBuf[n-1], true
	}
	q.pushMu.Lock()
	defer q.pushMu.Unlock()
	if len(q.pushBuf) > 0 {
		return q.pushBuf[0], true
	}
	var zero T
	return zero, false
}

// IsEmpty reports the empty hint.
//
// With several consumers the answer can be wrong the moment it is returned.
func (q *dualLock[T]) IsEmpty() bool {
	return q.empty.Load()
}

// Size returns the number of queued items.
func (q *dualLock[T]) Size() int {
	q.pullMu.Lock()
	defer q.pullMu.Unlock()
	q.pushMu.Lock()
	defer q.pushMu.Unlock()
	return q.priority.len() + len(q.pullBuf) + len(q.pushBuf)
}

// Clear drops every queued item.
func (q *dualLock[T]) Clear() {
	q.pullMu.Lock()
	defer q.pullMu.Unlock()
	q.pushMu.Lock()
	defer q.pushMu.Unlock()
	clear(q.pullBuf)
	q.pullBuf = q.pullBuf[:0]
	clear(q.pushBuf)
	q.pushBuf = q.pushBuf[:0]
	q.priority.reset()
	q.empty.Store(true)
}

// Reserve grows both internal buffers to hold at least n items.
func (q *dualLock[T]) Reserve(n int) {
	q.pullMu.Lock()
	defer q.pullMu.Unlock()
	q.pushMu.Lock()
	defer q.pushMu.Unlock()
	if n > cap(q.pullBuf) {
		q.pullBuf = slices.Grow(q.pullBuf, n-len(q.pullBuf))
	}
	if n > cap(q.pushBuf) {
		q.pushBuf = slices.Grow(q.pushBuf, n-len(q.pushBuf))
	}
}
