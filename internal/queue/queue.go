// Package queue provides unbounded blocking queues built on two locks.
//
// This package offers two implementations of the Queue interface:
//   - Blocking: FIFO queue with separate producer and consumer locks
//   - Priority: Blocking plus a priority channel drained before anything else
//
// # Dual-Lock Design
//
// Producers append to a push buffer under the push lock. Consumers pop from
// the tail of a pull buffer under the pull lock. When the pull buffer runs
// dry, a consumer swaps the two buffers and reverses the new pull buffer
// once, so a batch of pushes costs one O(n) reversal instead of per-item
// shifting. A producer that finds the queue non-empty never touches the pull
// lock.
//
// When both locks are needed they are always taken pull first, then push.
//
// An atomic empty flag short-cuts the common paths. It is a hint: every
// decision that matters for correctness is re-checked under a lock.
//
// # Ordering
//
// Items from one producer come out in the order that producer pushed them.
// No order is promised between producers racing each other.
//
// # Shutdown
//
// Pop blocks until an item arrives and cannot be cancelled. Shut consumers
// down by pushing a sentinel value, by calling PopContext, or by looping on
// PopTimeout and checking a stop flag (see PopUntil).
package queue

import (
	"context"
	"time"
)

// Queue is an unbounded multi-producer multi-consumer FIFO.
//
// Implementations never block in Push, TryPop or TryPeek beyond brief lock
// acquisition.
type Queue[T any] interface {
	// Push appends an item. It never fails.
	Push(T)

	// TryPop removes and returns the next item.
	// Returns false if the queue is empty.
	TryPop() (T, bool)

	// Pop blocks until an item is available.
	Pop() T

	// PopTimeout waits at most d for an item.
	// Returns false if none arrived in time.
	PopTimeout(d time.Duration) (T, bool)

	// PopOrCall blocks like Pop but calls fn each time before waiting.
	PopOrCall(fn func()) T

	// PopContext blocks until an item is available or ctx is done.
	PopContext(ctx context.Context) (T, error)

	// TryPeek returns the next item without removing it.
	TryPeek() (T, bool)

	// IsEmpty is advisory; the answer may be stale by the time it returns.
	IsEmpty() bool

	// Size returns the number of queued items.
	Size() int

	// Clear drops all queued items.
	Clear()
}

var (
	_ Queue[int] = (*Blocking[int])(nil)
	_ Queue[int] = (*Priority[int])(nil)
)
