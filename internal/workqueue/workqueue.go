// Package workqueue runs work blocks on a fixed set of worker goroutines
// with three priority levels.
//
// High priority blocks run first, in order. Medium and low priority blocks
// share the remaining capacity: after every ratio medium blocks, one low
// block runs if any is waiting (see WithPriorityRatio).
//
// The level queues are queue.Blocking values. Each submission also pushes a
// token onto a ready queue that idle workers wait on with a timed pop, so a
// worker wakes once per block and checks its stop flag between waits.
//
// A WorkQueue with zero workers runs each block inline in AddWorkBlock.
package workqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/randomizedcoder/simcontainers/internal/cancel"
	"github.com/randomizedcoder/simcontainers/internal/queue"
	"github.com/randomizedcoder/simcontainers/internal/tick"
)

// Priority selects the level a work block is queued at.
// The zero value is PriorityMedium.
type Priority int

const (
	// PriorityMedium blocks run ratio times as often as low ones.
	PriorityMedium Priority = iota
	// PriorityLow blocks run when no medium block is due.
	PriorityLow
	// PriorityHigh blocks run as soon as a worker is free.
	PriorityHigh
	// PriorityRequired is queued like PriorityHigh, even if the block is
	// already finished.
	PriorityRequired
)

func (p Priority) String() string {
	switch p {
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	case PriorityHigh:
		return "high"
	case PriorityRequired:
		return "required"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// level maps a priority to the queue that holds it.
func (p Priority) level() Priority {
	switch p {
	case PriorityHigh, PriorityRequired:
		return PriorityHigh
	case PriorityLow:
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// Stats is a snapshot of the work queue counters.
type Stats struct {
	Submitted uint64
	Executed  uint64
	Skipped   uint64
}

// WorkQueue is a pool of workers draining three priority queues.
type WorkQueue struct {
	high   *queue.Blocking[WorkBlock]
	medium *queue.Blocking[WorkBlock]
	low    *queue.Blocking[WorkBlock]
	ready  *queue.Blocking[struct{}]

	workers int
	ratio   atomic.Int64

	dispatchMu sync.Mutex
	medCount   int

	closed    atomic.Bool
	closeOnce sync.Once
	halt      *cancel.AtomicCanceler
	stop      cancel.Canceler
	wg        sync.WaitGroup

	opts    options
	logger  *slog.Logger
	stats   *tick.AtomicTicker
	metrics *workMetrics

	submitted atomic.Uint64
	executed  atomic.Uint64
	skipped   atomic.Uint64
}

// New starts a WorkQueue with the given number of workers.
//
// A negative count selects runtime.NumCPU()+1 workers. Zero workers runs
// every block inline.
func New(workers int, opts ...Option) (*WorkQueue, error) {
	o := applyOptions(opts)
	if workers < 0 {
		workers = runtime.NumCPU() + 1
	}

	w := &WorkQueue{
		high:    queue.New[WorkBlock](),
		medium:  queue.New[WorkBlock](),
		low:     queue.New[WorkBlock](),
		ready:   queue.New[struct{}](),
		workers: workers,
		halt:    cancel.NewAtomic(),
		opts:    o,
		logger:  o.logger.With("component", "workqueue"),
		stats:   tick.NewAtomicTicker(o.statsInterval),
	}
	w.ratio.Store(int64(o.ratio))
	w.stop = cancel.Any(w.halt, o.stop)

	if o.registerer != nil {
		m, err := newWorkMetrics(o.registerer, o.component)
		if err != nil {
			return nil, err
		}
		w.metrics = m
	}

	w.wg.Add(workers)
	for id := 0; id < workers; id++ {
		go w.worker(id)
	}
	w.logger.Info("work queue started", "workers", workers, "priority_ratio", o.ratio)
	return w, nil
}

// AddWorkBlock queues wb at priority p.
//
// A block that is already finished is skipped unless p is PriorityRequired.
// With zero workers the block runs before AddWorkBlock returns.
func (w *WorkQueue) AddWorkBlock(wb WorkBlock, p Priority) error {
	if wb == nil {
		return ErrNilWorkBlock
	}
	if w.closed.Load() {
		return ErrClosed
	}
	if p != PriorityRequired && wb.IsFinished() {
		w.skipped.Add(1)
		w.metrics.recordSkip()
		return nil
	}
	w.submitted.Add(1)
	if w.workers == 0 {
		wb.Execute()
		w.executed.Add(1)
		w.metrics.recordInline()
		return nil
	}

	w.levelQueue(p).Push(wb)
	w.metrics.recordSubmit(p, 1)
	w.ready.Push(struct{}{})
	return nil
}

// AddWorkBlocks queues each block at priority p.
//
// The accepted blocks are queued together, so they run in the order given
// relative to each other. Nil blocks are rejected and reported in the
// returned error; the rest of the batch is still queued.
func (w *WorkQueue) AddWorkBlocks(p Priority, wbs ...WorkBlock) error {
	if w.closed.Load() {
		return ErrClosed
	}
	var errs []error
	batch := make([]WorkBlock, 0, len(wbs))
	for i, wb := range wbs {
		if wb == nil {
			errs = append(errs, fmt.Errorf("work block %d: %w", i, ErrNilWorkBlock))
			continue
		}
		if w.workers == 0 {
			if err := w.AddWorkBlock(wb, p); err != nil {
				errs = append(errs, fmt.Errorf("work block %d: %w", i, err))
			}
			continue
		}
		if p != PriorityRequired && wb.IsFinished() {
			w.skipped.Add(1)
			w.metrics.recordSkip()
			continue
		}
		batch = append(batch, wb)
	}
	if len(batch) > 0 {
		w.submitted.Add(uint64(len(batch)))
		w.levelQueue(p).PushAll(batch...)
		w.metrics.recordSubmit(p, len(batch))
		w.ready.PushAll(make([]struct{}, len(batch))...)
	}
	return errors.Join(errs...)
}

func (w *WorkQueue) levelQueue(p Priority) *queue.Blocking[WorkBlock] {
	switch p.level() {
	case PriorityHigh:
		return w.high
	case PriorityLow:
		return w.low
	default:
		return w.medium
	}
}

// next picks the block to run. It returns nil if every level is empty.
func (w *WorkQueue) next() WorkBlock {
	if wb, ok := w.high.TryPop(); ok {
		if _, stop := wb.(stopBlock); !stop {
			w.metrics.recordDispatch(PriorityHigh)
		}
		return wb
	}

	w.dispatchMu.Lock()
	defer w.dispatchMu.Unlock()
	if int64(w.medCount) >= w.ratio.Load() {
		if wb, ok := w.low.TryPop(); ok {
			w.medCount = 0
			w.metrics.recordDispatch(PriorityLow)
			return wb
		}
	}
	if wb, ok := w.medium.TryPop(); ok {
		w.medCount++
		w.metrics.recordDispatch(PriorityMedium)
		return wb
	}
	if wb, ok := w.low.TryPop(); ok {
		w.medCount = 0
		w.metrics.recordDispatch(PriorityLow)
		return wb
	}
	return nil
}

func (w *WorkQueue) worker(id int) {
	defer w.wg.Done()
	for {
		if _, ok := queue.PopUntil[struct{}](w.ready, w.stop, w.opts.pollInterval); !ok {
			w.logger.Debug("worker stopped by flag", "worker", id)
			return
		}
		wb := w.next()
		if wb == nil {
			// Token for a block dropped by Close.
			continue
		}
		if _, ok := wb.(stopBlock); ok {
			return
		}
		if wb.IsFinished() {
			w.skipped.Add(1)
			w.metrics.recordSkip()
			continue
		}
		wb.Execute()
		w.executed.Add(1)
		w.metrics.recordExecute()

		if w.stats.Tick() {
			w.logStats()
		}
	}
}

func (w *WorkQueue) logStats() {
	s := w.Stats()
	w.logger.Debug("work queue stats",
		"high", w.high.Size(),
		"medium", w.medium.Size(),
		"low", w.low.Size(),
		"submitted", s.Submitted,
		"executed", s.Executed,
		"skipped", s.Skipped)
}

// Close drops queued work, stops the workers and waits for them to exit.
// Blocks already running finish first. Close is safe to call more than once.
func (w *WorkQueue) Close() error {
	return w.CloseContext(context.Background())
}

// CloseContext is Close with a deadline. If ctx ends first, idle workers are
// told to stop at their next poll and ctx's error is returned.
func (w *WorkQueue) CloseContext(ctx context.Context) error {
	w.closeOnce.Do(func() {
		w.closed.Store(true)
		w.high.Clear()
		w.medium.Clear()
		w.low.Clear()
		w.metrics.resetDepth()
		for i := 0; i < w.workers; i++ {
			w.high.Push(stopBlock{})
			w.ready.Push(struct{}{})
		}
		w.logger.Info("work queue closing", "workers", w.workers)
	})

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		w.halt.Cancel()
		return fmt.Errorf("close work queue: %w", ctx.Err())
	}
}

// Workers returns the worker count, or 0 once the queue is closed.
func (w *WorkQueue) Workers() int {
	if w.closed.Load() {
		return 0
	}
	return w.workers
}

// SetPriorityRatio sets how many medium blocks run for each low block.
// Values below 1 select DefaultPriorityRatio.
func (w *WorkQueue) SetPriorityRatio(ratio int) {
	if ratio < 1 {
		ratio = DefaultPriorityRatio
	}
	w.ratio.Store(int64(ratio))
}

// QueueSize returns the number of blocks waiting at priority p.
// PriorityHigh and PriorityRequired share a queue.
func (w *WorkQueue) QueueSize(p Priority) int {
	return w.levelQueue(p).Size()
}

// TotalQueueSize returns the number of blocks waiting at every priority.
func (w *WorkQueue) TotalQueueSize() int {
	return w.high.Size() + w.medium.Size() + w.low.Size()
}

// IsEmpty reports whether no block is waiting.
// The answer may be stale by the time it returns.
func (w *WorkQueue) IsEmpty() bool {
	return w.high.Size() == 0 && w.medium.Size() == 0 && w.low.Size() == 0
}

// Stats returns the work queue counters.
func (w *WorkQueue) Stats() Stats {
	return Stats{
		Submitted: w.submitted.Load(),
		Executed:  w.executed.Load(),
		Skipped:   w.skipped.Load(),
	}
}
