package workqueue_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randomizedcoder/simcontainers/internal/cancel"
	"github.com/randomizedcoder/simcontainers/internal/workqueue"
)

func newQueue(t *testing.T, workers int, opts ...workqueue.Option) *workqueue.WorkQueue {
	t.Helper()
	wq, err := workqueue.New(workers, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = wq.Close() })
	return wq
}

// gate returns a block that runs until release is closed.
func gate(release <-chan struct{}) *workqueue.Task[struct{}] {
	return workqueue.NewAction(func() { <-release })
}

// startedGate is gate plus a channel closed once the block is running.
func startedGate(release <-chan struct{}) (*workqueue.Task[struct{}], <-chan struct{}) {
	started := make(chan struct{})
	return workqueue.NewAction(func() {
		close(started)
		<-release
	}), started
}

// ============================================================================
// Tasks
// ============================================================================

func TestTask_Result(t *testing.T) {
	task := workqueue.NewTask(func() int { return 42 })
	assert.False(t, task.IsFinished())

	ctx, cancelFn := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancelFn()
	_, err := task.Result(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	task.Execute()
	assert.True(t, task.IsFinished())
	for i := 0; i < 2; i++ {
		v, err := task.Result(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}
}

func TestTask_RunsOnceUntilReset(t *testing.T) {
	var runs int
	task := workqueue.NewTask(func() int {
		runs++
		return runs
	})

	task.Execute()
	task.Execute()
	assert.Equal(t, 1, runs)

	task.Reset()
	assert.False(t, task.IsFinished())
	task.Execute()
	assert.Equal(t, 2, runs)
	v, err := task.Result(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestTask_SetFunc(t *testing.T) {
	task := workqueue.NewTask(func() string { return "a" })
	task.Execute()
	task.SetFunc(func() string { return "b" })
	assert.False(t, task.IsFinished())

	task.Execute()
	v, err := task.Result(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", v)
}

func TestTask_NilFunc(t *testing.T) {
	task := workqueue.NewAction(nil)
	task.Execute()
	task.Wait()
	assert.True(t, task.IsFinished())
}

func TestNullWorkBlock(t *testing.T) {
	workqueue.NullWorkBlock.Execute()
	workqueue.NullWorkBlock.Reset()
	assert.True(t, workqueue.NullWorkBlock.IsFinished())
}

// ============================================================================
// Lifecycle
// ============================================================================

func TestWorkQueue_WorkerCount(t *testing.T) {
	wq, err := workqueue.New(1)
	require.NoError(t, err)
	assert.Equal(t, 1, wq.Workers())

	require.NoError(t, wq.Close())
	assert.Equal(t, 0, wq.Workers())
	require.NoError(t, wq.Close(), "Close must be idempotent")

	err = wq.AddWorkBlock(workqueue.NewAction(func() {}), workqueue.PriorityMedium)
	assert.ErrorIs(t, err, workqueue.ErrClosed)
	err = wq.AddWorkBlocks(workqueue.PriorityMedium, workqueue.NewAction(func() {}))
	assert.ErrorIs(t, err, workqueue.ErrClosed)
}

func TestWorkQueue_DefaultWorkers(t *testing.T) {
	wq := newQueue(t, -1)
	assert.Greater(t, wq.Workers(), 1)
}

func TestWorkQueue_NilBlock(t *testing.T) {
	wq := newQueue(t, 1)
	assert.ErrorIs(t, wq.AddWorkBlock(nil, workqueue.PriorityHigh), workqueue.ErrNilWorkBlock)

	err := wq.AddWorkBlocks(workqueue.PriorityLow, workqueue.NewAction(func() {}), nil)
	assert.ErrorIs(t, err, workqueue.ErrNilWorkBlock)
}

func TestWorkQueue_AddWorkBlocksBatch(t *testing.T) {
	wq := newQueue(t, 1)

	release := make(chan struct{})
	blocker, started := startedGate(release)
	require.NoError(t, wq.AddWorkBlock(blocker, workqueue.PriorityHigh))
	<-started

	var r orderRecorder
	done := workqueue.NewAction(func() {})
	done.Execute()
	err := wq.AddWorkBlocks(workqueue.PriorityMedium, r.block(1), nil, done, r.block(2), r.block(3))
	require.ErrorIs(t, err, workqueue.ErrNilWorkBlock)
	assert.Contains(t, err.Error(), "work block 1")

	assert.Equal(t, 3, wq.QueueSize(workqueue.PriorityMedium), "nil and finished blocks are not queued")
	s := wq.Stats()
	assert.Equal(t, uint64(4), s.Submitted, "gate plus three batched blocks")
	assert.Equal(t, uint64(1), s.Skipped)

	close(release)
	r.wait()
	assert.Equal(t, []int{1, 2, 3}, r.order)
	require.Eventually(t, func() bool { return wq.Stats().Executed == 4 }, 5*time.Second, time.Millisecond)
}

func TestWorkQueue_AddWorkBlocksInline(t *testing.T) {
	wq := newQueue(t, 0)

	var r orderRecorder
	require.NoError(t, wq.AddWorkBlocks(workqueue.PriorityLow, r.block(1), r.block(2)))
	assert.Equal(t, []int{1, 2}, r.order)
	assert.Equal(t, uint64(2), wq.Stats().Executed)
}

func TestWorkQueue_Parallel(t *testing.T) {
	const workers = 5
	wq := newQueue(t, workers)

	var running, peak atomic.Int32
	tasks := make([]*workqueue.Task[struct{}], 10)
	blocks := make([]workqueue.WorkBlock, len(tasks))
	for i := range tasks {
		tasks[i] = workqueue.NewAction(func() {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(30 * time.Millisecond)
			running.Add(-1)
		})
		blocks[i] = tasks[i]
	}
	require.NoError(t, wq.AddWorkBlocks(workqueue.PriorityMedium, blocks...))
	for _, task := range tasks {
		task.Wait()
	}

	assert.Greater(t, peak.Load(), int32(1), "expected blocks to run in parallel")
	assert.LessOrEqual(t, peak.Load(), int32(workers))
	require.Eventually(t, func() bool { return wq.Stats().Executed == 10 }, 5*time.Second, time.Millisecond)
}

func TestWorkQueue_Inline(t *testing.T) {
	wq := newQueue(t, 0)

	var runs int
	task := workqueue.NewAction(func() { runs++ })
	require.NoError(t, wq.AddWorkBlock(task, workqueue.PriorityMedium))
	assert.True(t, task.IsFinished(), "expected the block to run inside AddWorkBlock")
	assert.Equal(t, 1, runs)

	// Finished blocks are not rerun until reset.
	require.NoError(t, wq.AddWorkBlock(task, workqueue.PriorityMedium))
	assert.Equal(t, 1, runs)
	assert.Equal(t, uint64(1), wq.Stats().Skipped)

	task.SetFunc(func() struct{} {
		runs += 10
		return struct{}{}
	})
	require.NoError(t, wq.AddWorkBlock(task, workqueue.PriorityLow))
	assert.Equal(t, 11, runs)

	// A queue with workers returns before the block runs.
	wq2 := newQueue(t, 1)
	release := make(chan struct{})
	slow := gate(release)
	start := time.Now()
	require.NoError(t, wq2.AddWorkBlock(slow, workqueue.PriorityMedium))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
	close(release)
	slow.Wait()
}

// ============================================================================
// Dispatch order
// ============================================================================

// expectedOrder is the run order for 2 high, 9 medium and 3 low blocks with
// a priority ratio of 3.
var expectedOrder = []int{1, 1, 2, 2, 2, 3, 2, 2, 2, 3, 2, 2, 2, 3}

type orderRecorder struct {
	order []int // appended by the single worker only
	tasks []*workqueue.Task[struct{}]
}

func (r *orderRecorder) block(tag int) *workqueue.Task[struct{}] {
	task := workqueue.NewAction(func() { r.order = append(r.order, tag) })
	r.tasks = append(r.tasks, task)
	return task
}

func (r *orderRecorder) wait() {
	for _, task := range r.tasks {
		task.Wait()
	}
}

func TestWorkQueue_PriorityOrder(t *testing.T) {
	wq := newQueue(t, 1)
	wq.SetPriorityRatio(3)

	release := make(chan struct{})
	require.NoError(t, wq.AddWorkBlock(gate(release), workqueue.PriorityHigh))

	var r orderRecorder
	for i := 0; i < 3; i++ {
		require.NoError(t, wq.AddWorkBlock(r.block(3), workqueue.PriorityLow))
	}
	for i := 0; i < 9; i++ {
		require.NoError(t, wq.AddWorkBlock(r.block(2), workqueue.PriorityMedium))
	}
	for i := 0; i < 2; i++ {
		require.NoError(t, wq.AddWorkBlock(r.block(1), workqueue.PriorityHigh))
	}
	assert.Equal(t, 3, wq.QueueSize(workqueue.PriorityLow))
	assert.Equal(t, 9, wq.QueueSize(workqueue.PriorityMedium))

	close(release)
	r.wait()
	assert.Equal(t, expectedOrder, r.order, "execution out of order")
	assert.True(t, wq.IsEmpty())
	assert.Zero(t, wq.TotalQueueSize())
}

func TestWorkQueue_PriorityOrderBatch(t *testing.T) {
	wq := newQueue(t, 1, workqueue.WithPriorityRatio(3))

	release := make(chan struct{})
	require.NoError(t, wq.AddWorkBlock(gate(release), workqueue.PriorityHigh))

	var r orderRecorder
	batch := func(tag, n int) []workqueue.WorkBlock {
		out := make([]workqueue.WorkBlock, n)
		for i := range out {
			out[i] = r.block(tag)
		}
		return out
	}
	require.NoError(t, wq.AddWorkBlocks(workqueue.PriorityLow, batch(3, 3)...))
	require.NoError(t, wq.AddWorkBlocks(workqueue.PriorityMedium, batch(2, 9)...))
	require.NoError(t, wq.AddWorkBlocks(workqueue.PriorityHigh, batch(1, 2)...))
	assert.Equal(t, 3, wq.QueueSize(workqueue.PriorityLow))
	assert.Equal(t, 9, wq.QueueSize(workqueue.PriorityMedium))

	close(release)
	r.wait()
	assert.Equal(t, expectedOrder, r.order, "execution out of order")
}

func TestWorkQueue_LowRunsWhenMediumEmpty(t *testing.T) {
	wq := newQueue(t, 1)
	done := make(chan struct{})
	require.NoError(t, wq.AddWorkBlock(workqueue.NewAction(func() { close(done) }), workqueue.PriorityLow))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("low priority block never ran")
	}
}

func TestWorkQueue_FinishedBlocks(t *testing.T) {
	wq := newQueue(t, 1)
	var runs atomic.Int32
	task := workqueue.NewAction(func() { runs.Add(1) })
	task.Execute()

	require.NoError(t, wq.AddWorkBlock(task, workqueue.PriorityHigh))
	assert.Zero(t, wq.TotalQueueSize(), "finished block must be skipped")

	// Required blocks are queued even when finished, then skipped by the worker.
	require.NoError(t, wq.AddWorkBlock(task, workqueue.PriorityRequired))
	probe := workqueue.NewAction(func() {})
	require.NoError(t, wq.AddWorkBlock(probe, workqueue.PriorityRequired))
	probe.Wait()

	assert.Equal(t, int32(1), runs.Load())
	require.Eventually(t, func() bool { return wq.Stats().Executed == 1 }, 5*time.Second, time.Millisecond)
	s := wq.Stats()
	assert.Equal(t, uint64(2), s.Skipped)
	assert.Equal(t, uint64(2), s.Submitted)
}

// ============================================================================
// Shutdown
// ============================================================================

func TestWorkQueue_CloseDropsQueuedWork(t *testing.T) {
	wq, err := workqueue.New(1)
	require.NoError(t, err)

	release := make(chan struct{})
	running, started := startedGate(release)
	require.NoError(t, wq.AddWorkBlock(running, workqueue.PriorityHigh))
	<-started

	var dropped atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, wq.AddWorkBlock(workqueue.NewAction(func() { dropped.Add(1) }), workqueue.PriorityMedium))
	}

	closed := make(chan error, 1)
	go func() { closed <- wq.Close() }()
	// Once closed, only the stop block for the busy worker is queued.
	require.Eventually(t, func() bool {
		return wq.Workers() == 0 && wq.TotalQueueSize() == 1
	}, 5*time.Second, time.Millisecond)
	close(release)

	select {
	case err := <-closed:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return")
	}
	assert.True(t, running.IsFinished(), "running block must complete")
	assert.Zero(t, dropped.Load(), "queued blocks must be dropped")
}

func TestWorkQueue_CloseContextTimeout(t *testing.T) {
	wq, err := workqueue.New(1, workqueue.WithPollInterval(5*time.Millisecond))
	require.NoError(t, err)

	release := make(chan struct{})
	busy, started := startedGate(release)
	require.NoError(t, wq.AddWorkBlock(busy, workqueue.PriorityHigh))
	<-started

	ctx, cancelFn := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelFn()
	err = wq.CloseContext(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "expected DeadlineExceeded, got %v", err)

	close(release)
	require.NoError(t, wq.Close())
}

func TestWorkQueue_StopFlag(t *testing.T) {
	stop := cancel.NewAtomic()
	wq, err := workqueue.New(3,
		workqueue.WithStopFlag(stop),
		workqueue.WithPollInterval(5*time.Millisecond))
	require.NoError(t, err)

	stop.Cancel()
	time.Sleep(30 * time.Millisecond)

	// Stopped workers leave queued work alone.
	task := workqueue.NewAction(func() {})
	require.NoError(t, wq.AddWorkBlock(task, workqueue.PriorityHigh))
	time.Sleep(20 * time.Millisecond)
	assert.False(t, task.IsFinished())

	ctx, cancelFn := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelFn()
	require.NoError(t, wq.CloseContext(ctx))
}

// ============================================================================
// Observability
// ============================================================================

func TestWorkQueue_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	wq := newQueue(t, 1, workqueue.WithMetrics(reg, "test"))

	tasks := []*workqueue.Task[struct{}]{
		workqueue.NewAction(func() {}),
		workqueue.NewAction(func() {}),
	}
	for _, task := range tasks {
		require.NoError(t, wq.AddWorkBlock(task, workqueue.PriorityMedium))
	}
	for _, task := range tasks {
		task.Wait()
	}
	require.Eventually(t, func() bool { return wq.Stats().Executed == 2 }, 5*time.Second, time.Millisecond)

	expected := `
# HELP simcontainers_workqueue_submitted_total Total work blocks queued or run inline
# TYPE simcontainers_workqueue_submitted_total counter
simcontainers_workqueue_submitted_total{component="test"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, bytes.NewBufferString(expected),
		"simcontainers_workqueue_submitted_total"))

	// A second queue with the same component shares the collectors.
	_, err := workqueue.New(0, workqueue.WithMetrics(reg, "test"))
	require.NoError(t, err)
}

func TestWorkQueue_Logging(t *testing.T) {
	var buf syncBuffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	wq, err := workqueue.New(1,
		workqueue.WithLogger(logger),
		workqueue.WithStatsInterval(time.Nanosecond))
	require.NoError(t, err)

	task := workqueue.NewAction(func() {})
	require.NoError(t, wq.AddWorkBlock(task, workqueue.PriorityMedium))
	task.Wait()
	require.NoError(t, wq.Close())

	out := buf.String()
	assert.Contains(t, out, "work queue started")
	assert.Contains(t, out, "work queue stats")
	assert.Contains(t, out, "work queue closing")
	assert.Contains(t, out, "component=workqueue")
}

// syncBuffer is a bytes.Buffer safe for the logger's concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestPriority_String(t *testing.T) {
	assert.Equal(t, "medium", workqueue.PriorityMedium.String())
	assert.Equal(t, "required", workqueue.PriorityRequired.String())
	assert.Equal(t, "priority(9)", workqueue.Priority(9).String())
}
