package workqueue

import (
	"context"
	"sync"
)

// WorkBlock is a unit of work run by a WorkQueue.
type WorkBlock interface {
	// Execute runs the work. Running a finished block again does nothing.
	Execute()

	// IsFinished reports whether the work has run since the last Reset.
	IsFinished() bool

	// Reset makes a finished block runnable again.
	Reset()
}

type taskState uint8

const (
	taskIdle taskState = iota
	taskRunning
	taskFinished
)

// Task is a WorkBlock wrapping a function with a result.
//
// The result can be read any number of times once the task has run.
// A Task can be rerun after Reset, or given new work with SetFunc.
type Task[R any] struct {
	mu     sync.Mutex
	fn     func() R
	state  taskState
	done   chan struct{}
	result R
}

// NewTask creates a Task that runs fn.
func NewTask[R any](fn func() R) *Task[R] {
	return &Task[R]{fn: fn, done: make(chan struct{})}
}

// NewAction creates a Task for work without a result.
func NewAction(fn func()) *Task[struct{}] {
	return NewTask(func() struct{} {
		if fn != nil {
			fn()
		}
		return struct{}{}
	})
}

// Execute runs the task once. Concurrent and repeated calls are no-ops.
func (t *Task[R]) Execute() {
	t.mu.Lock()
	if t.state != taskIdle {
		t.mu.Unlock()
		return
	}
	t.state = taskRunning
	fn := t.fn
	t.mu.Unlock()

	var r R
	if fn != nil {
		r = fn()
	}

	t.mu.Lock()
	t.result = r
	t.state = taskFinished
	close(t.done)
	t.mu.Unlock()
}

// IsFinished reports whether the task has run since the last Reset.
func (t *Task[R]) IsFinished() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == taskFinished
}

// Reset makes a finished task runnable again.
// It does nothing while the task is running.
func (t *Task[R]) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetLocked()
}

func (t *Task[R]) resetLocked() {
	switch t.state {
	case taskRunning:
		return
	case taskFinished:
		t.done = make(chan struct{})
	}
	var zero R
	t.result = zero
	t.state = taskIdle
}

// SetFunc replaces the work and resets the task.
// It does nothing while the task is running.
func (t *Task[R]) SetFunc(fn func() R) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == taskRunning {
		return
	}
	t.fn = fn
	t.resetLocked()
}

// Done returns a channel closed when the task has run.
func (t *Task[R]) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Wait blocks until the task has run.
func (t *Task[R]) Wait() {
	<-t.Done()
}

// Result blocks until the task has run, then returns its result.
func (t *Task[R]) Result(ctx context.Context) (R, error) {
	select {
	case <-t.Done():
		t.mu.Lock()
		defer t.mu.Unlock()
		return t.result, nil
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// NullWorkBlock does nothing and is always finished.
var NullWorkBlock WorkBlock = nullBlock{}

type nullBlock struct{}

func (nullBlock) Execute()         {}
func (nullBlock) IsFinished() bool { return true }
func (nullBlock) Reset()           {}

// stopBlock tells the worker that takes it to exit.
type stopBlock struct{}

func (stopBlock) Execute()         {}
func (stopBlock) IsFinished() bool { return true }
func (stopBlock) Reset()           {}
