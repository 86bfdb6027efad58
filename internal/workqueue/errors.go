package workqueue

import "errors"

// Sentinel errors for work queue operations
var (
	// ErrClosed indicates the work queue has been closed
	ErrClosed = errors.New("work queue closed")

	// ErrNilWorkBlock indicates a nil work block was submitted
	ErrNilWorkBlock = errors.New("work block cannot be nil")
)
