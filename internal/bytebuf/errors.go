package bytebuf

import "errors"

var (
	// ErrResizeInfeasible indicates the requested size cannot hold the live records.
	// The buffer is left unchanged.
	ErrResizeInfeasible = errors.New("bytebuf: current data exceeds new size")

	// ErrNegativeSize indicates a negative buffer size was requested.
	ErrNegativeSize = errors.New("bytebuf: negative size")
)
