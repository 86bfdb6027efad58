// Package bytebuf stores variable-length binary records inside a fixed byte region.
//
// Two layouts are provided:
//   - CircularRaw / Circular: FIFO ring of length-prefixed records
//   - StackRaw / Stack: LIFO stack with a separate index, reversible to FIFO
//
// The Raw variants borrow a caller-owned slice and never allocate.
// Circular and Stack own their memory and can be resized without losing
// unread records.
//
// # Record Format
//
// Circular records are laid out as
//
//	[int32 little-endian length][payload]
//
// A length of -1 is a wrap marker: the reader continues at offset 0.
// A record never spans the physical end of the region.
//
// Stack payloads are packed upward from offset 0. An index of
// {offset int32, length int32} entries grows downward from the end.
//
// # Concurrency
//
// None of the buffers are safe for concurrent use. Guard them externally
// or hand them between goroutines through a queue.
package bytebuf

// Buffer is the record interface shared by all buffer layouts.
type Buffer interface {
	// Push copies data in as one record.
	// Returns false if data is empty or does not fit.
	Push(data []byte) bool

	// Pop copies the next record into dst and returns its length.
	// Returns 0 if the buffer is empty or dst is too short; in the
	// latter case the record stays in place.
	Pop(dst []byte) int

	// NextRecordSize returns the length of the record Pop would return, or 0.
	NextRecordSize() int

	// IsSpaceAvailable reports whether a record of n bytes would fit.
	IsSpaceAvailable(n int) bool

	// Capacity returns the size of the underlying region in bytes.
	Capacity() int

	// Empty reports whether the buffer holds no records.
	Empty() bool

	// Clear discards all records.
	Clear()
}
