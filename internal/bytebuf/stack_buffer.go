package bytebuf

import "fmt"

// Stack is a StackRaw that owns its memory and can be resized.
//
// The zero value is an empty stack of capacity 0.
type Stack struct {
	StackRaw
}

// NewStack allocates a stack of size bytes.
func NewStack(size int) (*Stack, error) {
	if size < 0 {
		return nil, fmt.Errorf("new stack buffer of %d bytes: %w", size, ErrNegativeSize)
	}
	return &Stack{StackRaw{buf: make([]byte, size)}}, nil
}

// Resize changes the capacity to size bytes, keeping all records and their order.
//
// The index block moves to the new end of the region; payload stays put.
// Shrinking fails with ErrResizeInfeasible when payload and index would overlap.
func (s *Stack) Resize(size int) error {
	if size < 0 {
		return fmt.Errorf("resize stack buffer to %d: %w", size, ErrNegativeSize)
	}
	oldCap := len(s.buf)
	if size == oldCap {
		return nil
	}
	if s.count == 0 {
		s.buf = resizeBlock(s.buf, size)
		s.Clear()
		return nil
	}

	indexBytes := s.count * indexSize
	if size < s.next+indexBytes {
		return fmt.Errorf("resize stack buffer from %d to %d (%d live bytes): %w",
			oldCap, size, s.next+indexBytes, ErrResizeInfeasible)
	}
	if size > oldCap {
		s.buf = resizeBlock(s.buf, size)
	}
	copy(s.buf[size-indexBytes:size], s.buf[oldCap-indexBytes:oldCap])
	s.buf = s.buf[:size]
	return nil
}

// RawBlockCapacity returns the size of the backing allocation, which may
// exceed Capacity after a shrink.
func (s *Stack) RawBlockCapacity() int {
	return cap(s.buf)
}

// Clone returns an independent copy with the same records.
func (s *Stack) Clone() *Stack {
	buf := make([]byte, len(s.buf))
	copy(buf, s.buf)
	return &Stack{StackRaw{buf: buf, next: s.next, count: s.count}}
}

// MoveFrom takes over the memory of src. src is left empty with capacity 0.
func (s *Stack) MoveFrom(src *Stack) {
	if s == src {
		return
	}
	s.StackRaw = src.StackRaw
	src.StackRaw = StackRaw{}
}

// Swap exchanges the contents of two stacks.
func (s *Stack) Swap(other *Stack) {
	s.StackRaw, other.StackRaw = other.StackRaw, s.StackRaw
}
