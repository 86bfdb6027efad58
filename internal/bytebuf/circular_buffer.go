package bytebuf

import "fmt"

// Circular is a CircularRaw that owns its memory and can be resized.
//
// The zero value is an empty buffer of capacity 0.
type Circular struct {
	CircularRaw
}

// NewCircular allocates a ring of size bytes.
func NewCircular(size int) (*Circular, error) {
	if size < 0 {
		return nil, fmt.Errorf("new circular buffer of %d bytes: %w", size, ErrNegativeSize)
	}
	return &Circular{CircularRaw{buf: make([]byte, size)}}, nil
}

// Resize changes the capacity to size bytes, keeping all unread records in order.
//
// Shrinking fails with ErrResizeInfeasible when the live records cannot be
// laid out in size bytes; the buffer is unchanged in that case.
func (c *Circular) Resize(size int) error {
	if size < 0 {
		return fmt.Errorf("resize circular buffer to %d: %w", size, ErrNegativeSize)
	}
	oldCap := len(c.buf)
	if size == oldCap {
		return nil
	}
	if c.Empty() {
		c.buf = resizeBlock(c.buf, size)
		c.Clear()
		return nil
	}

	if c.write < c.read {
		// Wrapped: the span [read, oldCap) moves to the end of the new region.
		tail := oldCap - c.read
		if size < oldCap && tail+c.write >= size {
			return fmt.Errorf("resize circular buffer from %d to %d (%d live bytes): %w",
				oldCap, size, tail+c.write, ErrResizeInfeasible)
		}
		if size > oldCap {
			c.buf = resizeBlock(c.buf, size)
		}
		copy(c.buf[size-tail:size], c.buf[c.read:oldCap])
		c.buf = c.buf[:size]
		c.read = size - tail
		return nil
	}

	if size > oldCap || c.write <= size {
		c.buf = resizeBlock(c.buf, size)
		return nil
	}
	live := c.write - c.read
	if live > size {
		return fmt.Errorf("resize circular buffer from %d to %d (%d live bytes): %w",
			oldCap, size, live, ErrResizeInfeasible)
	}
	copy(c.buf, c.buf[c.read:c.write])
	c.buf = c.buf[:size]
	c.read = 0
	c.write = live
	return nil
}

// Clone returns an independent copy with the same records and offsets.
func (c *Circular) Clone() *Circular {
	buf := make([]byte, len(c.buf))
	copy(buf, c.buf)
	return &Circular{CircularRaw{buf: buf, read: c.read, write: c.write}}
}

// MoveFrom takes over the memory of src. src is left empty with capacity 0.
func (c *Circular) MoveFrom(src *Circular) {
	if c == src {
		return
	}
	c.CircularRaw = src.CircularRaw
	src.CircularRaw = CircularRaw{}
}

// Swap exchanges the contents of two buffers.
func (c *Circular) Swap(other *Circular) {
	c.CircularRaw, other.CircularRaw = other.CircularRaw, c.CircularRaw
}

// resizeBlock returns a slice of length size holding the leading bytes of b.
// The backing array is reused when it is large enough.
func resizeBlock(b []byte, size int) []byte {
	if size <= cap(b) {
		return b[:size]
	}
	nb := make([]byte, size)
	copy(nb, b)
	return nb
}
