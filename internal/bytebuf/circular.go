package bytebuf

import "math"

// CircularRaw is a FIFO ring of length-prefixed records over a borrowed slice.
//
// The caller owns the slice and must keep it alive and unshared for the
// lifetime of the buffer.
//
// The buffer is empty when the read and write offsets are equal. To keep a
// full ring distinguishable from an empty one, a record placed behind the
// read offset must leave at least one spare byte before it.
type CircularRaw struct {
	buf   []byte
	read  int
	write int
}

// placement says where the next record of a given size would be written.
type placement int

const (
	placeNone   placement = iota
	placeTail             // at the write offset, ahead of the read offset
	placeOrigin           // at offset 0, after a wrap marker
	placeGap              // at the write offset, behind the read offset
)

// NewCircularRaw creates a ring over buf. Its capacity is len(buf).
func NewCircularRaw(buf []byte) *CircularRaw {
	return &CircularRaw{buf: buf}
}

func (c *CircularRaw) place(n int) placement {
	if n < 0 || n > math.MaxInt32-headerSize {
		return placeNone
	}
	need := n + headerSize
	if c.write >= c.read {
		if len(c.buf)-c.write >= need {
			return placeTail
		}
		if c.read > need {
			return placeOrigin
		}
		return placeNone
	}
	if c.read-c.write > need {
		return placeGap
	}
	return placeNone
}

// IsSpaceAvailable reports whether a record of n bytes would fit.
func (c *CircularRaw) IsSpaceAvailable(n int) bool {
	return c.place(n) != placeNone
}

// Push appends data as one record.
//
// Returns false if data is empty or no contiguous region can hold it.
// On failure the buffer is not modified.
func (c *CircularRaw) Push(data []byte) bool {
	n := len(data)
	if n == 0 {
		return false
	}
	switch c.place(n) {
	case placeTail:
		c.writeRecord(data)
		// A tail too short for a header can never hold a record, so move
		// on to the origin as soon as the reader has left it.
		if len(c.buf)-c.write < headerSize && c.read > 0 {
			c.write = 0
		}
	case placeOrigin:
		if len(c.buf)-c.write >= headerSize {
			putHeader(c.buf[c.write:], header{wrap: true})
		}
		c.write = 0
		c.writeRecord(data)
	case placeGap:
		c.writeRecord(data)
	default:
		return false
	}
	return true
}

func (c *CircularRaw) writeRecord(data []byte) {
	putHeader(c.buf[c.write:], header{length: len(data)})
	copy(c.buf[c.write+headerSize:], data)
	c.write += headerSize + len(data)
}

// seek moves the read offset onto the next real record header.
// Must only be called when the buffer is not empty.
func (c *CircularRaw) seek() {
	if len(c.buf)-c.read < headerSize {
		c.read = 0
	}
	if readHeader(c.buf[c.read:]).wrap {
		c.read = 0
	}
}

// Pop copies the oldest record into dst and returns its length.
//
// Returns 0 if the buffer is empty or if dst is shorter than the record.
// A record that does not fit in dst is left in the buffer.
func (c *CircularRaw) Pop(dst []byte) int {
	if c.Empty() {
		return 0
	}
	c.seek()
	h := readHeader(c.buf[c.read:])
	if len(dst) < h.length {
		return 0
	}
	start := c.read + headerSize
	copy(dst, c.buf[start:start+h.length])
	c.read = start + h.length
	if len(c.buf)-c.read < headerSize && c.read != c.write {
		c.read = 0
	}
	return h.length
}

// NextRecordSize returns the length of the oldest record, or 0 if empty.
func (c *CircularRaw) NextRecordSize() int {
	if c.Empty() {
		return 0
	}
	pos := c.read
	if len(c.buf)-pos < headerSize {
		pos = 0
	}
	h := readHeader(c.buf[pos:])
	if h.wrap {
		h = readHeader(c.buf)
	}
	return h.length
}

// Capacity returns the size of the ring in bytes.
func (c *CircularRaw) Capacity() int {
	return len(c.buf)
}

// Empty reports whether the ring holds no records.
func (c *CircularRaw) Empty() bool {
	return c.read == c.write
}

// Clear discards all records.
func (c *CircularRaw) Clear() {
	c.read = 0
	c.write = 0
}
