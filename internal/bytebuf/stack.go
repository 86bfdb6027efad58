package bytebuf

import "math"

// StackRaw is a LIFO stack of records over a borrowed slice.
//
// Payload bytes are packed from the start of the slice. Each record gets an
// 8-byte index entry; entry i (0-based push order) lives at
// len(buf) - 8*(i+1). Reverse flips the index so records come out in push
// order without moving any payload.
type StackRaw struct {
	buf   []byte
	next  int
	count int
}

// NewStackRaw creates a stack over buf. Its capacity is len(buf).
func NewStackRaw(buf []byte) *StackRaw {
	return &StackRaw{buf: buf}
}

// entryAt returns the index slot for the i-th record (1-based from the bottom).
func (s *StackRaw) entryAt(i int) []byte {
	off := len(s.buf) - i*indexSize
	return s.buf[off : off+indexSize]
}

// IsSpaceAvailable reports whether a record of n bytes and its index entry would fit.
func (s *StackRaw) IsSpaceAvailable(n int) bool {
	if n < 0 {
		return false
	}
	return len(s.buf)-s.next-(s.count+1)*indexSize >= n
}

// Push copies data on top of the stack.
// Returns false if data is empty or does not fit.
func (s *StackRaw) Push(data []byte) bool {
	n := len(data)
	if n == 0 || n > math.MaxInt32 || !s.IsSpaceAvailable(n) {
		return false
	}
	copy(s.buf[s.next:], data)
	s.count++
	putIndex(s.entryAt(s.count), indexEntry{offset: s.next, length: n})
	s.next += n
	return true
}

// Pop copies the top record into dst and returns its length.
//
// Returns 0 if the stack is empty or dst is too short to hold the record.
func (s *StackRaw) Pop(dst []byte) int {
	if s.count == 0 {
		return 0
	}
	e := readIndex(s.entryAt(s.count))
	if len(dst) < e.length {
		return 0
	}
	copy(dst, s.buf[e.offset:e.offset+e.length])
	if e.offset+e.length == s.next {
		s.next -= e.length
	}
	s.count--
	if s.count == 0 {
		s.next = 0
	}
	return e.length
}

// NextRecordSize returns the length of the top record, or 0 if empty.
func (s *StackRaw) NextRecordSize() int {
	if s.count == 0 {
		return 0
	}
	return readIndex(s.entryAt(s.count)).length
}

// Reverse inverts the pop order. Only the index entries move.
func (s *StackRaw) Reverse() {
	for i, j := 1, s.count; i < j; i, j = i+1, j-1 {
		a, b := s.entryAt(i), s.entryAt(j)
		var tmp [indexSize]byte
		copy(tmp[:], a)
		copy(a, b)
		copy(b, tmp[:])
	}
}

// Count returns the number of records on the stack.
func (s *StackRaw) Count() int {
	return s.count
}

// Capacity returns the size of the region in bytes.
func (s *StackRaw) Capacity() int {
	return len(s.buf)
}

// Empty reports whether the stack holds no records.
func (s *StackRaw) Empty() bool {
	return s.count == 0
}

// Clear discards all records.
func (s *StackRaw) Clear() {
	s.next = 0
	s.count = 0
}
