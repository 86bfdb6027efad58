package bytebuf

import "encoding/binary"

const (
	headerSize = 4
	indexSize  = 8
	wrapLength = -1
)

// header is a decoded circular record header.
type header struct {
	wrap   bool
	length int
}

func readHeader(b []byte) header {
	v := int32(binary.LittleEndian.Uint32(b))
	if v == wrapLength {
		return header{wrap: true}
	}
	return header{length: int(v)}
}

func putHeader(b []byte, h header) {
	v := int32(h.length)
	if h.wrap {
		v = wrapLength
	}
	binary.LittleEndian.PutUint32(b, uint32(v))
}

// indexEntry locates one stack payload.
type indexEntry struct {
	offset int
	length int
}

func readIndex(b []byte) indexEntry {
	return indexEntry{
		offset: int(int32(binary.LittleEndian.Uint32(b))),
		length: int(int32(binary.LittleEndian.Uint32(b[4:]))),
	}
}

func putIndex(b []byte, e indexEntry) {
	binary.LittleEndian.PutUint32(b, uint32(int32(e.offset)))
	binary.LittleEndian.PutUint32(b[4:], uint32(int32(e.length)))
}
