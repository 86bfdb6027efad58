package stable

import "iter"

// MappedVector is a BlockVector searchable by key.
//
// It suits a run of inserts followed by lookups. Values keep their index and
// address for the life of the container. Removing a value unlinks its keys;
// the storage is released only when the value is the last one, so no other
// value ever moves.
type MappedVector[K comparable, V any] struct {
	data  *BlockVector[V]
	index map[K]int
}

// NewMapped creates an empty MappedVector with blocks of 1<<exp values.
func NewMapped[K comparable, V any](exp uint) *MappedVector[K, V] {
	return &MappedVector[K, V]{
		data:  New[V](exp),
		index: make(map[K]int),
	}
}

// Insert stores v under k and returns its index.
// Returns false, leaving the container unchanged, if k is already present.
func (m *MappedVector[K, V]) Insert(k K, v V) (int, bool) {
	if _, ok := m.index[k]; ok {
		return 0, false
	}
	i := m.data.Len()
	m.data.Push(v)
	m.index[k] = i
	return i, true
}

// InsertOrAssign stores v under k, replacing any existing value in place,
// and returns its index.
func (m *MappedVector[K, V]) InsertOrAssign(k K, v V) int {
	if i, ok := m.index[k]; ok {
		*m.data.At(i) = v
		return i
	}
	i, _ := m.Insert(k, v)
	return i
}

// AddKey makes k another key for the value at index i.
// Returns false if i is out of range or k is already in use.
func (m *MappedVector[K, V]) AddKey(k K, i int) bool {
	if i < 0 || i >= m.data.Len() {
		return false
	}
	if _, ok := m.index[k]; ok {
		return false
	}
	m.index[k] = i
	return true
}

// Find returns the value stored under k.
func (m *MappedVector[K, V]) Find(k K) (*V, bool) {
	i, ok := m.index[k]
	if !ok {
		return nil, false
	}
	return m.data.At(i), true
}

// At returns the value at index i. It panics if i is out of range.
func (m *MappedVector[K, V]) At(i int) *V {
	return m.data.At(i)
}

// Back returns the most recently inserted value, or nil if empty.
func (m *MappedVector[K, V]) Back() *V {
	return m.data.Back()
}

// Len returns the number of values.
func (m *MappedVector[K, V]) Len() int { return m.data.Len() }

// Apply calls fn on every value in insertion order.
func (m *MappedVector[K, V]) Apply(fn func(*V)) {
	for _, v := range m.data.All() {
		fn(v)
	}
}

// All yields each index with its value in insertion order.
func (m *MappedVector[K, V]) All() iter.Seq2[int, *V] {
	return m.data.All()
}

// Remove unlinks k from its value and reports whether k was present.
// The value is dropped only if it is the last one and no other key still
// refers to it; otherwise it stays reachable through At.
func (m *MappedVector[K, V]) Remove(k K) bool {
	i, ok := m.index[k]
	if !ok {
		return false
	}
	delete(m.index, k)
	if i != m.data.Len()-1 {
		return true
	}
	for _, j := range m.index {
		if j == i {
			return true
		}
	}
	m.data.PopBack()
	return true
}

// RemoveIndex unlinks every key of the value at index i. The value is
// dropped only if it is the last one. Out of range indexes are ignored.
func (m *MappedVector[K, V]) RemoveIndex(i int) {
	if i < 0 || i >= m.data.Len() {
		return
	}
	for k, j := range m.index {
		if j == i {
			delete(m.index, k)
		}
	}
	if i == m.data.Len()-1 {
		m.data.PopBack()
	}
}

// Clear removes every value and key.
func (m *MappedVector[K, V]) Clear() {
	m.data.Clear()
	clear(m.index)
}
