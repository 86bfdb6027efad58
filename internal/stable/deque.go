package stable

import "iter"

// BlockDeque is a double-ended queue with stable element addresses.
//
// Element i lives at absolute position begin+i in a block directory that
// grows at both ends. Unused directory slots are nil.
type BlockDeque[T any] struct {
	alloc blocks[T]
	dir   [][]T
	begin int
	n     int
}

// NewDeque creates an empty BlockDeque with blocks of 1<<exp elements.
// It panics if exp is greater than 31.
func NewDeque[T any](exp uint) *BlockDeque[T] {
	return &BlockDeque[T]{alloc: newBlocks[T](exp)}
}

func (d *BlockDeque[T]) slot(pos int) *T {
	b := pos >> d.alloc.shift
	if d.dir[b] == nil {
		d.dir[b] = d.alloc.get()
	}
	return &d.dir[b][pos&d.alloc.mask]
}

func (d *BlockDeque[T]) release(b int) {
	d.alloc.put(d.dir[b])
	d.dir[b] = nil
}

// PushBack appends x and returns a pointer to the stored copy.
func (d *BlockDeque[T]) PushBack(x T) *T {
	pos := d.begin + d.n
	if pos>>d.alloc.shift >= len(d.dir) {
		d.growBack()
		pos = d.begin + d.n
	}
	p := d.slot(pos)
	*p = x
	d.n++
	return p
}

// growBack makes room for one more block at the back, first reclaiming
// directory slots left empty at the front.
func (d *BlockDeque[T]) growBack() {
	k := d.begin >> d.alloc.shift
	if k > 0 && k >= len(d.dir)/2 {
		copy(d.dir, d.dir[k:])
		clear(d.dir[len(d.dir)-k:])
		d.dir = d.dir[:len(d.dir)-k]
		d.begin -= k << d.alloc.shift
	}
	d.dir = append(d.dir, nil)
}

// PushFront prepends x and returns a pointer to the stored copy.
func (d *BlockDeque[T]) PushFront(x T) *T {
	if d.begin == 0 {
		d.growFront()
	}
	d.begin--
	p := d.slot(d.begin)
	*p = x
	d.n++
	return p
}

// growFront doubles the directory, putting the new slots in front.
func (d *BlockDeque[T]) growFront() {
	extra := max(len(d.dir), 1)
	dir := make([][]T, extra+len(d.dir))
	copy(dir[extra:], d.dir)
	d.dir = dir
	d.begin += extra << d.alloc.shift
}

// PopBack removes and returns the last element.
// Returns false if the deque is empty.
func (d *BlockDeque[T]) PopBack() (T, bool) {
	var zero T
	if d.n == 0 {
		return zero, false
	}
	d.n--
	pos := d.begin + d.n
	p := &d.dir[pos>>d.alloc.shift][pos&d.alloc.mask]
	x := *p
	*p = zero
	if pos&d.alloc.mask == 0 {
		d.release(pos >> d.alloc.shift)
	}
	return x, true
}

// PopFront removes and returns the first element.
// Returns false if the deque is empty.
func (d *BlockDeque[T]) PopFront() (T, bool) {
	var zero T
	if d.n == 0 {
		return zero, false
	}
	pos := d.begin
	p := &d.dir[pos>>d.alloc.shift][pos&d.alloc.mask]
	x := *p
	*p = zero
	d.begin++
	d.n--
	if d.begin&d.alloc.mask == 0 {
		d.release(pos >> d.alloc.shift)
	}
	return x, true
}

// At returns a pointer to element i. It panics if i is out of range.
func (d *BlockDeque[T]) At(i int) *T {
	checkIndex(i, d.n)
	pos := d.begin + i
	return &d.dir[pos>>d.alloc.shift][pos&d.alloc.mask]
}

// Front returns the first element, or nil if the deque is empty.
func (d *BlockDeque[T]) Front() *T {
	if d.n == 0 {
		return nil
	}
	return d.At(0)
}

// Back returns the last element, or nil if the deque is empty.
func (d *BlockDeque[T]) Back() *T {
	if d.n == 0 {
		return nil
	}
	return d.At(d.n - 1)
}

// Len returns the number of elements.
func (d *BlockDeque[T]) Len() int { return d.n }

// Empty reports whether the deque has no elements.
func (d *BlockDeque[T]) Empty() bool { return d.n == 0 }

// Clear removes every element. The blocks are kept for reuse.
func (d *BlockDeque[T]) Clear() {
	for b, blk := range d.dir {
		if blk != nil {
			d.release(b)
		}
	}
	d.dir = d.dir[:0]
	d.begin = 0
	d.n = 0
}

// ShrinkToFit releases the blocks on the free list.
func (d *BlockDeque[T]) ShrinkToFit() {
	d.alloc.shrink()
}

// All yields each index with a pointer to its element, front to back.
func (d *BlockDeque[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i := 0; i < d.n; i++ {
			pos := d.begin + i
			if !yield(i, &d.dir[pos>>d.alloc.shift][pos&d.alloc.mask]) {
				return
			}
		}
	}
}

// FreeBlocks returns the number of blocks waiting for reuse.
func (d *BlockDeque[T]) FreeBlocks() int { return len(d.alloc.free) }
