// Package stable provides containers whose elements never move.
//
// Elements live in fixed-size blocks of 1<<exp values. Growing a container
// appends blocks instead of reallocating, so a pointer returned by At, Front
// or Back stays valid until that element is popped or the container is
// cleared. Emptied blocks go on a free list and are reused by later pushes;
// ShrinkToFit releases them.
//
// The containers are not safe for concurrent use.
package stable

import (
	"fmt"
	"iter"
)

// maxExp bounds the block exponent.
const maxExp = 31

// blocks is the block allocator shared by the containers.
type blocks[T any] struct {
	shift uint
	mask  int
	free  [][]T
}

func newBlocks[T any](exp uint) blocks[T] {
	if exp > maxExp {
		panic(fmt.Sprintf("stable: block exponent %d out of range [0:%d]", exp, maxExp))
	}
	return blocks[T]{shift: exp, mask: 1<<exp - 1}
}

func (b *blocks[T]) size() int {
	return 1 << b.shift
}

func (b *blocks[T]) get() []T {
	if n := len(b.free); n > 0 {
		blk := b.free[n-1]
		b.free[n-1] = nil
		b.free = b.free[:n-1]
		return blk
	}
	return make([]T, b.size())
}

func (b *blocks[T]) put(blk []T) {
	clear(blk)
	b.free = append(b.free, blk)
}

func (b *blocks[T]) shrink() {
	clear(b.free)
	b.free = nil
}

func checkIndex(i, n int) {
	if i < 0 || i >= n {
		panic(fmt.Sprintf("stable: index %d out of range [0:%d]", i, n))
	}
}

// BlockVector is a growable sequence with stable element addresses.
type BlockVector[T any] struct {
	alloc blocks[T]
	dir   [][]T
	n     int
}

// New creates an empty BlockVector with blocks of 1<<exp elements.
// It panics if exp is greater than 31.
func New[T any](exp uint) *BlockVector[T] {
	return &BlockVector[T]{alloc: newBlocks[T](exp)}
}

// Push appends v and returns a pointer to the stored copy.
func (v *BlockVector[T]) Push(x T) *T {
	if v.n == len(v.dir)<<v.alloc.shift {
		v.dir = append(v.dir, v.alloc.get())
	}
	p := &v.dir[v.n>>v.alloc.shift][v.n&v.alloc.mask]
	*p = x
	v.n++
	return p
}

// PushN appends count copies of x.
func (v *BlockVector[T]) PushN(count int, x T) {
	for i := 0; i < count; i++ {
		v.Push(x)
	}
}

// PopBack removes and returns the last element.
// Returns false if the vector is empty.
func (v *BlockVector[T]) PopBack() (T, bool) {
	var zero T
	if v.n == 0 {
		return zero, false
	}
	v.n--
	blk := v.dir[v.n>>v.alloc.shift]
	x := blk[v.n&v.alloc.mask]
	blk[v.n&v.alloc.mask] = zero
	if v.n&v.alloc.mask == 0 {
		last := len(v.dir) - 1
		v.alloc.put(v.dir[last])
		v.dir[last] = nil
		v.dir = v.dir[:last]
	}
	return x, true
}

// At returns a pointer to element i. It panics if i is out of range.
func (v *BlockVector[T]) At(i int) *T {
	checkIndex(i, v.n)
	return &v.dir[i>>v.alloc.shift][i&v.alloc.mask]
}

// Front returns the first element, or nil if the vector is empty.
func (v *BlockVector[T]) Front() *T {
	if v.n == 0 {
		return nil
	}
	return &v.dir[0][0]
}

// Back returns the last element, or nil if the vector is empty.
func (v *BlockVector[T]) Back() *T {
	if v.n == 0 {
		return nil
	}
	return v.At(v.n - 1)
}

// Len returns the number of elements.
func (v *BlockVector[T]) Len() int { return v.n }

// Empty reports whether the vector has no elements.
func (v *BlockVector[T]) Empty() bool { return v.n == 0 }

// Clear removes every element. The blocks are kept for reuse.
func (v *BlockVector[T]) Clear() {
	for i, blk := range v.dir {
		v.alloc.put(blk)
		v.dir[i] = nil
	}
	v.dir = v.dir[:0]
	v.n = 0
}

// ShrinkToFit releases the blocks on the free list.
func (v *BlockVector[T]) ShrinkToFit() {
	v.alloc.shrink()
}

// Assign replaces the contents with xs.
func (v *BlockVector[T]) Assign(xs ...T) {
	v.Clear()
	for _, x := range xs {
		v.Push(x)
	}
}

// All yields each index with a pointer to its element, front to back.
func (v *BlockVector[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i := 0; i < v.n; i++ {
			if !yield(i, &v.dir[i>>v.alloc.shift][i&v.alloc.mask]) {
				return
			}
		}
	}
}

// BlockCount returns the number of blocks in use.
func (v *BlockVector[T]) BlockCount() int { return len(v.dir) }

// FreeBlocks returns the number of blocks waiting for reuse.
func (v *BlockVector[T]) FreeBlocks() int { return len(v.alloc.free) }
