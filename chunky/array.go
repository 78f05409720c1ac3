package chunky

import (
	"fmt"
	"iter"
	"slices"
)

// Array is an unbounded sequence stored in fixed-size chunks.
// Element i lives in chunk i/ChunkSize() at offset i%ChunkSize(), and every
// chunk before the last one in use is full. Chunks emptied by Pop, Truncate or
// Clear are kept for reuse until ShrinkToFit is called.
type Array[T any] struct {
	chunkSize int
	used      int
	chunks    []*Chunk[T]
}

// New creates an empty Array. No chunk is allocated until the first Push.
func New[T any](size ChunkSize) *Array[T] {
	return &Array[T]{
		chunkSize: elementsFor[T](size),
	}
}

// WithCapacity creates an empty Array with room for at least capacity elements.
func WithCapacity[T any](size ChunkSize, capacity int) *Array[T] {
	a := New[T](size)
	a.Reserve(capacity)
	return a
}

func (a *Array[T]) locate(i int) (int, int) {
	return i / a.chunkSize, i % a.chunkSize
}

func (a *Array[T]) mustIndex(i int) {
	if n := a.Len(); i < 0 || i >= n {
		panic(fmt.Sprintf("chunky: index %d out of range [0:%d]", i, n))
	}
}

// Len returns the number of elements in the array.
func (a *Array[T]) Len() int {
	if a.used == 0 {
		return 0
	}
	return (a.used-1)*a.chunkSize + a.chunks[a.used-1].Len()
}

// IsEmpty reports whether the array holds no elements.
func (a *Array[T]) IsEmpty() bool { return a.used == 0 }

// Capacity returns the number of elements the allocated chunks can hold.
func (a *Array[T]) Capacity() int { return len(a.chunks) * a.chunkSize }

// ChunkSize returns the number of elements per chunk.
func (a *Array[T]) ChunkSize() int { return a.chunkSize }

// ChunksUsed returns the number of chunks currently holding elements.
func (a *Array[T]) ChunksUsed() int { return a.used }

// ChunksAllocated returns the number of chunks allocated, used or not.
func (a *Array[T]) ChunksAllocated() int { return len(a.chunks) }

// Chunk returns the k-th chunk in use, or nil if k is out of range.
func (a *Array[T]) Chunk(k int) *Chunk[T] {
	if k < 0 || k >= a.used {
		return nil
	}
	return a.chunks[k]
}

// Get returns a pointer to element i, or nil if i is out of range.
// The pointer stays valid until the element is removed or moved by a
// removal or insertion.
func (a *Array[T]) Get(i int) *T {
	if i < 0 || i >= a.Len() {
		return nil
	}
	c, o := a.locate(i)
	return a.chunks[c].At(o)
}

// Set overwrites element i. It panics if i is out of range.
func (a *Array[T]) Set(i int, v T) {
	a.mustIndex(i)
	c, o := a.locate(i)
	*a.chunks[c].At(o) = v
}

// Push appends v, starting a new chunk only when the last one is full.
func (a *Array[T]) Push(v T) {
	if a.used == 0 || a.chunks[a.used-1].Exhausted() {
		if a.used == len(a.chunks) {
			a.chunks = append(a.chunks, newChunk[T](a.chunkSize))
		}
		a.used++
	}
	a.chunks[a.used-1].push(v)
}

// Pop removes and returns the last element.
func (a *Array[T]) Pop() (T, bool) {
	if a.used == 0 {
		var zero T
		return zero, false
	}
	last := a.chunks[a.used-1]
	v, _ := last.pop()
	if last.IsEmpty() {
		a.used--
	}
	return v, true
}

// SwapRemove removes element i by moving the last element into its place.
// Order is not preserved. It panics if i is out of range.
func (a *Array[T]) SwapRemove(i int) T {
	a.mustIndex(i)
	last, _ := a.Pop()
	if i == a.Len() {
		return last
	}
	p := a.Get(i)
	v := *p
	*p = last
	return v
}

// Remove removes element i and shifts every later element left by one,
// pulling the head of each following chunk back into the previous one.
// It panics if i is out of range.
func (a *Array[T]) Remove(i int) T {
	a.mustIndex(i)
	c, o := a.locate(i)
	v := a.chunks[c].remove(o)
	for k := c + 1; k < a.used; k++ {
		a.chunks[k-1].push(a.chunks[k].remove(0))
	}
	if a.chunks[a.used-1].IsEmpty() {
		a.used--
	}
	return v
}

// Insert places v at position i, shifting later elements right. The element
// pushed out of each full chunk is carried into the head of the next one.
// It returns false, leaving the array untouched, if i > Len().
func (a *Array[T]) Insert(v T, i int) bool {
	n := a.Len()
	if i < 0 || i > n {
		return false
	}
	if i == n {
		a.Push(v)
		return true
	}

	c, o := a.locate(i)
	carry, carried := a.chunks[c].insert(v, o)
	for k := c + 1; carried && k < a.used; k++ {
		carry, carried = a.chunks[k].insert(carry, 0)
	}
	if carried {
		a.Push(carry)
	}
	return true
}

// Truncate drops every element at or beyond position n.
func (a *Array[T]) Truncate(n int) {
	n = max(n, 0)
	if n >= a.Len() {
		return
	}

	keep := (n + a.chunkSize - 1) / a.chunkSize
	for k := keep; k < a.used; k++ {
		a.chunks[k].clear()
	}
	if keep > 0 {
		a.chunks[keep-1].truncate(n - (keep-1)*a.chunkSize)
	}
	a.used = keep
}

// Resize grows the array to n elements by appending copies of value, or
// truncates it to n elements.
func (a *Array[T]) Resize(n int, value T) {
	a.ResizeFunc(n, func() T { return value })
}

// ResizeFunc grows the array to n elements by appending values produced by fn,
// or truncates it to n elements.
func (a *Array[T]) ResizeFunc(n int, fn func() T) {
	length := a.Len()
	if n <= length {
		a.Truncate(n)
		return
	}
	a.Reserve(n - length)
	for ; length < n; length++ {
		a.Push(fn())
	}
}

// Reserve allocates chunks so that additional elements can be pushed
// without further allocation.
func (a *Array[T]) Reserve(additional int) {
	need := a.Len() + max(additional, 0)
	chunks := (need + a.chunkSize - 1) / a.chunkSize
	if chunks <= len(a.chunks) {
		return
	}
	a.chunks = slices.Grow(a.chunks, chunks-len(a.chunks))
	for len(a.chunks) < chunks {
		a.chunks = append(a.chunks, newChunk[T](a.chunkSize))
	}
}

// ShrinkToFit releases every chunk that holds no elements. Chunks in use are
// never released.
func (a *Array[T]) ShrinkToFit() {
	clear(a.chunks[a.used:])
	a.chunks = slices.Clip(a.chunks[:a.used])
}

// Clear removes every element but keeps the chunks for reuse.
func (a *Array[T]) Clear() {
	for k := 0; k < a.used; k++ {
		a.chunks[k].clear()
	}
	a.used = 0
}

// All returns an iterator over positions and element pointers in index order.
func (a *Array[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		i := 0
		for k := 0; k < a.used; k++ {
			items := a.chunks[k].items
			for o := range items {
				if !yield(i, &items[o]) {
					return
				}
				i++
			}
		}
	}
}

// Values returns an iterator over element pointers in index order.
func (a *Array[T]) Values() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for _, v := range a.All() {
			if !yield(v) {
				return
			}
		}
	}
}
