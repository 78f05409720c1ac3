package chunky

// Chunk is a fixed-capacity segment of an Array. Its backing storage is
// allocated once and never grows, which keeps element addresses stable.
type Chunk[T any] struct {
	items []T
}

func newChunk[T any](size int) *Chunk[T] {
	return &Chunk[T]{items: make([]T, 0, size)}
}

// Len returns the number of elements stored in the chunk.
func (c *Chunk[T]) Len() int { return len(c.items) }

// Cap returns the fixed capacity of the chunk.
func (c *Chunk[T]) Cap() int { return cap(c.items) }

// IsEmpty reports whether the chunk holds no elements.
func (c *Chunk[T]) IsEmpty() bool { return len(c.items) == 0 }

// Exhausted reports whether the chunk is full.
func (c *Chunk[T]) Exhausted() bool { return len(c.items) >= cap(c.items) }

// At returns a pointer to the element at offset i. It panics if i is out of range.
func (c *Chunk[T]) At(i int) *T { return &c.items[i] }

func (c *Chunk[T]) push(v T) {
	if c.Exhausted() {
		panic("chunky: push into exhausted chunk")
	}
	c.items = append(c.items, v)
}

func (c *Chunk[T]) pop() (T, bool) {
	var zero T
	n := len(c.items)
	if n == 0 {
		return zero, false
	}
	v := c.items[n-1]
	c.items[n-1] = zero
	c.items = c.items[:n-1]
	return v, true
}

// insert places v at offset i, shifting later elements right. When the chunk
// is already full its last element is pushed out and returned as the carry.
func (c *Chunk[T]) insert(v T, i int) (carry T, carried bool) {
	if c.Exhausted() {
		carry, carried = c.pop()
	}
	n := len(c.items)
	c.items = c.items[:n+1]
	copy(c.items[i+1:], c.items[i:n])
	c.items[i] = v
	return carry, carried
}

func (c *Chunk[T]) remove(i int) T {
	var zero T
	v := c.items[i]
	n := len(c.items)
	copy(c.items[i:], c.items[i+1:])
	c.items[n-1] = zero
	c.items = c.items[:n-1]
	return v
}

func (c *Chunk[T]) truncate(n int) {
	if n >= len(c.items) {
		return
	}
	clear(c.items[n:])
	c.items = c.items[:n]
}

func (c *Chunk[T]) clear() {
	clear(c.items)
	c.items = c.items[:0]
}
