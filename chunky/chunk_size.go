// Package chunky provides a growable array built from fixed-capacity chunks.
// Growth only ever appends new chunks, so elements already placed are never
// moved and pointers returned by Get stay valid while the array grows.
package chunky

import "reflect"

const defaultChunkBytes = 16 * 1024

// ChunkSize describes the capacity of each chunk, either as an element count
// or as a byte budget divided by the element size. The zero value is a 16KiB
// byte budget.
type ChunkSize struct {
	elements int
	bytes    int
}

// DefaultChunkSize is the chunk size used when none is given.
var DefaultChunkSize = Bytes(defaultChunkBytes)

// Elements returns a ChunkSize holding n elements per chunk.
func Elements(n int) ChunkSize {
	return ChunkSize{elements: max(1, n)}
}

// Bytes returns a ChunkSize that fits as many elements as possible into n bytes,
// with a minimum of one element per chunk.
func Bytes(n int) ChunkSize {
	return ChunkSize{bytes: n}
}

func elementsFor[T any](cs ChunkSize) int {
	if cs.elements > 0 {
		return cs.elements
	}

	budget := cs.bytes
	if budget <= 0 {
		budget = defaultChunkBytes
	}

	size := int(reflect.TypeFor[T]().Size())
	if size == 0 {
		size = 1
	}
	return max(1, budget/size)
}
