package slotmap

import (
	"iter"

	"github.com/plus3/gidstore/chunky"
)

// Store keeps values densely packed in a chunked array and addresses them by
// handles issued elsewhere, typically by a Registry. Removal swap-removes the
// value and re-points the handle of the element that moved into its place.
type Store[T any] struct {
	keys *Lookup
	data *chunky.Array[T]
}

// NewStore returns an empty store whose arrays use chunks of the given size.
func NewStore[T any](size chunky.ChunkSize) *Store[T] {
	return &Store[T]{
		keys: NewLookup(size),
		data: chunky.New[T](size),
	}
}

// Insert stores v under h. It panics if h is invalid or its slot already
// holds a value; use Replace for upserts.
func (s *Store[T]) Insert(h GID, v T) {
	s.keys.Insert(h)
	s.data.Push(v)
}

// Replace overwrites the value under h, returning the previous one. If the
// slot is empty, or held by an older generation, v is inserted under h instead
// and the older value is dropped. A handle older than the slot's occupant is
// refused: the store is left untouched and false is returned.
func (s *Store[T]) Replace(h GID, v T) (old T, replaced bool) {
	if pos, ok := s.keys.Offset(h); ok {
		p := s.data.Get(pos)
		old, *p = *p, v
		return old, true
	}
	if occ, ok := s.keys.occupant(h.Index()); ok && h.IsValid() {
		if h.Generation() < occ.Generation() {
			return old, false
		}
		s.Remove(occ)
	}
	s.Insert(h, v)
	return old, false
}

// Remove deletes the value under h and returns it. Stale or unknown handles
// return false.
func (s *Store[T]) Remove(h GID) (T, bool) {
	pos, ok := s.keys.Remove(h)
	if !ok {
		var zero T
		return zero, false
	}
	return s.data.SwapRemove(pos), true
}

// Get returns a pointer to the value under h, or nil if h is stale. The
// pointer is valid until the next removal from the store.
func (s *Store[T]) Get(h GID) *T {
	pos, ok := s.keys.Offset(h)
	if !ok {
		return nil
	}
	return s.data.Get(pos)
}

// Offset returns the dense position of the value under h.
func (s *Store[T]) Offset(h GID) (int, bool) { return s.keys.Offset(h) }

// ContainsKey reports whether a value is stored under h.
func (s *Store[T]) ContainsKey(h GID) bool { return s.keys.ContainsKey(h) }

// KeyAt returns the handle of the value at dense position pos.
func (s *Store[T]) KeyAt(pos int) (GID, bool) { return s.keys.KeyAt(pos) }

// Len returns the number of stored values.
func (s *Store[T]) Len() int { return s.data.Len() }

// IsEmpty reports whether the store holds no values.
func (s *Store[T]) IsEmpty() bool { return s.data.IsEmpty() }

// Capacity returns how many values fit before another chunk is allocated.
func (s *Store[T]) Capacity() int { return s.data.Capacity() }

// Clear removes every value. Chunks are kept for reuse.
func (s *Store[T]) Clear() {
	s.keys.Clear()
	s.data.Clear()
}

// Reserve makes room for n more values without allocating new chunks.
func (s *Store[T]) Reserve(n int) {
	s.data.Reserve(n)
	s.keys.Reserve(n)
}

// ShrinkToFit releases chunks that hold no values.
func (s *Store[T]) ShrinkToFit() {
	s.data.ShrinkToFit()
	s.keys.ShrinkToFit()
}

// Values returns an iterator over the values in dense order.
func (s *Store[T]) Values() iter.Seq[*T] {
	return s.data.Values()
}

// Keys returns an iterator over the handles in dense order.
func (s *Store[T]) Keys() iter.Seq[GID] {
	return s.keys.Keys()
}

// All returns an iterator over handle and value pairs in dense order.
func (s *Store[T]) All() iter.Seq2[GID, *T] {
	return func(yield func(GID, *T) bool) {
		for pos, v := range s.data.All() {
			h, _ := s.keys.KeyAt(pos)
			if !yield(h, v) {
				return
			}
		}
	}
}
