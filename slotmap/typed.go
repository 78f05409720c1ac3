package slotmap

import "iter"

// Key is a handle tagged with the domain it was issued for. A Key[A] cannot
// be used with a TypedMap[B, T], which turns handle/container mix-ups into
// compile errors.
type Key[Tag any] struct {
	gid GID
}

// KeyOf tags an untyped handle.
func KeyOf[Tag any](g GID) Key[Tag] { return Key[Tag]{gid: g} }

// GID returns the untyped handle.
func (k Key[Tag]) GID() GID { return k.gid }

// IsValid reports whether the key carries a nonzero generation.
func (k Key[Tag]) IsValid() bool { return k.gid.IsValid() }

func (k Key[Tag]) String() string { return k.gid.String() }

// TypedMap is a SlotMap whose handles are Keys tagged with Tag.
type TypedMap[Tag, T any] struct {
	m *SlotMap[T]
}

// NewTyped returns an empty TypedMap configured by opts.
func NewTyped[Tag, T any](opts ...Option) *TypedMap[Tag, T] {
	return &TypedMap[Tag, T]{m: New[T](opts...)}
}

// Insert stores v and returns its key.
func (t *TypedMap[Tag, T]) Insert(v T) Key[Tag] {
	return Key[Tag]{gid: t.m.Insert(v)}
}

// Remove deletes the value under k and revokes k.
func (t *TypedMap[Tag, T]) Remove(k Key[Tag]) (T, bool) { return t.m.Remove(k.gid) }

// Get returns a pointer to the value under k, or nil if k is stale.
func (t *TypedMap[Tag, T]) Get(k Key[Tag]) *T { return t.m.Get(k.gid) }

// ContainsKey reports whether k refers to a value in this map.
func (t *TypedMap[Tag, T]) ContainsKey(k Key[Tag]) bool { return t.m.ContainsKey(k.gid) }

// Len returns the number of values.
func (t *TypedMap[Tag, T]) Len() int { return t.m.Len() }

// Clear removes every value and revokes its key.
func (t *TypedMap[Tag, T]) Clear() { t.m.Clear() }

// Values returns an iterator over the values in dense order.
func (t *TypedMap[Tag, T]) Values() iter.Seq[*T] { return t.m.Values() }

// All returns an iterator over key and value pairs in dense order.
func (t *TypedMap[Tag, T]) All() iter.Seq2[Key[Tag], *T] {
	return func(yield func(Key[Tag], *T) bool) {
		for g, v := range t.m.All() {
			if !yield(Key[Tag]{gid: g}, v) {
				return
			}
		}
	}
}
