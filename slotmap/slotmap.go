package slotmap

import (
	"iter"

	"github.com/plus3/gidstore/chunky"
)

type options struct {
	chunkSize chunky.ChunkSize
	registry  *Registry
}

// Option configures a SlotMap.
type Option func(*options)

// WithChunkSize sets the chunk size of the map's backing arrays.
func WithChunkSize(size chunky.ChunkSize) Option {
	return func(o *options) { o.chunkSize = size }
}

// WithRegistry makes the map issue handles from r instead of a private
// registry. Several maps sharing one registry never hand out the same handle.
func WithRegistry(r *Registry) Option {
	return func(o *options) { o.registry = r }
}

// SlotMap pairs a Registry with a Store: Insert issues a fresh handle for
// each value and Remove revokes it.
type SlotMap[T any] struct {
	registry *Registry
	store    *Store[T]
}

// New returns an empty SlotMap configured by opts.
func New[T any](opts ...Option) *SlotMap[T] {
	o := options{chunkSize: chunky.DefaultChunkSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = NewRegistry()
	}
	return &SlotMap[T]{
		registry: o.registry,
		store:    NewStore[T](o.chunkSize),
	}
}

// Registry returns the registry the map issues handles from.
func (m *SlotMap[T]) Registry() *Registry { return m.registry }

// Insert stores v under a newly acquired handle.
func (m *SlotMap[T]) Insert(v T) GID {
	h := m.registry.Acquire()
	m.store.Insert(h, v)
	return h
}

// Remove deletes the value under h and revokes h. Handles that are stale, or
// that belong to another map sharing the registry, return false and leave the
// registry untouched.
func (m *SlotMap[T]) Remove(h GID) (T, bool) {
	v, ok := m.store.Remove(h)
	if ok {
		m.registry.Release(h)
	}
	return v, ok
}

// Replace overwrites the value under h and returns the previous one. Handles
// that are stale, invalid or held by another map sharing the registry return
// false and change nothing.
func (m *SlotMap[T]) Replace(h GID, v T) (old T, replaced bool) {
	occ, ok := m.store.keys.occupant(h.Index())
	if !ok || !h.IsValid() || h.Generation() > occ.Generation() {
		return old, false
	}
	return m.store.Replace(h, v)
}

// Get returns a pointer to the value under h, or nil if h is stale.
func (m *SlotMap[T]) Get(h GID) *T { return m.store.Get(h) }

// ContainsKey reports whether h refers to a value in this map.
func (m *SlotMap[T]) ContainsKey(h GID) bool { return m.store.ContainsKey(h) }

// KeyAt returns the handle of the value at dense position pos.
func (m *SlotMap[T]) KeyAt(pos int) (GID, bool) { return m.store.KeyAt(pos) }

// Len returns the number of values.
func (m *SlotMap[T]) Len() int { return m.store.Len() }

// IsEmpty reports whether the map holds no values.
func (m *SlotMap[T]) IsEmpty() bool { return m.store.IsEmpty() }

// Capacity returns how many values fit before another chunk is allocated.
func (m *SlotMap[T]) Capacity() int { return m.store.Capacity() }

// FreeLen returns how many handles the registry can issue before it grows.
func (m *SlotMap[T]) FreeLen() int { return m.registry.FreeLen() }

// Clear removes every value and revokes its handle.
func (m *SlotMap[T]) Clear() {
	for h := range m.store.Keys() {
		m.registry.Release(h)
	}
	m.store.Clear()
}

// Reserve makes room for n more inserts without allocating.
func (m *SlotMap[T]) Reserve(n int) {
	m.registry.Reserve(n)
	m.store.Reserve(n)
	if slots := len(m.registry.gens); slots > 0 {
		m.store.keys.ensureSlot(slots - 1)
	}
}

// ShrinkToFit releases spare chunks and buffers. Generations are kept.
func (m *SlotMap[T]) ShrinkToFit() {
	m.registry.ShrinkToFit()
	m.store.ShrinkToFit()
}

// Values returns an iterator over the values in dense order.
func (m *SlotMap[T]) Values() iter.Seq[*T] { return m.store.Values() }

// Keys returns an iterator over the live handles in dense order.
func (m *SlotMap[T]) Keys() iter.Seq[GID] { return m.store.Keys() }

// All returns an iterator over handle and value pairs in dense order.
func (m *SlotMap[T]) All() iter.Seq2[GID, *T] { return m.store.All() }
