package slotmap

import (
	"iter"
	"slices"
)

// ReserveBlockSize is the number of slots the registry adds each time its
// free list runs dry.
const ReserveBlockSize = 128

// indexSlots is the number of slot indices a registry may hand out.
var indexSlots = uint64(MaxIndex) + 1

// Registry issues and revokes handles without storing any payload. Released
// slots are reissued in FIFO order with their generation advanced. A slot
// whose generation is exhausted is retired and never handed out again.
type Registry struct {
	gens    []uint32
	free    queue
	retired int
}

// NewRegistry returns an empty registry. It grows on first Acquire.
func NewRegistry() *Registry {
	return &Registry{}
}

// expand appends one block of fresh slots to the free list.
func (r *Registry) expand() {
	start := uint64(len(r.gens))
	block := min(uint64(ReserveBlockSize), indexSlots-start)
	if block == 0 {
		panic("slotmap: index space exhausted")
	}

	r.gens = append(r.gens, make([]uint32, block)...)
	r.free.grow(r.free.len() + int(block))
	for i := start; i < start+block; i++ {
		r.free.push(NewGID(uint32(i), 1))
	}
}

// Acquire issues a handle for a free slot, growing the registry by one block
// when none is available. It panics once the index space is exhausted.
func (r *Registry) Acquire() GID {
	if r.free.len() == 0 {
		r.expand()
	}
	g, _ := r.free.pop()
	r.gens[g.Index()] = g.Generation()
	return g
}

// Release revokes g and queues its slot for reuse. It returns false if g is
// stale, invalid or was never issued by this registry.
func (r *Registry) Release(g GID) bool {
	if !r.ContainsKey(g) {
		return false
	}

	idx := g.Index()
	r.gens[idx] = 0
	next, ok := g.TryRenew(int(idx))
	if !ok {
		r.retired++
		return true
	}
	r.free.push(next)
	return true
}

// ContainsKey reports whether g refers to a live slot.
func (r *Registry) ContainsKey(g GID) bool {
	idx := int(g.Index())
	return g.IsValid() && idx < len(r.gens) && r.gens[idx] == g.Generation()
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	return len(r.gens) - r.free.len() - r.retired
}

// IsEmpty reports whether no handle is live.
func (r *Registry) IsEmpty() bool { return r.Len() == 0 }

// FreeLen returns the number of slots ready to be acquired without growth.
func (r *Registry) FreeLen() int { return r.free.len() }

// Retired returns the number of slots permanently withdrawn because their
// generation was exhausted.
func (r *Registry) Retired() int { return r.retired }

// Capacity returns the number of slots that are live or ready for reuse.
func (r *Registry) Capacity() int { return len(r.gens) - r.retired }

// Reserve grows the registry in whole blocks until n handles can be acquired
// without further growth.
func (r *Registry) Reserve(n int) {
	for r.free.len() < n {
		r.expand()
	}
}

// ShrinkToFit releases spare buffer capacity. Slots themselves are never
// dropped, since forgetting a slot's generation would let it be reissued
// under a handle that was already given out.
func (r *Registry) ShrinkToFit() {
	r.gens = slices.Clip(r.gens)
	r.free.shrink()
}

// Clear releases every live handle in index order. Generations are kept, so
// no handle issued before the clear can match one issued after it.
func (r *Registry) Clear() {
	for i, gen := range r.gens {
		if gen != 0 {
			r.Release(NewGID(uint32(i), gen))
		}
	}
}

// Keys returns an iterator over the live handles in index order.
func (r *Registry) Keys() iter.Seq[GID] {
	return func(yield func(GID) bool) {
		for i, gen := range r.gens {
			if gen != 0 && !yield(NewGID(uint32(i), gen)) {
				return
			}
		}
	}
}
