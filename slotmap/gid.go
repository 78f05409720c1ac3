// Package slotmap provides generational-index containers. Values are addressed
// by GID handles that pack a slot index and a generation counter; once a slot
// is recycled its generation moves on and every older handle to it stops
// resolving.
package slotmap

import (
	"fmt"
	"math"
)

// GID is a generational handle: the low 32 bits are the slot index and the
// high 32 bits are the generation. Generation 0 marks an invalid handle.
type GID uint64

const (
	// MaxIndex is the largest slot index a GID can address.
	MaxIndex = math.MaxUint32
	// MaxGeneration is the last generation a slot can be issued with.
	MaxGeneration = math.MaxUint32

	// InvalidGID is the zero handle. It never resolves.
	InvalidGID GID = 0
)

// NewGID packs an index and a generation into a GID.
func NewGID(index, generation uint32) GID {
	return GID(uint64(generation)<<32 | uint64(index))
}

// Invalid returns the zero handle.
func Invalid() GID { return InvalidGID }

// Index returns the slot index.
func (g GID) Index() uint32 {
	return uint32(g)
}

// Generation returns the generation the handle was issued with.
func (g GID) Generation() uint32 {
	return uint32(g >> 32)
}

// IsValid reports whether the generation is nonzero.
func (g GID) IsValid() bool {
	return g.Generation() != 0
}

// WithIndex returns a handle with the same generation addressing slot i.
// It panics if i does not fit in the index field.
func (g GID) WithIndex(i int) GID {
	if i < 0 || uint64(i) > MaxIndex {
		panic(fmt.Sprintf("slotmap: index %d out of range", i))
	}
	return NewGID(uint32(i), g.Generation())
}

// Renew returns the handle for slot i with the generation advanced by one.
// It panics if the generation is exhausted; use TryRenew to handle that case.
func (g GID) Renew(i int) GID {
	next, ok := g.TryRenew(i)
	if !ok {
		panic(fmt.Sprintf("slotmap: generation exhausted for %s", g))
	}
	return next
}

// TryRenew is like Renew but returns false instead of wrapping once the
// generation has reached MaxGeneration.
func (g GID) TryRenew(i int) (GID, bool) {
	gen := g.Generation()
	if gen == MaxGeneration {
		return InvalidGID, false
	}
	return NewGID(0, gen+1).WithIndex(i), true
}

// AsInvalid returns a tombstone for the same slot.
func (g GID) AsInvalid() GID {
	return NewGID(g.Index(), 0)
}

// MatchGen reports whether both handles carry the same generation,
// regardless of their index.
func (g GID) MatchGen(o GID) bool {
	return g.Generation() == o.Generation()
}

func (g GID) String() string {
	return fmt.Sprintf("%d#%d", g.Index(), g.Generation())
}
