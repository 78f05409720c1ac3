package slotmap

import (
	"fmt"
	"iter"

	"github.com/plus3/gidstore/chunky"
)

// Lookup translates handles into dense positions for a payload array the
// caller owns. Every Insert hands back the position to append at and every
// Remove hands back the position to swap-remove, so the caller's array stays
// parallel to the lookup's own position-to-slot table.
type Lookup struct {
	// slot index -> handle whose index field is the dense position
	lookup *chunky.Array[GID]
	// dense position -> slot index
	indices *chunky.Array[uint32]
}

// NewLookup returns an empty lookup whose tables use chunks of the given size.
func NewLookup(size chunky.ChunkSize) *Lookup {
	return &Lookup{
		lookup:  chunky.New[GID](size),
		indices: chunky.New[uint32](size),
	}
}

func roundUp(n, size int) int {
	return (n + size - 1) / size * size
}

// ensureSlot grows the slot table in whole chunks so that idx is addressable.
func (l *Lookup) ensureSlot(idx int) {
	if idx < l.lookup.Len() {
		return
	}
	l.lookup.Resize(roundUp(idx+1, l.lookup.ChunkSize()), InvalidGID)
}

func (l *Lookup) entry(g GID) *GID {
	if !g.IsValid() {
		return nil
	}
	e := l.lookup.Get(int(g.Index()))
	if e == nil || !e.IsValid() || !e.MatchGen(g) {
		return nil
	}
	return e
}

// occupant returns the live handle currently holding slot idx, whatever its
// generation.
func (l *Lookup) occupant(idx uint32) (GID, bool) {
	e := l.lookup.Get(int(idx))
	if e == nil || !e.IsValid() {
		return InvalidGID, false
	}
	return NewGID(idx, e.Generation()), true
}

// Insert maps h to the next dense position and returns it. The caller must
// append its payload at exactly that position. Insert panics if h is invalid
// or its slot is already occupied.
func (l *Lookup) Insert(h GID) int {
	if !h.IsValid() {
		panic(fmt.Sprintf("slotmap: insert with invalid handle %s", h))
	}
	idx := int(h.Index())
	l.ensureSlot(idx)

	e := l.lookup.Get(idx)
	if e.IsValid() {
		panic(fmt.Sprintf("slotmap: slot %d already occupied by %s", idx, NewGID(h.Index(), e.Generation())))
	}

	pos := l.indices.Len()
	*e = h.WithIndex(pos)
	l.indices.Push(h.Index())
	return pos
}

// Remove unmaps h and returns the dense position it occupied. The caller must
// swap-remove its payload at that position. The entry previously at the end
// is patched to point at the vacated position.
func (l *Lookup) Remove(h GID) (int, bool) {
	e := l.entry(h)
	if e == nil {
		return 0, false
	}

	pos := int(e.Index())
	*e = InvalidGID

	last := l.indices.Len() - 1
	l.indices.SwapRemove(pos)
	if pos != last {
		moved := l.lookup.Get(int(*l.indices.Get(pos)))
		*moved = moved.WithIndex(pos)
	}
	return pos, true
}

// Offset returns the dense position of h.
func (l *Lookup) Offset(h GID) (int, bool) {
	e := l.entry(h)
	if e == nil {
		return 0, false
	}
	return int(e.Index()), true
}

// ContainsKey reports whether h is mapped.
func (l *Lookup) ContainsKey(h GID) bool {
	return l.entry(h) != nil
}

// KeyAt returns the handle stored at dense position pos.
func (l *Lookup) KeyAt(pos int) (GID, bool) {
	slot := l.indices.Get(pos)
	if slot == nil {
		return InvalidGID, false
	}
	return l.occupant(*slot)
}

// Len returns the number of mapped handles.
func (l *Lookup) Len() int { return l.indices.Len() }

// IsEmpty reports whether no handle is mapped.
func (l *Lookup) IsEmpty() bool { return l.indices.IsEmpty() }

// Capacity returns the number of entries that fit before the position table
// needs another chunk.
func (l *Lookup) Capacity() int { return l.indices.Capacity() }

// Keys returns an iterator over the mapped handles in dense order.
func (l *Lookup) Keys() iter.Seq[GID] {
	return func(yield func(GID) bool) {
		for slot := range l.indices.Values() {
			g, _ := l.occupant(*slot)
			if !yield(g) {
				return
			}
		}
	}
}

// Clear unmaps every handle. Slot table chunks are kept.
func (l *Lookup) Clear() {
	for slot := range l.indices.Values() {
		*l.lookup.Get(int(*slot)) = InvalidGID
	}
	l.indices.Clear()
}

// Reserve makes room for n more entries. The slot table is grown to cover
// the first Len()+n slots.
func (l *Lookup) Reserve(n int) {
	l.indices.Reserve(n)
	if want := l.indices.Len() + n; want > 0 {
		l.ensureSlot(want - 1)
	}
}

// ShrinkToFit drops slot table chunks beyond the highest mapped slot and
// releases spare position chunks.
func (l *Lookup) ShrinkToFit() {
	highest := -1
	for slot := range l.indices.Values() {
		highest = max(highest, int(*slot))
	}
	l.lookup.Truncate(roundUp(highest+1, l.lookup.ChunkSize()))
	l.lookup.ShrinkToFit()
	l.indices.ShrinkToFit()
}
