package slotmap

// Mask is a presence bitset indexed by handle. Each slot remembers the newest
// generation it has seen, so a handle older than that can neither set nor
// read the slot's bit. A slot released at MaxGeneration is retired and
// refuses every handle from then on.
type Mask struct {
	bits    []uint64
	retired []uint64
	gens    []uint32
	count   int
}

// NewMask returns an empty mask. The zero Mask is also ready to use.
func NewMask() *Mask {
	return &Mask{}
}

func (m *Mask) grow(idx int) {
	if idx < len(m.gens) {
		return
	}
	m.gens = append(m.gens, make([]uint32, idx+1-len(m.gens))...)
	if words := idx/64 + 1; words > len(m.bits) {
		m.bits = append(m.bits, make([]uint64, words-len(m.bits))...)
		m.retired = append(m.retired, make([]uint64, words-len(m.retired))...)
	}
}

func (m *Mask) bit(idx int) bool {
	return m.bits[idx>>6]&(1<<(idx&63)) != 0
}

func (m *Mask) isRetired(idx int) bool {
	return m.retired[idx>>6]&(1<<(idx&63)) != 0
}

func (m *Mask) assign(idx int, value bool) {
	if m.bit(idx) == value {
		return
	}
	if value {
		m.bits[idx>>6] |= 1 << (idx & 63)
		m.count++
	} else {
		m.bits[idx>>6] &^= 1 << (idx & 63)
		m.count--
	}
}

// Set records value for h and returns true. A handle newer than the slot's
// recorded generation resets the slot first. Invalid handles and handles
// older than the recorded generation are refused, as is any handle to a
// retired slot.
func (m *Mask) Set(h GID, value bool) bool {
	if !h.IsValid() {
		return false
	}
	idx := int(h.Index())
	m.grow(idx)
	if m.isRetired(idx) {
		return false
	}

	switch gen := h.Generation(); {
	case gen < m.gens[idx]:
		return false
	case gen > m.gens[idx]:
		m.assign(idx, false)
		m.gens[idx] = gen
	}
	m.assign(idx, value)
	return true
}

// Get reports whether the bit for h is set.
func (m *Mask) Get(h GID) bool {
	idx := int(h.Index())
	return h.IsValid() && idx < len(m.gens) && m.gens[idx] == h.Generation() && m.bit(idx)
}

// Release clears the bit for h and moves the slot past h's generation so h
// can no longer set it. A slot whose generation cannot advance is retired
// instead. It returns false if h is not the slot's current generation.
func (m *Mask) Release(h GID) bool {
	idx := int(h.Index())
	if !h.IsValid() || idx >= len(m.gens) || m.gens[idx] != h.Generation() || m.isRetired(idx) {
		return false
	}
	m.assign(idx, false)
	if gen := h.Generation(); gen < MaxGeneration {
		m.gens[idx] = gen + 1
	} else {
		m.retired[idx>>6] |= 1 << (idx & 63)
	}
	return true
}

// Len returns the number of set bits.
func (m *Mask) Len() int { return m.count }

// Clear unsets every bit. Recorded generations and retired slots are kept.
func (m *Mask) Clear() {
	clear(m.bits)
	m.count = 0
}
