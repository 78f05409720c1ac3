package slotmap_test

import (
	"slices"
	"testing"

	"github.com/plus3/gidstore/chunky"
	"github.com/plus3/gidstore/slotmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parallel keeps a caller-owned payload slice in step with a Lookup.
type parallel struct {
	keys *slotmap.Lookup
	data []string
}

func (p *parallel) insert(h slotmap.GID, v string) {
	pos := p.keys.Insert(h)
	if pos != len(p.data) {
		panic("lookup returned a non-append position")
	}
	p.data = append(p.data, v)
}

func (p *parallel) remove(h slotmap.GID) bool {
	pos, ok := p.keys.Remove(h)
	if !ok {
		return false
	}
	last := len(p.data) - 1
	p.data[pos] = p.data[last]
	p.data = p.data[:last]
	return true
}

func (p *parallel) get(h slotmap.GID) (string, bool) {
	pos, ok := p.keys.Offset(h)
	if !ok {
		return "", false
	}
	return p.data[pos], true
}

func TestLookupDrivesExternalArray(t *testing.T) {
	r := slotmap.NewRegistry()
	p := &parallel{keys: slotmap.NewLookup(chunky.Elements(4))}

	var handles []slotmap.GID
	for _, v := range []string{"a", "b", "c", "d", "e"} {
		h := r.Acquire()
		handles = append(handles, h)
		p.insert(h, v)
	}

	require.True(t, p.remove(handles[1]))
	require.True(t, p.remove(handles[4]))
	assert.False(t, p.remove(handles[1]))

	for i, want := range []string{"a", "", "c", "d", ""} {
		got, ok := p.get(handles[i])
		assert.Equal(t, want != "", ok)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 3, p.keys.Len())
	assert.Len(t, p.data, 3)
}

func TestLookupKeysFollowDenseOrder(t *testing.T) {
	l := slotmap.NewLookup(chunky.Elements(2))
	a, b, c := slotmap.NewGID(5, 1), slotmap.NewGID(0, 3), slotmap.NewGID(9, 2)
	l.Insert(a)
	l.Insert(b)
	l.Insert(c)
	l.Remove(a)

	assert.Equal(t, []slotmap.GID{c, b}, slices.Collect(l.Keys()))

	key, ok := l.KeyAt(0)
	assert.True(t, ok)
	assert.Equal(t, c, key)
	_, ok = l.KeyAt(2)
	assert.False(t, ok)
}

func TestLookupClear(t *testing.T) {
	l := slotmap.NewLookup(chunky.Elements(2))
	h := slotmap.NewGID(1, 1)
	l.Insert(h)
	l.Clear()

	assert.True(t, l.IsEmpty())
	assert.False(t, l.ContainsKey(h))
	assert.Equal(t, 0, l.Insert(h))
}

func TestLookupReserve(t *testing.T) {
	l := slotmap.NewLookup(chunky.Elements(4))
	l.Reserve(10)
	capacity := l.Capacity()
	assert.GreaterOrEqual(t, capacity, 10)

	for i := range 10 {
		l.Insert(slotmap.NewGID(uint32(i), 1))
	}
	assert.Equal(t, capacity, l.Capacity())
}
