package slotmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shrinkIndexSpace(t *testing.T, n uint64) {
	t.Helper()
	saved := indexSlots
	indexSlots = n
	t.Cleanup(func() { indexSlots = saved })
}

func TestRegistryIndexSpaceExhausted(t *testing.T) {
	require.Equal(t, uint64(MaxIndex)+1, indexSlots)
	shrinkIndexSpace(t, 130)
	r := NewRegistry()

	for range 130 {
		r.Acquire()
	}
	assert.Equal(t, 130, r.Capacity())
	assert.PanicsWithValue(t, "slotmap: index space exhausted", func() { r.Acquire() })
}

func TestRegistryRetiresExhaustedSlot(t *testing.T) {
	shrinkIndexSpace(t, 2)
	r := NewRegistry()
	r.Acquire()
	r.Acquire()

	worn := NewGID(0, MaxGeneration)
	r.gens[0] = MaxGeneration

	assert.True(t, r.Release(worn))
	assert.Equal(t, 1, r.Retired())
	assert.Equal(t, 0, r.FreeLen())
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1, r.Capacity())
	assert.Panics(t, func() { r.Acquire() }, "retired slot must not be reissued")
}

func TestQueueWrapsAndGrows(t *testing.T) {
	var q queue
	for i := range 5 {
		q.push(NewGID(uint32(i), 1))
	}
	for i := range 3 {
		g, ok := q.pop()
		require.True(t, ok)
		assert.Equal(t, uint32(i), g.Index())
	}
	for i := 5; i < 12; i++ {
		q.push(NewGID(uint32(i), 1))
	}
	assert.Equal(t, 9, q.len())

	q.shrink()
	assert.Len(t, q.buf, 9)

	for i := 3; i < 12; i++ {
		g, ok := q.pop()
		require.True(t, ok)
		assert.Equal(t, uint32(i), g.Index())
	}
	_, ok := q.pop()
	assert.False(t, ok)
}
