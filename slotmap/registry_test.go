package slotmap_test

import (
	"slices"
	"testing"

	"github.com/plus3/gidstore/slotmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryReissueAdvancesGeneration(t *testing.T) {
	r := slotmap.NewRegistry()

	h0 := r.Acquire()
	assert.Equal(t, uint32(0), h0.Index())
	assert.Equal(t, uint32(1), h0.Generation())

	assert.True(t, r.Release(h0))

	// Drain the fresh block so the recycled slot comes back around.
	for range slotmap.ReserveBlockSize - 1 {
		r.Acquire()
	}
	again := r.Acquire()
	assert.Equal(t, uint32(0), again.Index())
	assert.Equal(t, uint32(2), again.Generation())
	assert.False(t, h0.MatchGen(again))
	assert.False(t, r.ContainsKey(h0))
	assert.True(t, r.ContainsKey(again))
}

func TestRegistryFIFO(t *testing.T) {
	r := slotmap.NewRegistry()

	first := r.Acquire()
	assert.Equal(t, slotmap.ReserveBlockSize-1, r.FreeLen())

	r.Release(first)
	second := r.Acquire()
	assert.Equal(t, uint32(1), second.Index(), "fresh slots are handed out before recycled ones")
}

func TestRegistryDoubleRelease(t *testing.T) {
	r := slotmap.NewRegistry()
	h := r.Acquire()

	assert.True(t, r.Release(h))
	assert.False(t, r.Release(h))
	assert.False(t, r.Release(slotmap.InvalidGID))
	assert.False(t, r.Release(slotmap.NewGID(5000, 1)))
	assert.Equal(t, 0, r.Len())
}

func TestRegistryGrowsInBlocks(t *testing.T) {
	r := slotmap.NewRegistry()
	assert.Equal(t, 0, r.Capacity())

	for range slotmap.ReserveBlockSize + 1 {
		r.Acquire()
	}
	assert.Equal(t, 2*slotmap.ReserveBlockSize, r.Capacity())
	assert.Equal(t, slotmap.ReserveBlockSize+1, r.Len())
	assert.Equal(t, slotmap.ReserveBlockSize-1, r.FreeLen())
}

func TestRegistryReserve(t *testing.T) {
	r := slotmap.NewRegistry()
	r.Reserve(300)

	capacity := r.Capacity()
	assert.Equal(t, 3*slotmap.ReserveBlockSize, capacity)
	for range 300 {
		r.Acquire()
	}
	assert.Equal(t, capacity, r.Capacity())
}

func TestRegistryClearKeepsGenerations(t *testing.T) {
	r := slotmap.NewRegistry()
	before := []slotmap.GID{r.Acquire(), r.Acquire(), r.Acquire()}

	r.Clear()
	assert.Equal(t, 0, r.Len())
	for _, h := range before {
		assert.False(t, r.ContainsKey(h))
	}

	for range slotmap.ReserveBlockSize {
		h := r.Acquire()
		for _, old := range before {
			assert.NotEqual(t, old, h)
		}
	}
}

func TestRegistryKeys(t *testing.T) {
	r := slotmap.NewRegistry()
	a, b, c := r.Acquire(), r.Acquire(), r.Acquire()
	r.Release(b)

	assert.Equal(t, []slotmap.GID{a, c}, slices.Collect(r.Keys()))
}

func TestRegistryShrinkToFitKeepsSlots(t *testing.T) {
	r := slotmap.NewRegistry()
	h := r.Acquire()
	r.Release(h)
	r.ShrinkToFit()

	require.Equal(t, slotmap.ReserveBlockSize, r.FreeLen())
	for range slotmap.ReserveBlockSize {
		assert.NotEqual(t, h, r.Acquire())
	}
}
