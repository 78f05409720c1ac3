package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageStats(t *testing.T) {
	registry := NewComponentRegistry()
	RegisterComponent[int](registry)
	RegisterComponent[string](registry)
	RegisterComponent[float64](registry)

	storage := NewStorage(registry)

	stats := storage.CollectStats()
	assert.Equal(t, 0, stats.EntityCount)
	assert.Equal(t, 0, stats.ComponentTypeCount)
	assert.Equal(t, 0, stats.SingletonCount)

	storage.Spawn(42, "hello")
	storage.Spawn(100, "world")
	removed := storage.Spawn(200.0, "test")

	NewSingleton[float64](storage, 3.14)
	NewSingleton[string](storage, "singleton")

	stats = storage.CollectStats()
	assert.Equal(t, 3, stats.EntityCount)
	assert.Equal(t, 3, stats.ComponentTypeCount)
	assert.Equal(t, 2, stats.SingletonCount)
	assert.Equal(t, []string{"float64", "string"}, stats.SingletonTypes)
	assert.Equal(t, []ComponentStats{
		{Type: "float64", Count: 1},
		{Type: "int", Count: 2},
		{Type: "string", Count: 3},
	}, stats.ComponentBreakdown)
	assert.Equal(t, "entities=3 components=3 singletons=2", stats.String())

	storage.Delete(removed)
	stats = storage.CollectStats()
	assert.Equal(t, 2, stats.ComponentTypeCount, "empty stores are not reported")
	assert.Equal(t, 2, stats.EntityCount)
	assert.Equal(t, storage.entities.FreeLen(), stats.FreeEntitySlots)
}

func TestAddSingletonOverwritesInPlace(t *testing.T) {
	storage := NewStorage(NewComponentRegistry())

	first := NewSingleton(storage, 1.5)
	ptr := first.Get()
	storage.AddSingleton(2.5)

	assert.Same(t, ptr, first.Get())
	assert.Equal(t, 2.5, *ptr)
}

func TestComponentIdsAreSequential(t *testing.T) {
	registry := NewComponentRegistry()
	RegisterComponent[int](registry)
	RegisterComponent[string](registry)
	RegisterComponent[int](registry)

	intInfo, ok := registry.lookup(componentType(0))
	require.True(t, ok)
	strInfo, ok := registry.lookup(componentType(""))
	require.True(t, ok)
	assert.Equal(t, uint32(1), intInfo.id)
	assert.Equal(t, uint32(2), strInfo.id)
}

func TestReadSingletonMissing(t *testing.T) {
	storage := NewStorage(NewComponentRegistry())

	var missing *int
	assert.False(t, storage.ReadSingleton(&missing))
	assert.Nil(t, missing)
	assert.Panics(t, func() { storage.ReadSingleton(missing) })
}
