package ecs

import (
	"iter"
	"reflect"

	"github.com/plus3/gidstore/chunky"
	"github.com/plus3/gidstore/slotmap"
)

type componentInfo struct {
	id      uint32
	factory func() iComponentStorage
}

// ComponentRegistry manages component type registration for an ECS instance.
// Each Storage instance has its own ComponentRegistry, allowing multiple
// independent ECS systems to coexist without interference.
type ComponentRegistry struct {
	components map[reflect.Type]componentInfo
	chunkSize  chunky.ChunkSize
}

// NewComponentRegistry creates a new component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		components: make(map[reflect.Type]componentInfo),
		chunkSize:  chunky.DefaultChunkSize,
	}
}

// SetChunkSize changes the chunk size used by component stores created
// after the call.
func (r *ComponentRegistry) SetChunkSize(size chunky.ChunkSize) {
	r.chunkSize = size
}

// RegisterComponent registers a new component type with the given registry.
// This must be called for each component type before it can be used.
// Registering the same type twice is a no-op.
func RegisterComponent[T any](r *ComponentRegistry) {
	t := reflect.TypeFor[T]()
	if _, exists := r.components[t]; exists {
		return
	}
	r.components[t] = componentInfo{
		id: uint32(len(r.components) + 1),
		factory: func() iComponentStorage {
			return &componentStorage[T]{store: slotmap.NewStore[T](r.chunkSize)}
		},
	}
}

// lookup returns the registration of a component type.
func (r *ComponentRegistry) lookup(t reflect.Type) (componentInfo, bool) {
	info, ok := r.components[t]
	return info, ok
}

// componentStorage keeps components of type T densely packed in a
// slotmap.Store addressed by entity id.
type componentStorage[T any] struct {
	store *slotmap.Store[T]
}

func (cs *componentStorage[T]) Type() reflect.Type { return reflect.TypeFor[T]() }

// Set stores item for id, overwriting any existing component. Items may be
// passed as T or *T.
func (cs *componentStorage[T]) Set(id EntityId, item any) bool {
	var concreteItem T
	if ptr, ok := item.(*T); ok {
		concreteItem = *ptr
	} else if val, ok := item.(T); ok {
		concreteItem = val
	} else {
		return false
	}

	cs.store.Replace(id, concreteItem)
	return true
}

func (cs *componentStorage[T]) Delete(id EntityId) bool {
	_, ok := cs.store.Remove(id)
	return ok
}

// Get returns a *T for id, or nil.
func (cs *componentStorage[T]) Get(id EntityId) any {
	if p := cs.store.Get(id); p != nil {
		return p
	}
	return nil
}

func (cs *componentStorage[T]) Has(id EntityId) bool { return cs.store.ContainsKey(id) }

func (cs *componentStorage[T]) Len() int { return cs.store.Len() }

func (cs *componentStorage[T]) Iter() iter.Seq[EntityId] { return cs.store.Keys() }

func (cs *componentStorage[T]) Clear() { cs.store.Clear() }
