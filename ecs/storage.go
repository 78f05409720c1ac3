package ecs

import (
	"fmt"
	"iter"
	"reflect"
	"slices"
	"strings"

	"github.com/kamstrup/intmap"
	"github.com/plus3/gidstore/slotmap"
)

// Storage is the main ECS storage interface. Entity ids come from a slotmap
// registry and every component type lives in its own dense store, so adding
// or removing a component never moves the entity or changes its id.
type Storage struct {
	registry   *ComponentRegistry
	entities   *slotmap.Registry
	stores     *intmap.Map[uint32, iComponentStorage]
	singletons map[reflect.Type]any
}

// NewStorage creates a new ECS storage system with the given component registry
func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		registry:   registry,
		entities:   slotmap.NewRegistry(),
		stores:     intmap.New[uint32, iComponentStorage](32),
		singletons: make(map[reflect.Type]any),
	}
}

// componentType returns the component type of a value passed as T or *T.
func componentType(comp any) reflect.Type {
	compType := reflect.TypeOf(comp)
	if compType == nil {
		panic("component cannot be nil")
	}

	// If it's a pointer, get the underlying type
	if compType.Kind() == reflect.Ptr {
		compType = compType.Elem()
	}

	// Components can be structs or primitives (int, string, etc.)
	// But not pointers, maps, channels, or functions (those aren't value types)
	switch compType.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func:
		panic("components cannot be pointers, maps, channels, or functions")
	}
	return compType
}

// storeFor returns the store for a component type, creating it on first use
// when create is set. It panics if create is set and the type is not
// registered.
func (s *Storage) storeFor(t reflect.Type, create bool) iComponentStorage {
	info, ok := s.registry.lookup(t)
	if !ok {
		if create {
			panic("component type " + t.String() + " not registered")
		}
		return nil
	}

	if store, ok := s.stores.Get(info.id); ok {
		return store
	}
	if !create {
		return nil
	}
	store := info.factory()
	s.stores.Put(info.id, store)
	return store
}

// Spawn creates a new entity with the provided components
func (s *Storage) Spawn(components ...any) EntityId {
	if len(components) == 0 {
		panic("cannot spawn entity without components")
	}

	stores := make([]iComponentStorage, len(components))
	for i, comp := range components {
		stores[i] = s.storeFor(componentType(comp), true)
	}

	id := s.entities.Acquire()
	for i, comp := range components {
		stores[i].Set(id, comp)
	}
	return id
}

// Delete removes the entity and all of its components. It returns false if
// the entity was already gone.
func (s *Storage) Delete(id EntityId) bool {
	if !s.entities.ContainsKey(id) {
		return false
	}
	for _, store := range s.stores.All() {
		store.Delete(id)
	}
	return s.entities.Release(id)
}

// Alive reports whether id refers to an entity that has not been deleted.
func (s *Storage) Alive(id EntityId) bool {
	return s.entities.ContainsKey(id)
}

// AddComponent attaches component to the entity, replacing any existing
// component of the same type. It returns false if the entity is gone.
func (s *Storage) AddComponent(id EntityId, component any) bool {
	if !s.Alive(id) {
		return false
	}
	return s.storeFor(componentType(component), true).Set(id, component)
}

// RemoveComponent detaches a component from the entity. An entity left with
// no components is deleted.
func (s *Storage) RemoveComponent(id EntityId, compType reflect.Type) bool {
	if !s.Alive(id) {
		return false
	}
	store := s.storeFor(compType, false)
	if store == nil || !store.Delete(id) {
		return false
	}

	if s.componentCount(id) == 0 {
		s.Delete(id)
	}
	return true
}

func (s *Storage) componentCount(id EntityId) int {
	n := 0
	for _, store := range s.stores.All() {
		if store.Has(id) {
			n++
		}
	}
	return n
}

// GetComponent returns a pointer to the entity's component of the given type,
// or nil.
func (s *Storage) GetComponent(id EntityId, compType reflect.Type) any {
	store := s.storeFor(compType, false)
	if store == nil {
		return nil
	}
	return store.Get(id)
}

// HasComponent checks if an entity has a specific component type
func (s *Storage) HasComponent(id EntityId, compType reflect.Type) bool {
	store := s.storeFor(compType, false)
	return store != nil && store.Has(id)
}

// Components returns pointers to every component the entity has.
func (s *Storage) Components(id EntityId) []any {
	var out []any
	for _, store := range s.stores.All() {
		if c := store.Get(id); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the number of live entities.
func (s *Storage) Len() int { return s.entities.Len() }

// Entities returns an iterator over the live entities in id order.
func (s *Storage) Entities() iter.Seq[EntityId] { return s.entities.Keys() }

// Clear deletes every entity. Singletons are kept.
func (s *Storage) Clear() {
	for _, store := range s.stores.All() {
		store.Clear()
	}
	s.entities.Clear()
}

// AddSingleton stores value as the single instance of its type. An existing
// singleton is overwritten in place, so pointers to it stay live.
func (s *Storage) AddSingleton(value any) {
	t := componentType(value)
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if existing, ok := s.singletons[t]; ok {
		reflect.ValueOf(existing).Elem().Set(v)
		return
	}
	ptr := reflect.New(t)
	ptr.Elem().Set(v)
	s.singletons[t] = ptr.Interface()
}

// ReadSingleton points *out at the stored singleton. out must be a **T.
// It returns false and leaves out untouched if no singleton of type T exists.
func (s *Storage) ReadSingleton(out any) bool {
	v := reflect.ValueOf(out)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Ptr {
		panic("ReadSingleton requires a pointer to a pointer")
	}
	existing := s.singletons[v.Elem().Type().Elem()]
	if existing == nil {
		return false
	}
	v.Elem().Set(reflect.ValueOf(existing))
	return true
}

// getSingleton returns a pointer to the singleton of type t, or nil.
func (s *Storage) getSingleton(t reflect.Type) any {
	return s.singletons[t]
}

// ComponentStats describes one component store.
type ComponentStats struct {
	Type  string
	Count int
}

// StorageStats is a snapshot of the storage contents.
type StorageStats struct {
	EntityCount        int
	FreeEntitySlots    int
	ComponentTypeCount int
	ComponentBreakdown []ComponentStats
	SingletonCount     int
	SingletonTypes     []string
}

// CollectStats gathers a snapshot of entity, component and singleton counts.
// Breakdowns are sorted by type name.
func (s *Storage) CollectStats() *StorageStats {
	stats := &StorageStats{
		EntityCount:     s.entities.Len(),
		FreeEntitySlots: s.entities.FreeLen(),
		SingletonCount:  len(s.singletons),
	}

	for _, store := range s.stores.All() {
		if store.Len() == 0 {
			continue
		}
		stats.ComponentBreakdown = append(stats.ComponentBreakdown, ComponentStats{
			Type:  store.Type().String(),
			Count: store.Len(),
		})
	}
	slices.SortFunc(stats.ComponentBreakdown, func(a, b ComponentStats) int {
		return strings.Compare(a.Type, b.Type)
	})
	stats.ComponentTypeCount = len(stats.ComponentBreakdown)

	for t := range s.singletons {
		stats.SingletonTypes = append(stats.SingletonTypes, t.String())
	}
	slices.Sort(stats.SingletonTypes)
	return stats
}

func (st *StorageStats) String() string {
	return fmt.Sprintf("entities=%d components=%d singletons=%d",
		st.EntityCount, st.ComponentTypeCount, st.SingletonCount)
}

type ComponentReader interface {
	GetComponent(EntityId, reflect.Type) any
}

// ReadComponent returns the entity's T component, or nil if it has none.
func ReadComponent[T any](reader ComponentReader, entityId EntityId) *T {
	comp, _ := reader.GetComponent(entityId, reflect.TypeFor[T]()).(*T)
	return comp
}
