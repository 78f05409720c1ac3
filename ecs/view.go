package ecs

import (
	"iter"
	"reflect"
)

type viewField struct {
	index    int
	typ      reflect.Type
	optional bool
}

// View represents a query for entities with a specific combination of components
// The type T should be a struct with embedded pointer fields for each component type
// Named fields can be marked as optional using the `ecs:"optional"` struct tag
// A field of type EntityId, if present, receives the entity's id
type View[T any] struct {
	storage *Storage
	fields  []viewField
	idField int
}

var entityIdType = reflect.TypeFor[EntityId]()

// NewView creates a new view for the given struct type
// The struct T should have embedded or named fields that are pointers to component types
// Embedded fields are always required
// Named fields can be marked as optional using the `ecs:"optional"` struct tag
func NewView[T any](storage *Storage) *View[T] {
	structType := reflect.TypeFor[T]()
	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	v := &View[T]{storage: storage, idField: -1}
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if !field.IsExported() {
			panic("View struct field " + field.Name + " must be exported")
		}

		if field.Type == entityIdType {
			v.idField = i
			continue
		}
		if field.Type.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types")
		}

		// Embedded fields (field.Anonymous) are always required
		isOptional := false
		if !field.Anonymous {
			if tag := field.Tag.Get("ecs"); tag != "" {
				if tag != "optional" {
					panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
				}
				isOptional = true
			}
		}

		v.fields = append(v.fields, viewField{
			index:    i,
			typ:      field.Type.Elem(),
			optional: isOptional,
		})
	}
	return v
}

// Fill populates the provided struct pointer with component data for the given entity
// Returns false if the entity is missing any required components
// Optional components are set to nil if not present
func (v *View[T]) Fill(id EntityId, ptr *T) bool {
	if !v.storage.Alive(id) {
		return false
	}

	result := reflect.ValueOf(ptr).Elem()
	for _, f := range v.fields {
		component := v.storage.GetComponent(id, f.typ)
		if component == nil {
			if !f.optional {
				return false
			}
			result.Field(f.index).SetZero()
			continue
		}
		result.Field(f.index).Set(reflect.ValueOf(component))
	}

	if v.idField >= 0 {
		result.Field(v.idField).Set(reflect.ValueOf(id))
	}
	return true
}

// Get returns a populated view struct for the given entity, or nil if the entity
// doesn't have all the required components
func (v *View[T]) Get(id EntityId) *T {
	var result T
	if !v.Fill(id, &result) {
		return nil
	}
	return &result
}

// driver picks the smallest store among the required components. Iterating
// it visits every candidate entity. ok is false if a required component has
// no store yet, meaning nothing can match.
func (v *View[T]) driver() (store iComponentStorage, ok bool) {
	for _, f := range v.fields {
		if f.optional {
			continue
		}
		s := v.storage.storeFor(f.typ, false)
		if s == nil {
			return nil, false
		}
		if store == nil || s.Len() < store.Len() {
			store = s
		}
	}
	return store, true
}

func (v *View[T]) candidates() iter.Seq[EntityId] {
	store, ok := v.driver()
	switch {
	case !ok:
		return func(func(EntityId) bool) {}
	case store == nil:
		return v.storage.Entities()
	default:
		return store.Iter()
	}
}

// Iter returns an iterator over all entities that have all the required components for this view
// The iterator yields (EntityId, T) pairs where T is the populated view struct
// Optional components are set to nil if not present
func (v *View[T]) Iter() iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		var result T
		for id := range v.candidates() {
			if !v.Fill(id, &result) {
				continue
			}
			if !yield(id, result) {
				return
			}
		}
	}
}

// Values returns an iterator over just the view structs (without entity IDs)
// This is useful when you only care about the component data, not which entity it belongs to
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// Len counts the entities matching the view.
func (v *View[T]) Len() int {
	n := 0
	for range v.Iter() {
		n++
	}
	return n
}

// Spawn creates a new entity with components extracted from the view struct
func (v *View[T]) Spawn(data T) EntityId {
	value := reflect.ValueOf(data)

	components := make([]any, 0, len(v.fields))
	for _, f := range v.fields {
		field := value.Field(f.index)
		if field.IsNil() {
			if !f.optional {
				panic("required component is nil in View.Spawn")
			}
			continue
		}
		components = append(components, field.Elem().Interface())
	}

	return v.storage.Spawn(components...)
}
