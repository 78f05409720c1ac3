package ecs

import (
	"iter"
	"reflect"
)

// iComponentStorage is a type-erased store holding one component type,
// keyed by entity.
type iComponentStorage interface {
	Type() reflect.Type
	Set(id EntityId, item any) bool
	Delete(id EntityId) bool
	Get(id EntityId) any
	Has(id EntityId) bool
	Len() int
	Iter() iter.Seq[EntityId]
	Clear()
}
