package ecs

import "github.com/plus3/gidstore/slotmap"

// EntityId is a generational handle issued by the storage's entity registry.
// It stays the same for the entity's whole life, however its components
// change, and stops resolving once the entity is deleted.
type EntityId = slotmap.GID
