package ecs

import "iter"

// Query wraps a View with a per-frame cache of matching rows.
// The Scheduler initializes Query fields on registration and calls Execute
// before each system runs, so systems iterate a stable snapshot while their
// structural changes wait in the command buffer.
type Query[T any] struct {
	view    *View[T]
	storage *Storage

	cachedEntities []EntityId
	cachedRows     []T
	cacheValid     bool
}

// NewQuery creates a new Query over storage.
func NewQuery[T any](storage *Storage) *Query[T] {
	q := &Query[T]{}
	q.Init(storage)
	return q
}

// Init initializes or re-initializes the Query with a storage.
// Called by the Scheduler during system registration.
func (q *Query[T]) Init(storage *Storage) {
	q.view = NewView[T](storage)
	q.storage = storage
	q.cacheValid = false
}

// Execute builds the entity and row caches for this frame.
func (q *Query[T]) Execute() {
	q.cachedEntities = q.cachedEntities[:0]
	clear(q.cachedRows)
	q.cachedRows = q.cachedRows[:0]

	for id, row := range q.view.Iter() {
		q.cachedEntities = append(q.cachedEntities, id)
		q.cachedRows = append(q.cachedRows, row)
	}

	q.cacheValid = true
}

// Iter returns an iterator over entity IDs and component data.
// Panics if Execute() has not been called this frame.
func (q *Query[T]) Iter() iter.Seq2[EntityId, T] {
	if !q.cacheValid {
		panic("Query.Iter() called before Query.Execute()")
	}

	return func(yield func(EntityId, T) bool) {
		for i := range q.cachedEntities {
			if !yield(q.cachedEntities[i], q.cachedRows[i]) {
				return
			}
		}
	}
}

// Values returns an iterator over component data only.
// Panics if Execute() has not been called this frame.
func (q *Query[T]) Values() iter.Seq[T] {
	if !q.cacheValid {
		panic("Query.Values() called before Query.Execute()")
	}

	return func(yield func(T) bool) {
		for i := range q.cachedRows {
			if !yield(q.cachedRows[i]) {
				return
			}
		}
	}
}

// Len returns the number of rows cached by the last Execute.
func (q *Query[T]) Len() int { return len(q.cachedRows) }

// Get fills a row for a single entity, bypassing the cache.
func (q *Query[T]) Get(id EntityId) *T {
	return q.view.Get(id)
}
