package pool

import (
	"github.com/plus3/gidstore/slotmap"
	"go.uber.org/zap"
)

// Ref is a strong reference to a pooled value. Each Ref must be dropped once;
// the cell is recycled when the last one is.
type Ref[T any] struct {
	pool    *Pool[T]
	id      slotmap.GID
	dropped bool
}

func (r *Ref[T]) cell() *cell[T] {
	if r.dropped {
		return nil
	}
	return r.pool.cell(r.id)
}

// ID returns the handle of the referenced cell.
func (r *Ref[T]) ID() slotmap.GID { return r.id }

// Get returns a pointer to the value, or nil if this reference was dropped
// or the cell was released.
func (r *Ref[T]) Get() *T {
	c := r.cell()
	if c == nil {
		return nil
	}
	return &c.value
}

// Clone returns another strong reference to the same cell. Cloning a dead
// reference yields a dead reference.
func (r *Ref[T]) Clone() *Ref[T] {
	c := r.cell()
	if c == nil {
		return &Ref[T]{pool: r.pool, id: r.id, dropped: true}
	}
	c.strong++
	return &Ref[T]{pool: r.pool, id: r.id}
}

// Drop gives up this reference. Dropping twice is a no-op.
func (r *Ref[T]) Drop() {
	c := r.cell()
	r.dropped = true
	if c == nil {
		return
	}
	c.strong--
	if c.strong == 0 {
		r.pool.recycle(r.id)
	}
}

// Release returns the cell to the pool immediately, invalidating every
// reference to it. It returns false if the cell was already gone.
func (r *Ref[T]) Release() bool {
	c := r.cell()
	if c == nil {
		return false
	}
	if c.strong > 1 {
		r.pool.log.Debug("releasing pooled cell with live references",
			zap.Stringer("id", r.id),
			zap.Int("strong", c.strong))
	}
	r.dropped = true
	r.pool.recycle(r.id)
	return true
}

// IsReleased reports whether the referenced cell is no longer reachable
// through this reference.
func (r *Ref[T]) IsReleased() bool { return r.cell() == nil }

// StrongCount returns the number of live strong references to the cell, or
// 0 if it was released.
func (r *Ref[T]) StrongCount() int {
	c := r.cell()
	if c == nil {
		return 0
	}
	return c.strong
}

// Downgrade returns a weak reference that does not keep the cell alive.
func (r *Ref[T]) Downgrade() Weak[T] {
	return Weak[T]{pool: r.pool, id: r.id}
}

// Weak refers to a pooled cell without keeping it alive.
type Weak[T any] struct {
	pool *Pool[T]
	id   slotmap.GID
}

// Upgrade returns a new strong reference if the cell is still the one this
// weak reference was taken from.
func (w Weak[T]) Upgrade() (*Ref[T], bool) {
	if w.pool == nil {
		return nil, false
	}
	c := w.pool.cell(w.id)
	if c == nil {
		return nil, false
	}
	c.strong++
	return &Ref[T]{pool: w.pool, id: w.id}, true
}
