// Package pool is a reference-counted object pool. Each allocation lives in a
// cell addressed by a slotmap handle; when the last strong reference is
// dropped the cell goes back on a free list for the next Alloc. Every
// dereference is generation-checked, so references that outlive their cell
// see nil instead of someone else's value.
package pool

import (
	"github.com/plus3/gidstore/slotmap"
	"go.uber.org/zap"
)

type cell[T any] struct {
	value  T
	strong int
}

type options struct {
	log      *zap.Logger
	capacity int
}

// Option configures a Pool.
type Option func(*options)

// WithLogger sets the logger used for pool diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithCapacity preallocates n cells.
func WithCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

// Pool hands out reference-counted values addressed by generational ids.
// Cells of released values are kept for reuse.
type Pool[T any] struct {
	live *slotmap.SlotMap[*cell[T]]
	free []*cell[T]
	log  *zap.Logger
}

// New returns an empty pool configured by opts.
func New[T any](opts ...Option) *Pool[T] {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	p := &Pool[T]{
		live: slotmap.New[*cell[T]](),
		log:  o.log,
	}
	if o.capacity > 0 {
		p.Reserve(o.capacity)
	}
	return p
}

// Alloc stores v in a pooled cell and returns the first strong reference
// to it.
func (p *Pool[T]) Alloc(v T) *Ref[T] {
	var c *cell[T]
	if n := len(p.free); n > 0 {
		c = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
	} else {
		c = &cell[T]{}
	}

	c.value = v
	c.strong = 1
	return &Ref[T]{pool: p, id: p.live.Insert(c)}
}

func (p *Pool[T]) cell(id slotmap.GID) *cell[T] {
	c := p.live.Get(id)
	if c == nil {
		return nil
	}
	return *c
}

func (p *Pool[T]) recycle(id slotmap.GID) {
	c, ok := p.live.Remove(id)
	if !ok {
		return
	}
	var zero T
	c.value = zero
	c.strong = 0
	p.free = append(p.free, c)
}

// Len returns the number of cells in use.
func (p *Pool[T]) Len() int { return p.live.Len() }

// Capacity returns the number of cells in use or ready for reuse.
func (p *Pool[T]) Capacity() int { return p.live.Len() + len(p.free) }

// Reserve makes sure n cells can be allocated without creating new ones.
func (p *Pool[T]) Reserve(n int) {
	missing := n - len(p.free)
	if missing <= 0 {
		return
	}
	for range missing {
		p.free = append(p.free, &cell[T]{})
	}
	p.live.Reserve(n)
	p.log.Debug("pool reserved cells", zap.Int("added", missing), zap.Int("capacity", p.Capacity()))
}

// ShrinkToFit drops every cell waiting for reuse.
func (p *Pool[T]) ShrinkToFit() {
	dropped := len(p.free)
	p.free = nil
	p.live.ShrinkToFit()
	if dropped > 0 {
		p.log.Debug("pool dropped free cells", zap.Int("dropped", dropped))
	}
}
