package slotmap

import (
	"fmt"
	"iter"
	"reflect"

	"github.com/plus3/gidstore/chunky"
)

type column interface {
	elemType() reflect.Type
	push(v any)
	swapRemove(pos int)
	clear()
}

type typedColumn[T any] struct {
	data *chunky.Array[T]
}

func (c *typedColumn[T]) elemType() reflect.Type { return reflect.TypeFor[T]() }

func (c *typedColumn[T]) push(item any) {
	if ptr, ok := item.(*T); ok {
		c.data.Push(*ptr)
	} else if val, ok := item.(T); ok {
		c.data.Push(val)
	} else {
		panic(fmt.Sprintf("slotmap: column %v cannot hold %T", c.elemType(), item))
	}
}

func (c *typedColumn[T]) swapRemove(pos int) { c.data.SwapRemove(pos) }

func (c *typedColumn[T]) clear() { c.data.Clear() }

// MultiStore keeps several parallel columns of values, one per registered
// type, addressed through a single Lookup. Every handle has exactly one value
// in each column.
type MultiStore struct {
	keys    *Lookup
	size    chunky.ChunkSize
	columns []column
	byType  map[reflect.Type]int
}

// NewMultiStore returns a store with no columns.
func NewMultiStore(size chunky.ChunkSize) *MultiStore {
	return &MultiStore{
		keys:   NewLookup(size),
		size:   size,
		byType: make(map[reflect.Type]int),
	}
}

// AddColumn registers a column of T values. Columns must be added while the
// store is empty, and each type may only be added once.
func AddColumn[T any](m *MultiStore) {
	t := reflect.TypeFor[T]()
	if !m.keys.IsEmpty() {
		panic(fmt.Sprintf("slotmap: cannot add column %v to a non-empty store", t))
	}
	if _, exists := m.byType[t]; exists {
		panic(fmt.Sprintf("slotmap: column %v already registered", t))
	}
	m.byType[t] = len(m.columns)
	m.columns = append(m.columns, &typedColumn[T]{data: chunky.New[T](m.size)})
}

func (m *MultiStore) columnFor(v any) (int, bool) {
	t := reflect.TypeOf(v)
	if t == nil {
		return 0, false
	}
	if idx, ok := m.byType[t]; ok {
		return idx, true
	}
	if t.Kind() == reflect.Pointer {
		idx, ok := m.byType[t.Elem()]
		return idx, ok
	}
	return 0, false
}

// Insert stores one value per column under h. Values may be given as T or *T
// in any order. It panics, leaving the store unchanged, if a column is missing
// a value, a value has no column, or the same column is given twice.
func (m *MultiStore) Insert(h GID, values ...any) {
	if len(values) != len(m.columns) {
		panic(fmt.Sprintf("slotmap: insert needs %d values, got %d", len(m.columns), len(values)))
	}

	order := make([]int, len(values))
	seen := make([]bool, len(m.columns))
	for i, v := range values {
		idx, ok := m.columnFor(v)
		if !ok {
			panic(fmt.Sprintf("slotmap: no column for %T", v))
		}
		if seen[idx] {
			panic(fmt.Sprintf("slotmap: duplicate value for column %v", m.columns[idx].elemType()))
		}
		seen[idx] = true
		order[i] = idx
	}

	m.keys.Insert(h)
	for i, v := range values {
		m.columns[order[i]].push(v)
	}
}

// Remove deletes h's value from every column.
func (m *MultiStore) Remove(h GID) bool {
	pos, ok := m.keys.Remove(h)
	if !ok {
		return false
	}
	for _, c := range m.columns {
		c.swapRemove(pos)
	}
	return true
}

func typedColumnOf[T any](m *MultiStore) *typedColumn[T] {
	idx, ok := m.byType[reflect.TypeFor[T]()]
	if !ok {
		return nil
	}
	col, ok := m.columns[idx].(*typedColumn[T])
	if !ok {
		return nil
	}
	return col
}

// Get returns a pointer to h's value in the T column, or nil if h is stale or
// there is no such column.
func Get[T any](m *MultiStore, h GID) *T {
	col := typedColumnOf[T](m)
	if col == nil {
		return nil
	}
	pos, ok := m.keys.Offset(h)
	if !ok {
		return nil
	}
	return col.data.Get(pos)
}

// Values returns an iterator over the T column in dense order.
func Values[T any](m *MultiStore) iter.Seq[*T] {
	col := typedColumnOf[T](m)
	if col == nil {
		return func(func(*T) bool) {}
	}
	return col.data.Values()
}

// ContainsKey reports whether a row is stored under h.
func (m *MultiStore) ContainsKey(h GID) bool { return m.keys.ContainsKey(h) }

// Len returns the number of rows.
func (m *MultiStore) Len() int { return m.keys.Len() }

// Columns returns the registered column types in registration order.
func (m *MultiStore) Columns() []reflect.Type {
	types := make([]reflect.Type, len(m.columns))
	for i, c := range m.columns {
		types[i] = c.elemType()
	}
	return types
}

// Keys returns an iterator over the stored handles in dense order.
func (m *MultiStore) Keys() iter.Seq[GID] { return m.keys.Keys() }

// Clear removes every row. Columns are kept.
func (m *MultiStore) Clear() {
	m.keys.Clear()
	for _, c := range m.columns {
		c.clear()
	}
}
