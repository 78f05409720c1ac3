package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/gidstore/ecs"
	"github.com/plus3/gidstore/slotmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	entityId := storage.Spawn(&Position{X: 1, Y: 2}, Temperature(32))

	view := ecs.NewView[struct {
		*Position
		*Temperature
	}](storage)

	item := view.Get(entityId)
	require.NotNil(t, item)
	assert.Equal(t, Temperature(32), *item.Temperature)
	assert.Equal(t, float32(1), item.Position.X)
	assert.Equal(t, float32(2), item.Position.Y)
}

func TestViewMissingComponent(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	// Entity only has Position, not Velocity
	entityId := storage.Spawn(&Position{X: 5, Y: 10})

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](storage)

	assert.Nil(t, view.Get(entityId))

	var result struct {
		*Position
		*Velocity
	}
	assert.False(t, view.Fill(entityId, &result))
}

func TestViewComponentMutation(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	entityId := storage.Spawn(&Position{X: 1, Y: 1}, &Velocity{DX: 0, DY: 0})

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](storage)

	item := view.Get(entityId)
	require.NotNil(t, item)

	item.Position.X = 100
	item.Velocity.DY = 10

	pos := storage.GetComponent(entityId, reflect.TypeOf(Position{})).(*Position)
	assert.Equal(t, float32(100), pos.X)
	vel := storage.GetComponent(entityId, reflect.TypeOf(Velocity{})).(*Velocity)
	assert.Equal(t, float32(10), vel.DY)
}

func TestViewInvalidEntityId(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	storage.Spawn(&Position{}, &Velocity{})
	fakeId := slotmap.NewGID(0, 9999)

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](storage)

	assert.Nil(t, view.Get(fakeId))
}

func TestViewIter(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id1 := storage.Spawn(&Position{X: 1, Y: 1}, &Velocity{DX: 0.1, DY: 0.1})
	id2 := storage.Spawn(&Position{X: 2, Y: 2}, &Velocity{DX: 0.2, DY: 0.2}, &Name{Value: "two"})
	id3 := storage.Spawn(&Position{X: 3, Y: 3}, &Velocity{DX: 0.3, DY: 0.3})

	// Partial matches should not be included
	storage.Spawn(&Position{X: 99, Y: 99})
	storage.Spawn(&Velocity{DX: 99, DY: 99})

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](storage)

	entities := make(map[ecs.EntityId]struct {
		*Position
		*Velocity
	})
	for id, item := range view.Iter() {
		entities[id] = item
	}

	assert.Len(t, entities, 3)
	assert.Equal(t, float32(1), entities[id1].Position.X)
	assert.Equal(t, float32(0.2), entities[id2].Velocity.DX)
	assert.Equal(t, float32(3), entities[id3].Position.Y)
	assert.Equal(t, 3, view.Len())
}

func TestViewIterEmpty(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	storage.Spawn(&Position{})

	// Velocity has never been stored, so nothing can match
	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](storage)

	assert.Equal(t, 0, view.Len())
}

func TestViewValuesMutation(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	ids := []ecs.EntityId{
		storage.Spawn(&Position{X: 1, Y: 1}, &Velocity{}),
		storage.Spawn(&Position{X: 2, Y: 2}, &Velocity{}),
		storage.Spawn(&Position{X: 3, Y: 3}, &Velocity{}),
	}

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](storage)

	for item := range view.Values() {
		item.Velocity.DX = item.Position.X * 10
	}

	for i, id := range ids {
		assert.Equal(t, float32(i+1)*10, ecs.ReadComponent[Velocity](storage, id).DX)
	}
}

func TestViewIterEarlyBreak(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	for i := 0; i < 4; i++ {
		storage.Spawn(&Position{X: float32(i)}, &Velocity{})
	}

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](storage)

	count := 0
	for range view.Iter() {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestViewOptionalFields(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	withName := storage.Spawn(&Position{X: 1}, &Name{Value: "named"})
	withoutName := storage.Spawn(&Position{X: 2})

	type row struct {
		*Position
		Name *Name `ecs:"optional"`
	}
	view := ecs.NewView[row](storage)

	item := view.Get(withName)
	require.NotNil(t, item)
	require.NotNil(t, item.Name)
	assert.Equal(t, "named", item.Name.Value)

	item = view.Get(withoutName)
	require.NotNil(t, item)
	assert.Nil(t, item.Name)

	// The reused row must not leak the previous entity's optional component
	names := map[ecs.EntityId]*Name{}
	for id, r := range view.Iter() {
		names[id] = r.Name
	}
	assert.Len(t, names, 2)
	assert.NotNil(t, names[withName])
	assert.Nil(t, names[withoutName])
}

func TestViewOnlyOptionalFieldsVisitsEveryEntity(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	storage.Spawn(&Position{})
	storage.Spawn(&Health{})

	view := ecs.NewView[struct {
		Health *Health `ecs:"optional"`
	}](storage)

	assert.Equal(t, 2, view.Len())
}

func TestViewEntityIdField(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(&Position{X: 4})

	view := ecs.NewView[struct {
		Id ecs.EntityId
		*Position
	}](storage)

	for rowId, row := range view.Iter() {
		assert.Equal(t, id, rowId)
		assert.Equal(t, id, row.Id)
	}
	assert.Equal(t, id, view.Get(id).Id)
}

func TestViewSpawn(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	type row struct {
		*Position
		Velocity *Velocity `ecs:"optional"`
	}
	view := ecs.NewView[row](storage)

	id := view.Spawn(row{Position: &Position{X: 7}})
	assert.Equal(t, float32(7), ecs.ReadComponent[Position](storage, id).X)
	assert.Nil(t, ecs.ReadComponent[Velocity](storage, id))

	assert.PanicsWithValue(t, "required component is nil in View.Spawn", func() {
		view.Spawn(row{Velocity: &Velocity{}})
	})
}

func TestViewInvalidDefinitions(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	assert.Panics(t, func() { ecs.NewView[Position](storage) }, "non-pointer fields")
	assert.Panics(t, func() { ecs.NewView[int](storage) }, "not a struct")
	assert.PanicsWithValue(t, `invalid ecs tag value: "maybe" (only "optional" is supported)`, func() {
		ecs.NewView[struct {
			Name *Name `ecs:"maybe"`
		}](storage)
	})
	assert.Panics(t, func() {
		ecs.NewView[struct {
			name *Name
		}](storage)
	}, "unexported field")
}
