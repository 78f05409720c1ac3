package ecs_test

import (
	"context"
	"testing"
	"time"

	"github.com/plus3/gidstore/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MovementSystem struct {
	Entities ecs.Query[struct {
		*Position
		*Velocity
	}]
	ExecuteCount int
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) {
	s.ExecuteCount++
	for _, item := range s.Entities.Iter() {
		item.Position.X += item.Velocity.DX * float32(frame.DeltaTime)
		item.Position.Y += item.Velocity.DY * float32(frame.DeltaTime)
	}
}

type HealthSystem struct {
	Entities ecs.Query[struct {
		*Health
	}]
	ExecuteCount int
	TotalHealth  float64
}

func (s *HealthSystem) Execute(frame *ecs.UpdateFrame) {
	s.ExecuteCount++
	s.TotalHealth = 0
	for item := range s.Entities.Values() {
		s.TotalHealth += float64(item.Health.Current)
	}
}

type FrameRecorder struct {
	Frames []uint64
}

func (s *FrameRecorder) Execute(frame *ecs.UpdateFrame) {
	s.Frames = append(s.Frames, frame.Frame)
}

type SpawnEverySystem struct{}

func (s *SpawnEverySystem) Execute(frame *ecs.UpdateFrame) {
	frame.Commands.Spawn(Health{Current: 10, Max: 10})
}

type Counter struct {
	Ticks int
}

type CountingSystem struct {
	Counter ecs.Singleton[Counter]
}

func (s *CountingSystem) Execute(frame *ecs.UpdateFrame) {
	s.Counter.Get().Ticks++
}

func TestScheduler(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Health](registry)

	t.Run("system execution order and query initialization", func(t *testing.T) {
		storage := ecs.NewStorage(registry)
		scheduler := ecs.NewScheduler(storage)

		movement := &MovementSystem{}
		health := &HealthSystem{}

		scheduler.Register(movement)
		scheduler.Register(health)

		id := storage.Spawn(Position{X: 0, Y: 0}, Velocity{DX: 1, DY: 2})
		storage.Spawn(Health{Current: 100, Max: 100})

		scheduler.Once(1.0)
		assert.Equal(t, 1, movement.ExecuteCount)
		assert.Equal(t, 1, health.ExecuteCount)

		scheduler.Once(1.0)
		assert.Equal(t, 2, movement.ExecuteCount)
		assert.Equal(t, 2, health.ExecuteCount)

		pos := ecs.ReadComponent[Position](storage, id)
		assert.Equal(t, float32(2), pos.X)
		assert.Equal(t, float32(4), pos.Y)
		assert.Equal(t, float64(100), health.TotalHealth)
	})

	t.Run("queries see spawns from the previous frame", func(t *testing.T) {
		storage := ecs.NewStorage(registry)
		scheduler := ecs.NewScheduler(storage)

		health := &HealthSystem{}
		scheduler.Register(&SpawnEverySystem{})
		scheduler.Register(health)

		scheduler.Once(1.0)
		assert.Equal(t, float64(0), health.TotalHealth, "commands wait for the flush")

		scheduler.Once(1.0)
		assert.Equal(t, float64(10), health.TotalHealth)
		assert.Equal(t, 2, storage.Len())
	})

	t.Run("frame counter", func(t *testing.T) {
		storage := ecs.NewStorage(registry)
		scheduler := ecs.NewScheduler(storage)

		recorder := &FrameRecorder{}
		scheduler.Register(recorder)
		for i := 0; i < 3; i++ {
			scheduler.Once(0.016)
		}
		assert.Equal(t, []uint64{1, 2, 3}, recorder.Frames)
	})

	t.Run("singleton fields", func(t *testing.T) {
		storage := ecs.NewStorage(registry)
		scheduler := ecs.NewScheduler(storage)

		ecs.NewSingleton(storage, Counter{Ticks: 5})
		system := &CountingSystem{}
		scheduler.Register(system)

		scheduler.Once(1.0)
		scheduler.Once(1.0)

		var counter *Counter
		require.True(t, storage.ReadSingleton(&counter))
		assert.Equal(t, 7, counter.Ticks)
	})

	t.Run("run until context is cancelled", func(t *testing.T) {
		storage := ecs.NewStorage(registry)
		scheduler := ecs.NewScheduler(storage)

		recorder := &FrameRecorder{}
		scheduler.Register(recorder)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		scheduler.Run(ctx, 5*time.Millisecond)

		assert.NotEmpty(t, recorder.Frames)
	})

	t.Run("stats", func(t *testing.T) {
		storage := ecs.NewStorage(registry)
		scheduler := ecs.NewScheduler(storage)

		scheduler.Register(&MovementSystem{})
		scheduler.Register(&HealthSystem{})
		for i := 0; i < 4; i++ {
			scheduler.Once(1.0)
		}

		stats := scheduler.GetStats()
		assert.Equal(t, 2, stats.SystemCount)
		assert.Equal(t, int64(8), stats.TotalExecutions)
		require.Len(t, stats.Systems, 2)
		assert.Equal(t, "MovementSystem", stats.Systems[0].Name)
		assert.Equal(t, "HealthSystem", stats.Systems[1].Name)
		for _, s := range stats.Systems {
			assert.Equal(t, int64(4), s.ExecutionCount)
			assert.LessOrEqual(t, s.MinDuration, s.MaxDuration)
		}
	})
}
