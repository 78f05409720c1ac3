package workload

import (
	"context"
	"fmt"
	"math/rand/v2"
	"reflect"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/plus3/gidstore/chunky"
	"github.com/plus3/gidstore/ecs"
	"go.uber.org/zap"
)

// Components used by the scene workload.
type (
	Position struct{ X, Y float32 }
	Velocity struct{ DX, DY float32 }
	Health   struct{ Current, Max int }
	Lifetime struct{ Frames int }
)

// SceneClock is a singleton updated once per frame.
type SceneClock struct {
	Frames  uint64
	Elapsed float64
}

type clockSystem struct {
	Clock ecs.Singleton[SceneClock]
}

func (s *clockSystem) Execute(frame *ecs.UpdateFrame) {
	clock := s.Clock.Get()
	clock.Frames = frame.Frame
	clock.Elapsed += frame.DeltaTime
}

type movementSystem struct {
	Entities ecs.Query[struct {
		*Position
		*Velocity
	}]
}

func (s *movementSystem) Execute(frame *ecs.UpdateFrame) {
	dt := float32(frame.DeltaTime)
	for item := range s.Entities.Values() {
		item.Position.X += item.Velocity.DX * dt
		item.Position.Y += item.Velocity.DY * dt
	}
}

// healthSystem drains health and strips the component once it runs out.
type healthSystem struct {
	Entities ecs.Query[struct {
		Id ecs.EntityId
		*Health
	}]
}

func (s *healthSystem) Execute(frame *ecs.UpdateFrame) {
	for _, item := range s.Entities.Iter() {
		item.Health.Current--
		if item.Health.Current <= 0 {
			frame.Commands.RemoveComponent(item.Id, healthType)
		}
	}
}

// lifetimeSystem replaces expired entities with fresh ones.
type lifetimeSystem struct {
	Entities ecs.Query[struct {
		Id ecs.EntityId
		*Lifetime
	}]

	scene     *Scene
	spawned   int
	despawned int
}

func (s *lifetimeSystem) Execute(frame *ecs.UpdateFrame) {
	for _, item := range s.Entities.Iter() {
		item.Lifetime.Frames--
		if item.Lifetime.Frames > 0 {
			continue
		}
		frame.Commands.Delete(item.Id)
		frame.Commands.Spawn(s.scene.randomComponents()...)
		s.despawned++
		s.spawned++
	}
}

// Scene runs a fixed-step ecs simulation whose entities expire and are
// replaced, so entity ids churn through the registry every frame.
type Scene struct {
	cfg *Config
	log *zap.Logger
	rng *rand.Rand

	storage   *ecs.Storage
	scheduler *ecs.Scheduler
	lifetimes *lifetimeSystem
}

// NewScene validates cfg and builds the storage and systems.
func NewScene(cfg *Config, log *zap.Logger) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	registry := ecs.NewComponentRegistry()
	if cfg.ChunkSize > 0 {
		registry.SetChunkSize(chunky.Elements(cfg.ChunkSize))
	}
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Health](registry)
	ecs.RegisterComponent[Lifetime](registry)

	s := &Scene{
		cfg:     cfg,
		log:     log,
		rng:     rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x6a09e667f3bcc909)),
		storage: ecs.NewStorage(registry),
	}
	ecs.NewSingleton(s.storage, SceneClock{})

	s.lifetimes = &lifetimeSystem{scene: s}
	s.scheduler = ecs.NewScheduler(s.storage)
	s.scheduler.Register(&clockSystem{})
	s.scheduler.Register(&movementSystem{})
	s.scheduler.Register(&healthSystem{})
	s.scheduler.Register(s.lifetimes)
	return s, nil
}

var healthType = reflect.TypeFor[Health]()

func (s *Scene) randomComponents() []any {
	components := []any{
		Position{X: s.rng.Float32() * 1000, Y: s.rng.Float32() * 1000},
		Lifetime{Frames: 1 + s.rng.IntN(s.cfg.Scene.MaxLifetime)},
	}
	if s.rng.IntN(10) < 7 {
		components = append(components, Velocity{DX: s.rng.Float32()*2 - 1, DY: s.rng.Float32()*2 - 1})
	}
	if s.rng.IntN(2) == 0 {
		hp := 1 + s.rng.IntN(s.cfg.Scene.MaxLifetime)
		components = append(components, Health{Current: hp, Max: hp})
	}
	return components
}

// Run populates the storage and steps the scheduler for the configured
// number of frames.
func (s *Scene) Run(ctx context.Context) (*SceneReport, error) {
	s.log.Info("populating scene", zap.Int("entities", s.cfg.Scene.Entities))
	for i := 0; i < s.cfg.Scene.Entities; i++ {
		s.storage.Spawn(s.randomComponents()...)
	}

	report := &SceneReport{
		RunID:    uuid.New(),
		Seed:     s.cfg.Seed,
		Entities: s.cfg.Scene.Entities,
		Frames:   s.cfg.Scene.Frames,
	}
	report.FrameTime.Samples = make([]time.Duration, 0, s.cfg.Scene.Frames)
	runtime.ReadMemStats(&report.MemStatsStart)

	const dt = 1.0 / 60
	start := time.Now()
	for frame := 0; frame < s.cfg.Scene.Frames; frame++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scene interrupted after %d frames: %w", frame, err)
		}
		frameStart := time.Now()
		s.scheduler.Once(dt)
		report.FrameTime.Samples = append(report.FrameTime.Samples, time.Since(frameStart))
	}
	report.TotalTime = time.Since(start)
	runtime.ReadMemStats(&report.MemStatsEnd)

	report.FrameTime.Finalize()
	report.Spawned = s.lifetimes.spawned
	report.Despawned = s.lifetimes.despawned
	report.Storage = s.storage.CollectStats()
	report.Scheduler = s.scheduler.GetStats()
	report.fillSummary()

	s.log.Info("scene finished",
		zap.Stringer("run_id", report.RunID),
		zap.Int("frames", report.Frames),
		zap.Int("replaced", report.Despawned),
		zap.Duration("avg_frame", report.FrameTime.Avg),
	)
	return report, nil
}

// Storage exposes the scene's entity storage.
func (s *Scene) Storage() *ecs.Storage { return s.storage }
