package ecs

// System represents a behavior that operates on entities with specific components.
// User-defined systems should implement this interface and can include Query fields
// for accessing entities, as well as custom state fields that persist between frames.
type System interface {
	Execute(frame *UpdateFrame)
}

// UpdateFrame is handed to every system during one scheduler tick.
type UpdateFrame struct {
	// Frame counts ticks from 1.
	Frame     uint64
	DeltaTime float64
	Commands  *Commands
	Storage   *Storage
}

func newUpdateFrame(frame uint64, dt float64, storage *Storage) *UpdateFrame {
	return &UpdateFrame{
		Frame:     frame,
		DeltaTime: dt,
		Commands:  newCommands(),
		Storage:   storage,
	}
}
