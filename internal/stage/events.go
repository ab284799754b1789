package stage

import (
	"pulsefield/internal/camera"
	"pulsefield/internal/scene"
)

type EventType int

const (
	EventTypeSelectScene EventType = iota
	EventTypeCameraAction
	EventTypeMouseMove
	EventTypeResize
	EventTypeTogglePlayback
	EventTypeStopPlayback
)

// Event is anything the control surface can emit.
type Event interface {
	Type() EventType
}

// Cursor positions and sizes are framebuffer pixels.
type EventSelectScene struct{ Index scene.Index }
type EventCameraAction struct{ Action camera.Action }
type EventMouseMove struct{ X, Y float64 }
type EventResize struct{ W, H int }
type EventTogglePlayback struct{}
type EventStopPlayback struct{}

func (EventSelectScene) Type() EventType    { return EventTypeSelectScene }
func (EventCameraAction) Type() EventType   { return EventTypeCameraAction }
func (EventMouseMove) Type() EventType      { return EventTypeMouseMove }
func (EventResize) Type() EventType         { return EventTypeResize }
func (EventTogglePlayback) Type() EventType { return EventTypeTogglePlayback }
func (EventStopPlayback) Type() EventType   { return EventTypeStopPlayback }

type EventHandler func(Event)

// EventBus dispatches events synchronously on the emitting goroutine.
type EventBus struct {
	handlers map[EventType][]EventHandler
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]EventHandler),
	}
}

func (eb *EventBus) Subscribe(t EventType, fn EventHandler) {
	eb.handlers[t] = append(eb.handlers[t], fn)
}

func (eb *EventBus) Emit(e Event) {
	for _, fn := range eb.handlers[e.Type()] {
		fn(e)
	}
}
