// Package frontend connects the editor to a window system: it delivers
// input events and presents rendered frames.
//
// Two front ends exist. Terminal draws frames into a terminal with tcell,
// two pixels per character cell. Headless replays a scripted event list
// and keeps the presented frames in memory.
package frontend

import (
	"image"

	"github.com/dshills/scenedit/internal/input/key"
	"github.com/dshills/scenedit/internal/input/mouse"
	"github.com/dshills/scenedit/internal/rendering"
)

// EventKind identifies the payload of an Event.
type EventKind uint8

// Event kinds.
const (
	EventNone EventKind = iota
	EventKey
	EventButton
	EventMotion
	EventWheel
	EventResize
	EventQuit
)

// String returns the kind name.
func (k EventKind) String() string {
	switch k {
	case EventKey:
		return "key"
	case EventButton:
		return "button"
	case EventMotion:
		return "motion"
	case EventWheel:
		return "wheel"
	case EventResize:
		return "resize"
	case EventQuit:
		return "quit"
	default:
		return "none"
	}
}

// Event is one input event. Only the field matching Kind is set.
type Event struct {
	Kind   EventKind
	Key    key.Event
	Button mouse.ButtonEvent
	Motion mouse.MotionEvent
	Wheel  mouse.WheelEvent

	// Width and Height are the new framebuffer size of EventResize.
	Width, Height int
}

// KeyEvent wraps a key event.
func KeyEvent(ev key.Event) Event { return Event{Kind: EventKey, Key: ev} }

// ButtonEvent wraps a mouse button event.
func ButtonEvent(ev mouse.ButtonEvent) Event { return Event{Kind: EventButton, Button: ev} }

// MotionEvent wraps a mouse motion event.
func MotionEvent(ev mouse.MotionEvent) Event { return Event{Kind: EventMotion, Motion: ev} }

// WheelEvent wraps a mouse wheel event.
func WheelEvent(ev mouse.WheelEvent) Event { return Event{Kind: EventWheel, Wheel: ev} }

// Sink consumes input events. *dispatcher.Dispatcher implements it.
type Sink interface {
	OnKey(ev key.Event) bool
	OnMouseButton(ev mouse.ButtonEvent) bool
	OnMouseMove(ev mouse.MotionEvent) bool
	OnMouseWheel(ev mouse.WheelEvent) bool
}

// Deliver hands ev to sink and reports whether it was consumed. Resize,
// quit and empty events are never consumed.
func Deliver(ev Event, sink Sink) bool {
	switch ev.Kind {
	case EventKey:
		return sink.OnKey(ev.Key)
	case EventButton:
		return sink.OnMouseButton(ev.Button)
	case EventMotion:
		return sink.OnMouseMove(ev.Motion)
	case EventWheel:
		return sink.OnMouseWheel(ev.Wheel)
	default:
		return false
	}
}

// Frontend is an input source and presentation surface.
type Frontend interface {
	// Init prepares the surface and starts delivering events.
	Init() error

	// Size returns the framebuffer size in pixels.
	Size() (width, height int)

	// Events delivers input. The channel is closed by Close.
	Events() <-chan Event

	// Present shows a rendered frame with its text overlay.
	Present(frame *image.RGBA, labels []rendering.PlacedLabel) error

	// Close releases the surface.
	Close()
}
