package dispatcher

import (
	"github.com/dshills/scenedit/internal/command"
	"github.com/dshills/scenedit/internal/input/mouse"
)

// PointerContext is the pointer oracle the dispatcher feeds and passes to
// commands.
type PointerContext interface {
	command.Context

	// Moved records a motion event before bindings see it.
	Moved(ev mouse.MotionEvent)

	// Scrolled records a wheel event before bindings see it.
	Scrolled(ev mouse.WheelEvent)
}

// Pointer is the default PointerContext. Hover state is written by the
// renderer's picking pass and the GUI layer.
type Pointer struct {
	position mouse.Position
	relative mouse.Position
	wheel    mouse.Position

	overTool bool
	overGUI  bool
	viewport string
}

// NewPointer returns a pointer with no hover state.
func NewPointer() *Pointer {
	return &Pointer{}
}

// Moved implements PointerContext.
func (p *Pointer) Moved(ev mouse.MotionEvent) {
	p.position = ev.Position
	p.relative = ev.Delta
}

// Scrolled implements PointerContext.
func (p *Pointer) Scrolled(ev mouse.WheelEvent) {
	p.wheel = ev.Delta
}

// SetHover updates hover flags.
func (p *Pointer) SetHover(overTool, overGUI bool) {
	p.overTool = overTool
	p.overGUI = overGUI
}

// SetViewport sets the hovered viewport name; "" means none.
func (p *Pointer) SetViewport(name string) {
	p.viewport = name
}

// HoveringOverTool implements command.Context.
func (p *Pointer) HoveringOverTool() bool { return p.overTool }

// HoveringOverGUI implements command.Context.
func (p *Pointer) HoveringOverGUI() bool { return p.overGUI }

// HoveredViewport implements command.Context.
func (p *Pointer) HoveredViewport() (string, bool) {
	return p.viewport, p.viewport != ""
}

// AbsolutePosition implements command.Context.
func (p *Pointer) AbsolutePosition() mouse.Position { return p.position }

// RelativePosition implements command.Context.
func (p *Pointer) RelativePosition() mouse.Position { return p.relative }

// WheelDelta implements command.Context.
func (p *Pointer) WheelDelta() mouse.Position { return p.wheel }
