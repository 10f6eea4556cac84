// Package command implements the editor's user-invocable actions as
// small state machines.
//
// A Command knows nothing about input devices. Bindings (see package
// binding) decide when a command becomes Ready or Active and when it is
// called; the Registry owns every command and reports each state
// transition to its observers.
package command

import (
	"fmt"

	"github.com/dshills/scenedit/internal/input/mouse"
)

// State is the lifecycle state of a command.
type State uint8

const (
	// Disabled commands ignore all input until re-enabled.
	Disabled State = iota
	// Inactive commands are idle and may become Ready.
	Inactive
	// Ready commands have been primed (e.g. by a button press).
	Ready
	// Active commands are mid-interaction (e.g. dragging).
	Active
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Disabled:
		return "Disabled"
	case Inactive:
		return "Inactive"
	case Ready:
		return "Ready"
	case Active:
		return "Active"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Context is the pointer and hover oracle available to commands while
// they are evaluated.
type Context interface {
	// HoveringOverTool reports whether the pointer is over a tool handle.
	HoveringOverTool() bool

	// HoveringOverGUI reports whether the pointer is over a GUI panel.
	HoveringOverGUI() bool

	// HoveredViewport returns the name of the viewport under the pointer.
	HoveredViewport() (string, bool)

	// AbsolutePosition is the last pointer position in window pixels.
	AbsolutePosition() mouse.Position

	// RelativePosition is the pointer movement of the last motion event.
	RelativePosition() mouse.Position

	// WheelDelta is the delta of the last wheel event.
	WheelDelta() mouse.Position
}

// CallFunc performs a command's action and reports whether the input
// event was consumed.
type CallFunc func(ctx Context) bool

// ReadyFunc vetoes the Inactive to Ready transition when it returns false.
type ReadyFunc func(ctx Context) bool

// Command is a named, stateful user action.
type Command struct {
	name  string
	state State
	call  CallFunc
	ready ReadyFunc
}

// Option configures a Command at registration.
type Option func(*Command)

// WithCall sets the action invoked by TryCall.
func WithCall(fn CallFunc) Option {
	return func(c *Command) {
		c.call = fn
	}
}

// WithReady sets the veto consulted by TryReady.
func WithReady(fn ReadyFunc) Option {
	return func(c *Command) {
		c.ready = fn
	}
}

// WithState sets the initial state. Commands start Inactive by default.
func WithState(s State) Option {
	return func(c *Command) {
		c.state = s
	}
}

// Name returns the command name. Names are for logging and display only.
func (c *Command) Name() string {
	return c.name
}

// State returns the current state.
func (c *Command) State() State {
	return c.state
}

// transition moves the command to a new state and returns the change.
// It is the only place state is written.
func (c *Command) transition(to State) (from State) {
	from = c.state
	c.state = to
	return from
}
