// Package binding maps raw input events to commands.
//
// A Binding is a closed tagged variant: Kind selects which trigger fields
// are meaningful, and the On* functions dispatch on Kind with a single
// switch each. Bindings hold a command.Handle, never the command itself;
// the Host owning the registry resolves it.
package binding

import (
	"fmt"
	"sync/atomic"

	"github.com/dshills/scenedit/internal/command"
	"github.com/dshills/scenedit/internal/input/key"
	"github.com/dshills/scenedit/internal/input/mouse"
)

// Kind identifies the trigger type of a binding.
type Kind uint8

const (
	// KindKey triggers on a key press or release.
	KindKey Kind = iota + 1
	// KindMouseClick triggers on press then release of a button without motion.
	KindMouseClick
	// KindMouseMotion triggers on every pointer motion.
	KindMouseMotion
	// KindMouseDrag triggers on press, motion, release of a button.
	KindMouseDrag
	// KindMouseWheel triggers on scroll wheel movement.
	KindMouseWheel
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindKey:
		return "key"
	case KindMouseClick:
		return "mouse_click"
	case KindMouseMotion:
		return "mouse_motion"
	case KindMouseDrag:
		return "mouse_drag"
	case KindMouseWheel:
		return "mouse_wheel"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// IsMouse reports whether bindings of this kind live in the mouse list.
func (k Kind) IsMouse() bool {
	return k != KindKey
}

// ID identifies a binding for later removal. IDs are unique for the
// process lifetime.
type ID uint64

var lastID atomic.Uint64

func nextID() ID {
	return ID(lastID.Add(1))
}

// Binding is a rule mapping an input trigger to a command.
type Binding struct {
	ID      ID
	Kind    Kind
	Command command.Handle

	// Key is the trigger of KindKey bindings: key identity and direction
	// (Pressed). Modifiers on Key are ignored unless MatchModifiers is set.
	Key key.Event

	// MatchModifiers requires the event modifiers to equal Key.Modifiers.
	MatchModifiers bool

	// Button is the trigger of KindMouseClick and KindMouseDrag bindings.
	Button mouse.Button
}

// String describes the binding for logs.
func (b Binding) String() string {
	switch b.Kind {
	case KindKey:
		dir := "release"
		if b.Key.Pressed {
			dir = "press"
		}
		return fmt.Sprintf("%s %s(%s)", b.Kind, b.Key, dir)
	case KindMouseClick, KindMouseDrag:
		return fmt.Sprintf("%s %s", b.Kind, b.Button)
	default:
		return b.Kind.String()
	}
}

func newBinding(kind Kind, h command.Handle) Binding {
	if h == command.NoHandle {
		panic("binding: nil command")
	}
	return Binding{ID: nextID(), Kind: kind, Command: h}
}

// NewKey creates a key binding. trigger carries the key, direction and,
// when mods is non-nil, the exact modifier mask required.
func NewKey(h command.Handle, trigger key.Event, mods *key.Modifier) Binding {
	b := newBinding(KindKey, h)
	b.Key = trigger
	if mods != nil {
		b.Key.Modifiers = *mods
		b.MatchModifiers = true
	}
	return b
}

// NewMouseClick creates a click binding for button.
func NewMouseClick(h command.Handle, button mouse.Button) Binding {
	b := newBinding(KindMouseClick, h)
	b.Button = button
	return b
}

// NewMouseDrag creates a drag binding for button.
func NewMouseDrag(h command.Handle, button mouse.Button) Binding {
	b := newBinding(KindMouseDrag, h)
	b.Button = button
	return b
}

// NewMouseMotion creates a motion binding.
func NewMouseMotion(h command.Handle) Binding {
	return newBinding(KindMouseMotion, h)
}

// NewMouseWheel creates a wheel binding.
func NewMouseWheel(h command.Handle) Binding {
	return newBinding(KindMouseWheel, h)
}
