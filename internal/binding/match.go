package binding

import (
	"github.com/dshills/scenedit/internal/command"
	"github.com/dshills/scenedit/internal/input/key"
	"github.com/dshills/scenedit/internal/input/mouse"
)

// Outcome is the result of offering an event to one binding.
type Outcome uint8

const (
	// Unmatched means the trigger does not apply to the event.
	Unmatched Outcome = iota
	// Filtered means the key matched but the modifier mask did not.
	Filtered
	// Rejected means the trigger matched but the command was Disabled or
	// lost mouse exclusivity.
	Rejected
	// Handled means the binding ran but did not consume the event.
	Handled
	// Consumed means the event was consumed and the scan should stop.
	Consumed
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Unmatched:
		return "unmatched"
	case Filtered:
		return "filtered"
	case Rejected:
		return "rejected"
	case Handled:
		return "handled"
	case Consumed:
		return "consumed"
	default:
		return "unknown"
	}
}

// Host is the dispatcher-side view a binding needs while matching.
type Host interface {
	// Commands returns the registry owning the bound commands.
	Commands() *command.Registry

	// Context returns the pointer oracle passed to commands.
	Context() command.Context

	// AcceptMouseCommand reports whether h may receive mouse input given
	// the current exclusivity holder.
	AcceptMouseCommand(h command.Handle) bool
}

func consumed(ok bool) Outcome {
	if ok {
		return Consumed
	}
	return Handled
}

// OnKey offers a key event to b.
func OnKey(b Binding, host Host, ev key.Event) Outcome {
	switch b.Kind {
	case KindKey:
		if !b.Key.SameKey(ev) || b.Key.Pressed != ev.Pressed {
			return Unmatched
		}
		if b.MatchModifiers && b.Key.Modifiers != ev.Modifiers {
			return Filtered
		}
		reg := host.Commands()
		if reg.State(b.Command) == command.Disabled {
			return Rejected
		}
		// Releases are never reported as consumed.
		return consumed(reg.TryCall(b.Command, host.Context()) && ev.Pressed)
	case KindMouseClick, KindMouseMotion, KindMouseDrag, KindMouseWheel:
		return Unmatched
	default:
		panic("binding: unknown kind " + b.Kind.String())
	}
}

// OnButton offers a mouse button event to b.
func OnButton(b Binding, host Host, ev mouse.ButtonEvent) Outcome {
	switch b.Kind {
	case KindMouseClick:
		return clickButton(b, host, ev)
	case KindMouseDrag:
		return dragButton(b, host, ev)
	case KindKey, KindMouseMotion, KindMouseWheel:
		return Unmatched
	default:
		panic("binding: unknown kind " + b.Kind.String())
	}
}

// OnMotion offers a pointer motion event to b.
func OnMotion(b Binding, host Host, ev mouse.MotionEvent) Outcome {
	switch b.Kind {
	case KindMouseClick:
		return clickMotion(b, host)
	case KindMouseDrag:
		return dragMotion(b, host)
	case KindMouseMotion:
		reg := host.Commands()
		if reg.State(b.Command) == command.Disabled {
			return Rejected
		}
		// Motion bindings never consume so every one of them runs.
		reg.TryCall(b.Command, host.Context())
		return Handled
	case KindKey, KindMouseWheel:
		return Unmatched
	default:
		panic("binding: unknown kind " + b.Kind.String())
	}
}

// OnWheel offers a wheel event to b.
func OnWheel(b Binding, host Host, ev mouse.WheelEvent) Outcome {
	switch b.Kind {
	case KindMouseWheel:
		reg := host.Commands()
		if reg.State(b.Command) == command.Disabled {
			return Rejected
		}
		return consumed(reg.TryCall(b.Command, host.Context()))
	case KindKey, KindMouseClick, KindMouseMotion, KindMouseDrag:
		return Unmatched
	default:
		panic("binding: unknown kind " + b.Kind.String())
	}
}

// gate applies the checks shared by click and drag button handling. It
// returns false when the event must be refused.
func gate(b Binding, host Host) bool {
	reg := host.Commands()
	if reg.State(b.Command) == command.Disabled {
		return false
	}
	if !host.AcceptMouseCommand(b.Command) {
		reg.SetInactive(b.Command)
		return false
	}
	return true
}

func clickButton(b Binding, host Host, ev mouse.ButtonEvent) Outcome {
	if ev.Button != b.Button {
		return Unmatched
	}
	if !gate(b, host) {
		return Rejected
	}
	reg := host.Commands()
	if ev.Pressed() {
		if reg.State(b.Command) == command.Inactive {
			reg.TryReady(b.Command, host.Context())
		}
		return Handled
	}
	ok := false
	if reg.State(b.Command) == command.Ready {
		ok = reg.TryCall(b.Command, host.Context())
	}
	reg.SetInactive(b.Command)
	return consumed(ok)
}

// clickMotion cancels a primed click: any motion turns the gesture into
// something other than a click. Drag bindings deliberately do not do this.
func clickMotion(b Binding, host Host) Outcome {
	reg := host.Commands()
	switch reg.State(b.Command) {
	case command.Disabled:
		return Rejected
	case command.Inactive:
		return Handled
	default:
		reg.SetInactive(b.Command)
		return Handled
	}
}

func dragButton(b Binding, host Host, ev mouse.ButtonEvent) Outcome {
	if ev.Button != b.Button {
		return Unmatched
	}
	if !gate(b, host) {
		return Rejected
	}
	reg := host.Commands()
	if ev.Pressed() {
		if reg.State(b.Command) == command.Inactive {
			reg.TryReady(b.Command, host.Context())
		}
		return Handled
	}
	// A drag that never moved is not a consumed interaction.
	wasActive := reg.State(b.Command) == command.Active
	if reg.State(b.Command) != command.Inactive {
		reg.SetInactive(b.Command)
	}
	return consumed(wasActive)
}

func dragMotion(b Binding, host Host) Outcome {
	reg := host.Commands()
	switch reg.State(b.Command) {
	case command.Disabled:
		return Rejected
	case command.Inactive:
		return Unmatched
	case command.Ready:
		if !host.AcceptMouseCommand(b.Command) {
			reg.SetInactive(b.Command)
			return Rejected
		}
		reg.SetActive(b.Command)
	}
	return consumed(reg.TryCall(b.Command, host.Context()))
}
