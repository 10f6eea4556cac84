package dispatcher

import (
	"fmt"
	"strings"

	"github.com/dshills/scenedit/internal/binding"
	"github.com/dshills/scenedit/internal/command"
	"github.com/dshills/scenedit/internal/input/key"
	"github.com/dshills/scenedit/internal/input/mouse"
)

// ParseKind converts a binding kind name such as "mouse_drag" to a Kind.
func ParseKind(name string) (binding.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "key":
		return binding.KindKey, nil
	case "mouse_click", "click":
		return binding.KindMouseClick, nil
	case "mouse_motion", "motion":
		return binding.KindMouseMotion, nil
	case "mouse_drag", "drag":
		return binding.KindMouseDrag, nil
	case "mouse_wheel", "wheel":
		return binding.KindMouseWheel, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
}

// Bind creates a binding from a textual trigger, as found in config files.
//
// Key triggers use the key.Parse syntax. The modifiers of the spec must
// match exactly unless the trigger starts with "*", and a trailing
// ":release" binds the release instead of the press. Click and drag
// triggers name a button ("left", "middle", "right"). Motion and wheel
// triggers are ignored.
func (d *Dispatcher) Bind(h command.Handle, kind binding.Kind, trigger string) (binding.ID, error) {
	if d.registry.Get(h) == nil {
		return 0, fmt.Errorf("%w: handle %d", ErrUnknownCommand, h)
	}
	switch kind {
	case binding.KindKey:
		ev, mods, err := parseKeyTrigger(trigger)
		if err != nil {
			return 0, err
		}
		return d.BindCommandToKey(h, ev, mods), nil
	case binding.KindMouseClick, binding.KindMouseDrag:
		button, err := mouse.ButtonFromName(trigger)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidTrigger, err)
		}
		if kind == binding.KindMouseClick {
			return d.BindCommandToMouseClick(h, button), nil
		}
		return d.BindCommandToMouseDrag(h, button), nil
	case binding.KindMouseMotion:
		return d.BindCommandToMouseMotion(h), nil
	case binding.KindMouseWheel:
		return d.BindCommandToMouseWheel(h), nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}

func parseKeyTrigger(trigger string) (key.Event, *key.Modifier, error) {
	spec := strings.TrimSpace(trigger)
	anyMods := strings.HasPrefix(spec, "*")
	spec = strings.TrimPrefix(spec, "*")

	release := false
	if base, ok := strings.CutSuffix(spec, ":release"); ok {
		spec, release = base, true
	}

	ev, err := key.Parse(spec)
	if err != nil {
		return key.Event{}, nil, fmt.Errorf("%w: %v", ErrInvalidTrigger, err)
	}
	ev.Pressed = !release

	if anyMods {
		return ev, nil, nil
	}
	mods := ev.Modifiers
	return ev, &mods, nil
}
