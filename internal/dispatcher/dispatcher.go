package dispatcher

import (
	"fmt"
	"slices"
	"sort"

	"github.com/dshills/scenedit/internal/binding"
	"github.com/dshills/scenedit/internal/command"
	"github.com/dshills/scenedit/internal/input/key"
	"github.com/dshills/scenedit/internal/input/mouse"
)

// Dispatcher routes input events to command bindings.
type Dispatcher struct {
	registry *command.Registry
	pointer  PointerContext

	keyBindings   []binding.Binding
	mouseBindings []binding.Binding

	// activeMouseCommand is the single command allowed to monopolize
	// mouse input. It is the only state shared across events.
	activeMouseCommand command.Handle

	guiWantsMouse bool

	config  Config
	metrics *Metrics
	hooks   []Hook
}

// New creates a dispatcher for commands owned by registry.
func New(config Config, registry *command.Registry, pointer PointerContext) *Dispatcher {
	if pointer == nil {
		pointer = NewPointer()
	}
	d := &Dispatcher{
		registry: registry,
		pointer:  pointer,
		config:   config,
	}
	if config.EnableMetrics {
		d.metrics = NewMetrics()
	}
	return d
}

// Commands implements binding.Host.
func (d *Dispatcher) Commands() *command.Registry {
	return d.registry
}

// Context implements binding.Host.
func (d *Dispatcher) Context() command.Context {
	return d.pointer
}

// AcceptMouseCommand implements binding.Host: h may receive mouse input
// when no command holds exclusivity or h is the holder.
func (d *Dispatcher) AcceptMouseCommand(h command.Handle) bool {
	return d.activeMouseCommand == command.NoHandle || d.activeMouseCommand == h
}

// ActiveMouseCommand returns the command holding mouse exclusivity.
func (d *Dispatcher) ActiveMouseCommand() command.Handle {
	return d.activeMouseCommand
}

// Metrics returns the metrics collector, or nil when disabled.
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

func (d *Dispatcher) checkHandle(h command.Handle) {
	if d.registry.Get(h) == nil {
		panic(fmt.Sprintf("dispatcher: binding references unknown command %d", h))
	}
}

func (d *Dispatcher) addKey(b binding.Binding) binding.ID {
	d.keyBindings = append(d.keyBindings, b)
	return b.ID
}

func (d *Dispatcher) addMouse(b binding.Binding) binding.ID {
	d.mouseBindings = append(d.mouseBindings, b)
	return b.ID
}

// BindCommandToKey binds h to a key trigger. When mods is non-nil the
// event modifiers must equal *mods.
func (d *Dispatcher) BindCommandToKey(h command.Handle, trigger key.Event, mods *key.Modifier) binding.ID {
	d.checkHandle(h)
	return d.addKey(binding.NewKey(h, trigger, mods))
}

// BindCommandToMouseClick binds h to a click of button.
func (d *Dispatcher) BindCommandToMouseClick(h command.Handle, button mouse.Button) binding.ID {
	d.checkHandle(h)
	return d.addMouse(binding.NewMouseClick(h, button))
}

// BindCommandToMouseMotion binds h to every pointer motion.
func (d *Dispatcher) BindCommandToMouseMotion(h command.Handle) binding.ID {
	d.checkHandle(h)
	return d.addMouse(binding.NewMouseMotion(h))
}

// BindCommandToMouseDrag binds h to a drag with button.
func (d *Dispatcher) BindCommandToMouseDrag(h command.Handle, button mouse.Button) binding.ID {
	d.checkHandle(h)
	return d.addMouse(binding.NewMouseDrag(h, button))
}

// BindCommandToMouseWheel binds h to wheel movement.
func (d *Dispatcher) BindCommandToMouseWheel(h command.Handle) binding.ID {
	d.checkHandle(h)
	return d.addMouse(binding.NewMouseWheel(h))
}

// RemoveCommandBinding removes the binding with the given id from either
// list. The bound command is unaffected. It must not be called while an
// event is being dispatched.
func (d *Dispatcher) RemoveCommandBinding(id binding.ID) bool {
	match := func(b binding.Binding) bool { return b.ID == id }
	nk, nm := len(d.keyBindings), len(d.mouseBindings)
	d.keyBindings = slices.DeleteFunc(d.keyBindings, match)
	d.mouseBindings = slices.DeleteFunc(d.mouseBindings, match)
	return nk != len(d.keyBindings) || nm != len(d.mouseBindings)
}

// KeyBindings returns a copy of the key bindings in scan order.
func (d *Dispatcher) KeyBindings() []binding.Binding {
	return slices.Clone(d.keyBindings)
}

// MouseBindings returns a copy of the mouse bindings in their current order.
func (d *Dispatcher) MouseBindings() []binding.Binding {
	return slices.Clone(d.mouseBindings)
}

// OnKey dispatches a key event and reports whether it was consumed.
func (d *Dispatcher) OnKey(ev key.Event) bool {
	for _, b := range d.keyBindings {
		out := binding.OnKey(b, d, ev)
		d.record(b, out)
		if out == binding.Consumed {
			return true
		}
	}
	return false
}

// OnMouseButton dispatches a button event and reports whether it was consumed.
func (d *Dispatcher) OnMouseButton(ev mouse.ButtonEvent) bool {
	return d.dispatchMouse(func(b binding.Binding) binding.Outcome {
		return binding.OnButton(b, d, ev)
	})
}

// OnMouseMove dispatches a motion event and reports whether it was consumed.
func (d *Dispatcher) OnMouseMove(ev mouse.MotionEvent) bool {
	d.pointer.Moved(ev)
	return d.dispatchMouse(func(b binding.Binding) binding.Outcome {
		return binding.OnMotion(b, d, ev)
	})
}

// OnMouseWheel dispatches a wheel event and reports whether it was consumed.
func (d *Dispatcher) OnMouseWheel(ev mouse.WheelEvent) bool {
	d.pointer.Scrolled(ev)
	return d.dispatchMouse(func(b binding.Binding) binding.Outcome {
		return binding.OnWheel(b, d, ev)
	})
}

func (d *Dispatcher) dispatchMouse(offer func(b binding.Binding) binding.Outcome) bool {
	d.releaseStaleMouseCommand()
	if d.dropForGUI() {
		return false
	}
	d.SortMouseBindings()
	for _, b := range d.mouseBindings {
		out := offer(b)
		if out != binding.Unmatched {
			d.updateActiveMouseCommand(b.Command)
		}
		d.record(b, out)
		if out == binding.Consumed {
			return true
		}
	}
	return false
}

// dropForGUI reports whether the GUI owns the current mouse event. An
// active mouse command always overrides GUI capture.
func (d *Dispatcher) dropForGUI() bool {
	if !d.guiWantsMouse || d.activeMouseCommand != command.NoHandle {
		return false
	}
	_, overViewport := d.pointer.HoveredViewport()
	return !overViewport
}

// SetGUIWantsMouse records whether the GUI layer wants mouse capture.
// Entering capture cancels primed (Ready) mouse commands.
func (d *Dispatcher) SetGUIWantsMouse(want bool) {
	entering := want && !d.guiWantsMouse
	d.guiWantsMouse = want
	if entering && d.config.RestoreGUICapture && d.activeMouseCommand == command.NoHandle {
		d.inactivateReadyCommands(command.NoHandle)
	}
}

// Priority ranks h for mouse dispatch; lower is scanned first.
func (d *Dispatcher) Priority(h command.Handle) int {
	if h != command.NoHandle && h == d.activeMouseCommand {
		return 0
	}
	switch d.registry.State(h) {
	case command.Active:
		return 1
	case command.Ready:
		return 2
	case command.Inactive:
		return 3
	default:
		return 4
	}
}

// SortMouseBindings stably orders mouse bindings by Priority.
func (d *Dispatcher) SortMouseBindings() {
	sort.SliceStable(d.mouseBindings, func(i, j int) bool {
		return d.Priority(d.mouseBindings[i].Command) < d.Priority(d.mouseBindings[j].Command)
	})
}

// updateActiveMouseCommand claims or releases the exclusivity slot after
// h's binding was evaluated.
func (d *Dispatcher) updateActiveMouseCommand(h command.Handle) {
	if d.registry.State(h) != command.Active {
		if d.activeMouseCommand == h {
			d.activeMouseCommand = command.NoHandle
		}
		return
	}
	if d.activeMouseCommand == h {
		return
	}
	if d.activeMouseCommand != command.NoHandle {
		panic(fmt.Sprintf("dispatcher: %q became active while %q holds the mouse",
			d.registry.Name(h), d.registry.Name(d.activeMouseCommand)))
	}
	d.inactivateReadyCommands(h)
	d.activeMouseCommand = h
}

// releaseStaleMouseCommand clears the slot when its holder was
// deactivated outside of mouse dispatch (e.g. disabled by a tool).
func (d *Dispatcher) releaseStaleMouseCommand() {
	if d.activeMouseCommand != command.NoHandle &&
		d.registry.State(d.activeMouseCommand) != command.Active {
		d.activeMouseCommand = command.NoHandle
	}
}

func (d *Dispatcher) inactivateReadyCommands(except command.Handle) {
	for _, b := range d.mouseBindings {
		if b.Command != except && d.registry.State(b.Command) == command.Ready {
			d.registry.SetInactive(b.Command)
		}
	}
}

// CancelMouseCommands forces every Ready or Active mouse command Inactive
// and clears the exclusivity slot. It is idempotent.
func (d *Dispatcher) CancelMouseCommands() {
	for _, b := range d.mouseBindings {
		switch d.registry.State(b.Command) {
		case command.Ready, command.Active:
			d.registry.SetInactive(b.Command)
		}
	}
	d.activeMouseCommand = command.NoHandle
}
