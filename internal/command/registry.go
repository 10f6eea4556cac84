package command

// Handle is a stable reference to a command owned by a Registry.
// The zero Handle refers to no command.
type Handle uint32

// NoHandle is the zero Handle.
const NoHandle Handle = 0

// Transition describes a single state change. From may equal To when a
// transition was requested on a command already in the target state.
type Transition struct {
	Handle Handle
	Name   string
	From   State
	To     State
}

// Changed reports whether the transition altered the state.
func (t Transition) Changed() bool {
	return t.From != t.To
}

// Observer receives every transition performed through a Registry.
type Observer interface {
	OnTransition(t Transition)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(t Transition)

// OnTransition calls f(t).
func (f ObserverFunc) OnTransition(t Transition) {
	f(t)
}

// Registry owns commands for the session and performs all state
// transitions. Commands are never removed.
//
// Registry is not safe for concurrent use; input dispatch and rendering
// run on the main thread.
type Registry struct {
	commands  []*Command
	observers []Observer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register creates a command and returns its handle.
func (r *Registry) Register(name string, opts ...Option) Handle {
	c := &Command{name: name, state: Inactive}
	for _, opt := range opts {
		opt(c)
	}
	r.commands = append(r.commands, c)
	return Handle(len(r.commands))
}

// Get returns the command for h, or nil if h is unknown.
func (r *Registry) Get(h Handle) *Command {
	if h == NoHandle || int(h) > len(r.commands) {
		return nil
	}
	return r.commands[h-1]
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	return len(r.commands)
}

// Each calls fn for every command in registration order.
func (r *Registry) Each(fn func(h Handle, c *Command)) {
	for i, c := range r.commands {
		fn(Handle(i+1), c)
	}
}

// Subscribe adds an observer for all subsequent transitions.
func (r *Registry) Subscribe(o Observer) {
	r.observers = append(r.observers, o)
}

// State returns the state of h. Unknown handles report Disabled.
func (r *Registry) State(h Handle) State {
	c := r.Get(h)
	if c == nil {
		return Disabled
	}
	return c.state
}

// Name returns the name of h, or "" for unknown handles.
func (r *Registry) Name(h Handle) string {
	c := r.Get(h)
	if c == nil {
		return ""
	}
	return c.name
}

func (r *Registry) set(h Handle, to State) Transition {
	c := r.mustGet(h)
	t := Transition{Handle: h, Name: c.name, From: c.transition(to), To: to}
	for _, o := range r.observers {
		o.OnTransition(t)
	}
	return t
}

func (r *Registry) mustGet(h Handle) *Command {
	c := r.Get(h)
	if c == nil {
		panic("command: unknown handle")
	}
	return c
}

// SetInactive moves h to Inactive. Calling it on an Inactive command is
// a no-op apart from the reported transition.
func (r *Registry) SetInactive(h Handle) Transition {
	return r.set(h, Inactive)
}

// SetReady moves h to Ready.
func (r *Registry) SetReady(h Handle) Transition {
	return r.set(h, Ready)
}

// SetActive moves h to Active.
func (r *Registry) SetActive(h Handle) Transition {
	return r.set(h, Active)
}

// Disable moves h to Disabled. An Active command is first deactivated so
// no disabled command is left mid-interaction.
func (r *Registry) Disable(h Handle) []Transition {
	var ts []Transition
	if r.mustGet(h).state == Active {
		ts = append(ts, r.set(h, Inactive))
	}
	return append(ts, r.set(h, Disabled))
}

// Enable moves a Disabled command to Inactive. Enabled commands keep their
// state.
func (r *Registry) Enable(h Handle) Transition {
	c := r.mustGet(h)
	if c.state != Disabled {
		return r.set(h, c.state)
	}
	return r.set(h, Inactive)
}

// TryReady moves an Inactive command to Ready unless its ReadyFunc vetoes.
// It reports whether the command became Ready.
func (r *Registry) TryReady(h Handle, ctx Context) bool {
	c := r.mustGet(h)
	if c.state != Inactive {
		return false
	}
	if c.ready != nil && !c.ready(ctx) {
		return false
	}
	r.set(h, Ready)
	return true
}

// TryCall invokes the command's action and reports whether the event was
// consumed. Commands without an action consume nothing.
func (r *Registry) TryCall(h Handle, ctx Context) bool {
	c := r.mustGet(h)
	if c.call == nil {
		return false
	}
	return c.call(ctx)
}
