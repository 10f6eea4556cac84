package dispatcher

import (
	"github.com/dshills/scenedit/internal/binding"
)

// Hook observes the outcome of every binding evaluation. Hooks run
// synchronously inside dispatch and must not add or remove bindings.
type Hook interface {
	OnOutcome(b binding.Binding, name string, out binding.Outcome)
}

// HookFunc is a function adapter for Hook.
type HookFunc func(b binding.Binding, name string, out binding.Outcome)

// OnOutcome implements Hook.
func (f HookFunc) OnOutcome(b binding.Binding, name string, out binding.Outcome) {
	f(b, name, out)
}

// AddHook registers a hook.
func (d *Dispatcher) AddHook(h Hook) {
	d.hooks = append(d.hooks, h)
}

// record reports an outcome to metrics and hooks. Unmatched bindings are
// not reported.
func (d *Dispatcher) record(b binding.Binding, out binding.Outcome) {
	if out == binding.Unmatched {
		return
	}
	name := d.registry.Name(b.Command)
	if d.metrics != nil {
		d.metrics.Record(name, out)
	}
	for _, h := range d.hooks {
		h.OnOutcome(b, name, out)
	}
}
