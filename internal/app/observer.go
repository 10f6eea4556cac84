package app

import (
	"github.com/dshills/scenedit/internal/binding"
	"github.com/dshills/scenedit/internal/command"
	"github.com/dshills/scenedit/internal/dispatcher"
)

// transitionLogger logs every command transition at debug level,
// including requests that leave the state unchanged.
func transitionLogger(log *Logger) command.Observer {
	return command.ObserverFunc(func(t command.Transition) {
		if !t.Changed() {
			log.WithField("noop", true).Debug("command=%s state=%s", t.Name, t.To)
			return
		}
		log.Debug("command=%s state=%s from=%s", t.Name, t.To, t.From)
	})
}

// outcomeLogger logs bindings that matched an event but did not run
// their command.
func outcomeLogger(log *Logger) dispatcher.Hook {
	return dispatcher.HookFunc(func(b binding.Binding, name string, out binding.Outcome) {
		switch out {
		case binding.Filtered, binding.Rejected:
			log.Debug("%s command=%s binding=%s", out, name, b)
		}
	})
}
