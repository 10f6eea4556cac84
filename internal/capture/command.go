package capture

import (
	"sync/atomic"

	"github.com/dshills/scenedit/internal/binding"
	"github.com/dshills/scenedit/internal/command"
	"github.com/dshills/scenedit/internal/dispatcher"
)

// CommandName is the name of the capture command.
const CommandName = "capture_frame"

// DefaultKey triggers the capture command unless configured otherwise.
const DefaultKey = "F12"

// Trigger carries a capture request from the capture command to the next
// BeginFrame.
type Trigger struct {
	requested atomic.Bool
}

// Request asks for the next frame to be captured.
func (t *Trigger) Request() {
	t.requested.Store(true)
}

// Pending reports whether a capture was requested.
func (t *Trigger) Pending() bool {
	return t.requested.Load()
}

// Take clears and returns the pending request.
func (t *Trigger) Take() bool {
	return t.requested.Swap(false)
}

// Call is the command's action. It always consumes the key.
func (t *Trigger) Call(command.Context) bool {
	t.Request()
	return true
}

// RegisterFrameCommand registers the capture command and binds it to
// keySpec, or DefaultKey when keySpec is empty.
func RegisterFrameCommand(d *dispatcher.Dispatcher, t *Trigger, keySpec string) (command.Handle, binding.ID, error) {
	if keySpec == "" {
		keySpec = DefaultKey
	}
	h := d.Commands().Register(CommandName, command.WithCall(t.Call))
	id, err := d.Bind(h, binding.KindKey, keySpec)
	if err != nil {
		return h, 0, err
	}
	return h, id, nil
}
