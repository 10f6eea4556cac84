package gpu

import (
	"github.com/dshills/scenedit/internal/renderpass"
)

// Op identifies a recorded tracker call.
type Op uint8

const (
	OpExecute Op = iota
	OpDepthRange
	OpReset
	OpClear
	OpDraw
	OpThreadExit
)

var opNames = [...]string{
	OpExecute:    "execute",
	OpDepthRange: "depth_range",
	OpReset:      "reset",
	OpClear:      "clear",
	OpDraw:       "draw",
	OpThreadExit: "thread_exit",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "unknown"
}

// Command is one recorded tracker call. Only the fields relevant to Op
// are set; Pass is the pass active when the call was made.
type Command struct {
	Op     Op      `json:"op"`
	Pass   string  `json:"pass,omitempty"`
	Shader string  `json:"shader,omitempty"`
	Near   float32 `json:"near,omitempty"`
	Far    float32 `json:"far,omitempty"`
	Mesh   string  `json:"mesh,omitempty"`
	Count  int     `json:"count,omitempty"`

	Pipeline *renderpass.Pipeline `json:"-"`
	Clear    *ClearValues         `json:"-"`
}

// Recorder is a StateTracker that records every call and optionally
// forwards it to another tracker.
type Recorder struct {
	next     StateTracker
	pass     string
	commands []Command
	stats    Stats
}

// NewRecorder returns a recorder forwarding to next, which may be nil.
func NewRecorder(next StateTracker) *Recorder {
	return &Recorder{next: next}
}

// Execute implements StateTracker.
func (r *Recorder) Execute(d renderpass.Descriptor) {
	r.pass = d.Pass
	p := d.Pipeline
	r.commands = append(r.commands, Command{Op: OpExecute, Pass: d.Pass, Shader: d.Shader, Pipeline: &p})
	r.stats.Passes++
	if r.next != nil {
		r.next.Execute(d)
	}
}

// SetDepthRange implements StateTracker.
func (r *Recorder) SetDepthRange(near, far float32) {
	r.commands = append(r.commands, Command{Op: OpDepthRange, Pass: r.pass, Near: near, Far: far})
	if r.next != nil {
		r.next.SetDepthRange(near, far)
	}
}

// Reset implements StateTracker.
func (r *Recorder) Reset() {
	r.commands = append(r.commands, Command{Op: OpReset})
	r.pass = ""
	if r.next != nil {
		r.next.Reset()
	}
}

// Clear implements StateTracker.
func (r *Recorder) Clear(c ClearValues) {
	r.commands = append(r.commands, Command{Op: OpClear, Clear: &c})
	if r.next != nil {
		r.next.Clear(c)
	}
}

// Draw implements StateTracker.
func (r *Recorder) Draw(dc DrawCall) {
	r.commands = append(r.commands, Command{Op: OpDraw, Pass: r.pass, Mesh: dc.Mesh, Count: dc.Count()})
	r.stats.Add(dc)
	if r.next != nil {
		r.next.Draw(dc)
	}
}

// OnThreadExit implements StateTracker.
func (r *Recorder) OnThreadExit() {
	r.commands = append(r.commands, Command{Op: OpThreadExit})
	r.pass = ""
	if r.next != nil {
		r.next.OnThreadExit()
	}
}

// Commands returns the recorded calls.
func (r *Recorder) Commands() []Command {
	return r.commands
}

// Stats returns accumulated statistics.
func (r *Recorder) Stats() Stats {
	return r.stats
}

// DrawnPasses returns the pass of every draw call in submission order,
// collapsing consecutive draws of the same pass.
func (r *Recorder) DrawnPasses() []string {
	var passes []string
	for _, c := range r.commands {
		if c.Op != OpDraw {
			continue
		}
		if n := len(passes); n > 0 && passes[n-1] == c.Pass {
			continue
		}
		passes = append(passes, c.Pass)
	}
	return passes
}

// Truncate discards recorded calls and statistics.
func (r *Recorder) Truncate() {
	r.commands = r.commands[:0]
	r.stats = Stats{}
}
