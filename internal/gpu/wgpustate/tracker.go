package wgpustate

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/dshills/scenedit/internal/gpu"
	"github.com/dshills/scenedit/internal/renderpass"
)

// PassEncoder is the dynamic-state subset of *wgpu.RenderPassEncoder.
type PassEncoder interface {
	SetStencilReference(reference uint32)
	SetBlendConstant(color *wgpu.Color)
	SetViewport(x, y, width, height, minDepth, maxDepth float32)
}

// DrawFunc submits a draw with the pipeline state already translated.
type DrawFunc func(key string, s State, dc gpu.DrawCall)

// Tracker is a gpu.StateTracker driving a WebGPU render pass. Translated
// states are cached by pass and shader; the cache is dropped on thread
// exit.
type Tracker struct {
	enc     PassEncoder
	formats Formats
	draw    DrawFunc

	width, height float32

	cache   map[string]State
	key     string
	current *State
	err     error
}

var _ gpu.StateTracker = (*Tracker)(nil)

// NewTracker returns a tracker for a width x height render pass. draw may
// be nil to translate state only.
func NewTracker(enc PassEncoder, f Formats, width, height int, draw DrawFunc) *Tracker {
	return &Tracker{
		enc:     enc,
		formats: f,
		draw:    draw,
		width:   float32(width),
		height:  float32(height),
		cache:   make(map[string]State),
	}
}

// Err returns the first translation error encountered.
func (t *Tracker) Err() error {
	return t.err
}

// Cached returns the number of cached pipeline states.
func (t *Tracker) Cached() int {
	return len(t.cache)
}

// Execute implements gpu.StateTracker.
func (t *Tracker) Execute(d renderpass.Descriptor) {
	key := d.Pass + "/" + d.Shader
	s, ok := t.cache[key]
	if !ok {
		var err error
		s, err = Translate(d.Pipeline, t.formats)
		if err != nil {
			if t.err == nil {
				t.err = err
			}
			t.current = nil
			return
		}
		t.cache[key] = s
	}
	// Overrides may change the blend constant per draw.
	if d.Pipeline.ColorBlend.Enabled {
		s.BlendConstant = BlendConstant(d.Pipeline.ColorBlend)
	}
	t.key = key
	t.current = &s
	t.enc.SetStencilReference(s.StencilReference)
	t.enc.SetBlendConstant(&s.BlendConstant)
}

// SetDepthRange implements gpu.StateTracker.
func (t *Tracker) SetDepthRange(near, far float32) {
	t.enc.SetViewport(0, 0, t.width, t.height, near, far)
}

// Reset implements gpu.StateTracker.
func (t *Tracker) Reset() {
	t.key = ""
	t.current = nil
}

// Clear implements gpu.StateTracker. WebGPU clears through render pass
// load operations, so this only resets dynamic state.
func (t *Tracker) Clear(gpu.ClearValues) {
	t.SetDepthRange(0, 1)
}

// Draw implements gpu.StateTracker.
func (t *Tracker) Draw(dc gpu.DrawCall) {
	if t.current == nil || t.draw == nil {
		return
	}
	t.draw(t.key, *t.current, dc)
}

// OnThreadExit implements gpu.StateTracker.
func (t *Tracker) OnThreadExit() {
	t.Reset()
	clear(t.cache)
}
