package rendering

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/dshills/scenedit/internal/gpu"
	"github.com/dshills/scenedit/internal/renderpass"
	"github.com/dshills/scenedit/internal/scene"
)

// Line is an immediate-mode world-space line.
type Line struct {
	From, To mgl32.Vec3
	Color    mgl32.Vec4
}

// LineRenderer collects lines added during a frame and draws them after
// the scene passes.
type LineRenderer struct {
	frames  [FramesInFlight][]Line
	current int
}

var _ FrameAdvancer = (*LineRenderer)(nil)

// NewLineRenderer returns an empty line renderer.
func NewLineRenderer() *LineRenderer {
	return &LineRenderer{}
}

// AddLine queues a line for the current frame.
func (r *LineRenderer) AddLine(from, to mgl32.Vec3, color mgl32.Vec4) {
	r.frames[r.current] = append(r.frames[r.current], Line{From: from, To: to, Color: color})
}

// Lines returns the lines queued this frame.
func (r *LineRenderer) Lines() []Line {
	return r.frames[r.current]
}

// NextFrame implements FrameAdvancer.
func (r *LineRenderer) NextFrame() {
	r.current = (r.current + 1) % FramesInFlight
	r.frames[r.current] = r.frames[r.current][:0]
}

// Render draws the queued lines through d, one draw per color.
func (r *LineRenderer) Render(t gpu.StateTracker, d renderpass.Descriptor, viewProj mgl32.Mat4) {
	lines := r.frames[r.current]
	if len(lines) == 0 {
		return
	}
	t.Execute(d)
	var order []mgl32.Vec4
	batches := make(map[mgl32.Vec4][]mgl32.Vec3)
	for _, l := range lines {
		if _, ok := batches[l.Color]; !ok {
			order = append(order, l.Color)
		}
		batches[l.Color] = append(batches[l.Color], l.From, l.To)
	}
	for _, c := range order {
		t.Draw(gpu.DrawCall{
			Mesh:      "lines",
			Primitive: renderpass.PrimitiveLines,
			Positions: batches[c],
			MVP:       viewProj,
			Color:     c,
		})
	}
}

// Label is a world-anchored text label.
type Label struct {
	Position mgl32.Vec3
	Text     string
	Color    mgl32.Vec4
}

// PlacedLabel is a label projected into a viewport, in pixels from the
// top left.
type PlacedLabel struct {
	Viewport string
	X, Y     int
	Text     string
	Color    mgl32.Vec4
}

// TextRenderer projects labels into viewports. The placed labels are the
// text overlay a front end draws over the color target.
type TextRenderer struct {
	labels  [FramesInFlight][]Label
	placed  [FramesInFlight][]PlacedLabel
	current int
}

var _ FrameAdvancer = (*TextRenderer)(nil)

// NewTextRenderer returns an empty text renderer.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

// AddLabel queues a label for the current frame.
func (r *TextRenderer) AddLabel(pos mgl32.Vec3, text string, color mgl32.Vec4) {
	r.labels[r.current] = append(r.labels[r.current], Label{Position: pos, Text: text, Color: color})
}

// Overlay returns the labels placed this frame.
func (r *TextRenderer) Overlay() []PlacedLabel {
	return r.placed[r.current]
}

// NextFrame implements FrameAdvancer.
func (r *TextRenderer) NextFrame() {
	r.current = (r.current + 1) % FramesInFlight
	r.labels[r.current] = r.labels[r.current][:0]
	r.placed[r.current] = r.placed[r.current][:0]
}

// Render places the queued labels that are in front of the camera and
// inside vp.
func (r *TextRenderer) Render(vp *scene.Viewport, viewProj mgl32.Mat4) {
	for _, l := range r.labels[r.current] {
		clip := viewProj.Mul4x1(l.Position.Vec4(1))
		if clip.W() <= 0 {
			continue
		}
		ndc := clip.Vec3().Mul(1 / clip.W())
		if ndc.X() < -1 || ndc.X() > 1 || ndc.Y() < -1 || ndc.Y() > 1 {
			continue
		}
		x := int((ndc.X() + 1) * 0.5 * float32(vp.Width))
		y := int((1 - ndc.Y()) * 0.5 * float32(vp.Height))
		r.placed[r.current] = append(r.placed[r.current], PlacedLabel{
			Viewport: vp.Name,
			X:        min(x, vp.Width-1),
			Y:        min(y, vp.Height-1),
			Text:     l.Text,
			Color:    l.Color,
		})
	}
}
