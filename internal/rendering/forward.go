package rendering

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/dshills/scenedit/internal/gpu"
	"github.com/dshills/scenedit/internal/renderpass"
	"github.com/dshills/scenedit/internal/scene"
)

// FrameAdvancer is implemented by renderers holding per-frame buffers.
type FrameAdvancer interface {
	// NextFrame moves to the next buffer set. Buffers of the previous
	// frame stay untouched until the ring wraps.
	NextFrame()
}

// FramesInFlight is the depth of every per-frame buffer ring.
const FramesInFlight = 2

// Mode selects which mesh data a forward pass submits.
type Mode uint8

const (
	ModeTriangles Mode = iota
	ModeEdges
	ModeCentroids
	ModeCorners
)

func (m Mode) primitive() renderpass.Primitive {
	switch m {
	case ModeEdges:
		return renderpass.PrimitiveLines
	case ModeCentroids, ModeCorners:
		return renderpass.PrimitivePoints
	default:
		return renderpass.PrimitiveTriangles
	}
}

// ForwardRenderer turns meshes into draw calls.
type ForwardRenderer struct {
	frames   [FramesInFlight][]gpu.DrawCall
	current  int
	frame    uint64
	lighting scene.Lighting
}

var _ FrameAdvancer = (*ForwardRenderer)(nil)

// NewForwardRenderer returns a forward renderer at frame 0.
func NewForwardRenderer() *ForwardRenderer {
	return &ForwardRenderer{}
}

// NextFrame implements FrameAdvancer.
func (r *ForwardRenderer) NextFrame() {
	r.frame++
	r.current = int(r.frame % FramesInFlight)
	r.frames[r.current] = r.frames[r.current][:0]
}

// Frame returns the number of completed frames.
func (r *ForwardRenderer) Frame() uint64 {
	return r.frame
}

// Submitted returns the draw calls of the current frame.
func (r *ForwardRenderer) Submitted() []gpu.DrawCall {
	return r.frames[r.current]
}

// SetLighting sets the lights used to shade filled triangles.
func (r *ForwardRenderer) SetLighting(l scene.Lighting) {
	r.lighting = l
}

// Draw submits meshes through the pass in d. A non-nil color replaces the
// mesh colors; shaded output is only produced for mesh colors.
func (r *ForwardRenderer) Draw(t gpu.StateTracker, d renderpass.Descriptor, viewProj mgl32.Mat4, meshes []*scene.Mesh, mode Mode, color *mgl32.Vec4) {
	if len(meshes) == 0 {
		return
	}
	t.Execute(d)
	for _, m := range meshes {
		dc := gpu.DrawCall{
			Mesh:      m.Name,
			Primitive: mode.primitive(),
			Positions: m.Positions,
			MVP:       viewProj.Mul4(m.Transform),
			Color:     m.Color,
			ID:        m.ID,
		}
		if color != nil {
			dc.Color = *color
		}
		switch mode {
		case ModeTriangles:
			dc.Indices = m.Triangles
			if color == nil && len(r.lighting.Lights) > 0 {
				for _, part := range r.shade(m, dc) {
					r.submit(t, part)
				}
				continue
			}
		case ModeEdges:
			dc.Indices = m.EdgeIndices()
		case ModeCentroids:
			dc.Positions = m.Centroids()
		}
		r.submit(t, dc)
	}
}

func (r *ForwardRenderer) submit(t gpu.StateTracker, dc gpu.DrawCall) {
	r.frames[r.current] = append(r.frames[r.current], dc)
	t.Draw(dc)
}

// shade splits the triangles of m into one draw per face normal so each
// face gets a flat lit color.
func (r *ForwardRenderer) shade(m *scene.Mesh, dc gpu.DrawCall) []gpu.DrawCall {
	type group struct {
		normal  mgl32.Vec3
		indices []uint32
	}
	var groups []*group
	normalOf := m.Transform.Mat3()
	for i := 0; i+2 < len(m.Triangles); i += 3 {
		a := m.Positions[m.Triangles[i]]
		b := m.Positions[m.Triangles[i+1]]
		c := m.Positions[m.Triangles[i+2]]
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Len() == 0 {
			continue
		}
		n = normalOf.Mul3x1(n).Normalize()
		var g *group
		for _, existing := range groups {
			if existing.normal.ApproxEqual(n) {
				g = existing
				break
			}
		}
		if g == nil {
			g = &group{normal: n}
			groups = append(groups, g)
		}
		g.indices = append(g.indices, m.Triangles[i:i+3]...)
	}

	out := make([]gpu.DrawCall, 0, len(groups))
	for _, g := range groups {
		part := dc
		part.Indices = g.indices
		part.Color = r.lighting.Shade(m.Color, g.normal)
		out = append(out, part)
	}
	return out
}
