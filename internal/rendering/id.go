package rendering

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/dshills/scenedit/internal/gpu"
	"github.com/dshills/scenedit/internal/renderpass"
	"github.com/dshills/scenedit/internal/scene"
)

// ToolIDBit marks picking ids written for tool meshes.
const ToolIDBit uint32 = 1 << 31

// DecodeID splits a picked id into the mesh id and whether it belongs to
// a tool mesh. Id 0 is background.
func DecodeID(id uint32) (mesh uint32, tool bool) {
	return id &^ ToolIDBit, id&ToolIDBit != 0
}

// IDRenderer draws mesh ids into an off-screen target for picking.
type IDRenderer struct {
	frame uint64
	draws [FramesInFlight]int
}

var _ FrameAdvancer = (*IDRenderer)(nil)

// NewIDRenderer returns an id renderer.
func NewIDRenderer() *IDRenderer {
	return &IDRenderer{}
}

// NextFrame implements FrameAdvancer.
func (r *IDRenderer) NextFrame() {
	r.frame++
	r.draws[r.frame%FramesInFlight] = 0
}

// Draws returns the id draws submitted this frame.
func (r *IDRenderer) Draws() int {
	return r.draws[r.frame%FramesInFlight]
}

// Render clears t and writes the ids of sceneMeshes, then of toolMeshes
// tagged with ToolIDBit. fill must be a triangle pass.
func (r *IDRenderer) Render(t gpu.StateTracker, fill renderpass.Descriptor, clearDepth float32, viewProj mgl32.Mat4, sceneMeshes, toolMeshes []*scene.Mesh) {
	t.Clear(gpu.ClearValues{Depth: clearDepth})
	t.Execute(fill)
	draw := func(m *scene.Mesh, id uint32) {
		if id == 0 {
			return
		}
		t.Draw(gpu.DrawCall{
			Mesh:      m.Name,
			Primitive: renderpass.PrimitiveTriangles,
			Positions: m.Positions,
			Indices:   m.Triangles,
			MVP:       viewProj.Mul4(m.Transform),
			ID:        id,
		})
		r.draws[r.frame%FramesInFlight]++
	}
	for _, m := range sceneMeshes {
		draw(m, m.ID)
	}
	for _, m := range toolMeshes {
		if m.ID != 0 {
			draw(m, m.ID|ToolIDBit)
		}
	}
	t.Reset()
}
