// Package gpu defines the state tracker the renderer drives and a
// recording implementation of it.
//
// A StateTracker programs the underlying graphics API from a
// renderpass.Pipeline before each draw. Implementations cache state and
// may skip redundant work, so code that switches graphics contexts must
// call OnThreadExit to drop that cache.
package gpu

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/dshills/scenedit/internal/renderpass"
)

// StateTracker programs pipeline state and issues draws.
type StateTracker interface {
	// Execute programs shader selection, rasterizer, depth/stencil and
	// blend state, including stencil references and the blend constant.
	Execute(d renderpass.Descriptor)

	// SetDepthRange maps NDC depth to [near, far] window depth.
	SetDepthRange(near, far float32)

	// Reset disables shader stages and returns to default state between
	// logical groups of draws.
	Reset()

	// Clear clears the bound framebuffer.
	Clear(c ClearValues)

	// Draw submits one draw call using the current state.
	Draw(dc DrawCall)

	// OnThreadExit invalidates cached state before the current context
	// is released by its thread.
	OnThreadExit()
}

// ClearValues are the framebuffer clear values.
type ClearValues struct {
	Color   mgl32.Vec4
	Depth   float32
	Stencil uint8
}

// DrawCall is one mesh submission.
type DrawCall struct {
	// Mesh names the submitted mesh for captures and logs.
	Mesh string

	Primitive renderpass.Primitive

	// Positions are object-space vertices. Indices select from Positions
	// in groups of 3 (triangles), 2 (lines) or 1 (points); nil Indices
	// draw Positions in order.
	Positions []mgl32.Vec3
	Indices   []uint32

	// MVP transforms object space to clip space.
	MVP mgl32.Mat4

	// Color is the flat fragment color.
	Color mgl32.Vec4

	// ID is written by id-renderer passes for picking.
	ID uint32
}

// Count returns the number of primitives drawn.
func (dc DrawCall) Count() int {
	n := len(dc.Indices)
	if dc.Indices == nil {
		n = len(dc.Positions)
	}
	switch dc.Primitive {
	case renderpass.PrimitiveTriangles:
		return n / 3
	case renderpass.PrimitiveLines:
		return n / 2
	default:
		return n
	}
}

// Stats summarizes the work submitted to a tracker.
type Stats struct {
	Passes    int
	DrawCalls int
	Points    int
	Lines     int
	Triangles int
}

// Add accounts for one draw call.
func (s *Stats) Add(dc DrawCall) {
	s.DrawCalls++
	switch dc.Primitive {
	case renderpass.PrimitiveTriangles:
		s.Triangles += dc.Count()
	case renderpass.PrimitiveLines:
		s.Lines += dc.Count()
	default:
		s.Points += dc.Count()
	}
}

// Merge adds o to s.
func (s *Stats) Merge(o Stats) {
	s.Passes += o.Passes
	s.DrawCalls += o.DrawCalls
	s.Points += o.Points
	s.Lines += o.Lines
	s.Triangles += o.Triangles
}

func (s Stats) String() string {
	return fmt.Sprintf("%d passes, %d draw calls: %d points, %d lines, %d tris",
		s.Passes, s.DrawCalls, s.Points, s.Lines, s.Triangles)
}
