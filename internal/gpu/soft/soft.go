// Package soft is a software rasterizer implementing gpu.StateTracker.
//
// It covers the fixed-function state the editor passes rely on: face
// culling, depth test and write with depth range, two-sided stencil,
// constant and premultiplied blending, and color write masks. Triangles
// use a top-left fill rule so shared edges are drawn once. There is no
// clipping; primitives with a vertex behind the eye are dropped.
package soft

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/dshills/scenedit/internal/gpu"
	"github.com/dshills/scenedit/internal/renderpass"
)

// IDShader is the shader name that writes DrawCall.ID instead of color.
const IDShader = "id"

// Target is a framebuffer with color, depth, stencil and id planes.
type Target struct {
	width, height int

	color   []mgl32.Vec4
	depth   []float32
	stencil []uint8
	ids     []uint32
}

// NewTarget allocates a width x height framebuffer.
func NewTarget(width, height int) *Target {
	n := width * height
	return &Target{
		width:   width,
		height:  height,
		color:   make([]mgl32.Vec4, n),
		depth:   make([]float32, n),
		stencil: make([]uint8, n),
		ids:     make([]uint32, n),
	}
}

// Size returns the framebuffer dimensions.
func (t *Target) Size() (width, height int) {
	return t.width, t.height
}

func (t *Target) index(x, y int) int {
	return y*t.width + x
}

// Color returns the color at (x, y).
func (t *Target) Color(x, y int) mgl32.Vec4 { return t.color[t.index(x, y)] }

// Depth returns the depth at (x, y).
func (t *Target) Depth(x, y int) float32 { return t.depth[t.index(x, y)] }

// Stencil returns the stencil value at (x, y).
func (t *Target) Stencil(x, y int) uint8 { return t.stencil[t.index(x, y)] }

// ID returns the id written at (x, y), 0 if none.
func (t *Target) ID(x, y int) uint32 { return t.ids[t.index(x, y)] }

// Image converts the color plane to an RGBA image.
func (t *Target) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.width, t.height))
	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			c := t.color[t.index(x, y)]
			img.SetRGBA(x, y, color.RGBA{R: unorm8(c[0]), G: unorm8(c[1]), B: unorm8(c[2]), A: unorm8(c[3])})
		}
	}
	return img
}

func unorm8(v float32) uint8 {
	return uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5)
}

// Tracker rasterizes into a Target.
type Tracker struct {
	target *Target

	desc  renderpass.Descriptor
	bound bool
	near  float32
	far   float32
	stats gpu.Stats
}

var _ gpu.StateTracker = (*Tracker)(nil)

// NewTracker returns a tracker drawing into target.
func NewTracker(target *Target) *Tracker {
	return &Tracker{target: target, far: 1}
}

// Target returns the framebuffer.
func (s *Tracker) Target() *Target {
	return s.target
}

// Stats returns the work drawn so far.
func (s *Tracker) Stats() gpu.Stats {
	return s.stats
}

// Execute implements gpu.StateTracker.
func (s *Tracker) Execute(d renderpass.Descriptor) {
	s.desc = d
	s.bound = true
	s.stats.Passes++
}

// SetDepthRange implements gpu.StateTracker.
func (s *Tracker) SetDepthRange(near, far float32) {
	s.near, s.far = near, far
}

// Reset implements gpu.StateTracker.
func (s *Tracker) Reset() {
	s.desc = renderpass.Descriptor{}
	s.bound = false
}

// OnThreadExit implements gpu.StateTracker.
func (s *Tracker) OnThreadExit() {
	s.Reset()
}

// Clear implements gpu.StateTracker.
func (s *Tracker) Clear(c gpu.ClearValues) {
	t := s.target
	for i := range t.color {
		t.color[i] = c.Color
		t.depth[i] = c.Depth
		t.stencil[i] = c.Stencil
		t.ids[i] = 0
	}
}

type vertex struct {
	x, y, z float32
}

// Draw implements gpu.StateTracker. Draws without a bound pass are dropped.
func (s *Tracker) Draw(dc gpu.DrawCall) {
	if !s.bound {
		return
	}
	s.stats.Add(dc)

	n := len(dc.Indices)
	if dc.Indices == nil {
		n = len(dc.Positions)
	}
	at := func(i int) (vertex, bool) {
		j := i
		if dc.Indices != nil {
			j = int(dc.Indices[i])
		}
		return s.project(dc.MVP, dc.Positions[j])
	}

	switch dc.Primitive {
	case renderpass.PrimitiveTriangles:
		for i := 0; i+2 < n; i += 3 {
			v0, ok0 := at(i)
			v1, ok1 := at(i + 1)
			v2, ok2 := at(i + 2)
			if ok0 && ok1 && ok2 {
				s.triangle(v0, v1, v2, dc)
			}
		}
	case renderpass.PrimitiveLines:
		for i := 0; i+1 < n; i += 2 {
			v0, ok0 := at(i)
			v1, ok1 := at(i + 1)
			if ok0 && ok1 {
				s.line(v0, v1, dc)
			}
		}
	case renderpass.PrimitivePoints:
		for i := 0; i < n; i++ {
			if v, ok := at(i); ok {
				s.point(v, dc)
			}
		}
	}
}

// project maps an object-space position to window coordinates with the
// origin at the top left and depth mapped through the depth range.
func (s *Tracker) project(mvp mgl32.Mat4, p mgl32.Vec3) (vertex, bool) {
	clip := mvp.Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return vertex{}, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	w, h := float32(s.target.width), float32(s.target.height)
	z01 := (ndc.Z() + 1) * 0.5
	return vertex{
		x: (ndc.X() + 1) * 0.5 * w,
		y: (1 - ndc.Y()) * 0.5 * h,
		z: s.near + (s.far-s.near)*z01,
	}, true
}

func edge(a, b vertex, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// topLeft reports whether a->b is a top or left edge of a triangle with
// positive area in y-down window coordinates.
func topLeft(a, b vertex) bool {
	dx, dy := b.x-a.x, b.y-a.y
	return (dy == 0 && dx > 0) || dy < 0
}

func covers(w float32, tl bool) bool {
	return w > 0 || (w == 0 && tl)
}

func (s *Tracker) triangle(v0, v1, v2 vertex, dc gpu.DrawCall) {
	rast := s.desc.Pipeline.Rasterization
	area := edge(v0, v1, v2.x, v2.y)
	if area == 0 {
		return
	}
	// Window y points down, so counter-clockwise triangles in NDC have
	// negative area here.
	ccw := area < 0
	front := ccw == (rast.FrontFace == renderpass.FrontCCW)
	switch rast.Cull {
	case renderpass.CullBack:
		if !front {
			return
		}
	case renderpass.CullFront:
		if front {
			return
		}
	}
	if area < 0 {
		v1, v2 = v2, v1
		area = -area
	}

	t := s.target
	minX := clampInt(int(floor32(min3(v0.x, v1.x, v2.x))), 0, t.width-1)
	maxX := clampInt(int(ceil32(max3(v0.x, v1.x, v2.x))), 0, t.width-1)
	minY := clampInt(int(floor32(min3(v0.y, v1.y, v2.y))), 0, t.height-1)
	maxY := clampInt(int(ceil32(max3(v0.y, v1.y, v2.y))), 0, t.height-1)

	tl0, tl1, tl2 := topLeft(v1, v2), topLeft(v2, v0), topLeft(v0, v1)
	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			w0 := edge(v1, v2, px, py)
			w1 := edge(v2, v0, px, py)
			w2 := edge(v0, v1, px, py)
			if !covers(w0, tl0) || !covers(w1, tl1) || !covers(w2, tl2) {
				continue
			}
			z := (w0*v0.z + w1*v1.z + w2*v2.z) / area
			s.fragment(x, y, z, front, dc)
		}
	}
}

func (s *Tracker) line(v0, v1 vertex, dc gpu.DrawCall) {
	dx, dy := v1.x-v0.x, v1.y-v0.y
	steps := int(ceil32(max32(abs32(dx), abs32(dy))))
	if steps == 0 {
		s.point(v0, dc)
		return
	}
	for i := 0; i <= steps; i++ {
		f := float32(i) / float32(steps)
		x := int(floor32(v0.x + dx*f))
		y := int(floor32(v0.y + dy*f))
		if x < 0 || y < 0 || x >= s.target.width || y >= s.target.height {
			continue
		}
		s.fragment(x, y, v0.z+(v1.z-v0.z)*f, true, dc)
	}
}

func (s *Tracker) point(v vertex, dc gpu.DrawCall) {
	size := int(s.desc.Pipeline.Rasterization.PointSize)
	if size < 1 {
		size = 1
	}
	x0 := int(floor32(v.x)) - (size-1)/2
	y0 := int(floor32(v.y)) - (size-1)/2
	for y := y0; y < y0+size; y++ {
		for x := x0; x < x0+size; x++ {
			if x < 0 || y < 0 || x >= s.target.width || y >= s.target.height {
				continue
			}
			s.fragment(x, y, v.z, true, dc)
		}
	}
}

func (s *Tracker) fragment(x, y int, z float32, front bool, dc gpu.DrawCall) {
	t := s.target
	i := t.index(x, y)
	ds := s.desc.Pipeline.DepthStencil

	face := ds.Front
	if !front {
		face = ds.Back
	}
	if ds.StencilTest {
		ref := face.Reference & face.TestMask
		cur := t.stencil[i] & face.TestMask
		if !face.Compare.Test(float32(ref), float32(cur)) {
			s.writeStencil(i, face, face.FailOp)
			return
		}
	}
	if ds.DepthTest {
		if !ds.DepthCompare.Test(z, t.depth[i]) {
			if ds.StencilTest {
				s.writeStencil(i, face, face.DepthFailOp)
			}
			return
		}
	}
	if ds.StencilTest {
		s.writeStencil(i, face, face.PassOp)
	}
	if ds.DepthTest && ds.DepthWrite {
		t.depth[i] = z
	}

	if s.desc.Shader == IDShader {
		t.ids[i] = dc.ID
		return
	}
	cb := s.desc.Pipeline.ColorBlend
	if cb.WriteMask == renderpass.ColorWriteNone {
		return
	}
	src := dc.Color
	out := src
	if cb.Enabled {
		out = blend(cb, src, t.color[i])
	}
	dst := t.color[i]
	for c := 0; c < 4; c++ {
		if cb.WriteMask&(1<<c) != 0 {
			dst[c] = out[c]
		}
	}
	t.color[i] = dst
}

func (s *Tracker) writeStencil(i int, face renderpass.StencilFace, op renderpass.StencilOp) {
	old := s.target.stencil[i]
	v := op.Apply(old, face.Reference)
	s.target.stencil[i] = (old &^ face.WriteMask) | (v & face.WriteMask)
}

func blend(cb renderpass.ColorBlend, src, dst mgl32.Vec4) mgl32.Vec4 {
	k := mgl32.Vec4(cb.Constant)
	fs := factor(cb.Color.Src, src, dst, k)
	fd := factor(cb.Color.Dst, src, dst, k)
	as := factor(cb.Alpha.Src, src, dst, k)
	ad := factor(cb.Alpha.Dst, src, dst, k)

	var out mgl32.Vec4
	for c := 0; c < 3; c++ {
		out[c] = equation(cb.Color.Op, src[c]*fs[c], dst[c]*fd[c])
	}
	out[3] = equation(cb.Alpha.Op, src[3]*as[3], dst[3]*ad[3])
	return out
}

func factor(f renderpass.BlendFactor, src, dst, k mgl32.Vec4) mgl32.Vec4 {
	splat := func(v float32) mgl32.Vec4 { return mgl32.Vec4{v, v, v, v} }
	one := splat(1)
	switch f {
	case renderpass.BlendZero:
		return mgl32.Vec4{}
	case renderpass.BlendOne:
		return one
	case renderpass.BlendSrcAlpha:
		return splat(src[3])
	case renderpass.BlendOneMinusSrcAlpha:
		return splat(1 - src[3])
	case renderpass.BlendDstAlpha:
		return splat(dst[3])
	case renderpass.BlendOneMinusDstAlpha:
		return splat(1 - dst[3])
	case renderpass.BlendConstantColor:
		return k
	case renderpass.BlendOneMinusConstantColor:
		return one.Sub(k)
	case renderpass.BlendConstantAlpha:
		return splat(k[3])
	case renderpass.BlendOneMinusConstantAlpha:
		return splat(1 - k[3])
	default:
		return one
	}
}

func equation(op renderpass.BlendOp, s, d float32) float32 {
	switch op {
	case renderpass.BlendSubtract:
		return s - d
	case renderpass.BlendReverseSubtract:
		return d - s
	case renderpass.BlendMin:
		return min(s, d)
	case renderpass.BlendMax:
		return max(s, d)
	default:
		return s + d
	}
}

func floor32(v float32) float32 { return float32(math.Floor(float64(v))) }
func ceil32(v float32) float32 { return float32(math.Ceil(float64(v))) }
func abs32(v float32) float32 { return float32(math.Abs(float64(v))) }
func max32(a, b float32) float32 { return max(a, b) }
func min3(a, b, c float32) float32 { return min(a, b, c) }
func max3(a, b, c float32) float32 { return max(a, b, c) }

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
