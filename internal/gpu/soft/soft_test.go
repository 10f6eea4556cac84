package soft_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/dshills/scenedit/internal/gpu"
	"github.com/dshills/scenedit/internal/gpu/soft"
	"github.com/dshills/scenedit/internal/renderpass"
)

const size = 8

// quad covers the whole viewport at NDC depth z with two CCW triangles.
func quad(z float32, color mgl32.Vec4) gpu.DrawCall {
	return gpu.DrawCall{
		Mesh:      "quad",
		Primitive: renderpass.PrimitiveTriangles,
		Positions: []mgl32.Vec3{{-1, -1, z}, {1, -1, z}, {1, 1, z}, {-1, 1, z}},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
		MVP:       mgl32.Ident4(),
		Color:     color,
	}
}

func pass(p renderpass.Pipeline) renderpass.Descriptor {
	return renderpass.Descriptor{Pass: "test", Shader: "test", Pipeline: p}
}

func newTracker() (*soft.Tracker, *soft.Target) {
	target := soft.NewTarget(size, size)
	tr := soft.NewTracker(target)
	tr.Clear(gpu.ClearValues{Depth: 1})
	return tr, target
}

func eachPixel(fn func(x, y int)) {
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fn(x, y)
		}
	}
}

func TestSharedEdgeDrawnOnce(t *testing.T) {
	tr, target := newTracker()
	tr.Execute(pass(renderpass.Pipeline{
		ColorBlend: renderpass.ColorBlend{
			Enabled:   true,
			Color:     renderpass.BlendComponent{Src: renderpass.BlendOne, Dst: renderpass.BlendOne},
			Alpha:     renderpass.BlendComponent{Src: renderpass.BlendOne, Dst: renderpass.BlendOne},
			WriteMask: renderpass.ColorWriteAll,
		},
	}))
	tr.Draw(quad(0, mgl32.Vec4{0.25, 0.25, 0.25, 0.25}))

	eachPixel(func(x, y int) {
		if got := target.Color(x, y)[0]; got != 0.25 {
			t.Errorf("pixel (%d,%d) = %v, want 0.25", x, y, got)
		}
	})
}

func TestDrawWithoutPassDropped(t *testing.T) {
	tr, target := newTracker()
	tr.Draw(quad(0, mgl32.Vec4{1, 1, 1, 1}))
	if target.Color(0, 0) != (mgl32.Vec4{}) {
		t.Error("draw without an executed pass should be dropped")
	}

	tr.Execute(pass(renderpass.Pipeline{ColorBlend: renderpass.ColorBlend{WriteMask: renderpass.ColorWriteAll}}))
	tr.OnThreadExit()
	tr.Draw(quad(0, mgl32.Vec4{1, 1, 1, 1}))
	if target.Color(0, 0) != (mgl32.Vec4{}) {
		t.Error("thread exit should drop cached pass state")
	}
}

func TestDepthTest(t *testing.T) {
	tr, target := newTracker()
	tr.Execute(pass(renderpass.Pipeline{
		DepthStencil: renderpass.DepthStencil{DepthTest: true, DepthWrite: true, DepthCompare: renderpass.CompareLess},
		ColorBlend:   renderpass.ColorBlend{WriteMask: renderpass.ColorWriteAll},
	}))
	red := mgl32.Vec4{1, 0, 0, 1}
	green := mgl32.Vec4{0, 1, 0, 1}
	tr.Draw(quad(0, red))
	tr.Draw(quad(0.5, green))

	if got := target.Color(3, 3); got != red {
		t.Errorf("farther quad overwrote nearer one: %v", got)
	}
	if got := target.Depth(3, 3); got != 0.5 {
		t.Errorf("depth = %v, want 0.5", got)
	}
}

func TestDepthRange(t *testing.T) {
	tr, target := newTracker()
	tr.Execute(pass(renderpass.Pipeline{
		DepthStencil: renderpass.DepthStencil{DepthTest: true, DepthWrite: true, DepthCompare: renderpass.CompareAlways},
	}))
	tr.SetDepthRange(0, 0)
	tr.Draw(quad(0.5, mgl32.Vec4{}))
	if got := target.Depth(1, 1); got != 0 {
		t.Errorf("depth = %v, want 0", got)
	}
}

func TestCulling(t *testing.T) {
	cw := quad(0, mgl32.Vec4{1, 1, 1, 1})
	cw.Indices = []uint32{0, 2, 1, 0, 3, 2}

	tests := []struct {
		name  string
		cull  renderpass.CullMode
		dc    gpu.DrawCall
		drawn bool
	}{
		{"ccw cull back", renderpass.CullBack, quad(0, mgl32.Vec4{1, 1, 1, 1}), true},
		{"ccw cull front", renderpass.CullFront, quad(0, mgl32.Vec4{1, 1, 1, 1}), false},
		{"cw cull back", renderpass.CullBack, cw, false},
		{"cw cull front", renderpass.CullFront, cw, true},
		{"cw cull none", renderpass.CullNone, cw, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, target := newTracker()
			tr.Execute(pass(renderpass.Pipeline{
				Rasterization: renderpass.Rasterization{Cull: tt.cull},
				ColorBlend:    renderpass.ColorBlend{WriteMask: renderpass.ColorWriteAll},
			}))
			tr.Draw(tt.dc)
			if drawn := target.Color(4, 4)[0] == 1; drawn != tt.drawn {
				t.Errorf("drawn = %v, want %v", drawn, tt.drawn)
			}
		})
	}
}

func TestStencilOps(t *testing.T) {
	tr, target := newTracker()
	write := renderpass.StencilFace{
		Compare: renderpass.CompareAlways, PassOp: renderpass.StencilReplace,
		Reference: 3, TestMask: 0xff, WriteMask: 0xff,
	}
	tr.Execute(pass(renderpass.Pipeline{
		DepthStencil: renderpass.DepthStencil{StencilTest: true, Front: write, Back: write},
	}))
	tr.Draw(quad(0, mgl32.Vec4{}))
	if got := target.Stencil(2, 2); got != 3 {
		t.Fatalf("stencil = %d, want 3", got)
	}

	require := renderpass.StencilFace{
		Compare: renderpass.CompareEqual, Reference: 4, TestMask: 0xff, WriteMask: 0xff,
		FailOp: renderpass.StencilIncrement,
	}
	tr.Execute(pass(renderpass.Pipeline{
		DepthStencil: renderpass.DepthStencil{StencilTest: true, Front: require, Back: require},
		ColorBlend:   renderpass.ColorBlend{WriteMask: renderpass.ColorWriteAll},
	}))
	tr.Draw(quad(0, mgl32.Vec4{1, 1, 1, 1}))
	if got := target.Color(2, 2); got != (mgl32.Vec4{}) {
		t.Errorf("stencil-failed fragment wrote color %v", got)
	}
	if got := target.Stencil(2, 2); got != 4 {
		t.Errorf("fail op: stencil = %d, want 4", got)
	}
}

func TestStencilWriteMask(t *testing.T) {
	tr, target := newTracker()
	tr.Clear(gpu.ClearValues{Depth: 1, Stencil: 0xf0})
	face := renderpass.StencilFace{
		Compare: renderpass.CompareAlways, PassOp: renderpass.StencilReplace,
		Reference: 0x0f, TestMask: 0xff, WriteMask: 0x03,
	}
	tr.Execute(pass(renderpass.Pipeline{
		DepthStencil: renderpass.DepthStencil{StencilTest: true, Front: face, Back: face},
	}))
	tr.Draw(quad(0, mgl32.Vec4{}))
	if got := target.Stencil(0, 0); got != 0xf3 {
		t.Errorf("stencil = %#x, want 0xf3", got)
	}
}

func TestConstantAlphaBlend(t *testing.T) {
	tr, target := newTracker()
	tr.Clear(gpu.ClearValues{Color: mgl32.Vec4{0, 0, 1, 1}, Depth: 1})
	tr.Execute(pass(renderpass.Pipeline{
		ColorBlend: renderpass.ColorBlend{
			Enabled:   true,
			Color:     renderpass.BlendComponent{Src: renderpass.BlendConstantAlpha, Dst: renderpass.BlendOneMinusConstantAlpha},
			Alpha:     renderpass.BlendComponent{Src: renderpass.BlendConstantAlpha, Dst: renderpass.BlendOneMinusConstantAlpha},
			Constant:  [4]float32{0, 0, 0, 0.5},
			WriteMask: renderpass.ColorWriteAll,
		},
	}))
	tr.Draw(quad(0, mgl32.Vec4{1, 0, 0, 1}))
	got := target.Color(5, 5)
	want := mgl32.Vec4{0.5, 0, 0.5, 1}
	if !got.ApproxEqual(want) {
		t.Errorf("color = %v, want %v", got, want)
	}
}

func TestColorWriteMask(t *testing.T) {
	tr, target := newTracker()
	tr.Execute(pass(renderpass.Pipeline{
		ColorBlend: renderpass.ColorBlend{WriteMask: renderpass.ColorWriteRed | renderpass.ColorWriteAlpha},
	}))
	tr.Draw(quad(0, mgl32.Vec4{1, 1, 1, 1}))
	if got := target.Color(0, 0); got != (mgl32.Vec4{1, 0, 0, 1}) {
		t.Errorf("color = %v", got)
	}
}

func TestIDShader(t *testing.T) {
	tr, target := newTracker()
	tr.Execute(renderpass.Descriptor{Pass: "id", Shader: soft.IDShader, Pipeline: renderpass.Pipeline{
		ColorBlend: renderpass.ColorBlend{WriteMask: renderpass.ColorWriteAll},
	}})
	dc := quad(0, mgl32.Vec4{1, 1, 1, 1})
	dc.ID = 42
	tr.Draw(dc)
	if got := target.ID(1, 6); got != 42 {
		t.Errorf("id = %d, want 42", got)
	}
	if target.Color(1, 6) != (mgl32.Vec4{}) {
		t.Error("id pass must not write color")
	}
}

func TestLinesAndPoints(t *testing.T) {
	tr, target := newTracker()
	tr.Execute(pass(renderpass.Pipeline{
		Rasterization: renderpass.Rasterization{Primitive: renderpass.PrimitiveLines},
		ColorBlend:    renderpass.ColorBlend{WriteMask: renderpass.ColorWriteAll},
	}))
	white := mgl32.Vec4{1, 1, 1, 1}
	tr.Draw(gpu.DrawCall{
		Primitive: renderpass.PrimitiveLines,
		Positions: []mgl32.Vec3{{-0.875, 0.125, 0}, {0.875, 0.125, 0}},
		MVP:       mgl32.Ident4(),
		Color:     white,
	})
	for x := 1; x < size-1; x++ {
		if target.Color(x, 3) != white {
			t.Errorf("line pixel (%d,3) not drawn", x)
		}
	}

	tr.Draw(gpu.DrawCall{
		Primitive: renderpass.PrimitivePoints,
		Positions: []mgl32.Vec3{{-0.875, -0.875, 0}},
		MVP:       mgl32.Ident4(),
		Color:     white,
	})
	if target.Color(0, 7) != white {
		t.Error("point not drawn")
	}
}

func TestImage(t *testing.T) {
	_, target := newTracker()
	img := target.Image()
	if img.Bounds().Dx() != size || img.Bounds().Dy() != size {
		t.Errorf("bounds = %v", img.Bounds())
	}
}
