package rendering_test

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/dshills/scenedit/internal/capture"
	"github.com/dshills/scenedit/internal/gpu"
	"github.com/dshills/scenedit/internal/gpu/soft"
	"github.com/dshills/scenedit/internal/rendering"
	"github.com/dshills/scenedit/internal/renderpass"
	"github.com/dshills/scenedit/internal/scene"
)

var (
	red   = mgl32.Vec4{1, 0, 0, 1}
	green = mgl32.Vec4{0, 1, 0, 1}
	blue  = mgl32.Vec4{0, 0, 1, 1}
)

type logger struct {
	errors []string
}

func (l *logger) Debug(string, ...any) {}
func (l *logger) Info(string, ...any)  {}
func (l *logger) Error(msg string, args ...any) {
	l.errors = append(l.errors, fmt.Sprintf(msg, args...))
}

type hover string

func (h hover) HoveredViewport() (string, bool) { return string(h), h != "" }

func add(t *testing.T, s *scene.Memory, l scene.Layer, m *scene.Mesh) *scene.Mesh {
	t.Helper()
	if err := s.Add(l, m); err != nil {
		t.Fatal(err)
	}
	return m
}

func box(name string, center mgl32.Vec3, size float32, color mgl32.Vec4) *scene.Mesh {
	return scene.NewBox(name, center, mgl32.Vec3{size, size, size}, color)
}

func newEditor(cfg rendering.Config, s scene.Scene, log *logger) *rendering.Editor {
	return rendering.New(cfg, rendering.Deps{
		Scene:   s,
		Forward: rendering.NewForwardRenderer(),
		ID:      rendering.NewIDRenderer(),
		Lines:   rendering.NewLineRenderer(),
		Text:    rendering.NewTextRenderer(),
		Logger:  log,
	})
}

func TestRenderViewportPassOrder(t *testing.T) {
	s := scene.NewMemory()
	add(t, s, scene.LayerContent, box("ground", mgl32.Vec3{0, -2, 0}, 1, green))
	add(t, s, scene.LayerSelection, box("picked", mgl32.Vec3{}, 1, green))
	add(t, s, scene.LayerRenderTarget, scene.NewQuad("panel", mgl32.Vec3{2, 0, 0}, 1, 1, blue))
	add(t, s, scene.LayerBrush, box("brush", mgl32.Vec3{-2, 0, 0}, 1, blue))
	add(t, s, scene.LayerTool, box("gizmo", mgl32.Vec3{0, 0, 1}, 0.5, red))

	lines := rendering.NewLineRenderer()
	lines.AddLine(mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{1, 0, 0}, red)
	e := rendering.New(rendering.DefaultConfig(), rendering.Deps{
		Scene:   s,
		Forward: rendering.NewForwardRenderer(),
		Lines:   lines,
	})

	rec := gpu.NewRecorder(nil)
	e.BeginFrame()
	e.RenderViewport(scene.NewViewport("main", 64, 64), rec)
	e.EndFrame()

	want := []string{
		renderpass.PolygonFill, renderpass.EdgeLines,
		renderpass.PolygonFill, renderpass.EdgeLines, renderpass.HiddenLineWithBlend,
		renderpass.RendertargetMeshes,
		renderpass.BrushFront, renderpass.BrushBack,
	}
	want = append(want, renderpass.ToolPasses[:]...)
	want = append(want, renderpass.EdgeLines)
	if got := rec.DrawnPasses(); !slices.Equal(got, want) {
		t.Errorf("passes:\n got %v\nwant %v", got, want)
	}

	cmds := rec.Commands()
	if cmds[0].Op != gpu.OpClear || cmds[0].Clear.Depth != 1 {
		t.Errorf("first command = %+v, want clear to depth 1", cmds[0])
	}

	var ranges [][2]float32
	for _, c := range cmds {
		if c.Op == gpu.OpDepthRange {
			ranges = append(ranges, [2]float32{c.Near, c.Far})
		}
	}
	if len(ranges) != 2 || ranges[0] != [2]float32{1, 1} || ranges[1] != [2]float32{0, 1} {
		t.Errorf("depth ranges = %v", ranges)
	}

	if len(lines.Lines()) != 0 {
		t.Error("EndFrame should advance the line renderer")
	}
	if e.Frame() != 1 {
		t.Errorf("Frame() = %d, want 1", e.Frame())
	}
}

func TestRenderViewportFilters(t *testing.T) {
	s := scene.NewMemory()
	add(t, s, scene.LayerContent, box("shown", mgl32.Vec3{}, 1, green))
	hidden := add(t, s, scene.LayerContent, box("hidden", mgl32.Vec3{1, 0, 0}, 1, green))
	hidden.Flags |= scene.Hidden
	invisible := add(t, s, scene.LayerContent, box("invisible", mgl32.Vec3{2, 0, 0}, 1, green))
	invisible.Flags &^= scene.Visible

	e := newEditor(rendering.DefaultConfig(), s, &logger{})
	vp := scene.NewViewport("main", 32, 32)
	vp.Style.Edges = false

	rec := gpu.NewRecorder(nil)
	e.RenderViewport(vp, rec)

	var meshes []string
	for _, c := range rec.Commands() {
		if c.Op == gpu.OpDraw && c.Pass == renderpass.PolygonFill {
			meshes = append(meshes, c.Mesh)
		}
	}
	if !slices.Equal(meshes, []string{"shown"}) {
		t.Errorf("content meshes = %v, want [shown]", meshes)
	}
}

func TestBrushEarlyOut(t *testing.T) {
	s := scene.NewMemory()
	add(t, s, scene.LayerContent, box("c", mgl32.Vec3{}, 1, green))
	e := newEditor(rendering.DefaultConfig(), s, &logger{})

	rec := gpu.NewRecorder(nil)
	e.RenderViewport(scene.NewViewport("main", 32, 32), rec)
	for _, c := range rec.Commands() {
		if c.Op == gpu.OpExecute && strings.HasPrefix(c.Pass, "brush") {
			t.Fatalf("brush pass %s executed with an empty brush layer", c.Pass)
		}
		if c.Op == gpu.OpExecute && slices.Contains(renderpass.ToolPasses[:], c.Pass) {
			t.Fatalf("tool pass %s executed without tool meshes", c.Pass)
		}
	}
}

func TestMissingResourcesSkipped(t *testing.T) {
	s := scene.NewMemory()
	noCamera := scene.NewViewport("a", 8, 8)
	noCamera.Camera = nil
	noStyle := scene.NewViewport("b", 8, 8)
	noStyle.Style = nil

	tests := []struct {
		name string
		deps rendering.Deps
		vp   *scene.Viewport
		want string
	}{
		{"no forward renderer", rendering.Deps{Scene: s}, scene.NewViewport("v", 8, 8), "no forward renderer"},
		{"no scene", rendering.Deps{Forward: rendering.NewForwardRenderer()}, scene.NewViewport("v", 8, 8), "no scene"},
		{"no camera", rendering.Deps{Scene: s, Forward: rendering.NewForwardRenderer()}, noCamera, "no camera"},
		{"no style", rendering.Deps{Scene: s, Forward: rendering.NewForwardRenderer()}, noStyle, "no render style"},
		{"no viewport", rendering.Deps{Scene: s, Forward: rendering.NewForwardRenderer()}, nil, "no viewport"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &logger{}
			tt.deps.Logger = log
			e := rendering.New(rendering.DefaultConfig(), tt.deps)
			rec := gpu.NewRecorder(nil)
			e.BeginFrame()
			e.RenderViewport(tt.vp, rec)
			e.EndFrame()
			if n := len(rec.Commands()); n != 0 {
				t.Errorf("%d tracker calls, want none", n)
			}
			if len(log.errors) != 1 || !strings.Contains(log.errors[0], tt.want) {
				t.Errorf("errors = %v, want %q", log.errors, tt.want)
			}
		})
	}
}

// toolScene places an opaque green box at the origin and a red tool box
// either behind it or in front of it.
func toolScene(t *testing.T, occluded bool) *scene.Memory {
	s := scene.NewMemory()
	add(t, s, scene.LayerContent, box("wall", mgl32.Vec3{}, 2, green))
	z := float32(-3)
	if !occluded {
		z = 2
	}
	add(t, s, scene.LayerTool, box("gizmo", mgl32.Vec3{0, 0, z}, 0.5, red))
	return s
}

func renderSoft(t *testing.T, s scene.Scene, reverse bool) *soft.Target {
	t.Helper()
	cfg := rendering.DefaultConfig()
	cfg.ReverseDepth = reverse
	e := newEditor(cfg, s, &logger{})

	vp := scene.NewViewport("main", 64, 64)
	vp.Style = &scene.RenderStyle{Fill: true}
	target := soft.NewTarget(64, 64)
	e.BeginFrame()
	e.RenderViewport(vp, soft.NewTracker(target))
	e.EndFrame()
	return target
}

func approx(a, b mgl32.Vec4) bool {
	return a.ApproxEqualThreshold(b, 1e-5)
}

func TestToolStencilProtocol(t *testing.T) {
	hiddenTint := red.Mul(renderpass.HiddenToolAlpha).Add(green.Mul(1 - renderpass.HiddenToolAlpha))

	tests := []struct {
		name     string
		occluded bool
		stencil  uint8
		color    mgl32.Vec4
	}{
		{"occluded tool", true, renderpass.StencilTagHidden, hiddenTint},
		{"visible tool", false, renderpass.StencilTagVisible, red},
	}
	for _, tt := range tests {
		for _, reverse := range []bool{false, true} {
			t.Run(fmt.Sprintf("%s reverse=%v", tt.name, reverse), func(t *testing.T) {
				target := renderSoft(t, toolScene(t, tt.occluded), reverse)
				if got := target.Stencil(32, 32); got != tt.stencil {
					t.Errorf("stencil = %d, want %d", got, tt.stencil)
				}
				if got := target.Color(32, 32); !approx(got, tt.color) {
					t.Errorf("color = %v, want %v", got, tt.color)
				}
				if got := target.Stencil(2, 2); got != 0 {
					t.Errorf("background stencil = %d, want 0", got)
				}
				if got := target.Color(22, 32); !approx(got, green) {
					t.Errorf("wall color = %v, want green", got)
				}
			})
		}
	}
}

func TestReverseDepthConsistency(t *testing.T) {
	for _, occluded := range []bool{true, false} {
		standard := renderSoft(t, toolScene(t, occluded), false)
		reverse := renderSoft(t, toolScene(t, occluded), true)

		w, h := standard.Size()
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if a, b := standard.Stencil(x, y), reverse.Stencil(x, y); a != b {
					t.Fatalf("occluded=%v (%d,%d): stencil %d != %d", occluded, x, y, a, b)
				}
				if a, b := standard.Color(x, y), reverse.Color(x, y); !approx(a, b) {
					t.Fatalf("occluded=%v (%d,%d): color %v != %v", occluded, x, y, a, b)
				}
			}
		}
		if standard.Depth(0, 0) != 1 || reverse.Depth(0, 0) != 0 {
			t.Errorf("clear depth = %v / %v, want 1 / 0", standard.Depth(0, 0), reverse.Depth(0, 0))
		}
	}
}

func TestRenderID(t *testing.T) {
	s := toolScene(t, false)
	wall := s.Find("wall")
	gizmo := s.Find("gizmo")

	tests := []struct {
		name    string
		hovered string
		ran     bool
	}{
		{"pointer over viewport", "main", true},
		{"pointer elsewhere", "side", false},
		{"pointer outside", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := rendering.NewIDRenderer()
			e := rendering.New(rendering.DefaultConfig(), rendering.Deps{
				Scene:   s,
				Forward: rendering.NewForwardRenderer(),
				ID:      ids,
				Pointer: hover(tt.hovered),
			})
			target := soft.NewTarget(64, 64)
			e.BeginFrame()
			ran := e.RenderID(scene.NewViewport("main", 64, 64), soft.NewTracker(target))
			if ran != tt.ran {
				t.Fatalf("RenderID = %v, want %v", ran, tt.ran)
			}
			if !ran {
				return
			}
			if ids.Draws() != 2 {
				t.Errorf("id draws = %d, want 2", ids.Draws())
			}
			id, tool := rendering.DecodeID(target.ID(32, 32))
			if id != gizmo.ID || !tool {
				t.Errorf("center id = %d tool=%v, want gizmo %d", id, tool, gizmo.ID)
			}
			id, tool = rendering.DecodeID(target.ID(22, 32))
			if id != wall.ID || tool {
				t.Errorf("wall id = %d tool=%v, want %d", id, tool, wall.ID)
			}
			if target.Color(32, 32) != (mgl32.Vec4{}) {
				t.Error("id pass wrote color")
			}
		})
	}
}

type fakeCapturer struct {
	starts []uint64
	ended  [][]gpu.Command
}

func (c *fakeCapturer) Available() bool { return true }
func (c *fakeCapturer) Start(frame uint64) error {
	c.starts = append(c.starts, frame)
	return nil
}
func (c *fakeCapturer) End(cmds []gpu.Command) error {
	c.ended = append(c.ended, slices.Clone(cmds))
	return nil
}

func TestCaptureRequestedFrame(t *testing.T) {
	s := toolScene(t, true)
	fc := &fakeCapturer{}
	trigger := &capture.Trigger{}
	fw := rendering.NewForwardRenderer()
	e := rendering.New(rendering.DefaultConfig(), rendering.Deps{
		Scene:    s,
		Forward:  fw,
		Capturer: fc,
		Capture:  trigger,
	})
	vp := scene.NewViewport("main", 16, 16)

	frame := func() {
		e.BeginFrame()
		e.RenderViewport(vp, gpu.NewRecorder(nil))
		e.EndFrame()
	}

	frame()
	if len(fc.starts) != 0 {
		t.Fatal("capture started without a request")
	}

	trigger.Request()
	e.BeginFrame()
	if !e.Capturing() {
		t.Fatal("requested capture did not start")
	}
	e.RenderViewport(vp, gpu.NewRecorder(nil))
	if e.Stats().DrawCalls == 0 {
		t.Error("captured frame recorded no draws")
	}
	e.EndFrame()

	if !slices.Equal(fc.starts, []uint64{1}) {
		t.Errorf("starts = %v, want [1]", fc.starts)
	}
	if len(fc.ended) != 1 || len(fc.ended[0]) == 0 || fc.ended[0][0].Op != gpu.OpClear {
		t.Errorf("ended = %v", fc.ended)
	}
	if e.Capturing() {
		t.Error("capture still active after EndFrame")
	}

	frame()
	if len(fc.starts) != 1 {
		t.Error("capture repeated without a new request")
	}
	if fw.Frame() != 3 {
		t.Errorf("forward frame = %d, want 3", fw.Frame())
	}
}

func TestTextOverlay(t *testing.T) {
	s := scene.NewMemory()
	text := rendering.NewTextRenderer()
	e := rendering.New(rendering.DefaultConfig(), rendering.Deps{
		Scene:   s,
		Forward: rendering.NewForwardRenderer(),
		Text:    text,
	})
	text.AddLabel(mgl32.Vec3{}, "origin", red)
	text.AddLabel(mgl32.Vec3{0, 0, 10}, "behind", red)

	e.BeginFrame()
	e.RenderViewport(scene.NewViewport("main", 40, 20), gpu.NewRecorder(nil))
	placed := text.Overlay()
	if len(placed) != 1 {
		t.Fatalf("placed = %+v, want one label", placed)
	}
	if p := placed[0]; p.Text != "origin" || p.X != 20 || p.Y != 10 || p.Viewport != "main" {
		t.Errorf("label = %+v", p)
	}
	e.EndFrame()
	if len(text.Overlay()) != 0 {
		t.Error("EndFrame should advance the text renderer")
	}
}

func TestForwardLighting(t *testing.T) {
	fw := rendering.NewForwardRenderer()
	fw.SetLighting(scene.Lighting{
		Lights:  []scene.Light{{Direction: mgl32.Vec3{0, 0, -1}, Color: mgl32.Vec3{1, 1, 1}}},
		Ambient: mgl32.Vec3{0.5, 0.5, 0.5},
	})
	rec := gpu.NewRecorder(nil)
	m := box("b", mgl32.Vec3{}, 1, mgl32.Vec4{0.5, 0.5, 0.5, 1})
	fw.Draw(rec, renderpass.Descriptor{Pass: "fill"}, mgl32.Ident4(), []*scene.Mesh{m}, rendering.ModeTriangles, nil)

	draws := fw.Submitted()
	if len(draws) != 6 {
		t.Fatalf("draws = %d, want one per face", len(draws))
	}
	lit := 0
	for _, dc := range draws {
		if len(dc.Indices) != 6 {
			t.Errorf("face draw has %d indices", len(dc.Indices))
		}
		if approx(dc.Color, mgl32.Vec4{0.75, 0.75, 0.75, 1}) {
			lit++
		}
	}
	if lit != 1 {
		t.Errorf("%d faces lit by the light, want 1", lit)
	}
}
