// Package rendering orchestrates the editor's per-frame passes.
//
// For every visible viewport the Editor clears the target and draws, in
// this order: content, selection, rendertarget nodes, brush, tool meshes,
// queued lines and the text overlay. Tool meshes use the six-pass
// stencil protocol of package renderpass, which must run after content
// and selection so its tagging passes read the scene depth. Missing
// resources are logged and the affected step is skipped.
package rendering

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/dshills/scenedit/internal/capture"
	"github.com/dshills/scenedit/internal/gpu"
	"github.com/dshills/scenedit/internal/renderpass"
	"github.com/dshills/scenedit/internal/scene"
)

// Logger receives render diagnostics.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// HoverOracle reports the viewport under the pointer.
type HoverOracle interface {
	HoveredViewport() (string, bool)
}

// Config configures the frame renderer.
type Config struct {
	// ReverseDepth selects the reversed depth convention for every pass.
	ReverseDepth bool

	Shaders renderpass.Shaders
}

// DefaultConfig uses standard depth and the built-in shaders.
func DefaultConfig() Config {
	return Config{Shaders: renderpass.DefaultShaders()}
}

// Deps are the collaborators of the frame renderer. Any of them may be
// nil; steps needing a missing one are skipped.
type Deps struct {
	Scene   scene.Scene
	Forward *ForwardRenderer
	ID      *IDRenderer
	Lines   *LineRenderer
	Text    *TextRenderer

	// Shadow and Post are advanced with the other renderers.
	Shadow FrameAdvancer
	Post   FrameAdvancer

	Capturer capture.Capturer
	Capture  *capture.Trigger
	Pointer  HoverOracle
	Logger   Logger
}

// Editor renders editor frames.
type Editor struct {
	cfg     Config
	catalog *renderpass.Catalog
	deps    Deps
	log     Logger

	frame     uint64
	hovered   string
	hovering  bool
	capturing bool
	captured  []gpu.Command
	stats     gpu.Stats
}

// New builds the pass catalog for cfg and returns a frame renderer.
func New(cfg Config, deps Deps) *Editor {
	if deps.Logger == nil {
		deps.Logger = nopLogger{}
	}
	if deps.Capturer == nil {
		deps.Capturer = capture.Noop{}
	}
	return &Editor{
		cfg:     cfg,
		catalog: renderpass.NewCatalog(renderpass.DepthConvention{Reverse: cfg.ReverseDepth}, cfg.Shaders),
		deps:    deps,
		log:     deps.Logger,
	}
}

// Catalog returns the pass catalog.
func (e *Editor) Catalog() *renderpass.Catalog {
	return e.catalog
}

// Frame returns the number of completed frames.
func (e *Editor) Frame() uint64 {
	return e.frame
}

// Capturing reports whether the current frame is being captured.
func (e *Editor) Capturing() bool {
	return e.capturing
}

// Stats returns the work recorded while capturing the current frame.
func (e *Editor) Stats() gpu.Stats {
	return e.stats
}

// Hovered returns the viewport under the pointer as of BeginFrame.
func (e *Editor) Hovered() (string, bool) {
	return e.hovered, e.hovering
}

// BeginFrame starts a capture requested during the previous frame and
// refreshes the hover state.
func (e *Editor) BeginFrame() {
	e.stats = gpu.Stats{}
	if e.deps.Capture != nil && e.deps.Capture.Take() && e.deps.Capturer.Available() {
		if err := e.deps.Capturer.Start(e.frame); err != nil {
			e.log.Error("capture start: %v", err)
		} else {
			e.capturing = true
			e.captured = e.captured[:0]
			e.log.Info("capturing frame %d", e.frame)
		}
	}
	e.hovered, e.hovering = "", false
	if e.deps.Pointer != nil {
		e.hovered, e.hovering = e.deps.Pointer.HoveredViewport()
	}
}

// EndFrame finishes an active capture and advances every renderer to its
// next frame buffers.
func (e *Editor) EndFrame() {
	if e.capturing {
		if err := e.deps.Capturer.End(e.captured); err != nil {
			e.log.Error("capture end: %v", err)
		}
		e.capturing = false
	}
	for _, r := range e.advancers() {
		r.NextFrame()
	}
	e.frame++
}

func (e *Editor) advancers() []FrameAdvancer {
	var out []FrameAdvancer
	if e.deps.Forward != nil {
		out = append(out, e.deps.Forward)
	}
	if e.deps.ID != nil {
		out = append(out, e.deps.ID)
	}
	if e.deps.Lines != nil {
		out = append(out, e.deps.Lines)
	}
	if e.deps.Text != nil {
		out = append(out, e.deps.Text)
	}
	if e.deps.Shadow != nil {
		out = append(out, e.deps.Shadow)
	}
	if e.deps.Post != nil {
		out = append(out, e.deps.Post)
	}
	return out
}

// frameState is what the passes of one viewport share.
type frameState struct {
	t        gpu.StateTracker
	vp       *scene.Viewport
	style    *scene.RenderStyle
	viewProj mgl32.Mat4
}

// RenderViewport draws vp into t.
func (e *Editor) RenderViewport(vp *scene.Viewport, t gpu.StateTracker) {
	f, ok := e.prepare(vp, t, "render")
	if !ok {
		return
	}
	var rec *gpu.Recorder
	if e.capturing {
		rec = gpu.NewRecorder(t)
		f.t = rec
	}

	f.t.Clear(gpu.ClearValues{
		Color: f.style.Background,
		Depth: e.catalog.Depth().ClearValue(),
	})
	e.deps.Forward.SetLighting(e.deps.Scene.Lighting())

	e.renderContent(f)
	e.renderSelection(f)
	e.renderRendertargetNodes(f)
	e.renderBrush(f)
	e.renderToolMeshes(f)
	if e.deps.Lines != nil {
		e.deps.Lines.Render(f.t, renderpass.Draw(e.catalog.MustGet(renderpass.EdgeLines), nil), f.viewProj)
		f.t.Reset()
	}
	if e.deps.Text != nil {
		e.deps.Text.Render(vp, f.viewProj)
	}

	if rec != nil {
		e.captured = append(e.captured, rec.Commands()...)
		e.stats.Merge(rec.Stats())
	}
}

// prepare checks the resources every step needs.
func (e *Editor) prepare(vp *scene.Viewport, t gpu.StateTracker, step string) (frameState, bool) {
	switch {
	case vp == nil:
		e.log.Error("%s: no viewport", step)
	case vp.Style == nil:
		e.log.Error("%s: viewport %s has no render style", step, vp.Name)
	case vp.Camera == nil:
		e.log.Error("%s: viewport %s has no camera", step, vp.Name)
	case e.deps.Scene == nil:
		e.log.Error("%s: no scene", step)
	case e.deps.Forward == nil:
		e.log.Error("%s: no forward renderer", step)
	case t == nil:
		e.log.Error("%s: viewport %s has no target", step, vp.Name)
	default:
		return frameState{
			t:        t,
			vp:       vp,
			style:    vp.Style,
			viewProj: vp.Camera.ViewProjection(vp.Aspect(), e.cfg.ReverseDepth),
		}, true
	}
	return frameState{}, false
}

func (e *Editor) pass(name string, o *renderpass.Override) renderpass.Descriptor {
	return renderpass.Draw(e.catalog.MustGet(name), o)
}

// styled applies the viewport line width and point size.
func styled(d renderpass.Descriptor, style *scene.RenderStyle) renderpass.Descriptor {
	if style.EdgeWidth > 0 {
		d.Pipeline.Rasterization.LineWidth = style.EdgeWidth
	}
	if style.PointSize > 0 {
		d.Pipeline.Rasterization.PointSize = style.PointSize
	}
	return d
}

func (e *Editor) renderContent(f frameState) {
	meshes := scene.Select(e.deps.Scene.Layer(scene.LayerContent), scene.ContentFilter)
	if len(meshes) == 0 {
		return
	}
	fw := e.deps.Forward
	s := f.style
	if s.Fill {
		fw.Draw(f.t, e.pass(renderpass.PolygonFill, nil), f.viewProj, meshes, ModeTriangles, nil)
	}
	if s.Edges {
		fw.Draw(f.t, styled(e.pass(renderpass.EdgeLines, nil), s), f.viewProj, meshes, ModeEdges, &s.EdgeColor)
	}
	if s.Centroids {
		fw.Draw(f.t, styled(e.pass(renderpass.PolygonCentroids, nil), s), f.viewProj, meshes, ModeCentroids, &s.CentroidColor)
	}
	if s.CornerPoints {
		fw.Draw(f.t, styled(e.pass(renderpass.CornerPoints, nil), s), f.viewProj, meshes, ModeCorners, &s.CornerColor)
	}
	f.t.Reset()
}

func (e *Editor) renderSelection(f frameState) {
	meshes := scene.Select(e.deps.Scene.Layer(scene.LayerSelection), scene.SelectionFilter)
	if len(meshes) == 0 {
		return
	}
	fw := e.deps.Forward
	s := f.style
	if s.Fill {
		fw.Draw(f.t, e.pass(renderpass.PolygonFill, nil), f.viewProj, meshes, ModeTriangles, &s.SelectionFill)
	}
	fw.Draw(f.t, styled(e.pass(renderpass.EdgeLines, nil), s), f.viewProj, meshes, ModeEdges, &s.SelectionEdge)
	fw.Draw(f.t, styled(e.pass(renderpass.HiddenLineWithBlend, nil), s), f.viewProj, meshes, ModeEdges, &s.SelectionEdge)
	f.t.Reset()
}

func (e *Editor) renderRendertargetNodes(f frameState) {
	meshes := scene.Select(e.deps.Scene.Layer(scene.LayerRenderTarget), scene.RenderTargetFilter)
	if len(meshes) == 0 {
		return
	}
	e.deps.Forward.Draw(f.t, e.pass(renderpass.RendertargetMeshes, nil), f.viewProj, meshes, ModeTriangles, nil)
	f.t.Reset()
}

func (e *Editor) renderBrush(f frameState) {
	meshes := scene.Select(e.deps.Scene.Layer(scene.LayerBrush), scene.BrushFilter)
	// Empty spans never reach the tracker.
	if len(meshes) == 0 {
		return
	}
	// Front faces (back faces culled) first, then back faces.
	e.deps.Forward.Draw(f.t, e.pass(renderpass.BrushFront, nil), f.viewProj, meshes, ModeTriangles, nil)
	e.deps.Forward.Draw(f.t, e.pass(renderpass.BrushBack, nil), f.viewProj, meshes, ModeTriangles, nil)
	f.t.Reset()
}

func (e *Editor) renderToolMeshes(f frameState) {
	meshes := scene.Select(e.deps.Scene.Layer(scene.LayerTool), scene.ToolFilter)
	if len(meshes) == 0 {
		return
	}
	for _, name := range renderpass.ToolPasses {
		d := e.pass(name, nil)
		if d.Begin != nil {
			d.Begin(f.t)
		}
		e.deps.Forward.Draw(f.t, d, f.viewProj, meshes, ModeTriangles, nil)
		if d.End != nil {
			d.End(f.t)
		}
	}
	f.t.Reset()
}

// RenderID draws picking ids of vp into t. It runs only while the pointer
// is over vp and an id renderer exists, and reports whether it ran.
func (e *Editor) RenderID(vp *scene.Viewport, t gpu.StateTracker) bool {
	if e.deps.ID == nil || vp == nil || !e.hovering || e.hovered != vp.Name {
		return false
	}
	f, ok := e.prepare(vp, t, "render id")
	if !ok {
		return false
	}
	content := scene.Select(e.deps.Scene.Layer(scene.LayerContent), scene.Filter{Require: scene.Visible, Exclude: scene.Hidden})
	targets := scene.Select(e.deps.Scene.Layer(scene.LayerRenderTarget), scene.RenderTargetFilter)
	tools := scene.Select(e.deps.Scene.Layer(scene.LayerTool), scene.ToolFilter)

	fill := e.pass(renderpass.PolygonFill, &renderpass.Override{Shader: e.cfg.Shaders.ID})
	e.deps.ID.Render(t, fill, e.catalog.Depth().ClearValue(), f.viewProj, append(content, targets...), tools)
	return true
}
