package app

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/dshills/scenedit/internal/binding"
	"github.com/dshills/scenedit/internal/capture"
	"github.com/dshills/scenedit/internal/command"
	"github.com/dshills/scenedit/internal/scene"
)

// Built-in command names.
const (
	CmdQuit         = "quit"
	CmdOrbit        = "orbit"
	CmdDolly        = "dolly"
	CmdSelect       = "select"
	CmdMoveTool     = "move_tool"
	CmdToggleEdges  = "toggle_edges"
	CmdToggleFill   = "toggle_fill"
	CmdTrackPointer = "track_pointer"
)

const (
	// orbitSpeed is radians per pixel of drag.
	orbitSpeed = 0.01
	// dollyStep is the fraction of the camera distance per wheel notch.
	dollyStep = 0.1
	// moveSpeed is world units per pixel of drag.
	moveSpeed = 0.02
)

// defaultBinding binds a built-in command unless the configuration binds
// it.
type defaultBinding struct {
	command string
	kind    binding.Kind
	trigger string
}

var defaultBindings = []defaultBinding{
	{CmdQuit, binding.KindKey, "Ctrl+Q"},
	{CmdOrbit, binding.KindMouseDrag, "middle"},
	{CmdDolly, binding.KindMouseWheel, ""},
	{CmdSelect, binding.KindMouseClick, "left"},
	{CmdMoveTool, binding.KindMouseDrag, "left"},
	{CmdToggleEdges, binding.KindKey, "e"},
	{CmdToggleFill, binding.KindKey, "f"},
	{CmdTrackPointer, binding.KindMouseMotion, ""},
}

func (app *Application) registerCommands() error {
	builtins := []struct {
		name string
		opts []command.Option
	}{
		{CmdQuit, []command.Option{command.WithCall(app.quitCommand)}},
		{CmdOrbit, []command.Option{command.WithReady(overViewport), command.WithCall(app.orbit)}},
		{CmdDolly, []command.Option{command.WithCall(app.dolly)}},
		{CmdSelect, []command.Option{command.WithReady(app.canSelect), command.WithCall(app.selectHovered)}},
		{CmdMoveTool, []command.Option{command.WithReady(overTool), command.WithCall(app.moveTool)}},
		{CmdToggleEdges, []command.Option{command.WithCall(app.toggleStyle(func(s *scene.RenderStyle) *bool { return &s.Edges }))}},
		{CmdToggleFill, []command.Option{command.WithCall(app.toggleStyle(func(s *scene.RenderStyle) *bool { return &s.Fill }))}},
		{CmdTrackPointer, []command.Option{command.WithCall(app.trackPointer)}},
	}
	for _, b := range builtins {
		if err := app.register(b.name, b.opts...); err != nil {
			return err
		}
	}

	if _, ok := app.commands[capture.CommandName]; ok {
		return initError("commands", "register", fmt.Errorf("%w: %s", ErrDuplicateCommand, capture.CommandName))
	}
	h, _, err := capture.RegisterFrameCommand(app.dispatcher, app.trigger, app.cfg.Input.CaptureKey)
	if err != nil {
		return initError("capture", "bind", err)
	}
	app.commands[capture.CommandName] = h
	return nil
}

// bindDefaults binds every built-in command the configuration leaves
// unbound.
func (app *Application) bindDefaults(configured map[string]bool) error {
	for _, b := range defaultBindings {
		if configured[b.command] {
			continue
		}
		if _, err := app.dispatcher.Bind(app.commands[b.command], b.kind, b.trigger); err != nil {
			return initError("input", "bind "+b.command, err)
		}
	}
	return nil
}

func overViewport(ctx command.Context) bool {
	_, ok := ctx.HoveredViewport()
	return ok
}

func overTool(ctx command.Context) bool {
	return ctx.HoveringOverTool()
}

func (app *Application) quitCommand(command.Context) bool {
	app.quit = true
	return true
}

func (app *Application) hoveredViewport(ctx command.Context) *scene.Viewport {
	name, ok := ctx.HoveredViewport()
	if !ok {
		return nil
	}
	return app.scene.Viewport(name)
}

func (app *Application) orbit(ctx command.Context) bool {
	vp := app.hoveredViewport(ctx)
	if vp == nil || vp.Camera == nil {
		return false
	}
	rel := ctx.RelativePosition()
	vp.Camera.Orbit(float32(-rel.X*orbitSpeed), float32(-rel.Y*orbitSpeed))
	return true
}

func (app *Application) dolly(ctx command.Context) bool {
	vp := app.hoveredViewport(ctx)
	if vp == nil || vp.Camera == nil {
		return false
	}
	d := ctx.WheelDelta().Y
	if d == 0 {
		return false
	}
	vp.Camera.Dolly(float32(d * dollyStep))
	return true
}

func (app *Application) canSelect(ctx command.Context) bool {
	return overViewport(ctx) && !ctx.HoveringOverTool()
}

// selectHovered toggles the selection of the content mesh under the
// pointer. Clicking the background clears the selection.
func (app *Application) selectHovered(command.Context) bool {
	if app.hovered == 0 {
		if n := app.scene.ClearSelection(); n > 0 {
			app.log.WithComponent("select").Debug("cleared %d", n)
		}
		return true
	}
	m := app.scene.ByID(app.hovered)
	if m == nil || !m.Flags.Has(scene.Content) {
		return false
	}
	if err := app.scene.SetSelected(m.Name, !m.Flags.Has(scene.Selected)); err != nil {
		app.log.WithComponent("select").Error("%v", err)
		return false
	}
	return true
}

// moveTool drags every tool mesh in the view plane.
func (app *Application) moveTool(ctx command.Context) bool {
	rel := ctx.RelativePosition()
	if rel.X == 0 && rel.Y == 0 {
		return true
	}
	offset := mgl32.Vec3{float32(rel.X * moveSpeed), float32(-rel.Y * moveSpeed), 0}
	for _, m := range app.scene.Layer(scene.LayerTool) {
		if err := app.scene.Translate(m.Name, offset); err != nil {
			app.log.WithComponent("tool").Error("%v", err)
			return false
		}
	}
	return true
}

func (app *Application) toggleStyle(field func(s *scene.RenderStyle) *bool) command.CallFunc {
	return func(command.Context) bool {
		for _, vp := range app.scene.Viewports() {
			if vp.Style != nil {
				f := field(vp.Style)
				*f = !*f
			}
		}
		return true
	}
}

// trackPointer updates the hovered viewport from the pointer position.
// Leaving every viewport clears the hover state.
func (app *Application) trackPointer(ctx command.Context) bool {
	pos := ctx.AbsolutePosition()
	name := ""
	for _, vp := range app.scene.Viewports() {
		if vp.Visible && pos.X >= 0 && pos.Y >= 0 && pos.X < float64(vp.Width) && pos.Y < float64(vp.Height) {
			name = vp.Name
			break
		}
	}
	app.pointer.SetViewport(name)
	if name == "" {
		app.pointer.SetHover(false, false)
		app.hovered = 0
	}
	return false
}

// loadDemoScene adds two content boxes and a tool handle between them.
func (app *Application) loadDemoScene(ctx context.Context) error {
	content := []*scene.Mesh{
		scene.NewBox("box_a", mgl32.Vec3{-1.2, 0, 0}, mgl32.Vec3{1, 1, 1}, mgl32.Vec4{0.8, 0.3, 0.3, 1}),
		scene.NewBox("box_b", mgl32.Vec3{1.2, 0, 0}, mgl32.Vec3{1, 1, 1}, mgl32.Vec4{0.3, 0.4, 0.8, 1}),
	}
	if err := app.LoadMeshes(ctx, scene.LayerContent, content...); err != nil {
		return err
	}
	gizmo := scene.NewBox("gizmo", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec4{1, 0.85, 0.2, 1})
	return app.LoadMeshes(ctx, scene.LayerTool, gizmo)
}
