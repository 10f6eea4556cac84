package app

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/dshills/scenedit/internal/config"
	"github.com/dshills/scenedit/internal/frontend"
	"github.com/dshills/scenedit/internal/rendering"
	"github.com/dshills/scenedit/internal/scene"
)

var (
	labelColor = mgl32.Vec4{1, 1, 1, 1}
	axisColors = [3]mgl32.Vec4{{1, 0.2, 0.2, 1}, {0.2, 1, 0.2, 1}, {0.3, 0.5, 1, 1}}
)

// axisLength is the length of the tool axis lines in world units.
const axisLength = 0.6

// Run renders a first frame, then handles input until the front end
// quits, the event channel closes, ctx is done or MaxFrames frames were
// presented. A frame is rendered after every input event and on every
// FrameInterval tick. Panics raised while handling input or rendering
// are returned as *RecoveredPanicError.
func (app *Application) Run(ctx context.Context) (err error) {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)
	defer func() {
		if r := recover(); r != nil {
			err = NewRecoveredPanicError(r, string(debug.Stack()))
			app.log.WithComponent("app").Error("%v", r)
		}
	}()

	var tick <-chan time.Time
	if app.frameInterval > 0 {
		ticker := time.NewTicker(app.frameInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	done, err := app.frame()
	if done || err != nil {
		return err
	}

	events := app.frontend.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := app.HandleEvent(ev); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}
				return err
			}

		case cfg := <-app.reloads:
			app.ApplyConfig(cfg)

		case <-tick:
		}

		if done, err := app.frame(); done || err != nil {
			return err
		}
	}
}

// frame renders one frame and reports whether MaxFrames was reached.
func (app *Application) frame() (bool, error) {
	if err := app.RenderFrame(); err != nil {
		return false, err
	}
	return app.maxFrames > 0 && app.metrics.Snapshot().FrameCount >= uint64(app.maxFrames), nil
}

// HandleEvent applies one front end event. It returns ErrQuit when the
// event or a command asked the application to exit.
func (app *Application) HandleEvent(ev frontend.Event) error {
	switch ev.Kind {
	case frontend.EventQuit:
		return ErrQuit
	case frontend.EventResize:
		app.Resize(ev.Width, ev.Height)
		return nil
	case frontend.EventNone:
		return nil
	}

	start := time.Now()
	consumed := frontend.Deliver(ev, app.dispatcher)
	app.metrics.RecordInput(time.Since(start), consumed)

	if app.quit {
		return ErrQuit
	}
	return nil
}

// Resize resizes the main viewport and its framebuffers.
func (app *Application) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	vp := app.scene.Viewport(MainViewport)
	if vp == nil || (vp.Width == width && vp.Height == height) {
		return
	}
	vp.Width, vp.Height = width, height
	app.targets[MainViewport] = newViewTarget(width, height)
	app.idTarget = newViewTarget(width, height)
	app.hovered = 0
	app.log.WithComponent("app").Debug("resized to %dx%d", width, height)
}

// RenderFrame renders every visible viewport, refreshes the picking
// state of the hovered one and presents the main viewport.
func (app *Application) RenderFrame() error {
	start := time.Now()

	app.queueOverlay()
	app.editor.BeginFrame()
	capturing := app.editor.Capturing()

	for _, vp := range app.scene.Viewports() {
		if !vp.Visible {
			continue
		}
		vt := app.targets[vp.Name]
		if vt == nil {
			continue
		}
		app.editor.RenderViewport(vp, vt.tracker)
		if app.editor.RenderID(vp, app.idTarget.tracker) {
			app.updateHover()
		}
	}

	var labels []rendering.PlacedLabel
	for _, l := range app.text.Overlay() {
		if l.Viewport == MainViewport {
			labels = append(labels, l)
		}
	}
	err := app.frontend.Present(app.Target().Image(), labels)
	app.editor.EndFrame()

	if capturing {
		app.metrics.RecordCapture()
	}
	app.metrics.RecordFrame(time.Since(start))
	return err
}

// queueOverlay queues the per-frame labels of selected meshes and the
// axes of tool meshes.
func (app *Application) queueOverlay() {
	for _, m := range app.scene.Layer(scene.LayerSelection) {
		pos := m.Transform.Col(3).Vec3().Add(mgl32.Vec3{0, 0.8, 0})
		app.text.AddLabel(pos, m.Name, labelColor)
	}
	for _, m := range scene.Select(app.scene.Layer(scene.LayerTool), scene.ToolFilter) {
		origin := m.Transform.Col(3).Vec3()
		for axis, c := range axisColors {
			var dir mgl32.Vec3
			dir[axis] = axisLength
			app.lines.AddLine(origin, origin.Add(dir), c)
		}
	}
}

// updateHover reads the picking id under the pointer.
func (app *Application) updateHover() {
	pos := app.pointer.AbsolutePosition()
	w, h := app.idTarget.target.Size()
	x, y := int(pos.X), int(pos.Y)
	if x < 0 || y < 0 || x >= w || y >= h {
		app.pointer.SetHover(false, app.pointer.HoveringOverGUI())
		app.hovered = 0
		return
	}
	mesh, tool := rendering.DecodeID(app.idTarget.target.ID(x, y))
	app.pointer.SetHover(tool && mesh != 0, app.pointer.HoveringOverGUI())
	if tool {
		app.hovered = 0
	} else {
		app.hovered = mesh
	}
}

// Hovered returns the content mesh under the pointer as of the last
// picking pass, nil for none.
func (app *Application) Hovered() *scene.Mesh {
	return app.scene.ByID(app.hovered)
}

// queueReload hands a reloaded configuration to the Run goroutine. It is
// called on the watcher goroutine; a pending reload is replaced.
func (app *Application) queueReload(cfg *config.Config, err error) {
	if err != nil {
		app.log.WithComponent("config").Error("reload: %v", err)
		return
	}
	for {
		select {
		case app.reloads <- cfg:
			return
		default:
		}
		select {
		case <-app.reloads:
		default:
		}
	}
}

// ApplyConfig applies the settings of cfg that can change at run time:
// the log level and the render style of every viewport. Other changes
// take effect on the next start.
func (app *Application) ApplyConfig(cfg *config.Config) {
	log := app.log.WithComponent("config")
	app.log.SetLevel(ParseLogLevel(cfg.Logging.Level))
	for _, vp := range app.scene.Viewports() {
		vp.Style = cfg.Render.Style.RenderStyle()
	}
	if cfg.Render.ReverseDepth != app.cfg.Render.ReverseDepth {
		log.Warn("render.reverse_depth changes on restart")
	}
	if cfg.GLContext.PoolSize != app.cfg.GLContext.PoolSize {
		log.Warn("glcontext.pool_size changes on restart")
	}
	app.cfg.Logging = cfg.Logging
	app.cfg.Render.Style = cfg.Render.Style
	app.metrics.RecordReload()
	log.Info("reloaded")
}
