package app_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/dshills/scenedit/internal/app"
	"github.com/dshills/scenedit/internal/binding"
	"github.com/dshills/scenedit/internal/capture"
	"github.com/dshills/scenedit/internal/config"
	"github.com/dshills/scenedit/internal/frontend"
	"github.com/dshills/scenedit/internal/input/key"
	"github.com/dshills/scenedit/internal/input/mouse"
	"github.com/dshills/scenedit/internal/scene"
	"github.com/dshills/scenedit/internal/script"
)

const width, height = 64, 48

func quietLogger() *app.Logger {
	return app.NewLogger(app.LoggerConfig{Level: app.LogLevelError, Output: io.Discard})
}

func newApp(t *testing.T, cfg *config.Config, script ...frontend.Event) (*app.Application, *frontend.Headless) {
	t.Helper()
	fe := frontend.NewHeadless(width, height, script...)
	a, err := app.New(context.Background(), app.Options{Config: cfg, Frontend: fe, Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a, fe
}

// pixel projects a world position into the main viewport.
func pixel(a *app.Application, p mgl32.Vec3) mouse.Position {
	vp := a.Scene().Viewport(app.MainViewport)
	clip := vp.Camera.ViewProjection(vp.Aspect(), a.Config().Render.ReverseDepth).Mul4x1(p.Vec4(1))
	ndc := clip.Vec3().Mul(1 / clip.W())
	return mouse.Position{
		X: float64(int((ndc.X() + 1) * 0.5 * float32(vp.Width))),
		Y: float64(int((1 - ndc.Y()) * 0.5 * float32(vp.Height))),
	}
}

func moveTo(t *testing.T, a *app.Application, pos mouse.Position) {
	t.Helper()
	prev := a.Pointer().AbsolutePosition()
	ev := frontend.MotionEvent(mouse.MotionEvent{Position: pos, Delta: pos.Sub(prev)})
	if err := a.HandleEvent(ev); err != nil {
		t.Fatal(err)
	}
	if err := a.RenderFrame(); err != nil {
		t.Fatal(err)
	}
}

func button(pos mouse.Position, pressed bool) frontend.Event {
	ev := mouse.ButtonEvent{Button: mouse.ButtonLeft, Position: pos}
	if pressed {
		ev.Count = 1
	}
	return frontend.ButtonEvent(ev)
}

func handle(t *testing.T, a *app.Application, events ...frontend.Event) {
	t.Helper()
	for _, ev := range events {
		if err := a.HandleEvent(ev); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRunHeadless(t *testing.T) {
	a, fe := newApp(t, nil,
		frontend.MotionEvent(mouse.MotionEvent{Position: mouse.Position{X: 1, Y: 1}}),
		frontend.KeyEvent(key.RunePress('e', key.ModNone)),
		frontend.KeyEvent(key.RunePress('q', key.ModCtrl)),
		frontend.KeyEvent(key.RunePress('f', key.ModNone)),
	)
	if err := a.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if fe.Frames() != 3 {
		t.Errorf("frames = %d, want 3", fe.Frames())
	}
	style := a.Scene().Viewport(app.MainViewport).Style
	if style.Edges {
		t.Error("toggle_edges did not run")
	}
	if !style.Fill {
		t.Error("events after quit were handled")
	}
	snap := a.Metrics().Snapshot()
	if snap.InputCount != 3 || snap.InputConsumed != 2 {
		t.Errorf("input = %d consumed %d, want 3 and 2", snap.InputCount, snap.InputConsumed)
	}
	if name, ok := a.Pointer().HoveredViewport(); !ok || name != app.MainViewport {
		t.Errorf("hovered viewport = %q %v", name, ok)
	}
}

func TestSelectByPicking(t *testing.T) {
	a, fe := newApp(t, nil)
	boxA := a.Scene().Find("box_a")

	at := pixel(a, mgl32.Vec3{-1.2, 0, 0})
	moveTo(t, a, at)
	if a.Hovered() != boxA {
		t.Fatalf("hovered = %v, want box_a", a.Hovered())
	}
	if a.Pointer().HoveringOverTool() {
		t.Error("content reported as tool")
	}

	handle(t, a, button(at, true), button(at, false))
	if !boxA.Flags.Has(scene.Selected) {
		t.Fatal("click did not select box_a")
	}

	if err := a.RenderFrame(); err != nil {
		t.Fatal(err)
	}
	labels := fe.Labels()
	if len(labels) != 1 || labels[0].Text != "box_a" {
		t.Errorf("labels = %+v, want the selected mesh name", labels)
	}

	background := mouse.Position{X: 1, Y: 1}
	moveTo(t, a, background)
	if a.Hovered() != nil {
		t.Fatalf("hovered = %v over background", a.Hovered())
	}
	handle(t, a, button(background, true), button(background, false))
	if boxA.Flags.Has(scene.Selected) {
		t.Error("background click kept the selection")
	}
}

func TestDragMovesTool(t *testing.T) {
	a, _ := newApp(t, nil)

	at := pixel(a, mgl32.Vec3{0, 0, 0})
	moveTo(t, a, at)
	if !a.Pointer().HoveringOverTool() {
		t.Fatal("pointer not over the tool")
	}

	to := mouse.Position{X: at.X + 10, Y: at.Y}
	handle(t, a,
		button(at, true),
		frontend.MotionEvent(mouse.MotionEvent{Position: to, Delta: mouse.Position{X: 10}}),
		button(to, false),
	)

	x := a.Scene().Find("gizmo").Transform.Col(3).X()
	if x < 0.19 || x > 0.21 {
		t.Errorf("gizmo x = %v, want 0.2", x)
	}
	if a.Dispatcher().ActiveMouseCommand() != 0 {
		t.Error("drag still holds the mouse after release")
	}
	for _, name := range []string{"box_a", "box_b"} {
		if a.Scene().Find(name).Flags.Has(scene.Selected) {
			t.Errorf("%s selected by a tool drag", name)
		}
	}
}

func TestOrbitAndDolly(t *testing.T) {
	a, _ := newApp(t, nil)
	cam := a.Scene().Viewport(app.MainViewport).Camera
	moveTo(t, a, mouse.Position{X: 2, Y: 2})

	dist := cam.Position.Sub(cam.Target).Len()
	handle(t, a, frontend.WheelEvent(mouse.WheelEvent{Delta: mouse.Position{Y: 1}}))
	if got := cam.Position.Sub(cam.Target).Len(); got >= dist {
		t.Errorf("dolly distance = %v, want < %v", got, dist)
	}

	before := cam.Position
	handle(t, a,
		frontend.ButtonEvent(mouse.ButtonEvent{Button: mouse.ButtonMiddle, Count: 1}),
		frontend.MotionEvent(mouse.MotionEvent{Position: mouse.Position{X: 22, Y: 2}, Delta: mouse.Position{X: 20}}),
		frontend.ButtonEvent(mouse.ButtonEvent{Button: mouse.ButtonMiddle}),
	)
	if cam.Position.ApproxEqual(before) {
		t.Error("middle drag did not orbit")
	}
}

func TestCaptureKey(t *testing.T) {
	cfg := config.Default()
	cfg.Capture.Dir = t.TempDir()
	a, _ := newApp(t, cfg)

	handle(t, a, frontend.KeyEvent(key.Press(key.KeyF12, key.ModNone)))
	if err := a.RenderFrame(); err != nil {
		t.Fatal(err)
	}
	fc, ok := a.Capturer().(*capture.FileCapturer)
	if !ok {
		t.Fatalf("capturer = %T", a.Capturer())
	}
	if fc.Last() == "" {
		t.Fatal("no capture written")
	}
	if _, err := capture.Load(fc.Last()); err != nil {
		t.Error(err)
	}
	if n := a.Metrics().Snapshot().Captures; n != 1 {
		t.Errorf("captures = %d", n)
	}
}

func TestConfiguredBindingsAndScripts(t *testing.T) {
	dir := t.TempDir()
	lua := filepath.Join(dir, "cmds.lua")
	if err := os.WriteFile(lua, []byte(`function shout(p) return p.viewport == "main" end`), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Scripts.Files = []string{lua}
	cfg.Scripts.Commands = []config.ScriptCommand{{Name: "shout", Function: "shout"}}
	cfg.Input.Bindings = []config.BindingConfig{
		{Command: "shout", Kind: "key", Trigger: "Ctrl+S"},
		{Command: app.CmdOrbit, Kind: "drag", Trigger: "right"},
	}
	a, _ := newApp(t, cfg)

	shout := frontend.KeyEvent(key.RunePress('s', key.ModCtrl))
	handle(t, a, shout)
	if n := a.Metrics().Snapshot().InputConsumed; n != 0 {
		t.Errorf("script consumed outside a viewport: %d", n)
	}
	moveTo(t, a, mouse.Position{X: 2, Y: 2})
	handle(t, a, shout)
	if n := a.Metrics().Snapshot().InputConsumed; n != 1 {
		t.Errorf("consumed = %d, want the script to consume", n)
	}

	orbit, _ := a.Command(app.CmdOrbit)
	var buttons []mouse.Button
	for _, b := range a.Dispatcher().MouseBindings() {
		if b.Command == orbit && b.Kind == binding.KindMouseDrag {
			buttons = append(buttons, b.Button)
		}
	}
	if len(buttons) != 1 || buttons[0] != mouse.ButtonRight {
		t.Errorf("orbit buttons = %v, want only right", buttons)
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(cfg *config.Config)
		want  error
	}{
		{"unknown command", func(cfg *config.Config) {
			cfg.Input.Bindings = []config.BindingConfig{{Command: "nope", Kind: "key", Trigger: "x"}}
		}, app.ErrUnknownCommand},
		{"bad trigger", func(cfg *config.Config) {
			cfg.Input.Bindings = []config.BindingConfig{{Command: app.CmdSelect, Kind: "click", Trigger: "thumb"}}
		}, app.ErrInitialization},
		{"missing script function", func(cfg *config.Config) {
			cfg.Scripts.Commands = []config.ScriptCommand{{Name: "x", Function: "missing"}}
		}, script.ErrNotFunction},
		{"duplicate command", func(cfg *config.Config) {
			cfg.Scripts.Files = nil
			cfg.Scripts.Commands = []config.ScriptCommand{{Name: app.CmdQuit, Function: "print"}}
		}, app.ErrDuplicateCommand},
		{"missing script file", func(cfg *config.Config) {
			cfg.Scripts.Files = []string{filepath.Join(t.TempDir(), "none.lua")}
		}, app.ErrInitialization},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.setup(cfg)
			a, err := app.New(context.Background(), app.Options{
				Config:   cfg,
				Frontend: frontend.NewHeadless(width, height),
				Logger:   quietLogger(),
			})
			if err == nil {
				_ = a.Close()
				t.Fatal("New should fail")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			var ce *app.ComponentError
			if !errors.As(err, &ce) {
				t.Errorf("err = %v, want a ComponentError", err)
			}
		})
	}

	if _, err := app.New(context.Background(), app.Options{}); !errors.Is(err, app.ErrInitialization) {
		t.Errorf("no front end: err = %v", err)
	}
}

func TestLoadMeshes(t *testing.T) {
	for _, size := range []int{0, 2} {
		cfg := config.Default()
		cfg.GLContext.PoolSize = size
		fe := frontend.NewHeadless(width, height)
		a, err := app.New(context.Background(), app.Options{Config: cfg, Frontend: fe, Logger: quietLogger(), EmptyScene: true})
		if err != nil {
			t.Fatal(err)
		}

		var meshes []*scene.Mesh
		for i := range 5 {
			meshes = append(meshes, scene.NewBox(string(rune('a'+i)), mgl32.Vec3{float32(i), 0, 0}, mgl32.Vec3{1, 1, 1}, mgl32.Vec4{1, 1, 1, 1}))
		}
		if err := a.LoadMeshes(context.Background(), scene.LayerContent, meshes...); err != nil {
			t.Fatalf("pool %d: %v", size, err)
		}
		if n := len(a.Scene().Layer(scene.LayerContent)); n != 5 {
			t.Errorf("pool %d: content = %d meshes", size, n)
		}
		for _, m := range meshes {
			if len(m.Edges) != 24 {
				t.Errorf("pool %d: %s has %d edge indices, want 24", size, m.Name, len(m.Edges))
			}
		}
		if got := a.Contexts().Available(); got != size {
			t.Errorf("pool %d: %d contexts free after loading", size, got)
		}
		_ = a.Close()
	}
}

func TestLoadMeshesAfterClose(t *testing.T) {
	cfg := config.Default()
	a, err := app.New(context.Background(), app.Options{Config: cfg, Frontend: frontend.NewHeadless(width, height), Logger: quietLogger(), EmptyScene: true})
	if err != nil {
		t.Fatal(err)
	}
	a.Contexts().Close()
	err = a.LoadMeshes(context.Background(), scene.LayerContent, scene.NewQuad("q", mgl32.Vec3{}, 1, 1, mgl32.Vec4{1, 1, 1, 1}))
	if err == nil || !strings.Contains(err.Error(), "prepare q") {
		t.Errorf("err = %v, want a prepare failure", err)
	}
	if a.Scene().Find("q") != nil {
		t.Error("failed mesh was added")
	}
	_ = a.Close()
}

func TestApplyConfig(t *testing.T) {
	var out bytes.Buffer
	fe := frontend.NewHeadless(width, height)
	a, err := app.New(context.Background(), app.Options{
		Frontend: fe,
		Logger:   app.NewLogger(app.LoggerConfig{Level: app.LogLevelError, Output: &out}),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	next := config.Default()
	next.Logging.Level = "warn"
	next.Render.Style.Fill = false
	next.Render.ReverseDepth = true
	a.ApplyConfig(next)

	if a.Logger().Level() != app.LogLevelWarn {
		t.Errorf("level = %v", a.Logger().Level())
	}
	if a.Scene().Viewport(app.MainViewport).Style.Fill {
		t.Error("style not applied")
	}
	if a.Config().Render.ReverseDepth {
		t.Error("reverse depth changed at run time")
	}
	if !strings.Contains(out.String(), "reverse_depth changes on restart") {
		t.Errorf("log = %q", out.String())
	}
	if a.Metrics().Snapshot().Reloads != 1 {
		t.Error("reload not counted")
	}
}

func TestWatchConfigReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenedit.toml")
	if err := os.WriteFile(path, []byte("[render.style]\nfill = true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	idle := newIdle(width, height)
	a, err := app.New(context.Background(), app.Options{
		Config:        cfg,
		ConfigPath:    path,
		WatchConfig:   true,
		Frontend:      idle,
		Logger:        quietLogger(),
		FrameInterval: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	if err := os.WriteFile(path, []byte("[render.style]\nfill = false\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	for a.Metrics().Snapshot().Reloads == 0 {
		select {
		case err := <-done:
			t.Fatalf("Run returned before the reload: %v", err)
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

func TestResize(t *testing.T) {
	a, _ := newApp(t, nil)
	handle(t, a, frontend.Event{Kind: frontend.EventResize, Width: 32, Height: 16})
	if w, h := a.Target().Size(); w != 32 || h != 16 {
		t.Errorf("target = %dx%d", w, h)
	}
	vp := a.Scene().Viewport(app.MainViewport)
	if vp.Width != 32 || vp.Height != 16 {
		t.Errorf("viewport = %dx%d", vp.Width, vp.Height)
	}
	if err := a.RenderFrame(); err != nil {
		t.Fatal(err)
	}
}

func newIdle(w, h int) *frontend.Headless {
	return frontend.NewHeadless(w, h).Hold()
}

func TestRunStops(t *testing.T) {
	t.Run("max frames", func(t *testing.T) {
		fe := newIdle(width, height)
		a, err := app.New(context.Background(), app.Options{
			Frontend:      fe,
			Logger:        quietLogger(),
			FrameInterval: time.Millisecond,
			MaxFrames:     5,
		})
		if err != nil {
			t.Fatal(err)
		}
		defer a.Close()
		if err := a.Run(context.Background()); err != nil {
			t.Fatal(err)
		}
		if fe.Frames() != 5 {
			t.Errorf("frames = %d, want 5", fe.Frames())
		}
	})

	t.Run("context", func(t *testing.T) {
		fe := newIdle(width, height)
		a, err := app.New(context.Background(), app.Options{Frontend: fe, Logger: quietLogger()})
		if err != nil {
			t.Fatal(err)
		}
		defer a.Close()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := a.Run(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("Run = %v, want context.Canceled", err)
		}
		if fe.Frames() != 1 {
			t.Errorf("frames = %d, want the initial frame only", fe.Frames())
		}
	})
}
