// Package app wires the editor together: configuration, the command
// dispatcher, the scene, the frame renderer, the context pool, scripted
// commands and a front end.
//
// The Application owns a single goroutine that handles input, applies
// configuration reloads and renders frames. Every other component is
// touched only from that goroutine, except the context pool, which lends
// contexts to the workers preparing meshes.
package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/dshills/scenedit/internal/capture"
	"github.com/dshills/scenedit/internal/command"
	"github.com/dshills/scenedit/internal/config"
	"github.com/dshills/scenedit/internal/dispatcher"
	"github.com/dshills/scenedit/internal/frontend"
	"github.com/dshills/scenedit/internal/glcontext"
	"github.com/dshills/scenedit/internal/gpu"
	"github.com/dshills/scenedit/internal/gpu/soft"
	"github.com/dshills/scenedit/internal/renderpass"
	"github.com/dshills/scenedit/internal/rendering"
	"github.com/dshills/scenedit/internal/scene"
	"github.com/dshills/scenedit/internal/script"
)

// MainViewport is the viewport presented by the front end.
const MainViewport = "main"

// DefaultFrameInterval paces continuous redraws.
const DefaultFrameInterval = 16 * time.Millisecond

// Options configures an Application.
type Options struct {
	// Config is the loaded configuration. Defaults are used when nil.
	Config *config.Config

	// ConfigPath is watched for changes when WatchConfig is set.
	ConfigPath  string
	WatchConfig bool

	// Frontend delivers input and presents frames. Required.
	Frontend frontend.Frontend

	// Logger overrides the logger built from the logging section.
	Logger *Logger

	// FrameInterval paces continuous redraws. Zero redraws only after
	// input.
	FrameInterval time.Duration

	// MaxFrames stops Run after that many frames when positive.
	MaxFrames int

	// EmptyScene skips the demo scene.
	EmptyScene bool
}

// viewTarget is the framebuffer of one viewport.
type viewTarget struct {
	target  *soft.Target
	tracker *soft.Tracker
}

// Application is the running editor.
type Application struct {
	cfg       *config.Config
	log       *Logger
	logCloser io.Closer
	metrics   *Metrics

	frontend      frontend.Frontend
	frameInterval time.Duration
	maxFrames     int

	registry   *command.Registry
	pointer    *dispatcher.Pointer
	dispatcher *dispatcher.Dispatcher
	commands   map[string]command.Handle

	scene   *scene.Memory
	editor  *rendering.Editor
	forward *rendering.ForwardRenderer
	ids     *rendering.IDRenderer
	lines   *rendering.LineRenderer
	text    *rendering.TextRenderer

	targets  map[string]*viewTarget
	idTarget *viewTarget

	trigger  *capture.Trigger
	capturer capture.Capturer
	contexts *glcontext.Provider
	scripts  *script.Engine
	watcher  *config.Watcher
	reloads  chan *config.Config

	// hovered is the content mesh id under the pointer as of the last
	// picking pass, 0 for none.
	hovered uint32
	quit    bool
	running atomic.Bool
}

// New builds an application and initializes its front end. On error
// every component created so far is released.
func New(ctx context.Context, opts Options) (*Application, error) {
	if opts.Frontend == nil {
		return nil, initError("frontend", "create", fmt.Errorf("no front end"))
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	app := &Application{
		cfg:           cfg,
		log:           opts.Logger,
		metrics:       NewMetrics(),
		frameInterval: opts.FrameInterval,
		maxFrames:     opts.MaxFrames,
		commands:      make(map[string]command.Handle),
		targets:       make(map[string]*viewTarget),
		trigger:       &capture.Trigger{},
		reloads:       make(chan *config.Config, 1),
	}
	if app.log == nil {
		app.log, app.logCloser = NewLoggerFromConfig(cfg.Logging)
	}
	if err := app.init(ctx, opts); err != nil {
		_ = app.Close()
		return nil, err
	}

	app.log.WithComponent("app").Info("started: %d commands, %d passes, reverse depth %v",
		app.registry.Len(), app.editor.Catalog().Len(), cfg.Render.ReverseDepth)
	return app, nil
}

func (app *Application) init(ctx context.Context, opts Options) error {
	if err := opts.Frontend.Init(); err != nil {
		return initError("frontend", "init", err)
	}
	app.frontend = opts.Frontend

	app.initDispatcher()
	if err := app.initRendering(); err != nil {
		return err
	}
	app.initContexts()

	if err := app.initScripts(); err != nil {
		return err
	}
	if err := app.registerCommands(); err != nil {
		return err
	}
	if err := app.applyBindings(); err != nil {
		return err
	}

	if !opts.EmptyScene {
		if err := app.loadDemoScene(ctx); err != nil {
			return initError("scene", "load", err)
		}
	}

	if opts.WatchConfig && opts.ConfigPath != "" {
		w, err := config.Watch(opts.ConfigPath, app.queueReload)
		if err != nil {
			return initError("config", "watch", err)
		}
		app.watcher = w
	}
	return nil
}

func (app *Application) initDispatcher() {
	app.registry = command.NewRegistry()
	app.registry.Subscribe(transitionLogger(app.log.WithComponent("command")))
	app.pointer = dispatcher.NewPointer()

	dcfg := dispatcher.DefaultConfig()
	if app.cfg.Input.Metrics {
		dcfg = dcfg.WithMetrics()
	}
	app.dispatcher = dispatcher.New(dcfg, app.registry, app.pointer)
	app.dispatcher.AddHook(outcomeLogger(app.log.WithComponent("input")))
}

func (app *Application) initRendering() error {
	app.scene = scene.NewMemory()
	app.scene.SetLighting(scene.Lighting{
		Lights:  []scene.Light{{Direction: mgl32.Vec3{-0.4, -1, -0.6}, Color: mgl32.Vec3{0.8, 0.8, 0.8}}},
		Ambient: mgl32.Vec3{0.3, 0.3, 0.3},
	})

	w, h := app.frontend.Size()
	if w <= 0 || h <= 0 {
		w, h = app.cfg.Render.Width, app.cfg.Render.Height
	}
	vp := scene.NewViewport(MainViewport, w, h)
	vp.Style = app.cfg.Render.Style.RenderStyle()
	if err := app.scene.AddViewport(vp); err != nil {
		return initError("scene", "viewport", err)
	}
	app.targets[MainViewport] = newViewTarget(w, h)
	app.idTarget = newViewTarget(w, h)

	if app.cfg.Capture.Dir != "" {
		var opts []capture.Option
		if app.cfg.Capture.Viewer != "" {
			opts = append(opts, capture.WithViewer(app.cfg.Capture.Viewer))
		}
		app.capturer = capture.NewFileCapturer(app.cfg.Capture.Dir, opts...)
	} else {
		app.capturer = capture.Noop{}
	}

	app.forward = rendering.NewForwardRenderer()
	app.ids = rendering.NewIDRenderer()
	app.lines = rendering.NewLineRenderer()
	app.text = rendering.NewTextRenderer()

	rcfg := rendering.DefaultConfig()
	rcfg.ReverseDepth = app.cfg.Render.ReverseDepth
	app.editor = rendering.New(rcfg, rendering.Deps{
		Scene:    app.scene,
		Forward:  app.forward,
		ID:       app.ids,
		Lines:    app.lines,
		Text:     app.text,
		Capturer: app.capturer,
		Capture:  app.trigger,
		Pointer:  app.pointer,
		Logger:   app.log.WithComponent("render"),
	})
	return nil
}

func newViewTarget(w, h int) *viewTarget {
	t := soft.NewTarget(w, h)
	return &viewTarget{target: t, tracker: soft.NewTracker(t)}
}

// initContexts creates the secondary context pool. Secondary contexts
// only prepare resources, so their trackers draw into a single pixel.
func (app *Application) initContexts() {
	app.contexts = glcontext.NewProvider(app.cfg.GLContext.PoolSize, func(int) gpu.StateTracker {
		return soft.NewTracker(soft.NewTarget(1, 1))
	})
}

func (app *Application) initScripts() error {
	log := app.log.WithComponent("script")
	app.scripts = script.NewEngine(
		script.WithTimeout(app.cfg.Scripts.Timeout.Std()),
		script.WithErrorHandler(func(name string, err error) {
			log.Error("command %s: %v", name, err)
		}),
	)
	for _, file := range app.cfg.Scripts.Files {
		if err := app.scripts.DoFile(file); err != nil {
			return initError("scripts", "load", err)
		}
	}
	for _, sc := range app.cfg.Scripts.Commands {
		if !app.scripts.Has(sc.Function) {
			return initError("scripts", "register "+sc.Name,
				fmt.Errorf("%w: %s", script.ErrNotFunction, sc.Function))
		}
		if err := app.register(sc.Name, command.WithCall(app.scripts.Command(sc.Name, sc.Function))); err != nil {
			return err
		}
	}
	return nil
}

// register adds a named command. Names must be unique within the
// application so configured bindings can refer to them.
func (app *Application) register(name string, opts ...command.Option) error {
	if _, ok := app.commands[name]; ok {
		return initError("commands", "register", fmt.Errorf("%w: %s", ErrDuplicateCommand, name))
	}
	app.commands[name] = app.registry.Register(name, opts...)
	return nil
}

// applyBindings binds the configured triggers to commands by name, then
// the default triggers of built-in commands the configuration leaves
// unbound.
func (app *Application) applyBindings() error {
	configured := make(map[string]bool, len(app.cfg.Input.Bindings))
	for _, b := range app.cfg.Input.Bindings {
		configured[b.Command] = true
		h, ok := app.commands[b.Command]
		if !ok {
			return initError("input", "bind", fmt.Errorf("%w: %s", ErrUnknownCommand, b.Command))
		}
		kind, err := dispatcher.ParseKind(b.Kind)
		if err != nil {
			return initError("input", "bind "+b.Command, err)
		}
		if _, err := app.dispatcher.Bind(h, kind, b.Trigger); err != nil {
			return initError("input", "bind "+b.Command, err)
		}
	}
	return app.bindDefaults(configured)
}

// LoadMeshes prepares meshes on pooled contexts and adds them to layer.
// Preparation resolves each mesh's edge list and binds the passes it is
// drawn with on the worker's context. Meshes are added in order once
// every worker finished.
func (app *Application) LoadMeshes(ctx context.Context, layer scene.Layer, meshes ...*scene.Mesh) error {
	if app.contexts.Size() == 0 {
		ctx = glcontext.WithMainThread(ctx)
	}
	catalog := app.editor.Catalog()
	fill := renderpass.Draw(catalog.MustGet(renderpass.PolygonFill), nil)
	edges := renderpass.Draw(catalog.MustGet(renderpass.EdgeLines), nil)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs ErrorList
	)
	for _, m := range meshes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := app.contexts.Do(ctx, func(c *glcontext.Context) error {
				m.Edges = m.EdgeIndices()
				if c != nil && c.Tracker != nil {
					c.Tracker.Execute(fill)
					c.Tracker.Execute(edges)
				}
				return nil
			})
			if err != nil {
				mu.Lock()
				errs.Add(fmt.Errorf("prepare %s: %w", m.Name, err))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if err := errs.AsError(); err != nil {
		return err
	}

	for _, m := range meshes {
		if err := app.scene.Add(layer, m); err != nil {
			return err
		}
	}
	return nil
}

// Close releases every component. It is safe to call on a partially
// built application.
func (app *Application) Close() error {
	var errs ErrorList
	if app.watcher != nil {
		errs.Add(app.watcher.Close())
	}
	if app.scripts != nil {
		app.scripts.Close()
	}
	if app.contexts != nil {
		app.contexts.Close()
	}
	if app.frontend != nil {
		app.frontend.Close()
	}
	if app.logCloser != nil {
		errs.Add(app.logCloser.Close())
	}
	return errs.AsError()
}

// Config returns the active configuration.
func (app *Application) Config() *config.Config { return app.cfg }

// Logger returns the application logger.
func (app *Application) Logger() *Logger { return app.log }

// Metrics returns the frame and input metrics.
func (app *Application) Metrics() *Metrics { return app.metrics }

// Dispatcher returns the input dispatcher.
func (app *Application) Dispatcher() *dispatcher.Dispatcher { return app.dispatcher }

// Pointer returns the pointer state shared with commands.
func (app *Application) Pointer() *dispatcher.Pointer { return app.pointer }

// Scene returns the edited scene.
func (app *Application) Scene() *scene.Memory { return app.scene }

// Editor returns the frame renderer.
func (app *Application) Editor() *rendering.Editor { return app.editor }

// Contexts returns the secondary context pool.
func (app *Application) Contexts() *glcontext.Provider { return app.contexts }

// Capturer returns the frame capturer.
func (app *Application) Capturer() capture.Capturer { return app.capturer }

// Target returns the framebuffer of the main viewport.
func (app *Application) Target() *soft.Target { return app.targets[MainViewport].target }

// Command returns the handle of a named command.
func (app *Application) Command(name string) (command.Handle, bool) {
	h, ok := app.commands[name]
	return h, ok
}
