package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/dshills/scenedit/internal/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Input.CaptureKey != "F12" || cfg.GLContext.PoolSize != 2 || cfg.Render.ReverseDepth {
		t.Errorf("defaults = %+v", cfg)
	}
	style := cfg.Render.Style.RenderStyle()
	if !style.Fill || !style.Edges || style.EdgeColor != (mgl32.Vec4{0, 0, 0, 1}) {
		t.Errorf("style = %+v", style)
	}
	if cfg.Scripts.Timeout.Std() != 100*time.Millisecond {
		t.Errorf("timeout = %v", cfg.Scripts.Timeout.Std())
	}
}

const tomlConfig = `
[logging]
level = "debug"

[input]
capture_key = "Ctrl+F12"

[[input.bindings]]
command = "orbit"
kind = "drag"
trigger = "middle"

[[input.bindings]]
command = "save"
kind = "key"
trigger = "Ctrl+S"

[render]
reverse_depth = true

[render.style]
fill = false
edges = true
background = "#ff000080"

[glcontext]
pool_size = 4

[capture]
dir = "/tmp/captures"

[scripts]
files = ["a.lua"]
timeout = "250ms"

[[scripts.commands]]
name = "nudge"
function = "nudge"
`

const yamlConfig = `
logging:
  level: debug
input:
  capture_key: Ctrl+F12
  bindings:
    - command: orbit
      kind: drag
      trigger: middle
    - command: save
      kind: key
      trigger: Ctrl+S
render:
  reverse_depth: true
  style:
    fill: false
    edges: true
    background: "#ff000080"
glcontext:
  pool_size: 4
capture:
  dir: /tmp/captures
scripts:
  files: [a.lua]
  timeout: 250ms
  commands:
    - name: nudge
      function: nudge
`

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"toml", "scenedit.toml", tomlConfig},
		{"yaml", "scenedit.yaml", yamlConfig},
		{"yml", "scenedit.yml", yamlConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load(writeFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Logging.Level != "debug" || cfg.Input.CaptureKey != "Ctrl+F12" {
				t.Errorf("logging/input = %+v %+v", cfg.Logging, cfg.Input)
			}
			if len(cfg.Input.Bindings) != 2 || cfg.Input.Bindings[0].Trigger != "middle" {
				t.Errorf("bindings = %+v", cfg.Input.Bindings)
			}
			if !cfg.Render.ReverseDepth || cfg.Render.Style.Fill || !cfg.Render.Style.Edges {
				t.Errorf("render = %+v", cfg.Render)
			}
			bg := cfg.Render.Style.Background.Vec4()
			if bg.X() != 1 || bg.Y() != 0 || bg.W() < 0.5 || bg.W() > 0.51 {
				t.Errorf("background = %v", bg)
			}
			if cfg.Render.Width != 640 {
				t.Errorf("unset width lost its default: %d", cfg.Render.Width)
			}
			if cfg.GLContext.PoolSize != 4 || cfg.Capture.Dir != "/tmp/captures" {
				t.Errorf("glcontext/capture = %+v %+v", cfg.GLContext, cfg.Capture)
			}
			if cfg.Scripts.Timeout.Std() != 250*time.Millisecond || len(cfg.Scripts.Commands) != 1 {
				t.Errorf("scripts = %+v", cfg.Scripts)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		want error
	}{
		{"missing", func(t *testing.T) string { return filepath.Join(t.TempDir(), "none.toml") }, config.ErrFileNotFound},
		{"extension", func(t *testing.T) string { return writeFile(t, "x.ini", "a=1") }, config.ErrUnknownFormat},
		{"level", func(t *testing.T) string {
			return writeFile(t, "x.toml", "[logging]\nlevel = \"loud\"\n")
		}, config.ErrValidationFailed},
		{"binding kind", func(t *testing.T) string {
			return writeFile(t, "x.toml", "[[input.bindings]]\ncommand = \"a\"\nkind = \"pinch\"\n")
		}, config.ErrValidationFailed},
		{"pool size", func(t *testing.T) string {
			return writeFile(t, "x.toml", "[glcontext]\npool_size = -1\n")
		}, config.ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(tt.path(t))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	_, err := config.Load(writeFile(t, "bad.toml", "[logging\n"))
	var perr *config.ParseError
	if !errors.As(err, &perr) {
		t.Errorf("err = %v, want ParseError", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SCENEDIT_RENDER_REVERSE_DEPTH", "true")
	t.Setenv("SCENEDIT_LOGGING_LEVEL", "warn")
	t.Setenv("SCENEDIT_GLCONTEXT_POOL_SIZE", "8")
	t.Setenv("SCENEDIT_RENDER_STYLE_BACKGROUND", "#00ff00")
	t.Setenv("SCENEDIT_SCRIPTS_TIMEOUT", "1s")

	cfg, err := config.Load(writeFile(t, "scenedit.toml", "[logging]\nlevel = \"debug\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Render.ReverseDepth || cfg.Logging.Level != "warn" || cfg.GLContext.PoolSize != 8 {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.Render.Style.Background.Vec4() != (mgl32.Vec4{0, 1, 0, 1}) {
		t.Errorf("background = %v", cfg.Render.Style.Background.Vec4())
	}
	if cfg.Scripts.Timeout.Std() != time.Second {
		t.Errorf("timeout = %v", cfg.Scripts.Timeout.Std())
	}
}

func TestColor(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  bool
	}{
		{"#ff8000", "#ff8000", false},
		{"#00000080", "#00000080", false},
		{"#ffffffff", "#ffffff", false},
		{"red", "", true},
		{"#123456zz", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := config.ParseColor(tt.in)
			if tt.err {
				if err == nil {
					t.Errorf("ParseColor(%q) should fail", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			out, _ := c.MarshalText()
			if string(out) != tt.want {
				t.Errorf("round trip = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestWatcherReloads(t *testing.T) {
	path := writeFile(t, "scenedit.toml", "[glcontext]\npool_size = 1\n")

	reloaded := make(chan *config.Config, 4)
	w, err := config.Watch(path, func(cfg *config.Config, err error) {
		if err == nil {
			select {
			case reloaded <- cfg:
			default:
			}
		}
	}, config.WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[glcontext]\npool_size = 3\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	timeout := time.After(5 * time.Second)
	for done := false; !done; {
		select {
		case cfg := <-reloaded:
			// A reload may observe the truncated file first.
			done = cfg.GLContext.PoolSize == 3
		case <-timeout:
			t.Fatal("no reload after write")
		}
	}

	if err := w.Close(); err != nil {
		t.Error(err)
	}
	if err := w.Close(); err != nil {
		t.Error(err)
	}
}
