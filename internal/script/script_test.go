package script_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/scenedit/internal/binding"
	"github.com/dshills/scenedit/internal/command"
	"github.com/dshills/scenedit/internal/dispatcher"
	"github.com/dshills/scenedit/internal/input/key"
	"github.com/dshills/scenedit/internal/input/mouse"
	"github.com/dshills/scenedit/internal/script"
)

const nudge = `
calls = 0
function nudge(p)
	calls = calls + 1
	return p.x > 10 and p.viewport == "persp"
end
function broken(p)
	error("nope")
end
not_a_function = 3
`

func pointerAt(x, y float64, vp string) *dispatcher.Pointer {
	p := dispatcher.NewPointer()
	p.Moved(mouse.MotionEvent{Position: mouse.Position{X: x, Y: y}, Delta: mouse.Position{X: 1}})
	p.SetViewport(vp)
	return p
}

func TestCall(t *testing.T) {
	e := script.NewEngine()
	defer e.Close()
	if err := e.DoString(nudge); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		x    float64
		vp   string
		want bool
	}{
		{"consumed", 20, "persp", true},
		{"left of threshold", 5, "persp", false},
		{"other viewport", 20, "top", false},
		{"no viewport", 20, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Call("nudge", pointerAt(tt.x, 0, tt.vp))
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Call = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCallErrors(t *testing.T) {
	e := script.NewEngine()
	defer e.Close()
	if err := e.DoString(nudge); err != nil {
		t.Fatal(err)
	}

	if _, err := e.Call("missing", nil); !errors.Is(err, script.ErrNotFunction) {
		t.Errorf("missing err = %v", err)
	}
	if _, err := e.Call("not_a_function", nil); !errors.Is(err, script.ErrNotFunction) {
		t.Errorf("number err = %v", err)
	}
	if _, err := e.Call("broken", nil); err == nil {
		t.Error("error() should surface")
	}
	if !e.Has("nudge") || e.Has("not_a_function") {
		t.Error("Has mismatch")
	}
}

func TestSandbox(t *testing.T) {
	e := script.NewEngine()
	defer e.Close()
	for _, src := range []string{
		`os.exit(1)`,
		`io.write("x")`,
		`dofile("x.lua")`,
		`load("return 1")`,
		`require("os")`,
	} {
		if err := e.DoString(src); err == nil {
			t.Errorf("%s should fail in the sandbox", src)
		}
	}
	if err := e.DoString(`x = string.upper("a") .. math.floor(1.5)`); err != nil {
		t.Errorf("safe libraries unavailable: %v", err)
	}
}

func TestTimeout(t *testing.T) {
	e := script.NewEngine(script.WithTimeout(20 * time.Millisecond))
	defer e.Close()
	if err := e.DoString(`function spin() while true do end end`); err != nil {
		t.Fatal(err)
	}
	start := time.Now()
	if _, err := e.Call("spin", nil); err == nil {
		t.Fatal("runaway script should time out")
	}
	if time.Since(start) > 2*time.Second {
		t.Error("timeout not enforced")
	}
	if err := e.DoString(`y = 1`); err != nil {
		t.Errorf("engine unusable after timeout: %v", err)
	}
}

func TestDoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cmds.lua")
	if err := os.WriteFile(path, []byte(nudge), 0o600); err != nil {
		t.Fatal(err)
	}
	e := script.NewEngine()
	defer e.Close()
	if err := e.DoFile(path); err != nil {
		t.Fatal(err)
	}
	if !e.Has("nudge") {
		t.Error("nudge not defined")
	}
	if err := e.DoFile(filepath.Join(t.TempDir(), "none.lua")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestCommandThroughDispatcher(t *testing.T) {
	var failures []string
	e := script.NewEngine(script.WithErrorHandler(func(name string, err error) {
		failures = append(failures, name)
	}))
	defer e.Close()
	if err := e.DoString(`function mark(p) marked = true return true end
function broken(p) error("nope") end`); err != nil {
		t.Fatal(err)
	}

	reg := command.NewRegistry()
	d := dispatcher.New(dispatcher.DefaultConfig(), reg, nil)
	mark := reg.Register("mark", command.WithCall(e.Command("mark", "mark")))
	bad := reg.Register("bad", command.WithCall(e.Command("bad", "broken")))
	if _, err := d.Bind(mark, binding.KindKey, "Ctrl+M"); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Bind(bad, binding.KindKey, "Ctrl+B"); err != nil {
		t.Fatal(err)
	}

	if !d.OnKey(key.RunePress('m', key.ModCtrl)) {
		t.Error("scripted command should consume the key")
	}
	if err := e.DoString(`assert(marked)`); err != nil {
		t.Errorf("script did not run: %v", err)
	}

	if d.OnKey(key.RunePress('b', key.ModCtrl)) {
		t.Error("failing script should not consume")
	}
	if len(failures) != 1 || failures[0] != "bad" {
		t.Errorf("failures = %v", failures)
	}
}

func TestClosed(t *testing.T) {
	e := script.NewEngine()
	e.Close()
	e.Close()
	if err := e.DoString(`x = 1`); !errors.Is(err, script.ErrClosed) {
		t.Errorf("err = %v", err)
	}
	if e.Has("print") {
		t.Error("closed engine has no globals")
	}
}
