package capture_test

import (
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/scenedit/internal/capture"
	"github.com/dshills/scenedit/internal/command"
	"github.com/dshills/scenedit/internal/dispatcher"
	"github.com/dshills/scenedit/internal/gpu"
	"github.com/dshills/scenedit/internal/input/key"
)

func TestNoop(t *testing.T) {
	var c capture.Capturer = capture.Noop{}
	if c.Available() {
		t.Error("Noop should not be available")
	}
	if err := c.Start(1); err != nil {
		t.Error(err)
	}
	if err := c.End(nil); err != nil {
		t.Error(err)
	}
}

func TestFileCapturer(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	now := start
	c := capture.NewFileCapturer(dir, capture.WithClock(func() time.Time { return now }))

	if !c.Available() {
		t.Fatal("file capturer with a dir should be available")
	}
	if err := c.End(nil); !errors.Is(err, capture.ErrNotStarted) {
		t.Errorf("End before Start err = %v", err)
	}
	if err := c.Start(7); err != nil {
		t.Fatal(err)
	}
	if err := c.Start(8); !errors.Is(err, capture.ErrInProgress) {
		t.Errorf("second Start err = %v", err)
	}
	if !c.Capturing() {
		t.Error("Capturing() = false during capture")
	}

	now = start.Add(16 * time.Millisecond)
	cmds := []gpu.Command{
		{Op: gpu.OpClear},
		{Op: gpu.OpExecute, Pass: "polygon_fill", Shader: "standard"},
		{Op: gpu.OpDraw, Pass: "polygon_fill", Mesh: "box", Count: 12},
	}
	if err := c.End(cmds); err != nil {
		t.Fatal(err)
	}
	if c.Capturing() {
		t.Error("Capturing() = true after End")
	}

	path := c.Last()
	if filepath.Dir(path) != dir || !strings.HasSuffix(path, capture.Extension) {
		t.Fatalf("path = %q", path)
	}
	id := strings.TrimSuffix(filepath.Base(path), capture.Extension)
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("file name %q is not a uuid: %v", id, err)
	}

	f, err := capture.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if f.ID != id || f.Frame != 7 || f.Duration != "16ms" {
		t.Errorf("file = %+v", f)
	}
	if f.Stats.Passes != 1 || f.Stats.DrawCalls != 1 {
		t.Errorf("stats = %+v", f.Stats)
	}
	if len(f.Commands) != 3 || f.Commands[2].Mesh != "box" || f.Commands[2].Count != 12 {
		t.Errorf("commands = %+v", f.Commands)
	}
}

func TestFrameCommand(t *testing.T) {
	d := dispatcher.New(dispatcher.DefaultConfig(), command.NewRegistry(), nil)
	var trigger capture.Trigger

	h, _, err := capture.RegisterFrameCommand(d, &trigger, "")
	if err != nil {
		t.Fatal(err)
	}
	if got := d.Commands().Name(h); got != capture.CommandName {
		t.Errorf("name = %q", got)
	}

	if !d.OnKey(key.Press(key.KeyF12, key.ModNone)) {
		t.Error("F12 press should be consumed")
	}
	if !trigger.Pending() {
		t.Fatal("capture not requested")
	}
	if !trigger.Take() {
		t.Error("Take() = false with a pending request")
	}
	if trigger.Take() {
		t.Error("Take() should clear the request")
	}

	if _, _, err := capture.RegisterFrameCommand(d, &trigger, "Ctrl+"); err == nil {
		t.Error("invalid key spec should fail")
	}
}

func TestViewerIsReaped(t *testing.T) {
	tests := []struct {
		viewer  string
		wantErr bool
	}{
		{"true", false},
		{"false", true},
	}

	for _, tt := range tests {
		t.Run(tt.viewer, func(t *testing.T) {
			if _, err := exec.LookPath(tt.viewer); err != nil {
				t.Skipf("%s not available", tt.viewer)
			}
			c := capture.NewFileCapturer(t.TempDir(), capture.WithViewer(tt.viewer))
			if err := c.Start(1); err != nil {
				t.Fatal(err)
			}
			if err := c.End(nil); err != nil {
				t.Fatal(err)
			}
			err := c.WaitViewers()
			if (err != nil) != tt.wantErr {
				t.Errorf("WaitViewers() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
