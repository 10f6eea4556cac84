// Package capture records GPU frames on request.
//
// A Capturer brackets one frame. The frame renderer starts it in
// BeginFrame when the capture command fired during the previous frame,
// records every tracker call of that frame and hands them to End.
// Without a capture backend every call is a no-op.
package capture

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/scenedit/internal/gpu"
)

// Errors returned by capturers.
var (
	ErrInProgress = errors.New("capture: capture already in progress")
	ErrNotStarted = errors.New("capture: no capture in progress")
)

// Extension is the file extension of stored captures.
const Extension = ".capture"

// Capturer brackets a captured frame.
type Capturer interface {
	// Available reports whether a capture backend is loaded.
	Available() bool

	// Start begins capturing the given frame.
	Start(frame uint64) error

	// End finishes the capture with the frame's recorded tracker calls.
	End(commands []gpu.Command) error
}

// Noop is the Capturer used when no capture backend exists.
type Noop struct{}

var _ Capturer = Noop{}

// Available implements Capturer.
func (Noop) Available() bool { return false }

// Start implements Capturer.
func (Noop) Start(uint64) error { return nil }

// End implements Capturer.
func (Noop) End([]gpu.Command) error { return nil }

// File is the stored form of a capture.
type File struct {
	ID       string        `json:"id"`
	Frame    uint64        `json:"frame"`
	Started  time.Time     `json:"started"`
	Duration string        `json:"duration"`
	Stats    gpu.Stats     `json:"stats"`
	Commands []gpu.Command `json:"commands"`
}

// Option configures a FileCapturer.
type Option func(*FileCapturer)

// WithViewer launches viewer with the capture path after each capture.
func WithViewer(viewer string) Option {
	return func(c *FileCapturer) {
		c.viewer = viewer
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *FileCapturer) {
		c.now = now
	}
}

// FileCapturer stores captures as <dir>/<uuid>.capture JSON files.
type FileCapturer struct {
	dir    string
	viewer string
	now    func() time.Time

	viewers   sync.WaitGroup
	viewerErr error

	mu      sync.Mutex
	active  bool
	id      uuid.UUID
	frame   uint64
	started time.Time
	last    string
}

var _ Capturer = (*FileCapturer)(nil)

// NewFileCapturer returns a capturer writing into dir.
func NewFileCapturer(dir string, opts ...Option) *FileCapturer {
	c := &FileCapturer{dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Available implements Capturer.
func (c *FileCapturer) Available() bool {
	return c.dir != ""
}

// Start implements Capturer.
func (c *FileCapturer) Start(frame uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		return ErrInProgress
	}
	c.active = true
	c.id = uuid.New()
	c.frame = frame
	c.started = c.now()
	return nil
}

// End implements Capturer.
func (c *FileCapturer) End(commands []gpu.Command) error {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return ErrNotStarted
	}
	c.active = false
	f := File{
		ID:       c.id.String(),
		Frame:    c.frame,
		Started:  c.started,
		Duration: c.now().Sub(c.started).String(),
		Commands: commands,
	}
	c.mu.Unlock()

	for _, cmd := range commands {
		switch cmd.Op {
		case gpu.OpExecute:
			f.Stats.Passes++
		case gpu.OpDraw:
			f.Stats.DrawCalls++
		}
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("capture: create dir: %w", err)
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("capture: encode: %w", err)
	}
	path := filepath.Join(c.dir, f.ID+Extension)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("capture: write: %w", err)
	}

	c.mu.Lock()
	c.last = path
	c.mu.Unlock()

	if c.viewer != "" {
		return c.launchViewer(path)
	}
	return nil
}

// launchViewer starts the viewer on path and reaps it in the background.
func (c *FileCapturer) launchViewer(path string) error {
	cmd := exec.Command(c.viewer, path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("capture: launch viewer: %w", err)
	}
	c.viewers.Add(1)
	go func() {
		defer c.viewers.Done()
		if err := cmd.Wait(); err != nil {
			c.mu.Lock()
			if c.viewerErr == nil {
				c.viewerErr = fmt.Errorf("capture: viewer %s: %w", path, err)
			}
			c.mu.Unlock()
		}
	}()
	return nil
}

// WaitViewers blocks until every launched viewer exited and returns the
// first viewer failure.
func (c *FileCapturer) WaitViewers() error {
	c.viewers.Wait()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewerErr
}

// Last returns the path of the most recent capture.
func (c *FileCapturer) Last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Capturing reports whether a capture is in progress.
func (c *FileCapturer) Capturing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Load reads a stored capture.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("capture: read: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("capture: decode %s: %w", path, err)
	}
	return &f, nil
}
