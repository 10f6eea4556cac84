package frontend

import (
	"image"
	"slices"
	"sync"

	"github.com/dshills/scenedit/internal/rendering"
)

// Headless replays a fixed event script and records presented frames.
// The script is followed by EventQuit unless Hold was called.
type Headless struct {
	mu     sync.Mutex
	width  int
	height int
	script []Event
	events chan Event
	hold   bool
	closed bool

	frames int
	last   *image.RGBA
	labels []rendering.PlacedLabel
}

// NewHeadless returns a width x height front end replaying script.
func NewHeadless(width, height int, script ...Event) *Headless {
	return &Headless{
		width:  width,
		height: height,
		script: script,
		events: make(chan Event, len(script)+1),
	}
}

// Hold keeps the event channel open after the script instead of
// sending EventQuit. It must be called before Init.
func (h *Headless) Hold() *Headless {
	h.hold = true
	return h
}

// Init implements Frontend.
func (h *Headless) Init() error {
	for _, ev := range h.script {
		h.events <- ev
	}
	if !h.hold {
		h.events <- Event{Kind: EventQuit}
	}
	return nil
}

// Size implements Frontend.
func (h *Headless) Size() (int, int) {
	return h.width, h.height
}

// Events implements Frontend.
func (h *Headless) Events() <-chan Event {
	return h.events
}

// Present implements Frontend. The frame is copied.
func (h *Headless) Present(frame *image.RGBA, labels []rendering.PlacedLabel) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	img := image.NewRGBA(frame.Rect)
	copy(img.Pix, frame.Pix)
	h.last = img
	h.labels = slices.Clone(labels)
	h.frames++
	return nil
}

// Frames returns the number of presented frames.
func (h *Headless) Frames() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames
}

// Last returns the last presented frame, nil before the first.
func (h *Headless) Last() *image.RGBA {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

// Labels returns the overlay of the last presented frame.
func (h *Headless) Labels() []rendering.PlacedLabel {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.labels
}

// Close implements Frontend.
func (h *Headless) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.events)
}
