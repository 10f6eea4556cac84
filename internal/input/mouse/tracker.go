package mouse

import "time"

// Config configures click detection.
type Config struct {
	// DoubleClickTime is the maximum time between clicks for a double-click.
	DoubleClickTime time.Duration

	// DoubleClickDistance is the maximum distance between clicks for a double-click.
	DoubleClickDistance float64
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		DoubleClickTime:     400 * time.Millisecond,
		DoubleClickDistance: 4,
	}
}

// Tracker converts raw platform pointer reports (position plus currently
// held buttons) into ButtonEvent and MotionEvent values. Terminal
// backends only report the held-button set, so press and release are
// derived from transitions of that set.
//
// Tracker is not safe for concurrent use; input is delivered on the main
// thread.
type Tracker struct {
	config Config

	held    map[Button]bool
	lastPos Position
	hasPos  bool

	lastClickButton Button
	lastClickPos    Position
	lastClickTime   time.Time
	clickCount      int
}

// NewTracker creates a tracker with the given configuration.
func NewTracker(config Config) *Tracker {
	return &Tracker{
		config: config,
		held:   make(map[Button]bool),
	}
}

// Update records the latest pointer report and returns the button events
// (in press-then-release order) and the motion event it implies. motion is
// nil when the position did not change.
func (t *Tracker) Update(pos Position, buttons []Button, now time.Time) (events []ButtonEvent, motion *MotionEvent) {
	if t.hasPos && pos != t.lastPos {
		motion = &MotionEvent{Position: pos, Delta: pos.Sub(t.lastPos), Timestamp: now}
	}
	t.lastPos = pos
	t.hasPos = true

	down := make(map[Button]bool, len(buttons))
	for _, b := range buttons {
		down[b] = true
		if !t.held[b] {
			events = append(events, ButtonEvent{
				Button:    b,
				Count:     t.recordClick(b, pos, now),
				Position:  pos,
				Timestamp: now,
			})
		}
	}
	for b := range t.held {
		if !down[b] {
			events = append(events, ButtonEvent{Button: b, Position: pos, Timestamp: now})
		}
	}
	t.held = down
	return events, motion
}

// Held reports whether b is currently held.
func (t *Tracker) Held(b Button) bool {
	return t.held[b]
}

func (t *Tracker) recordClick(b Button, pos Position, now time.Time) int {
	elapsed := now.Sub(t.lastClickTime)
	if t.clickCount > 0 && b == t.lastClickButton &&
		elapsed >= 0 && elapsed <= t.config.DoubleClickTime &&
		pos.Distance(t.lastClickPos) <= t.config.DoubleClickDistance {
		t.clickCount++
	} else {
		t.clickCount = 1
	}
	t.lastClickButton = b
	t.lastClickPos = pos
	t.lastClickTime = now
	return t.clickCount
}
