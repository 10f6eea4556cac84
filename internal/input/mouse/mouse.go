// Package mouse defines the mouse events delivered to the command
// dispatcher and a tracker that derives them from raw platform input.
package mouse

import (
	"fmt"
	"math"
	"time"

	"github.com/dshills/scenedit/internal/input/key"
)

// Button represents a mouse button.
type Button uint8

const (
	// ButtonNone indicates no button.
	ButtonNone Button = iota
	// ButtonLeft is the primary (left) mouse button.
	ButtonLeft
	// ButtonMiddle is the middle mouse button (scroll wheel click).
	ButtonMiddle
	// ButtonRight is the secondary (right) mouse button.
	ButtonRight
	// ButtonX1 is the back navigation button (mouse button 4).
	ButtonX1
	// ButtonX2 is the forward navigation button (mouse button 5).
	ButtonX2
)

// String returns a string representation of the button.
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	case ButtonX1:
		return "x1"
	case ButtonX2:
		return "x2"
	default:
		return "none"
	}
}

// ButtonFromName parses the names produced by Button.String.
func ButtonFromName(name string) (Button, error) {
	for b := ButtonLeft; b <= ButtonX2; b++ {
		if b.String() == name {
			return b, nil
		}
	}
	return ButtonNone, fmt.Errorf("unknown mouse button %q", name)
}

// Position is a pointer coordinate in window pixels.
type Position struct {
	X float64
	Y float64
}

// Sub returns p - o.
func (p Position) Sub(o Position) Position {
	return Position{X: p.X - o.X, Y: p.Y - o.Y}
}

// Distance returns the Manhattan distance (|dx| + |dy|) between two positions.
func (p Position) Distance(o Position) float64 {
	return math.Abs(p.X-o.X) + math.Abs(p.Y-o.Y)
}

// ButtonEvent is a press (Count > 0) or release (Count == 0) of a button.
// For presses Count is the click count (2 for a double click).
type ButtonEvent struct {
	Button    Button
	Count     int
	Position  Position
	Modifiers key.Modifier
	Timestamp time.Time
}

// Pressed reports whether the event is a button press.
func (e ButtonEvent) Pressed() bool {
	return e.Count > 0
}

// MotionEvent reports pointer movement. Delta is relative to the previous
// motion event.
type MotionEvent struct {
	Position  Position
	Delta     Position
	Modifiers key.Modifier
	Timestamp time.Time
}

// WheelEvent reports scroll wheel movement.
type WheelEvent struct {
	Delta     Position
	Modifiers key.Modifier
	Timestamp time.Time
}
