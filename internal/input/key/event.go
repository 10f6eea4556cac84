package key

import (
	"strings"
	"time"
)

// Event represents a single key press or release.
type Event struct {
	// Key identifies the key.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier

	// Pressed is false for key releases.
	Pressed bool

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Press creates a key press event with the current timestamp.
func Press(k Key, mods Modifier) Event {
	return Event{Key: k, Modifiers: mods, Pressed: true, Timestamp: time.Now()}
}

// Release creates a key release event with the current timestamp.
func Release(k Key, mods Modifier) Event {
	return Event{Key: k, Modifiers: mods, Timestamp: time.Now()}
}

// RunePress creates a press event for a character key.
func RunePress(r rune, mods Modifier) Event {
	return Event{Key: KeyRune, Rune: r, Modifiers: mods, Pressed: true, Timestamp: time.Now()}
}

// SameKey reports whether e and other identify the same physical key,
// ignoring direction and modifiers.
func (e Event) SameKey(other Event) bool {
	if e.Key != other.Key {
		return false
	}
	return e.Key != KeyRune || e.Rune == other.Rune
}

// String returns a canonical string such as "Ctrl+F12" or "Shift+a".
func (e Event) String() string {
	var sb strings.Builder
	if e.Modifiers != ModNone {
		sb.WriteString(e.Modifiers.String())
		sb.WriteByte('+')
	}
	if e.Key == KeyRune {
		sb.WriteRune(e.Rune)
	} else {
		sb.WriteString(e.Key.String())
	}
	return sb.String()
}
