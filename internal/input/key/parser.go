package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse parses a key specification into a press Event.
//
// Supported formats:
//   - Single character or key name: "a", "1", "Enter", "F12"
//   - With modifiers: "Ctrl+S", "Alt+F4", "Ctrl+Shift+P"
//   - Vim-style: "<C-s>", "<A-F4>", "<Esc>"
func Parse(spec string) (Event, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Event{}, ErrEmptySpec
	}

	var (
		parts []string
		mods  Modifier
	)
	switch {
	case len(spec) > 2 && strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">"):
		parts = strings.Split(spec[1:len(spec)-1], "-")
	case len(spec) > 1 && strings.Contains(spec, "+"):
		parts = strings.Split(spec, "+")
	default:
		parts = []string{spec}
	}

	for _, p := range parts[:len(parts)-1] {
		mod := ModifierFromName(p)
		if mod == ModNone {
			return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
		mods = mods.With(mod)
	}

	last := strings.TrimSpace(parts[len(parts)-1])
	if last == "" {
		return Event{}, fmt.Errorf("%w: %q", ErrInvalidSpec, spec)
	}
	if k := FromName(last); k != KeyNone {
		return Press(k, mods), nil
	}
	runes := []rune(last)
	if len(runes) != 1 {
		return Event{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, last)
	}
	r := runes[0]
	if mods != ModNone {
		r = unicode.ToLower(r)
	}
	return RunePress(r, mods), nil
}

// MustParse parses a key specification and panics on error.
// Use only for known-valid specs in initialization code.
func MustParse(spec string) Event {
	ev, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return ev
}
