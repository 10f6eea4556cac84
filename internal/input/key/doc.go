// Package key provides keyboard event types and trigger parsing for the
// input system.
//
//   - Key: identifies a keyboard key (special keys, function keys, or runes)
//   - Modifier: a bitmask of modifier keys (Ctrl, Alt, Shift, Meta)
//   - Event: a single press or release with modifiers and timestamp
//
// # Key Specifications
//
// Key bindings read from configuration are written as:
//
//   - Simple keys: "a", "1", "Enter", "F12"
//   - With modifiers: "Ctrl+S", "Alt+F4", "Ctrl+Shift+P"
//   - Vim-style: "<C-s>", "<A-f>", "<Esc>"
package key
