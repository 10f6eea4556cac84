// Package dispatcher routes raw input events to command bindings.
//
// The Dispatcher is the editor view's input hub. It owns two ordered
// binding lists and one piece of cross-event state, the active mouse
// command.
//
// # Keyboard
//
// Key bindings are scanned in registration order. The first binding that
// consumes the event stops the scan. A modifier mismatch is reported to
// hooks as filtered and the scan continues.
//
// # Mouse
//
// Before every mouse event the mouse bindings are stably re-sorted by
// Priority:
//
//	0  the command holding mouse exclusivity
//	1  Active
//	2  Ready
//	3  Inactive
//	4  Disabled
//
// After each binding is evaluated the dispatcher records whether its
// command became (or stopped being) the active mouse command. Only one
// command may hold the slot; when a command claims it every other Ready
// command is forced Inactive.
//
// While the GUI layer wants the mouse, events are dropped unless the
// pointer is over a viewport or a mouse command is already active.
//
// # Threading
//
// The dispatcher is driven from the main thread only. The active mouse
// command slot is the one field that would need synchronization if input
// were ever delivered from several goroutines.
package dispatcher
