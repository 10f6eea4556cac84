package dispatcher

import "errors"

// Dispatcher errors.
var (
	// ErrUnknownCommand indicates a binding referenced an unregistered command.
	ErrUnknownCommand = errors.New("dispatcher: unknown command")

	// ErrInvalidTrigger indicates a trigger specification could not be parsed.
	ErrInvalidTrigger = errors.New("dispatcher: invalid trigger")

	// ErrUnknownKind indicates an unsupported binding kind name.
	ErrUnknownKind = errors.New("dispatcher: unknown binding kind")
)
