package engine

import "errors"

// Errors returned by engine operations.
var (
	// ErrUnknownAction indicates no action is registered under a name.
	ErrUnknownAction = errors.New("unknown action")

	// ErrNotBindable indicates an internal action was invoked as a key
	// handler.
	ErrNotBindable = errors.New("action is not bindable")

	// ErrDuplicateAction indicates an action name was registered twice.
	ErrDuplicateAction = errors.New("action already registered")

	// ErrBadArgument indicates an action received an argument of the wrong
	// type.
	ErrBadArgument = errors.New("bad argument")
)
