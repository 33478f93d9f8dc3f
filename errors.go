package umt

import "errors"

// Sentinel errors for engine operations.
var (
	// Configuration errors: fatal to the call, never retried.
	ErrTypeNotRegistered = errors.New("mime type not registered")
	ErrNoParser          = errors.New("no parser registered for mime type")

	// Creation pipeline errors.
	ErrNoMimeType = errors.New("no mime type provided")
	ErrNilNode    = errors.New("nil node")

	// ErrHook wraps every error returned by a creation hook.
	ErrHook = errors.New("creation hook failed")
)
