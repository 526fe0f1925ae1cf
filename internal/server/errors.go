package server

import "errors"

// Server-specific errors
var (
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrUnknownAction        = errors.New("unknown action")
	ErrMissingAction        = errors.New("missing action")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrInvalidConfig        = errors.New("invalid server configuration")
	ErrListenerFailed       = errors.New("failed to create listener")
)
