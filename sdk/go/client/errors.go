package client

import "errors"

// Client-specific errors
var (
	ErrClientClosed     = errors.New("client is closed")
	ErrNotConnected     = errors.New("client is not connected")
	ErrAlreadyConnected = errors.New("client is already connected")
	ErrInvalidConfig    = errors.New("invalid client configuration")
	ErrRequestFailed    = errors.New("request failed")
	ErrSessionRefused   = errors.New("server refused to create a session")
	ErrUnknownWidget    = errors.New("unknown widget")
	ErrNotSubscribed    = errors.New("widget is not subscribed to event")
)
