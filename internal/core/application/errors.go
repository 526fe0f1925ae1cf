package application

import "errors"

var (
	ErrPageNotFound    = errors.New("page not found")
	ErrPageRegistered  = errors.New("page already registered")
	ErrWatchdogRunning = errors.New("watchdog already running")
	ErrInvalidPeriod   = errors.New("watchdog period must be positive")
)
