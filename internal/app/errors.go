package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("session limit reached")
	ErrBackpressure    = errors.New("command queue full")
	ErrUnknownCommand  = errors.New("unknown command kind")
	ErrSessionClosed   = errors.New("session closed")
)
