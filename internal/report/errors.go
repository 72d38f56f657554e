package report

import "errors"

var (
	// ErrNoTarget is returned when a play has no eligible receiver.
	ErrNoTarget = errors.New("no eligible receiver")
	// ErrNotResolved is returned when a throw never produced a summary.
	ErrNotResolved = errors.New("throw did not resolve")
	// ErrRejected is returned when the engine refused a command.
	ErrRejected = errors.New("command rejected")
	// ErrUnhealthy is returned when the remote service is not serving.
	ErrUnhealthy = errors.New("service unhealthy")
)
