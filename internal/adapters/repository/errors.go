package repository

import "errors"

// Sentinel kinds for throw store errors.
var (
	ErrNotFound     = errors.New("throw not found")
	ErrInvalidLimit = errors.New("invalid throw limit")
	ErrInvalidEntry = errors.New("throw entry needs a throw id and session id")
)
