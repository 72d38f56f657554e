package config

import (
	"errors"
	"fmt"
)

// ErrLoadConfig wraps failures reading the .env file, the YAML file or the
// environment.
var ErrLoadConfig = errors.New("load config failed")

// ErrInvalidConfig is the root of every validation failure; the narrower
// kinds below all match it under errors.Is.
var ErrInvalidConfig = errors.New("invalid config")

var (
	// ErrInvalidServer covers listen and session settings.
	ErrInvalidServer = fmt.Errorf("%w: server", ErrInvalidConfig)
	// ErrInvalidClock covers the play length and the frame cadence.
	ErrInvalidClock = fmt.Errorf("%w: clock", ErrInvalidConfig)
	// ErrInvalidOpenness covers the separation-to-score mapping.
	ErrInvalidOpenness = fmt.Errorf("%w: openness", ErrInvalidConfig)
	// ErrInvalidFlight covers ball flight timing.
	ErrInvalidFlight = fmt.Errorf("%w: flight", ErrInvalidConfig)
	// ErrInvalidGrading covers the simulated grader.
	ErrInvalidGrading = fmt.Errorf("%w: grading", ErrInvalidConfig)
)
