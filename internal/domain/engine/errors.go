package engine

import "errors"

// Rejection reasons. A rejected command is a no-op; these travel in
// Result.Err rather than aborting the play.
var (
	ErrNoPlay             = errors.New("no play has been snapped")
	ErrNoThrowWindow      = errors.New("no throw window is open")
	ErrBallInFlight       = errors.New("ball already in flight")
	ErrClockExpired       = errors.New("play clock expired")
	ErrIneligibleReceiver = errors.New("receiver is blocking")
	ErrUnknownReceiver    = errors.New("unknown receiver")
	ErrUnknownCommand     = errors.New("unknown command")
	ErrPaused             = errors.New("engine is paused")
)
