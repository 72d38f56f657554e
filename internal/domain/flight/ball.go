package flight

import (
	"errors"

	"github.com/okian/gridiron/internal/domain/model"
)

// State is the ball's lifecycle state for one throw.
type State string

const (
	Idle       State = "idle"
	InFlight   State = "in_flight"
	Caught     State = "caught"
	Incomplete State = "incomplete"
)

var (
	// ErrNotIdle is returned when launching a ball that is already thrown.
	ErrNotIdle = errors.New("ball is not idle")
	// ErrNotInFlight is returned when landing a ball nobody threw.
	ErrNotInFlight = errors.New("ball is not in flight")
)

// Ball tracks one throw: idle -> in_flight -> caught|incomplete -> idle.
type Ball struct {
	state   State
	traj    Trajectory
	target  model.ReceiverID
	outcome Outcome
}

// State returns the current state; the zero Ball is idle.
func (b *Ball) State() State {
	if b.state == "" {
		return Idle
	}
	return b.state
}

// Trajectory returns the active or last trajectory.
func (b *Ball) Trajectory() Trajectory { return b.traj }

// Target returns the receiver the ball was thrown to.
func (b *Ball) Target() model.ReceiverID { return b.target }

// Outcome returns the landed outcome; ok is false until the ball lands.
func (b *Ball) Outcome() (Outcome, bool) {
	s := b.State()
	return b.outcome, s == Caught || s == Incomplete
}

// Launch puts the ball in the air.
func (b *Ball) Launch(tr Trajectory, target model.ReceiverID) error {
	if b.State() != Idle {
		return ErrNotIdle
	}
	b.state, b.traj, b.target, b.outcome = InFlight, tr, target, Outcome{}
	return nil
}

// Land resolves an in-flight ball.
func (b *Ball) Land(o Outcome) error {
	if b.State() != InFlight {
		return ErrNotInFlight
	}
	b.outcome = o
	if o.Caught {
		b.state = Caught
	} else {
		b.state = Incomplete
	}
	return nil
}

// Reset discards any throw, in flight or landed, and returns to idle.
func (b *Ball) Reset() { *b = Ball{} }
