// Package flight plans ball trajectories and resolves catches.
package flight

import (
	"github.com/okian/gridiron/internal/domain/field"
)

// Params shapes the ball's flight.
type Params struct {
	// ArmStrength is the ball's ground speed in yards per second at a ball
	// speed of 1.
	ArmStrength float64 `json:"arm_strength"`
	// BallSpeed scales the throw: faster balls fly flatter and arrive sooner.
	BallSpeed float64 `json:"ball_speed"`
	// MinSeconds and MaxSeconds bound the flight time.
	MinSeconds float64 `json:"min_seconds"`
	MaxSeconds float64 `json:"max_seconds"`
	// ArcHeight is the control point lift, in yards, at a ball speed of 1.
	ArcHeight float64 `json:"arc_height"`
}

// DefaultParams are the stock flight settings.
var DefaultParams = Params{ArmStrength: 20, BallSpeed: 1, MinSeconds: 0.25, MaxSeconds: 2.0, ArcHeight: 4}

// Trajectory is a planned throw as a quadratic Bezier from release to target.
type Trajectory struct {
	Release field.Point `json:"release"`
	Target  field.Point `json:"target"`
	Control field.Point `json:"control"`
	// ReleaseT and ArriveT are normalized play times; ArriveT may pass 1
	// when the ball is thrown late.
	ReleaseT float64 `json:"release_t"`
	ArriveT  float64 `json:"arrive_t"`
	Seconds  float64 `json:"seconds"`
}

// Plan builds the trajectory for a throw released at releaseT of a play
// lasting playSeconds.
func Plan(release, target field.Point, releaseT, playSeconds float64, p Params) Trajectory {
	speed := p.BallSpeed
	if speed <= 0 {
		speed = 1
	}
	arm := p.ArmStrength
	if arm <= 0 {
		arm = DefaultParams.ArmStrength
	}
	secs := release.Dist(target) / (arm * speed)
	secs = field.Clamp(secs, p.MinSeconds, p.MaxSeconds)

	mid := release.Lerp(target, 0.5)
	control := mid.Add(field.Pt(0, p.ArcHeight/speed))

	arrive := releaseT
	if playSeconds > 0 {
		arrive += secs / playSeconds
	}
	return Trajectory{
		Release:  release,
		Target:   target,
		Control:  control,
		ReleaseT: releaseT,
		ArriveT:  arrive,
		Seconds:  secs,
	}
}

// Progress returns the fraction of the flight complete at t.
func (tr Trajectory) Progress(t float64) float64 {
	span := tr.ArriveT - tr.ReleaseT
	if span <= 0 {
		return 1
	}
	return field.Clamp01((t - tr.ReleaseT) / span)
}

// At returns the ball's position at normalized time t.
func (tr Trajectory) At(t float64) field.Point {
	u := tr.Progress(t)
	a := tr.Release.Lerp(tr.Control, u)
	b := tr.Control.Lerp(tr.Target, u)
	return a.Lerp(b, u)
}

// Arrived reports whether the ball has reached its target at t.
func (tr Trajectory) Arrived(t float64) bool { return t >= tr.ArriveT }
