package coverage

import (
	"math"

	"github.com/okian/gridiron/internal/domain/field"
)

// Limits bound a defender's motion.
type Limits struct {
	MaxSpeed float64 `json:"max_speed"`
	MaxAccel float64 `json:"max_accel"`
	// Response is the pursuit time constant: the defender wants to close the
	// gap to the target in about this many seconds.
	Response float64 `json:"response"`
}

// State is a defender's live kinematic state.
type State struct {
	Pos field.Point `json:"pos"`
	Vel field.Point `json:"vel"`
}

// Step advances s by dt seconds toward target. gain in [0,1] scales the speed
// the defender is willing to pursue at; cut lag lowers it at receiver breaks.
// Step is pure: it returns the next state and never mutates its input.
func Step(s State, target field.Point, gain, dt float64, l Limits) State {
	if dt <= 0 {
		return s
	}
	resp := l.Response
	if resp <= 0 {
		resp = dt
	}
	desired := target.Sub(s.Pos).Scale(1 / resp).ClampLen(l.MaxSpeed * field.Clamp01(gain))
	dv := desired.Sub(s.Vel).ClampLen(l.MaxAccel * dt)
	vel := s.Vel.Add(dv).ClampLen(l.MaxSpeed)
	return State{Pos: s.Pos.Add(vel.Scale(dt)), Vel: vel}
}

// Track is a defender's integrated path over the whole play, sampled at a
// fixed step in normalized time.
type Track struct {
	pts []field.Point
}

// Integrate runs Step from start over the play. target and gain are pure
// functions of normalized time.
func Integrate(start field.Point, seconds, stepSeconds float64, l Limits, target func(t float64) (field.Point, float64)) Track {
	if seconds <= 0 || stepSeconds <= 0 {
		return Track{pts: []field.Point{start}}
	}
	n := int(math.Ceil(seconds/stepSeconds - 1e-9))
	dt := seconds / float64(n)
	pts := make([]field.Point, n+1)
	pts[0] = start
	s := State{Pos: start}
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		tgt, gain := target(t)
		s = Step(s, tgt, gain, dt, l)
		pts[i] = s.Pos
	}
	return Track{pts: pts}
}

// At returns the interpolated position at normalized time t.
func (tr Track) At(t float64) field.Point {
	n := len(tr.pts) - 1
	if n < 0 {
		return field.Point{}
	}
	if n == 0 {
		return tr.pts[0]
	}
	f := field.Clamp01(t) * float64(n)
	i := int(f)
	if i >= n {
		return tr.pts[n]
	}
	return tr.pts[i].Lerp(tr.pts[i+1], f-float64(i))
}

// Len returns the number of integrated samples.
func (tr Track) Len() int { return len(tr.pts) }
