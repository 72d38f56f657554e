package flight

import (
	"github.com/okian/gridiron/internal/domain/field"
	"github.com/okian/gridiron/internal/domain/rng"
)

// Contest grades how tightly a catch was contested.
type Contest string

const (
	ContestNone     Contest = "NONE"
	ContestLight    Contest = "LIGHT"
	ContestModerate Contest = "MODERATE"
	ContestHeavy    Contest = "HEAVY"
)

// SpotKind says how the ball was spotted after the play.
type SpotKind string

const (
	// SpotCatch marks the ball where it was caught.
	SpotCatch SpotKind = "CATCH"
	// SpotForwardProgress marks a receiver driven back: the ball goes where
	// forward progress stopped, not where the tackle ended.
	SpotForwardProgress SpotKind = "FORWARD_PROGRESS"
	// SpotTackled marks a receiver brought down near the catch.
	SpotTackled SpotKind = "TACKLED"
	// SpotIncomplete returns the ball to the line.
	SpotIncomplete SpotKind = "INCOMPLETE"
)

// CatchParams are the tuned catch constants.
type CatchParams struct {
	Base            float64 `json:"base"`
	HeavyYards      float64 `json:"heavy_yards"`
	ModerateYards   float64 `json:"moderate_yards"`
	LightYards      float64 `json:"light_yards"`
	HeavyPenalty    float64 `json:"heavy_penalty"`
	ModeratePenalty float64 `json:"moderate_penalty"`
	LightPenalty    float64 `json:"light_penalty"`
	StarBonus       float64 `json:"star_bonus"`
	Min             float64 `json:"min"`
	Max             float64 `json:"max"`
	// DrivenBack is the chance a tightly contested catch is driven back
	// rather than tackled on the spot.
	DrivenBack     float64 `json:"driven_back"`
	DriveBackYards float64 `json:"drive_back_yards"`
}

// DefaultCatchParams are the stock catch constants.
var DefaultCatchParams = CatchParams{
	Base:            0.92,
	HeavyYards:      1,
	ModerateYards:   2,
	LightYards:      3,
	HeavyPenalty:    0.45,
	ModeratePenalty: 0.25,
	LightPenalty:    0.10,
	StarBonus:       0.05,
	Min:             0.02,
	Max:             0.99,
	DrivenBack:      0.5,
	DriveBackYards:  1.5,
}

// Contest classifies separation at the catch point.
func (p CatchParams) Contest(sep float64) Contest {
	switch {
	case sep < p.HeavyYards:
		return ContestHeavy
	case sep < p.ModerateYards:
		return ContestModerate
	case sep < p.LightYards:
		return ContestLight
	default:
		return ContestNone
	}
}

// Probability returns the catch probability for a separation.
func (p CatchParams) Probability(sep float64, star bool) float64 {
	prob := p.Base
	switch p.Contest(sep) {
	case ContestHeavy:
		prob -= p.HeavyPenalty
	case ContestModerate:
		prob -= p.ModeratePenalty
	case ContestLight:
		prob -= p.LightPenalty
	}
	if star {
		prob += p.StarBonus
	}
	return field.Clamp(prob, p.Min, p.Max)
}

// Outcome is a resolved catch attempt.
type Outcome struct {
	Caught      bool        `json:"caught"`
	Probability float64     `json:"probability"`
	Roll        float64     `json:"roll"`
	Contest     Contest     `json:"contest"`
	Separation  float64     `json:"separation"`
	Spot        SpotKind    `json:"spot"`
	SpotPoint   field.Point `json:"spot_point"`
	// Actual is where the receiver ended up; it differs from SpotPoint only
	// when the receiver was driven back.
	Actual field.Point `json:"actual"`
}

// Resolve decides a catch at point with the given separation. Draws come
// from s in a fixed order so identical inputs resolve identically.
func Resolve(sep float64, star bool, point field.Point, s *rng.Stream, p CatchParams) Outcome {
	o := Outcome{
		Probability: p.Probability(sep, star),
		Contest:     p.Contest(sep),
		Separation:  sep,
	}
	o.Roll = s.Float64()
	o.Caught = o.Roll < o.Probability
	if !o.Caught {
		o.Spot = SpotIncomplete
		o.SpotPoint = field.Pt(point.X, field.LOS)
		o.Actual = point
		return o
	}

	o.Spot, o.SpotPoint, o.Actual = SpotCatch, point, point
	if o.Contest == ContestHeavy || o.Contest == ContestModerate {
		if s.Chance(p.DrivenBack) {
			o.Spot = SpotForwardProgress
			o.Actual = field.InBounds(point.Sub(field.Pt(0, p.DriveBackYards)))
		} else {
			o.Spot = SpotTackled
		}
	}
	return o
}
