package openness

import (
	"github.com/okian/gridiron/internal/domain/field"
)

// Depth band of a throw.
type Depth string

const (
	DepthShort Depth = "SHORT"
	DepthMid   Depth = "MID"
	DepthDeep  Depth = "DEEP"
)

// Lane is the horizontal third of a throw.
type Lane string

const (
	LaneLeft   Lane = "LEFT"
	LaneMiddle Lane = "MIDDLE"
	LaneRight  Lane = "RIGHT"
)

// Depth band edges in yards past the line.
const (
	ShortMax = 5.0
	MidMax   = 15.0
)

// Area classifies where a ball is thrown.
type Area struct {
	Depth Depth  `json:"depth"`
	Lane  Lane   `json:"lane"`
	Label string `json:"label"`
}

// Classify returns the area of a target point. Depth bands are measured from
// the line of scrimmage: under 5 is short, 5 to 15 mid, beyond 15 deep.
func Classify(p field.Point) Area {
	var a Area
	switch d := p.Depth(); {
	case d < ShortMax:
		a.Depth = DepthShort
	case d <= MidMax:
		a.Depth = DepthMid
	default:
		a.Depth = DepthDeep
	}
	switch {
	case p.X < field.Width/3:
		a.Lane = LaneLeft
	case p.X > 2*field.Width/3:
		a.Lane = LaneRight
	default:
		a.Lane = LaneMiddle
	}
	a.Label = string(a.Depth) + "_" + string(a.Lane)
	return a
}
