// Package leverage reads how each defender is shaded on a receiver and bends
// route breaks to exploit it.
package leverage

import (
	"math"

	"github.com/okian/gridiron/internal/domain/field"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/route"
)

// Side is the defender's leverage relative to the receiver.
type Side string

const (
	Inside  Side = "INSIDE"
	Outside Side = "OUTSIDE"
	HeadUp  Side = "HEAD_UP"
	// None means no adjustment was considered (zone coverage or blocker).
	None Side = "NONE"
)

// Params tunes the adjustment, in yards.
type Params struct {
	// ShiftX moves the route away from the defender's shade.
	ShiftX float64 `json:"shift_x"`
	// IntoDepth adjusts the break depth when the route breaks toward the
	// defender: negative breaks it off sooner.
	IntoDepth float64 `json:"into_depth"`
	// AwayDepth adjusts the break depth when the route breaks away from the defender.
	AwayDepth float64 `json:"away_depth"`
	// HeadUpBand is the half-width inside which a defender counts as head-up.
	HeadUpBand float64 `json:"head_up_band"`
	// BreakAngle is the minimum turn, in degrees, that counts as a break.
	BreakAngle float64 `json:"break_angle"`
}

// DefaultParams are the stock adjustment sizes.
var DefaultParams = Params{ShiftX: 1.5, IntoDepth: -1.0, AwayDepth: 0.5, HeadUpBand: 0.5, BreakAngle: 25}

// Info records what the resolver decided for one receiver.
type Info struct {
	Receiver model.ReceiverID `json:"receiver"`
	Defender model.DefenderID `json:"defender,omitempty"`
	Side     Side             `json:"side"`
	ShiftX   float64          `json:"shift_x"`
	ShiftY   float64          `json:"shift_y"`
	Applied  bool             `json:"applied"`
}

// Applies reports whether the scheme's family gets leverage adjustments.
func Applies(s model.CoverageScheme) bool {
	f := s.Family()
	return f == model.FamilyMan || f == model.FamilyMatch
}

// Read returns the defender's leverage on a receiver aligned at recv, with
// center the formation center used to tell inside from outside.
func Read(recv, def field.Point, center float64, band float64) Side {
	inside := 1.0
	if recv.X > center {
		inside = -1
	}
	off := (def.X - recv.X) * inside
	switch {
	case off > band:
		return Inside
	case off < -band:
		return Outside
	default:
		return HeadUp
	}
}

// Adjust bends path against the defender's leverage. The first point never
// moves. Zone coverage, head-up alignment and paths without a break past the
// start return path unchanged.
func Adjust(s model.CoverageScheme, rec model.ReceiverID, def model.DefenderID, path []field.Point, defStart field.Point, center float64, p Params) ([]field.Point, Info) {
	info := Info{Receiver: rec, Defender: def, Side: None}
	if !Applies(s) || len(path) < 2 {
		return path, info
	}
	start := path[0]
	info.Side = Read(start, defStart, center, p.HeadUpBand)
	if info.Side == HeadUp {
		return path, info
	}

	inside := 1.0
	if start.X > center {
		inside = -1
	}
	// Work away from the shade: an inside defender gives up the outside.
	exploit := -inside
	defSide := inside
	if info.Side == Outside {
		exploit = inside
		defSide = -inside
	}

	brk := route.BreakIndex(path, p.BreakAngle)
	dy := 0.0
	if brk < len(path)-1 {
		dx := path[len(path)-1].X - path[brk].X
		if math.Abs(dx) > 1e-9 && sign(dx) == defSide {
			dy = p.IntoDepth
		} else {
			dy = p.AwayDepth
		}
	}

	out := make([]field.Point, len(path))
	out[0] = start
	for i := 1; i < len(path); i++ {
		q := path[i]
		q.X += exploit * p.ShiftX
		if i >= brk && brk < len(path)-1 {
			q.Y += dy
		}
		out[i] = field.InBounds(q)
	}
	info.ShiftX = exploit * p.ShiftX
	info.ShiftY = dy
	info.Applied = true
	return out, info
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
