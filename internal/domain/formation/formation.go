// Package formation resolves named offensive sets into receiver alignments
// and derives the pre-snap numbering and strength the defense keys on.
package formation

import (
	"sort"

	"github.com/okian/gridiron/internal/domain/field"
	"github.com/okian/gridiron/internal/domain/model"
)

// Alignment spacing, in yards.
const (
	wideFromSideline = 9.0
	slotSplit        = 8.5
	tightSplit       = 4.0
	backOffset       = 1.5
	backDepth        = 5.0
	offBall          = 1.0
	onBall           = 0.5
	bunchSplit       = 9.0
	bunchStack       = 1.5
	receiverMargin   = 3.0
	// backfieldDepth separates numbered receivers from backs.
	backfieldDepth = 3.0
)

// AlignMap holds one start point per receiver.
type AlignMap map[model.ReceiverID]field.Point

// Clone returns an independent copy.
func (m AlignMap) Clone() AlignMap {
	out := make(AlignMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Alignment is a resolved formation on a given hash.
type Alignment struct {
	Formation model.Formation `json:"formation"`
	Hash      field.Hash      `json:"hash"`
	BallX     float64         `json:"ball_x"`
	// StrongTag is the designated strong side (-1 left, +1 right) used to
	// break ties when both sides carry the same number of receivers.
	StrongTag float64  `json:"strong_tag"`
	Spots     AlignMap `json:"spots"`
}

// Clone returns a deep copy so callers can adjust spots (motion) without
// touching cached values.
func (a Alignment) Clone() Alignment {
	a.Spots = a.Spots.Clone()
	return a
}

// Center returns the formation's center x, the reference for inside and
// outside on every route.
func (a Alignment) Center() float64 { return a.BallX }

// Passer returns the quarterback's pre-snap spot (shotgun).
func (a Alignment) Passer() field.Point {
	return field.Pt(a.BallX, field.LOS-backDepth)
}

// Align resolves f on hash h. Unknown formations resolve to two-by-two and
// report ok=false.
func Align(f model.Formation, h field.Hash) (Alignment, bool) {
	ok := true
	switch f {
	case model.FormationTrips, model.FormationDoubles, model.FormationBunchWeak:
	default:
		f, ok = model.FormationDoubles, false
	}
	if h != field.HashR {
		h = field.HashL
	}
	ball := field.BallX(h)
	los := field.LOS

	spots := AlignMap{
		model.RecX: field.Pt(wideFromSideline, los-onBall),
		model.RecZ: field.Pt(field.Width-wideFromSideline, los-offBall),
	}
	switch f {
	case model.FormationTrips:
		spots[model.RecSlot] = field.Pt(ball+slotSplit, los-offBall)
		spots[model.RecTE] = field.Pt(ball+tightSplit, los-onBall)
		spots[model.RecRB] = field.Pt(ball-backOffset, los-backDepth)
	case model.FormationDoubles:
		spots[model.RecSlot] = field.Pt(ball-slotSplit, los-offBall)
		spots[model.RecTE] = field.Pt(ball+tightSplit, los-onBall)
		spots[model.RecRB] = field.Pt(ball-backOffset, los-backDepth)
	case model.FormationBunchWeak:
		point := ball - bunchSplit
		spots[model.RecZ] = field.Pt(point, los-onBall)
		spots[model.RecX] = field.Pt(point-bunchStack, los-offBall-bunchStack/2)
		spots[model.RecSlot] = field.Pt(point+bunchStack, los-offBall-bunchStack/2)
		spots[model.RecTE] = field.Pt(ball+tightSplit, los-onBall)
		spots[model.RecRB] = field.Pt(ball+backOffset, los-backDepth)
	}
	for id, p := range spots {
		p.X = field.Clamp(p.X, receiverMargin, field.Width-receiverMargin)
		spots[id] = p
	}

	return Alignment{
		Formation: f,
		Hash:      h,
		BallX:     ball,
		StrongTag: 1,
		Spots:     spots,
	}, ok
}

// Numbering is the defense's pre-snap read of the formation.
type Numbering struct {
	// Left and Right list receivers from the sideline inward: index 0 is #1.
	Left      []model.ReceiverID `json:"left"`
	Right     []model.ReceiverID `json:"right"`
	Backfield []model.ReceiverID `json:"backfield"`
	// Strength is -1 (left) or +1 (right).
	Strength float64 `json:"strength"`
	// Trips is set when one side carries three or more receivers.
	Trips bool `json:"trips"`
	// Bunch is set when the trips side is compressed into a bunch.
	Bunch bool `json:"bunch"`
	// Point is the bunch receiver nearest the line; empty without a bunch.
	Point model.ReceiverID `json:"point,omitempty"`
}

// Side returns the receivers on side s, #1 first.
func (n Numbering) Side(s float64) []model.ReceiverID {
	if s < 0 {
		return n.Left
	}
	return n.Right
}

// At returns the #num receiver on side s.
func (n Numbering) At(s float64, num int) (model.ReceiverID, bool) {
	ids := n.Side(s)
	if num < 1 || num > len(ids) {
		return "", false
	}
	return ids[num-1], true
}

// Of returns the side and number of a receiver; num is 0 for backs.
func (n Numbering) Of(id model.ReceiverID) (side float64, num int) {
	for i, r := range n.Left {
		if r == id {
			return -1, i + 1
		}
	}
	for i, r := range n.Right {
		if r == id {
			return 1, i + 1
		}
	}
	return 0, 0
}

// Number derives numbering and strength from an alignment.
func Number(a Alignment) Numbering {
	var n Numbering
	for _, id := range model.Receivers {
		p, ok := a.Spots[id]
		if !ok {
			continue
		}
		switch {
		case p.Y < field.LOS-backfieldDepth:
			n.Backfield = append(n.Backfield, id)
		case p.X < a.BallX:
			n.Left = append(n.Left, id)
		default:
			n.Right = append(n.Right, id)
		}
	}

	// Outside in: the receiver closest to its sideline is #1 regardless of
	// how many share the side.
	sortSide(n.Left, a.Spots, func(x float64) float64 { return x })
	sortSide(n.Right, a.Spots, func(x float64) float64 { return field.Width - x })

	switch {
	case len(n.Left) > len(n.Right):
		n.Strength = -1
	case len(n.Right) > len(n.Left):
		n.Strength = 1
	default:
		n.Strength = a.StrongTag
		if n.Strength == 0 {
			n.Strength = 1
		}
	}

	strong := n.Side(n.Strength)
	if len(strong) >= 3 {
		n.Trips = true
		n.Bunch = spread(strong, a.Spots) <= 2*bunchStack+0.5
	}
	if n.Bunch {
		n.Point = strong[0]
		for _, id := range strong[1:] {
			if a.Spots[id].Y > a.Spots[n.Point].Y {
				n.Point = id
			}
		}
	}
	return n
}

func sortSide(ids []model.ReceiverID, spots AlignMap, fromSideline func(float64) float64) {
	sort.SliceStable(ids, func(i, j int) bool {
		pi, pj := spots[ids[i]], spots[ids[j]]
		di, dj := fromSideline(pi.X), fromSideline(pj.X)
		if di != dj {
			return di < dj
		}
		// Stacked receivers: the one on the ball is outside.
		if pi.Y != pj.Y {
			return pi.Y > pj.Y
		}
		return ids[i] < ids[j]
	})
}

func spread(ids []model.ReceiverID, spots AlignMap) float64 {
	lo, hi := field.Width, 0.0
	for _, id := range ids {
		x := spots[id].X
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return hi - lo
}
