package formation

import (
	"strings"

	"github.com/okian/gridiron/internal/domain/field"
	"github.com/okian/gridiron/internal/domain/model"
)

// MotionType is a pre-snap movement that finishes before the ball is snapped.
type MotionType string

const (
	// MotionShift relocates the receiver to the slot on the given side.
	MotionShift MotionType = "SHIFT"
	// MotionJet brings the receiver tight behind the tackle on the given side.
	MotionJet MotionType = "JET"
	// MotionOrbit parks the receiver in the backfield on the given side.
	MotionOrbit MotionType = "ORBIT"
)

// ParseMotion resolves a motion type.
func ParseMotion(s string) (MotionType, bool) {
	switch MotionType(strings.ToUpper(strings.TrimSpace(s))) {
	case MotionShift:
		return MotionShift, true
	case MotionJet:
		return MotionJet, true
	case MotionOrbit:
		return MotionOrbit, true
	}
	return "", false
}

// ParseDirection maps L/R onto -1/+1; ok is false for anything else.
func ParseDirection(s string) (float64, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L", "LEFT":
		return -1, true
	case "R", "RIGHT":
		return 1, true
	}
	return 0, false
}

const (
	jetSplit   = 3.0
	jetDepth   = 2.0
	orbitSplit = 2.5
	orbitDepth = 5.5
	crowded    = 1.5
)

// Motion describes one applied pre-snap motion.
type Motion struct {
	Receiver  model.ReceiverID `json:"receiver"`
	Type      MotionType       `json:"type"`
	Direction float64          `json:"direction"`
}

// ApplyMotion returns a copy of a with the receiver moved. The input is never
// modified; unknown receivers leave the alignment unchanged and report false.
func ApplyMotion(a Alignment, m Motion) (Alignment, bool) {
	if _, ok := a.Spots[m.Receiver]; !ok || (m.Direction != -1 && m.Direction != 1) {
		return a, false
	}
	out := a.Clone()
	var dst field.Point
	switch m.Type {
	case MotionShift:
		dst = field.Pt(a.BallX+m.Direction*slotSplit, field.LOS-offBall)
	case MotionJet:
		dst = field.Pt(a.BallX+m.Direction*jetSplit, field.LOS-jetDepth)
	case MotionOrbit:
		dst = field.Pt(a.BallX+m.Direction*orbitSplit, field.LOS-orbitDepth)
	default:
		return a, false
	}
	// Step outward until the spot is clear of teammates.
	for i := 0; i < 4 && occupied(out.Spots, m.Receiver, dst); i++ {
		dst.X += m.Direction * 2
	}
	dst.X = field.Clamp(dst.X, receiverMargin, field.Width-receiverMargin)
	out.Spots[m.Receiver] = dst
	return out, true
}

func occupied(spots AlignMap, self model.ReceiverID, p field.Point) bool {
	for id, q := range spots {
		if id != self && q.Dist(p) < crowded {
			return true
		}
	}
	return false
}
