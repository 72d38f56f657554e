package coverage

import (
	"github.com/okian/gridiron/internal/domain/formation"
	"github.com/okian/gridiron/internal/domain/model"
)

// Assignments maps each receiver to the defender responsible for it in man
// coverage, which is also the likely defender under match coverage.
type Assignments map[model.ReceiverID]model.DefenderID

// Defender returns the receiver's defender.
func (a Assignments) Defender(r model.ReceiverID) (model.DefenderID, bool) {
	d, ok := a[r]
	return d, ok
}

// Receiver returns the receiver a defender is responsible for.
func (a Assignments) Receiver(d model.DefenderID) (model.ReceiverID, bool) {
	for _, r := range model.Receivers {
		if a[r] == d {
			return r, true
		}
	}
	return "", false
}

var fallback = []model.DefenderID{model.Nickel, model.SS, model.MLB, model.WLB, model.SLB}

// Assign derives man assignments from the numbering. Each side is worked
// outside in, strong side first:
//   - #1 goes to that side's corner
//   - on a three-receiver side #2 goes to the nickel and #3 to the outside
//     linebacker on that side
//   - otherwise a tight end goes to the strong safety and anyone else to the
//     nickel
//
// Against a bunch the corner takes the point instead of #1 and the stacked
// receivers go outside in to the nickel and the linebacker, so no defender
// has to fight through the stack at the release.
//
// Backs go to the middle linebacker. A defender already taken falls through
// a fixed chain so every receiver gets someone.
func Assign(n formation.Numbering) Assignments {
	out := make(Assignments, len(model.Receivers))
	taken := make(map[model.DefenderID]bool)
	try := func(r model.ReceiverID, prefs ...model.DefenderID) {
		for _, d := range append(prefs, fallback...) {
			if !taken[d] {
				taken[d] = true
				out[r] = d
				return
			}
		}
	}

	strength := n.Strength
	if strength == 0 {
		strength = 1
	}
	for _, side := range []float64{strength, -strength} {
		ids := n.Side(side)
		if side == strength && n.Bunch && n.Point != "" {
			ids = pointFirst(ids, n.Point)
		}
		for i, r := range ids {
			switch {
			case i == 0:
				try(r, model.CornerFor(side))
			case len(ids) >= 3 && i == 1:
				try(r, model.Nickel)
			case len(ids) >= 3 && i == 2:
				try(r, model.LinebackerFor(side, strength))
			case r == model.RecTE:
				try(r, model.SS)
			default:
				try(r, model.Nickel)
			}
		}
	}
	for _, r := range n.Backfield {
		try(r, model.MLB, model.WLB, model.SLB)
	}
	return out
}

func pointFirst(ids []model.ReceiverID, point model.ReceiverID) []model.ReceiverID {
	out := make([]model.ReceiverID, 0, len(ids))
	out = append(out, point)
	for _, r := range ids {
		if r != point {
			out = append(out, r)
		}
	}
	return out
}
