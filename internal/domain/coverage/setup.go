package coverage

import (
	"math"
	"sort"
	"strings"

	"github.com/okian/gridiron/internal/domain/field"
	"github.com/okian/gridiron/internal/domain/formation"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/rng"
)

// RoleKind is what a defender does on the play.
type RoleKind string

const (
	RoleMan   RoleKind = "MAN"
	RoleZone  RoleKind = "ZONE"
	RoleMatch RoleKind = "MATCH"
	RoleBlitz RoleKind = "BLITZ"
	RoleSpy   RoleKind = "SPY"
	RoleRush  RoleKind = "RUSH"
)

// Role is one defender's job for the snap.
type Role struct {
	Kind     RoleKind         `json:"kind"`
	Receiver model.ReceiverID `json:"receiver,omitempty"`
	Zone     Landmark         `json:"zone"`
	Gap      field.Point      `json:"gap"`
	// Side is the side whose numbering a match defender reads.
	Side      float64          `json:"side,omitempty"`
	GreenDog  bool             `json:"green_dog,omitempty"`
	BlockedBy model.ReceiverID `json:"blocked_by,omitempty"`
}

// Rushes reports whether the role sends the defender after the passer.
func (r Role) Rushes() bool { return r.Kind == RoleBlitz || r.Kind == RoleRush }

// FireZone names a zone-pressure preset.
type FireZone string

const (
	FireZoneNone   FireZone = ""
	FireZoneNickel FireZone = "FZ_NICKEL"
	FireZoneSam    FireZone = "FZ_SAM"
	FireZoneWill   FireZone = "FZ_WILL"
)

type fireZonePreset struct {
	blitzer, dropper model.DefenderID
}

var fireZones = map[FireZone]fireZonePreset{
	FireZoneNickel: {blitzer: model.Nickel, dropper: model.SLB},
	FireZoneSam:    {blitzer: model.SLB, dropper: model.MLB},
	FireZoneWill:   {blitzer: model.WLB, dropper: model.MLB},
}

// ParseFireZone resolves a preset name; empty and NONE mean no pressure.
func ParseFireZone(s string) (FireZone, bool) {
	key := FireZone(strings.ToUpper(strings.TrimSpace(s)))
	switch key {
	case "", "NONE":
		return FireZoneNone, true
	}
	if _, ok := fireZones[key]; ok {
		return key, true
	}
	return FireZoneNone, false
}

// PressState is a corner's press result for the snap.
type PressState struct {
	Corner   model.DefenderID   `json:"corner"`
	Receiver model.ReceiverID   `json:"receiver,omitempty"`
	Outcome  model.PressOutcome `json:"outcome"`
	Forced   bool               `json:"forced,omitempty"`
	// Hold is the fraction of the play the corner stays on the jam point.
	Hold float64 `json:"hold"`
	// Delay is the receiver's release delay as a fraction of the play.
	Delay float64 `json:"delay"`
	// Frozen pins the receiver for the whole play.
	Frozen bool        `json:"frozen"`
	Jam    field.Point `json:"jam"`
}

// Active reports whether the press affects the play at all.
func (p PressState) Active() bool { return p.Outcome != "" && p.Outcome != model.PressNone }

// Options are the pre-snap inputs to the defense.
type Options struct {
	Scheme      model.CoverageScheme
	Alignment   formation.Alignment
	Numbering   formation.Numbering
	Technique   model.PressTechnique
	ForcedPress map[model.DefenderID]model.PressOutcome
	Rotation    model.RotationMode
	FireZone    FireZone
	Blockers    map[model.ReceiverID]bool
}

// Setup is the defense resolved at the snap: every random draw the play
// needs from the defense has been made.
type Setup struct {
	Scheme      model.CoverageScheme                  `json:"scheme"`
	Alignment   formation.Alignment                   `json:"alignment"`
	Numbering   formation.Numbering                   `json:"numbering"`
	Assignments Assignments                           `json:"assignments"`
	Press       map[model.DefenderID]PressState       `json:"press"`
	Rotation    model.RotationMode                    `json:"rotation"`
	FireZone    FireZone                              `json:"fire_zone,omitempty"`
	Roles       map[model.DefenderID]Role             `json:"roles"`
	Starts      map[model.DefenderID]field.Point      `json:"starts"`
	Blocking    map[model.ReceiverID]model.DefenderID `json:"blocking"`
	Blockers    map[model.ReceiverID]bool             `json:"blockers"`
	// Notes lists inputs the defense ignored.
	Notes []string `json:"notes,omitempty"`
}

// PressOn returns the press on a receiver, if any corner pressed it.
func (s Setup) PressOn(r model.ReceiverID) (PressState, bool) {
	for _, c := range []model.DefenderID{model.LCB, model.RCB} {
		if p, ok := s.Press[c]; ok && p.Receiver == r && p.Active() {
			return p, true
		}
	}
	return PressState{}, false
}

// Spies returns the defenders spying the passer.
func (s Setup) Spies() []model.DefenderID { return s.withKind(RoleSpy) }

// Blitzers returns non-linemen rushing the passer.
func (s Setup) Blitzers() []model.DefenderID { return s.withKind(RoleBlitz) }

func (s Setup) withKind(k RoleKind) []model.DefenderID {
	var out []model.DefenderID
	for _, d := range model.Defenders {
		if s.Roles[d].Kind == k {
			out = append(out, d)
		}
	}
	return out
}

// rotates reports whether the scheme can disguise a one-high shell.
func rotates(s model.CoverageScheme) bool {
	return s == model.Cover1 || s == model.Cover3 || s == model.Cover9
}

// NewSetup resolves the defense for a snap. Draws come from labelled
// sub-streams of s, so each decision is independent of the order in which
// the others are made.
func NewSetup(o Options, s *rng.Stream, p Params) Setup {
	n := o.Numbering
	strength := n.Strength
	if strength == 0 {
		strength = 1
	}
	lm := landmarks{ball: o.Alignment.BallX}
	blockers := make(map[model.ReceiverID]bool, len(o.Blockers))
	for r, on := range o.Blockers {
		if on {
			blockers[r] = true
		}
	}

	st := Setup{
		Scheme:      o.Scheme,
		Alignment:   o.Alignment,
		Numbering:   n,
		Assignments: Assign(n),
		Press:       make(map[model.DefenderID]PressState, 2),
		Roles:       make(map[model.DefenderID]Role, len(model.Defenders)),
		Blocking:    make(map[model.ReceiverID]model.DefenderID),
		Blockers:    blockers,
	}

	st.Rotation = drawRotation(o.Scheme, o.Rotation, s.Sub("rotation"), p)
	if o.Rotation != "" && o.Rotation != model.RotationAuto && o.Rotation != model.RotationNone && !rotates(o.Scheme) {
		st.Notes = append(st.Notes, "rotation ignored: "+string(o.Scheme)+" does not rotate")
	}

	family := o.Scheme.Family()
	st.drawPress(o, s, p)

	switch family {
	case model.FamilyMan:
		st.manRoles(o.Scheme, lm, strength, s.Sub("blitz"), p)
	default:
		st.zoneRoles(o.Scheme, lm, strength)
	}

	if o.FireZone != FireZoneNone {
		preset, ok := fireZones[o.FireZone]
		switch {
		case !ok:
			st.Notes = append(st.Notes, "unknown fire zone "+string(o.FireZone))
		case family != model.FamilyZone:
			st.Notes = append(st.Notes, "fire zone ignored outside zone coverage")
		default:
			vacated := st.Roles[preset.blitzer].Zone
			st.Roles[preset.dropper] = Role{Kind: RoleZone, Zone: vacated}
			st.Roles[preset.blitzer] = Role{Kind: RoleBlitz, Gap: lm.gap(strength * 2)}
			st.FireZone = o.FireZone
		}
	}

	for _, d := range []model.DefenderID{model.LDE, model.LDT, model.RDT, model.RDE} {
		st.Roles[d] = Role{Kind: RoleRush}
	}

	st.Starts = starts(st, lm, strength)
	st.assignBlocks()
	return st
}

func drawRotation(s model.CoverageScheme, mode model.RotationMode, r *rng.Stream, p Params) model.RotationMode {
	if !rotates(s) {
		return model.RotationNone
	}
	switch mode {
	case model.RotationNone, model.RotationStrong, model.RotationWeak:
		return mode
	}
	switch r.Weighted([]float64{p.RotationNone, p.RotationStrong, p.RotationWeak}) {
	case 1:
		return model.RotationStrong
	case 2:
		return model.RotationWeak
	default:
		return model.RotationNone
	}
}

func (st *Setup) drawPress(o Options, s *rng.Stream, p Params) {
	man := o.Scheme.Family() == model.FamilyMan
	if !man && len(o.ForcedPress) > 0 {
		st.Notes = append(st.Notes, "press ignored outside man coverage")
	}
	for _, c := range []model.DefenderID{model.LCB, model.RCB} {
		ps := PressState{Corner: c, Outcome: model.PressNone}
		r, ok := st.Assignments.Receiver(c)
		if !man || !ok || st.Blockers[r] {
			st.Press[c] = ps
			continue
		}
		ps.Receiver = r
		sub := s.Sub("press/" + string(c))
		if forced, ok := o.ForcedPress[c]; ok {
			ps.Outcome, ps.Forced = forced, true
		} else {
			switch o.Technique {
			case model.PressOff:
			case model.PressOn:
				ps.Outcome = drawOutcome(sub, p)
			default:
				if sub.Chance(p.PressChance) {
					ps.Outcome = drawOutcome(sub, p)
				}
			}
		}
		spot := o.Alignment.Spots[r]
		in := insideSign(spot.X, o.Alignment.BallX)
		ps.Jam = field.Pt(spot.X+in*0.3, field.LOS+1)
		switch ps.Outcome {
		case model.PressJamLock:
			ps.Hold, ps.Frozen = 1, true
		case model.PressJamAndRelease:
			ps.Hold, ps.Delay = p.JamReleaseHold, p.JamReleaseHold
		case model.PressWhiff:
			ps.Hold = p.WhiffHold
		}
		st.Press[c] = ps
	}
}

func drawOutcome(s *rng.Stream, p Params) model.PressOutcome {
	switch s.Weighted([]float64{p.JamLockWeight, p.JamReleaseWeight, p.WhiffWeight}) {
	case 0:
		return model.PressJamLock
	case 1:
		return model.PressJamAndRelease
	default:
		return model.PressWhiff
	}
}

// manRoles fills roles for C0/C1. Free linebackers blitz, with at most one
// drawn to spy.
func (st *Setup) manRoles(s model.CoverageScheme, lm landmarks, strength float64, r *rng.Stream, p Params) {
	var extra []model.DefenderID
	for _, d := range model.Defenders {
		if d.Group() == model.GroupDL {
			continue
		}
		if rec, ok := st.Assignments.Receiver(d); ok {
			if st.Blockers[rec] {
				x := field.Clamp(st.Alignment.Spots[rec].X, lm.ball-5, lm.ball+5)
				st.Roles[d] = Role{Kind: RoleBlitz, Gap: field.Pt(x, field.LOS), GreenDog: true}
				continue
			}
			st.Roles[d] = Role{Kind: RoleMan, Receiver: rec}
			continue
		}
		switch {
		case d == model.FS && s == model.Cover1:
			st.Roles[d] = Role{Kind: RoleZone, Zone: lm.deepMiddle()}
		case d.Group() == model.GroupDB:
			depth := 10.0
			if s == model.Cover0 {
				depth = 8
			}
			st.Roles[d] = Role{Kind: RoleZone, Zone: lm.robber(depth)}
		default:
			extra = append(extra, d)
		}
	}

	if st.Rotation == model.RotationWeak {
		st.Roles[model.FS], st.Roles[model.SS] = st.Roles[model.SS], st.Roles[model.FS]
		st.Assignments = swapDefender(st.Assignments, model.FS, model.SS)
	}

	spy := -1
	if len(extra) > 0 && r.Chance(p.SpyChance) {
		spy = r.Intn(len(extra))
	}
	for i, d := range extra {
		if i == spy {
			st.Roles[d] = Role{Kind: RoleSpy, Zone: Landmark{Name: "spy", Point: field.Pt(lm.ball, field.LOS+4.5)}}
			continue
		}
		st.Roles[d] = Role{Kind: RoleBlitz, Gap: lm.gap(blitzGap(d, strength))}
	}
}

func swapDefender(a Assignments, x, y model.DefenderID) Assignments {
	out := make(Assignments, len(a))
	for r, d := range a {
		switch d {
		case x:
			d = y
		case y:
			d = x
		}
		out[r] = d
	}
	return out
}

func blitzGap(d model.DefenderID, strength float64) float64 {
	switch d {
	case model.SLB:
		return strength * 3
	case model.WLB:
		return -strength * 3
	default:
		return strength * 1
	}
}

// zoneRoles fills roles for the zone and match families from the landmark
// tables.
func (st *Setup) zoneRoles(s model.CoverageScheme, lm landmarks, sg float64) {
	w := -sg
	set := func(d model.DefenderID, l Landmark) { st.Roles[d] = Role{Kind: RoleZone, Zone: l} }
	corner := func(side float64) model.DefenderID { return model.CornerFor(side) }

	switch s {
	case model.Cover2, model.Tampa2:
		set(model.LCB, lm.flat(-1))
		set(model.RCB, lm.flat(1))
		set(model.SS, lm.deepHalf(sg))
		set(model.FS, lm.deepHalf(w))
		set(model.Nickel, lm.curl(sg))
		set(model.SLB, lm.hook(sg))
		set(model.MLB, lm.middleHook())
		set(model.WLB, lm.curl(w))
		if s == model.Tampa2 {
			set(model.MLB, lm.pole())
		}
	case model.Cover4, model.Quarters, model.Palms:
		set(model.LCB, lm.quarterOuter(-1))
		set(model.RCB, lm.quarterOuter(1))
		set(model.FS, lm.quarterInner(w))
		set(model.SS, lm.quarterInner(sg))
		set(model.Nickel, lm.flat(sg))
		set(model.SLB, lm.hook(sg))
		set(model.MLB, lm.middleHook())
		set(model.WLB, lm.curlFlat(w))
	case model.Cover6:
		set(corner(sg), lm.quarterOuter(sg))
		set(model.SS, lm.quarterInner(sg))
		set(corner(w), lm.flat(w))
		set(model.FS, lm.deepHalf(w))
		set(model.Nickel, lm.flat(sg))
		set(model.SLB, lm.hook(sg))
		set(model.MLB, lm.middleHook())
		set(model.WLB, lm.curl(w))
	default: // Cover 3 and Cover 9 share the three-deep shell
		set(model.LCB, lm.deepThird(-1))
		set(model.RCB, lm.deepThird(1))
		set(model.SLB, lm.hook(sg))
		set(model.MLB, lm.middleHook())
		if st.Rotation == model.RotationWeak {
			set(model.SS, lm.deepMiddle())
			set(model.FS, lm.curlFlat(w))
			set(model.WLB, lm.hook(w))
			set(model.Nickel, lm.curlFlat(sg))
		} else {
			set(model.FS, lm.deepMiddle())
			set(model.SS, lm.flat(sg))
			set(model.Nickel, lm.curl(sg))
			set(model.WLB, lm.curlFlat(w))
		}
	}

	if s.Family() != model.FamilyMatch {
		return
	}
	match := func(d model.DefenderID, side float64) {
		r := st.Roles[d]
		r.Kind, r.Side = RoleMatch, side
		st.Roles[d] = r
	}
	switch s {
	case model.Quarters, model.Palms:
		match(model.LCB, -1)
		match(model.RCB, 1)
		match(model.SS, sg)
		match(model.FS, w)
	case model.Cover6:
		match(corner(sg), sg)
		match(model.SS, sg)
		if st.Numbering.Trips {
			match(model.FS, w)
		}
	case model.Cover9:
		match(model.LCB, -1)
		match(model.RCB, 1)
		if st.Rotation == model.RotationWeak {
			match(model.Nickel, sg)
		} else {
			match(model.SS, sg)
		}
	}
}

// starts computes pre-snap spots from roles.
func starts(st Setup, lm landmarks, sg float64) map[model.DefenderID]field.Point {
	a, n := st.Alignment, st.Numbering
	out := make(map[model.DefenderID]field.Point, len(model.Defenders))
	man := st.Scheme.Family() == model.FamilyMan
	twoShell := st.Scheme.TwoHigh() || (rotates(st.Scheme) && st.Rotation != model.RotationNone)

	over := func(r model.ReceiverID, shade, depth float64) field.Point {
		spot := a.Spots[r]
		return field.Pt(spot.X+insideSign(spot.X, a.BallX)*shade, field.LOS+depth)
	}

	for _, side := range []float64{-1, 1} {
		c := model.CornerFor(side)
		if ps := st.Press[c]; ps.Active() {
			out[c] = ps.Jam
			continue
		}
		if man {
			if r, ok := st.Assignments.Receiver(c); ok {
				out[c] = over(r, 1, 5)
				continue
			}
		}
		shade, depth := -1.0, 7.0
		switch st.Scheme {
		case model.Cover2, model.Tampa2:
			depth = 5
		case model.Palms:
			depth = 6
		case model.Quarters, model.Cover4, model.Cover6, model.Cover9:
			shade = 1
		}
		if r, ok := n.At(side, 1); ok {
			out[c] = over(r, shade, depth)
		} else {
			out[c] = field.Pt(sideX(side, 12), field.LOS+depth)
		}
	}

	if r, ok := st.Assignments.Receiver(model.Nickel); ok && man {
		out[model.Nickel] = over(r, 1, 4)
	} else if r, ok := n.At(sg, 2); ok {
		out[model.Nickel] = over(r, 1, 5)
	} else {
		out[model.Nickel] = field.Pt(st.Roles[model.Nickel].Zone.Point.X, field.LOS+5)
	}

	out[model.WLB] = field.Pt(lm.ball-sg*4, field.LOS+5)
	out[model.MLB] = field.Pt(lm.ball, field.LOS+5)
	out[model.SLB] = field.Pt(lm.ball+sg*4, field.LOS+5)

	switch {
	case twoShell:
		out[model.FS] = field.Pt(field.CenterX-sg*9, field.LOS+12)
		out[model.SS] = field.Pt(field.CenterX+sg*9, field.LOS+12)
	case st.Scheme == model.Cover0:
		out[model.FS] = field.Pt(lm.ball, field.LOS+8)
		out[model.SS] = field.Pt(lm.ball+sg*6, field.LOS+7)
	default:
		out[model.FS] = field.Pt(field.CenterX, field.LOS+13)
		out[model.SS] = field.Pt(lm.ball+sg*6, field.LOS+8)
	}
	if man {
		for _, d := range []model.DefenderID{model.FS, model.SS} {
			if r, ok := st.Assignments.Receiver(d); ok && !twoShell {
				out[d] = over(r, 1, 6)
			}
		}
	}

	out[model.LDE] = field.Pt(lm.ball-3.5, field.LOS+1)
	out[model.LDT] = field.Pt(lm.ball-1, field.LOS+1)
	out[model.RDT] = field.Pt(lm.ball+1, field.LOS+1)
	out[model.RDE] = field.Pt(lm.ball+3.5, field.LOS+1)

	for d, p := range out {
		out[d] = field.InBounds(p)
	}
	return out
}

// assignBlocks gives each blocking receiver the nearest free blitzer, or the
// nearest lineman when nobody blitzes.
func (st *Setup) assignBlocks() {
	var blockers []model.ReceiverID
	for r := range st.Blockers {
		if _, ok := st.Alignment.Spots[r]; ok {
			blockers = append(blockers, r)
		}
	}
	sort.Slice(blockers, func(i, j int) bool { return receiverIndex(blockers[i]) < receiverIndex(blockers[j]) })

	picked := make(map[model.DefenderID]bool)
	pick := func(from model.ReceiverID, kind RoleKind) (model.DefenderID, bool) {
		spot := st.Alignment.Spots[from]
		best, bestD := model.DefenderID(""), math.Inf(1)
		for _, d := range model.Defenders {
			if picked[d] || st.Roles[d].Kind != kind {
				continue
			}
			if dist := st.Starts[d].Dist(spot); dist < bestD {
				best, bestD = d, dist
			}
		}
		return best, best != ""
	}
	for _, r := range blockers {
		d, ok := pick(r, RoleBlitz)
		if !ok {
			d, ok = pick(r, RoleRush)
		}
		if !ok {
			continue
		}
		picked[d] = true
		role := st.Roles[d]
		role.BlockedBy = r
		st.Roles[d] = role
		st.Blocking[r] = d
	}
}

func receiverIndex(r model.ReceiverID) int {
	for i, id := range model.Receivers {
		if id == r {
			return i
		}
	}
	return len(model.Receivers)
}

// insideSign is +1 when inside is toward larger x for a player at x.
func insideSign(x, ball float64) float64 {
	if x < ball {
		return 1
	}
	return -1
}
