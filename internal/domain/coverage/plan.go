package coverage

import (
	"math"

	"github.com/okian/gridiron/internal/domain/field"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/route"
)

// Receiver is what the defense sees of one receiver.
type Receiver struct {
	Runner   route.Runner
	Blocking bool
}

// MatchRule is the conversion a match defender makes after the read.
type MatchRule string

const (
	RuleStay  MatchRule = "STAY"
	RuleCarry MatchRule = "CARRY"
	RuleRob   MatchRule = "ROB"
	RuleTrap  MatchRule = "TRAP"
	RulePoach MatchRule = "POACH"
	RuleHelp  MatchRule = "HELP"
)

// MatchCall is one match defender's decision.
type MatchCall struct {
	Defender model.DefenderID `json:"defender"`
	Rule     MatchRule        `json:"rule"`
	Receiver model.ReceiverID `json:"receiver,omitempty"`
}

const (
	threatScale   = 3.0
	underRadius   = 6.0
	deepRadius    = 10.0
	underPull     = 0.7
	deepPull      = 0.5
	deepCushion   = 3.0
	manShade      = 0.5
	manCushion    = 1.0
	carryCushion  = 1.5
	spySettle     = 0.15
	engageBlend   = 0.1
	engageFront   = 0.8
	readLookback  = 0.05
	pocketCushion = 1.0
)

// Plan is the defense for one snap with every target resolved. All queries
// are pure in t and safe for concurrent readers.
type Plan struct {
	setup    Setup
	params   Params
	recv     map[model.ReceiverID]Receiver
	vertical map[model.ReceiverID]bool
	calls    map[model.DefenderID]MatchCall
	limits   map[model.DefenderID]Limits
	lanes    map[model.DefenderID]route.Path
	tracks   map[model.DefenderID]Track
	ball     float64
}

// NewPlan resolves match reads and integrates every defender over the play.
func NewPlan(st Setup, recv map[model.ReceiverID]Receiver, p Params) *Plan {
	pl := &Plan{
		setup:    st,
		params:   p,
		recv:     recv,
		vertical: make(map[model.ReceiverID]bool, len(recv)),
		calls:    make(map[model.DefenderID]MatchCall),
		limits:   make(map[model.DefenderID]Limits, len(model.Defenders)),
		lanes:    make(map[model.DefenderID]route.Path),
		tracks:   make(map[model.DefenderID]Track, len(model.Defenders)),
		ball:     st.Alignment.BallX,
	}
	for _, r := range model.Receivers {
		pl.vertical[r] = pl.readVertical(r)
	}
	for _, d := range model.Defenders {
		pl.limits[d] = limitsFor(d, p)
	}
	pl.callMatches()
	pl.buildLanes()
	for _, d := range model.Defenders {
		pl.tracks[d] = Integrate(st.Starts[d], p.Seconds, p.StepSeconds, pl.limits[d], func(t float64) (field.Point, float64) {
			return pl.target(d, t)
		})
	}
	return pl
}

func limitsFor(d model.DefenderID, p Params) Limits {
	ratio := p.DBRatio
	switch d.Group() {
	case model.GroupLB:
		ratio = p.LBRatio
	case model.GroupDL:
		ratio = p.DLRatio
	}
	return Limits{MaxSpeed: p.ReceiverSpeed * ratio, MaxAccel: p.MaxAccel, Response: p.Response}
}

// Setup returns the snap's resolved defense.
func (pl *Plan) Setup() Setup { return pl.setup }

// Limits returns a defender's motion limits.
func (pl *Plan) Limits(d model.DefenderID) Limits { return pl.limits[d] }

// Vertical reports whether a receiver read as vertical at the match read.
func (pl *Plan) Vertical(r model.ReceiverID) bool { return pl.vertical[r] }

// Calls returns match decisions in defender order.
func (pl *Plan) Calls() []MatchCall {
	var out []MatchCall
	for _, d := range model.Defenders {
		if c, ok := pl.calls[d]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Target returns where the defender wants to be at normalized time t.
func (pl *Plan) Target(d model.DefenderID, t float64) field.Point {
	p, _ := pl.target(d, field.Clamp01(t))
	return p
}

// Position returns the defender's integrated position at normalized time t.
func (pl *Plan) Position(d model.DefenderID, t float64) field.Point {
	tr, ok := pl.tracks[d]
	if !ok {
		return field.Point{}
	}
	return tr.At(t)
}

// Positions returns every defender's position at t.
func (pl *Plan) Positions(t float64) map[model.DefenderID]field.Point {
	out := make(map[model.DefenderID]field.Point, len(pl.tracks))
	for d, tr := range pl.tracks {
		out[d] = tr.At(t)
	}
	return out
}

func (pl *Plan) eligible(r model.ReceiverID) bool {
	rec, ok := pl.recv[r]
	return ok && !rec.Blocking
}

func (pl *Plan) readVertical(r model.ReceiverID) bool {
	if !pl.eligible(r) {
		return false
	}
	run := pl.recv[r].Runner
	at := run.At(pl.params.ReadT)
	h := at.Sub(run.At(pl.params.ReadT - readLookback))
	return at.Depth() >= pl.params.CarryDepth && h.Y > math.Abs(h.X)
}

func (pl *Plan) callMatches() {
	st := pl.setup
	n := st.Numbering
	sg := n.Strength
	if sg == 0 {
		sg = 1
	}
	vert := func(r model.ReceiverID) bool { return pl.vertical[r] }
	twoHighMatch := st.Scheme == model.Quarters || st.Scheme == model.Palms || st.Scheme == model.Cover6

	for _, d := range model.Defenders {
		role := st.Roles[d]
		if role.Kind != RoleMatch {
			continue
		}
		one, hasOne := n.At(role.Side, 1)
		two, hasTwo := n.At(role.Side, 2)
		hasOne = hasOne && pl.eligible(one)
		hasTwo = hasTwo && pl.eligible(two)
		call := MatchCall{Defender: d, Rule: RuleStay}
		set := func(rule MatchRule, r model.ReceiverID) { call.Rule, call.Receiver = rule, r }

		switch {
		case !d.IsCorner() && twoHighMatch && n.Trips && role.Side != sg:
			// Backside safety against trips: poach #3 or help on the single receiver.
			three, ok := n.At(sg, 3)
			if ok && vert(three) {
				set(RulePoach, three)
			} else if hasOne {
				set(RuleHelp, one)
			}
		case st.Scheme == model.Cover9:
			if d.IsCorner() {
				if hasOne && vert(one) {
					set(RuleCarry, one)
				}
			} else if hasTwo && vert(two) {
				set(RuleCarry, two)
			}
		case st.Scheme == model.Palms:
			trapped := hasTwo && !vert(two)
			if d.IsCorner() {
				switch {
				case trapped:
					set(RuleTrap, two)
				case hasOne && vert(one):
					set(RuleCarry, one)
				}
				break
			}
			switch {
			case hasTwo && vert(two):
				set(RuleCarry, two)
			case trapped && hasOne:
				set(RuleCarry, one)
			case hasOne:
				set(RuleRob, one)
			}
		default:
			if d.IsCorner() {
				if hasOne && vert(one) {
					set(RuleCarry, one)
				}
				break
			}
			switch {
			case hasTwo && vert(two):
				set(RuleCarry, two)
			case hasOne:
				set(RuleRob, one)
			}
		}
		pl.calls[d] = call
	}
}

func (pl *Plan) buildLanes() {
	st := pl.setup
	pocket := st.Alignment.Passer().Add(field.Pt(0, pocketCushion))
	for _, d := range model.Defenders {
		role := st.Roles[d]
		start := st.Starts[d]
		switch role.Kind {
		case RoleBlitz:
			pl.lanes[d] = route.NewPath([]field.Point{start, role.Gap, pocket})
		case RoleRush:
			pl.lanes[d] = route.NewPath([]field.Point{start, field.Pt((start.X+pl.ball)/2, field.LOS-3)})
		}
	}
}

// target is the behavior function: continuous in t except at the press
// release.
func (pl *Plan) target(d model.DefenderID, t float64) (field.Point, float64) {
	st := pl.setup
	role := st.Roles[d]
	start := st.Starts[d]

	if ps, ok := st.Press[d]; ok && ps.Active() && (ps.Frozen || t < ps.Hold) {
		return ps.Jam, 1
	}

	switch role.Kind {
	case RoleMan:
		return pl.manTarget(role.Receiver, start, t, manCushion)
	case RoleZone:
		return pl.zoneTarget(start, role.Zone, t), 1
	case RoleMatch:
		z := pl.zoneTarget(start, role.Zone, t)
		call := pl.calls[d]
		w := field.SmoothStep((t - pl.params.ReadT) / pl.params.ReadBlend)
		if call.Rule == RuleStay || w <= 0 {
			return z, 1
		}
		m, g := pl.matchTarget(call, start, t)
		return z.Lerp(m, w), 1 + (g-1)*w
	case RoleSpy:
		return start.Lerp(role.Zone.Point, field.SmoothStep(t/spySettle)), 1
	case RoleBlitz, RoleRush:
		lane := pl.lanes[d]
		p := lane.At(pl.limits[d].MaxSpeed * pl.params.Seconds * t)
		if role.BlockedBy != "" {
			if rec, ok := pl.recv[role.BlockedBy]; ok {
				engage := rec.Runner.At(t).Add(field.Pt(0, engageFront))
				p = p.Lerp(engage, field.SmoothStep(t/engageBlend))
			}
		}
		return p, 1
	}
	return start, 1
}

func (pl *Plan) manTarget(r model.ReceiverID, fallback field.Point, t, cushion float64) (field.Point, float64) {
	rec, ok := pl.recv[r]
	if !ok {
		return fallback, 1
	}
	in := insideSign(rec.Runner.Path.Start().X, pl.ball)
	pos := rec.Runner.At(t)
	return pos.Add(field.Pt(in*manShade, cushion)), pl.cutGain(rec.Runner, t)
}

// cutGain maps the receiver's cut angle at t onto pursuit gain: 30 degrees
// or less costs nothing, 120 or more costs MaxLag.
func (pl *Plan) cutGain(run route.Runner, t float64) float64 {
	p := pl.params
	span := p.LagMaxAngle - p.LagMinAngle
	if span <= 0 {
		return 1
	}
	angle := run.CutAngle(t, p.LagWindow)
	return 1 - p.MaxLag*field.Clamp01((angle-p.LagMinAngle)/span)
}

func (pl *Plan) matchTarget(c MatchCall, start field.Point, t float64) (field.Point, float64) {
	switch c.Rule {
	case RuleCarry, RulePoach:
		return pl.manTarget(c.Receiver, start, t, carryCushion)
	case RuleTrap:
		return pl.manTarget(c.Receiver, start, t, 0)
	}
	rec, ok := pl.recv[c.Receiver]
	if !ok {
		return start, 1
	}
	pos := rec.Runner.At(t)
	in := insideSign(rec.Runner.Path.Start().X, pl.ball)
	switch c.Rule {
	case RuleRob:
		return field.Pt(pos.X+in*2, field.Clamp(pos.Y-1, field.LOS+8, field.LOS+14)), 1
	case RuleHelp:
		return field.Pt(pos.X+in, math.Max(pos.Y+5, field.LOS+12)), 1
	}
	return start, 1
}

// zoneTarget drops from start to the landmark, then leans toward the
// receivers threatening it.
func (pl *Plan) zoneTarget(start field.Point, lm Landmark, t float64) field.Point {
	p := pl.params
	drop := 1.0
	if p.DropEnd > 0 {
		drop = field.SmoothStep(t / p.DropEnd)
	}
	anchor := lm.Point
	ramp := 0.0
	if p.ThreatBlend > 0 {
		ramp = field.SmoothStep((t - p.DropEnd) / p.ThreatBlend)
	} else if t >= p.DropEnd {
		ramp = 1
	}
	if ramp > 0 {
		threat := pl.threat(anchor, lm.Deep, t)
		if lm.Deep {
			x := anchor.X + (threat.X-anchor.X)*deepPull*ramp
			y := anchor.Y + ramp*(math.Max(anchor.Y, threat.Y+deepCushion)-anchor.Y)
			anchor = field.Pt(x, y)
		} else {
			anchor = anchor.Lerp(threat, underPull*ramp)
		}
	}
	return start.Lerp(anchor, drop)
}

// threat is a softmin-weighted blend of receiver positions around anchor.
// The anchor itself carries a baseline weight so an empty zone holds.
func (pl *Plan) threat(anchor field.Point, deep bool, t float64) field.Point {
	radius := underRadius
	if deep {
		radius = deepRadius
	}
	w0 := math.Exp(-radius / threatScale)
	sum := anchor.Scale(w0)
	total := w0
	for _, r := range model.Receivers {
		if !pl.eligible(r) {
			continue
		}
		pos := pl.recv[r].Runner.At(t)
		w := math.Exp(-pos.Dist(anchor) / threatScale)
		sum = sum.Add(pos.Scale(w))
		total += w
	}
	return sum.Scale(1 / total)
}
