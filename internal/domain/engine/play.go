package engine

import (
	"fmt"
	"math"

	"github.com/okian/gridiron/internal/domain/coverage"
	"github.com/okian/gridiron/internal/domain/field"
	"github.com/okian/gridiron/internal/domain/formation"
	"github.com/okian/gridiron/internal/domain/leverage"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/openness"
	"github.com/okian/gridiron/internal/domain/rng"
	"github.com/okian/gridiron/internal/domain/route"
)

// Settings are the pre-snap calls. They apply at the next snap.
type Settings struct {
	Concept     route.Concept                           `json:"concept"`
	Coverage    model.CoverageScheme                    `json:"coverage"`
	Formation   model.Formation                         `json:"formation"`
	Hash        field.Hash                              `json:"hash"`
	Technique   model.PressTechnique                    `json:"technique"`
	FireZone    coverage.FireZone                       `json:"fire_zone"`
	ForcedPress map[model.DefenderID]model.PressOutcome `json:"forced_press,omitempty"`
	Rotation    model.RotationMode                      `json:"rotation"`
}

// DefaultSettings is curl-flat from two-by-two against Cover 3.
func DefaultSettings() Settings {
	return Settings{
		Concept:   route.DefaultConcept,
		Coverage:  model.Cover3,
		Formation: model.FormationDoubles,
		Hash:      field.HashL,
		Technique: model.PressAuto,
		FireZone:  coverage.FireZoneNone,
		Rotation:  model.RotationAuto,
	}
}

func (s Settings) clone() Settings {
	if s.ForcedPress != nil {
		fp := make(map[model.DefenderID]model.PressOutcome, len(s.ForcedPress))
		for k, v := range s.ForcedPress {
			fp[k] = v
		}
		s.ForcedPress = fp
	}
	return s
}

// Speed holds the tempo settings.
type Speed struct {
	// ReceiverSpeed is the base receiver speed in yards per second.
	ReceiverSpeed float64 `json:"receiver_speed"`
	// BallSpeed scales ball flight.
	BallSpeed float64 `json:"ball_speed"`
	// PlaySeconds is the length of t in [0,1].
	PlaySeconds float64 `json:"play_seconds"`
}

// Play is one snap. Everything in it is fixed at the snap, so every query is
// a pure function of t and safe for concurrent readers.
type Play struct {
	ID        uint64                    `json:"id"`
	Seed      uint64                    `json:"seed"`
	Settings  Settings                  `json:"settings"`
	Speed     Speed                     `json:"speed"`
	Alignment formation.Alignment       `json:"alignment"`
	Numbering formation.Numbering       `json:"numbering"`
	Motions   []formation.Motion        `json:"motions,omitempty"`
	Overrides route.Assignment          `json:"overrides,omitempty"`
	Blockers  map[model.ReceiverID]bool `json:"blockers,omitempty"`

	Keywords route.Assignment                   `json:"keywords"`
	Base     map[model.ReceiverID][]field.Point `json:"base_routes"`
	Routes   map[model.ReceiverID][]field.Point `json:"routes"`
	Leverage map[model.ReceiverID]leverage.Info `json:"leverage"`
	Notes    []string                           `json:"notes,omitempty"`

	runners map[model.ReceiverID]route.Runner
	plan    *coverage.Plan
	stream  *rng.Stream
	params  Params
}

// playInput is everything a snap is built from.
type playInput struct {
	id        uint64
	seed      uint64
	settings  Settings
	speed     Speed
	overrides route.Assignment
	motions   []formation.Motion
	blockers  map[model.ReceiverID]bool
	notes     []string
	cache     *formation.Cache
	params    Params
}

func buildPlay(in playInput) *Play {
	s := in.settings
	pl := &Play{
		ID:        in.id,
		Settings:  s,
		Speed:     in.speed,
		Motions:   append([]formation.Motion(nil), in.motions...),
		Overrides: in.overrides.Clone(),
		Blockers:  make(map[model.ReceiverID]bool),
		Keywords:  make(route.Assignment, len(model.Receivers)),
		Base:      make(map[model.ReceiverID][]field.Point, len(model.Receivers)),
		Routes:    make(map[model.ReceiverID][]field.Point, len(model.Receivers)),
		Leverage:  make(map[model.ReceiverID]leverage.Info, len(model.Receivers)),
		Notes:     append([]string(nil), in.notes...),
		runners:   make(map[model.ReceiverID]route.Runner, len(model.Receivers)),
	}
	for r, on := range in.blockers {
		if on {
			pl.Blockers[r] = true
		}
	}

	p := in.params
	p.Coverage.ReceiverSpeed = in.speed.ReceiverSpeed
	p.Coverage.Seconds = in.speed.PlaySeconds
	p.Flight.BallSpeed = in.speed.BallSpeed
	pl.params = p

	res := in.cache.Resolve(s.Formation, s.Hash)
	if !res.Known {
		pl.Notes = append(pl.Notes, fmt.Sprintf("unknown formation %q, using %s", s.Formation, res.Alignment.Formation))
		pl.Settings.Formation = res.Alignment.Formation
	}
	align, numbering := res.Alignment, res.Numbering
	moved := false
	for _, m := range pl.Motions {
		next, ok := formation.ApplyMotion(align, m)
		if !ok {
			pl.Notes = append(pl.Notes, fmt.Sprintf("motion %s %s ignored", m.Receiver, m.Type))
			continue
		}
		align, moved = next, true
	}
	if moved {
		numbering = formation.Number(align)
	}
	pl.Alignment, pl.Numbering = align, numbering

	pl.stream = rng.ForPlay(in.seed, in.id)
	pl.Seed = pl.stream.Seed()

	setup := coverage.NewSetup(coverage.Options{
		Scheme:      s.Coverage,
		Alignment:   align,
		Numbering:   numbering,
		Technique:   s.Technique,
		ForcedPress: s.ForcedPress,
		Rotation:    s.Rotation,
		FireZone:    s.FireZone,
		Blockers:    pl.Blockers,
	}, pl.stream, p.Coverage)
	pl.Notes = append(pl.Notes, setup.Notes...)

	gen := route.NewGenerator(route.WithDepths(p.Depths))
	assigned := route.Routes(s.Concept)
	center := align.Center()
	recv := make(map[model.ReceiverID]coverage.Receiver, len(model.Receivers))
	for _, r := range model.Receivers {
		start, ok := align.Spots[r]
		if !ok {
			continue
		}
		kw := assigned[r]
		if o, ok := pl.Overrides[r]; ok {
			if pl.Blockers[r] {
				pl.Notes = append(pl.Notes, fmt.Sprintf("override on blocker %s ignored", r))
			} else {
				kw = o
			}
		}
		if pl.Blockers[r] {
			kw = route.Block
		}
		if kw == "" {
			kw = route.Check
		}
		pl.Keywords[r] = kw

		base := gen.Generate(kw, start, s.Coverage, start.X < center)
		pl.Base[r] = base
		path := base
		info := leverage.Info{Receiver: r, Side: leverage.None}
		if d, ok := setup.Assignments.Defender(r); ok && !pl.Blockers[r] {
			path, info = leverage.Adjust(s.Coverage, r, d, base, setup.Starts[d], center, p.Leverage)
		}
		pl.Routes[r] = path
		pl.Leverage[r] = info

		run := route.Runner{
			Path:    route.NewPath(path),
			Speed:   in.speed.ReceiverSpeed * r.SpeedFactor(),
			Seconds: in.speed.PlaySeconds,
		}
		if ps, ok := setup.PressOn(r); ok {
			run.Delay, run.Frozen = ps.Delay, ps.Frozen
		}
		pl.runners[r] = run
		recv[r] = coverage.Receiver{Runner: run, Blocking: pl.Blockers[r]}
	}

	pl.plan = coverage.NewPlan(setup, recv, p.Coverage)
	return pl
}

// Setup returns the snap's resolved defense.
func (pl *Play) Setup() coverage.Setup { return pl.plan.Setup() }

// Plan returns the snap's defensive plan.
func (pl *Play) Plan() *coverage.Plan { return pl.plan }

// Eligible reports whether r is a receiver running a route this snap.
func (pl *Play) Eligible(r model.ReceiverID) bool {
	_, ok := pl.runners[r]
	return ok && !pl.Blockers[r]
}

// Runner returns the receiver's route runner.
func (pl *Play) Runner(r model.ReceiverID) (route.Runner, bool) {
	run, ok := pl.runners[r]
	return run, ok
}

// ReceiverAt returns a receiver's position at t.
func (pl *Play) ReceiverAt(r model.ReceiverID, t float64) (field.Point, bool) {
	run, ok := pl.runners[r]
	if !ok {
		return field.Point{}, false
	}
	return run.At(t), true
}

// ReceiversAt returns every receiver's position at t.
func (pl *Play) ReceiversAt(t float64) map[model.ReceiverID]field.Point {
	out := make(map[model.ReceiverID]field.Point, len(pl.runners))
	for r, run := range pl.runners {
		out[r] = run.At(t)
	}
	return out
}

// DefendersAt returns every defender's position at t.
func (pl *Play) DefendersAt(t float64) map[model.DefenderID]field.Point {
	return pl.plan.Positions(t)
}

// Passer returns the quarterback's spot.
func (pl *Play) Passer() field.Point { return pl.Alignment.Passer() }

// Openness measures a receiver at t without touching any state.
func (pl *Play) Openness(r model.ReceiverID, t float64) (openness.Reading, error) {
	p, ok := pl.ReceiverAt(r, t)
	if !ok {
		return openness.Reading{}, ErrUnknownReceiver
	}
	return pl.params.Scale.Measure(r, t, p, pl.DefendersAt(t)), nil
}

// FirstOpen scans forward from t=0 for the earliest time the receiver's
// openness reaches the threshold; ok is false if it never does.
func (pl *Play) FirstOpen(r model.ReceiverID) (float64, bool) {
	if !pl.Eligible(r) {
		return 0, false
	}
	step := pl.params.LookaheadStep
	if step <= 0 {
		step = defaultLookaheadStep
	}
	n := int(math.Ceil(1/step - 1e-9))
	for i := 0; i <= n; i++ {
		t := math.Min(float64(i)*step, 1)
		rd, err := pl.Openness(r, t)
		if err == nil && rd.Score >= pl.params.OpenThreshold {
			return t, true
		}
	}
	return 0, false
}
