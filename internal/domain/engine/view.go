package engine

import (
	"maps"

	"github.com/okian/gridiron/internal/domain/coverage"
	"github.com/okian/gridiron/internal/domain/field"
	"github.com/okian/gridiron/internal/domain/flight"
	"github.com/okian/gridiron/internal/domain/formation"
	"github.com/okian/gridiron/internal/domain/leverage"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/route"
)

// Snapshot is a complete, replayable description of one snap: the same
// session seed and snapshot reproduce the play exactly.
type Snapshot struct {
	PlayID      uint64                                  `json:"play_id"`
	SessionSeed uint64                                  `json:"session_seed"`
	Seed        uint64                                  `json:"seed"`
	Concept     route.Concept                           `json:"concept"`
	Coverage    model.CoverageScheme                    `json:"coverage"`
	Formation   model.Formation                         `json:"formation"`
	Hash        field.Hash                              `json:"hash"`
	Technique   model.PressTechnique                    `json:"technique"`
	FireZone    coverage.FireZone                       `json:"fire_zone,omitempty"`
	ForcedPress map[model.DefenderID]model.PressOutcome `json:"forced_press,omitempty"`
	Rotation    model.RotationMode                      `json:"rotation"`
	Alignment   formation.AlignMap                      `json:"alignment"`
	Numbering   formation.Numbering                     `json:"numbering"`
	Keywords    route.Assignment                        `json:"keywords"`
	Routes      map[model.ReceiverID][]field.Point      `json:"routes"`
	Overrides   route.Assignment                        `json:"overrides,omitempty"`
	Motions     []formation.Motion                      `json:"motions,omitempty"`
	Blockers    []model.ReceiverID                      `json:"blockers,omitempty"`
	Speed       Speed                                   `json:"speed"`
}

// Settings are the pre-snap calls that produced the snapshot. Rotation is
// the mode the defense actually played, so an auto draw replays as fixed.
func (s Snapshot) Settings() Settings {
	return Settings{
		Concept:     s.Concept,
		Coverage:    s.Coverage,
		Formation:   s.Formation,
		Hash:        s.Hash,
		Technique:   s.Technique,
		FireZone:    s.FireZone,
		ForcedPress: s.ForcedPress,
		Rotation:    s.Rotation,
	}.clone()
}

// TripsCheck is the backside answer a two-high defense gives to trips.
type TripsCheck string

const (
	TripsPoach TripsCheck = "POACH"
	TripsSolo  TripsCheck = "SOLO"
	TripsMable TripsCheck = "MABLE"
	TripsStub  TripsCheck = "STUB"
	TripsNone  TripsCheck = "NONE"
)

// Insights are derived reads for coaching.
type Insights struct {
	// ShellMOF is what the defense shows before the snap; MOF is what it
	// plays after any rotation.
	ShellMOF   model.MOF                    `json:"shell_mof"`
	MOF        model.MOF                    `json:"mof"`
	TripsCheck TripsCheck                   `json:"trips_check"`
	Rushers    int                          `json:"rushers"`
	Protectors int                          `json:"protectors"`
	HotRead    bool                         `json:"hot_read"`
	FirstOpen  map[model.ReceiverID]float64 `json:"first_open"`
}

// SnapMeta describes the defense's decisions and the derived reads.
type SnapMeta struct {
	PlayID        uint64                                   `json:"play_id"`
	Press         map[model.DefenderID]coverage.PressState `json:"press"`
	Leverage      map[model.ReceiverID]leverage.Info       `json:"leverage"`
	Assignments   coverage.Assignments                     `json:"assignments"`
	Roles         map[model.DefenderID]coverage.Role       `json:"roles"`
	Spies         []model.DefenderID                       `json:"spies,omitempty"`
	Blitzers      []model.DefenderID                       `json:"blitzers,omitempty"`
	Blocking      map[model.ReceiverID]model.DefenderID    `json:"blocking"`
	Rotation      model.RotationMode                       `json:"rotation"`
	FireZone      coverage.FireZone                        `json:"fire_zone,omitempty"`
	Calls         []coverage.MatchCall                     `json:"calls,omitempty"`
	Insights      Insights                                 `json:"insights"`
	Substitutions []string                                 `json:"substitutions,omitempty"`
}

// BallView is the ball as drawn in a frame.
type BallView struct {
	State    flight.State     `json:"state"`
	Position field.Point      `json:"position"`
	Target   model.ReceiverID `json:"target,omitempty"`
	ReleaseT float64          `json:"release_t,omitempty"`
	ArriveT  float64          `json:"arrive_t,omitempty"`
}

// Frame is the play at the engine's current t.
type Frame struct {
	PlayID    uint64                              `json:"play_id"`
	T         float64                             `json:"t"`
	Phase     Phase                               `json:"phase"`
	Paused    bool                                `json:"paused"`
	Receivers map[model.ReceiverID]field.Point    `json:"receivers,omitempty"`
	Defenders map[model.DefenderID]field.Point    `json:"defenders,omitempty"`
	Openness  map[model.ReceiverID]model.Openness `json:"openness,omitempty"`
	Ball      BallView                            `json:"ball"`
	Summary   *model.ThrowSummary                 `json:"summary,omitempty"`
}

// Snapshot describes the current play; ok is false before a snap.
func (e *Engine) Snapshot() (Snapshot, bool) {
	pl := e.play
	if pl == nil {
		return Snapshot{}, false
	}
	s := Snapshot{
		PlayID:      pl.ID,
		SessionSeed: e.seed,
		Seed:        pl.Seed,
		Concept:     pl.Settings.Concept,
		Coverage:    pl.Settings.Coverage,
		Formation:   pl.Settings.Formation,
		Hash:        pl.Settings.Hash,
		Technique:   pl.Settings.Technique,
		FireZone:    pl.Settings.FireZone,
		ForcedPress: pl.Settings.clone().ForcedPress,
		Rotation:    pl.Setup().Rotation,
		Alignment:   pl.Alignment.Spots.Clone(),
		Numbering:   pl.Numbering,
		Keywords:    pl.Keywords.Clone(),
		Routes:      make(map[model.ReceiverID][]field.Point, len(pl.Routes)),
		Overrides:   pl.Overrides.Clone(),
		Motions:     append([]formation.Motion(nil), pl.Motions...),
		Speed:       pl.Speed,
	}
	for r, pts := range pl.Routes {
		s.Routes[r] = append([]field.Point(nil), pts...)
	}
	for _, r := range model.Receivers {
		if pl.Blockers[r] {
			s.Blockers = append(s.Blockers, r)
		}
	}
	return s, true
}

// Meta describes the defense of the current play; ok is false before a snap.
// The maps are copies; changing them leaves the play untouched.
func (e *Engine) Meta() (SnapMeta, bool) {
	pl := e.play
	if pl == nil {
		return SnapMeta{}, false
	}
	st := pl.Setup()
	m := SnapMeta{
		PlayID:        pl.ID,
		Press:         maps.Clone(st.Press),
		Leverage:      maps.Clone(pl.Leverage),
		Assignments:   maps.Clone(st.Assignments),
		Roles:         maps.Clone(st.Roles),
		Spies:         st.Spies(),
		Blitzers:      st.Blitzers(),
		Blocking:      maps.Clone(st.Blocking),
		Rotation:      st.Rotation,
		FireZone:      st.FireZone,
		Calls:         pl.plan.Calls(),
		Insights:      insights(pl),
		Substitutions: append([]string(nil), pl.Notes...),
	}
	return m, true
}

func insights(pl *Play) Insights {
	st := pl.Setup()
	scheme := pl.Settings.Coverage
	in := Insights{
		MOF:        scheme.MOF(),
		ShellMOF:   scheme.MOF(),
		TripsCheck: tripsCheck(scheme, pl.Numbering),
		Rushers:    4 + len(st.Blitzers()),
		Protectors: 5 + len(pl.Blockers),
		FirstOpen:  make(map[model.ReceiverID]float64),
	}
	if st.Rotation == model.RotationStrong || st.Rotation == model.RotationWeak {
		in.ShellMOF = model.MOFOpen
	}
	in.HotRead = in.Rushers > in.Protectors
	for _, r := range model.Receivers {
		if t, ok := pl.FirstOpen(r); ok {
			in.FirstOpen[r] = t
		}
	}
	return in
}

func tripsCheck(s model.CoverageScheme, n formation.Numbering) TripsCheck {
	if !n.Trips {
		return TripsNone
	}
	switch s {
	case model.Quarters:
		return TripsPoach
	case model.Palms:
		return TripsSolo
	case model.Cover6:
		return TripsMable
	case model.Cover4:
		return TripsStub
	default:
		return TripsNone
	}
}

// Frame renders the current play at the engine's t.
func (e *Engine) Frame() Frame {
	f := Frame{PlayID: e.playID, T: e.t, Phase: e.Phase(), Paused: e.paused}
	pl := e.play
	if pl == nil {
		f.Ball = BallView{State: flight.Idle}
		return f
	}
	f.Receivers = pl.ReceiversAt(e.t)
	f.Defenders = pl.DefendersAt(e.t)
	f.Openness = make(map[model.ReceiverID]model.Openness, len(f.Receivers))
	for _, r := range model.Receivers {
		if !pl.Eligible(r) {
			continue
		}
		rd, err := pl.Openness(r, e.t)
		if err != nil {
			continue
		}
		f.Openness[r] = model.Openness{Score: rd.Score, Separation: rd.Separation, Nearest: rd.Nearest}
	}

	state, tr := e.Ball()
	f.Ball = BallView{State: state, Position: pl.Passer()}
	switch state {
	case flight.InFlight:
		f.Ball.Position = tr.At(e.t)
	case flight.Caught, flight.Incomplete:
		f.Ball.Position = tr.Target
	}
	if state != flight.Idle {
		f.Ball.Target, f.Ball.ReleaseT, f.Ball.ArriveT = e.ball.Target(), tr.ReleaseT, tr.ArriveT
	}
	if s, ok := e.Summary(); ok {
		f.Summary = &s
	}
	return f
}
