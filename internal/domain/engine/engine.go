// Package engine runs the play simulation: it owns the pre-snap calls, builds
// a Play at each snap, advances the play clock and resolves throws.
//
// An Engine is single-threaded. Callers that share one across goroutines
// must serialise access; the Play it hands out is immutable and may be read
// concurrently.
package engine

import (
	"math"
	"time"

	"github.com/okian/gridiron/internal/domain/field"
	"github.com/okian/gridiron/internal/domain/flight"
	"github.com/okian/gridiron/internal/domain/formation"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/openness"
	"github.com/okian/gridiron/internal/domain/route"
)

// Phase is where the current play stands.
type Phase string

const (
	PhasePreSnap  Phase = "PRE_SNAP"
	PhaseLive     Phase = "LIVE"
	PhaseInFlight Phase = "BALL_IN_AIR"
	PhaseResolved Phase = "RESOLVED"
	PhaseExpired  Phase = "EXPIRED"
)

// Engine is one session's simulator.
type Engine struct {
	params    Params
	seed      uint64
	sessionID string
	cache     *formation.Cache
	cacheSize int
	newID     func() string
	now       func() time.Time

	// Pre-snap state, applied at the next snap.
	settings  Settings
	speed     Speed
	overrides route.Assignment
	motions   []formation.Motion
	blockers  map[model.ReceiverID]bool
	notes     []string

	playID  uint64
	play    *Play
	t       float64
	paused  bool
	ball    flight.Ball
	release model.Openness
	summary *model.ThrowSummary
}

// New creates an engine with configuration options.
func New(opts ...Option) *Engine {
	e := &Engine{
		params:    DefaultParams(),
		cacheSize: defaultCacheSize,
		newID:     nanoID,
		now:       time.Now,
		settings:  DefaultSettings(),
		overrides: make(route.Assignment),
		blockers:  make(map[model.ReceiverID]bool),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.cache == nil {
		e.cache = formation.NewCache(formation.WithCapacity(e.cacheSize))
	}
	e.speed = Speed{
		ReceiverSpeed: e.params.Coverage.ReceiverSpeed,
		BallSpeed:     e.params.Flight.BallSpeed,
		PlaySeconds:   e.params.Coverage.Seconds,
	}
	return e
}

// Seed returns the session seed.
func (e *Engine) Seed() uint64 { return e.seed }

// PlayID returns the id of the last snap; 0 before the first.
func (e *Engine) PlayID() uint64 { return e.playID }

// T returns the play clock.
func (e *Engine) T() float64 { return e.t }

// Paused reports whether the clock is paused.
func (e *Engine) Paused() bool { return e.paused }

// Play returns the current play, or nil before a snap.
func (e *Engine) Play() *Play { return e.play }

// Settings returns the calls that apply at the next snap.
func (e *Engine) Settings() Settings { return e.settings.clone() }

// Speed returns the tempo that applies at the next snap.
func (e *Engine) Speed() Speed { return e.speed }

// Params returns the engine's tuning.
func (e *Engine) Params() Params { return e.params }

// Cache returns the session's alignment cache.
func (e *Engine) Cache() *formation.Cache { return e.cache }

// Summary returns the last resolved throw of the current play.
func (e *Engine) Summary() (model.ThrowSummary, bool) {
	if e.summary == nil {
		return model.ThrowSummary{}, false
	}
	return *e.summary, true
}

// Phase returns the current play phase.
func (e *Engine) Phase() Phase {
	if e.play == nil {
		return PhasePreSnap
	}
	switch e.ball.State() {
	case flight.InFlight:
		return PhaseInFlight
	case flight.Caught, flight.Incomplete:
		return PhaseResolved
	}
	if e.t >= 1 {
		return PhaseExpired
	}
	return PhaseLive
}

// SetSettings replaces the pre-snap calls.
func (e *Engine) SetSettings(s Settings) { e.settings = s.clone() }

// SetSpeed replaces the tempo; non-positive fields keep their value.
func (e *Engine) SetSpeed(s Speed) {
	if s.ReceiverSpeed > 0 {
		e.speed.ReceiverSpeed = s.ReceiverSpeed
	}
	if s.BallSpeed > 0 {
		e.speed.BallSpeed = s.BallSpeed
	}
	if s.PlaySeconds > 0 {
		e.speed.PlaySeconds = s.PlaySeconds
	}
}

// SetOverride replaces a receiver's concept route.
func (e *Engine) SetOverride(r model.ReceiverID, kw route.Keyword) { e.overrides[r] = kw }

// ClearOverrides drops every manual route.
func (e *Engine) ClearOverrides() { e.overrides = make(route.Assignment) }

// Overrides returns the manual routes.
func (e *Engine) Overrides() route.Assignment { return e.overrides.Clone() }

// AddMotion queues a pre-snap motion for the next snap.
func (e *Engine) AddMotion(m formation.Motion) { e.motions = append(e.motions, m) }

// ToggleBlocker flips a receiver between running a route and blocking and
// returns the new state.
func (e *Engine) ToggleBlocker(r model.ReceiverID) bool {
	on := !e.blockers[r]
	if on {
		e.blockers[r] = true
	} else {
		delete(e.blockers, r)
	}
	return on
}

// SetRotation sets the coverage rotation mode.
func (e *Engine) SetRotation(m model.RotationMode) { e.settings.Rotation = m }

// Note records a substitution to report with the next snap.
func (e *Engine) Note(msg string) { e.notes = append(e.notes, msg) }

// Snap builds a fresh play from the pre-snap state. Any ball still in the
// air is discarded and the queued motions are consumed.
func (e *Engine) Snap() *Play {
	e.ball.Reset()
	e.playID++
	e.play = buildPlay(playInput{
		id:        e.playID,
		seed:      e.seed,
		settings:  e.settings.clone(),
		speed:     e.speed,
		overrides: e.overrides,
		motions:   e.motions,
		blockers:  e.blockers,
		notes:     e.notes,
		cache:     e.cache,
		params:    e.params,
	})
	e.motions, e.notes = nil, nil
	e.t, e.paused = 0, false
	e.release, e.summary = model.Openness{}, nil
	return e.play
}

// Replay builds an engine on the snapshot's session seed and snaps the
// recorded play again. opts configure everything the snapshot does not carry,
// such as tuning and the alignment cache.
func Replay(s Snapshot, opts ...Option) *Engine {
	e := New(append(append([]Option(nil), opts...), WithSeed(s.SessionSeed))...)
	e.settings = s.Settings()
	e.speed = s.Speed
	for r, kw := range s.Overrides {
		e.overrides[r] = kw
	}
	e.motions = append([]formation.Motion(nil), s.Motions...)
	for _, r := range s.Blockers {
		e.blockers[r] = true
	}
	if s.PlayID > 0 {
		e.playID = s.PlayID - 1
	}
	e.Snap()
	return e
}

// Reset clears the clock, the throw decision and any ball in flight. The
// play counter survives so the next snap draws a fresh stream.
func (e *Engine) Reset() {
	e.ball.Reset()
	e.play = nil
	e.t, e.paused = 0, false
	e.release, e.summary = model.Openness{}, nil
}

// Pause stops the clock.
func (e *Engine) Pause() { e.paused = true }

// Resume restarts the clock.
func (e *Engine) Resume() { e.paused = false }

// Tick advances the clock by dt of wall time and returns a summary if a
// throw resolved during the step.
func (e *Engine) Tick(dt time.Duration) *model.ThrowSummary {
	if e.play == nil || e.paused || dt <= 0 {
		return nil
	}
	secs := e.play.Speed.PlaySeconds
	if secs <= 0 {
		secs = e.params.Coverage.Seconds
	}
	return e.advance(e.t + dt.Seconds()/secs)
}

// Seek moves the clock to t. Positions are pure in t, so seeking never
// redraws anything; seeking before the release of a ball in flight aborts
// the throw, and a resolved throw stays resolved.
func (e *Engine) Seek(t float64) *model.ThrowSummary {
	if e.play == nil {
		return nil
	}
	if math.IsNaN(t) {
		t = 0
	}
	return e.advance(t)
}

func (e *Engine) advance(t float64) *model.ThrowSummary {
	e.t = field.Clamp01(t)
	if e.ball.State() != flight.InFlight {
		return nil
	}
	tr := e.ball.Trajectory()
	if e.t < tr.ReleaseT {
		e.ball.Reset()
		e.release = model.Openness{}
		return nil
	}
	if e.t >= tr.ArriveT || e.t >= 1 {
		return e.resolve()
	}
	return nil
}

// Throw releases the ball to r at the current t.
func (e *Engine) Throw(r model.ReceiverID) error {
	if e.play == nil {
		return ErrNoThrowWindow
	}
	switch e.ball.State() {
	case flight.InFlight:
		return ErrBallInFlight
	case flight.Caught, flight.Incomplete:
		return ErrNoThrowWindow
	}
	if e.t >= 1 {
		return ErrClockExpired
	}
	if _, ok := e.play.Runner(r); !ok {
		return ErrUnknownReceiver
	}
	if !e.play.Eligible(r) {
		return ErrIneligibleReceiver
	}

	target, _ := e.play.ReceiverAt(r, e.t)
	tr := flight.Plan(e.play.Passer(), target, e.t, e.play.Speed.PlaySeconds, e.play.params.Flight)
	reading, err := e.play.Openness(r, e.t)
	if err != nil {
		return err
	}
	if err := e.ball.Launch(tr, r); err != nil {
		return ErrBallInFlight
	}
	e.release = model.Openness{Score: reading.Score, Separation: reading.Separation, Nearest: reading.Nearest}
	return nil
}

// Ball returns the ball's state and, while a throw is live or landed, its
// trajectory.
func (e *Engine) Ball() (flight.State, flight.Trajectory) {
	return e.ball.State(), e.ball.Trajectory()
}

// Openness measures r at any t of the current play without touching state.
func (e *Engine) Openness(r model.ReceiverID, t float64) (openness.Reading, error) {
	if e.play == nil {
		return openness.Reading{}, ErrNoPlay
	}
	return e.play.Openness(r, field.Clamp01(t))
}

func (e *Engine) resolve() *model.ThrowSummary {
	pl := e.play
	tr := e.ball.Trajectory()
	r := e.ball.Target()
	catchT := math.Min(tr.ArriveT, 1)

	near, sep := openness.Nearest(tr.Target, pl.DefendersAt(catchT))
	if near == "" {
		sep = pl.params.Scale.Ceiling
	}
	out := flight.Resolve(sep, r.Star(), tr.Target, pl.stream.Sub("catch"), pl.params.Catch)
	_ = e.ball.Land(out)

	area := openness.Classify(tr.Target)
	secs := pl.Speed.PlaySeconds
	s := &model.ThrowSummary{
		ID:          e.newID(),
		SessionID:   e.sessionID,
		PlayID:      pl.ID,
		Seed:        pl.Seed,
		Target:      r,
		Route:       string(pl.Keywords[r]),
		Concept:     string(pl.Settings.Concept),
		Coverage:    pl.Settings.Coverage,
		Formation:   pl.Settings.Formation,
		ReleaseT:    tr.ReleaseT,
		ArriveT:     tr.ArriveT,
		CatchT:      catchT,
		HoldMs:      int64(math.Round(tr.ReleaseT * secs * 1000)),
		FlightMs:    int64(math.Round(tr.Seconds * 1000)),
		ThrowArea:   area.Label,
		AreaDepth:   string(area.Depth),
		AreaLane:    string(area.Lane),
		Release:     e.release,
		Catch:       model.Openness{Score: pl.params.Scale.Score(sep), Separation: sep, Nearest: near},
		CatchSpot:   tr.Target,
		Caught:      out.Caught,
		Probability: out.Probability,
		Contest:     string(out.Contest),
		Spot:        string(out.Spot),
		SpotPoint:   out.SpotPoint,
		CreatedAt:   e.now(),
	}
	e.summary = s
	cp := *s
	return &cp
}
