package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/gridiron/internal/domain/coverage"
	"github.com/okian/gridiron/internal/domain/field"
	"github.com/okian/gridiron/internal/domain/formation"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/route"
)

// Kind names a command.
type Kind string

const (
	KindConfigure      Kind = "configure"
	KindSnap           Kind = "snap"
	KindSeek           Kind = "seek"
	KindThrow          Kind = "throw"
	KindRouteOverride  Kind = "route_override"
	KindClearOverrides Kind = "clear_overrides"
	KindMotion         Kind = "motion"
	KindToggleBlocker  Kind = "toggle_blocker"
	KindRotationMode   Kind = "rotation_mode"
	KindSpeed          Kind = "speed"
	KindReset          Kind = "reset"
	KindPause          Kind = "pause"
	KindResume         Kind = "resume"
)

// Kinds lists every command kind.
var Kinds = []Kind{
	KindConfigure, KindSnap, KindSeek, KindThrow, KindRouteOverride, KindClearOverrides,
	KindMotion, KindToggleBlocker, KindRotationMode, KindSpeed, KindReset, KindPause, KindResume,
}

// Command is one request from outside the engine. Free-form fields are
// parsed when applied; anything unrecognised is substituted or ignored.
type Command struct {
	// ID makes the command idempotent within the caller's dedupe window.
	ID   string `json:"id,omitempty"`
	Kind Kind   `json:"kind"`

	Concept   string            `json:"concept,omitempty"`
	Coverage  string            `json:"coverage,omitempty"`
	Formation string            `json:"formation,omitempty"`
	Hash      string            `json:"hash,omitempty"`
	Technique string            `json:"technique,omitempty"`
	FireZone  string            `json:"fire_zone,omitempty"`
	Press     map[string]string `json:"press,omitempty"`

	T         float64 `json:"t,omitempty"`
	Receiver  string  `json:"receiver,omitempty"`
	Route     string  `json:"route,omitempty"`
	Motion    string  `json:"motion,omitempty"`
	Direction string  `json:"direction,omitempty"`
	Mode      string  `json:"mode,omitempty"`

	ReceiverSpeed  float64 `json:"receiver_speed,omitempty"`
	BallSpeed      float64 `json:"ball_speed,omitempty"`
	PlayDurationMs int64   `json:"play_duration_ms,omitempty"`
}

// Result reports what a command did. A rejected command changed nothing.
type Result struct {
	ID       string              `json:"id,omitempty"`
	Kind     Kind                `json:"kind"`
	Accepted bool                `json:"accepted"`
	Reason   string              `json:"reason,omitempty"`
	Notes    []string            `json:"notes,omitempty"`
	Summary  *model.ThrowSummary `json:"summary,omitempty"`
	Err      error               `json:"-"`
}

func accept(c Command) Result { return Result{ID: c.ID, Kind: c.Kind, Accepted: true} }

func reject(c Command, err error) Result {
	return Result{ID: c.ID, Kind: c.Kind, Reason: err.Error(), Err: err}
}

// Apply executes one command.
func (e *Engine) Apply(c Command) Result {
	switch c.Kind {
	case KindConfigure:
		res := accept(c)
		res.Notes = e.configure(c)
		return res
	case KindSnap:
		e.Snap()
		return accept(c)
	case KindSeek:
		if e.play == nil {
			return reject(c, ErrNoPlay)
		}
		res := accept(c)
		res.Summary = e.Seek(c.T)
		return res
	case KindThrow:
		r, ok := model.ParseReceiver(c.Receiver)
		if !ok {
			return reject(c, ErrUnknownReceiver)
		}
		if err := e.Throw(r); err != nil {
			return reject(c, err)
		}
		return accept(c)
	case KindRouteOverride:
		r, ok := model.ParseReceiver(c.Receiver)
		if !ok {
			return reject(c, ErrUnknownReceiver)
		}
		res := accept(c)
		kw, ok := route.Parse(c.Route)
		if !ok {
			note := fmt.Sprintf("unknown route %q for %s, using %s", c.Route, r, kw)
			e.Note(note)
			res.Notes = append(res.Notes, note)
		}
		e.SetOverride(r, kw)
		return res
	case KindClearOverrides:
		e.ClearOverrides()
		return accept(c)
	case KindMotion:
		r, ok := model.ParseReceiver(c.Receiver)
		if !ok {
			return reject(c, ErrUnknownReceiver)
		}
		mt, ok := formation.ParseMotion(c.Motion)
		if !ok {
			return reject(c, fmt.Errorf("unknown motion %q", c.Motion))
		}
		dir, ok := formation.ParseDirection(c.Direction)
		if !ok {
			return reject(c, fmt.Errorf("unknown direction %q", c.Direction))
		}
		e.AddMotion(formation.Motion{Receiver: r, Type: mt, Direction: dir})
		return accept(c)
	case KindToggleBlocker:
		r, ok := model.ParseReceiver(c.Receiver)
		if !ok {
			return reject(c, ErrUnknownReceiver)
		}
		e.ToggleBlocker(r)
		return accept(c)
	case KindRotationMode:
		m, ok := model.ParseRotationMode(c.Mode)
		if !ok {
			return reject(c, fmt.Errorf("unknown rotation mode %q", c.Mode))
		}
		e.SetRotation(m)
		return accept(c)
	case KindSpeed:
		e.SetSpeed(Speed{
			ReceiverSpeed: c.ReceiverSpeed,
			BallSpeed:     c.BallSpeed,
			PlaySeconds:   (time.Duration(c.PlayDurationMs) * time.Millisecond).Seconds(),
		})
		return accept(c)
	case KindReset:
		e.Reset()
		return accept(c)
	case KindPause:
		if e.play == nil {
			return reject(c, ErrNoPlay)
		}
		e.Pause()
		return accept(c)
	case KindResume:
		e.Resume()
		return accept(c)
	default:
		return reject(c, ErrUnknownCommand)
	}
}

// configure applies the non-empty fields of c and returns the substitutions
// it had to make.
func (e *Engine) configure(c Command) []string {
	s := e.settings.clone()
	var notes []string
	sub := func(format string, args ...any) {
		notes = append(notes, fmt.Sprintf(format, args...))
	}

	if c.Concept != "" {
		cc, ok := route.ParseConcept(c.Concept)
		if !ok {
			sub("unknown concept %q, using %s", c.Concept, cc)
		}
		s.Concept = cc
	}
	if c.Coverage != "" {
		cv, ok := model.ParseCoverage(c.Coverage)
		if !ok {
			cv = model.Cover3
			sub("unknown coverage %q, using %s", c.Coverage, cv)
		}
		s.Coverage = cv
	}
	if c.Formation != "" {
		f, ok := model.ParseFormation(c.Formation)
		if !ok {
			f = model.FormationDoubles
			sub("unknown formation %q, using %s", c.Formation, f)
		}
		s.Formation = f
	}
	if c.Hash != "" {
		s.Hash = field.ParseHash(c.Hash)
	}
	if c.Technique != "" {
		t, ok := model.ParsePressTechnique(c.Technique)
		if !ok {
			t = model.PressAuto
			sub("unknown press technique %q, using %s", c.Technique, t)
		}
		s.Technique = t
	}
	if c.FireZone != "" {
		fz, ok := coverage.ParseFireZone(c.FireZone)
		if !ok {
			sub("unknown fire zone %q, ignored", c.FireZone)
		}
		s.FireZone = fz
	}
	if c.Press != nil {
		s.ForcedPress = make(map[model.DefenderID]model.PressOutcome, len(c.Press))
		for corner, outcome := range c.Press {
			d := model.DefenderID(strings.ToUpper(strings.TrimSpace(corner)))
			if !d.IsCorner() {
				sub("press on %q ignored: not a corner", corner)
				continue
			}
			o, ok := model.ParsePressOutcome(outcome)
			if !ok {
				sub("unknown press outcome %q for %s, ignored", outcome, d)
				continue
			}
			s.ForcedPress[d] = o
		}
	}
	if c.Mode != "" {
		m, ok := model.ParseRotationMode(c.Mode)
		if !ok {
			sub("unknown rotation mode %q, ignored", c.Mode)
		} else {
			s.Rotation = m
		}
	}

	e.settings = s
	e.notes = append(e.notes, notes...)
	return notes
}
