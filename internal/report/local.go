package report

import (
	"context"
	"fmt"

	"github.com/okian/gridiron/internal/domain/engine"
	"github.com/okian/gridiron/internal/domain/grading"
	"github.com/okian/gridiron/internal/domain/model"
)

// Player plays one seeded snap and reports how the throw went.
type Player interface {
	Play(ctx context.Context, seed uint64) (Run, error)
}

// Local plays every snap on an in-process engine.
type Local struct {
	cfg    *Config
	params engine.Params
}

// NewLocal returns a Player backed by the engine with params.
func NewLocal(cfg *Config, params engine.Params) *Local {
	return &Local{cfg: cfg, params: params}
}

// Play implements Player.
func (l *Local) Play(ctx context.Context, seed uint64) (Run, error) {
	e := engine.New(engine.WithSeed(seed), engine.WithParams(l.params), engine.WithSessionID("report"))

	if err := apply(e, engine.Command{
		Kind:      engine.KindConfigure,
		Formation: l.cfg.Formation,
		Coverage:  l.cfg.Coverage,
		Concept:   l.cfg.Concept,
	}); err != nil {
		return Run{}, err
	}
	if err := apply(e, engine.Command{Kind: engine.KindSnap}); err != nil {
		return Run{}, err
	}
	meta, ok := e.Meta()
	if !ok {
		return Run{}, engine.ErrNoPlay
	}

	tg, err := pickTarget(meta.Insights.FirstOpen, e.Play().Eligible, func(r model.ReceiverID, t float64) (float64, error) {
		rd, err := e.Openness(r, t)
		return rd.Score, err
	})
	if err != nil {
		return Run{}, err
	}
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}

	if err := apply(e, engine.Command{Kind: engine.KindSeek, T: tg.t}); err != nil {
		return Run{}, err
	}
	if err := apply(e, engine.Command{Kind: engine.KindThrow, Receiver: string(tg.receiver)}); err != nil {
		return Run{}, err
	}
	if sum := e.Seek(1); sum != nil {
		return newRun(seed, tg, *sum, meta.Substitutions), nil
	}
	if sum, ok := e.Summary(); ok {
		return newRun(seed, tg, sum, meta.Substitutions), nil
	}
	return Run{}, ErrNotResolved
}

func apply(e *engine.Engine, c engine.Command) error { //nolint:gocritic // hugeParam: commands are values
	if res := e.Apply(c); !res.Accepted {
		return fmt.Errorf("%w: %s: %s", ErrRejected, c.Kind, res.Reason)
	}
	return nil
}

// newRun records a resolved throw. An ungraded summary is graded here with
// the same rubric the service's graders use.
func newRun(seed uint64, tg target, s model.ThrowSummary, subs []string) Run { //nolint:gocritic // hugeParam: summaries are values
	if s.Grade == "" {
		s.GradeScore = grading.Score(s)
		s.Grade = grading.Letter(s.GradeScore)
	}
	return Run{
		Seed:            seed,
		ThrowID:         s.ID,
		PlayID:          s.PlayID,
		Target:          s.Target,
		Route:           s.Route,
		Opened:          tg.opened,
		ReleaseT:        s.ReleaseT,
		HoldMs:          s.HoldMs,
		ReleaseOpenness: s.Release.Score,
		CatchOpenness:   s.Catch.Score,
		Probability:     s.Probability,
		Contest:         s.Contest,
		Caught:          s.Caught,
		Spot:            s.Spot,
		Grade:           s.Grade,
		Score:           s.GradeScore,
		Substitutions:   subs,
	}
}
