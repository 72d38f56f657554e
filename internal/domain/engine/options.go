package engine

import (
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/okian/gridiron/internal/domain/coverage"
	"github.com/okian/gridiron/internal/domain/flight"
	"github.com/okian/gridiron/internal/domain/formation"
	"github.com/okian/gridiron/internal/domain/leverage"
	"github.com/okian/gridiron/internal/domain/openness"
	"github.com/okian/gridiron/internal/domain/route"
)

// Default engine configuration constants.
const (
	defaultCacheSize     = 8
	defaultOpenThreshold = 0.5
	defaultLookaheadStep = 0.01
	throwIDSize          = 12
)

// Params gathers the tuned constants of every stage of the simulation.
type Params struct {
	Coverage coverage.Params    `json:"coverage"`
	Flight   flight.Params      `json:"flight"`
	Catch    flight.CatchParams `json:"catch"`
	Scale    openness.Scale     `json:"scale"`
	Leverage leverage.Params    `json:"leverage"`
	Depths   route.Depths       `json:"depths"`
	// OpenThreshold is the openness score the first-open scan looks for.
	OpenThreshold float64 `json:"open_threshold"`
	// LookaheadStep is the t resolution of the first-open scan.
	LookaheadStep float64 `json:"lookahead_step"`
}

// DefaultParams returns the stock tuning.
func DefaultParams() Params {
	return Params{
		Coverage:      coverage.DefaultParams(),
		Flight:        flight.DefaultParams,
		Catch:         flight.DefaultCatchParams,
		Scale:         openness.DefaultScale,
		Leverage:      leverage.DefaultParams,
		Depths:        route.DefaultDepths,
		OpenThreshold: defaultOpenThreshold,
		LookaheadStep: defaultLookaheadStep,
	}
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithSeed sets the session seed every play stream is mixed from.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// WithSessionID stamps throw summaries with the owning session.
func WithSessionID(id string) Option {
	return func(e *Engine) {
		e.sessionID = id
	}
}

// WithParams replaces the tuned constants.
func WithParams(p Params) Option {
	return func(e *Engine) {
		e.params = p
	}
}

// WithCache shares an alignment cache with the engine.
func WithCache(c *formation.Cache) Option {
	return func(e *Engine) {
		if c != nil {
			e.cache = c
		}
	}
}

// WithCacheSize bounds the engine's own alignment cache.
func WithCacheSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.cacheSize = n
		}
	}
}

// WithIDGenerator sets how throw ids are minted.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// WithClock sets the wall clock used to stamp summaries.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func nanoID() string {
	id, err := gonanoid.New(throwIDSize)
	if err != nil {
		return ""
	}
	return id
}
