// Package grading defines the contract for grading resolved throws. The
// in-memory grader stands in for an external grading service.
package grading

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/gridiron/internal/domain/model"
)

// Default grading configuration constants.
const (
	defaultMinLatency = 20 * time.Millisecond
	defaultMaxLatency = 60 * time.Millisecond
	defaultRandomSeed = 42

	opennessWeight = 60
	outcomeWeight  = 25
	holdWeight     = 15

	// Holding the ball up to quickHoldMs costs nothing; the hold credit is
	// gone at lateHoldMs.
	quickHoldMs = 2500
	lateHoldMs  = 4000

	maxScoreValue = 100
)

// Letter grade cutoffs, highest first.
var cutoffs = []struct {
	min   float64
	grade string
}{
	{85, "A"},
	{70, "B"},
	{55, "C"},
	{40, "D"},
}

// Option applies a configuration option to the InMemoryGrader.
type Option func(*InMemoryGrader)

// WithLatencyRange sets the simulated latency range. A zero range disables
// the simulated delay.
func WithLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(g *InMemoryGrader) {
		if minLatency >= 0 && maxLatency >= minLatency {
			g.minLatency = minLatency
			g.maxLatency = maxLatency
		}
	}
}

// WithSeed seeds the latency jitter.
func WithSeed(seed int64) Option {
	return func(g *InMemoryGrader) {
		g.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // jitter only
	}
}

// Result is the grade for one throw.
type Result struct {
	ThrowID   string  `json:"throw_id"`
	SessionID string  `json:"session_id"`
	Grade     string  `json:"grade"`
	Score     float64 `json:"score"`
}

// Grader grades a throw summary. Implementations may be remote and slow.
type Grader interface {
	// Grade computes a grade, honoring ctx for cancellation.
	Grade(ctx context.Context, s model.ThrowSummary) (Result, error)
}

// InMemoryGrader implements Grader with a fixed rubric and simulated latency.
type InMemoryGrader struct {
	minLatency time.Duration
	maxLatency time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewInMemoryGrader creates a new in-memory grader with configuration options.
func NewInMemoryGrader(opts ...Option) *InMemoryGrader {
	g := &InMemoryGrader{
		minLatency: defaultMinLatency,
		maxLatency: defaultMaxLatency,
		rng:        rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // deterministic seed for reproducible testing
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Grade grades the throw after the simulated latency.
func (g *InMemoryGrader) Grade(ctx context.Context, s model.ThrowSummary) (Result, error) {
	if s.ID == "" {
		return Result{}, ErrMissingThrowID
	}

	if latency := g.latency(); latency > 0 {
		timer := time.NewTimer(latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Result{}, fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	score := Score(s)
	return Result{
		ThrowID:   s.ID,
		SessionID: s.SessionID,
		Grade:     Letter(score),
		Score:     score,
	}, nil
}

func (g *InMemoryGrader) latency() time.Duration {
	span := g.maxLatency - g.minLatency
	if span <= 0 {
		return g.minLatency
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.minLatency + time.Duration(g.rng.Int63n(int64(span)))
}

// Score rates a throw on 0..100 from the target's openness at release, the
// hold time and the result.
func Score(s model.ThrowSummary) float64 {
	open := math.Max(0, math.Min(1, s.Release.Score))
	score := opennessWeight * open

	if s.Caught {
		score += outcomeWeight
	}

	switch {
	case s.HoldMs <= quickHoldMs:
		score += holdWeight
	case s.HoldMs < lateHoldMs:
		score += holdWeight * float64(lateHoldMs-s.HoldMs) / float64(lateHoldMs-quickHoldMs)
	}

	score = math.Round(score*10) / 10
	return math.Max(0, math.Min(maxScoreValue, score))
}

// Letter maps a score to a letter grade.
func Letter(score float64) string {
	for _, c := range cutoffs {
		if score >= c.min {
			return c.grade
		}
	}
	return "F"
}
