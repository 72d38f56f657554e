// Package report runs batches of seeded plays and summarises how each
// throw went. Plays run in-process against the engine or against a live
// service over HTTP.
package report

import (
	"time"

	"github.com/okian/gridiron/internal/domain/model"
)

// Config holds configuration for a report run.
type Config struct {
	Formation string `json:"formation"` // Offensive formation, e.g. "trips"
	Coverage  string `json:"coverage"`  // Defensive call, e.g. "C3"
	Concept   string `json:"concept"`   // Passing concept, e.g. "flood"

	Runs     int    `json:"runs"`      // Number of seeded plays
	BaseSeed uint64 `json:"base_seed"` // Seed of the first play; zero draws one
	Workers  int    `json:"workers"`   // Plays run concurrently
	TopN     int    `json:"top_n"`     // Best throws to list

	BaseURL string        `json:"base_url,omitempty"` // Service to play against; empty runs in-process
	Timeout time.Duration `json:"-"`                  // Per-play deadline

	OutputFile string `json:"-"` // Optional JSON dump of every run
	Verbose    bool   `json:"-"` // Print one row per run
}

// Run is the outcome of one seeded play.
type Run struct {
	Seed    uint64 `json:"seed"`
	ThrowID string `json:"throw_id"`
	PlayID  uint64 `json:"play_id"`

	Target model.ReceiverID `json:"target"`
	Route  string           `json:"route"`
	// Opened is false when nobody came open and the throw was a checkdown.
	Opened   bool    `json:"opened"`
	ReleaseT float64 `json:"release_t"`
	HoldMs   int64   `json:"hold_ms"`

	ReleaseOpenness float64 `json:"release_openness"`
	CatchOpenness   float64 `json:"catch_openness"`
	Probability     float64 `json:"probability"`
	Contest         string  `json:"contest"`
	Caught          bool    `json:"caught"`
	Spot            string  `json:"spot"`

	Grade string  `json:"grade"`
	Score float64 `json:"score"`

	Substitutions []string `json:"substitutions,omitempty"`
	Err           string   `json:"error,omitempty"`
}

// Stats holds aggregate figures over every run. Averages cover the runs
// that played.
type Stats struct {
	Runs        int `json:"runs"`
	Failed      int `json:"failed"`
	Completions int `json:"completions"`
	Checkdowns  int `json:"checkdowns"`

	CompletionRate  float64 `json:"completion_rate"`
	ReleaseOpenness float64 `json:"release_openness"`
	CatchOpenness   float64 `json:"catch_openness"`
	Probability     float64 `json:"probability"`
	HoldMs          float64 `json:"hold_ms"`
	Score           float64 `json:"score"`

	Grades  map[string]int          `json:"grades"`
	Targets map[string]*TargetStats `json:"targets"`

	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration_ns"`
}

// TargetStats aggregates the throws to one receiver.
type TargetStats struct {
	Throws          int     `json:"throws"`
	Completions     int     `json:"completions"`
	ReleaseOpenness float64 `json:"release_openness"`
}
