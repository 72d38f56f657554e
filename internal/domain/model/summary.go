package model

import (
	"time"

	"github.com/okian/gridiron/internal/domain/field"
)

// Openness is a receiver's separation read at one instant.
type Openness struct {
	Score      float64    `json:"score"`
	Separation float64    `json:"separation"`
	Nearest    DefenderID `json:"nearest,omitempty"`
}

// ThrowSummary is emitted once per throw, whatever the outcome, for
// external grading.
type ThrowSummary struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id,omitempty"`
	PlayID    uint64 `json:"play_id"`
	Seed      uint64 `json:"seed"`

	Target    ReceiverID     `json:"target"`
	Route     string         `json:"route"`
	Concept   string         `json:"concept"`
	Coverage  CoverageScheme `json:"coverage"`
	Formation Formation      `json:"formation"`

	ReleaseT float64 `json:"release_t"`
	ArriveT  float64 `json:"arrive_t"`
	CatchT   float64 `json:"catch_t"`
	HoldMs   int64   `json:"hold_ms"`
	FlightMs int64   `json:"flight_ms"`

	ThrowArea string      `json:"throw_area"`
	AreaDepth string      `json:"area_depth"`
	AreaLane  string      `json:"area_lane"`
	Release   Openness    `json:"release"`
	Catch     Openness    `json:"catch"`
	CatchSpot field.Point `json:"catch_spot"`

	Caught      bool        `json:"caught"`
	Probability float64     `json:"probability"`
	Contest     string      `json:"contest"`
	Spot        string      `json:"spot"`
	SpotPoint   field.Point `json:"spot_point"`

	// Grade and GradeScore are filled in by the external grader.
	Grade      string  `json:"grade,omitempty"`
	GradeScore float64 `json:"grade_score,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Outcome returns a one-word result label.
func (s ThrowSummary) Outcome() string {
	if s.Caught {
		return "complete"
	}
	return "incomplete"
}
