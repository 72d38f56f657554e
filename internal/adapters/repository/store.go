// Package repository holds graded throws ranked by grade score.
package repository

import (
	"context"

	"github.com/okian/gridiron/internal/domain/types"
)

// Store provides read/write access to graded throws.
type Store interface {
	// Record stores a graded throw. Re-recording a throw replaces it when the
	// score changed. Returns true if the store changed.
	Record(ctx context.Context, e types.Entry) (bool, error)

	// Get returns a throw with its global rank.
	// Returns ErrNotFound if the throw is unknown.
	Get(ctx context.Context, throwID string) (types.Entry, error)

	// TopN returns the best n throws across all sessions.
	TopN(ctx context.Context, n int) ([]types.Entry, error)

	// SessionTopN returns the best n throws of one session, ranked within it.
	SessionTopN(ctx context.Context, sessionID string, n int) ([]types.Entry, error)

	// DropSession forgets every throw of a session and returns how many.
	DropSession(ctx context.Context, sessionID string) int

	// Count returns the number of throws held.
	Count(ctx context.Context) int
}

// Snapshot is an immutable summary of the store published periodically.
type Snapshot struct {
	Total     int            `json:"total"`
	Sessions  int            `json:"sessions"`
	ByGrade   map[string]int `json:"by_grade"`
	Completed int            `json:"completed"`
	TopCache  []types.Entry  `json:"top"`
}
