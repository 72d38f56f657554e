// Package types contains common types used across the application
package types

// Entry is one graded throw in a ranking.
type Entry struct {
	Rank      int     `json:"rank"`
	ThrowID   string  `json:"throw_id"`
	SessionID string  `json:"session_id"`
	PlayID    uint64  `json:"play_id"`
	Target    string  `json:"target"`
	Outcome   string  `json:"outcome"`
	Grade     string  `json:"grade"`
	Score     float64 `json:"score"`
}

// Ahead reports whether e ranks before o: higher score first, ties broken by
// throw id.
func (e Entry) Ahead(o Entry) bool {
	if e.Score != o.Score {
		return e.Score > o.Score
	}
	return e.ThrowID < o.ThrowID
}
