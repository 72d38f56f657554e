package report

import (
	"sort"

	"github.com/okian/gridiron/internal/domain/types"
)

// Ranked is a run's place among the batch.
type Ranked struct {
	types.Entry
	Seed uint64 `json:"seed"`
}

// Rank orders the played runs best first. Equal scores share a rank and
// the next rank skips, so scores 90, 90, 80 rank 1, 1, 3.
func Rank(runs []Run) []Ranked {
	out := make([]Ranked, 0, len(runs))
	for i := range runs {
		r := &runs[i]
		if r.Err != "" {
			continue
		}
		outcome := "incomplete"
		if r.Caught {
			outcome = "complete"
		}
		out = append(out, Ranked{
			Entry: types.Entry{
				ThrowID: r.ThrowID,
				PlayID:  r.PlayID,
				Target:  string(r.Target),
				Outcome: outcome,
				Grade:   r.Grade,
				Score:   r.Score,
			},
			Seed: r.Seed,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ahead(out[j].Entry) })
	for i := range out {
		out[i].Rank = i + 1
		if i > 0 && out[i].Score == out[i-1].Score {
			out[i].Rank = out[i-1].Rank
		}
	}
	return out
}
