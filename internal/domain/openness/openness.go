// Package openness scores receiver separation and classifies throw areas.
package openness

import (
	"math"

	"github.com/okian/gridiron/internal/domain/field"
	"github.com/okian/gridiron/internal/domain/model"
)

// Scale maps separation yards onto a 0..1 score.
type Scale struct {
	// Floor is the tight-window separation that scores 0.
	Floor float64 `json:"floor"`
	// Ceiling is the wide-open separation that scores 1.
	Ceiling float64 `json:"ceiling"`
}

// DefaultScale is 1 yard tight, 8 yards wide open.
var DefaultScale = Scale{Floor: 1, Ceiling: 8}

// Score linearly maps separation into [0,1]. It is non-decreasing in sep and
// clamped for every input, including negative separation.
func (s Scale) Score(sep float64) float64 {
	span := s.Ceiling - s.Floor
	if span <= 0 || math.IsNaN(sep) {
		if sep >= s.Ceiling {
			return 1
		}
		return 0
	}
	return field.Clamp01((sep - s.Floor) / span)
}

// Reading is one openness measurement.
type Reading struct {
	Receiver   model.ReceiverID `json:"receiver"`
	T          float64          `json:"t"`
	Score      float64          `json:"score"`
	Separation float64          `json:"separation"`
	Nearest    model.DefenderID `json:"nearest"`
}

// Nearest returns the defender closest to p and the distance. Ties go to the
// defender listed first in canonical order.
func Nearest(p field.Point, defenders map[model.DefenderID]field.Point) (model.DefenderID, float64) {
	best, bestD := model.DefenderID(""), math.Inf(1)
	for _, d := range model.Defenders {
		q, ok := defenders[d]
		if !ok {
			continue
		}
		if dist := p.Dist(q); dist < bestD {
			best, bestD = d, dist
		}
	}
	return best, bestD
}

// Measure scores receiver r standing at p against the given defender spots.
// With no defenders the receiver is wide open.
func (s Scale) Measure(r model.ReceiverID, t float64, p field.Point, defenders map[model.DefenderID]field.Point) Reading {
	d, sep := Nearest(p, defenders)
	if d == "" {
		sep = s.Ceiling
	}
	return Reading{Receiver: r, T: t, Score: s.Score(sep), Separation: sep, Nearest: d}
}
