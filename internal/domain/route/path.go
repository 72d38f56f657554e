package route

import (
	"github.com/okian/gridiron/internal/domain/field"
)

// Path is a polyline sampled by arc length so a runner covers equal distance
// in equal time, bends included.
type Path struct {
	pts []field.Point
	cum []float64
}

// NewPath indexes pts by cumulative arc length. A nil or empty slice yields a
// path that samples to the zero point.
func NewPath(pts []field.Point) Path {
	p := Path{pts: append([]field.Point(nil), pts...)}
	p.cum = make([]float64, len(p.pts))
	for i := 1; i < len(p.pts); i++ {
		p.cum[i] = p.cum[i-1] + p.pts[i].Dist(p.pts[i-1])
	}
	return p
}

// Points returns a copy of the path's vertices.
func (p Path) Points() []field.Point { return append([]field.Point(nil), p.pts...) }

// Len returns the total arc length in yards.
func (p Path) Len() float64 {
	if len(p.cum) == 0 {
		return 0
	}
	return p.cum[len(p.cum)-1]
}

// Start returns the first vertex.
func (p Path) Start() field.Point {
	if len(p.pts) == 0 {
		return field.Point{}
	}
	return p.pts[0]
}

// At returns the point d yards along the path, clamped to its ends.
func (p Path) At(d float64) field.Point {
	n := len(p.pts)
	switch {
	case n == 0:
		return field.Point{}
	case n == 1 || d <= 0:
		return p.pts[0]
	case d >= p.Len():
		return p.pts[n-1]
	}
	// Binary search for the segment containing d.
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if p.cum[mid] <= d {
			lo = mid
		} else {
			hi = mid
		}
	}
	seg := p.cum[hi] - p.cum[lo]
	if seg <= 0 {
		return p.pts[hi]
	}
	return p.pts[lo].Lerp(p.pts[hi], (d-p.cum[lo])/seg)
}

// BreakIndex returns the index of the first vertex where the path turns by
// more than minAngle degrees, or len-1 for a straight path.
func BreakIndex(pts []field.Point, minAngle float64) int {
	for i := 1; i+1 < len(pts); i++ {
		if field.AngleBetween(pts[i].Sub(pts[i-1]), pts[i+1].Sub(pts[i])) >= minAngle {
			return i
		}
	}
	if len(pts) == 0 {
		return 0
	}
	return len(pts) - 1
}

// Runner moves a receiver along a path at constant speed over a play of fixed
// duration. Delay and Frozen model a press at the line.
type Runner struct {
	Path Path
	// Speed is the receiver's speed in yards per second.
	Speed float64
	// Seconds is the full play duration.
	Seconds float64
	// Delay holds the release for this fraction of the play.
	Delay float64
	// Frozen pins the receiver to its start for the whole play.
	Frozen bool
}

// Distance returns the yards covered at normalized time t.
func (r Runner) Distance(t float64) float64 {
	if r.Frozen {
		return 0
	}
	eff := field.Clamp01(t) - r.Delay
	if eff <= 0 {
		return 0
	}
	return r.Speed * r.Seconds * eff
}

// At returns the receiver's position at normalized time t.
func (r Runner) At(t float64) field.Point { return r.Path.At(r.Distance(t)) }

// Heading returns the displacement between t0 and t1, the small-window
// tangent used to spot route breaks.
func (r Runner) Heading(t0, t1 float64) field.Point { return r.At(t1).Sub(r.At(t0)) }

// CutAngle returns the turn, in degrees, between the incoming and outgoing
// tangents around t over a window of w.
func (r Runner) CutAngle(t, w float64) float64 {
	return field.AngleBetween(r.Heading(t-w, t), r.Heading(t, t+w))
}
