// Package field holds yard-based field geometry: points, hashes and sidelines.
//
// Coordinates: x runs across the field width from the left sideline, y runs
// upfield from the offense's own goal line. The offense always attacks +y.
package field

import "math"

// Field dimensions and landmarks, in yards.
const (
	Width     = 160.0 / 3.0 // 53⅓
	Length    = 120.0       // including both end zones
	CenterX   = Width / 2
	HashLeft  = 23.58 // college-style hashes would sit closer to the sideline
	HashRight = Width - 23.58
	// LOS is the fixed line of scrimmage every snap starts from.
	LOS = 25.0
	// Margin keeps anything we place off the white paint.
	Margin = 1.0
)

// Hash identifies which hash mark the ball is spotted on.
type Hash string

const (
	HashL Hash = "L"
	HashR Hash = "R"
)

// ParseHash maps free-form input onto a hash; anything unknown spots the
// ball on the left hash.
func ParseHash(s string) Hash {
	switch s {
	case "R", "r", "right", "RIGHT":
		return HashR
	default:
		return HashL
	}
}

// BallX returns the ball's x for a hash.
func BallX(h Hash) float64 {
	if h == HashR {
		return HashRight
	}
	return HashLeft
}

// Point is an immutable field position in yards.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point     { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }
func (p Point) Len() float64          { return math.Hypot(p.X, p.Y) }
func (p Point) Dist(q Point) float64  { return math.Hypot(p.X-q.X, p.Y-q.Y) }
func (p Point) Dot(q Point) float64   { return p.X*q.X + p.Y*q.Y }
func (p Point) Lerp(q Point, a float64) Point {
	return Point{p.X + (q.X-p.X)*a, p.Y + (q.Y-p.Y)*a}
}

// Unit returns the unit vector of p, or the zero vector when p has no length.
func (p Point) Unit() Point {
	l := p.Len()
	if l < 1e-9 {
		return Point{}
	}
	return Point{p.X / l, p.Y / l}
}

// ClampLen shortens p to at most max yards.
func (p Point) ClampLen(max float64) Point {
	l := p.Len()
	if l <= max || l < 1e-9 {
		return p
	}
	return p.Scale(max / l)
}

// Depth is the distance past the line of scrimmage.
func (p Point) Depth() float64 { return p.Y - LOS }

// InBounds clamps a point inside the sidelines, keeping Margin off the paint.
func InBounds(p Point) Point {
	return Point{X: Clamp(p.X, Margin, Width-Margin), Y: Clamp(p.Y, 0, Length)}
}

// Clamp bounds v into [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 bounds v into [0, 1].
func Clamp01(v float64) float64 { return Clamp(v, 0, 1) }

// SmoothStep eases a in [0,1] with zero slope at both ends.
func SmoothStep(a float64) float64 {
	a = Clamp01(a)
	return a * a * (3 - 2*a)
}

// Side is -1 for the left half of the field and +1 for the right half,
// measured against ref (usually the ball).
func Side(x, ref float64) float64 {
	if x < ref {
		return -1
	}
	return 1
}

// AngleBetween returns the unsigned angle in degrees between two vectors,
// or 0 when either has no length.
func AngleBetween(a, b Point) float64 {
	la, lb := a.Len(), b.Len()
	if la < 1e-9 || lb < 1e-9 {
		return 0
	}
	c := Clamp(a.Dot(b)/(la*lb), -1, 1)
	return math.Acos(c) * 180 / math.Pi
}
