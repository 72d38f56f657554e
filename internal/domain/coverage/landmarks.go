package coverage

import (
	"github.com/okian/gridiron/internal/domain/field"
)

// Landmark is a named zone spot.
type Landmark struct {
	Name  string      `json:"name"`
	Point field.Point `json:"point"`
	Deep  bool        `json:"deep"`
}

// landmarks resolves zone spots for a ball position. Horizontal spots for
// flats and deep zones key off the sidelines; hook and curl key off the ball.
type landmarks struct {
	ball float64
}

func sideX(side, fromSideline float64) float64 {
	if side < 0 {
		return fromSideline
	}
	return field.Width - fromSideline
}

func (l landmarks) flat(side float64) Landmark {
	return Landmark{Name: "flat", Point: field.Pt(sideX(side, 8), field.LOS+4)}
}

func (l landmarks) curl(side float64) Landmark {
	x := field.Clamp(l.ball+side*12, 8, field.Width-8)
	return Landmark{Name: "curl", Point: field.Pt(x, field.LOS+10)}
}

func (l landmarks) curlFlat(side float64) Landmark {
	c, f := l.curl(side).Point, l.flat(side).Point
	return Landmark{Name: "curl-flat", Point: field.Pt((c.X+f.X)/2, field.LOS+7)}
}

func (l landmarks) hook(side float64) Landmark {
	return Landmark{Name: "hook", Point: field.Pt(l.ball+side*5, field.LOS+8)}
}

func (l landmarks) middleHook() Landmark {
	return Landmark{Name: "middle-hook", Point: field.Pt(l.ball, field.LOS+10)}
}

func (l landmarks) robber(depth float64) Landmark {
	return Landmark{Name: "robber", Point: field.Pt(l.ball, field.LOS+depth)}
}

func (l landmarks) deepThird(side float64) Landmark {
	return Landmark{Name: "deep-third", Point: field.Pt(sideX(side, field.Width/6), field.LOS+18), Deep: true}
}

func (l landmarks) deepMiddle() Landmark {
	return Landmark{Name: "deep-middle", Point: field.Pt(field.CenterX, field.LOS+18), Deep: true}
}

func (l landmarks) deepHalf(side float64) Landmark {
	return Landmark{Name: "deep-half", Point: field.Pt(sideX(side, field.Width/4), field.LOS+17), Deep: true}
}

func (l landmarks) quarterOuter(side float64) Landmark {
	return Landmark{Name: "deep-quarter", Point: field.Pt(sideX(side, field.Width/8), field.LOS+15), Deep: true}
}

func (l landmarks) quarterInner(side float64) Landmark {
	return Landmark{Name: "deep-quarter", Point: field.Pt(sideX(side, 3*field.Width/8), field.LOS+15), Deep: true}
}

func (l landmarks) pole() Landmark {
	return Landmark{Name: "tampa-pole", Point: field.Pt(field.CenterX, field.LOS+16), Deep: true}
}

// gap returns a rush point at the line for a blitzer.
func (l landmarks) gap(offset float64) field.Point {
	return field.Pt(l.ball+offset, field.LOS)
}
