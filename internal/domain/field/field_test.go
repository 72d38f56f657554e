package field_test

import (
	"math"
	"testing"

	"github.com/okian/gridiron/internal/domain/field"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGeometry(t *testing.T) {
	Convey("Given field points", t, func() {
		a := field.Pt(10, 20)
		b := field.Pt(13, 24)

		Convey("Distance is planar", func() {
			So(a.Dist(b), ShouldAlmostEqual, 5.0, 1e-9)
		})

		Convey("Lerp interpolates linearly", func() {
			m := a.Lerp(b, 0.5)
			So(m.X, ShouldAlmostEqual, 11.5, 1e-9)
			So(m.Y, ShouldAlmostEqual, 22.0, 1e-9)
		})

		Convey("ClampLen caps vector length", func() {
			v := field.Pt(6, 8).ClampLen(5)
			So(v.Len(), ShouldAlmostEqual, 5.0, 1e-9)
			So(field.Pt(1, 1).ClampLen(5), ShouldResemble, field.Pt(1, 1))
		})

		Convey("Unit of zero vector is zero", func() {
			So(field.Point{}.Unit(), ShouldResemble, field.Point{})
		})

		Convey("AngleBetween measures degrees", func() {
			So(field.AngleBetween(field.Pt(0, 1), field.Pt(1, 0)), ShouldAlmostEqual, 90, 1e-9)
			So(field.AngleBetween(field.Pt(0, 1), field.Pt(0, -1)), ShouldAlmostEqual, 180, 1e-9)
			So(field.AngleBetween(field.Point{}, field.Pt(0, 1)), ShouldEqual, 0)
		})
	})

	Convey("Given the field landmarks", t, func() {
		Convey("Hashes are symmetric about the center", func() {
			So(field.HashLeft+field.HashRight, ShouldAlmostEqual, field.Width, 1e-9)
			So(field.BallX(field.HashL), ShouldEqual, field.HashLeft)
			So(field.BallX(field.HashR), ShouldEqual, field.HashRight)
		})

		Convey("Unknown hash input falls back to the left hash", func() {
			So(field.ParseHash("middle"), ShouldEqual, field.HashL)
			So(field.ParseHash("right"), ShouldEqual, field.HashR)
		})

		Convey("InBounds keeps points off the sideline", func() {
			p := field.InBounds(field.Pt(-4, 200))
			So(p.X, ShouldEqual, field.Margin)
			So(p.Y, ShouldEqual, field.Length)
		})

		Convey("SmoothStep is clamped and monotone", func() {
			prev := -1.0
			for a := -0.5; a <= 1.5; a += 0.05 {
				v := field.SmoothStep(a)
				So(v, ShouldBeGreaterThanOrEqualTo, prev)
				So(v, ShouldBeBetweenOrEqual, 0, 1)
				prev = v
			}
			So(math.Abs(field.SmoothStep(0.5)-0.5), ShouldBeLessThan, 1e-12)
		})
	})
}
