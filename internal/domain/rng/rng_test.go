package rng_test

import (
	"testing"

	"github.com/okian/gridiron/internal/domain/rng"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStream(t *testing.T) {
	Convey("Given two streams for the same session seed and play id", t, func() {
		a := rng.ForPlay(1234, 7)
		b := rng.ForPlay(1234, 7)

		Convey("They produce identical sequences", func() {
			for i := 0; i < 256; i++ {
				So(a.Uint64(), ShouldEqual, b.Uint64())
			}
			So(a.Drawn(), ShouldEqual, 256)
		})

		Convey("A different play id yields a different stream", func() {
			c := rng.ForPlay(1234, 8)
			same := 0
			for i := 0; i < 64; i++ {
				if a.Uint64() == c.Uint64() {
					same++
				}
			}
			So(same, ShouldBeLessThan, 2)
		})

		Convey("Sub-streams are stable and do not advance the parent", func() {
			x := a.Sub("press").Float64()
			y := b.Sub("press").Float64()
			So(x, ShouldEqual, y)
			So(a.Drawn(), ShouldEqual, 0)
			So(a.Sub("catch").Float64(), ShouldNotEqual, x)
		})
	})

	Convey("Given a stream", t, func() {
		s := rng.New(99)

		Convey("Float64 stays in [0,1)", func() {
			for i := 0; i < 10000; i++ {
				v := s.Float64()
				So(v >= 0 && v < 1, ShouldBeTrue)
			}
		})

		Convey("Intn stays in range and handles n <= 0", func() {
			for i := 0; i < 1000; i++ {
				v := s.Intn(3)
				So(v >= 0 && v < 3, ShouldBeTrue)
			}
			So(s.Intn(0), ShouldEqual, 0)
		})

		Convey("Weighted never picks zero weights", func() {
			for i := 0; i < 1000; i++ {
				So(s.Weighted([]float64{0, 1, 0, 2}), ShouldBeIn, 1, 3)
			}
			So(s.Weighted([]float64{0, 0}), ShouldEqual, 0)
		})

		Convey("Chance honours the extremes", func() {
			So(s.Chance(0), ShouldBeFalse)
			So(s.Chance(1), ShouldBeTrue)
		})
	})
}
