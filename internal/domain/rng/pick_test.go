package rng

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPickOverrun(t *testing.T) {
	Convey("A draw that rounds past the total lands on the last positive weight", t, func() {
		So(pick([]float64{0.2, 0.3, 0}, 0.5000001), ShouldEqual, 1)
		So(pick([]float64{0, 1, 0, 0}, 1), ShouldEqual, 1)
		So(pick([]float64{0.5, 0, 0.5, 0}, 2), ShouldEqual, 2)
	})

	Convey("In-range draws follow the cumulative weights", t, func() {
		w := []float64{1, 0, 2}
		So(pick(w, 0), ShouldEqual, 0)
		So(pick(w, 0.999), ShouldEqual, 0)
		So(pick(w, 1), ShouldEqual, 2)
		So(pick(w, 2.999), ShouldEqual, 2)
	})
}
