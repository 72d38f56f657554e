package formation_test

import (
	"testing"

	"github.com/okian/gridiron/internal/domain/field"
	"github.com/okian/gridiron/internal/domain/formation"
	"github.com/okian/gridiron/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAlign(t *testing.T) {
	Convey("Given every formation on both hashes", t, func() {
		for _, f := range model.Formations {
			for _, h := range []field.Hash{field.HashL, field.HashR} {
				a, ok := formation.Align(f, h)
				b, _ := formation.Align(f, h)

				So(ok, ShouldBeTrue)
				So(a.Spots, ShouldHaveLength, len(model.Receivers))
				So(a.Spots, ShouldResemble, b.Spots)
				for _, p := range a.Spots {
					So(p.X, ShouldBeBetween, 0, field.Width)
					So(p.Y, ShouldBeLessThan, field.LOS)
				}
			}
		}
	})

	Convey("Given the hash side", t, func() {
		l, _ := formation.Align(model.FormationDoubles, field.HashL)
		r, _ := formation.Align(model.FormationDoubles, field.HashR)

		Convey("Inside receivers move with the ball", func() {
			So(r.Spots[model.RecSlot].X-l.Spots[model.RecSlot].X, ShouldAlmostEqual, field.HashRight-field.HashLeft, 1e-9)
		})

		Convey("Wide receivers hold their sideline landmarks", func() {
			So(r.Spots[model.RecX], ShouldResemble, l.Spots[model.RecX])
		})
	})

	Convey("Given an unknown formation", t, func() {
		a, ok := formation.Align("wishbone", field.HashL)
		So(ok, ShouldBeFalse)
		So(a.Formation, ShouldEqual, model.FormationDoubles)
	})
}

func TestNumber(t *testing.T) {
	Convey("Given trips", t, func() {
		a, _ := formation.Align(model.FormationTrips, field.HashL)
		n := formation.Number(a)

		Convey("The three-receiver side is strong and numbered outside in", func() {
			So(n.Strength, ShouldEqual, 1)
			So(n.Trips, ShouldBeTrue)
			So(n.Bunch, ShouldBeFalse)
			So(n.Right, ShouldResemble, []model.ReceiverID{model.RecZ, model.RecSlot, model.RecTE})
		})

		Convey("The lone receiver side still numbers from the sideline", func() {
			So(n.Left, ShouldResemble, []model.ReceiverID{model.RecX})
			side, num := n.Of(model.RecX)
			So(side, ShouldEqual, -1)
			So(num, ShouldEqual, 1)
		})

		Convey("The back is not numbered", func() {
			So(n.Backfield, ShouldResemble, []model.ReceiverID{model.RecRB})
			_, num := n.Of(model.RecRB)
			So(num, ShouldEqual, 0)
		})
	})

	Convey("Given two-by-two", t, func() {
		a, _ := formation.Align(model.FormationDoubles, field.HashR)
		n := formation.Number(a)

		Convey("The tie goes to the designated strong side", func() {
			So(len(n.Left), ShouldEqual, len(n.Right))
			So(n.Strength, ShouldEqual, a.StrongTag)
			So(n.Trips, ShouldBeFalse)
		})

		Convey("Each side has a #1 and #2", func() {
			one, ok := n.At(-1, 1)
			So(ok, ShouldBeTrue)
			So(one, ShouldEqual, model.RecX)
			two, _ := n.At(1, 2)
			So(two, ShouldEqual, model.RecTE)
			_, ok = n.At(1, 3)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given bunch-weak", t, func() {
		a, _ := formation.Align(model.FormationBunchWeak, field.HashL)
		n := formation.Number(a)

		So(n.Strength, ShouldEqual, -1)
		So(n.Trips, ShouldBeTrue)
		So(n.Bunch, ShouldBeTrue)
		So(n.Point, ShouldEqual, model.RecZ)
		So(n.Left, ShouldResemble, []model.ReceiverID{model.RecX, model.RecZ, model.RecSlot})
	})
}

func TestMotion(t *testing.T) {
	Convey("Given two-by-two", t, func() {
		base, _ := formation.Align(model.FormationDoubles, field.HashL)

		Convey("Shifting the slot across creates trips to the right", func() {
			moved, ok := formation.ApplyMotion(base, formation.Motion{Receiver: model.RecSlot, Type: formation.MotionShift, Direction: 1})
			So(ok, ShouldBeTrue)
			n := formation.Number(moved)
			So(n.Trips, ShouldBeTrue)
			So(n.Strength, ShouldEqual, 1)
			So(n.Left, ShouldResemble, []model.ReceiverID{model.RecX})

			Convey("And the original alignment is untouched", func() {
				So(base.Spots[model.RecSlot].X, ShouldBeLessThan, base.BallX)
			})
		})

		Convey("Orbit motion takes a receiver out of the numbering", func() {
			moved, ok := formation.ApplyMotion(base, formation.Motion{Receiver: model.RecZ, Type: formation.MotionOrbit, Direction: -1})
			So(ok, ShouldBeTrue)
			n := formation.Number(moved)
			So(n.Backfield, ShouldContain, model.RecZ)
		})

		Convey("Unknown motion types are ignored", func() {
			same, ok := formation.ApplyMotion(base, formation.Motion{Receiver: model.RecZ, Type: "SPIN", Direction: 1})
			So(ok, ShouldBeFalse)
			So(same.Spots, ShouldResemble, base.Spots)
		})
	})

	Convey("Direction parsing", t, func() {
		d, ok := formation.ParseDirection("r")
		So(ok, ShouldBeTrue)
		So(d, ShouldEqual, 1)
		_, ok = formation.ParseDirection("up")
		So(ok, ShouldBeFalse)
	})
}

func TestCache(t *testing.T) {
	Convey("Given a cache with room for two alignments", t, func() {
		c := formation.NewCache(formation.WithCapacity(2))

		first := c.Resolve(model.FormationTrips, field.HashL)
		_ = c.Resolve(model.FormationTrips, field.HashL)
		hits, misses := c.Stats()
		So(hits, ShouldEqual, 1)
		So(misses, ShouldEqual, 1)

		Convey("Mutating a returned value does not poison the cache", func() {
			first.Alignment.Spots[model.RecX] = field.Pt(0, 0)
			again := c.Resolve(model.FormationTrips, field.HashL)
			So(again.Alignment.Spots[model.RecX], ShouldNotResemble, field.Pt(0, 0))
		})

		Convey("The least recently used key is evicted first", func() {
			_ = c.Resolve(model.FormationDoubles, field.HashL)
			_ = c.Resolve(model.FormationTrips, field.HashL) // refresh trips
			_ = c.Resolve(model.FormationBunchWeak, field.HashR)
			So(c.Len(), ShouldEqual, 2)

			_, before := c.Stats()
			_ = c.Resolve(model.FormationTrips, field.HashL)
			_, after := c.Stats()
			So(after, ShouldEqual, before)

			_ = c.Resolve(model.FormationDoubles, field.HashL)
			_, final := c.Stats()
			So(final, ShouldEqual, after+1)
		})
	})
}
