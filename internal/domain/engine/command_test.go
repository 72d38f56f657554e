package engine_test

import (
	"testing"

	"github.com/okian/gridiron/internal/domain/engine"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/route"
	. "github.com/smartystreets/goconvey/convey"
)

func TestApply(t *testing.T) {
	Convey("Given an engine", t, func() {
		e := newEngine(21)

		Convey("Unknown calls are substituted and reported at the snap", func() {
			res := configure(e, engine.Command{Concept: "hail-mary", Coverage: "C11", Formation: "wishbone"})
			So(res.Accepted, ShouldBeTrue)
			So(res.Notes, ShouldHaveLength, 3)

			s := e.Settings()
			So(s.Concept, ShouldEqual, route.CurlFlat)
			So(s.Coverage, ShouldEqual, model.Cover3)
			So(s.Formation, ShouldEqual, model.FormationDoubles)

			e.Apply(engine.Command{Kind: engine.KindSnap})
			m, _ := e.Meta()
			So(m.Substitutions, ShouldHaveLength, 3)

			Convey("And the next snap starts clean", func() {
				e.Snap()
				m, _ := e.Meta()
				So(m.Substitutions, ShouldBeEmpty)
			})
		})

		Convey("An unknown route override runs a checkdown", func() {
			res := e.Apply(engine.Command{Kind: engine.KindRouteOverride, Receiver: "z", Route: "moonshot"})
			So(res.Accepted, ShouldBeTrue)
			So(res.Notes, ShouldNotBeEmpty)
			pl := e.Snap()
			So(pl.Keywords[model.RecZ], ShouldEqual, route.Check)

			e.Apply(engine.Command{Kind: engine.KindClearOverrides})
			pl = e.Snap()
			So(pl.Keywords[model.RecZ], ShouldEqual, route.Routes(route.CurlFlat)[model.RecZ])
		})

		Convey("Throw commands report the rejection reason", func() {
			res := e.Apply(engine.Command{Kind: engine.KindThrow, Receiver: "X"})
			So(res.Accepted, ShouldBeFalse)
			So(res.Err, ShouldEqual, engine.ErrNoThrowWindow)

			res = e.Apply(engine.Command{Kind: engine.KindThrow, Receiver: "QB"})
			So(res.Err, ShouldEqual, engine.ErrUnknownReceiver)
		})

		Convey("Motion moves the receiver before numbering", func() {
			res := e.Apply(engine.Command{Kind: engine.KindMotion, Receiver: "SLOT", Motion: "SHIFT", Direction: "R"})
			So(res.Accepted, ShouldBeTrue)
			pl := e.Snap()
			So(pl.Alignment.Spots[model.RecSlot].X, ShouldBeGreaterThan, pl.Alignment.BallX)
			So(pl.Numbering.Trips, ShouldBeTrue)

			Convey("And is consumed by that snap", func() {
				pl := e.Snap()
				So(pl.Alignment.Spots[model.RecSlot].X, ShouldBeLessThan, pl.Alignment.BallX)
			})
		})

		Convey("Bad motion and rotation input is ignored", func() {
			So(e.Apply(engine.Command{Kind: engine.KindMotion, Receiver: "X", Motion: "SPIN", Direction: "L"}).Accepted, ShouldBeFalse)
			So(e.Apply(engine.Command{Kind: engine.KindRotationMode, Mode: "SIDEWAYS"}).Accepted, ShouldBeFalse)
			So(e.Apply(engine.Command{Kind: engine.KindRotationMode, Mode: "weak"}).Accepted, ShouldBeTrue)
			So(e.Settings().Rotation, ShouldEqual, model.RotationWeak)
		})

		Convey("Speed applies at the next snap", func() {
			e.Apply(engine.Command{Kind: engine.KindSpeed, ReceiverSpeed: 8, BallSpeed: 1.5, PlayDurationMs: 4000})
			pl := e.Snap()
			So(pl.Speed.ReceiverSpeed, ShouldEqual, 8)
			So(pl.Speed.BallSpeed, ShouldEqual, 1.5)
			So(pl.Speed.PlaySeconds, ShouldEqual, 4)
		})

		Convey("Toggling a blocker twice restores the route", func() {
			e.Apply(engine.Command{Kind: engine.KindToggleBlocker, Receiver: "TE"})
			So(e.Snap().Keywords[model.RecTE], ShouldEqual, route.Block)
			e.Apply(engine.Command{Kind: engine.KindToggleBlocker, Receiver: "TE"})
			So(e.Snap().Keywords[model.RecTE], ShouldNotEqual, route.Block)
		})

		Convey("Seek and pause need a play", func() {
			So(e.Apply(engine.Command{Kind: engine.KindSeek, T: 0.5}).Err, ShouldEqual, engine.ErrNoPlay)
			So(e.Apply(engine.Command{Kind: engine.KindPause}).Err, ShouldEqual, engine.ErrNoPlay)
		})

		Convey("Unknown kinds are rejected", func() {
			So(e.Apply(engine.Command{Kind: "dance"}).Err, ShouldEqual, engine.ErrUnknownCommand)
		})
	})
}
