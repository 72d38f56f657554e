package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	service "github.com/okian/gridiron/internal/app"
	"github.com/okian/gridiron/internal/domain/engine"
	"github.com/okian/gridiron/internal/domain/types"
	logging "github.com/okian/gridiron/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logging.Init()
}

// newService returns a started service whose frame loop never fires on its
// own; tests drive frames with Step.
func newService(opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithFrameInterval(time.Hour),
		service.WithGradingLatencyRange(0, 0),
		service.WithGraderCount(2),
		service.WithSessionSeed(7),
	}
	svc := service.New(append(base, opts...)...)
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	return svc
}

func submit(svc *service.Service, id string, cmds ...engine.Command) {
	for _, c := range cmds {
		if _, err := svc.Submit(context.Background(), id, c); err != nil {
			panic(err)
		}
	}
}

func waitForThrows(svc *service.Service, id string, n int) []types.Entry {
	deadline := time.Now().Add(2 * time.Second)
	for {
		entries, err := svc.Throws(context.Background(), id, 10)
		if err == nil && len(entries) >= n {
			return entries
		}
		if time.Now().After(deadline) {
			return entries
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		svc := service.New()
		ctx := context.Background()

		Convey("Then session operations report it", func() {
			_, err := svc.CreateSession(ctx, nil)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)

			_, err = svc.Frame(ctx, "missing")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)

			So(errors.Is(svc.Step(ctx), service.ErrNotStarted), ShouldBeTrue)
			So(svc.Stats(ctx).Started, ShouldBeFalse)
		})

		Convey("And Stop is a no-op", func() {
			So(func() { svc.Stop() }, ShouldNotPanic)
		})
	})

	Convey("Given a started service", t, func() {
		svc := newService(service.WithMaxSessions(2))
		ctx := context.Background()
		Reset(func() { svc.Stop() })

		Convey("When sessions are created", func() {
			first, err := svc.CreateSession(ctx, nil)
			So(err, ShouldBeNil)
			seed := uint64(99)
			second, err := svc.CreateSession(ctx, &seed)
			So(err, ShouldBeNil)

			Convey("Then they take the configured or given seed", func() {
				So(first.Seed, ShouldEqual, 7)
				So(second.Seed, ShouldEqual, 99)
				So(first.ID, ShouldNotEqual, second.ID)
				So(first.Phase, ShouldEqual, engine.PhasePreSnap)
			})

			Convey("Then the limit is enforced", func() {
				_, err := svc.CreateSession(ctx, nil)
				So(errors.Is(err, service.ErrTooManySessions), ShouldBeTrue)
			})

			Convey("Then they are listed oldest first", func() {
				list := svc.Sessions(ctx)
				So(len(list), ShouldEqual, 2)
				So(list[0].ID, ShouldEqual, first.ID)
				So(svc.Stats(ctx).Sessions, ShouldEqual, 2)
			})

			Convey("Then a deleted session is gone", func() {
				So(svc.DeleteSession(ctx, first.ID), ShouldBeNil)
				_, err := svc.Frame(ctx, first.ID)
				So(errors.Is(err, service.ErrSessionNotFound), ShouldBeTrue)
				So(errors.Is(svc.DeleteSession(ctx, first.ID), service.ErrSessionNotFound), ShouldBeTrue)

				_, err = svc.CreateSession(ctx, nil)
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestServiceCommands(t *testing.T) {
	Convey("Given a session", t, func() {
		svc := newService(service.WithCommandQueueSize(2))
		ctx := context.Background()
		Reset(func() { svc.Stop() })

		info, err := svc.CreateSession(ctx, nil)
		So(err, ShouldBeNil)
		id := info.ID

		Convey("When a command is submitted twice with the same id", func() {
			first, err := svc.Submit(ctx, id, engine.Command{ID: "c1", Kind: engine.KindSnap})
			So(err, ShouldBeNil)
			second, err := svc.Submit(ctx, id, engine.Command{ID: "c1", Kind: engine.KindSnap})
			So(err, ShouldBeNil)

			Convey("Then the second is acknowledged as a duplicate", func() {
				So(first.Duplicate, ShouldBeFalse)
				So(first.Queued, ShouldEqual, 1)
				So(second.Duplicate, ShouldBeTrue)
				So(second.Queued, ShouldEqual, 1)
			})

			Convey("And only one snap is applied", func() {
				So(svc.Step(ctx), ShouldBeNil)
				res, err := svc.Results(ctx, id)
				So(err, ShouldBeNil)
				So(len(res), ShouldEqual, 1)
				So(res[0].Accepted, ShouldBeTrue)
			})
		})

		Convey("When the command queue is full", func() {
			submit(svc, id, engine.Command{ID: "a", Kind: engine.KindSnap}, engine.Command{ID: "b", Kind: engine.KindPause})
			_, err := svc.Submit(ctx, id, engine.Command{ID: "c", Kind: engine.KindResume})

			Convey("Then the caller is told to back off", func() {
				So(errors.Is(err, service.ErrBackpressure), ShouldBeTrue)
			})

			Convey("And the refused id can be retried after a frame", func() {
				So(svc.Step(ctx), ShouldBeNil)
				ack, err := svc.Submit(ctx, id, engine.Command{ID: "c", Kind: engine.KindResume})
				So(err, ShouldBeNil)
				So(ack.Duplicate, ShouldBeFalse)
			})
		})

		Convey("When the command kind is unknown", func() {
			_, err := svc.Submit(ctx, id, engine.Command{Kind: "dance"})

			Convey("Then it is refused before queueing", func() {
				So(errors.Is(err, service.ErrUnknownCommand), ShouldBeTrue)
			})
		})

		Convey("When a throw arrives before any snap", func() {
			submit(svc, id, engine.Command{Kind: engine.KindThrow, Receiver: "X"})
			So(svc.Step(ctx), ShouldBeNil)

			Convey("Then it is rejected without changing state", func() {
				res, err := svc.Results(ctx, id)
				So(err, ShouldBeNil)
				So(len(res), ShouldEqual, 1)
				So(res[0].Accepted, ShouldBeFalse)
				So(res[0].Reason, ShouldEqual, engine.ErrNoThrowWindow.Error())

				f, err := svc.Frame(ctx, id)
				So(err, ShouldBeNil)
				So(f.PlayID, ShouldEqual, 0)
			})
		})
	})
}

func TestServiceViews(t *testing.T) {
	Convey("Given a session", t, func() {
		svc := newService()
		ctx := context.Background()
		Reset(func() { svc.Stop() })

		info, err := svc.CreateSession(ctx, nil)
		So(err, ShouldBeNil)
		id := info.ID

		Convey("Before the snap", func() {
			Convey("Then there is no snapshot, meta or openness", func() {
				_, err := svc.Snapshot(ctx, id)
				So(errors.Is(err, engine.ErrNoPlay), ShouldBeTrue)
				_, err = svc.Meta(ctx, id)
				So(errors.Is(err, engine.ErrNoPlay), ShouldBeTrue)
				_, err = svc.Openness(ctx, id, "X", 0.5)
				So(errors.Is(err, engine.ErrNoPlay), ShouldBeTrue)
			})
		})

		Convey("After the snap", func() {
			submit(svc, id,
				engine.Command{Kind: engine.KindConfigure, Coverage: "cover3", Formation: "trips"},
				engine.Command{Kind: engine.KindSnap},
				engine.Command{Kind: engine.KindPause},
			)
			So(svc.Step(ctx), ShouldBeNil)

			Convey("Then the snapshot replays the seed", func() {
				snap, err := svc.Snapshot(ctx, id)
				So(err, ShouldBeNil)
				So(snap.PlayID, ShouldEqual, 1)
				So(snap.SessionSeed, ShouldEqual, 7)
			})

			Convey("Then meta carries the derived reads", func() {
				meta, err := svc.Meta(ctx, id)
				So(err, ShouldBeNil)
				So(meta.PlayID, ShouldEqual, 1)
				So(meta.Insights.Rushers, ShouldBeGreaterThanOrEqualTo, 4)
				So(meta.Insights.Protectors, ShouldEqual, 5)
			})

			Convey("Then openness is readable at any t", func() {
				r, err := svc.Openness(ctx, id, "x", 0.5)
				So(err, ShouldBeNil)
				So(r.Score, ShouldBeBetweenOrEqual, 0, 1)

				_, err = svc.Openness(ctx, id, "Q", 0.5)
				So(errors.Is(err, engine.ErrUnknownReceiver), ShouldBeTrue)
			})

			Convey("Then the paused clock holds", func() {
				f, err := svc.Frame(ctx, id)
				So(err, ShouldBeNil)
				So(f.T, ShouldEqual, 0)
				So(f.Paused, ShouldBeTrue)
				So(len(f.Receivers), ShouldEqual, 5)
			})
		})
	})
}

func TestServiceGrading(t *testing.T) {
	Convey("Given a session with a resolved throw", t, func() {
		svc := newService()
		ctx := context.Background()
		Reset(func() { svc.Stop() })

		info, err := svc.CreateSession(ctx, nil)
		So(err, ShouldBeNil)
		id := info.ID

		submit(svc, id,
			engine.Command{Kind: engine.KindSnap},
			engine.Command{Kind: engine.KindSeek, T: 0.3},
			engine.Command{Kind: engine.KindThrow, Receiver: "X"},
		)
		So(svc.Step(ctx), ShouldBeNil)

		Convey("Then the throw is graded and ranked", func() {
			entries := waitForThrows(svc, id, 1)
			So(len(entries), ShouldEqual, 1)
			e := entries[0]
			So(e.Rank, ShouldEqual, 1)
			So(e.SessionID, ShouldEqual, id)
			So(e.PlayID, ShouldEqual, 1)
			So(e.Target, ShouldEqual, "X")
			So(e.Grade, ShouldBeIn, []string{"A", "B", "C", "D", "F"})

			got, err := svc.Throw(ctx, e.ThrowID)
			So(err, ShouldBeNil)
			So(got.Rank, ShouldEqual, 1)

			top, err := svc.TopThrows(ctx, 5)
			So(err, ShouldBeNil)
			So(len(top), ShouldEqual, 1)
		})

		Convey("Then the frame shows the play over", func() {
			f, err := svc.Frame(ctx, id)
			So(err, ShouldBeNil)
			So(f.T, ShouldEqual, 1)
			So(f.Summary, ShouldNotBeNil)
		})

		Convey("When the session is deleted", func() {
			waitForThrows(svc, id, 1)
			So(svc.DeleteSession(ctx, id), ShouldBeNil)

			Convey("Then its throws are dropped", func() {
				top, err := svc.TopThrows(ctx, 5)
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 0)
			})
		})
	})
}

func TestServiceSubscribe(t *testing.T) {
	Convey("Given a subscriber", t, func() {
		svc := newService()
		ctx := context.Background()

		info, err := svc.CreateSession(ctx, nil)
		So(err, ShouldBeNil)
		frames, cancel, err := svc.Subscribe(ctx, info.ID)
		So(err, ShouldBeNil)

		Convey("When a frame is stepped", func() {
			submit(svc, info.ID, engine.Command{Kind: engine.KindSnap}, engine.Command{Kind: engine.KindPause})
			So(svc.Step(ctx), ShouldBeNil)

			Convey("Then the frame is delivered", func() {
				select {
				case f := <-frames:
					So(f.PlayID, ShouldEqual, 1)
				case <-time.After(time.Second):
					So("no frame", ShouldBeEmpty)
				}
				cancel()
				svc.Stop()
			})
		})

		Convey("When the service stops", func() {
			svc.Stop()

			Convey("Then the stream closes", func() {
				_, ok := <-frames
				So(ok, ShouldBeFalse)
				So(func() { cancel() }, ShouldNotPanic)
			})
		})
	})
}
