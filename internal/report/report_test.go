package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/gridiron/internal/adapters/http/api"
	service "github.com/okian/gridiron/internal/app"
	"github.com/okian/gridiron/internal/domain/engine"
	"github.com/okian/gridiron/internal/domain/model"
)

func init() {
	_ = SetupLogging(io.Discard, false)
}

func testConfig() *Config {
	return &Config{
		Formation: "trips",
		Coverage:  "C3",
		Concept:   "flood",
		Runs:      8,
		BaseSeed:  100,
		Workers:   4,
		TopN:      3,
		Timeout:   5 * time.Second,
	}
}

func all(model.ReceiverID) bool { return true }

func TestPickTarget(t *testing.T) {
	Convey("Given receivers coming open at different times", t, func() {
		first := map[model.ReceiverID]float64{model.RecZ: 0.4, model.RecSlot: 0.2, model.RecTE: 0.2}
		noRead := func(model.ReceiverID, float64) (float64, error) { return 0, errors.New("unused") }

		Convey("The earliest eligible receiver wins, ties in canonical order", func() {
			tg, err := pickTarget(first, all, noRead)
			So(err, ShouldBeNil)
			So(tg.receiver, ShouldEqual, model.RecSlot)
			So(tg.t, ShouldEqual, 0.2)
			So(tg.opened, ShouldBeTrue)
		})

		Convey("Ineligible receivers are skipped", func() {
			eligible := func(r model.ReceiverID) bool { return r == model.RecZ }
			tg, err := pickTarget(first, eligible, noRead)
			So(err, ShouldBeNil)
			So(tg.receiver, ShouldEqual, model.RecZ)
		})
	})

	Convey("Given nobody comes open", t, func() {
		scores := map[model.ReceiverID]float64{model.RecX: 0.1, model.RecRB: 0.3, model.RecTE: 0.2}
		read := func(r model.ReceiverID, t float64) (float64, error) {
			So(t, ShouldEqual, checkdownT)
			return scores[r], nil
		}

		Convey("It checks down to the most open receiver", func() {
			tg, err := pickTarget(nil, all, read)
			So(err, ShouldBeNil)
			So(tg.receiver, ShouldEqual, model.RecRB)
			So(tg.t, ShouldEqual, checkdownT)
			So(tg.opened, ShouldBeFalse)
		})

		Convey("Read failures are returned", func() {
			boom := errors.New("boom")
			_, err := pickTarget(nil, all, func(model.ReceiverID, float64) (float64, error) { return 0, boom })
			So(errors.Is(err, boom), ShouldBeTrue)
		})

		Convey("No eligible receiver is an error", func() {
			_, err := pickTarget(nil, func(model.ReceiverID) bool { return false }, read)
			So(errors.Is(err, ErrNoTarget), ShouldBeTrue)
		})
	})
}

func TestLocalPlay(t *testing.T) {
	Convey("Given an in-process player", t, func() {
		p := NewLocal(testConfig(), engine.DefaultParams())
		ctx := context.Background()

		Convey("A seeded play resolves with a grade", func() {
			r, err := p.Play(ctx, 7)
			So(err, ShouldBeNil)
			So(r.Seed, ShouldEqual, 7)
			So(r.ThrowID, ShouldNotBeEmpty)
			So(r.PlayID, ShouldEqual, 1)
			So(model.Receivers, ShouldContain, r.Target)
			So(r.Grade, ShouldBeIn, gradeOrder)
			So(r.Score, ShouldBeBetweenOrEqual, 0, 100)
			So(r.ReleaseT, ShouldBeBetweenOrEqual, 0, 1)
			So(r.Err, ShouldBeEmpty)
		})

		Convey("The same seed plays the same throw", func() {
			a, err := p.Play(ctx, 11)
			So(err, ShouldBeNil)
			b, err := p.Play(ctx, 11)
			So(err, ShouldBeNil)

			So(b.Target, ShouldEqual, a.Target)
			So(b.ReleaseT, ShouldEqual, a.ReleaseT)
			So(b.ReleaseOpenness, ShouldEqual, a.ReleaseOpenness)
			So(b.Caught, ShouldEqual, a.Caught)
			So(b.Score, ShouldEqual, a.Score)
		})

		Convey("Unknown names are substituted, not refused", func() {
			cfg := testConfig()
			cfg.Coverage = "prevent"
			r, err := NewLocal(cfg, engine.DefaultParams()).Play(ctx, 3)
			So(err, ShouldBeNil)
			So(r.Substitutions, ShouldNotBeEmpty)
		})
	})
}

type stubPlayer struct {
	fail map[uint64]bool
}

func (s stubPlayer) Play(ctx context.Context, seed uint64) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}
	if s.fail[seed] {
		return Run{}, errors.New("no snap")
	}
	return Run{Seed: seed, Target: model.RecX, Opened: true, Caught: seed%2 == 0, Grade: "B", Score: float64(seed)}, nil
}

func TestExecute(t *testing.T) {
	Convey("Given a batch of seeds", t, func() {
		cfg := testConfig()

		Convey("Runs come back in seed order with failures kept", func() {
			runs, err := Execute(context.Background(), cfg, stubPlayer{fail: map[uint64]bool{103: true}})
			So(err, ShouldBeNil)
			So(runs, ShouldHaveLength, cfg.Runs)
			for i, r := range runs {
				So(r.Seed, ShouldEqual, cfg.BaseSeed+uint64(i))
			}
			So(runs[3].Err, ShouldEqual, "no snap")
			So(runs[4].Err, ShouldBeEmpty)
		})

		Convey("Cancellation aborts the batch", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := Execute(ctx, cfg, stubPlayer{})
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})

		Convey("A zero base seed still yields consecutive seeds", func() {
			cfg.BaseSeed = 0
			seeds := Seeds(cfg)
			So(seeds, ShouldHaveLength, cfg.Runs)
			So(seeds[1], ShouldEqual, seeds[0]+1)
		})
	})
}

func TestSummarize(t *testing.T) {
	Convey("Given played and failed runs", t, func() {
		runs := []Run{
			{Seed: 1, Target: model.RecX, Opened: true, Caught: true, ReleaseOpenness: 0.8, HoldMs: 2000, Grade: "A", Score: 90},
			{Seed: 2, Target: model.RecX, Opened: true, ReleaseOpenness: 0.4, HoldMs: 3000, Grade: "D", Score: 40},
			{Seed: 3, Target: model.RecTE, Caught: true, ReleaseOpenness: 0.6, HoldMs: 1000, Grade: "B", Score: 80},
			{Seed: 4, Err: "boom"},
		}
		st := Summarize(runs)

		Convey("Averages cover the played runs only", func() {
			So(st.Runs, ShouldEqual, 4)
			So(st.Failed, ShouldEqual, 1)
			So(st.Completions, ShouldEqual, 2)
			So(st.Checkdowns, ShouldEqual, 1)
			So(st.CompletionRate, ShouldAlmostEqual, 2.0/3.0)
			So(st.ReleaseOpenness, ShouldAlmostEqual, 0.6)
			So(st.HoldMs, ShouldAlmostEqual, 2000)
			So(st.Score, ShouldAlmostEqual, 70)
		})

		Convey("Targets and grades are tallied", func() {
			So(st.Targets, ShouldHaveLength, 2)
			So(st.Targets["X"].Throws, ShouldEqual, 2)
			So(st.Targets["X"].Completions, ShouldEqual, 1)
			So(st.Targets["X"].ReleaseOpenness, ShouldAlmostEqual, 0.6)
			So(st.Grades, ShouldResemble, map[string]int{"A": 1, "B": 1, "D": 1})
		})

		Convey("Nothing played leaves zero averages", func() {
			st := Summarize([]Run{{Err: "x"}})
			So(st.Failed, ShouldEqual, 1)
			So(st.CompletionRate, ShouldEqual, 0)
		})
	})
}

func TestRank(t *testing.T) {
	Convey("Given runs with tied scores", t, func() {
		runs := []Run{
			{Seed: 1, ThrowID: "c", Score: 80},
			{Seed: 2, ThrowID: "a", Score: 90, Caught: true},
			{Seed: 3, ThrowID: "b", Score: 90},
			{Seed: 4, Err: "skipped"},
		}
		ranked := Rank(runs)

		Convey("Ties share a rank and the next rank skips", func() {
			So(ranked, ShouldHaveLength, 3)
			So(ranked[0].Seed, ShouldEqual, 2)
			So(ranked[0].Outcome, ShouldEqual, "complete")
			So(ranked[1].Seed, ShouldEqual, 3)
			So([]int{ranked[0].Rank, ranked[1].Rank, ranked[2].Rank}, ShouldResemble, []int{1, 1, 3})
		})
	})
}

func TestWrite(t *testing.T) {
	Convey("Given a report", t, func() {
		cfg := testConfig()
		runs := []Run{
			{Seed: 100, Target: model.RecSlot, Route: "CORNER", Opened: true, Caught: true, Grade: "A", Score: 91},
			{Seed: 101, Err: "boom"},
		}
		rep := &Report{Config: cfg, Runs: runs, Stats: Summarize(runs)}

		Convey("The summary tables are printed", func() {
			var buf bytes.Buffer
			So(Write(&buf, rep, 5), ShouldBeNil)
			out := buf.String()
			So(out, ShouldContainSubstring, "coverage C3")
			So(out, ShouldContainSubstring, "COMPLETE")
			So(out, ShouldContainSubstring, "SLOT")
			So(out, ShouldContainSubstring, "RANK")
			So(out, ShouldNotContainSubstring, "CORNER")
		})

		Convey("Verbose adds a row per run", func() {
			cfg.Verbose = true
			var buf bytes.Buffer
			So(Write(&buf, rep, 0), ShouldBeNil)
			out := buf.String()
			So(out, ShouldContainSubstring, "CORNER")
			So(out, ShouldContainSubstring, "error: boom")
			So(out, ShouldNotContainSubstring, "RANK")
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given an in-process report with an output file", t, func() {
		cfg := testConfig()
		cfg.OutputFile = filepath.Join(t.TempDir(), "out", "report.json")
		var buf bytes.Buffer

		rep, err := Run(context.Background(), cfg, engine.DefaultParams(), &buf)
		So(err, ShouldBeNil)

		Convey("Every run is played and the tables written", func() {
			So(rep.Runs, ShouldHaveLength, cfg.Runs)
			So(rep.Stats.Failed, ShouldEqual, 0)
			So(rep.Stats.Duration, ShouldBeGreaterThan, 0)
			So(buf.String(), ShouldContainSubstring, "TARGET")
		})

		Convey("The runs are saved as JSON", func() {
			data, err := os.ReadFile(cfg.OutputFile)
			So(err, ShouldBeNil)
			var saved Report
			So(json.Unmarshal(data, &saved), ShouldBeNil)
			So(saved.Runs, ShouldHaveLength, cfg.Runs)
			So(saved.Config.Coverage, ShouldEqual, "C3")
		})
	})
}

func TestRemotePlay(t *testing.T) {
	Convey("Given a running service", t, func() {
		svc := service.New(
			service.WithFrameInterval(time.Millisecond),
			service.WithGradingLatencyRange(0, 0),
			service.WithGraderCount(1),
		)
		So(svc.Start(context.Background()), ShouldBeNil)
		r := mux.NewRouter()
		api.NewServer(svc).Register(r)
		srv := httptest.NewServer(r)

		Reset(func() {
			srv.Close()
			svc.Stop()
		})

		cfg := testConfig()
		cfg.BaseURL = srv.URL

		Convey("A remote play picks the same throw as an in-process one", func() {
			remote, err := NewRemote(cfg).Play(context.Background(), 21)
			So(err, ShouldBeNil)
			local, err := NewLocal(cfg, engine.DefaultParams()).Play(context.Background(), 21)
			So(err, ShouldBeNil)

			So(remote.Target, ShouldEqual, local.Target)
			So(remote.Opened, ShouldEqual, local.Opened)
			So(remote.ReleaseT, ShouldAlmostEqual, local.ReleaseT)
			So(remote.Grade, ShouldBeIn, gradeOrder)
			So(remote.ThrowID, ShouldNotBeEmpty)
		})

		Convey("The session is removed after the play", func() {
			_, err := NewRemote(cfg).Play(context.Background(), 22)
			So(err, ShouldBeNil)
			So(svc.Sessions(context.Background()), ShouldBeEmpty)
		})

		Convey("Run checks health first", func() {
			cfg.Runs = 2
			var buf bytes.Buffer
			rep, err := Run(context.Background(), cfg, engine.DefaultParams(), &buf)
			So(err, ShouldBeNil)
			So(rep.Stats.Failed, ShouldEqual, 0)
		})
	})

	Convey("Given nothing listening", t, func() {
		cfg := testConfig()
		cfg.BaseURL = "http://127.0.0.1:1"
		_, err := Run(context.Background(), cfg, engine.DefaultParams(), io.Discard)
		So(err, ShouldNotBeNil)
	})
}
