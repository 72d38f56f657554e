package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/okian/gridiron/internal/adapters/http/api"
	service "github.com/okian/gridiron/internal/app"
	"github.com/okian/gridiron/internal/domain/engine"
	"github.com/okian/gridiron/internal/domain/types"
	logging "github.com/okian/gridiron/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logging.Init()
}

type fixture struct {
	svc     *service.Service
	handler http.Handler
}

func newFixture(opts ...service.Option) *fixture {
	base := []service.Option{
		service.WithFrameInterval(time.Hour),
		service.WithGradingLatencyRange(0, 0),
		service.WithSessionSeed(11),
	}
	svc := service.New(append(base, opts...)...)
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}

	r := mux.NewRouter()
	api.NewServer(svc, api.WithMaxLimit(20)).Register(r)
	h := api.CORS([]string{"*"})(api.RequestMiddleware(logging.Get())(r))
	return &fixture{svc: svc, handler: h}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func (f *fixture) session() string {
	w := f.do(http.MethodPost, "/sessions", "")
	So(w.Code, ShouldEqual, http.StatusCreated)
	var info service.SessionInfo
	So(json.Unmarshal(w.Body.Bytes(), &info), ShouldBeNil)
	return info.ID
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var v T
	So(json.Unmarshal(w.Body.Bytes(), &v), ShouldBeNil)
	return v
}

func TestSessionRoutes(t *testing.T) {
	Convey("Given the API", t, func() {
		f := newFixture(service.WithMaxSessions(1))
		Reset(func() { f.svc.Stop() })

		Convey("When a session is created with a seed", func() {
			w := f.do(http.MethodPost, "/sessions", `{"seed": 42}`)

			Convey("Then it is returned with its location", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				info := decode[service.SessionInfo](w)
				So(info.Seed, ShouldEqual, 42)
				So(w.Header().Get("Location"), ShouldEqual, "/sessions/"+info.ID)
				So(w.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)

				got := f.do(http.MethodGet, "/sessions/"+info.ID, "")
				So(got.Code, ShouldEqual, http.StatusOK)
				So(decode[service.SessionInfo](got).ID, ShouldEqual, info.ID)

				list := f.do(http.MethodGet, "/sessions", "")
				So(len(decode[[]service.SessionInfo](list)), ShouldEqual, 1)
			})

			Convey("Then the session limit answers 429", func() {
				again := f.do(http.MethodPost, "/sessions", "")
				So(again.Code, ShouldEqual, http.StatusTooManyRequests)
				So(decode[map[string]string](again)["code"], ShouldEqual, "too_many_sessions")
			})

			Convey("Then it can be deleted once", func() {
				id := decode[service.SessionInfo](w).ID
				So(f.do(http.MethodDelete, "/sessions/"+id, "").Code, ShouldEqual, http.StatusNoContent)
				So(f.do(http.MethodDelete, "/sessions/"+id, "").Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the body is not JSON", func() {
			w := f.do(http.MethodPost, "/sessions", `{seed`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When a request carries its own id", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "req-1")
			w := httptest.NewRecorder()
			f.handler.ServeHTTP(w, req)

			Convey("Then the id is echoed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "req-1")
			})
		})
	})
}

func TestCommandRoutes(t *testing.T) {
	Convey("Given a session", t, func() {
		f := newFixture(service.WithCommandQueueSize(1))
		Reset(func() { f.svc.Stop() })
		id := f.session()
		path := "/sessions/" + id + "/commands"

		Convey("When a command is posted", func() {
			w := f.do(http.MethodPost, path, `{"id":"c1","kind":"SNAP"}`)

			Convey("Then it is accepted for the next frame", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				ack := decode[map[string]any](w)
				So(ack["status"], ShouldEqual, "accepted")
				So(ack["kind"], ShouldEqual, "snap")
			})

			Convey("Then a replay is a duplicate", func() {
				dup := f.do(http.MethodPost, path, `{"id":"c1","kind":"snap"}`)
				So(dup.Code, ShouldEqual, http.StatusOK)
				So(decode[map[string]any](dup)["duplicate"], ShouldBeTrue)
			})

			Convey("Then a full queue answers 429", func() {
				full := f.do(http.MethodPost, path, `{"id":"c2","kind":"pause"}`)
				So(full.Code, ShouldEqual, http.StatusTooManyRequests)
			})

			Convey("Then the result is visible after a frame", func() {
				So(f.svc.Step(context.Background()), ShouldBeNil)
				res := f.do(http.MethodGet, "/sessions/"+id+"/results", "")
				So(res.Code, ShouldEqual, http.StatusOK)
				results := decode[[]engine.Result](res)
				So(len(results), ShouldEqual, 1)
				So(results[0].Accepted, ShouldBeTrue)
			})
		})

		Convey("When the command is malformed", func() {
			Convey("Then missing fields are rejected", func() {
				So(f.do(http.MethodPost, path, `{}`).Code, ShouldEqual, http.StatusBadRequest)
				So(f.do(http.MethodPost, path, `{"kind":"throw"}`).Code, ShouldEqual, http.StatusBadRequest)
				So(f.do(http.MethodPost, path, `{"kind":"rotation_mode"}`).Code, ShouldEqual, http.StatusBadRequest)
				So(f.do(http.MethodPost, path, `not json`).Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("Then unknown kinds are rejected", func() {
				w := f.do(http.MethodPost, path, `{"kind":"audible"}`)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the session does not exist", func() {
			w := f.do(http.MethodPost, "/sessions/nope/commands", `{"kind":"snap"}`)

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestViewRoutes(t *testing.T) {
	Convey("Given a session", t, func() {
		f := newFixture()
		Reset(func() { f.svc.Stop() })
		id := f.session()
		base := "/sessions/" + id

		Convey("Before the snap", func() {
			Convey("Then the state is pre-snap and play views conflict", func() {
				w := f.do(http.MethodGet, base+"/state", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode[engine.Frame](w).Phase, ShouldEqual, engine.PhasePreSnap)

				So(f.do(http.MethodGet, base+"/snapshot", "").Code, ShouldEqual, http.StatusConflict)
				So(f.do(http.MethodGet, base+"/meta", "").Code, ShouldEqual, http.StatusConflict)
				So(f.do(http.MethodGet, base+"/openness?receiver=X&t=0.5", "").Code, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("After the snap", func() {
			So(f.do(http.MethodPost, base+"/commands", `{"kind":"snap"}`).Code, ShouldEqual, http.StatusAccepted)
			So(f.do(http.MethodPost, base+"/commands", `{"kind":"pause"}`).Code, ShouldEqual, http.StatusAccepted)
			So(f.svc.Step(context.Background()), ShouldBeNil)

			Convey("Then the play views answer", func() {
				w := f.do(http.MethodGet, base+"/state", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				frame := decode[engine.Frame](w)
				So(frame.PlayID, ShouldEqual, 1)
				So(frame.Phase, ShouldEqual, engine.PhaseLive)

				snap := f.do(http.MethodGet, base+"/snapshot", "")
				So(snap.Code, ShouldEqual, http.StatusOK)
				So(decode[engine.Snapshot](snap).SessionSeed, ShouldEqual, 11)

				So(f.do(http.MethodGet, base+"/meta", "").Code, ShouldEqual, http.StatusOK)
			})

			Convey("Then openness validates its query", func() {
				So(f.do(http.MethodGet, base+"/openness?receiver=X&t=0.4", "").Code, ShouldEqual, http.StatusOK)
				So(f.do(http.MethodGet, base+"/openness?t=0.4", "").Code, ShouldEqual, http.StatusBadRequest)
				So(f.do(http.MethodGet, base+"/openness?receiver=X&t=soon", "").Code, ShouldEqual, http.StatusBadRequest)
				So(f.do(http.MethodGet, base+"/openness?receiver=QB&t=0.4", "").Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestThrowRoutes(t *testing.T) {
	Convey("Given a session with a graded throw", t, func() {
		f := newFixture()
		Reset(func() { f.svc.Stop() })
		id := f.session()
		base := "/sessions/" + id

		for _, body := range []string{`{"kind":"snap"}`, `{"kind":"seek","t":0.3}`, `{"kind":"throw","receiver":"z"}`} {
			So(f.do(http.MethodPost, base+"/commands", body).Code, ShouldEqual, http.StatusAccepted)
		}
		So(f.svc.Step(context.Background()), ShouldBeNil)

		var entries []types.Entry
		deadline := time.Now().Add(2 * time.Second)
		for len(entries) == 0 && time.Now().Before(deadline) {
			entries = decode[[]types.Entry](f.do(http.MethodGet, base+"/throws", ""))
			time.Sleep(5 * time.Millisecond)
		}

		Convey("Then the session throws are ranked", func() {
			So(len(entries), ShouldEqual, 1)
			So(entries[0].Rank, ShouldEqual, 1)
			So(entries[0].Target, ShouldEqual, "Z")
		})

		Convey("Then the throw is addressable by id", func() {
			w := f.do(http.MethodGet, "/throws/"+entries[0].ThrowID, "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[types.Entry](w).SessionID, ShouldEqual, id)

			So(f.do(http.MethodGet, "/throws/missing", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then limits are validated", func() {
			So(f.do(http.MethodGet, "/throws?limit=5", "").Code, ShouldEqual, http.StatusOK)
			So(f.do(http.MethodGet, "/throws?limit=0", "").Code, ShouldEqual, http.StatusBadRequest)
			So(f.do(http.MethodGet, "/throws?limit=21", "").Code, ShouldEqual, http.StatusBadRequest)
			So(f.do(http.MethodGet, base+"/throws?limit=x", "").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestOperationalRoutes(t *testing.T) {
	Convey("Given the API", t, func() {
		f := newFixture()
		Reset(func() { f.svc.Stop() })

		Convey("Then health reports ok", func() {
			w := f.do(http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[map[string]any](w)["status"], ShouldEqual, "ok")
		})

		Convey("Then stats are served", func() {
			w := f.do(http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[service.Stats](w).Started, ShouldBeTrue)
		})

		Convey("Then metrics are exposed", func() {
			f.do(http.MethodGet, "/stats", "")
			w := f.do(http.MethodGet, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "gridiron_playsim_http_requests_total")
		})

		Convey("Then preflight requests are answered", func() {
			req := httptest.NewRequest(http.MethodOptions, "/sessions", http.NoBody)
			req.Header.Set("Origin", "http://localhost:3000")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			w := httptest.NewRecorder()
			f.handler.ServeHTTP(w, req)
			So(w.Code, ShouldBeLessThan, 300)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
		})

		Convey("When the service is stopped", func() {
			f.svc.Stop()

			Convey("Then health reports starting", func() {
				So(f.do(http.MethodGet, "/healthz", "").Code, ShouldEqual, http.StatusServiceUnavailable)
				So(f.do(http.MethodPost, "/sessions", "").Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})
	})
}

func TestStreamRoute(t *testing.T) {
	Convey("Given a session served over a real listener", t, func() {
		f := newFixture()
		srv := httptest.NewServer(f.handler)
		Reset(func() {
			srv.Close()
			f.svc.Stop()
		})
		id := f.session()

		Convey("When a client subscribes to the stream", func() {
			url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/" + id + "/stream"
			conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
			So(err, ShouldBeNil)
			defer conn.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusSwitchingProtocols)

			Convey("Then each frame is pushed", func() {
				// The subscription is registered before the upgrade completes.
				So(f.svc.Step(context.Background()), ShouldBeNil)
				_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
				var frame engine.Frame
				So(conn.ReadJSON(&frame), ShouldBeNil)
				So(frame.Phase, ShouldEqual, engine.PhasePreSnap)
			})
		})

		Convey("When the session is unknown", func() {
			url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/nope/stream"
			_, resp, err := websocket.DefaultDialer.Dial(url, nil)

			Convey("Then the upgrade is refused", func() {
				So(err, ShouldNotBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}
