package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	service "github.com/okian/gridiron/internal/app"
	"github.com/okian/gridiron/internal/config"
)

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestModuleGraph(t *testing.T) {
	convey.Convey("Given the server module", t, func() {
		convey.Convey("Then the dependency graph is complete", func() {
			err := fx.ValidateApp(Module, fx.NopLogger, fx.Invoke(run))
			convey.So(err, convey.ShouldBeNil)
		})
	})
}

func TestServerLifecycle(t *testing.T) {
	t.Setenv("GRIDIRON_ADDR", "127.0.0.1:0")
	t.Setenv("GRIDIRON_MAX_SESSIONS", "3")
	t.Setenv("GRIDIRON_LOG_LEVEL", "error")

	convey.Convey("Given the app built from env", t, func() {
		var (
			cfg *config.Config
			svc *service.Service
			h   http.Handler
		)
		app := fxtest.New(t, Module, fx.NopLogger, fx.Invoke(run), fx.Populate(&cfg, &svc, &h))

		convey.So(cfg.MaxSessions, convey.ShouldEqual, 3)

		convey.Convey("When it has not started", func() {
			convey.Convey("Then health reports starting", func() {
				w := serve(h, http.MethodGet, "/healthz", "")
				convey.So(w.Code, convey.ShouldEqual, http.StatusServiceUnavailable)
			})
		})

		convey.Convey("When it starts", func() {
			app.RequireStart()

			convey.Convey("Then the API, docs and viewer are routed", func() {
				convey.So(serve(h, http.MethodGet, "/healthz", "").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(serve(h, http.MethodGet, "/api-docs", "").Code, convey.ShouldEqual, http.StatusOK)

				index := serve(h, http.MethodGet, "/", "")
				convey.So(index.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(index.Body.String(), convey.ShouldContainSubstring, "<canvas")

				created := serve(h, http.MethodPost, "/sessions", `{"seed":5}`)
				convey.So(created.Code, convey.ShouldEqual, http.StatusCreated)
				convey.So(created.Header().Get("X-Request-ID"), convey.ShouldNotBeEmpty)
			})

			convey.Convey("And the configured session cap applies", func() {
				for range 3 {
					convey.So(serve(h, http.MethodPost, "/sessions", "").Code, convey.ShouldEqual, http.StatusCreated)
				}
				convey.So(serve(h, http.MethodPost, "/sessions", "").Code, convey.ShouldEqual, http.StatusTooManyRequests)
			})

			convey.Reset(func() {
				app.RequireStop()
			})
		})
	})
}

func TestServerLogLevelFallback(t *testing.T) {
	convey.Convey("Given an unknown log level", t, func() {
		cfg := config.New(t.Context())
		cfg.LogLevel = "loud"

		convey.Convey("Then the logger still builds", func() {
			log, err := newLogger(cfg)
			convey.So(err, convey.ShouldBeNil)
			convey.So(log, convey.ShouldNotBeNil)
		})
	})
}
