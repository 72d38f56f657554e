package swagger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/smartystreets/goconvey/convey"
)

func TestSwaggerHandler(t *testing.T) {
	convey.Convey("Given a router with the docs registered", t, func() {
		r := mux.NewRouter()
		Register(r)

		convey.Convey("Then it serves the OpenAPI document", func() {
			req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", http.NoBody)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "openapi: 3.0.3")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "/sessions/{id}/commands")
		})

		convey.Convey("And it serves the ReDoc page", func() {
			req := httptest.NewRequest(http.MethodGet, "/api-docs", http.NoBody)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "text/html; charset=utf-8")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "redoc-container")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "/openapi.yaml")
		})

		convey.Convey("And other methods are refused", func() {
			req := httptest.NewRequest(http.MethodPost, "/openapi.yaml", http.NoBody)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusMethodNotAllowed)
		})
	})

	convey.Convey("Given no router", t, func() {
		convey.So(func() { Register(nil) }, convey.ShouldPanic)
	})
}
