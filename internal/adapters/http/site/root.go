// Package site serves the embedded play viewer.
package site

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Register mounts the viewer at the root of r. It must be registered after
// every API route since it matches any path.
func Register(r *mux.Router) {
	if r == nil {
		panic("router is nil")
	}

	r.PathPrefix("/").Handler(http.FileServer(FS())).Methods(http.MethodGet, http.MethodHead)
}
