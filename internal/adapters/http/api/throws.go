package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// handleSessionThrows handles GET /sessions/{id}/throws?limit=N.
func (s *Server) handleSessionThrows(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_session_throws"
	n, err := s.limit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	entries, err := s.deps.Throws(r.Context(), mux.Vars(r)["id"], n)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleTopThrows handles GET /throws?limit=N across sessions.
func (s *Server) handleTopThrows(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_throws"
	n, err := s.limit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	entries, err := s.deps.TopThrows(r.Context(), n)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleGetThrow handles GET /throws/{throwID}.
func (s *Server) handleGetThrow(w http.ResponseWriter, r *http.Request) {
	entry, err := s.deps.Throw(r.Context(), mux.Vars(r)["throwID"])
	if err != nil {
		writeFailure(w, "api.get_throw", err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
