package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// handleState handles GET /sessions/{id}/state.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	f, err := s.deps.Frame(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, "api.get_state", err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// handleSnapshot handles GET /sessions/{id}/snapshot.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Snapshot(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, "api.get_snapshot", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleMeta handles GET /sessions/{id}/meta.
func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	meta, err := s.deps.Meta(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, "api.get_meta", err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// handleOpenness handles GET /sessions/{id}/openness?receiver=X&t=0.5.
func (s *Server) handleOpenness(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_openness"
	q := r.URL.Query()
	receiver := q.Get("receiver")
	if receiver == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing receiver")))
		return
	}
	t, err := strconv.ParseFloat(q.Get("t"), 64)
	if err != nil || math.IsNaN(t) || math.IsInf(t, 0) {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("t must be a number")))
		return
	}

	reading, err := s.deps.Openness(r.Context(), mux.Vars(r)["id"], receiver, t)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}
