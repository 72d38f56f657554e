package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
)

type createSessionRequest struct {
	Seed *uint64 `json:"seed,omitempty"`
}

// handleCreateSession handles POST /sessions. The body is optional.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_session"
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	info, err := s.deps.CreateSession(r.Context(), req.Seed)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+info.ID)
	writeJSON(w, http.StatusCreated, info)
}

// handleListSessions handles GET /sessions.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Sessions(r.Context()))
}

// handleGetSession handles GET /sessions/{id}.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	info, err := s.deps.Session(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, "api.get_session", err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleDeleteSession handles DELETE /sessions/{id}.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.DeleteSession(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeFailure(w, "api.delete_session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
