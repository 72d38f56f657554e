package api

import (
	"net/http"
)

type healthResponse struct {
	Status   string `json:"status"`
	Started  bool   `json:"started"`
	Sessions int    `json:"sessions"`
}

// handleHealth handles GET /healthz. It answers 503 until the service has
// started.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.deps.Stats(r.Context())
	if !st.Started {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "starting"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Started: true, Sessions: st.Sessions})
}
