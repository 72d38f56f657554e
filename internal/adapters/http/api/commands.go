package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/okian/gridiron/internal/domain/engine"
)

type ackResponse struct {
	Status    string      `json:"status"`
	Duplicate bool        `json:"duplicate"`
	CommandID string      `json:"command_id,omitempty"`
	Kind      engine.Kind `json:"kind"`
	Queued    int         `json:"queued"`
}

func validateCommand(c *engine.Command) error {
	c.Kind = engine.Kind(strings.ToLower(strings.TrimSpace(string(c.Kind))))
	switch c.Kind {
	case "":
		return errors.New("missing kind")
	case engine.KindThrow, engine.KindRouteOverride, engine.KindMotion, engine.KindToggleBlocker:
		if strings.TrimSpace(c.Receiver) == "" {
			return errors.New("missing receiver")
		}
	case engine.KindRotationMode:
		if strings.TrimSpace(c.Mode) == "" {
			return errors.New("missing mode")
		}
	}
	return nil
}

// handleCommand handles POST /sessions/{id}/commands. The command is applied
// at the session's next frame; the response only acknowledges queueing.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_command"
	var cmd engine.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validateCommand(&cmd); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	ack, err := s.deps.Submit(r.Context(), mux.Vars(r)["id"], cmd)
	if err != nil {
		writeFailure(w, op, err)
		return
	}

	resp := ackResponse{
		Status:    "accepted",
		Duplicate: ack.Duplicate,
		CommandID: ack.CommandID,
		Kind:      ack.Kind,
		Queued:    ack.Queued,
	}
	if ack.Duplicate {
		resp.Status = "duplicate"
		writeJSON(w, http.StatusOK, resp)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

// handleResults handles GET /sessions/{id}/results: the outcome of the most
// recently applied commands.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Results(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, "api.get_results", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
