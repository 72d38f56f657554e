package api

import (
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/okian/gridiron/pkg/logger"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.origins) == 0 || slices.Contains(s.origins, "*") {
		return true
	}
	return slices.Contains(s.origins, origin)
}

// handleStream handles GET /sessions/{id}/stream: a websocket carrying one
// JSON frame per scheduler tick until either side closes.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	const op = "api.stream"
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	frames, cancel, err := s.deps.Subscribe(ctx, id)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	defer cancel()

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		s.logger.Warn(ctx, "stream upgrade failed", logger.String("sessionID", id), logger.Error(err))
		return
	}
	defer conn.Close()

	// The read pump only services control frames; it ends when the client
	// goes away.
	gone := make(chan struct{})
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-gone:
			return
		case <-ctx.Done():
			return
		case f, ok := <-frames:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
				return
			}
			if err := conn.WriteJSON(f); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
