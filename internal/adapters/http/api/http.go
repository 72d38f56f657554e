// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/okian/gridiron/internal/adapters/repository"
	service "github.com/okian/gridiron/internal/app"
	"github.com/okian/gridiron/internal/domain/engine"
	"github.com/okian/gridiron/internal/domain/openness"
	"github.com/okian/gridiron/internal/domain/types"
	"github.com/okian/gridiron/pkg/logger"
)

const (
	defaultThrowLimit = 10
	defaultMaxLimit   = 100
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	CreateSession(ctx context.Context, seed *uint64) (service.SessionInfo, error)
	DeleteSession(ctx context.Context, id string) error
	Session(ctx context.Context, id string) (service.SessionInfo, error)
	Sessions(ctx context.Context) []service.SessionInfo

	// Submit queues a command for the session's next frame.
	Submit(ctx context.Context, id string, cmd engine.Command) (service.Ack, error)

	Frame(ctx context.Context, id string) (engine.Frame, error)
	Snapshot(ctx context.Context, id string) (engine.Snapshot, error)
	Meta(ctx context.Context, id string) (engine.SnapMeta, error)
	Openness(ctx context.Context, id, receiver string, t float64) (openness.Reading, error)
	Results(ctx context.Context, id string) ([]engine.Result, error)
	Subscribe(ctx context.Context, id string) (<-chan engine.Frame, func(), error)

	Throws(ctx context.Context, id string, limit int) ([]types.Entry, error)
	TopThrows(ctx context.Context, limit int) ([]types.Entry, error)
	Throw(ctx context.Context, throwID string) (types.Entry, error)

	Stats(ctx context.Context) service.Stats
}

// Option configures the Server.
type Option func(*Server)

// WithMaxLimit caps the limit accepted by the ranked throw queries.
func WithMaxLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithAllowedOrigins sets the origins accepted by the frame stream.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// WithLogger sets the logger used by long-lived handlers.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// Server wires HTTP routes for the simulator API.
type Server struct {
	deps     Dependencies
	maxLimit int
	origins  []string
	logger   logger.Logger
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{deps: deps, maxLimit: defaultMaxLimit}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}
	return s
}

// Register attaches all API routes to r.
func (s *Server) Register(r *mux.Router) {
	r.Use(MetricsMiddleware)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metricsHandler()).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)

	r.HandleFunc("/sessions", s.handleCreateSession).Methods(http.MethodPost)
	r.HandleFunc("/sessions", s.handleListSessions).Methods(http.MethodGet)

	sr := r.PathPrefix("/sessions/{id}").Subrouter()
	sr.HandleFunc("", s.handleGetSession).Methods(http.MethodGet)
	sr.HandleFunc("", s.handleDeleteSession).Methods(http.MethodDelete)
	sr.HandleFunc("/commands", s.handleCommand).Methods(http.MethodPost)
	sr.HandleFunc("/results", s.handleResults).Methods(http.MethodGet)
	sr.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	sr.HandleFunc("/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	sr.HandleFunc("/meta", s.handleMeta).Methods(http.MethodGet)
	sr.HandleFunc("/openness", s.handleOpenness).Methods(http.MethodGet)
	sr.HandleFunc("/throws", s.handleSessionThrows).Methods(http.MethodGet)
	sr.HandleFunc("/stream", s.handleStream).Methods(http.MethodGet)

	r.HandleFunc("/throws", s.handleTopThrows).Methods(http.MethodGet)
	r.HandleFunc("/throws/{throwID}", s.handleGetThrow).Methods(http.MethodGet)
}

// limit parses the limit query parameter, defaulting when absent.
func (s *Server) limit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return min(defaultThrowLimit, s.maxLimit), nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.New("limit must be a positive integer")
	}
	if n > s.maxLimit {
		return 0, errors.New("limit exceeds " + strconv.Itoa(s.maxLimit))
	}
	return n, nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err onto a status and error code.
func writeFailure(w http.ResponseWriter, op string, err error) {
	status, code := classify(err)
	writeError(w, status, code, Wrap(op, err))
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrBackpressure), errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrTooManySessions):
		return http.StatusTooManyRequests, "too_many_sessions"
	case errors.Is(err, service.ErrUnknownCommand),
		errors.Is(err, engine.ErrUnknownReceiver),
		errors.Is(err, repository.ErrInvalidLimit),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, engine.ErrNoPlay):
		return http.StatusConflict, "no_play"
	case errors.Is(err, service.ErrNotStarted),
		errors.Is(err, service.ErrSessionClosed),
		errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	}
	return http.StatusInternalServerError, "internal_error"
}
