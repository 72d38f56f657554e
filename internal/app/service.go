// Package service owns the live simulation sessions: it runs the frame
// scheduler, queues commands per session and forwards resolved throws to the
// grading pipeline.
package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/gridiron/internal/adapters/mq/queue"
	"github.com/okian/gridiron/internal/adapters/mq/worker"
	"github.com/okian/gridiron/internal/adapters/repository"
	"github.com/okian/gridiron/internal/domain/dedupe"
	"github.com/okian/gridiron/internal/domain/engine"
	"github.com/okian/gridiron/internal/domain/grading"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/openness"
	"github.com/okian/gridiron/internal/domain/types"
	"github.com/okian/gridiron/pkg/logger"
	"github.com/okian/gridiron/pkg/metrics"
)

const systemMetricsInterval = 5 * time.Second

// Stats summarises the service for monitoring.
type Stats struct {
	Started         bool                `json:"started"`
	Sessions        int                 `json:"sessions"`
	MaxSessions     int                 `json:"max_sessions"`
	FrameIntervalMs int64               `json:"frame_interval_ms"`
	Graders         int                 `json:"graders"`
	SummaryQueueLen int                 `json:"summary_queue_length"`
	SummaryQueueCap int                 `json:"summary_queue_capacity"`
	Store           repository.Snapshot `json:"store"`
}

// Service implements the API dependencies for the simulator.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*session

	// Core components
	store     *repository.TreapStore
	summaries *queue.InMemoryQueue[model.ThrowSummary]
	grader    grading.Grader
	pool      *worker.Pool

	// Configuration
	params           engine.Params
	frameInterval    time.Duration
	commandQueueSize int
	summaryQueueSize int
	graderCount      int
	dedupeSize       int
	cacheSize        int
	maxSessions      int
	sessionSeed      uint64
	gradingMin       time.Duration
	gradingMax       time.Duration
	gradeTimeout     time.Duration

	// State
	started bool
	cancel  context.CancelFunc
	loops   *errgroup.Group

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		sessions:         make(map[string]*session),
		params:           engine.DefaultParams(),
		frameInterval:    16 * time.Millisecond,
		commandQueueSize: 256,
		summaryQueueSize: 10000,
		graderCount:      runtime.NumCPU(),
		dedupeSize:       1024,
		cacheSize:        8,
		maxSessions:      64,
		gradingMin:       20 * time.Millisecond,
		gradingMax:       60 * time.Millisecond,
		gradeTimeout:     time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start wires the grading pipeline and starts the background loops.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting simulation service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.store = repository.NewTreapStore(runCtx)
	s.summaries = queue.NewInMemoryQueue[model.ThrowSummary](
		queue.WithCapacity[model.ThrowSummary](s.summaryQueueSize),
		queue.WithMeter[model.ThrowSummary](queue.SummaryMeter{}),
	)
	if s.grader == nil {
		s.grader = grading.NewInMemoryGrader(
			grading.WithLatencyRange(s.gradingMin, s.gradingMax),
		)
	}
	s.pool = worker.NewPool(s.graderCount, s.summaries, s.grader, s.store,
		worker.WithGradeTimeout(s.gradeTimeout),
	)
	s.pool.Start(runCtx)

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return s.frameLoop(gctx) })
	g.Go(func() error { return s.systemLoop(gctx) })
	s.loops = g

	s.started = true
	s.logger.Info(ctx, "simulation service started",
		logger.Int("graders", s.pool.Size()),
		logger.Int("summaryQueueSize", s.summaryQueueSize),
		logger.Int("commandQueueSize", s.commandQueueSize),
		logger.Int("maxSessions", s.maxSessions),
		logger.Int("frameIntervalMs", int(s.frameInterval.Milliseconds())),
	)

	return nil
}

// Stop gracefully shuts down the service. Live sessions are closed.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	sessions := s.sessions
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	ctx := context.Background()
	s.logger.Info(ctx, "stopping simulation service...")

	s.cancel()
	if err := s.loops.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn(ctx, "background loop stopped with error", logger.Error(err))
	}

	for _, ss := range sessions {
		ss.close()
	}
	metrics.UpdateLiveSessions(0)

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "grading pool shutdown failed", logger.Error(err))
	}
	_ = s.store.Close()

	s.logger.Info(ctx, "simulation service stopped")
}

func (s *Service) frameLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := s.Step(ctx); errors.Is(err, ErrNotStarted) {
				return nil
			}
			metrics.RecordTickLatency(float64(time.Since(start).Microseconds()) / 1000)
		}
	}
}

func (s *Service) systemLoop(ctx context.Context) error {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	var m runtime.MemStats
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
			metrics.RecordSystemGCPauseTime(float64(m.PauseNs[(m.NumGC+255)%256]) / 1e6)
		}
	}
}

// Step advances every session by one frame interval. The frame scheduler
// calls it on each tick.
func (s *Service) Step(ctx context.Context) error {
	s.mu.RLock()
	if !s.started {
		s.mu.RUnlock()
		return ErrNotStarted
	}
	live := make([]*session, 0, len(s.sessions))
	for _, ss := range s.sessions {
		live = append(live, ss)
	}
	s.mu.RUnlock()

	for _, ss := range live {
		for _, sum := range ss.step(ctx, s.frameInterval) {
			s.forward(ctx, sum)
		}
	}
	return nil
}

// forward hands a resolved throw to the graders. A full queue drops the
// summary; the engine never waits on grading.
func (s *Service) forward(ctx context.Context, sum model.ThrowSummary) { //nolint:gocritic // hugeParam: summaries are values
	metrics.RecordThrow(sum.Outcome(), sum.Probability)
	metrics.RecordReleaseOpenness(sum.Release.Score)

	s.logger.Info(ctx, "throw resolved",
		logger.String("throwID", sum.ID),
		logger.String("sessionID", sum.SessionID),
		logger.Uint64("playID", sum.PlayID),
		logger.String("target", string(sum.Target)),
		logger.String("outcome", sum.Outcome()),
		logger.Float64("probability", sum.Probability),
		logger.String("contest", sum.Contest),
		logger.String("spot", sum.Spot),
	)

	if !s.summaries.Enqueue(ctx, sum) {
		metrics.RecordErrorByComponent("service", "summary_dropped")
		s.logger.Warn(ctx, "summary queue full, throw not graded", logger.String("throwID", sum.ID))
	}
}

// CreateSession starts a new session. A nil seed falls back to the
// configured session seed, or a random one when that is zero.
func (s *Service) CreateSession(ctx context.Context, seed *uint64) (SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return SessionInfo{}, ErrNotStarted
	}
	if len(s.sessions) >= s.maxSessions {
		metrics.RecordErrorByComponent("service", "too_many_sessions")
		return SessionInfo{}, fmt.Errorf("%w: %d live", ErrTooManySessions, len(s.sessions))
	}

	var sd uint64
	switch {
	case seed != nil:
		sd = *seed
	case s.sessionSeed != 0:
		sd = s.sessionSeed
	default:
		sd = rand.Uint64() //nolint:gosec // simulation seed
	}

	id := uuid.NewString()
	ss := &session{
		id:      id,
		seed:    sd,
		created: time.Now().UTC(),
		commands: queue.NewInMemoryQueue[engine.Command](
			queue.WithCapacity[engine.Command](s.commandQueueSize),
			queue.WithMeter[engine.Command](queue.CommandMeter{}),
		),
		deduper: dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize)),
		engine: engine.New(
			engine.WithSeed(sd),
			engine.WithSessionID(id),
			engine.WithParams(s.params),
			engine.WithCacheSize(s.cacheSize),
		),
		subscribers: make(map[chan engine.Frame]struct{}),
		logger:      s.logger.Named("session"),
	}
	s.sessions[id] = ss
	metrics.UpdateLiveSessions(len(s.sessions))

	s.logger.Info(ctx, "session created", logger.String("sessionID", id), logger.Uint64("seed", sd))
	return ss.info(ctx), nil
}

// DeleteSession closes a session and forgets its graded throws.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	ss, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
		metrics.UpdateLiveSessions(len(s.sessions))
	}
	store := s.store
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	ss.close()
	dropped := store.DropSession(ctx, id)
	s.logger.Info(ctx, "session deleted", logger.String("sessionID", id), logger.Int("throwsDropped", dropped))
	return nil
}

// Session describes one session.
func (s *Service) Session(ctx context.Context, id string) (SessionInfo, error) {
	ss, err := s.lookup(id)
	if err != nil {
		return SessionInfo{}, err
	}
	return ss.info(ctx), nil
}

// Sessions lists live sessions, oldest first.
func (s *Service) Sessions(ctx context.Context) []SessionInfo {
	s.mu.RLock()
	live := make([]*session, 0, len(s.sessions))
	for _, ss := range s.sessions {
		live = append(live, ss)
	}
	s.mu.RUnlock()

	out := make([]SessionInfo, 0, len(live))
	for _, ss := range live {
		out = append(out, ss.info(ctx))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Service) lookup(id string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	ss, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return ss, nil
}

// Submit queues a command for the session's next frame. A command whose id
// was already seen is acknowledged as a duplicate and not applied again.
func (s *Service) Submit(ctx context.Context, id string, cmd engine.Command) (Ack, error) { //nolint:gocritic // hugeParam: commands are values
	ss, err := s.lookup(id)
	if err != nil {
		return Ack{}, err
	}
	if !slices.Contains(engine.Kinds, cmd.Kind) {
		metrics.RecordCommandRejected(string(cmd.Kind), "unknown_kind")
		return Ack{}, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Kind)
	}

	ack := Ack{SessionID: id, CommandID: cmd.ID, Kind: cmd.Kind}

	if ss.deduper.SeenAndRecord(ctx, cmd.ID) {
		metrics.RecordCommandDuplicate()
		s.logger.Debug(ctx, "duplicate command skipped",
			logger.String("sessionID", id),
			logger.String("commandID", cmd.ID),
		)
		ack.Duplicate = true
		ack.Queued = ss.commands.Len(ctx)
		return ack, nil
	}

	if !ss.commands.Enqueue(ctx, cmd) {
		ss.deduper.Unrecord(ctx, cmd.ID)
		if ss.commands.IsClosed() {
			return Ack{}, fmt.Errorf("%w: %s", ErrSessionClosed, id)
		}
		return Ack{}, fmt.Errorf("%w: %s", ErrBackpressure, id)
	}

	metrics.RecordCommandEnqueued(string(cmd.Kind))
	ack.Queued = ss.commands.Len(ctx)
	return ack, nil
}

// Frame returns the session's current frame.
func (s *Service) Frame(ctx context.Context, id string) (engine.Frame, error) {
	ss, err := s.lookup(id)
	if err != nil {
		return engine.Frame{}, err
	}
	var f engine.Frame
	err = ss.with(func(e *engine.Engine) error {
		f = e.Frame()
		return nil
	})
	return f, err
}

// Snapshot returns the replayable description of the current play.
func (s *Service) Snapshot(ctx context.Context, id string) (engine.Snapshot, error) {
	ss, err := s.lookup(id)
	if err != nil {
		return engine.Snapshot{}, err
	}
	var snap engine.Snapshot
	err = ss.with(func(e *engine.Engine) error {
		var ok bool
		if snap, ok = e.Snapshot(); !ok {
			return engine.ErrNoPlay
		}
		return nil
	})
	return snap, err
}

// Meta returns the defense's decisions and derived reads for the current play.
func (s *Service) Meta(ctx context.Context, id string) (engine.SnapMeta, error) {
	ss, err := s.lookup(id)
	if err != nil {
		return engine.SnapMeta{}, err
	}
	var meta engine.SnapMeta
	err = ss.with(func(e *engine.Engine) error {
		var ok bool
		if meta, ok = e.Meta(); !ok {
			return engine.ErrNoPlay
		}
		return nil
	})
	return meta, err
}

// Openness reads a receiver's openness at normalized time t of the current
// play.
func (s *Service) Openness(ctx context.Context, id, receiver string, t float64) (openness.Reading, error) {
	ss, err := s.lookup(id)
	if err != nil {
		return openness.Reading{}, err
	}
	r, ok := model.ParseReceiver(receiver)
	if !ok {
		return openness.Reading{}, fmt.Errorf("%w: %q", engine.ErrUnknownReceiver, receiver)
	}
	var reading openness.Reading
	err = ss.with(func(e *engine.Engine) error {
		reading, err = e.Openness(r, t)
		return err
	})
	return reading, err
}

// Results returns the most recent applied command results, oldest first.
func (s *Service) Results(ctx context.Context, id string) ([]engine.Result, error) {
	ss, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return slices.Clone(ss.results), nil
}

// Throws returns the session's best graded throws.
func (s *Service) Throws(ctx context.Context, id string, limit int) ([]types.Entry, error) {
	if _, err := s.lookup(id); err != nil {
		return nil, err
	}
	return s.store.SessionTopN(ctx, id, limit)
}

// TopThrows returns the best graded throws across sessions.
func (s *Service) TopThrows(ctx context.Context, limit int) ([]types.Entry, error) {
	store, err := s.ranked()
	if err != nil {
		return nil, err
	}
	return store.TopN(ctx, limit)
}

// Throw returns one graded throw with its global rank.
func (s *Service) Throw(ctx context.Context, throwID string) (types.Entry, error) {
	store, err := s.ranked()
	if err != nil {
		return types.Entry{}, err
	}
	return store.Get(ctx, throwID)
}

func (s *Service) ranked() (*repository.TreapStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// Subscribe streams the session's frames until cancel is called or the
// session closes. Slow readers miss frames rather than stall the scheduler.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan engine.Frame, func(), error) {
	ss, err := s.lookup(id)
	if err != nil {
		return nil, nil, err
	}
	return ss.subscribe()
}

// Stats returns service statistics for monitoring.
func (s *Service) Stats(ctx context.Context) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Started:         s.started,
		Sessions:        len(s.sessions),
		MaxSessions:     s.maxSessions,
		FrameIntervalMs: s.frameInterval.Milliseconds(),
		Graders:         s.graderCount,
	}
	if s.started {
		st.Graders = s.pool.Size()
		st.SummaryQueueLen = s.summaries.Len(ctx)
		st.SummaryQueueCap = s.summaries.Capacity()
		st.Store = s.store.Snapshot()
	}
	return st
}
