package service

import (
	"context"
	"sync"
	"time"

	"github.com/okian/gridiron/internal/adapters/mq/queue"
	"github.com/okian/gridiron/internal/domain/dedupe"
	"github.com/okian/gridiron/internal/domain/engine"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/pkg/logger"
	"github.com/okian/gridiron/pkg/metrics"
)

const (
	resultHistory    = 32
	subscriberBuffer = 4
)

// SessionInfo describes a live session.
type SessionInfo struct {
	ID        string       `json:"id"`
	Seed      uint64       `json:"seed"`
	CreatedAt time.Time    `json:"created_at"`
	PlayID    uint64       `json:"play_id"`
	Phase     engine.Phase `json:"phase"`
	T         float64      `json:"t"`
	Pending   int          `json:"pending_commands"`
}

// Ack acknowledges a submitted command.
type Ack struct {
	SessionID string      `json:"session_id"`
	CommandID string      `json:"command_id,omitempty"`
	Kind      engine.Kind `json:"kind"`
	Duplicate bool        `json:"duplicate"`
	Queued    int         `json:"queued"`
}

// session owns one engine. Commands reach the engine only through the queue,
// drained by the frame scheduler under mu.
type session struct {
	id      string
	seed    uint64
	created time.Time

	commands *queue.InMemoryQueue[engine.Command]
	deduper  dedupe.Deduper

	mu          sync.Mutex
	engine      *engine.Engine
	results     []engine.Result
	subscribers map[chan engine.Frame]struct{}
	cacheHits   uint64
	cacheMisses uint64
	closed      bool

	logger logger.Logger
}

func (ss *session) info(ctx context.Context) SessionInfo {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return SessionInfo{
		ID:        ss.id,
		Seed:      ss.seed,
		CreatedAt: ss.created,
		PlayID:    ss.engine.PlayID(),
		Phase:     ss.engine.Phase(),
		T:         ss.engine.T(),
		Pending:   ss.commands.Len(ctx),
	}
}

// step drains the queued commands, advances the clock by dt and fans the
// frame out. Resolved throws are returned for grading.
func (ss *session) step(ctx context.Context, dt time.Duration) []model.ThrowSummary {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.closed {
		return nil
	}

	var out []model.ThrowSummary
	for _, c := range ss.commands.Drain(ctx, 0) {
		res := ss.engine.Apply(c)
		ss.observe(ctx, c, res)
		if res.Summary != nil {
			out = append(out, *res.Summary)
		}
	}

	if sum := ss.engine.Tick(dt); sum != nil {
		out = append(out, *sum)
	}

	ss.reportCache()

	if len(ss.subscribers) > 0 {
		frame := ss.engine.Frame()
		for ch := range ss.subscribers {
			select {
			case ch <- frame:
			default:
				// slow reader; it gets the next frame
			}
		}
	}
	return out
}

// observe logs and counts one applied command. Must be called with mu held.
func (ss *session) observe(ctx context.Context, c engine.Command, res engine.Result) { //nolint:gocritic // hugeParam: commands are values
	ss.results = append(ss.results, res)
	if len(ss.results) > resultHistory {
		ss.results = ss.results[len(ss.results)-resultHistory:]
	}

	if !res.Accepted {
		metrics.RecordCommandRejected(string(c.Kind), res.Reason)
		ss.logger.Warn(ctx, "command rejected",
			logger.String("commandID", c.ID),
			logger.String("kind", string(c.Kind)),
			logger.String("reason", res.Reason),
		)
		return
	}

	for _, note := range res.Notes {
		ss.logger.Info(ctx, "substitution", logger.String("kind", string(c.Kind)), logger.String("note", note))
	}

	switch c.Kind {
	case engine.KindSnap:
		metrics.RecordSnap()
		st := ss.engine.Play().Settings
		ss.logger.Info(ctx, "snap",
			logger.Uint64("playID", ss.engine.PlayID()),
			logger.String("formation", string(st.Formation)),
			logger.String("coverage", string(st.Coverage)),
			logger.String("concept", string(st.Concept)),
		)
	case engine.KindThrow:
		_, tr := ss.engine.Ball()
		ss.logger.Info(ctx, "throw",
			logger.Uint64("playID", ss.engine.PlayID()),
			logger.String("receiver", c.Receiver),
			logger.Float64("releaseT", tr.ReleaseT),
			logger.Float64("arriveT", tr.ArriveT),
		)
	case engine.KindReset:
		ss.logger.Info(ctx, "reset", logger.Uint64("playID", ss.engine.PlayID()))
	default:
		ss.logger.Debug(ctx, "command applied",
			logger.String("commandID", c.ID),
			logger.String("kind", string(c.Kind)),
		)
	}
}

// reportCache forwards alignment cache counts since the last step. Must be
// called with mu held.
func (ss *session) reportCache() {
	hits, misses := ss.engine.Cache().Stats()
	if hits == ss.cacheHits && misses == ss.cacheMisses {
		return
	}
	metrics.RecordAlignmentCache(hits-ss.cacheHits, misses-ss.cacheMisses)
	ss.cacheHits, ss.cacheMisses = hits, misses
}

func (ss *session) subscribe() (<-chan engine.Frame, func(), error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.closed {
		return nil, nil, ErrSessionClosed
	}

	ch := make(chan engine.Frame, subscriberBuffer)
	ss.subscribers[ch] = struct{}{}
	metrics.UpdateStreamClients(1)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			ss.mu.Lock()
			defer ss.mu.Unlock()
			if _, ok := ss.subscribers[ch]; ok {
				delete(ss.subscribers, ch)
				close(ch)
				metrics.UpdateStreamClients(-1)
			}
		})
	}
	return ch, cancel, nil
}

// close stops the session: queued commands are dropped and subscribers
// released.
func (ss *session) close() {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.closed {
		return
	}
	ss.closed = true
	_ = ss.commands.Close()
	ss.commands.Drain(context.Background(), 0)
	for ch := range ss.subscribers {
		delete(ss.subscribers, ch)
		close(ch)
		metrics.UpdateStreamClients(-1)
	}
}

// with runs fn against the engine under the session lock.
func (ss *session) with(fn func(e *engine.Engine) error) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.closed {
		return ErrSessionClosed
	}
	return fn(ss.engine)
}
