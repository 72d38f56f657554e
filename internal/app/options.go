package service

import (
	"time"

	"github.com/okian/gridiron/internal/domain/engine"
	"github.com/okian/gridiron/internal/domain/grading"
	"github.com/okian/gridiron/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithParams sets the engine tuning every new session starts with.
func WithParams(p engine.Params) Option {
	return func(s *Service) {
		s.params = p
	}
}

// WithFrameInterval sets the frame scheduler period.
func WithFrameInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.frameInterval = d
		}
	}
}

// WithCommandQueueSize bounds each session's command queue.
func WithCommandQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.commandQueueSize = size
		}
	}
}

// WithSummaryQueueSize bounds the summary queue feeding the graders.
func WithSummaryQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.summaryQueueSize = size
		}
	}
}

// WithGraderCount sets the number of grading workers.
func WithGraderCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.graderCount = count
		}
	}
}

// WithDedupeSize sets how many command ids each session remembers.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithAlignmentCacheSize bounds each session's alignment cache.
func WithAlignmentCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.cacheSize = size
		}
	}
}

// WithMaxSessions caps live sessions.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithSessionSeed seeds sessions created without a seed. Zero draws a
// random seed per session.
func WithSessionSeed(seed uint64) Option {
	return func(s *Service) {
		s.sessionSeed = seed
	}
}

// WithGradingLatencyRange sets the simulated grader latency.
func WithGradingLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(s *Service) {
		if minLatency >= 0 && maxLatency >= minLatency {
			s.gradingMin = minLatency
			s.gradingMax = maxLatency
		}
	}
}

// WithGradeTimeout bounds each grading call; zero disables the bound.
func WithGradeTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.gradeTimeout = d
		}
	}
}

// WithGrader replaces the in-memory grader.
func WithGrader(g grading.Grader) Option {
	return func(s *Service) {
		if g != nil {
			s.grader = g
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
