package worker

import (
	"time"

	"github.com/okian/gridiron/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithGradeTimeout bounds how long one throw may spend in the grader. A
// throw that runs over is dropped and counted as a grading error; zero
// leaves grading bounded only by the worker's context.
func WithGradeTimeout(d time.Duration) Option {
	return func(w *InMemoryWorker) {
		if d >= 0 {
			w.gradeTimeout = d
		}
	}
}
