// Package worker runs grading workers that pull throw summaries off the
// summary queue, grade them and record the result in the throw store.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/gridiron/internal/domain/grading"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/types"
	"github.com/okian/gridiron/pkg/logger"
	"github.com/okian/gridiron/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Recorder stores a graded throw.
type Recorder interface {
	Record(ctx context.Context, e types.Entry) (bool, error)
}

// Grader grades a throw summary.
type Grader interface {
	Grade(ctx context.Context, s model.ThrowSummary) (grading.Result, error)
}

// Queue defines how workers receive summaries.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.ThrowSummary
}

// Worker grades summaries and records the results.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	grader   Grader
	recorder Recorder
	name     string

	gradeTimeout time.Duration

	// Shutdown control
	shutdown chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, grader Grader, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		grader:   grader,
		recorder: recorder,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	summaries := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case s, ok := <-summaries:
			if !ok {
				return
			}

			if err := w.process(ctx, s); err != nil {
				w.logger.Error(ctx, "error grading throw", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stop()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) stop() {
	w.stopOnce.Do(func() { close(w.shutdown) })
}

// process grades one summary and records it.
func (w *InMemoryWorker) process(ctx context.Context, s model.ThrowSummary) error { //nolint:gocritic // hugeParam: summaries are passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	gradeCtx := ctx
	if w.gradeTimeout > 0 {
		var cancel context.CancelFunc
		gradeCtx, cancel = context.WithTimeout(ctx, w.gradeTimeout)
		defer cancel()
	}
	gradeStart := time.Now()
	res, err := w.grader.Grade(gradeCtx, s)
	metrics.RecordGradingLatency(float64(time.Since(gradeStart).Milliseconds()))

	if err != nil {
		metrics.RecordGradingError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "grading_error")
		metrics.RecordErrorByType("grading_error", "high")
		w.logger.Error(ctx, "grading failed for throw",
			logger.String("throwID", s.ID),
			logger.Error(err),
		)
		return fmt.Errorf("failed to grade throw %s: %w", s.ID, err)
	}

	entry := types.Entry{
		ThrowID:   s.ID,
		SessionID: s.SessionID,
		PlayID:    s.PlayID,
		Target:    string(s.Target),
		Outcome:   s.Outcome(),
		Grade:     res.Grade,
		Score:     res.Score,
	}
	if _, err := w.recorder.Record(ctx, entry); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		metrics.RecordErrorByType("store_error", "high")
		w.logger.Error(ctx, "store update failed for throw",
			logger.String("throwID", s.ID),
			logger.Error(err),
		)
		return fmt.Errorf("store update failed: %w", err)
	}

	metrics.RecordGradedThrow(res.Grade)
	w.logger.Debug(ctx, "throw graded",
		logger.String("throwID", s.ID),
		logger.String("grade", res.Grade),
		logger.Float64("score", res.Score),
	)

	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	logger logger.Logger
}

// NewPool creates a new worker pool. A count below one sizes the pool from
// the CPU count. opts apply to every worker after its name is set.
func NewPool(workerCount int, queue Queue, grader Grader, recorder Recorder, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			grader,
			recorder,
			append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)...,
		)
	}

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
	metrics.UpdateWorkerActiveCount(len(p.workers))
}

// Stop signals every worker and waits a bounded time for each.
func (p *Pool) Stop() {
	for _, worker := range p.workers {
		worker.stop()
	}

	for _, worker := range p.workers {
		select {
		case <-worker.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
	metrics.UpdateWorkerActiveCount(0)
}

// Shutdown closes the queue, if it can be closed, and waits for the workers.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	for _, worker := range p.workers {
		worker.stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerActiveCount(0)

	return nil
}
