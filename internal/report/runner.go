package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/gridiron/internal/domain/engine"
	"github.com/okian/gridiron/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

const (
	// progressInterval paces the progress log line.
	progressInterval   = time.Second
	defaultPlayTimeout = 30 * time.Second
)

// Report is everything one invocation produced.
type Report struct {
	Config *Config `json:"config"`
	Runs   []Run   `json:"runs"`
	Stats  *Stats  `json:"stats"`
}

// Run executes the complete report: plays every seed, prints the tables to
// w and optionally saves the runs as JSON.
func Run(ctx context.Context, cfg *Config, params engine.Params, w io.Writer) (*Report, error) {
	log := logger.Get().Named("report")
	log.Info(ctx, "starting play report",
		logger.String("formation", cfg.Formation),
		logger.String("coverage", cfg.Coverage),
		logger.String("concept", cfg.Concept),
		logger.Int("runs", cfg.Runs),
		logger.Int("workers", cfg.Workers),
		logger.String("baseURL", cfg.BaseURL),
	)

	var p Player = NewLocal(cfg, params)
	if cfg.BaseURL != "" {
		remote := NewRemote(cfg)
		if err := remote.client.checkHealth(ctx); err != nil {
			return nil, fmt.Errorf("service health check failed: %w", err)
		}
		p = remote
	}

	start := time.Now()
	runs, err := Execute(ctx, cfg, p)
	if err != nil {
		return nil, err
	}
	stats := Summarize(runs)
	stats.StartTime, stats.EndTime = start, time.Now()
	stats.Duration = stats.EndTime.Sub(start)

	rep := &Report{Config: cfg, Runs: runs, Stats: stats}
	if err := Write(w, rep, cfg.TopN); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}

	if cfg.OutputFile != "" {
		if err := save(cfg.OutputFile, rep); err != nil {
			log.Warn(ctx, "failed to save report", logger.Error(err))
		} else {
			log.Info(ctx, "report saved to file", logger.String("filename", cfg.OutputFile))
		}
	}

	log.Info(ctx, "final statistics",
		logger.Int("runs", stats.Runs),
		logger.Int("failed", stats.Failed),
		logger.Float64("completionRate", stats.CompletionRate),
		logger.Float64("releaseOpenness", stats.ReleaseOpenness),
		logger.String("duration", stats.Duration.String()),
	)
	return rep, nil
}

// Seeds returns the seed of every run: consecutive from cfg.BaseSeed, or
// from a random base when it is zero.
func Seeds(cfg *Config) []uint64 {
	base := cfg.BaseSeed
	if base == 0 {
		base = rand.Uint64()
	}
	out := make([]uint64, cfg.Runs)
	for i := range out {
		out[i] = base + uint64(i)
	}
	return out
}

// Execute plays every seed with up to cfg.Workers plays in flight. A failed
// play is kept with its error; only cancellation aborts the batch. Runs come
// back in seed order.
func Execute(ctx context.Context, cfg *Config, p Player) ([]Run, error) {
	log := logger.Get().Named("report")
	seeds := Seeds(cfg)
	runs := make([]Run, len(seeds))

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultPlayTimeout
	}

	var done, failed atomic.Int64
	var lastReport atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, seed := range seeds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			runCtx, cancel := context.WithTimeout(gctx, timeout)
			r, err := p.Play(runCtx, seed)
			cancel()
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				failed.Add(1)
				log.Warn(gctx, "play failed", logger.Uint64("seed", seed), logger.Error(err))
				r = Run{Seed: seed, Err: err.Error()}
			}
			runs[i] = r

			n := done.Add(1)
			now := time.Now().UnixNano()
			if last := lastReport.Load(); now-last >= int64(progressInterval) && lastReport.CompareAndSwap(last, now) {
				log.Debug(gctx, "progress",
					logger.Int("done", int(n)),
					logger.Int("total", len(seeds)),
					logger.Int("failed", int(failed.Load())),
				)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("play report interrupted: %w", err)
	}
	return runs, nil
}

// Summarize aggregates the successful runs.
func Summarize(runs []Run) *Stats {
	st := &Stats{
		Runs:    len(runs),
		Grades:  make(map[string]int),
		Targets: make(map[string]*TargetStats),
	}
	played := 0
	for i := range runs {
		r := &runs[i]
		if r.Err != "" {
			st.Failed++
			continue
		}
		played++
		if r.Caught {
			st.Completions++
		}
		if !r.Opened {
			st.Checkdowns++
		}
		st.ReleaseOpenness += r.ReleaseOpenness
		st.CatchOpenness += r.CatchOpenness
		st.Probability += r.Probability
		st.HoldMs += float64(r.HoldMs)
		st.Score += r.Score
		st.Grades[r.Grade]++

		ts := st.Targets[string(r.Target)]
		if ts == nil {
			ts = &TargetStats{}
			st.Targets[string(r.Target)] = ts
		}
		ts.Throws++
		if r.Caught {
			ts.Completions++
		}
		ts.ReleaseOpenness += r.ReleaseOpenness
	}
	if played == 0 {
		return st
	}

	n := float64(played)
	st.CompletionRate = float64(st.Completions) / n
	st.ReleaseOpenness /= n
	st.CatchOpenness /= n
	st.Probability /= n
	st.HoldMs /= n
	st.Score /= n
	for _, ts := range st.Targets {
		ts.ReleaseOpenness /= float64(ts.Throws)
	}
	return st
}

// save writes rep as indented JSON, creating the directory if needed.
func save(filename string, rep *Report) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
