// Command playsim-report runs batches of seeded plays and prints how the
// throws went.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/gridiron/internal/config"
	"github.com/okian/gridiron/internal/report"
)

// Default configuration constants.
const (
	defaultRuns        = 100
	defaultTopN        = 10
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		formation  = flag.String("formation", "trips", "Offensive formation")
		coverage   = flag.String("coverage", "C3", "Coverage call")
		concept    = flag.String("concept", "flood", "Passing concept")
		runs       = flag.Int("runs", defaultRuns, "Number of seeded plays")
		seed       = flag.Uint64("seed", 0, "Seed of the first play; 0 draws one")
		workers    = flag.Int("workers", runtime.NumCPU(), "Plays run concurrently")
		topN       = flag.Int("top", defaultTopN, "Best throws to list")
		baseURL    = flag.String("url", "", "Play against a running service instead of in-process")
		timeout    = flag.Duration("timeout", defaultTimeout, "Per-play deadline")
		outputFile = flag.String("output", "", "Save every run as JSON to this file")
		verbose    = flag.Bool("verbose", false, "Print one row per run and debug logs")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		report.ShowHelp(os.Stdout)
		return 0
	}

	if err := report.SetupLogging(os.Stderr, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultTestTimeout)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("Failed to load config: " + err.Error() + "\n")
		return 1
	}

	rc := &report.Config{
		Formation:  *formation,
		Coverage:   *coverage,
		Concept:    *concept,
		Runs:       *runs,
		BaseSeed:   *seed,
		Workers:    *workers,
		TopN:       *topN,
		BaseURL:    *baseURL,
		Timeout:    *timeout,
		OutputFile: *outputFile,
		Verbose:    *verbose,
	}
	if _, err := report.Run(ctx, rc, cfg.EngineParams(), os.Stdout); err != nil {
		os.Stderr.WriteString("Report failed: " + err.Error() + "\n")
		return 1
	}
	return 0
}
