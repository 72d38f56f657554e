package report

import (
	"fmt"
	"io"

	"github.com/okian/gridiron/pkg/logger"
)

// SetupLogging sends JSON logs to w so the tables on stdout stay clean.
// Verbose enables debug level with progress lines.
func SetupLogging(w io.Writer, verbose bool) error {
	if err := logger.InitWithWriter(w); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := "info"
	if verbose {
		level = "debug"
	}
	return logger.SetLevelString(level)
}

// ShowHelp prints usage information for the report tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Gridiron Play Report
====================

Runs seeded snaps of one play call, throws each to the first receiver to
come open and prints completion and openness tables.

Usage:
  playsim-report [options]

Options:
  -formation string
        Offensive formation: trips, two-by-two, bunch-weak (default "trips")
  -coverage string
        Coverage: C0, C1, C2, TAMPA2, C3, C4, PALMS, QUARTERS, COVER6, COVER9 (default "C3")
  -concept string
        Concept: curl-flat, smash, mesh, four-verts, flood, stick, dagger,
        levels, y-cross, spacing, slant-flat (default "flood")
  -runs int
        Number of seeded plays (default 100)
  -seed uint
        Seed of the first play; 0 draws one (default 0)
  -workers int
        Plays run concurrently (default CPU cores)
  -top int
        Best throws to list (default 10)
  -url string
        Play against a running service instead of in-process
  -timeout duration
        Per-play deadline (default 30s)
  -output string
        Save every run as JSON to this file
  -verbose
        Print one row per run and debug logs
  -help
        Show this help message

Engine tuning honours the server's GRIDIRON_* environment and
GRIDIRON_CONFIG file.

Examples:
  # 500 plays of trips flood against cover 3
  playsim-report -runs 500

  # Smash against quarters, per-run rows
  playsim-report -concept smash -coverage QUARTERS -verbose

  # Against a running server
  playsim-report -url http://localhost:9080 -runs 50
`)
}
