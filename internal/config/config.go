// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Functions accept context.Context as the first parameter.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"math"
	"runtime"

	"github.com/okian/gridiron/internal/domain/engine"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// FrameIntervalMS is the frame scheduler period.
	FrameIntervalMS int `koanf:"frame_interval_ms"`

	// PlayDurationMS is the wall time of a full play (t from 0 to 1).
	PlayDurationMS int `koanf:"play_duration_ms"`

	// CommandQueueSize bounds each session's command queue.
	CommandQueueSize int `koanf:"command_queue_size"`

	// SummaryQueueSize bounds the throw summary queue feeding the graders.
	SummaryQueueSize int `koanf:"summary_queue_size"`

	// GraderCount sets the number of grading workers.
	GraderCount int `koanf:"grader_count"`

	// DedupeSize sets how many command ids each session remembers.
	DedupeSize int `koanf:"dedupe_size"`

	// AlignmentCacheSize bounds each session's alignment cache.
	AlignmentCacheSize int `koanf:"alignment_cache_size"`

	// MaxSessions caps live sessions.
	MaxSessions int `koanf:"max_sessions"`

	// SessionSeed seeds sessions created without a seed; zero draws one.
	SessionSeed uint64 `koanf:"session_seed"`

	// Receiver and ball tempo.
	ReceiverSpeed float64 `koanf:"receiver_speed"`
	BallSpeed     float64 `koanf:"ball_speed"`
	ArmStrength   float64 `koanf:"arm_strength"`
	FlightMinMS   int     `koanf:"flight_min_ms"`
	FlightMaxMS   int     `koanf:"flight_max_ms"`

	// Openness separation scale in yards.
	OpennessFloor   float64 `koanf:"openness_floor"`
	OpennessCeiling float64 `koanf:"openness_ceiling"`

	// Catch model.
	CatchBaseRate          float64 `koanf:"catch_base_rate"`
	ContestHeavyYards      float64 `koanf:"contest_heavy_yards"`
	ContestModerateYards   float64 `koanf:"contest_moderate_yards"`
	ContestLightYards      float64 `koanf:"contest_light_yards"`
	ContestHeavyPenalty    float64 `koanf:"contest_heavy_penalty"`
	ContestModeratePenalty float64 `koanf:"contest_moderate_penalty"`
	ContestLightPenalty    float64 `koanf:"contest_light_penalty"`
	StarBonus              float64 `koanf:"star_bonus"`

	// Defender speed as a share of receiver speed, and the acceleration cap.
	DBSpeedRatio float64 `koanf:"db_speed_ratio"`
	LBSpeedRatio float64 `koanf:"lb_speed_ratio"`
	DLSpeedRatio float64 `koanf:"dl_speed_ratio"`
	MaxAccel     float64 `koanf:"max_accel"`

	// GradingLatencyMinMS and GradingLatencyMaxMS simulate external grader latency bounds.
	GradingLatencyMinMS int `koanf:"grading_latency_min_ms"`
	GradingLatencyMaxMS int `koanf:"grading_latency_max_ms"`
	// GradeTimeoutMS bounds one grading call; 0 disables the bound.
	GradeTimeoutMS int `koanf:"grade_timeout_ms"`

	// MaxTopLimit caps GET /sessions/{id}/throws?limit.
	MaxTopLimit int `koanf:"max_top_limit"`

	// AllowedOrigins lists CORS origins for the browser UI.
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// New creates a Config with defaults. Simulation tuning starts from the
// engine's stock parameters.
func New(_ context.Context) *Config {
	p := engine.DefaultParams()
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		FrameIntervalMS:    16,
		PlayDurationMS:     millis(p.Coverage.Seconds),
		CommandQueueSize:   256,
		SummaryQueueSize:   10_000,
		GraderCount:        runtime.NumCPU(),
		DedupeSize:         1024,
		AlignmentCacheSize: 8,
		MaxSessions:        64,

		ReceiverSpeed: p.Coverage.ReceiverSpeed,
		BallSpeed:     p.Flight.BallSpeed,
		ArmStrength:   p.Flight.ArmStrength,
		FlightMinMS:   millis(p.Flight.MinSeconds),
		FlightMaxMS:   millis(p.Flight.MaxSeconds),

		OpennessFloor:   p.Scale.Floor,
		OpennessCeiling: p.Scale.Ceiling,

		CatchBaseRate:          p.Catch.Base,
		ContestHeavyYards:      p.Catch.HeavyYards,
		ContestModerateYards:   p.Catch.ModerateYards,
		ContestLightYards:      p.Catch.LightYards,
		ContestHeavyPenalty:    p.Catch.HeavyPenalty,
		ContestModeratePenalty: p.Catch.ModeratePenalty,
		ContestLightPenalty:    p.Catch.LightPenalty,
		StarBonus:              p.Catch.StarBonus,

		DBSpeedRatio: p.Coverage.DBRatio,
		LBSpeedRatio: p.Coverage.LBRatio,
		DLSpeedRatio: p.Coverage.DLRatio,
		MaxAccel:     p.Coverage.MaxAccel,

		GradingLatencyMinMS: 20,
		GradingLatencyMaxMS: 60,
		GradeTimeoutMS:      1000,
		MaxTopLimit:         100,
		AllowedOrigins:      []string{"*"},
	}
}

func millis(seconds float64) int {
	return int(math.Round(seconds * 1000))
}

// EngineParams overlays the configured tuning on the engine's stock
// parameters.
func (c *Config) EngineParams() engine.Params {
	p := engine.DefaultParams()

	p.Coverage.Seconds = float64(c.PlayDurationMS) / 1000
	p.Coverage.ReceiverSpeed = c.ReceiverSpeed
	p.Coverage.DBRatio = c.DBSpeedRatio
	p.Coverage.LBRatio = c.LBSpeedRatio
	p.Coverage.DLRatio = c.DLSpeedRatio
	p.Coverage.MaxAccel = c.MaxAccel

	p.Flight.BallSpeed = c.BallSpeed
	p.Flight.ArmStrength = c.ArmStrength
	p.Flight.MinSeconds = float64(c.FlightMinMS) / 1000
	p.Flight.MaxSeconds = float64(c.FlightMaxMS) / 1000

	p.Scale.Floor = c.OpennessFloor
	p.Scale.Ceiling = c.OpennessCeiling

	p.Catch.Base = c.CatchBaseRate
	p.Catch.HeavyYards = c.ContestHeavyYards
	p.Catch.ModerateYards = c.ContestModerateYards
	p.Catch.LightYards = c.ContestLightYards
	p.Catch.HeavyPenalty = c.ContestHeavyPenalty
	p.Catch.ModeratePenalty = c.ContestModeratePenalty
	p.Catch.LightPenalty = c.ContestLightPenalty
	p.Catch.StarBonus = c.StarBonus

	return p
}
