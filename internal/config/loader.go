package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "GRIDIRON_"
	envConfig  = "GRIDIRON_CONFIG"
	dotEnvFile = ".env"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if GRIDIRON_CONFIG is set
//  3. env (prefix GRIDIRON_), after a .env file in the working directory
//     has been loaded into the environment
func Load(ctx context.Context) (*Config, error) {
	// Variables already set win over the .env file.
	if err := godotenv.Load(dotEnvFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, dotEnvFile, err)
	}

	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// GRIDIRON_QUEUE_SIZE -> queue_size. Underscores are kept to match the
	// flat koanf tags; list values are comma separated.
	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(envPrefix))
		if key == "config" {
			return "", nil
		}
		if key == "allowed_origins" {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if k.Exists("allowed_origins") {
		// Decoding into a non-nil slice keeps trailing defaults.
		cfg.AllowedOrigins = nil
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(ctx); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate reports the first setting the service cannot run with.
func (c *Config) Validate(_ context.Context) error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidServer)
	case c.PlayDurationMS <= 0:
		return fmt.Errorf("%w: play_duration_ms must be positive", ErrInvalidClock)
	case c.FrameIntervalMS <= 0:
		return fmt.Errorf("%w: frame_interval_ms must be positive", ErrInvalidClock)
	case c.OpennessCeiling <= c.OpennessFloor:
		return fmt.Errorf("%w: openness_ceiling must exceed openness_floor", ErrInvalidOpenness)
	case c.FlightMaxMS < c.FlightMinMS:
		return fmt.Errorf("%w: flight_max_ms must not be below flight_min_ms", ErrInvalidFlight)
	case c.GradingLatencyMaxMS < c.GradingLatencyMinMS:
		return fmt.Errorf("%w: grading_latency_max_ms must not be below grading_latency_min_ms", ErrInvalidGrading)
	case c.GradeTimeoutMS < 0:
		return fmt.Errorf("%w: grade_timeout_ms must not be negative", ErrInvalidGrading)
	}
	return nil
}
