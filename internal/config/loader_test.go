package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/gridiron/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New(ctx))
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("GRIDIRON_ADDR", ":8080")
			_ = os.Setenv("GRIDIRON_COMMAND_QUEUE_SIZE", "32")
			_ = os.Setenv("GRIDIRON_GRADER_COUNT", "3")
			_ = os.Setenv("GRIDIRON_SESSION_SEED", "42")
			_ = os.Setenv("GRIDIRON_BALL_SPEED", "1.5")
			_ = os.Setenv("GRIDIRON_ALLOWED_ORIGINS", "http://localhost:3000, https://coach.example")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.CommandQueueSize, convey.ShouldEqual, 32)
				convey.So(cfg.GraderCount, convey.ShouldEqual, 3)
				convey.So(cfg.SessionSeed, convey.ShouldEqual, 42)
				convey.So(cfg.BallSpeed, convey.ShouldEqual, 1.5)
				convey.So(cfg.AllowedOrigins, convey.ShouldResemble, []string{"http://localhost:3000", "https://coach.example"})
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
frame_interval_ms: 33
play_duration_ms: 4000
summary_queue_size: 500
grading_latency_min_ms: 5
grading_latency_max_ms: 10
grade_timeout_ms: 250
allowed_origins:
  - http://localhost:5173
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("GRIDIRON_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.FrameIntervalMS, convey.ShouldEqual, 33)
				convey.So(cfg.PlayDurationMS, convey.ShouldEqual, 4000)
				convey.So(cfg.SummaryQueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.GradingLatencyMinMS, convey.ShouldEqual, 5)
				convey.So(cfg.GradingLatencyMaxMS, convey.ShouldEqual, 10)
				convey.So(cfg.GradeTimeoutMS, convey.ShouldEqual, 250)
				convey.So(cfg.AllowedOrigins, convey.ShouldResemble, []string{"http://localhost:5173"})
			})

			convey.Convey("And the remaining fields keep their defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MaxSessions, convey.ShouldEqual, 64)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile("addr: \":9090\"\nmax_sessions: 8\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("GRIDIRON_CONFIG", tmpFile)
			_ = os.Setenv("GRIDIRON_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MaxSessions, convey.ShouldEqual, 8)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("GRIDIRON_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("GRIDIRON_CONFIG", "/non/existent/gridiron.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("GRIDIRON_MAX_SESSIONS", "many")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigValidation(t *testing.T) {
	convey.Convey("Given configs that cannot run", t, func() {
		ctx := context.Background()
		cases := map[string]struct {
			mutate func(c *config.Config)
			kind   error
		}{
			"empty addr":             {func(c *config.Config) { c.Addr = "" }, config.ErrInvalidServer},
			"zero play duration":     {func(c *config.Config) { c.PlayDurationMS = 0 }, config.ErrInvalidClock},
			"zero frame interval":    {func(c *config.Config) { c.FrameIntervalMS = 0 }, config.ErrInvalidClock},
			"inverted openness":      {func(c *config.Config) { c.OpennessCeiling = c.OpennessFloor }, config.ErrInvalidOpenness},
			"inverted flight range":  {func(c *config.Config) { c.FlightMaxMS = c.FlightMinMS - 1 }, config.ErrInvalidFlight},
			"inverted grading":       {func(c *config.Config) { c.GradingLatencyMaxMS = c.GradingLatencyMinMS - 1 }, config.ErrInvalidGrading},
			"negative grade timeout": {func(c *config.Config) { c.GradeTimeoutMS = -1 }, config.ErrInvalidGrading},
		}

		for name, tc := range cases {
			cfg := config.New(ctx)
			tc.mutate(cfg)

			convey.Convey("Then "+name+" is rejected with its own kind", func() {
				err := cfg.Validate(ctx)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(errors.Is(err, tc.kind), convey.ShouldBeTrue)
			})
		}

		convey.Convey("Then the kinds do not match each other", func() {
			convey.So(errors.Is(config.ErrInvalidClock, config.ErrInvalidFlight), convey.ShouldBeFalse)
			convey.So(errors.Is(config.ErrInvalidGrading, config.ErrInvalidServer), convey.ShouldBeFalse)
		})

		convey.Convey("When the addr is emptied through the environment", func() {
			_ = os.Setenv("GRIDIRON_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then Load returns a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidServer), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	envVars := []string{
		"GRIDIRON_CONFIG",
		"GRIDIRON_ADDR",
		"GRIDIRON_COMMAND_QUEUE_SIZE",
		"GRIDIRON_GRADER_COUNT",
		"GRIDIRON_SESSION_SEED",
		"GRIDIRON_BALL_SPEED",
		"GRIDIRON_ALLOWED_ORIGINS",
		"GRIDIRON_MAX_SESSIONS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "gridiron-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
