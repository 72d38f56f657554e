package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/fx"

	"github.com/okian/gridiron/internal/adapters/http/api"
	"github.com/okian/gridiron/internal/adapters/http/site"
	"github.com/okian/gridiron/internal/adapters/http/swagger"
	service "github.com/okian/gridiron/internal/app"
	"github.com/okian/gridiron/internal/config"
	"github.com/okian/gridiron/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// Module provides every component the server needs.
var Module = fx.Options(
	fx.Provide(loadConfig),
	fx.Provide(newLogger),
	fx.Provide(newService),
	fx.Provide(newHandler),
	fx.Provide(newHTTPServer),
)

func loadConfig() (*config.Config, error) {
	// Defaults, then an optional file, then env.
	cfg, err := config.Load(context.Background())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (logger.Logger, error) {
	if err := logger.Init(); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(context.Background(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return log, nil
}

func newService(cfg *config.Config, log logger.Logger) *service.Service {
	return service.New(
		service.WithLogger(log.Named("service")),
		service.WithParams(cfg.EngineParams()),
		service.WithFrameInterval(time.Duration(cfg.FrameIntervalMS)*time.Millisecond),
		service.WithCommandQueueSize(cfg.CommandQueueSize),
		service.WithSummaryQueueSize(cfg.SummaryQueueSize),
		service.WithGraderCount(cfg.GraderCount),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithAlignmentCacheSize(cfg.AlignmentCacheSize),
		service.WithMaxSessions(cfg.MaxSessions),
		service.WithSessionSeed(cfg.SessionSeed),
		service.WithGradingLatencyRange(
			time.Duration(cfg.GradingLatencyMinMS)*time.Millisecond,
			time.Duration(cfg.GradingLatencyMaxMS)*time.Millisecond,
		),
		service.WithGradeTimeout(time.Duration(cfg.GradeTimeoutMS)*time.Millisecond),
	)
}

// newHandler builds the router. The viewer's catch-all goes last so API
// and docs routes win.
func newHandler(cfg *config.Config, svc *service.Service, log logger.Logger) http.Handler {
	r := mux.NewRouter()

	api.NewServer(svc,
		api.WithMaxLimit(cfg.MaxTopLimit),
		api.WithAllowedOrigins(cfg.AllowedOrigins),
		api.WithLogger(log.Named("api")),
	).Register(r)
	swagger.Register(r)
	site.Register(r)

	return api.CORS(cfg.AllowedOrigins)(api.RequestMiddleware(log.Named("http"))(r))
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// run hooks the service and the HTTP server into the app lifecycle.
func run(lc fx.Lifecycle, svc *service.Service, srv *http.Server, log logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := svc.Start(ctx); err != nil {
				return fmt.Errorf("start service: %w", err)
			}
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				svc.Stop()
				return fmt.Errorf("listen %s: %w", srv.Addr, err)
			}
			go func() {
				log.Info(context.Background(), "starting HTTP server", logger.String("addr", ln.Addr().String()))
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error(context.Background(), "HTTP server failed", logger.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info(ctx, "shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()

			err := srv.Shutdown(shutdownCtx)
			if err != nil {
				log.Error(ctx, "server shutdown failed", logger.Error(err))
			}
			svc.Stop()
			log.Info(ctx, "server stopped")
			return err
		},
	})
}
