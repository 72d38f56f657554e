// Package logger provides a simple, structured logging interface backed by zerolog.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Constants for logging operations.
const (
	callerSkipFrames = 2 // Skip frames: getCaller -> logging method -> actual caller
)

// Logger defines the logging interface.
type Logger interface {
	// Context-aware variants
	Info(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Fatal(ctx context.Context, msg string, fields ...Field)

	Named(name string) Logger
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// Field constructors.
func String(key, val string) Field          { return Field{Key: key, Value: val} }
func Int(key string, val int) Field         { return Field{Key: key, Value: val} }
func Uint64(key string, val uint64) Field   { return Field{Key: key, Value: val} }
func Float64(key string, val float64) Field { return Field{Key: key, Value: val} }
func Bool(key string, val bool) Field       { return Field{Key: key, Value: val} }
func Any(key string, val interface{}) Field { return Field{Key: key, Value: val} }
func Error(err error) Field                 { return Field{Key: "error", Value: err} }

type ctxKey struct{}

// WithRequestID returns a context carrying the request id; every log line
// written with that context includes it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID extracts the request id stored by WithRequestID.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}

// zlogger implements Logger using zerolog.
type zlogger struct {
	zl   zerolog.Logger
	name string
}

func (l *zlogger) Named(name string) Logger {
	if l.name != "" {
		name = l.name + "." + name
	}
	return &zlogger{zl: l.zl, name: name}
}

func (l *zlogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, l.zl.Info(), msg, fields)
}

func (l *zlogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, l.zl.Error(), msg, fields)
}

func (l *zlogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, l.zl.Debug(), msg, fields)
}

func (l *zlogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, l.zl.Warn(), msg, fields)
}

func (l *zlogger) Fatal(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, l.zl.Error(), msg, fields)
	os.Exit(1)
}

func (l *zlogger) write(ctx context.Context, ev *zerolog.Event, msg string, fields []Field) {
	if ev == nil {
		// level disabled
		return
	}
	ev = ev.Str("source", getCaller())
	if l.name != "" {
		ev = ev.Str("logger", l.name)
	}
	if id := RequestID(ctx); id != "" {
		ev = ev.Str("request_id", id)
	}
	for _, f := range fields {
		ev = appendField(ev, f)
	}
	ev.Msg(msg)
}

// appendField maps our Field type onto typed zerolog calls.
func appendField(ev *zerolog.Event, f Field) *zerolog.Event {
	switch v := f.Value.(type) {
	case string:
		return ev.Str(f.Key, v)
	case int:
		return ev.Int(f.Key, v)
	case uint64:
		return ev.Uint64(f.Key, v)
	case float64:
		return ev.Float64(f.Key, v)
	case bool:
		return ev.Bool(f.Key, v)
	case time.Duration:
		return ev.Dur(f.Key, v)
	case error:
		return ev.AnErr(f.Key, v)
	default:
		return ev.Interface(f.Key, v)
	}
}

var (
	mu     sync.RWMutex
	global Logger
)

// Init initializes the global logger writing JSON lines to stdout.
func Init() error {
	return InitWithWriter(os.Stdout)
}

// InitWithWriter initializes the global logger with a custom sink.
func InitWithWriter(w io.Writer) error {
	if w == nil {
		return fmt.Errorf("logger: nil writer")
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Default to info; can be changed with SetLevel*/SetLevelString.
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zl := zerolog.New(w).With().Timestamp().Logger()

	mu.Lock()
	global = &zlogger{zl: zl}
	mu.Unlock()
	return nil
}

// getCaller returns the caller location in format relative/path/file.go:line (IDE-friendly).
func getCaller() string {
	_, file, line, ok := runtime.Caller(callerSkipFrames + 1)
	if !ok {
		return "unknown:0"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
	relPath, err := filepath.Rel(cwd, file)
	if err != nil {
		return fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
	return fmt.Sprintf("%s:%d", relPath, line)
}

// Get returns the global logger.
func Get() Logger {
	mu.RLock()
	defer mu.RUnlock()
	if global == nil {
		// The logger should be explicitly initialized by the application
		panic("logger not initialized. Call logger.Init() first")
	}
	return global
}

// Named creates a named logger.
func Named(name string) Logger {
	return Get().Named(name)
}

// Sync flushes buffered log entries.
func Sync() error {
	// zerolog writes synchronously; nothing to flush
	return nil
}

// SetLevel updates the current logging level.
func SetLevel(level zerolog.Level) { zerolog.SetGlobalLevel(level) }

// SetLevelString parses and sets the logging level.
// Accepts: debug, info, warn/warning, error (case-insensitive).
func SetLevelString(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		SetLevel(zerolog.DebugLevel)
	case "", "info":
		SetLevel(zerolog.InfoLevel)
	case "warn", "warning":
		SetLevel(zerolog.WarnLevel)
	case "error":
		SetLevel(zerolog.ErrorLevel)
	default:
		return fmt.Errorf("unknown log level: %s", level)
	}
	return nil
}
