package logger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu    sync.RWMutex
	root  *zap.Logger
	level = zap.NewAtomicLevel()
)

var buildLogger = func(cfg zap.Config) (*zap.Logger, error) {
	return cfg.Build(zap.AddCallerSkip(1))
}

type ctxKey int

const (
	requestIDKey ctxKey = iota
	actorIDKey
)

// Options selects the console encoding by Env and optionally tees JSON
// lines into a lumberjack-rotated file.
type Options struct {
	Env   string
	Level string

	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Init sets up console logging only. Later calls are ignored once a logger exists.
func Init(env string) {
	mu.RLock()
	ready := root != nil
	mu.RUnlock()
	if ready {
		return
	}
	if err := Setup(Options{Env: env}); err != nil {
		panic(err)
	}
}

// Setup replaces the process logger.
func Setup(opts Options) error {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if opts.Env == "development" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	lvl := cfg.Level.Level()
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		lvl = parsed
	}
	level.SetLevel(lvl)
	cfg.Level = level

	built, err := buildLogger(cfg)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0o755); err != nil {
			return fmt.Errorf("log directory: %w", err)
		}
		fileCore := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(rotatingFile(opts)),
			level,
		)
		built = built.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, fileCore)
		}))
	}

	mu.Lock()
	prev := root
	root = built
	mu.Unlock()
	if prev != nil {
		_ = prev.Sync()
	}
	return nil
}

func rotatingFile(opts Options) *lumberjack.Logger {
	size := opts.MaxSizeMB
	if size <= 0 {
		size = 100
	}
	return &lumberjack.Logger{
		Filename:   opts.FilePath,
		MaxSize:    size,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}
}

// SetLevel changes the minimum level at runtime for every output.
func SetLevel(l zapcore.Level) { level.SetLevel(l) }

// Sync flushes buffered entries.
func Sync() error {
	return current().Sync()
}

func current() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if root == nil {
		return zap.NewNop()
	}
	return root
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func WithActorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, actorIDKey, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func ActorID(ctx context.Context) string {
	id, _ := ctx.Value(actorIDKey).(string)
	return id
}

// WithContext returns the process logger annotated with request_id and actor_id.
func WithContext(ctx context.Context) *zap.Logger {
	l := current()
	if ctx == nil {
		return l
	}
	fields := make([]zap.Field, 0, 2)
	if id := RequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := ActorID(ctx); id != "" {
		fields = append(fields, zap.String("actor_id", id))
	}
	return l.With(fields...)
}

func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Debug(msg, fields...)
}

func Info(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Info(msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Warn(msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Error(msg, fields...)
}

// LogRequest writes one access log line; 5xx responses log at error level.
func LogRequest(ctx context.Context, method, path string, status int, latency time.Duration, clientIP string) {
	fields := []zap.Field{
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("latency", latency),
		zap.String("client_ip", clientIP),
	}
	if status >= 500 {
		WithContext(ctx).Error("HTTP Request", fields...)
		return
	}
	WithContext(ctx).Info("HTTP Request", fields...)
}
