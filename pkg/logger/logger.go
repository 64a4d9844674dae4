package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	GuestIDKey   contextKey = "guest_id"
	ServiceKey   contextKey = "service"
)

// contextAttrs are copied from the request context onto every *Context record.
var contextAttrs = []contextKey{RequestIDKey, GuestIDKey, ServiceKey}

var (
	base    = newJSON(os.Stdout, levelFromString(os.Getenv("LOG_LEVEL")))
	service string
)

func newJSON(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Setup replaces the process logger once config is loaded. Every record
// carries the service name.
func Setup(service, level string) {
	setup(os.Stdout, service, level)
}

func setup(w io.Writer, name, level string) {
	l := newJSON(w, levelFromString(level))
	if name != "" {
		l = l.With(string(ServiceKey), name)
	}
	base, service = l, name
}

func levelFromString(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func fromContext(ctx context.Context) *slog.Logger {
	l := base
	for _, key := range contextAttrs {
		if key == ServiceKey && service != "" {
			continue
		}
		if v := ctx.Value(key); v != nil {
			l = l.With(string(key), v)
		}
	}
	return l
}

func Info(msg string, args ...any)  { base.Info(msg, args...) }
func Warn(msg string, args ...any)  { base.Warn(msg, args...) }
func Error(msg string, args ...any) { base.Error(msg, args...) }

func InfoContext(ctx context.Context, msg string, args ...any) {
	fromContext(ctx).InfoContext(ctx, msg, args...)
}

func WarnContext(ctx context.Context, msg string, args ...any) {
	fromContext(ctx).WarnContext(ctx, msg, args...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	fromContext(ctx).ErrorContext(ctx, msg, args...)
}

func DebugContext(ctx context.Context, msg string, args ...any) {
	fromContext(ctx).DebugContext(ctx, msg, args...)
}
