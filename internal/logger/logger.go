package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type ctxKey struct{}

// Level maps the --debug and --verbose flags to a slog level. Warnings are
// always shown so rate limits reach the user.
func Level(debug, verbose bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	if verbose {
		return slog.LevelInfo
	}
	return slog.LevelWarn
}

// Initialize installs the default logger on stderr, keeping stdout for the
// command output.
func Initialize(debug, verbose bool) *slog.Logger {
	return InitializeWriter(os.Stderr, debug, verbose)
}

func InitializeWriter(w io.Writer, debug, verbose bool) *slog.Logger {
	l := slog.New(NewPrettyHandler(w, &slog.HandlerOptions{
		Level:     Level(debug, verbose),
		AddSource: debug,
	}))
	slog.SetDefault(l)
	return l
}

// FromContext returns the logger stored by WithLogger or the default one.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return slog.Default()
}

func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// With stores a logger carrying args, so every later call on ctx includes them.
func With(ctx context.Context, args ...any) context.Context {
	return WithLogger(ctx, FromContext(ctx).With(args...))
}

func Debug(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).DebugContext(ctx, msg, args...)
}

func Info(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).InfoContext(ctx, msg, args...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).WarnContext(ctx, msg, args...)
}

func Error(ctx context.Context, msg string, err error, args ...any) {
	FromContext(ctx).ErrorContext(ctx, msg, append([]any{"error", err}, args...)...)
}
