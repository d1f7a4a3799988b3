package logging

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// WithContext stores a logger in the context.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the context's logger, or a no-op logger when none was
// stored.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return NewNop()
}

// WithTask returns a logger tagged with the task id and stage attrs every
// stage log line carries.
func WithTask(logger *slog.Logger, taskID int64, stage string) *slog.Logger {
	return logger.With("task_id", taskID, "stage", stage)
}
