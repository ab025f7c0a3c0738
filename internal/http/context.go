package http

import (
	"context"
	"log/slog"

	"github.com/example/workshop-planner/internal/logging"
)

type contextKey string

const (
	workshopIDContextKey contextKey = "workshop_id"
	savedIDContextKey    contextKey = "saved_id"
)

// ContextWithLogger attaches a request-scoped logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext returns the request-scoped logger, if any.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

// ContextWithWorkshopID injects the workshop identifier resolved from the request path.
func ContextWithWorkshopID(ctx context.Context, workshopID string) context.Context {
	return context.WithValue(ctx, workshopIDContextKey, workshopID)
}

// WorkshopIDFromContext extracts a workshop identifier previously associated with the context.
func WorkshopIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(workshopIDContextKey).(string)
	return id, ok
}

// ContextWithSavedID injects the library entry identifier resolved from the request path.
func ContextWithSavedID(ctx context.Context, savedID string) context.Context {
	return context.WithValue(ctx, savedIDContextKey, savedID)
}

// SavedIDFromContext extracts a library entry identifier previously associated with the context.
func SavedIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(savedIDContextKey).(string)
	return id, ok
}
