package http

import (
	"context"
	"log/slog"
)

func httpLogger() *slog.Logger {
	return slog.Default().With(
		"service", "popcache",
		"module", "http",
		"layer", "adapter",
	)
}

// logListingFailure records a listing read that could not be served, at a
// severity matching whether the failure is the caller's or ours.
func logListingFailure(ctx context.Context, category string, statusCode int, code string, err error) {
	fields := []any{
		"operation", "get_category_page",
		"outcome", "failure",
		"category", category,
		"status_code", statusCode,
		"error_code", code,
		"request_id", requestIDFromContext(ctx),
		"error", err,
	}
	if statusCode >= 500 {
		httpLogger().ErrorContext(ctx, "listing request failed", fields...)
		return
	}
	httpLogger().WarnContext(ctx, "listing request failed", fields...)
}
