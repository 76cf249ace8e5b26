package logging

import (
	"context"
	"log/slog"

	"adconvert/internal/services"
)

// ContextFields returns the conversion and correlation ids carried by ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var fields []slog.Attr
	if id, ok := services.ConversionIDFromContext(ctx); ok {
		fields = append(fields, String(FieldConversionID, id))
	}
	if id, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, String(FieldCorrelationID, id))
	}
	return fields
}

// WithContext tags logger with ContextFields(ctx).
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return slog.New(logger.Handler().WithAttrs(fields))
}
