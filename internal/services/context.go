package services

import "context"

type ctxKey int

const (
	conversionIDKey ctxKey = iota
	requestIDKey
)

func withID(ctx context.Context, key ctxKey, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, key, id)
}

func idFrom(ctx context.Context, key ctxKey) (string, bool) {
	id, _ := ctx.Value(key).(string)
	return id, id != ""
}

// WithConversionID tags ctx with the id of the conversion it serves.
func WithConversionID(ctx context.Context, id string) context.Context {
	return withID(ctx, conversionIDKey, id)
}

func ConversionIDFromContext(ctx context.Context) (string, bool) {
	return idFrom(ctx, conversionIDKey)
}

// WithRequestID tags ctx with an HTTP correlation id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withID(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	return idFrom(ctx, requestIDKey)
}
