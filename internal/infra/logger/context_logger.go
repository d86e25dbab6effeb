package logger

import (
	"context"
	"log/slog"
)

type ContextKey string

const (
	RequestIDKey ContextKey = "hotel.request.id"
	StageKey     ContextKey = "hotel.pipeline.stage"
	RegionIDKey  ContextKey = "hotel.region.id"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, StageKey, stage)
}

func WithRegionID(ctx context.Context, regionID int64) context.Context {
	return context.WithValue(ctx, RegionIDKey, regionID)
}

// FromContext returns base enriched with the request fields stored in ctx.
func FromContext(ctx context.Context, base *slog.Logger) *slog.Logger {
	var fields []any
	for _, key := range []ContextKey{RequestIDKey, StageKey, RegionIDKey} {
		if v := ctx.Value(key); v != nil {
			fields = append(fields, string(key), v)
		}
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}
