package logger

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// SpanHandler stamps records with the active span and the pipeline stage carried by ctx.
type SpanHandler struct {
	next slog.Handler
}

func NewSpanHandler(next slog.Handler) *SpanHandler {
	return &SpanHandler{next: next}
}

func (h *SpanHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *SpanHandler) Handle(ctx context.Context, r slog.Record) error {
	if span := trace.SpanContextFromContext(ctx); span.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", span.TraceID().String()),
			slog.String("span_id", span.SpanID().String()),
		)
	}
	if stage, ok := ctx.Value(StageKey).(string); ok && !hasAttr(r, string(StageKey)) {
		r.AddAttrs(slog.String(string(StageKey), stage))
	}
	return h.next.Handle(ctx, r)
}

func (h *SpanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewSpanHandler(h.next.WithAttrs(attrs))
}

func (h *SpanHandler) WithGroup(name string) slog.Handler {
	return NewSpanHandler(h.next.WithGroup(name))
}

func hasAttr(r slog.Record, key string) bool {
	found := false
	r.Attrs(func(a slog.Attr) bool {
		found = a.Key == key
		return !found
	})
	return found
}
