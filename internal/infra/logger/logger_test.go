package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	return rec
}

func TestSpanHandler_AddsIDsInsideSpan(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, slog.LevelInfo, false)
	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	log.InfoContext(ctx, "scoring")

	rec := decodeLine(t, &buf)
	assert.Equal(t, span.SpanContext().TraceID().String(), rec["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), rec["span_id"])
}

func TestSpanHandler_NoSpan(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, slog.LevelInfo, false)

	log.Info("plain")

	rec := decodeLine(t, &buf)
	assert.NotContains(t, rec, "trace_id")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestMultiHandler_FansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := NewMultiHandler(
		slog.NewJSONHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	log := slog.New(h).With("component", "etg")

	log.Info("info only")

	assert.Contains(t, a.String(), `"component":"etg"`)
	assert.Empty(t, b.String())
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := newLogger(&buf, slog.LevelInfo, false)
	ctx := WithStage(WithRequestID(context.Background(), "req-1"), "scoring")

	FromContext(ctx, base).Info("batch")

	rec := decodeLine(t, &buf)
	assert.Equal(t, "req-1", rec[string(RequestIDKey)])
	assert.Equal(t, "scoring", rec[string(StageKey)])
	assert.NotContains(t, rec, string(RegionIDKey))
}

func TestSpanHandler_StageFromContext(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, slog.LevelInfo, false)
	ctx := WithStage(context.Background(), "filtering")

	log.InfoContext(ctx, "prefilter applied")

	rec := decodeLine(t, &buf)
	assert.Equal(t, "filtering", rec[string(StageKey)])
}
