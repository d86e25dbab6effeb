package judge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"hotel-curator/internal/domain"
)

const temperature = 0.2

// completer turns a rendered prompt into the model's raw text reply.
type completer interface {
	complete(ctx context.Context, p Prompt) (string, error)
}

// Judge scores candidate batches with a chat model.
type Judge struct {
	provider      string
	model         string
	backend       completer
	charsPerToken float64
	tracer        trace.Tracer
	logger        *slog.Logger
}

func newJudge(provider, model string, backend completer, charsPerToken float64, logger *slog.Logger) *Judge {
	return &Judge{
		provider:      provider,
		model:         model,
		backend:       backend,
		charsPerToken: charsPerToken,
		tracer:        otel.Tracer("hotel-curator/judge"),
		logger:        logger,
	}
}

// Score sends one batch to the model and returns its unvalidated verdicts.
func (j *Judge) Score(ctx context.Context, batch []domain.CandidateWithEvidence, sc domain.SearchContext) ([]domain.JudgedScore, error) {
	ctx, span := j.tracer.Start(ctx, "judge.Score", trace.WithAttributes(
		attribute.String("judge.provider", j.provider),
		attribute.String("judge.model", j.model),
		attribute.Int("judge.batch_size", len(batch)),
	))
	defer span.End()

	prompt, err := BuildPrompt(batch, sc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build prompt")
		return nil, err
	}

	start := time.Now()
	raw, err := j.backend.complete(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return nil, fmt.Errorf("%s: %w", j.provider, err)
	}

	scores, err := parseScores(raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unparsable reply")
		j.logger.WarnContext(ctx, "judge reply could not be parsed",
			slog.String("provider", j.provider),
			slog.Int("reply_len", len(raw)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", j.provider, err)
	}

	span.SetAttributes(attribute.Int("judge.results", len(scores)))
	j.logger.DebugContext(ctx, "judge batch scored",
		slog.String("provider", j.provider),
		slog.Int("batch_size", len(batch)),
		slog.Int("results", len(scores)),
		slog.Duration("elapsed", time.Since(start)))
	return scores, nil
}

// Summarize asks the model for a written recommendation over ranked results.
func (j *Judge) Summarize(ctx context.Context, top []domain.Enriched, sc domain.SearchContext) (*domain.SearchSummary, error) {
	ctx, span := j.tracer.Start(ctx, "judge.Summarize", trace.WithAttributes(
		attribute.String("judge.provider", j.provider),
		attribute.String("judge.model", j.model),
		attribute.Int("judge.results", len(top)),
	))
	defer span.End()

	prompt, err := BuildSummaryPrompt(top, sc)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	raw, err := j.backend.complete(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return nil, fmt.Errorf("%s: %w", j.provider, err)
	}
	summary, err := parseSummary(raw, top)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unparsable summary")
		return nil, fmt.Errorf("%s: %w", j.provider, err)
	}
	span.SetAttributes(attribute.Int("judge.top_picks", len(summary.TopPicks)))
	return summary, nil
}

// EstimateTokens approximates prompt tokens from the provider's characters-per-token ratio.
func (j *Judge) EstimateTokens(batch []domain.CandidateWithEvidence, sc domain.SearchContext) int {
	prompt, err := BuildPrompt(batch, sc)
	if err != nil {
		return 0
	}
	return int(float64(prompt.Len()) / j.charsPerToken)
}

// Name returns the provider name.
func (j *Judge) Name() string {
	return j.provider
}

// Model returns the configured model identifier.
func (j *Judge) Model() string {
	return j.model
}

var _ domain.Judge = (*Judge)(nil)
