package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"hotel-curator/internal/domain"
	"hotel-curator/internal/infra/metrics"
)

const (
	defaultJudgeInFlight = 4
	retryJitter          = 0.2
)

// ScoringPolicy configures batching and retries of the judgment stage.
type ScoringPolicy struct {
	BatchSize           int
	MaxRetries          int
	CallTimeout         time.Duration
	InitialBackoff      time.Duration
	MaxBackoff          time.Duration
	FailWhenAllDegraded bool
}

// DefaultScoringPolicy returns batch size 25 with two retries backing off from 1s to 10s.
func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{
		BatchSize:      25,
		MaxRetries:     2,
		CallTimeout:    90 * time.Second,
		InitialBackoff: time.Second,
		MaxBackoff:     10 * time.Second,
	}
}

// BatchOutcomeKind labels one step in the life of a scoring batch.
type BatchOutcomeKind string

const (
	BatchStarted   BatchOutcomeKind = "started"
	BatchRetrying  BatchOutcomeKind = "retrying"
	BatchCompleted BatchOutcomeKind = "completed"
	BatchDegraded  BatchOutcomeKind = "degraded"
)

// BatchOutcome is a progress notification from the coordinator. Batch is 1-based.
type BatchOutcome struct {
	Kind            BatchOutcomeKind
	Batch           int
	Batches         int
	Attempt         int
	Size            int
	EstimatedTokens int
	Results         []domain.ScoredResult
	Err             error
}

// ScoringReport summarizes a finished scoring run.
type ScoringReport struct {
	Batches  int
	Degraded int
	Retries  int
}

// scoringBatch is a unit of judge work. attempt counts retries already spent.
type scoringBatch struct {
	index   int
	items   []domain.CandidateWithEvidence
	attempt int
}

func (b scoringBatch) retried() scoringBatch {
	b.attempt++
	return b
}

// ScoringCoordinator turns a shortlist into exactly N ranked results using a Judge.
type ScoringCoordinator struct {
	judge     domain.Judge
	gate      *semaphore.Weighted
	validator ScoreValidator
	prescorer *PreScorer
	policy    ScoringPolicy
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewScoringCoordinator builds a coordinator. gate is shared across requests and bounds
// in-flight judge calls process-wide.
func NewScoringCoordinator(judge domain.Judge, gate *semaphore.Weighted, prescorer *PreScorer, policy ScoringPolicy, logger *slog.Logger) *ScoringCoordinator {
	if gate == nil {
		gate = semaphore.NewWeighted(defaultJudgeInFlight)
	}
	if policy.BatchSize <= 0 {
		policy.BatchSize = DefaultScoringPolicy().BatchSize
	}
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	return &ScoringCoordinator{
		judge:     judge,
		gate:      gate,
		validator: NewScoreValidator(),
		prescorer: prescorer,
		policy:    policy,
		logger:    logger,
		tracer:    otel.Tracer("hotel-curator/scoring"),
	}
}

// BatchCount returns how many batches a shortlist of n candidates is split into.
func (c *ScoringCoordinator) BatchCount(n int) int {
	return (n + c.policy.BatchSize - 1) / c.policy.BatchSize
}

// BatchSize returns the configured batch size.
func (c *ScoringCoordinator) BatchSize() int {
	return c.policy.BatchSize
}

func (c *ScoringCoordinator) partition(items []domain.CandidateWithEvidence) []scoringBatch {
	batches := make([]scoringBatch, 0, c.BatchCount(len(items)))
	for start := 0; start < len(items); start += c.policy.BatchSize {
		end := min(start+c.policy.BatchSize, len(items))
		batches = append(batches, scoringBatch{index: len(batches), items: items[start:end]})
	}
	return batches
}

// EstimateTokens approximates the total prompt size of scoring items.
func (c *ScoringCoordinator) EstimateTokens(items []domain.CandidateWithEvidence, sc domain.SearchContext) int {
	total := 0
	for _, b := range c.partition(items) {
		total += c.judge.EstimateTokens(b.items, sc)
	}
	return total
}

// Score ranks items and returns exactly min(n, len(items)) results. Batch outcomes are sent
// on progress when it is non-nil. Only authentication failures and cancellation abort.
func (c *ScoringCoordinator) Score(ctx context.Context, items []domain.CandidateWithEvidence, n int, sc domain.SearchContext, progress chan<- BatchOutcome) ([]domain.ScoredResult, ScoringReport, error) {
	var report ScoringReport
	if len(items) == 0 {
		return nil, report, fmt.Errorf("%w: nothing to score", domain.ErrNoUsableCandidates)
	}
	if n <= 0 || n > len(items) {
		n = len(items)
	}
	if sc.Preferences == "" {
		sc.Preferences = domain.DefaultPreferences
	}

	batches := c.partition(items)
	report.Batches = len(batches)
	perBatch := make([][]domain.ScoredResult, len(batches))
	degraded := make([]bool, len(batches))
	var retries atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for _, b := range batches {
		g.Go(func() error {
			results, wasDegraded, err := c.runBatch(gctx, b, len(batches), sc, progress, &retries)
			if err != nil {
				return err
			}
			perBatch[b.index] = results
			degraded[b.index] = wasDegraded
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, report, err
	}
	if err := ctx.Err(); err != nil {
		return nil, report, err
	}

	for _, d := range degraded {
		if d {
			report.Degraded++
		}
	}
	report.Retries = int(retries.Load())

	if c.policy.FailWhenAllDegraded && report.Degraded == report.Batches {
		return nil, report, fmt.Errorf("%w: every scoring batch degraded", domain.ErrUpstream)
	}

	return MergeResults(perBatch, n), report, nil
}

func (c *ScoringCoordinator) runBatch(ctx context.Context, b scoringBatch, total int, sc domain.SearchContext, progress chan<- BatchOutcome, retries *atomic.Int64) ([]domain.ScoredResult, bool, error) {
	ctx, span := c.tracer.Start(ctx, "scoring.batch", trace.WithAttributes(
		attribute.Int("batch.index", b.index),
		attribute.Int("batch.size", len(b.items)),
	))
	defer span.End()

	outcome := BatchOutcome{
		Batch:           b.index + 1,
		Batches:         total,
		Size:            len(b.items),
		EstimatedTokens: c.judge.EstimateTokens(b.items, sc),
	}
	bo := c.newBackoff()
	started := outcome
	started.Kind = BatchStarted
	if !c.notify(ctx, progress, started) {
		return nil, false, ctx.Err()
	}

	for {
		judged, err := c.callJudge(ctx, b, sc)
		if err == nil {
			results, verr := c.validator.Validate(b.items, judged)
			if verr == nil {
				done := outcome
				done.Kind = BatchCompleted
				done.Attempt = b.attempt + 1
				done.Results = results
				metrics.ScoringBatchesTotal.WithLabelValues(string(BatchCompleted)).Inc()
				if !c.notify(ctx, progress, done) {
					return nil, false, ctx.Err()
				}
				return results, false, nil
			}
			err = verr
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		if domain.IsFatal(err) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "judge authentication failed")
			return nil, false, err
		}

		if b.attempt >= c.policy.MaxRetries {
			c.logger.WarnContext(ctx, "scoring batch degraded to heuristic",
				slog.Int("batch", b.index+1),
				slog.Int("attempts", b.attempt+1),
				slog.String("error", err.Error()))
			results := c.degrade(b.items)
			deg := outcome
			deg.Kind = BatchDegraded
			deg.Attempt = b.attempt + 1
			deg.Results = results
			deg.Err = err
			metrics.ScoringBatchesTotal.WithLabelValues(string(BatchDegraded)).Inc()
			span.SetAttributes(attribute.Bool("batch.degraded", true))
			if !c.notify(ctx, progress, deg) {
				return nil, false, ctx.Err()
			}
			return results, true, nil
		}

		b = b.retried()
		retries.Add(1)
		c.logger.InfoContext(ctx, "retrying scoring batch",
			slog.Int("batch", b.index+1),
			slog.Int("attempt", b.attempt+1),
			slog.String("error", err.Error()))
		retry := outcome
		retry.Kind = BatchRetrying
		retry.Attempt = b.attempt + 1
		retry.Err = err
		metrics.ScoringBatchesTotal.WithLabelValues(string(BatchRetrying)).Inc()
		if !c.notify(ctx, progress, retry) {
			return nil, false, ctx.Err()
		}
		if err := sleepContext(ctx, bo.NextBackOff()); err != nil {
			return nil, false, err
		}
	}
}

func (c *ScoringCoordinator) callJudge(ctx context.Context, b scoringBatch, sc domain.SearchContext) ([]domain.JudgedScore, error) {
	if err := c.gate.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.gate.Release(1)

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	start := time.Now()
	judged, err := c.judge.Score(callCtx, b.items, sc)
	status := "ok"
	if err != nil {
		status = string(domain.KindOf(err))
		if callCtx.Err() != nil && ctx.Err() == nil {
			status = "timeout"
			err = fmt.Errorf("judge call timed out after %s: %w", c.policy.CallTimeout, err)
		}
	}
	metrics.RecordJudgeCall(c.judge.Name(), status, time.Since(start).Seconds())
	return judged, err
}

// Summarize asks the judge for a recommendation over ranked results. The call shares the
// in-flight gate and per-call timeout with batch scoring.
func (c *ScoringCoordinator) Summarize(ctx context.Context, top []domain.Enriched, sc domain.SearchContext) (*domain.SearchSummary, error) {
	if sc.Preferences == "" {
		sc.Preferences = domain.DefaultPreferences
	}
	if err := c.gate.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.gate.Release(1)

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	start := time.Now()
	summary, err := c.judge.Summarize(callCtx, top, sc)
	status := "ok"
	if err != nil {
		status = string(domain.KindOf(err))
	}
	metrics.RecordJudgeCall(c.judge.Name(), status, time.Since(start).Seconds())
	return summary, err
}

func (c *ScoringCoordinator) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.policy.CallTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.policy.CallTimeout)
}

func (c *ScoringCoordinator) degrade(items []domain.CandidateWithEvidence) []domain.ScoredResult {
	results := make([]domain.ScoredResult, len(items))
	for i, item := range items {
		res := domain.ScoredResult{
			CandidateID: item.ID,
			Score:       c.prescorer.Normalized(item.PreScore),
			TopReasons:  []string{},
			Penalties:   []string{domain.ProvisionalPenalty},
			Source:      domain.ScoreSourceHeuristicFallback,
		}
		markLowConfidence(&res, item.Evidence)
		results[i] = res
	}
	return results
}

// newBackoff returns the wait schedule for one batch's retries.
func (c *ScoringCoordinator) newBackoff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = max(c.policy.InitialBackoff, 0)
	bo.MaxInterval = c.policy.MaxBackoff
	if bo.MaxInterval < bo.InitialInterval {
		bo.MaxInterval = bo.InitialInterval
	}
	bo.Multiplier = 2
	bo.RandomizationFactor = retryJitter
	return bo
}

// notify reports o unless ctx is already done.
func (c *ScoringCoordinator) notify(ctx context.Context, progress chan<- BatchOutcome, o BatchOutcome) bool {
	if ctx.Err() != nil {
		return false
	}
	if progress == nil {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case progress <- o:
		return true
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
