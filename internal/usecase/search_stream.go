package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"hotel-curator/internal/domain"
	"hotel-curator/internal/infra/logger"
	"hotel-curator/internal/infra/metrics"
)

const runPersistTimeout = 5 * time.Second

// PipelinePolicy bounds the narrowing steps before scoring.
// SummaryTop is how many final results the summary covers; 0 disables it.
type PipelinePolicy struct {
	MaxAnalyzed   int
	ShortlistSize int
	SummaryTop    int
}

// DefaultPipelinePolicy returns the limits used when nothing is configured.
func DefaultPipelinePolicy() PipelinePolicy {
	return PipelinePolicy{MaxAnalyzed: 500, ShortlistSize: 100, SummaryTop: 10}
}

// SearchStreamUsecase runs a curated search and reports progress as events.
type SearchStreamUsecase interface {
	// Stream starts the pipeline. The channel is closed after exactly one terminal event,
	// or without one if ctx is cancelled first.
	Stream(ctx context.Context, req domain.SearchRequest) <-chan domain.PipelineEvent
}

type searchStreamUsecase struct {
	inventory   domain.InventoryClient
	gatherer    *InventoryGatherer
	normalizer  *CandidateNormalizer
	prescorer   *PreScorer
	curator     *ReviewCurator
	coordinator *ScoringCoordinator
	runs        domain.SearchRunRepository
	booking     BookingURLBuilder
	policy      PipelinePolicy
	logger      *slog.Logger
	tracer      trace.Tracer
	newID       func() uuid.UUID
}

// NewSearchStreamUsecase wires the pipeline. runs may be nil when auditing is disabled.
func NewSearchStreamUsecase(
	inventory domain.InventoryClient,
	gatherer *InventoryGatherer,
	normalizer *CandidateNormalizer,
	prescorer *PreScorer,
	curator *ReviewCurator,
	coordinator *ScoringCoordinator,
	runs domain.SearchRunRepository,
	booking BookingURLBuilder,
	policy PipelinePolicy,
	logger *slog.Logger,
) SearchStreamUsecase {
	return &searchStreamUsecase{
		inventory:   inventory,
		gatherer:    gatherer,
		normalizer:  normalizer,
		prescorer:   prescorer,
		curator:     curator,
		coordinator: coordinator,
		runs:        runs,
		booking:     booking,
		policy:      policy,
		logger:      logger,
		tracer:      otel.Tracer("hotel-curator/search"),
		newID:       uuid.New,
	}
}

// pipelineRun is the per-request state owned by the stream goroutine.
type pipelineRun struct {
	ctx       context.Context
	events    chan<- domain.PipelineEvent
	state     *PipelineState
	requestID string
	logger    *slog.Logger
	started   time.Time
	stats     domain.SearchStats
	record    *domain.SearchRun
	cancelled bool
}

// emit sends one event. It returns false once the consumer has gone away.
func (p *pipelineRun) emit(t domain.EventType, payload any) bool {
	if p.ctx.Err() != nil {
		p.cancelled = true
		return false
	}
	select {
	case <-p.ctx.Done():
		p.cancelled = true
		return false
	case p.events <- domain.PipelineEvent{Type: t, Payload: payload}:
		return true
	}
}

// advance transitions to next and reports it before any work of the stage starts.
func (p *pipelineRun) advance(next domain.Stage, progress domain.StageProgressPayload) bool {
	if err := p.state.Transition(next); err != nil {
		p.logger.ErrorContext(p.ctx, "illegal pipeline transition", slog.String("error", err.Error()))
		return false
	}
	p.ctx = logger.WithStage(p.ctx, string(next))
	progress.Stage = next
	return p.emit(domain.EventStageProgress, progress)
}

func (u *searchStreamUsecase) Stream(ctx context.Context, req domain.SearchRequest) <-chan domain.PipelineEvent {
	events := make(chan domain.PipelineEvent, 8)
	go func() {
		defer close(events)
		metrics.ActiveStreams.Inc()
		defer metrics.ActiveStreams.Dec()
		u.execute(ctx, req, events)
	}()
	return events
}

func (u *searchStreamUsecase) execute(ctx context.Context, req domain.SearchRequest, events chan<- domain.PipelineEvent) {
	req.ApplyDefaults()
	requestID := u.newID()
	if v, ok := ctx.Value(logger.RequestIDKey).(string); ok {
		if id, err := uuid.Parse(v); err == nil {
			requestID = id
		}
	}

	ctx, span := u.tracer.Start(ctx, "search.stream", trace.WithAttributes(
		attribute.String("request.id", requestID.String()),
		attribute.Int64("region.id", req.RegionID),
	))
	defer span.End()

	p := &pipelineRun{
		ctx:       ctx,
		events:    events,
		state:     NewPipelineState(),
		requestID: requestID.String(),
		logger:    u.logger.With(slog.String("request_id", requestID.String())),
		started:   time.Now(),
		record: &domain.SearchRun{
			ID:        requestID,
			Criteria:  criteriaRecord(req),
			Status:    domain.SearchRunRunning,
			StartedAt: time.Now(),
		},
	}
	p.state.OnTransition(func(from domain.Stage, elapsed time.Duration) {
		if from != domain.StageIdle {
			metrics.RecordStage(string(from), elapsed.Seconds())
		}
	})

	u.persistStart(ctx, p)
	defer u.persistFinish(ctx, p)

	err := u.run(p, req)
	switch {
	case err == nil && p.state.Current() == domain.StageDone:
	case p.cancelled || ctx.Err() != nil:
		u.cancel(p)
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, string(domain.KindOf(err)))
		u.fail(p, err)
	}
}

func (u *searchStreamUsecase) run(p *pipelineRun, req domain.SearchRequest) error {
	criteria, err := req.Criteria()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if !p.emit(domain.EventStarted, domain.StartedPayload{
		RequestID: p.requestID,
		RegionID:  req.RegionID,
		Checkin:   req.Checkin,
		Checkout:  req.Checkout,
		StartedAt: p.started,
	}) {
		return nil
	}

	// searching
	if !p.advance(domain.StageSearching, domain.StageProgressPayload{Message: "searching inventory"}) {
		return nil
	}
	found, err := u.inventory.Search(p.ctx, criteria)
	if err != nil {
		return domain.NewPipelineError(domain.StageSearching, "inventory search", err)
	}
	analyzed := SampleListings(found.Hotels, u.policy.MaxAnalyzed, samplingSeed(req))
	p.stats.TotalFound = max(found.TotalHotels, len(found.Hotels))
	p.stats.Analyzed = len(analyzed)
	p.record.CandidatesFound = p.stats.TotalFound
	metrics.CandidatesCount.WithLabelValues("found").Observe(float64(p.stats.TotalFound))
	if !p.emit(domain.EventCandidatesFound, domain.CandidatesFoundPayload{
		Total:    p.stats.TotalFound,
		Analyzed: p.stats.Analyzed,
	}) {
		return nil
	}

	// filtering
	if !p.advance(domain.StageFiltering, domain.StageProgressPayload{
		Message: "loading content and filtering",
		Total:   len(analyzed),
	}) {
		return nil
	}
	hids := make([]int64, len(analyzed))
	for i, l := range analyzed {
		hids[i] = l.HID
	}
	content, err := u.gatherer.Content(p.ctx, hids, req.Language)
	if err != nil {
		return domain.NewPipelineError(domain.StageFiltering, "content", err)
	}
	reviews, err := u.gatherer.Reviews(p.ctx, hids, req.Language)
	if err != nil {
		return domain.NewPipelineError(domain.StageFiltering, "reviews", err)
	}
	window := PriceWindow{Min: req.MinPricePerNight, Max: req.MaxPricePerNight}
	candidates := u.normalizer.Normalize(analyzed, content, window)
	if len(candidates) == 0 {
		return domain.NewPipelineError(domain.StageFiltering,
			fmt.Sprintf("none of %d listings has a usable offer", len(analyzed)), domain.ErrNoUsableCandidates)
	}
	ApplyReviewAggregates(candidates, reviews)
	shortlist := u.prescorer.Shortlist(candidates, u.policy.ShortlistSize)
	p.stats.Shortlisted = len(shortlist)
	p.record.ShortlistSize = len(shortlist)
	metrics.CandidatesCount.WithLabelValues("normalized").Observe(float64(len(candidates)))
	metrics.CandidatesCount.WithLabelValues("shortlisted").Observe(float64(len(shortlist)))

	// curating_reviews
	if !p.advance(domain.StageCuratingReviews, domain.StageProgressPayload{
		Message:   "curating reviews",
		Processed: len(shortlist),
		Total:     len(candidates),
	}) {
		return nil
	}
	withEvidence := u.curator.CurateAll(shortlist, reviews)

	// scoring
	sc := domain.SearchContext{
		Preferences:      req.UserPreferences,
		Guests:           req.Guests,
		MinPricePerNight: req.MinPricePerNight,
		MaxPricePerNight: req.MaxPricePerNight,
		Currency:         req.Currency,
		Nights:           criteria.Nights(),
	}
	if !p.advance(domain.StageScoring, domain.StageProgressPayload{
		Message:         "scoring shortlist",
		Total:           len(withEvidence),
		Batches:         u.coordinator.BatchCount(len(withEvidence)),
		EstimatedTokens: u.coordinator.EstimateTokens(withEvidence, sc),
	}) {
		return nil
	}
	results, report, err := u.score(p, withEvidence, req, sc)
	if err != nil {
		return domain.NewPipelineError(domain.StageScoring, "scoring", err)
	}
	if p.cancelled {
		return nil
	}
	p.stats.DegradedBatches = report.Degraded
	p.record.DegradedBatches = report.Degraded
	enriched := u.enrich(results, withEvidence, req)
	summary, ok := u.summarize(p, enriched, sc)
	if !ok {
		return nil
	}

	// done
	if err := p.state.Transition(domain.StageDone); err != nil {
		return err
	}
	p.ctx = logger.WithStage(p.ctx, string(domain.StageDone))
	p.stats.Returned = len(enriched)
	p.stats.ElapsedSeconds = time.Since(p.started).Seconds()
	p.record.Status = domain.SearchRunDone
	for _, r := range results {
		p.record.ResultIDs = append(p.record.ResultIDs, r.CandidateID)
	}
	if p.emit(domain.EventDone, domain.DonePayload{
		RequestID: p.requestID,
		Results:   enriched,
		Stats:     p.stats,
		Summary:   summary,
	}) {
		metrics.SearchesTotal.WithLabelValues(string(domain.SearchRunDone)).Inc()
		p.logger.InfoContext(p.ctx, "search completed",
			slog.Int("found", p.stats.TotalFound),
			slog.Int("shortlisted", p.stats.Shortlisted),
			slog.Int("returned", p.stats.Returned),
			slog.Int("degraded_batches", p.stats.DegradedBatches),
			slog.Float64("elapsed_seconds", p.stats.ElapsedSeconds))
	}
	return nil
}

// summarize asks the judge for an overview of the top results. A failed summary
// leaves the result list untouched; ok is false only when the consumer went away.
func (u *searchStreamUsecase) summarize(p *pipelineRun, enriched []domain.Enriched, sc domain.SearchContext) (*domain.SearchSummary, bool) {
	n := min(u.policy.SummaryTop, len(enriched))
	if n <= 0 {
		return nil, true
	}
	if !p.emit(domain.EventStageProgress, domain.StageProgressPayload{
		Stage:     domain.StageScoring,
		Message:   fmt.Sprintf("summarizing top %d results", n),
		Processed: n,
		Total:     len(enriched),
	}) {
		return nil, false
	}
	summary, err := u.coordinator.Summarize(p.ctx, enriched[:n], sc)
	if p.ctx.Err() != nil {
		p.cancelled = true
		return nil, false
	}
	if err != nil {
		p.logger.WarnContext(p.ctx, "search summary unavailable",
			slog.String("error_type", string(domain.KindOf(err))),
			slog.String("error", err.Error()))
		return nil, true
	}
	return summary, true
}

// score runs the coordinator and forwards its batch outcomes as progress events.
func (u *searchStreamUsecase) score(p *pipelineRun, items []domain.CandidateWithEvidence, req domain.SearchRequest, sc domain.SearchContext) ([]domain.ScoredResult, ScoringReport, error) {
	type scoringDone struct {
		results []domain.ScoredResult
		report  ScoringReport
		err     error
	}

	progress := make(chan BatchOutcome, u.coordinator.BatchCount(len(items)))
	finished := make(chan scoringDone, 1)
	go func() {
		defer close(progress)
		results, report, err := u.coordinator.Score(p.ctx, items, req.TopHotels, sc, progress)
		finished <- scoringDone{results: results, report: report, err: err}
	}()

	processed := 0
	var completed [][]domain.ScoredResult
	batchesDone := 0
	for outcome := range progress {
		payload := domain.StageProgressPayload{
			Stage:           domain.StageScoring,
			Total:           len(items),
			Batch:           outcome.Batch,
			Batches:         outcome.Batches,
			BatchOutcome:    string(outcome.Kind),
			Attempt:         outcome.Attempt,
			EstimatedTokens: outcome.EstimatedTokens,
		}
		if outcome.Kind == BatchCompleted || outcome.Kind == BatchDegraded {
			processed += outcome.Size
			batchesDone++
			completed = append(completed, outcome.Results)
		}
		payload.Processed = processed
		if outcome.Err != nil {
			payload.Message = outcome.Err.Error()
		}
		if !p.emit(domain.EventStageProgress, payload) {
			return nil, ScoringReport{}, nil
		}
		if outcome.Kind == BatchCompleted || outcome.Kind == BatchDegraded {
			snapshot := MergeResults(completed, req.TopHotels)
			if !p.emit(domain.EventPartialResults, domain.PartialResultsPayload{
				Results:          u.enrich(snapshot, items, req),
				BatchesCompleted: batchesDone,
				BatchesTotal:     outcome.Batches,
			}) {
				return nil, ScoringReport{}, nil
			}
		}
	}

	done := <-finished
	return done.results, done.report, done.err
}

func (u *searchStreamUsecase) enrich(results []domain.ScoredResult, items []domain.CandidateWithEvidence, req domain.SearchRequest) []domain.Enriched {
	byID := make(map[string]domain.CandidateWithEvidence, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	out := make([]domain.Enriched, 0, len(results))
	for _, r := range results {
		item, ok := byID[r.CandidateID]
		if !ok {
			continue
		}
		out = append(out, domain.Enriched{
			ScoredResult: r,
			Candidate:    item.Candidate,
			Evidence:     item.Evidence,
			BookingURL:   u.booking.Build(item.Candidate, req),
		})
	}
	return out
}

func (u *searchStreamUsecase) cancel(p *pipelineRun) {
	p.cancelled = true
	perr := domain.NewPipelineError(p.state.Current(), "consumer disconnected", domain.ErrCancelled)
	p.record.Status = domain.SearchRunCancelled
	p.record.ErrorKind = string(perr.Kind)
	p.record.ErrorMessage = perr.Detail()
	metrics.SearchesTotal.WithLabelValues(string(domain.SearchRunCancelled)).Inc()
	p.logger.InfoContext(p.ctx, "search cancelled by consumer", slog.String("stage", string(perr.Stage)))
}

func (u *searchStreamUsecase) fail(p *pipelineRun, err error) {
	var perr *domain.PipelineError
	if !errors.As(err, &perr) {
		perr = domain.NewPipelineError(p.state.Current(), "pipeline", err)
	}
	if terr := p.state.Transition(domain.StageFailed); terr != nil {
		p.logger.ErrorContext(p.ctx, "cannot fail pipeline", slog.String("error", terr.Error()))
	}
	p.record.Status = domain.SearchRunFailed
	p.record.ErrorKind = string(perr.Kind)
	p.record.ErrorMessage = perr.Detail()
	metrics.SearchesTotal.WithLabelValues(string(domain.SearchRunFailed)).Inc()
	p.logger.ErrorContext(p.ctx, "search failed",
		slog.String("stage", string(perr.Stage)),
		slog.String("error_type", string(perr.Kind)),
		slog.String("error", perr.Detail()))

	p.emit(domain.EventError, domain.ErrorPayload{
		ErrorType:    string(perr.Kind),
		ErrorMessage: perr.Detail(),
		Stage:        perr.Stage,
	})
}

func (u *searchStreamUsecase) persistStart(ctx context.Context, p *pipelineRun) {
	if u.runs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), runPersistTimeout)
	defer cancel()
	if err := u.runs.Start(ctx, p.record); err != nil {
		p.logger.WarnContext(ctx, "failed to record search start", slog.String("error", err.Error()))
	}
}

func (u *searchStreamUsecase) persistFinish(ctx context.Context, p *pipelineRun) {
	if u.runs == nil {
		return
	}
	now := time.Now()
	p.record.FinishedAt = &now
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), runPersistTimeout)
	defer cancel()
	if err := u.runs.Finish(ctx, p.record); err != nil {
		p.logger.WarnContext(ctx, "failed to record search result", slog.String("error", err.Error()))
	}
}

func samplingSeed(req domain.SearchRequest) string {
	return fmt.Sprintf("%d|%s|%s|%s", req.RegionID, req.Checkin, req.Checkout, req.Residency)
}

func criteriaRecord(req domain.SearchRequest) map[string]any {
	rec := map[string]any{
		"region_id":   req.RegionID,
		"checkin":     req.Checkin,
		"checkout":    req.Checkout,
		"guests":      req.Guests,
		"residency":   req.Residency,
		"language":    req.Language,
		"top_hotels":  req.TopHotels,
		"preferences": req.UserPreferences,
	}
	if req.Currency != "" {
		rec["currency"] = req.Currency
	}
	if req.MinPricePerNight != nil {
		rec["min_price_per_night"] = *req.MinPricePerNight
	}
	if req.MaxPricePerNight != nil {
		rec["max_price_per_night"] = *req.MaxPricePerNight
	}
	return rec
}
