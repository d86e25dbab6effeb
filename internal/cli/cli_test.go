package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-curator/internal/cli/output"
	"hotel-curator/internal/di"
	"hotel-curator/internal/domain"
	"hotel-curator/internal/infra/config"
)

type stubSearch struct {
	events []domain.PipelineEvent
	got    domain.SearchRequest
}

func (s *stubSearch) Stream(ctx context.Context, req domain.SearchRequest) <-chan domain.PipelineEvent {
	s.got = req
	out := make(chan domain.PipelineEvent, len(s.events))
	for _, ev := range s.events {
		out <- ev
	}
	close(out)
	return out
}

func ptr[T any](v T) *T { return &v }

func sampleResults() []domain.Enriched {
	return []domain.Enriched{
		{
			ScoredResult: domain.ScoredResult{CandidateID: "sea_view", Score: 92, TopReasons: []string{"pool", "beach"}, SelectedOfferToken: ptr("m2"), Source: domain.ScoreSourceJudged},
			Candidate: domain.Candidate{
				ID: "sea_view", Name: "Sea View Resort", StarRating: ptr(5.0),
				Offers: []domain.Offer{
					{Price: domain.Money{Amount: 9000, Currency: "RUB"}, PricePerNight: ptr(3000.0), MatchToken: "m1"},
					{Price: domain.Money{Amount: 12000, Currency: "RUB"}, PricePerNight: ptr(4000.0), MatchToken: "m2"},
				},
			},
			BookingURL: "https://example.test/sea_view",
		},
		{
			ScoredResult: domain.ScoredResult{CandidateID: "inn", Score: 55, Source: domain.ScoreSourceHeuristicFallback, LowConfidence: true},
			Candidate:    domain.Candidate{ID: "inn", Name: "Roadside Inn"},
		},
	}
}

func run(t *testing.T, factory appFactory, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand(factory)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(args, "--color", "never"))
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func stubFactory(search *stubSearch, called *bool) appFactory {
	return func(context.Context, *config.Config, *slog.Logger) (*di.ApplicationComponents, error) {
		if called != nil {
			*called = true
		}
		return &di.ApplicationComponents{SearchStream: search}, nil
	}
}

var searchArgs = []string{"search", "--region", "2395", "--checkin", "2025-07-01", "--checkout", "2025-07-04", "--children", "7", "--max-price", "5000"}

func TestSearchCommand(t *testing.T) {
	search := &stubSearch{events: []domain.PipelineEvent{
		{Type: domain.EventStarted, Payload: domain.StartedPayload{RequestID: "r1", RegionID: 2395, Checkin: "2025-07-01", Checkout: "2025-07-04"}},
		{Type: domain.EventCandidatesFound, Payload: domain.CandidatesFoundPayload{Total: 812, Analyzed: 500}},
		{Type: domain.EventStageProgress, Payload: domain.StageProgressPayload{Stage: domain.StageScoring, Batches: 4, EstimatedTokens: 12000}},
		{Type: domain.EventStageProgress, Payload: domain.StageProgressPayload{Stage: domain.StageScoring, Batch: 2, Batches: 4, BatchOutcome: "degraded", Attempt: 3}},
		{Type: domain.EventDone, Payload: domain.DonePayload{
			RequestID: "r1",
			Results:   sampleResults(),
			Stats:     domain.SearchStats{Returned: 2, Shortlisted: 100, DegradedBatches: 1},
			Summary: &domain.SearchSummary{
				Overview:    "Two beach options.",
				TopPicks:    []domain.Recommendation{{HotelID: "sea_view", HotelName: "Sea View Resort", WhyRecommended: "pool and beach"}},
				FinalAdvice: "Book the resort.",
			},
		}},
	}}

	out, errOut, err := run(t, stubFactory(search, nil), searchArgs...)

	require.NoError(t, err)
	assert.Contains(t, out, "found 812 hotels, analyzing 500")
	assert.Contains(t, out, "-> scoring (4 batches, ~12000 tokens)")
	assert.Contains(t, errOut, "[WARN]   batch 2/4 degraded (attempt 3)")
	assert.Contains(t, out, "[OK] 2 results")
	assert.Contains(t, out, "Sea View Resort")
	assert.Contains(t, out, "4000 RUB")
	assert.Contains(t, out, "55*?")
	assert.Contains(t, out, "Two beach options.")
	assert.Contains(t, out, "1. Sea View Resort: pool and beach")
	assert.Contains(t, out, "Book the resort.")

	assert.Equal(t, int64(2395), search.got.RegionID)
	require.Len(t, search.got.Guests, 1)
	assert.Equal(t, []int{7}, search.got.Guests[0].Children)
	require.NotNil(t, search.got.MaxPricePerNight)
	assert.Nil(t, search.got.MinPricePerNight)
}

func TestSearchCommand_JSON(t *testing.T) {
	search := &stubSearch{events: []domain.PipelineEvent{
		{Type: domain.EventDone, Payload: domain.DonePayload{RequestID: "r1", Results: sampleResults()}},
	}}

	out, _, err := run(t, stubFactory(search, nil), append(searchArgs, "--json", "--quiet")...)

	require.NoError(t, err)
	var done domain.DonePayload
	require.NoError(t, json.Unmarshal([]byte(out), &done))
	assert.Len(t, done.Results, 2)
}

func TestSearchCommand_ErrorEvent(t *testing.T) {
	search := &stubSearch{events: []domain.PipelineEvent{
		{Type: domain.EventError, Payload: domain.ErrorPayload{ErrorType: "upstream_auth", ErrorMessage: "bad key", Stage: domain.StageSearching}},
	}}

	_, errOut, err := run(t, stubFactory(search, nil), searchArgs...)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search failed at searching")
	assert.Contains(t, errOut, "[ERROR] upstream_auth at searching: bad key")
}

func TestSearchCommand_StreamWithoutTerminalEvent(t *testing.T) {
	_, _, err := run(t, stubFactory(&stubSearch{}, nil), searchArgs...)

	assert.EqualError(t, err, "search interrupted")
}

func TestSearchCommand_InvalidRequestSkipsInitialization(t *testing.T) {
	called := false
	_, errOut, err := run(t, stubFactory(&stubSearch{}, &called),
		"search", "--region", "2395", "--checkin", "2025-07-04", "--checkout", "2025-07-01")

	require.Error(t, err)
	assert.False(t, called)
	assert.Contains(t, errOut, "checkout must be after checkin")
}

func TestRunsCommand_Disabled(t *testing.T) {
	_, _, err := run(t, stubFactory(&stubSearch{}, nil), "runs")

	assert.ErrorContains(t, err, "DB_ENABLED")
}

func TestRenderRegions(t *testing.T) {
	var out bytes.Buffer
	p := output.NewPrinter(&out, &out, false, false)

	require.NoError(t, renderRegions(p, []domain.Region{
		{ID: 6308838, Name: "Sochi Airport", Type: "Airport", CountryCode: "RU"},
		{ID: 2395, Name: "Sochi", Type: "City", CountryCode: "RU"},
	}))

	assert.Contains(t, out.String(), "[OK] best match: Sochi (2395)")
	assert.Contains(t, out.String(), "6308838")
}

func TestRenderRuns(t *testing.T) {
	var out bytes.Buffer
	p := output.NewPrinter(&out, &out, false, false)

	require.NoError(t, renderRuns(p, []domain.SearchRun{{
		Status: domain.SearchRunFailed, CandidatesFound: 40, ErrorKind: "upstream_auth", StartedAt: time.Now(),
	}}))

	assert.Contains(t, out.String(), "upstream_auth")
	assert.Contains(t, out.String(), "failed")
}

func TestCellHelpers(t *testing.T) {
	assert.Equal(t, "-", starsCell(nil))
	assert.Equal(t, "***", starsCell(ptr(3.0)))
	assert.Equal(t, "-", priceCell(domain.Enriched{}))
	assert.Equal(t, "9000 RUB total", priceCell(domain.Enriched{Candidate: domain.Candidate{
		Offers: []domain.Offer{{Price: domain.Money{Amount: 9000, Currency: "RUB"}}},
	}}))
	assert.Equal(t, "abcdefg", truncate("abcdefg", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
