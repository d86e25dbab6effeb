package judge

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-curator/internal/domain"
)

func testTop() []domain.Enriched {
	batch := testBatch()
	return []domain.Enriched{
		{
			ScoredResult: domain.ScoredResult{CandidateID: "novotel_sochi", Score: 88, TopReasons: []string{"pool", "sea view"}},
			Candidate:    batch[0].Candidate,
		},
		{
			ScoredResult: domain.ScoredResult{CandidateID: "radisson", Score: 74, Penalties: []string{"no pool"}},
			Candidate:    domain.Candidate{ID: "radisson", Name: "Radisson Blu", Kind: "Hotel"},
		},
	}
}

const validSummary = `{"overview":"Both hotels fit a quiet seaside stay.","top_picks":[` +
	`{"hotel_id":"novotel_sochi","hotel_name":"Novotel Sochi","why_recommended":"Pool and sea view."},` +
	`{"hotel_id":"made_up","hotel_name":"Ghost Inn","why_recommended":"?"}],` +
	`"considerations":"Radisson has no pool.","final_advice":"Book Novotel."}`

func TestBuildSummaryPrompt(t *testing.T) {
	p, err := BuildSummaryPrompt(testTop(), testContext())

	require.NoError(t, err)
	assert.Contains(t, p.System, "top_picks")
	assert.Contains(t, p.User, "<preferences>\nquiet, sea view, pool\n</preferences>")
	assert.Contains(t, p.User, `"hotel_id":"radisson"`)
	assert.Contains(t, p.User, `"per_night":3000`)
	assert.Equal(t, summarySchema, p.Schema)
}

func TestParseSummary(t *testing.T) {
	s, err := parseSummary("```json\n"+validSummary+"\n```", testTop())

	require.NoError(t, err)
	assert.Equal(t, "Both hotels fit a quiet seaside stay.", s.Overview)
	require.Len(t, s.TopPicks, 1, "picks outside the results are dropped")
	assert.Equal(t, "novotel_sochi", s.TopPicks[0].HotelID)
	assert.Equal(t, "Book Novotel.", s.FinalAdvice)
}

func TestParseSummary_Invalid(t *testing.T) {
	for _, raw := range []string{"", "no json here", `{"overview":"  ","top_picks":[]}`} {
		_, err := parseSummary(raw, testTop())
		assert.ErrorIs(t, err, domain.ErrValidation, raw)
	}
}

func TestOllamaJudge_Summarize(t *testing.T) {
	c := &capture{}
	srv := newServer(t, c, http.StatusOK, `{"message":{"role":"assistant","content":`+strconvQuote(validSummary)+`},"done":true,"done_reason":"stop"}`)
	j, err := New(Config{Model: "qwen3:8b", OllamaURL: srv.URL}, srv.Client(), testLogger())
	require.NoError(t, err)

	s, err := j.Summarize(context.Background(), testTop(), testContext())

	require.NoError(t, err)
	assert.Len(t, s.TopPicks, 1)
	c.mu.Lock()
	defer c.mu.Unlock()
	format := c.body["format"].(map[string]any)
	assert.Contains(t, format["properties"], "final_advice")
}

func TestAnthropicJudge_SummarizeRateLimited(t *testing.T) {
	srv := newServer(t, &capture{}, http.StatusTooManyRequests, `{"error":{"type":"rate_limit_error"}}`)
	j, err := New(Config{Model: "claude-haiku", AnthropicURL: srv.URL, AnthropicAPIKey: "k"}, srv.Client(), testLogger())
	require.NoError(t, err)

	_, err = j.Summarize(context.Background(), testTop(), testContext())

	assert.ErrorIs(t, err, domain.ErrUpstreamRateLimit)
}
