package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/stretchr/testify/mock"

	"hotel-curator/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func ptr[T any](v T) *T {
	return &v
}

func candidate(id string, stars, rating float64, reviews int) domain.Candidate {
	c := domain.Candidate{
		ID:          id,
		HID:         int64(len(id)*1000) + int64(id[len(id)-1]),
		Name:        "Hotel " + id,
		Kind:        "Hotel",
		ReviewCount: reviews,
		Offers: []domain.Offer{{
			Price:         domain.Money{Amount: 9000, Currency: "RUB"},
			PricePerNight: ptr(3000.0),
			RoomName:      "Standard",
			MatchToken:    "tok-" + id,
		}},
	}
	if stars > 0 {
		c.StarRating = ptr(stars)
	}
	if rating > 0 {
		c.GuestRating = ptr(rating)
	}
	return c
}

// scoringItems builds n shortlist items named c000..c(n-1), each with pre-score preScore.
func scoringItems(n int, preScore float64) []domain.CandidateWithEvidence {
	items := make([]domain.CandidateWithEvidence, n)
	for i := range items {
		c := candidate(fmt.Sprintf("c%03d", i), 4, 8.5, 40)
		c.HID = int64(1000 + i)
		items[i] = domain.CandidateWithEvidence{
			RankedCandidate: domain.RankedCandidate{Candidate: c, PreScore: preScore},
			Evidence:        domain.ReviewEvidence{TotalReviews: 40},
		}
	}
	return items
}

// judgeReply overrides the default answer of fakeJudge.
type judgeReply struct {
	scores []domain.JudgedScore
	err    error
}

// fakeJudge scores every candidate with scoreFn unless behave overrides the call.
type fakeJudge struct {
	scoreFn     func(id string) float64
	behave      func(ctx context.Context, batch []domain.CandidateWithEvidence, call int) *judgeReply
	summarizeFn func(ctx context.Context, top []domain.Enriched) (*domain.SearchSummary, error)

	mu        sync.Mutex
	calls     map[string]int
	inFlight  atomic.Int32
	peak      atomic.Int32
	total     atomic.Int32
	summaries atomic.Int32
	summedTop atomic.Int32
}

func newFakeJudge() *fakeJudge {
	return &fakeJudge{
		scoreFn: func(string) float64 { return 50 },
		calls:   map[string]int{},
	}
}

func (j *fakeJudge) Score(ctx context.Context, batch []domain.CandidateWithEvidence, _ domain.SearchContext) ([]domain.JudgedScore, error) {
	cur := j.inFlight.Add(1)
	defer j.inFlight.Add(-1)
	for {
		p := j.peak.Load()
		if cur <= p || j.peak.CompareAndSwap(p, cur) {
			break
		}
	}
	j.total.Add(1)

	j.mu.Lock()
	key := batch[0].ID
	j.calls[key]++
	call := j.calls[key]
	j.mu.Unlock()

	if j.behave != nil {
		if reply := j.behave(ctx, batch, call); reply != nil {
			return reply.scores, reply.err
		}
	}
	return judgeAll(batch, j.scoreFn), nil
}

func (j *fakeJudge) Summarize(ctx context.Context, top []domain.Enriched, _ domain.SearchContext) (*domain.SearchSummary, error) {
	j.summaries.Add(1)
	j.summedTop.Store(int32(len(top)))
	if j.summarizeFn != nil {
		return j.summarizeFn(ctx, top)
	}
	picks := make([]domain.Recommendation, 0, len(top))
	for _, e := range top {
		picks = append(picks, domain.Recommendation{HotelID: e.Candidate.ID, HotelName: e.Candidate.Name, WhyRecommended: "fits the brief"})
	}
	return &domain.SearchSummary{Overview: "solid options", TopPicks: picks, FinalAdvice: "book early"}, nil
}

func (j *fakeJudge) EstimateTokens(batch []domain.CandidateWithEvidence, _ domain.SearchContext) int {
	return 100 * len(batch)
}

func (j *fakeJudge) Name() string {
	return "fake"
}

func (j *fakeJudge) callsFor(firstID string) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.calls[firstID]
}

func judgeAll(batch []domain.CandidateWithEvidence, scoreFn func(string) float64) []domain.JudgedScore {
	out := make([]domain.JudgedScore, len(batch))
	for i, c := range batch {
		var token *string
		if len(c.Offers) > 0 {
			token = ptr(c.Offers[0].MatchToken)
		}
		out[i] = domain.JudgedScore{
			CandidateID:        c.ID,
			Score:              scoreFn(c.ID),
			TopReasons:         []string{"quiet rooms", "close to metro"},
			SelectedOfferToken: token,
		}
	}
	return out
}

// blockUntilDone simulates a judge call that never answers before its deadline.
func blockUntilDone(ctx context.Context) *judgeReply {
	<-ctx.Done()
	return &judgeReply{err: ctx.Err()}
}

type mockInventory struct {
	mock.Mock
}

func (m *mockInventory) Search(ctx context.Context, criteria domain.SearchCriteria) (*domain.SearchResult, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SearchResult), args.Error(1)
}

func (m *mockInventory) FetchContent(ctx context.Context, hids []int64, language string) ([]domain.RawContent, error) {
	args := m.Called(ctx, hids, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawContent), args.Error(1)
}

func (m *mockInventory) FetchReviews(ctx context.Context, hids []int64, language string) (map[int64][]domain.Review, error) {
	args := m.Called(ctx, hids, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64][]domain.Review), args.Error(1)
}

func (m *mockInventory) SuggestRegion(ctx context.Context, query, language string) ([]domain.Region, error) {
	args := m.Called(ctx, query, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Region), args.Error(1)
}

type mockSearchRunRepo struct {
	mock.Mock
}

func (m *mockSearchRunRepo) Start(ctx context.Context, run *domain.SearchRun) error {
	return m.Called(ctx, run).Error(0)
}

func (m *mockSearchRunRepo) Finish(ctx context.Context, run *domain.SearchRun) error {
	return m.Called(ctx, run).Error(0)
}
