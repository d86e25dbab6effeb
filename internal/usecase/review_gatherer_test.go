package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hotel-curator/internal/domain"
)

func hidRange(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(i + 1)
	}
	return out
}

func TestInventoryGatherer_ContentBatchesAndSkipsFailures(t *testing.T) {
	inv := new(mockInventory)
	inv.On("FetchContent", mock.Anything, mock.MatchedBy(func(ids []int64) bool { return ids[0] == 1 }), "en").
		Return([]domain.RawContent{{HID: 1, Name: "One"}, {HID: 2, Name: "Two"}}, nil).Once()
	inv.On("FetchContent", mock.Anything, mock.MatchedBy(func(ids []int64) bool { return ids[0] == 3 }), "en").
		Return(nil, fmt.Errorf("%w: 502", domain.ErrUpstream)).Once()
	inv.On("FetchContent", mock.Anything, mock.MatchedBy(func(ids []int64) bool { return ids[0] == 5 }), "en").
		Return([]domain.RawContent{{HID: 5, Name: "Five"}}, nil).Once()

	g := NewInventoryGatherer(inv, 2, 0, testLogger())
	got, err := g.Content(context.Background(), hidRange(5), "en")

	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, "Five", got[5].Name)
	inv.AssertNumberOfCalls(t, "FetchContent", 3)
}

func TestInventoryGatherer_ReviewLanguages(t *testing.T) {
	inv := new(mockInventory)
	inv.On("FetchReviews", mock.Anything, mock.Anything, "ru").
		Return(map[int64][]domain.Review{1: {{ID: 1}}}, nil)
	inv.On("FetchReviews", mock.Anything, mock.Anything, "en").
		Return(map[int64][]domain.Review{1: {{ID: 2}}}, nil)
	inv.On("FetchReviews", mock.Anything, mock.Anything, "de").
		Return(map[int64][]domain.Review{2: {{ID: 3}}}, nil)

	g := NewInventoryGatherer(inv, 0, 0, testLogger())
	got, err := g.Reviews(context.Background(), hidRange(2), "de")

	require.NoError(t, err)
	require.Len(t, got[1], 2)
	assert.Equal(t, "ru", got[1][0].Language)
	assert.Equal(t, "en", got[1][1].Language)
	require.Len(t, got[2], 1)
	assert.Equal(t, "de", got[2][0].Language)
	inv.AssertNumberOfCalls(t, "FetchReviews", 3)
}

func TestInventoryGatherer_RequestLanguageNotDuplicated(t *testing.T) {
	inv := new(mockInventory)
	inv.On("FetchReviews", mock.Anything, mock.Anything, mock.Anything).
		Return(map[int64][]domain.Review{}, nil)

	g := NewInventoryGatherer(inv, 0, 0, testLogger())
	_, err := g.Reviews(context.Background(), hidRange(250), "ru")

	require.NoError(t, err)
	inv.AssertNumberOfCalls(t, "FetchReviews", 2*3)
}

func TestInventoryGatherer_AuthFailureAborts(t *testing.T) {
	inv := new(mockInventory)
	inv.On("FetchReviews", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("etg: %w", domain.ErrUpstreamAuth))

	g := NewInventoryGatherer(inv, 0, 0, testLogger())
	_, err := g.Reviews(context.Background(), hidRange(10), "")

	assert.ErrorIs(t, err, domain.ErrUpstreamAuth)
	inv.AssertNumberOfCalls(t, "FetchReviews", 1)
}

func TestInventoryGatherer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	inv := new(mockInventory)
	inv.On("FetchContent", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, fmt.Errorf("%w: connection reset", domain.ErrUpstreamNetwork))

	g := NewInventoryGatherer(inv, 0, 0, testLogger())
	_, err := g.Content(ctx, hidRange(300), "ru")

	assert.ErrorIs(t, err, context.Canceled)
	inv.AssertNumberOfCalls(t, "FetchContent", 1)
}

func TestChunkIDs(t *testing.T) {
	assert.Nil(t, chunkIDs(nil, 100))
	batches := chunkIDs(hidRange(201), 100)
	require.Len(t, batches, 3)
	assert.Len(t, batches[2], 1)
}
