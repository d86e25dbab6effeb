package usecase

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-curator/internal/domain"
)

func rate(hash, total string, daily ...string) domain.RawRate {
	return domain.RawRate{
		MatchHash:    hash,
		ShowAmount:   total,
		ShowCurrency: "RUB",
		DailyPrices:  daily,
		RoomName:     "Room " + hash,
	}
}

func TestNormalize_DropsListingsWithoutPrice(t *testing.T) {
	n := NewCandidateNormalizer(testLogger())
	listings := []domain.RawListing{
		{ID: "priced", HID: 1, Rates: []domain.RawRate{rate("m1", "6000", "3000", "3000")}},
		{ID: "zero", HID: 2, Rates: []domain.RawRate{rate("m2", "0", "0")}},
		{ID: "garbage", HID: 3, Rates: []domain.RawRate{rate("m3", "n/a")}},
		{ID: "empty", HID: 4},
	}

	got := n.Normalize(listings, nil, PriceWindow{})

	require.Len(t, got, 1)
	assert.Equal(t, "priced", got[0].ID)
	assert.True(t, got[0].HasPricedOffer())
}

func TestNormalize_OffersCheapestFirstWithPerNightAverage(t *testing.T) {
	n := NewCandidateNormalizer(testLogger())
	listings := []domain.RawListing{{
		ID:  "h",
		HID: 10,
		Rates: []domain.RawRate{
			rate("expensive", "9000", "4000", "5000"),
			rate("cheap", "5000", "2000", "3000"),
		},
	}}

	got := n.Normalize(listings, nil, PriceWindow{})

	require.Len(t, got, 1)
	require.Len(t, got[0].Offers, 2)
	assert.Equal(t, "cheap", got[0].Offers[0].MatchToken)
	require.NotNil(t, got[0].Offers[0].PricePerNight)
	assert.Equal(t, 2500.0, *got[0].Offers[0].PricePerNight)
	assert.Equal(t, "h", got[0].Name)
	assert.Equal(t, unspecifiedKind, got[0].Kind)
}

func TestNormalize_PriceWindow(t *testing.T) {
	n := NewCandidateNormalizer(testLogger())
	listings := []domain.RawListing{
		{ID: "inside", HID: 1, Rates: []domain.RawRate{
			rate("a", "6000", "3000", "3000"),
			rate("b", "20000", "10000", "10000"),
		}},
		{ID: "too-cheap", HID: 2, Rates: []domain.RawRate{rate("c", "1000", "500", "500")}},
		{ID: "no-nightly", HID: 3, Rates: []domain.RawRate{rate("d", "6000")}},
	}
	window := PriceWindow{Min: ptr(1000.0), Max: ptr(5000.0)}

	got := n.Normalize(listings, nil, window)

	require.Len(t, got, 1)
	assert.Equal(t, "inside", got[0].ID)
	require.Len(t, got[0].Offers, 1)
	assert.Equal(t, "a", got[0].Offers[0].MatchToken)
}

func TestNormalize_JoinsContent(t *testing.T) {
	n := NewCandidateNormalizer(testLogger())
	listings := []domain.RawListing{
		{ID: "h1", HID: 1, Rates: []domain.RawRate{rate("a", "6000", "3000", "3000")}},
		{ID: "h2", HID: 2, Rates: []domain.RawRate{rate("b", "6000", "3000", "3000")}},
	}
	content := map[int64]domain.RawContent{
		1: {HID: 1, Name: "Grand", Kind: "Resort", StarRating: 5, City: "Sochi", CountryCode: "RU"},
		2: {HID: 2, Name: "Gone", Closed: true},
	}

	got := n.Normalize(listings, content, PriceWindow{})

	require.Len(t, got, 1)
	assert.Equal(t, "Grand", got[0].Name)
	assert.Equal(t, "Resort", got[0].Kind)
	require.NotNil(t, got[0].StarRating)
	assert.Equal(t, 5.0, *got[0].StarRating)
	assert.Equal(t, "Sochi", got[0].City)
}

func TestSampleListings(t *testing.T) {
	var listings []domain.RawListing
	for i := 0; i < 800; i++ {
		listings = append(listings, domain.RawListing{ID: fmt.Sprintf("h%d", i), HID: int64(i)})
	}

	t.Run("under the cap returns input", func(t *testing.T) {
		assert.Len(t, SampleListings(listings[:10], 500, "seed"), 10)
	})

	t.Run("over the cap is bounded and reproducible", func(t *testing.T) {
		first := SampleListings(listings, 500, "seed")
		reversed := make([]domain.RawListing, len(listings))
		for i, l := range listings {
			reversed[len(listings)-1-i] = l
		}
		second := SampleListings(reversed, 500, "seed")

		require.Len(t, first, 500)
		assert.Equal(t, first, second)
	})

	t.Run("different seeds sample differently", func(t *testing.T) {
		a := SampleListings(listings, 500, "one")
		b := SampleListings(listings, 500, "two")
		assert.NotEqual(t, a, b)
	})
}

func TestApplyReviewAggregates(t *testing.T) {
	cands := []domain.Candidate{
		{ID: "no-rating", HID: 1},
		{ID: "has-rating", HID: 2, GuestRating: ptr(9.0), ReviewCount: 12},
	}
	reviews := map[int64][]domain.Review{
		1: {{ID: 1, Rating: ptr(8.0)}, {ID: 2, Rating: ptr(6.0)}, {ID: 3}},
		2: {{ID: 4, Rating: ptr(2.0)}},
	}

	ApplyReviewAggregates(cands, reviews)

	require.NotNil(t, cands[0].GuestRating)
	assert.Equal(t, 7.0, *cands[0].GuestRating)
	assert.Equal(t, 3, cands[0].ReviewCount)
	assert.Equal(t, 9.0, *cands[1].GuestRating)
	assert.Equal(t, 12, cands[1].ReviewCount)
}
