package domain

import (
	"context"
	"time"
)

// SearchCriteria is what the inventory search is called with.
type SearchCriteria struct {
	RegionID    int64
	Checkin     time.Time
	Checkout    time.Time
	Guests      []GuestRoom
	Residency   string
	Currency    string
	Language    string
	HotelsLimit int
}

// Nights returns the stay length, at least one.
func (c SearchCriteria) Nights() int {
	n := int(c.Checkout.Sub(c.Checkin).Hours() / 24)
	if n < 1 {
		return 1
	}
	return n
}

// RawRate is an offer exactly as the inventory reports it.
type RawRate struct {
	MatchHash              string
	DailyPrices            []string
	ShowAmount             string
	ShowCurrency           string
	RoomName               string
	Meal                   string
	HasBreakfast           bool
	Capacity               int
	FreeCancellationBefore string
}

// RawListing is one hotel in the inventory search response.
type RawListing struct {
	ID    string
	HID   int64
	Rates []RawRate
}

// SearchResult is the inventory search response.
type SearchResult struct {
	Hotels      []RawListing
	TotalHotels int
}

// RawContent is static hotel content. Rating and ReviewCount are zero-valued when the
// provider does not expose an aggregate.
type RawContent struct {
	ID          string   `json:"id"`
	HID         int64    `json:"hid"`
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	StarRating  int      `json:"star_rating"`
	Kind        string   `json:"kind"`
	Amenities   []string `json:"amenities"`
	Facts       []string `json:"facts"`
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount int      `json:"review_count"`
	City        string   `json:"city,omitempty"`
	CountryCode string   `json:"country_code,omitempty"`
	Closed      bool     `json:"closed,omitempty"`
}

// Region is an autocomplete suggestion.
type Region struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	CountryCode string `json:"country_code"`
}

// InventoryClient is the third-party hotel inventory.
type InventoryClient interface {
	Search(ctx context.Context, criteria SearchCriteria) (*SearchResult, error)
	FetchContent(ctx context.Context, hids []int64, language string) ([]RawContent, error)
	FetchReviews(ctx context.Context, hids []int64, language string) (map[int64][]Review, error)
	SuggestRegion(ctx context.Context, query, language string) ([]Region, error)
}

// ContentCache is a read-through cache for static hotel content.
type ContentCache interface {
	Get(ctx context.Context, hid int64, language string) (RawContent, bool)
	Set(ctx context.Context, language string, content RawContent)
}
