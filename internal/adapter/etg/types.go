package etg

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"hotel-curator/internal/domain"
)

const (
	searchRegionPath  = "/api/b2b/v3/search/serp/region/"
	multicompletePath = "/api/b2b/v3/search/multicomplete/"
	contentPath       = "/api/content/v1/hotel_content_by_ids/"
	reviewsPath       = "/api/content/v1/hotel_reviews_by_ids/"
)

type envelope struct {
	Status string          `json:"status"`
	Error  json.RawMessage `json:"error"`
	Data   json.RawMessage `json:"data"`
}

func (e envelope) failed() bool {
	if e.Status == "ok" {
		return false
	}
	switch strings.TrimSpace(string(e.Error)) {
	case "", "null", `""`, "false", "{}":
		return false
	}
	return true
}

type guestRoom struct {
	Adults   int   `json:"adults"`
	Children []int `json:"children"`
}

type searchRequest struct {
	RegionID    int64       `json:"region_id"`
	Checkin     string      `json:"checkin"`
	Checkout    string      `json:"checkout"`
	Residency   string      `json:"residency"`
	Guests      []guestRoom `json:"guests"`
	Currency    string      `json:"currency,omitempty"`
	Language    string      `json:"language,omitempty"`
	HotelsLimit int         `json:"hotels_limit,omitempty"`
}

type idsRequest struct {
	HIDs     []int64 `json:"hids"`
	Language string  `json:"language"`
}

type suggestRequest struct {
	Query    string `json:"query"`
	Language string `json:"language"`
}

type searchData struct {
	Hotels      []hotelDTO `json:"hotels"`
	TotalHotels int        `json:"total_hotels"`
}

type hotelDTO struct {
	ID    string    `json:"id"`
	HID   int64     `json:"hid"`
	Rates []rateDTO `json:"rates"`
}

type rateDTO struct {
	MatchHash   string   `json:"match_hash"`
	DailyPrices []string `json:"daily_prices"`
	RoomName    string   `json:"room_name"`
	Meal        string   `json:"meal"`
	MealData    struct {
		HasBreakfast bool `json:"has_breakfast"`
	} `json:"meal_data"`
	PaymentOptions struct {
		PaymentTypes []paymentTypeDTO `json:"payment_types"`
	} `json:"payment_options"`
	RgExt map[string]int `json:"rg_ext"`
}

type paymentTypeDTO struct {
	ShowAmount            string `json:"show_amount"`
	ShowCurrencyCode      string `json:"show_currency_code"`
	CancellationPenalties *struct {
		FreeCancellationBefore *string `json:"free_cancellation_before"`
	} `json:"cancellation_penalties"`
}

type contentDTO struct {
	ID            string  `json:"id"`
	HID           int64   `json:"hid"`
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	StarRating    int     `json:"star_rating"`
	Kind          string  `json:"kind"`
	Deleted       bool    `json:"deleted"`
	IsClosed      bool    `json:"is_closed"`
	AmenityGroups []struct {
		Amenities []string `json:"amenities"`
	} `json:"amenity_groups"`
	Region *struct {
		Name        string `json:"name"`
		CountryCode string `json:"country_code"`
	} `json:"region"`
	Facts *factsDTO `json:"facts"`
}

type factsDTO struct {
	FloorsNumber  *int `json:"floors_number"`
	RoomsNumber   *int `json:"rooms_number"`
	YearBuilt     *int `json:"year_built"`
	YearRenovated *int `json:"year_renovated"`
}

type hotelReviewsDTO struct {
	ID      string      `json:"id"`
	HID     int64       `json:"hid"`
	Reviews []reviewDTO `json:"reviews"`
}

type reviewDTO struct {
	ID             int64                  `json:"id"`
	ReviewPlus     *string                `json:"review_plus"`
	ReviewMinus    *string                `json:"review_minus"`
	Created        string                 `json:"created"`
	TravellerType  string                 `json:"traveller_type"`
	TripType       string                 `json:"trip_type"`
	Rating         *float64               `json:"rating"`
	DetailedReview *domain.DetailedReview `json:"detailed_review"`
}

type suggestData struct {
	Regions []domain.Region `json:"regions"`
}

func toListing(h hotelDTO) domain.RawListing {
	listing := domain.RawListing{ID: h.ID, HID: h.HID, Rates: make([]domain.RawRate, 0, len(h.Rates))}
	for _, r := range h.Rates {
		rate := domain.RawRate{
			MatchHash:    r.MatchHash,
			DailyPrices:  r.DailyPrices,
			RoomName:     r.RoomName,
			Meal:         r.Meal,
			HasBreakfast: r.MealData.HasBreakfast,
			Capacity:     r.RgExt["capacity"],
		}
		if len(r.PaymentOptions.PaymentTypes) > 0 {
			pt := r.PaymentOptions.PaymentTypes[0]
			rate.ShowAmount = pt.ShowAmount
			rate.ShowCurrency = pt.ShowCurrencyCode
			if pt.CancellationPenalties != nil && pt.CancellationPenalties.FreeCancellationBefore != nil {
				rate.FreeCancellationBefore = *pt.CancellationPenalties.FreeCancellationBefore
			}
		}
		listing.Rates = append(listing.Rates, rate)
	}
	return listing
}

func toContent(c contentDTO) domain.RawContent {
	content := domain.RawContent{
		ID:         c.ID,
		HID:        c.HID,
		Name:       c.Name,
		Address:    c.Address,
		Latitude:   c.Latitude,
		Longitude:  c.Longitude,
		StarRating: c.StarRating,
		Kind:       c.Kind,
		Closed:     c.Deleted || c.IsClosed,
	}
	for _, g := range c.AmenityGroups {
		content.Amenities = append(content.Amenities, g.Amenities...)
	}
	if c.Region != nil {
		content.City = c.Region.Name
		content.CountryCode = c.Region.CountryCode
	}
	if c.Facts != nil {
		content.Facts = c.Facts.lines()
	}
	return content
}

func (f factsDTO) lines() []string {
	var out []string
	add := func(label string, v *int) {
		if v != nil && *v > 0 {
			out = append(out, fmt.Sprintf("%s: %d", label, *v))
		}
	}
	add("floors", f.FloorsNumber)
	add("rooms", f.RoomsNumber)
	add("built", f.YearBuilt)
	add("renovated", f.YearRenovated)
	return out
}

var reviewDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

func toReview(r reviewDTO) (domain.Review, bool) {
	created, ok := parseReviewDate(r.Created)
	if !ok {
		return domain.Review{}, false
	}
	review := domain.Review{
		ID:            r.ID,
		Rating:        r.Rating,
		Created:       created,
		TravellerType: r.TravellerType,
		TripType:      r.TripType,
		Detailed:      r.DetailedReview,
	}
	if r.ReviewPlus != nil {
		review.Plus = strings.TrimSpace(*r.ReviewPlus)
	}
	if r.ReviewMinus != nil {
		review.Minus = strings.TrimSpace(*r.ReviewMinus)
	}
	return review, true
}

func parseReviewDate(s string) (time.Time, bool) {
	for _, layout := range reviewDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
