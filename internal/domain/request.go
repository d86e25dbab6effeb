package domain

import (
	"strings"
	"time"
)

const (
	DateLayout         = "2006-01-02"
	DefaultTopHotels   = 10
	MaxTopHotels       = 12
	DefaultLanguage    = "ru"
	DefaultPreferences = "Лучшее соотношение цены и качества, хорошие отзывы, удобное расположение"
)

// SearchRequest is the input of a curated hotel search.
type SearchRequest struct {
	RegionID         int64       `json:"region_id" validate:"required,gt=0"`
	Checkin          string      `json:"checkin" validate:"required,datetime=2006-01-02"`
	Checkout         string      `json:"checkout" validate:"required,datetime=2006-01-02"`
	Guests           []GuestRoom `json:"guests" validate:"required,min=1,max=9,dive"`
	Residency        string      `json:"residency" validate:"required,len=2,alpha,lowercase"`
	Currency         string      `json:"currency,omitempty" validate:"omitempty,iso4217"`
	Language         string      `json:"language,omitempty" validate:"omitempty,len=2,alpha,lowercase"`
	MinPricePerNight *float64    `json:"min_price_per_night,omitempty" validate:"omitempty,gt=0"`
	MaxPricePerNight *float64    `json:"max_price_per_night,omitempty" validate:"omitempty,gt=0"`
	UserPreferences  string      `json:"user_preferences,omitempty" validate:"max=2000"`
	TopHotels        int         `json:"top_hotels,omitempty" validate:"omitempty,min=1,max=12"`
	HotelsLimit      int         `json:"hotels_limit,omitempty" validate:"omitempty,min=1,max=10000"`
}

// ApplyDefaults fills optional fields left empty by the caller.
func (r *SearchRequest) ApplyDefaults() {
	if r.TopHotels == 0 {
		r.TopHotels = DefaultTopHotels
	}
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
	if strings.TrimSpace(r.UserPreferences) == "" {
		r.UserPreferences = DefaultPreferences
	}
}

// Dates parses check-in and check-out.
func (r SearchRequest) Dates() (time.Time, time.Time, error) {
	in, err := time.Parse(DateLayout, r.Checkin)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	out, err := time.Parse(DateLayout, r.Checkout)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return in, out, nil
}

// Criteria converts the request to inventory search criteria.
func (r SearchRequest) Criteria() (SearchCriteria, error) {
	in, out, err := r.Dates()
	if err != nil {
		return SearchCriteria{}, err
	}
	return SearchCriteria{
		RegionID:    r.RegionID,
		Checkin:     in,
		Checkout:    out,
		Guests:      r.Guests,
		Residency:   r.Residency,
		Currency:    r.Currency,
		Language:    r.Language,
		HotelsLimit: r.HotelsLimit,
	}, nil
}

// TotalGuests sums adults and children across rooms.
func TotalGuests(rooms []GuestRoom) int {
	n := 0
	for _, g := range rooms {
		n += g.Adults + len(g.Children)
	}
	return n
}
