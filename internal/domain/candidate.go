package domain

import "time"

// Money is an amount in a given ISO 4217 currency.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Offer is one bookable rate of a candidate.
type Offer struct {
	Price                  Money      `json:"price"`
	PricePerNight          *float64   `json:"price_per_night,omitempty"`
	Adults                 int        `json:"adults,omitempty"`
	Children               int        `json:"children,omitempty"`
	RoomName               string     `json:"room_name"`
	Meal                   string     `json:"meal,omitempty"`
	HasBreakfast           bool       `json:"has_breakfast"`
	FreeCancellationBefore *time.Time `json:"free_cancellation_before,omitempty"`
	// MatchToken is opaque and must be echoed back unmodified by anything that picks this offer.
	MatchToken string `json:"match_token"`
}

// Candidate is a single hotel-like property under consideration.
type Candidate struct {
	ID          string   `json:"id"`
	HID         int64    `json:"hid"`
	Name        string   `json:"name"`
	Kind        string   `json:"kind"`
	StarRating  *float64 `json:"star_rating,omitempty"`
	GuestRating *float64 `json:"guest_rating,omitempty"`
	ReviewCount int      `json:"review_count"`
	Address     string   `json:"address,omitempty"`
	City        string   `json:"city,omitempty"`
	CountryCode string   `json:"country_code,omitempty"`
	Latitude    float64  `json:"latitude,omitempty"`
	Longitude   float64  `json:"longitude,omitempty"`
	Amenities   []string `json:"amenities,omitempty"`
	Facts       []string `json:"facts,omitempty"`
	// Offers are ordered cheapest first.
	Offers []Offer `json:"offers"`
}

// HasPricedOffer reports whether at least one offer carries a known total price.
func (c Candidate) HasPricedOffer() bool {
	for _, o := range c.Offers {
		if o.Price.Amount > 0 {
			return true
		}
	}
	return false
}

// HasPerNightPrice reports whether any offer has a usable per-night price.
func (c Candidate) HasPerNightPrice() bool {
	for _, o := range c.Offers {
		if o.PricePerNight != nil && *o.PricePerNight > 0 {
			return true
		}
	}
	return false
}

// OfferTokens returns the set of match tokens sent for this candidate.
func (c Candidate) OfferTokens() map[string]struct{} {
	tokens := make(map[string]struct{}, len(c.Offers))
	for _, o := range c.Offers {
		if o.MatchToken != "" {
			tokens[o.MatchToken] = struct{}{}
		}
	}
	return tokens
}

// RankedCandidate is a candidate that survived pre-scoring, with its heuristic score.
type RankedCandidate struct {
	Candidate
	PreScore float64 `json:"pre_score"`
}

// CandidateWithEvidence is the unit handed to the judgment service.
type CandidateWithEvidence struct {
	RankedCandidate
	Evidence ReviewEvidence `json:"evidence"`
}
