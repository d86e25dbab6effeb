package domain

import "time"

// Review is a single guest review as returned by the inventory.
type Review struct {
	ID            int64           `json:"id"`
	Rating        *float64        `json:"rating,omitempty"`
	Plus          string          `json:"plus,omitempty"`
	Minus         string          `json:"minus,omitempty"`
	Created       time.Time       `json:"created"`
	TravellerType string          `json:"traveller_type,omitempty"`
	TripType      string          `json:"trip_type,omitempty"`
	Language      string          `json:"language,omitempty"`
	Detailed      *DetailedReview `json:"detailed,omitempty"`
}

// DetailedReview holds per-category grades. Zero numeric values mean "not rated".
type DetailedReview struct {
	Cleanness int    `json:"cleanness"`
	Location  int    `json:"location"`
	Price     int    `json:"price"`
	Services  int    `json:"services"`
	Room      int    `json:"room"`
	Meal      int    `json:"meal"`
	Wifi      string `json:"wifi,omitempty"`
	Hygiene   string `json:"hygiene,omitempty"`
}

// Segment is the sentiment bucket a review falls into.
type Segment string

const (
	SegmentPositive Segment = "positive"
	SegmentNeutral  Segment = "neutral"
	SegmentNegative Segment = "negative"
)

// DetailedAverages are per-category averages over reviews that rated the category.
type DetailedAverages struct {
	Cleanness *float64 `json:"cleanness,omitempty"`
	Location  *float64 `json:"location,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	Services  *float64 `json:"services,omitempty"`
	Room      *float64 `json:"room,omitempty"`
	Meal      *float64 `json:"meal,omitempty"`
	Wifi      *float64 `json:"wifi,omitempty"`
	Hygiene   *float64 `json:"hygiene,omitempty"`
}

// ReviewEvidence is the curated per-candidate review summary. It is recomputed per search.
type ReviewEvidence struct {
	SegmentCounts          map[Segment]int      `json:"segment_counts"`
	Samples                map[Segment][]Review `json:"samples"`
	RecencyWeightedAverage *float64             `json:"recency_weighted_average,omitempty"`
	LifetimeAverage        *float64             `json:"lifetime_average,omitempty"`
	DetailedAverages       DetailedAverages     `json:"detailed_averages"`
	TotalReviews           int                  `json:"total_reviews"`
	FilteredByAge          int                  `json:"filtered_by_age"`
	InsufficientData       bool                 `json:"insufficient_data"`
}

// SampleSize returns the number of retained reviews across all segments.
func (e ReviewEvidence) SampleSize() int {
	n := 0
	for _, s := range e.Samples {
		n += len(s)
	}
	return n
}
