package domain

const (
	MinScore = 0
	MaxScore = 100
)

// ScoreSource tags where a ScoredResult's score came from.
type ScoreSource string

const (
	ScoreSourceJudged            ScoreSource = "judged"
	ScoreSourceHeuristicFallback ScoreSource = "heuristic_fallback"
)

// ProvisionalPenalty marks results whose score is a heuristic fallback.
const ProvisionalPenalty = "provisional — automated scoring unavailable"

// LowConfidencePenalty marks results scored without usable review evidence.
const LowConfidencePenalty = "insufficient review data"

// ScoredResult is the final ranked entry for one candidate.
type ScoredResult struct {
	CandidateID string   `json:"candidate_id"`
	Score       int      `json:"score"`
	TopReasons  []string `json:"top_reasons"`
	Penalties   []string `json:"score_penalties"`
	// SelectedOfferToken is nil when no offer was selected.
	SelectedOfferToken *string     `json:"selected_offer_token"`
	Source             ScoreSource `json:"source"`
	LowConfidence      bool        `json:"low_confidence,omitempty"`
}

// IsProvisional reports whether the score is a heuristic fallback.
func (r ScoredResult) IsProvisional() bool {
	return r.Source == ScoreSourceHeuristicFallback
}

// JudgedScore is one entry of a judgment service response, before validation.
type JudgedScore struct {
	CandidateID        string   `json:"hotel_id"`
	Score              float64  `json:"score"`
	TopReasons         []string `json:"top_reasons"`
	Penalties          []string `json:"score_penalties"`
	SelectedOfferToken *string  `json:"selected_rate_hash"`
}

// GuestRoom is one room's occupancy.
type GuestRoom struct {
	Adults   int   `json:"adults" validate:"min=1,max=6"`
	Children []int `json:"children,omitempty" validate:"omitempty,max=4,dive,min=0,max=17"`
}

// SearchContext is the shared context sent with every scoring batch.
type SearchContext struct {
	Preferences      string      `json:"user_preferences"`
	Guests           []GuestRoom `json:"guests"`
	MinPricePerNight *float64    `json:"min_price_per_night,omitempty"`
	MaxPricePerNight *float64    `json:"max_price_per_night,omitempty"`
	Currency         string      `json:"currency,omitempty"`
	Nights           int         `json:"nights"`
}

// Enriched is a scored result joined with its candidate data, as shown to consumers.
type Enriched struct {
	ScoredResult
	Candidate  Candidate      `json:"hotel"`
	Evidence   ReviewEvidence `json:"reviews"`
	BookingURL string         `json:"booking_url,omitempty"`
}
