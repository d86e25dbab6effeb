package judge

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"hotel-curator/internal/domain"
)

const (
	maxOffersPerHotel    = 5
	maxReviewsPerSegment = 4
	maxAmenitiesPerHotel = 20
	reviewTextLimit      = 150
	roomNameLimit        = 60
)

var instructions = []string{
	"You are a hotel recommendation expert. Score every hotel in <hotels> against <preferences>.",
	"Score range 0-100: 90-100 excellent match, 70-89 good, 50-69 acceptable, 30-49 poor, 0-29 very poor.",
	"If the guest explicitly asked for something and the hotel does not have it, deduct 15-30 points per violation.",
	"Missing features the guest did not mention cost at most 5-10 points.",
	"Weigh location, price against the budget, amenities, star level, review evidence and room suitability, in the order the preferences imply.",
	"Hotels marked low_confidence have too few recent reviews; do not reward them for review quality.",
	"top_reasons: 1-5 short phrases (10 words or fewer) on why the hotel fits.",
	"score_penalties: facts behind each deduction, explicit violations first.",
	"selected_rate_hash: the rate_hash of the single best offer for this guest, or null.",
	"Return every hotel_id exactly once. Do not invent hotels.",
}

// Prompt is a rendered system/user message pair and the JSON schema the reply must follow.
type Prompt struct {
	System string
	User   string
	Schema map[string]any
}

// Len is the prompt size in characters.
func (p Prompt) Len() int {
	return utf8.RuneCountInString(p.System) + utf8.RuneCountInString(p.User)
}

type offerView struct {
	RateHash         string   `json:"rate_hash"`
	Room             string   `json:"room"`
	Total            string   `json:"total"`
	PerNight         *float64 `json:"per_night,omitempty"`
	Meal             string   `json:"meal,omitempty"`
	HasBreakfast     bool     `json:"has_breakfast"`
	FreeCancelBefore string   `json:"free_cancel_before,omitempty"`
}

type reviewView struct {
	Rating *float64 `json:"rating,omitempty"`
	Plus   string   `json:"plus,omitempty"`
	Minus  string   `json:"minus,omitempty"`
	Date   string   `json:"date"`
}

type hotelView struct {
	HotelID          string                  `json:"hotel_id"`
	Name             string                  `json:"name"`
	Kind             string                  `json:"kind"`
	Stars            *float64                `json:"stars,omitempty"`
	Address          string                  `json:"address,omitempty"`
	GuestRating      *float64                `json:"guest_rating,omitempty"`
	ReviewCount      int                     `json:"review_count,omitempty"`
	Facts            []string                `json:"facts,omitempty"`
	Amenities        []string                `json:"amenities,omitempty"`
	Rates            []offerView             `json:"rates"`
	RecentRating     *float64                `json:"recent_rating,omitempty"`
	LifetimeRating   *float64                `json:"lifetime_rating,omitempty"`
	ReviewCounts     map[domain.Segment]int  `json:"review_counts,omitempty"`
	CategoryAverages domain.DetailedAverages `json:"category_averages"`
	Reviews          []reviewView            `json:"reviews,omitempty"`
	LowConfidence    bool                    `json:"low_confidence,omitempty"`
}

// BuildPrompt renders a scoring prompt for one batch.
func BuildPrompt(batch []domain.CandidateWithEvidence, sc domain.SearchContext) (Prompt, error) {
	hotels := make([]hotelView, 0, len(batch))
	for _, item := range batch {
		hotels = append(hotels, viewOf(item))
	}
	payload, err := json.Marshal(hotels)
	if err != nil {
		return Prompt{}, fmt.Errorf("marshal hotels: %w", err)
	}

	var sys strings.Builder
	sys.WriteString("<instructions>\n")
	for _, line := range instructions {
		sys.WriteString("  ")
		sys.WriteString(line)
		sys.WriteString("\n")
	}
	sys.WriteString("</instructions>\n")
	sys.WriteString("<format>Respond with JSON only: {\"results\": [{\"hotel_id\", \"score\", \"top_reasons\", \"score_penalties\", \"selected_rate_hash\"}]}</format>")

	var user strings.Builder
	user.WriteString("<preferences>\n")
	user.WriteString(strings.TrimSpace(sc.Preferences))
	user.WriteString("\n</preferences>\n")
	user.WriteString("<trip>")
	user.WriteString(tripLine(sc))
	user.WriteString("</trip>\n")
	user.WriteString("<hotels>\n")
	user.Write(payload)
	user.WriteString("\n</hotels>")

	return Prompt{System: sys.String(), User: user.String(), Schema: responseSchema}, nil
}

func tripLine(sc domain.SearchContext) string {
	adults, children := 0, 0
	for _, g := range sc.Guests {
		adults += g.Adults
		children += len(g.Children)
	}
	line := fmt.Sprintf("nights=%d rooms=%d adults=%d children=%d", sc.Nights, len(sc.Guests), adults, children)
	if sc.MinPricePerNight != nil {
		line += fmt.Sprintf(" min_per_night=%.0f", *sc.MinPricePerNight)
	}
	if sc.MaxPricePerNight != nil {
		line += fmt.Sprintf(" max_per_night=%.0f", *sc.MaxPricePerNight)
	}
	if sc.Currency != "" {
		line += " currency=" + sc.Currency
	}
	return line
}

func viewOf(item domain.CandidateWithEvidence) hotelView {
	c := item.Candidate
	ev := item.Evidence
	v := hotelView{
		HotelID:          c.ID,
		Name:             c.Name,
		Kind:             c.Kind,
		Stars:            c.StarRating,
		Address:          c.Address,
		GuestRating:      c.GuestRating,
		ReviewCount:      c.ReviewCount,
		Facts:            c.Facts,
		Amenities:        truncate(c.Amenities, maxAmenitiesPerHotel),
		RecentRating:     ev.RecencyWeightedAverage,
		LifetimeRating:   ev.LifetimeAverage,
		ReviewCounts:     ev.SegmentCounts,
		CategoryAverages: ev.DetailedAverages,
		LowConfidence:    ev.InsufficientData,
	}
	for _, o := range truncate(c.Offers, maxOffersPerHotel) {
		ov := offerView{
			RateHash:     o.MatchToken,
			Room:         clip(o.RoomName, roomNameLimit),
			Total:        fmt.Sprintf("%.2f %s", o.Price.Amount, o.Price.Currency),
			PerNight:     o.PricePerNight,
			Meal:         o.Meal,
			HasBreakfast: o.HasBreakfast,
		}
		if o.FreeCancellationBefore != nil {
			ov.FreeCancelBefore = o.FreeCancellationBefore.Format("2006-01-02")
		}
		v.Rates = append(v.Rates, ov)
	}
	for _, seg := range []domain.Segment{domain.SegmentPositive, domain.SegmentNeutral, domain.SegmentNegative} {
		for _, r := range truncate(ev.Samples[seg], maxReviewsPerSegment) {
			v.Reviews = append(v.Reviews, reviewView{
				Rating: r.Rating,
				Plus:   clip(r.Plus, reviewTextLimit),
				Minus:  clip(r.Minus, reviewTextLimit),
				Date:   r.Created.Format("2006-01-02"),
			})
		}
	}
	return v
}

func truncate[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
