package judge

import (
	"encoding/json"
	"fmt"
	"strings"

	"hotel-curator/internal/domain"
)

const (
	maxTopPicks       = 4
	summaryReasonsCap = 3
)

var summaryInstructions = []string{
	"You are a travel assistant. The hotels in <results> are already ranked for the guest, best first.",
	"overview: 2-3 sentences on how well the results match <preferences>. Say so plainly when they match poorly.",
	"top_picks: 2-4 hotels from <results> with hotel_id copied exactly, hotel_name and 1-2 sentences on why it suits this guest.",
	"considerations: the trade-offs that matter, such as price against location or missing amenities.",
	"final_advice: one clear recommendation of what to book, or how to search differently if nothing fits.",
	"Only mention hotels that appear in <results>.",
}

var summarySchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"overview": map[string]any{"type": "string"},
		"top_picks": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"hotel_id":        map[string]any{"type": "string"},
					"hotel_name":      map[string]any{"type": "string"},
					"why_recommended": map[string]any{"type": "string"},
				},
				"required": []string{"hotel_id", "hotel_name", "why_recommended"},
			},
		},
		"considerations": map[string]any{"type": "string"},
		"final_advice":   map[string]any{"type": "string"},
	},
	"required": []string{"overview", "top_picks", "considerations", "final_advice"},
}

type resultView struct {
	HotelID   string   `json:"hotel_id"`
	Name      string   `json:"name"`
	Score     int      `json:"score"`
	Stars     *float64 `json:"stars,omitempty"`
	Kind      string   `json:"kind,omitempty"`
	Address   string   `json:"address,omitempty"`
	PerNight  *float64 `json:"per_night,omitempty"`
	Reasons   []string `json:"top_reasons,omitempty"`
	Penalties []string `json:"score_penalties,omitempty"`
}

// BuildSummaryPrompt renders the summary request over ranked results.
func BuildSummaryPrompt(top []domain.Enriched, sc domain.SearchContext) (Prompt, error) {
	views := make([]resultView, 0, len(top))
	for _, r := range top {
		v := resultView{
			HotelID:   r.CandidateID,
			Name:      r.Candidate.Name,
			Score:     r.Score,
			Stars:     r.Candidate.StarRating,
			Kind:      r.Candidate.Kind,
			Address:   r.Candidate.Address,
			Reasons:   truncate(r.TopReasons, summaryReasonsCap),
			Penalties: truncate(r.Penalties, summaryReasonsCap),
		}
		if len(r.Candidate.Offers) > 0 {
			v.PerNight = r.Candidate.Offers[0].PricePerNight
		}
		views = append(views, v)
	}
	payload, err := json.Marshal(views)
	if err != nil {
		return Prompt{}, fmt.Errorf("marshal results: %w", err)
	}

	sys := "<instructions>\n  " + strings.Join(summaryInstructions, "\n  ") + "\n</instructions>\n" +
		`<format>Respond with JSON only: {"overview", "top_picks": [{"hotel_id", "hotel_name", "why_recommended"}], "considerations", "final_advice"}</format>`
	user := "<preferences>\n" + strings.TrimSpace(sc.Preferences) + "\n</preferences>\n" +
		"<trip>" + tripLine(sc) + "</trip>\n" +
		"<results>\n" + string(payload) + "\n</results>"
	return Prompt{System: sys, User: user, Schema: summarySchema}, nil
}

// parseSummary decodes a summary reply and drops picks that name hotels outside top.
func parseSummary(raw string, top []domain.Enriched) (*domain.SearchSummary, error) {
	text, err := jsonObject(raw)
	if err != nil {
		return nil, err
	}
	var s domain.SearchSummary
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return nil, fmt.Errorf("%w: failed to parse summary: %v", domain.ErrValidation, err)
	}
	s.Overview = strings.TrimSpace(s.Overview)
	if s.Overview == "" {
		return nil, fmt.Errorf("%w: summary has no overview", domain.ErrValidation)
	}

	known := make(map[string]bool, len(top))
	for _, r := range top {
		known[r.CandidateID] = true
	}
	picks := make([]domain.Recommendation, 0, len(s.TopPicks))
	for _, pick := range s.TopPicks {
		if known[pick.HotelID] && len(picks) < maxTopPicks {
			picks = append(picks, pick)
		}
	}
	s.TopPicks = picks
	return &s, nil
}
