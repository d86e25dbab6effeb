package domain

import "context"

// Judge scores a batch of candidates against the user's preferences. Implementations are
// swappable providers; the coordinator only relies on this capability.
type Judge interface {
	Score(ctx context.Context, batch []CandidateWithEvidence, sc SearchContext) ([]JudgedScore, error)
	// Summarize writes a recommendation over already ranked results, best first.
	Summarize(ctx context.Context, top []Enriched, sc SearchContext) (*SearchSummary, error)
	// EstimateTokens approximates the prompt size for progress reporting.
	EstimateTokens(batch []CandidateWithEvidence, sc SearchContext) int
	Name() string
}
