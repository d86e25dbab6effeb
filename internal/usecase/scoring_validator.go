package usecase

import (
	"fmt"
	"math"
	"strings"

	"hotel-curator/internal/domain"
)

const maxReasons = 5

// ScoreValidator checks a judgment response against the batch it was produced for.
// Recoverable defects are repaired; anything else is reported as domain.ErrValidation.
type ScoreValidator struct{}

// NewScoreValidator returns a stateless validator.
func NewScoreValidator() ScoreValidator {
	return ScoreValidator{}
}

// Validate returns one result per candidate in batch, in batch order.
func (v ScoreValidator) Validate(batch []domain.CandidateWithEvidence, judged []domain.JudgedScore) ([]domain.ScoredResult, error) {
	index := make(map[string]int, len(batch))
	for i, c := range batch {
		index[c.ID] = i
	}

	results := make([]*domain.ScoredResult, len(batch))
	for _, j := range judged {
		id := strings.TrimSpace(j.CandidateID)
		pos, known := index[id]
		if !known {
			continue
		}
		if results[pos] != nil {
			return nil, fmt.Errorf("%w: duplicate candidate %s", domain.ErrValidation, id)
		}
		if math.IsNaN(j.Score) || math.IsInf(j.Score, 0) || j.Score < domain.MinScore || j.Score > domain.MaxScore {
			return nil, fmt.Errorf("%w: score %v out of range for %s", domain.ErrValidation, j.Score, id)
		}

		cand := batch[pos]
		token, err := selectedToken(cand, j.SelectedOfferToken)
		if err != nil {
			return nil, err
		}

		res := domain.ScoredResult{
			CandidateID:        id,
			Score:              int(math.Round(j.Score)),
			TopReasons:         cleanStrings(j.TopReasons),
			Penalties:          cleanStrings(j.Penalties),
			SelectedOfferToken: token,
			Source:             domain.ScoreSourceJudged,
		}
		markLowConfidence(&res, cand.Evidence)
		results[pos] = &res
	}

	out := make([]domain.ScoredResult, len(batch))
	for i, r := range results {
		if r == nil {
			return nil, fmt.Errorf("%w: missing candidate %s", domain.ErrValidation, batch[i].ID)
		}
		out[i] = *r
	}
	return out, nil
}

func selectedToken(cand domain.CandidateWithEvidence, raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	token := strings.TrimSpace(*raw)
	if token == "" || strings.EqualFold(token, "null") {
		return nil, nil
	}
	if _, ok := cand.OfferTokens()[token]; !ok {
		return nil, fmt.Errorf("%w: unknown offer token for %s", domain.ErrValidation, cand.ID)
	}
	return &token, nil
}

func cleanStrings(in []string) []string {
	out := make([]string, 0, min(len(in), maxReasons))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == maxReasons {
			break
		}
	}
	return out
}

func markLowConfidence(res *domain.ScoredResult, evidence domain.ReviewEvidence) {
	if !evidence.InsufficientData {
		return
	}
	res.LowConfidence = true
	for _, p := range res.Penalties {
		if p == domain.LowConfidencePenalty {
			return
		}
	}
	res.Penalties = append(res.Penalties, domain.LowConfidencePenalty)
}
