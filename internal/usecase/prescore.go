package usecase

import (
	"math"
	"sort"

	"hotel-curator/internal/domain"
)

// PrescoreWeights are the tunable parts of the heuristic. With the defaults the maximum
// attainable score is 100.
type PrescoreWeights struct {
	StarWeight    float64
	RatingWeight  float64
	PriorReviews  float64
	VolumeWeight  float64
	VolumeCap     float64
	OfferBonus    float64
	KindTierBonus float64
}

// DefaultPrescoreWeights favors guest rating over stars and review volume.
func DefaultPrescoreWeights() PrescoreWeights {
	return PrescoreWeights{
		StarWeight:    25,
		RatingWeight:  50,
		PriorReviews:  10,
		VolumeWeight:  15,
		VolumeCap:     500,
		OfferBonus:    5,
		KindTierBonus: 5,
	}
}

var kindTiers = map[string]int{
	"Castle":               1,
	"Resort":               1,
	"Boutique_and_Design":  1,
	"Villas_and_Bungalows": 1,
	"Hotel":                1,
	"Apart-hotel":          2,
	"Sanatorium":           2,
	"Mini-hotel":           2,
	"Apartment":            2,
	"Guesthouse":           2,
	"BNB":                  3,
	"Glamping":             3,
	"Cottages_and_Houses":  3,
	"Farm":                 3,
	"Hostel":               4,
	"Camping":              4,
	"Unspecified":          4,
}

const lowestKindTier = 4

// KindTier returns the property-kind priority tier, 1 being the most premium.
func KindTier(kind string) int {
	if tier, ok := kindTiers[kind]; ok {
		return tier
	}
	return lowestKindTier
}

// PreScorer ranks candidates by a cheap deterministic heuristic.
type PreScorer struct {
	weights PrescoreWeights
}

func NewPreScorer(weights PrescoreWeights) *PreScorer {
	return &PreScorer{weights: weights}
}

// Score computes the heuristic for one candidate. Missing inputs contribute zero.
func (p *PreScorer) Score(c domain.Candidate) float64 {
	w := p.weights
	score := 0.0

	if c.StarRating != nil {
		stars := clamp(*c.StarRating, 0, 5)
		score += w.StarWeight * stars / 5
	}

	v := float64(c.ReviewCount)
	if v < 0 {
		v = 0
	}
	if c.GuestRating != nil && v > 0 {
		rating := clamp(*c.GuestRating, 0, 10)
		score += w.RatingWeight * (rating / 10) * v / (v + w.PriorReviews)
	}
	if w.VolumeCap > 0 && v > 0 {
		score += w.VolumeWeight * math.Min(1, math.Log1p(v)/math.Log1p(w.VolumeCap))
	}

	if c.HasPerNightPrice() {
		score += w.OfferBonus
	}

	tier := KindTier(c.Kind)
	score += w.KindTierBonus * float64(lowestKindTier-tier) / float64(lowestKindTier-1)

	return score
}

// MaxScore is the upper bound of Score.
func (p *PreScorer) MaxScore() float64 {
	w := p.weights
	return w.StarWeight + w.RatingWeight + w.VolumeWeight + w.OfferBonus + w.KindTierBonus
}

// Normalized rescales a heuristic score into the 0-100 result range.
func (p *PreScorer) Normalized(score float64) int {
	maxScore := p.MaxScore()
	if maxScore <= 0 {
		return domain.MinScore
	}
	scaled := math.Round(score / maxScore * domain.MaxScore)
	return int(clamp(scaled, domain.MinScore, domain.MaxScore))
}

// Shortlist returns the first min(k, len) candidates by descending score, ties broken by
// ascending id. The input slice is not modified.
func (p *PreScorer) Shortlist(candidates []domain.Candidate, k int) []domain.RankedCandidate {
	ranked := make([]domain.RankedCandidate, len(candidates))
	for i, c := range candidates {
		ranked[i] = domain.RankedCandidate{Candidate: c, PreScore: p.Score(c)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].PreScore != ranked[j].PreScore {
			return ranked[i].PreScore > ranked[j].PreScore
		}
		return ranked[i].ID < ranked[j].ID
	})
	if k < 0 {
		k = 0
	}
	if k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
