package usecase

import (
	"math"
	"sort"
	"time"

	"hotel-curator/internal/domain"
)

// ReviewPolicy configures review curation.
type ReviewPolicy struct {
	MaxAge      time.Duration
	PositiveMin float64
	NegativeMax float64
	SegmentCap  int
	HalfLife    time.Duration
}

// DefaultReviewPolicy keeps five years of reviews with a one-year half-life.
func DefaultReviewPolicy() ReviewPolicy {
	return ReviewPolicy{
		MaxAge:      5 * 365 * 24 * time.Hour,
		PositiveMin: 8,
		NegativeMax: 5,
		SegmentCap:  30,
		HalfLife:    365 * 24 * time.Hour,
	}
}

var wordScale = map[string]float64{
	"perfect": 10,
	"good":    8,
	"average": 6,
	"poor":    4,
	"bad":     2,
}

// ReviewCurator condenses raw reviews into bounded evidence.
type ReviewCurator struct {
	policy ReviewPolicy
	now    func() time.Time
}

func NewReviewCurator(policy ReviewPolicy) *ReviewCurator {
	return &ReviewCurator{policy: policy, now: time.Now}
}

// CurateAll attaches evidence to every shortlisted candidate.
func (c *ReviewCurator) CurateAll(shortlist []domain.RankedCandidate, reviews map[int64][]domain.Review) []domain.CandidateWithEvidence {
	out := make([]domain.CandidateWithEvidence, len(shortlist))
	for i, rc := range shortlist {
		out[i] = domain.CandidateWithEvidence{
			RankedCandidate: rc,
			Evidence:        c.Curate(reviews[rc.HID]),
		}
	}
	return out
}

// Curate builds evidence from one candidate's raw reviews. It never fails: a candidate with
// nothing usable gets InsufficientData.
func (c *ReviewCurator) Curate(raw []domain.Review) domain.ReviewEvidence {
	raw = dedupeReviews(raw)
	now := c.now()
	cutoff := now.Add(-c.policy.MaxAge)

	evidence := domain.ReviewEvidence{
		SegmentCounts:    map[domain.Segment]int{},
		Samples:          map[domain.Segment][]domain.Review{},
		TotalReviews:     len(raw),
		DetailedAverages: detailedAverages(raw),
	}
	evidence.LifetimeAverage, _ = LifetimeAverage(raw)

	recent := make([]domain.Review, 0, len(raw))
	for _, r := range raw {
		if c.policy.MaxAge > 0 && r.Created.Before(cutoff) {
			continue
		}
		recent = append(recent, r)
	}
	evidence.FilteredByAge = len(raw) - len(recent)

	sort.SliceStable(recent, func(i, j int) bool {
		if !recent[i].Created.Equal(recent[j].Created) {
			return recent[i].Created.After(recent[j].Created)
		}
		return recent[i].ID > recent[j].ID
	})

	for _, r := range recent {
		seg := c.segmentOf(r)
		evidence.SegmentCounts[seg]++
		if c.policy.SegmentCap <= 0 || len(evidence.Samples[seg]) < c.policy.SegmentCap {
			evidence.Samples[seg] = append(evidence.Samples[seg], r)
		}
	}

	if evidence.SampleSize() == 0 {
		evidence.InsufficientData = true
		return evidence
	}
	evidence.RecencyWeightedAverage = c.recencyWeightedAverage(evidence.Samples, now)
	return evidence
}

func (c *ReviewCurator) segmentOf(r domain.Review) domain.Segment {
	if r.Rating == nil {
		return domain.SegmentNeutral
	}
	switch {
	case *r.Rating >= c.policy.PositiveMin:
		return domain.SegmentPositive
	case *r.Rating <= c.policy.NegativeMax:
		return domain.SegmentNegative
	default:
		return domain.SegmentNeutral
	}
}

func (c *ReviewCurator) recencyWeightedAverage(samples map[domain.Segment][]domain.Review, now time.Time) *float64 {
	var sum, weights float64
	for _, seg := range []domain.Segment{domain.SegmentPositive, domain.SegmentNeutral, domain.SegmentNegative} {
		for _, r := range samples[seg] {
			if r.Rating == nil {
				continue
			}
			w := 1.0
			if c.policy.HalfLife > 0 {
				age := now.Sub(r.Created)
				if age < 0 {
					age = 0
				}
				w = math.Pow(0.5, age.Hours()/c.policy.HalfLife.Hours())
			}
			sum += w * *r.Rating
			weights += w
		}
	}
	if weights == 0 {
		return nil
	}
	avg := round1(sum / weights)
	return &avg
}

// LifetimeAverage returns the mean rating over all rated reviews and the number of reviews.
func LifetimeAverage(reviews []domain.Review) (*float64, int) {
	var sum float64
	rated := 0
	for _, r := range reviews {
		if r.Rating == nil {
			continue
		}
		sum += *r.Rating
		rated++
	}
	if rated == 0 {
		return nil, len(reviews)
	}
	avg := round1(sum / float64(rated))
	return &avg, len(reviews)
}

type categoryAcc struct {
	sum   float64
	count int
}

func (a *categoryAcc) add(v float64) {
	a.sum += v
	a.count++
}

func (a categoryAcc) avg() *float64 {
	if a.count == 0 {
		return nil
	}
	v := round1(a.sum / float64(a.count))
	return &v
}

func detailedAverages(reviews []domain.Review) domain.DetailedAverages {
	var cleanness, location, price, services, room, meal, wifi, hygiene categoryAcc
	addNumeric := func(acc *categoryAcc, v int) {
		if v > 0 {
			acc.add(float64(v))
		}
	}
	for _, r := range reviews {
		d := r.Detailed
		if d == nil {
			continue
		}
		addNumeric(&cleanness, d.Cleanness)
		addNumeric(&location, d.Location)
		addNumeric(&price, d.Price)
		addNumeric(&services, d.Services)
		addNumeric(&room, d.Room)
		addNumeric(&meal, d.Meal)
		if v, ok := wordScale[d.Wifi]; ok {
			wifi.add(v)
		}
		if v, ok := wordScale[d.Hygiene]; ok {
			hygiene.add(v)
		}
	}
	return domain.DetailedAverages{
		Cleanness: cleanness.avg(),
		Location:  location.avg(),
		Price:     price.avg(),
		Services:  services.avg(),
		Room:      room.avg(),
		Meal:      meal.avg(),
		Wifi:      wifi.avg(),
		Hygiene:   hygiene.avg(),
	}
}

func dedupeReviews(reviews []domain.Review) []domain.Review {
	if len(reviews) < 2 {
		return reviews
	}
	seen := make(map[int64]struct{}, len(reviews))
	out := make([]domain.Review, 0, len(reviews))
	for _, r := range reviews {
		if r.ID != 0 {
			if _, dup := seen[r.ID]; dup {
				continue
			}
			seen[r.ID] = struct{}{}
		}
		out = append(out, r)
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
