package usecase

import (
	"hash/fnv"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"hotel-curator/internal/domain"
)

const unspecifiedKind = "Unspecified"

// PriceWindow bounds the per-night price. Nil bounds are open.
type PriceWindow struct {
	Min *float64
	Max *float64
}

// IsOpen reports whether neither bound is set.
func (w PriceWindow) IsOpen() bool {
	return w.Min == nil && w.Max == nil
}

// Contains reports whether a per-night price satisfies the window. An unknown price never
// satisfies a closed window.
func (w PriceWindow) Contains(perNight *float64) bool {
	if w.IsOpen() {
		return true
	}
	if perNight == nil {
		return false
	}
	if w.Min != nil && *perNight < *w.Min {
		return false
	}
	if w.Max != nil && *perNight > *w.Max {
		return false
	}
	return true
}

// CandidateNormalizer converts raw inventory records into candidates.
type CandidateNormalizer struct {
	logger *slog.Logger
}

func NewCandidateNormalizer(logger *slog.Logger) *CandidateNormalizer {
	return &CandidateNormalizer{logger: logger}
}

// Normalize joins listings with their content and drops records that cannot be priced.
// The window applies to the cheapest rate of each listing and then to every offer.
func (n *CandidateNormalizer) Normalize(listings []domain.RawListing, content map[int64]domain.RawContent, window PriceWindow) []domain.Candidate {
	candidates := make([]domain.Candidate, 0, len(listings))
	droppedPrice, droppedClosed, droppedWindow := 0, 0, 0

	for _, listing := range listings {
		c, hasContent := content[listing.HID]
		if hasContent && c.Closed {
			droppedClosed++
			continue
		}

		offers := make([]domain.Offer, 0, len(listing.Rates))
		for _, rate := range listing.Rates {
			if offer, ok := normalizeRate(rate); ok {
				offers = append(offers, offer)
			}
		}
		if len(offers) == 0 {
			droppedPrice++
			continue
		}
		sort.SliceStable(offers, func(i, j int) bool {
			return offers[i].Price.Amount < offers[j].Price.Amount
		})

		if !window.IsOpen() {
			if !window.Contains(offers[0].PricePerNight) {
				droppedWindow++
				continue
			}
			kept := offers[:0]
			for _, o := range offers {
				if window.Contains(o.PricePerNight) {
					kept = append(kept, o)
				}
			}
			offers = kept
		}

		candidates = append(candidates, buildCandidate(listing, c, hasContent, offers))
	}

	n.logger.Debug("normalized candidates",
		slog.Int("input", len(listings)),
		slog.Int("output", len(candidates)),
		slog.Int("dropped_no_price", droppedPrice),
		slog.Int("dropped_closed", droppedClosed),
		slog.Int("dropped_price_window", droppedWindow))

	return candidates
}

func buildCandidate(listing domain.RawListing, c domain.RawContent, hasContent bool, offers []domain.Offer) domain.Candidate {
	id := listing.ID
	if id == "" {
		id = strconv.FormatInt(listing.HID, 10)
	}
	cand := domain.Candidate{
		ID:     id,
		HID:    listing.HID,
		Name:   id,
		Kind:   unspecifiedKind,
		Offers: offers,
	}
	if !hasContent {
		return cand
	}
	if c.Name != "" {
		cand.Name = c.Name
	}
	if c.Kind != "" {
		cand.Kind = c.Kind
	}
	if c.StarRating > 0 {
		stars := float64(c.StarRating)
		cand.StarRating = &stars
	}
	cand.GuestRating = c.Rating
	cand.ReviewCount = c.ReviewCount
	cand.Address = c.Address
	cand.City = c.City
	cand.CountryCode = c.CountryCode
	cand.Latitude = c.Latitude
	cand.Longitude = c.Longitude
	cand.Amenities = c.Amenities
	cand.Facts = c.Facts
	return cand
}

func normalizeRate(rate domain.RawRate) (domain.Offer, bool) {
	total, err := strconv.ParseFloat(strings.TrimSpace(rate.ShowAmount), 64)
	if err != nil || total <= 0 {
		return domain.Offer{}, false
	}
	offer := domain.Offer{
		Price:         domain.Money{Amount: total, Currency: rate.ShowCurrency},
		PricePerNight: averageDailyPrice(rate.DailyPrices),
		Adults:        rate.Capacity,
		RoomName:      rate.RoomName,
		Meal:          rate.Meal,
		HasBreakfast:  rate.HasBreakfast,
		MatchToken:    rate.MatchHash,
	}
	if rate.FreeCancellationBefore != "" {
		if t, err := time.Parse(time.RFC3339, rate.FreeCancellationBefore); err == nil {
			offer.FreeCancellationBefore = &t
		} else if t, err := time.Parse("2006-01-02T15:04:05", rate.FreeCancellationBefore); err == nil {
			offer.FreeCancellationBefore = &t
		}
	}
	return offer, true
}

func averageDailyPrice(daily []string) *float64 {
	sum, count := 0.0, 0
	for _, p := range daily {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || v <= 0 {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return nil
	}
	avg := sum / float64(count)
	return &avg
}

// SampleListings caps the number of listings analyzed. The sample is ordered by a hash of
// seed and hid, so the same seed always selects the same listings regardless of input order.
func SampleListings(listings []domain.RawListing, limit int, seed string) []domain.RawListing {
	if limit <= 0 || len(listings) <= limit {
		return listings
	}
	type keyed struct {
		key     uint64
		listing domain.RawListing
	}
	keys := make([]keyed, len(listings))
	for i, l := range listings {
		h := fnv.New64a()
		_, _ = h.Write([]byte(seed))
		_, _ = h.Write([]byte(strconv.FormatInt(l.HID, 10)))
		keys[i] = keyed{key: h.Sum64(), listing: l}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].key != keys[j].key {
			return keys[i].key < keys[j].key
		}
		return keys[i].listing.HID < keys[j].listing.HID
	})
	sampled := make([]domain.RawListing, limit)
	for i := range sampled {
		sampled[i] = keys[i].listing
	}
	return sampled
}

// ApplyReviewAggregates fills guest rating and review count from raw reviews for candidates
// whose content did not carry them.
func ApplyReviewAggregates(candidates []domain.Candidate, reviews map[int64][]domain.Review) {
	for i := range candidates {
		c := &candidates[i]
		if c.GuestRating != nil && c.ReviewCount > 0 {
			continue
		}
		avg, count := LifetimeAverage(reviews[c.HID])
		if c.GuestRating == nil {
			c.GuestRating = avg
		}
		if c.ReviewCount == 0 {
			c.ReviewCount = count
		}
	}
}
