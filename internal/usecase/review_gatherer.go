package usecase

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"hotel-curator/internal/domain"
)

const (
	defaultReviewBatchSize  = 100
	defaultContentBatchSize = 100
)

var baseReviewLanguages = []string{"ru", "en"}

// InventoryGatherer fetches content and reviews in batches, tolerating failures of single
// batches. Authentication failures and cancellation abort the whole gather.
type InventoryGatherer struct {
	client           domain.InventoryClient
	contentBatchSize int
	reviewBatchSize  int
	logger           *slog.Logger
}

func NewInventoryGatherer(client domain.InventoryClient, contentBatchSize, reviewBatchSize int, logger *slog.Logger) *InventoryGatherer {
	if contentBatchSize <= 0 {
		contentBatchSize = defaultContentBatchSize
	}
	if reviewBatchSize <= 0 {
		reviewBatchSize = defaultReviewBatchSize
	}
	return &InventoryGatherer{
		client:           client,
		contentBatchSize: contentBatchSize,
		reviewBatchSize:  reviewBatchSize,
		logger:           logger,
	}
}

// Content returns static content keyed by hid.
func (g *InventoryGatherer) Content(ctx context.Context, hids []int64, language string) (map[int64]domain.RawContent, error) {
	out := make(map[int64]domain.RawContent, len(hids))
	for _, batch := range chunkIDs(hids, g.contentBatchSize) {
		content, err := g.client.FetchContent(ctx, batch, language)
		if err != nil {
			if abortErr := g.abortError(ctx, err); abortErr != nil {
				return nil, abortErr
			}
			g.logger.WarnContext(ctx, "content batch failed, skipping",
				slog.Int("batch_size", len(batch)), slog.String("error", err.Error()))
			continue
		}
		for _, c := range content {
			out[c.HID] = c
		}
	}
	return out, nil
}

// Reviews returns raw reviews keyed by hid, fetched for the base languages plus the request
// language.
func (g *InventoryGatherer) Reviews(ctx context.Context, hids []int64, language string) (map[int64][]domain.Review, error) {
	languages := slices.Clone(baseReviewLanguages)
	if language != "" && !slices.Contains(languages, language) {
		languages = append(languages, language)
	}

	out := make(map[int64][]domain.Review, len(hids))
	for _, lang := range languages {
		for _, batch := range chunkIDs(hids, g.reviewBatchSize) {
			reviews, err := g.client.FetchReviews(ctx, batch, lang)
			if err != nil {
				if abortErr := g.abortError(ctx, err); abortErr != nil {
					return nil, abortErr
				}
				g.logger.WarnContext(ctx, "review batch failed, skipping",
					slog.String("language", lang),
					slog.Int("batch_size", len(batch)),
					slog.String("error", err.Error()))
				continue
			}
			for hid, rs := range reviews {
				for i := range rs {
					if rs[i].Language == "" {
						rs[i].Language = lang
					}
				}
				out[hid] = append(out[hid], rs...)
			}
		}
	}
	return out, nil
}

func (g *InventoryGatherer) abortError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) || domain.IsFatal(err) {
		return err
	}
	return nil
}

func chunkIDs(ids []int64, size int) [][]int64 {
	var batches [][]int64
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		batches = append(batches, ids[start:end])
	}
	return batches
}
