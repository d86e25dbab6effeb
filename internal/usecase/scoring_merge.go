package usecase

import (
	"sort"

	"hotel-curator/internal/domain"
)

// SortResults orders results by score descending, then candidate id ascending.
func SortResults(results []domain.ScoredResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].CandidateID < results[j].CandidateID
	})
}

// MergeResults concatenates per-batch results, sorts them globally and keeps the first n.
func MergeResults(batches [][]domain.ScoredResult, n int) []domain.ScoredResult {
	total := 0
	for _, b := range batches {
		total += len(b)
	}
	merged := make([]domain.ScoredResult, 0, total)
	for _, b := range batches {
		merged = append(merged, b...)
	}
	SortResults(merged)
	if n >= 0 && n < len(merged) {
		merged = merged[:n]
	}
	return merged
}
