package usecase

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-curator/internal/domain"
)

func TestScoreValidator_Valid(t *testing.T) {
	batch := scoringItems(3, 50)
	judged := judgeAll(batch, func(id string) float64 { return 72.6 })

	got, err := NewScoreValidator().Validate(batch, judged)

	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, r := range got {
		assert.Equal(t, batch[i].ID, r.CandidateID)
		assert.Equal(t, 73, r.Score)
		assert.Equal(t, domain.ScoreSourceJudged, r.Source)
		require.NotNil(t, r.SelectedOfferToken)
		assert.Equal(t, batch[i].Offers[0].MatchToken, *r.SelectedOfferToken)
	}
}

func TestScoreValidator_Repairs(t *testing.T) {
	batch := scoringItems(2, 50)
	judged := judgeAll(batch, func(string) float64 { return 60 })
	judged = append(judged, domain.JudgedScore{CandidateID: "stranger", Score: 99})
	judged[0].SelectedOfferToken = ptr("   ")
	judged[1].TopReasons = []string{" a ", "", "b", "c", "d", "e", "f"}

	got, err := NewScoreValidator().Validate(batch, judged)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].SelectedOfferToken)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, got[1].TopReasons)
}

func TestScoreValidator_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([]domain.JudgedScore) []domain.JudgedScore
	}{
		{
			name: "missing candidate",
			mutate: func(j []domain.JudgedScore) []domain.JudgedScore {
				return j[:1]
			},
		},
		{
			name: "duplicate candidate",
			mutate: func(j []domain.JudgedScore) []domain.JudgedScore {
				return append(j, j[0])
			},
		},
		{
			name: "score above range",
			mutate: func(j []domain.JudgedScore) []domain.JudgedScore {
				j[0].Score = 101
				return j
			},
		},
		{
			name: "negative score",
			mutate: func(j []domain.JudgedScore) []domain.JudgedScore {
				j[1].Score = -1
				return j
			},
		},
		{
			name: "NaN score",
			mutate: func(j []domain.JudgedScore) []domain.JudgedScore {
				j[0].Score = math.NaN()
				return j
			},
		},
		{
			name: "unknown offer token",
			mutate: func(j []domain.JudgedScore) []domain.JudgedScore {
				j[0].SelectedOfferToken = ptr("forged")
				return j
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := scoringItems(2, 50)
			judged := tt.mutate(judgeAll(batch, func(string) float64 { return 50 }))

			_, err := NewScoreValidator().Validate(batch, judged)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestScoreValidator_LowConfidence(t *testing.T) {
	batch := scoringItems(1, 50)
	batch[0].Evidence.InsufficientData = true
	judged := judgeAll(batch, func(string) float64 { return 40 })

	got, err := NewScoreValidator().Validate(batch, judged)

	require.NoError(t, err)
	assert.True(t, got[0].LowConfidence)
	assert.Contains(t, got[0].Penalties, domain.LowConfidencePenalty)
}

func TestMergeResults(t *testing.T) {
	batches := [][]domain.ScoredResult{
		{{CandidateID: "b", Score: 80}, {CandidateID: "d", Score: 10}},
		{{CandidateID: "a", Score: 80}, {CandidateID: "c", Score: 95}},
	}

	got := MergeResults(batches, 3)

	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].CandidateID)
	assert.Equal(t, "a", got[1].CandidateID)
	assert.Equal(t, "b", got[2].CandidateID)
}
