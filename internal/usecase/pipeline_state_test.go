package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-curator/internal/domain"
)

func TestPipelineState_HappyPath(t *testing.T) {
	s := NewPipelineState()
	var left []domain.Stage
	s.OnTransition(func(from domain.Stage, _ time.Duration) { left = append(left, from) })

	for _, next := range []domain.Stage{
		domain.StageSearching,
		domain.StageFiltering,
		domain.StageCuratingReviews,
		domain.StageScoring,
		domain.StageDone,
	} {
		require.NoError(t, s.Transition(next))
	}

	assert.Equal(t, domain.StageDone, s.Current())
	assert.Equal(t, []domain.Stage{
		domain.StageIdle,
		domain.StageSearching,
		domain.StageFiltering,
		domain.StageCuratingReviews,
		domain.StageScoring,
	}, left)
}

func TestPipelineState_IllegalTransitions(t *testing.T) {
	s := NewPipelineState()

	assert.ErrorIs(t, s.Transition(domain.StageScoring), domain.ErrInvalidTransition)
	assert.ErrorIs(t, s.Transition(domain.StageDone), domain.ErrInvalidTransition)
	assert.Equal(t, domain.StageIdle, s.Current())
}

func TestPipelineState_FailedFromAnyNonTerminal(t *testing.T) {
	for _, upTo := range []int{0, 1, 2, 3, 4} {
		s := NewPipelineState()
		path := []domain.Stage{domain.StageSearching, domain.StageFiltering, domain.StageCuratingReviews, domain.StageScoring}
		for _, st := range path[:upTo] {
			require.NoError(t, s.Transition(st))
		}
		require.NoError(t, s.Transition(domain.StageFailed))
		assert.ErrorIs(t, s.Transition(domain.StageFailed), domain.ErrInvalidTransition, "terminal states are final")
	}
}
