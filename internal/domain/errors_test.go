package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "auth", err: fmt.Errorf("etg: %w", ErrUpstreamAuth), want: KindUpstreamAuth},
		{name: "rate limit", err: ErrUpstreamRateLimit, want: KindUpstreamRateLimit},
		{name: "network", err: ErrUpstreamNetwork, want: KindUpstreamNetwork},
		{name: "validation", err: ErrValidation, want: KindValidation},
		{name: "no candidates", err: ErrNoUsableCandidates, want: KindNoUsableCandidates},
		{name: "consumer gone", err: fmt.Errorf("search: %w", context.Canceled), want: KindCancelled},
		{name: "cancelled sentinel", err: ErrCancelled, want: KindCancelled},
		{name: "unknown", err: errors.New("boom"), want: KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestPipelineError(t *testing.T) {
	cause := fmt.Errorf("etg /search: %w: HTTP 401", ErrUpstreamAuth)
	err := fmt.Errorf("wrapped: %w", NewPipelineError(StageSearching, "inventory search", cause))

	var pe *PipelineError
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, StageSearching, pe.Stage)
	assert.Equal(t, KindUpstreamAuth, KindOf(err))
	assert.ErrorIs(t, err, ErrUpstreamAuth)
	assert.True(t, IsFatal(err))
	assert.Equal(t, "inventory search: etg /search: upstream authentication failed: HTTP 401", pe.Detail())
	assert.Equal(t, "upstream_auth at searching: inventory search: etg /search: upstream authentication failed: HTTP 401", pe.Error())
}
