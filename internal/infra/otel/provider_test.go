package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitProvider_Disabled(t *testing.T) {
	shutdown, err := InitProvider(context.Background(), Config{Enabled: false})

	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitProvider_Enabled(t *testing.T) {
	shutdown, err := InitProvider(context.Background(), Config{
		ServiceName:  "hotel-curator-test",
		OTLPEndpoint: "http://127.0.0.1:1/",
		Enabled:      true,
		SampleRatio:  1,
	})

	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "http://localhost:4318", endpoint("  "))
	assert.Equal(t, "http://collector:4318", endpoint("http://collector:4318/"))
}

func TestSampler_Clamps(t *testing.T) {
	assert.Contains(t, sampler(2).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(-1).Description(), "AlwaysOffSampler")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}
