package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"JUDGE_BATCH_SIZE", "JUDGE_MAX_IN_FLIGHT", "PIPELINE_MAX_ANALYZED", "REVIEW_HALF_LIFE", "CONTENT_CACHE_BACKEND"} {
		_ = os.Unsetenv(key)
	}

	cfg := Load()

	assert.Equal(t, 25, cfg.Judge.BatchSize)
	assert.Equal(t, 4, cfg.Judge.MaxInFlight)
	assert.Equal(t, 2, cfg.Judge.MaxRetries)
	assert.Equal(t, 500, cfg.Pipeline.MaxAnalyzed)
	assert.Equal(t, 100, cfg.Pipeline.ShortlistSize)
	assert.Equal(t, 10, cfg.Pipeline.SummaryTop)
	assert.Equal(t, 365*24*time.Hour, cfg.Review.HalfLife)
	assert.Equal(t, "lru", cfg.Cache.Backend)
	assert.False(t, cfg.Judge.FailWhenAllDegraded)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("JUDGE_BATCH_SIZE", "10")
	t.Setenv("JUDGE_TIMEOUT", "45")
	t.Setenv("JUDGE_FAIL_WHEN_ALL_DEGRADED", "true")
	t.Setenv("REVIEW_MAX_AGE", "720h")
	t.Setenv("PRESCORE_STAR_WEIGHT", "30.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg := Load()

	assert.Equal(t, 10, cfg.Judge.BatchSize)
	assert.Equal(t, 45*time.Second, cfg.Judge.Timeout)
	assert.True(t, cfg.Judge.FailWhenAllDegraded)
	assert.Equal(t, 720*time.Hour, cfg.Review.MaxAge)
	assert.Equal(t, 30.5, cfg.Prescore.StarWeight)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("JUDGE_BATCH_SIZE", "many")
	t.Setenv("JUDGE_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 25, cfg.Judge.BatchSize)
	assert.Equal(t, 90*time.Second, cfg.Judge.Timeout)
}

func TestGetSecret_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(path, []byte("s3cret\n"), 0o600))
	_ = os.Unsetenv("ETG_API_KEY")
	t.Setenv("ETG_API_KEY_FILE", path)

	assert.Equal(t, "s3cret", getSecret("ETG_API_KEY", "ETG_API_KEY_FILE", ""))
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		ETG:   ETGConfig{KeyID: "1", APIKey: "k"},
		Judge: JudgeConfig{Model: "claude-sonnet-4-5"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")

	cfg.Judge.Model = "qwen3:8b"
	assert.NoError(t, cfg.Validate())
}

func TestDBConfig_DSN(t *testing.T) {
	d := DBConfig{User: "u", Password: "p@ss", Host: "db", Port: "5432", Name: "hotels"}

	assert.Equal(t, "postgres://u:p%40ss@db:5432/hotels?sslmode=disable", d.DSN())
}
