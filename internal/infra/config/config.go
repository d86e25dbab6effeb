package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	OTel     OTelConfig
	ETG      ETGConfig
	Judge    JudgeConfig
	Pipeline PipelineConfig
	Review   ReviewConfig
	Prescore PrescoreConfig
	Cache    CacheConfig
	DB       DBConfig
}

type ServerConfig struct {
	Env               string
	Port              string
	ShutdownTimeout   time.Duration
	HeartbeatInterval time.Duration
	CORSOrigins       []string
}

type LogConfig struct {
	Level string
}

type OTelConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	SampleRatio    float64
}

type ETGConfig struct {
	BaseURL          string
	KeyID            string
	APIKey           string
	Timeout          time.Duration
	MaxRetries       int
	RatePerSecond    float64
	Burst            int
	ContentBatchSize int
	ReviewBatchSize  int
	BookingBaseURL   string
}

type JudgeConfig struct {
	Model               string
	AnthropicURL        string
	AnthropicAPIKey     string
	GeminiURL           string
	GeminiAPIKey        string
	OllamaURL           string
	MaxTokens           int
	Timeout             time.Duration
	MaxInFlight         int
	MaxRetries          int
	BatchSize           int
	InitialBackoff      time.Duration
	MaxBackoff          time.Duration
	FailWhenAllDegraded bool
}

type PipelineConfig struct {
	MaxAnalyzed   int
	ShortlistSize int
	SummaryTop    int
}

type ReviewConfig struct {
	MaxAge      time.Duration
	PositiveMin float64
	NegativeMax float64
	SegmentCap  int
	HalfLife    time.Duration
}

type PrescoreConfig struct {
	StarWeight    float64
	RatingWeight  float64
	PriorReviews  float64
	VolumeWeight  float64
	VolumeCap     float64
	OfferBonus    float64
	KindTierBonus float64
}

// CacheConfig selects the content cache backend: "lru", "redis" or "none".
type CacheConfig struct {
	Backend  string
	Size     int
	TTL      time.Duration
	RedisURL string
}

type DBConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	MaxConns int
	MinConns int
}

// DSN returns the postgres connection string.
func (d DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		url.QueryEscape(d.User), url.QueryEscape(d.Password), d.Host, d.Port, d.Name)
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Env:               getEnv("ENV", "development"),
			Port:              getEnv("PORT", "9020"),
			ShutdownTimeout:   getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			HeartbeatInterval: getEnvDuration("SSE_HEARTBEAT_INTERVAL", 15*time.Second),
			CORSOrigins:       getEnvList("CORS_ALLOWED_ORIGINS", nil),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		OTel: OTelConfig{
			Enabled:        getEnvBool("OTEL_ENABLED", false),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "hotel-curator"),
			ServiceVersion: getEnv("SERVICE_VERSION", "0.0.0"),
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
			SampleRatio:    getEnvFloat("OTEL_TRACE_SAMPLE_RATIO", 0.1),
		},
		ETG: ETGConfig{
			BaseURL:          getEnv("ETG_BASE_URL", "https://api.worldota.net"),
			KeyID:            getSecret("ETG_KEY_ID", "ETG_KEY_ID_FILE", ""),
			APIKey:           getSecret("ETG_API_KEY", "ETG_API_KEY_FILE", ""),
			Timeout:          getEnvDuration("ETG_TIMEOUT", 30*time.Second),
			MaxRetries:       getEnvInt("ETG_MAX_RETRIES", 3),
			RatePerSecond:    getEnvFloat("ETG_RATE_PER_SECOND", 5),
			Burst:            getEnvInt("ETG_RATE_BURST", 5),
			ContentBatchSize: getEnvInt("ETG_CONTENT_BATCH_SIZE", 100),
			ReviewBatchSize:  getEnvInt("ETG_REVIEW_BATCH_SIZE", 100),
			BookingBaseURL:   getEnv("BOOKING_BASE_URL", "https://ostrovok.ru/hotel"),
		},
		Judge: JudgeConfig{
			Model:               getEnv("JUDGE_MODEL", "claude-sonnet-4-5"),
			AnthropicURL:        getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
			AnthropicAPIKey:     getSecret("ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY_FILE", ""),
			GeminiURL:           getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			GeminiAPIKey:        getSecret("GEMINI_API_KEY", "GEMINI_API_KEY_FILE", ""),
			OllamaURL:           getEnvWithAlt("OLLAMA_URL", "AUGUR_EXTERNAL_URL", "http://localhost:11434"),
			MaxTokens:           getEnvInt("JUDGE_MAX_TOKENS", 8192),
			Timeout:             getEnvDuration("JUDGE_TIMEOUT", 90*time.Second),
			MaxInFlight:         getEnvInt("JUDGE_MAX_IN_FLIGHT", 4),
			MaxRetries:          getEnvInt("JUDGE_MAX_RETRIES", 2),
			BatchSize:           getEnvInt("JUDGE_BATCH_SIZE", 25),
			InitialBackoff:      getEnvDuration("JUDGE_INITIAL_BACKOFF", time.Second),
			MaxBackoff:          getEnvDuration("JUDGE_MAX_BACKOFF", 10*time.Second),
			FailWhenAllDegraded: getEnvBool("JUDGE_FAIL_WHEN_ALL_DEGRADED", false),
		},
		Pipeline: PipelineConfig{
			MaxAnalyzed:   getEnvInt("PIPELINE_MAX_ANALYZED", 500),
			ShortlistSize: getEnvInt("PIPELINE_SHORTLIST_SIZE", 100),
			SummaryTop:    getEnvInt("PIPELINE_SUMMARY_TOP", 10),
		},
		Review: ReviewConfig{
			MaxAge:      getEnvDuration("REVIEW_MAX_AGE", 5*365*24*time.Hour),
			PositiveMin: getEnvFloat("REVIEW_POSITIVE_MIN", 8),
			NegativeMax: getEnvFloat("REVIEW_NEGATIVE_MAX", 5),
			SegmentCap:  getEnvInt("REVIEW_SEGMENT_CAP", 30),
			HalfLife:    getEnvDuration("REVIEW_HALF_LIFE", 365*24*time.Hour),
		},
		Prescore: PrescoreConfig{
			StarWeight:    getEnvFloat("PRESCORE_STAR_WEIGHT", 25),
			RatingWeight:  getEnvFloat("PRESCORE_RATING_WEIGHT", 50),
			PriorReviews:  getEnvFloat("PRESCORE_PRIOR_REVIEWS", 10),
			VolumeWeight:  getEnvFloat("PRESCORE_VOLUME_WEIGHT", 15),
			VolumeCap:     getEnvFloat("PRESCORE_VOLUME_CAP", 500),
			OfferBonus:    getEnvFloat("PRESCORE_OFFER_BONUS", 5),
			KindTierBonus: getEnvFloat("PRESCORE_KIND_TIER_BONUS", 5),
		},
		Cache: CacheConfig{
			Backend:  getEnv("CONTENT_CACHE_BACKEND", "lru"),
			Size:     getEnvInt("CONTENT_CACHE_SIZE", 20000),
			TTL:      getEnvDuration("CONTENT_CACHE_TTL", 24*time.Hour),
			RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		},
		DB: DBConfig{
			Enabled:  getEnvBool("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "curator"),
			Password: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "curator"),
			Name:     getEnv("DB_NAME", "hotel_curator"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 10),
			MinConns: getEnvInt("DB_MIN_CONNS", 2),
		},
	}
}

// Validate reports settings without which the service cannot serve searches.
func (c *Config) Validate() error {
	var missing []string
	if c.ETG.KeyID == "" {
		missing = append(missing, "ETG_KEY_ID")
	}
	if c.ETG.APIKey == "" {
		missing = append(missing, "ETG_API_KEY")
	}
	switch {
	case strings.HasPrefix(c.Judge.Model, "claude"):
		if c.Judge.AnthropicAPIKey == "" {
			missing = append(missing, "ANTHROPIC_API_KEY")
		}
	case strings.HasPrefix(c.Judge.Model, "gemini"):
		if c.Judge.GeminiAPIKey == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		if content, err := os.ReadFile(filePath); err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvWithAlt(key, altKey, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	if value, ok := os.LookupEnv(altKey); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
