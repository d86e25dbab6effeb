package di

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/semaphore"

	"hotel-curator/internal/adapter/cache"
	"hotel-curator/internal/adapter/etg"
	"hotel-curator/internal/adapter/judge"
	"hotel-curator/internal/adapter/repository"
	"hotel-curator/internal/adapter/rest"
	"hotel-curator/internal/domain"
	"hotel-curator/internal/infra"
	"hotel-curator/internal/infra/config"
	"hotel-curator/internal/infra/httpclient"
	"hotel-curator/internal/usecase"
)

// ApplicationComponents holds the wired service graph.
type ApplicationComponents struct {
	Inventory    *etg.Client
	Judge        *judge.Judge
	SearchStream usecase.SearchStreamUsecase
	// SearchRuns is nil when DB_ENABLED is false.
	SearchRuns *repository.SearchRunRepository
	Handler    *rest.Handler
	Health     *rest.HealthHandler

	pool  *pgxpool.Pool
	redis *redis.Client
}

// NewApplicationComponents builds every adapter and usecase from cfg.
func NewApplicationComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*ApplicationComponents, error) {
	app := &ApplicationComponents{}
	deps := map[string]rest.Pinger{}

	contentCache, err := app.newContentCache(cfg.Cache, logger)
	if err != nil {
		return nil, err
	}
	if app.redis != nil {
		deps["redis"] = contentCache.(*cache.RedisContentCache)
	}

	app.Inventory = etg.NewClient(etg.Options{
		BaseURL:       cfg.ETG.BaseURL,
		KeyID:         cfg.ETG.KeyID,
		APIKey:        cfg.ETG.APIKey,
		MaxRetries:    cfg.ETG.MaxRetries,
		RatePerSecond: cfg.ETG.RatePerSecond,
		Burst:         cfg.ETG.Burst,
	}, httpclient.NewPooledClient(cfg.ETG.Timeout), contentCache, logger)

	app.Judge, err = judge.New(judge.Config{
		Model:           cfg.Judge.Model,
		MaxTokens:       cfg.Judge.MaxTokens,
		AnthropicURL:    cfg.Judge.AnthropicURL,
		AnthropicAPIKey: cfg.Judge.AnthropicAPIKey,
		GeminiURL:       cfg.Judge.GeminiURL,
		GeminiAPIKey:    cfg.Judge.GeminiAPIKey,
		OllamaURL:       cfg.Judge.OllamaURL,
	}, httpclient.NewPooledClient(cfg.Judge.Timeout), logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("judge: %w", err)
	}

	var runs domain.SearchRunRepository
	var runReader domain.SearchRunReader
	if cfg.DB.Enabled {
		app.pool, err = infra.NewPostgresDB(ctx, cfg.DB.DSN(), infra.PoolConfig{MaxConns: cfg.DB.MaxConns, MinConns: cfg.DB.MinConns})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("postgres: %w", err)
		}
		app.SearchRuns = repository.NewSearchRunRepository(app.pool)
		runs, runReader = app.SearchRuns, app.SearchRuns
		deps["postgres"] = app.pool
	}

	prescorer := usecase.NewPreScorer(PrescoreWeights(cfg.Prescore))
	app.SearchStream = usecase.NewSearchStreamUsecase(
		app.Inventory,
		usecase.NewInventoryGatherer(app.Inventory, cfg.ETG.ContentBatchSize, cfg.ETG.ReviewBatchSize, logger),
		usecase.NewCandidateNormalizer(logger),
		prescorer,
		usecase.NewReviewCurator(ReviewPolicy(cfg.Review)),
		usecase.NewScoringCoordinator(app.Judge, semaphore.NewWeighted(int64(max(cfg.Judge.MaxInFlight, 1))), prescorer, ScoringPolicy(cfg.Judge), logger),
		runs,
		usecase.NewBookingURLBuilder(cfg.ETG.BookingBaseURL),
		usecase.PipelinePolicy{
			MaxAnalyzed:   cfg.Pipeline.MaxAnalyzed,
			ShortlistSize: cfg.Pipeline.ShortlistSize,
			SummaryTop:    cfg.Pipeline.SummaryTop,
		},
		logger,
	)

	app.Handler = rest.NewHandler(app.SearchStream, app.Inventory, runReader, cfg.Server.HeartbeatInterval, logger)
	app.Health = rest.NewHealthHandler(deps)

	logger.Info("application components ready",
		slog.String("judge_provider", app.Judge.Name()),
		slog.String("judge_model", app.Judge.Model()),
		slog.String("cache_backend", cfg.Cache.Backend),
		slog.Bool("search_run_audit", cfg.DB.Enabled))
	return app, nil
}

func (a *ApplicationComponents) newContentCache(cfg config.CacheConfig, logger *slog.Logger) (domain.ContentCache, error) {
	switch strings.ToLower(cfg.Backend) {
	case "none", "":
		return nil, nil
	case "redis":
		client, err := cache.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		a.redis = client
		return cache.NewRedisContentCache(client, cfg.TTL, logger), nil
	case "lru":
		return cache.NewLRUContentCache(cfg.Size, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Close releases pooled connections.
func (a *ApplicationComponents) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

func PrescoreWeights(c config.PrescoreConfig) usecase.PrescoreWeights {
	return usecase.PrescoreWeights{
		StarWeight:    c.StarWeight,
		RatingWeight:  c.RatingWeight,
		PriorReviews:  c.PriorReviews,
		VolumeWeight:  c.VolumeWeight,
		VolumeCap:     c.VolumeCap,
		OfferBonus:    c.OfferBonus,
		KindTierBonus: c.KindTierBonus,
	}
}

func ReviewPolicy(c config.ReviewConfig) usecase.ReviewPolicy {
	return usecase.ReviewPolicy{
		MaxAge:      c.MaxAge,
		PositiveMin: c.PositiveMin,
		NegativeMax: c.NegativeMax,
		SegmentCap:  c.SegmentCap,
		HalfLife:    c.HalfLife,
	}
}

func ScoringPolicy(c config.JudgeConfig) usecase.ScoringPolicy {
	return usecase.ScoringPolicy{
		BatchSize:           c.BatchSize,
		MaxRetries:          c.MaxRetries,
		CallTimeout:         c.Timeout,
		InitialBackoff:      c.InitialBackoff,
		MaxBackoff:          c.MaxBackoff,
		FailWhenAllDegraded: c.FailWhenAllDegraded,
	}
}
