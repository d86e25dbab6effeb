package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"hotel-curator/internal/domain"
	"hotel-curator/internal/infra/logger"
	"hotel-curator/internal/usecase"
)

const (
	defaultRecentRuns = 20
	maxRecentRuns     = 100
)

// RegionSuggester resolves free-text destinations to inventory regions.
type RegionSuggester interface {
	SuggestRegion(ctx context.Context, query, language string) ([]domain.Region, error)
}

// Handler serves the curator HTTP API.
type Handler struct {
	search    usecase.SearchStreamUsecase
	regions   RegionSuggester
	runs      domain.SearchRunReader
	heartbeat time.Duration
	logger    *slog.Logger
}

// NewHandler builds the HTTP handlers. runs may be nil when search-run auditing is disabled.
func NewHandler(
	search usecase.SearchStreamUsecase,
	regions RegionSuggester,
	runs domain.SearchRunReader,
	heartbeat time.Duration,
	logger *slog.Logger,
) *Handler {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	return &Handler{
		search:    search,
		regions:   regions,
		runs:      runs,
		heartbeat: heartbeat,
		logger:    logger,
	}
}

type errorResponse struct {
	Error     string            `json:"error"`
	ErrorType string            `json:"error_type,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// SearchStream runs a curated search and streams pipeline events as SSE.
// (POST /v1/hotels/search/stream)
func (h *Handler) SearchStream(c echo.Context) error {
	var req domain.SearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body", ErrorType: string(domain.KindValidation)})
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	ctx := c.Request().Context()
	if rid := c.Response().Header().Get(echo.HeaderXRequestID); rid != "" {
		ctx = logger.WithRequestID(ctx, rid)
	}
	ctx = logger.WithRegionID(ctx, req.RegionID)
	log := logger.FromContext(ctx, h.logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := h.search.Stream(ctx, req)

	sse := newSSEWriter(c.Response())
	sse.start()
	log.Info("search stream opened", slog.String("checkin", req.Checkin), slog.String("checkout", req.Checkout))

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	sent := 0
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				log.Info("search stream closed", slog.Int("events", sent))
				return nil
			}
			if err := sse.event(string(ev.Type), ev.Payload); err != nil {
				log.Info("client disconnected", slog.String("error", err.Error()), slog.Int("events", sent))
				return nil
			}
			sent++
		case <-ticker.C:
			if err := sse.comment("heartbeat"); err != nil {
				log.Info("client disconnected during heartbeat", slog.String("error", err.Error()))
				return nil
			}
		case <-ctx.Done():
			log.Info("search stream aborted by client", slog.Int("events", sent))
			return nil
		}
	}
}

type suggestResponse struct {
	Region  *domain.Region  `json:"region"`
	Regions []domain.Region `json:"regions"`
}

// SuggestRegions returns region candidates for a query, preferring the first city.
// (GET /v1/regions/suggest)
func (h *Handler) SuggestRegions(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("query"))
	if query == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error:     "query is required",
			ErrorType: string(domain.KindValidation),
			Fields:    map[string]string{"query": "query is required"},
		})
	}
	language := c.QueryParam("language")
	if language == "" {
		language = domain.DefaultLanguage
	}

	regions, err := h.regions.SuggestRegion(c.Request().Context(), query, language)
	if err != nil {
		h.logger.Warn("region suggest failed", slog.String("query", query), slog.String("error", err.Error()))
		return upstreamFailed(c, err)
	}

	resp := suggestResponse{Regions: regions}
	if resp.Regions == nil {
		resp.Regions = []domain.Region{}
	}
	resp.Region = PickCity(regions)
	return c.JSON(http.StatusOK, resp)
}

// PickCity returns the first region of type City, or nil.
func PickCity(regions []domain.Region) *domain.Region {
	for i := range regions {
		if strings.EqualFold(regions[i].Type, "City") {
			r := regions[i]
			return &r
		}
	}
	return nil
}

// RecentSearchRuns lists the latest audited searches.
// (GET /v1/search-runs/recent)
func (h *Handler) RecentSearchRuns(c echo.Context) error {
	if h.runs == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "search run audit is disabled"})
	}
	limit := defaultRecentRuns
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, errorResponse{
				Error:     "limit must be a positive integer",
				ErrorType: string(domain.KindValidation),
				Fields:    map[string]string{"limit": "limit must be a positive integer"},
			})
		}
		limit = min(n, maxRecentRuns)
	}

	runs, err := h.runs.Recent(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("failed to list search runs", slog.String("error", err.Error()))
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to list search runs", ErrorType: string(domain.KindInternal)})
	}
	if runs == nil {
		runs = []domain.SearchRun{}
	}
	return c.JSON(http.StatusOK, map[string]any{"runs": runs})
}

func validationFailed(c echo.Context, err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error:     verr.Error(),
			ErrorType: string(domain.KindValidation),
			Fields:    verr.Errors,
		})
	}
	return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), ErrorType: string(domain.KindValidation)})
}

func upstreamFailed(c echo.Context, err error) error {
	kind := domain.KindOf(err)
	status := http.StatusBadGateway
	switch kind {
	case domain.KindUpstreamRateLimit:
		status = http.StatusTooManyRequests
	case domain.KindUpstreamNetwork:
		status = http.StatusGatewayTimeout
	case domain.KindCancelled:
		status = 499
	case domain.KindValidation:
		status = http.StatusBadRequest
	}
	return c.JSON(status, errorResponse{Error: err.Error(), ErrorType: string(kind)})
}
