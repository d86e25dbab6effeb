package etg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"hotel-curator/internal/domain"
	"hotel-curator/internal/infra/metrics"
)

const (
	DefaultBaseURL = "https://api.worldota.net"

	errorBodyLimit = 500
	retryJitter    = 0.2
)

// Options configures the inventory client.
type Options struct {
	BaseURL        string
	KeyID          string
	APIKey         string
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	RatePerSecond  float64
	Burst          int
}

// Client talks to the ETG B2B and content APIs.
type Client struct {
	baseURL        string
	keyID          string
	apiKey         string
	http           *http.Client
	limiter        *rate.Limiter
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	cache          domain.ContentCache
	logger         *slog.Logger
}

// NewClient builds a client. cache may be nil.
func NewClient(opts Options, httpClient *http.Client, cache domain.ContentCache, logger *slog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 500 * time.Millisecond
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = 8 * time.Second
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	return &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		keyID:          opts.KeyID,
		apiKey:         opts.APIKey,
		http:           httpClient,
		limiter:        rate.NewLimiter(limit, opts.Burst),
		maxRetries:     max(opts.MaxRetries, 0),
		initialBackoff: opts.InitialBackoff,
		maxBackoff:     opts.MaxBackoff,
		cache:          cache,
		logger:         logger,
	}
}

var _ domain.InventoryClient = (*Client)(nil)

func (c *Client) Search(ctx context.Context, criteria domain.SearchCriteria) (*domain.SearchResult, error) {
	req := searchRequest{
		RegionID:    criteria.RegionID,
		Checkin:     criteria.Checkin.Format(domain.DateLayout),
		Checkout:    criteria.Checkout.Format(domain.DateLayout),
		Residency:   criteria.Residency,
		Currency:    criteria.Currency,
		Language:    criteria.Language,
		HotelsLimit: criteria.HotelsLimit,
	}
	for _, g := range criteria.Guests {
		children := g.Children
		if children == nil {
			children = []int{}
		}
		req.Guests = append(req.Guests, guestRoom{Adults: g.Adults, Children: children})
	}

	var data *searchData
	if err := c.call(ctx, searchRegionPath, req, &data); err != nil {
		return nil, err
	}
	result := &domain.SearchResult{}
	if data == nil {
		return result, nil
	}
	result.TotalHotels = data.TotalHotels
	result.Hotels = make([]domain.RawListing, 0, len(data.Hotels))
	for _, h := range data.Hotels {
		result.Hotels = append(result.Hotels, toListing(h))
	}
	return result, nil
}

// FetchContent serves what it can from the cache and fetches the rest in one call.
func (c *Client) FetchContent(ctx context.Context, hids []int64, language string) ([]domain.RawContent, error) {
	out := make([]domain.RawContent, 0, len(hids))
	missing := hids
	if c.cache != nil {
		missing = make([]int64, 0, len(hids))
		for _, hid := range hids {
			if content, ok := c.cache.Get(ctx, hid, language); ok {
				out = append(out, content)
				continue
			}
			missing = append(missing, hid)
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	var data []contentDTO
	if err := c.call(ctx, contentPath, idsRequest{HIDs: missing, Language: language}, &data); err != nil {
		return nil, err
	}
	for _, dto := range data {
		content := toContent(dto)
		if c.cache != nil {
			c.cache.Set(ctx, language, content)
		}
		out = append(out, content)
	}
	return out, nil
}

func (c *Client) FetchReviews(ctx context.Context, hids []int64, language string) (map[int64][]domain.Review, error) {
	var data []hotelReviewsDTO
	if err := c.call(ctx, reviewsPath, idsRequest{HIDs: hids, Language: language}, &data); err != nil {
		return nil, err
	}
	out := make(map[int64][]domain.Review, len(data))
	skipped := 0
	for _, hotel := range data {
		for _, dto := range hotel.Reviews {
			review, ok := toReview(dto)
			if !ok {
				skipped++
				continue
			}
			review.Language = language
			out[hotel.HID] = append(out[hotel.HID], review)
		}
	}
	if skipped > 0 {
		c.logger.DebugContext(ctx, "reviews with unparsable dates skipped",
			slog.Int("count", skipped), slog.String("language", language))
	}
	return out, nil
}

func (c *Client) SuggestRegion(ctx context.Context, query, language string) ([]domain.Region, error) {
	var data *suggestData
	if err := c.call(ctx, multicompletePath, suggestRequest{Query: query, Language: language}, &data); err != nil {
		return nil, err
	}
	if data == nil {
		return []domain.Region{}, nil
	}
	return data.Regions, nil
}

// call posts payload to path, retrying rate-limited and network failures with backoff.
func (c *Client) call(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("etg %s: marshal request: %w", path, err)
	}

	bo := c.newBackoff()
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("etg %s: rate limiter: %w", path, err)
		}
		err = c.post(ctx, path, body, out)
		if err == nil {
			return nil
		}
		if attempt >= c.maxRetries || !domain.IsRetryable(err) || ctx.Err() != nil {
			return err
		}
		wait := bo.NextBackOff()
		var rl *rateLimitedError
		if errors.As(err, &rl) && rl.retryAfter > wait {
			wait = min(rl.retryAfter, c.maxBackoff)
		}
		c.logger.WarnContext(ctx, "etg call failed, retrying",
			slog.String("endpoint", path),
			slog.Int("attempt", attempt+1),
			slog.Duration("wait", wait),
			slog.String("error", err.Error()))
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) post(ctx context.Context, path string, body []byte, out any) (err error) {
	start := time.Now()
	status := "ok"
	defer func() {
		if err != nil {
			status = string(domain.KindOf(err))
		}
		metrics.RecordInventoryCall(path, status, time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("etg %s: create request: %w", path, err)
	}
	req.SetBasicAuth(c.keyID, c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("etg %s: %w", path, ctxErr)
		}
		return fmt.Errorf("etg %s: %w: %v", path, domain.ErrUpstreamNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("etg %s: %w: HTTP %d", path, domain.ErrUpstreamAuth, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return &rateLimitedError{path: path, retryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode >= http.StatusBadRequest:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return fmt.Errorf("etg %s: %w: HTTP %d: %s", path, domain.ErrUpstream, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("etg %s: %w", path, ctxErr)
		}
		return fmt.Errorf("etg %s: %w: invalid JSON response: %v", path, domain.ErrUpstream, err)
	}
	if env.failed() {
		return fmt.Errorf("etg %s: %w: API error: %s", path, domain.ErrUpstream, string(env.Error))
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("etg %s: %w: unexpected data shape: %v", path, domain.ErrUpstream, err)
	}
	return nil
}

// newBackoff returns the retry schedule for one call. Retry-After from a 429 may lengthen a wait.
func (c *Client) newBackoff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialBackoff
	bo.MaxInterval = c.maxBackoff
	bo.Multiplier = 2
	bo.RandomizationFactor = retryJitter
	return bo
}

type rateLimitedError struct {
	path       string
	retryAfter time.Duration
}

func (e *rateLimitedError) Error() string {
	return fmt.Sprintf("etg %s: %s: HTTP 429", e.path, domain.ErrUpstreamRateLimit)
}

func (e *rateLimitedError) Unwrap() error {
	return domain.ErrUpstreamRateLimit
}

func parseRetryAfter(v string) time.Duration {
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
