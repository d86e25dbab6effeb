package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"hotel-curator/internal/domain"
)

const errorBodyLimit = 500

// postJSON sends payload and returns the raw 200 body. Status codes map onto the domain
// error categories so the coordinator can tell fatal from retryable failures.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrUpstreamNetwork, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, data)
	}
	return data, nil
}

func statusError(code int, body []byte) error {
	snippet := strings.TrimSpace(string(body))
	if len(snippet) > errorBodyLimit {
		snippet = snippet[:errorBodyLimit]
	}
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d: %s", domain.ErrUpstreamAuth, code, snippet)
	case code == http.StatusTooManyRequests || code == 529:
		return fmt.Errorf("%w: HTTP %d: %s", domain.ErrUpstreamRateLimit, code, snippet)
	case code >= http.StatusInternalServerError:
		return fmt.Errorf("%w: HTTP %d: %s", domain.ErrUpstreamNetwork, code, snippet)
	default:
		return fmt.Errorf("%w: HTTP %d: %s", domain.ErrUpstream, code, snippet)
	}
}
