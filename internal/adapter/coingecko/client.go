package coingecko

import (
	"context"
	"fmt"
	"time"

	"FolioPulse/internal/domain/models"
	"FolioPulse/internal/domain/repository"
	"FolioPulse/internal/service/ratelimit"
	xhttp "FolioPulse/pkg/http"
)

// Client is the shared REST foundation for all adapter variants. It owns the
// base URL, credential headers, and the rate-limiter check every upstream
// call must pass through.
type Client struct {
	baseURL string
	apiKey  string
	http    *xhttp.Client
	limiter *ratelimit.Limiter
	metrics repository.Metrics
}

// NewClient builds the shared upstream client.
func NewClient(baseURL, apiKey string, timeout time.Duration, limiter *ratelimit.Limiter, metrics repository.Metrics) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
		limiter: limiter,
		metrics: metrics,
	}
}

// GetJSON performs a rate-limited GET under the base URL and decodes the
// JSON response into dest. Denied admissions surface as RateLimitError so
// callers can distinguish them from upstream failures.
func (c *Client) GetJSON(ctx context.Context, source, path string, query map[string][]string, dest interface{}) error {
	allowed, retryAfter := c.limiter.Admit(source)
	if !allowed {
		c.metrics.RecordRateLimited(source)
		return &models.RateLimitError{Source: source, RetryAfter: retryAfter}
	}

	headers := map[string]string{"Accept": "application/json"}
	if c.apiKey != "" {
		headers["x-cg-demo-api-key"] = c.apiKey
	}

	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + path,
		Headers:     headers,
		QueryParams: query,
	}, dest)
	if err != nil {
		c.metrics.RecordFetch(source, "error")
		return fmt.Errorf("%w: get %s: %v", models.ErrUpstreamUnavailable, path, err)
	}
	c.metrics.RecordFetch(source, "ok")
	return nil
}

// Ping checks upstream reachability for health reporting.
func (c *Client) Ping(ctx context.Context, source string) bool {
	var out struct {
		GeckoSays string `json:"gecko_says"`
	}
	return c.GetJSON(ctx, source, "/ping", nil, &out) == nil
}
