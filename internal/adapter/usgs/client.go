package usgs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/quake-dashboard/internal/domain"
	"github.com/couchcryptid/quake-dashboard/internal/observability"
	"golang.org/x/time/rate"
)

// ErrUnexpectedStatus is returned when a feed responds with anything but 200 OK.
var ErrUnexpectedStatus = errors.New("unexpected feed status")

// burst lets one full snapshot load (four feeds) through without waiting.
const burst = 4

// Client fetches and parses USGS summary CSV feeds.
// It implements feed.Fetcher.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a feed client. A zero timeout keeps the transport default;
// a zero requestsPerSecond disables outbound throttling.
func NewClient(timeout time.Duration, requestsPerSecond float64, metrics *observability.Metrics, logger *slog.Logger) *Client {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
		metrics:    metrics,
		logger:     logger,
	}
}

// Fetch downloads one feed and returns its earthquakes as an EventTable.
func (c *Client) Fetch(ctx context.Context, src domain.FeedSource) (domain.EventTable, error) {
	start := time.Now()
	defer func() {
		c.metrics.FeedFetchDuration.WithLabelValues(src.Label).Observe(time.Since(start).Seconds())
	}()

	body, err := c.download(ctx, src)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	table, err := domain.ParseFeed(body)
	if err != nil {
		c.metrics.FeedFetches.WithLabelValues(src.Label, "parse").Inc()
		return nil, fmt.Errorf("fetch %s: %w", src.Label, err)
	}

	c.metrics.FeedFetches.WithLabelValues(src.Label, "success").Inc()
	c.logger.Debug("feed fetched", "window", src.Label, "earthquakes", len(table))
	return table, nil
}

// FetchRaw downloads one feed and returns the CSV body unparsed.
func (c *Client) FetchRaw(ctx context.Context, src domain.FeedSource) ([]byte, error) {
	body, err := c.download(ctx, src)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		c.metrics.FeedFetches.WithLabelValues(src.Label, "transport").Inc()
		return nil, fmt.Errorf("fetch %s: read body: %w", src.Label, err)
	}
	c.metrics.FeedFetches.WithLabelValues(src.Label, "success").Inc()
	return data, nil
}

// download performs the rate-limited GET. The caller closes the body.
func (c *Client) download(ctx context.Context, src domain.FeedSource) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		c.metrics.FeedFetches.WithLabelValues(src.Label, "transport").Inc()
		return nil, fmt.Errorf("fetch %s: wait for rate limiter: %w", src.Label, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: create request: %w", src.Label, err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.FeedFetches.WithLabelValues(src.Label, "transport").Inc()
		return nil, fmt.Errorf("fetch %s: %w", src.Label, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.metrics.FeedFetches.WithLabelValues(src.Label, "status").Inc()
		c.logger.Warn("feed returned non-OK status",
			"window", src.Label,
			"url", src.URL,
			"status", resp.StatusCode,
		)
		return nil, fmt.Errorf("fetch %s: %w: status %d: %s", src.Label, ErrUnexpectedStatus, resp.StatusCode, body)
	}
	return resp.Body, nil
}
