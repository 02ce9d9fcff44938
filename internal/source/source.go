// Package source fetches app store reviews from a scraper service.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonesrussell/review-triage/internal/domain"
	"github.com/jonesrussell/review-triage/internal/logger"
)

// Fetch bounds. Requests outside the range are clamped, not rejected.
const (
	minFetch = 1
	maxFetch = 100
)

const defaultTimeout = 10 * time.Second

// ErrUnavailable indicates the review source is unreachable.
var ErrUnavailable = errors.New("review source unavailable")

// ReviewSource supplies batches of reviews to triage.
type ReviewSource interface {
	Fetch(ctx context.Context, n int) ([]domain.Review, error)
}

// Client fetches reviews from an HTTP scraper service.
type Client struct {
	baseURL    string
	appID      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logger.Logger
}

// reviewPayload is one review as the scraper service returns it.
type reviewPayload struct {
	ID       string  `json:"id"`
	URL      string  `json:"url"`
	Title    string  `json:"title"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
	UserName string  `json:"userName"`
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit bounds outgoing requests. rps <= 0 disables limiting.
func WithRateLimit(rps, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = rps
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient creates a review source client for one app.
func NewClient(baseURL, appID string, log logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		appID:   appID,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(10), 10),
		logger:  log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns up to n of the newest reviews. n is clamped to [1, 100].
func (c *Client) Fetch(ctx context.Context, n int) ([]domain.Review, error) {
	if n < minFetch {
		n = minFetch
	}
	if n > maxFetch {
		n = maxFetch
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	url := fmt.Sprintf("%s/apps/%s/reviews?num=%d", c.baseURL, c.appID, n)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("review source returned %d", resp.StatusCode)
	}

	var payload struct {
		Reviews []reviewPayload `json:"reviews"`
	}
	if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}

	now := time.Now().UTC()
	reviews := make([]domain.Review, 0, len(payload.Reviews))
	for _, p := range payload.Reviews {
		reviews = append(reviews, domain.Review{
			ID:        p.ID,
			URL:       p.URL,
			Title:     p.Title,
			Text:      p.Text,
			Score:     p.Score,
			Reviewer:  p.UserName,
			FetchedAt: now,
		})
	}

	c.logger.Debug("fetched reviews",
		logger.String("app_id", c.appID),
		logger.Int("requested", n),
		logger.Int("returned", len(reviews)))
	return reviews, nil
}
