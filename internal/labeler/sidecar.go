package labeler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jonesrussell/review-triage/internal/domain"
)

const defaultTimeout = 5 * time.Second

// ErrUnavailable indicates the labeling sidecar is unreachable.
var ErrUnavailable = errors.New("labeler sidecar unavailable")

// Sidecar is an HTTP client for a labeling sidecar service.
type Sidecar struct {
	baseURL    string
	httpClient *http.Client
}

// LabelRequest is the request body for /label.
type LabelRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// LabelResponse is the response body from /label. An empty category means
// the sidecar declined to label the review.
type LabelResponse struct {
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

// NewSidecar creates a sidecar labeler client.
func NewSidecar(baseURL string, timeout time.Duration) *Sidecar {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Sidecar{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Label sends a labeling request to the sidecar.
// Returns ErrUnavailable when the service is unreachable.
func (s *Sidecar) Label(ctx context.Context, title, text string) (*domain.ExternalLabel, error) {
	reqBody, err := json.Marshal(LabelRequest{Title: title, Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/label", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("labeler sidecar returned %d", resp.StatusCode)
	}

	var result LabelResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&result); decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}

	if result.Category == "" {
		return nil, nil
	}
	return &domain.ExternalLabel{Category: result.Category, Reason: result.Reason}, nil
}

// Health checks if the sidecar is healthy.
func (s *Sidecar) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", http.NoBody)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("labeler sidecar unhealthy: %d", resp.StatusCode)
	}

	return nil
}
