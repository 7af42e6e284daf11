// Package photos defines the contract for the external photo-search service
// and an HTTP implementation of it.
package photos

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"copydesk/internal/core"
)

// Service is the photo-search collaborator. Zero results is a normal outcome,
// not an error; callers own broadened-query retries.
type Service interface {
	Search(ctx context.Context, query string, perPage int) ([]core.Resource, error)
}

// HTTPClient talks to a photo-search HTTP API.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries uint64
}

// NewHTTPClient creates a photo-search client with a per-request timeout.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: 3,
	}
}

type photoPayload struct {
	ID       string   `json:"id"`
	URL      string   `json:"url"`
	ThumbURL string   `json:"thumb_url"`
	Alt      string   `json:"alt"`
	Credit   string   `json:"credit"`
	Tags     []string `json:"tags"`
}

type searchResponse struct {
	Results []photoPayload `json:"results"`
}

// Search queries the photo service. Transient failures retry with backoff;
// an empty result list is returned as-is.
func (c *HTTPClient) Search(ctx context.Context, query string, perPage int) ([]core.Resource, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if perPage <= 0 {
		perPage = 10
	}

	endpoint := fmt.Sprintf("%s/v1/photos/search?%s", c.baseURL, url.Values{
		"query":    {query},
		"per_page": {strconv.Itoa(perPage)},
	}.Encode())

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("photo service returned %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("photo service returned %d", resp.StatusCode))
		}

		body, err = io.ReadAll(resp.Body)
		return err
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries)
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, fmt.Errorf("photo search failed for %q: %w", query, err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse photo service response: %w", err)
	}

	resources := make([]core.Resource, 0, len(parsed.Results))
	for _, p := range parsed.Results {
		resources = append(resources, core.Resource{
			ID:       p.ID,
			URL:      p.URL,
			ThumbURL: p.ThumbURL,
			Alt:      p.Alt,
			Credit:   p.Credit,
			Tags:     p.Tags,
			Source:   "search",
		})
	}
	return resources, nil
}

// MockService implements Service for tests and offline runs. Results are keyed
// by query; queries with no entry return Fallback.
type MockService struct {
	Results  map[string][]core.Resource
	Fallback []core.Resource
	Err      error
	Calls    []string
}

// Search returns canned results and records the query.
func (m *MockService) Search(ctx context.Context, query string, perPage int) ([]core.Resource, error) {
	m.Calls = append(m.Calls, query)
	if m.Err != nil {
		return nil, m.Err
	}
	if res, ok := m.Results[query]; ok {
		return res, nil
	}
	return m.Fallback, nil
}
