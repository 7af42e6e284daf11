// Package keywords defines the contract for the external keyword-research
// data service and an HTTP implementation of it.
package keywords

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"copydesk/internal/core"
	"copydesk/internal/logger"
)

// Service is the keyword-data collaborator. Suggest discovers new keywords
// seeded from a keyword list; Lookup validates exact keywords the caller
// already has. Both tolerate partial or zero results.
type Service interface {
	Suggest(ctx context.Context, seeds []string) ([]core.KeywordSignal, error)
	Lookup(ctx context.Context, exact []string) ([]core.KeywordSignal, error)
}

// monthlyVolumeWindow is how many recent nonzero monthly data points feed the
// fallback volume derivation when a direct figure is absent.
const monthlyVolumeWindow = 12

// HTTPClient talks to a keyword-data HTTP API.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries uint64
}

// NewHTTPClient creates a keyword-data client with a per-request timeout.
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

// signalPayload is the wire shape of one keyword record.
type signalPayload struct {
	Keyword              string          `json:"keyword"`
	SearchVolume         int             `json:"search_volume"`
	KeywordDifficulty    int             `json:"keyword_difficulty"`
	CPC                  float64         `json:"cpc"`
	SERPFeatures         []string        `json:"serp_features"`
	SearchIntent         string          `json:"search_intent"`
	RelatedQuestionCount int             `json:"related_question_count"`
	MonthlyVolumes       []monthlyVolume `json:"monthly_volumes"`
}

type monthlyVolume struct {
	Month  string `json:"month"` // YYYY-MM
	Volume int    `json:"volume"`
}

type suggestResponse struct {
	Results []signalPayload `json:"results"`
}

// Suggest requests keyword suggestions seeded from the given keywords.
func (c *HTTPClient) Suggest(ctx context.Context, seeds []string) ([]core.KeywordSignal, error) {
	return c.fetch(ctx, "/v1/keywords/suggest", seeds)
}

// Lookup requests exact-match volume/difficulty data for known keywords.
func (c *HTTPClient) Lookup(ctx context.Context, exact []string) ([]core.KeywordSignal, error) {
	return c.fetch(ctx, "/v1/keywords/lookup", exact)
}

func (c *HTTPClient) fetch(ctx context.Context, path string, kws []string) ([]core.KeywordSignal, error) {
	if len(kws) == 0 {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, path, url.Values{
		"keywords": {strings.Join(kws, ",")},
	}.Encode())

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("keyword service returned %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("keyword service returned %d", resp.StatusCode))
		}

		body, err = io.ReadAll(resp.Body)
		return err
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries)
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, fmt.Errorf("keyword data fetch failed for %s: %w", path, err)
	}

	var parsed suggestResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse keyword service response: %w", err)
	}

	signals := make([]core.KeywordSignal, 0, len(parsed.Results))
	for _, p := range parsed.Results {
		signals = append(signals, p.toSignal())
	}
	logger.Debug("keyword data fetched", "path", path, "requested", len(kws), "returned", len(signals))
	return signals, nil
}

func (p signalPayload) toSignal() core.KeywordSignal {
	volume := p.SearchVolume
	if volume <= 0 {
		volume = deriveVolume(p.MonthlyVolumes)
	}
	return core.KeywordSignal{
		Keyword:              p.Keyword,
		SearchVolume:         volume,
		KeywordDifficulty:    p.KeywordDifficulty,
		CPC:                  p.CPC,
		SERPFeatures:         p.SERPFeatures,
		SearchIntent:         parseIntent(p.SearchIntent),
		RelatedQuestionCount: p.RelatedQuestionCount,
	}
}

// deriveVolume degrades a missing direct volume figure to the average of the
// most recent 12 nonzero monthly data points.
func deriveVolume(months []monthlyVolume) int {
	if len(months) == 0 {
		return 0
	}
	sorted := make([]monthlyVolume, len(months))
	copy(sorted, months)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Month > sorted[j].Month })

	sum, n := 0, 0
	for _, m := range sorted {
		if m.Volume <= 0 {
			continue
		}
		sum += m.Volume
		n++
		if n == monthlyVolumeWindow {
			break
		}
	}
	if n == 0 {
		return 0
	}
	return sum / n
}

func parseIntent(s string) core.SearchIntent {
	switch core.SearchIntent(strings.ToLower(s)) {
	case core.IntentInformational, core.IntentCommercial, core.IntentTransactional, core.IntentNavigational:
		return core.SearchIntent(strings.ToLower(s))
	default:
		return core.IntentUnknown
	}
}
