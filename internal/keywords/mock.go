package keywords

import (
	"context"
	"strings"

	"copydesk/internal/core"
)

// MockService implements Service for tests and offline runs.
type MockService struct {
	SuggestResults []core.KeywordSignal
	LookupResults  []core.KeywordSignal
	SuggestErr     error
	LookupErr      error

	SuggestCalls [][]string
	LookupCalls  [][]string
}

// NewMockService creates a mock pre-loaded with a small plausible result set.
func NewMockService() *MockService {
	return &MockService{
		SuggestResults: []core.KeywordSignal{
			{Keyword: "bankruptcy asset auction", SearchVolume: 500, KeywordDifficulty: 30,
				SERPFeatures: []string{"people_also_ask", "featured_snippet", "images"},
				SearchIntent: core.IntentInformational, RelatedQuestionCount: 6},
			{Keyword: "distressed debt funds", SearchVolume: 1900, KeywordDifficulty: 55,
				SERPFeatures: []string{"people_also_ask"},
				SearchIntent: core.IntentCommercial, RelatedQuestionCount: 4},
		},
	}
}

// Suggest returns the canned suggestion results and records the call.
func (m *MockService) Suggest(ctx context.Context, seeds []string) ([]core.KeywordSignal, error) {
	m.SuggestCalls = append(m.SuggestCalls, seeds)
	if m.SuggestErr != nil {
		return nil, m.SuggestErr
	}
	return m.SuggestResults, nil
}

// Lookup returns the canned lookup results filtered to the requested keywords.
func (m *MockService) Lookup(ctx context.Context, exact []string) ([]core.KeywordSignal, error) {
	m.LookupCalls = append(m.LookupCalls, exact)
	if m.LookupErr != nil {
		return nil, m.LookupErr
	}
	want := make(map[string]bool, len(exact))
	for _, k := range exact {
		want[strings.ToLower(k)] = true
	}
	var out []core.KeywordSignal
	for _, sig := range m.LookupResults {
		if want[strings.ToLower(sig.Keyword)] {
			out = append(out, sig)
		}
	}
	return out, nil
}
