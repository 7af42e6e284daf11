package llm

import (
	"context"
	"fmt"
	"strings"

	"copydesk/internal/core"
	"copydesk/internal/textnorm"
)

// MockClient provides canned model output for offline runs and tests. It
// implements the same operation set as Client.
type MockClient struct {
	Topics        []core.TopicCandidate
	Volume        int
	Relevance     float64
	BodyWords     int // Words to produce per generation call
	GenerateErr   error
	EstimateErr   error
	BrainstormErr error
	ImageErr      error

	GenerateCalls []GenerationRequest
}

// NewMockClient creates a mock with a plausible canned result set.
func NewMockClient() *MockClient {
	return &MockClient{
		Topics: []core.TopicCandidate{
			{Keyword: "bankruptcy asset auction", Description: "What happens to assets after a filing"},
			{Keyword: "chapter 11 restructuring", Description: "How reorganization actually proceeds"},
			{Keyword: "creditor committee roles", Description: "Who speaks for unsecured creditors"},
		},
		Volume:    400,
		Relevance: 7,
		BodyWords: 1600,
	}
}

// BrainstormTopics returns the canned topic list.
func (m *MockClient) BrainstormTopics(ctx context.Context, category string, count int) ([]core.TopicCandidate, error) {
	if m.BrainstormErr != nil {
		return nil, m.BrainstormErr
	}
	if count > 0 && count < len(m.Topics) {
		return m.Topics[:count], nil
	}
	return m.Topics, nil
}

// EstimateDemand returns the canned estimate.
func (m *MockClient) EstimateDemand(ctx context.Context, keyword, category string) (int, float64, error) {
	if m.EstimateErr != nil {
		return 0, 0, m.EstimateErr
	}
	return m.Volume, m.Relevance, nil
}

// GenerateContent produces a synthetic article of the configured length and
// records the call.
func (m *MockClient) GenerateContent(ctx context.Context, req GenerationRequest) (core.GeneratedContent, error) {
	m.GenerateCalls = append(m.GenerateCalls, req)
	if m.GenerateErr != nil {
		return core.GeneratedContent{}, m.GenerateErr
	}
	body := strings.TrimSpace(strings.Repeat(fmt.Sprintf("Placeholder prose about %s. ", req.Keyword), wordChunks(m.BodyWords, req.Keyword)))
	return core.GeneratedContent{
		Title:       fmt.Sprintf("A Practical Look at %s", req.Keyword),
		Description: fmt.Sprintf("Everything readers ask about %s.", req.Keyword),
		Body:        body,
		Tags:        []string{req.Category, req.Keyword},
		WordCount:   textnorm.WordCount(body),
		ModelUsed:   "mock",
	}, nil
}

// GenerateImage returns a canned generated resource.
func (m *MockClient) GenerateImage(ctx context.Context, item core.ItemSpec) (core.Resource, error) {
	if m.ImageErr != nil {
		return core.Resource{}, m.ImageErr
	}
	return core.Resource{
		ID:        "gen-" + imageSlug(item.Keyword),
		URL:       "/assets/generated/" + imageSlug(item.Keyword) + ".png",
		Alt:       fmt.Sprintf("Illustration for %s", item.Title),
		Source:    "generated",
		Generated: true,
	}, nil
}

func wordChunks(targetWords int, keyword string) int {
	per := 3 + textnorm.WordCount(keyword)
	if targetWords <= 0 {
		return 1
	}
	n := targetWords / per
	if n < 1 {
		n = 1
	}
	return n
}
