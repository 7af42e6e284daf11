// Package llm wraps the Gemini API for the three model-backed operations the
// pipeline needs: topic brainstorming, demand estimation for keywords the
// research service has no data on, and long-form content generation.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"copydesk/internal/core"
	"copydesk/internal/textnorm"
)

const (
	// DefaultModel is the default Gemini model for brainstorming and estimation.
	DefaultModel = "gemini-flash-lite-latest"

	brainstormPromptTemplate = `You are a content strategist for a website about %s.
Propose %d article topics the site should cover next. For each, give a target
search keyword (2-6 words, the phrase a reader would actually type) and a one
sentence description of the angle.

Respond with a JSON array only, no prose:
[{"keyword": "...", "description": "..."}]`

	estimatePromptTemplate = `Estimate search demand for the keyword %q in the context of a website about %s.

Respond with JSON only:
{"estimated_monthly_volume": <integer>, "relevance": <0-10 number, how relevant this keyword is to the site>}`

	generatePromptTemplate = `Write a complete article targeting the search keyword %q for a website about %s.
Angle: %s

Requirements:
- At least %d words in the body.
- A title under 70 characters containing the keyword.
- A meta description under 160 characters.
- 3-6 topical tags.
%s
Respond with JSON only:
{"title": "...", "description": "...", "body": "...", "tags": ["..."]}`
)

// Client is a Gemini-backed implementation of the pipeline's model operations.
type Client struct {
	modelName       string
	generationModel string
	temperature     float32
	gClient         *genai.Client
}

// NewClient creates an LLM client. generationModel may be empty, in which case
// modelName is used for content generation too.
func NewClient(ctx context.Context, apiKey, modelName, generationModel string, temperature float32) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required: set GEMINI_API_KEY or gemini.api_key in config")
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	if generationModel == "" {
		generationModel = modelName
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		modelName:       modelName,
		generationModel: generationModel,
		temperature:     temperature,
		gClient:         gClient,
	}, nil
}

// generateContent wraps one GenerateContent call against a specific model.
func (c *Client) generateContent(ctx context.Context, modelName, prompt string) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	resp, err := c.gClient.Models.GenerateContent(ctx, modelName, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// BrainstormTopics asks the model for candidate article topics in a category.
// The output is heuristic only; nothing here implies real search demand.
func (c *Client) BrainstormTopics(ctx context.Context, category string, count int) ([]core.TopicCandidate, error) {
	if count <= 0 {
		count = 10
	}
	raw, err := c.generateContent(ctx, c.modelName, fmt.Sprintf(brainstormPromptTemplate, category, count))
	if err != nil {
		return nil, fmt.Errorf("brainstorm failed for category %q: %w", category, err)
	}

	var candidates []core.TopicCandidate
	if err := json.Unmarshal(extractJSON(raw), &candidates); err != nil {
		return nil, fmt.Errorf("failed to parse brainstorm response: %w", err)
	}

	out := candidates[:0]
	for _, cand := range candidates {
		cand.Keyword = strings.ToLower(strings.TrimSpace(cand.Keyword))
		if cand.Keyword != "" {
			out = append(out, cand)
		}
	}
	return out, nil
}

// EstimateDemand produces an estimated monthly volume and a 0-10 relevance
// score for a keyword the research service had no data on. Estimates are
// tagged as such downstream and discounted during scoring.
func (c *Client) EstimateDemand(ctx context.Context, keyword, category string) (int, float64, error) {
	raw, err := c.generateContent(ctx, c.modelName, fmt.Sprintf(estimatePromptTemplate, keyword, category))
	if err != nil {
		return 0, 0, fmt.Errorf("demand estimation failed for %q: %w", keyword, err)
	}

	var parsed struct {
		EstimatedMonthlyVolume int     `json:"estimated_monthly_volume"`
		Relevance              float64 `json:"relevance"`
	}
	if err := json.Unmarshal(extractJSON(raw), &parsed); err != nil {
		return 0, 0, fmt.Errorf("failed to parse demand estimate for %q: %w", keyword, err)
	}
	if parsed.EstimatedMonthlyVolume < 0 {
		parsed.EstimatedMonthlyVolume = 0
	}
	if parsed.Relevance < 0 {
		parsed.Relevance = 0
	} else if parsed.Relevance > 10 {
		parsed.Relevance = 10
	}
	return parsed.EstimatedMonthlyVolume, parsed.Relevance, nil
}

// GenerationRequest is one content-generation call.
type GenerationRequest struct {
	Keyword     string
	Category    string
	Description string
	MinWords    int
	Feedback    string // Admonition about the previous attempt, empty on attempt 1
}

// GenerateContent runs one generation call and returns the structured result.
// The response is non-deterministic; callers own validation and retries.
func (c *Client) GenerateContent(ctx context.Context, req GenerationRequest) (core.GeneratedContent, error) {
	feedback := ""
	if req.Feedback != "" {
		feedback = "- " + req.Feedback + "\n"
	}
	prompt := fmt.Sprintf(generatePromptTemplate,
		req.Keyword, req.Category, req.Description, req.MinWords, feedback)

	raw, err := c.generateContent(ctx, c.generationModel, prompt)
	if err != nil {
		return core.GeneratedContent{}, err
	}

	var parsed struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Body        string   `json:"body"`
		Tags        []string `json:"tags"`
	}
	if err := json.Unmarshal(extractJSON(raw), &parsed); err != nil {
		return core.GeneratedContent{}, fmt.Errorf("failed to parse generated content: %w", err)
	}

	return core.GeneratedContent{
		Title:       parsed.Title,
		Description: parsed.Description,
		Body:        parsed.Body,
		Tags:        parsed.Tags,
		WordCount:   textnorm.WordCount(parsed.Body),
		ModelUsed:   c.generationModel,
	}, nil
}

// extractJSON strips markdown code fences and surrounding prose that models
// wrap JSON payloads in.
func extractJSON(raw string) []byte {
	s := strings.TrimSpace(raw)
	if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[idx+3:]
		s = strings.TrimPrefix(s, "json")
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
	}
	s = strings.TrimSpace(s)

	// Fall back to the outermost JSON delimiters when prose surrounds the payload.
	start := strings.IndexAny(s, "[{")
	if start > 0 {
		s = s[start:]
	}
	if len(s) > 0 {
		closer := byte(']')
		if s[0] == '{' {
			closer = '}'
		}
		if end := strings.LastIndexByte(s, closer); end >= 0 {
			s = s[:end+1]
		}
	}
	return []byte(s)
}
