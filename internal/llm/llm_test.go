package llm

import (
	"context"
	"encoding/json"
	"testing"
)

func TestExtractJSONFenced(t *testing.T) {
	raw := "Here you go:\n```json\n[{\"keyword\": \"debt relief options\", \"description\": \"overview\"}]\n```\nHope that helps!"
	var parsed []struct {
		Keyword string `json:"keyword"`
	}
	if err := json.Unmarshal(extractJSON(raw), &parsed); err != nil {
		t.Fatalf("failed to parse fenced JSON: %v", err)
	}
	if len(parsed) != 1 || parsed[0].Keyword != "debt relief options" {
		t.Errorf("unexpected parse result: %+v", parsed)
	}
}

func TestExtractJSONBare(t *testing.T) {
	raw := `{"estimated_monthly_volume": 250, "relevance": 6.5}`
	var parsed struct {
		EstimatedMonthlyVolume int `json:"estimated_monthly_volume"`
	}
	if err := json.Unmarshal(extractJSON(raw), &parsed); err != nil {
		t.Fatalf("failed to parse bare JSON: %v", err)
	}
	if parsed.EstimatedMonthlyVolume != 250 {
		t.Errorf("volume = %d", parsed.EstimatedMonthlyVolume)
	}
}

func TestExtractJSONSurroundingProse(t *testing.T) {
	raw := `Sure! The estimate is {"estimated_monthly_volume": 90, "relevance": 3} based on similar terms.`
	var parsed struct {
		Relevance float64 `json:"relevance"`
	}
	if err := json.Unmarshal(extractJSON(raw), &parsed); err != nil {
		t.Fatalf("failed to parse JSON with prose: %v", err)
	}
	if parsed.Relevance != 3 {
		t.Errorf("relevance = %v", parsed.Relevance)
	}
}

func TestMockGenerateRespectsConfiguredLength(t *testing.T) {
	m := NewMockClient()
	m.BodyWords = 1600
	content, err := m.GenerateContent(context.Background(), GenerationRequest{
		Keyword: "chapter 11 restructuring", Category: "bankruptcy",
	})
	if err != nil {
		t.Fatal(err)
	}
	if content.WordCount < 1200 {
		t.Errorf("mock body too short: %d words", content.WordCount)
	}
	if len(m.GenerateCalls) != 1 {
		t.Errorf("call not recorded")
	}
}
