package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"copydesk/internal/core"
	"copydesk/internal/llm"
)

// scriptedGenerator returns one canned response per call, in order, and
// records every request it receives.
type scriptedGenerator struct {
	outputs []core.GeneratedContent
	errs    []error
	calls   []llm.GenerationRequest
}

func (g *scriptedGenerator) GenerateContent(ctx context.Context, req llm.GenerationRequest) (core.GeneratedContent, error) {
	i := len(g.calls)
	g.calls = append(g.calls, req)
	if i < len(g.errs) && g.errs[i] != nil {
		return core.GeneratedContent{}, g.errs[i]
	}
	if i >= len(g.outputs) {
		i = len(g.outputs) - 1
	}
	return g.outputs[i], nil
}

func contentWithWords(n int) core.GeneratedContent {
	return core.GeneratedContent{
		Title:       "Bankruptcy Asset Auctions Explained",
		Description: "What happens to assets after a filing.",
		Body:        strings.TrimSpace(strings.Repeat("word ", n)),
		Tags:        []string{"bankruptcy", "auctions"},
		WordCount:   n,
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RequestDelay = 0
	return cfg
}

func TestRetryScenarioEscalationAndFinalLeniency(t *testing.T) {
	gen := &scriptedGenerator{outputs: []core.GeneratedContent{
		contentWithWords(1200),
		contentWithWords(900),
		contentWithWords(800),
		contentWithWords(1050),
	}}
	o := NewOrchestrator(gen, testConfig())

	content, history, err := o.GenerateWithRetry(context.Background(), Request{
		Keyword: "bankruptcy asset auction", Category: "bankruptcy", Form: FormLong,
	})
	if err != nil {
		t.Fatalf("attempt 4 at 1050 words should clear the relaxed 1000 floor: %v", err)
	}
	if content.WordCount != 1050 {
		t.Errorf("accepted content has %d words, want 1050", content.WordCount)
	}
	if len(history) != 4 {
		t.Fatalf("attempt history has %d entries, want 4", len(history))
	}
	if history[0].Accepted || !history[3].Accepted {
		t.Errorf("wrong acceptance pattern: %+v", history)
	}
	if history[0].MinWordsRequested != 1500 {
		t.Errorf("attempt 1 requested %d words, want baseline 1500", history[0].MinWordsRequested)
	}
	if gen.calls[1].MinWords != 2000 {
		t.Errorf("attempt 2 requested %d words, want escalated 2000", gen.calls[1].MinWords)
	}
	if !strings.Contains(gen.calls[1].Feedback, "1200 words") {
		t.Errorf("attempt 2 feedback missing previous word count: %q", gen.calls[1].Feedback)
	}
}

func TestEscalationMonotonicity(t *testing.T) {
	cfg := testConfig()
	for attempt := 2; attempt <= cfg.MaxAttempts; attempt++ {
		if requestedMinWords(attempt, cfg) < requestedMinWords(1, cfg) {
			t.Errorf("requested minimum on attempt %d below baseline", attempt)
		}
	}
	for _, form := range []Form{FormLong, FormShort} {
		for attempt := 2; attempt <= cfg.MaxAttempts; attempt++ {
			if acceptanceFloor(form, attempt, cfg) > acceptanceFloor(form, attempt-1, cfg) {
				t.Errorf("%s acceptance floor rises at attempt %d", form, attempt)
			}
		}
	}
}

func TestShortFormFloors(t *testing.T) {
	gen := &scriptedGenerator{outputs: []core.GeneratedContent{
		contentWithWords(700),
		contentWithWords(700),
		contentWithWords(700),
		contentWithWords(620),
	}}
	o := NewOrchestrator(gen, testConfig())

	content, history, err := o.GenerateWithRetry(context.Background(), Request{
		Keyword: "case closure update", Form: FormShort,
	})
	if err != nil {
		t.Fatalf("620 words should clear the relaxed 600 short-form floor: %v", err)
	}
	if content.WordCount != 620 || len(history) != 4 {
		t.Errorf("words=%d attempts=%d", content.WordCount, len(history))
	}
}

func TestStructuralFailureNeverRelaxed(t *testing.T) {
	broken := contentWithWords(2500)
	broken.Title = ""
	gen := &scriptedGenerator{outputs: []core.GeneratedContent{broken}}
	o := NewOrchestrator(gen, testConfig())

	_, history, err := o.GenerateWithRetry(context.Background(), Request{
		Keyword: "lien priority rules", Form: FormLong,
	})
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("structurally invalid output must exhaust the budget, got %v", err)
	}
	if len(history) != 4 {
		t.Errorf("got %d attempts, want the full budget of 4", len(history))
	}
	if !strings.Contains(exhausted.LastErr, "missing title") {
		t.Errorf("exhaustion must carry the last real error, got %q", exhausted.LastErr)
	}
}

func TestExhaustionCarriesLastAttemptError(t *testing.T) {
	gen := &scriptedGenerator{outputs: []core.GeneratedContent{contentWithWords(100)}}
	o := NewOrchestrator(gen, testConfig())

	_, _, err := o.GenerateWithRetry(context.Background(), Request{Keyword: "x", Form: FormLong})
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("want ExhaustedError, got %v", err)
	}
	if exhausted.Attempts != 4 {
		t.Errorf("Attempts = %d, want 4", exhausted.Attempts)
	}
	if !strings.Contains(err.Error(), "100 words") {
		t.Errorf("error should carry the last attempt's detail: %v", err)
	}
}

func TestCallErrorsRetryLikeAnyFailure(t *testing.T) {
	gen := &scriptedGenerator{
		outputs: []core.GeneratedContent{{}, contentWithWords(1600)},
		errs:    []error{fmt.Errorf("503 from generation service"), nil},
	}
	o := NewOrchestrator(gen, testConfig())

	content, history, err := o.GenerateWithRetry(context.Background(), Request{
		Keyword: "trustee duties", Form: FormLong,
	})
	if err != nil {
		t.Fatalf("transient call failure should retry, got %v", err)
	}
	if content.WordCount != 1600 || len(history) != 2 {
		t.Errorf("words=%d attempts=%d, want 1600/2", content.WordCount, len(history))
	}
	if !strings.Contains(gen.calls[1].Feedback, "failed validation") {
		t.Errorf("feedback for a zero-word failure should mention validation: %q", gen.calls[1].Feedback)
	}
}

func TestValidateWarningsNonBlocking(t *testing.T) {
	content := contentWithWords(1500)
	content.Title = strings.Repeat("Very Long Title ", 6)
	result := Validate(content)
	if !result.OK() {
		t.Errorf("overlong title is a warning, not an error: %+v", result)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a title-length warning")
	}
}

func TestGenerateBatchIsolatesFailures(t *testing.T) {
	mock := llm.NewMockClient()
	mock.BodyWords = 1600
	o := NewOrchestrator(mock, testConfig())

	items := []Request{
		{Keyword: "chapter 11 restructuring", Category: "bankruptcy", Form: FormLong},
		{Keyword: "creditor committee roles", Category: "bankruptcy", Form: FormLong},
	}
	results := o.GenerateBatch(context.Background(), items, 2)
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	for i, res := range results {
		if res.Err != nil {
			t.Errorf("item %d failed: %v", i, res.Err)
		}
		if res.Request.Keyword != items[i].Keyword {
			t.Errorf("results out of input order at %d", i)
		}
	}
}
