// Package generation drives content-generation calls through a bounded retry
// loop with escalating demands and end-of-budget leniency.
//
// The policy is deliberately asymmetric: the generator is asked for more words
// than the pipeline will accept, and the acceptance floor drops further on the
// final attempt. A near-miss draft on the last attempt ships; a structurally
// broken one never does, regardless of attempt number.
package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"copydesk/internal/core"
	"copydesk/internal/llm"
	"copydesk/internal/logger"
)

// Form selects the length regime for a piece of content.
type Form string

const (
	// FormLong is a standard long-form article.
	FormLong Form = "long"
	// FormShort is the short "closure" form used for updates and wrap-ups.
	FormShort Form = "short"
)

// Config tunes the retry loop.
type Config struct {
	MaxAttempts       int
	BaselineMinWords  int           // Asked of the generator on attempt 1
	EscalatedMinWords int           // Asked on every subsequent attempt
	AcceptLongForm    int           // Long-form acceptance floor on non-final attempts
	AcceptLongFinal   int           // Relaxed long-form floor on the final attempt
	AcceptShortForm   int           // Short-form acceptance floor on non-final attempts
	AcceptShortFinal  int           // Relaxed short-form floor on the final attempt
	RequestDelay      time.Duration // Pause between sequential calls to the generation service
}

// DefaultConfig returns the shipped retry policy.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:       4,
		BaselineMinWords:  1500,
		EscalatedMinWords: 2000,
		AcceptLongForm:    1400,
		AcceptLongFinal:   1000,
		AcceptShortForm:   750,
		AcceptShortFinal:  600,
		RequestDelay:      3 * time.Second,
	}
}

// Request is one content item to generate.
type Request struct {
	Keyword     string
	Category    string
	Description string
	Form        Form
}

// Generator is the non-deterministic content-generation collaborator. Every
// response must be re-validated; nothing about a previous call carries over.
type Generator interface {
	GenerateContent(ctx context.Context, req llm.GenerationRequest) (core.GeneratedContent, error)
}

// ExhaustedError reports that every attempt in the budget failed validation.
// It carries the last attempt's error so callers see the real failure, not a
// generic one.
type ExhaustedError struct {
	Attempts int
	LastErr  string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("generation exhausted after %d attempts: %s", e.Attempts, e.LastErr)
}

// Orchestrator runs the retry loop for content items.
type Orchestrator struct {
	generator Generator
	cfg       Config
}

// NewOrchestrator creates a retry orchestrator around a generator.
func NewOrchestrator(g Generator, cfg Config) *Orchestrator {
	if cfg.MaxAttempts <= 0 {
		cfg = DefaultConfig()
	}
	return &Orchestrator{generator: g, cfg: cfg}
}

// requestedMinWords is what the generator is told to produce on a given
// attempt. From attempt 2 on it escalates: the generator is told to try
// harder, not just asked again.
func requestedMinWords(attempt int, cfg Config) int {
	if attempt <= 1 {
		return cfg.BaselineMinWords
	}
	return cfg.EscalatedMinWords
}

// acceptanceFloor is the word count an attempt must clear to be accepted.
// Looser than the requested minimum, and looser still on the final attempt.
func acceptanceFloor(form Form, attempt int, cfg Config) int {
	final := attempt >= cfg.MaxAttempts
	if form == FormShort {
		if final {
			return cfg.AcceptShortFinal
		}
		return cfg.AcceptShortForm
	}
	if final {
		return cfg.AcceptLongFinal
	}
	return cfg.AcceptLongForm
}

// shouldRetry is the pure retry decision: the loop continues while budget
// remains. It never inspects the failure itself; all failure classes within
// the loop retry until the budget runs out.
func shouldRetry(attempt int, cfg Config) bool {
	return attempt < cfg.MaxAttempts
}

// buildFeedback turns the previous failed attempt into the admonition passed
// to the next call. Pure; the driver loop owns composing it into the request.
func buildFeedback(last core.GenerationAttempt) string {
	if last.WordCount > 0 {
		return fmt.Sprintf("previous attempt was only %d words, well short of the %d requested; expand every section substantially",
			last.WordCount, last.MinWordsRequested)
	}
	return fmt.Sprintf("previous attempt failed validation (%s); return complete, well-formed output", last.Err)
}

// GenerateWithRetry drives one content item through the retry loop. It returns
// the accepted content and the full attempt history, or an ExhaustedError
// after the budget is spent. Attempts are strictly sequential: each feeds its
// word count back into the next prompt.
func (o *Orchestrator) GenerateWithRetry(ctx context.Context, req Request) (core.GeneratedContent, []core.GenerationAttempt, error) {
	var history []core.GenerationAttempt
	var last core.GenerationAttempt

	for attempt := 1; ; attempt++ {
		if attempt > 1 {
			if err := o.pause(ctx); err != nil {
				return core.GeneratedContent{}, history, err
			}
		}

		minWords := requestedMinWords(attempt, o.cfg)
		feedback := ""
		if attempt > 1 {
			feedback = buildFeedback(last)
		}

		record := core.GenerationAttempt{
			Number:            attempt,
			MinWordsRequested: minWords,
			StartedAt:         time.Now().UTC(),
		}

		content, err := o.generator.GenerateContent(ctx, llm.GenerationRequest{
			Keyword:     req.Keyword,
			Category:    req.Category,
			Description: req.Description,
			MinWords:    minWords,
			Feedback:    feedback,
		})
		if err == nil {
			record.WordCount = content.WordCount
			err = o.validateAttempt(content, req.Form, attempt)
		}

		if err == nil {
			record.Accepted = true
			history = append(history, record)
			logger.Info("content accepted",
				"keyword", req.Keyword, "attempt", attempt, "words", record.WordCount)
			return content, history, nil
		}

		record.Err = err.Error()
		history = append(history, record)
		last = record
		logger.Warn("generation attempt rejected",
			"keyword", req.Keyword, "attempt", attempt, "error", err.Error())

		if !shouldRetry(attempt, o.cfg) {
			return core.GeneratedContent{}, history, &ExhaustedError{
				Attempts: attempt,
				LastErr:  record.Err,
			}
		}
	}
}

// validateAttempt applies structural validation (never relaxed) and the
// attempt-dependent word-count floor.
func (o *Orchestrator) validateAttempt(content core.GeneratedContent, form Form, attempt int) error {
	if result := Validate(content); !result.OK() {
		return fmt.Errorf("structurally invalid response: %s", strings.Join(result.Errors, "; "))
	}
	floor := acceptanceFloor(form, attempt, o.cfg)
	if content.WordCount < floor {
		return fmt.Errorf("body is %d words, below the %d-word floor", content.WordCount, floor)
	}
	return nil
}

// Validate checks required fields on a generated response. Errors block
// acceptance on every attempt; warnings are advisory only.
func Validate(content core.GeneratedContent) core.ValidationResult {
	var result core.ValidationResult
	if strings.TrimSpace(content.Title) == "" {
		result.Errors = append(result.Errors, "missing title")
	}
	if strings.TrimSpace(content.Body) == "" {
		result.Errors = append(result.Errors, "missing body")
	}
	if strings.TrimSpace(content.Description) == "" {
		result.Errors = append(result.Errors, "missing description")
	}
	if len(content.Tags) == 0 {
		result.Errors = append(result.Errors, "missing tags")
	}
	if len(content.Title) > 70 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("title is %d characters, over the 70-character guideline", len(content.Title)))
	}
	if len(content.Description) > 160 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("description is %d characters, over the 160-character guideline", len(content.Description)))
	}
	return result
}

// pause honors the inter-request delay to the generation service without
// ignoring cancellation.
func (o *Orchestrator) pause(ctx context.Context) error {
	if o.cfg.RequestDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(o.cfg.RequestDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
