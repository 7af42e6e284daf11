// Package discovery fuses AI-brainstormed topic candidates with quantitative
// keyword-research data into a ranked list of scored content opportunities.
//
// Two independent fetch paths feed the run: the suggestion path discovers new
// keywords seeded from the category's seed list, and the lookup path validates
// the brainstormed keywords exactly. Either path failing degrades the run to
// the other path's data; both failing degrades to LLM estimates. A discovery
// run never aborts because one external data source is down.
package discovery

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"copydesk/internal/core"
	"copydesk/internal/dedup"
	"copydesk/internal/logger"
	"copydesk/internal/scoring"
	"copydesk/internal/textnorm"
)

// Brainstormer produces candidate topics with no demand validation behind them.
type Brainstormer interface {
	BrainstormTopics(ctx context.Context, category string, count int) ([]core.TopicCandidate, error)
}

// Estimator fills demand gaps for keywords the research service has no data on.
type Estimator interface {
	EstimateDemand(ctx context.Context, keyword, category string) (int, float64, error)
}

// KeywordService is the quantitative keyword-data collaborator.
type KeywordService interface {
	Suggest(ctx context.Context, seeds []string) ([]core.KeywordSignal, error)
	Lookup(ctx context.Context, exact []string) ([]core.KeywordSignal, error)
}

// FingerprintSource supplies the published-content fingerprints candidates are
// deduplicated against.
type FingerprintSource interface {
	Fingerprints() []core.ContentFingerprint
}

// Config tunes a discovery run. The relevance-filter minimums are hand-tuned
// heuristics; deployments are expected to recalibrate them per niche.
type Config struct {
	BrainstormCount int
	MinDomainWords  int // Domain-vocabulary overlap that alone keeps a suggestion
	MinSeedWords    int // Seed-derived overlap that alone keeps a suggestion
	MinMixedWords   int // Combined overlap (>=1 from each pool) that keeps a suggestion
	MaxSuggestions  int // Cap on non-brainstormed suggestions admitted to scoring
}

// DefaultConfig returns the tuning the pipeline ships with.
func DefaultConfig() Config {
	return Config{
		BrainstormCount: 10,
		MinDomainWords:  2,
		MinSeedWords:    2,
		MinMixedWords:   2,
		MaxSuggestions:  25,
	}
}

// Relevance defaults for ideas the estimator never sees: brainstormed ideas
// were proposed for this category by the model, suggestions merely survived
// the word filter.
const (
	brainstormedRelevance = 7.0
	suggestionRelevance   = 5.0
)

// Orchestrator runs discovery for one category at a time.
type Orchestrator struct {
	brainstormer Brainstormer
	keywords     KeywordService
	estimator    Estimator
	detector     *dedup.Detector
	fingerprints FingerprintSource
	cfg          Config
	stop         textnorm.Stopwords
}

// NewOrchestrator wires a discovery orchestrator from its collaborators.
func NewOrchestrator(b Brainstormer, ks KeywordService, est Estimator, det *dedup.Detector, fps FingerprintSource, cfg Config) *Orchestrator {
	def := DefaultConfig()
	if cfg.BrainstormCount <= 0 {
		cfg.BrainstormCount = def.BrainstormCount
	}
	if cfg.MinDomainWords <= 0 {
		cfg.MinDomainWords = def.MinDomainWords
	}
	if cfg.MinSeedWords <= 0 {
		cfg.MinSeedWords = def.MinSeedWords
	}
	if cfg.MinMixedWords <= 0 {
		cfg.MinMixedWords = def.MinMixedWords
	}
	return &Orchestrator{
		brainstormer: b,
		keywords:     ks,
		estimator:    est,
		detector:     det,
		fingerprints: fps,
		cfg:          cfg,
		stop:         textnorm.GeneralStopwords(),
	}
}

// Discover returns the ranked opportunity list for a category, highest score
// first, stable for ties in discovery order. Running twice against unchanged
// fingerprints and unchanged external data yields the same order.
func (o *Orchestrator) Discover(ctx context.Context, cat Category) ([]core.ScoredIdea, error) {
	runID := uuid.NewString()
	log := logger.Get().With().Str("run_id", runID).Str("category", cat.Name).Logger()

	candidates, err := o.brainstormer.BrainstormTopics(ctx, cat.Name, o.cfg.BrainstormCount)
	if err != nil {
		// Degrade to suggestion-path discovery only.
		log.Warn().Err(err).Msg("brainstorm pass failed, continuing with keyword suggestions only")
		candidates = nil
	}

	brainstormed := make([]string, 0, len(candidates))
	for _, c := range candidates {
		brainstormed = append(brainstormed, c.Keyword)
	}

	suggested, looked := o.fetchKeywordData(ctx, cat.Seeds, brainstormed, log)

	// Merge precedence is explicit and positional: batches listed later
	// overwrite earlier ones per keyword. Exact-match lookups are
	// authoritative over broad suggestions.
	merged := mergeSignals(
		batch{source: "suggest", signals: suggested},
		batch{source: "lookup", signals: looked},
	)

	var ideas []core.ScoredIdea
	seen := make(map[string]bool, len(candidates))

	for _, cand := range candidates {
		key := strings.ToLower(cand.Keyword)
		if seen[key] {
			continue
		}
		seen[key] = true
		ideas = append(ideas, o.scoreBrainstormed(ctx, cand, merged[key], cat, log))
	}

	// Suggestions the brainstorm pass didn't propose get scored too, after the
	// relevance filter strips tangential high-volume noise.
	domain := cat.domainWords(o.stop)
	seeds := cat.seedWords(o.stop)
	admitted := 0
	for _, sig := range suggested {
		key := strings.ToLower(sig.Keyword)
		if seen[key] || key == "" {
			continue
		}
		seen[key] = true
		if o.cfg.MaxSuggestions > 0 && admitted >= o.cfg.MaxSuggestions {
			break
		}
		if !o.relevant(sig.Keyword, domain, seeds) {
			log.Debug().Str("keyword", sig.Keyword).Msg("suggestion dropped by relevance filter")
			continue
		}
		admitted++
		if exact, ok := merged[key]; ok {
			sig = exact
		}
		score, breakdown := scoring.Score(sig, suggestionRelevance, core.VolumeMeasured)
		ideas = append(ideas, core.ScoredIdea{
			Signal:         sig,
			Score:          score,
			Breakdown:      breakdown,
			RelevanceScore: suggestionRelevance,
			VolumeSource:   core.VolumeMeasured,
		})
	}

	ideas = o.dropDuplicates(ideas, log)

	sort.SliceStable(ideas, func(i, j int) bool { return ideas[i].Score > ideas[j].Score })
	log.Info().Int("ideas", len(ideas)).Msg("discovery run complete")
	return ideas, nil
}

// fetchKeywordData issues the two research-service request shapes
// concurrently. They have no ordering dependency and each carries its own
// error boundary: a failed path yields nil data and a log line, nothing more.
func (o *Orchestrator) fetchKeywordData(ctx context.Context, seeds, exact []string, log zerolog.Logger) ([]core.KeywordSignal, []core.KeywordSignal) {
	var (
		wg         sync.WaitGroup
		suggested  []core.KeywordSignal
		looked     []core.KeywordSignal
		suggestErr error
		lookupErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		suggested, suggestErr = o.keywords.Suggest(ctx, seeds)
	}()
	go func() {
		defer wg.Done()
		if len(exact) == 0 {
			return
		}
		looked, lookupErr = o.keywords.Lookup(ctx, exact)
	}()
	wg.Wait()

	if suggestErr != nil {
		log.Warn().Err(suggestErr).Msg("suggestion path failed, scoring without broad discovery data")
	}
	if lookupErr != nil {
		log.Warn().Err(lookupErr).Msg("lookup path failed, brainstormed keywords fall back to estimates")
	}
	return suggested, looked
}

type batch struct {
	source  string
	signals []core.KeywordSignal
}

// mergeSignals builds the keyword lookup map from an ordered list of source
// batches. Precedence is the argument order, not map insertion accident: a
// batch overwrites any earlier batch's entry for the same lowercased keyword.
func mergeSignals(batches ...batch) map[string]core.KeywordSignal {
	merged := make(map[string]core.KeywordSignal)
	for _, b := range batches {
		for _, sig := range b.signals {
			key := strings.ToLower(sig.Keyword)
			if key == "" {
				continue
			}
			merged[key] = sig
		}
	}
	return merged
}

// scoreBrainstormed scores one brainstormed candidate, preferring measured
// data and falling back to the estimator when the research service had no
// volume for it.
func (o *Orchestrator) scoreBrainstormed(ctx context.Context, cand core.TopicCandidate, measured core.KeywordSignal, cat Category, log zerolog.Logger) core.ScoredIdea {
	sig := measured
	sig.Keyword = cand.Keyword

	src := core.VolumeMeasured
	relevance := brainstormedRelevance

	if measured.SearchVolume <= 0 {
		volume, estRelevance, err := o.estimator.EstimateDemand(ctx, cand.Keyword, cat.Name)
		if err != nil {
			log.Warn().Err(err).Str("keyword", cand.Keyword).Msg("demand estimation failed, scoring without volume")
			src = core.VolumeNone
		} else {
			sig.SearchVolume = volume
			relevance = estRelevance
			src = core.VolumeEstimated
		}
	}

	score, breakdown := scoring.Score(sig, relevance, src)
	return core.ScoredIdea{
		Signal:         sig,
		Description:    cand.Description,
		Score:          score,
		Breakdown:      breakdown,
		RelevanceScore: relevance,
		VolumeSource:   src,
	}
}

// relevant applies the configurable vocabulary-overlap filter to a suggestion.
// It prevents unrelated high-volume keywords from polluting a niche category
// just because the research service considers them "related".
func (o *Orchestrator) relevant(keyword string, domain, seeds map[string]struct{}) bool {
	words := textnorm.Normalize(keyword, o.stop, 0)
	domainHits, seedHits := 0, 0
	for w := range words {
		if _, ok := domain[w]; ok {
			domainHits++
		}
		if _, ok := seeds[w]; ok {
			seedHits++
		}
	}
	switch {
	case domainHits >= o.cfg.MinDomainWords:
		return true
	case seedHits >= o.cfg.MinSeedWords:
		return true
	case domainHits >= 1 && seedHits >= 1 && domainHits+seedHits >= o.cfg.MinMixedWords:
		return true
	}
	return false
}

// dropDuplicates removes ideas that would duplicate published coverage.
// Duplicate topics are a business-rule rejection: logged with the reason and
// best match, never retried.
func (o *Orchestrator) dropDuplicates(ideas []core.ScoredIdea, log zerolog.Logger) []core.ScoredIdea {
	fps := o.fingerprints.Fingerprints()
	kept := ideas[:0]
	for _, idea := range ideas {
		verdict := o.detector.Check(idea.Signal.Keyword, fps)
		if verdict.IsDuplicate {
			log.Info().
				Str("keyword", idea.Signal.Keyword).
				Str("reason", verdict.Reason).
				Msg("idea dropped as duplicate")
			continue
		}
		if o.detector.InWarnBand(verdict) {
			log.Warn().
				Str("keyword", idea.Signal.Keyword).
				Str("reason", verdict.Reason).
				Msg("idea overlaps existing coverage")
		}
		kept = append(kept, idea)
	}
	return kept
}
