package core

import "time"

// VolumeSource records the provenance of a search-volume figure. Estimated
// volumes are discounted during scoring so they can never outrank measured data.
type VolumeSource string

const (
	VolumeMeasured  VolumeSource = "measured"  // Figure came from the keyword-data service
	VolumeEstimated VolumeSource = "estimated" // Figure came from the LLM estimator
	VolumeNone      VolumeSource = "none"      // No demand figure available
)

// SearchIntent classifies what a searcher is trying to accomplish.
type SearchIntent string

const (
	IntentInformational SearchIntent = "informational"
	IntentCommercial    SearchIntent = "commercial"
	IntentTransactional SearchIntent = "transactional"
	IntentNavigational  SearchIntent = "navigational"
	IntentUnknown       SearchIntent = "unknown"
)

// KeywordSignal is one keyword/topic candidate with its quantitative attributes.
// Produced by the keyword-data service or the estimator, consumed once per
// scoring pass and never persisted.
type KeywordSignal struct {
	Keyword              string       `json:"keyword"`                // The keyword/topic phrase
	SearchVolume         int          `json:"search_volume"`          // Monthly search volume (>= 0)
	KeywordDifficulty    int          `json:"keyword_difficulty"`     // Ranking difficulty, 0-100
	CPC                  float64      `json:"cpc"`                    // Cost per click in USD
	SERPFeatures         []string     `json:"serp_features"`          // Structured result types present on the SERP
	SearchIntent         SearchIntent `json:"search_intent"`          // Classified searcher intent
	RelatedQuestionCount int          `json:"related_question_count"` // "People also ask" style question count
}

// ScoreBreakdown itemizes the independently-capped sub-scores that sum to an
// opportunity score.
type ScoreBreakdown struct {
	SearchVolume      int `json:"search_volume"`      // Cap 30 (18 when volume is estimated)
	KeywordDifficulty int `json:"keyword_difficulty"` // Cap 20, inverted (easier ranks higher)
	SERPFeatures      int `json:"serp_features"`      // Cap 20
	RelatedQuestions  int `json:"related_questions"`  // Cap 20
	KeywordQuality    int `json:"keyword_quality"`    // Cap 10 (keyword shape)
	RelevanceBonus    int `json:"relevance_bonus"`    // Cap 10, additive on top of the pool
}

// Sum returns the uncapped total of all breakdown components.
func (b ScoreBreakdown) Sum() int {
	return b.SearchVolume + b.KeywordDifficulty + b.SERPFeatures +
		b.RelatedQuestions + b.KeywordQuality + b.RelevanceBonus
}

// ScoredIdea is a KeywordSignal with its opportunity score attached. Created per
// discovery run, discarded after ranking.
type ScoredIdea struct {
	Signal         KeywordSignal  `json:"signal"`
	Description    string         `json:"description"`     // Angle/description from the brainstorm pass
	Score          int            `json:"score"`           // 0-100 composite opportunity score
	Breakdown      ScoreBreakdown `json:"breakdown"`       // Per-factor sub-scores
	RelevanceScore float64        `json:"relevance_score"` // 0-10 category relevance estimate
	VolumeSource   VolumeSource   `json:"volume_source"`   // Provenance of the volume figure
}

// TopicCandidate is a raw brainstormed topic before any quantitative validation.
// There is no guarantee of real-world search demand behind it.
type TopicCandidate struct {
	Keyword     string `json:"keyword"`
	Description string `json:"description"`
}

// ContentFingerprint is the normalized word-set representation of one published
// content item, used for overlap detection. Rebuilt fresh on every pipeline run.
type ContentFingerprint struct {
	ID             string              `json:"id"`              // Identifier of the published item (slug or UUID)
	Title          string              `json:"title"`           // Raw title, used for substring checks
	PrimaryKeyword string              `json:"primary_keyword"` // The keyword the item targets
	Tags           []string            `json:"tags"`            // Raw tags, lowercased
	TitleWords     map[string]struct{} `json:"-"`               // Significant words from the title
	TagWords       map[string]struct{} `json:"-"`               // Significant words from the tags
	Words          map[string]struct{} `json:"-"`               // Union word set: title+description+keyword+tags
}

// DuplicateVerdict is the outcome of checking one candidate keyword against the
// fingerprint set. Stateless; the best match is carried even below threshold so
// callers can surface "similar but not duplicate" warnings.
type DuplicateVerdict struct {
	IsDuplicate bool                `json:"is_duplicate"`
	Matched     *ContentFingerprint `json:"matched,omitempty"` // Best-matching existing item, nil when no fingerprints exist
	Similarity  float64             `json:"similarity"`        // 0-1 confidence of the match
	Reason      string              `json:"reason"`            // Human-readable explanation of the verdict
}

// GenerationAttempt records one pass through the content-generation service.
// The chain of attempts forms the retry history for a single request.
type GenerationAttempt struct {
	Number            int       `json:"number"`              // 1-based attempt number
	MinWordsRequested int       `json:"min_words_requested"` // Minimum asked of the generator (escalates)
	WordCount         int       `json:"word_count"`          // Words the generator actually produced
	Accepted          bool      `json:"accepted"`            // Whether this attempt cleared the acceptance floor
	Err               string    `json:"error,omitempty"`     // Validation failure, empty when accepted
	StartedAt         time.Time `json:"started_at"`
}

// GeneratedContent is the structured output of one generation call.
type GeneratedContent struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Body        string   `json:"body"`
	Tags        []string `json:"tags"`
	WordCount   int      `json:"word_count"`
	ModelUsed   string   `json:"model_used"`
}

// ValidationResult reports structural and quality checks on generated content.
// Errors block acceptance; warnings do not.
type ValidationResult struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// OK reports whether the content passed all blocking checks.
func (v ValidationResult) OK() bool { return len(v.Errors) == 0 }

// Resource is one external asset (an image) resolved for a content item.
type Resource struct {
	ID        string   `json:"id"`        // Provider-scoped identity, used for dedup
	URL       string   `json:"url"`       // Canonical asset URL
	ThumbURL  string   `json:"thumb_url"` // Smaller rendition if the provider offers one
	Alt       string   `json:"alt"`       // Alt/description text
	Credit    string   `json:"credit"`    // Attribution line
	Tags      []string `json:"tags"`      // Provider or pool tags, used for overlap scoring
	Source    string   `json:"source"`    // Which tier produced it: "search", "pool", "generated", "default"
	Generated bool     `json:"generated"` // True when produced by the override tier
}

// ItemSpec describes the content item a resource set is being resolved for.
type ItemSpec struct {
	Title    string   `json:"title"`
	Keyword  string   `json:"keyword"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// ResolvedResourceSet is the tiered resolution result for one content item.
// The secondary slice always holds exactly the required count; degradation
// order is search results, then the curated pool, then the default resource.
type ResolvedResourceSet struct {
	Primary   *Resource  `json:"primary"`   // Hero slot, tier 1 (or tier 3 override)
	Secondary []Resource `json:"secondary"` // Inline slots, backfilled across tiers
	Override  *Resource  `json:"override"`  // Tier 3 result when the flag is on, nil otherwise
}
