// Package scoring computes the 0-100 opportunity score for a keyword signal.
//
// Five independently-capped sub-scores plus a relevance bonus are summed and
// the total capped at 100. The function is pure and total: it never errors and
// is safe for both brainstormed ideas and raw keyword-service suggestions.
package scoring

import (
	"math"

	"copydesk/internal/core"
	"copydesk/internal/textnorm"
)

const (
	volumeCap     = 30
	difficultyCap = 20
	serpCap       = 20
	questionsCap  = 20
	shapeCap      = 10
	relevanceCap  = 10

	// Estimated volumes are capped at 60% of the volume cap so an unvalidated
	// LLM estimate can never outrank measured demand.
	estimatedVolumeCap = volumeCap * 6 / 10

	perSERPFeature = 5

	shapeMinWords = 2
	shapeMaxWords = 6
)

// Score computes the opportunity score and its breakdown for one signal.
// relevance is the 0-10 category-relevance estimate; src tags the provenance
// of the signal's volume figure.
func Score(sig core.KeywordSignal, relevance float64, src core.VolumeSource) (int, core.ScoreBreakdown) {
	b := core.ScoreBreakdown{
		SearchVolume:      volumeScore(sig.SearchVolume, src),
		KeywordDifficulty: difficultyScore(sig.KeywordDifficulty, src),
		SERPFeatures:      capInt(len(sig.SERPFeatures)*perSERPFeature, serpCap),
		RelatedQuestions:  questionScore(sig.RelatedQuestionCount),
		KeywordQuality:    shapeScore(sig.Keyword),
		RelevanceBonus:    relevanceBonus(relevance),
	}
	return capInt(b.Sum(), 100), b
}

// volumeScore maps volume onto a log scale so a 10x volume difference moves
// the score by a constant amount.
func volumeScore(volume int, src core.VolumeSource) int {
	if volume < 0 {
		volume = 0
	}
	s := capInt(round(math.Log10(float64(volume)+1)*10), volumeCap)
	if src == core.VolumeEstimated {
		s = capInt(s, estimatedVolumeCap)
	}
	return s
}

// difficultyScore inverts keyword difficulty: easier keywords score higher.
// A difficulty of exactly 0 means "genuinely easy" only when the figure was
// measured; from any other source it means "unknown" and gets half credit.
func difficultyScore(difficulty int, src core.VolumeSource) int {
	if difficulty > 0 {
		if difficulty > 100 {
			difficulty = 100
		}
		return round(float64(100-difficulty) / 100 * difficultyCap)
	}
	if src == core.VolumeMeasured {
		return difficultyCap
	}
	return difficultyCap / 2
}

func questionScore(count int) int {
	if count < 0 {
		count = 0
	}
	return capInt(round(float64(count)/10*questionsCap), questionsCap)
}

// shapeScore rewards mid-length phrases. Head terms of a single word and
// overlong invented phrases both get partial credit, never zero.
func shapeScore(keyword string) int {
	n := textnorm.WordCount(keyword)
	if n >= shapeMinWords && n <= shapeMaxWords {
		return shapeCap
	}
	return shapeCap / 2
}

func relevanceBonus(relevance float64) int {
	if relevance < 0 {
		relevance = 0
	}
	if relevance > 10 {
		relevance = 10
	}
	return capInt(round(relevance/10*relevanceCap), relevanceCap)
}

func round(f float64) int {
	return int(math.Round(f))
}

func capInt(v, max int) int {
	if v > max {
		return max
	}
	if v < 0 {
		return 0
	}
	return v
}
