package textnorm

import (
	"regexp"
	"strings"
)

// DefaultMinLength is the shortest token kept by Normalize.
const DefaultMinLength = 3

// Stopwords is a set of words excluded from normalized word sets.
type Stopwords map[string]bool

var nonWordChars = regexp.MustCompile(`[^a-z0-9\s-]`)

// NewStopwords builds a Stopwords set from a word list.
func NewStopwords(words []string) Stopwords {
	set := make(Stopwords, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = true
	}
	return set
}

// GeneralStopwords returns the common-English stop word list used when scoring
// keyword shape and relevance. Kept separate from OverlapStopwords because the
// scorer and the duplicate detector tolerate different false-positive rates.
func GeneralStopwords() Stopwords {
	return NewStopwords([]string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
		"has", "he", "in", "is", "it", "its", "of", "on", "that", "the",
		"to", "was", "were", "will", "with", "this", "but", "they",
		"have", "had", "what", "which", "she", "do", "how", "their",
		"if", "up", "out", "then", "them", "these", "so", "some",
		"would", "into", "can", "could", "should", "about", "after",
		"before", "between", "during", "under", "over", "your", "you",
	})
}

// OverlapStopwords returns the domain-overlap list used only by the duplicate
// detector. It additionally drops vocabulary so pervasive in the niche that it
// would make every pair of items look similar.
func OverlapStopwords() Stopwords {
	base := GeneralStopwords()
	for _, w := range []string{
		"guide", "complete", "ultimate", "best", "top", "tips",
		"how", "why", "when", "everything", "need", "know",
		"understanding", "explained", "beginners", "basics",
	} {
		base[w] = true
	}
	return base
}

// Normalize tokenizes free text into its set of significant words: lowercased,
// stripped of punctuation, split on whitespace and hyphens, with stop words and
// tokens shorter than minLength discarded. Pure, deterministic, no side effects.
func Normalize(text string, stop Stopwords, minLength int) map[string]struct{} {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	cleaned := nonWordChars.ReplaceAllString(strings.ToLower(text), " ")
	cleaned = strings.ReplaceAll(cleaned, "-", " ")

	words := make(map[string]struct{})
	for _, tok := range strings.Fields(cleaned) {
		if len(tok) < minLength || stop[tok] {
			continue
		}
		words[tok] = struct{}{}
	}
	return words
}

// Jaccard computes |A∩B| / |A∪B|. Two empty sets have similarity 0, not 1:
// an item with no significant words carries no evidence of overlap.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// IsSubset reports whether every word of a is present in b.
func IsSubset(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		return false
	}
	for w := range a {
		if _, ok := b[w]; !ok {
			return false
		}
	}
	return true
}

// WordCount returns the number of whitespace-separated words in a phrase.
func WordCount(phrase string) int {
	return len(strings.Fields(phrase))
}

// Union merges word sets into a new set.
func Union(sets ...map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for _, s := range sets {
		for w := range s {
			out[w] = struct{}{}
		}
	}
	return out
}
