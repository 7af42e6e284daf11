// Package dedup decides whether a candidate topic would duplicate coverage the
// site has already published.
//
// The check is an ordered cascade of heuristics, most confident first; the
// first one that fires wins. The order encodes an implicit confidence ranking
// (exact keyword > reordered phrase > title substring > tag > word overlap)
// and must not be rearranged without domain review.
package dedup

import (
	"fmt"
	"strings"

	"copydesk/internal/core"
	"copydesk/internal/textnorm"
)

const (
	// DefaultJaccardThreshold is the word-overlap ratio above which a
	// candidate is treated as a duplicate by the fallback heuristic.
	DefaultJaccardThreshold = 0.5

	// WarnBandFloor is the lower edge of the "similar but not duplicate"
	// band; callers surface a warning for similarities in
	// [WarnBandFloor, threshold).
	WarnBandFloor = 0.30

	titlePrefixLen = 30

	simExact       = 1.0
	simContainment = 0.95
	simSubstring   = 0.9
	simTag         = 0.8
)

// Detector checks candidate keywords against a fingerprint set.
type Detector struct {
	stop             textnorm.Stopwords
	JaccardThreshold float64
}

// NewDetector creates a detector with the default jaccard threshold and the
// domain-overlap stop word list.
func NewDetector() *Detector {
	return &Detector{
		stop:             textnorm.OverlapStopwords(),
		JaccardThreshold: DefaultJaccardThreshold,
	}
}

// Check runs the cascade for one candidate keyword. It has no side effects and
// never errors: with no fingerprints loaded it returns a non-duplicate verdict
// with a nil match. Ties within a step go to the first fingerprint in input
// order.
func (d *Detector) Check(candidate string, fps []core.ContentFingerprint) core.DuplicateVerdict {
	cand := strings.ToLower(strings.TrimSpace(candidate))
	candWords := textnorm.Normalize(cand, d.stop, 0)

	// Step 1: exact primary-keyword match.
	for i := range fps {
		if cand == fps[i].PrimaryKeyword && cand != "" {
			return core.DuplicateVerdict{
				IsDuplicate: true,
				Matched:     &fps[i],
				Similarity:  simExact,
				Reason:      fmt.Sprintf("exact keyword match with %q", fps[i].ID),
			}
		}
	}

	// Step 2: word-set containment in either direction. Catches reordered
	// phrasings like "distressed debt investing" vs "investing in distressed
	// debt". Both sides need at least 2 significant words or containment is
	// too cheap to mean anything.
	if len(candWords) >= 2 {
		for i := range fps {
			kwWords := textnorm.Normalize(fps[i].PrimaryKeyword, d.stop, 0)
			if len(kwWords) < 2 {
				continue
			}
			if textnorm.IsSubset(candWords, kwWords) || textnorm.IsSubset(kwWords, candWords) {
				return core.DuplicateVerdict{
					IsDuplicate: true,
					Matched:     &fps[i],
					Similarity:  simContainment,
					Reason:      fmt.Sprintf("keyword word-set overlaps %q (reordered phrasing)", fps[i].ID),
				}
			}
		}
	}

	// Step 3: substring containment against published titles.
	if cand != "" {
		for i := range fps {
			title := strings.ToLower(fps[i].Title)
			if title == "" {
				continue
			}
			prefix := title
			if len(prefix) > titlePrefixLen {
				prefix = prefix[:titlePrefixLen]
			}
			if strings.Contains(title, cand) || strings.Contains(cand, prefix) {
				return core.DuplicateVerdict{
					IsDuplicate: true,
					Matched:     &fps[i],
					Similarity:  simSubstring,
					Reason:      fmt.Sprintf("title of %q contains the candidate", fps[i].ID),
				}
			}
		}
	}

	// Step 4: verbatim tag match.
	for i := range fps {
		for _, tag := range fps[i].Tags {
			if cand == tag && cand != "" {
				return core.DuplicateVerdict{
					IsDuplicate: true,
					Matched:     &fps[i],
					Similarity:  simTag,
					Reason:      fmt.Sprintf("matches tag %q on %q", tag, fps[i].ID),
				}
			}
		}
	}

	// Step 5: jaccard fallback over the full word sets. The best match is
	// carried on the verdict even below threshold so callers can warn about
	// near-misses.
	best := -1
	bestSim := 0.0
	for i := range fps {
		sim := textnorm.Jaccard(candWords, fps[i].Words)
		if sim > bestSim {
			bestSim = sim
			best = i
		}
	}

	verdict := core.DuplicateVerdict{Similarity: bestSim}
	if best >= 0 {
		verdict.Matched = &fps[best]
	}
	switch {
	case best >= 0 && bestSim >= d.JaccardThreshold:
		verdict.IsDuplicate = true
		verdict.Reason = fmt.Sprintf("%.0f%% word overlap with %q", bestSim*100, fps[best].ID)
	case best >= 0 && bestSim >= WarnBandFloor:
		verdict.Reason = fmt.Sprintf("similar to %q (%.0f%% overlap) but below the duplicate threshold", fps[best].ID, bestSim*100)
	default:
		verdict.Reason = "no overlapping coverage found"
	}
	return verdict
}

// InWarnBand reports whether a non-duplicate verdict is close enough to
// existing coverage to warrant a warning.
func (d *Detector) InWarnBand(v core.DuplicateVerdict) bool {
	return !v.IsDuplicate && v.Similarity >= WarnBandFloor && v.Similarity < d.JaccardThreshold
}
