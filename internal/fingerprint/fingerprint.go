// Package fingerprint builds the read-only index of already-published content
// that the duplicate detector checks candidates against. The store is rebuilt
// fresh on every pipeline run; there is no incremental update path.
package fingerprint

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"copydesk/internal/core"
	"copydesk/internal/textnorm"
)

// IndexEntry is one record of the published-content index file.
type IndexEntry struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	PrimaryKeyword string   `json:"primary_keyword"`
	Tags           []string `json:"tags"`
}

// Store holds the fingerprints of all published content for one pipeline run.
// Read-only after loading; safe for concurrent readers.
type Store struct {
	stop         textnorm.Stopwords
	entries      []IndexEntry
	fingerprints []core.ContentFingerprint
}

// NewStore creates an empty store using the domain-overlap stop word list.
func NewStore() *Store {
	return &Store{stop: textnorm.OverlapStopwords()}
}

// Fingerprints returns the loaded fingerprint set in load order.
func (s *Store) Fingerprints() []core.ContentFingerprint {
	return s.fingerprints
}

// Len returns the number of loaded fingerprints.
func (s *Store) Len() int { return len(s.fingerprints) }

// Add fingerprints a single index entry and appends it to the store.
func (s *Store) Add(entry IndexEntry) {
	s.entries = append(s.entries, entry)
	s.fingerprints = append(s.fingerprints, Build(entry, s.stop))
}

// LoadIndex reads a JSON published-content index file and fingerprints every
// entry, preserving file order (the detector's tie-break depends on it).
func (s *Store) LoadIndex(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read content index %s: %w", path, err)
	}
	var entries []IndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse content index %s: %w", path, err)
	}
	for _, e := range entries {
		s.Add(e)
	}
	return nil
}

// SaveIndex writes the store's entries as a JSON index file, in load order.
func (s *Store) SaveIndex(path string) error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode content index: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write content index %s: %w", path, err)
	}
	return nil
}

// AddHTML fingerprints a published page directly from its HTML. Title comes
// from the first h1 falling back to <title>, description and keywords from
// their meta tags, tags from rel=tag links.
func (s *Store) AddHTML(id string, r io.Reader) error {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return fmt.Errorf("failed to parse published page %s: %w", id, err)
	}

	entry := IndexEntry{ID: id}
	entry.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	if entry.Title == "" {
		entry.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		entry.Description = strings.TrimSpace(desc)
	}
	if kw, ok := doc.Find(`meta[name="keywords"]`).Attr("content"); ok {
		parts := strings.Split(kw, ",")
		entry.PrimaryKeyword = strings.TrimSpace(parts[0])
	}
	doc.Find(`a[rel="tag"]`).Each(func(_ int, sel *goquery.Selection) {
		if tag := strings.TrimSpace(sel.Text()); tag != "" {
			entry.Tags = append(entry.Tags, tag)
		}
	})

	s.Add(entry)
	return nil
}

// Build converts an index entry into its fingerprint: the normalized word
// union of title, description, primary keyword and tags, minus stop words.
func Build(entry IndexEntry, stop textnorm.Stopwords) core.ContentFingerprint {
	titleWords := textnorm.Normalize(entry.Title, stop, 0)

	tagWords := make(map[string]struct{})
	tags := make([]string, 0, len(entry.Tags))
	for _, tag := range entry.Tags {
		tags = append(tags, strings.ToLower(strings.TrimSpace(tag)))
		for w := range textnorm.Normalize(tag, stop, 0) {
			tagWords[w] = struct{}{}
		}
	}

	words := textnorm.Union(
		titleWords,
		textnorm.Normalize(entry.Description, stop, 0),
		textnorm.Normalize(entry.PrimaryKeyword, stop, 0),
		tagWords,
	)

	return core.ContentFingerprint{
		ID:             entry.ID,
		Title:          entry.Title,
		PrimaryKeyword: strings.ToLower(strings.TrimSpace(entry.PrimaryKeyword)),
		Tags:           tags,
		TitleWords:     titleWords,
		TagWords:       tagWords,
		Words:          words,
	}
}
