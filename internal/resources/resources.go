// Package resources resolves the image set for a content item through a
// three-tier fallback: the photo-search service, a curated local pool, and an
// optional generative override for the hero slot. The shape generalizes to any
// "best available source, graceful degradation" lookup.
package resources

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"copydesk/internal/core"
	"copydesk/internal/logger"
	"copydesk/internal/photos"
	"copydesk/internal/textnorm"
)

// OverrideGenerator is the optional tier-3 collaborator (a generative-image
// service). Failures here are silent; the tier-1/2 result stands.
type OverrideGenerator interface {
	GenerateImage(ctx context.Context, item core.ItemSpec) (core.Resource, error)
}

// Config tunes the resolver.
type Config struct {
	RequiredCount   int  // Secondary slots to fill per item
	OverrideEnabled bool // Whether tier 3 runs at all
	PerPage         int  // Results requested per search call
}

// QueryCache memoizes photo-search results for one pipeline invocation. It is
// passed into the resolver explicitly and scoped to the run that created it,
// never shared process-wide.
type QueryCache struct {
	mu      sync.Mutex
	entries map[string][]core.Resource
}

// NewQueryCache creates an empty per-run cache.
func NewQueryCache() *QueryCache {
	return &QueryCache{entries: make(map[string][]core.Resource)}
}

func (c *QueryCache) get(query string) ([]core.Resource, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.entries[query]
	return res, ok
}

func (c *QueryCache) put(query string, res []core.Resource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[query] = res
}

// PoolImage is one entry of the curated local pool file.
type PoolImage struct {
	ID     string   `yaml:"id"`
	URL    string   `yaml:"url"`
	Thumb  string   `yaml:"thumb"`
	Alt    string   `yaml:"alt"`
	Credit string   `yaml:"credit"`
	Tags   []string `yaml:"tags"`
}

type poolFile struct {
	Images []PoolImage `yaml:"images"`
}

// LoadPool reads the curated image pool (YAML).
func LoadPool(path string) ([]PoolImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image pool %s: %w", path, err)
	}
	var parsed poolFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse image pool %s: %w", path, err)
	}
	return parsed.Images, nil
}

// DefaultResource is the hard-coded last-resort image. A slot is never left
// empty.
func DefaultResource() core.Resource {
	return core.Resource{
		ID:     "default-cover",
		URL:    "/assets/default-cover.jpg",
		Alt:    "Abstract cover image",
		Source: "default",
	}
}

// Resolver resolves resource sets for content items.
type Resolver struct {
	photos   photos.Service
	pool     []PoolImage
	override OverrideGenerator
	cache    *QueryCache
	cfg      Config
	stop     textnorm.Stopwords
}

// NewResolver wires a resolver. cache must not be nil; override may be nil
// when the tier-3 flag is off.
func NewResolver(svc photos.Service, pool []PoolImage, override OverrideGenerator, cache *QueryCache, cfg Config) *Resolver {
	if cfg.RequiredCount <= 0 {
		cfg.RequiredCount = 3
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = 10
	}
	return &Resolver{
		photos:   svc,
		pool:     pool,
		override: override,
		cache:    cache,
		cfg:      cfg,
		stop:     textnorm.GeneralStopwords(),
	}
}

// Resolve fills the resource set for one item. The returned set always has a
// non-nil primary and exactly the required number of secondary resources,
// degrading search → pool → default.
func (r *Resolver) Resolve(ctx context.Context, item core.ItemSpec, required int) (core.ResolvedResourceSet, error) {
	if required <= 0 {
		required = r.cfg.RequiredCount
	}

	// Tier 1: specific query first, one broadened retry on zero results.
	found := r.search(ctx, specificQuery(item))
	if len(found) == 0 {
		found = r.search(ctx, broadQuery(item))
	}

	var set core.ResolvedResourceSet
	seen := make(map[string]bool)
	if len(found) > 0 {
		primary := found[0]
		set.Primary = &primary
		seen[primary.ID] = true
		for _, res := range found[1:] {
			if len(set.Secondary) == required {
				break
			}
			if seen[res.ID] {
				continue
			}
			seen[res.ID] = true
			set.Secondary = append(set.Secondary, res)
		}
	}

	// Tier 2: backfill incomplete results from the curated pool, best tag
	// overlap first.
	if len(set.Secondary) < required {
		for _, res := range r.rankPool(item) {
			if len(set.Secondary) == required {
				break
			}
			if seen[res.ID] {
				continue
			}
			seen[res.ID] = true
			set.Secondary = append(set.Secondary, res)
		}
	}

	// Last resort: the default resource, rather than an empty slot.
	if set.Primary == nil {
		def := DefaultResource()
		set.Primary = &def
	}
	for len(set.Secondary) < required {
		set.Secondary = append(set.Secondary, DefaultResource())
	}

	// Tier 3: generative override replaces the primary slot only. Failures
	// keep the tier-1/2 result and are not surfaced.
	if r.cfg.OverrideEnabled && r.override != nil {
		generated, err := r.override.GenerateImage(ctx, item)
		if err != nil {
			logger.Debug("override image generation failed, keeping resolved primary",
				"keyword", item.Keyword, "error", err.Error())
		} else {
			generated.Generated = true
			generated.Source = "generated"
			set.Override = &generated
			set.Primary = &generated
		}
	}

	return set, nil
}

// search queries the photo service through the per-run cache. Search failures
// degrade to an empty result; lower tiers cover the gap.
func (r *Resolver) search(ctx context.Context, query string) []core.Resource {
	if query == "" {
		return nil
	}
	if cached, ok := r.cache.get(query); ok {
		return cached
	}
	found, err := r.photos.Search(ctx, query, r.cfg.PerPage)
	if err != nil {
		logger.Warn("photo search failed, falling through to lower tiers",
			"query", query, "error", err.Error())
		found = nil
	}
	r.cache.put(query, found)
	return found
}

// rankPool orders the curated pool by tag overlap with the item's category
// and tags, stable on pool order for equal overlap.
func (r *Resolver) rankPool(item core.ItemSpec) []core.Resource {
	itemWords := textnorm.Union(
		textnorm.Normalize(item.Category, r.stop, 0),
		textnorm.Normalize(strings.Join(item.Tags, " "), r.stop, 0),
	)

	type ranked struct {
		res     core.Resource
		overlap int
	}
	out := make([]ranked, 0, len(r.pool))
	for _, img := range r.pool {
		tagWords := textnorm.Normalize(strings.Join(img.Tags, " "), r.stop, 0)
		overlap := 0
		for w := range tagWords {
			if _, ok := itemWords[w]; ok {
				overlap++
			}
		}
		out = append(out, ranked{
			res: core.Resource{
				ID:       img.ID,
				URL:      img.URL,
				ThumbURL: img.Thumb,
				Alt:      img.Alt,
				Credit:   img.Credit,
				Tags:     img.Tags,
				Source:   "pool",
			},
			overlap: overlap,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].overlap > out[j].overlap })

	resources := make([]core.Resource, len(out))
	for i, entry := range out {
		resources[i] = entry.res
	}
	return resources
}

// specificQuery builds the tier-1 query from the most specific terms
// available: the item's title, falling back to its keyword.
func specificQuery(item core.ItemSpec) string {
	title := strings.TrimSpace(item.Title)
	if title != "" {
		return title
	}
	return strings.TrimSpace(item.Keyword)
}

// broadQuery is the category-level fallback used when the specific query
// returns nothing.
func broadQuery(item core.ItemSpec) string {
	if item.Category != "" {
		return item.Category
	}
	return strings.TrimSpace(item.Keyword)
}
