package discovery

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"copydesk/internal/textnorm"
)

// Category describes one content vertical: the seed keywords used for broad
// suggestion discovery and the domain vocabulary used to filter tangential
// suggestions back out.
type Category struct {
	Name             string   `yaml:"name"`
	Seeds            []string `yaml:"seeds"`
	DomainVocabulary []string `yaml:"domain_vocabulary"`
}

type seedsFile struct {
	Categories []Category `yaml:"categories"`
}

// LoadCategories reads the per-category seed list file (YAML), keyed by
// lowercased category name.
func LoadCategories(path string) (map[string]Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seeds file %s: %w", path, err)
	}
	var parsed seedsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse seeds file %s: %w", path, err)
	}
	out := make(map[string]Category, len(parsed.Categories))
	for _, cat := range parsed.Categories {
		if cat.Name == "" {
			return nil, fmt.Errorf("seeds file %s contains a category without a name", path)
		}
		out[strings.ToLower(cat.Name)] = cat
	}
	return out, nil
}

// domainWords returns the normalized word set of the category's domain
// vocabulary.
func (c Category) domainWords(stop textnorm.Stopwords) map[string]struct{} {
	return textnorm.Normalize(strings.Join(c.DomainVocabulary, " "), stop, 0)
}

// seedWords returns the normalized word set derived from the category's seed
// keywords.
func (c Category) seedWords(stop textnorm.Stopwords) map[string]struct{} {
	return textnorm.Normalize(strings.Join(c.Seeds, " "), stop, 0)
}
