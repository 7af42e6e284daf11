// Package config loads application configuration from config files,
// environment variables and .env files, in that order of increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App        App        `mapstructure:"app"`
	Gemini     Gemini     `mapstructure:"gemini"`
	Keywords   Keywords   `mapstructure:"keywords"`
	Photos     Photos     `mapstructure:"photos"`
	Discovery  Discovery  `mapstructure:"discovery"`
	Generation Generation `mapstructure:"generation"`
	Resources  Resources  `mapstructure:"resources"`
}

// App holds general application configuration.
type App struct {
	LogLevel  string `mapstructure:"log_level"`
	DataDir   string `mapstructure:"data_dir"`
	IndexFile string `mapstructure:"index_file"` // Published-content index (JSON)
	Offline   bool   `mapstructure:"offline"`    // Use mock services instead of live APIs
}

// Gemini holds the LLM service configuration.
type Gemini struct {
	APIKey          string  `mapstructure:"api_key"`
	Model           string  `mapstructure:"model"`
	GenerationModel string  `mapstructure:"generation_model"` // Long-form generation, defaults to Model
	ImageModel      string  `mapstructure:"image_model"`      // Generated cover images, when the override is on
	Temperature     float32 `mapstructure:"temperature"`
	Timeout         string  `mapstructure:"timeout"`
}

// Keywords holds the keyword-data service configuration.
type Keywords struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout string `mapstructure:"timeout"`
}

// Photos holds the photo/resource service configuration.
type Photos struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout string `mapstructure:"timeout"`
	PerPage int    `mapstructure:"per_page"`
}

// Discovery tunes the idea-discovery pipeline. The relevance thresholds are
// hand-tuned heuristics with no derivation behind them; they are configuration
// precisely so deployments can recalibrate them per niche.
type Discovery struct {
	SeedsFile        string  `mapstructure:"seeds_file"`        // Per-category seed lists (YAML)
	BrainstormCount  int     `mapstructure:"brainstorm_count"`  // Topics requested from the brainstorm pass
	JaccardThreshold float64 `mapstructure:"jaccard_threshold"` // Duplicate cutoff for the word-overlap fallback
	MinDomainWords   int     `mapstructure:"min_domain_words"`  // Relevance filter: domain-vocabulary words alone
	MinSeedWords     int     `mapstructure:"min_seed_words"`    // Relevance filter: seed-derived words alone
	MinMixedWords    int     `mapstructure:"min_mixed_words"`   // Relevance filter: one of each
	MaxSuggestions   int     `mapstructure:"max_suggestions"`   // Cap on non-brainstormed suggestions scored
}

// Generation tunes the content-generation retry loop.
type Generation struct {
	MaxAttempts       int    `mapstructure:"max_attempts"`
	BaselineMinWords  int    `mapstructure:"baseline_min_words"`  // Asked of the generator on attempt 1
	EscalatedMinWords int    `mapstructure:"escalated_min_words"` // Asked on every later attempt
	AcceptLongForm    int    `mapstructure:"accept_long_form"`    // Acceptance floor, long-form, non-final attempts
	AcceptLongFinal   int    `mapstructure:"accept_long_final"`   // Relaxed long-form floor on the final attempt
	AcceptShortForm   int    `mapstructure:"accept_short_form"`   // Acceptance floor, short-form
	AcceptShortFinal  int    `mapstructure:"accept_short_final"`  // Relaxed short-form floor on the final attempt
	Workers           int    `mapstructure:"workers"`             // Concurrent items in batch generation
	RequestDelay      string `mapstructure:"request_delay"`       // Pause between sequential calls to the service
}

// Resources tunes the tiered image resolver.
type Resources struct {
	PoolFile        string `mapstructure:"pool_file"`        // Curated local pool (YAML)
	RequiredCount   int    `mapstructure:"required_count"`   // Secondary slots to fill per item
	OverrideEnabled bool   `mapstructure:"override_enabled"` // Tier 3 generative override
}

// Load reads configuration in priority order: defaults, config file,
// environment (COPYDESK_* with .env support).
func Load(cfgFile string) (*Config, error) {
	loadEnvFile()
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".copydesk")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("COPYDESK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && cfgFile != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// The Gemini key commonly arrives via its own env var rather than the
	// prefixed form.
	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	return &cfg, nil
}

func loadEnvFile() {
	for _, candidate := range []string{".env", filepath.Join(os.Getenv("HOME"), ".copydesk.env")} {
		if _, err := os.Stat(candidate); err == nil {
			_ = godotenv.Load(candidate)
		}
	}
}

func setDefaults() {
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.data_dir", ".copydesk")
	viper.SetDefault("app.index_file", "published.json")

	viper.SetDefault("gemini.model", "gemini-flash-lite-latest")
	viper.SetDefault("gemini.temperature", 0.7)
	viper.SetDefault("gemini.timeout", "120s")

	viper.SetDefault("keywords.timeout", "30s")
	viper.SetDefault("photos.timeout", "30s")
	viper.SetDefault("photos.per_page", 10)

	viper.SetDefault("discovery.brainstorm_count", 10)
	viper.SetDefault("discovery.jaccard_threshold", 0.5)
	viper.SetDefault("discovery.min_domain_words", 2)
	viper.SetDefault("discovery.min_seed_words", 2)
	viper.SetDefault("discovery.min_mixed_words", 2)
	viper.SetDefault("discovery.max_suggestions", 25)

	viper.SetDefault("generation.max_attempts", 4)
	viper.SetDefault("generation.baseline_min_words", 1500)
	viper.SetDefault("generation.escalated_min_words", 2000)
	viper.SetDefault("generation.accept_long_form", 1400)
	viper.SetDefault("generation.accept_long_final", 1000)
	viper.SetDefault("generation.accept_short_form", 750)
	viper.SetDefault("generation.accept_short_final", 600)
	viper.SetDefault("generation.workers", 2)
	viper.SetDefault("generation.request_delay", "3s")

	viper.SetDefault("resources.required_count", 3)
	viper.SetDefault("resources.override_enabled", false)
}

// Duration parses a duration config value, falling back when unset or invalid.
func Duration(value string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	return fallback
}
