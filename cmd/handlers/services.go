package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"copydesk/internal/config"
	"copydesk/internal/discovery"
	"copydesk/internal/fingerprint"
	"copydesk/internal/generation"
	"copydesk/internal/keywords"
	"copydesk/internal/llm"
	"copydesk/internal/core"
	"copydesk/internal/logger"
	"copydesk/internal/photos"
	"copydesk/internal/resources"
)

// services bundles the external collaborators a command needs. In offline
// mode every collaborator is a canned mock so any command runs without
// credentials.
type services struct {
	brainstormer discovery.Brainstormer
	estimator    discovery.Estimator
	keywordSvc   discovery.KeywordService
	generator    generation.Generator
	photoSvc     photos.Service
	override     resources.OverrideGenerator
}

func buildServices(ctx context.Context, cfg *config.Config) (*services, error) {
	if cfg.App.Offline {
		logger.Info("running in offline mode with mock services")
		mock := llm.NewMockClient()
		return &services{
			brainstormer: mock,
			estimator:    mock,
			keywordSvc:   keywords.NewMockService(),
			generator:    mock,
			photoSvc:     &photos.MockService{},
			override:     mock,
		}, nil
	}

	client, err := llm.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.GenerationModel, cfg.Gemini.Temperature)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	svcs := &services{
		brainstormer: client,
		estimator:    client,
		generator:    client,
		keywordSvc: keywords.NewHTTPClient(
			cfg.Keywords.BaseURL,
			cfg.Keywords.APIKey,
			config.Duration(cfg.Keywords.Timeout, 30*time.Second),
		),
		photoSvc: photos.NewHTTPClient(
			cfg.Photos.BaseURL,
			cfg.Photos.APIKey,
			config.Duration(cfg.Photos.Timeout, 30*time.Second),
		),
	}
	if cfg.Resources.OverrideEnabled {
		svcs.override = llm.NewImageGenerator(client, cfg.Gemini.ImageModel, filepath.Join(cfg.App.DataDir, "images"))
	}
	return svcs, nil
}

// buildResolver assembles the tiered image resolver with a cache scoped to
// this command invocation.
func buildResolver(cfg *config.Config, svcs *services) *resources.Resolver {
	var pool []resources.PoolImage
	if cfg.Resources.PoolFile != "" {
		loaded, err := resources.LoadPool(cfg.Resources.PoolFile)
		if err != nil {
			logger.Warn("failed to load image pool, continuing without it",
				"path", cfg.Resources.PoolFile, "error", err.Error())
		} else {
			pool = loaded
		}
	}
	return resources.NewResolver(svcs.photoSvc, pool, svcs.override, resources.NewQueryCache(), resources.Config{
		RequiredCount:   cfg.Resources.RequiredCount,
		OverrideEnabled: cfg.Resources.OverrideEnabled,
		PerPage:         cfg.Photos.PerPage,
	})
}

// resolveImages resolves the image set for one generated item. Resolution
// degrades internally; the worst case is a set of defaults, never a failure.
func resolveImages(ctx context.Context, svcs *services, title, keyword, category string) core.ResolvedResourceSet {
	set, err := buildResolver(cfg, svcs).Resolve(ctx, core.ItemSpec{
		Title:    title,
		Keyword:  keyword,
		Category: category,
	}, cfg.Resources.RequiredCount)
	if err != nil {
		logger.Warn("image resolution degraded", "keyword", keyword, "error", err.Error())
	}
	return set
}

// loadFingerprints builds the published-content fingerprint store for this
// run. A missing index file is an empty site, not an error.
func loadFingerprints(cfg *config.Config) *fingerprint.Store {
	store := fingerprint.NewStore()
	if cfg.App.IndexFile == "" {
		return store
	}
	if _, err := os.Stat(cfg.App.IndexFile); err != nil {
		logger.Warn("published-content index not found, duplicate checks run against an empty site",
			"path", cfg.App.IndexFile)
		return store
	}
	if err := store.LoadIndex(cfg.App.IndexFile); err != nil {
		logger.Error("failed to load published-content index", err, "path", cfg.App.IndexFile)
		return store
	}
	logger.Debug("fingerprint store loaded", "items", store.Len())
	return store
}

// resolveCategory looks the named category up in the seeds file, or derives a
// minimal single-seed category when no seeds file is configured.
func resolveCategory(cfg *config.Config, name string) (discovery.Category, error) {
	if cfg.Discovery.SeedsFile == "" {
		return discovery.Category{
			Name:             name,
			Seeds:            []string{name},
			DomainVocabulary: strings.Fields(name),
		}, nil
	}
	cats, err := discovery.LoadCategories(cfg.Discovery.SeedsFile)
	if err != nil {
		return discovery.Category{}, err
	}
	cat, ok := cats[strings.ToLower(name)]
	if !ok {
		return discovery.Category{}, fmt.Errorf("category %q not found in %s", name, cfg.Discovery.SeedsFile)
	}
	return cat, nil
}

func discoveryConfig(cfg *config.Config) discovery.Config {
	return discovery.Config{
		BrainstormCount: cfg.Discovery.BrainstormCount,
		MinDomainWords:  cfg.Discovery.MinDomainWords,
		MinSeedWords:    cfg.Discovery.MinSeedWords,
		MinMixedWords:   cfg.Discovery.MinMixedWords,
		MaxSuggestions:  cfg.Discovery.MaxSuggestions,
	}
}

func generationConfig(cfg *config.Config) generation.Config {
	return generation.Config{
		MaxAttempts:       cfg.Generation.MaxAttempts,
		BaselineMinWords:  cfg.Generation.BaselineMinWords,
		EscalatedMinWords: cfg.Generation.EscalatedMinWords,
		AcceptLongForm:    cfg.Generation.AcceptLongForm,
		AcceptLongFinal:   cfg.Generation.AcceptLongFinal,
		AcceptShortForm:   cfg.Generation.AcceptShortForm,
		AcceptShortFinal:  cfg.Generation.AcceptShortFinal,
		RequestDelay:      config.Duration(cfg.Generation.RequestDelay, 3*time.Second),
	}
}
