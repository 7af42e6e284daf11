package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"copydesk/internal/dedup"
	"copydesk/internal/discovery"
	"copydesk/internal/render"
)

// NewDiscoverCmd creates the discover command.
func NewDiscoverCmd() *cobra.Command {
	var (
		limit         int
		showBreakdown bool
	)

	cmd := &cobra.Command{
		Use:   "discover [category]",
		Short: "Find and rank content opportunities for a category",
		Long: `Discover fuses AI-brainstormed topics with keyword-research data,
scores every candidate 0-100, drops topics already covered by the
published site, and prints the ranked result.

Examples:
  copydesk discover bankruptcy
  copydesk discover bankruptcy --limit 5 --breakdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			svcs, err := buildServices(ctx, cfg)
			if err != nil {
				return err
			}
			cat, err := resolveCategory(cfg, args[0])
			if err != nil {
				return err
			}

			detector := dedup.NewDetector()
			if cfg.Discovery.JaccardThreshold > 0 {
				detector.JaccardThreshold = cfg.Discovery.JaccardThreshold
			}

			orch := discovery.NewOrchestrator(
				svcs.brainstormer,
				svcs.keywordSvc,
				svcs.estimator,
				detector,
				loadFingerprints(cfg),
				discoveryConfig(cfg),
			)

			ideas, err := orch.Discover(ctx, cat)
			if err != nil {
				return fmt.Errorf("discovery failed: %w", err)
			}
			if limit > 0 && limit < len(ideas) {
				ideas = ideas[:limit]
			}

			fmt.Println(render.Ideas(ideas))
			if showBreakdown {
				for _, idea := range ideas {
					fmt.Println(render.Breakdown(idea))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "show only the top N ideas")
	cmd.Flags().BoolVar(&showBreakdown, "breakdown", false, "print per-factor sub-scores for each idea")
	return cmd
}
