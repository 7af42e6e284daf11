package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"copydesk/internal/dedup"
	"copydesk/internal/generation"
	"copydesk/internal/logger"
	"copydesk/internal/render"
)

// NewBatchCmd creates the batch command.
func NewBatchCmd() *cobra.Command {
	var (
		category  string
		shortForm bool
		outDir    string
		workers   int
	)

	cmd := &cobra.Command{
		Use:   "batch [keyword]...",
		Short: "Generate articles for several keywords concurrently",
		Long: `Batch runs multiple keywords through the generation retry loop with a
bounded worker pool. Items that duplicate published coverage are skipped
up front; one item failing never aborts the others.

Example:
  copydesk batch "bankruptcy asset auction" "creditor committee roles" --category bankruptcy`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			svcs, err := buildServices(ctx, cfg)
			if err != nil {
				return err
			}

			form := generation.FormLong
			if shortForm {
				form = generation.FormShort
			}

			store := loadFingerprints(cfg)
			detector := dedup.NewDetector()
			if cfg.Discovery.JaccardThreshold > 0 {
				detector.JaccardThreshold = cfg.Discovery.JaccardThreshold
			}

			var items []generation.Request
			for _, keyword := range args {
				verdict := detector.Check(keyword, store.Fingerprints())
				if verdict.IsDuplicate {
					logger.Warn("skipping duplicate topic", "keyword", keyword, "reason", verdict.Reason)
					continue
				}
				items = append(items, generation.Request{
					Keyword:  keyword,
					Category: category,
					Form:     form,
				})
			}
			if len(items) == 0 {
				return fmt.Errorf("nothing to generate: every keyword duplicates published coverage")
			}

			if workers <= 0 {
				workers = cfg.Generation.Workers
			}
			orch := generation.NewOrchestrator(svcs.generator, generationConfig(cfg))
			results := orch.GenerateBatch(ctx, items, workers)

			failed := 0
			for _, res := range results {
				fmt.Printf("== %s ==\n", res.Request.Keyword)
				fmt.Println(render.Attempts(res.Attempts))
				if res.Err != nil {
					failed++
					continue
				}
				set := resolveImages(ctx, svcs, res.Content.Title, res.Request.Keyword, category)
				fmt.Println(render.Resources(set))
				path, err := writeMarkdown(outDir, res.Request.Keyword, res.Content)
				if err != nil {
					logger.Error("failed to write batch item", err, "keyword", res.Request.Keyword)
					failed++
					continue
				}
				logger.Info("content written", "path", path, "words", res.Content.WordCount)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d items failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "category context passed to the generator")
	cmd.Flags().BoolVar(&shortForm, "short", false, "generate the short closure form instead of long-form articles")
	cmd.Flags().StringVar(&outDir, "out", "drafts", "directory to write generated markdown into")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent items (default from config)")
	return cmd
}
