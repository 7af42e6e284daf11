package handlers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"copydesk/internal/core"
	"copydesk/internal/dedup"
	"copydesk/internal/generation"
	"copydesk/internal/logger"
	"copydesk/internal/render"
)

// NewGenerateCmd creates the generate command.
func NewGenerateCmd() *cobra.Command {
	var (
		category  string
		shortForm bool
		outDir    string
		skipDedup bool
	)

	cmd := &cobra.Command{
		Use:   "generate [keyword]",
		Short: "Generate an article for a keyword through the retry pipeline",
		Long: `Generate runs one content item through the bounded retry loop with
escalating length requirements, resolves its image set through the tiered
fallback, and writes the result as markdown.

Topics that duplicate published coverage are rejected before any
generation call is spent on them.

Examples:
  copydesk generate "bankruptcy asset auction" --category bankruptcy
  copydesk generate "case closure update" --short`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			keyword := args[0]

			store := loadFingerprints(cfg)
			if !skipDedup {
				verdict := dedup.NewDetector().Check(keyword, store.Fingerprints())
				if verdict.IsDuplicate {
					// Business rule, not an error state worth a retry.
					fmt.Println(render.Verdict(keyword, verdict))
					return fmt.Errorf("refusing to generate a duplicate topic: %s", verdict.Reason)
				}
			}

			svcs, err := buildServices(ctx, cfg)
			if err != nil {
				return err
			}

			form := generation.FormLong
			if shortForm {
				form = generation.FormShort
			}

			orch := generation.NewOrchestrator(svcs.generator, generationConfig(cfg))
			content, attempts, err := orch.GenerateWithRetry(ctx, generation.Request{
				Keyword:  keyword,
				Category: category,
				Form:     form,
			})
			fmt.Println(render.Attempts(attempts))
			if err != nil {
				var exhausted *generation.ExhaustedError
				if errors.As(err, &exhausted) {
					return fmt.Errorf("generation failed: %w", err)
				}
				return err
			}

			set := resolveImages(ctx, svcs, content.Title, keyword, category)
			fmt.Println(render.Resources(set))

			path, err := writeMarkdown(outDir, keyword, content)
			if err != nil {
				return err
			}
			logger.Info("content written", "path", path, "words", content.WordCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "category context passed to the generator")
	cmd.Flags().BoolVar(&shortForm, "short", false, "generate the short closure form instead of a long-form article")
	cmd.Flags().StringVar(&outDir, "out", "drafts", "directory to write the generated markdown into")
	cmd.Flags().BoolVar(&skipDedup, "skip-dedupe", false, "generate even when the topic duplicates published coverage")
	return cmd
}

func writeMarkdown(dir, keyword string, content core.GeneratedContent) (string, error) {
	if dir == "" {
		dir = "drafts"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.WriteString(fmt.Sprintf("title: %q\n", content.Title))
	sb.WriteString(fmt.Sprintf("description: %q\n", content.Description))
	sb.WriteString(fmt.Sprintf("keyword: %q\n", keyword))
	sb.WriteString(fmt.Sprintf("tags: [%s]\n", strings.Join(content.Tags, ", ")))
	sb.WriteString("---\n\n")
	sb.WriteString(content.Body)
	sb.WriteString("\n")

	path := filepath.Join(dir, slugify(keyword)+".md")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var sb strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastDash = false
		case !lastDash:
			sb.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(sb.String(), "-")
}
