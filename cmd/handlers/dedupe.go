package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"copydesk/internal/dedup"
	"copydesk/internal/render"
)

// NewDedupeCmd creates the dedupe command.
func NewDedupeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dedupe [keyword]",
		Short: "Check whether a topic would duplicate published coverage",
		Long: `Dedupe runs a candidate keyword through the duplicate-detection cascade
against the published-content index and prints the verdict, including the
closest existing item even when the topic is clear.

Example:
  copydesk dedupe "chapter 11 restructuring"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyword := args[0]

			detector := dedup.NewDetector()
			if cfg.Discovery.JaccardThreshold > 0 {
				detector.JaccardThreshold = cfg.Discovery.JaccardThreshold
			}

			store := loadFingerprints(cfg)
			verdict := detector.Check(keyword, store.Fingerprints())
			fmt.Println(render.Verdict(keyword, verdict))
			return nil
		},
	}
	return cmd
}
