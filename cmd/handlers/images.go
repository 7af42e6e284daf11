package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"copydesk/internal/core"
	"copydesk/internal/render"
)

// NewImagesCmd creates the images command.
func NewImagesCmd() *cobra.Command {
	var (
		title    string
		category string
		tags     []string
		required int
	)

	cmd := &cobra.Command{
		Use:   "images [keyword]",
		Short: "Resolve the image set for a content item",
		Long: `Images runs the tiered resource resolver for a single item: the photo
search service first, then the curated local pool, then the default
resource, with the optional generative override replacing the hero slot.

Examples:
  copydesk images "bankruptcy asset auction" --category bankruptcy
  copydesk images "chapter 11 restructuring" --tags restructuring,creditors`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			keyword := args[0]

			svcs, err := buildServices(ctx, cfg)
			if err != nil {
				return err
			}

			item := core.ItemSpec{
				Title:    title,
				Keyword:  keyword,
				Category: category,
				Tags:     tags,
			}
			set, err := buildResolver(cfg, svcs).Resolve(ctx, item, required)
			if err != nil {
				return fmt.Errorf("image resolution failed: %w", err)
			}
			fmt.Println(render.Resources(set))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "item title used for the specific search query")
	cmd.Flags().StringVar(&category, "category", "", "category used for the broadened query and pool ranking")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "item tags used for pool ranking")
	cmd.Flags().IntVar(&required, "count", 0, "secondary slots to fill (default from config)")
	return cmd
}
