package handlers

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"copydesk/internal/fingerprint"
	"copydesk/internal/logger"
)

// NewIndexCmd creates the index command.
func NewIndexCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "index [site-dir]",
		Short: "Rebuild the published-content index from a directory of HTML pages",
		Long: `Index walks a directory of published HTML pages, fingerprints each one
(title, meta description, meta keywords, rel=tag links) and writes the
JSON index file the duplicate detector reads.

Example:
  copydesk index ./public --out published.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]
			if out == "" {
				out = cfg.App.IndexFile
			}
			if out == "" {
				out = "published.json"
			}

			store := fingerprint.NewStore()
			err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() || !strings.HasSuffix(strings.ToLower(path), ".html") {
					return nil
				}
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", path, err)
				}
				defer f.Close()

				rel, err := filepath.Rel(root, path)
				if err != nil {
					rel = path
				}
				id := strings.TrimSuffix(filepath.ToSlash(rel), ".html")
				if err := store.AddHTML(id, f); err != nil {
					logger.Warn("skipping unparseable page", "path", path, "error", err.Error())
				}
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to walk %s: %w", root, err)
			}

			if err := store.SaveIndex(out); err != nil {
				return err
			}
			logger.Info("content index written", "path", out, "pages", store.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "index file to write (default from config)")
	return cmd
}
