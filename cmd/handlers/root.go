/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"copydesk/internal/config"
	"copydesk/internal/logger"
)

var (
	cfgFile string
	offline bool
	cfg     *config.Config
)

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "copydesk",
		Short: "Copydesk decides what to write about, what's already covered, and when drafts are good enough to ship.",
		Long: `Copydesk is the content-operations pipeline behind the site: it fuses
AI-brainstormed topic ideas with keyword-research data into ranked
opportunities, flags topics that would duplicate published coverage,
drives article generation through a bounded retry loop, and resolves
images for each piece through a tiered fallback.`,
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.copydesk.yaml)")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "use canned mock services instead of live APIs")

	rootCmd.AddCommand(NewDiscoverCmd())
	rootCmd.AddCommand(NewDedupeCmd())
	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewBatchCmd())
	rootCmd.AddCommand(NewImagesCmd())
	rootCmd.AddCommand(NewIndexCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig loads configuration and initializes logging before any
// subcommand runs.
func initConfig() {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if offline {
		loaded.App.Offline = true
	}
	cfg = loaded
	logger.Init(cfg.App.LogLevel)
}
