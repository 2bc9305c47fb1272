package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"

	"github.com/recallhq/recall/internal/app"
	"github.com/recallhq/recall/internal/common"
)

var (
	configFiles []string

	// Global state shared by subcommands, populated in rootCmd's PersistentPreRunE
	config *common.Config
	logger arbor.ILogger
)

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Personal knowledge index and retrieval engine",
	Long:  `Recall indexes notes, to-dos, and web pages into a local vector store and retrieves them with hybrid semantic and keyword search.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Startup order: config (defaults -> files -> env), then logger
		paths := configFiles
		if len(paths) == 0 {
			if _, err := os.Stat("recall.toml"); err == nil {
				paths = []string{"recall.toml"}
			}
		}

		var err error
		config, err = common.LoadFromFiles(paths...)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		logger = common.InitLogger(config)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringArrayVarP(&configFiles, "config", "c", nil,
		"Configuration file path (can be specified multiple times, later files override earlier ones)")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(todoCmd)
	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// newApp builds the application container from the loaded configuration
func newApp() (*app.App, error) {
	application, err := app.New(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return application, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
