package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/recallhq/recall/internal/common"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the notes watcher and re-index scheduler in the foreground",
	Long:  `Keep the notes index synchronized: watch the configured notes directory for live changes and run scheduled full re-index sweeps. Runs until interrupted.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	common.PrintBanner(common.GetVersion())

	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	if application.Watcher == nil && application.Scheduler == nil {
		return fmt.Errorf("nothing to run: enable notes.watch or set notes.reindex_schedule")
	}

	if err := application.StartBackground(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info().Str("signal", sig.String()).Msg("Shutting down")
	return nil
}
