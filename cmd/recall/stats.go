package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge store statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	stats, err := application.StorageManager.VectorStorage().Stats()
	if err != nil {
		return err
	}

	fmt.Printf("Store: %s\n", stats.DBPath)
	fmt.Printf("Documents: %d across %d collections\n", stats.TotalDocuments, len(stats.Collections))
	for _, coll := range stats.Collections {
		fmt.Printf("  %-20s %d\n", coll.ID, coll.DocumentCount)
	}

	noteStats, err := application.NoteIndexer.Stats(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Notes: %d chunks from %d files\n", noteStats.TotalChunks, noteStats.TotalFiles)
	return nil
}
