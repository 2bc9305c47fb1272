package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/recallhq/recall/internal/services/indexer"
)

var indexDir string

var indexCmd = &cobra.Command{
	Use:   "index [file...]",
	Short: "Index note files into the knowledge store",
	Long:  `Index markdown note files. With --dir, walks the directory and indexes every matching file; otherwise indexes the given files. Re-indexing a file replaces its previous chunks.`,
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexDir, "dir", "", "Index all matching files under this directory (defaults to the configured notes dir when no files are given)")
}

func runIndex(cmd *cobra.Command, args []string) error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	ctx := cmd.Context()
	started := time.Now()

	if len(args) == 0 {
		dir := indexDir
		if dir == "" {
			dir = config.Notes.Dir
		}
		if dir == "" {
			return fmt.Errorf("no files given and no notes directory configured")
		}

		notes, ok := application.NoteIndexer.(*indexer.NotesService)
		if !ok {
			return fmt.Errorf("note indexer does not support directory indexing")
		}
		chunks, err := notes.IndexDirectory(ctx, dir, config.Notes.Extensions)
		if err != nil {
			return err
		}
		fmt.Printf("Indexed %s: %d chunks in %s\n", dir, chunks, time.Since(started).Round(time.Millisecond))
		return nil
	}

	total := 0
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		metadata := map[string]interface{}{}
		if info, err := os.Stat(path); err == nil {
			metadata["modified_at"] = info.ModTime()
		}
		chunks, err := application.NoteIndexer.Index(ctx, path, string(content), metadata)
		if err != nil {
			return fmt.Errorf("failed to index %s: %w", path, err)
		}
		fmt.Printf("Indexed %s: %d chunks\n", path, chunks)
		total += chunks
	}
	fmt.Printf("Done: %d chunks in %s\n", total, time.Since(started).Round(time.Millisecond))
	return nil
}
