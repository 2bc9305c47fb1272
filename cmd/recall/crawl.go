package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var crawlCollection string

var crawlCmd = &cobra.Command{
	Use:   "crawl <url>...",
	Short: "Crawl web pages into a knowledge collection",
	Long:  `Fetch each URL, extract its readable content as markdown, and store the chunks into the target collection. Re-crawling a URL replaces its previous chunks.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCrawl,
}

func init() {
	crawlCmd.Flags().StringVar(&crawlCollection, "collection", "web", "Target collection")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	for _, url := range args {
		result, err := application.WebIndexer.CrawlAndStore(cmd.Context(), crawlCollection, url)
		if err != nil {
			return fmt.Errorf("failed to crawl %s: %w", url, err)
		}
		fmt.Printf("Crawled %s: %q, %d chunks into %s\n", result.URL, result.Title, result.ChunkCount, result.Collection)
	}
	return nil
}
