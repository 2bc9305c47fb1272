package models

import (
	"time"
)

// WebPage is an extracted web document ready for chunking
type WebPage struct {
	URL       string                 `json:"url"`
	Title     string                 `json:"title"`
	Author    string                 `json:"author,omitempty"`
	Published string                 `json:"published,omitempty"`
	Markdown  string                 `json:"markdown"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	FetchedAt time.Time              `json:"fetched_at"`
}

// CrawlResult reports the outcome of a crawl-and-store operation
type CrawlResult struct {
	JobID      string `json:"job_id"`
	URL        string `json:"url"`
	Title      string `json:"title"`
	Collection string `json:"collection"`
	ChunkCount int    `json:"chunk_count"`
}
