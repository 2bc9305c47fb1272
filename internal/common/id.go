package common

import (
	"github.com/google/uuid"
)

// NewCrawlID generates a unique crawl job ID with the "crawl_" prefix
// Format: crawl_<uuid>
func NewCrawlID() string {
	return "crawl_" + uuid.New().String()
}
