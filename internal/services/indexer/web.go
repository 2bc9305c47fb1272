package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/recallhq/recall/internal/common"
	"github.com/recallhq/recall/internal/interfaces"
	"github.com/recallhq/recall/internal/models"
	"github.com/recallhq/recall/internal/services/crawler"
	"github.com/recallhq/recall/internal/services/splitter"
)

// WebService fetches web pages, extracts readable content, and stores the
// chunks into caller-chosen knowledge-base collections. Re-storing a URL
// replaces its previous chunks.
type WebService struct {
	storage   interfaces.VectorStorage
	embedder  interfaces.EmbeddingService
	splitter  *splitter.Splitter
	fetcher   *crawler.Fetcher
	extractor *crawler.Extractor
	config    *common.Config
	logger    arbor.ILogger
}

// NewWebService creates a web indexer
func NewWebService(storage interfaces.VectorStorage, embedder interfaces.EmbeddingService, split *splitter.Splitter, fetcher *crawler.Fetcher, extractor *crawler.Extractor, config *common.Config, logger arbor.ILogger) (*WebService, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if split == nil {
		return nil, fmt.Errorf("splitter is required")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if extractor == nil {
		return nil, fmt.Errorf("extractor is required")
	}

	return &WebService{
		storage:   storage,
		embedder:  embedder,
		splitter:  split,
		fetcher:   fetcher,
		extractor: extractor,
		config:    config,
		logger:    logger,
	}, nil
}

// CrawlAndStore fetches the URL, extracts its content, and stores the chunks
// into the collection.
func (s *WebService) CrawlAndStore(ctx context.Context, collectionID, url string) (*models.CrawlResult, error) {
	if collectionID == "" {
		return nil, fmt.Errorf("collection id is required")
	}
	if url == "" {
		return nil, fmt.Errorf("url is required")
	}

	jobID := common.NewCrawlID()
	started := time.Now()

	s.logger.Info().
		Str("job_id", jobID).
		Str("url", url).
		Str("collection", collectionID).
		Msg("Starting crawl")

	html, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	page, err := s.extractor.Extract(html, url)
	if err != nil {
		return nil, fmt.Errorf("failed to extract content from %s: %w", url, err)
	}

	chunkCount, err := s.StorePage(ctx, collectionID, page)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("job_id", jobID).
		Str("url", url).
		Int("chunks", chunkCount).
		Dur("elapsed", time.Since(started)).
		Msg("Crawl complete")

	return &models.CrawlResult{
		JobID:      jobID,
		URL:        url,
		Title:      page.Title,
		Collection: collectionID,
		ChunkCount: chunkCount,
	}, nil
}

// StorePage chunks an extracted page and stores its documents, replacing any
// previous documents for the same URL. Returns the number of chunks written.
func (s *WebService) StorePage(ctx context.Context, collectionID string, page *models.WebPage) (int, error) {
	if page == nil {
		return 0, fmt.Errorf("page is required")
	}
	if page.URL == "" {
		return 0, fmt.Errorf("page url is required")
	}

	if err := s.storage.CreateCollection(collectionID, s.embedder.Dimension()); err != nil {
		return 0, fmt.Errorf("failed to create collection %s: %w", collectionID, err)
	}

	if _, err := s.DeletePage(ctx, collectionID, page.URL); err != nil {
		return 0, err
	}

	chunks := s.splitter.SplitMarkdown(page.Markdown)
	if len(chunks) == 0 {
		s.logger.Warn().Str("url", page.URL).Msg("Page produced no chunks")
		return 0, nil
	}

	docs := make([]*models.Document, len(chunks))
	for i, chunk := range chunks {
		docMeta := map[string]interface{}{
			"file_path":  page.URL,
			"url":        page.URL,
			"title":      page.Title,
			"fetched_at": page.FetchedAt.Format(time.RFC3339),
		}
		if page.Author != "" {
			docMeta["author"] = page.Author
		}
		if page.Published != "" {
			docMeta["published"] = page.Published
		}
		for key, value := range chunk.Metadata {
			docMeta[key] = value
		}
		for key, value := range page.Metadata {
			docMeta[key] = value
		}
		docs[i] = &models.Document{
			ID:       fmt.Sprintf("%s#%d", page.URL, i),
			Content:  chunk.Content,
			Metadata: docMeta,
		}
	}

	written, err := s.storage.AddDocuments(ctx, collectionID, docs, s.embedder, s.config.Embedding.BatchSize)
	if err != nil {
		return written, fmt.Errorf("failed to store page chunks: %w", err)
	}
	return written, nil
}

// DeletePage removes all chunks previously stored for the URL
func (s *WebService) DeletePage(ctx context.Context, collectionID, url string) (int, error) {
	deleted, err := s.storage.DeleteDocumentsBySource(collectionID, url)
	if err != nil {
		return 0, fmt.Errorf("failed to delete page documents: %w", err)
	}
	if deleted > 0 {
		s.logger.Debug().
			Str("url", url).
			Str("collection", collectionID).
			Int("deleted", deleted).
			Msg("Removed stale page chunks")
	}
	return deleted, nil
}
