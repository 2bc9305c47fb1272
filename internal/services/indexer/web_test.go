package indexer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/recallhq/recall/internal/interfaces"
	"github.com/recallhq/recall/internal/models"
	"github.com/recallhq/recall/internal/services/crawler"
	"github.com/recallhq/recall/internal/services/splitter"
)

func newTestWeb(t *testing.T, embedder interfaces.EmbeddingService) (*WebService, interfaces.VectorStorage) {
	t.Helper()

	storage, config := testSetup(t)
	split, err := splitter.New(config.Splitter.ChunkSize, config.Splitter.ChunkOverlap)
	require.NoError(t, err)

	logger := arbor.NewLogger()
	config.Crawler.RequestsPerSecond = 100
	fetcher := crawler.NewFetcher(&config.Crawler, logger)
	extractor := crawler.NewExtractor(logger)

	web, err := NewWebService(storage, embedder, split, fetcher, extractor, config, logger)
	require.NoError(t, err)
	return web, storage
}

func TestCrawlAndStore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Go Channels</title></head><body><article><p>Channels connect goroutines.</p></article></body></html>`))
	}))
	defer server.Close()

	embedder := &vocabEmbedder{vocab: []string{"channels", "goroutines"}}
	web, storage := newTestWeb(t, embedder)
	ctx := context.Background()

	result, err := web.CrawlAndStore(ctx, "kb", server.URL)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Equal(t, "Go Channels", result.Title)
	assert.Equal(t, "kb", result.Collection)
	assert.Equal(t, 1, result.ChunkCount)
	assert.NotEmpty(t, result.JobID)

	results, err := storage.Search(ctx, "kb", "channels goroutines", embedder, 5, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Document.Content, "Channels connect goroutines.")
	assert.Equal(t, "Go Channels", results[0].Document.Metadata["title"])
	assert.Equal(t, server.URL, results[0].Document.Metadata["url"])
}

func TestStorePageReplacesPreviousChunks(t *testing.T) {
	embedder := &vocabEmbedder{vocab: []string{"old", "new"}}
	web, storage := newTestWeb(t, embedder)
	ctx := context.Background()

	page := &models.WebPage{
		URL:       "https://example.com/p",
		Title:     "Page",
		Markdown:  "old content",
		FetchedAt: time.Now(),
	}
	chunks, err := web.StorePage(ctx, "kb", page)
	require.NoError(t, err)
	assert.Equal(t, 1, chunks)

	page.Markdown = "new content"
	chunks, err = web.StorePage(ctx, "kb", page)
	require.NoError(t, err)
	assert.Equal(t, 1, chunks)

	count, err := storage.DocumentCount("kb")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "re-storing a URL must replace its chunks")

	results, err := storage.Search(ctx, "kb", "new", embedder, 5, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Document.Content, "new content")
}

func TestDeletePage(t *testing.T) {
	embedder := &vocabEmbedder{vocab: []string{"x"}}
	web, storage := newTestWeb(t, embedder)
	ctx := context.Background()

	page := &models.WebPage{
		URL:       "https://example.com/p",
		Title:     "Page",
		Markdown:  "x marks the spot",
		FetchedAt: time.Now(),
	}
	_, err := web.StorePage(ctx, "kb", page)
	require.NoError(t, err)

	deleted, err := web.DeletePage(ctx, "kb", "https://example.com/p")
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	count, err := storage.DocumentCount("kb")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCrawlAndStoreValidation(t *testing.T) {
	embedder := &vocabEmbedder{vocab: []string{"x"}}
	web, _ := newTestWeb(t, embedder)
	ctx := context.Background()

	_, err := web.CrawlAndStore(ctx, "", "https://example.com")
	assert.Error(t, err)
	_, err = web.CrawlAndStore(ctx, "kb", "")
	assert.Error(t, err)
}
