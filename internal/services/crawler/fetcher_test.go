package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/recallhq/recall/internal/common"
)

func testCrawlerConfig() *common.CrawlerConfig {
	return &common.CrawlerConfig{
		UserAgent:         "recall-test/1.0",
		Timeout:           "5s",
		RequestsPerSecond: 100,
		MaxBodySize:       1024,
	}
}

func TestFetch(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer server.Close()

	fetcher := NewFetcher(testCrawlerConfig(), arbor.NewLogger())
	body, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, body, "hello")
	assert.Equal(t, "recall-test/1.0", gotUA)
}

func TestFetchNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(testCrawlerConfig(), arbor.NewLogger())
	_, err := fetcher.Fetch(context.Background(), server.URL)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestFetchBodySizeCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 5000)))
	}))
	defer server.Close()

	fetcher := NewFetcher(testCrawlerConfig(), arbor.NewLogger())
	body, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, body, 1024, "body must be capped at max_body_size")
}

func TestFetchCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := NewFetcher(testCrawlerConfig(), arbor.NewLogger())
	_, err := fetcher.Fetch(ctx, "http://127.0.0.1:0")
	assert.Error(t, err)
}
