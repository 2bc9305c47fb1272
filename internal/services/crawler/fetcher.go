package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/recallhq/recall/internal/common"
)

// Fetcher retrieves raw HTML over HTTP with rate limiting. JavaScript
// rendering is not attempted; pages that need it are out of scope.
type Fetcher struct {
	client      *http.Client
	limiter     *rate.Limiter
	userAgent   string
	maxBodySize int64
	logger      arbor.ILogger
}

// NewFetcher creates a rate-limited HTTP fetcher
func NewFetcher(config *common.CrawlerConfig, logger arbor.ILogger) *Fetcher {
	rps := config.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	maxBody := config.MaxBodySize
	if maxBody <= 0 {
		maxBody = 10 * 1024 * 1024
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: config.RequestTimeout(),
		},
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		userAgent:   config.UserAgent,
		maxBodySize: maxBody,
		logger:      logger,
	}
}

// Fetch retrieves the URL's body as a string, honoring the rate limit and the
// body size cap
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch returned status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	f.logger.Debug().
		Str("url", url).
		Int("bytes", len(body)).
		Msg("Fetched page")
	return string(body), nil
}
