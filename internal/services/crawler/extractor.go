package crawler

import (
	"fmt"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/recallhq/recall/internal/models"
)

// Extractor performs best-effort readable-content extraction from HTML:
// main-content selection, markdown conversion, and metadata scraping.
type Extractor struct {
	logger arbor.ILogger
}

// NewExtractor creates a new content extractor
func NewExtractor(logger arbor.ILogger) *Extractor {
	return &Extractor{
		logger: logger,
	}
}

// Extract parses HTML and produces a WebPage ready for chunking
func (e *Extractor) Extract(html, sourceURL string) (*models.WebPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := extractTitle(doc)
	author := extractAuthor(doc)
	published := extractPublished(doc)

	// Strip non-content elements before conversion
	doc.Find("script, style, nav, footer, aside, header, iframe, noscript").Remove()

	content := doc.Find("main, article, [role='main'], #content, .content").First()
	if content.Length() == 0 {
		content = doc.Find("body")
	}

	contentHTML, err := content.Html()
	if err != nil {
		return nil, fmt.Errorf("failed to extract content HTML: %w", err)
	}

	converter := md.NewConverter(sourceURL, true, nil)
	markdown, err := converter.ConvertString(contentHTML)
	if err != nil {
		return nil, fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		// Fallback: plain text of the whole body
		markdown = strings.TrimSpace(doc.Find("body").Text())
	}

	page := &models.WebPage{
		URL:       sourceURL,
		Title:     title,
		Author:    author,
		Published: published,
		Markdown:  markdown,
		FetchedAt: time.Now(),
	}

	e.logger.Debug().
		Str("url", sourceURL).
		Str("title", title).
		Int("markdown_length", len(markdown)).
		Msg("Extracted page content")
	return page, nil
}

// extractTitle tries the title tag, Open Graph, h1, then Twitter card
func extractTitle(doc *goquery.Document) string {
	if title := doc.Find("title").First().Text(); title != "" {
		return strings.TrimSpace(title)
	}
	if ogTitle, exists := doc.Find("meta[property='og:title']").Attr("content"); exists && ogTitle != "" {
		return strings.TrimSpace(ogTitle)
	}
	if h1 := doc.Find("h1").First().Text(); h1 != "" {
		return strings.TrimSpace(h1)
	}
	if twitterTitle, exists := doc.Find("meta[name='twitter:title']").Attr("content"); exists && twitterTitle != "" {
		return strings.TrimSpace(twitterTitle)
	}
	return "Untitled"
}

func extractAuthor(doc *goquery.Document) string {
	if author, exists := doc.Find("meta[name='author']").Attr("content"); exists && author != "" {
		return strings.TrimSpace(author)
	}
	if author, exists := doc.Find("meta[property='article:author']").Attr("content"); exists && author != "" {
		return strings.TrimSpace(author)
	}
	return ""
}

func extractPublished(doc *goquery.Document) string {
	if published, exists := doc.Find("meta[property='article:published_time']").Attr("content"); exists && published != "" {
		return strings.TrimSpace(published)
	}
	if datetime, exists := doc.Find("time[datetime]").First().Attr("datetime"); exists && datetime != "" {
		return strings.TrimSpace(datetime)
	}
	return ""
}
