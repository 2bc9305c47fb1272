package retriever

import (
	"fmt"
	"strings"

	"github.com/recallhq/recall/internal/models"
)

// BuildContext renders ranked documents into a numbered, source-annotated
// context string. Documents are included whole, in order, until the character
// budget would be exceeded; later documents are dropped, never truncated.
func (s *Service) BuildContext(docs []models.RetrievedDocument, maxChars int) string {
	if len(docs) == 0 || maxChars <= 0 {
		return ""
	}

	var b strings.Builder
	used := 0
	for i, doc := range docs {
		block := fmt.Sprintf("[%d] 来源: %s\n%s\n", i+1, sourceName(doc.Document), doc.Document.Content)
		blockLen := len([]rune(block))
		if used+blockLen > maxChars {
			break
		}
		b.WriteString(block)
		used += blockLen
	}
	return b.String()
}

// sourceName picks the most readable source label available
func sourceName(doc *models.Document) string {
	if doc.Metadata != nil {
		if name, ok := doc.Metadata["file_name"].(string); ok && name != "" {
			return name
		}
		if title, ok := doc.Metadata["title"].(string); ok && title != "" {
			return title
		}
		if path, ok := doc.Metadata["file_path"].(string); ok && path != "" {
			return path
		}
	}
	return doc.ID
}
