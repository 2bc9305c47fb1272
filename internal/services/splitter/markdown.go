package splitter

import (
	"regexp"
	"strings"

	"github.com/recallhq/recall/internal/models"
)

var headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)

// Section is a heading-delimited region of a markdown document
type Section struct {
	Heading string
	Content string
}

// SplitHeadings splits markdown into (heading, content) sections on heading
// lines (1-6 '#' characters). Text before the first heading becomes a section
// with an empty heading. Headings inside fenced code blocks are ignored.
func SplitHeadings(text string) []Section {
	lines := strings.Split(text, "\n")

	var sections []Section
	heading := ""
	var buf []string
	inCode := false

	flush := func() {
		content := strings.TrimSpace(strings.Join(buf, "\n"))
		if content != "" || heading != "" {
			sections = append(sections, Section{Heading: heading, Content: content})
		}
		buf = nil
	}

	for _, line := range lines {
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "```") {
			inCode = !inCode
		}
		if !inCode {
			if m := headingPattern.FindStringSubmatch(line); m != nil {
				flush()
				heading = strings.TrimSpace(m[2])
				continue
			}
		}
		buf = append(buf, line)
	}
	flush()
	return sections
}

// SplitMarkdown splits a markdown document by heading boundaries first, then
// hands oversized sections to the recursive splitter. Every chunk carries
// chunk_index, total_chunks, and (when present) heading metadata.
func (s *Splitter) SplitMarkdown(text string) []models.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	type piece struct {
		content string
		heading string
	}
	var pieces []piece
	for _, section := range SplitHeadings(text) {
		if section.Content == "" {
			continue
		}
		for _, content := range s.Split(section.Content) {
			pieces = append(pieces, piece{content: content, heading: section.Heading})
		}
	}

	chunks := make([]models.Chunk, len(pieces))
	for i, p := range pieces {
		metadata := map[string]interface{}{
			"chunk_index":  i,
			"total_chunks": len(pieces),
		}
		if p.heading != "" {
			metadata["heading"] = p.heading
		}
		chunks[i] = models.Chunk{
			Content:  p.content,
			Metadata: metadata,
		}
	}
	return chunks
}
