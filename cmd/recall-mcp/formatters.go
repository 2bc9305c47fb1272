package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/recallhq/recall/internal/models"
)

// formatNoteHits formats note search results as markdown
func formatNoteHits(query string, hits []models.NoteHit) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Note Results for \"%s\" (%d results)\n\n", query, len(hits)))

	if len(hits) == 0 {
		sb.WriteString("No results found.\n")
		return sb.String()
	}

	for i, hit := range hits {
		title := hit.FileName
		if hit.Heading != "" {
			title = fmt.Sprintf("%s > %s", hit.FileName, hit.Heading)
		}
		sb.WriteString(fmt.Sprintf("### %d. %s\n", i+1, title))
		sb.WriteString(fmt.Sprintf("**File:** %s (chunk %d)\n", hit.FilePath, hit.ChunkIndex))
		if !hit.ModifiedAt.IsZero() {
			sb.WriteString(fmt.Sprintf("**Modified:** %s\n", hit.ModifiedAt.Format(time.RFC3339)))
		}
		sb.WriteString(fmt.Sprintf("**Score:** %.3f\n\n", hit.Score))
		sb.WriteString(preview(hit.Content, 300))
		sb.WriteString("\n\n---\n\n")
	}
	return sb.String()
}

// formatTodoHits formats to-do search results as markdown
func formatTodoHits(query string, hits []models.TodoHit) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## To-do Results for \"%s\" (%d results)\n\n", query, len(hits)))

	if len(hits) == 0 {
		sb.WriteString("No results found.\n")
		return sb.String()
	}

	for i, hit := range hits {
		sb.WriteString(fmt.Sprintf("### %d. %s\n", i+1, hit.Title))
		sb.WriteString(fmt.Sprintf("**ID:** %d\n", hit.ID))
		sb.WriteString(fmt.Sprintf("**Status:** %s\n", hit.Status))
		sb.WriteString(fmt.Sprintf("**Score:** %.3f\n\n", hit.Score))
		sb.WriteString(preview(hit.Content, 300))
		sb.WriteString("\n\n---\n\n")
	}
	return sb.String()
}

// formatStoreStats formats store statistics as markdown
func formatStoreStats(stats *models.StoreStats) string {
	var sb strings.Builder
	sb.WriteString("## Knowledge Store\n\n")
	sb.WriteString(fmt.Sprintf("**Path:** %s\n", stats.DBPath))
	sb.WriteString(fmt.Sprintf("**Total documents:** %d\n\n", stats.TotalDocuments))

	if len(stats.Collections) == 0 {
		sb.WriteString("No collections.\n")
		return sb.String()
	}

	sb.WriteString("| Collection | Documents |\n")
	sb.WriteString("|------------|-----------|\n")
	for _, coll := range stats.Collections {
		sb.WriteString(fmt.Sprintf("| %s | %d |\n", coll.ID, coll.DocumentCount))
	}
	return sb.String()
}

func preview(content string, max int) string {
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "..."
}
