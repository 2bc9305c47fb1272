package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/recallhq/recall/internal/app"
	"github.com/recallhq/recall/internal/common"
	"github.com/recallhq/recall/internal/interfaces"
	"github.com/recallhq/recall/internal/services/indexer"
)

func errorResult(format string, args ...interface{}) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(fmt.Sprintf(format, args...)),
		},
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// handleSearchNotes implements the search_notes tool
func handleSearchNotes(notes interfaces.NoteIndexer, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || query == "" {
			return errorResult("Error: query parameter is required"), nil
		}

		limit := request.GetInt("limit", 5)
		if limit > 50 {
			limit = 50
		}

		var filter map[string]string
		if filePath := request.GetString("file_path", ""); filePath != "" {
			filter = map[string]string{"file_path": filePath}
		}

		hits, err := notes.Search(ctx, query, limit, filter)
		if err != nil {
			logger.Error().Err(err).Msg("Notes search failed")
			return errorResult("Search error: %v", err), nil
		}
		return textResult(formatNoteHits(query, hits)), nil
	}
}

// handleSearchTodos implements the search_todos tool
func handleSearchTodos(todos interfaces.TodoIndexer, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || query == "" {
			return errorResult("Error: query parameter is required"), nil
		}

		limit := request.GetInt("limit", 5)
		if limit > 50 {
			limit = 50
		}

		hits, err := todos.Search(ctx, query, limit)
		if err != nil {
			logger.Error().Err(err).Msg("Todos search failed")
			return errorResult("Search error: %v", err), nil
		}
		return textResult(formatTodoHits(query, hits)), nil
	}
}

// handleRetrieveContext implements the retrieve_context tool
func handleRetrieveContext(retriever interfaces.Retriever, config *common.Config, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || query == "" {
			return errorResult("Error: query parameter is required"), nil
		}

		collections := request.GetStringSlice("collections", nil)
		if len(collections) == 0 {
			collections = []string{indexer.NotesCollection, indexer.TodosCollection}
		}
		limit := request.GetInt("limit", 5)

		docs, err := retriever.RetrieveForChat(ctx, query, collections, limit, limit)
		if err != nil {
			logger.Error().Err(err).Msg("Context retrieval failed")
			return errorResult("Retrieval error: %v", err), nil
		}
		if len(docs) == 0 {
			return textResult("No relevant documents found."), nil
		}
		return textResult(retriever.BuildContext(docs, config.Retriever.MaxContextChars)), nil
	}
}

// handleIndexNote implements the index_note tool
func handleIndexNote(notes interfaces.NoteIndexer, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filePath, err := request.RequireString("file_path")
		if err != nil || filePath == "" {
			return errorResult("Error: file_path parameter is required"), nil
		}
		content, err := request.RequireString("content")
		if err != nil {
			return errorResult("Error: content parameter is required"), nil
		}

		chunks, err := notes.Index(ctx, filePath, content, nil)
		if err != nil {
			logger.Error().Err(err).Str("file_path", filePath).Msg("Note indexing failed")
			return errorResult("Indexing error: %v", err), nil
		}
		return textResult(fmt.Sprintf("Indexed %s: %d chunks", filePath, chunks)), nil
	}
}

// handleCrawlPage implements the crawl_page tool
func handleCrawlPage(web interfaces.WebIndexer, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil || url == "" {
			return errorResult("Error: url parameter is required"), nil
		}
		collection := request.GetString("collection", "web")

		result, err := web.CrawlAndStore(ctx, collection, url)
		if err != nil {
			logger.Error().Err(err).Str("url", url).Msg("Crawl failed")
			return errorResult("Crawl error: %v", err), nil
		}
		return textResult(fmt.Sprintf("Crawled %s: %q, %d chunks stored in %s",
			result.URL, result.Title, result.ChunkCount, result.Collection)), nil
	}
}

// handleKnowledgeStats implements the knowledge_stats tool
func handleKnowledgeStats(application *app.App, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := application.StorageManager.VectorStorage().Stats()
		if err != nil {
			logger.Error().Err(err).Msg("Stats query failed")
			return errorResult("Stats error: %v", err), nil
		}
		return textResult(formatStoreStats(stats)), nil
	}
}
