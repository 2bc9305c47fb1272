package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createSearchNotesTool returns the search_notes tool definition
func createSearchNotesTool() mcp.Tool {
	return mcp.NewTool("search_notes",
		mcp.WithDescription("Search indexed notes using hybrid semantic and keyword ranking"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language search query"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results to return (default: 5, max: 50)"),
		),
		mcp.WithString("file_path",
			mcp.Description("Restrict results to a single note file"),
		),
	)
}

// createSearchTodosTool returns the search_todos tool definition
func createSearchTodosTool() mcp.Tool {
	return mcp.NewTool("search_todos",
		mcp.WithDescription("Search indexed to-dos using hybrid semantic and keyword ranking"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language search query"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results to return (default: 5, max: 50)"),
		),
	)
}

// createRetrieveContextTool returns the retrieve_context tool definition
func createRetrieveContextTool() mcp.Tool {
	return mcp.NewTool("retrieve_context",
		mcp.WithDescription("Retrieve relevant documents across collections and assemble them into a bounded context window for a chat prompt"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The user's question or message"),
		),
		mcp.WithArray("collections",
			mcp.WithStringItems(),
			mcp.Description("Collections to search (default: notes and todos)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum documents in the context (default: 5)"),
		),
	)
}

// createIndexNoteTool returns the index_note tool definition
func createIndexNoteTool() mcp.Tool {
	return mcp.NewTool("index_note",
		mcp.WithDescription("Index or re-index a markdown note, replacing its previous chunks"),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Identifier of the note (usually an absolute file path)"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Markdown content of the note"),
		),
	)
}

// createCrawlPageTool returns the crawl_page tool definition
func createCrawlPageTool() mcp.Tool {
	return mcp.NewTool("crawl_page",
		mcp.WithDescription("Fetch a web page, extract its readable content, and store the chunks into a collection"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Page URL to fetch"),
		),
		mcp.WithString("collection",
			mcp.Description("Target collection (default: web)"),
		),
	)
}

// createKnowledgeStatsTool returns the knowledge_stats tool definition
func createKnowledgeStatsTool() mcp.Tool {
	return mcp.NewTool("knowledge_stats",
		mcp.WithDescription("Report document counts for every collection in the knowledge store"),
	)
}
