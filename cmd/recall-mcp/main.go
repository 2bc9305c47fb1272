package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbormodels "github.com/ternarybob/arbor/models"

	"github.com/recallhq/recall/internal/app"
	"github.com/recallhq/recall/internal/common"
)

func main() {
	configPath := os.Getenv("RECALL_CONFIG")
	if configPath == "" {
		if _, err := os.Stat("recall.toml"); err == nil {
			configPath = "recall.toml"
		}
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Console-only logger at warn level to keep MCP stdio clean
	logger := arbor.NewLogger().WithConsoleWriter(arbormodels.WriterConfiguration{
		Type:             arbormodels.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	mcpServer := server.NewMCPServer(
		"recall",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createSearchNotesTool(), handleSearchNotes(application.NoteIndexer, logger))
	mcpServer.AddTool(createSearchTodosTool(), handleSearchTodos(application.TodoIndexer, logger))
	mcpServer.AddTool(createRetrieveContextTool(), handleRetrieveContext(application.Retriever, config, logger))
	mcpServer.AddTool(createIndexNoteTool(), handleIndexNote(application.NoteIndexer, logger))
	mcpServer.AddTool(createCrawlPageTool(), handleCrawlPage(application.WebIndexer, logger))
	mcpServer.AddTool(createKnowledgeStatsTool(), handleKnowledgeStats(application, logger))

	// Blocks on stdio
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
