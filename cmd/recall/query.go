package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recallhq/recall/internal/interfaces"
	"github.com/recallhq/recall/internal/models"
	"github.com/recallhq/recall/internal/services/indexer"
)

var (
	queryCollections []string
	queryMethod      string
	queryTopK        int
	queryShowContext bool
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Retrieve documents for a natural language query",
	Long:  `Search one or more collections for documents relevant to the query, ranked by hybrid semantic and keyword similarity.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringSliceVar(&queryCollections, "collections", nil, "Collections to search (default: notes and todos)")
	queryCmd.Flags().StringVar(&queryMethod, "method", string(interfaces.MethodHybrid), "Ranking method: vector, keyword, or hybrid")
	queryCmd.Flags().IntVarP(&queryTopK, "limit", "n", 0, "Maximum results (0 = configured default)")
	queryCmd.Flags().BoolVar(&queryShowContext, "context", false, "Print the assembled context window instead of the result list")
}

func runQuery(cmd *cobra.Command, args []string) error {
	query := args[0]

	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	collections := queryCollections
	if len(collections) == 0 {
		collections = []string{indexer.NotesCollection, indexer.TodosCollection}
	}

	topK := queryTopK
	if topK <= 0 {
		topK = config.Retriever.TopK
	}

	var docs []models.RetrievedDocument
	if len(collections) == 1 {
		docs, err = application.Retriever.Retrieve(cmd.Context(), query, collections[0], interfaces.RetrieveOptions{
			Method:       interfaces.RetrievalMethod(queryMethod),
			TopK:         topK,
			VectorWeight: &config.Retriever.VectorWeight,
		})
	} else {
		docs, err = application.Retriever.RetrieveForChat(cmd.Context(), query, collections, topK, topK)
	}
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		fmt.Println("No results")
		return nil
	}

	if queryShowContext {
		fmt.Println(application.Retriever.BuildContext(docs, config.Retriever.MaxContextChars))
		return nil
	}

	for i, doc := range docs {
		fmt.Printf("%d. [%s] %s (score %.3f)\n", i+1, doc.Collection, doc.Document.ID, doc.Score)
		content := doc.Document.Content
		if runes := []rune(content); len(runes) > 200 {
			content = string(runes[:200]) + "..."
		}
		fmt.Printf("   %s\n", content)
	}
	return nil
}
