package indexer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/recallhq/recall/internal/common"
	"github.com/recallhq/recall/internal/interfaces"
	"github.com/recallhq/recall/internal/models"
)

// TodosCollection is the reserved collection holding to-do documents
const TodosCollection = "__todos__"

// TodosService mirrors to-do records into the todos collection as one searchable
// document per record. Adding a todo that already exists replaces its document.
type TodosService struct {
	storage  interfaces.VectorStorage
	embedder interfaces.EmbeddingService
	config   *common.Config
	logger   arbor.ILogger
}

// NewTodosService creates a todos indexer and ensures its collection exists
func NewTodosService(storage interfaces.VectorStorage, embedder interfaces.EmbeddingService, config *common.Config, logger arbor.ILogger) (*TodosService, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}

	if err := storage.CreateCollection(TodosCollection, embedder.Dimension()); err != nil {
		return nil, fmt.Errorf("failed to create todos collection: %w", err)
	}

	return &TodosService{
		storage:  storage,
		embedder: embedder,
		config:   config,
		logger:   logger,
	}, nil
}

// AddTodo stores a to-do record as a single document, replacing any previous
// document for the same id.
func (s *TodosService) AddTodo(ctx context.Context, todo *models.Todo) error {
	if todo == nil {
		return fmt.Errorf("todo is required")
	}
	if todo.ID <= 0 {
		return fmt.Errorf("todo id is required")
	}

	docID := strconv.FormatInt(todo.ID, 10)

	if _, err := s.storage.DeleteDocument(TodosCollection, docID); err != nil {
		return fmt.Errorf("failed to delete previous todo document: %w", err)
	}

	doc := &models.Document{
		ID:      docID,
		Content: searchableText(todo),
		Metadata: map[string]interface{}{
			"todo_id":  todo.ID,
			"title":    todo.Title,
			"status":   todo.Status,
			"priority": todo.Priority,
		},
	}
	if todo.Category != "" {
		doc.Metadata["category"] = todo.Category
	}

	added, err := s.storage.AddDocument(ctx, TodosCollection, doc, s.embedder)
	if err != nil {
		return fmt.Errorf("failed to store todo document: %w", err)
	}
	if !added {
		s.logger.Warn().Int64("todo_id", todo.ID).Msg("Todo document was not written")
		return nil
	}

	s.logger.Debug().
		Int64("todo_id", todo.ID).
		Str("status", todo.Status).
		Msg("Indexed todo")
	return nil
}

// DeleteTodo removes the document for the given id. Returns false if absent.
func (s *TodosService) DeleteTodo(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.storage.DeleteDocument(TodosCollection, strconv.FormatInt(id, 10))
	if err != nil {
		return false, fmt.Errorf("failed to delete todo document: %w", err)
	}
	if deleted {
		s.logger.Debug().Int64("todo_id", id).Msg("Deleted todo from index")
	}
	return deleted, nil
}

// Search runs a query over the todos collection and flattens the results
func (s *TodosService) Search(ctx context.Context, query string, k int) ([]models.TodoHit, error) {
	if k <= 0 {
		k = s.config.Retriever.TopK
	}

	results, err := s.storage.Search(ctx, TodosCollection, query, s.embedder, k, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to search todos: %w", err)
	}

	hits := make([]models.TodoHit, 0, len(results))
	for _, result := range results {
		doc := result.Document
		hit := models.TodoHit{
			Content: doc.Content,
			Score:   result.Score,
		}
		switch v := doc.Metadata["todo_id"].(type) {
		case int64:
			hit.ID = v
		case int:
			hit.ID = int64(v)
		case float64:
			hit.ID = int64(v)
		}
		if v, ok := doc.Metadata["title"].(string); ok {
			hit.Title = v
		}
		if v, ok := doc.Metadata["status"].(string); ok {
			hit.Status = v
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// searchableText flattens a todo into the labeled text that gets embedded and
// keyword-matched. Field order is stable so identical todos embed identically.
func searchableText(todo *models.Todo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n", todo.Title)
	if todo.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", todo.Description)
	}
	if todo.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", todo.Category)
	}
	fmt.Fprintf(&b, "Priority: %s\n", todo.PriorityLabel())
	fmt.Fprintf(&b, "Status: %s\n", todo.StatusLabel())
	if todo.DueDate != nil {
		fmt.Fprintf(&b, "Due: %s\n", todo.DueDate.Format("2006-01-02"))
	}
	if len(todo.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(todo.Tags, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}
