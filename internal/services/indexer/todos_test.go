package indexer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/recallhq/recall/internal/interfaces"
	"github.com/recallhq/recall/internal/models"
)

func newTestTodos(t *testing.T, embedder interfaces.EmbeddingService) *TodosService {
	t.Helper()

	storage, config := testSetup(t)
	todos, err := NewTodosService(storage, embedder, config, arbor.NewLogger())
	require.NoError(t, err)
	return todos
}

func TestTodosAddAndSearch(t *testing.T) {
	embedder := &vocabEmbedder{vocab: []string{"buy", "milk", "groceries", "report"}}
	todos := newTestTodos(t, embedder)
	ctx := context.Background()

	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	err := todos.AddTodo(ctx, &models.Todo{
		ID:          42,
		Title:       "Buy milk",
		Description: "Also check for other groceries",
		Category:    "errands",
		Priority:    3,
		Status:      models.TodoStatusPending,
		DueDate:     &due,
		Tags:        []string{"shopping"},
		UpdatedAt:   time.Now(),
	})
	require.NoError(t, err)

	err = todos.AddTodo(ctx, &models.Todo{
		ID:        43,
		Title:     "Write report",
		Priority:  2,
		Status:    models.TodoStatusPending,
		UpdatedAt: time.Now(),
	})
	require.NoError(t, err)

	hits, err := todos.Search(ctx, "buy milk", 5)
	require.NoError(t, err)
	require.NotEmpty(t, hits)

	top := hits[0]
	assert.Equal(t, int64(42), top.ID)
	assert.Equal(t, "Buy milk", top.Title)
	assert.Equal(t, models.TodoStatusPending, top.Status)
	assert.Greater(t, top.Score, 0.0)
	assert.Contains(t, top.Content, "Task: Buy milk")
	assert.Contains(t, top.Content, "Due: 2026-09-15")
	assert.Contains(t, top.Content, "Tags: shopping")
}

func TestTodosStatusUpdateKeepsOneDocument(t *testing.T) {
	embedder := &vocabEmbedder{vocab: []string{"buy", "milk"}}
	todos := newTestTodos(t, embedder)
	ctx := context.Background()

	todo := &models.Todo{
		ID:        42,
		Title:     "Buy milk",
		Priority:  2,
		Status:    models.TodoStatusPending,
		UpdatedAt: time.Now(),
	}
	require.NoError(t, todos.AddTodo(ctx, todo))

	// Status change re-indexes the same id; the old document must not linger
	todo.Status = models.TodoStatusCompleted
	require.NoError(t, todos.AddTodo(ctx, todo))

	hits, err := todos.Search(ctx, "buy milk", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1, "re-adding a todo must replace its document")
	assert.Equal(t, int64(42), hits[0].ID)
	assert.Equal(t, models.TodoStatusCompleted, hits[0].Status)
	assert.Contains(t, hits[0].Content, "Status: completed")
}

func TestTodosDelete(t *testing.T) {
	embedder := &vocabEmbedder{vocab: []string{"buy", "milk"}}
	todos := newTestTodos(t, embedder)
	ctx := context.Background()

	require.NoError(t, todos.AddTodo(ctx, &models.Todo{
		ID:       7,
		Title:    "Buy milk",
		Priority: 1,
		Status:   models.TodoStatusPending,
	}))

	deleted, err := todos.DeleteTodo(ctx, 7)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = todos.DeleteTodo(ctx, 7)
	require.NoError(t, err)
	assert.False(t, deleted, "deleting an absent todo is a no-op")

	hits, err := todos.Search(ctx, "buy milk", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestTodosValidation(t *testing.T) {
	embedder := &vocabEmbedder{vocab: []string{"x"}}
	todos := newTestTodos(t, embedder)
	ctx := context.Background()

	assert.Error(t, todos.AddTodo(ctx, nil))
	assert.Error(t, todos.AddTodo(ctx, &models.Todo{ID: 0, Title: "no id"}))
}

func TestSearchableText(t *testing.T) {
	due := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	text := searchableText(&models.Todo{
		ID:          1,
		Title:       "Refactor login",
		Description: "Split the handler",
		Category:    "engineering",
		Priority:    3,
		Status:      models.TodoStatusInProgress,
		DueDate:     &due,
		Tags:        []string{"auth", "backend"},
	})

	assert.Equal(t, "Task: Refactor login\n"+
		"Description: Split the handler\n"+
		"Category: engineering\n"+
		"Priority: high\n"+
		"Status: in progress\n"+
		"Due: 2026-01-02\n"+
		"Tags: auth, backend", text)

	// Optional fields are omitted entirely
	minimal := searchableText(&models.Todo{ID: 2, Title: "Minimal", Priority: 1, Status: models.TodoStatusPending})
	assert.Equal(t, "Task: Minimal\nPriority: low\nStatus: pending", minimal)
}
