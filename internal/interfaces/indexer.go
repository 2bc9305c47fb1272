package interfaces

import (
	"context"

	"github.com/recallhq/recall/internal/models"
)

// NoteIndexer maintains the notes collection. Indexing a file deletes its
// prior documents before inserting new chunks.
type NoteIndexer interface {
	Index(ctx context.Context, filePath, content string, metadata map[string]interface{}) (int, error)
	Delete(ctx context.Context, filePath string) (bool, error)
	Search(ctx context.Context, query string, k int, filter map[string]string) ([]models.NoteHit, error)
	Stats(ctx context.Context) (*models.IndexStats, error)
}

// TodoIndexer maintains the todos collection, one document per to-do record
type TodoIndexer interface {
	AddTodo(ctx context.Context, todo *models.Todo) error
	DeleteTodo(ctx context.Context, id int64) (bool, error)
	Search(ctx context.Context, query string, k int) ([]models.TodoHit, error)
}

// WebIndexer stores crawled pages into per-knowledge-base collections
type WebIndexer interface {
	// CrawlAndStore fetches the URL, extracts readable content, chunks it, and
	// stores the chunks into the collection
	CrawlAndStore(ctx context.Context, collectionID, url string) (*models.CrawlResult, error)

	// StorePage chunks and stores an already-extracted page
	StorePage(ctx context.Context, collectionID string, page *models.WebPage) (int, error)

	// DeletePage removes all chunks previously stored for the URL
	DeletePage(ctx context.Context, collectionID, url string) (int, error)
}
