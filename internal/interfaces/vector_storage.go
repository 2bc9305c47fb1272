package interfaces

import (
	"context"
	"errors"

	"github.com/recallhq/recall/internal/models"
)

var (
	// ErrCollectionNotFound is returned when an operation references a collection
	// that was never created. Indexers create their collection explicitly first.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrDimensionMismatch is returned when a vector's length does not match the
	// collection's declared dimension. Vectors are never truncated or padded.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// VectorStorage is a persistent, collection-based document store with
// similarity search. A collection holds documents of one fixed vector
// dimension, set at creation time. Deletes of absent documents are benign
// no-ops; writes against unknown collections fail with ErrCollectionNotFound.
type VectorStorage interface {
	// CreateCollection persists a collection bound to the given vector dimension.
	// No-op with a warning if the collection already exists.
	CreateCollection(id string, dimension int) error

	CollectionExists(id string) (bool, error)
	ListCollections() ([]string, error)

	// DropCollection removes a collection and all its documents
	DropCollection(id string) error

	// AddDocuments embeds document contents in batches and bulk-inserts the
	// records. Returns the number of records written; a failed batch is logged
	// and contributes 0 (the caller decides whether to retry).
	AddDocuments(ctx context.Context, collectionID string, docs []*models.Document, embedder EmbeddingService, batchSize int) (int, error)

	// AddDocument is a single-document convenience wrapping AddDocuments
	AddDocument(ctx context.Context, collectionID string, doc *models.Document, embedder EmbeddingService) (bool, error)

	// DeleteDocument removes a document by exact id. Returns false if absent.
	DeleteDocument(collectionID, docID string) (bool, error)

	// DeleteDocumentsBySource removes every document whose file_path metadata
	// equals filePath exactly. Used before re-indexing a source.
	DeleteDocumentsBySource(collectionID, filePath string) (int, error)

	// Search embeds the query and returns the k nearest documents, optionally
	// restricted by an exact-match metadata filter, sorted by descending score.
	Search(ctx context.Context, collectionID, query string, embedder EmbeddingService, k int, filter map[string]string) ([]models.SearchResult, error)

	// ListSources returns the distinct file_path values present in a collection
	ListSources(collectionID string) ([]string, error)

	DocumentCount(collectionID string) (int, error)
	Stats() (*models.StoreStats, error)
}

// StorageManager owns the store's lifecycle
type StorageManager interface {
	VectorStorage() VectorStorage
	Close() error
}
