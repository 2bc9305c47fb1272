package interfaces

import (
	"context"

	"github.com/recallhq/recall/internal/models"
)

// RetrievalMethod selects how the retriever ranks results
type RetrievalMethod string

const (
	// MethodVector ranks purely by vector similarity
	MethodVector RetrievalMethod = "vector"
	// MethodKeyword ranks a vector-shortlisted candidate set by keyword score
	MethodKeyword RetrievalMethod = "keyword"
	// MethodHybrid blends vector and keyword scores
	MethodHybrid RetrievalMethod = "hybrid"
)

// RetrieveOptions controls a single retrieval
type RetrieveOptions struct {
	Method       RetrievalMethod
	TopK         int
	VectorWeight *float64 // Hybrid blend weight; 1.0 = pure vector, 0.0 = pure keyword, nil = configured default
	Filter       map[string]string
}

// Retriever turns a free-text query into ranked documents across one or many
// collections, and formats them into a bounded context window.
type Retriever interface {
	Retrieve(ctx context.Context, query, collectionID string, opts RetrieveOptions) ([]models.RetrievedDocument, error)

	// RetrieveForChat queries each collection with the hybrid method, skipping
	// per-collection failures, then merges, sorts, and truncates to totalK.
	RetrieveForChat(ctx context.Context, query string, collectionIDs []string, perCollectionK, totalK int) ([]models.RetrievedDocument, error)

	// BuildContext renders ranked documents into a numbered, source-annotated
	// string within maxChars; later documents are dropped, never truncated.
	BuildContext(docs []models.RetrievedDocument, maxChars int) string
}
