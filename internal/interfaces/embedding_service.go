package interfaces

import (
	"context"
)

// EmbeddingService turns text into fixed-dimension float vectors.
// Implementations must tolerate empty input and substitute a zero vector of the
// correct dimension for an item that fails to embed, rather than aborting the
// batch. Callers needing strict correctness check for all-zero vectors.
type EmbeddingService interface {
	// Embed generates embeddings for a batch of texts, one vector per input
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedOne generates an embedding for a single text
	EmbedOne(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the fixed vector dimension, known before any collection is created
	Dimension() int

	// ModelName returns the backing model identifier
	ModelName() string

	// IsAvailable checks if the embedding backend is reachable
	IsAvailable(ctx context.Context) bool
}
