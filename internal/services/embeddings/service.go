package embeddings

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/recallhq/recall/internal/interfaces"
)

// backend is a raw embedding provider. Backends return one vector per input
// text and do not implement the degraded-but-available policy themselves.
type backend interface {
	embedBatch(ctx context.Context, texts []string) ([][]float32, error)
	modelName() string
	healthCheck(ctx context.Context) error
}

// Service implements interfaces.EmbeddingService on a backend, adding the
// per-item zero-vector fallback, the call timeout, and dimension checking.
type Service struct {
	backend   backend
	dimension int
	timeout   time.Duration
	logger    arbor.ILogger
}

// NewService wraps a backend into an EmbeddingService with the given fixed
// dimension and per-call timeout
func NewService(b backend, dimension int, timeout time.Duration, logger arbor.ILogger) interfaces.EmbeddingService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{
		backend:   b,
		dimension: dimension,
		timeout:   timeout,
		logger:    logger,
	}
}

// Embed generates embeddings for a batch of texts. A text that fails to embed
// yields a zero vector of the configured dimension instead of aborting the
// batch; callers needing strict correctness check for all-zero vectors.
func (s *Service) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	vectors, err := s.backend.embedBatch(ctx, texts)
	if err == nil && len(vectors) == len(texts) {
		for i, vec := range vectors {
			vectors[i] = s.checkDimension(vec, i)
		}
		s.logger.Debug().
			Int("texts", len(texts)).
			Dur("duration", time.Since(start)).
			Msg("Generated embeddings")
		return vectors, nil
	}
	if err != nil {
		s.logger.Warn().
			Err(err).
			Int("texts", len(texts)).
			Msg("Batch embedding failed, retrying per item")
	}

	// Degraded path: embed items individually so one bad item does not sink
	// the whole batch
	out := make([][]float32, len(texts))
	for i, text := range texts {
		single, err := s.backend.embedBatch(ctx, []string{text})
		if err != nil || len(single) != 1 {
			s.logger.Warn().
				Err(err).
				Int("index", i).
				Msg("Failed to embed text, substituting zero vector")
			out[i] = make([]float32, s.dimension)
			continue
		}
		out[i] = s.checkDimension(single[0], i)
	}
	return out, nil
}

// checkDimension substitutes a zero vector when the backend returns the wrong
// dimension; vectors are never truncated or padded
func (s *Service) checkDimension(vec []float32, index int) []float32 {
	if len(vec) == s.dimension {
		return vec
	}
	s.logger.Warn().
		Int("index", index).
		Int("expected", s.dimension).
		Int("got", len(vec)).
		Msg("Embedding dimension mismatch, substituting zero vector")
	return make([]float32, s.dimension)
}

// EmbedOne generates an embedding for a single text
func (s *Service) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Dimension returns the fixed embedding dimension
func (s *Service) Dimension() int {
	return s.dimension
}

// ModelName returns the backing model identifier
func (s *Service) ModelName() string {
	return s.backend.modelName()
}

// IsAvailable checks if the embedding backend is reachable
func (s *Service) IsAvailable(ctx context.Context) bool {
	if s.backend == nil {
		return false
	}
	if err := s.backend.healthCheck(ctx); err != nil {
		s.logger.Debug().Err(err).Msg("Embedding backend not available")
		return false
	}
	return true
}
