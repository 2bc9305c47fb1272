package retriever

import (
	"context"
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"

	"github.com/recallhq/recall/internal/common"
	"github.com/recallhq/recall/internal/interfaces"
	"github.com/recallhq/recall/internal/models"
)

// Oversampling factors for the candidate shortlist. The store has no
// full-scan keyword index, so keyword and hybrid modes rank within an
// oversized vector candidate set.
const (
	keywordCandidateFactor = 3
	hybridCandidateFactor  = 2
)

// Service implements interfaces.Retriever over a vector storage and an
// embedding provider
type Service struct {
	storage  interfaces.VectorStorage
	embedder interfaces.EmbeddingService
	config   *common.RetrieverConfig
	logger   arbor.ILogger
}

// NewService creates a new retriever
func NewService(storage interfaces.VectorStorage, embedder interfaces.EmbeddingService, config *common.RetrieverConfig, logger arbor.ILogger) interfaces.Retriever {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Service{
		storage:  storage,
		embedder: embedder,
		config:   config,
		logger:   logger,
	}
}

// Retrieve runs one retrieval against a single collection. Each unset option
// defaults independently: an empty method means hybrid, a nil weight means the
// configured blend weight, TopK <= 0 means the configured count. An explicit
// zero weight is honored as pure keyword blending.
func (s *Service) Retrieve(ctx context.Context, query, collectionID string, opts interfaces.RetrieveOptions) ([]models.RetrievedDocument, error) {
	if opts.Method == "" {
		opts.Method = interfaces.MethodHybrid
	}
	if opts.VectorWeight == nil {
		opts.VectorWeight = &s.config.VectorWeight
	}
	if opts.TopK <= 0 {
		opts.TopK = s.config.TopK
	}

	switch opts.Method {
	case interfaces.MethodVector:
		return s.retrieveVector(ctx, query, collectionID, opts)
	case interfaces.MethodKeyword:
		return s.retrieveKeyword(ctx, query, collectionID, opts)
	case interfaces.MethodHybrid:
		return s.retrieveHybrid(ctx, query, collectionID, opts)
	default:
		return nil, fmt.Errorf("unknown retrieval method: %s", opts.Method)
	}
}

// retrieveVector delegates directly to the store's similarity search
func (s *Service) retrieveVector(ctx context.Context, query, collectionID string, opts interfaces.RetrieveOptions) ([]models.RetrievedDocument, error) {
	results, err := s.storage.Search(ctx, collectionID, query, s.embedder, opts.TopK, opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("vector retrieval failed: %w", err)
	}

	docs := make([]models.RetrievedDocument, len(results))
	for i, r := range results {
		docs[i] = models.RetrievedDocument{
			Document:   r.Document,
			Score:      r.Score,
			Collection: collectionID,
		}
	}
	return docs, nil
}

// retrieveKeyword re-ranks an oversized vector shortlist by keyword score.
// Keyword mode never scans beyond the vector shortlist.
func (s *Service) retrieveKeyword(ctx context.Context, query, collectionID string, opts interfaces.RetrieveOptions) ([]models.RetrievedDocument, error) {
	candidates, err := s.storage.Search(ctx, collectionID, query, s.embedder, opts.TopK*keywordCandidateFactor, opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("keyword retrieval failed: %w", err)
	}

	keywords := queryKeywords(query, s.config.MaxKeywords)
	docs := make([]models.RetrievedDocument, len(candidates))
	for i, c := range candidates {
		docs[i] = models.RetrievedDocument{
			Document:   c.Document,
			Score:      keywordScore(c.Document.Content, keywords),
			Collection: collectionID,
		}
	}

	sortByScore(docs)
	return truncate(docs, opts.TopK), nil
}

// retrieveHybrid blends vector and keyword scores over an oversized vector
// candidate set: hybrid = w*vector + (1-w)*keyword
func (s *Service) retrieveHybrid(ctx context.Context, query, collectionID string, opts interfaces.RetrieveOptions) ([]models.RetrievedDocument, error) {
	candidates, err := s.storage.Search(ctx, collectionID, query, s.embedder, opts.TopK*hybridCandidateFactor, opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("hybrid retrieval failed: %w", err)
	}

	keywords := queryKeywords(query, s.config.MaxKeywords)
	w := *opts.VectorWeight
	docs := make([]models.RetrievedDocument, len(candidates))
	for i, c := range candidates {
		kw := keywordScore(c.Document.Content, keywords)
		docs[i] = models.RetrievedDocument{
			Document:   c.Document,
			Score:      w*c.Score + (1-w)*kw,
			Collection: collectionID,
		}
	}

	sortByScore(docs)
	return truncate(docs, opts.TopK), nil
}

// RetrieveForChat fans a hybrid query out over several collections. A failure
// in one collection is logged and skipped so the merged result still carries
// whatever succeeded.
func (s *Service) RetrieveForChat(ctx context.Context, query string, collectionIDs []string, perCollectionK, totalK int) ([]models.RetrievedDocument, error) {
	if perCollectionK <= 0 {
		perCollectionK = s.config.TopK
	}
	if totalK <= 0 {
		totalK = s.config.TopK
	}

	var merged []models.RetrievedDocument
	for _, collectionID := range collectionIDs {
		docs, err := s.Retrieve(ctx, query, collectionID, interfaces.RetrieveOptions{
			Method:       interfaces.MethodHybrid,
			TopK:         perCollectionK,
			VectorWeight: &s.config.VectorWeight,
		})
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("collection", collectionID).
				Msg("Collection retrieval failed, skipping")
			continue
		}
		merged = append(merged, docs...)
	}

	sortByScore(merged)
	merged = truncate(merged, totalK)

	s.logger.Debug().
		Str("query", query).
		Int("collections", len(collectionIDs)).
		Int("results", len(merged)).
		Msg("Multi-collection retrieval completed")
	return merged, nil
}

func sortByScore(docs []models.RetrievedDocument) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Score > docs[j].Score
	})
}

func truncate(docs []models.RetrievedDocument, k int) []models.RetrievedDocument {
	if k > 0 && len(docs) > k {
		return docs[:k]
	}
	return docs
}
