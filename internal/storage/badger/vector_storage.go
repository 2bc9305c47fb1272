package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/recallhq/recall/internal/interfaces"
	"github.com/recallhq/recall/internal/models"
)

const defaultBatchSize = 16

// Collection registers a named collection and its fixed vector dimension
type Collection struct {
	ID        string
	Dimension int
	CreatedAt time.Time
}

// StoredDocument is the on-disk record for one document. FilePath is a
// structured column extracted from the file_path metadata field so source
// deletes use exact equality instead of scanning serialized JSON.
type StoredDocument struct {
	Key        string // "<collection>/<doc id>"
	Collection string `badgerhold:"index"`
	DocID      string
	Content    string
	Metadata   string // JSON-serialized map
	FilePath   string `badgerhold:"index"`
	Vector     []float32
	CreatedAt  time.Time
}

// VectorStorage implements interfaces.VectorStorage on BadgerDB
type VectorStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewVectorStorage creates a new VectorStorage instance
func NewVectorStorage(db *BadgerDB, logger arbor.ILogger) interfaces.VectorStorage {
	return &VectorStorage{
		db:     db,
		logger: logger,
	}
}

func documentKey(collectionID, docID string) string {
	return collectionID + "/" + docID
}

// CreateCollection persists a collection schema bound to the given dimension.
// Creating an existing collection is a no-op with a warning.
func (s *VectorStorage) CreateCollection(id string, dimension int) error {
	if id == "" {
		return fmt.Errorf("collection id is required")
	}
	if dimension <= 0 {
		return fmt.Errorf("invalid collection dimension: %d", dimension)
	}

	var existing Collection
	err := s.db.Store().Get(id, &existing)
	if err == nil {
		s.logger.Warn().
			Str("collection", id).
			Int("dimension", existing.Dimension).
			Msg("Collection already exists, skipping creation")
		return nil
	}
	if err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	coll := Collection{
		ID:        id,
		Dimension: dimension,
		CreatedAt: time.Now(),
	}
	if err := s.db.Store().Upsert(id, &coll); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	s.logger.Debug().
		Str("collection", id).
		Int("dimension", dimension).
		Msg("Collection created")
	return nil
}

func (s *VectorStorage) getCollection(id string) (*Collection, error) {
	var coll Collection
	if err := s.db.Store().Get(id, &coll); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("%w: %s", interfaces.ErrCollectionNotFound, id)
		}
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	return &coll, nil
}

func (s *VectorStorage) CollectionExists(id string) (bool, error) {
	var coll Collection
	err := s.db.Store().Get(id, &coll)
	if err == badgerhold.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check collection: %w", err)
	}
	return true, nil
}

func (s *VectorStorage) ListCollections() ([]string, error) {
	var colls []Collection
	if err := s.db.Store().Find(&colls, nil); err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	ids := make([]string, len(colls))
	for i := range colls {
		ids[i] = colls[i].ID
	}
	sort.Strings(ids)
	return ids, nil
}

// DropCollection removes the collection registration and all its documents
func (s *VectorStorage) DropCollection(id string) error {
	if _, err := s.getCollection(id); err != nil {
		return err
	}

	if err := s.db.Store().DeleteMatching(&StoredDocument{}, badgerhold.Where("Collection").Eq(id)); err != nil {
		return fmt.Errorf("failed to delete collection documents: %w", err)
	}
	if err := s.db.Store().Delete(id, &Collection{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete collection: %w", err)
	}

	s.logger.Debug().Str("collection", id).Msg("Collection dropped")
	return nil
}

// AddDocuments embeds document contents in batches and bulk-inserts the
// records. A failed embedding or write batch is logged and yields 0 written;
// dimension mismatches and unknown collections fail loudly.
func (s *VectorStorage) AddDocuments(ctx context.Context, collectionID string, docs []*models.Document, embedder interfaces.EmbeddingService, batchSize int) (int, error) {
	coll, err := s.getCollection(collectionID)
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	written := 0
	for start := 0; start < len(docs); start += batchSize {
		end := start + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		if err := s.embedBatch(ctx, batch, embedder); err != nil {
			s.logger.Error().
				Err(err).
				Str("collection", collectionID).
				Int("batch_start", start).
				Msg("Failed to embed document batch")
			return 0, nil
		}

		now := time.Now()
		for _, doc := range batch {
			if len(doc.Embedding) != coll.Dimension {
				return 0, fmt.Errorf("%w: collection %s expects %d, got %d",
					interfaces.ErrDimensionMismatch, collectionID, coll.Dimension, len(doc.Embedding))
			}

			record, err := newStoredDocument(collectionID, doc, now)
			if err != nil {
				s.logger.Error().
					Err(err).
					Str("collection", collectionID).
					Str("doc_id", doc.ID).
					Msg("Failed to serialize document metadata")
				return 0, nil
			}
			if err := s.db.Store().Upsert(record.Key, record); err != nil {
				s.logger.Error().
					Err(err).
					Str("collection", collectionID).
					Str("doc_id", doc.ID).
					Msg("Failed to write document")
				return 0, nil
			}
			written++
		}
	}

	s.logger.Debug().
		Str("collection", collectionID).
		Int("written", written).
		Msg("Documents added")
	return written, nil
}

// AddDocument is a single-document convenience wrapping AddDocuments
func (s *VectorStorage) AddDocument(ctx context.Context, collectionID string, doc *models.Document, embedder interfaces.EmbeddingService) (bool, error) {
	count, err := s.AddDocuments(ctx, collectionID, []*models.Document{doc}, embedder, 1)
	if err != nil {
		return false, err
	}
	return count == 1, nil
}

// embedBatch fills in missing embeddings for a batch of documents
func (s *VectorStorage) embedBatch(ctx context.Context, docs []*models.Document, embedder interfaces.EmbeddingService) error {
	var texts []string
	var missing []int
	for i, doc := range docs {
		if len(doc.Embedding) == 0 {
			texts = append(texts, doc.Content)
			missing = append(missing, i)
		}
	}
	if len(texts) == 0 {
		return nil
	}

	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("embedding provider returned %d vectors for %d texts", len(vectors), len(texts))
	}
	for i, idx := range missing {
		docs[idx].Embedding = vectors[i]
	}
	return nil
}

func newStoredDocument(collectionID string, doc *models.Document, now time.Time) (*StoredDocument, error) {
	metadata := doc.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	serialized, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize metadata: %w", err)
	}

	filePath := ""
	if v, ok := metadata["file_path"].(string); ok {
		filePath = v
	}

	return &StoredDocument{
		Key:        documentKey(collectionID, doc.ID),
		Collection: collectionID,
		DocID:      doc.ID,
		Content:    doc.Content,
		Metadata:   string(serialized),
		FilePath:   filePath,
		Vector:     doc.Embedding,
		CreatedAt:  now,
	}, nil
}

// DeleteDocument removes a document by exact id. Absent documents return false, nil.
func (s *VectorStorage) DeleteDocument(collectionID, docID string) (bool, error) {
	if _, err := s.getCollection(collectionID); err != nil {
		return false, err
	}

	key := documentKey(collectionID, docID)
	var existing StoredDocument
	if err := s.db.Store().Get(key, &existing); err != nil {
		if err == badgerhold.ErrNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to get document: %w", err)
	}

	if err := s.db.Store().Delete(key, &StoredDocument{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete document: %w", err)
	}
	return true, nil
}

// DeleteDocumentsBySource removes all documents whose file_path metadata
// equals filePath exactly. Returns the number of documents removed.
func (s *VectorStorage) DeleteDocumentsBySource(collectionID, filePath string) (int, error) {
	if _, err := s.getCollection(collectionID); err != nil {
		return 0, err
	}

	query := badgerhold.Where("Collection").Eq(collectionID).And("FilePath").Eq(filePath)
	count, err := s.db.Store().Count(&StoredDocument{}, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents by source: %w", err)
	}
	if count == 0 {
		return 0, nil
	}

	if err := s.db.Store().DeleteMatching(&StoredDocument{}, query); err != nil {
		return 0, fmt.Errorf("failed to delete documents by source: %w", err)
	}

	s.logger.Debug().
		Str("collection", collectionID).
		Str("file_path", filePath).
		Int("deleted", int(count)).
		Msg("Documents deleted by source")
	return int(count), nil
}

// Search embeds the query and returns the k nearest documents by squared
// euclidean distance, scored as 1/(1+distance), optionally restricted by an
// exact-match metadata filter.
func (s *VectorStorage) Search(ctx context.Context, collectionID, query string, embedder interfaces.EmbeddingService, k int, filter map[string]string) ([]models.SearchResult, error) {
	coll, err := s.getCollection(collectionID)
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		return []models.SearchResult{}, nil
	}

	queryVector, err := embedder.EmbedOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(queryVector) != coll.Dimension {
		return nil, fmt.Errorf("%w: collection %s expects %d, got %d",
			interfaces.ErrDimensionMismatch, collectionID, coll.Dimension, len(queryVector))
	}

	var records []StoredDocument
	if err := s.db.Store().Find(&records, badgerhold.Where("Collection").Eq(collectionID)); err != nil {
		return nil, fmt.Errorf("failed to scan collection: %w", err)
	}

	type scored struct {
		record   *StoredDocument
		metadata map[string]interface{}
		distance float64
	}
	candidates := make([]scored, 0, len(records))
	for i := range records {
		record := &records[i]

		metadata := map[string]interface{}{}
		if record.Metadata != "" {
			if err := json.Unmarshal([]byte(record.Metadata), &metadata); err != nil {
				s.logger.Warn().
					Err(err).
					Str("doc_id", record.DocID).
					Msg("Failed to decode document metadata, skipping")
				continue
			}
		}
		if !matchesFilter(metadata, filter) {
			continue
		}

		candidates = append(candidates, scored{
			record:   record,
			metadata: metadata,
			distance: squaredDistance(queryVector, record.Vector),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	results := make([]models.SearchResult, len(candidates))
	for i, c := range candidates {
		results[i] = models.SearchResult{
			Document: &models.Document{
				ID:        c.record.DocID,
				Content:   c.record.Content,
				Metadata:  c.metadata,
				Embedding: c.record.Vector,
			},
			Score: 1.0 / (1.0 + c.distance),
		}
	}
	return results, nil
}

// matchesFilter checks exact string equality of metadata values against the filter
func matchesFilter(metadata map[string]interface{}, filter map[string]string) bool {
	for key, want := range filter {
		value, ok := metadata[key]
		if !ok {
			return false
		}
		if fmt.Sprintf("%v", value) != want {
			return false
		}
	}
	return true
}

// squaredDistance computes squared euclidean distance between two vectors.
// Length mismatches are excluded earlier by the collection dimension invariant.
func squaredDistance(a, b []float32) float64 {
	var sum float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// ListSources returns the distinct file_path values present in a collection
func (s *VectorStorage) ListSources(collectionID string) ([]string, error) {
	if _, err := s.getCollection(collectionID); err != nil {
		return nil, err
	}

	var records []StoredDocument
	query := badgerhold.Where("Collection").Eq(collectionID).And("FilePath").Ne("")
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to scan collection sources: %w", err)
	}

	seen := map[string]bool{}
	var sources []string
	for i := range records {
		if !seen[records[i].FilePath] {
			seen[records[i].FilePath] = true
			sources = append(sources, records[i].FilePath)
		}
	}
	sort.Strings(sources)
	return sources, nil
}

func (s *VectorStorage) DocumentCount(collectionID string) (int, error) {
	if _, err := s.getCollection(collectionID); err != nil {
		return 0, err
	}
	count, err := s.db.Store().Count(&StoredDocument{}, badgerhold.Where("Collection").Eq(collectionID))
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return int(count), nil
}

func (s *VectorStorage) Stats() (*models.StoreStats, error) {
	ids, err := s.ListCollections()
	if err != nil {
		return nil, err
	}

	stats := &models.StoreStats{
		DBPath:      s.db.Path(),
		Collections: make([]models.CollectionStats, 0, len(ids)),
	}
	for _, id := range ids {
		count, err := s.DocumentCount(id)
		if err != nil {
			return nil, err
		}
		stats.Collections = append(stats.Collections, models.CollectionStats{
			ID:            id,
			DocumentCount: count,
		})
		stats.TotalDocuments += count
	}
	return stats, nil
}
