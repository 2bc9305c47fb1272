package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/recallhq/recall/internal/common"
	"github.com/recallhq/recall/internal/interfaces"
	"github.com/recallhq/recall/internal/models"
)

// stubEmbedder returns canned vectors per text, or a fallback vector
type stubEmbedder struct {
	dimension int
	vectors   map[string][]float32
}

func (e *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := e.vectors[text]; ok {
			out[i] = v
		} else {
			out[i] = make([]float32, e.dimension)
		}
	}
	return out, nil
}

func (e *stubEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *stubEmbedder) Dimension() int                       { return e.dimension }
func (e *stubEmbedder) ModelName() string                    { return "stub" }
func (e *stubEmbedder) IsAvailable(ctx context.Context) bool { return true }

func openTestStorage(t *testing.T) interfaces.VectorStorage {
	t.Helper()

	options := badgerhold.DefaultOptions
	options.Dir = t.TempDir()
	options.ValueDir = options.Dir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	db := &BadgerDB{store: store, config: &common.BadgerConfig{Path: options.Dir}}
	return NewVectorStorage(db, arbor.NewLogger())
}

func TestCreateCollection(t *testing.T) {
	storage := openTestStorage(t)

	if err := storage.CreateCollection("kb", 4); err != nil {
		t.Fatalf("CreateCollection failed: %v", err)
	}

	exists, err := storage.CollectionExists("kb")
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Error("expected collection to exist after creation")
	}

	// Re-creating is a no-op, not an error
	if err := storage.CreateCollection("kb", 8); err != nil {
		t.Fatalf("re-creating collection should not fail: %v", err)
	}

	exists, err = storage.CollectionExists("missing")
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("unknown collection should not exist")
	}
}

func TestUnknownCollectionFailsLoudly(t *testing.T) {
	storage := openTestStorage(t)
	embedder := &stubEmbedder{dimension: 4}
	ctx := context.Background()

	_, err := storage.AddDocuments(ctx, "missing", []*models.Document{{ID: "a", Content: "x"}}, embedder, 0)
	if !errors.Is(err, interfaces.ErrCollectionNotFound) {
		t.Errorf("AddDocuments: expected ErrCollectionNotFound, got %v", err)
	}

	_, err = storage.Search(ctx, "missing", "query", embedder, 5, nil)
	if !errors.Is(err, interfaces.ErrCollectionNotFound) {
		t.Errorf("Search: expected ErrCollectionNotFound, got %v", err)
	}

	_, err = storage.DocumentCount("missing")
	if !errors.Is(err, interfaces.ErrCollectionNotFound) {
		t.Errorf("DocumentCount: expected ErrCollectionNotFound, got %v", err)
	}
}

func TestDimensionMismatchRejected(t *testing.T) {
	storage := openTestStorage(t)
	ctx := context.Background()

	if err := storage.CreateCollection("kb", 4); err != nil {
		t.Fatal(err)
	}

	// Embedder producing 3-dim vectors against a 4-dim collection
	embedder := &stubEmbedder{dimension: 3, vectors: map[string][]float32{
		"short": {1, 2, 3},
	}}
	_, err := storage.AddDocuments(ctx, "kb", []*models.Document{{ID: "a", Content: "short"}}, embedder, 0)
	if !errors.Is(err, interfaces.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}

	// Pre-supplied embedding with the wrong length is also rejected
	_, err = storage.AddDocuments(ctx, "kb", []*models.Document{
		{ID: "b", Content: "x", Embedding: []float32{1, 2}},
	}, embedder, 0)
	if !errors.Is(err, interfaces.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch for pre-supplied vector, got %v", err)
	}
}

func TestSearchOrdering(t *testing.T) {
	storage := openTestStorage(t)
	ctx := context.Background()

	embedder := &stubEmbedder{dimension: 2, vectors: map[string][]float32{
		"near":    {1, 0},
		"farther": {0, 1},
		"distant": {5, 5},
		"query":   {0.9, 0},
	}}

	if err := storage.CreateCollection("kb", 2); err != nil {
		t.Fatal(err)
	}

	docs := []*models.Document{
		{ID: "1", Content: "near"},
		{ID: "2", Content: "farther"},
		{ID: "3", Content: "distant"},
	}
	written, err := storage.AddDocuments(ctx, "kb", docs, embedder, 2)
	if err != nil {
		t.Fatal(err)
	}
	if written != 3 {
		t.Fatalf("expected 3 documents written, got %d", written)
	}

	results, err := storage.Search(ctx, "kb", "query", embedder, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Document.ID != "1" {
		t.Errorf("expected nearest document first, got %s", results[0].Document.ID)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("scores not descending: %f vs %f", results[0].Score, results[1].Score)
	}
	for _, r := range results {
		if r.Score <= 0 || r.Score > 1 {
			t.Errorf("score out of range: %f", r.Score)
		}
	}
}

func TestSearchEmptyCollection(t *testing.T) {
	storage := openTestStorage(t)
	embedder := &stubEmbedder{dimension: 2}

	if err := storage.CreateCollection("kb", 2); err != nil {
		t.Fatal(err)
	}

	results, err := storage.Search(context.Background(), "kb", "anything", embedder, 5, nil)
	if err != nil {
		t.Fatalf("search on empty collection should succeed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestSearchMetadataFilter(t *testing.T) {
	storage := openTestStorage(t)
	ctx := context.Background()
	embedder := &stubEmbedder{dimension: 2, vectors: map[string][]float32{
		"a": {1, 0},
		"b": {1, 0},
	}}

	if err := storage.CreateCollection("kb", 2); err != nil {
		t.Fatal(err)
	}
	docs := []*models.Document{
		{ID: "1", Content: "a", Metadata: map[string]interface{}{"file_path": "/x.md"}},
		{ID: "2", Content: "b", Metadata: map[string]interface{}{"file_path": "/y.md"}},
	}
	if _, err := storage.AddDocuments(ctx, "kb", docs, embedder, 0); err != nil {
		t.Fatal(err)
	}

	results, err := storage.Search(ctx, "kb", "a", embedder, 5, map[string]string{"file_path": "/x.md"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Document.ID != "1" {
		t.Fatalf("filter should return only /x.md document, got %d results", len(results))
	}
}

func TestDeleteDocument(t *testing.T) {
	storage := openTestStorage(t)
	ctx := context.Background()
	embedder := &stubEmbedder{dimension: 2}

	if err := storage.CreateCollection("kb", 2); err != nil {
		t.Fatal(err)
	}
	if _, err := storage.AddDocuments(ctx, "kb", []*models.Document{{ID: "42", Content: "x"}}, embedder, 0); err != nil {
		t.Fatal(err)
	}

	deleted, err := storage.DeleteDocument("kb", "42")
	if err != nil {
		t.Fatal(err)
	}
	if !deleted {
		t.Error("expected delete of existing document to return true")
	}

	// Deleting an absent document is a benign no-op
	deleted, err = storage.DeleteDocument("kb", "42")
	if err != nil {
		t.Fatal(err)
	}
	if deleted {
		t.Error("expected delete of absent document to return false")
	}
}

func TestDeleteDocumentsBySource(t *testing.T) {
	storage := openTestStorage(t)
	ctx := context.Background()
	embedder := &stubEmbedder{dimension: 2}

	if err := storage.CreateCollection("kb", 2); err != nil {
		t.Fatal(err)
	}

	docs := []*models.Document{
		{ID: "/notes/a.md#0", Content: "one", Metadata: map[string]interface{}{"file_path": "/notes/a.md"}},
		{ID: "/notes/a.md#1", Content: "two", Metadata: map[string]interface{}{"file_path": "/notes/a.md"}},
		// Exact match only: a path containing the other as a substring must survive
		{ID: "/notes/a.md.bak#0", Content: "three", Metadata: map[string]interface{}{"file_path": "/notes/a.md.bak"}},
	}
	if _, err := storage.AddDocuments(ctx, "kb", docs, embedder, 0); err != nil {
		t.Fatal(err)
	}

	deleted, err := storage.DeleteDocumentsBySource("kb", "/notes/a.md")
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", deleted)
	}

	count, err := storage.DocumentCount("kb")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 surviving document, got %d", count)
	}

	// Absent source is a no-op
	deleted, err = storage.DeleteDocumentsBySource("kb", "/notes/missing.md")
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 0 {
		t.Errorf("expected 0 deleted for absent source, got %d", deleted)
	}
}

func TestUpsertReplacesDocument(t *testing.T) {
	storage := openTestStorage(t)
	ctx := context.Background()
	embedder := &stubEmbedder{dimension: 2, vectors: map[string][]float32{
		"old": {1, 0},
		"new": {0, 1},
	}}

	if err := storage.CreateCollection("kb", 2); err != nil {
		t.Fatal(err)
	}

	if _, err := storage.AddDocument(ctx, "kb", &models.Document{ID: "1", Content: "old"}, embedder); err != nil {
		t.Fatal(err)
	}
	if _, err := storage.AddDocument(ctx, "kb", &models.Document{ID: "1", Content: "new"}, embedder); err != nil {
		t.Fatal(err)
	}

	count, err := storage.DocumentCount("kb")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected 1 document after upsert, got %d", count)
	}

	results, err := storage.Search(ctx, "kb", "new", embedder, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Document.Content != "new" {
		t.Error("expected upserted content to replace the original")
	}
}

func TestListSourcesAndStats(t *testing.T) {
	storage := openTestStorage(t)
	ctx := context.Background()
	embedder := &stubEmbedder{dimension: 2}

	if err := storage.CreateCollection("notes", 2); err != nil {
		t.Fatal(err)
	}
	if err := storage.CreateCollection("todos", 2); err != nil {
		t.Fatal(err)
	}

	docs := []*models.Document{
		{ID: "b.md#0", Content: "x", Metadata: map[string]interface{}{"file_path": "b.md"}},
		{ID: "a.md#0", Content: "y", Metadata: map[string]interface{}{"file_path": "a.md"}},
		{ID: "a.md#1", Content: "z", Metadata: map[string]interface{}{"file_path": "a.md"}},
	}
	if _, err := storage.AddDocuments(ctx, "notes", docs, embedder, 0); err != nil {
		t.Fatal(err)
	}

	sources, err := storage.ListSources("notes")
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 2 || sources[0] != "a.md" || sources[1] != "b.md" {
		t.Errorf("unexpected sources: %v", sources)
	}

	stats, err := storage.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalDocuments != 3 {
		t.Errorf("expected 3 total documents, got %d", stats.TotalDocuments)
	}
	if len(stats.Collections) != 2 {
		t.Errorf("expected 2 collections in stats, got %d", len(stats.Collections))
	}
}

func TestDropCollection(t *testing.T) {
	storage := openTestStorage(t)
	ctx := context.Background()
	embedder := &stubEmbedder{dimension: 2}

	if err := storage.CreateCollection("kb", 2); err != nil {
		t.Fatal(err)
	}
	if _, err := storage.AddDocuments(ctx, "kb", []*models.Document{{ID: "1", Content: "x"}}, embedder, 0); err != nil {
		t.Fatal(err)
	}

	if err := storage.DropCollection("kb"); err != nil {
		t.Fatal(err)
	}

	exists, err := storage.CollectionExists("kb")
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("collection should be gone after drop")
	}

	if err := storage.DropCollection("kb"); !errors.Is(err, interfaces.ErrCollectionNotFound) {
		t.Errorf("dropping a missing collection should fail, got %v", err)
	}
}
