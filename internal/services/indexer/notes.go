package indexer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/recallhq/recall/internal/common"
	"github.com/recallhq/recall/internal/interfaces"
	"github.com/recallhq/recall/internal/models"
	"github.com/recallhq/recall/internal/services/splitter"
)

// NotesCollection is the reserved collection holding note chunks
const NotesCollection = "__notes__"

// NotesService indexes markdown note files into the notes collection.
// Re-indexing a file deletes its previous chunks first, so a file's documents
// always reflect exactly one version of its content.
type NotesService struct {
	storage  interfaces.VectorStorage
	embedder interfaces.EmbeddingService
	splitter *splitter.Splitter
	config   *common.Config
	logger   arbor.ILogger
}

// NewNotesService creates a notes indexer and ensures its collection exists
func NewNotesService(storage interfaces.VectorStorage, embedder interfaces.EmbeddingService, split *splitter.Splitter, config *common.Config, logger arbor.ILogger) (*NotesService, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if split == nil {
		return nil, fmt.Errorf("splitter is required")
	}

	if err := storage.CreateCollection(NotesCollection, embedder.Dimension()); err != nil {
		return nil, fmt.Errorf("failed to create notes collection: %w", err)
	}

	return &NotesService{
		storage:  storage,
		embedder: embedder,
		splitter: split,
		config:   config,
		logger:   logger,
	}, nil
}

// Index chunks a note file and stores its documents, replacing any previous
// documents for the same path. Returns the number of chunks written.
func (s *NotesService) Index(ctx context.Context, filePath, content string, metadata map[string]interface{}) (int, error) {
	if filePath == "" {
		return 0, fmt.Errorf("file path is required")
	}

	deleted, err := s.storage.DeleteDocumentsBySource(NotesCollection, filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to delete previous documents: %w", err)
	}
	if deleted > 0 {
		s.logger.Debug().
			Str("file_path", filePath).
			Int("deleted", deleted).
			Msg("Removed stale note chunks before re-index")
	}

	chunks := s.splitter.SplitMarkdown(content)
	if len(chunks) == 0 {
		s.logger.Debug().Str("file_path", filePath).Msg("Note is empty, nothing to index")
		return 0, nil
	}

	modifiedAt := time.Now()
	if metadata != nil {
		if t, ok := metadata["modified_at"].(time.Time); ok {
			modifiedAt = t
		}
	}

	docs := make([]*models.Document, len(chunks))
	for i, chunk := range chunks {
		docMeta := map[string]interface{}{
			"file_path":   filePath,
			"file_name":   filepath.Base(filePath),
			"modified_at": modifiedAt.Format(time.RFC3339),
		}
		for key, value := range chunk.Metadata {
			docMeta[key] = value
		}
		for key, value := range metadata {
			if key == "modified_at" {
				continue
			}
			docMeta[key] = value
		}
		docs[i] = &models.Document{
			ID:       fmt.Sprintf("%s#%d", filePath, i),
			Content:  chunk.Content,
			Metadata: docMeta,
		}
	}

	written, err := s.storage.AddDocuments(ctx, NotesCollection, docs, s.embedder, s.config.Embedding.BatchSize)
	if err != nil {
		return written, fmt.Errorf("failed to store note chunks: %w", err)
	}

	s.logger.Info().
		Str("file_path", filePath).
		Int("chunks", written).
		Msg("Indexed note")
	return written, nil
}

// IndexDirectory walks a directory tree and indexes every file matching the
// configured extensions. Unreadable files are logged and skipped. Returns the
// total number of chunks written.
func (s *NotesService) IndexDirectory(ctx context.Context, dir string, extensions []string) (int, error) {
	if dir == "" {
		return 0, fmt.Errorf("directory is required")
	}
	if len(extensions) == 0 {
		extensions = []string{".md"}
	}

	total := 0
	files := 0
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if strings.HasPrefix(entry.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !hasExtension(path, extensions) {
			return nil
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			s.logger.Warn().Err(readErr).Str("file_path", path).Msg("Failed to read note, skipping")
			return nil
		}
		info, infoErr := entry.Info()
		metadata := map[string]interface{}{}
		if infoErr == nil {
			metadata["modified_at"] = info.ModTime()
		}

		written, indexErr := s.Index(ctx, path, string(content), metadata)
		if indexErr != nil {
			s.logger.Warn().Err(indexErr).Str("file_path", path).Msg("Failed to index note, skipping")
			return nil
		}
		total += written
		files++
		return nil
	})
	if err != nil {
		return total, fmt.Errorf("failed to walk %s: %w", dir, err)
	}

	s.logger.Info().
		Str("dir", dir).
		Int("files", files).
		Int("chunks", total).
		Msg("Indexed notes directory")
	return total, nil
}

func hasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// Delete removes every chunk stored for the file. Returns false if the file
// had no documents.
func (s *NotesService) Delete(ctx context.Context, filePath string) (bool, error) {
	deleted, err := s.storage.DeleteDocumentsBySource(NotesCollection, filePath)
	if err != nil {
		return false, fmt.Errorf("failed to delete note documents: %w", err)
	}
	if deleted == 0 {
		return false, nil
	}

	s.logger.Info().
		Str("file_path", filePath).
		Int("deleted", deleted).
		Msg("Deleted note from index")
	return true, nil
}

// Search runs a hybrid-ranked query over the notes collection and flattens the
// results into note hits.
func (s *NotesService) Search(ctx context.Context, query string, k int, filter map[string]string) ([]models.NoteHit, error) {
	if k <= 0 {
		k = s.config.Retriever.TopK
	}

	results, err := s.storage.Search(ctx, NotesCollection, query, s.embedder, k, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search notes: %w", err)
	}

	hits := make([]models.NoteHit, 0, len(results))
	for _, result := range results {
		hits = append(hits, noteHitFromResult(result))
	}
	return hits, nil
}

// Stats reports the size of the notes collection
func (s *NotesService) Stats(ctx context.Context) (*models.IndexStats, error) {
	count, err := s.storage.DocumentCount(NotesCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to count note documents: %w", err)
	}

	sources, err := s.storage.ListSources(NotesCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to list note sources: %w", err)
	}

	return &models.IndexStats{
		TotalChunks: count,
		TotalFiles:  len(sources),
		Indexed:     count > 0,
	}, nil
}

func noteHitFromResult(result models.SearchResult) models.NoteHit {
	doc := result.Document
	hit := models.NoteHit{
		Content: doc.Content,
		Score:   result.Score,
	}
	if v, ok := doc.Metadata["file_path"].(string); ok {
		hit.FilePath = v
	}
	if v, ok := doc.Metadata["file_name"].(string); ok {
		hit.FileName = v
	}
	if v, ok := doc.Metadata["heading"].(string); ok {
		hit.Heading = v
	}
	switch v := doc.Metadata["chunk_index"].(type) {
	case int:
		hit.ChunkIndex = v
	case float64:
		hit.ChunkIndex = int(v)
	}
	if v, ok := doc.Metadata["modified_at"].(string); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			hit.ModifiedAt = t
		}
	}
	return hit
}
