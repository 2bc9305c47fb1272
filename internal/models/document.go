package models

import (
	"time"
)

// Document is the unit stored in a vector collection.
// IDs are caller-assigned and unique within a collection: chunked sources use
// "<file_path>#<chunk_index>", single-record sources use the record id as string.
type Document struct {
	ID        string                 `json:"id"`
	Content   string                 `json:"content"`
	Metadata  map[string]interface{} `json:"metadata"`
	Embedding []float32              `json:"embedding,omitempty"`
}

// Chunk is a transient piece of split text, annotated with positional
// metadata before it becomes a Document.
type Chunk struct {
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata"`
}

// SearchResult pairs a document with its similarity score.
// Score is derived from raw distance as 1/(1+distance); higher is more relevant.
type SearchResult struct {
	Document *Document `json:"document"`
	Score    float64   `json:"score"`
}

// RetrievedDocument is a search result annotated with its source collection,
// produced by the retriever's single- and multi-collection paths.
type RetrievedDocument struct {
	Document   *Document `json:"document"`
	Score      float64   `json:"score"`
	Collection string    `json:"collection"`
}

// CollectionStats describes one collection in the store
type CollectionStats struct {
	ID            string `json:"id"`
	DocumentCount int    `json:"document_count"`
}

// StoreStats describes the whole store
type StoreStats struct {
	DBPath         string            `json:"db_path"`
	Collections    []CollectionStats `json:"collections"`
	TotalDocuments int               `json:"total_documents"`
}

// IndexStats summarizes an indexer's footprint in its collection
type IndexStats struct {
	TotalChunks int  `json:"total_chunks"`
	TotalFiles  int  `json:"total_files"`
	Indexed     bool `json:"indexed"`
}

// NoteHit is a notes search result flattened for external callers,
// carrying enough metadata to avoid a second lookup.
type NoteHit struct {
	FilePath   string    `json:"file_path"`
	FileName   string    `json:"file_name"`
	Heading    string    `json:"heading,omitempty"`
	Content    string    `json:"content"`
	ChunkIndex int       `json:"chunk_index"`
	ModifiedAt time.Time `json:"modified_at"`
	Score      float64   `json:"score"`
}
