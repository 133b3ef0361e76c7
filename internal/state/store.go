// Package state persists uploaded database metadata and ingested document
// chunks (with their embeddings) in a local SQLite database.
package state

import "time"

// Database records an uploaded SQLite database available for querying.
type Database struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Path       string    `json:"path"`
	TableCount int       `json:"table_count"`
	TotalRows  int64     `json:"total_rows"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Document records one ingested document.
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	ChunkCount int       `json:"chunk_count"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Chunk is one embedded slice of a document. Seq is dense per document,
// starting at zero.
type Chunk struct {
	DocumentID string    `json:"document_id"`
	Seq        int       `json:"seq"`
	Type       string    `json:"type"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"-"`
}

// Stats summarizes store contents.
type Stats struct {
	TotalDatabases int `json:"total_databases"`
	TotalDocuments int `json:"total_documents"`
	TotalChunks    int `json:"total_chunks"`
}

// Store is the persistence contract for the query engine's state.
type Store interface {
	SaveDatabase(db *Database) error
	GetDatabase(id string) (*Database, error)
	ListDatabases() ([]*Database, error)

	SaveDocument(doc *Document, chunks []*Chunk) error
	ListDocuments() ([]*Document, error)
	GetChunk(documentID string, seq int) (*Chunk, error)
	ForEachChunk(fn func(*Chunk) error) error
	DeleteDocument(id string) error
	ClearDocuments() error

	GetStats() (*Stats, error)
	Close() error
}
