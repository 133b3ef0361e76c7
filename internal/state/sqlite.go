package state

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	} else {
		dsn = ":memory:?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the path the store was opened with.
func (s *SQLiteStore) Path() string {
	return s.path
}

// NewID creates a new UUID string for store records.
func NewID() string {
	return uuid.New().String()
}

// --- Database registry operations ---

// SaveDatabase records an uploaded database. A zero ID or UploadedAt is
// filled in.
func (s *SQLiteStore) SaveDatabase(db *Database) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if db.ID == "" {
		db.ID = NewID()
	}
	if db.UploadedAt.IsZero() {
		db.UploadedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO databases (id, filename, path, table_count, total_rows, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		db.ID, db.Filename, db.Path, db.TableCount, db.TotalRows, db.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save database: %w", err)
	}
	return nil
}

// GetDatabase retrieves an uploaded database by ID.
func (s *SQLiteStore) GetDatabase(id string) (*Database, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	db := &Database{}
	err := s.db.QueryRow(
		`SELECT id, filename, path, table_count, total_rows, uploaded_at
		 FROM databases WHERE id = ?`,
		id,
	).Scan(&db.ID, &db.Filename, &db.Path, &db.TableCount, &db.TotalRows, &db.UploadedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("database not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get database: %w", err)
	}
	return db, nil
}

// ListDatabases returns all uploaded databases, newest first.
func (s *SQLiteStore) ListDatabases() ([]*Database, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, filename, path, table_count, total_rows, uploaded_at
		 FROM databases ORDER BY uploaded_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list databases: %w", err)
	}
	defer rows.Close()

	var dbs []*Database
	for rows.Next() {
		db := &Database{}
		if err := rows.Scan(&db.ID, &db.Filename, &db.Path, &db.TableCount, &db.TotalRows, &db.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan database: %w", err)
		}
		dbs = append(dbs, db)
	}
	return dbs, rows.Err()
}

// --- Document operations ---

// SaveDocument stores a document and its chunks in one transaction.
// The document's ChunkCount is set from the chunks given.
func (s *SQLiteStore) SaveDocument(doc *Document, chunks []*Chunk) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if doc.ID == "" {
		doc.ID = NewID()
	}
	if doc.IngestedAt.IsZero() {
		doc.IngestedAt = time.Now().UTC()
	}
	doc.ChunkCount = len(chunks)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO documents (id, name, type, size, chunk_count, ingested_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Name, doc.Type, doc.Size, doc.ChunkCount, doc.IngestedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO chunks (document_id, seq, type, content, embedding)
		 VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range chunks {
		c.DocumentID = doc.ID
		c.Seq = i
		if _, err := stmt.Exec(c.DocumentID, c.Seq, c.Type, c.Content, encodeVector(c.Embedding)); err != nil {
			return fmt.Errorf("failed to save chunk %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit document: %w", err)
	}
	return nil
}

// ListDocuments returns all ingested documents, newest first.
func (s *SQLiteStore) ListDocuments() ([]*Document, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, name, type, size, chunk_count, ingested_at
		 FROM documents ORDER BY ingested_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		doc := &Document{}
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.Type, &doc.Size, &doc.ChunkCount, &doc.IngestedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// GetChunk retrieves one chunk by document and sequence number.
func (s *SQLiteStore) GetChunk(documentID string, seq int) (*Chunk, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	c := &Chunk{}
	var blob []byte
	err := s.db.QueryRow(
		`SELECT document_id, seq, type, content, embedding
		 FROM chunks WHERE document_id = ? AND seq = ?`,
		documentID, seq,
	).Scan(&c.DocumentID, &c.Seq, &c.Type, &c.Content, &blob)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("chunk not found: %s/%d", documentID, seq)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chunk: %w", err)
	}

	c.Embedding, err = decodeVector(blob)
	if err != nil {
		return nil, fmt.Errorf("failed to decode embedding for %s/%d: %w", documentID, seq, err)
	}
	return c, nil
}

// ForEachChunk streams every stored chunk to fn, used to rebuild the
// in-memory vector index at startup. Iteration stops on the first error.
func (s *SQLiteStore) ForEachChunk(fn func(*Chunk) error) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT document_id, seq, type, content, embedding
		 FROM chunks ORDER BY document_id, seq`,
	)
	if err != nil {
		return fmt.Errorf("failed to iterate chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c := &Chunk{}
		var blob []byte
		if err := rows.Scan(&c.DocumentID, &c.Seq, &c.Type, &c.Content, &blob); err != nil {
			return fmt.Errorf("failed to scan chunk: %w", err)
		}
		if c.Embedding, err = decodeVector(blob); err != nil {
			return fmt.Errorf("failed to decode embedding for %s/%d: %w", c.DocumentID, c.Seq, err)
		}
		if err := fn(c); err != nil {
			return err
		}
	}
	return rows.Err()
}

// DeleteDocument removes one document and its chunks.
func (s *SQLiteStore) DeleteDocument(id string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM chunks WHERE document_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("document not found: %s", id)
	}
	return tx.Commit()
}

// ClearDocuments deletes every document and its chunks.
func (s *SQLiteStore) ClearDocuments() error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM chunks`); err != nil {
		return fmt.Errorf("failed to clear chunks: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM documents`); err != nil {
		return fmt.Errorf("failed to clear documents: %w", err)
	}
	return tx.Commit()
}

// GetStats returns row counts across the store.
func (s *SQLiteStore) GetStats() (*Stats, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	stats := &Stats{}
	row := s.db.QueryRow(
		`SELECT
			(SELECT COUNT(*) FROM databases),
			(SELECT COUNT(*) FROM documents),
			(SELECT COUNT(*) FROM chunks)`,
	)
	if err := row.Scan(&stats.TotalDatabases, &stats.TotalDocuments, &stats.TotalChunks); err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return stats, nil
}

// encodeVector packs a float32 vector as little-endian bytes for BLOB storage.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

// decodeVector unpacks a BLOB written by encodeVector.
func decodeVector(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(buf))
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return vec, nil
}
