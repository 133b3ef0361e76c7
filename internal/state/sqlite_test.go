package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s := NewSQLiteStore()
	require.NoError(t, s.Open(":memory:"))
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_SaveAndGetDatabase(t *testing.T) {
	s := setupTestStore(t)

	db := &Database{
		Filename:   "company.db",
		Path:       "/tmp/company.db",
		TableCount: 4,
		TotalRows:  1200,
	}
	require.NoError(t, s.SaveDatabase(db))
	assert.NotEmpty(t, db.ID)
	assert.False(t, db.UploadedAt.IsZero())

	got, err := s.GetDatabase(db.ID)
	require.NoError(t, err)
	assert.Equal(t, "company.db", got.Filename)
	assert.Equal(t, 4, got.TableCount)
	assert.Equal(t, int64(1200), got.TotalRows)
}

func TestSQLiteStore_GetDatabaseNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetDatabase("missing")
	assert.ErrorContains(t, err, "not found")
}

func TestSQLiteStore_ListDatabases(t *testing.T) {
	s := setupTestStore(t)

	older := &Database{Filename: "old.db", Path: "/tmp/old.db", UploadedAt: time.Now().UTC().Add(-time.Hour)}
	newer := &Database{Filename: "new.db", Path: "/tmp/new.db", UploadedAt: time.Now().UTC()}
	require.NoError(t, s.SaveDatabase(older))
	require.NoError(t, s.SaveDatabase(newer))

	dbs, err := s.ListDatabases()
	require.NoError(t, err)
	require.Len(t, dbs, 2)
	assert.Equal(t, "new.db", dbs[0].Filename)
	assert.Equal(t, "old.db", dbs[1].Filename)
}

func TestSQLiteStore_SaveDocumentWithChunks(t *testing.T) {
	s := setupTestStore(t)

	doc := &Document{Name: "handbook.md", Type: "md", Size: 2048}
	chunks := []*Chunk{
		{Type: "structured", Content: "## Benefits\nAll employees get benefits.", Embedding: []float32{0.6, 0.8}},
		{Type: "structured", Content: "## Leave\nVacation policy details.", Embedding: []float32{1, 0}},
	}
	require.NoError(t, s.SaveDocument(doc, chunks))
	assert.Equal(t, 2, doc.ChunkCount)

	got, err := s.GetChunk(doc.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "structured", got.Type)
	assert.Contains(t, got.Content, "Benefits")
	assert.InDeltaSlice(t, []float32{0.6, 0.8}, got.Embedding, 1e-6)

	docs, err := s.ListDocuments()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "handbook.md", docs[0].Name)
	assert.Equal(t, 2, docs[0].ChunkCount)
}

func TestSQLiteStore_ForEachChunk(t *testing.T) {
	s := setupTestStore(t)

	doc := &Document{Name: "notes.txt", Type: "txt"}
	require.NoError(t, s.SaveDocument(doc, []*Chunk{
		{Type: "plain", Content: "first", Embedding: []float32{1, 0}},
		{Type: "plain", Content: "second", Embedding: []float32{0, 1}},
	}))

	var seen []string
	err := s.ForEachChunk(func(c *Chunk) error {
		seen = append(seen, c.Content)
		require.Len(t, c.Embedding, 2)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, seen)
}

func TestSQLiteStore_DeleteDocument(t *testing.T) {
	s := setupTestStore(t)

	keep := &Document{Name: "keep.txt", Type: "txt"}
	require.NoError(t, s.SaveDocument(keep, []*Chunk{
		{Type: "plain", Content: "keep me", Embedding: []float32{1, 0}},
	}))
	gone := &Document{Name: "gone.txt", Type: "txt"}
	require.NoError(t, s.SaveDocument(gone, []*Chunk{
		{Type: "plain", Content: "delete me", Embedding: []float32{0, 1}},
	}))

	require.NoError(t, s.DeleteDocument(gone.ID))

	docs, err := s.ListDocuments()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "keep.txt", docs[0].Name)

	_, err = s.GetChunk(gone.ID, 0)
	assert.ErrorContains(t, err, "not found")

	stats, err := s.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalChunks)
}

func TestSQLiteStore_DeleteDocumentNotFound(t *testing.T) {
	s := setupTestStore(t)
	assert.ErrorContains(t, s.DeleteDocument("missing"), "not found")
}

func TestSQLiteStore_ClearDocuments(t *testing.T) {
	s := setupTestStore(t)

	doc := &Document{Name: "notes.txt", Type: "txt"}
	require.NoError(t, s.SaveDocument(doc, []*Chunk{
		{Type: "plain", Content: "body", Embedding: []float32{1}},
	}))
	require.NoError(t, s.ClearDocuments())

	docs, err := s.ListDocuments()
	require.NoError(t, err)
	assert.Empty(t, docs)

	stats, err := s.GetStats()
	require.NoError(t, err)
	assert.Zero(t, stats.TotalDocuments)
	assert.Zero(t, stats.TotalChunks)
}

func TestSQLiteStore_GetStats(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.SaveDatabase(&Database{Filename: "a.db", Path: "/tmp/a.db"}))
	require.NoError(t, s.SaveDocument(&Document{Name: "a.txt", Type: "txt"}, []*Chunk{
		{Type: "plain", Content: "x", Embedding: []float32{1}},
	}))

	stats, err := s.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalDatabases)
	assert.Equal(t, 1, stats.TotalDocuments)
	assert.Equal(t, 1, stats.TotalChunks)
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	s := NewSQLiteStore()

	assert.Error(t, s.SaveDatabase(&Database{}))
	_, err := s.ListDocuments()
	assert.Error(t, err)
}

func TestEncodeDecodeVector(t *testing.T) {
	vec := []float32{0.25, -1.5, 3.75}
	got, err := decodeVector(encodeVector(vec))
	require.NoError(t, err)
	assert.Equal(t, vec, got)

	_, err = decodeVector([]byte{1, 2, 3})
	assert.ErrorContains(t, err, "multiple of 4")
}
