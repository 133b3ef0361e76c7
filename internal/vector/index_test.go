package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_AddAndSearch(t *testing.T) {
	ix := New(3)

	require.NoError(t, ix.Add([]float32{1, 0, 0}, Entry{DocumentID: "a", ChunkSeq: 0}))
	require.NoError(t, ix.Add([]float32{0, 1, 0}, Entry{DocumentID: "a", ChunkSeq: 1}))
	require.NoError(t, ix.Add([]float32{0.9, 0.1, 0}, Entry{DocumentID: "b", ChunkSeq: 0}))

	matches, err := ix.Search([]float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "a", matches[0].Entry.DocumentID)
	assert.Equal(t, 0, matches[0].Entry.ChunkSeq)
	assert.Equal(t, 1, matches[0].Rank)
	assert.Equal(t, "b", matches[1].Entry.DocumentID)
	assert.Equal(t, 2, matches[1].Rank)
	assert.Greater(t, matches[0].Similarity, matches[1].Similarity)
}

func TestIndex_SearchMoreThanStored(t *testing.T) {
	ix := New(2)
	require.NoError(t, ix.Add([]float32{1, 0}, Entry{DocumentID: "only"}))

	matches, err := ix.Search([]float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestIndex_DimensionMismatch(t *testing.T) {
	ix := New(3)
	assert.Error(t, ix.Add([]float32{1, 0}, Entry{}))

	_, err := ix.Search([]float32{1, 0}, 5)
	assert.Error(t, err)
}

func TestIndex_Clear(t *testing.T) {
	ix := New(2)
	require.NoError(t, ix.Add([]float32{1, 0}, Entry{DocumentID: "x"}))
	require.Equal(t, 1, ix.Len())

	ix.Clear()
	assert.Zero(t, ix.Len())
}

func TestIndex_RemoveDocument(t *testing.T) {
	ix := New(2)
	require.NoError(t, ix.Add([]float32{1, 0}, Entry{DocumentID: "keep", ChunkSeq: 0}))
	require.NoError(t, ix.Add([]float32{0, 1}, Entry{DocumentID: "drop", ChunkSeq: 0}))
	require.NoError(t, ix.Add([]float32{1, 0}, Entry{DocumentID: "drop", ChunkSeq: 1}))

	ix.RemoveDocument("drop")

	assert.Equal(t, 1, ix.Len())
	matches, err := ix.Search([]float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "keep", matches[0].Entry.DocumentID)
}

func TestIndex_SearchZeroTopK(t *testing.T) {
	ix := New(2)
	require.NoError(t, ix.Add([]float32{1, 0}, Entry{}))

	matches, err := ix.Search([]float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
