// Package vector provides an in-memory inner-product similarity index.
// Vectors are expected to be L2-normalized, so inner product equals
// cosine similarity.
package vector

import (
	"fmt"
	"sort"
	"sync"
)

// Entry associates a stored vector with its owner's identifiers.
type Entry struct {
	DocumentID string
	ChunkSeq   int
}

// Match is one search hit, highest similarity first.
type Match struct {
	Entry      Entry
	Similarity float32
	Rank       int
}

// Index is a flat inner-product index, safe for concurrent use.
type Index struct {
	mu      sync.RWMutex
	dim     int
	vectors [][]float32
	entries []Entry
}

// New creates an index for vectors of the given dimension.
func New(dim int) *Index {
	return &Index{dim: dim}
}

// Len returns the number of indexed vectors.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.vectors)
}

// Dimension returns the vector width the index accepts.
func (ix *Index) Dimension() int {
	return ix.dim
}

// Add appends a vector with its entry metadata.
func (ix *Index) Add(vec []float32, entry Entry) error {
	if len(vec) != ix.dim {
		return fmt.Errorf("vector dimension %d does not match index dimension %d", len(vec), ix.dim)
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.vectors = append(ix.vectors, vec)
	ix.entries = append(ix.entries, entry)
	return nil
}

// Search returns the topK most similar entries to the query vector.
// Fewer results are returned when the index holds fewer vectors.
func (ix *Index) Search(query []float32, topK int) ([]Match, error) {
	if len(query) != ix.dim {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), ix.dim)
	}
	if topK < 1 {
		return nil, nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	matches := make([]Match, 0, len(ix.vectors))
	for i, vec := range ix.vectors {
		matches = append(matches, Match{
			Entry:      ix.entries[i],
			Similarity: innerProduct(query, vec),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if topK < len(matches) {
		matches = matches[:topK]
	}
	for i := range matches {
		matches[i].Rank = i + 1
	}
	return matches, nil
}

// Clear drops every indexed vector.
func (ix *Index) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.vectors = nil
	ix.entries = nil
}

// RemoveDocument drops all vectors belonging to the given document.
func (ix *Index) RemoveDocument(documentID string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	vectors := ix.vectors[:0]
	entries := ix.entries[:0]
	for i, e := range ix.entries {
		if e.DocumentID == documentID {
			continue
		}
		vectors = append(vectors, ix.vectors[i])
		entries = append(entries, e)
	}
	ix.vectors = vectors
	ix.entries = entries
}

func innerProduct(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
