// Package embed produces fixed-length vector representations of text for
// semantic similarity search.
package embed

// DefaultDimension is the embedding width used throughout the system.
const DefaultDimension = 384

// Embedder converts text into fixed-length, L2-normalized float32 vectors.
// Vectors from the same Embedder are directly comparable by inner product.
type Embedder interface {
	// Dimension returns the vector width.
	Dimension() int
	// Embed returns the normalized vector for one text.
	Embed(text string) []float32
	// EmbedBatch returns normalized vectors for each text, in order.
	EmbedBatch(texts []string) [][]float32
}
