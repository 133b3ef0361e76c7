package embed

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// HashingEmbedder is a deterministic, dependency-free embedder based on
// feature hashing of word unigrams and bigrams. It runs entirely locally
// and needs no model files or network access. Texts sharing vocabulary
// land near each other; it is not a substitute for a learned model, but
// it preserves the contract the rest of the system relies on: stable,
// L2-normalized vectors of a fixed dimension.
type HashingEmbedder struct {
	dim int
}

// NewHashingEmbedder creates an embedder with the given dimension.
// Dimensions below 1 fall back to DefaultDimension.
func NewHashingEmbedder(dim int) *HashingEmbedder {
	if dim < 1 {
		dim = DefaultDimension
	}
	return &HashingEmbedder{dim: dim}
}

// Dimension returns the vector width.
func (e *HashingEmbedder) Dimension() int {
	return e.dim
}

// Embed hashes the text's unigram and bigram features into a normalized
// vector. Empty or non-lexical input yields the zero vector.
func (e *HashingEmbedder) Embed(text string) []float32 {
	vec := make([]float32, e.dim)
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return vec
	}

	for i, tok := range tokens {
		addFeature(vec, tok)
		if i > 0 {
			addFeature(vec, tokens[i-1]+" "+tok)
		}
	}

	normalize(vec)
	return vec
}

// EmbedBatch embeds each text in order.
func (e *HashingEmbedder) EmbedBatch(texts []string) [][]float32 {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.Embed(t)
	}
	return out
}

// addFeature hashes a feature into its bucket with a hash-derived sign,
// which keeps the expected inner product of unrelated texts near zero.
func addFeature(vec []float32, feature string) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()

	bucket := int(sum % uint64(len(vec)))
	if (sum>>63)&1 == 1 {
		vec[bucket] -= 1
	} else {
		vec[bucket] += 1
	}
}

// tokenize lowercases and splits on non-letter/digit runes.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// normalize scales vec to unit length in place. Zero vectors are left as-is.
func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) * inv)
	}
}
