package embed

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashingEmbedder_Dimension(t *testing.T) {
	e := NewHashingEmbedder(128)
	assert.Equal(t, 128, e.Dimension())
	assert.Len(t, e.Embed("hello world"), 128)

	// Invalid dimension falls back to the default.
	assert.Equal(t, DefaultDimension, NewHashingEmbedder(0).Dimension())
}

func TestHashingEmbedder_Deterministic(t *testing.T) {
	e := NewHashingEmbedder(DefaultDimension)
	a := e.Embed("the quick brown fox")
	b := e.Embed("the quick brown fox")
	assert.Equal(t, a, b)
}

func TestHashingEmbedder_Normalized(t *testing.T) {
	e := NewHashingEmbedder(DefaultDimension)
	vec := e.Embed("employees are paid a salary every month")

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestHashingEmbedder_EmptyText(t *testing.T) {
	e := NewHashingEmbedder(DefaultDimension)
	vec := e.Embed("")
	for _, v := range vec {
		require.Zero(t, v)
	}
}

func TestHashingEmbedder_SimilarTextsCloser(t *testing.T) {
	e := NewHashingEmbedder(DefaultDimension)

	base := e.Embed("annual salary report for engineering employees")
	similar := e.Embed("salary report for engineering staff")
	unrelated := e.Embed("caramelized onions require slow cooking and patience")

	simScore := dot(base, similar)
	unrelScore := dot(base, unrelated)
	assert.Greater(t, simScore, unrelScore)
}

func TestHashingEmbedder_EmbedBatch(t *testing.T) {
	e := NewHashingEmbedder(64)
	vecs := e.EmbedBatch([]string{"one", "two", "three"})
	require.Len(t, vecs, 3)
	assert.Equal(t, e.Embed("two"), vecs[1])
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
